package models

import (
	"fmt"
	"sort"
	"strings"
)

const blankMessage = "can't be blank"

// ValidationErrors maps a field name to its failure messages,
// e.g. {"message": ["can't be blank"]}.
type ValidationErrors map[string][]string

func (v ValidationErrors) Add(field, message string) {
	v[field] = append(v[field], message)
}

func (v ValidationErrors) Error() string {
	fields := make([]string, 0, len(v))
	for field := range v {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	var parts []string
	for _, field := range fields {
		for _, msg := range v[field] {
			parts = append(parts, fmt.Sprintf("%s %s", field, msg))
		}
	}
	return strings.Join(parts, ", ")
}

func checkPresence(errs ValidationErrors, field, value string) {
	if strings.TrimSpace(value) == "" {
		errs.Add(field, blankMessage)
	}
}
