package models

import (
	"github.com/google/uuid"
)

// Kind tags an entity for identifier generation. The tag is a
// human-readable prefix only; uniqueness comes from the UUID.
type Kind string

const (
	KindArticle Kind = "Article"
	KindComment Kind = "Comment"
)

// NewIdentifier returns an identifier of the form "<Kind>-<uuid>",
// e.g. "Article-1b4e28ba-2fa1-11d2-883f-0016d3cca427". The UUID is
// drawn from crypto/rand, so collisions are statistically impossible;
// the storage layer still carries a unique constraint as a backstop.
func NewIdentifier(kind Kind) string {
	return string(kind) + "-" + uuid.NewString()
}
