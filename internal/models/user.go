package models

import (
	"strings"
	"time"
)

// NewUser creates a user with a normalized email. The password hash is
// set by the auth layer before the row is saved.
func NewUser(email string) *User {
	return &User{
		Email: strings.ToLower(strings.TrimSpace(email)),
	}
}

func (u *User) Validate() error {
	errs := ValidationErrors{}
	checkPresence(errs, "email", u.Email)
	if u.Email != "" && !strings.Contains(u.Email, "@") {
		errs.Add("email", "is invalid")
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (u *User) BeforeCreate() error {
	if err := u.Validate(); err != nil {
		return err
	}
	now := time.Now()
	u.CreatedAt = now
	u.UpdatedAt = now
	return nil
}

func (u *User) BeforeUpdate() error {
	if err := u.Validate(); err != nil {
		return err
	}
	u.UpdatedAt = time.Now()
	return nil
}

// SessionValid reports whether the user's current session token is
// still usable at the given instant.
func (u *User) SessionValid(now time.Time) bool {
	if u.SessionToken == "" || u.SessionExpiresAt == nil {
		return false
	}
	return now.Before(*u.SessionExpiresAt)
}
