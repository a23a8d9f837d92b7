package models

import (
	"time"
)

// NewComment creates a comment on an article. Comments start hidden
// (visible = false) until moderated.
func NewComment(message string, articleID, userID int64) *Comment {
	return &Comment{
		Message:   message,
		ArticleID: articleID,
		UserID:    userID,
	}
}

func (c *Comment) Validate() error {
	errs := ValidationErrors{}
	checkPresence(errs, "message", c.Message)
	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (c *Comment) BeforeCreate() error {
	if err := c.Validate(); err != nil {
		return err
	}
	c.UUID = NewIdentifier(KindComment)
	c.Slug = c.UUID
	now := time.Now()
	c.CreatedAt = now
	c.UpdatedAt = now
	return nil
}

func (c *Comment) BeforeUpdate() error {
	if err := c.Validate(); err != nil {
		return err
	}
	c.UpdatedAt = time.Now()
	return nil
}
