package models

import (
	"time"
)

// NewArticle creates an article owned by the given user. Identifier,
// slug and timestamps are stamped by BeforeCreate when the row is saved.
func NewArticle(title, content, category string, userID int64) *Article {
	return &Article{
		Title:    title,
		Content:  content,
		Category: category,
		UserID:   userID,
	}
}

func (a *Article) Validate() error {
	errs := ValidationErrors{}
	checkPresence(errs, "title", a.Title)
	checkPresence(errs, "content", a.Content)
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// BeforeCreate validates the article and stamps identifier, slug and
// timestamps. Identifier and slug are written together in the single
// insert that follows, so a row is never visible without its slug.
func (a *Article) BeforeCreate() error {
	if err := a.Validate(); err != nil {
		return err
	}
	a.UUID = NewIdentifier(KindArticle)
	a.Slug = a.UUID
	now := time.Now()
	a.CreatedAt = now
	a.UpdatedAt = now
	return nil
}

// BeforeUpdate re-validates and bumps updated_at. UUID and slug are
// immutable; the storage layer never writes them on update.
func (a *Article) BeforeUpdate() error {
	if err := a.Validate(); err != nil {
		return err
	}
	a.UpdatedAt = time.Now()
	return nil
}
