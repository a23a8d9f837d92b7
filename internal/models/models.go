package models

import (
	"time"
)

type User struct {
	ID               int64      `json:"id"`
	Email            string     `json:"email"`
	PasswordHash     string     `json:"-"`
	SessionToken     string     `json:"-"`
	SessionExpiresAt *time.Time `json:"-"`
	RememberToken    string     `json:"-"`
	SignInCount      int        `json:"sign_in_count"`
	CurrentSignInAt  *time.Time `json:"current_sign_in_at,omitempty"`
	LastSignInAt     *time.Time `json:"last_sign_in_at,omitempty"`
	LastSeenAt       *time.Time `json:"last_seen_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

type Article struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Category  string    `json:"category,omitempty"`
	UUID      string    `json:"uuid"`
	Slug      string    `json:"slug"`
	UserID    int64     `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Comment struct {
	ID        int64     `json:"id"`
	Message   string    `json:"message"`
	Visible   bool      `json:"visible"`
	UUID      string    `json:"uuid"`
	Slug      string    `json:"slug"`
	ArticleID int64     `json:"article_id"`
	UserID    int64     `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
