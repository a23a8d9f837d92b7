package storage

import (
	"database/sql"

	"github.com/wstorey/web615-lab9/internal/models"
)

// Column lists and row scanners shared by the Postgres and SQLite stores;
// both lay tables out identically.

const userColumns = `id, email, password_hash, session_token, session_expires_at,
        remember_token, sign_in_count, current_sign_in_at, last_sign_in_at,
        last_seen_at, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanUser(row rowScanner) (*models.User, error) {
	user := &models.User{}
	var sessionToken, rememberToken sql.NullString

	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&sessionToken,
		&user.SessionExpiresAt,
		&rememberToken,
		&user.SignInCount,
		&user.CurrentSignInAt,
		&user.LastSignInAt,
		&user.LastSeenAt,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}

	if err != nil {
		return nil, err
	}

	user.SessionToken = sessionToken.String
	user.RememberToken = rememberToken.String
	return user, nil
}

const articleColumns = `id, title, content, category, uuid, slug, user_id, created_at, updated_at`

func scanArticle(row rowScanner) (*models.Article, error) {
	article := &models.Article{}
	var category sql.NullString

	err := row.Scan(
		&article.ID,
		&article.Title,
		&article.Content,
		&category,
		&article.UUID,
		&article.Slug,
		&article.UserID,
		&article.CreatedAt,
		&article.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}

	if err != nil {
		return nil, err
	}

	article.Category = category.String
	return article, nil
}

const commentColumns = `id, message, visible, uuid, slug, article_id, user_id, created_at, updated_at`

func scanComment(row rowScanner) (*models.Comment, error) {
	comment := &models.Comment{}

	err := row.Scan(
		&comment.ID,
		&comment.Message,
		&comment.Visible,
		&comment.UUID,
		&comment.Slug,
		&comment.ArticleID,
		&comment.UserID,
		&comment.CreatedAt,
		&comment.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}

	if err != nil {
		return nil, err
	}

	return comment, nil
}

func nullIfBlank(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func requireRows(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
