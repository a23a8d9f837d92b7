package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/wstorey/web615-lab9/internal/models"
)

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(connStr string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		return nil, err
	}

	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) Initialize() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS users (
            id BIGSERIAL PRIMARY KEY,
            email VARCHAR(255) UNIQUE NOT NULL,
            password_hash VARCHAR(255) NOT NULL,
            session_token VARCHAR(64),
            session_expires_at TIMESTAMP,
            remember_token VARCHAR(64),
            sign_in_count INTEGER NOT NULL DEFAULT 0,
            current_sign_in_at TIMESTAMP,
            last_sign_in_at TIMESTAMP,
            last_seen_at TIMESTAMP,
            created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
            updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
        )`,
		`CREATE TABLE IF NOT EXISTS articles (
            id BIGSERIAL PRIMARY KEY,
            title TEXT NOT NULL,
            content TEXT NOT NULL,
            category VARCHAR(255),
            uuid VARCHAR(64) UNIQUE NOT NULL,
            slug VARCHAR(64) UNIQUE NOT NULL,
            user_id BIGINT REFERENCES users(id),
            created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
            updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
        )`,
		`CREATE TABLE IF NOT EXISTS comments (
            id BIGSERIAL PRIMARY KEY,
            message TEXT NOT NULL,
            visible BOOLEAN NOT NULL DEFAULT FALSE,
            uuid VARCHAR(64) UNIQUE NOT NULL,
            slug VARCHAR(64) UNIQUE NOT NULL,
            article_id BIGINT REFERENCES articles(id) ON DELETE CASCADE,
            user_id BIGINT REFERENCES users(id),
            created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
            updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
        )`,
		`CREATE INDEX IF NOT EXISTS idx_articles_slug ON articles(slug)`,
		`CREATE INDEX IF NOT EXISTS idx_articles_user_id ON articles(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_comments_slug ON comments(slug)`,
		`CREATE INDEX IF NOT EXISTS idx_comments_article_id ON comments(article_id)`,
		`CREATE INDEX IF NOT EXISTS idx_users_session_token ON users(session_token)`,
	}

	for _, query := range queries {
		if _, err := s.db.Exec(query); err != nil {
			return fmt.Errorf("error executing query %s: %w", query, err)
		}
	}

	return nil
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}

func pgIsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

// User operations

func (s *PostgresStore) CreateUser(ctx context.Context, user *models.User) error {
	if err := user.BeforeCreate(); err != nil {
		return err
	}

	query := `
        INSERT INTO users (email, password_hash, session_token, session_expires_at,
            remember_token, sign_in_count, current_sign_in_at, last_sign_in_at,
            last_seen_at, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
        RETURNING id
    `

	err := s.db.QueryRowContext(ctx, query,
		user.Email,
		user.PasswordHash,
		nullIfBlank(user.SessionToken),
		user.SessionExpiresAt,
		nullIfBlank(user.RememberToken),
		user.SignInCount,
		user.CurrentSignInAt,
		user.LastSignInAt,
		user.LastSeenAt,
		user.CreatedAt,
		user.UpdatedAt,
	).Scan(&user.ID)

	if pgIsUniqueViolation(err) {
		return ErrDuplicateIdentifier
	}

	return err
}

func (s *PostgresStore) GetUser(ctx context.Context, id int64) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(s.db.QueryRowContext(ctx, query, id))
}

func (s *PostgresStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return scanUser(s.db.QueryRowContext(ctx, query, email))
}

func (s *PostgresStore) GetUserBySessionToken(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, ErrNotFound
	}
	query := `SELECT ` + userColumns + ` FROM users WHERE session_token = $1`
	return scanUser(s.db.QueryRowContext(ctx, query, token))
}

func (s *PostgresStore) GetUserByRememberToken(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, ErrNotFound
	}
	query := `SELECT ` + userColumns + ` FROM users WHERE remember_token = $1`
	return scanUser(s.db.QueryRowContext(ctx, query, token))
}

func (s *PostgresStore) ListUsers(ctx context.Context, limit, offset int) ([]*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY id LIMIT $1 OFFSET $2`

	rows, err := s.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}

	return users, rows.Err()
}

func (s *PostgresStore) UpdateUser(ctx context.Context, user *models.User) error {
	if err := user.BeforeUpdate(); err != nil {
		return err
	}

	query := `
        UPDATE users SET
            email = $1,
            password_hash = $2,
            session_token = $3,
            session_expires_at = $4,
            remember_token = $5,
            sign_in_count = $6,
            current_sign_in_at = $7,
            last_sign_in_at = $8,
            last_seen_at = $9,
            updated_at = $10
        WHERE id = $11
    `

	result, err := s.db.ExecContext(ctx, query,
		user.Email,
		user.PasswordHash,
		nullIfBlank(user.SessionToken),
		user.SessionExpiresAt,
		nullIfBlank(user.RememberToken),
		user.SignInCount,
		user.CurrentSignInAt,
		user.LastSignInAt,
		user.LastSeenAt,
		user.UpdatedAt,
		user.ID,
	)

	if pgIsUniqueViolation(err) {
		return ErrDuplicateIdentifier
	}

	if err != nil {
		return err
	}

	return requireRows(result)
}

func (s *PostgresStore) DeleteUser(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requireRows(result)
}

// Article operations

func (s *PostgresStore) CreateArticle(ctx context.Context, article *models.Article) error {
	if err := article.BeforeCreate(); err != nil {
		return err
	}

	query := `
        INSERT INTO articles (title, content, category, uuid, slug, user_id, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        RETURNING id
    `

	err := s.db.QueryRowContext(ctx, query,
		article.Title,
		article.Content,
		nullIfBlank(article.Category),
		article.UUID,
		article.Slug,
		article.UserID,
		article.CreatedAt,
		article.UpdatedAt,
	).Scan(&article.ID)

	if pgIsUniqueViolation(err) {
		return ErrDuplicateIdentifier
	}

	return err
}

func (s *PostgresStore) GetArticle(ctx context.Context, ref EntityRef) (*models.Article, error) {
	var query string
	var arg interface{}

	if ref.Slug != "" {
		query = `SELECT ` + articleColumns + ` FROM articles WHERE slug = $1`
		arg = ref.Slug
	} else {
		query = `SELECT ` + articleColumns + ` FROM articles WHERE id = $1`
		arg = ref.ID
	}

	return scanArticle(s.db.QueryRowContext(ctx, query, arg))
}

func (s *PostgresStore) ListArticles(ctx context.Context, limit, offset int) ([]*models.Article, error) {
	query := `
        SELECT ` + articleColumns + `
        FROM articles
        ORDER BY created_at DESC
        LIMIT $1 OFFSET $2
    `

	rows, err := s.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var articles []*models.Article
	for rows.Next() {
		article, err := scanArticle(rows)
		if err != nil {
			return nil, err
		}
		articles = append(articles, article)
	}

	return articles, rows.Err()
}

// UpdateArticle persists title, content and category. UUID and slug are
// immutable after creation and are deliberately absent from the SET list.
func (s *PostgresStore) UpdateArticle(ctx context.Context, article *models.Article) error {
	if err := article.BeforeUpdate(); err != nil {
		return err
	}

	query := `
        UPDATE articles SET
            title = $1,
            content = $2,
            category = $3,
            updated_at = $4
        WHERE id = $5
    `

	result, err := s.db.ExecContext(ctx, query,
		article.Title,
		article.Content,
		nullIfBlank(article.Category),
		article.UpdatedAt,
		article.ID,
	)

	if err != nil {
		return err
	}

	return requireRows(result)
}

// DeleteArticle removes the article and, through the ON DELETE CASCADE
// constraint, all of its comments.
func (s *PostgresStore) DeleteArticle(ctx context.Context, ref EntityRef) error {
	article, err := s.GetArticle(ctx, ref)
	if err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `DELETE FROM articles WHERE id = $1`, article.ID)
	if err != nil {
		return err
	}
	return requireRows(result)
}

// Comment operations

func (s *PostgresStore) CreateComment(ctx context.Context, comment *models.Comment) error {
	if err := comment.BeforeCreate(); err != nil {
		return err
	}

	query := `
        INSERT INTO comments (message, visible, uuid, slug, article_id, user_id, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        RETURNING id
    `

	err := s.db.QueryRowContext(ctx, query,
		comment.Message,
		comment.Visible,
		comment.UUID,
		comment.Slug,
		comment.ArticleID,
		comment.UserID,
		comment.CreatedAt,
		comment.UpdatedAt,
	).Scan(&comment.ID)

	if pgIsUniqueViolation(err) {
		return ErrDuplicateIdentifier
	}

	return err
}

func (s *PostgresStore) GetComment(ctx context.Context, ref EntityRef) (*models.Comment, error) {
	var query string
	var arg interface{}

	if ref.Slug != "" {
		query = `SELECT ` + commentColumns + ` FROM comments WHERE slug = $1`
		arg = ref.Slug
	} else {
		query = `SELECT ` + commentColumns + ` FROM comments WHERE id = $1`
		arg = ref.ID
	}

	return scanComment(s.db.QueryRowContext(ctx, query, arg))
}

func (s *PostgresStore) ListComments(ctx context.Context, visibleOnly bool, limit, offset int) ([]*models.Comment, error) {
	query := `
        SELECT ` + commentColumns + `
        FROM comments
        WHERE ($1 = FALSE OR visible = TRUE)
        ORDER BY created_at DESC
        LIMIT $2 OFFSET $3
    `

	return s.queryComments(ctx, query, visibleOnly, limit, offset)
}

func (s *PostgresStore) ListCommentsByArticle(ctx context.Context, articleID int64, visibleOnly bool, limit, offset int) ([]*models.Comment, error) {
	query := `
        SELECT ` + commentColumns + `
        FROM comments
        WHERE article_id = $1 AND ($2 = FALSE OR visible = TRUE)
        ORDER BY created_at ASC
        LIMIT $3 OFFSET $4
    `

	return s.queryComments(ctx, query, articleID, visibleOnly, limit, offset)
}

func (s *PostgresStore) queryComments(ctx context.Context, query string, args ...interface{}) ([]*models.Comment, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var comments []*models.Comment
	for rows.Next() {
		comment, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		comments = append(comments, comment)
	}

	return comments, rows.Err()
}

// UpdateComment persists message and visible. UUID and slug stay as
// written at creation.
func (s *PostgresStore) UpdateComment(ctx context.Context, comment *models.Comment) error {
	if err := comment.BeforeUpdate(); err != nil {
		return err
	}

	query := `
        UPDATE comments SET
            message = $1,
            visible = $2,
            updated_at = $3
        WHERE id = $4
    `

	result, err := s.db.ExecContext(ctx, query,
		comment.Message,
		comment.Visible,
		comment.UpdatedAt,
		comment.ID,
	)

	if err != nil {
		return err
	}

	return requireRows(result)
}

func (s *PostgresStore) DeleteComment(ctx context.Context, ref EntityRef) error {
	comment, err := s.GetComment(ctx, ref)
	if err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `DELETE FROM comments WHERE id = $1`, comment.ID)
	if err != nil {
		return err
	}
	return requireRows(result)
}
