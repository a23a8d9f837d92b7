package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/mattn/go-sqlite3"
	"github.com/wstorey/web615-lab9/internal/models"
)

type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dsn := dbPath
	if !strings.Contains(dsn, "?") {
		dsn += "?_fk=1"
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}

	// An in-memory database exists per connection; keep the pool at one
	// so every query sees the same schema.
	if strings.Contains(dbPath, ":memory:") {
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		return nil, err
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Initialize() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS users (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            email TEXT UNIQUE NOT NULL,
            password_hash TEXT NOT NULL,
            session_token TEXT,
            session_expires_at DATETIME,
            remember_token TEXT,
            sign_in_count INTEGER NOT NULL DEFAULT 0,
            current_sign_in_at DATETIME,
            last_sign_in_at DATETIME,
            last_seen_at DATETIME,
            created_at DATETIME NOT NULL,
            updated_at DATETIME NOT NULL
        )`,
		`CREATE TABLE IF NOT EXISTS articles (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            title TEXT NOT NULL,
            content TEXT NOT NULL,
            category TEXT,
            uuid TEXT UNIQUE NOT NULL,
            slug TEXT UNIQUE NOT NULL,
            user_id INTEGER REFERENCES users(id),
            created_at DATETIME NOT NULL,
            updated_at DATETIME NOT NULL
        )`,
		`CREATE TABLE IF NOT EXISTS comments (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            message TEXT NOT NULL,
            visible BOOLEAN NOT NULL DEFAULT 0,
            uuid TEXT UNIQUE NOT NULL,
            slug TEXT UNIQUE NOT NULL,
            article_id INTEGER REFERENCES articles(id) ON DELETE CASCADE,
            user_id INTEGER REFERENCES users(id),
            created_at DATETIME NOT NULL,
            updated_at DATETIME NOT NULL
        )`,
		`CREATE INDEX IF NOT EXISTS idx_articles_slug ON articles(slug)`,
		`CREATE INDEX IF NOT EXISTS idx_articles_user_id ON articles(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_comments_slug ON comments(slug)`,
		`CREATE INDEX IF NOT EXISTS idx_comments_article_id ON comments(article_id)`,
	}

	for _, query := range queries {
		if _, err := s.db.Exec(query); err != nil {
			return fmt.Errorf("error executing query %s: %w", query, err)
		}
	}

	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func sqliteIsUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	return errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
}

// User operations

func (s *SQLiteStore) CreateUser(ctx context.Context, user *models.User) error {
	if err := user.BeforeCreate(); err != nil {
		return err
	}

	query := `
        INSERT INTO users (email, password_hash, session_token, session_expires_at,
            remember_token, sign_in_count, current_sign_in_at, last_sign_in_at,
            last_seen_at, created_at, updated_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
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
		user.CreatedAt,
		user.UpdatedAt,
	)

	if sqliteIsUniqueViolation(err) {
		return ErrDuplicateIdentifier
	}

	if err != nil {
		return err
	}

	user.ID, err = result.LastInsertId()
	return err
}

func (s *SQLiteStore) GetUser(ctx context.Context, id int64) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = ?`
	return scanUser(s.db.QueryRowContext(ctx, query, id))
}

func (s *SQLiteStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = ?`
	return scanUser(s.db.QueryRowContext(ctx, query, email))
}

func (s *SQLiteStore) GetUserBySessionToken(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, ErrNotFound
	}
	query := `SELECT ` + userColumns + ` FROM users WHERE session_token = ?`
	return scanUser(s.db.QueryRowContext(ctx, query, token))
}

func (s *SQLiteStore) GetUserByRememberToken(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, ErrNotFound
	}
	query := `SELECT ` + userColumns + ` FROM users WHERE remember_token = ?`
	return scanUser(s.db.QueryRowContext(ctx, query, token))
}

func (s *SQLiteStore) ListUsers(ctx context.Context, limit, offset int) ([]*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY id LIMIT ? OFFSET ?`

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

func (s *SQLiteStore) UpdateUser(ctx context.Context, user *models.User) error {
	if err := user.BeforeUpdate(); err != nil {
		return err
	}

	query := `
        UPDATE users SET
            email = ?,
            password_hash = ?,
            session_token = ?,
            session_expires_at = ?,
            remember_token = ?,
            sign_in_count = ?,
            current_sign_in_at = ?,
            last_sign_in_at = ?,
            last_seen_at = ?,
            updated_at = ?
        WHERE id = ?
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

	if sqliteIsUniqueViolation(err) {
		return ErrDuplicateIdentifier
	}

	if err != nil {
		return err
	}

	return requireRows(result)
}

func (s *SQLiteStore) DeleteUser(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireRows(result)
}

// Article operations

func (s *SQLiteStore) CreateArticle(ctx context.Context, article *models.Article) error {
	if err := article.BeforeCreate(); err != nil {
		return err
	}

	query := `
        INSERT INTO articles (title, content, category, uuid, slug, user_id, created_at, updated_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?)
    `

	result, err := s.db.ExecContext(ctx, query,
		article.Title,
		article.Content,
		nullIfBlank(article.Category),
		article.UUID,
		article.Slug,
		article.UserID,
		article.CreatedAt,
		article.UpdatedAt,
	)

	if sqliteIsUniqueViolation(err) {
		return ErrDuplicateIdentifier
	}

	if err != nil {
		return err
	}

	article.ID, err = result.LastInsertId()
	return err
}

func (s *SQLiteStore) GetArticle(ctx context.Context, ref EntityRef) (*models.Article, error) {
	var query string
	var arg interface{}

	if ref.Slug != "" {
		query = `SELECT ` + articleColumns + ` FROM articles WHERE slug = ?`
		arg = ref.Slug
	} else {
		query = `SELECT ` + articleColumns + ` FROM articles WHERE id = ?`
		arg = ref.ID
	}

	return scanArticle(s.db.QueryRowContext(ctx, query, arg))
}

func (s *SQLiteStore) ListArticles(ctx context.Context, limit, offset int) ([]*models.Article, error) {
	query := `
        SELECT ` + articleColumns + `
        FROM articles
        ORDER BY created_at DESC
        LIMIT ? OFFSET ?
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

func (s *SQLiteStore) UpdateArticle(ctx context.Context, article *models.Article) error {
	if err := article.BeforeUpdate(); err != nil {
		return err
	}

	query := `
        UPDATE articles SET
            title = ?,
            content = ?,
            category = ?,
            updated_at = ?
        WHERE id = ?
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

func (s *SQLiteStore) DeleteArticle(ctx context.Context, ref EntityRef) error {
	article, err := s.GetArticle(ctx, ref)
	if err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `DELETE FROM articles WHERE id = ?`, article.ID)
	if err != nil {
		return err
	}
	return requireRows(result)
}

// Comment operations

func (s *SQLiteStore) CreateComment(ctx context.Context, comment *models.Comment) error {
	if err := comment.BeforeCreate(); err != nil {
		return err
	}

	query := `
        INSERT INTO comments (message, visible, uuid, slug, article_id, user_id, created_at, updated_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?)
    `

	result, err := s.db.ExecContext(ctx, query,
		comment.Message,
		comment.Visible,
		comment.UUID,
		comment.Slug,
		comment.ArticleID,
		comment.UserID,
		comment.CreatedAt,
		comment.UpdatedAt,
	)

	if sqliteIsUniqueViolation(err) {
		return ErrDuplicateIdentifier
	}

	if err != nil {
		return err
	}

	comment.ID, err = result.LastInsertId()
	return err
}

func (s *SQLiteStore) GetComment(ctx context.Context, ref EntityRef) (*models.Comment, error) {
	var query string
	var arg interface{}

	if ref.Slug != "" {
		query = `SELECT ` + commentColumns + ` FROM comments WHERE slug = ?`
		arg = ref.Slug
	} else {
		query = `SELECT ` + commentColumns + ` FROM comments WHERE id = ?`
		arg = ref.ID
	}

	return scanComment(s.db.QueryRowContext(ctx, query, arg))
}

func (s *SQLiteStore) ListComments(ctx context.Context, visibleOnly bool, limit, offset int) ([]*models.Comment, error) {
	query := `
        SELECT ` + commentColumns + `
        FROM comments
        WHERE (? = 0 OR visible = 1)
        ORDER BY created_at DESC
        LIMIT ? OFFSET ?
    `

	return s.queryComments(ctx, query, visibleOnly, limit, offset)
}

func (s *SQLiteStore) ListCommentsByArticle(ctx context.Context, articleID int64, visibleOnly bool, limit, offset int) ([]*models.Comment, error) {
	query := `
        SELECT ` + commentColumns + `
        FROM comments
        WHERE article_id = ? AND (? = 0 OR visible = 1)
        ORDER BY created_at ASC
        LIMIT ? OFFSET ?
    `

	return s.queryComments(ctx, query, articleID, visibleOnly, limit, offset)
}

func (s *SQLiteStore) queryComments(ctx context.Context, query string, args ...interface{}) ([]*models.Comment, error) {
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

func (s *SQLiteStore) UpdateComment(ctx context.Context, comment *models.Comment) error {
	if err := comment.BeforeUpdate(); err != nil {
		return err
	}

	query := `
        UPDATE comments SET
            message = ?,
            visible = ?,
            updated_at = ?
        WHERE id = ?
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

func (s *SQLiteStore) DeleteComment(ctx context.Context, ref EntityRef) error {
	comment, err := s.GetComment(ctx, ref)
	if err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `DELETE FROM comments WHERE id = ?`, comment.ID)
	if err != nil {
		return err
	}
	return requireRows(result)
}
