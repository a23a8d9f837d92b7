package storage

import (
	"context"
	"strconv"

	"github.com/wstorey/web615-lab9/internal/models"
)

// EntityRef addresses an article or comment by numeric id or by slug.
// Slug is the preferred public-facing path (friendly URLs).
type EntityRef struct {
	ID   int64
	Slug string
}

// ParseRef interprets a URL path segment as an entity reference. Purely
// numeric segments are treated as ids, everything else as a slug.
func ParseRef(s string) EntityRef {
	if id, err := strconv.ParseInt(s, 10, 64); err == nil {
		return EntityRef{ID: id}
	}
	return EntityRef{Slug: s}
}

func RefFromID(id int64) EntityRef {
	return EntityRef{ID: id}
}

type Store interface {
	Initialize() error
	Close() error

	// User operations
	CreateUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, id int64) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserBySessionToken(ctx context.Context, token string) (*models.User, error)
	GetUserByRememberToken(ctx context.Context, token string) (*models.User, error)
	ListUsers(ctx context.Context, limit, offset int) ([]*models.User, error)
	UpdateUser(ctx context.Context, user *models.User) error
	DeleteUser(ctx context.Context, id int64) error

	// Article operations
	CreateArticle(ctx context.Context, article *models.Article) error
	GetArticle(ctx context.Context, ref EntityRef) (*models.Article, error)
	ListArticles(ctx context.Context, limit, offset int) ([]*models.Article, error)
	UpdateArticle(ctx context.Context, article *models.Article) error
	DeleteArticle(ctx context.Context, ref EntityRef) error

	// Comment operations
	CreateComment(ctx context.Context, comment *models.Comment) error
	GetComment(ctx context.Context, ref EntityRef) (*models.Comment, error)
	ListComments(ctx context.Context, visibleOnly bool, limit, offset int) ([]*models.Comment, error)
	ListCommentsByArticle(ctx context.Context, articleID int64, visibleOnly bool, limit, offset int) ([]*models.Comment, error)
	UpdateComment(ctx context.Context, comment *models.Comment) error
	DeleteComment(ctx context.Context, ref EntityRef) error
}
