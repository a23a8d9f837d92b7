package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wstorey/web615-lab9/internal/models"
)

// The unique constraint on the slug column is a backstop the public API
// cannot reach (CreateArticle always mints a fresh identifier), so this
// test replays a slug with a raw insert.
func TestDuplicateSlugReturnsDuplicateIdentifier(t *testing.T) {
	store, err := NewSQLiteStore(":memory:")
	require.NoError(t, err)
	require.NoError(t, store.Initialize())
	t.Cleanup(func() { store.Close() })

	ctx := context.Background()

	user := models.NewUser("author@example.com")
	user.PasswordHash = "hash"
	require.NoError(t, store.CreateUser(ctx, user))

	article := models.NewArticle("title", "content", "", user.ID)
	require.NoError(t, store.CreateArticle(ctx, article))

	query := `
        INSERT INTO articles (title, content, uuid, slug, user_id, created_at, updated_at)
        VALUES (?, ?, ?, ?, ?, ?, ?)
    `
	_, err = store.db.ExecContext(ctx, query,
		"dup", "dup", models.NewIdentifier(models.KindArticle), article.Slug,
		user.ID, article.CreatedAt, article.UpdatedAt,
	)

	require.Error(t, err)
	assert.True(t, sqliteIsUniqueViolation(err))
}
