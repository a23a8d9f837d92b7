package storage_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wstorey/web615-lab9/internal/models"
	"github.com/wstorey/web615-lab9/internal/storage"
)

func setupTestStore(t *testing.T) *storage.SQLiteStore {
	t.Helper()

	store, err := storage.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	require.NoError(t, store.Initialize())

	t.Cleanup(func() { store.Close() })
	return store
}

func createTestUser(t *testing.T, store storage.Store, email string) *models.User {
	t.Helper()

	user := models.NewUser(email)
	user.PasswordHash = "not-a-real-hash"
	require.NoError(t, store.CreateUser(context.Background(), user))
	return user
}

func createTestArticle(t *testing.T, store storage.Store, userID int64) *models.Article {
	t.Helper()

	article := models.NewArticle("title", "content", "general", userID)
	require.NoError(t, store.CreateArticle(context.Background(), article))
	return article
}

func TestCreateArticleStampsIdentifierAndSlug(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	user := createTestUser(t, store, "author@example.com")

	article := models.NewArticle("T", "C", "", user.ID)
	require.NoError(t, store.CreateArticle(ctx, article))

	assert.NotZero(t, article.ID)
	assert.True(t, strings.HasPrefix(article.Slug, "Article-"))
	assert.Equal(t, article.UUID, article.Slug)

	// Retrievable by slug and by id, with identical identifiers.
	bySlug, err := store.GetArticle(ctx, storage.EntityRef{Slug: article.Slug})
	require.NoError(t, err)
	byID, err := store.GetArticle(ctx, storage.RefFromID(article.ID))
	require.NoError(t, err)

	assert.Equal(t, bySlug.ID, byID.ID)
	assert.Equal(t, article.UUID, bySlug.UUID)
}

func TestCreateArticleBlankFieldsDoesNotPersist(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	user := createTestUser(t, store, "author@example.com")

	article := models.NewArticle("", "content", "", user.ID)
	err := store.CreateArticle(ctx, article)

	var errs models.ValidationErrors
	require.ErrorAs(t, err, &errs)
	assert.Equal(t, []string{"can't be blank"}, errs["title"])

	articles, err := store.ListArticles(ctx, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, articles, "validation failure must not persist a row")
}

func TestGetArticleNotFound(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	_, err := store.GetArticle(ctx, storage.EntityRef{Slug: "Article-does-not-exist"})
	assert.ErrorIs(t, err, storage.ErrNotFound)

	_, err = store.GetArticle(ctx, storage.RefFromID(99999))
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestUpdateArticleKeepsIdentifierAndSlug(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	user := createTestUser(t, store, "author@example.com")
	article := createTestArticle(t, store, user.ID)

	originalUUID := article.UUID
	originalSlug := article.Slug

	// A caller mutating these fields must not change the stored values.
	article.Title = "new title"
	article.UUID = "Article-forged"
	article.Slug = "Article-forged"
	require.NoError(t, store.UpdateArticle(ctx, article))

	stored, err := store.GetArticle(ctx, storage.RefFromID(article.ID))
	require.NoError(t, err)
	assert.Equal(t, "new title", stored.Title)
	assert.Equal(t, originalUUID, stored.UUID)
	assert.Equal(t, originalSlug, stored.Slug)

	// The original slug still resolves.
	_, err = store.GetArticle(ctx, storage.EntityRef{Slug: originalSlug})
	assert.NoError(t, err)
}

func TestUpdateArticleBlankFieldRejected(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	user := createTestUser(t, store, "author@example.com")
	article := createTestArticle(t, store, user.ID)

	article.Content = ""
	err := store.UpdateArticle(ctx, article)

	var errs models.ValidationErrors
	require.ErrorAs(t, err, &errs)

	stored, getErr := store.GetArticle(ctx, storage.RefFromID(article.ID))
	require.NoError(t, getErr)
	assert.Equal(t, "content", stored.Content, "failed update must leave the row unchanged")
}

func TestDeleteArticleCascadesComments(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	user := createTestUser(t, store, "author@example.com")
	article := createTestArticle(t, store, user.ID)

	comment := models.NewComment("hello", article.ID, user.ID)
	require.NoError(t, store.CreateComment(ctx, comment))

	require.NoError(t, store.DeleteArticle(ctx, storage.RefFromID(article.ID)))

	_, err := store.GetArticle(ctx, storage.RefFromID(article.ID))
	assert.ErrorIs(t, err, storage.ErrNotFound)

	_, err = store.GetComment(ctx, storage.RefFromID(comment.ID))
	assert.ErrorIs(t, err, storage.ErrNotFound, "comments must not outlive their article")
}

func TestCommentCreateAndSlugLookup(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	user := createTestUser(t, store, "commenter@example.com")
	article := createTestArticle(t, store, user.ID)

	comment := models.NewComment("first!", article.ID, user.ID)
	require.NoError(t, store.CreateComment(ctx, comment))

	assert.True(t, strings.HasPrefix(comment.Slug, "Comment-"))

	stored, err := store.GetComment(ctx, storage.EntityRef{Slug: comment.Slug})
	require.NoError(t, err)
	assert.Equal(t, "first!", stored.Message)
	assert.Equal(t, article.ID, stored.ArticleID)
}

func TestCommentBlankMessageDoesNotPersist(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	user := createTestUser(t, store, "commenter@example.com")
	article := createTestArticle(t, store, user.ID)

	comment := models.NewComment("", article.ID, user.ID)
	err := store.CreateComment(ctx, comment)

	var errs models.ValidationErrors
	require.ErrorAs(t, err, &errs)
	assert.Equal(t, models.ValidationErrors{"message": {"can't be blank"}}, errs)

	comments, err := store.ListComments(ctx, false, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, comments)
}

func TestUpdateCommentBlankMessageKeepsOriginal(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	user := createTestUser(t, store, "commenter@example.com")
	article := createTestArticle(t, store, user.ID)

	comment := models.NewComment("hello", article.ID, user.ID)
	require.NoError(t, store.CreateComment(ctx, comment))

	comment.Message = ""
	err := store.UpdateComment(ctx, comment)

	var errs models.ValidationErrors
	require.ErrorAs(t, err, &errs)

	stored, getErr := store.GetComment(ctx, storage.RefFromID(comment.ID))
	require.NoError(t, getErr)
	assert.Equal(t, "hello", stored.Message)
}

func TestListCommentsVisibilityFilter(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	user := createTestUser(t, store, "commenter@example.com")
	article := createTestArticle(t, store, user.ID)

	hidden := models.NewComment("hidden", article.ID, user.ID)
	require.NoError(t, store.CreateComment(ctx, hidden))

	visible := models.NewComment("visible", article.ID, user.ID)
	visible.Visible = true
	require.NoError(t, store.CreateComment(ctx, visible))

	all, err := store.ListCommentsByArticle(ctx, article.ID, false, 10, 0)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	moderated, err := store.ListCommentsByArticle(ctx, article.ID, true, 10, 0)
	require.NoError(t, err)
	require.Len(t, moderated, 1)
	assert.Equal(t, "visible", moderated[0].Message)
}

func TestUserEmailUniqueness(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	createTestUser(t, store, "a@x.com")

	dup := models.NewUser("a@x.com")
	dup.PasswordHash = "hash"
	err := store.CreateUser(ctx, dup)
	assert.ErrorIs(t, err, storage.ErrDuplicateIdentifier)
}

func TestGetUserBySessionToken(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	user := createTestUser(t, store, "a@x.com")

	_, err := store.GetUserBySessionToken(ctx, "")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	user.SessionToken = "token-123"
	require.NoError(t, store.UpdateUser(ctx, user))

	found, err := store.GetUserBySessionToken(ctx, "token-123")
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.ID)
}

func TestParseRef(t *testing.T) {
	assert.Equal(t, storage.EntityRef{ID: 42}, storage.ParseRef("42"))
	assert.Equal(t, storage.EntityRef{Slug: "Article-abc"}, storage.ParseRef("Article-abc"))
}
