package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/wstorey/web615-lab9/internal/auth"
	"github.com/wstorey/web615-lab9/internal/models"
	"github.com/wstorey/web615-lab9/internal/render"
	"github.com/wstorey/web615-lab9/internal/storage"
)

const excerptLength = 200

type Handler struct {
	store storage.Store
	auth  *auth.Service
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type ValidationErrorResponse struct {
	Errors models.ValidationErrors `json:"errors"`
}

type PaginationResponse struct {
	Data       interface{} `json:"data"`
	Page       int         `json:"page"`
	Limit      int         `json:"limit"`
	TotalCount int         `json:"total_count,omitempty"`
}

func NewHandler(store storage.Store, authService *auth.Service) *Handler {
	return &Handler{store: store, auth: authService}
}

// Registration and session handlers

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Remember bool   `json:"remember"`
}

func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid registration data"})
		return
	}

	user, err := h.auth.Register(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		var validationErrs models.ValidationErrors
		if errors.As(err, &validationErrs) {
			c.JSON(http.StatusUnprocessableEntity, ValidationErrorResponse{Errors: validationErrs})
			return
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to create user"})
		return
	}

	c.JSON(http.StatusCreated, user)
}

func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid login data"})
		return
	}

	user, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Invalid Email or password."})
			return
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to sign in"})
		return
	}

	h.setSessionCookie(c, user.SessionToken)
	if req.Remember {
		h.setRememberCookie(c, user.RememberToken)
	}

	c.JSON(http.StatusOK, gin.H{
		"user":  user,
		"token": user.SessionToken,
	})
}

func (h *Handler) Logout(c *gin.Context) {
	token := bearerToken(c)
	if token == "" {
		token, _ = c.Cookie(sessionCookie)
	}

	if token != "" {
		if err := h.auth.Logout(c.Request.Context(), token); err != nil {
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to sign out"})
			return
		}
	}

	h.clearSessionCookies(c)
	c.JSON(http.StatusOK, gin.H{"status": "signed_out"})
}

func (h *Handler) Me(c *gin.Context) {
	c.JSON(http.StatusOK, currentUser(c))
}

// Article handlers

type articleRequest struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	Category string `json:"category"`
}

type articleSummary struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Category  string    `json:"category,omitempty"`
	Slug      string    `json:"slug"`
	Excerpt   string    `json:"excerpt"`
	UserID    int64     `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (h *Handler) ListArticles(c *gin.Context) {
	page, limit := getPaginationParams(c)
	offset := (page - 1) * limit

	articles, err := h.store.ListArticles(c.Request.Context(), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to fetch articles"})
		return
	}

	summaries := make([]articleSummary, 0, len(articles))
	for _, article := range articles {
		summaries = append(summaries, articleSummary{
			ID:        article.ID,
			Title:     article.Title,
			Category:  article.Category,
			Slug:      article.Slug,
			Excerpt:   render.Excerpt(article.Content, excerptLength),
			UserID:    article.UserID,
			CreatedAt: article.CreatedAt,
			UpdatedAt: article.UpdatedAt,
		})
	}

	c.JSON(http.StatusOK, PaginationResponse{
		Data:  summaries,
		Page:  page,
		Limit: limit,
	})
}

func (h *Handler) GetArticle(c *gin.Context) {
	article, err := h.store.GetArticle(c.Request.Context(), storage.ParseRef(c.Param("ref")))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "The article you're looking for cannot be found"})
			return
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to fetch article"})
		return
	}

	c.JSON(http.StatusOK, article)
}

func (h *Handler) CreateArticle(c *gin.Context) {
	var req articleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid article data"})
		return
	}

	article := models.NewArticle(req.Title, req.Content, req.Category, currentUser(c).ID)

	if err := h.store.CreateArticle(c.Request.Context(), article); err != nil {
		if respondValidation(c, err) {
			return
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to create article"})
		return
	}

	c.JSON(http.StatusCreated, article)
}

// UpdateArticle re-validates and persists the editable fields. UUID and
// slug values in the payload have no field to bind to and are dropped.
func (h *Handler) UpdateArticle(c *gin.Context) {
	article, err := h.store.GetArticle(c.Request.Context(), storage.ParseRef(c.Param("ref")))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "The article you're looking for cannot be found"})
			return
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to fetch article"})
		return
	}

	var req articleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid article data"})
		return
	}

	article.Title = req.Title
	article.Content = req.Content
	article.Category = req.Category

	if err := h.store.UpdateArticle(c.Request.Context(), article); err != nil {
		if respondValidation(c, err) {
			return
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to update article"})
		return
	}

	c.JSON(http.StatusOK, article)
}

func (h *Handler) DeleteArticle(c *gin.Context) {
	err := h.store.DeleteArticle(c.Request.Context(), storage.ParseRef(c.Param("ref")))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "The article you're looking for cannot be found"})
			return
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to delete article"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

func (h *Handler) ListArticleComments(c *gin.Context) {
	article, err := h.store.GetArticle(c.Request.Context(), storage.ParseRef(c.Param("ref")))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "The article you're looking for cannot be found"})
			return
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to fetch article"})
		return
	}

	page, limit := getPaginationParams(c)
	offset := (page - 1) * limit

	// Anonymous readers only see moderated comments.
	visibleOnly := currentUser(c) == nil

	comments, err := h.store.ListCommentsByArticle(c.Request.Context(), article.ID, visibleOnly, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to fetch comments"})
		return
	}

	if comments == nil {
		comments = []*models.Comment{}
	}

	c.JSON(http.StatusOK, PaginationResponse{
		Data:  comments,
		Page:  page,
		Limit: limit,
	})
}

// Comment handlers

type commentRequest struct {
	Message   string `json:"message"`
	Visible   bool   `json:"visible"`
	ArticleID int64  `json:"article_id"`
}

func (h *Handler) ListComments(c *gin.Context) {
	page, limit := getPaginationParams(c)
	offset := (page - 1) * limit

	visibleOnly := currentUser(c) == nil

	comments, err := h.store.ListComments(c.Request.Context(), visibleOnly, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to fetch comments"})
		return
	}

	if comments == nil {
		comments = []*models.Comment{}
	}

	c.JSON(http.StatusOK, PaginationResponse{
		Data:  comments,
		Page:  page,
		Limit: limit,
	})
}

func (h *Handler) GetComment(c *gin.Context) {
	comment, err := h.store.GetComment(c.Request.Context(), storage.ParseRef(c.Param("ref")))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "The comment you're looking for cannot be found"})
			return
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to fetch comment"})
		return
	}

	c.JSON(http.StatusOK, comment)
}

func (h *Handler) CreateComment(c *gin.Context) {
	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid comment data"})
		return
	}

	// The comment must reference a live article.
	if _, err := h.store.GetArticle(c.Request.Context(), storage.RefFromID(req.ArticleID)); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			errs := models.ValidationErrors{}
			errs.Add("article", "must exist")
			c.JSON(http.StatusUnprocessableEntity, ValidationErrorResponse{Errors: errs})
			return
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to fetch article"})
		return
	}

	comment := models.NewComment(req.Message, req.ArticleID, currentUser(c).ID)
	comment.Visible = req.Visible

	if err := h.store.CreateComment(c.Request.Context(), comment); err != nil {
		if respondValidation(c, err) {
			return
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to create comment"})
		return
	}

	c.JSON(http.StatusCreated, comment)
}

func (h *Handler) UpdateComment(c *gin.Context) {
	comment, err := h.store.GetComment(c.Request.Context(), storage.ParseRef(c.Param("ref")))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "The comment you're looking for cannot be found"})
			return
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to fetch comment"})
		return
	}

	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid comment data"})
		return
	}

	comment.Message = req.Message
	comment.Visible = req.Visible

	if err := h.store.UpdateComment(c.Request.Context(), comment); err != nil {
		if respondValidation(c, err) {
			return
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to update comment"})
		return
	}

	c.JSON(http.StatusOK, comment)
}

func (h *Handler) DeleteComment(c *gin.Context) {
	err := h.store.DeleteComment(c.Request.Context(), storage.ParseRef(c.Param("ref")))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "The comment you're looking for cannot be found"})
			return
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to delete comment"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// Utility functions

func respondValidation(c *gin.Context, err error) bool {
	var validationErrs models.ValidationErrors
	if errors.As(err, &validationErrs) {
		c.JSON(http.StatusUnprocessableEntity, ValidationErrorResponse{Errors: validationErrs})
		return true
	}
	return false
}

func getPaginationParams(c *gin.Context) (page, limit int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "10"))

	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}

	return page, limit
}
