package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/wstorey/web615-lab9/internal/models"
)

const (
	sessionCookie  = "blog_session"
	rememberCookie = "blog_remember"
	userContextKey = "currentUser"
)

// CurrentUser resolves the session token (Authorization bearer header
// or session cookie) to a user and stashes it in the request context.
// Requests without a valid session proceed anonymously; an expired
// session falls back to the remember cookie when one is present.
func (h *Handler) CurrentUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			token, _ = c.Cookie(sessionCookie)
		}

		user, err := h.auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			if remember, cookieErr := c.Cookie(rememberCookie); cookieErr == nil {
				if refreshed, refreshErr := h.auth.Refresh(c.Request.Context(), remember); refreshErr == nil {
					user = refreshed
					h.setSessionCookie(c, refreshed.SessionToken)
				}
			}
		}

		if user != nil {
			c.Set(userContextKey, user)
		}

		c.Next()
	}
}

// RequireUser gates a route to logged-in users.
func RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if currentUser(c) == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
				Error: "You need to sign in or sign up before continuing.",
			})
			return
		}
		c.Next()
	}
}

func currentUser(c *gin.Context) *models.User {
	value, ok := c.Get(userContextKey)
	if !ok {
		return nil
	}
	user, _ := value.(*models.User)
	return user
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return ""
}

func (h *Handler) setSessionCookie(c *gin.Context, token string) {
	c.SetCookie(sessionCookie, token, int(h.auth.SessionTTL().Seconds()), "/", "", false, true)
}

func (h *Handler) setRememberCookie(c *gin.Context, token string) {
	c.SetCookie(rememberCookie, token, int(h.auth.RememberTTL().Seconds()), "/", "", false, true)
}

func (h *Handler) clearSessionCookies(c *gin.Context) {
	c.SetCookie(sessionCookie, "", -1, "/", "", false, true)
	c.SetCookie(rememberCookie, "", -1, "/", "", false, true)
}
