package middleware

import (
	"errors"
	"log/slog"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/taskboard-api/internal/constants"
	apierrors "github.com/yukikurage/taskboard-api/internal/errors"
	"github.com/yukikurage/taskboard-api/internal/services"
	"github.com/yukikurage/taskboard-api/internal/session"
)

// LoadSession resolves the cookie session into a *session.Session for the
// request. A cookie pointing at a user that no longer exists is dropped.
func LoadSession(authService *services.AuthService, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := session.New()
		c.Set(constants.ContextKeySession, sess)

		cookie := sessions.Default(c)
		userID, ok := cookie.Get(constants.ContextKeyUserID).(string)
		if !ok || userID == "" {
			c.Next()
			return
		}

		user, err := authService.GetUser(c.Request.Context(), userID)
		if err != nil {
			if !errors.Is(err, services.ErrUserNotFound) {
				logger.Error("failed to load session user", "user_id", userID, "error", err)
				apierrors.ServiceUnavailable(c, "")
				c.Abort()
				return
			}
			cookie.Delete(constants.ContextKeyUserID)
			if err := cookie.Save(); err != nil {
				logger.Warn("failed to drop stale session", "error", err)
			}
			c.Next()
			return
		}

		sess.SetCurrent(*user)
		c.Set(constants.ContextKeyUserID, user.ID)
		c.Next()
	}
}

// RequireAuth rejects requests without a logged-in user
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := GetSession(c).Current(); !ok {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}
		c.Next()
	}
}

// GetSession returns the request session. Without LoadSession it is empty.
func GetSession(c *gin.Context) *session.Session {
	if value, exists := c.Get(constants.ContextKeySession); exists {
		if sess, ok := value.(*session.Session); ok {
			return sess
		}
	}
	sess := session.New()
	c.Set(constants.ContextKeySession, sess)
	return sess
}

// GetUserID retrieves the current user ID from context
func GetUserID(c *gin.Context) (string, bool) {
	user, ok := GetSession(c).Current()
	if !ok {
		return "", false
	}
	return user.ID, true
}
