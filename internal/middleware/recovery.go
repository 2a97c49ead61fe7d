package middleware

import (
	"log/slog"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	apierrors "github.com/yukikurage/taskboard-api/internal/errors"
)

func RecoveryWithLog(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				logger.Error("panic recovered", "error", err, "path", c.Request.URL.Path, "stack", string(debug.Stack()))
				apierrors.InternalError(c, "")
				c.Abort()
			}
		}()
		c.Next()
	}
}
