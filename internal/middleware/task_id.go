package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/taskboard-api/internal/constants"
	apierrors "github.com/yukikurage/taskboard-api/internal/errors"
)

// RequireTaskID rejects a blank :id path parameter. Ids are opaque: anything
// else is passed on and a missing task is reported by the store.
func RequireTaskID() gin.HandlerFunc {
	return func(c *gin.Context) {
		taskID := c.Param("id")
		if strings.TrimSpace(taskID) == "" {
			apierrors.BadRequest(c, "Invalid task ID")
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyTaskID, taskID)
		c.Next()
	}
}

// GetTaskID returns the id stored by RequireTaskID, falling back to the path parameter.
func GetTaskID(c *gin.Context) string {
	if taskID := c.GetString(constants.ContextKeyTaskID); taskID != "" {
		return taskID
	}
	return c.Param("id")
}
