package middleware

import (
	"log"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	apierrors "github.com/yukikurage/xp-task-api/internal/errors"
)

// RecoveryWithLog turns a panic into a 500 and logs it with the request id
func RecoveryWithLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				log.Printf("panic recovered [request %s] %s %s: %v\n%s",
					GetRequestID(c), c.Request.Method, c.Request.URL.Path, err, debug.Stack())
				apierrors.InternalError(c, "")
				c.Abort()
			}
		}()
		c.Next()
	}
}
