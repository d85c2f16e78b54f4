package middleware

import (
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/xp-task-api/internal/constants"
	apierrors "github.com/yukikurage/xp-task-api/internal/errors"
)

// StartSession replaces whatever the session held with userID.
func StartSession(c *gin.Context, userID uint64) error {
	session := sessions.Default(c)
	session.Clear()
	session.Set(constants.SessionKeyUserID, userID)
	return session.Save()
}

// EndSession forgets the signed-in user.
func EndSession(c *gin.Context) error {
	session := sessions.Default(c)
	session.Clear()
	session.Options(sessions.Options{Path: "/", MaxAge: -1})
	return session.Save()
}

// RequireAuth rejects requests without a valid session and exposes the user
// id to handlers through GetUserID.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := toUserID(sessions.Default(c).Get(constants.SessionKeyUserID))
		if !ok {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyUserID, userID)
		c.Next()
	}
}

// GetUserID returns the id RequireAuth stored on the context.
func GetUserID(c *gin.Context) (uint64, bool) {
	v, exists := c.Get(constants.ContextKeyUserID)
	if !exists {
		return 0, false
	}
	return toUserID(v)
}

// toUserID accepts the integer types a session codec may hand back.
func toUserID(v any) (uint64, bool) {
	switch id := v.(type) {
	case uint64:
		return id, id > 0
	case uint:
		return uint64(id), id > 0
	case int64:
		return uint64(id), id > 0
	case int:
		return uint64(id), id > 0
	default:
		return 0, false
	}
}
