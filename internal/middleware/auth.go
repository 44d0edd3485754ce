package middleware

import (
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"grc-center/internal/services"
)

const (
	SessionName = "grc_session"

	// SessionActorKey holds the name recorded as actor in the audit log.
	SessionActorKey = "actor"
)

// SessionActor returns the actor stored in the session, or "" when none is set.
func SessionActor(c *gin.Context) string {
	actor, _ := sessions.Default(c).Get(SessionActorKey).(string)
	return actor
}

// InjectActor puts the session's actor into the request context so every
// write made while serving the request is attributed to it. Requests without
// one are attributed to the anonymous actor.
func InjectActor() gin.HandlerFunc {
	return func(c *gin.Context) {
		if actor := SessionActor(c); actor != "" {
			c.Request = c.Request.WithContext(services.WithActor(c.Request.Context(), actor))
		}
		c.Next()
	}
}
