package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"grc-center/internal/middleware"
	"grc-center/internal/models"
	"grc-center/internal/services"
)

const maxActorLength = 100

type actorForm struct {
	Actor string `json:"actor" binding:"required"`
}

// CurrentActor reports who writes made in this session are attributed to.
func (h *Handlers) CurrentActor(c *gin.Context) {
	actor := middleware.SessionActor(c)
	if actor == "" {
		actor = models.AnonymousActor
	}
	c.JSON(http.StatusOK, gin.H{"actor": actor})
}

// SetActor attributes later writes in this session to the given name.
func (h *Handlers) SetActor(c *gin.Context) {
	var form actorForm
	if err := bindJSON(c, &form); err != nil {
		h.fail(c, err)
		return
	}
	actor := strings.TrimSpace(form.Actor)
	if actor == "" || len(actor) > maxActorLength {
		h.fail(c, &services.ValidationError{Field: "actor", Message: fmt.Sprintf("must be 1 to %d characters", maxActorLength)})
		return
	}

	sess := sessions.Default(c)
	sess.Set(middleware.SessionActorKey, actor)
	if err := sess.Save(); err != nil {
		h.fail(c, fmt.Errorf("save session: %w", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"actor": actor})
}

func (h *Handlers) ClearActor(c *gin.Context) {
	sess := sessions.Default(c)
	sess.Clear()
	if err := sess.Save(); err != nil {
		h.fail(c, fmt.Errorf("save session: %w", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"actor": models.AnonymousActor})
}
