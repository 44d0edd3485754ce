package services

import (
	"context"
	"fmt"

	"grc-center/internal/database"
	"grc-center/internal/models"
)

type ctxKey int

const (
	actorKey ctxKey = iota
	requestIDKey
)

// WithActor attaches the acting user's name to ctx for audit entries.
func WithActor(ctx context.Context, actor string) context.Context {
	return context.WithValue(ctx, actorKey, actor)
}

// ActorFrom returns the actor set by WithActor, or models.AnonymousActor.
func ActorFrom(ctx context.Context) string {
	if actor, ok := ctx.Value(actorKey).(string); ok && actor != "" {
		return actor
	}
	return models.AnonymousActor
}

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// Audit actions.
const (
	ActionCreate    = "create"
	ActionUpdate    = "update"
	ActionDelete    = "delete"
	ActionImport    = "import"
	ActionRecompute = "recompute"
	ActionComplete  = "complete"
	ActionVerify    = "verify"
	ActionUpload    = "upload"
	ActionInit      = "initialize"
)

// audit appends an entry through tx, which may be the Service's store or a
// transaction-bound one.
func audit(ctx context.Context, tx *database.Store, entity, entityID, action, format string, args ...any) error {
	entry := &models.AuditLog{
		Actor:     ActorFrom(ctx),
		RequestID: RequestIDFrom(ctx),
		Entity:    entity,
		EntityID:  entityID,
		Action:    action,
		Details:   fmt.Sprintf(format, args...),
	}
	if err := tx.RecordAudit(ctx, entry); err != nil {
		return fmt.Errorf("record audit %s %s: %w", entity, action, err)
	}
	return nil
}

func (s *Service) ListAudit(ctx context.Context, f database.AuditFilter) ([]models.AuditLog, error) {
	f.Page = limitOrDefault(f.Page)
	return s.store.ListAudit(ctx, f)
}
