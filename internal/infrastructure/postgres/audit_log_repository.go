package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

var _ repository.AuditLogRepository = (*AuditLogRepo)(nil)

// AuditLogRepo persiste eventos de auditoría en activity_logs.
type AuditLogRepo struct {
	q Querier
}

// NewAuditLogRepository construye el adaptador (normalmente con el pool: la auditoría va fuera de la tx de negocio).
func NewAuditLogRepository(q Querier) *AuditLogRepo {
	return &AuditLogRepo{q: q}
}

// Insert guarda el evento; completa ID y CreatedAt si vienen vacíos.
func (r *AuditLogRepo) Insert(ctx context.Context, event *entity.AuditEvent) error {
	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	metadata := event.Metadata
	if metadata == nil {
		metadata = map[string]any{}
	}
	raw, err := json.Marshal(metadata)
	if err != nil {
		return fmt.Errorf("marshal audit metadata: %w", err)
	}
	_, err = r.q.Exec(ctx, `
		INSERT INTO activity_logs (id, tenant_id, actor_id, action, target_type, target_id, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, COALESCE($8, now()))`,
		event.ID, event.TenantID, event.ActorID, event.Action, event.TargetType, event.TargetID, raw, nullTime(event))
	if err != nil {
		return fmt.Errorf("insert activity log: %w", err)
	}
	return nil
}

func nullTime(event *entity.AuditEvent) any {
	if event.CreatedAt.IsZero() {
		return nil
	}
	return event.CreatedAt
}
