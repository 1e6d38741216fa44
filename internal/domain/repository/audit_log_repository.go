package repository

import (
	"context"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

// AuditLogRepository destino persistente de los eventos de auditoría.
type AuditLogRepository interface {
	Insert(ctx context.Context, event *entity.AuditEvent) error
}
