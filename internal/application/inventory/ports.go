package inventory

import (
	"context"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

// Repos repositorios atados a una misma transacción.
type Repos struct {
	Movements   repository.StockMovementRepository
	Variants    repository.VariantRepository
	Guard       repository.TenantGuardRepository
	Receivings  repository.ReceivingRepository
	Adjustments repository.AdjustmentRepository
	Opnames     repository.OpnameRepository
}

// TxRunner ejecuta fn dentro de una transacción de BD con repositorios atados a esa tx.
// Commit si fn devuelve nil, Rollback en cualquier otro caso: nunca queda un estado parcial.
type TxRunner interface {
	Run(ctx context.Context, fn func(repos Repos) error) error
}

// AuditSink colaborador externo de auditoría. Emit no debe bloquear ni fallar la operación de negocio.
type AuditSink interface {
	Emit(ctx context.Context, event entity.AuditEvent)
}

// NopAuditSink descarta los eventos.
type NopAuditSink struct{}

func (NopAuditSink) Emit(context.Context, entity.AuditEvent) {}
