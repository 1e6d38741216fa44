package repository

import (
	"context"
	"time"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

// ReceivingRepository persistencia de recepciones y sus líneas.
type ReceivingRepository interface {
	Create(ctx context.Context, receiving *entity.Receiving) error
	// GetByID devuelve la recepción con sus líneas o nil si no existe para el tenant.
	GetByID(ctx context.Context, tenantID, id string) (*entity.Receiving, error)
	// TransitionStatus actualiza el estado solo si el actual es from. false = no se actualizó.
	TransitionStatus(ctx context.Context, tenantID, id, from, to, actorID string, at time.Time) (bool, error)
	List(ctx context.Context, tenantID, status string, limit, offset int) ([]*entity.Receiving, error)
}
