package repository

import (
	"context"
	"time"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

// OpnameRepository persistencia de conteos físicos.
type OpnameRepository interface {
	// Create inserta cabecera e ítems. Si ya hay uno IN_PROGRESS para el tenant devuelve domain.ErrOpnameInProgress.
	Create(ctx context.Context, opname *entity.StockOpname) error
	// GetByID devuelve la cabecera con ítems o nil.
	GetByID(ctx context.Context, tenantID, id string) (*entity.StockOpname, error)
	// GetHeaderForUpdate devuelve solo la cabecera bloqueando la fila hasta el fin de la transacción.
	GetHeaderForUpdate(ctx context.Context, tenantID, id string) (*entity.StockOpname, error)
	// GetInProgress devuelve la cabecera IN_PROGRESS del tenant o nil.
	GetInProgress(ctx context.Context, tenantID string) (*entity.StockOpname, error)
	GetItem(ctx context.Context, tenantID, opnameID, itemID string) (*entity.StockOpnameItem, error)
	UpdateItemCount(ctx context.Context, item *entity.StockOpnameItem) error
	UpdateItemDiffs(ctx context.Context, items []entity.StockOpnameItem) error
	// TransitionStatus cambia el estado solo si el actual es from. false = no se actualizó.
	TransitionStatus(ctx context.Context, tenantID, id, from, to, actorID string, at time.Time) (bool, error)
	List(ctx context.Context, tenantID, status string, limit, offset int) ([]*entity.StockOpname, error)
}
