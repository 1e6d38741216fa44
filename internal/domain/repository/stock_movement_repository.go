package repository

import (
	"context"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// StockMovementRepository puerto del ledger append-only. No existe Update ni Delete.
type StockMovementRepository interface {
	// Append inserta los movimientos en la misma transacción del llamador.
	Append(ctx context.Context, movements []*entity.StockMovement) error
	// GetBalances suma las contribuciones firmadas por variante; una variante sin movimientos vale 0.
	GetBalances(ctx context.Context, tenantID string, variantIDs []string) (map[string]decimal.Decimal, error)
	ListByVariant(ctx context.Context, tenantID, variantID string, limit, offset int) ([]*entity.StockMovement, error)
	ListByReference(ctx context.Context, tenantID, referenceKind, referenceID string) ([]*entity.StockMovement, error)
}
