package repository

import (
	"context"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

// AdjustmentRepository persistencia de ajustes (inmutables tras crearse).
type AdjustmentRepository interface {
	Create(ctx context.Context, adjustment *entity.StockAdjustment) error
	GetByID(ctx context.Context, tenantID, id string) (*entity.StockAdjustment, error)
	List(ctx context.Context, tenantID string, limit, offset int) ([]*entity.StockAdjustment, error)
}
