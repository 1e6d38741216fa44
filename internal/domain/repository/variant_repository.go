package repository

import (
	"context"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

// VariantRepository lectura de variantes de producto (el catálogo lo administra otro módulo).
type VariantRepository interface {
	// FindActiveIDs devuelve, de ids, los que pertenecen al tenant y no están borrados.
	FindActiveIDs(ctx context.Context, tenantID string, ids []string) (map[string]bool, error)
	// ListActive lista todas las variantes activas del tenant ordenadas por SKU.
	ListActive(ctx context.Context, tenantID string) ([]*entity.ProductVariant, error)
}
