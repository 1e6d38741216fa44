package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

var _ repository.VariantRepository = (*VariantRepo)(nil)

// VariantRepo lectura de product_variants.
type VariantRepo struct {
	q Querier
}

// NewVariantRepository construye el adaptador. Pasar pool o tx (Querier).
func NewVariantRepository(q Querier) *VariantRepo {
	return &VariantRepo{q: q}
}

// FindActiveIDs devuelve los ids del tenant que existen y no están borrados.
func (r *VariantRepo) FindActiveIDs(ctx context.Context, tenantID string, ids []string) (map[string]bool, error) {
	out := make(map[string]bool, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := r.q.Query(ctx, `
		SELECT id FROM product_variants
		WHERE tenant_id = $1 AND id = ANY($2) AND deleted_at IS NULL`, tenantID, ids)
	if err != nil {
		return nil, fmt.Errorf("find active variants: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan variant id: %w", err)
		}
		out[id] = true
	}
	return out, rows.Err()
}

// ListActive lista las variantes activas del tenant ordenadas por SKU.
func (r *VariantRepo) ListActive(ctx context.Context, tenantID string) ([]*entity.ProductVariant, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, tenant_id, product_id, sku, name, created_at, deleted_at
		FROM product_variants
		WHERE tenant_id = $1 AND deleted_at IS NULL
		ORDER BY sku`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("list active variants: %w", err)
	}
	defer rows.Close()
	var list []*entity.ProductVariant
	for rows.Next() {
		var v entity.ProductVariant
		if err := rows.Scan(&v.ID, &v.TenantID, &v.ProductID, &v.SKU, &v.Name, &v.CreatedAt, &v.DeletedAt); err != nil {
			return nil, fmt.Errorf("scan variant: %w", err)
		}
		list = append(list, &v)
	}
	return list, rows.Err()
}
