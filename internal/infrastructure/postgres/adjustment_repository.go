package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

var _ repository.AdjustmentRepository = (*AdjustmentRepo)(nil)

// AdjustmentRepo ajustes de stock y sus ítems sobre PostgreSQL.
type AdjustmentRepo struct {
	q Querier
}

// NewAdjustmentRepository construye el adaptador. Pasar pool o tx (Querier).
func NewAdjustmentRepository(q Querier) *AdjustmentRepo {
	return &AdjustmentRepo{q: q}
}

const adjustmentColumns = `id, tenant_id, reason, note, created_by, created_at`

// Create inserta cabecera e ítems.
func (r *AdjustmentRepo) Create(ctx context.Context, adj *entity.StockAdjustment) error {
	batch := &pgx.Batch{}
	batch.Queue(`INSERT INTO stock_adjustments (`+adjustmentColumns+`) VALUES ($1, $2, $3, $4, $5, $6)`,
		adj.ID, adj.TenantID, adj.Reason, adj.Note, adj.CreatedBy, adj.CreatedAt)
	for _, it := range adj.Items {
		batch.Queue(`INSERT INTO stock_adjustment_items (id, adjustment_id, tenant_id, variant_id, qty_diff, note) VALUES ($1, $2, $3, $4, $5, $6)`,
			it.ID, adj.ID, adj.TenantID, it.VariantID, it.QtyDiff, it.Note)
	}
	br := r.q.SendBatch(ctx, batch)
	defer br.Close()
	for i := 0; i < batch.Len(); i++ {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("insert adjustment: %w", err)
		}
	}
	return nil
}

// GetByID obtiene el ajuste con sus ítems; nil si no existe para el tenant.
func (r *AdjustmentRepo) GetByID(ctx context.Context, tenantID, id string) (*entity.StockAdjustment, error) {
	var a entity.StockAdjustment
	err := r.q.QueryRow(ctx, `SELECT `+adjustmentColumns+` FROM stock_adjustments WHERE tenant_id = $1 AND id = $2`, tenantID, id).
		Scan(&a.ID, &a.TenantID, &a.Reason, &a.Note, &a.CreatedBy, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get adjustment: %w", err)
	}
	if err := r.loadItems(ctx, []*entity.StockAdjustment{&a}); err != nil {
		return nil, err
	}
	return &a, nil
}

// List lista ajustes del tenant, más recientes primero.
func (r *AdjustmentRepo) List(ctx context.Context, tenantID string, limit, offset int) ([]*entity.StockAdjustment, error) {
	rows, err := r.q.Query(ctx, `SELECT `+adjustmentColumns+` FROM stock_adjustments
		WHERE tenant_id = $1 ORDER BY created_at DESC, id DESC LIMIT $2 OFFSET $3`, tenantID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list adjustments: %w", err)
	}
	defer rows.Close()
	var list []*entity.StockAdjustment
	for rows.Next() {
		var a entity.StockAdjustment
		if err := rows.Scan(&a.ID, &a.TenantID, &a.Reason, &a.Note, &a.CreatedBy, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan adjustment: %w", err)
		}
		list = append(list, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.loadItems(ctx, list); err != nil {
		return nil, err
	}
	return list, nil
}

func (r *AdjustmentRepo) loadItems(ctx context.Context, adjustments []*entity.StockAdjustment) error {
	if len(adjustments) == 0 {
		return nil
	}
	byID := make(map[string]*entity.StockAdjustment, len(adjustments))
	ids := make([]string, 0, len(adjustments))
	for _, a := range adjustments {
		byID[a.ID] = a
		ids = append(ids, a.ID)
	}
	rows, err := r.q.Query(ctx, `
		SELECT id, adjustment_id, tenant_id, variant_id, qty_diff, note
		FROM stock_adjustment_items WHERE adjustment_id = ANY($1::uuid[])
		ORDER BY adjustment_id, variant_id`, ids)
	if err != nil {
		return fmt.Errorf("list adjustment items: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var it entity.StockAdjustmentItem
		if err := rows.Scan(&it.ID, &it.AdjustmentID, &it.TenantID, &it.VariantID, &it.QtyDiff, &it.Note); err != nil {
			return fmt.Errorf("scan adjustment item: %w", err)
		}
		if a := byID[it.AdjustmentID]; a != nil {
			a.Items = append(a.Items, it)
		}
	}
	return rows.Err()
}
