package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

// StockMovementRepo ledger append-only sobre PostgreSQL (usable con pool o tx).
type StockMovementRepo struct {
	q Querier
}

// NewStockMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockMovementRepository(q Querier) *StockMovementRepo {
	return &StockMovementRepo{q: q}
}

const movementColumns = `id, tenant_id, variant_id, kind, qty, reference_kind, reference_id, actor_id, created_at, effective_at`

// Append inserta todos los movimientos en un solo batch.
func (r *StockMovementRepo) Append(ctx context.Context, movements []*entity.StockMovement) error {
	if len(movements) == 0 {
		return nil
	}
	query := `INSERT INTO stock_movements (` + movementColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	batch := &pgx.Batch{}
	for _, m := range movements {
		batch.Queue(query, m.ID, m.TenantID, m.VariantID, m.Kind, m.Qty,
			m.ReferenceKind, m.ReferenceID, m.ActorID, m.CreatedAt, m.EffectiveAt)
	}
	br := r.q.SendBatch(ctx, batch)
	defer br.Close()
	for range movements {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("insert stock movement: %w", err)
		}
	}
	return nil
}

// GetBalances suma las contribuciones firmadas: IN +qty, OUT -qty, ADJUST qty.
func (r *StockMovementRepo) GetBalances(ctx context.Context, tenantID string, variantIDs []string) (map[string]decimal.Decimal, error) {
	out := make(map[string]decimal.Decimal, len(variantIDs))
	if len(variantIDs) == 0 {
		return out, nil
	}
	query := `
		SELECT variant_id,
		       COALESCE(SUM(CASE kind WHEN 'OUT' THEN -qty ELSE qty END), 0)
		FROM stock_movements
		WHERE tenant_id = $1 AND variant_id = ANY($2)
		GROUP BY variant_id`
	rows, err := r.q.Query(ctx, query, tenantID, variantIDs)
	if err != nil {
		return nil, fmt.Errorf("get balances: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var id string
		var balance decimal.Decimal
		if err := rows.Scan(&id, &balance); err != nil {
			return nil, fmt.Errorf("scan balance: %w", err)
		}
		out[id] = balance
	}
	return out, rows.Err()
}

// ListByVariant lista movimientos de una variante, más recientes primero.
func (r *StockMovementRepo) ListByVariant(ctx context.Context, tenantID, variantID string, limit, offset int) ([]*entity.StockMovement, error) {
	query := `SELECT ` + movementColumns + ` FROM stock_movements
		WHERE tenant_id = $1 AND variant_id = $2
		ORDER BY created_at DESC, id DESC LIMIT $3 OFFSET $4`
	return r.list(ctx, "list by variant", query, tenantID, variantID, limit, offset)
}

// ListByReference lista los movimientos generados por un documento.
func (r *StockMovementRepo) ListByReference(ctx context.Context, tenantID, referenceKind, referenceID string) ([]*entity.StockMovement, error) {
	query := `SELECT ` + movementColumns + ` FROM stock_movements
		WHERE tenant_id = $1 AND reference_kind = $2 AND reference_id = $3
		ORDER BY created_at, id`
	return r.list(ctx, "list by reference", query, tenantID, referenceKind, referenceID)
}

func (r *StockMovementRepo) list(ctx context.Context, op, query string, args ...any) ([]*entity.StockMovement, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()
	var list []*entity.StockMovement
	for rows.Next() {
		var m entity.StockMovement
		if err := rows.Scan(&m.ID, &m.TenantID, &m.VariantID, &m.Kind, &m.Qty,
			&m.ReferenceKind, &m.ReferenceID, &m.ActorID, &m.CreatedAt, &m.EffectiveAt); err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		list = append(list, &m)
	}
	return list, rows.Err()
}
