package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

var _ repository.OpnameRepository = (*OpnameRepo)(nil)

const opnameInProgressIndex = "ux_stock_opnames_in_progress"

// OpnameRepo conteos físicos sobre PostgreSQL.
type OpnameRepo struct {
	q Querier
}

// NewOpnameRepository construye el adaptador. Pasar pool o tx (Querier).
func NewOpnameRepository(q Querier) *OpnameRepo {
	return &OpnameRepo{q: q}
}

const (
	opnameColumns     = `id, tenant_id, status, note, started_at, started_by, finalized_at, finalized_by, voided_at, voided_by`
	opnameItemColumns = `id, opname_id, tenant_id, variant_id, system_qty, counted_qty, diff_qty, updated_at, updated_by`
)

// Create inserta cabecera e ítems. El índice parcial por tenant rechaza un segundo IN_PROGRESS.
func (r *OpnameRepo) Create(ctx context.Context, o *entity.StockOpname) error {
	batch := &pgx.Batch{}
	batch.Queue(`INSERT INTO stock_opnames (`+opnameColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		o.ID, o.TenantID, o.Status, o.Note, o.StartedAt, o.StartedBy,
		o.FinalizedAt, nullableString(o.FinalizedBy), o.VoidedAt, nullableString(o.VoidedBy))
	for _, it := range o.Items {
		batch.Queue(`INSERT INTO stock_opname_items (`+opnameItemColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			it.ID, o.ID, o.TenantID, it.VariantID, it.SystemQty, it.CountedQty, it.DiffQty, it.UpdatedAt, it.UpdatedBy)
	}
	br := r.q.SendBatch(ctx, batch)
	defer br.Close()
	for i := 0; i < batch.Len(); i++ {
		if _, err := br.Exec(); err != nil {
			if isConstraintViolation(err, opnameInProgressIndex) {
				return domain.ErrOpnameInProgress
			}
			return fmt.Errorf("insert opname: %w", err)
		}
	}
	return nil
}

// GetByID cabecera con ítems; nil si no existe para el tenant.
func (r *OpnameRepo) GetByID(ctx context.Context, tenantID, id string) (*entity.StockOpname, error) {
	o, err := r.header(ctx, `SELECT `+opnameColumns+` FROM stock_opnames WHERE tenant_id = $1 AND id = $2`, tenantID, id)
	if err != nil || o == nil {
		return o, err
	}
	rows, err := r.q.Query(ctx, `SELECT `+opnameItemColumns+` FROM stock_opname_items
		WHERE tenant_id = $1 AND opname_id = $2 ORDER BY variant_id`, tenantID, id)
	if err != nil {
		return nil, fmt.Errorf("list opname items: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		it, err := scanOpnameItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan opname item: %w", err)
		}
		o.Items = append(o.Items, *it)
	}
	return o, rows.Err()
}

// GetHeaderForUpdate SELECT ... FOR UPDATE de la cabecera.
func (r *OpnameRepo) GetHeaderForUpdate(ctx context.Context, tenantID, id string) (*entity.StockOpname, error) {
	return r.header(ctx, `SELECT `+opnameColumns+` FROM stock_opnames WHERE tenant_id = $1 AND id = $2 FOR UPDATE`, tenantID, id)
}

// GetInProgress cabecera IN_PROGRESS del tenant o nil.
func (r *OpnameRepo) GetInProgress(ctx context.Context, tenantID string) (*entity.StockOpname, error) {
	return r.header(ctx, `SELECT `+opnameColumns+` FROM stock_opnames WHERE tenant_id = $1 AND status = $2`,
		tenantID, entity.OpnameStatusInProgress)
}

// GetItem un ítem del opname; nil si no existe.
func (r *OpnameRepo) GetItem(ctx context.Context, tenantID, opnameID, itemID string) (*entity.StockOpnameItem, error) {
	row := r.q.QueryRow(ctx, `SELECT `+opnameItemColumns+` FROM stock_opname_items
		WHERE tenant_id = $1 AND opname_id = $2 AND id = $3`, tenantID, opnameID, itemID)
	it, err := scanOpnameItem(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get opname item: %w", err)
	}
	return it, nil
}

// UpdateItemCount guarda counted_qty y diff_qty del ítem.
func (r *OpnameRepo) UpdateItemCount(ctx context.Context, item *entity.StockOpnameItem) error {
	cmd, err := r.q.Exec(ctx, `
		UPDATE stock_opname_items SET counted_qty = $4, diff_qty = $5, updated_at = $6, updated_by = $7
		WHERE tenant_id = $1 AND opname_id = $2 AND id = $3`,
		item.TenantID, item.OpnameID, item.ID, item.CountedQty, item.DiffQty, item.UpdatedAt, item.UpdatedBy)
	if err != nil {
		return fmt.Errorf("update opname item: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("update opname item: item %s not found", item.ID)
	}
	return nil
}

// UpdateItemDiffs persiste los diff_qty recalculados al finalizar.
func (r *OpnameRepo) UpdateItemDiffs(ctx context.Context, items []entity.StockOpnameItem) error {
	if len(items) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, it := range items {
		batch.Queue(`UPDATE stock_opname_items SET diff_qty = $3 WHERE tenant_id = $1 AND id = $2`,
			it.TenantID, it.ID, it.DiffQty)
	}
	br := r.q.SendBatch(ctx, batch)
	defer br.Close()
	for range items {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("update opname diffs: %w", err)
		}
	}
	return nil
}

// TransitionStatus UPDATE condicional: solo cambia si el estado actual es from.
func (r *OpnameRepo) TransitionStatus(ctx context.Context, tenantID, id, from, to, actorID string, at time.Time) (bool, error) {
	var query string
	switch to {
	case entity.OpnameStatusFinalized:
		query = `UPDATE stock_opnames SET status = $4, finalized_at = $5, finalized_by = $6 WHERE tenant_id = $1 AND id = $2 AND status = $3`
	case entity.OpnameStatusVoid:
		query = `UPDATE stock_opnames SET status = $4, voided_at = $5, voided_by = $6 WHERE tenant_id = $1 AND id = $2 AND status = $3`
	default:
		return false, fmt.Errorf("transition opname: estado destino %q no soportado", to)
	}
	cmd, err := r.q.Exec(ctx, query, tenantID, id, from, to, at, actorID)
	if err != nil {
		return false, fmt.Errorf("transition opname: %w", err)
	}
	return cmd.RowsAffected() == 1, nil
}

// List cabeceras del tenant, más recientes primero; status vacío = todas.
func (r *OpnameRepo) List(ctx context.Context, tenantID, status string, limit, offset int) ([]*entity.StockOpname, error) {
	rows, err := r.q.Query(ctx, `SELECT `+opnameColumns+` FROM stock_opnames
		WHERE tenant_id = $1 AND ($2 = '' OR status = $2)
		ORDER BY started_at DESC, id DESC LIMIT $3 OFFSET $4`, tenantID, status, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list opnames: %w", err)
	}
	defer rows.Close()
	var list []*entity.StockOpname
	for rows.Next() {
		o, err := scanOpname(rows)
		if err != nil {
			return nil, fmt.Errorf("scan opname: %w", err)
		}
		list = append(list, o)
	}
	return list, rows.Err()
}

func (r *OpnameRepo) header(ctx context.Context, query string, args ...any) (*entity.StockOpname, error) {
	o, err := scanOpname(r.q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get opname: %w", err)
	}
	return o, nil
}

func scanOpname(row pgx.Row) (*entity.StockOpname, error) {
	var o entity.StockOpname
	var finalizedBy, voidedBy *string
	if err := row.Scan(&o.ID, &o.TenantID, &o.Status, &o.Note, &o.StartedAt, &o.StartedBy,
		&o.FinalizedAt, &finalizedBy, &o.VoidedAt, &voidedBy); err != nil {
		return nil, err
	}
	o.FinalizedBy = derefString(finalizedBy)
	o.VoidedBy = derefString(voidedBy)
	return &o, nil
}

func scanOpnameItem(row pgx.Row) (*entity.StockOpnameItem, error) {
	var it entity.StockOpnameItem
	if err := row.Scan(&it.ID, &it.OpnameID, &it.TenantID, &it.VariantID, &it.SystemQty,
		&it.CountedQty, &it.DiffQty, &it.UpdatedAt, &it.UpdatedBy); err != nil {
		return nil, err
	}
	return &it, nil
}
