package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

var _ repository.ReceivingRepository = (*ReceivingRepo)(nil)

// ReceivingRepo recepciones y sus líneas sobre PostgreSQL.
type ReceivingRepo struct {
	q Querier
}

// NewReceivingRepository construye el adaptador. Pasar pool o tx (Querier).
func NewReceivingRepository(q Querier) *ReceivingRepo {
	return &ReceivingRepo{q: q}
}

const receivingColumns = `id, tenant_id, status, note, created_by, created_at, posted_at, posted_by, voided_at, voided_by`

// Create inserta cabecera y líneas.
func (r *ReceivingRepo) Create(ctx context.Context, receiving *entity.Receiving) error {
	batch := &pgx.Batch{}
	batch.Queue(`INSERT INTO receivings (`+receivingColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		receiving.ID, receiving.TenantID, receiving.Status, receiving.Note, receiving.CreatedBy, receiving.CreatedAt,
		receiving.PostedAt, nullableString(receiving.PostedBy), receiving.VoidedAt, nullableString(receiving.VoidedBy))
	for _, l := range receiving.Lines {
		batch.Queue(`INSERT INTO receiving_lines (id, receiving_id, tenant_id, variant_id, qty, note) VALUES ($1, $2, $3, $4, $5, $6)`,
			l.ID, receiving.ID, receiving.TenantID, l.VariantID, l.Qty, l.Note)
	}
	br := r.q.SendBatch(ctx, batch)
	defer br.Close()
	for i := 0; i < batch.Len(); i++ {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("insert receiving: %w", err)
		}
	}
	return nil
}

// GetByID obtiene la recepción con sus líneas; nil si no existe para el tenant.
func (r *ReceivingRepo) GetByID(ctx context.Context, tenantID, id string) (*entity.Receiving, error) {
	row := r.q.QueryRow(ctx, `SELECT `+receivingColumns+` FROM receivings WHERE tenant_id = $1 AND id = $2`, tenantID, id)
	rc, err := scanReceiving(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get receiving: %w", err)
	}
	if err := r.loadLines(ctx, []*entity.Receiving{rc}); err != nil {
		return nil, err
	}
	return rc, nil
}

// TransitionStatus UPDATE condicional: solo cambia si el estado actual es from.
func (r *ReceivingRepo) TransitionStatus(ctx context.Context, tenantID, id, from, to, actorID string, at time.Time) (bool, error) {
	var query string
	switch to {
	case entity.ReceivingStatusPosted:
		query = `UPDATE receivings SET status = $4, posted_at = $5, posted_by = $6 WHERE tenant_id = $1 AND id = $2 AND status = $3`
	case entity.ReceivingStatusVoid:
		query = `UPDATE receivings SET status = $4, voided_at = $5, voided_by = $6 WHERE tenant_id = $1 AND id = $2 AND status = $3`
	default:
		return false, fmt.Errorf("transition receiving: estado destino %q no soportado", to)
	}
	cmd, err := r.q.Exec(ctx, query, tenantID, id, from, to, at, actorID)
	if err != nil {
		return false, fmt.Errorf("transition receiving: %w", err)
	}
	return cmd.RowsAffected() == 1, nil
}

// List lista recepciones del tenant, más recientes primero; status vacío = todas.
func (r *ReceivingRepo) List(ctx context.Context, tenantID, status string, limit, offset int) ([]*entity.Receiving, error) {
	rows, err := r.q.Query(ctx, `SELECT `+receivingColumns+` FROM receivings
		WHERE tenant_id = $1 AND ($2 = '' OR status = $2)
		ORDER BY created_at DESC, id DESC LIMIT $3 OFFSET $4`, tenantID, status, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list receivings: %w", err)
	}
	defer rows.Close()
	var list []*entity.Receiving
	for rows.Next() {
		rc, err := scanReceiving(rows)
		if err != nil {
			return nil, fmt.Errorf("scan receiving: %w", err)
		}
		list = append(list, rc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.loadLines(ctx, list); err != nil {
		return nil, err
	}
	return list, nil
}

func (r *ReceivingRepo) loadLines(ctx context.Context, receivings []*entity.Receiving) error {
	if len(receivings) == 0 {
		return nil
	}
	byID := make(map[string]*entity.Receiving, len(receivings))
	ids := make([]string, 0, len(receivings))
	for _, rc := range receivings {
		byID[rc.ID] = rc
		ids = append(ids, rc.ID)
	}
	rows, err := r.q.Query(ctx, `
		SELECT id, receiving_id, tenant_id, variant_id, qty, note
		FROM receiving_lines WHERE receiving_id = ANY($1::uuid[])
		ORDER BY receiving_id, variant_id`, ids)
	if err != nil {
		return fmt.Errorf("list receiving lines: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var l entity.ReceivingLine
		if err := rows.Scan(&l.ID, &l.ReceivingID, &l.TenantID, &l.VariantID, &l.Qty, &l.Note); err != nil {
			return fmt.Errorf("scan receiving line: %w", err)
		}
		if rc := byID[l.ReceivingID]; rc != nil {
			rc.Lines = append(rc.Lines, l)
		}
	}
	return rows.Err()
}

func scanReceiving(row pgx.Row) (*entity.Receiving, error) {
	var rc entity.Receiving
	var postedBy, voidedBy *string
	if err := row.Scan(&rc.ID, &rc.TenantID, &rc.Status, &rc.Note, &rc.CreatedBy, &rc.CreatedAt,
		&rc.PostedAt, &postedBy, &rc.VoidedAt, &voidedBy); err != nil {
		return nil, err
	}
	rc.PostedBy = derefString(postedBy)
	rc.VoidedBy = derefString(voidedBy)
	return &rc, nil
}
