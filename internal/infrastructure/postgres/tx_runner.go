package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/pkg/logger"
)

// Ensure TxRunner implements inventory.TxRunner.
var _ inventory.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool    *pgxpool.Pool
	retries int
	log     *logger.Logger
}

// NewTxRunner construye el runner con el pool. retries es el número de reintentos ante 40001/40P01.
func NewTxRunner(pool *pgxpool.Pool, retries int, log *logger.Logger) *TxRunner {
	if retries < 0 {
		retries = 0
	}
	return &TxRunner{pool: pool, retries: retries, log: log}
}

// Run inicia una transacción, ejecuta fn con repos atados a la tx y hace Commit o Rollback.
// Un conflicto de serialización o deadlock repite fn completa en una transacción nueva.
func (r *TxRunner) Run(ctx context.Context, fn func(repos inventory.Repos) error) error {
	var err error
	for attempt := 0; attempt <= r.retries; attempt++ {
		err = r.runOnce(ctx, fn)
		if err == nil || !isRetryable(err) || ctx.Err() != nil {
			return err
		}
		if r.log != nil {
			r.log.Warn().Err(err).Int("attempt", attempt+1).Msg("reintentando transacción")
		}
	}
	return err
}

func (r *TxRunner) runOnce(ctx context.Context, fn func(repos inventory.Repos) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(reposFor(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func reposFor(q Querier) inventory.Repos {
	return inventory.Repos{
		Movements:   NewStockMovementRepository(q),
		Variants:    NewVariantRepository(q),
		Guard:       NewTenantGuardRepository(q),
		Receivings:  NewReceivingRepository(q),
		Adjustments: NewAdjustmentRepository(q),
		Opnames:     NewOpnameRepository(q),
	}
}
