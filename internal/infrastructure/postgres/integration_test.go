package postgres_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/infrastructure/postgres"
	"github.com/jhoicas/inventario-ledger/pkg/config"
)

// ──────────────────────────────────────────────────────────────────────────────
// Tests contra PostgreSQL real. Requieren DATABASE_URL; sin ella se omiten.
// ──────────────────────────────────────────────────────────────────────────────

type pgFixture struct {
	pool      *pgxpool.Pool
	auth      entity.AuthContext
	variantID string
	ledger    *inventory.LedgerUseCase
	receiving *inventory.ReceivingUseCase
	adjust    *inventory.AdjustmentUseCase
	opname    *inventory.OpnameUseCase
}

// newPGFixture migra la base y crea un tenant nuevo con una variante, así los tests no se pisan.
func newPGFixture(t *testing.T) *pgFixture {
	t.Helper()
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		t.Skip("DATABASE_URL no definido")
	}
	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, config.DBConfig{DatabaseURL: url, MaxConns: 5})
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	require.NoError(t, postgres.Migrate(ctx, pool, nil))

	tenantID := uuid.NewString()
	variantID := "var-" + uuid.NewString()
	_, err = pool.Exec(ctx, `INSERT INTO product_variants (id, tenant_id, sku) VALUES ($1, $2, $3)`,
		variantID, tenantID, variantID)
	require.NoError(t, err)

	runner := postgres.NewTxRunner(pool, 3, nil)
	return &pgFixture{
		pool:      pool,
		auth:      entity.AuthContext{TenantID: tenantID, ActorID: "user-1", Role: entity.RoleAdmin},
		variantID: variantID,
		ledger:    inventory.NewLedgerUseCase(runner),
		receiving: inventory.NewReceivingUseCase(runner, nil),
		adjust:    inventory.NewAdjustmentUseCase(runner, nil),
		opname:    inventory.NewOpnameUseCase(runner, nil),
	}
}

func (f *pgFixture) receive(t *testing.T, qty int64) *entity.Receiving {
	t.Helper()
	r, err := f.receiving.CreateReceiving(context.Background(), f.auth, inventory.CreateReceivingInput{
		Status: entity.ReceivingStatusPosted,
		Lines:  []inventory.ReceivingLineInput{{VariantID: f.variantID, Qty: decimal.NewFromInt(qty)}},
	})
	require.NoError(t, err)
	return r
}

func (f *pgFixture) requireBalance(t *testing.T, want int64) {
	t.Helper()
	got, err := f.ledger.GetBalance(context.Background(), f.auth, f.variantID)
	require.NoError(t, err)
	require.Truef(t, got.Equal(decimal.NewFromInt(want)), "saldo: esperado %d, obtenido %s", want, got)
}

func TestPostgres_RecepcionAjusteYMovimientos(t *testing.T) {
	f := newPGFixture(t)
	ctx := context.Background()

	r := f.receive(t, 10)
	got, err := f.receiving.GetReceiving(ctx, f.auth, r.ID)
	require.NoError(t, err)
	require.Len(t, got.Lines, 1)
	assert.Equal(t, entity.ReceivingStatusPosted, got.Status)
	f.requireBalance(t, 10)

	_, err = f.adjust.CreateAdjustment(ctx, f.auth, inventory.CreateAdjustmentInput{
		Reason: "merma",
		Items:  []inventory.AdjustmentItemInput{{VariantID: f.variantID, QtyDiff: decimal.NewFromInt(-15)}},
	})
	var ise *domain.InsufficientStockError
	require.ErrorAs(t, err, &ise)
	f.requireBalance(t, 10)

	movements, err := f.ledger.ListMovementsByReference(ctx, f.auth, entity.ReferenceReceiving, r.ID)
	require.NoError(t, err)
	require.Len(t, movements, 1)
	assert.True(t, movements[0].Qty.Equal(decimal.NewFromInt(10)))

	// El store guarda 4 decimales: lo que no cabe no llega a la base.
	_, err = f.receiving.CreateReceiving(ctx, f.auth, inventory.CreateReceivingInput{
		Lines: []inventory.ReceivingLineInput{{VariantID: f.variantID, Qty: decimal.RequireFromString("0.00001")}},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	// Un id que no es UUID es un documento inexistente, no un 22P02.
	_, err = f.receiving.GetReceiving(ctx, f.auth, "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = f.opname.GetOpname(ctx, f.auth, "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// Un conteo que tiene la cabecera bloqueada (FOR UPDATE) cuando empieza el cierre debe
// quedar incluido en las diferencias que se contabilizan.
func TestPostgres_FinalizeEsperaAlConteoEnCurso(t *testing.T) {
	f := newPGFixture(t)
	ctx := context.Background()
	f.receive(t, 10)

	o, err := f.opname.StartOpname(ctx, f.auth, "")
	require.NoError(t, err)
	var itemID string
	for _, it := range o.Items {
		if it.VariantID == f.variantID {
			itemID = it.ID
		}
	}
	require.NotEmpty(t, itemID)

	// Misma secuencia que UpdateCountedQty, con la transacción abierta.
	tx, err := f.pool.Begin(ctx)
	require.NoError(t, err)
	defer tx.Rollback(ctx) //nolint:errcheck
	repo := postgres.NewOpnameRepository(tx)
	header, err := repo.GetHeaderForUpdate(ctx, f.auth.TenantID, o.ID)
	require.NoError(t, err)
	require.NotNil(t, header)
	item, err := repo.GetItem(ctx, f.auth.TenantID, o.ID, itemID)
	require.NoError(t, err)
	require.NotNil(t, item)
	item.Recount(decimal.NewFromInt(7))
	item.UpdatedBy = "user-2"
	require.NoError(t, repo.UpdateItemCount(ctx, item))

	type result struct {
		opname *entity.StockOpname
		err    error
	}
	done := make(chan result, 1)
	go func() {
		final, err := f.opname.FinalizeOpname(ctx, f.auth, o.ID)
		done <- result{final, err}
	}()

	select {
	case r := <-done:
		t.Fatalf("el cierre no esperó al conteo en curso (err=%v)", r.err)
	case <-time.After(300 * time.Millisecond):
	}
	require.NoError(t, tx.Commit(ctx))

	var r result
	select {
	case r = <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("el cierre no terminó tras liberar la cabecera")
	}
	require.NoError(t, r.err)
	assert.Equal(t, entity.OpnameStatusFinalized, r.opname.Status)
	for _, it := range r.opname.Items {
		if it.VariantID == f.variantID {
			assert.Truef(t, it.CountedQty.Equal(decimal.NewFromInt(7)), "counted %s", it.CountedQty)
			assert.Truef(t, it.DiffQty.Equal(decimal.NewFromInt(-3)), "diff %s", it.DiffQty)
		}
	}
	f.requireBalance(t, 7)

	movements, err := f.ledger.ListMovementsByReference(ctx, f.auth, entity.ReferenceOpname, o.ID)
	require.NoError(t, err)
	require.Len(t, movements, 1)
	assert.True(t, movements[0].Qty.Equal(decimal.NewFromInt(-3)))
}
