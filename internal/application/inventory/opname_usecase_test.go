package inventory_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

// Escenario 3: saldo(A)=10 → foto 10/10/0 → conteo 7 → diff -3 → finalizar → ADJUST -3, saldo 7.
func TestOpname_CicloCompleto(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.receive(t, writerA, varA, 10)

	o, err := f.opname.StartOpname(ctx, writerA, "cierre de mes")
	require.NoError(t, err)
	assert.Equal(t, entity.OpnameStatusInProgress, o.Status)
	require.Len(t, o.Items, 3, "una fila por variante activa")

	itemA := itemFor(t, o, varA)
	assert.True(t, itemA.SystemQty.Equal(d(10)))
	assert.True(t, itemA.CountedQty.Equal(d(10)))
	assert.True(t, itemA.DiffQty.IsZero())
	assert.True(t, itemFor(t, o, varB).SystemQty.IsZero(), "variante sin movimientos arranca en 0")

	updated, err := f.opname.UpdateCountedQty(ctx, writerA, o.ID, itemA.ID, d(7))
	require.NoError(t, err)
	assert.True(t, updated.DiffQty.Equal(d(-3)))

	final, err := f.opname.FinalizeOpname(ctx, writerA, o.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.OpnameStatusFinalized, final.Status)
	require.NotNil(t, final.FinalizedAt)
	f.requireBalance(t, writerA, varA, 7)

	var opnameMovs []entity.StockMovement
	for _, m := range f.store.Movements(tenantA) {
		if m.ReferenceKind == entity.ReferenceOpname {
			opnameMovs = append(opnameMovs, m)
		}
	}
	require.Len(t, opnameMovs, 1, "solo las diferencias distintas de cero generan movimiento")
	assert.Equal(t, entity.MovementKindADJUST, opnameMovs[0].Kind)
	assert.True(t, opnameMovs[0].Qty.Equal(d(-3)))
	assert.Equal(t, o.ID, opnameMovs[0].ReferenceID)

	stored, err := f.opname.GetOpname(ctx, readerA, o.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.OpnameStatusFinalized, stored.Status)
	assert.True(t, itemFor(t, stored, varA).DiffQty.Equal(d(-3)))

	assert.Equal(t, []string{
		entity.AuditReceivingCreated, entity.AuditReceivingPosted,
		entity.AuditOpnameStarted, entity.AuditOpnameItemCountedUpdate, entity.AuditOpnameFinalized,
	}, f.audit.actions())
}

// Escenario 4: opname en curso bloquea PostReceiving de un borrador; al anularlo, se puede contabilizar.
func TestOpname_BloqueaContabilizacionHastaAnular(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	r := f.draft(t, writerA, varB, 3)

	o, err := f.opname.StartOpname(ctx, writerA, "")
	require.NoError(t, err)

	_, err = f.receiving.PostReceiving(ctx, writerA, r.ID)
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.ErrorIs(t, err, domain.ErrOpnameInProgress)

	_, err = f.receiving.CreateReceiving(ctx, writerA, inventory.CreateReceivingInput{
		Status: entity.ReceivingStatusPosted,
		Lines:  []inventory.ReceivingLineInput{{VariantID: varA, Qty: d(1)}},
	})
	assert.ErrorIs(t, err, domain.ErrOpnameInProgress, "crear directamente POSTED también se bloquea")

	_, err = f.receiving.CreateReceiving(ctx, writerA, inventory.CreateReceivingInput{
		Lines: []inventory.ReceivingLineInput{{VariantID: varA, Qty: d(1)}},
	})
	assert.NoError(t, err, "un borrador no escribe en el ledger y se permite")

	// Otro tenant no se ve afectado.
	f.receive(t, writerB, varX, 2)

	_, err = f.opname.VoidOpname(ctx, writerA, o.ID)
	require.NoError(t, err)

	_, err = f.receiving.PostReceiving(ctx, writerA, r.ID)
	require.NoError(t, err)
	f.requireBalance(t, writerA, varB, 3)
}

func TestStartOpname_UnoPorTenant(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.opname.StartOpname(ctx, writerA, "")
	require.NoError(t, err)
	_, err = f.opname.StartOpname(ctx, adminA, "")
	assert.ErrorIs(t, err, domain.ErrOpnameInProgress)

	_, err = f.opname.StartOpname(ctx, writerB, "")
	assert.NoError(t, err, "cada tenant tiene su propio candado")
}

func TestStartOpname_ConcurrenteSoloUnoGana(t *testing.T) {
	f := newFixture(t)
	f.receive(t, writerA, varA, 5)

	const workers = 16
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		won       int
		conflicts int
	)
	start := make(chan struct{})
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := f.opname.StartOpname(context.Background(), writerA, "")
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				won++
			case errors.Is(err, domain.ErrConflict):
				conflicts++
			default:
				t.Errorf("error inesperado: %v", err)
			}
		}()
	}
	close(start)
	wg.Wait()

	assert.Equal(t, 1, won)
	assert.Equal(t, workers-1, conflicts)

	list, err := f.opname.ListOpnames(context.Background(), writerA, entity.OpnameStatusInProgress, 100, 0)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestOpname_ContabilizacionYOpnameConcurrentes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	drafts := make([]*entity.Receiving, 8)
	for i := range drafts {
		drafts[i] = f.draft(t, writerA, varA, 1)
	}

	var wg sync.WaitGroup
	for _, r := range drafts {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			_, _ = f.receiving.PostReceiving(ctx, writerA, id)
		}(r.ID)
	}
	var opname *entity.StockOpname
	wg.Add(1)
	go func() {
		defer wg.Done()
		o, err := f.opname.StartOpname(ctx, writerA, "")
		if err == nil {
			opname = o
		}
	}()
	wg.Wait()
	require.NotNil(t, opname)

	// Todo lo contabilizado antes del inicio quedó en la foto; nada entró después.
	snapshot := itemFor(t, opname, varA).SystemQty
	assert.True(t, f.balance(t, writerA, varA).Equal(snapshot),
		"ninguna entrada puede colarse después de iniciar el opname")
}

func TestUpdateCountedQty_Validaciones(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.receive(t, writerA, varA, 5)
	o, err := f.opname.StartOpname(ctx, writerA, "")
	require.NoError(t, err)
	itemA := itemFor(t, o, varA)

	_, err = f.opname.UpdateCountedQty(ctx, writerA, o.ID, itemA.ID, d(-1))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.opname.UpdateCountedQty(ctx, writerA, o.ID, "item-inexistente", d(1))
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.opname.UpdateCountedQty(ctx, writerA, "opname-inexistente", itemA.ID, d(1))
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.opname.UpdateCountedQty(ctx, writerB, o.ID, itemA.ID, d(1))
	assert.ErrorIs(t, err, domain.ErrNotFound, "otro tenant no ve el opname")

	_, err = f.opname.UpdateCountedQty(ctx, readerA, o.ID, itemA.ID, d(1))
	assert.ErrorIs(t, err, domain.ErrForbidden)

	// Última escritura gana.
	_, err = f.opname.UpdateCountedQty(ctx, writerA, o.ID, itemA.ID, d(9))
	require.NoError(t, err)
	last, err := f.opname.UpdateCountedQty(ctx, adminA, o.ID, itemA.ID, d(0))
	require.NoError(t, err)
	assert.True(t, last.DiffQty.Equal(d(-5)))
	assert.Equal(t, adminA.ActorID, last.UpdatedBy)

	_, err = f.opname.FinalizeOpname(ctx, writerA, o.ID)
	require.NoError(t, err)
	f.requireBalance(t, writerA, varA, 0)

	_, err = f.opname.UpdateCountedQty(ctx, writerA, o.ID, itemA.ID, d(3))
	assert.ErrorIs(t, err, domain.ErrInvalidStatus, "no se edita un opname finalizado")
}

func TestVoidOpname_SinEfectoEnLedger(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.receive(t, writerA, varA, 5)
	before := f.store.Movements(tenantA)

	o, err := f.opname.StartOpname(ctx, writerA, "")
	require.NoError(t, err)
	_, err = f.opname.UpdateCountedQty(ctx, writerA, o.ID, itemFor(t, o, varA).ID, d(1))
	require.NoError(t, err)

	voided, err := f.opname.VoidOpname(ctx, writerA, o.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.OpnameStatusVoid, voided.Status)
	assert.Equal(t, before, f.store.Movements(tenantA))
	f.requireBalance(t, writerA, varA, 5)

	_, err = f.opname.VoidOpname(ctx, writerA, o.ID)
	assert.ErrorIs(t, err, domain.ErrConflict)
	_, err = f.opname.FinalizeOpname(ctx, writerA, o.ID)
	assert.ErrorIs(t, err, domain.ErrConflict)
	_, err = f.opname.VoidOpname(ctx, writerA, "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestFinalizeOpname_SegundaVezEsConflicto(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.receive(t, writerA, varA, 5)
	o, err := f.opname.StartOpname(ctx, writerA, "")
	require.NoError(t, err)
	_, err = f.opname.UpdateCountedQty(ctx, writerA, o.ID, itemFor(t, o, varA).ID, d(8))
	require.NoError(t, err)

	_, err = f.opname.FinalizeOpname(ctx, writerA, o.ID)
	require.NoError(t, err)
	after := f.store.Movements(tenantA)

	_, err = f.opname.FinalizeOpname(ctx, writerA, o.ID)
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.Equal(t, after, f.store.Movements(tenantA), "sin filas adicionales")
	f.requireBalance(t, writerA, varA, 8)

	_, err = f.opname.FinalizeOpname(ctx, writerA, "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestFinalizeOpname_ConcurrenteUnSoloGanador(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.receive(t, writerA, varA, 5)
	o, err := f.opname.StartOpname(ctx, writerA, "")
	require.NoError(t, err)
	_, err = f.opname.UpdateCountedQty(ctx, writerA, o.ID, itemFor(t, o, varA).ID, d(2))
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make([]error, 6)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.opname.FinalizeOpname(ctx, writerA, o.ID)
		}(i)
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		assert.ErrorIs(t, err, domain.ErrConflict)
	}
	assert.Equal(t, 1, ok)
	f.requireBalance(t, writerA, varA, 2)
}

// El saldo se verifica contra el ledger vigente, no contra la foto inicial.
func TestFinalizeOpname_VerificaContraLedgerActual(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.receive(t, writerA, varA, 10)
	o, err := f.opname.StartOpname(ctx, writerA, "")
	require.NoError(t, err)
	_, err = f.opname.UpdateCountedQty(ctx, writerA, o.ID, itemFor(t, o, varA).ID, d(2))
	require.NoError(t, err)

	// Salida fuera de los flujos (por ejemplo una venta) que deja el ledger en 5.
	require.NoError(t, f.store.Run(ctx, func(repos inventory.Repos) error {
		return repos.Movements.Append(ctx, []*entity.StockMovement{{
			ID: "venta-1", TenantID: tenantA, VariantID: varA, Kind: entity.MovementKindOUT, Qty: d(5),
			ReferenceKind: entity.ReferenceAdjustment, ReferenceID: "externo", CreatedAt: time.Now(), EffectiveAt: time.Now(),
		}})
	}))
	before := f.store.Movements(tenantA)

	_, err = f.opname.FinalizeOpname(ctx, writerA, o.ID)
	assert.ErrorIs(t, err, domain.ErrNegativeStock, "5 + (-8) < 0")
	assert.Equal(t, before, f.store.Movements(tenantA))

	still, err := f.opname.GetActiveOpname(ctx, writerA)
	require.NoError(t, err)
	assert.Equal(t, o.ID, still.ID, "el opname sigue IN_PROGRESS")
}

func TestStartOpname_ExcluyeVariantesBorradas(t *testing.T) {
	f := newFixture(t)
	f.store.DeleteVariant(varC)

	o, err := f.opname.StartOpname(context.Background(), writerA, "")
	require.NoError(t, err)
	require.Len(t, o.Items, 2)
	for _, it := range o.Items {
		assert.NotEqual(t, varC, it.VariantID)
	}
}

func TestGetActiveOpname(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.opname.GetActiveOpname(ctx, writerA)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	o, err := f.opname.StartOpname(ctx, writerA, "")
	require.NoError(t, err)
	active, err := f.opname.GetActiveOpname(ctx, readerA)
	require.NoError(t, err)
	assert.Equal(t, o.ID, active.ID)
	assert.Len(t, active.Items, 3)

	_, err = f.opname.GetActiveOpname(ctx, writerB)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
