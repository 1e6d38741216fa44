package inventory_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

// Los IDs de documento son UUID: uno mal formado se responde como inexistente, sin llegar al store.
func TestIDsMalFormados_NoEncontrado(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.receive(t, writerA, varA, 10)
	o, err := f.opname.StartOpname(ctx, writerA, "")
	require.NoError(t, err)
	item := itemFor(t, o, varA)

	for _, bad := range []string{"nope", "123", "'; DROP TABLE receivings; --", ""} {
		_, err = f.receiving.GetReceiving(ctx, readerA, bad)
		assert.ErrorIs(t, err, domain.ErrNotFound)
		_, err = f.receiving.PostReceiving(ctx, writerA, bad)
		assert.ErrorIs(t, err, domain.ErrNotFound)
		_, err = f.receiving.VoidReceiving(ctx, writerA, bad)
		assert.ErrorIs(t, err, domain.ErrNotFound)
		_, err = f.adjustment.GetAdjustment(ctx, readerA, bad)
		assert.ErrorIs(t, err, domain.ErrNotFound)
		_, err = f.opname.GetOpname(ctx, readerA, bad)
		assert.ErrorIs(t, err, domain.ErrNotFound)
		_, err = f.opname.UpdateCountedQty(ctx, writerA, bad, item.ID, d(1))
		assert.ErrorIs(t, err, domain.ErrNotFound)
		_, err = f.opname.UpdateCountedQty(ctx, writerA, o.ID, bad, d(1))
		assert.ErrorIs(t, err, domain.ErrNotFound)
		_, err = f.opname.FinalizeOpname(ctx, writerA, bad)
		assert.ErrorIs(t, err, domain.ErrNotFound)
		_, err = f.opname.VoidOpname(ctx, writerA, bad)
		assert.ErrorIs(t, err, domain.ErrNotFound)

		movements, err := f.ledger.ListMovementsByReference(ctx, readerA, entity.ReferenceOpname, bad)
		require.NoError(t, err)
		assert.Empty(t, movements)
	}

	active, err := f.opname.GetActiveOpname(ctx, readerA)
	require.NoError(t, err)
	assert.Equal(t, entity.OpnameStatusInProgress, active.Status, "nada cambió")
}

func TestIDs_FormaNoCanonicaSeNormaliza(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	r := f.draft(t, writerA, varA, 3)

	got, err := f.receiving.GetReceiving(ctx, readerA, "{"+r.ID+"}")
	require.NoError(t, err)
	assert.Equal(t, r.ID, got.ID)
}

func TestTenantMalFormado_Prohibido(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	bad := entity.AuthContext{TenantID: "empresa-1", ActorID: "user-1", Role: entity.RoleAdmin}

	_, err := f.ledger.GetBalances(ctx, bad, []string{varA})
	assert.ErrorIs(t, err, domain.ErrForbidden)
	_, err = f.receiving.CreateReceiving(ctx, bad, inventory.CreateReceivingInput{
		Lines: []inventory.ReceivingLineInput{{VariantID: varA, Qty: d(1)}},
	})
	assert.ErrorIs(t, err, domain.ErrForbidden)
	_, err = f.opname.StartOpname(ctx, bad, "")
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

// Cantidades con más de 4 decimales o fuera de NUMERIC(18,4) se rechazan antes de escribir.
func TestCantidades_EscalaYRangoDelStore(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.receive(t, writerA, varA, 10)
	dec := decimal.RequireFromString

	for _, q := range []string{"0.00001", "1.00004", "100000000000000"} {
		_, err := f.receiving.CreateReceiving(ctx, writerA, inventory.CreateReceivingInput{
			Status: entity.ReceivingStatusPosted,
			Lines:  []inventory.ReceivingLineInput{{VariantID: varA, Qty: dec(q)}},
		})
		assert.ErrorIsf(t, err, domain.ErrInvalidInput, "recepción qty=%s", q)

		_, err = f.adjustment.CreateAdjustment(ctx, writerA, inventory.CreateAdjustmentInput{
			Reason: "prueba",
			Items:  []inventory.AdjustmentItemInput{{VariantID: varA, QtyDiff: dec(q)}},
		})
		assert.ErrorIsf(t, err, domain.ErrInvalidInput, "ajuste qty_diff=%s", q)
	}

	// Dos líneas válidas cuya suma desborda el rango.
	_, err := f.receiving.CreateReceiving(ctx, writerA, inventory.CreateReceivingInput{
		Lines: []inventory.ReceivingLineInput{
			{VariantID: varB, Qty: dec("60000000000000")},
			{VariantID: varB, Qty: dec("60000000000000")},
		},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	assert.Len(t, f.store.Movements(tenantA), 1, "solo la recepción inicial")
	f.requireBalance(t, writerA, varA, 10)

	// Ceros a la derecha no son decimales significativos.
	r, err := f.receiving.CreateReceiving(ctx, writerA, inventory.CreateReceivingInput{
		Status: entity.ReceivingStatusPosted,
		Lines:  []inventory.ReceivingLineInput{{VariantID: varA, Qty: dec("1.25000")}},
	})
	require.NoError(t, err)
	assert.True(t, r.Lines[0].Qty.Equal(dec("1.25")))

	o, err := f.opname.StartOpname(ctx, writerA, "")
	require.NoError(t, err)
	_, err = f.opname.UpdateCountedQty(ctx, writerA, o.ID, itemFor(t, o, varA).ID, dec("7.12345"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
