package ledger_test

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/ledger"
)

func qty(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

// ──────────────────────────────────────────────────────────────────────────────
// Merge
// ──────────────────────────────────────────────────────────────────────────────

func TestMerge_SumaDuplicadosConservandoOrden(t *testing.T) {
	out := ledger.Merge([]ledger.Delta{
		{VariantID: "B", Qty: qty(2)},
		{VariantID: "A", Qty: qty(5)},
		{VariantID: "B", Qty: qty(3)},
	}, false)

	require.Len(t, out, 2)
	assert.Equal(t, "B", out[0].VariantID)
	assert.True(t, out[0].Qty.Equal(qty(5)))
	assert.Equal(t, "A", out[1].VariantID)
	assert.True(t, out[1].Qty.Equal(qty(5)))
}

func TestMerge_DescartaSumasCero(t *testing.T) {
	out := ledger.Merge([]ledger.Delta{
		{VariantID: "A", Qty: qty(4)},
		{VariantID: "B", Qty: qty(1)},
		{VariantID: "A", Qty: qty(-4)},
	}, true)

	require.Len(t, out, 1)
	assert.Equal(t, "B", out[0].VariantID)
}

func TestMerge_SinDropConservaCeros(t *testing.T) {
	out := ledger.Merge([]ledger.Delta{
		{VariantID: "A", Qty: qty(4)},
		{VariantID: "A", Qty: qty(-4)},
	}, false)

	require.Len(t, out, 1)
	assert.True(t, out[0].Qty.IsZero())
}

// ──────────────────────────────────────────────────────────────────────────────
// Balances / convención de signos
// ──────────────────────────────────────────────────────────────────────────────

func TestBalances_ConvencionDeSignos(t *testing.T) {
	movs := []*entity.StockMovement{
		{VariantID: "A", Kind: entity.MovementKindIN, Qty: qty(10)},
		{VariantID: "A", Kind: entity.MovementKindOUT, Qty: qty(3)},
		{VariantID: "A", Kind: entity.MovementKindADJUST, Qty: qty(-2)},
		{VariantID: "B", Kind: entity.MovementKindADJUST, Qty: qty(7)},
	}

	b := ledger.Balances(movs)
	assert.True(t, b["A"].Equal(qty(5)), "10 - 3 - 2 = 5")
	assert.True(t, b["B"].Equal(qty(7)))
	assert.True(t, b["C"].IsZero(), "variante ausente tiene saldo 0")
}

// ──────────────────────────────────────────────────────────────────────────────
// CheckNonNegative
// ──────────────────────────────────────────────────────────────────────────────

func TestCheckNonNegative(t *testing.T) {
	balances := map[string]decimal.Decimal{"A": qty(10)}

	cases := []struct {
		name    string
		deltas  []ledger.Delta
		wantErr bool
	}{
		{"queda en cero", []ledger.Delta{{VariantID: "A", Qty: qty(-10)}}, false},
		{"queda positivo", []ledger.Delta{{VariantID: "A", Qty: qty(-4)}}, false},
		{"queda negativo", []ledger.Delta{{VariantID: "A", Qty: qty(-15)}}, true},
		{"variante sin saldo", []ledger.Delta{{VariantID: "Z", Qty: qty(-1)}}, true},
		{"entrada en variante nueva", []ledger.Delta{{VariantID: "Z", Qty: qty(1)}}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ledger.CheckNonNegative(balances, tc.deltas)
			if !tc.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrNegativeStock))
			assert.True(t, errors.Is(err, domain.ErrConflict))
			var ise *domain.InsufficientStockError
			require.True(t, errors.As(err, &ise))
			assert.Equal(t, tc.deltas[0].VariantID, ise.VariantID)
		})
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// ValidateMovement
// ──────────────────────────────────────────────────────────────────────────────

func TestValidateMovement(t *testing.T) {
	base := func(kind string, q int64) *entity.StockMovement {
		return &entity.StockMovement{
			TenantID: "t1", VariantID: "A", ReferenceID: "r1",
			ReferenceKind: entity.ReferenceReceiving, Kind: kind, Qty: qty(q),
		}
	}

	assert.NoError(t, ledger.ValidateMovement(base(entity.MovementKindIN, 1)))
	assert.NoError(t, ledger.ValidateMovement(base(entity.MovementKindADJUST, -1)))
	assert.ErrorIs(t, ledger.ValidateMovement(base(entity.MovementKindIN, -1)), domain.ErrInvalidInput)
	assert.ErrorIs(t, ledger.ValidateMovement(base(entity.MovementKindOUT, 0)), domain.ErrInvalidInput)
	assert.ErrorIs(t, ledger.ValidateMovement(base(entity.MovementKindADJUST, 0)), domain.ErrInvalidInput)
	assert.ErrorIs(t, ledger.ValidateMovement(base("TRANSFER", 1)), domain.ErrInvalidInput)

	bad := base(entity.MovementKindIN, 1)
	bad.ReferenceKind = "INVOICE"
	assert.ErrorIs(t, ledger.ValidateMovement(bad), domain.ErrInvalidInput)
}

func TestCheckQty_EscalaYRango(t *testing.T) {
	cases := []struct {
		in string
		ok bool
	}{
		{"1", true},
		{"0.0001", true},
		{"1.50000", true},
		{"-99999999999999.9999", true},
		{"0.00001", false},
		{"1.00004", false},
		{"100000000000000", false},
		{"-100000000000000", false},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			err := ledger.CheckQty("qty", decimal.RequireFromString(tc.in))
			if tc.ok {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

func TestCode_MapeaTaxonomia(t *testing.T) {
	assert.Equal(t, domain.CodeConflict, domain.Code(domain.ErrOpnameInProgress))
	assert.Equal(t, domain.CodeConflict, domain.Code(&domain.InsufficientStockError{VariantID: "A"}))
	assert.Equal(t, domain.CodeInvalidInput, domain.Code(domain.Invalid("x")))
	assert.Equal(t, domain.CodeNotFound, domain.Code(domain.ErrNotFound))
	assert.Equal(t, domain.CodeForbidden, domain.Code(domain.ErrForbidden))
	assert.Equal(t, domain.CodeInternal, domain.Code(errors.New("db caída")))
	assert.Equal(t, "", domain.Code(nil))
}
