package inventory_test

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/infrastructure/memory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const (
	tenantA = "00000000-0000-0000-0000-00000000000a"
	tenantB = "00000000-0000-0000-0000-00000000000b"

	varA = "var-a"
	varB = "var-b"
	varC = "var-c"
	varX = "var-x" // pertenece a tenantB
)

var (
	writerA = entity.AuthContext{TenantID: tenantA, ActorID: "user-1", Role: entity.RoleBodeguero}
	adminA  = entity.AuthContext{TenantID: tenantA, ActorID: "user-2", Role: entity.RoleAdmin}
	readerA = entity.AuthContext{TenantID: tenantA, ActorID: "user-3", Role: entity.RoleVendedor}
	writerB = entity.AuthContext{TenantID: tenantB, ActorID: "user-9", Role: entity.RoleAdmin}
)

// recordingSink guarda los eventos emitidos para verificarlos.
type recordingSink struct {
	mu     sync.Mutex
	events []entity.AuditEvent
}

func (s *recordingSink) Emit(_ context.Context, e entity.AuditEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
}

func (s *recordingSink) actions() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.events))
	for _, e := range s.events {
		out = append(out, e.Action)
	}
	return out
}

type fixture struct {
	store      *memory.Store
	audit      *recordingSink
	ledger     *inventory.LedgerUseCase
	receiving  *inventory.ReceivingUseCase
	adjustment *inventory.AdjustmentUseCase
	opname     *inventory.OpnameUseCase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	store.SeedVariants(tenantA, varA, varB, varC)
	store.SeedVariants(tenantB, varX)
	sink := &recordingSink{}
	return &fixture{
		store:      store,
		audit:      sink,
		ledger:     inventory.NewLedgerUseCase(store),
		receiving:  inventory.NewReceivingUseCase(store, sink),
		adjustment: inventory.NewAdjustmentUseCase(store, sink),
		opname:     inventory.NewOpnameUseCase(store, sink),
	}
}

func d(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

// receive crea una recepción POSTED de una línea.
func (f *fixture) receive(t *testing.T, auth entity.AuthContext, variantID string, qty int64) *entity.Receiving {
	t.Helper()
	r, err := f.receiving.CreateReceiving(context.Background(), auth, inventory.CreateReceivingInput{
		Status: entity.ReceivingStatusPosted,
		Lines:  []inventory.ReceivingLineInput{{VariantID: variantID, Qty: d(qty)}},
	})
	require.NoError(t, err)
	return r
}

// draft crea una recepción DRAFT de una línea.
func (f *fixture) draft(t *testing.T, auth entity.AuthContext, variantID string, qty int64) *entity.Receiving {
	t.Helper()
	r, err := f.receiving.CreateReceiving(context.Background(), auth, inventory.CreateReceivingInput{
		Lines: []inventory.ReceivingLineInput{{VariantID: variantID, Qty: d(qty)}},
	})
	require.NoError(t, err)
	return r
}

func (f *fixture) balance(t *testing.T, auth entity.AuthContext, variantID string) decimal.Decimal {
	t.Helper()
	b, err := f.ledger.GetBalance(context.Background(), auth, variantID)
	require.NoError(t, err)
	return b
}

// requireBalance compara decimales por valor (decimal.Decimal no es comparable con Equal de testify).
func (f *fixture) requireBalance(t *testing.T, auth entity.AuthContext, variantID string, want int64) {
	t.Helper()
	got := f.balance(t, auth, variantID)
	require.Truef(t, got.Equal(d(want)), "saldo de %s: esperado %d, obtenido %s", variantID, want, got)
}

func itemFor(t *testing.T, o *entity.StockOpname, variantID string) entity.StockOpnameItem {
	t.Helper()
	for _, it := range o.Items {
		if it.VariantID == variantID {
			return it
		}
	}
	t.Fatalf("el opname no tiene ítem para %s", variantID)
	return entity.StockOpnameItem{}
}
