package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento del ledger.
const (
	MovementKindIN     = "IN"     // entrada, qty > 0
	MovementKindOUT    = "OUT"    // salida, qty > 0 (resta)
	MovementKindADJUST = "ADJUST" // ajuste, qty con signo
)

// Documentos que originan movimientos.
const (
	ReferenceReceiving  = "RECEIVING"
	ReferenceAdjustment = "ADJUSTMENT"
	ReferenceOpname     = "OPNAME"
)

// StockMovement es un evento inmutable del ledger de stock. Nunca se actualiza ni se borra.
type StockMovement struct {
	ID            string
	TenantID      string
	VariantID     string
	Kind          string
	Qty           decimal.Decimal
	ReferenceKind string
	ReferenceID   string
	ActorID       string
	CreatedAt     time.Time
	EffectiveAt   time.Time
}

// Signed devuelve la contribución del movimiento al saldo: +qty IN, -qty OUT, qty ADJUST.
func (m *StockMovement) Signed() decimal.Decimal {
	switch m.Kind {
	case MovementKindIN:
		return m.Qty
	case MovementKindOUT:
		return m.Qty.Neg()
	default:
		return m.Qty
	}
}
