package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados del conteo físico (opname).
const (
	OpnameStatusInProgress = "IN_PROGRESS"
	OpnameStatusFinalized  = "FINALIZED"
	OpnameStatusVoid       = "VOID"
)

// StockOpname es un ciclo de conteo físico. Solo puede haber uno IN_PROGRESS por empresa.
type StockOpname struct {
	ID          string
	TenantID    string
	Status      string
	Note        string
	StartedAt   time.Time
	StartedBy   string
	FinalizedAt *time.Time
	FinalizedBy string
	VoidedAt    *time.Time
	VoidedBy    string
	Items       []StockOpnameItem
}

// StockOpnameItem foto del saldo al iniciar (SystemQty) y cantidad contada.
type StockOpnameItem struct {
	ID         string
	OpnameID   string
	TenantID   string
	VariantID  string
	SystemQty  decimal.Decimal
	CountedQty decimal.Decimal
	DiffQty    decimal.Decimal
	UpdatedAt  time.Time
	UpdatedBy  string
}

// Recount fija la cantidad contada y recalcula la diferencia contra el sistema.
func (i *StockOpnameItem) Recount(counted decimal.Decimal) {
	i.CountedQty = counted
	i.DiffQty = counted.Sub(i.SystemQty)
}
