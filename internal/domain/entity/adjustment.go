package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockAdjustment es una corrección manual con motivo obligatorio; se crea ya aplicada y no cambia.
type StockAdjustment struct {
	ID        string
	TenantID  string
	Reason    string
	Note      string
	CreatedBy string
	CreatedAt time.Time
	Items     []StockAdjustmentItem
}

// StockAdjustmentItem diferencia con signo (≠ 0) para una variante.
type StockAdjustmentItem struct {
	ID           string
	AdjustmentID string
	TenantID     string
	VariantID    string
	QtyDiff      decimal.Decimal
	Note         string
}
