package dto

import (
	"time"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// CreateAdjustmentRequest body para POST /api/adjustments. qty_diff con signo.
type CreateAdjustmentRequest struct {
	Reason string                  `json:"reason" validate:"required,max=200"`
	Note   string                  `json:"note" validate:"max=500"`
	Items  []AdjustmentItemRequest `json:"items" validate:"required,min=1,dive"`
}

// AdjustmentItemRequest diferencia firmada para una variante.
type AdjustmentItemRequest struct {
	VariantID string          `json:"variant_id" validate:"required"`
	QtyDiff   decimal.Decimal `json:"qty_diff"`
	Note      string          `json:"note" validate:"max=500"`
}

// AdjustmentResponse salida de un ajuste.
type AdjustmentResponse struct {
	ID        string                   `json:"id"`
	Reason    string                   `json:"reason"`
	Note      string                   `json:"note"`
	CreatedBy string                   `json:"created_by"`
	CreatedAt time.Time                `json:"created_at"`
	Items     []AdjustmentItemResponse `json:"items"`
}

type AdjustmentItemResponse struct {
	ID        string          `json:"id"`
	VariantID string          `json:"variant_id"`
	QtyDiff   decimal.Decimal `json:"qty_diff"`
	Note      string          `json:"note,omitempty"`
}

// FromAdjustment convierte la entidad en respuesta.
func FromAdjustment(a *entity.StockAdjustment) AdjustmentResponse {
	out := AdjustmentResponse{
		ID:        a.ID,
		Reason:    a.Reason,
		Note:      a.Note,
		CreatedBy: a.CreatedBy,
		CreatedAt: a.CreatedAt,
		Items:     make([]AdjustmentItemResponse, 0, len(a.Items)),
	}
	for _, it := range a.Items {
		out.Items = append(out.Items, AdjustmentItemResponse{ID: it.ID, VariantID: it.VariantID, QtyDiff: it.QtyDiff, Note: it.Note})
	}
	return out
}
