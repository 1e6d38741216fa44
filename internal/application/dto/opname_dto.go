package dto

import (
	"time"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// StartOpnameRequest body opcional para POST /api/opnames.
type StartOpnameRequest struct {
	Note string `json:"note" validate:"max=500"`
}

// UpdateCountedQtyRequest body para PUT /api/opnames/:id/items/:itemId.
type UpdateCountedQtyRequest struct {
	CountedQty *decimal.Decimal `json:"counted_qty" validate:"required"`
}

// OpnameResponse salida de un conteo físico; Items vacío en listados.
type OpnameResponse struct {
	ID          string               `json:"id"`
	Status      string               `json:"status"`
	Note        string               `json:"note"`
	StartedAt   time.Time            `json:"started_at"`
	StartedBy   string               `json:"started_by"`
	FinalizedAt *time.Time           `json:"finalized_at,omitempty"`
	FinalizedBy string               `json:"finalized_by,omitempty"`
	VoidedAt    *time.Time           `json:"voided_at,omitempty"`
	VoidedBy    string               `json:"voided_by,omitempty"`
	Items       []OpnameItemResponse `json:"items,omitempty"`
}

// OpnameItemResponse salida de un ítem del conteo.
type OpnameItemResponse struct {
	ID         string          `json:"id"`
	VariantID  string          `json:"variant_id"`
	SystemQty  decimal.Decimal `json:"system_qty"`
	CountedQty decimal.Decimal `json:"counted_qty"`
	DiffQty    decimal.Decimal `json:"diff_qty"`
	UpdatedAt  time.Time       `json:"updated_at"`
	UpdatedBy  string          `json:"updated_by"`
}

// FromOpname convierte la entidad en respuesta.
func FromOpname(o *entity.StockOpname) OpnameResponse {
	out := OpnameResponse{
		ID:          o.ID,
		Status:      o.Status,
		Note:        o.Note,
		StartedAt:   o.StartedAt,
		StartedBy:   o.StartedBy,
		FinalizedAt: o.FinalizedAt,
		FinalizedBy: o.FinalizedBy,
		VoidedAt:    o.VoidedAt,
		VoidedBy:    o.VoidedBy,
	}
	for i := range o.Items {
		out.Items = append(out.Items, FromOpnameItem(&o.Items[i]))
	}
	return out
}

// FromOpnameItem convierte un ítem en respuesta.
func FromOpnameItem(it *entity.StockOpnameItem) OpnameItemResponse {
	return OpnameItemResponse{
		ID:         it.ID,
		VariantID:  it.VariantID,
		SystemQty:  it.SystemQty,
		CountedQty: it.CountedQty,
		DiffQty:    it.DiffQty,
		UpdatedAt:  it.UpdatedAt,
		UpdatedBy:  it.UpdatedBy,
	}
}
