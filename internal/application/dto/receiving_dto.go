package dto

import (
	"time"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// CreateReceivingRequest body para POST /api/receivings.
type CreateReceivingRequest struct {
	Status string                 `json:"status" validate:"omitempty,oneof=DRAFT POSTED"`
	Note   string                 `json:"note" validate:"max=500"`
	Lines  []ReceivingLineRequest `json:"lines" validate:"required,min=1,dive"`
}

// ReceivingLineRequest línea de recepción.
type ReceivingLineRequest struct {
	VariantID string          `json:"variant_id" validate:"required"`
	Qty       decimal.Decimal `json:"qty"`
	Note      string          `json:"note" validate:"max=500"`
}

// ReceivingResponse salida de una recepción.
type ReceivingResponse struct {
	ID        string                  `json:"id"`
	Status    string                  `json:"status"`
	Note      string                  `json:"note"`
	CreatedBy string                  `json:"created_by"`
	CreatedAt time.Time               `json:"created_at"`
	PostedAt  *time.Time              `json:"posted_at,omitempty"`
	PostedBy  string                  `json:"posted_by,omitempty"`
	VoidedAt  *time.Time              `json:"voided_at,omitempty"`
	VoidedBy  string                  `json:"voided_by,omitempty"`
	Lines     []ReceivingLineResponse `json:"lines"`
}

// ReceivingLineResponse salida de una línea.
type ReceivingLineResponse struct {
	ID        string          `json:"id"`
	VariantID string          `json:"variant_id"`
	Qty       decimal.Decimal `json:"qty"`
	Note      string          `json:"note,omitempty"`
}

// FromReceiving convierte la entidad en respuesta.
func FromReceiving(r *entity.Receiving) ReceivingResponse {
	out := ReceivingResponse{
		ID:        r.ID,
		Status:    r.Status,
		Note:      r.Note,
		CreatedBy: r.CreatedBy,
		CreatedAt: r.CreatedAt,
		PostedAt:  r.PostedAt,
		PostedBy:  r.PostedBy,
		VoidedAt:  r.VoidedAt,
		VoidedBy:  r.VoidedBy,
		Lines:     make([]ReceivingLineResponse, 0, len(r.Lines)),
	}
	for _, l := range r.Lines {
		out.Lines = append(out.Lines, ReceivingLineResponse{ID: l.ID, VariantID: l.VariantID, Qty: l.Qty, Note: l.Note})
	}
	return out
}
