package dto

import (
	"time"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// BalanceResponse saldo derivado de una variante.
type BalanceResponse struct {
	VariantID string          `json:"variant_id"`
	Balance   decimal.Decimal `json:"balance"`
}

// BalancesResponse saldos en el orden pedido.
type BalancesResponse struct {
	Balances []BalanceResponse `json:"balances"`
}

// MovementResponse fila del ledger.
type MovementResponse struct {
	ID            string          `json:"id"`
	VariantID     string          `json:"variant_id"`
	Kind          string          `json:"kind"`
	Qty           decimal.Decimal `json:"qty"`
	ReferenceKind string          `json:"reference_kind"`
	ReferenceID   string          `json:"reference_id"`
	ActorID       string          `json:"actor_id"`
	CreatedAt     time.Time       `json:"created_at"`
	EffectiveAt   time.Time       `json:"effective_at"`
}

// FromMovement convierte la entidad en respuesta.
func FromMovement(m *entity.StockMovement) MovementResponse {
	return MovementResponse{
		ID:            m.ID,
		VariantID:     m.VariantID,
		Kind:          m.Kind,
		Qty:           m.Qty,
		ReferenceKind: m.ReferenceKind,
		ReferenceID:   m.ReferenceID,
		ActorID:       m.ActorID,
		CreatedAt:     m.CreatedAt,
		EffectiveAt:   m.EffectiveAt,
	}
}
