// Package ledger agrupa las reglas puras del ledger de stock: convención de signos,
// consolidación por variante y el invariante de saldo no negativo.
package ledger

import (
	"fmt"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// QtyScale decimales que persiste el store (NUMERIC(18,4)).
const QtyScale = 4

// maxQty primer valor que ya no cabe en NUMERIC(18,4).
var maxQty = decimal.New(1, 14)

// CheckQty rechaza cantidades que el store no puede guardar sin redondear o desbordar.
func CheckQty(field string, q decimal.Decimal) error {
	if !q.Equal(q.Truncate(QtyScale)) {
		return domain.Invalid("%s admite hasta %d decimales (%s)", field, QtyScale, q)
	}
	if q.Abs().GreaterThanOrEqual(maxQty) {
		return domain.Invalid("%s fuera de rango (%s)", field, q)
	}
	return nil
}

// Delta cambio pendiente de cantidad para una variante.
type Delta struct {
	VariantID string
	Qty       decimal.Decimal
}

// Merge suma las cantidades por variante conservando el orden de primera aparición.
// Con dropZero se descartan las variantes cuya suma es cero.
func Merge(deltas []Delta, dropZero bool) []Delta {
	index := make(map[string]int, len(deltas))
	out := make([]Delta, 0, len(deltas))
	for _, d := range deltas {
		if i, ok := index[d.VariantID]; ok {
			out[i].Qty = out[i].Qty.Add(d.Qty)
			continue
		}
		index[d.VariantID] = len(out)
		out = append(out, d)
	}
	if !dropZero {
		return out
	}
	kept := out[:0]
	for _, d := range out {
		if !d.Qty.IsZero() {
			kept = append(kept, d)
		}
	}
	return kept
}

// VariantIDs devuelve los IDs de variante de los deltas, en el mismo orden.
func VariantIDs(deltas []Delta) []string {
	ids := make([]string, 0, len(deltas))
	for _, d := range deltas {
		ids = append(ids, d.VariantID)
	}
	return ids
}

// Balances suma la contribución firmada de cada movimiento por variante.
func Balances(movements []*entity.StockMovement) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal)
	for _, m := range movements {
		out[m.VariantID] = out[m.VariantID].Add(m.Signed())
	}
	return out
}

// CheckNonNegative verifica que saldo + delta >= 0 para cada variante.
// Una variante ausente del mapa tiene saldo 0. Devuelve el primer *domain.InsufficientStockError.
func CheckNonNegative(balances map[string]decimal.Decimal, deltas []Delta) error {
	for _, d := range deltas {
		current := balances[d.VariantID]
		if current.Add(d.Qty).IsNegative() {
			return &domain.InsufficientStockError{VariantID: d.VariantID, Balance: current, Delta: d.Qty}
		}
	}
	return nil
}

// ValidateMovement comprueba la forma del movimiento: IN/OUT estrictamente positivos, ADJUST distinto de cero.
func ValidateMovement(m *entity.StockMovement) error {
	if m.TenantID == "" || m.VariantID == "" || m.ReferenceID == "" {
		return domain.Invalid("movimiento sin tenant, variante o referencia")
	}
	if err := CheckQty("qty", m.Qty); err != nil {
		return err
	}
	switch m.Kind {
	case entity.MovementKindIN, entity.MovementKindOUT:
		if !m.Qty.IsPositive() {
			return domain.Invalid("movimiento %s con cantidad %s", m.Kind, m.Qty)
		}
	case entity.MovementKindADJUST:
		if m.Qty.IsZero() {
			return domain.Invalid("ajuste con cantidad cero")
		}
	default:
		return fmt.Errorf("%w: tipo de movimiento %q", domain.ErrInvalidInput, m.Kind)
	}
	switch m.ReferenceKind {
	case entity.ReferenceReceiving, entity.ReferenceAdjustment, entity.ReferenceOpname:
		return nil
	}
	return domain.Invalid("referencia %q desconocida", m.ReferenceKind)
}
