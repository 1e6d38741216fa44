package entity

import "time"

// ProductVariant es la unidad de stock (SKU) de una empresa. DeletedAt != nil la excluye del ledger.
type ProductVariant struct {
	ID        string
	TenantID  string
	ProductID string
	SKU       string
	Name      string
	CreatedAt time.Time
	DeletedAt *time.Time
}

// Active indica si la variante puede recibir movimientos.
func (v *ProductVariant) Active() bool {
	return v.DeletedAt == nil
}
