package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una recepción.
const (
	ReceivingStatusDraft  = "DRAFT"
	ReceivingStatusPosted = "POSTED"
	ReceivingStatusVoid   = "VOID"
)

// Receiving es un documento de entrada de mercancía. POSTED y VOID son terminales.
type Receiving struct {
	ID        string
	TenantID  string
	Status    string
	Note      string
	CreatedBy string
	CreatedAt time.Time
	PostedAt  *time.Time
	PostedBy  string
	VoidedAt  *time.Time
	VoidedBy  string
	Lines     []ReceivingLine
}

// ReceivingLine es una línea de la recepción; a lo sumo una por variante.
type ReceivingLine struct {
	ID          string
	ReceivingID string
	TenantID    string
	VariantID   string
	Qty         decimal.Decimal
	Note        string
}
