package entity

import "time"

// Acciones auditadas.
const (
	AuditReceivingCreated        = "receiving.created"
	AuditReceivingPosted         = "receiving.posted"
	AuditReceivingVoided         = "receiving.voided"
	AuditAdjustmentPosted        = "adjustment.posted"
	AuditOpnameStarted           = "opname.started"
	AuditOpnameItemCountedUpdate = "opname.item_counted_qty_updated"
	AuditOpnameFinalized         = "opname.finalized"
	AuditOpnameVoided            = "opname.voided"
)

// Tipos de objetivo auditados.
const (
	AuditTargetReceiving  = "receiving"
	AuditTargetAdjustment = "stock_adjustment"
	AuditTargetOpname     = "stock_opname"
	AuditTargetOpnameItem = "stock_opname_item"
)

// AuditEvent registro de actividad emitido tras cada transición exitosa.
type AuditEvent struct {
	ID         string
	TenantID   string
	ActorID    string
	Action     string
	TargetType string
	TargetID   string
	Metadata   map[string]any
	CreatedAt  time.Time
}
