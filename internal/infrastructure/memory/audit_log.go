package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

var _ repository.AuditLogRepository = (*AuditLog)(nil)

// AuditLog destino de auditoría en memoria.
type AuditLog struct {
	mu     sync.Mutex
	events []entity.AuditEvent
}

// NewAuditLog construye el repositorio vacío.
func NewAuditLog() *AuditLog {
	return &AuditLog{}
}

func (l *AuditLog) Insert(_ context.Context, event *entity.AuditEvent) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, *event)
	return nil
}

// Events copia de los eventos registrados.
func (l *AuditLog) Events() []entity.AuditEvent {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]entity.AuditEvent(nil), l.events...)
}

// Actions nombres de acción en orden de llegada.
func (l *AuditLog) Actions() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, 0, len(l.events))
	for _, e := range l.events {
		out = append(out, e.Action)
	}
	return out
}
