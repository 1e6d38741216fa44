// Package audit entrega los eventos de auditoría fuera del camino crítico de las operaciones de inventario.
package audit

import (
	"context"
	"sync"
	"time"

	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
	"github.com/jhoicas/inventario-ledger/pkg/logger"
)

var _ inventory.AuditSink = (*AsyncSink)(nil)

const writeTimeout = 5 * time.Second

// AsyncSink encola eventos en un canal con buffer; un worker los persiste con AuditLogRepository.
// Emit nunca bloquea: con el buffer lleno el evento se descarta y se registra en el log.
type AsyncSink struct {
	repo   repository.AuditLogRepository
	log    *logger.Logger
	events chan entity.AuditEvent
	now    func() time.Time

	mu     sync.RWMutex
	closed bool
	done   chan struct{}
}

// NewAsyncSink arranca el worker. buffer <= 0 usa 256.
func NewAsyncSink(repo repository.AuditLogRepository, log *logger.Logger, buffer int) *AsyncSink {
	if buffer <= 0 {
		buffer = 256
	}
	s := &AsyncSink{
		repo:   repo,
		log:    log,
		events: make(chan entity.AuditEvent, buffer),
		now:    time.Now,
		done:   make(chan struct{}),
	}
	go s.run()
	return s
}

// Emit encola el evento. Tras Close los eventos se descartan.
func (s *AsyncSink) Emit(_ context.Context, event entity.AuditEvent) {
	if event.CreatedAt.IsZero() {
		event.CreatedAt = s.now()
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		s.warn(event, "auditoría cerrada, evento descartado")
		return
	}
	select {
	case s.events <- event:
	default:
		s.warn(event, "buffer de auditoría lleno, evento descartado")
	}
}

// Close deja de aceptar eventos y espera a que el worker vacíe la cola o ctx expire.
func (s *AsyncSink) Close(ctx context.Context) error {
	s.mu.Lock()
	if !s.closed {
		s.closed = true
		close(s.events)
	}
	s.mu.Unlock()

	select {
	case <-s.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *AsyncSink) run() {
	defer close(s.done)
	for event := range s.events {
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		err := s.repo.Insert(ctx, &event)
		cancel()
		if err != nil && s.log != nil {
			s.log.Error().Err(err).
				Str("tenant_id", event.TenantID).
				Str("action", event.Action).
				Str("target_id", event.TargetID).
				Msg("persistir evento de auditoría")
		}
	}
}

func (s *AsyncSink) warn(event entity.AuditEvent, msg string) {
	if s.log == nil {
		return
	}
	s.log.Warn().
		Str("tenant_id", event.TenantID).
		Str("action", event.Action).
		Str("target_id", event.TargetID).
		Msg(msg)
}
