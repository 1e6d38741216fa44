package inventory

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/ledger"
	"github.com/shopspring/decimal"
)

// ReceivingUseCase flujo de entradas de mercancía: DRAFT → POSTED | VOID.
type ReceivingUseCase struct {
	txRunner TxRunner
	audit    AuditSink
	now      func() time.Time
}

// NewReceivingUseCase construye el caso de uso.
func NewReceivingUseCase(txRunner TxRunner, audit AuditSink) *ReceivingUseCase {
	if audit == nil {
		audit = NopAuditSink{}
	}
	return &ReceivingUseCase{txRunner: txRunner, audit: audit, now: time.Now}
}

// ReceivingLineInput línea pedida por el llamador.
type ReceivingLineInput struct {
	VariantID string
	Qty       decimal.Decimal
	Note      string
}

// CreateReceivingInput entrada de CreateReceiving. Status vacío equivale a DRAFT.
type CreateReceivingInput struct {
	Status string
	Note   string
	Lines  []ReceivingLineInput
}

// CreateReceiving crea la recepción como borrador o directamente contabilizada.
// Las líneas repetidas de una variante se consolidan sumando cantidades.
func (uc *ReceivingUseCase) CreateReceiving(ctx context.Context, auth entity.AuthContext, in CreateReceivingInput) (*entity.Receiving, error) {
	if err := authorize(auth, true); err != nil {
		return nil, err
	}
	status := in.Status
	if status == "" {
		status = entity.ReceivingStatusDraft
	}
	if status != entity.ReceivingStatusDraft && status != entity.ReceivingStatusPosted {
		return nil, domain.Invalid("status %q no permitido al crear", in.Status)
	}
	lines, err := mergeReceivingLines(in.Lines)
	if err != nil {
		return nil, err
	}

	now := uc.now()
	receiving := &entity.Receiving{
		ID:        uuid.New().String(),
		TenantID:  auth.TenantID,
		Status:    status,
		Note:      strings.TrimSpace(in.Note),
		CreatedBy: auth.ActorID,
		CreatedAt: now,
	}
	for _, l := range lines {
		receiving.Lines = append(receiving.Lines, entity.ReceivingLine{
			ID:          uuid.New().String(),
			ReceivingID: receiving.ID,
			TenantID:    auth.TenantID,
			VariantID:   l.VariantID,
			Qty:         l.Qty,
			Note:        l.Note,
		})
	}
	posted := status == entity.ReceivingStatusPosted
	if posted {
		receiving.PostedAt = &now
		receiving.PostedBy = auth.ActorID
	}

	err = uc.txRunner.Run(ctx, func(repos Repos) error {
		if posted {
			if err := acquirePosting(ctx, repos, auth.TenantID); err != nil {
				return err
			}
		}
		variantIDs := make([]string, 0, len(receiving.Lines))
		for _, l := range receiving.Lines {
			variantIDs = append(variantIDs, l.VariantID)
		}
		if err := ensureVariants(ctx, repos, auth.TenantID, variantIDs); err != nil {
			return err
		}
		if err := repos.Receivings.Create(ctx, receiving); err != nil {
			return err
		}
		if !posted {
			return nil
		}
		return appendMovements(ctx, repos, receivingMovements(receiving, auth.ActorID, now))
	})
	if err != nil {
		return nil, err
	}

	uc.emit(ctx, auth, entity.AuditReceivingCreated, receiving)
	if posted {
		uc.emit(ctx, auth, entity.AuditReceivingPosted, receiving)
	}
	return receiving, nil
}

// PostReceiving contabiliza un borrador: una entrada IN por línea.
// La actualización condicional DRAFT→POSTED evita la doble contabilización.
func (uc *ReceivingUseCase) PostReceiving(ctx context.Context, auth entity.AuthContext, receivingID string) (*entity.Receiving, error) {
	if err := authorize(auth, true); err != nil {
		return nil, err
	}
	receivingID, ok := documentID(receivingID)
	if !ok {
		return nil, domain.ErrNotFound
	}
	now := uc.now()
	var receiving *entity.Receiving
	err := uc.txRunner.Run(ctx, func(repos Repos) error {
		var err error
		receiving, err = repos.Receivings.GetByID(ctx, auth.TenantID, receivingID)
		if err != nil {
			return err
		}
		if receiving == nil {
			return domain.ErrNotFound
		}
		if err := acquirePosting(ctx, repos, auth.TenantID); err != nil {
			return err
		}
		if receiving.Status != entity.ReceivingStatusDraft {
			return domain.ErrInvalidStatus
		}
		if len(receiving.Lines) == 0 {
			return domain.Invalid("la recepción no tiene líneas")
		}
		ok, err := repos.Receivings.TransitionStatus(ctx, auth.TenantID, receivingID,
			entity.ReceivingStatusDraft, entity.ReceivingStatusPosted, auth.ActorID, now)
		if err != nil {
			return err
		}
		if !ok {
			return domain.ErrInvalidStatus
		}
		receiving.Status = entity.ReceivingStatusPosted
		receiving.PostedAt = &now
		receiving.PostedBy = auth.ActorID
		return appendMovements(ctx, repos, receivingMovements(receiving, auth.ActorID, now))
	})
	if err != nil {
		return nil, err
	}
	uc.emit(ctx, auth, entity.AuditReceivingPosted, receiving)
	return receiving, nil
}

// VoidReceiving anula un borrador. Una recepción POSTED nunca se anula; se revierte con un ajuste.
func (uc *ReceivingUseCase) VoidReceiving(ctx context.Context, auth entity.AuthContext, receivingID string) (*entity.Receiving, error) {
	if err := authorize(auth, true); err != nil {
		return nil, err
	}
	receivingID, ok := documentID(receivingID)
	if !ok {
		return nil, domain.ErrNotFound
	}
	now := uc.now()
	var receiving *entity.Receiving
	err := uc.txRunner.Run(ctx, func(repos Repos) error {
		var err error
		receiving, err = repos.Receivings.GetByID(ctx, auth.TenantID, receivingID)
		if err != nil {
			return err
		}
		if receiving == nil {
			return domain.ErrNotFound
		}
		ok, err := repos.Receivings.TransitionStatus(ctx, auth.TenantID, receivingID,
			entity.ReceivingStatusDraft, entity.ReceivingStatusVoid, auth.ActorID, now)
		if err != nil {
			return err
		}
		if !ok {
			return domain.ErrInvalidStatus
		}
		receiving.Status = entity.ReceivingStatusVoid
		receiving.VoidedAt = &now
		receiving.VoidedBy = auth.ActorID
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.emit(ctx, auth, entity.AuditReceivingVoided, receiving)
	return receiving, nil
}

// GetReceiving obtiene una recepción del tenant con sus líneas.
func (uc *ReceivingUseCase) GetReceiving(ctx context.Context, auth entity.AuthContext, receivingID string) (*entity.Receiving, error) {
	if err := authorize(auth, false); err != nil {
		return nil, err
	}
	receivingID, ok := documentID(receivingID)
	if !ok {
		return nil, domain.ErrNotFound
	}
	var receiving *entity.Receiving
	err := uc.txRunner.Run(ctx, func(repos Repos) error {
		var err error
		receiving, err = repos.Receivings.GetByID(ctx, auth.TenantID, receivingID)
		return err
	})
	if err != nil {
		return nil, err
	}
	if receiving == nil {
		return nil, domain.ErrNotFound
	}
	return receiving, nil
}

// ListReceivings lista recepciones del tenant; status vacío = todas.
func (uc *ReceivingUseCase) ListReceivings(ctx context.Context, auth entity.AuthContext, status string, limit, offset int) ([]*entity.Receiving, error) {
	if err := authorize(auth, false); err != nil {
		return nil, err
	}
	switch status {
	case "", entity.ReceivingStatusDraft, entity.ReceivingStatusPosted, entity.ReceivingStatusVoid:
	default:
		return nil, domain.Invalid("status %q desconocido", status)
	}
	limit, offset = normalizePage(limit, offset)
	var list []*entity.Receiving
	err := uc.txRunner.Run(ctx, func(repos Repos) error {
		var err error
		list, err = repos.Receivings.List(ctx, auth.TenantID, status, limit, offset)
		return err
	})
	return list, err
}

func (uc *ReceivingUseCase) emit(ctx context.Context, auth entity.AuthContext, action string, r *entity.Receiving) {
	uc.audit.Emit(ctx, entity.AuditEvent{
		TenantID:   auth.TenantID,
		ActorID:    auth.ActorID,
		Action:     action,
		TargetType: entity.AuditTargetReceiving,
		TargetID:   r.ID,
		Metadata:   map[string]any{"status": r.Status, "lines": len(r.Lines)},
	})
}

// mergeReceivingLines valida y consolida líneas por variante. Se conserva la primera nota no vacía.
func mergeReceivingLines(in []ReceivingLineInput) ([]ReceivingLineInput, error) {
	deltas := make([]ledger.Delta, 0, len(in))
	notes := make(map[string]string, len(in))
	for _, l := range in {
		variantID := strings.TrimSpace(l.VariantID)
		if variantID == "" {
			return nil, domain.Invalid("variant_id requerido en cada línea")
		}
		if !l.Qty.IsPositive() {
			return nil, domain.Invalid("cantidad debe ser mayor que cero (variante %s)", variantID)
		}
		if err := ledger.CheckQty("qty", l.Qty); err != nil {
			return nil, err
		}
		deltas = append(deltas, ledger.Delta{VariantID: variantID, Qty: l.Qty})
		if notes[variantID] == "" {
			notes[variantID] = strings.TrimSpace(l.Note)
		}
	}
	merged := ledger.Merge(deltas, false)
	if len(merged) == 0 {
		return nil, domain.Invalid("la recepción requiere al menos una línea")
	}
	out := make([]ReceivingLineInput, 0, len(merged))
	for _, d := range merged {
		if err := ledger.CheckQty("qty", d.Qty); err != nil {
			return nil, err
		}
		out = append(out, ReceivingLineInput{VariantID: d.VariantID, Qty: d.Qty, Note: notes[d.VariantID]})
	}
	return out, nil
}

func receivingMovements(r *entity.Receiving, actorID string, at time.Time) []*entity.StockMovement {
	movements := make([]*entity.StockMovement, 0, len(r.Lines))
	for _, l := range r.Lines {
		movements = append(movements, &entity.StockMovement{
			ID:            uuid.New().String(),
			TenantID:      r.TenantID,
			VariantID:     l.VariantID,
			Kind:          entity.MovementKindIN,
			Qty:           l.Qty,
			ReferenceKind: entity.ReferenceReceiving,
			ReferenceID:   r.ID,
			ActorID:       actorID,
			CreatedAt:     at,
			EffectiveAt:   at,
		})
	}
	return movements
}
