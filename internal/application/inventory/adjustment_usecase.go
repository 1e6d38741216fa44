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

// AdjustmentUseCase ajustes manuales de stock. Cada ajuste es una única transacción irrevocable.
type AdjustmentUseCase struct {
	txRunner TxRunner
	audit    AuditSink
	now      func() time.Time
}

// NewAdjustmentUseCase construye el caso de uso.
func NewAdjustmentUseCase(txRunner TxRunner, audit AuditSink) *AdjustmentUseCase {
	if audit == nil {
		audit = NopAuditSink{}
	}
	return &AdjustmentUseCase{txRunner: txRunner, audit: audit, now: time.Now}
}

// AdjustmentItemInput diferencia con signo para una variante.
type AdjustmentItemInput struct {
	VariantID string
	QtyDiff   decimal.Decimal
	Note      string
}

// CreateAdjustmentInput entrada de CreateAdjustment; Reason es obligatorio.
type CreateAdjustmentInput struct {
	Reason string
	Note   string
	Items  []AdjustmentItemInput
}

// CreateAdjustment consolida ítems por variante, descarta los que suman cero, verifica que ningún
// saldo quede negativo y registra un movimiento ADJUST por ítem.
func (uc *AdjustmentUseCase) CreateAdjustment(ctx context.Context, auth entity.AuthContext, in CreateAdjustmentInput) (*entity.StockAdjustment, error) {
	if err := authorize(auth, true); err != nil {
		return nil, err
	}
	reason := strings.TrimSpace(in.Reason)
	if reason == "" {
		return nil, domain.Invalid("reason es requerido")
	}
	deltas, notes, err := mergeAdjustmentItems(in.Items)
	if err != nil {
		return nil, err
	}

	now := uc.now()
	adj := &entity.StockAdjustment{
		ID:        uuid.New().String(),
		TenantID:  auth.TenantID,
		Reason:    reason,
		Note:      strings.TrimSpace(in.Note),
		CreatedBy: auth.ActorID,
		CreatedAt: now,
	}
	movements := make([]*entity.StockMovement, 0, len(deltas))
	for _, d := range deltas {
		adj.Items = append(adj.Items, entity.StockAdjustmentItem{
			ID:           uuid.New().String(),
			AdjustmentID: adj.ID,
			TenantID:     auth.TenantID,
			VariantID:    d.VariantID,
			QtyDiff:      d.Qty,
			Note:         notes[d.VariantID],
		})
		movements = append(movements, &entity.StockMovement{
			ID:            uuid.New().String(),
			TenantID:      auth.TenantID,
			VariantID:     d.VariantID,
			Kind:          entity.MovementKindADJUST,
			Qty:           d.Qty,
			ReferenceKind: entity.ReferenceAdjustment,
			ReferenceID:   adj.ID,
			ActorID:       auth.ActorID,
			CreatedAt:     now,
			EffectiveAt:   now,
		})
	}

	err = uc.txRunner.Run(ctx, func(repos Repos) error {
		if err := ensureVariants(ctx, repos, auth.TenantID, ledger.VariantIDs(deltas)); err != nil {
			return err
		}
		if err := acquirePosting(ctx, repos, auth.TenantID); err != nil {
			return err
		}
		if err := checkBalances(ctx, repos, auth.TenantID, deltas); err != nil {
			return err
		}
		if err := repos.Adjustments.Create(ctx, adj); err != nil {
			return err
		}
		return appendMovements(ctx, repos, movements)
	})
	if err != nil {
		return nil, err
	}

	uc.audit.Emit(ctx, entity.AuditEvent{
		TenantID:   auth.TenantID,
		ActorID:    auth.ActorID,
		Action:     entity.AuditAdjustmentPosted,
		TargetType: entity.AuditTargetAdjustment,
		TargetID:   adj.ID,
		Metadata:   map[string]any{"reason": adj.Reason, "items": len(adj.Items)},
	})
	return adj, nil
}

// GetAdjustment obtiene un ajuste del tenant con sus ítems.
func (uc *AdjustmentUseCase) GetAdjustment(ctx context.Context, auth entity.AuthContext, adjustmentID string) (*entity.StockAdjustment, error) {
	if err := authorize(auth, false); err != nil {
		return nil, err
	}
	adjustmentID, ok := documentID(adjustmentID)
	if !ok {
		return nil, domain.ErrNotFound
	}
	var adj *entity.StockAdjustment
	err := uc.txRunner.Run(ctx, func(repos Repos) error {
		var err error
		adj, err = repos.Adjustments.GetByID(ctx, auth.TenantID, adjustmentID)
		return err
	})
	if err != nil {
		return nil, err
	}
	if adj == nil {
		return nil, domain.ErrNotFound
	}
	return adj, nil
}

// ListAdjustments lista los ajustes del tenant, más recientes primero.
func (uc *AdjustmentUseCase) ListAdjustments(ctx context.Context, auth entity.AuthContext, limit, offset int) ([]*entity.StockAdjustment, error) {
	if err := authorize(auth, false); err != nil {
		return nil, err
	}
	limit, offset = normalizePage(limit, offset)
	var list []*entity.StockAdjustment
	err := uc.txRunner.Run(ctx, func(repos Repos) error {
		var err error
		list, err = repos.Adjustments.List(ctx, auth.TenantID, limit, offset)
		return err
	})
	return list, err
}

func mergeAdjustmentItems(in []AdjustmentItemInput) ([]ledger.Delta, map[string]string, error) {
	deltas := make([]ledger.Delta, 0, len(in))
	notes := make(map[string]string, len(in))
	for _, it := range in {
		variantID := strings.TrimSpace(it.VariantID)
		if variantID == "" {
			return nil, nil, domain.Invalid("variant_id requerido en cada ítem")
		}
		if err := ledger.CheckQty("qty_diff", it.QtyDiff); err != nil {
			return nil, nil, err
		}
		deltas = append(deltas, ledger.Delta{VariantID: variantID, Qty: it.QtyDiff})
		if notes[variantID] == "" {
			notes[variantID] = strings.TrimSpace(it.Note)
		}
	}
	merged := ledger.Merge(deltas, true)
	if len(merged) == 0 {
		return nil, nil, domain.Invalid("el ajuste no tiene diferencias distintas de cero")
	}
	for _, d := range merged {
		if err := ledger.CheckQty("qty_diff", d.Qty); err != nil {
			return nil, nil, err
		}
	}
	return merged, notes, nil
}
