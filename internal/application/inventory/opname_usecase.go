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

// OpnameUseCase conteo físico de inventario: IN_PROGRESS → FINALIZED | VOID.
// Mientras hay uno IN_PROGRESS, ningún otro flujo puede escribir en el ledger del tenant.
type OpnameUseCase struct {
	txRunner TxRunner
	audit    AuditSink
	now      func() time.Time
}

// NewOpnameUseCase construye el caso de uso.
func NewOpnameUseCase(txRunner TxRunner, audit AuditSink) *OpnameUseCase {
	if audit == nil {
		audit = NopAuditSink{}
	}
	return &OpnameUseCase{txRunner: txRunner, audit: audit, now: time.Now}
}

// StartOpname toma una foto del saldo de cada variante activa. CountedQty arranca igual a SystemQty.
// El índice único parcial (tenant, IN_PROGRESS) es la garantía final ante dos inicios concurrentes.
func (uc *OpnameUseCase) StartOpname(ctx context.Context, auth entity.AuthContext, note string) (*entity.StockOpname, error) {
	if err := authorize(auth, true); err != nil {
		return nil, err
	}
	now := uc.now()
	var opname *entity.StockOpname
	err := uc.txRunner.Run(ctx, func(repos Repos) error {
		if err := acquirePosting(ctx, repos, auth.TenantID); err != nil {
			return err
		}
		variants, err := repos.Variants.ListActive(ctx, auth.TenantID)
		if err != nil {
			return err
		}
		ids := make([]string, 0, len(variants))
		for _, v := range variants {
			ids = append(ids, v.ID)
		}
		balances := map[string]decimal.Decimal{}
		if len(ids) > 0 {
			balances, err = repos.Movements.GetBalances(ctx, auth.TenantID, ids)
			if err != nil {
				return err
			}
		}

		opname = &entity.StockOpname{
			ID:        uuid.New().String(),
			TenantID:  auth.TenantID,
			Status:    entity.OpnameStatusInProgress,
			Note:      strings.TrimSpace(note),
			StartedAt: now,
			StartedBy: auth.ActorID,
			Items:     make([]entity.StockOpnameItem, 0, len(ids)),
		}
		for _, id := range ids {
			system := balances[id]
			opname.Items = append(opname.Items, entity.StockOpnameItem{
				ID:         uuid.New().String(),
				OpnameID:   opname.ID,
				TenantID:   auth.TenantID,
				VariantID:  id,
				SystemQty:  system,
				CountedQty: system,
				DiffQty:    decimal.Zero,
				UpdatedAt:  now,
				UpdatedBy:  auth.ActorID,
			})
		}
		return repos.Opnames.Create(ctx, opname)
	})
	if err != nil {
		return nil, err
	}
	uc.audit.Emit(ctx, entity.AuditEvent{
		TenantID:   auth.TenantID,
		ActorID:    auth.ActorID,
		Action:     entity.AuditOpnameStarted,
		TargetType: entity.AuditTargetOpname,
		TargetID:   opname.ID,
		Metadata:   map[string]any{"items": len(opname.Items)},
	})
	return opname, nil
}

// UpdateCountedQty registra la cantidad contada de un ítem. Última escritura gana.
func (uc *OpnameUseCase) UpdateCountedQty(ctx context.Context, auth entity.AuthContext, opnameID, itemID string, counted decimal.Decimal) (*entity.StockOpnameItem, error) {
	if err := authorize(auth, true); err != nil {
		return nil, err
	}
	opnameID, okOpname := documentID(opnameID)
	itemID, okItem := documentID(itemID)
	if !okOpname || !okItem {
		return nil, domain.ErrNotFound
	}
	if counted.IsNegative() {
		return nil, domain.Invalid("counted_qty no puede ser negativo")
	}
	if err := ledger.CheckQty("counted_qty", counted); err != nil {
		return nil, err
	}
	now := uc.now()
	var item *entity.StockOpnameItem
	err := uc.txRunner.Run(ctx, func(repos Repos) error {
		header, err := repos.Opnames.GetHeaderForUpdate(ctx, auth.TenantID, opnameID)
		if err != nil {
			return err
		}
		if header == nil {
			return domain.ErrNotFound
		}
		if header.Status != entity.OpnameStatusInProgress {
			return domain.ErrInvalidStatus
		}
		item, err = repos.Opnames.GetItem(ctx, auth.TenantID, opnameID, itemID)
		if err != nil {
			return err
		}
		if item == nil {
			return domain.ErrNotFound
		}
		item.Recount(counted)
		item.UpdatedAt = now
		item.UpdatedBy = auth.ActorID
		return repos.Opnames.UpdateItemCount(ctx, item)
	})
	if err != nil {
		return nil, err
	}
	uc.audit.Emit(ctx, entity.AuditEvent{
		TenantID:   auth.TenantID,
		ActorID:    auth.ActorID,
		Action:     entity.AuditOpnameItemCountedUpdate,
		TargetType: entity.AuditTargetOpnameItem,
		TargetID:   item.ID,
		Metadata: map[string]any{
			"opname_id":   opnameID,
			"variant_id":  item.VariantID,
			"counted_qty": item.CountedQty.String(),
			"diff_qty":    item.DiffQty.String(),
		},
	})
	return item, nil
}

// FinalizeOpname publica las diferencias distintas de cero como movimientos ADJUST.
// El saldo resultante se verifica contra el ledger actual, no contra la foto inicial.
// Si algún saldo quedara negativo se aborta todo y el opname sigue IN_PROGRESS.
func (uc *OpnameUseCase) FinalizeOpname(ctx context.Context, auth entity.AuthContext, opnameID string) (*entity.StockOpname, error) {
	if err := authorize(auth, true); err != nil {
		return nil, err
	}
	opnameID, ok := documentID(opnameID)
	if !ok {
		return nil, domain.ErrNotFound
	}
	now := uc.now()
	var opname *entity.StockOpname
	var posted int
	err := uc.txRunner.Run(ctx, func(repos Repos) error {
		if err := repos.Guard.LockTenant(ctx, auth.TenantID); err != nil {
			return err
		}
		// La cabecera se bloquea antes de leer ítems: un conteo pendiente termina primero
		// y la lectura siguiente ya lo ve.
		header, err := repos.Opnames.GetHeaderForUpdate(ctx, auth.TenantID, opnameID)
		if err != nil {
			return err
		}
		if header == nil {
			return domain.ErrNotFound
		}
		if header.Status != entity.OpnameStatusInProgress {
			return domain.ErrInvalidStatus
		}
		opname, err = repos.Opnames.GetByID(ctx, auth.TenantID, opnameID)
		if err != nil {
			return err
		}
		if opname == nil {
			return domain.ErrNotFound
		}

		deltas := make([]ledger.Delta, 0, len(opname.Items))
		for i := range opname.Items {
			it := &opname.Items[i]
			it.DiffQty = it.CountedQty.Sub(it.SystemQty)
			deltas = append(deltas, ledger.Delta{VariantID: it.VariantID, Qty: it.DiffQty})
		}
		deltas = ledger.Merge(deltas, true)
		if len(deltas) > 0 {
			if err := checkBalances(ctx, repos, auth.TenantID, deltas); err != nil {
				return err
			}
		}

		ok, err := repos.Opnames.TransitionStatus(ctx, auth.TenantID, opnameID,
			entity.OpnameStatusInProgress, entity.OpnameStatusFinalized, auth.ActorID, now)
		if err != nil {
			return err
		}
		if !ok {
			return domain.ErrInvalidStatus
		}
		if err := repos.Opnames.UpdateItemDiffs(ctx, opname.Items); err != nil {
			return err
		}

		movements := make([]*entity.StockMovement, 0, len(deltas))
		for _, d := range deltas {
			movements = append(movements, &entity.StockMovement{
				ID:            uuid.New().String(),
				TenantID:      auth.TenantID,
				VariantID:     d.VariantID,
				Kind:          entity.MovementKindADJUST,
				Qty:           d.Qty,
				ReferenceKind: entity.ReferenceOpname,
				ReferenceID:   opnameID,
				ActorID:       auth.ActorID,
				CreatedAt:     now,
				EffectiveAt:   now,
			})
		}
		posted = len(movements)
		opname.Status = entity.OpnameStatusFinalized
		opname.FinalizedAt = &now
		opname.FinalizedBy = auth.ActorID
		if len(movements) == 0 {
			return nil
		}
		return appendMovements(ctx, repos, movements)
	})
	if err != nil {
		return nil, err
	}
	uc.audit.Emit(ctx, entity.AuditEvent{
		TenantID:   auth.TenantID,
		ActorID:    auth.ActorID,
		Action:     entity.AuditOpnameFinalized,
		TargetType: entity.AuditTargetOpname,
		TargetID:   opname.ID,
		Metadata:   map[string]any{"adjusted_variants": posted},
	})
	return opname, nil
}

// VoidOpname anula el conteo sin efecto en el ledger, aunque se hayan editado cantidades.
func (uc *OpnameUseCase) VoidOpname(ctx context.Context, auth entity.AuthContext, opnameID string) (*entity.StockOpname, error) {
	if err := authorize(auth, true); err != nil {
		return nil, err
	}
	opnameID, ok := documentID(opnameID)
	if !ok {
		return nil, domain.ErrNotFound
	}
	now := uc.now()
	var opname *entity.StockOpname
	err := uc.txRunner.Run(ctx, func(repos Repos) error {
		if err := repos.Guard.LockTenant(ctx, auth.TenantID); err != nil {
			return err
		}
		var err error
		opname, err = repos.Opnames.GetHeaderForUpdate(ctx, auth.TenantID, opnameID)
		if err != nil {
			return err
		}
		if opname == nil {
			return domain.ErrNotFound
		}
		ok, err := repos.Opnames.TransitionStatus(ctx, auth.TenantID, opnameID,
			entity.OpnameStatusInProgress, entity.OpnameStatusVoid, auth.ActorID, now)
		if err != nil {
			return err
		}
		if !ok {
			return domain.ErrInvalidStatus
		}
		opname.Status = entity.OpnameStatusVoid
		opname.VoidedAt = &now
		opname.VoidedBy = auth.ActorID
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.audit.Emit(ctx, entity.AuditEvent{
		TenantID:   auth.TenantID,
		ActorID:    auth.ActorID,
		Action:     entity.AuditOpnameVoided,
		TargetType: entity.AuditTargetOpname,
		TargetID:   opname.ID,
	})
	return opname, nil
}

// GetOpname obtiene el conteo con sus ítems.
func (uc *OpnameUseCase) GetOpname(ctx context.Context, auth entity.AuthContext, opnameID string) (*entity.StockOpname, error) {
	if err := authorize(auth, false); err != nil {
		return nil, err
	}
	opnameID, ok := documentID(opnameID)
	if !ok {
		return nil, domain.ErrNotFound
	}
	var opname *entity.StockOpname
	err := uc.txRunner.Run(ctx, func(repos Repos) error {
		var err error
		opname, err = repos.Opnames.GetByID(ctx, auth.TenantID, opnameID)
		return err
	})
	if err != nil {
		return nil, err
	}
	if opname == nil {
		return nil, domain.ErrNotFound
	}
	return opname, nil
}

// GetActiveOpname devuelve el conteo IN_PROGRESS del tenant con sus ítems, o ErrNotFound.
func (uc *OpnameUseCase) GetActiveOpname(ctx context.Context, auth entity.AuthContext) (*entity.StockOpname, error) {
	if err := authorize(auth, false); err != nil {
		return nil, err
	}
	var opname *entity.StockOpname
	err := uc.txRunner.Run(ctx, func(repos Repos) error {
		header, err := repos.Opnames.GetInProgress(ctx, auth.TenantID)
		if err != nil || header == nil {
			return err
		}
		opname, err = repos.Opnames.GetByID(ctx, auth.TenantID, header.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	if opname == nil {
		return nil, domain.ErrNotFound
	}
	return opname, nil
}

// ListOpnames lista los conteos del tenant (sin ítems); status vacío = todos.
func (uc *OpnameUseCase) ListOpnames(ctx context.Context, auth entity.AuthContext, status string, limit, offset int) ([]*entity.StockOpname, error) {
	if err := authorize(auth, false); err != nil {
		return nil, err
	}
	switch status {
	case "", entity.OpnameStatusInProgress, entity.OpnameStatusFinalized, entity.OpnameStatusVoid:
	default:
		return nil, domain.Invalid("status %q desconocido", status)
	}
	limit, offset = normalizePage(limit, offset)
	var list []*entity.StockOpname
	err := uc.txRunner.Run(ctx, func(repos Repos) error {
		var err error
		list, err = repos.Opnames.List(ctx, auth.TenantID, status, limit, offset)
		return err
	})
	return list, err
}
