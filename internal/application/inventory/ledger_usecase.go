package inventory

import (
	"context"
	"strings"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// LedgerUseCase lado de lectura del ledger: saldos derivados y movimientos.
type LedgerUseCase struct {
	txRunner TxRunner
}

// NewLedgerUseCase construye el caso de uso.
func NewLedgerUseCase(txRunner TxRunner) *LedgerUseCase {
	return &LedgerUseCase{txRunner: txRunner}
}

// GetBalances devuelve el saldo actual de cada variante pedida (0 si no tiene movimientos).
func (uc *LedgerUseCase) GetBalances(ctx context.Context, auth entity.AuthContext, variantIDs []string) (map[string]decimal.Decimal, error) {
	if err := authorize(auth, false); err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(variantIDs))
	seen := make(map[string]bool, len(variantIDs))
	for _, id := range variantIDs {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return nil, domain.Invalid("se requiere al menos una variante")
	}

	var out map[string]decimal.Decimal
	err := uc.txRunner.Run(ctx, func(repos Repos) error {
		balances, err := repos.Movements.GetBalances(ctx, auth.TenantID, ids)
		if err != nil {
			return err
		}
		out = make(map[string]decimal.Decimal, len(ids))
		for _, id := range ids {
			out[id] = balances[id]
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// GetBalance atajo para una sola variante.
func (uc *LedgerUseCase) GetBalance(ctx context.Context, auth entity.AuthContext, variantID string) (decimal.Decimal, error) {
	balances, err := uc.GetBalances(ctx, auth, []string{variantID})
	if err != nil {
		return decimal.Zero, err
	}
	return balances[strings.TrimSpace(variantID)], nil
}

// ListMovements lista los movimientos de una variante, más recientes primero.
func (uc *LedgerUseCase) ListMovements(ctx context.Context, auth entity.AuthContext, variantID string, limit, offset int) ([]*entity.StockMovement, error) {
	if err := authorize(auth, false); err != nil {
		return nil, err
	}
	if variantID == "" {
		return nil, domain.Invalid("variant_id requerido")
	}
	limit, offset = normalizePage(limit, offset)
	var list []*entity.StockMovement
	err := uc.txRunner.Run(ctx, func(repos Repos) error {
		var err error
		list, err = repos.Movements.ListByVariant(ctx, auth.TenantID, variantID, limit, offset)
		return err
	})
	return list, err
}

// ListMovementsByReference lista los movimientos generados por un documento.
func (uc *LedgerUseCase) ListMovementsByReference(ctx context.Context, auth entity.AuthContext, referenceKind, referenceID string) ([]*entity.StockMovement, error) {
	if err := authorize(auth, false); err != nil {
		return nil, err
	}
	switch referenceKind {
	case entity.ReferenceReceiving, entity.ReferenceAdjustment, entity.ReferenceOpname:
	default:
		return nil, domain.Invalid("reference_kind %q desconocido", referenceKind)
	}
	referenceID, ok := documentID(referenceID)
	if !ok {
		return []*entity.StockMovement{}, nil
	}
	var list []*entity.StockMovement
	err := uc.txRunner.Run(ctx, func(repos Repos) error {
		var err error
		list, err = repos.Movements.ListByReference(ctx, auth.TenantID, referenceKind, referenceID)
		return err
	})
	return list, err
}
