package inventory

import (
	"context"

	"github.com/google/uuid"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/ledger"
)

// authorize valida el contexto de identidad. write exige un rol con permiso de escritura de stock.
func authorize(auth entity.AuthContext, write bool) error {
	if auth.TenantID == "" || auth.ActorID == "" {
		return domain.ErrForbidden
	}
	if _, err := uuid.Parse(auth.TenantID); err != nil {
		return domain.ErrForbidden
	}
	if write && !auth.CanWriteStock() {
		return domain.ErrForbidden
	}
	return nil
}

// acquirePosting toma el bloqueo exclusivo del tenant y rechaza si hay un opname en curso.
// Todo escritor del ledger lo llama antes de leer saldos: la comprobación posterior al bloqueo
// es la que vale al hacer Commit.
func acquirePosting(ctx context.Context, repos Repos, tenantID string) error {
	if err := repos.Guard.LockTenant(ctx, tenantID); err != nil {
		return err
	}
	active, err := repos.Opnames.GetInProgress(ctx, tenantID)
	if err != nil {
		return err
	}
	if active != nil {
		return domain.ErrOpnameInProgress
	}
	return nil
}

// checkBalances lee los saldos actuales dentro de la tx y verifica que los deltas no dejen negativos.
func checkBalances(ctx context.Context, repos Repos, tenantID string, deltas []ledger.Delta) error {
	balances, err := repos.Movements.GetBalances(ctx, tenantID, ledger.VariantIDs(deltas))
	if err != nil {
		return err
	}
	return ledger.CheckNonNegative(balances, deltas)
}

// ensureVariants exige que todas las variantes existan, sean del tenant y no estén borradas.
func ensureVariants(ctx context.Context, repos Repos, tenantID string, ids []string) error {
	found, err := repos.Variants.FindActiveIDs(ctx, tenantID, ids)
	if err != nil {
		return err
	}
	for _, id := range ids {
		if !found[id] {
			return domain.Invalid("variante %s inexistente o inactiva", id)
		}
	}
	return nil
}

// appendMovements valida la forma de cada movimiento y los inserta en la tx.
func appendMovements(ctx context.Context, repos Repos, movements []*entity.StockMovement) error {
	for _, m := range movements {
		if err := ledger.ValidateMovement(m); err != nil {
			return err
		}
	}
	return repos.Movements.Append(ctx, movements)
}

// documentID normaliza el ID de un documento o ítem. Los IDs son UUID: uno mal formado no existe.
func documentID(id string) (string, bool) {
	u, err := uuid.Parse(id)
	if err != nil {
		return "", false
	}
	return u.String(), true
}

func normalizePage(limit, offset int) (int, int) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
