package postgres

import (
	"context"
	"fmt"
	"hash/fnv"

	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

var _ repository.TenantGuardRepository = (*TenantGuardRepo)(nil)

// TenantGuardRepo bloqueo exclusivo por tenant con pg_advisory_xact_lock (se libera con la tx).
type TenantGuardRepo struct {
	q Querier
}

// NewTenantGuardRepository construye el adaptador. Requiere una tx: sobre el pool el bloqueo no tiene efecto.
func NewTenantGuardRepository(q Querier) *TenantGuardRepo {
	return &TenantGuardRepo{q: q}
}

// LockTenant espera hasta obtener el bloqueo del tenant.
func (r *TenantGuardRepo) LockTenant(ctx context.Context, tenantID string) error {
	if _, err := r.q.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, tenantLockKey(tenantID)); err != nil {
		return fmt.Errorf("lock tenant: %w", err)
	}
	return nil
}

// tenantLockKey clave int64 estable para el tenant.
func tenantLockKey(tenantID string) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte("inventory-ledger:" + tenantID))
	return int64(h.Sum64())
}
