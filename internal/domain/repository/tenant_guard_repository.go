package repository

import "context"

// TenantGuardRepository bloqueo exclusivo por tenant dentro de la transacción en curso.
// El bloqueo se libera al hacer Commit o Rollback.
type TenantGuardRepository interface {
	LockTenant(ctx context.Context, tenantID string) error
}
