package entity

// Roles conocidos.
const (
	RoleAdmin     = "admin"
	RoleBodeguero = "bodeguero"
	RoleVendedor  = "vendedor"
)

// AuthContext identidad ya resuelta por el colaborador de autenticación; se pasa a cada operación.
type AuthContext struct {
	TenantID string
	ActorID  string
	Role     string
}

// CanWriteStock indica si el rol puede registrar movimientos de inventario.
func (a AuthContext) CanWriteStock() bool {
	return a.Role == RoleAdmin || a.Role == RoleBodeguero
}
