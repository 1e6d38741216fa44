// token emite un JWT firmado con JWT_SECRET para probar la API en local.
// La identidad la administra un servicio externo; esto no valida usuarios.
//
// Uso: go run ./cmd/token -company <uuid> -user <uuid> -role bodeguero
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/pkg/config"
	"github.com/jhoicas/inventario-ledger/pkg/jwt"
)

func main() {
	company := flag.String("company", "", "tenant (company_id), UUID")
	user := flag.String("user", uuid.NewString(), "user_id, UUID")
	role := flag.String("role", entity.RoleBodeguero, "admin | bodeguero | vendedor")
	flag.Parse()

	if _, err := uuid.Parse(*company); err != nil {
		fmt.Fprintln(os.Stderr, "-company debe ser un UUID válido")
		os.Exit(2)
	}
	switch *role {
	case entity.RoleAdmin, entity.RoleBodeguero, entity.RoleVendedor:
	default:
		fmt.Fprintf(os.Stderr, "rol desconocido: %s\n", *role)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar configuración: %v\n", err)
		os.Exit(1)
	}
	tok, err := jwt.Generate(cfg.JWT.Secret, *user, *company, *role, cfg.JWT.Issuer, cfg.JWT.Expiration)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Generar token: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(tok)
}
