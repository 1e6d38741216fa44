// migrate aplica los scripts embebidos de internal/infrastructure/postgres/migrations
// contra la base configurada (DATABASE_URL o DB_*).
//
// Uso: go run ./cmd/migrate [-list]
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/jhoicas/inventario-ledger/internal/infrastructure/postgres"
	"github.com/jhoicas/inventario-ledger/pkg/config"
	"github.com/jhoicas/inventario-ledger/pkg/logger"
)

func main() {
	list := flag.Bool("list", false, "solo listar las migraciones embebidas")
	flag.Parse()

	if *list {
		migrations, err := postgres.Migrations()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Leer migraciones: %v\n", err)
			os.Exit(1)
		}
		for _, m := range migrations {
			fmt.Println(m.Name)
		}
		return
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel}).Named("migrate")

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	err = postgres.Migrate(ctx, pool, func(name string) {
		log.Info().Str("migration", name).Msg("migración aplicada")
	})
	if err != nil {
		log.Error().Err(err).Msg("migración fallida")
		pool.Close()
		os.Exit(1)
	}
	log.Info().Msg("esquema al día")
}
