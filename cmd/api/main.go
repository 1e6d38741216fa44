package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
	"github.com/jhoicas/inventario-ledger/internal/infrastructure/audit"
	"github.com/jhoicas/inventario-ledger/internal/infrastructure/memory"
	"github.com/jhoicas/inventario-ledger/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/inventario-ledger/internal/interfaces/http"
	"github.com/jhoicas/inventario-ledger/pkg/config"
	"github.com/jhoicas/inventario-ledger/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("store", cfg.App.StoreDriver).
		Msg("iniciando aplicación")

	ctx := context.Background()

	var (
		txRunner  inventory.TxRunner
		auditRepo repository.AuditLogRepository
	)
	switch cfg.App.StoreDriver {
	case config.StoreDriverMemory:
		store := memory.NewStore()
		for tenant, ids := range cfg.App.SeedVariants() {
			store.SeedVariants(tenant, ids...)
			log.Info().Str("tenant_id", tenant).Int("variants", len(ids)).Msg("catálogo en memoria")
		}
		txRunner = store
		auditRepo = memory.NewAuditLog()
		log.Warn().Msg("driver memory: los datos se pierden al reiniciar")
	default:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()
		txRunner = postgres.NewTxRunner(pool, cfg.DB.TxRetries, log.Named("tx"))
		auditRepo = postgres.NewAuditLogRepository(pool)
	}

	// Auditoría fuera de la transacción: nunca bloquea ni revierte una operación.
	auditSink := audit.NewAsyncSink(auditRepo, log.Named("audit"), cfg.Audit.Buffer)

	ledgerUC := inventory.NewLedgerUseCase(txRunner)
	receivingUC := inventory.NewReceivingUseCase(txRunner, auditSink)
	adjustmentUC := inventory.NewAdjustmentUseCase(txRunner, auditSink)
	opnameUC := inventory.NewOpnameUseCase(txRunner, auditSink)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeout) * time.Second,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	if _, err := os.Stat(cfg.HTTP.DocsPath); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: cfg.HTTP.DocsPath,
			Path:     "docs",
			Title:    "Inventario Ledger API",
		}))
	} else {
		log.Warn().Str("path", cfg.HTTP.DocsPath).Msg("swagger.json no encontrado, /docs deshabilitado")
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		Ledger:     ledgerUC,
		Receiving:  receivingUC,
		Adjustment: adjustmentUC,
		Opname:     opnameUC,
		JWTSecret:  cfg.JWT.Secret,
		Log:        log.Named("http"),
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}
	// Después del servidor: ya no llegan eventos nuevos, se vacía la cola.
	if err := auditSink.Close(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("cierre de auditoría")
	}

	log.Info().Msg("aplicación detenida")
}
