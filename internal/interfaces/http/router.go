package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Ledger     *inventory.LedgerUseCase
	Receiving  *inventory.ReceivingUseCase
	Adjustment *inventory.AdjustmentUseCase
	Opname     *inventory.OpnameUseCase
	JWTSecret  string
	Log        *logger.Logger
}

// Router registra las rutas de la API. Todas requieren Bearer Token; las escrituras además un rol de bodega.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))
	writer := RequireRole(entity.RoleAdmin, entity.RoleBodeguero)

	// Ledger (solo lectura)
	stock := api.Group("/stock")
	stockHandler := NewStockHandler(deps.Ledger, deps.Log)
	stock.Get("/balances", stockHandler.GetBalances)
	stock.Get("/movements", stockHandler.ListByReference)
	stock.Get("/variants/:id/balance", stockHandler.GetBalance)
	stock.Get("/variants/:id/movements", stockHandler.ListMovements)

	// Recepciones
	receivings := api.Group("/receivings")
	receivingHandler := NewReceivingHandler(deps.Receiving, deps.Log)
	receivings.Post("/", writer, receivingHandler.Create)
	receivings.Get("/", receivingHandler.List)
	receivings.Get("/:id", receivingHandler.GetByID)
	receivings.Post("/:id/post", writer, receivingHandler.Post)
	receivings.Post("/:id/void", writer, receivingHandler.Void)

	// Ajustes
	adjustments := api.Group("/adjustments")
	adjustmentHandler := NewAdjustmentHandler(deps.Adjustment, deps.Log)
	adjustments.Post("/", writer, adjustmentHandler.Create)
	adjustments.Get("/", adjustmentHandler.List)
	adjustments.Get("/:id", adjustmentHandler.GetByID)

	// Conteo físico
	opnames := api.Group("/opnames")
	opnameHandler := NewOpnameHandler(deps.Opname, deps.Log)
	opnames.Post("/", writer, opnameHandler.Start)
	opnames.Get("/", opnameHandler.List)
	opnames.Get("/active", opnameHandler.Active)
	opnames.Get("/:id", opnameHandler.GetByID)
	opnames.Put("/:id/items/:itemId", writer, opnameHandler.UpdateItem)
	opnames.Post("/:id/finalize", writer, opnameHandler.Finalize)
	opnames.Post("/:id/void", writer, opnameHandler.Void)
}
