package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/pkg/logger"
)

// StockHandler lectura del ledger: saldos y movimientos (protegido).
type StockHandler struct {
	uc  *inventory.LedgerUseCase
	log *logger.Logger
}

// NewStockHandler construye el handler.
func NewStockHandler(uc *inventory.LedgerUseCase, log *logger.Logger) *StockHandler {
	return &StockHandler{uc: uc, log: log}
}

// GetBalances godoc
// @Summary      Saldos actuales por variante
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        variant_ids  query  string  true  "IDs separados por coma"
// @Success      200  {object}  dto.BalancesResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/stock/balances [get]
func (h *StockHandler) GetBalances(c *fiber.Ctx) error {
	raw := strings.Split(c.Query("variant_ids"), ",")
	ids := make([]string, 0, len(raw))
	for _, id := range raw {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	balances, err := h.uc.GetBalances(c.Context(), GetAuthContext(c), ids)
	if err != nil {
		return respondError(c, h.log, err)
	}
	out := dto.BalancesResponse{Balances: make([]dto.BalanceResponse, 0, len(balances))}
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		out.Balances = append(out.Balances, dto.BalanceResponse{VariantID: id, Balance: balances[id]})
	}
	return c.JSON(out)
}

// GetBalance godoc
// @Summary      Saldo actual de una variante
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la variante"
// @Success      200  {object}  dto.BalanceResponse
// @Router       /api/stock/variants/{id}/balance [get]
func (h *StockHandler) GetBalance(c *fiber.Ctx) error {
	id := c.Params("id")
	balance, err := h.uc.GetBalance(c.Context(), GetAuthContext(c), id)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.BalanceResponse{VariantID: id, Balance: balance})
}

// ListMovements godoc
// @Summary      Movimientos de una variante (más recientes primero)
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        id      path   string  true   "ID de la variante"
// @Param        limit   query  int     false  "Límite"  default(20)
// @Param        offset  query  int     false  "Offset"  default(0)
// @Success      200  {object}  dto.ListResponse[dto.MovementResponse]
// @Router       /api/stock/variants/{id}/movements [get]
func (h *StockHandler) ListMovements(c *fiber.Ctx) error {
	page := pageFromQuery(c)
	list, err := h.uc.ListMovements(c.Context(), GetAuthContext(c), c.Params("id"), page.Limit, page.Offset)
	if err != nil {
		return respondError(c, h.log, err)
	}
	out := dto.ListResponse[dto.MovementResponse]{Items: make([]dto.MovementResponse, 0, len(list)), Page: dto.PageResponse{Limit: page.Limit, Offset: page.Offset}}
	for _, m := range list {
		out.Items = append(out.Items, dto.FromMovement(m))
	}
	return c.JSON(out)
}

// ListByReference godoc
// @Summary      Movimientos generados por un documento
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        reference_kind  query  string  true  "RECEIVING | ADJUSTMENT | OPNAME"
// @Param        reference_id    query  string  true  "ID del documento"
// @Success      200  {array}   dto.MovementResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/stock/movements [get]
func (h *StockHandler) ListByReference(c *fiber.Ctx) error {
	list, err := h.uc.ListMovementsByReference(c.Context(), GetAuthContext(c), c.Query("reference_kind"), c.Query("reference_id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	out := make([]dto.MovementResponse, 0, len(list))
	for _, m := range list {
		out = append(out, dto.FromMovement(m))
	}
	return c.JSON(out)
}

// pageFromQuery limit/offset con los mismos topes que los casos de uso.
func pageFromQuery(c *fiber.Ctx) dto.PageRequest {
	p := dto.PageRequest{Limit: c.QueryInt("limit", 20), Offset: c.QueryInt("offset", 0)}
	if p.Limit > 100 {
		p.Limit = 100
	}
	p.DefaultPage()
	return p
}
