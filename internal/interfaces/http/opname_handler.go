package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/pkg/logger"
)

// OpnameHandler conteo físico de inventario (protegido).
type OpnameHandler struct {
	uc  *inventory.OpnameUseCase
	log *logger.Logger
}

// NewOpnameHandler construye el handler.
func NewOpnameHandler(uc *inventory.OpnameUseCase, log *logger.Logger) *OpnameHandler {
	return &OpnameHandler{uc: uc, log: log}
}

// Start godoc
// @Summary      Iniciar conteo físico (bloquea la contabilización del tenant)
// @Tags         opnames
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.StartOpnameRequest  false  "note"
// @Success      201   {object}  dto.OpnameResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/opnames [post]
func (h *OpnameHandler) Start(c *fiber.Ctx) error {
	var in dto.StartOpnameRequest
	if len(c.Body()) > 0 {
		if ok, err := bind(c, &in); !ok {
			return err
		}
	}
	out, err := h.uc.StartOpname(c.Context(), GetAuthContext(c), in.Note)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.FromOpname(out))
}

// Active godoc
// @Summary      Conteo IN_PROGRESS del tenant
// @Tags         opnames
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.OpnameResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/opnames/active [get]
func (h *OpnameHandler) Active(c *fiber.Ctx) error {
	out, err := h.uc.GetActiveOpname(c.Context(), GetAuthContext(c))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.FromOpname(out))
}

// GetByID godoc
// @Summary      Obtener conteo con sus ítems
// @Tags         opnames
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del conteo"
// @Success      200  {object}  dto.OpnameResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/opnames/{id} [get]
func (h *OpnameHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetOpname(c.Context(), GetAuthContext(c), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.FromOpname(out))
}

// List godoc
// @Summary      Listar conteos (sin ítems)
// @Tags         opnames
// @Security     Bearer
// @Produce      json
// @Param        status  query  string  false  "IN_PROGRESS | FINALIZED | VOID"
// @Param        limit   query  int     false  "Límite"  default(20)
// @Param        offset  query  int     false  "Offset"  default(0)
// @Success      200  {object}  dto.ListResponse[dto.OpnameResponse]
// @Router       /api/opnames [get]
func (h *OpnameHandler) List(c *fiber.Ctx) error {
	page := pageFromQuery(c)
	list, err := h.uc.ListOpnames(c.Context(), GetAuthContext(c), c.Query("status"), page.Limit, page.Offset)
	if err != nil {
		return respondError(c, h.log, err)
	}
	out := dto.ListResponse[dto.OpnameResponse]{Items: make([]dto.OpnameResponse, 0, len(list)), Page: dto.PageResponse{Limit: page.Limit, Offset: page.Offset}}
	for _, o := range list {
		out.Items = append(out.Items, dto.FromOpname(o))
	}
	return c.JSON(out)
}

// UpdateItem godoc
// @Summary      Registrar cantidad contada de un ítem
// @Tags         opnames
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id      path  string                       true  "ID del conteo"
// @Param        itemId  path  string                       true  "ID del ítem"
// @Param        body    body  dto.UpdateCountedQtyRequest  true  "counted_qty"
// @Success      200  {object}  dto.OpnameItemResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/opnames/{id}/items/{itemId} [put]
func (h *OpnameHandler) UpdateItem(c *fiber.Ctx) error {
	var in dto.UpdateCountedQtyRequest
	if ok, err := bind(c, &in); !ok {
		return err
	}
	out, err := h.uc.UpdateCountedQty(c.Context(), GetAuthContext(c), c.Params("id"), c.Params("itemId"), *in.CountedQty)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.FromOpnameItem(out))
}

// Finalize godoc
// @Summary      Finalizar conteo (publica las diferencias como ADJUST)
// @Tags         opnames
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del conteo"
// @Success      200  {object}  dto.OpnameResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/opnames/{id}/finalize [post]
func (h *OpnameHandler) Finalize(c *fiber.Ctx) error {
	out, err := h.uc.FinalizeOpname(c.Context(), GetAuthContext(c), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.FromOpname(out))
}

// Void godoc
// @Summary      Anular conteo sin efecto en el ledger
// @Tags         opnames
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del conteo"
// @Success      200  {object}  dto.OpnameResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/opnames/{id}/void [post]
func (h *OpnameHandler) Void(c *fiber.Ctx) error {
	out, err := h.uc.VoidOpname(c.Context(), GetAuthContext(c), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.FromOpname(out))
}
