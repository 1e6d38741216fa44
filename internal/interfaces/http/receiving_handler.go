package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/pkg/logger"
)

// ReceivingHandler recepciones de mercancía (protegido).
type ReceivingHandler struct {
	uc  *inventory.ReceivingUseCase
	log *logger.Logger
}

// NewReceivingHandler construye el handler.
func NewReceivingHandler(uc *inventory.ReceivingUseCase, log *logger.Logger) *ReceivingHandler {
	return &ReceivingHandler{uc: uc, log: log}
}

// Create godoc
// @Summary      Crear recepción (DRAFT o directamente POSTED)
// @Tags         receivings
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateReceivingRequest  true  "status, note, lines"
// @Success      201   {object}  dto.ReceivingResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/receivings [post]
func (h *ReceivingHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateReceivingRequest
	if ok, err := bind(c, &in); !ok {
		return err
	}
	lines := make([]inventory.ReceivingLineInput, 0, len(in.Lines))
	for _, l := range in.Lines {
		lines = append(lines, inventory.ReceivingLineInput{VariantID: l.VariantID, Qty: l.Qty, Note: l.Note})
	}
	out, err := h.uc.CreateReceiving(c.Context(), GetAuthContext(c), inventory.CreateReceivingInput{
		Status: in.Status,
		Note:   in.Note,
		Lines:  lines,
	})
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.FromReceiving(out))
}

// GetByID godoc
// @Summary      Obtener recepción con sus líneas
// @Tags         receivings
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la recepción"
// @Success      200  {object}  dto.ReceivingResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/receivings/{id} [get]
func (h *ReceivingHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetReceiving(c.Context(), GetAuthContext(c), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.FromReceiving(out))
}

// List godoc
// @Summary      Listar recepciones
// @Tags         receivings
// @Security     Bearer
// @Produce      json
// @Param        status  query  string  false  "DRAFT | POSTED | VOID"
// @Param        limit   query  int     false  "Límite"  default(20)
// @Param        offset  query  int     false  "Offset"  default(0)
// @Success      200  {object}  dto.ListResponse[dto.ReceivingResponse]
// @Router       /api/receivings [get]
func (h *ReceivingHandler) List(c *fiber.Ctx) error {
	page := pageFromQuery(c)
	list, err := h.uc.ListReceivings(c.Context(), GetAuthContext(c), c.Query("status"), page.Limit, page.Offset)
	if err != nil {
		return respondError(c, h.log, err)
	}
	out := dto.ListResponse[dto.ReceivingResponse]{Items: make([]dto.ReceivingResponse, 0, len(list)), Page: dto.PageResponse{Limit: page.Limit, Offset: page.Offset}}
	for _, r := range list {
		out.Items = append(out.Items, dto.FromReceiving(r))
	}
	return c.JSON(out)
}

// Post godoc
// @Summary      Contabilizar recepción DRAFT (genera movimientos IN)
// @Tags         receivings
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la recepción"
// @Success      200  {object}  dto.ReceivingResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/receivings/{id}/post [post]
func (h *ReceivingHandler) Post(c *fiber.Ctx) error {
	out, err := h.uc.PostReceiving(c.Context(), GetAuthContext(c), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.FromReceiving(out))
}

// Void godoc
// @Summary      Anular recepción DRAFT
// @Tags         receivings
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la recepción"
// @Success      200  {object}  dto.ReceivingResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/receivings/{id}/void [post]
func (h *ReceivingHandler) Void(c *fiber.Ctx) error {
	out, err := h.uc.VoidReceiving(c.Context(), GetAuthContext(c), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.FromReceiving(out))
}
