package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/pkg/logger"
)

// AdjustmentHandler ajustes manuales de stock (protegido).
type AdjustmentHandler struct {
	uc  *inventory.AdjustmentUseCase
	log *logger.Logger
}

// NewAdjustmentHandler construye el handler.
func NewAdjustmentHandler(uc *inventory.AdjustmentUseCase, log *logger.Logger) *AdjustmentHandler {
	return &AdjustmentHandler{uc: uc, log: log}
}

// Create godoc
// @Summary      Registrar ajuste (diferencias con signo, se contabiliza al crear)
// @Tags         adjustments
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateAdjustmentRequest  true  "reason, note, items"
// @Success      201   {object}  dto.AdjustmentResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/adjustments [post]
func (h *AdjustmentHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateAdjustmentRequest
	if ok, err := bind(c, &in); !ok {
		return err
	}
	items := make([]inventory.AdjustmentItemInput, 0, len(in.Items))
	for _, it := range in.Items {
		items = append(items, inventory.AdjustmentItemInput{VariantID: it.VariantID, QtyDiff: it.QtyDiff, Note: it.Note})
	}
	out, err := h.uc.CreateAdjustment(c.Context(), GetAuthContext(c), inventory.CreateAdjustmentInput{
		Reason: in.Reason,
		Note:   in.Note,
		Items:  items,
	})
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.FromAdjustment(out))
}

// GetByID godoc
// @Summary      Obtener ajuste
// @Tags         adjustments
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del ajuste"
// @Success      200  {object}  dto.AdjustmentResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/adjustments/{id} [get]
func (h *AdjustmentHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetAdjustment(c.Context(), GetAuthContext(c), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.FromAdjustment(out))
}

// List godoc
// @Summary      Listar ajustes
// @Tags         adjustments
// @Security     Bearer
// @Produce      json
// @Param        limit   query  int  false  "Límite"  default(20)
// @Param        offset  query  int  false  "Offset"  default(0)
// @Success      200  {object}  dto.ListResponse[dto.AdjustmentResponse]
// @Router       /api/adjustments [get]
func (h *AdjustmentHandler) List(c *fiber.Ctx) error {
	page := pageFromQuery(c)
	list, err := h.uc.ListAdjustments(c.Context(), GetAuthContext(c), page.Limit, page.Offset)
	if err != nil {
		return respondError(c, h.log, err)
	}
	out := dto.ListResponse[dto.AdjustmentResponse]{Items: make([]dto.AdjustmentResponse, 0, len(list)), Page: dto.PageResponse{Limit: page.Limit, Offset: page.Offset}}
	for _, a := range list {
		out.Items = append(out.Items, dto.FromAdjustment(a))
	}
	return c.JSON(out)
}
