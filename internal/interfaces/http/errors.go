package http

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/pkg/logger"
)

var statusByCode = map[string]int{
	domain.CodeInvalidInput: fiber.StatusBadRequest,
	domain.CodeNotFound:     fiber.StatusNotFound,
	domain.CodeConflict:     fiber.StatusConflict,
	domain.CodeForbidden:    fiber.StatusForbidden,
	domain.CodeUnauthorized: fiber.StatusUnauthorized,
	domain.CodeInternal:     fiber.StatusInternalServerError,
}

// respondError traduce errores de dominio a HTTP. Los INTERNAL se registran y no exponen el detalle.
func respondError(c *fiber.Ctx, log *logger.Logger, err error) error {
	code := domain.Code(err)
	status, ok := statusByCode[code]
	if !ok {
		status = fiber.StatusInternalServerError
	}
	if code == domain.CodeInternal {
		if log != nil {
			log.Error().Err(err).
				Str("method", c.Method()).
				Str("path", c.Path()).
				Str("tenant_id", GetCompanyID(c)).
				Msg("error interno")
		}
		return c.Status(status).JSON(dto.ErrorResponse{Code: code, Message: "error interno"})
	}

	body := dto.ErrorResponse{Code: code, Message: err.Error()}
	var ise *domain.InsufficientStockError
	if errors.As(err, &ise) {
		body.Details = map[string]string{
			"variant_id": ise.VariantID,
			"balance":    ise.Balance.String(),
			"delta":      ise.Delta.String(),
		}
	}
	return c.Status(status).JSON(body)
}

func badBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
}

// bind llena in desde el body JSON y aplica las reglas `validate`. false = ya se respondió 400.
func bind(c *fiber.Ctx, in any) (bool, error) {
	if err := c.BodyParser(in); err != nil {
		return false, badBody(c)
	}
	if err := validate.Struct(in); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return false, c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Code:    domain.CodeInvalidInput,
				Message: "datos inválidos",
				Details: processValidationErrors(verrs),
			})
		}
		return false, badBody(c)
	}
	return true, nil
}
