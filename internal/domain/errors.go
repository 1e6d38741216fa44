package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Errores de dominio (sin dependencias de infraestructura).
var (
	ErrNotFound     = errors.New("recurso no encontrado")
	ErrInvalidInput = errors.New("entrada inválida")
	ErrUnauthorized = errors.New("no autorizado")
	ErrForbidden    = errors.New("acceso denegado")
	ErrConflict     = errors.New("conflicto con el estado actual")
)

// Conflictos de negocio más específicos; todos envuelven ErrConflict.
var (
	ErrOpnameInProgress = fmt.Errorf("%w: hay un conteo físico (opname) en curso", ErrConflict)
	ErrInvalidStatus    = fmt.Errorf("%w: el documento no está en el estado requerido", ErrConflict)
	ErrNegativeStock    = fmt.Errorf("%w: el stock resultante sería negativo", ErrConflict)
)

// Códigos de error expuestos a los llamadores.
const (
	CodeInvalidInput = "INVALID_INPUT"
	CodeNotFound     = "NOT_FOUND"
	CodeConflict     = "CONFLICT"
	CodeForbidden    = "FORBIDDEN"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeInternal     = "INTERNAL"
)

// InsufficientStockError indica que aplicar Delta sobre Balance deja la variante en negativo.
type InsufficientStockError struct {
	VariantID string
	Balance   decimal.Decimal
	Delta     decimal.Decimal
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("stock insuficiente para la variante %s: saldo %s, cambio %s",
		e.VariantID, e.Balance.String(), e.Delta.String())
}

func (e *InsufficientStockError) Unwrap() error { return ErrNegativeStock }

// Invalid construye un ErrInvalidInput con detalle.
func Invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// Code traduce cualquier error al código de la taxonomía. nil devuelve "".
func Code(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidInput):
		return CodeInvalidInput
	case errors.Is(err, ErrNotFound):
		return CodeNotFound
	case errors.Is(err, ErrConflict):
		return CodeConflict
	case errors.Is(err, ErrForbidden):
		return CodeForbidden
	case errors.Is(err, ErrUnauthorized):
		return CodeUnauthorized
	default:
		return CodeInternal
	}
}
