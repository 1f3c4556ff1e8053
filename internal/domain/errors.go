package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound             = errors.New("recurso no encontrado")
	ErrInvalidInput         = errors.New("entrada inválida")
	ErrConflict             = errors.New("conflicto con el estado actual")
	ErrUnknownProduct       = errors.New("producto inexistente en el catálogo")
	ErrConcurrentAllocation = errors.New("conflicto de asignación concurrente sobre el producto")
)

// StockShortage describe un ítem que pidió más de lo disponible.
type StockShortage struct {
	ProductID string          `json:"product_id"`
	Requested decimal.Decimal `json:"requested"`
	Available decimal.Decimal `json:"available"`
}

// StockExceededError agrupa todas las faltantes de stock de un guardado.
// La validación recorre la lista completa de ítems y acumula cada faltante en
// lugar de fallar en la primera, para que el caller pueda reportarlas todas.
// Un error no vacío bloquea el guardado completo: nunca hay aplicación parcial.
type StockExceededError struct {
	Shortages []StockShortage
}

func (e *StockExceededError) Error() string {
	parts := make([]string, 0, len(e.Shortages))
	for _, s := range e.Shortages {
		parts = append(parts, fmt.Sprintf("%s: solicitado %s, disponible %s",
			s.ProductID, s.Requested.String(), s.Available.String()))
	}
	return "stock insuficiente: " + strings.Join(parts, "; ")
}

// InvalidTypeTransitionError indica una transición de tipo rechazada por la
// regla del candado fictive/standard (ej: fictive con pagos registrados).
// Nunca se corrige silenciosamente: se rechaza y el estado queda intacto.
type InvalidTypeTransitionError struct {
	From   string
	To     string
	Reason string
}

func (e *InvalidTypeTransitionError) Error() string {
	return fmt.Sprintf("transición de tipo inválida %s -> %s: %s", e.From, e.To, e.Reason)
}

// AsStockExceeded extrae un *StockExceededError de la cadena de errores.
func AsStockExceeded(err error) (*StockExceededError, bool) {
	var se *StockExceededError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}

// AsInvalidTypeTransition extrae un *InvalidTypeTransitionError de la cadena.
func AsInvalidTypeTransition(err error) (*InvalidTypeTransitionError, bool) {
	var te *InvalidTypeTransitionError
	if errors.As(err, &te) {
		return te, true
	}
	return nil, false
}
