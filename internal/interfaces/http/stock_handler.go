package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/Samsiani/gn1-invoice-dash-sub000/internal/application/dto"
	appstock "github.com/Samsiani/gn1-invoice-dash-sub000/internal/application/stock"
	"github.com/Samsiani/gn1-invoice-dash-sub000/internal/domain"
)

// StockHandler expone la disponibilidad derivada: stock físico menos
// reservas activas de otras facturas.
type StockHandler struct {
	ledger *appstock.LedgerService
}

func NewStockHandler(ledger *appstock.LedgerService) *StockHandler {
	return &StockHandler{ledger: ledger}
}

// Available procesa GET /api/products/:id/available. El query param
// exclude_invoice descuenta la reserva propia de esa factura, útil al editar.
func (h *StockHandler) Available(c *fiber.Ctx) error {
	productID := c.Params("id")
	excludeInvoiceID := c.Query("exclude_invoice")

	av, err := h.ledger.Availability(productID, excludeInvoiceID)
	if err != nil {
		if errors.Is(err, domain.ErrUnknownProduct) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "UNKNOWN_PRODUCT", Message: "producto no encontrado"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL_ERROR", Message: "error interno"})
	}

	resp := dto.AvailabilityResponse{ProductID: productID, Unmanaged: av.Unmanaged}
	if !av.Unmanaged {
		qty := av.Quantity
		resp.Available = &qty
	}
	return c.JSON(resp)
}
