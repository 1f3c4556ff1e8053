package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/Samsiani/gn1-invoice-dash-sub000/internal/application/billing"
	"github.com/Samsiani/gn1-invoice-dash-sub000/internal/application/dto"
	"github.com/Samsiani/gn1-invoice-dash-sub000/internal/domain"
)

// InvoiceHandler maneja el ciclo de vida de facturas: guardado integral
// (alta y modificación), marcado como vendida, borrado y lecturas.
type InvoiceHandler struct {
	saveUC   *billing.SaveInvoiceUseCase
	soldUC   *billing.MarkAsSoldUseCase
	deleteUC *billing.DeleteInvoiceUseCase
}

func NewInvoiceHandler(
	saveUC *billing.SaveInvoiceUseCase,
	soldUC *billing.MarkAsSoldUseCase,
	deleteUC *billing.DeleteInvoiceUseCase,
) *InvoiceHandler {
	return &InvoiceHandler{saveUC: saveUC, soldUC: soldUC, deleteUC: deleteUC}
}

// Save procesa POST /api/invoices: guarda una factura nueva con sus líneas
// y pagos, reconciliando reservas y stock en la misma transacción.
func (h *InvoiceHandler) Save(c *fiber.Ctx) error {
	var in dto.SaveInvoiceRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "JSON inválido"})
	}
	in.InvoiceID = ""

	resp, err := h.saveUC.SaveInvoice(c.Context(), GetUserID(c), in)
	if err != nil {
		return h.mapSaveError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// Update procesa PUT /api/invoices/:id: sustituye las líneas y pagos de la
// factura y reconcilia la diferencia contra el libro de reservas y el stock.
func (h *InvoiceHandler) Update(c *fiber.Ctx) error {
	id := c.Params("id")
	var in dto.SaveInvoiceRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "JSON inválido"})
	}
	in.InvoiceID = id

	resp, err := h.saveUC.SaveInvoice(c.Context(), GetUserID(c), in)
	if err != nil {
		return h.mapSaveError(c, err)
	}
	return c.JSON(resp)
}

// MarkAsSold procesa POST /api/invoices/:id/mark-sold: pasa todas las líneas
// reservadas a vendidas, descuenta stock y completa la factura.
func (h *InvoiceHandler) MarkAsSold(c *fiber.Ctx) error {
	resp, err := h.soldUC.MarkAsSold(c.Context(), c.Params("id"))
	if err != nil {
		return h.mapSaveError(c, err)
	}
	return c.JSON(resp)
}

// Delete procesa DELETE /api/invoices/:id: libera reservas, devuelve el stock
// vendido y elimina la factura con sus líneas y pagos.
func (h *InvoiceHandler) Delete(c *fiber.Ctx) error {
	if err := h.deleteUC.DeleteInvoice(c.Context(), c.Params("id")); err != nil {
		return h.mapSaveError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GetByID procesa GET /api/invoices/:id.
func (h *InvoiceHandler) GetByID(c *fiber.Ctx) error {
	resp, err := h.saveUC.GetInvoice(c.Context(), c.Params("id"))
	if err != nil {
		return h.mapSaveError(c, err)
	}
	return c.JSON(resp)
}

// List procesa GET /api/invoices con paginación limit/offset.
func (h *InvoiceHandler) List(c *fiber.Ctx) error {
	page := dto.PageRequest{
		Limit:  c.QueryInt("limit", 50),
		Offset: c.QueryInt("offset", 0),
	}
	page.DefaultPage()

	invoices, err := h.saveUC.ListInvoices(c.Context(), page.Limit, page.Offset)
	if err != nil {
		return h.mapSaveError(c, err)
	}
	return c.JSON(dto.InvoiceListResponse{
		Invoices: invoices,
		Page:     dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	})
}

// mapSaveError traduce errores de dominio a respuestas HTTP. Las faltas de
// stock devuelven 409 con el listado completo de faltantes para que el
// cliente corrija todo el documento de una sola vez.
func (h *InvoiceHandler) mapSaveError(c *fiber.Ctx, err error) error {
	if se, ok := domain.AsStockExceeded(err); ok {
		out := dto.StockErrorResponse{
			Code:    "STOCK_EXCEEDED",
			Message: se.Error(),
		}
		for _, s := range se.Shortages {
			out.Shortages = append(out.Shortages, dto.StockShortageResponse{
				ProductID: s.ProductID,
				Requested: s.Requested,
				Available: s.Available,
			})
		}
		return c.Status(fiber.StatusConflict).JSON(out)
	}
	if tt, ok := domain.AsInvalidTypeTransition(err); ok {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{Code: "INVALID_TYPE_TRANSITION", Message: tt.Error()})
	}
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "factura no encontrada"})
	case errors.Is(err, domain.ErrUnknownProduct):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{Code: "UNKNOWN_PRODUCT", Message: err.Error()})
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_INPUT", Message: err.Error()})
	case errors.Is(err, domain.ErrConcurrentAllocation):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CONCURRENT_ALLOCATION", Message: "otro proceso está asignando stock de los mismos productos, reintente"})
	case errors.Is(err, domain.ErrConflict):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CONFLICT", Message: err.Error()})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL_ERROR", Message: "error interno"})
	}
}
