package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Samsiani/gn1-invoice-dash-sub000/internal/application/billing"
	appstock "github.com/Samsiani/gn1-invoice-dash-sub000/internal/application/stock"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	SaveInvoice   *billing.SaveInvoiceUseCase
	MarkAsSold    *billing.MarkAsSoldUseCase
	DeleteInvoice *billing.DeleteInvoiceUseCase
	Ledger        *appstock.LedgerService
	JWTSecret     string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Invoices (protegido)
	invoices := protected.Group("/invoices")
	invoiceHandler := NewInvoiceHandler(deps.SaveInvoice, deps.MarkAsSold, deps.DeleteInvoice)
	invoices.Post("/", invoiceHandler.Save)
	invoices.Get("/", invoiceHandler.List)
	invoices.Get("/:id", invoiceHandler.GetByID)
	invoices.Put("/:id", invoiceHandler.Update)
	invoices.Post("/:id/mark-sold", invoiceHandler.MarkAsSold)
	invoices.Delete("/:id", RequireRole("admin", "manager"), invoiceHandler.Delete)

	// Stock disponible (protegido)
	products := protected.Group("/products")
	stockHandler := NewStockHandler(deps.Ledger)
	products.Get("/:id/available", stockHandler.Available)
}
