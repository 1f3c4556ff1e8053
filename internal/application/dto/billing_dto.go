package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceItemInput línea candidata de un guardado. La lista se reemplaza
// completa en cada guardado; no hay parches incrementales por línea.
type InvoiceItemInput struct {
	ProductID       string          `json:"product_id"`
	Quantity        decimal.Decimal `json:"quantity"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	Status          string          `json:"status"` // none | reserved | sold | canceled
	ReservationDays int             `json:"reservation_days"`
	WarrantyTag     string          `json:"warranty_tag"`
}

// PaymentInput abono candidato. Amount > 0, método del catálogo cerrado.
type PaymentInput struct {
	Amount   decimal.Decimal `json:"amount"`
	Date     time.Time       `json:"date"`
	Method   string          `json:"method"`
	ActorRef string          `json:"actor_ref"`
}

// SaveInvoiceRequest entrada de validate-and-save. InvoiceID vacío crea una
// factura nueva; con valor edita la existente.
type SaveInvoiceRequest struct {
	InvoiceID   string             `json:"invoice_id"`
	CustomerRef string             `json:"customer_ref"`
	Type        string             `json:"type"` // fictive | standard
	Items       []InvoiceItemInput `json:"items"`
	Payments    []PaymentInput     `json:"payments"`
}

// InvoiceItemResponse línea persistida.
type InvoiceItemResponse struct {
	ID              string          `json:"id"`
	ProductID       string          `json:"product_id"`
	Quantity        decimal.Decimal `json:"quantity"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	LineTotal       decimal.Decimal `json:"line_total"`
	Status          string          `json:"status"`
	ReservationDays int             `json:"reservation_days"`
	WarrantyTag     string          `json:"warranty_tag"`
}

// PaymentResponse abono persistido.
type PaymentResponse struct {
	ID       string          `json:"id"`
	Amount   decimal.Decimal `json:"amount"`
	Date     time.Time       `json:"date"`
	Method   string          `json:"method"`
	ActorRef string          `json:"actor_ref"`
}

// InvoiceResponse factura completa tras un guardado o consulta.
type InvoiceResponse struct {
	ID              string                `json:"id"`
	Number          string                `json:"number"`
	Type            string                `json:"type"`
	LifecycleStatus string                `json:"lifecycle_status"`
	TotalAmount     decimal.Decimal       `json:"total_amount"`
	PaidAmount      decimal.Decimal       `json:"paid_amount"`
	SaleDate        *time.Time            `json:"sale_date,omitempty"`
	CustomerRef     string                `json:"customer_ref"`
	CreatedAt       time.Time             `json:"created_at"`
	Items           []InvoiceItemResponse `json:"items"`
	Payments        []PaymentResponse     `json:"payments"`
}

// InvoiceListResponse listado paginado de facturas.
type InvoiceListResponse struct {
	Invoices []*InvoiceResponse `json:"invoices"`
	Page     PageResponse       `json:"page"`
}

// StockShortageResponse una faltante de stock en la respuesta de validación.
type StockShortageResponse struct {
	ProductID string          `json:"product_id"`
	Requested decimal.Decimal `json:"requested"`
	Available decimal.Decimal `json:"available"`
}

// StockErrorResponse cuerpo de error cuando la validación de stock falla.
// Lleva la lista completa de faltantes para reportarlas todas de una vez.
type StockErrorResponse struct {
	Code      string                  `json:"code"`
	Message   string                  `json:"message"`
	Shortages []StockShortageResponse `json:"shortages"`
}

// AvailabilityResponse respuesta de GET disponible por producto.
type AvailabilityResponse struct {
	ProductID string           `json:"product_id"`
	Unmanaged bool             `json:"unmanaged"`
	Available *decimal.Decimal `json:"available,omitempty"` // nil si Unmanaged
}
