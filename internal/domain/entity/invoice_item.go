package entity

import "github.com/shopspring/decimal"

// Estados por ítem. La lista de ítems se reemplaza completa en cada guardado
// (delete-all-then-reinsert), por lo que cualquier transición es alcanzable
// re-guardando; solo la validación de stock previa al commit puede bloquearla.
const (
	ItemStatusNone     = "none"     // sin efecto en stock ni reservas
	ItemStatusReserved = "reserved" // reserva activa con expiración opcional
	ItemStatusSold     = "sold"     // descuento permanente de stock
	ItemStatusCanceled = "canceled" // anulado (por el usuario o por expiración)
)

// InvoiceItem representa una línea de una factura. Pertenece exclusivamente a
// su factura. ReservationDays solo tiene significado con Status=reserved.
type InvoiceItem struct {
	ID              string
	InvoiceID       string
	ProductID       string
	Quantity        decimal.Decimal
	UnitPrice       decimal.Decimal
	LineTotal       decimal.Decimal
	Status          string
	ReservationDays int
	WarrantyTag     string
}

// IsActive indica si el ítem cuenta para el estado de ciclo de vida
// (canceled y none quedan fuera).
func (it *InvoiceItem) IsActive() bool {
	return it.Status == ItemStatusReserved || it.Status == ItemStatusSold
}
