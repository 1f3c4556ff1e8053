package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de factura.
const (
	InvoiceTypeFictive  = "fictive"  // borrador/cotización: sin efecto en inventario ni pagos
	InvoiceTypeStandard = "standard" // activada: tiene fecha de venta, admite reservas, ventas y pagos
)

// Estados de ciclo de vida derivados de los ítems (ver invoice.DeriveLifecycleStatus).
const (
	LifecycleUnfinished = "unfinished"
	LifecycleReserved   = "reserved"
	LifecycleCompleted  = "completed"
)

// Invoice representa la cabecera de una factura.
// PaidAmount es un campo derivado: siempre se recalcula como Σ de los pagos
// vigentes, nunca se escribe directamente desde el caller.
// SaleDate es nil mientras la factura sea fictive; se fija una sola vez en la
// primera transición a standard y no se mueve hacia atrás.
type Invoice struct {
	ID              string
	Number          string // único, secuencial: "N" + 8 dígitos
	Type            string // fictive | standard
	LifecycleStatus string // unfinished | reserved | completed
	TotalAmount     decimal.Decimal
	PaidAmount      decimal.Decimal
	SaleDate        *time.Time
	CustomerRef     string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// IsFictive indica si la factura es un borrador sin efecto de inventario.
func (i *Invoice) IsFictive() bool {
	return i.Type == InvoiceTypeFictive
}
