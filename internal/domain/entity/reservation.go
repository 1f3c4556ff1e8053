package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Reservation representa la reserva de una cantidad de un producto a nombre de
// una factura. Clave compuesta (ProductID, InvoiceID): una fila por par.
// ExpiresAt nil significa reserva sin vencimiento. Una fila con cantidad 0 no
// se almacena: el upsert con 0 borra el registro.
type Reservation struct {
	ProductID         string
	InvoiceID         string
	Quantity          decimal.Decimal
	ExpiresAt         *time.Time
	SourceInvoiceDate time.Time
	UpdatedAt         time.Time
}

// IsExpired indica si la reserva venció respecto a now. Las reservas vencidas
// no aportan a la suma de reservado aunque la fila siga existiendo hasta que
// el barrido la elimine.
func (r *Reservation) IsExpired(now time.Time) bool {
	return r.ExpiresAt != nil && r.ExpiresAt.Before(now)
}
