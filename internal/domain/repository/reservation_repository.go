package repository

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Samsiani/gn1-invoice-dash-sub000/internal/domain/entity"
)

// ReservationRepository define el puerto del libro de reservas: una fila por
// par (producto, factura). Get devuelve (nil, nil) si no hay fila.
type ReservationRepository interface {
	Get(productID, invoiceID string) (*entity.Reservation, error)
	// Upsert inserta o sobreescribe la fila del par (cantidad absoluta, no
	// incremento). El caller borra con Delete cuando la cantidad llega a 0.
	Upsert(res *entity.Reservation) error
	// Delete elimina la fila del par; borrar una fila inexistente es no-op
	// (el barrido de expiraciones depende de esa idempotencia).
	Delete(productID, invoiceID string) error
	// SumActive suma las cantidades reservadas vigentes del producto:
	// filas con expires_at nulo o posterior a now. Las vencidas no suman
	// aunque todavía no hayan sido purgadas.
	SumActive(productID string, now time.Time) (decimal.Decimal, error)
	ListByInvoice(invoiceID string) ([]*entity.Reservation, error)
	// ListExpired devuelve las reservas con expires_at no nulo y anterior a
	// now, ordenadas por producto para que el barrido tome los locks en un
	// orden estable.
	ListExpired(now time.Time) ([]*entity.Reservation, error)
}
