package stock

import (
	"context"

	"github.com/Samsiani/gn1-invoice-dash-sub000/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando
// repositorios atados a esa tx. Garantiza que el barrido cancele el ítem,
// recalcule el estado y borre la reserva de forma atómica por par
// (producto, factura).
type TxRunner interface {
	Run(ctx context.Context, fn func(
		invoiceRepo repository.InvoiceRepository,
		resRepo repository.ReservationRepository,
		catalog repository.ProductCatalog,
	) error) error
}
