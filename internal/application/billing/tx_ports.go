package billing

import (
	"context"

	"github.com/Samsiani/gn1-invoice-dash-sub000/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD con los
// repositorios del motor atados a esa tx. Validación y aplicación de la
// reconciliación corren dentro de la misma transacción, bajo los locks por
// producto, para que nunca se valide contra una foto desactualizada.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		invoiceRepo repository.InvoiceRepository,
		resRepo repository.ReservationRepository,
		catalog repository.ProductCatalog,
	) error) error
}
