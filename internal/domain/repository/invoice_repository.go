package repository

import "github.com/Samsiani/gn1-invoice-dash-sub000/internal/domain/entity"

// InvoiceRepository define el puerto de persistencia para cabecera, ítems y
// pagos de una factura. GetByID devuelve (nil, nil) si la factura no existe.
//
// ReplaceItems y ReplacePayments reemplazan la lista completa
// (delete-all-then-reinsert); el diff de reconciliación siempre se calcula
// sobre el snapshot previo al borrado, nunca después.
type InvoiceRepository interface {
	Create(invoice *entity.Invoice) error
	// SaveHeader actualiza type, lifecycle_status, total_amount, paid_amount,
	// sale_date y updated_at de la cabecera.
	SaveHeader(invoice *entity.Invoice) error
	GetByID(id string) (*entity.Invoice, error)
	List(limit, offset int) ([]*entity.Invoice, error)
	// NextNumber reserva y devuelve el siguiente número "N"+8 dígitos de la
	// marca de agua monotónica. Un número entregado jamás se reutiliza.
	NextNumber() (string, error)

	GetItems(invoiceID string) ([]*entity.InvoiceItem, error)
	ReplaceItems(invoiceID string, items []*entity.InvoiceItem) error

	GetPayments(invoiceID string) ([]*entity.Payment, error)
	ReplacePayments(invoiceID string, payments []*entity.Payment) error

	// Delete elimina cabecera, ítems y pagos. El caller debe haber liberado
	// antes reservas y ventas (reconciliación contra lista vacía).
	Delete(invoiceID string) error
}
