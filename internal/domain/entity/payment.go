package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Métodos de pago admitidos.
const (
	PaymentMethodCompanyTransfer = "company_transfer"
	PaymentMethodCash            = "cash"
	PaymentMethodConsignment     = "consignment"
	PaymentMethodCredit          = "credit"
	PaymentMethodOther           = "other"
)

// ValidPaymentMethod verifica que el método esté en el catálogo cerrado.
func ValidPaymentMethod(method string) bool {
	switch method {
	case PaymentMethodCompanyTransfer, PaymentMethodCash,
		PaymentMethodConsignment, PaymentMethodCredit, PaymentMethodOther:
		return true
	}
	return false
}

// Payment representa un abono sobre una factura. Amount siempre > 0.
type Payment struct {
	ID        string
	InvoiceID string
	Amount    decimal.Decimal
	Date      time.Time
	Method    string
	ActorRef  string
}
