package billing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Samsiani/gn1-invoice-dash-sub000/internal/application/dto"
	"github.com/Samsiani/gn1-invoice-dash-sub000/internal/domain"
	"github.com/Samsiani/gn1-invoice-dash-sub000/internal/domain/entity"
)

// SumPayments recalcula el monto pagado como Σ amount sobre el conjunto
// completo de pagos. Nunca se incrementa/decrementa en sitio: recomputar
// contra el conjunto vigente es lo que mantiene el valor correcto frente a
// ediciones y borrados concurrentes.
func SumPayments(payments []*entity.Payment) decimal.Decimal {
	total := decimal.Zero
	for _, p := range payments {
		total = total.Add(p.Amount)
	}
	return total
}

// CheckTypeGate aplica el candado fictive/standard: una factura solo puede ser
// fictive mientras el pagado sea <= 0. Se rechaza, nunca se corrige en
// silencio. currentType vacío significa factura nueva.
func CheckTypeGate(currentType, requestedType string, paid decimal.Decimal) error {
	if requestedType != entity.InvoiceTypeFictive {
		return nil
	}
	if paid.GreaterThan(decimal.Zero) {
		reason := "una factura fictive no puede tener pagos registrados"
		if currentType == entity.InvoiceTypeStandard {
			reason = "la vuelta a fictive exige pagado <= 0"
		}
		return &domain.InvalidTypeTransitionError{
			From:   currentType,
			To:     requestedType,
			Reason: reason,
		}
	}
	return nil
}

// buildPayments valida y convierte los pagos del request en entidades.
// Cada pago exige amount > 0 y método del catálogo cerrado.
func buildPayments(invoiceID, actorRef string, inputs []dto.PaymentInput) ([]*entity.Payment, error) {
	payments := make([]*entity.Payment, 0, len(inputs))
	for _, in := range inputs {
		if !in.Amount.GreaterThan(decimal.Zero) {
			return nil, domain.ErrInvalidInput
		}
		if !entity.ValidPaymentMethod(in.Method) {
			return nil, domain.ErrInvalidInput
		}
		date := in.Date
		if date.IsZero() {
			date = time.Now()
		}
		actor := in.ActorRef
		if actor == "" {
			actor = actorRef
		}
		payments = append(payments, &entity.Payment{
			ID:        uuid.New().String(),
			InvoiceID: invoiceID,
			Amount:    in.Amount,
			Date:      date,
			Method:    in.Method,
			ActorRef:  actor,
		})
	}
	return payments, nil
}
