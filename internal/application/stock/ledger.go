// Package stock implementa el libro de reservas y el barrido de expiraciones.
package stock

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Samsiani/gn1-invoice-dash-sub000/internal/domain/entity"
	"github.com/Samsiani/gn1-invoice-dash-sub000/internal/domain/repository"
)

// Availability es el resultado de consultar disponibilidad de un producto.
// Unmanaged=true significa que el producto no gestiona stock y la cantidad
// disponible es ilimitada (Quantity no aplica).
type Availability struct {
	Unmanaged bool
	Quantity  decimal.Decimal
}

// LedgerService es el libro de reservas: cantidades reservadas y disponibles
// por producto, y el upsert de la fila (producto, factura). Sus efectos se
// limitan al propio libro; los ajustes de stock real los hace la
// reconciliación, nunca el libro.
type LedgerService struct {
	resRepo repository.ReservationRepository
	catalog repository.ProductCatalog
}

// NewLedgerService construye el servicio con repos atados al pool (lecturas
// fuera de transacción). Las variantes *In reciben repos atados a una tx.
func NewLedgerService(resRepo repository.ReservationRepository, catalog repository.ProductCatalog) *LedgerService {
	return &LedgerService{resRepo: resRepo, catalog: catalog}
}

// Reserved devuelve la suma de reservas vigentes (no vencidas) del producto.
func (s *LedgerService) Reserved(productID string) (decimal.Decimal, error) {
	return s.resRepo.SumActive(productID, time.Now())
}

// Availability calcula stock_quantity − reservado del producto.
// excludeInvoiceID descuenta primero la reserva vigente de esa factura, para
// que al editar una factura su propia reserva previa no cuente en su contra.
func (s *LedgerService) Availability(productID, excludeInvoiceID string) (Availability, error) {
	return AvailabilityIn(s.resRepo, s.catalog, productID, excludeInvoiceID)
}

// AvailabilityIn es la variante transaccional: opera sobre los repos del
// caller para que la lectura ocurra bajo el lock por producto ya tomado.
func AvailabilityIn(
	resRepo repository.ReservationRepository,
	catalog repository.ProductCatalog,
	productID, excludeInvoiceID string,
) (Availability, error) {
	stockQty, err := catalog.GetStockQuantity(productID)
	if err != nil {
		return Availability{}, fmt.Errorf("stock del producto %s: %w", productID, err)
	}
	if stockQty == nil {
		return Availability{Unmanaged: true}, nil
	}
	now := time.Now()
	reserved, err := resRepo.SumActive(productID, now)
	if err != nil {
		return Availability{}, fmt.Errorf("reservado del producto %s: %w", productID, err)
	}
	if excludeInvoiceID != "" {
		own, err := resRepo.Get(productID, excludeInvoiceID)
		if err != nil {
			return Availability{}, err
		}
		if own != nil && !own.IsExpired(now) {
			reserved = reserved.Sub(own.Quantity)
		}
	}
	return Availability{Quantity: stockQty.Sub(reserved)}, nil
}

// SetReservation sobreescribe la fila (producto, factura) con la cantidad
// absoluta indicada. Cantidad <= 0 borra la fila. La expiración se calcula
// como invoiceDate + reservationDays solo cuando reservationDays > 0; con 0
// la reserva no vence.
func SetReservation(
	resRepo repository.ReservationRepository,
	productID, invoiceID string,
	quantity decimal.Decimal,
	reservationDays int,
	invoiceDate time.Time,
) error {
	if !quantity.GreaterThan(decimal.Zero) {
		return resRepo.Delete(productID, invoiceID)
	}
	var expiresAt *time.Time
	if reservationDays > 0 {
		exp := invoiceDate.AddDate(0, 0, reservationDays)
		expiresAt = &exp
	}
	return resRepo.Upsert(&entity.Reservation{
		ProductID:         productID,
		InvoiceID:         invoiceID,
		Quantity:          quantity,
		ExpiresAt:         expiresAt,
		SourceInvoiceDate: invoiceDate,
		UpdatedAt:         time.Now(),
	})
}
