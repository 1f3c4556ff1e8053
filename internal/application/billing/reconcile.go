package billing

import (
	"errors"
	"fmt"
	"sort"
	"time"

	appstock "github.com/Samsiani/gn1-invoice-dash-sub000/internal/application/stock"
	"github.com/Samsiani/gn1-invoice-dash-sub000/internal/domain"
	"github.com/Samsiani/gn1-invoice-dash-sub000/internal/domain/entity"
	"github.com/Samsiani/gn1-invoice-dash-sub000/internal/domain/repository"
	"github.com/Samsiani/gn1-invoice-dash-sub000/internal/domain/stock"
	"github.com/Samsiani/gn1-invoice-dash-sub000/pkg/logger"
)

// Reconciler aplica sobre el libro de reservas y el catálogo el delta mínimo
// entre la lista de ítems anterior y la nueva de una factura. Compara siempre
// contra el snapshot persistido previo (no contra acumulados), por lo que
// invocarlo dos veces con el mismo par (old, new) no duplica ajustes.
type Reconciler struct {
	log *logger.Logger
}

// NewReconciler construye el motor de reconciliación.
func NewReconciler(log *logger.Logger) *Reconciler {
	return &Reconciler{log: log}
}

// Apply sincroniza libro y catálogo con la lista nueva, dentro de la
// transacción del caller y bajo los locks por producto ya tomados:
//
//  1. Reservas: por cada producto con reserva en old o new se sobreescribe la
//     fila (producto, factura) con la cantidad nueva absoluta (0 la borra).
//  2. Ventas: por cada producto vendido en old o new se ajusta el stock por
//     diff = new − old; un diff negativo devuelve unidades al catálogo.
//
// Los ítems none no participan: nunca tocan stock ni reservas. Un producto
// que ya no existe en el catálogo se registra y se omite sin abortar la
// reconciliación de los demás productos de la factura.
func (r *Reconciler) Apply(
	resRepo repository.ReservationRepository,
	catalog repository.ProductCatalog,
	inv *entity.Invoice,
	oldItems, newItems []*entity.InvoiceItem,
) error {
	oldAlloc := stock.Partition(oldItems)
	newAlloc := stock.Partition(newItems)
	invoiceDate := invoiceDateOf(inv)

	reservedIDs := stock.ReservedProducts(oldAlloc, newAlloc)
	sort.Strings(reservedIDs)
	for _, pid := range reservedIDs {
		qty := newAlloc.Reserved[pid]
		days := newAlloc.ReservationDays[pid]
		if err := appstock.SetReservation(resRepo, pid, inv.ID, qty, days, invoiceDate); err != nil {
			return fmt.Errorf("reserva de %s: %w", pid, err)
		}
	}

	diffs := stock.SoldDiff(oldAlloc, newAlloc)
	soldIDs := make([]string, 0, len(diffs))
	for pid := range diffs {
		soldIDs = append(soldIDs, pid)
	}
	sort.Strings(soldIDs)
	for _, pid := range soldIDs {
		diff := diffs[pid]
		// diff > 0 vende más unidades (stock baja); diff < 0 las devuelve.
		if err := catalog.AdjustStock(pid, diff.Neg()); err != nil {
			if errors.Is(err, domain.ErrUnknownProduct) {
				r.log.Warn().
					Str("product_id", pid).
					Str("invoice_id", inv.ID).
					Msg("reconciliación: producto inexistente, ajuste omitido")
				continue
			}
			return fmt.Errorf("ajustar stock de %s: %w", pid, err)
		}
	}
	return nil
}

// invoiceDateOf es la fecha base para calcular expiraciones de reserva:
// la fecha de venta si existe, si no la de creación del documento.
func invoiceDateOf(inv *entity.Invoice) time.Time {
	if inv.SaleDate != nil {
		return *inv.SaleDate
	}
	if !inv.CreatedAt.IsZero() {
		return inv.CreatedAt
	}
	return time.Now()
}
