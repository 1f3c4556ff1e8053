// Package billing implementa los casos de uso del ciclo de vida de facturas:
// guardado con validación y reconciliación de stock, marcado masivo como
// vendida y eliminación con liberación en cascada.
package billing

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Samsiani/gn1-invoice-dash-sub000/internal/application/dto"
	appstock "github.com/Samsiani/gn1-invoice-dash-sub000/internal/application/stock"
	"github.com/Samsiani/gn1-invoice-dash-sub000/internal/domain"
	"github.com/Samsiani/gn1-invoice-dash-sub000/internal/domain/entity"
	invdomain "github.com/Samsiani/gn1-invoice-dash-sub000/internal/domain/invoice"
	"github.com/Samsiani/gn1-invoice-dash-sub000/internal/domain/repository"
	"github.com/Samsiani/gn1-invoice-dash-sub000/internal/domain/stock"
	"github.com/Samsiani/gn1-invoice-dash-sub000/pkg/logger"
)

// Config parámetros del motor de guardado.
type Config struct {
	MaxReservationDays int           // tope de días de reserva por ítem
	LockRetries        int           // reintentos ante conflicto de lock por producto
	RetryBackoff       time.Duration // espera entre reintentos
}

// SaveInvoiceUseCase implementa validate-and-save: recalcula pagos, aplica el
// candado fictive/standard, valida disponibilidad, reconcilia el delta de
// ítems contra libro de reservas y catálogo, recalcula el estado del ciclo de
// vida y persiste todo en una sola transacción.
type SaveInvoiceUseCase struct {
	txRunner    TxRunner
	invoiceRepo repository.InvoiceRepository // atado al pool, solo lecturas
	reconciler  *Reconciler
	cfg         Config
	log         *logger.Logger
}

// NewSaveInvoiceUseCase construye el caso de uso.
func NewSaveInvoiceUseCase(txRunner TxRunner, invoiceRepo repository.InvoiceRepository, reconciler *Reconciler, cfg Config, log *logger.Logger) *SaveInvoiceUseCase {
	if cfg.MaxReservationDays <= 0 {
		cfg.MaxReservationDays = 30
	}
	if cfg.LockRetries <= 0 {
		cfg.LockRetries = 3
	}
	return &SaveInvoiceUseCase{txRunner: txRunner, invoiceRepo: invoiceRepo, reconciler: reconciler, cfg: cfg, log: log}
}

// GetInvoice obtiene una factura completa (cabecera, ítems y pagos) por ID.
func (uc *SaveInvoiceUseCase) GetInvoice(ctx context.Context, id string) (*dto.InvoiceResponse, error) {
	inv, err := uc.invoiceRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, domain.ErrNotFound
	}
	items, err := uc.invoiceRepo.GetItems(id)
	if err != nil {
		return nil, err
	}
	payments, err := uc.invoiceRepo.GetPayments(id)
	if err != nil {
		return nil, err
	}
	return toInvoiceResponse(inv, items, payments), nil
}

// ListInvoices devuelve una página de cabeceras sin detalle.
func (uc *SaveInvoiceUseCase) ListInvoices(ctx context.Context, limit, offset int) ([]*dto.InvoiceResponse, error) {
	invoices, err := uc.invoiceRepo.List(limit, offset)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.InvoiceResponse, 0, len(invoices))
	for _, inv := range invoices {
		out = append(out, toInvoiceResponse(inv, nil, nil))
	}
	return out, nil
}

// SaveInvoice valida y guarda la factura (nueva o editada). Errores de
// validación (StockExceededError, InvalidTypeTransitionError) se detectan
// antes de cualquier mutación y bloquean el guardado completo: jamás se
// persiste una lista de ítems parcial.
func (uc *SaveInvoiceUseCase) SaveInvoice(ctx context.Context, actorRef string, in dto.SaveInvoiceRequest) (*dto.InvoiceResponse, error) {
	if in.Type != entity.InvoiceTypeFictive && in.Type != entity.InvoiceTypeStandard {
		return nil, domain.ErrInvalidInput
	}
	for _, item := range in.Items {
		if item.ProductID == "" || !item.Quantity.GreaterThan(decimal.Zero) {
			return nil, domain.ErrInvalidInput
		}
		switch item.Status {
		case entity.ItemStatusNone, entity.ItemStatusReserved, entity.ItemStatusSold, entity.ItemStatusCanceled:
		default:
			return nil, domain.ErrInvalidInput
		}
		if item.UnitPrice.LessThan(decimal.Zero) {
			return nil, domain.ErrInvalidInput
		}
	}

	// Candado de tipo contra el conjunto candidato de pagos, antes de tocar
	// nada: cubre tanto "fictive con pagado > 0" como "agregar pago a una
	// fictive sin promoverla antes a standard".
	var candidatePaid decimal.Decimal
	for _, p := range in.Payments {
		candidatePaid = candidatePaid.Add(p.Amount)
	}

	var resp *dto.InvoiceResponse
	run := func(
		invoiceRepo repository.InvoiceRepository,
		resRepo repository.ReservationRepository,
		catalog repository.ProductCatalog,
	) error {
		now := time.Now()

		var inv *entity.Invoice
		var oldItems []*entity.InvoiceItem
		if in.InvoiceID == "" {
			number, err := invoiceRepo.NextNumber()
			if err != nil {
				return err
			}
			inv = &entity.Invoice{
				ID:          uuid.New().String(),
				Number:      number,
				Type:        entity.InvoiceTypeFictive,
				CustomerRef: in.CustomerRef,
				CreatedAt:   now,
			}
		} else {
			var err error
			inv, err = invoiceRepo.GetByID(in.InvoiceID)
			if err != nil {
				return err
			}
			if inv == nil {
				return domain.ErrNotFound
			}
			oldItems, err = invoiceRepo.GetItems(inv.ID)
			if err != nil {
				return err
			}
		}

		if err := CheckTypeGate(inv.Type, in.Type, candidatePaid); err != nil {
			return err
		}

		payments, err := buildPayments(inv.ID, actorRef, in.Payments)
		if err != nil {
			return err
		}
		newItems := uc.buildItems(inv.ID, in)

		// Serialización por producto: lock sobre cada producto tocado por la
		// lista vieja o la nueva, en orden estable para evitar deadlocks, y
		// sostenido hasta el commit (validación y aplicación bajo el mismo lock).
		if err := lockProducts(catalog, oldItems, newItems); err != nil {
			return err
		}

		oldAlloc := stock.Partition(oldItems)
		if err := validateStock(resRepo, catalog, inv.ID, oldAlloc, newItems); err != nil {
			return err
		}

		// Primera transición fictive -> standard fija la fecha de venta; los
		// guardados posteriores nunca la mueven hacia atrás.
		if in.Type == entity.InvoiceTypeStandard && inv.SaleDate == nil {
			saleDate := now
			inv.SaleDate = &saleDate
		}
		inv.Type = in.Type

		if err := uc.reconciler.Apply(resRepo, catalog, inv, oldItems, newItems); err != nil {
			return err
		}

		inv.CustomerRef = in.CustomerRef
		inv.TotalAmount = sumLineTotals(newItems)
		inv.PaidAmount = SumPayments(payments)
		inv.LifecycleStatus = invdomain.DeriveLifecycleStatus(newItems)
		inv.UpdatedAt = now

		if err := invoiceRepo.ReplaceItems(inv.ID, newItems); err != nil {
			return err
		}
		if err := invoiceRepo.ReplacePayments(inv.ID, payments); err != nil {
			return err
		}
		if in.InvoiceID == "" {
			if err := invoiceRepo.Create(inv); err != nil {
				return err
			}
		} else if err := invoiceRepo.SaveHeader(inv); err != nil {
			return err
		}

		resp = toInvoiceResponse(inv, newItems, payments)
		return nil
	}
	if err := retryOnLockConflict(ctx, uc.cfg, uc.log, func() error {
		return uc.txRunner.Run(ctx, run)
	}); err != nil {
		return nil, err
	}
	return resp, nil
}

// buildItems convierte las líneas del request en entidades. Una factura
// fictive no tiene efecto real de inventario: sus líneas se guardan con
// estado none y cero días de reserva, que es la forma "sin asignación" del
// modelo (también cubre la vuelta standard -> fictive: reconciliar contra
// una lista all-none libera reservas y devuelve lo vendido).
func (uc *SaveInvoiceUseCase) buildItems(invoiceID string, in dto.SaveInvoiceRequest) []*entity.InvoiceItem {
	items := make([]*entity.InvoiceItem, 0, len(in.Items))
	for _, line := range in.Items {
		status := line.Status
		days := 0
		if in.Type == entity.InvoiceTypeFictive {
			status = entity.ItemStatusNone
		} else if status == entity.ItemStatusReserved {
			days = invdomain.ClampReservationDays(line.ReservationDays, uc.cfg.MaxReservationDays)
		}
		items = append(items, &entity.InvoiceItem{
			ID:              uuid.New().String(),
			InvoiceID:       invoiceID,
			ProductID:       line.ProductID,
			Quantity:        line.Quantity,
			UnitPrice:       line.UnitPrice,
			LineTotal:       line.Quantity.Mul(line.UnitPrice),
			Status:          status,
			ReservationDays: days,
			WarrantyTag:     line.WarrantyTag,
		})
	}
	return items
}

// lockProducts toma el lock de asignación de cada producto presente en la
// lista vieja o la nueva, en orden lexicográfico.
func lockProducts(catalog repository.ProductCatalog, oldItems, newItems []*entity.InvoiceItem) error {
	seen := make(map[string]bool)
	var ids []string
	collect := func(items []*entity.InvoiceItem) {
		for _, it := range items {
			if !seen[it.ProductID] {
				seen[it.ProductID] = true
				ids = append(ids, it.ProductID)
			}
		}
	}
	collect(oldItems)
	collect(newItems)
	sort.Strings(ids)
	for _, pid := range ids {
		if err := catalog.LockForAllocation(pid); err != nil {
			return err
		}
	}
	return nil
}

// validateStock recorre el agregado por producto de la lista candidata y
// acumula todas las faltantes. La disponibilidad excluye la reserva previa de
// esta misma factura y suma de vuelta su venta previa: aumentar en sitio una
// línea vendida no debe rechazarse solo porque las unidades viejas siguen
// descontadas del stock.
func validateStock(
	resRepo repository.ReservationRepository,
	catalog repository.ProductCatalog,
	invoiceID string,
	oldAlloc stock.Allocations,
	newItems []*entity.InvoiceItem,
) error {
	newAlloc := stock.Partition(newItems)
	pids := stock.ReservedProducts(oldAlloc, newAlloc)
	for pid := range newAlloc.Sold {
		pids = append(pids, pid)
	}
	sort.Strings(pids)

	var shortages []domain.StockShortage
	seen := make(map[string]bool)
	for _, pid := range pids {
		if seen[pid] {
			continue
		}
		seen[pid] = true
		requested := newAlloc.Reserved[pid].Add(newAlloc.Sold[pid])
		if !requested.GreaterThan(decimal.Zero) {
			continue
		}
		avail, err := appstock.AvailabilityIn(resRepo, catalog, pid, invoiceID)
		if err != nil {
			return err
		}
		if avail.Unmanaged {
			continue
		}
		// Venta previa propia: esas unidades ya salieron del stock y vuelven
		// a entrar en la reconciliación si la cantidad baja.
		effective := avail.Quantity.Add(oldAlloc.Sold[pid])
		if requested.GreaterThan(effective) {
			shortages = append(shortages, domain.StockShortage{
				ProductID: pid,
				Requested: requested,
				Available: effective,
			})
		}
	}
	if len(shortages) > 0 {
		return &domain.StockExceededError{Shortages: shortages}
	}
	return nil
}

func sumLineTotals(items []*entity.InvoiceItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		if it.Status == entity.ItemStatusCanceled {
			continue
		}
		total = total.Add(it.LineTotal)
	}
	return total
}

func toInvoiceResponse(inv *entity.Invoice, items []*entity.InvoiceItem, payments []*entity.Payment) *dto.InvoiceResponse {
	resp := &dto.InvoiceResponse{
		ID:              inv.ID,
		Number:          inv.Number,
		Type:            inv.Type,
		LifecycleStatus: inv.LifecycleStatus,
		TotalAmount:     inv.TotalAmount,
		PaidAmount:      inv.PaidAmount,
		SaleDate:        inv.SaleDate,
		CustomerRef:     inv.CustomerRef,
		CreatedAt:       inv.CreatedAt,
		Items:           make([]dto.InvoiceItemResponse, 0, len(items)),
		Payments:        make([]dto.PaymentResponse, 0, len(payments)),
	}
	for _, it := range items {
		resp.Items = append(resp.Items, dto.InvoiceItemResponse{
			ID:              it.ID,
			ProductID:       it.ProductID,
			Quantity:        it.Quantity,
			UnitPrice:       it.UnitPrice,
			LineTotal:       it.LineTotal,
			Status:          it.Status,
			ReservationDays: it.ReservationDays,
			WarrantyTag:     it.WarrantyTag,
		})
	}
	for _, p := range payments {
		resp.Payments = append(resp.Payments, dto.PaymentResponse{
			ID:       p.ID,
			Amount:   p.Amount,
			Date:     p.Date,
			Method:   p.Method,
			ActorRef: p.ActorRef,
		})
	}
	return resp
}
