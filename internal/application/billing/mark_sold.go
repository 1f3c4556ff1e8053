package billing

import (
	"context"
	"time"

	"github.com/Samsiani/gn1-invoice-dash-sub000/internal/application/dto"
	"github.com/Samsiani/gn1-invoice-dash-sub000/internal/domain"
	"github.com/Samsiani/gn1-invoice-dash-sub000/internal/domain/entity"
	invdomain "github.com/Samsiani/gn1-invoice-dash-sub000/internal/domain/invoice"
	"github.com/Samsiani/gn1-invoice-dash-sub000/internal/domain/repository"
	"github.com/Samsiani/gn1-invoice-dash-sub000/pkg/logger"
)

// MarkAsSoldUseCase aplica la acción masiva "marcar como vendida": todo ítem
// reserved pasa a sold con cero días de reserva, con la misma reconciliación
// de un guardado normal (old = ítems actuales, new = ítems con la transición
// aplicada). El resultado fuerza lifecycle_status = completed.
type MarkAsSoldUseCase struct {
	txRunner   TxRunner
	reconciler *Reconciler
	cfg        Config
	log        *logger.Logger
}

// NewMarkAsSoldUseCase construye el caso de uso.
func NewMarkAsSoldUseCase(txRunner TxRunner, reconciler *Reconciler, cfg Config, log *logger.Logger) *MarkAsSoldUseCase {
	if cfg.LockRetries <= 0 {
		cfg.LockRetries = 3
	}
	return &MarkAsSoldUseCase{txRunner: txRunner, reconciler: reconciler, cfg: cfg, log: log}
}

// MarkAsSold ejecuta la transición sobre la factura indicada.
func (uc *MarkAsSoldUseCase) MarkAsSold(ctx context.Context, invoiceID string) (*dto.InvoiceResponse, error) {
	var resp *dto.InvoiceResponse
	run := func(
		invoiceRepo repository.InvoiceRepository,
		resRepo repository.ReservationRepository,
		catalog repository.ProductCatalog,
	) error {
		now := time.Now()
		inv, err := invoiceRepo.GetByID(invoiceID)
		if err != nil {
			return err
		}
		if inv == nil {
			return domain.ErrNotFound
		}
		oldItems, err := invoiceRepo.GetItems(invoiceID)
		if err != nil {
			return err
		}
		newItems := invdomain.MarkItemsSold(oldItems)

		if err := lockProducts(catalog, oldItems, newItems); err != nil {
			return err
		}
		if err := uc.reconciler.Apply(resRepo, catalog, inv, oldItems, newItems); err != nil {
			return err
		}

		// Vender todo lo reservado implica documento standard; la fecha de
		// venta solo se fija si aún no existe (la primera asignación manda).
		inv.Type = entity.InvoiceTypeStandard
		if inv.SaleDate == nil {
			saleDate := now
			inv.SaleDate = &saleDate
		}
		inv.LifecycleStatus = entity.LifecycleCompleted
		inv.UpdatedAt = now

		if err := invoiceRepo.ReplaceItems(invoiceID, newItems); err != nil {
			return err
		}
		if err := invoiceRepo.SaveHeader(inv); err != nil {
			return err
		}
		payments, err := invoiceRepo.GetPayments(invoiceID)
		if err != nil {
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
