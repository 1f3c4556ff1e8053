package billing

import (
	"context"
	"time"

	"github.com/Samsiani/gn1-invoice-dash-sub000/internal/domain"
	"github.com/Samsiani/gn1-invoice-dash-sub000/internal/domain/repository"
	"github.com/Samsiani/gn1-invoice-dash-sub000/pkg/logger"
)

// DeleteInvoiceUseCase elimina una factura como acción administrativa
// explícita. Antes de borrar filas reconcilia contra una lista de ítems
// vacía: libera las reservas activas y devuelve al catálogo las unidades
// vendidas, todo en la misma transacción. Borrar sin esa cascada dejaría
// reservas huérfanas o stock descontado de más.
type DeleteInvoiceUseCase struct {
	txRunner   TxRunner
	reconciler *Reconciler
	cfg        Config
	log        *logger.Logger
}

// NewDeleteInvoiceUseCase construye el caso de uso.
func NewDeleteInvoiceUseCase(txRunner TxRunner, reconciler *Reconciler, cfg Config, log *logger.Logger) *DeleteInvoiceUseCase {
	if cfg.LockRetries <= 0 {
		cfg.LockRetries = 3
	}
	return &DeleteInvoiceUseCase{txRunner: txRunner, reconciler: reconciler, cfg: cfg, log: log}
}

// DeleteInvoice libera asignaciones y elimina cabecera, ítems y pagos.
func (uc *DeleteInvoiceUseCase) DeleteInvoice(ctx context.Context, invoiceID string) error {
	run := func(
		invoiceRepo repository.InvoiceRepository,
		resRepo repository.ReservationRepository,
		catalog repository.ProductCatalog,
	) error {
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
		if err := lockProducts(catalog, oldItems, nil); err != nil {
			return err
		}
		if err := uc.reconciler.Apply(resRepo, catalog, inv, oldItems, nil); err != nil {
			return err
		}
		// Tras el borrado no puede quedar ninguna fila del libro con esta
		// factura, tenga o no ítem correspondiente en la lista vieja.
		leftover, err := resRepo.ListByInvoice(invoiceID)
		if err != nil {
			return err
		}
		for _, res := range leftover {
			if err := resRepo.Delete(res.ProductID, invoiceID); err != nil {
				return err
			}
		}
		if err := invoiceRepo.Delete(invoiceID); err != nil {
			return err
		}
		uc.log.Info().
			Str("invoice_id", invoiceID).
			Str("number", inv.Number).
			Time("deleted_at", time.Now()).
			Msg("factura eliminada con liberación en cascada")
		return nil
	}
	return retryOnLockConflict(ctx, uc.cfg, uc.log, func() error {
		return uc.txRunner.Run(ctx, run)
	})
}
