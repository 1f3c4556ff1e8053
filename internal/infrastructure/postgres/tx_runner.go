package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Samsiani/gn1-invoice-dash-sub000/internal/application/billing"
	appstock "github.com/Samsiani/gn1-invoice-dash-sub000/internal/application/stock"
	"github.com/Samsiani/gn1-invoice-dash-sub000/internal/domain/repository"
)

// Ensure TxRunner implements billing.TxRunner and stock.TxRunner.
var _ billing.TxRunner = (*TxRunner)(nil)
var _ appstock.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL con los
// repos del motor atados a esa tx. Commit si fn retorna nil, Rollback si no.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Run inicia la transacción y pasa a fn los repos de factura, reservas y
// catálogo atados a ella.
func (r *TxRunner) Run(ctx context.Context, fn func(
	invoiceRepo repository.InvoiceRepository,
	resRepo repository.ReservationRepository,
	catalog repository.ProductCatalog,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	invoiceRepo := NewInvoiceRepository(tx)
	resRepo := NewReservationRepository(tx)
	catalog := NewProductCatalog(tx)

	if err := fn(invoiceRepo, resRepo, catalog); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
