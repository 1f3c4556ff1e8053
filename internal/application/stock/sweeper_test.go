package stock_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appstock "github.com/Samsiani/gn1-invoice-dash-sub000/internal/application/stock"
	"github.com/Samsiani/gn1-invoice-dash-sub000/internal/domain/entity"
	"github.com/Samsiani/gn1-invoice-dash-sub000/pkg/logger"
)

func newSweepWorld() (*appstock.ExpirySweeper, *memInvoiceRepo, *memReservationRepo, *memCatalog) {
	invoiceRepo := newMemInvoiceRepo()
	resRepo := newMemReservationRepo()
	catalog := newMemCatalog()
	tr := &memTxRunner{invoiceRepo: invoiceRepo, resRepo: resRepo, catalog: catalog}
	sweeper := appstock.NewExpirySweeper(tr, resRepo, logger.NewNop())
	return sweeper, invoiceRepo, resRepo, catalog
}

func seedReservedInvoice(t *testing.T, invoiceRepo *memInvoiceRepo, resRepo *memReservationRepo, invoiceID, productID string, qty int64, expiresAt time.Time) {
	t.Helper()
	require.NoError(t, invoiceRepo.Create(&entity.Invoice{
		ID:              invoiceID,
		Number:          "N00000001",
		Type:            entity.InvoiceTypeStandard,
		LifecycleStatus: entity.LifecycleReserved,
		CreatedAt:       time.Now().Add(-48 * time.Hour),
	}))
	require.NoError(t, invoiceRepo.ReplaceItems(invoiceID, []*entity.InvoiceItem{{
		ID:              invoiceID + "-it1",
		InvoiceID:       invoiceID,
		ProductID:       productID,
		Quantity:        decimal.NewFromInt(qty),
		Status:          entity.ItemStatusReserved,
		ReservationDays: 1,
	}}))
	require.NoError(t, resRepo.Upsert(&entity.Reservation{
		ProductID: productID,
		InvoiceID: invoiceID,
		Quantity:  decimal.NewFromInt(qty),
		ExpiresAt: &expiresAt,
	}))
}

func TestRunExpirySweep_CancelaItemYBorraReserva(t *testing.T) {
	sweeper, invoiceRepo, resRepo, catalog := newSweepWorld()
	catalog.setStock("p1", 10)
	seedReservedInvoice(t, invoiceRepo, resRepo, "inv-1", "p1", 3, time.Now().Add(-time.Hour))

	sweeper.RunExpirySweep(context.Background())

	res, err := resRepo.Get("p1", "inv-1")
	require.NoError(t, err)
	assert.Nil(t, res, "la fila vencida debe desaparecer del libro")

	items, err := invoiceRepo.GetItems("inv-1")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, entity.ItemStatusCanceled, items[0].Status,
		"el ítem reservado pasa a canceled")
	assert.Equal(t, 0, items[0].ReservationDays)

	inv, err := invoiceRepo.GetByID("inv-1")
	require.NoError(t, err)
	assert.Equal(t, entity.LifecycleUnfinished, inv.LifecycleStatus,
		"el estado se recalcula tras la cancelación")
}

func TestRunExpirySweep_NoTocaVigentes(t *testing.T) {
	sweeper, invoiceRepo, resRepo, catalog := newSweepWorld()
	catalog.setStock("p1", 10)
	seedReservedInvoice(t, invoiceRepo, resRepo, "inv-1", "p1", 3, time.Now().Add(time.Hour))

	sweeper.RunExpirySweep(context.Background())

	res, err := resRepo.Get("p1", "inv-1")
	require.NoError(t, err)
	require.NotNil(t, res, "una reserva vigente no se barre")

	items, err := invoiceRepo.GetItems("inv-1")
	require.NoError(t, err)
	assert.Equal(t, entity.ItemStatusReserved, items[0].Status)
}

func TestRunExpirySweep_FacturaDesaparecida_PurgaLaFila(t *testing.T) {
	sweeper, _, resRepo, catalog := newSweepWorld()
	catalog.setStock("p1", 10)
	past := time.Now().Add(-time.Hour)
	require.NoError(t, resRepo.Upsert(&entity.Reservation{
		ProductID: "p1",
		InvoiceID: "inv-huerfana",
		Quantity:  decimal.NewFromInt(2),
		ExpiresAt: &past,
	}))

	sweeper.RunExpirySweep(context.Background())

	res, err := resRepo.Get("p1", "inv-huerfana")
	require.NoError(t, err)
	assert.Nil(t, res, "sin factura dueña solo queda purgar la fila")
}

func TestRunExpirySweep_Idempotente(t *testing.T) {
	sweeper, invoiceRepo, resRepo, catalog := newSweepWorld()
	catalog.setStock("p1", 10)
	seedReservedInvoice(t, invoiceRepo, resRepo, "inv-1", "p1", 3, time.Now().Add(-time.Hour))

	sweeper.RunExpirySweep(context.Background())
	sweeper.RunExpirySweep(context.Background())

	items, err := invoiceRepo.GetItems("inv-1")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, entity.ItemStatusCanceled, items[0].Status)
	assert.True(t, catalog.stock["p1"].Equal(decimal.NewFromInt(10)),
		"el barrido nunca toca el stock físico")
}

func TestRunExpirySweep_VariasFacturasMismoProducto(t *testing.T) {
	sweeper, invoiceRepo, resRepo, catalog := newSweepWorld()
	catalog.setStock("p1", 10)
	seedReservedInvoice(t, invoiceRepo, resRepo, "inv-1", "p1", 3, time.Now().Add(-time.Hour))
	seedReservedInvoice(t, invoiceRepo, resRepo, "inv-2", "p1", 2, time.Now().Add(time.Hour))

	sweeper.RunExpirySweep(context.Background())

	vencida, err := resRepo.Get("p1", "inv-1")
	require.NoError(t, err)
	assert.Nil(t, vencida)

	vigente, err := resRepo.Get("p1", "inv-2")
	require.NoError(t, err)
	require.NotNil(t, vigente, "el barrido solo elimina los pares vencidos")
	assert.True(t, vigente.Quantity.Equal(decimal.NewFromInt(2)))
}
