package stock

import (
	"context"
	"fmt"
	"time"

	"github.com/Samsiani/gn1-invoice-dash-sub000/internal/domain/entity"
	invdomain "github.com/Samsiani/gn1-invoice-dash-sub000/internal/domain/invoice"
	"github.com/Samsiani/gn1-invoice-dash-sub000/internal/domain/repository"
	"github.com/Samsiani/gn1-invoice-dash-sub000/pkg/logger"
)

// ExpirySweeper elimina reservas vencidas y cancela el ítem reservado
// correspondiente en la factura dueña. Corre por schedule (Scheduler o
// cmd/sweep); los errores se registran y no se propagan al invocador.
type ExpirySweeper struct {
	txRunner TxRunner
	resRepo  repository.ReservationRepository
	log      *logger.Logger
}

// NewExpirySweeper construye el barrido. resRepo va atado al pool (solo se
// usa para listar candidatas); las mutaciones ocurren dentro del TxRunner.
func NewExpirySweeper(txRunner TxRunner, resRepo repository.ReservationRepository, log *logger.Logger) *ExpirySweeper {
	return &ExpirySweeper{txRunner: txRunner, resRepo: resRepo, log: log}
}

// RunExpirySweep procesa todas las reservas vencidas. Cada par
// (producto, factura) se procesa en su propia transacción: el fallo de un par
// no impide procesar los demás.
func (s *ExpirySweeper) RunExpirySweep(ctx context.Context) {
	now := time.Now()
	expired, err := s.resRepo.ListExpired(now)
	if err != nil {
		s.log.Error().Err(err).Msg("barrido: listar reservas vencidas")
		return
	}
	if len(expired) == 0 {
		return
	}
	s.log.Info().Int("candidatas", len(expired)).Msg("barrido de reservas vencidas")

	var swept int
	for _, res := range expired {
		if err := s.sweepOne(ctx, res.ProductID, res.InvoiceID, now); err != nil {
			s.log.Error().Err(err).
				Str("product_id", res.ProductID).
				Str("invoice_id", res.InvoiceID).
				Msg("barrido: par no procesado")
			continue
		}
		swept++
	}
	s.log.Info().Int("procesadas", swept).Int("candidatas", len(expired)).Msg("barrido finalizado")
}

// sweepOne cancela el ítem reservado y borra la reserva de un par en una sola
// transacción, bajo el lock del producto. El borrado de la fila es idempotente:
// si un proceso anterior alcanzó a cancelar el ítem pero no a borrar la
// reserva, reintentar el par completo termina el trabajo sin duplicar efectos.
func (s *ExpirySweeper) sweepOne(ctx context.Context, productID, invoiceID string, now time.Time) error {
	return s.txRunner.Run(ctx, func(
		invoiceRepo repository.InvoiceRepository,
		resRepo repository.ReservationRepository,
		catalog repository.ProductCatalog,
	) error {
		if err := catalog.LockForAllocation(productID); err != nil {
			return err
		}
		// Releer bajo lock: una edición concurrente pudo renovar o borrar la reserva.
		res, err := resRepo.Get(productID, invoiceID)
		if err != nil {
			return err
		}
		if res == nil || !res.IsExpired(now) {
			return nil
		}

		inv, err := invoiceRepo.GetByID(invoiceID)
		if err != nil {
			return err
		}
		if inv == nil {
			// Factura desaparecida fuera del flujo normal: solo queda purgar la fila.
			return resRepo.Delete(productID, invoiceID)
		}
		items, err := invoiceRepo.GetItems(invoiceID)
		if err != nil {
			return err
		}
		var canceled int
		for _, it := range items {
			if it.ProductID == productID && it.Status == entity.ItemStatusReserved {
				it.Status = entity.ItemStatusCanceled
				it.ReservationDays = 0
				canceled++
			}
		}
		if canceled > 0 {
			if err := invoiceRepo.ReplaceItems(invoiceID, items); err != nil {
				return err
			}
			inv.LifecycleStatus = invdomain.DeriveLifecycleStatus(items)
			inv.UpdatedAt = now
			if err := invoiceRepo.SaveHeader(inv); err != nil {
				return fmt.Errorf("guardar cabecera %s: %w", invoiceID, err)
			}
		}
		return resRepo.Delete(productID, invoiceID)
	})
}
