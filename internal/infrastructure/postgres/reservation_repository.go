package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/Samsiani/gn1-invoice-dash-sub000/internal/domain/entity"
	"github.com/Samsiani/gn1-invoice-dash-sub000/internal/domain/repository"
)

var _ repository.ReservationRepository = (*ReservationRepo)(nil)

// ReservationRepo implementación del libro de reservas sobre PostgreSQL
// (usable con pool o tx). Clave primaria compuesta (product_id, invoice_id).
type ReservationRepo struct {
	q Querier
}

// NewReservationRepository construye el adaptador. Pasar pool o tx (Querier).
func NewReservationRepository(q Querier) *ReservationRepo {
	return &ReservationRepo{q: q}
}

// Get obtiene la fila del par. Devuelve (nil, nil) si no hay reserva.
func (r *ReservationRepo) Get(productID, invoiceID string) (*entity.Reservation, error) {
	query := `
		SELECT product_id, invoice_id, quantity, expires_at, source_invoice_date, updated_at
		FROM stock_reservations WHERE product_id = $1 AND invoice_id = $2`
	var res entity.Reservation
	err := r.q.QueryRow(context.Background(), query, productID, invoiceID).Scan(
		&res.ProductID, &res.InvoiceID, &res.Quantity, &res.ExpiresAt,
		&res.SourceInvoiceDate, &res.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get reservation: %w", err)
	}
	return &res, nil
}

// Upsert inserta o sobreescribe la fila del par con la cantidad absoluta.
func (r *ReservationRepo) Upsert(res *entity.Reservation) error {
	query := `
		INSERT INTO stock_reservations (product_id, invoice_id, quantity, expires_at, source_invoice_date, updated_at)
		VALUES ($1, $2, $3, $4, $5, now())
		ON CONFLICT (product_id, invoice_id)
		DO UPDATE SET quantity = EXCLUDED.quantity,
		              expires_at = EXCLUDED.expires_at,
		              source_invoice_date = EXCLUDED.source_invoice_date,
		              updated_at = now()`
	_, err := r.q.Exec(context.Background(), query,
		res.ProductID, res.InvoiceID, res.Quantity, res.ExpiresAt, res.SourceInvoiceDate,
	)
	if err != nil {
		return fmt.Errorf("upsert reservation: %w", err)
	}
	return nil
}

// Delete elimina la fila del par. Borrar una fila inexistente es no-op.
func (r *ReservationRepo) Delete(productID, invoiceID string) error {
	query := `DELETE FROM stock_reservations WHERE product_id = $1 AND invoice_id = $2`
	if _, err := r.q.Exec(context.Background(), query, productID, invoiceID); err != nil {
		return fmt.Errorf("delete reservation: %w", err)
	}
	return nil
}

// SumActive suma las reservas vigentes del producto: expires_at nulo o
// posterior a now. Las vencidas no suman aunque la fila siga sin purgar.
func (r *ReservationRepo) SumActive(productID string, now time.Time) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(quantity), 0)
		FROM stock_reservations
		WHERE product_id = $1 AND (expires_at IS NULL OR expires_at > $2)`
	var sum decimal.Decimal
	if err := r.q.QueryRow(context.Background(), query, productID, now).Scan(&sum); err != nil {
		return decimal.Zero, fmt.Errorf("sum reservations: %w", err)
	}
	return sum, nil
}

// ListByInvoice devuelve todas las reservas de una factura.
func (r *ReservationRepo) ListByInvoice(invoiceID string) ([]*entity.Reservation, error) {
	query := `
		SELECT product_id, invoice_id, quantity, expires_at, source_invoice_date, updated_at
		FROM stock_reservations WHERE invoice_id = $1 ORDER BY product_id`
	return r.list(query, invoiceID)
}

// ListExpired devuelve las reservas vencidas respecto a now, ordenadas por
// producto para que el barrido tome los locks en un orden estable.
func (r *ReservationRepo) ListExpired(now time.Time) ([]*entity.Reservation, error) {
	query := `
		SELECT product_id, invoice_id, quantity, expires_at, source_invoice_date, updated_at
		FROM stock_reservations
		WHERE expires_at IS NOT NULL AND expires_at < $1
		ORDER BY product_id, invoice_id`
	return r.list(query, now)
}

func (r *ReservationRepo) list(query string, args ...any) ([]*entity.Reservation, error) {
	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list reservations: %w", err)
	}
	defer rows.Close()
	var list []*entity.Reservation
	for rows.Next() {
		var res entity.Reservation
		if err := rows.Scan(&res.ProductID, &res.InvoiceID, &res.Quantity,
			&res.ExpiresAt, &res.SourceInvoiceDate, &res.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan reservation: %w", err)
		}
		list = append(list, &res)
	}
	return list, rows.Err()
}
