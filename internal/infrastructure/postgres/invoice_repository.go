package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/Samsiani/gn1-invoice-dash-sub000/internal/domain/entity"
	invdomain "github.com/Samsiani/gn1-invoice-dash-sub000/internal/domain/invoice"
	"github.com/Samsiani/gn1-invoice-dash-sub000/internal/domain/repository"
)

var _ repository.InvoiceRepository = (*InvoiceRepo)(nil)

// InvoiceRepo implementación de InvoiceRepository (usable con pool o tx).
type InvoiceRepo struct {
	q Querier
}

// NewInvoiceRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInvoiceRepository(q Querier) *InvoiceRepo {
	return &InvoiceRepo{q: q}
}

// Create persiste la cabecera de una factura nueva.
func (r *InvoiceRepo) Create(invoice *entity.Invoice) error {
	if invoice.ID == "" {
		invoice.ID = uuid.New().String()
	}
	query := `
		INSERT INTO invoices (id, number, type, lifecycle_status, total_amount, paid_amount, sale_date, customer_ref, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(context.Background(), query,
		invoice.ID, invoice.Number, invoice.Type, invoice.LifecycleStatus,
		invoice.TotalAmount, invoice.PaidAmount, invoice.SaleDate,
		invoice.CustomerRef, invoice.CreatedAt, invoice.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("número de factura ya existe: %w", err)
		}
		return fmt.Errorf("insert invoice: %w", err)
	}
	return nil
}

// SaveHeader actualiza tipo, estado, totales y fecha de venta de la cabecera.
func (r *InvoiceRepo) SaveHeader(invoice *entity.Invoice) error {
	query := `
		UPDATE invoices
		SET type             = $2,
		    lifecycle_status = $3,
		    total_amount     = $4,
		    paid_amount      = $5,
		    sale_date        = $6,
		    customer_ref     = $7,
		    updated_at       = $8
		WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query,
		invoice.ID, invoice.Type, invoice.LifecycleStatus,
		invoice.TotalAmount, invoice.PaidAmount, invoice.SaleDate,
		invoice.CustomerRef, invoice.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update invoice header: %w", err)
	}
	return nil
}

// GetByID obtiene la cabecera por ID. Devuelve (nil, nil) si no existe.
func (r *InvoiceRepo) GetByID(id string) (*entity.Invoice, error) {
	query := `
		SELECT id, number, type, lifecycle_status, total_amount, paid_amount,
		       sale_date, customer_ref, created_at, updated_at
		FROM invoices WHERE id = $1`
	var inv entity.Invoice
	err := r.q.QueryRow(context.Background(), query, id).Scan(
		&inv.ID, &inv.Number, &inv.Type, &inv.LifecycleStatus,
		&inv.TotalAmount, &inv.PaidAmount, &inv.SaleDate,
		&inv.CustomerRef, &inv.CreatedAt, &inv.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get invoice: %w", err)
	}
	return &inv, nil
}

// List devuelve una página de cabeceras, más recientes primero.
func (r *InvoiceRepo) List(limit, offset int) ([]*entity.Invoice, error) {
	query := `
		SELECT id, number, type, lifecycle_status, total_amount, paid_amount,
		       sale_date, customer_ref, created_at, updated_at
		FROM invoices
		ORDER BY created_at DESC, number DESC
		LIMIT $1 OFFSET $2`
	rows, err := r.q.Query(context.Background(), query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	defer rows.Close()
	var list []*entity.Invoice
	for rows.Next() {
		var inv entity.Invoice
		if err := rows.Scan(
			&inv.ID, &inv.Number, &inv.Type, &inv.LifecycleStatus,
			&inv.TotalAmount, &inv.PaidAmount, &inv.SaleDate,
			&inv.CustomerRef, &inv.CreatedAt, &inv.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan invoice: %w", err)
		}
		list = append(list, &inv)
	}
	return list, rows.Err()
}

// NextNumber avanza la marca de agua monotónica y devuelve el número
// formateado "N" + 8 dígitos. La fila única de invoice_number_seq se
// incrementa de forma atómica; un número entregado no se reutiliza aunque la
// factura termine eliminada.
func (r *InvoiceRepo) NextNumber() (string, error) {
	query := `
		UPDATE invoice_number_seq
		SET last_seq = last_seq + 1
		RETURNING last_seq`
	var seq int64
	if err := r.q.QueryRow(context.Background(), query).Scan(&seq); err != nil {
		return "", fmt.Errorf("next invoice number: %w", err)
	}
	return invdomain.FormatNumber(seq), nil
}

// GetItems obtiene todas las líneas de una factura.
func (r *InvoiceRepo) GetItems(invoiceID string) ([]*entity.InvoiceItem, error) {
	query := `
		SELECT id, invoice_id, product_id, quantity, unit_price, line_total,
		       status, reservation_days, warranty_tag
		FROM invoice_items WHERE invoice_id = $1 ORDER BY id`
	rows, err := r.q.Query(context.Background(), query, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("list invoice items: %w", err)
	}
	defer rows.Close()
	var list []*entity.InvoiceItem
	for rows.Next() {
		var it entity.InvoiceItem
		if err := rows.Scan(&it.ID, &it.InvoiceID, &it.ProductID, &it.Quantity,
			&it.UnitPrice, &it.LineTotal, &it.Status, &it.ReservationDays, &it.WarrantyTag); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		list = append(list, &it)
	}
	return list, rows.Err()
}

// ReplaceItems reemplaza la lista completa de líneas (delete + reinsert).
// Debe invocarse dentro de una transacción, con el diff de reconciliación ya
// calculado sobre el snapshot previo.
func (r *InvoiceRepo) ReplaceItems(invoiceID string, items []*entity.InvoiceItem) error {
	ctx := context.Background()
	if _, err := r.q.Exec(ctx, `DELETE FROM invoice_items WHERE invoice_id = $1`, invoiceID); err != nil {
		return fmt.Errorf("delete invoice items: %w", err)
	}
	query := `
		INSERT INTO invoice_items (id, invoice_id, product_id, quantity, unit_price, line_total, status, reservation_days, warranty_tag)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	for _, it := range items {
		if it.ID == "" {
			it.ID = uuid.New().String()
		}
		if _, err := r.q.Exec(ctx, query,
			it.ID, invoiceID, it.ProductID, it.Quantity, it.UnitPrice,
			it.LineTotal, it.Status, it.ReservationDays, it.WarrantyTag,
		); err != nil {
			return fmt.Errorf("insert invoice item: %w", err)
		}
	}
	return nil
}

// GetPayments obtiene todos los pagos de una factura.
func (r *InvoiceRepo) GetPayments(invoiceID string) ([]*entity.Payment, error) {
	query := `
		SELECT id, invoice_id, amount, date, method, actor_ref
		FROM invoice_payments WHERE invoice_id = $1 ORDER BY date, id`
	rows, err := r.q.Query(context.Background(), query, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	defer rows.Close()
	var list []*entity.Payment
	for rows.Next() {
		var p entity.Payment
		if err := rows.Scan(&p.ID, &p.InvoiceID, &p.Amount, &p.Date, &p.Method, &p.ActorRef); err != nil {
			return nil, fmt.Errorf("scan payment: %w", err)
		}
		list = append(list, &p)
	}
	return list, rows.Err()
}

// ReplacePayments reemplaza el conjunto completo de pagos de la factura.
func (r *InvoiceRepo) ReplacePayments(invoiceID string, payments []*entity.Payment) error {
	ctx := context.Background()
	if _, err := r.q.Exec(ctx, `DELETE FROM invoice_payments WHERE invoice_id = $1`, invoiceID); err != nil {
		return fmt.Errorf("delete payments: %w", err)
	}
	query := `
		INSERT INTO invoice_payments (id, invoice_id, amount, date, method, actor_ref)
		VALUES ($1, $2, $3, $4, $5, $6)`
	for _, p := range payments {
		if p.ID == "" {
			p.ID = uuid.New().String()
		}
		if _, err := r.q.Exec(ctx, query,
			p.ID, invoiceID, p.Amount, p.Date, p.Method, p.ActorRef,
		); err != nil {
			return fmt.Errorf("insert payment: %w", err)
		}
	}
	return nil
}

// Delete elimina cabecera, líneas y pagos de la factura.
func (r *InvoiceRepo) Delete(invoiceID string) error {
	ctx := context.Background()
	if _, err := r.q.Exec(ctx, `DELETE FROM invoice_payments WHERE invoice_id = $1`, invoiceID); err != nil {
		return fmt.Errorf("delete payments: %w", err)
	}
	if _, err := r.q.Exec(ctx, `DELETE FROM invoice_items WHERE invoice_id = $1`, invoiceID); err != nil {
		return fmt.Errorf("delete items: %w", err)
	}
	if _, err := r.q.Exec(ctx, `DELETE FROM invoices WHERE id = $1`, invoiceID); err != nil {
		return fmt.Errorf("delete invoice: %w", err)
	}
	return nil
}
