package stock_test

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Samsiani/gn1-invoice-dash-sub000/internal/domain"
	"github.com/Samsiani/gn1-invoice-dash-sub000/internal/domain/entity"
	"github.com/Samsiani/gn1-invoice-dash-sub000/internal/domain/repository"
)

// Dobles en memoria con la misma semántica de los contratos de persistencia.

type memReservationRepo struct {
	rows map[string]*entity.Reservation
}

func newMemReservationRepo() *memReservationRepo {
	return &memReservationRepo{rows: make(map[string]*entity.Reservation)}
}

func key(productID, invoiceID string) string { return productID + "|" + invoiceID }

func (r *memReservationRepo) Get(productID, invoiceID string) (*entity.Reservation, error) {
	res, ok := r.rows[key(productID, invoiceID)]
	if !ok {
		return nil, nil
	}
	cp := *res
	return &cp, nil
}

func (r *memReservationRepo) Upsert(res *entity.Reservation) error {
	cp := *res
	r.rows[key(res.ProductID, res.InvoiceID)] = &cp
	return nil
}

func (r *memReservationRepo) Delete(productID, invoiceID string) error {
	delete(r.rows, key(productID, invoiceID))
	return nil
}

func (r *memReservationRepo) SumActive(productID string, now time.Time) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, res := range r.rows {
		if res.ProductID == productID && !res.IsExpired(now) {
			total = total.Add(res.Quantity)
		}
	}
	return total, nil
}

func (r *memReservationRepo) ListByInvoice(invoiceID string) ([]*entity.Reservation, error) {
	var out []*entity.Reservation
	for _, res := range r.rows {
		if res.InvoiceID == invoiceID {
			cp := *res
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memReservationRepo) ListExpired(now time.Time) ([]*entity.Reservation, error) {
	var out []*entity.Reservation
	for _, res := range r.rows {
		if res.IsExpired(now) {
			cp := *res
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ProductID != out[j].ProductID {
			return out[i].ProductID < out[j].ProductID
		}
		return out[i].InvoiceID < out[j].InvoiceID
	})
	return out, nil
}

type memCatalog struct {
	stock map[string]*decimal.Decimal // valor nil = producto sin gestión
	locks []string
}

func newMemCatalog() *memCatalog {
	return &memCatalog{stock: make(map[string]*decimal.Decimal)}
}

func (c *memCatalog) setStock(id string, qty int64) {
	d := decimal.NewFromInt(qty)
	c.stock[id] = &d
}

func (c *memCatalog) GetByID(id string) (*entity.Product, error) {
	qty, ok := c.stock[id]
	if !ok {
		return nil, domain.ErrUnknownProduct
	}
	return &entity.Product{ID: id, StockQuantity: qty}, nil
}

func (c *memCatalog) GetStockQuantity(id string) (*decimal.Decimal, error) {
	qty, ok := c.stock[id]
	if !ok {
		return nil, domain.ErrUnknownProduct
	}
	if qty == nil {
		return nil, nil
	}
	cp := *qty
	return &cp, nil
}

func (c *memCatalog) AdjustStock(id string, delta decimal.Decimal) error {
	qty, ok := c.stock[id]
	if !ok {
		return domain.ErrUnknownProduct
	}
	if qty == nil {
		return nil
	}
	next := qty.Add(delta)
	c.stock[id] = &next
	return nil
}

func (c *memCatalog) Exists(id string) (bool, error) {
	_, ok := c.stock[id]
	return ok, nil
}

func (c *memCatalog) LockForAllocation(id string) error {
	c.locks = append(c.locks, id)
	return nil
}

type memInvoiceRepo struct {
	invoices map[string]*entity.Invoice
	items    map[string][]*entity.InvoiceItem
}

func newMemInvoiceRepo() *memInvoiceRepo {
	return &memInvoiceRepo{
		invoices: make(map[string]*entity.Invoice),
		items:    make(map[string][]*entity.InvoiceItem),
	}
}

func (r *memInvoiceRepo) Create(inv *entity.Invoice) error {
	cp := *inv
	r.invoices[inv.ID] = &cp
	return nil
}

func (r *memInvoiceRepo) SaveHeader(inv *entity.Invoice) error {
	if _, ok := r.invoices[inv.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *inv
	r.invoices[inv.ID] = &cp
	return nil
}

func (r *memInvoiceRepo) GetByID(id string) (*entity.Invoice, error) {
	inv, ok := r.invoices[id]
	if !ok {
		return nil, nil
	}
	cp := *inv
	return &cp, nil
}

func (r *memInvoiceRepo) List(limit, offset int) ([]*entity.Invoice, error) {
	return nil, nil
}

func (r *memInvoiceRepo) NextNumber() (string, error) { return "N00000001", nil }

func (r *memInvoiceRepo) GetItems(invoiceID string) ([]*entity.InvoiceItem, error) {
	out := make([]*entity.InvoiceItem, 0, len(r.items[invoiceID]))
	for _, it := range r.items[invoiceID] {
		cp := *it
		out = append(out, &cp)
	}
	return out, nil
}

func (r *memInvoiceRepo) ReplaceItems(invoiceID string, items []*entity.InvoiceItem) error {
	cps := make([]*entity.InvoiceItem, 0, len(items))
	for _, it := range items {
		cp := *it
		cps = append(cps, &cp)
	}
	r.items[invoiceID] = cps
	return nil
}

func (r *memInvoiceRepo) GetPayments(invoiceID string) ([]*entity.Payment, error) { return nil, nil }

func (r *memInvoiceRepo) ReplacePayments(invoiceID string, payments []*entity.Payment) error {
	return nil
}

func (r *memInvoiceRepo) Delete(invoiceID string) error {
	delete(r.invoices, invoiceID)
	delete(r.items, invoiceID)
	return nil
}

type memTxRunner struct {
	invoiceRepo *memInvoiceRepo
	resRepo     *memReservationRepo
	catalog     *memCatalog
}

func (tr *memTxRunner) Run(ctx context.Context, fn func(
	invoiceRepo repository.InvoiceRepository,
	resRepo repository.ReservationRepository,
	catalog repository.ProductCatalog,
) error) error {
	return fn(tr.invoiceRepo, tr.resRepo, tr.catalog)
}
