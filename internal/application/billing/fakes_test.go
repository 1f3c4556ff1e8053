package billing_test

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Samsiani/gn1-invoice-dash-sub000/internal/domain"
	"github.com/Samsiani/gn1-invoice-dash-sub000/internal/domain/entity"
	invdomain "github.com/Samsiani/gn1-invoice-dash-sub000/internal/domain/invoice"
	"github.com/Samsiani/gn1-invoice-dash-sub000/internal/domain/repository"
)

// ──────────────────────────────────────────────────────────────────────────────
// Dobles en memoria de los puertos de persistencia. Implementan la misma
// semántica documentada en los contratos: GetByID (nil, nil) cuando no existe,
// Delete de reserva idempotente, SumActive excluye vencidas, etc.
// ──────────────────────────────────────────────────────────────────────────────

type fakeInvoiceRepo struct {
	invoices map[string]*entity.Invoice
	items    map[string][]*entity.InvoiceItem
	payments map[string][]*entity.Payment
	seq      int64
}

func newFakeInvoiceRepo() *fakeInvoiceRepo {
	return &fakeInvoiceRepo{
		invoices: make(map[string]*entity.Invoice),
		items:    make(map[string][]*entity.InvoiceItem),
		payments: make(map[string][]*entity.Payment),
	}
}

func (r *fakeInvoiceRepo) Create(inv *entity.Invoice) error {
	cp := *inv
	r.invoices[inv.ID] = &cp
	return nil
}

func (r *fakeInvoiceRepo) SaveHeader(inv *entity.Invoice) error {
	if _, ok := r.invoices[inv.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *inv
	r.invoices[inv.ID] = &cp
	return nil
}

func (r *fakeInvoiceRepo) GetByID(id string) (*entity.Invoice, error) {
	inv, ok := r.invoices[id]
	if !ok {
		return nil, nil
	}
	cp := *inv
	return &cp, nil
}

func (r *fakeInvoiceRepo) List(limit, offset int) ([]*entity.Invoice, error) {
	ids := make([]string, 0, len(r.invoices))
	for id := range r.invoices {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	var out []*entity.Invoice
	for i, id := range ids {
		if i < offset {
			continue
		}
		if len(out) >= limit {
			break
		}
		cp := *r.invoices[id]
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakeInvoiceRepo) NextNumber() (string, error) {
	r.seq++
	return invdomain.FormatNumber(r.seq), nil
}

func (r *fakeInvoiceRepo) GetItems(invoiceID string) ([]*entity.InvoiceItem, error) {
	out := make([]*entity.InvoiceItem, 0, len(r.items[invoiceID]))
	for _, it := range r.items[invoiceID] {
		cp := *it
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakeInvoiceRepo) ReplaceItems(invoiceID string, items []*entity.InvoiceItem) error {
	cps := make([]*entity.InvoiceItem, 0, len(items))
	for _, it := range items {
		cp := *it
		cps = append(cps, &cp)
	}
	r.items[invoiceID] = cps
	return nil
}

func (r *fakeInvoiceRepo) GetPayments(invoiceID string) ([]*entity.Payment, error) {
	out := make([]*entity.Payment, 0, len(r.payments[invoiceID]))
	for _, p := range r.payments[invoiceID] {
		cp := *p
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakeInvoiceRepo) ReplacePayments(invoiceID string, payments []*entity.Payment) error {
	cps := make([]*entity.Payment, 0, len(payments))
	for _, p := range payments {
		cp := *p
		cps = append(cps, &cp)
	}
	r.payments[invoiceID] = cps
	return nil
}

func (r *fakeInvoiceRepo) Delete(invoiceID string) error {
	delete(r.invoices, invoiceID)
	delete(r.items, invoiceID)
	delete(r.payments, invoiceID)
	return nil
}

type fakeReservationRepo struct {
	rows map[string]*entity.Reservation // key: productID|invoiceID
}

func newFakeReservationRepo() *fakeReservationRepo {
	return &fakeReservationRepo{rows: make(map[string]*entity.Reservation)}
}

func resKey(productID, invoiceID string) string {
	return productID + "|" + invoiceID
}

func (r *fakeReservationRepo) Get(productID, invoiceID string) (*entity.Reservation, error) {
	res, ok := r.rows[resKey(productID, invoiceID)]
	if !ok {
		return nil, nil
	}
	cp := *res
	return &cp, nil
}

func (r *fakeReservationRepo) Upsert(res *entity.Reservation) error {
	cp := *res
	r.rows[resKey(res.ProductID, res.InvoiceID)] = &cp
	return nil
}

func (r *fakeReservationRepo) Delete(productID, invoiceID string) error {
	delete(r.rows, resKey(productID, invoiceID))
	return nil
}

func (r *fakeReservationRepo) SumActive(productID string, now time.Time) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, res := range r.rows {
		if res.ProductID == productID && !res.IsExpired(now) {
			total = total.Add(res.Quantity)
		}
	}
	return total, nil
}

func (r *fakeReservationRepo) ListByInvoice(invoiceID string) ([]*entity.Reservation, error) {
	var out []*entity.Reservation
	for _, res := range r.rows {
		if res.InvoiceID == invoiceID {
			cp := *res
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeReservationRepo) ListExpired(now time.Time) ([]*entity.Reservation, error) {
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

type fakeCatalog struct {
	stock     map[string]*decimal.Decimal // valor nil = producto sin gestión
	lockErr   map[string]error
	lockOrder []string
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		stock:   make(map[string]*decimal.Decimal),
		lockErr: make(map[string]error),
	}
}

func (c *fakeCatalog) setStock(id string, qty int64) {
	d := decimal.NewFromInt(qty)
	c.stock[id] = &d
}

func (c *fakeCatalog) setUnmanaged(id string) {
	c.stock[id] = nil
}

func (c *fakeCatalog) stockOf(id string) decimal.Decimal {
	if q := c.stock[id]; q != nil {
		return *q
	}
	return decimal.Zero
}

func (c *fakeCatalog) GetByID(id string) (*entity.Product, error) {
	qty, ok := c.stock[id]
	if !ok {
		return nil, domain.ErrUnknownProduct
	}
	return &entity.Product{ID: id, StockQuantity: qty}, nil
}

func (c *fakeCatalog) GetStockQuantity(id string) (*decimal.Decimal, error) {
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

func (c *fakeCatalog) AdjustStock(id string, delta decimal.Decimal) error {
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

func (c *fakeCatalog) Exists(id string) (bool, error) {
	_, ok := c.stock[id]
	return ok, nil
}

func (c *fakeCatalog) LockForAllocation(id string) error {
	c.lockOrder = append(c.lockOrder, id)
	if err := c.lockErr[id]; err != nil {
		return err
	}
	return nil
}

// fakeTxRunner ejecuta el callback directamente sobre los fakes compartidos.
type fakeTxRunner struct {
	invoiceRepo *fakeInvoiceRepo
	resRepo     *fakeReservationRepo
	catalog     *fakeCatalog
	runs        int
}

func (tr *fakeTxRunner) Run(ctx context.Context, fn func(
	invoiceRepo repository.InvoiceRepository,
	resRepo repository.ReservationRepository,
	catalog repository.ProductCatalog,
) error) error {
	tr.runs++
	return fn(tr.invoiceRepo, tr.resRepo, tr.catalog)
}

// newFakeWorld arma el juego completo de fakes compartiendo estado.
func newFakeWorld() (*fakeTxRunner, *fakeInvoiceRepo, *fakeReservationRepo, *fakeCatalog) {
	invoiceRepo := newFakeInvoiceRepo()
	resRepo := newFakeReservationRepo()
	catalog := newFakeCatalog()
	return &fakeTxRunner{invoiceRepo: invoiceRepo, resRepo: resRepo, catalog: catalog}, invoiceRepo, resRepo, catalog
}
