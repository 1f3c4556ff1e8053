package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/Samsiani/gn1-invoice-dash-sub000/internal/domain"
	"github.com/Samsiani/gn1-invoice-dash-sub000/internal/domain/entity"
	"github.com/Samsiani/gn1-invoice-dash-sub000/internal/domain/repository"
)

var _ repository.ProductCatalog = (*ProductCatalogRepo)(nil)

// ProductCatalogRepo adaptador de solo-motor hacia la tabla de productos
// (usable con pool o tx). stock_quantity NULL = producto sin gestión de stock.
type ProductCatalogRepo struct {
	q Querier
}

// NewProductCatalog construye el adaptador. Pasar pool o tx (Querier).
func NewProductCatalog(q Querier) *ProductCatalogRepo {
	return &ProductCatalogRepo{q: q}
}

// GetByID obtiene el producto. Devuelve (nil, nil) si no existe.
func (r *ProductCatalogRepo) GetByID(id string) (*entity.Product, error) {
	query := `
		SELECT id, sku, name, price, stock_quantity, created_at, updated_at
		FROM products WHERE id = $1`
	var p entity.Product
	err := r.q.QueryRow(context.Background(), query, id).Scan(
		&p.ID, &p.SKU, &p.Name, &p.Price, &p.StockQuantity, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return &p, nil
}

// GetStockQuantity devuelve el stock actual; nil = sin gestión de stock.
// domain.ErrUnknownProduct si el producto no existe.
func (r *ProductCatalogRepo) GetStockQuantity(id string) (*decimal.Decimal, error) {
	query := `SELECT stock_quantity FROM products WHERE id = $1`
	var qty *decimal.Decimal
	err := r.q.QueryRow(context.Background(), query, id).Scan(&qty)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUnknownProduct
		}
		return nil, fmt.Errorf("get stock quantity: %w", err)
	}
	return qty, nil
}

// AdjustStock aplica delta al stock del producto. No-op si el producto no
// gestiona stock; domain.ErrUnknownProduct si ya no existe.
func (r *ProductCatalogRepo) AdjustStock(id string, delta decimal.Decimal) error {
	exists, err := r.Exists(id)
	if err != nil {
		return err
	}
	if !exists {
		return domain.ErrUnknownProduct
	}
	query := `
		UPDATE products
		SET stock_quantity = stock_quantity + $2, updated_at = now()
		WHERE id = $1 AND stock_quantity IS NOT NULL`
	if _, err := r.q.Exec(context.Background(), query, id, delta); err != nil {
		return fmt.Errorf("adjust stock: %w", err)
	}
	return nil
}

// Exists indica si el producto sigue en el catálogo.
func (r *ProductCatalogRepo) Exists(id string) (bool, error) {
	var one int
	err := r.q.QueryRow(context.Background(), `SELECT 1 FROM products WHERE id = $1`, id).Scan(&one)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("product exists: %w", err)
	}
	return true, nil
}

// LockForAllocation bloquea la fila del producto (SELECT ... FOR UPDATE)
// dentro de la transacción vigente. Serializa por producto la validación y la
// aplicación de reservas; si el lock no llega dentro del lock_timeout de la
// sesión (SQLSTATE 55P03) se traduce a domain.ErrConcurrentAllocation para
// que el caso de uso reintente. Un producto inexistente no es error aquí: la
// reconciliación lo detecta y lo omite por su cuenta.
func (r *ProductCatalogRepo) LockForAllocation(id string) error {
	var lockedID string
	err := r.q.QueryRow(context.Background(),
		`SELECT id FROM products WHERE id = $1 FOR UPDATE`, id).Scan(&lockedID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		if isLockNotAvailable(err) {
			return domain.ErrConcurrentAllocation
		}
		return fmt.Errorf("lock product: %w", err)
	}
	return nil
}
