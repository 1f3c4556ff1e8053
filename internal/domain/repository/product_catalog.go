package repository

import (
	"github.com/shopspring/decimal"

	"github.com/Samsiani/gn1-invoice-dash-sub000/internal/domain/entity"
)

// ProductCatalog es el adaptador hacia el catálogo de productos (colaborador
// externo). El motor solo consulta stock, aplica ajustes y toma el lock por
// producto; la gestión del catálogo en sí queda fuera de este sistema.
type ProductCatalog interface {
	GetByID(id string) (*entity.Product, error)
	// GetStockQuantity devuelve el stock actual; nil significa producto sin
	// gestión de stock (disponibilidad ilimitada).
	GetStockQuantity(id string) (*decimal.Decimal, error)
	// AdjustStock aplica delta al stock: positivo aumenta, negativo descuenta.
	// No-op para productos sin gestión. domain.ErrUnknownProduct si el
	// producto ya no existe.
	AdjustStock(id string, delta decimal.Decimal) error
	Exists(id string) (bool, error)
	// LockForAllocation bloquea la fila del producto dentro de la transacción
	// vigente (SELECT ... FOR UPDATE). Serializa validación y aplicación de
	// reservas por producto; domain.ErrConcurrentAllocation si el lock no se
	// obtiene dentro del lock_timeout.
	LockForAllocation(id string) error
}
