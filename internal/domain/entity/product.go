package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa una referencia del catálogo. El catálogo es un
// colaborador externo: este motor solo lee stock y aplica ajustes.
// StockQuantity nil = producto sin gestión de stock (disponibilidad ilimitada).
type Product struct {
	ID            string
	SKU           string
	Name          string
	Price         decimal.Decimal
	StockQuantity *decimal.Decimal
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// IsManaged indica si el producto tiene stock gestionado.
func (p *Product) IsManaged() bool {
	return p.StockQuantity != nil
}
