// Package stock contiene la aritmética pura de asignaciones: partición de la
// lista de ítems en mapas por producto y diferencia de cantidades vendidas.
package stock

import (
	"github.com/shopspring/decimal"

	"github.com/Samsiani/gn1-invoice-dash-sub000/internal/domain/entity"
)

// Allocations agrupa por producto las cantidades reservadas y vendidas de una
// lista de ítems, junto con los días de reserva vigentes por producto.
// Los ítems con estado none o canceled no entran en ningún mapa: no tienen
// efecto en stock ni en reservas (una factura fictive nunca toca inventario).
type Allocations struct {
	Reserved        map[string]decimal.Decimal
	Sold            map[string]decimal.Decimal
	ReservationDays map[string]int
}

// Partition construye los mapas de asignación a partir de una lista de ítems.
// Cantidades del mismo producto en varias líneas se acumulan.
func Partition(items []*entity.InvoiceItem) Allocations {
	a := Allocations{
		Reserved:        make(map[string]decimal.Decimal),
		Sold:            make(map[string]decimal.Decimal),
		ReservationDays: make(map[string]int),
	}
	for _, it := range items {
		switch it.Status {
		case entity.ItemStatusReserved:
			a.Reserved[it.ProductID] = a.Reserved[it.ProductID].Add(it.Quantity)
			if it.ReservationDays > a.ReservationDays[it.ProductID] {
				a.ReservationDays[it.ProductID] = it.ReservationDays
			}
		case entity.ItemStatusSold:
			a.Sold[it.ProductID] = a.Sold[it.ProductID].Add(it.Quantity)
		}
	}
	return a
}

// ReservedProducts devuelve la unión de productos con reserva en old o new.
func ReservedProducts(old, new Allocations) []string {
	return unionKeys(old.Reserved, new.Reserved)
}

// SoldDiff calcula por producto new_sold − old_sold sobre la unión de ambos
// mapas. Un diff positivo descuenta stock; uno negativo devuelve unidades
// vendidas previamente. Productos con diff cero no aparecen en el resultado.
func SoldDiff(old, new Allocations) map[string]decimal.Decimal {
	diffs := make(map[string]decimal.Decimal)
	for _, pid := range unionKeys(old.Sold, new.Sold) {
		d := new.Sold[pid].Sub(old.Sold[pid])
		if !d.IsZero() {
			diffs[pid] = d
		}
	}
	return diffs
}

func unionKeys(a, b map[string]decimal.Decimal) []string {
	seen := make(map[string]bool, len(a)+len(b))
	keys := make([]string, 0, len(a)+len(b))
	for k := range a {
		if !seen[k] {
			seen[k] = true
			keys = append(keys, k)
		}
	}
	for k := range b {
		if !seen[k] {
			seen[k] = true
			keys = append(keys, k)
		}
	}
	return keys
}
