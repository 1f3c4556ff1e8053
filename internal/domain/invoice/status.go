// Package invoice contiene la lógica pura del ciclo de vida de facturas:
// derivación del estado a partir de los ítems y numeración secuencial.
package invoice

import (
	"github.com/Samsiani/gn1-invoice-dash-sub000/internal/domain/entity"
)

// DeriveLifecycleStatus calcula el estado de la factura como función pura de
// su lista de ítems, recalculado después de cada guardado:
//
//   - sin ítems activos (todos canceled/none o lista vacía) -> unfinished
//   - todos los activos sold                                -> completed
//   - todos los activos reserved                            -> reserved
//   - mezcla sold/reserved                                  -> unfinished
func DeriveLifecycleStatus(items []*entity.InvoiceItem) string {
	var active, sold, reserved int
	for _, it := range items {
		if !it.IsActive() {
			continue
		}
		active++
		switch it.Status {
		case entity.ItemStatusSold:
			sold++
		case entity.ItemStatusReserved:
			reserved++
		}
	}
	switch {
	case active == 0:
		return entity.LifecycleUnfinished
	case sold == active:
		return entity.LifecycleCompleted
	case reserved == active:
		return entity.LifecycleReserved
	default:
		return entity.LifecycleUnfinished
	}
}

// MarkItemsSold devuelve una copia de los ítems donde todo reserved pasa a
// sold con ReservationDays en 0. Los demás estados quedan intactos. Es la
// lista "nueva" que alimenta la reconciliación del marcado masivo como vendida.
func MarkItemsSold(items []*entity.InvoiceItem) []*entity.InvoiceItem {
	out := make([]*entity.InvoiceItem, 0, len(items))
	for _, it := range items {
		cp := *it
		if cp.Status == entity.ItemStatusReserved {
			cp.Status = entity.ItemStatusSold
			cp.ReservationDays = 0
		}
		out = append(out, &cp)
	}
	return out
}
