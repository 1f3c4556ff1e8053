package invoice

import (
	"fmt"
	"regexp"
	"strconv"
)

// NumberPrefix es el prefijo fijo de los números de factura.
const NumberPrefix = "N"

var numberPattern = regexp.MustCompile(`^N\d{8}$`)

// FormatNumber produce el número de factura "N" + 8 dígitos a partir del
// consecutivo. El consecutivo lo mantiene el repositorio como marca de agua
// monotónica: nunca se reutiliza aunque la factura se elimine.
func FormatNumber(seq int64) string {
	return fmt.Sprintf("%s%08d", NumberPrefix, seq)
}

// ValidNumber verifica el formato N + 8 dígitos.
func ValidNumber(number string) bool {
	return numberPattern.MatchString(number)
}

// SequenceOf extrae el consecutivo de un número de factura válido.
func SequenceOf(number string) (int64, error) {
	if !ValidNumber(number) {
		return 0, fmt.Errorf("número de factura inválido: %q", number)
	}
	return strconv.ParseInt(number[len(NumberPrefix):], 10, 64)
}

// ClampReservationDays acota los días de reserva al rango [1, max].
// Solo aplica a ítems reservados; para el resto el valor correcto es 0.
func ClampReservationDays(days, max int) int {
	if days < 1 {
		return 1
	}
	if days > max {
		return max
	}
	return days
}
