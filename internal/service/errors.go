package service

import "errors"

// Typed error kinds surfaced by the engine. The write path returns these
// directly instead of pattern-matching storage error text; handlers map them
// to user-facing responses with errors.Is.
var (
	// ErrCarritoVacio: ProcesarVenta called with no lines.
	ErrCarritoVacio = errors.New("El carrito está vacío")

	// ErrStockInsuficiente: a line requested more units than the product has.
	// The whole sale transaction rolls back.
	ErrStockInsuficiente = errors.New("Stock insuficiente")

	// ErrPrecioInvalido: a line carries a unit price ≤ 0.
	ErrPrecioInvalido = errors.New("Precio inválido: debe ser mayor a 0")

	// ErrCantidadInvalida: a line carries a quantity ≤ 0.
	ErrCantidadInvalida = errors.New("Cantidad inválida: debe ser mayor a 0")

	// ErrDescuentoInvalido: discount percentage outside [0, 100].
	ErrDescuentoInvalido = errors.New("Descuento inválido: el porcentaje debe estar entre 0 y 100")

	// ErrMontoInvalido: fixed discount amount < 0.
	ErrMontoInvalido = errors.New("Monto inválido: debe ser mayor o igual a 0")

	// ErrDevolucionExcedida: a return line exceeds the originally sold quantity.
	ErrDevolucionExcedida = errors.New("La cantidad a devolver excede la cantidad vendida")

	// ErrVentaNoEncontrada: referenced sale does not exist.
	ErrVentaNoEncontrada = errors.New("Venta no encontrada")

	// ErrPagoRechazado: the payment gateway declined the card charge.
	ErrPagoRechazado = errors.New("Pago rechazado por la pasarela")
)
