package service

import (
	"strings"

	"minimarket/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// descuento.go — pure discount operations over a cart.
//
// All monetary results are rounded to 2 decimals with banker's rounding
// (RoundBank), matching the behavior the register historically exposed.
// Whole-cart operations set each line's Descuento to nil on purpose: global
// discounts are not attributed to individual lines, only per-line operations
// record a named discount.

var cien = decimal.NewFromInt(100)

// clampCero returns d, or zero when d is negative.
func clampCero(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

func validarPorcentaje(pct decimal.Decimal) error {
	if pct.IsNegative() || pct.GreaterThan(cien) {
		return ErrDescuentoInvalido
	}
	return nil
}

// AplicarDescuentoProducto applies a percentage discount to the first line
// matching productoID and records it as a named per-line discount.
// Returns the discount amount (zero when the product is not in the cart).
func AplicarDescuentoProducto(c *model.Carrito, productoID uuid.UUID, pct decimal.Decimal) (decimal.Decimal, error) {
	if err := validarPorcentaje(pct); err != nil {
		return decimal.Zero, err
	}
	for i := range c.Lineas {
		l := &c.Lineas[i]
		if l.ProductoID != productoID {
			continue
		}
		d := clampCero(l.BaseTotal.Mul(pct).Div(cien)).RoundBank(2)
		l.Descuento = &d
		l.Total = clampCero(l.BaseTotal.Sub(d))
		l.DescuentoPct = pct
		return d, nil
	}
	return decimal.Zero, nil
}

// AplicarDescuentoTotal applies a percentage discount to every line.
// Per-line Descuento is explicitly nulled; the aggregate is the sum of the
// rounded per-line amounts. No-op when the cart's base total is not positive.
func AplicarDescuentoTotal(c *model.Carrito, pct decimal.Decimal) (decimal.Decimal, error) {
	if err := validarPorcentaje(pct); err != nil {
		return decimal.Zero, err
	}
	if !c.TotalBase().IsPositive() {
		return decimal.Zero, nil
	}

	total := decimal.Zero
	for i := range c.Lineas {
		l := &c.Lineas[i]
		d := l.BaseTotal.Mul(pct).Div(cien).RoundBank(2)
		l.Total = clampCero(l.BaseTotal.Sub(d))
		l.Descuento = nil
		l.DescuentoPct = pct
		total = total.Add(d)
	}
	return total, nil
}

// AplicarDescuentoFijo distributes a fixed amount proportionally across all
// lines by base total. The applicable amount is capped at the cart's base
// total; a rounding remainder of at least 0.01 is corrected on the first line
// so the distributed sum equals the applicable amount exactly.
func AplicarDescuentoFijo(c *model.Carrito, monto decimal.Decimal) (decimal.Decimal, error) {
	if monto.IsNegative() {
		return decimal.Zero, ErrMontoInvalido
	}
	totalBase := c.TotalBase()
	if !totalBase.IsPositive() {
		return decimal.Zero, nil
	}

	aplicable := decimal.Min(monto, totalBase)
	repartido := decimal.Zero
	for i := range c.Lineas {
		l := &c.Lineas[i]
		parte := aplicable.Mul(l.BaseTotal).Div(totalBase).RoundBank(2)
		l.Total = clampCero(l.BaseTotal.Sub(parte))
		l.Descuento = nil
		l.DescuentoPct = decimal.Zero
		repartido = repartido.Add(parte)
	}

	// Rounding remainder lands on the first line.
	resto := aplicable.Sub(repartido)
	if resto.Abs().GreaterThanOrEqual(decimal.NewFromFloat(0.01)) {
		l := &c.Lineas[0]
		l.Total = clampCero(l.Total.Sub(resto))
	}
	return aplicable, nil
}

// AplicarDescuentoPorTipo applies a percentage discount to the lines whose
// category or subtype matches valor (case-insensitive). Matching lines get a
// named per-line discount; non-matching lines are left untouched.
// campo: "categoria" | "tipo_corte"
func AplicarDescuentoPorTipo(c *model.Carrito, campo, valor string, pct decimal.Decimal) (decimal.Decimal, error) {
	if err := validarPorcentaje(pct); err != nil {
		return decimal.Zero, err
	}

	total := decimal.Zero
	for i := range c.Lineas {
		l := &c.Lineas[i]
		var v string
		switch campo {
		case "tipo_corte":
			v = l.TipoCorte
		default:
			v = l.Categoria
		}
		if !strings.EqualFold(v, valor) {
			continue
		}
		d := clampCero(l.BaseTotal.Mul(pct).Div(cien)).RoundBank(2)
		l.Descuento = &d
		l.Total = clampCero(l.BaseTotal.Sub(d))
		l.DescuentoPct = pct
		total = total.Add(d)
	}
	return total, nil
}
