package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LineaCarrito is one in-memory line of a sale in progress.
// BaseTotal = Cantidad × PrecioUnitario, fixed at add time. Total starts
// equal to BaseTotal and is recomputed by discount operations.
// Descuento nil distinguishes "no per-line discount recorded" from an
// explicit zero: cart-level discounts null it out on purpose.
type LineaCarrito struct {
	ProductoID     uuid.UUID
	Nombre         string
	Categoria      string
	TipoCorte      string
	Cantidad       int
	PrecioUnitario decimal.Decimal
	BaseTotal      decimal.Decimal
	Total          decimal.Decimal
	Descuento      *decimal.Decimal
	DescuentoPct   decimal.Decimal
	PromocionID    *uuid.UUID
}

// Carrito is the pre-commit, ordered collection of lines for a sale in
// progress. It lives only in memory; ProcesarVenta consumes it.
type Carrito struct {
	Lineas []LineaCarrito
}

func NuevoCarrito() *Carrito { return &Carrito{} }

// AgregarLinea appends a line for the product, or increments quantity when
// the product is already in the cart (re-deriving the base and resetting any
// applied discount, which must be re-applied over the new base).
func (c *Carrito) AgregarLinea(p *Producto, cantidad int) *LineaCarrito {
	for i := range c.Lineas {
		if c.Lineas[i].ProductoID == p.ID {
			l := &c.Lineas[i]
			l.Cantidad += cantidad
			l.BaseTotal = p.Precio.Mul(decimal.NewFromInt(int64(l.Cantidad)))
			l.Total = l.BaseTotal
			l.Descuento = nil
			l.DescuentoPct = decimal.Zero
			l.PromocionID = nil
			return l
		}
	}

	categoria := ""
	if p.Categoria != nil {
		categoria = p.Categoria.Nombre
	}
	tipoCorte := ""
	if p.TipoCorte != nil {
		tipoCorte = *p.TipoCorte
	}
	base := p.Precio.Mul(decimal.NewFromInt(int64(cantidad)))
	c.Lineas = append(c.Lineas, LineaCarrito{
		ProductoID:     p.ID,
		Nombre:         p.Nombre,
		Categoria:      categoria,
		TipoCorte:      tipoCorte,
		Cantidad:       cantidad,
		PrecioUnitario: p.Precio,
		BaseTotal:      base,
		Total:          base,
	})
	return &c.Lineas[len(c.Lineas)-1]
}

// QuitarLinea removes the first line matching the product. Returns false when
// the product is not in the cart.
func (c *Carrito) QuitarLinea(productoID uuid.UUID) bool {
	for i := range c.Lineas {
		if c.Lineas[i].ProductoID == productoID {
			c.Lineas = append(c.Lineas[:i], c.Lineas[i+1:]...)
			return true
		}
	}
	return false
}

// Reiniciar undoes every discount: Total back to BaseTotal, Descuento to nil.
// Applying a discount and then Reiniciar reproduces the pre-discount cart
// exactly.
func (c *Carrito) Reiniciar() {
	for i := range c.Lineas {
		l := &c.Lineas[i]
		l.Total = l.BaseTotal
		l.Descuento = nil
		l.DescuentoPct = decimal.Zero
		l.PromocionID = nil
	}
}

// Vaciar removes every line (sale completed or explicit clear).
func (c *Carrito) Vaciar() { c.Lineas = nil }

func (c *Carrito) Vacio() bool { return len(c.Lineas) == 0 }

// TotalBase is the pre-discount sum of the cart.
func (c *Carrito) TotalBase() decimal.Decimal {
	total := decimal.Zero
	for i := range c.Lineas {
		total = total.Add(c.Lineas[i].BaseTotal)
	}
	return total
}

// Total is the post-discount sum of the cart.
func (c *Carrito) Total() decimal.Decimal {
	total := decimal.Zero
	for i := range c.Lineas {
		total = total.Add(c.Lineas[i].Total)
	}
	return total
}

// DescuentoLineas sums the per-line attributed discounts (nil counts as zero).
func (c *Carrito) DescuentoLineas() decimal.Decimal {
	total := decimal.Zero
	for i := range c.Lineas {
		if c.Lineas[i].Descuento != nil {
			total = total.Add(*c.Lineas[i].Descuento)
		}
	}
	return total
}
