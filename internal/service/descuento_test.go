package service

import (
	"testing"

	"minimarket/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func producto(nombre string, precio float64) *model.Producto {
	return &model.Producto{
		ID:     uuid.New(),
		Codigo: "P0001",
		Nombre: nombre,
		Precio: decimal.NewFromFloat(precio),
		Stock:  100,
		Activo: true,
	}
}

func productoConCategoria(nombre string, precio float64, categoria string) *model.Producto {
	p := producto(nombre, precio)
	p.Categoria = &model.Categoria{ID: uuid.New(), Nombre: categoria}
	p.CategoriaID = &p.Categoria.ID
	return p
}

func TestAplicarDescuentoProducto(t *testing.T) {
	arroz := producto("Arroz Costeño 5kg", 25.90)
	leche := producto("Leche Gloria", 4.50)

	c := model.NuevoCarrito()
	c.AgregarLinea(arroz, 2)
	c.AgregarLinea(leche, 3)

	d, err := AplicarDescuentoProducto(c, arroz.ID, decimal.NewFromInt(10))
	require.NoError(t, err)

	// 51.80 × 10% = 5.18
	assert.True(t, d.Equal(decimal.NewFromFloat(5.18)), "descuento = %s", d)
	assert.True(t, c.Lineas[0].Total.Equal(decimal.NewFromFloat(46.62)))
	require.NotNil(t, c.Lineas[0].Descuento)
	assert.True(t, c.Lineas[0].Descuento.Equal(d))

	// The other line is untouched.
	assert.Nil(t, c.Lineas[1].Descuento)
	assert.True(t, c.Lineas[1].Total.Equal(c.Lineas[1].BaseTotal))

	// Total = base − descuento.
	assert.True(t, c.Total().Equal(c.TotalBase().Sub(d)))
}

func TestAplicarDescuentoProducto_NoEnCarrito(t *testing.T) {
	c := model.NuevoCarrito()
	c.AgregarLinea(producto("Atún Florida", 6.20), 1)

	d, err := AplicarDescuentoProducto(c, uuid.New(), decimal.NewFromInt(50))
	require.NoError(t, err)
	assert.True(t, d.IsZero())
	assert.True(t, c.Total().Equal(c.TotalBase()))
}

func TestAplicarDescuentoProducto_PorcentajeInvalido(t *testing.T) {
	arroz := producto("Arroz", 10)
	c := model.NuevoCarrito()
	c.AgregarLinea(arroz, 1)

	_, err := AplicarDescuentoProducto(c, arroz.ID, decimal.NewFromInt(101))
	assert.ErrorIs(t, err, ErrDescuentoInvalido)

	_, err = AplicarDescuentoProducto(c, arroz.ID, decimal.NewFromInt(-5))
	assert.ErrorIs(t, err, ErrDescuentoInvalido)
}

func TestAplicarDescuentoTotal(t *testing.T) {
	c := model.NuevoCarrito()
	c.AgregarLinea(producto("Aceite Primor", 12.50), 2) // 25.00
	c.AgregarLinea(producto("Azúcar rubia", 3.80), 5)   // 19.00

	d, err := AplicarDescuentoTotal(c, decimal.NewFromInt(20))
	require.NoError(t, err)

	// 25.00×20% + 19.00×20% = 5.00 + 3.80 = 8.80
	assert.True(t, d.Equal(decimal.NewFromFloat(8.80)), "descuento = %s", d)
	assert.True(t, c.Total().Equal(decimal.NewFromFloat(35.20)))

	// Global discounts are not attributed to lines.
	for i := range c.Lineas {
		assert.Nil(t, c.Lineas[i].Descuento)
		assert.True(t, c.Lineas[i].DescuentoPct.Equal(decimal.NewFromInt(20)))
	}
}

func TestAplicarDescuentoTotal_CarritoVacio(t *testing.T) {
	c := model.NuevoCarrito()
	d, err := AplicarDescuentoTotal(c, decimal.NewFromInt(10))
	require.NoError(t, err)
	assert.True(t, d.IsZero())
}

func TestAplicarDescuentoFijo_Proporcional(t *testing.T) {
	c := model.NuevoCarrito()
	c.AgregarLinea(producto("Gaseosa Inca Kola", 7.50), 4)  // 30.00
	c.AgregarLinea(producto("Galletas Soda", 2.00), 5)      // 10.00

	d, err := AplicarDescuentoFijo(c, decimal.NewFromInt(10))
	require.NoError(t, err)
	assert.True(t, d.Equal(decimal.NewFromInt(10)))

	// Repartido por peso: 7.50 a la primera línea, 2.50 a la segunda.
	assert.True(t, c.Lineas[0].Total.Equal(decimal.NewFromFloat(22.50)))
	assert.True(t, c.Lineas[1].Total.Equal(decimal.NewFromFloat(7.50)))
	assert.True(t, c.Total().Equal(decimal.NewFromInt(30)))
}

func TestAplicarDescuentoFijo_SumaExacta(t *testing.T) {
	// Tres líneas iguales fuerzan un resto de redondeo que debe corregirse.
	c := model.NuevoCarrito()
	c.AgregarLinea(producto("Pan", 1.00), 1)
	c.AgregarLinea(producto("Huevos", 1.00), 1)
	c.AgregarLinea(producto("Queso", 1.00), 1)

	d, err := AplicarDescuentoFijo(c, decimal.NewFromFloat(1.00))
	require.NoError(t, err)
	assert.True(t, d.Equal(decimal.NewFromFloat(1.00)))

	// La suma de los totales debe cuadrar exactamente: 3.00 − 1.00 = 2.00.
	assert.True(t, c.Total().Equal(decimal.NewFromFloat(2.00)), "total = %s", c.Total())
}

func TestAplicarDescuentoFijo_CapAlTotal(t *testing.T) {
	c := model.NuevoCarrito()
	c.AgregarLinea(producto("Caramelo", 0.50), 2) // 1.00

	d, err := AplicarDescuentoFijo(c, decimal.NewFromInt(100))
	require.NoError(t, err)
	assert.True(t, d.Equal(decimal.NewFromFloat(1.00)))
	assert.True(t, c.Total().IsZero())
}

func TestAplicarDescuentoFijo_MontoNegativo(t *testing.T) {
	c := model.NuevoCarrito()
	c.AgregarLinea(producto("Arroz", 10), 1)

	_, err := AplicarDescuentoFijo(c, decimal.NewFromInt(-1))
	assert.ErrorIs(t, err, ErrMontoInvalido)
}

func TestAplicarDescuentoPorTipo_Categoria(t *testing.T) {
	c := model.NuevoCarrito()
	c.AgregarLinea(productoConCategoria("Lomo fino", 35.00, "Carnes"), 1)
	c.AgregarLinea(productoConCategoria("Detergente", 8.90, "Limpieza"), 2)

	d, err := AplicarDescuentoPorTipo(c, "categoria", "carnes", decimal.NewFromInt(15))
	require.NoError(t, err)

	// Case-insensitive: "carnes" matchea "Carnes". 35.00 × 15% = 5.25
	assert.True(t, d.Equal(decimal.NewFromFloat(5.25)), "descuento = %s", d)
	require.NotNil(t, c.Lineas[0].Descuento)
	assert.True(t, c.Lineas[0].Total.Equal(decimal.NewFromFloat(29.75)))

	// La línea de otra categoría queda intacta.
	assert.Nil(t, c.Lineas[1].Descuento)
	assert.True(t, c.Lineas[1].Total.Equal(c.Lineas[1].BaseTotal))
}

func TestAplicarDescuentoPorTipo_TipoCorte(t *testing.T) {
	corte := "molida"
	carne := producto("Carne molida", 18.00)
	carne.TipoCorte = &corte

	c := model.NuevoCarrito()
	c.AgregarLinea(carne, 2) // 36.00

	d, err := AplicarDescuentoPorTipo(c, "tipo_corte", "Molida", decimal.NewFromInt(10))
	require.NoError(t, err)
	assert.True(t, d.Equal(decimal.NewFromFloat(3.60)))
}

func TestAplicarDescuentoPorTipo_SinCoincidencias(t *testing.T) {
	c := model.NuevoCarrito()
	c.AgregarLinea(productoConCategoria("Yogurt", 5.50, "Lácteos"), 1)

	d, err := AplicarDescuentoPorTipo(c, "categoria", "Bebidas", decimal.NewFromInt(30))
	require.NoError(t, err)
	assert.True(t, d.IsZero())
}

func TestReiniciarDeshaceDescuentos(t *testing.T) {
	arroz := producto("Arroz", 25.90)
	c := model.NuevoCarrito()
	c.AgregarLinea(arroz, 2)
	c.AgregarLinea(producto("Leche", 4.50), 3)

	base := c.TotalBase()

	_, err := AplicarDescuentoProducto(c, arroz.ID, decimal.NewFromInt(10))
	require.NoError(t, err)
	_, err = AplicarDescuentoTotal(c, decimal.NewFromInt(5))
	require.NoError(t, err)

	c.Reiniciar()

	assert.True(t, c.Total().Equal(base))
	for i := range c.Lineas {
		assert.Nil(t, c.Lineas[i].Descuento)
		assert.True(t, c.Lineas[i].DescuentoPct.IsZero())
		assert.Nil(t, c.Lineas[i].PromocionID)
	}
}

func TestAgregarLineaMismoProductoAcumula(t *testing.T) {
	arroz := producto("Arroz", 25.90)
	c := model.NuevoCarrito()
	c.AgregarLinea(arroz, 1)

	_, err := AplicarDescuentoProducto(c, arroz.ID, decimal.NewFromInt(50))
	require.NoError(t, err)

	// Volver a agregar el mismo producto re-deriva la base y resetea el
	// descuento aplicado.
	c.AgregarLinea(arroz, 2)

	require.Len(t, c.Lineas, 1)
	assert.Equal(t, 3, c.Lineas[0].Cantidad)
	assert.Nil(t, c.Lineas[0].Descuento)
	assert.True(t, c.Lineas[0].Total.Equal(decimal.NewFromFloat(77.70)))
}
