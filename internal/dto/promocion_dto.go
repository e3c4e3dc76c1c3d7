package dto

import "github.com/shopspring/decimal"

type CrearPromocionRequest struct {
	Nombre       string          `json:"nombre"        validate:"required,min=2"`
	Descripcion  *string         `json:"descripcion"`
	DescuentoPct decimal.Decimal `json:"descuento_pct" validate:"required,gt=0,max=100"`
	FechaInicio  string          `json:"fecha_inicio"  validate:"required,datetime=2006-01-02"`
	FechaFin     string          `json:"fecha_fin"     validate:"required,datetime=2006-01-02"`
	Estado       string          `json:"estado"        validate:"omitempty,oneof=activa inactiva"`
}

type ActualizarPromocionRequest struct {
	Nombre       string           `json:"nombre"`
	Descripcion  *string          `json:"descripcion"`
	DescuentoPct *decimal.Decimal `json:"descuento_pct" validate:"omitempty,gt=0,max=100"`
	FechaInicio  *string          `json:"fecha_inicio"  validate:"omitempty,datetime=2006-01-02"`
	FechaFin     *string          `json:"fecha_fin"     validate:"omitempty,datetime=2006-01-02"`
}

type CambiarEstadoPromocionRequest struct {
	Estado string `json:"estado" validate:"required,oneof=activa inactiva"`
}

// AsignarPromocionRequest targets a promotion at a product or a category.
// DescuentoAplicado overrides the promotion's percentage for that product.
type AsignarPromocionRequest struct {
	ProductoID        *string          `json:"producto_id"  validate:"omitempty,uuid"`
	CategoriaID       *string          `json:"categoria_id" validate:"omitempty,uuid"`
	DescuentoAplicado *decimal.Decimal `json:"descuento_aplicado" validate:"omitempty,gt=0,max=100"`
}

type PromocionResponse struct {
	ID           string          `json:"id"`
	Nombre       string          `json:"nombre"`
	Descripcion  *string         `json:"descripcion"`
	DescuentoPct decimal.Decimal `json:"descuento_pct"`
	FechaInicio  string          `json:"fecha_inicio"`
	FechaFin     string          `json:"fecha_fin"`
	// Estado is the stored value; EstadoEfectivo additionally reports
	// "expirada" when the window already closed.
	Estado         string `json:"estado"`
	EstadoEfectivo string `json:"estado_efectivo"`
	Productos      []PromocionProductoResponse `json:"productos,omitempty"`
	Categorias     []string                    `json:"categorias,omitempty"`
}

type PromocionProductoResponse struct {
	ProductoID        string           `json:"producto_id"`
	Codigo            string           `json:"codigo"`
	Nombre            string           `json:"nombre"`
	DescuentoAplicado *decimal.Decimal `json:"descuento_aplicado"`
}
