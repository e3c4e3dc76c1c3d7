package dto

import "github.com/shopspring/decimal"

type ItemDevolucionRequest struct {
	DetalleVentaID string `json:"detalle_venta_id" validate:"required,uuid"`
	Cantidad       int    `json:"cantidad"         validate:"required,gt=0"`
}

type CrearDevolucionRequest struct {
	VentaCodigo string                  `json:"venta_codigo" validate:"required"`
	Motivo      string                  `json:"motivo"       validate:"required,min=3"`
	Items       []ItemDevolucionRequest `json:"items"        validate:"required,min=1,dive"`
}

type DetalleDevolucionResponse struct {
	ProductoID     string          `json:"producto_id"`
	Nombre         string          `json:"nombre"`
	Cantidad       int             `json:"cantidad"`
	PrecioUnitario decimal.Decimal `json:"precio_unitario"`
	Monto          decimal.Decimal `json:"monto"`
}

type DevolucionResponse struct {
	ID         string                      `json:"id"`
	Codigo     string                      `json:"codigo"`
	VentaCodigo string                     `json:"venta_codigo"`
	Motivo     string                      `json:"motivo"`
	MontoTotal decimal.Decimal             `json:"monto_total"`
	Estado     string                      `json:"estado"`
	Fecha      string                      `json:"fecha"`
	Items      []DetalleDevolucionResponse `json:"items"`
}
