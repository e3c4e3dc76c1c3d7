package dto

import "github.com/shopspring/decimal"

// VentaFilter is bound from the query string of GET /v1/ventas.
type VentaFilter struct {
	Fecha  string `form:"fecha"  validate:"omitempty,datetime=2006-01-02"`
	Estado string `form:"estado" validate:"omitempty,oneof=completada anulada"`
	Page   int    `form:"page,default=1"   validate:"min=1"`
	Limit  int    `form:"limit,default=50" validate:"min=1,max=200"`
}

type ItemVentaRequest struct {
	ProductoID string `json:"producto_id" validate:"required,uuid"`
	Cantidad   int    `json:"cantidad"    validate:"required,gt=0"`
}

// DescuentoRequest is the optional manual discount directive applied over
// the whole cart after promotions. Exactly one of Pct/Monto per Tipo.
type DescuentoRequest struct {
	Tipo       string           `json:"tipo" validate:"required,oneof=producto total_pct fijo por_tipo"`
	ProductoID *string          `json:"producto_id" validate:"omitempty,uuid"`
	Campo      string           `json:"campo" validate:"omitempty,oneof=categoria tipo_corte"`
	Valor      string           `json:"valor"`
	Pct        *decimal.Decimal `json:"pct"   validate:"omitempty,gte=0,lte=100"`
	Monto      *decimal.Decimal `json:"monto" validate:"omitempty,gt=0"`
}

type ClienteRequest struct {
	TipoDoc   string `json:"tipo_doc" validate:"omitempty,oneof=DNI RUC"`
	NumeroDoc string `json:"numero_doc"`
	Nombre    string `json:"nombre"`
	Email     string `json:"email" validate:"omitempty,email"`
}

type ProcesarVentaRequest struct {
	Items           []ItemVentaRequest `json:"items" validate:"required,min=1,dive"`
	Descuento       *DescuentoRequest  `json:"descuento"`
	MetodoPago      string             `json:"metodo_pago" validate:"required,oneof=efectivo tarjeta yape plin"`
	PagoToken       string             `json:"pago_token"`
	TipoComprobante string             `json:"tipo_comprobante" validate:"omitempty,oneof=boleta factura"`
	Cliente         *ClienteRequest    `json:"cliente"`
}

type DetalleVentaResponse struct {
	ProductoID     string           `json:"producto_id"`
	Codigo         string           `json:"codigo"`
	Nombre         string           `json:"nombre"`
	Cantidad       int              `json:"cantidad"`
	PrecioUnitario decimal.Decimal  `json:"precio_unitario"`
	Subtotal       decimal.Decimal  `json:"subtotal"`
	Descuento      *decimal.Decimal `json:"descuento"`
	Total          decimal.Decimal  `json:"total"`
	PromocionID    *string          `json:"promocion_id,omitempty"`
}

type VentaResponse struct {
	ID             string                 `json:"id"`
	Codigo         string                 `json:"codigo"`
	Usuario        string                 `json:"usuario"`
	Total          decimal.Decimal        `json:"total"`
	DescuentoTotal decimal.Decimal        `json:"descuento_total"`
	DescuentoPct   decimal.Decimal        `json:"descuento_pct"`
	TipoDescuento  *string                `json:"tipo_descuento"`
	MetodoPago     string                 `json:"metodo_pago"`
	PagoReferencia *string                `json:"pago_referencia,omitempty"`
	Estado         string                 `json:"estado"`
	Fecha          string                 `json:"fecha"`
	Items          []DetalleVentaResponse `json:"items"`
	AlertasStock   []string               `json:"alertas_stock,omitempty"`
}

type VentaListResponse struct {
	Data  []VentaResponse `json:"data"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}
