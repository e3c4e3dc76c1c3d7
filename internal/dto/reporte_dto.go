package dto

import "github.com/shopspring/decimal"

type ReporteDiarioResponse struct {
	Fecha           string                   `json:"fecha"`
	CantidadVentas  int64                    `json:"cantidad_ventas"`
	TotalBruto      decimal.Decimal          `json:"total_bruto"`
	TotalDescuentos decimal.Decimal          `json:"total_descuentos"`
	TotalNeto       decimal.Decimal          `json:"total_neto"`
	PorMetodo       []MetodoPagoResumen      `json:"por_metodo"`
}

type MetodoPagoResumen struct {
	MetodoPago string          `json:"metodo_pago"`
	Cantidad   int64           `json:"cantidad"`
	Total      decimal.Decimal `json:"total"`
}

type TopProductoResponse struct {
	ProductoID       string          `json:"producto_id"`
	Codigo           string          `json:"codigo"`
	Nombre           string          `json:"nombre"`
	UnidadesVendidas int64           `json:"unidades_vendidas"`
	TotalVendido     decimal.Decimal `json:"total_vendido"`
}

type StockBajoResponse struct {
	ProductoID  string `json:"producto_id"`
	Codigo      string `json:"codigo"`
	Nombre      string `json:"nombre"`
	Stock       int    `json:"stock"`
	StockMinimo int    `json:"stock_minimo"`
}
