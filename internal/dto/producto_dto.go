package dto

import "github.com/shopspring/decimal"

// ProductoFilter is bound from the query string of GET /v1/productos.
type ProductoFilter struct {
	Codigo      string `form:"codigo"`
	Nombre      string `form:"nombre"`
	CategoriaID string `form:"categoria_id"`
	Activo      string `form:"activo"` // "false" | "all" | default activos
	StockBajo   bool   `form:"stock_bajo"`
	Page        int    `form:"page,default=1"   validate:"min=1"`
	Limit       int    `form:"limit,default=50" validate:"min=1,max=200"`
}

type CrearProductoRequest struct {
	Nombre      string          `json:"nombre"       validate:"required,min=2"`
	CategoriaID *string         `json:"categoria_id" validate:"omitempty,uuid"`
	TipoCorte   *string         `json:"tipo_corte"`
	Precio      decimal.Decimal `json:"precio"       validate:"required,gt=0"`
	Stock       int             `json:"stock"        validate:"min=0"`
	StockMinimo int             `json:"stock_minimo" validate:"min=0"`
	ImagenURL   *string         `json:"imagen_url"`
}

type ActualizarProductoRequest struct {
	Nombre      string           `json:"nombre"`
	CategoriaID *string          `json:"categoria_id" validate:"omitempty,uuid"`
	TipoCorte   *string          `json:"tipo_corte"`
	Precio      *decimal.Decimal `json:"precio"       validate:"omitempty,gt=0"`
	StockMinimo *int             `json:"stock_minimo" validate:"omitempty,min=0"`
	ImagenURL   *string          `json:"imagen_url"`
}

type AjustarStockRequest struct {
	Delta  int    `json:"delta"  validate:"required,ne=0"`
	Motivo string `json:"motivo" validate:"required,min=3"`
}

type ProductoResponse struct {
	ID          string          `json:"id"`
	Codigo      string          `json:"codigo"`
	Nombre      string          `json:"nombre"`
	Categoria   *string         `json:"categoria"`
	CategoriaID *string         `json:"categoria_id"`
	TipoCorte   *string         `json:"tipo_corte"`
	Precio      decimal.Decimal `json:"precio"`
	Stock       int             `json:"stock"`
	StockMinimo int             `json:"stock_minimo"`
	StockBajo   bool            `json:"stock_bajo"`
	ImagenURL   *string         `json:"imagen_url"`
	Activo      bool            `json:"activo"`
}

type ProductoListResponse struct {
	Data  []ProductoResponse `json:"data"`
	Total int64              `json:"total"`
	Page  int                `json:"page"`
	Limit int                `json:"limit"`
}
