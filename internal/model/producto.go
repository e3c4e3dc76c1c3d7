package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Producto is the inventory unit sold at the register.
// Codigo is the human-readable sequence shown on tickets (P0001, P0002, …).
type Producto struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Codigo string    `gorm:"uniqueIndex;not null"`
	Nombre string    `gorm:"index;not null"`
	// CategoriaID is nullable: a product outside any category still resolves
	// promotions via its direct assignments.
	CategoriaID *uuid.UUID `gorm:"type:uuid;index"`
	// TipoCorte is an optional subtype (e.g. corte de carne) matched by
	// type-filtered discounts.
	TipoCorte   *string
	Precio      decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Stock       int             `gorm:"not null;default:0"`
	StockMinimo int             `gorm:"not null;default:5"`
	ImagenURL   *string
	Activo      bool `gorm:"not null;default:true"`
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Categoria *Categoria `gorm:"foreignKey:CategoriaID"`
}

func (Producto) TableName() string { return "productos" }
