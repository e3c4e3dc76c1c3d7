package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Estados of a Promocion. "expirada" is never stored: it is derived at read
// time from FechaFin (see EstadoEfectivo). The stored field only flips
// between activa and inactiva by operator action.
const (
	PromocionActiva   = "activa"
	PromocionInactiva = "inactiva"
	PromocionExpirada = "expirada"
)

// Promocion is a time-windowed discount percentage assignable to products
// and/or categories. No stacking: the resolver picks a single winner.
type Promocion struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Nombre       string    `gorm:"not null"`
	Descripcion  *string
	DescuentoPct decimal.Decimal `gorm:"type:decimal(5,2);not null"`
	FechaInicio  time.Time       `gorm:"index;not null"`
	FechaFin     time.Time       `gorm:"index;not null"`
	Estado       string          `gorm:"type:varchar(20);not null;default:'activa'"`
	CreatedAt    time.Time
	UpdatedAt    time.Time

	Productos  []PromocionProducto  `gorm:"foreignKey:PromocionID"`
	Categorias []PromocionCategoria `gorm:"foreignKey:PromocionID"`
}

func (Promocion) TableName() string { return "promociones" }

// EstadoEfectivo reports "expirada" once the window has closed, regardless of
// the stored estado. Display-only: queries filter by date range directly.
func (p *Promocion) EstadoEfectivo(now time.Time) string {
	if now.After(p.FechaFin) {
		return PromocionExpirada
	}
	return p.Estado
}

// Vigente reports whether the promotion applies at the given instant.
func (p *Promocion) Vigente(at time.Time) bool {
	return p.Estado == PromocionActiva && !at.Before(p.FechaInicio) && !at.After(p.FechaFin)
}

// PromocionProducto assigns a promotion directly to a product.
// DescuentoAplicado, when present and > 0, overrides the promotion's own
// percentage for that product.
type PromocionProducto struct {
	ID                uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	PromocionID       uuid.UUID `gorm:"type:uuid;index;not null"`
	ProductoID        uuid.UUID `gorm:"type:uuid;index;not null"`
	DescuentoAplicado *decimal.Decimal `gorm:"type:decimal(5,2)"`
	CreatedAt         time.Time

	Promocion *Promocion `gorm:"foreignKey:PromocionID"`
	Producto  *Producto  `gorm:"foreignKey:ProductoID"`
}

func (PromocionProducto) TableName() string { return "promocion_productos" }

// PromocionCategoria assigns a promotion to every product of a category,
// always at the promotion's own percentage.
type PromocionCategoria struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	PromocionID uuid.UUID `gorm:"type:uuid;index;not null"`
	CategoriaID uuid.UUID `gorm:"type:uuid;index;not null"`
	CreatedAt   time.Time

	Promocion *Promocion `gorm:"foreignKey:PromocionID"`
	Categoria *Categoria `gorm:"foreignKey:CategoriaID"`
}

func (PromocionCategoria) TableName() string { return "promocion_categorias" }
