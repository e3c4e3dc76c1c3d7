package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Discount type tags stored on the sale header. "promocion" means the only
// discounts applied came from the promotion resolver; the rest name the
// manual directive the cashier used.
const (
	DescuentoPromocion = "promocion"
	DescuentoProducto  = "producto"
	DescuentoTotalPct  = "total_pct"
	DescuentoFijo      = "fijo"
	DescuentoPorTipo   = "por_tipo"
)

// Venta is a committed sale. Immutable after creation except Estado
// (completada → anulada). Items are written in the same transaction.
type Venta struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Codigo string    `gorm:"uniqueIndex;not null"` // V20250901153000-0001
	UsuarioID      uuid.UUID       `gorm:"type:uuid;index;not null"`
	Total          decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	DescuentoTotal decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	// DescuentoPct is the max() of per-line applied percentages — a
	// best-effort header aggregate carried over from the original system,
	// not a blended rate.
	DescuentoPct   decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0"`
	TipoDescuento  *string         `gorm:"type:varchar(20)"`
	MetodoPago     string          `gorm:"type:varchar(20);not null"`
	PagoReferencia *string
	Estado         string `gorm:"type:varchar(20);not null;default:'completada'"`
	CreatedAt      time.Time

	Items   []DetalleVenta `gorm:"foreignKey:VentaID;constraint:OnDelete:CASCADE"`
	Usuario *Usuario       `gorm:"foreignKey:UsuarioID"`
}

func (Venta) TableName() string { return "ventas" }

// DetalleVenta is one product row within a sale. Subtotal is the pre-discount
// base (cantidad × precio). Descuento nil means no per-line discount was
// recorded — cart-level discounts are deliberately not attributed to lines.
type DetalleVenta struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	VentaID        uuid.UUID       `gorm:"type:uuid;index;not null"`
	ProductoID     uuid.UUID       `gorm:"type:uuid;index;not null"`
	Cantidad       int             `gorm:"not null"`
	PrecioUnitario decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Subtotal       decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Total          decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Descuento      *decimal.Decimal `gorm:"type:decimal(12,2)"`
	PromocionID    *uuid.UUID       `gorm:"type:uuid"`

	Producto  *Producto  `gorm:"foreignKey:ProductoID"`
	Promocion *Promocion `gorm:"foreignKey:PromocionID"`
}

func (DetalleVenta) TableName() string { return "detalle_ventas" }
