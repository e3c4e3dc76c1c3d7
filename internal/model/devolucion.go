package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Devolucion is a committed return against a sale. Stock is restored per
// line inside the same transaction that persists it.
type Devolucion struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Codigo     string    `gorm:"uniqueIndex;not null"` // D20250901153000-0001
	VentaID    uuid.UUID `gorm:"type:uuid;index;not null"`
	UsuarioID  uuid.UUID `gorm:"type:uuid;index;not null"`
	Motivo     string
	MontoTotal decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Estado     string          `gorm:"type:varchar(20);not null;default:'completada'"`
	CreatedAt  time.Time

	Items []DetalleDevolucion `gorm:"foreignKey:DevolucionID;constraint:OnDelete:CASCADE"`
	Venta *Venta              `gorm:"foreignKey:VentaID"`
}

func (Devolucion) TableName() string { return "devoluciones" }

// DetalleDevolucion is one returned product row. Cantidad never exceeds the
// quantity of the referenced sale line.
type DetalleDevolucion struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	DevolucionID   uuid.UUID       `gorm:"type:uuid;index;not null"`
	DetalleVentaID uuid.UUID       `gorm:"type:uuid;index;not null"`
	ProductoID     uuid.UUID       `gorm:"type:uuid;index;not null"`
	Cantidad       int             `gorm:"not null"`
	PrecioUnitario decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Monto          decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Estado         string          `gorm:"type:varchar(20);not null;default:'completada'"`

	Producto *Producto `gorm:"foreignKey:ProductoID"`
}

func (DetalleDevolucion) TableName() string { return "detalle_devoluciones" }
