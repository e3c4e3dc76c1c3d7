package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Comprobante stores the electronic receipt (boleta) or invoice (factura)
// emitted for a sale through the e-invoicing provider.
// Tipo: "boleta" | "factura"
// Estado: "pendiente" | "emitido" | "rechazado" | "error"
type Comprobante struct {
	ID      uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	VentaID uuid.UUID `gorm:"type:uuid;index;not null"`
	Tipo    string    `gorm:"type:varchar(20);not null"`
	Serie   *string   `gorm:"type:varchar(10)"`
	Numero  *int64
	// HashCPE is the digest the provider returns for the accepted document.
	HashCPE         *string `gorm:"column:hash_cpe"`
	EnlacePDF       *string `gorm:"column:enlace_pdf"`
	EnlaceXML       *string `gorm:"column:enlace_xml"`
	ReceptorTipoDoc *string `gorm:"type:varchar(10)"` // DNI | RUC
	ReceptorNroDoc  *string `gorm:"type:varchar(15)"`
	ReceptorNombre  *string
	MontoTotal      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Estado          string          `gorm:"type:varchar(20);not null;default:'pendiente'"`
	// TicketPDFPath is the locally generated thermal ticket, relative to
	// PDF_STORAGE_PATH.
	TicketPDFPath *string `gorm:"column:ticket_pdf_path"`
	Observaciones *string
	// Retry fields — used by the retry cron to re-attempt failed provider calls
	RetryCount  int        `gorm:"not null;default:0"`
	NextRetryAt *time.Time `gorm:"column:next_retry_at"`
	LastError   *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (Comprobante) TableName() string { return "comprobantes" }
