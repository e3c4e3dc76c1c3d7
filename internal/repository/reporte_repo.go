package repository

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ResumenDiario aggregates completed sales for one day.
type ResumenDiario struct {
	Fecha           string
	CantidadVentas  int64
	TotalBruto      decimal.Decimal
	TotalDescuentos decimal.Decimal
	TotalNeto       decimal.Decimal
}

// TotalPorMetodo is one row of the payment-method breakdown.
type TotalPorMetodo struct {
	MetodoPago string
	Cantidad   int64
	Total      decimal.Decimal
}

// ProductoVendido is one row of the top-products report.
type ProductoVendido struct {
	ProductoID     string
	Codigo         string
	Nombre         string
	UnidadesVendidas int64
	TotalVendido   decimal.Decimal
}

// ReporteRepository runs read-only aggregation queries over completed sales.
type ReporteRepository interface {
	ResumenDiario(ctx context.Context, fecha string) (*ResumenDiario, error)
	TotalesPorMetodo(ctx context.Context, fecha string) ([]TotalPorMetodo, error)
	TopProductos(ctx context.Context, desde, hasta string, limit int) ([]ProductoVendido, error)
}

type reporteRepo struct{ db *gorm.DB }

func NewReporteRepository(db *gorm.DB) ReporteRepository { return &reporteRepo{db: db} }

func (r *reporteRepo) ResumenDiario(ctx context.Context, fecha string) (*ResumenDiario, error) {
	var res ResumenDiario
	err := r.db.WithContext(ctx).Raw(`
		SELECT ? AS fecha,
		       COUNT(*) AS cantidad_ventas,
		       COALESCE(SUM(total + descuento_total), 0) AS total_bruto,
		       COALESCE(SUM(descuento_total), 0) AS total_descuentos,
		       COALESCE(SUM(total), 0) AS total_neto
		FROM ventas
		WHERE estado = 'completada' AND DATE(created_at) = ?`, fecha, fecha).
		Scan(&res).Error
	return &res, err
}

func (r *reporteRepo) TotalesPorMetodo(ctx context.Context, fecha string) ([]TotalPorMetodo, error) {
	var rows []TotalPorMetodo
	err := r.db.WithContext(ctx).Raw(`
		SELECT metodo_pago, COUNT(*) AS cantidad, COALESCE(SUM(total), 0) AS total
		FROM ventas
		WHERE estado = 'completada' AND DATE(created_at) = ?
		GROUP BY metodo_pago
		ORDER BY total DESC`, fecha).
		Scan(&rows).Error
	return rows, err
}

func (r *reporteRepo) TopProductos(ctx context.Context, desde, hasta string, limit int) ([]ProductoVendido, error) {
	if limit < 1 {
		limit = 10
	}
	var rows []ProductoVendido
	err := r.db.WithContext(ctx).Raw(`
		SELECT p.id AS producto_id, p.codigo, p.nombre,
		       SUM(d.cantidad) AS unidades_vendidas,
		       COALESCE(SUM(d.total), 0) AS total_vendido
		FROM detalle_ventas d
		JOIN ventas v ON v.id = d.venta_id
		JOIN productos p ON p.id = d.producto_id
		WHERE v.estado = 'completada' AND DATE(v.created_at) BETWEEN ? AND ?
		GROUP BY p.id, p.codigo, p.nombre
		ORDER BY unidades_vendidas DESC
		LIMIT ?`, desde, hasta, limit).
		Scan(&rows).Error
	return rows, err
}
