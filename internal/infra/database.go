package infra

import (
	"fmt"

	"minimarket/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection backed by pgx and runs AutoMigrate
// to create / update all tables.
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if err := RunMigrations(db); err != nil {
		return nil, fmt.Errorf("migrations: %w", err)
	}
	return db, nil
}

// RunMigrations applies the schema. AutoMigrate is idempotent on an existing
// database; the guarded stock UPDATE in the repositories does not depend on
// any trigger, so no extra DDL is needed beyond what the models declare.
func RunMigrations(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.Categoria{},
		&model.Producto{},
		&model.Usuario{},
		&model.Promocion{},
		&model.PromocionProducto{},
		&model.PromocionCategoria{},
		&model.Venta{},
		&model.DetalleVenta{},
		&model.Devolucion{},
		&model.DetalleDevolucion{},
		&model.Comprobante{},
		&model.MovimientoStock{},
	)
}
