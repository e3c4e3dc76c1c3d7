package repository

import (
	"context"

	"minimarket/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type DevolucionRepository interface {
	Create(ctx context.Context, tx *gorm.DB, d *model.Devolucion) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Devolucion, error)
	ListByVenta(ctx context.Context, ventaID uuid.UUID) ([]model.Devolucion, error)
	// Transaction runs fn atomically, same contract as VentaRepository.
	Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type devolucionRepo struct{ db *gorm.DB }

func NewDevolucionRepository(db *gorm.DB) DevolucionRepository { return &devolucionRepo{db: db} }

func (r *devolucionRepo) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

func (r *devolucionRepo) Create(ctx context.Context, tx *gorm.DB, d *model.Devolucion) error {
	return tx.WithContext(ctx).Create(d).Error
}

func (r *devolucionRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Devolucion, error) {
	var d model.Devolucion
	err := r.db.WithContext(ctx).
		Preload("Items.Producto").Preload("Venta").
		First(&d, id).Error
	return &d, err
}

func (r *devolucionRepo) ListByVenta(ctx context.Context, ventaID uuid.UUID) ([]model.Devolucion, error) {
	var devoluciones []model.Devolucion
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("venta_id = ?", ventaID).
		Order("created_at DESC").
		Find(&devoluciones).Error
	return devoluciones, err
}
