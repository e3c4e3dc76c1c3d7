package repository

import (
	"context"
	"time"

	"minimarket/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PromocionRepository interface {
	Create(ctx context.Context, p *model.Promocion) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Promocion, error)
	List(ctx context.Context, estado string) ([]model.Promocion, error)
	Update(ctx context.Context, p *model.Promocion) error
	CambiarEstado(ctx context.Context, id uuid.UUID, estado string) error
	Delete(ctx context.Context, id uuid.UUID) error

	AsignarProducto(ctx context.Context, a *model.PromocionProducto) error
	AsignarCategoria(ctx context.Context, a *model.PromocionCategoria) error
	QuitarProducto(ctx context.Context, promocionID, productoID uuid.UUID) error
	QuitarCategoria(ctx context.Context, promocionID, categoriaID uuid.UUID) error

	// CandidatasPorProducto returns the product's direct assignments whose
	// promotion is active and in window at the given instant.
	CandidatasPorProducto(ctx context.Context, productoID uuid.UUID, at time.Time) ([]model.PromocionProducto, error)
	// CandidatasPorCategoria returns active, in-window promotions assigned
	// to the category.
	CandidatasPorCategoria(ctx context.Context, categoriaID uuid.UUID, at time.Time) ([]model.Promocion, error)
}

type promocionRepo struct{ db *gorm.DB }

func NewPromocionRepository(db *gorm.DB) PromocionRepository { return &promocionRepo{db: db} }

func (r *promocionRepo) Create(ctx context.Context, p *model.Promocion) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *promocionRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Promocion, error) {
	var p model.Promocion
	err := r.db.WithContext(ctx).
		Preload("Productos.Producto").Preload("Categorias.Categoria").
		First(&p, id).Error
	return &p, err
}

func (r *promocionRepo) List(ctx context.Context, estado string) ([]model.Promocion, error) {
	var promociones []model.Promocion
	q := r.db.WithContext(ctx).Model(&model.Promocion{})
	switch estado {
	case "", "all":
		// no filter — estado "expirada" is derived at read time, so callers
		// asking for it must filter on the date window, not the stored field
	case model.PromocionExpirada:
		q = q.Where("fecha_fin < ?", time.Now())
	default:
		q = q.Where("estado = ?", estado)
	}
	err := q.Order("fecha_inicio DESC").Find(&promociones).Error
	return promociones, err
}

func (r *promocionRepo) Update(ctx context.Context, p *model.Promocion) error {
	return r.db.WithContext(ctx).Save(p).Error
}

func (r *promocionRepo) CambiarEstado(ctx context.Context, id uuid.UUID, estado string) error {
	return r.db.WithContext(ctx).Model(&model.Promocion{}).
		Where("id = ?", id).Update("estado", estado).Error
}

func (r *promocionRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("promocion_id = ?", id).Delete(&model.PromocionProducto{}).Error; err != nil {
			return err
		}
		if err := tx.Where("promocion_id = ?", id).Delete(&model.PromocionCategoria{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Promocion{}, id).Error
	})
}

func (r *promocionRepo) AsignarProducto(ctx context.Context, a *model.PromocionProducto) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *promocionRepo) AsignarCategoria(ctx context.Context, a *model.PromocionCategoria) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *promocionRepo) QuitarProducto(ctx context.Context, promocionID, productoID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("promocion_id = ? AND producto_id = ?", promocionID, productoID).
		Delete(&model.PromocionProducto{}).Error
}

func (r *promocionRepo) QuitarCategoria(ctx context.Context, promocionID, categoriaID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("promocion_id = ? AND categoria_id = ?", promocionID, categoriaID).
		Delete(&model.PromocionCategoria{}).Error
}

func (r *promocionRepo) CandidatasPorProducto(ctx context.Context, productoID uuid.UUID, at time.Time) ([]model.PromocionProducto, error) {
	var asignaciones []model.PromocionProducto
	err := r.db.WithContext(ctx).
		Joins("JOIN promociones ON promociones.id = promocion_productos.promocion_id").
		Where("promocion_productos.producto_id = ?", productoID).
		Where("promociones.estado = ?", model.PromocionActiva).
		Where("promociones.fecha_inicio <= ? AND promociones.fecha_fin >= ?", at, at).
		Preload("Promocion").
		Find(&asignaciones).Error
	return asignaciones, err
}

func (r *promocionRepo) CandidatasPorCategoria(ctx context.Context, categoriaID uuid.UUID, at time.Time) ([]model.Promocion, error) {
	var promociones []model.Promocion
	err := r.db.WithContext(ctx).
		Joins("JOIN promocion_categorias ON promocion_categorias.promocion_id = promociones.id").
		Where("promocion_categorias.categoria_id = ?", categoriaID).
		Where("promociones.estado = ?", model.PromocionActiva).
		Where("promociones.fecha_inicio <= ? AND promociones.fecha_fin >= ?", at, at).
		Find(&promociones).Error
	return promociones, err
}
