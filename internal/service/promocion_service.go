package service

import (
	"context"
	"errors"
	"time"

	"minimarket/internal/dto"
	"minimarket/internal/model"
	"minimarket/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

type PromocionService interface {
	Crear(ctx context.Context, req dto.CrearPromocionRequest) (*dto.PromocionResponse, error)
	Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarPromocionRequest) (*dto.PromocionResponse, error)
	CambiarEstado(ctx context.Context, id uuid.UUID, estado string) error
	Eliminar(ctx context.Context, id uuid.UUID) error
	Obtener(ctx context.Context, id uuid.UUID) (*dto.PromocionResponse, error)
	List(ctx context.Context, estado string) ([]dto.PromocionResponse, error)

	Asignar(ctx context.Context, promocionID uuid.UUID, req dto.AsignarPromocionRequest) error
	Quitar(ctx context.Context, promocionID uuid.UUID, req dto.AsignarPromocionRequest) error

	// ResolverDescuento picks the single winning promotion for a product at
	// the given instant: the highest effective percentage among the product's
	// direct assignments (honoring per-product overrides) and its category's
	// assignments. Returns zero and nil when nothing applies.
	ResolverDescuento(ctx context.Context, productoID uuid.UUID, categoriaID *uuid.UUID, at time.Time) (decimal.Decimal, *uuid.UUID, error)

	// AplicarPromociones runs the resolver over every cart line and applies
	// the winner as a named per-line discount. Returns the total discounted.
	AplicarPromociones(ctx context.Context, c *model.Carrito, categoriaPorProducto map[uuid.UUID]*uuid.UUID, at time.Time) (decimal.Decimal, error)
}

type promocionService struct {
	repo repository.PromocionRepository
}

func NewPromocionService(repo repository.PromocionRepository) PromocionService {
	return &promocionService{repo: repo}
}

func (s *promocionService) Crear(ctx context.Context, req dto.CrearPromocionRequest) (*dto.PromocionResponse, error) {
	inicio, err := time.Parse("2006-01-02", req.FechaInicio)
	if err != nil {
		return nil, errors.New("fecha_inicio inválida")
	}
	fin, err := time.Parse("2006-01-02", req.FechaFin)
	if err != nil {
		return nil, errors.New("fecha_fin inválida")
	}
	if fin.Before(inicio) {
		return nil, errors.New("fecha_fin no puede ser anterior a fecha_inicio")
	}
	// The window closes at the end of the last day.
	fin = fin.Add(24*time.Hour - time.Second)

	estado := req.Estado
	if estado == "" {
		estado = model.PromocionActiva
	}
	p := &model.Promocion{
		Nombre:       req.Nombre,
		Descripcion:  req.Descripcion,
		DescuentoPct: req.DescuentoPct,
		FechaInicio:  inicio,
		FechaFin:     fin,
		Estado:       estado,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return promocionToResponse(p, time.Now()), nil
}

func (s *promocionService) Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarPromocionRequest) (*dto.PromocionResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.New("promoción no encontrada")
	}
	if req.Nombre != "" {
		p.Nombre = req.Nombre
	}
	if req.Descripcion != nil {
		p.Descripcion = req.Descripcion
	}
	if req.DescuentoPct != nil {
		p.DescuentoPct = *req.DescuentoPct
	}
	if req.FechaInicio != nil {
		inicio, err := time.Parse("2006-01-02", *req.FechaInicio)
		if err != nil {
			return nil, errors.New("fecha_inicio inválida")
		}
		p.FechaInicio = inicio
	}
	if req.FechaFin != nil {
		fin, err := time.Parse("2006-01-02", *req.FechaFin)
		if err != nil {
			return nil, errors.New("fecha_fin inválida")
		}
		p.FechaFin = fin.Add(24*time.Hour - time.Second)
	}
	if p.FechaFin.Before(p.FechaInicio) {
		return nil, errors.New("fecha_fin no puede ser anterior a fecha_inicio")
	}
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return promocionToResponse(p, time.Now()), nil
}

func (s *promocionService) CambiarEstado(ctx context.Context, id uuid.UUID, estado string) error {
	return s.repo.CambiarEstado(ctx, id, estado)
}

func (s *promocionService) Eliminar(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func (s *promocionService) Obtener(ctx context.Context, id uuid.UUID) (*dto.PromocionResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.New("promoción no encontrada")
	}
	return promocionToResponse(p, time.Now()), nil
}

func (s *promocionService) List(ctx context.Context, estado string) ([]dto.PromocionResponse, error) {
	promociones, err := s.repo.List(ctx, estado)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	out := make([]dto.PromocionResponse, 0, len(promociones))
	for i := range promociones {
		out = append(out, *promocionToResponse(&promociones[i], now))
	}
	return out, nil
}

func (s *promocionService) Asignar(ctx context.Context, promocionID uuid.UUID, req dto.AsignarPromocionRequest) error {
	if _, err := s.repo.FindByID(ctx, promocionID); err != nil {
		return errors.New("promoción no encontrada")
	}
	switch {
	case req.ProductoID != nil:
		pid, err := uuid.Parse(*req.ProductoID)
		if err != nil {
			return errors.New("producto_id inválido")
		}
		return s.repo.AsignarProducto(ctx, &model.PromocionProducto{
			PromocionID:       promocionID,
			ProductoID:        pid,
			DescuentoAplicado: req.DescuentoAplicado,
		})
	case req.CategoriaID != nil:
		cid, err := uuid.Parse(*req.CategoriaID)
		if err != nil {
			return errors.New("categoria_id inválido")
		}
		return s.repo.AsignarCategoria(ctx, &model.PromocionCategoria{
			PromocionID: promocionID,
			CategoriaID: cid,
		})
	}
	return errors.New("debe indicar producto_id o categoria_id")
}

func (s *promocionService) Quitar(ctx context.Context, promocionID uuid.UUID, req dto.AsignarPromocionRequest) error {
	switch {
	case req.ProductoID != nil:
		pid, err := uuid.Parse(*req.ProductoID)
		if err != nil {
			return errors.New("producto_id inválido")
		}
		return s.repo.QuitarProducto(ctx, promocionID, pid)
	case req.CategoriaID != nil:
		cid, err := uuid.Parse(*req.CategoriaID)
		if err != nil {
			return errors.New("categoria_id inválido")
		}
		return s.repo.QuitarCategoria(ctx, promocionID, cid)
	}
	return errors.New("debe indicar producto_id o categoria_id")
}

func (s *promocionService) ResolverDescuento(ctx context.Context, productoID uuid.UUID, categoriaID *uuid.UUID, at time.Time) (decimal.Decimal, *uuid.UUID, error) {
	mejor := decimal.Zero
	var ganadora *uuid.UUID

	directas, err := s.repo.CandidatasPorProducto(ctx, productoID, at)
	if err != nil {
		return decimal.Zero, nil, err
	}
	for i := range directas {
		a := &directas[i]
		if a.Promocion == nil {
			continue
		}
		pct := a.Promocion.DescuentoPct
		if a.DescuentoAplicado != nil && a.DescuentoAplicado.IsPositive() {
			pct = *a.DescuentoAplicado
		}
		// Strictly greater: on ties the first candidate found wins.
		if pct.GreaterThan(mejor) {
			mejor = pct
			id := a.PromocionID
			ganadora = &id
		}
	}

	if categoriaID != nil {
		porCategoria, err := s.repo.CandidatasPorCategoria(ctx, *categoriaID, at)
		if err != nil {
			return decimal.Zero, nil, err
		}
		for i := range porCategoria {
			p := &porCategoria[i]
			if p.DescuentoPct.GreaterThan(mejor) {
				mejor = p.DescuentoPct
				id := p.ID
				ganadora = &id
			}
		}
	}

	return mejor, ganadora, nil
}

func (s *promocionService) AplicarPromociones(ctx context.Context, c *model.Carrito, categoriaPorProducto map[uuid.UUID]*uuid.UUID, at time.Time) (decimal.Decimal, error) {
	total := decimal.Zero
	for i := range c.Lineas {
		l := &c.Lineas[i]
		pct, promoID, err := s.ResolverDescuento(ctx, l.ProductoID, categoriaPorProducto[l.ProductoID], at)
		if err != nil {
			return decimal.Zero, err
		}
		if !pct.IsPositive() {
			continue
		}
		d, err := AplicarDescuentoProducto(c, l.ProductoID, pct)
		if err != nil {
			return decimal.Zero, err
		}
		l.PromocionID = promoID
		total = total.Add(d)
		log.Debug().
			Str("producto", l.Nombre).
			Str("pct", pct.String()).
			Msg("promoción aplicada")
	}
	return total, nil
}

func promocionToResponse(p *model.Promocion, now time.Time) *dto.PromocionResponse {
	resp := &dto.PromocionResponse{
		ID:             p.ID.String(),
		Nombre:         p.Nombre,
		Descripcion:    p.Descripcion,
		DescuentoPct:   p.DescuentoPct,
		FechaInicio:    p.FechaInicio.Format("2006-01-02"),
		FechaFin:       p.FechaFin.Format("2006-01-02"),
		Estado:         p.Estado,
		EstadoEfectivo: p.EstadoEfectivo(now),
	}
	for _, a := range p.Productos {
		pr := dto.PromocionProductoResponse{
			ProductoID:        a.ProductoID.String(),
			DescuentoAplicado: a.DescuentoAplicado,
		}
		if a.Producto != nil {
			pr.Codigo = a.Producto.Codigo
			pr.Nombre = a.Producto.Nombre
		}
		resp.Productos = append(resp.Productos, pr)
	}
	for _, a := range p.Categorias {
		if a.Categoria != nil {
			resp.Categorias = append(resp.Categorias, a.Categoria.Nombre)
		}
	}
	return resp
}
