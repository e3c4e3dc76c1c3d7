package service

import (
	"context"
	"errors"
	"fmt"

	"minimarket/internal/dto"
	"minimarket/internal/model"
	"minimarket/internal/repository"

	"github.com/google/uuid"
)

type ProductoService interface {
	Crear(ctx context.Context, req dto.CrearProductoRequest) (*dto.ProductoResponse, error)
	Obtener(ctx context.Context, id uuid.UUID) (*dto.ProductoResponse, error)
	ObtenerPorCodigo(ctx context.Context, codigo string) (*dto.ProductoResponse, error)
	List(ctx context.Context, filter dto.ProductoFilter) (*dto.ProductoListResponse, error)
	Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarProductoRequest) (*dto.ProductoResponse, error)
	Desactivar(ctx context.Context, id uuid.UUID) error
	Reactivar(ctx context.Context, id uuid.UUID) error

	AjustarStock(ctx context.Context, usuarioID, id uuid.UUID, req dto.AjustarStockRequest) (*dto.ProductoResponse, error)
	ListStockBajo(ctx context.Context) ([]dto.StockBajoResponse, error)
	Movimientos(ctx context.Context, id uuid.UUID, limit int) ([]model.MovimientoStock, error)
}

type productoService struct {
	repo        repository.ProductoRepository
	movimientos repository.MovimientoStockRepository
}

func NewProductoService(repo repository.ProductoRepository, movimientos repository.MovimientoStockRepository) ProductoService {
	return &productoService{repo: repo, movimientos: movimientos}
}

func (s *productoService) Crear(ctx context.Context, req dto.CrearProductoRequest) (*dto.ProductoResponse, error) {
	if !req.Precio.IsPositive() {
		return nil, ErrPrecioInvalido
	}
	codigo, err := s.repo.NextCodigo(ctx)
	if err != nil {
		return nil, err
	}
	p := &model.Producto{
		Codigo:      codigo,
		Nombre:      req.Nombre,
		TipoCorte:   req.TipoCorte,
		Precio:      req.Precio,
		Stock:       req.Stock,
		StockMinimo: req.StockMinimo,
		ImagenURL:   req.ImagenURL,
		Activo:      true,
	}
	if req.CategoriaID != nil {
		cid, err := uuid.Parse(*req.CategoriaID)
		if err != nil {
			return nil, errors.New("categoria_id inválido")
		}
		p.CategoriaID = &cid
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return productoToResponse(p), nil
}

func (s *productoService) Obtener(ctx context.Context, id uuid.UUID) (*dto.ProductoResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.New("producto no encontrado")
	}
	return productoToResponse(p), nil
}

func (s *productoService) ObtenerPorCodigo(ctx context.Context, codigo string) (*dto.ProductoResponse, error) {
	p, err := s.repo.FindByCodigo(ctx, codigo)
	if err != nil {
		return nil, errors.New("producto no encontrado")
	}
	return productoToResponse(p), nil
}

func (s *productoService) List(ctx context.Context, filter dto.ProductoFilter) (*dto.ProductoListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	productos, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	data := make([]dto.ProductoResponse, 0, len(productos))
	for i := range productos {
		data = append(data, *productoToResponse(&productos[i]))
	}
	return &dto.ProductoListResponse{
		Data:  data,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}, nil
}

func (s *productoService) Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarProductoRequest) (*dto.ProductoResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.New("producto no encontrado")
	}
	if req.Nombre != "" {
		p.Nombre = req.Nombre
	}
	if req.CategoriaID != nil {
		cid, err := uuid.Parse(*req.CategoriaID)
		if err != nil {
			return nil, errors.New("categoria_id inválido")
		}
		p.CategoriaID = &cid
	}
	if req.TipoCorte != nil {
		p.TipoCorte = req.TipoCorte
	}
	if req.Precio != nil {
		if !req.Precio.IsPositive() {
			return nil, ErrPrecioInvalido
		}
		p.Precio = *req.Precio
	}
	if req.StockMinimo != nil {
		p.StockMinimo = *req.StockMinimo
	}
	if req.ImagenURL != nil {
		p.ImagenURL = req.ImagenURL
	}
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return productoToResponse(p), nil
}

func (s *productoService) Desactivar(ctx context.Context, id uuid.UUID) error {
	return s.repo.SoftDelete(ctx, id)
}

func (s *productoService) Reactivar(ctx context.Context, id uuid.UUID) error {
	return s.repo.Reactivar(ctx, id)
}

// AjustarStock applies a manual delta and records the audit row. Negative
// deltas are guarded at the storage level so stock never goes below zero.
func (s *productoService) AjustarStock(ctx context.Context, usuarioID, id uuid.UUID, req dto.AjustarStockRequest) (*dto.ProductoResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.New("producto no encontrado")
	}
	antes := p.Stock

	if err := s.repo.AjustarStock(ctx, id, req.Delta); err != nil {
		if errors.Is(err, repository.ErrStockInsuficiente) {
			return nil, ErrStockInsuficiente
		}
		return nil, err
	}

	mov := &model.MovimientoStock{
		ProductoID:    id,
		Tipo:          "ajuste_manual",
		Cantidad:      req.Delta,
		StockAnterior: antes,
		StockNuevo:    antes + req.Delta,
		Motivo:        fmt.Sprintf("%s (por %s)", req.Motivo, usuarioID),
	}
	if err := s.movimientos.Create(ctx, mov); err != nil {
		return nil, err
	}

	p.Stock = antes + req.Delta
	return productoToResponse(p), nil
}

func (s *productoService) ListStockBajo(ctx context.Context) ([]dto.StockBajoResponse, error) {
	productos, err := s.repo.ListStockBajo(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.StockBajoResponse, 0, len(productos))
	for _, p := range productos {
		out = append(out, dto.StockBajoResponse{
			ProductoID:  p.ID.String(),
			Codigo:      p.Codigo,
			Nombre:      p.Nombre,
			Stock:       p.Stock,
			StockMinimo: p.StockMinimo,
		})
	}
	return out, nil
}

func (s *productoService) Movimientos(ctx context.Context, id uuid.UUID, limit int) ([]model.MovimientoStock, error) {
	return s.movimientos.ListByProducto(ctx, id, limit)
}

func productoToResponse(p *model.Producto) *dto.ProductoResponse {
	resp := &dto.ProductoResponse{
		ID:          p.ID.String(),
		Codigo:      p.Codigo,
		Nombre:      p.Nombre,
		TipoCorte:   p.TipoCorte,
		Precio:      p.Precio,
		Stock:       p.Stock,
		StockMinimo: p.StockMinimo,
		StockBajo:   p.Stock < p.StockMinimo,
		ImagenURL:   p.ImagenURL,
		Activo:      p.Activo,
	}
	if p.CategoriaID != nil {
		cid := p.CategoriaID.String()
		resp.CategoriaID = &cid
	}
	if p.Categoria != nil {
		resp.Categoria = &p.Categoria.Nombre
	}
	return resp
}
