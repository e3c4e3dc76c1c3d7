package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"minimarket/internal/dto"
	"minimarket/internal/model"
	"minimarket/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type DevolucionService interface {
	ProcesarDevolucion(ctx context.Context, usuarioID uuid.UUID, req dto.CrearDevolucionRequest) (*dto.DevolucionResponse, error)
	Obtener(ctx context.Context, id uuid.UUID) (*dto.DevolucionResponse, error)
	ListByVenta(ctx context.Context, ventaCodigo string) ([]dto.DevolucionResponse, error)
}

type devolucionService struct {
	repo        repository.DevolucionRepository
	ventas      repository.VentaRepository
	productos   repository.ProductoRepository
	movimientos repository.MovimientoStockRepository
}

func NewDevolucionService(
	repo repository.DevolucionRepository,
	ventas repository.VentaRepository,
	productos repository.ProductoRepository,
	movimientos repository.MovimientoStockRepository,
) DevolucionService {
	return &devolucionService{
		repo:        repo,
		ventas:      ventas,
		productos:   productos,
		movimientos: movimientos,
	}
}

// ProcesarDevolucion commits a return against a completed sale. Each returned
// quantity is validated against the original line minus what previous returns
// already took; the refund per line is cantidad × the sold line's unit price.
// Persist and stock restore happen in one transaction.
func (s *devolucionService) ProcesarDevolucion(ctx context.Context, usuarioID uuid.UUID, req dto.CrearDevolucionRequest) (*dto.DevolucionResponse, error) {
	venta, err := s.ventas.FindByCodigo(ctx, req.VentaCodigo)
	if err != nil {
		return nil, ErrVentaNoEncontrada
	}
	if venta.Estado != "completada" {
		return nil, errors.New("solo se pueden devolver ventas completadas")
	}

	lineasPorID := make(map[uuid.UUID]*model.DetalleVenta, len(venta.Items))
	for i := range venta.Items {
		lineasPorID[venta.Items[i].ID] = &venta.Items[i]
	}

	// Quantities already returned in previous devoluciones count against the
	// per-line limit.
	devueltas := make(map[uuid.UUID]int)
	previas, err := s.repo.ListByVenta(ctx, venta.ID)
	if err == nil {
		for _, d := range previas {
			for _, item := range d.Items {
				devueltas[item.DetalleVentaID] += item.Cantidad
			}
		}
	}

	devolucion := model.Devolucion{
		VentaID:   venta.ID,
		UsuarioID: usuarioID,
		Motivo:    req.Motivo,
		Estado:    "completada",
	}
	montoTotal := decimal.Zero

	for _, item := range req.Items {
		if item.Cantidad <= 0 {
			return nil, ErrCantidadInvalida
		}
		dvID, err := uuid.Parse(item.DetalleVentaID)
		if err != nil {
			return nil, fmt.Errorf("detalle_venta_id inválido: %w", err)
		}
		linea, ok := lineasPorID[dvID]
		if !ok {
			return nil, errors.New("el detalle indicado no pertenece a la venta")
		}
		if item.Cantidad+devueltas[dvID] > linea.Cantidad {
			nombre := linea.ProductoID.String()
			if linea.Producto != nil {
				nombre = linea.Producto.Nombre
			} else if p, err := s.productos.FindByID(ctx, linea.ProductoID); err == nil {
				nombre = p.Nombre
			}
			return nil, fmt.Errorf("%w: %s (vendidas %d, ya devueltas %d)",
				ErrDevolucionExcedida, nombre, linea.Cantidad, devueltas[dvID])
		}

		unitario := linea.PrecioUnitario
		monto := unitario.Mul(decimal.NewFromInt(int64(item.Cantidad))).RoundBank(2)
		montoTotal = montoTotal.Add(monto)

		devolucion.Items = append(devolucion.Items, model.DetalleDevolucion{
			DetalleVentaID: dvID,
			ProductoID:     linea.ProductoID,
			Cantidad:       item.Cantidad,
			PrecioUnitario: unitario,
			Monto:          monto,
			Estado:         "completada",
		})
	}
	if len(devolucion.Items) == 0 {
		return nil, errors.New("la devolución no tiene items")
	}
	devolucion.MontoTotal = montoTotal

	txErr := s.repo.Transaction(ctx, func(tx *gorm.DB) error {
		devolucion.Codigo = nuevoCodigo("D", time.Now())

		if err := s.repo.Create(ctx, tx, &devolucion); err != nil {
			return err
		}
		for _, item := range devolucion.Items {
			antes := 0
			if p, err := s.productos.FindByID(ctx, item.ProductoID); err == nil {
				antes = p.Stock
			}
			if err := s.productos.RestaurarStockTx(tx, item.ProductoID, item.Cantidad); err != nil {
				return err
			}
			ref := devolucion.ID
			mov := &model.MovimientoStock{
				ProductoID:    item.ProductoID,
				Tipo:          "devolucion",
				Cantidad:      item.Cantidad,
				StockAnterior: antes,
				StockNuevo:    antes + item.Cantidad,
				Motivo:        fmt.Sprintf("Devolución %s — %s", devolucion.Codigo, req.Motivo),
				ReferenciaID:  &ref,
			}
			if err := s.movimientos.CreateTx(tx, mov); err != nil {
				return err
			}
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	return devolucionToResponse(&devolucion, venta.Codigo), nil
}

func (s *devolucionService) Obtener(ctx context.Context, id uuid.UUID) (*dto.DevolucionResponse, error) {
	d, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.New("devolución no encontrada")
	}
	codigo := ""
	if d.Venta != nil {
		codigo = d.Venta.Codigo
	}
	return devolucionToResponse(d, codigo), nil
}

func (s *devolucionService) ListByVenta(ctx context.Context, ventaCodigo string) ([]dto.DevolucionResponse, error) {
	venta, err := s.ventas.FindByCodigo(ctx, ventaCodigo)
	if err != nil {
		return nil, ErrVentaNoEncontrada
	}
	devoluciones, err := s.repo.ListByVenta(ctx, venta.ID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.DevolucionResponse, 0, len(devoluciones))
	for i := range devoluciones {
		out = append(out, *devolucionToResponse(&devoluciones[i], venta.Codigo))
	}
	return out, nil
}

func devolucionToResponse(d *model.Devolucion, ventaCodigo string) *dto.DevolucionResponse {
	items := make([]dto.DetalleDevolucionResponse, 0, len(d.Items))
	for _, item := range d.Items {
		r := dto.DetalleDevolucionResponse{
			ProductoID:     item.ProductoID.String(),
			Cantidad:       item.Cantidad,
			PrecioUnitario: item.PrecioUnitario,
			Monto:          item.Monto,
		}
		if item.Producto != nil {
			r.Nombre = item.Producto.Nombre
		}
		items = append(items, r)
	}
	return &dto.DevolucionResponse{
		ID:          d.ID.String(),
		Codigo:      d.Codigo,
		VentaCodigo: ventaCodigo,
		Motivo:      d.Motivo,
		MontoTotal:  d.MontoTotal,
		Estado:      d.Estado,
		Fecha:       d.CreatedAt.Format("2006-01-02T15:04:05Z"),
		Items:       items,
	}
}
