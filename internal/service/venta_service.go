package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"minimarket/internal/dto"
	"minimarket/internal/model"
	"minimarket/internal/repository"
	"minimarket/internal/worker"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Pasarela charges a card through the payment gateway. The concrete client
// lives in infra; tests stub this interface.
type Pasarela interface {
	Cobrar(ctx context.Context, monto decimal.Decimal, token string) (referencia string, err error)
}

type VentaService interface {
	ProcesarVenta(ctx context.Context, usuarioID uuid.UUID, req dto.ProcesarVentaRequest) (*dto.VentaResponse, error)
	AnularVenta(ctx context.Context, id uuid.UUID, motivo string) error
	ObtenerPorCodigo(ctx context.Context, codigo string) (*dto.VentaResponse, error)
	ListVentas(ctx context.Context, filter dto.VentaFilter) (*dto.VentaListResponse, error)
}

type ventaService struct {
	repo        repository.VentaRepository
	productos   repository.ProductoRepository
	movimientos repository.MovimientoStockRepository
	promociones PromocionService
	pasarela    Pasarela
	dispatcher  *worker.Dispatcher
}

func NewVentaService(
	repo repository.VentaRepository,
	productos repository.ProductoRepository,
	movimientos repository.MovimientoStockRepository,
	promociones PromocionService,
	pasarela Pasarela,
	dispatcher *worker.Dispatcher,
) VentaService {
	return &ventaService{
		repo:        repo,
		productos:   productos,
		movimientos: movimientos,
		promociones: promociones,
		pasarela:    pasarela,
		dispatcher:  dispatcher,
	}
}

// codigoSeq serializes human-readable code generation within the process.
// The unique index on codigo is the real guarantee.
var (
	codigoMu  sync.Mutex
	codigoSeq int
)

func nuevoCodigo(prefix string, at time.Time) string {
	codigoMu.Lock()
	codigoSeq++
	seq := codigoSeq
	codigoMu.Unlock()
	return fmt.Sprintf("%s%s-%04d", prefix, at.Format("20060102150405"), seq%10000)
}

// ProcesarVenta commits a sale end to end:
//  1. resolve products and build the cart
//  2. auto-apply the winning promotion per line
//  3. apply the cashier's manual discount directive, if any
//  4. charge the card through the gateway (card payments only, before the TX)
//  5. one ACID transaction: venta + items + guarded stock decrements + audit rows
//  6. post-commit: low-stock alerts and async comprobante emission, best-effort
func (s *ventaService) ProcesarVenta(ctx context.Context, usuarioID uuid.UUID, req dto.ProcesarVentaRequest) (*dto.VentaResponse, error) {
	if len(req.Items) == 0 {
		return nil, ErrCarritoVacio
	}

	carrito := model.NuevoCarrito()
	categorias := make(map[uuid.UUID]*uuid.UUID, len(req.Items))
	// Pre-sale stock snapshot: low-stock alerts fire only for products this
	// sale pushed below the minimum, not for ones that already were.
	stockAntes := make(map[uuid.UUID]int, len(req.Items))

	for _, item := range req.Items {
		if item.Cantidad <= 0 {
			return nil, ErrCantidadInvalida
		}
		pid, err := uuid.Parse(item.ProductoID)
		if err != nil {
			return nil, fmt.Errorf("producto_id inválido: %w", err)
		}
		p, err := s.productos.FindByID(ctx, pid)
		if err != nil {
			return nil, fmt.Errorf("producto %s no encontrado", item.ProductoID)
		}
		if !p.Activo {
			return nil, fmt.Errorf("producto %s está inactivo y no puede venderse", p.Nombre)
		}
		if !p.Precio.IsPositive() {
			return nil, ErrPrecioInvalido
		}
		carrito.AgregarLinea(p, item.Cantidad)
		categorias[p.ID] = p.CategoriaID
		stockAntes[p.ID] = p.Stock
	}
	if carrito.Vacio() {
		return nil, ErrCarritoVacio
	}

	now := time.Now()

	// Promotions first; a manual directive afterwards overwrites the lines it
	// touches (no stacking).
	descuentoPromos := decimal.Zero
	if s.promociones != nil {
		d, err := s.promociones.AplicarPromociones(ctx, carrito, categorias, now)
		if err != nil {
			return nil, err
		}
		descuentoPromos = d
	}

	var tipoDescuento *string
	if descuentoPromos.IsPositive() {
		t := model.DescuentoPromocion
		tipoDescuento = &t
	}

	if req.Descuento != nil {
		t, err := s.aplicarDirectiva(carrito, req.Descuento)
		if err != nil {
			return nil, err
		}
		tipoDescuento = &t
	}

	total := carrito.Total()

	// Card payments hit the gateway before anything is persisted; a decline
	// leaves no trace in the DB.
	var pagoRef *string
	if req.MetodoPago == "tarjeta" {
		if s.pasarela == nil {
			return nil, errors.New("pasarela de pagos no configurada")
		}
		ref, err := s.pasarela.Cobrar(ctx, total, req.PagoToken)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrPagoRechazado, err)
		}
		pagoRef = &ref
	}

	venta := model.Venta{
		UsuarioID:      usuarioID,
		Total:          total,
		DescuentoTotal: carrito.DescuentoLineas(),
		DescuentoPct:   maxPct(carrito),
		TipoDescuento:  tipoDescuento,
		MetodoPago:     req.MetodoPago,
		PagoReferencia: pagoRef,
		Estado:         "completada",
	}
	for i := range carrito.Lineas {
		l := &carrito.Lineas[i]
		venta.Items = append(venta.Items, model.DetalleVenta{
			ProductoID:     l.ProductoID,
			Cantidad:       l.Cantidad,
			PrecioUnitario: l.PrecioUnitario,
			Subtotal:       l.BaseTotal,
			Total:          l.Total,
			Descuento:      l.Descuento,
			PromocionID:    l.PromocionID,
		})
	}

	txErr := s.repo.Transaction(ctx, func(tx *gorm.DB) error {
		venta.Codigo = nuevoCodigo("V", now)

		if err := s.repo.Create(ctx, tx, &venta); err != nil {
			return err
		}

		for i := range carrito.Lineas {
			l := &carrito.Lineas[i]

			antes := 0
			if p, err := s.productos.FindByID(ctx, l.ProductoID); err == nil {
				antes = p.Stock
			}

			if err := s.productos.DescontarStockTx(tx, l.ProductoID, l.Cantidad); err != nil {
				if errors.Is(err, repository.ErrStockInsuficiente) {
					return fmt.Errorf("%w: %s", ErrStockInsuficiente, l.Nombre)
				}
				return err
			}

			ref := venta.ID
			mov := &model.MovimientoStock{
				ProductoID:    l.ProductoID,
				Tipo:          "venta",
				Cantidad:      -l.Cantidad,
				StockAnterior: antes,
				StockNuevo:    antes - l.Cantidad,
				Motivo:        fmt.Sprintf("Venta %s", venta.Codigo),
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

	alertas := s.alertarStockBajo(ctx, carrito, stockAntes)
	s.encolarFacturacion(ctx, &venta, req)

	resp := ventaToResponse(&venta)
	resp.AlertasStock = alertas
	return resp, nil
}

// aplicarDirectiva runs the cashier's manual discount over the cart and
// returns the type tag to store on the sale header.
func (s *ventaService) aplicarDirectiva(c *model.Carrito, d *dto.DescuentoRequest) (string, error) {
	switch d.Tipo {
	case model.DescuentoProducto:
		if d.ProductoID == nil || d.Pct == nil {
			return "", ErrDescuentoInvalido
		}
		pid, err := uuid.Parse(*d.ProductoID)
		if err != nil {
			return "", ErrDescuentoInvalido
		}
		if _, err := AplicarDescuentoProducto(c, pid, *d.Pct); err != nil {
			return "", err
		}
		return model.DescuentoProducto, nil

	case model.DescuentoTotalPct:
		if d.Pct == nil {
			return "", ErrDescuentoInvalido
		}
		if _, err := AplicarDescuentoTotal(c, *d.Pct); err != nil {
			return "", err
		}
		return model.DescuentoTotalPct, nil

	case model.DescuentoFijo:
		if d.Monto == nil {
			return "", ErrMontoInvalido
		}
		if _, err := AplicarDescuentoFijo(c, *d.Monto); err != nil {
			return "", err
		}
		return model.DescuentoFijo, nil

	case model.DescuentoPorTipo:
		if d.Pct == nil || d.Valor == "" {
			return "", ErrDescuentoInvalido
		}
		if _, err := AplicarDescuentoPorTipo(c, d.Campo, d.Valor, *d.Pct); err != nil {
			return "", err
		}
		return model.DescuentoPorTipo, nil
	}
	return "", ErrDescuentoInvalido
}

func maxPct(c *model.Carrito) decimal.Decimal {
	max := decimal.Zero
	for i := range c.Lineas {
		if c.Lineas[i].DescuentoPct.GreaterThan(max) {
			max = c.Lineas[i].DescuentoPct
		}
	}
	return max
}

// alertarStockBajo reports the products this sale pushed below their minimum:
// pre-sale stock at or above it, post-sale stock below. Products that already
// were under the minimum don't re-alert on every sale. Best-effort: a failed
// lookup never affects the sale, it just drops the alert.
func (s *ventaService) alertarStockBajo(ctx context.Context, c *model.Carrito, stockAntes map[uuid.UUID]int) []string {
	var alertas []string
	for i := range c.Lineas {
		p, err := s.productos.FindByID(ctx, c.Lineas[i].ProductoID)
		if err != nil {
			continue
		}
		if stockAntes[p.ID] >= p.StockMinimo && p.Stock < p.StockMinimo {
			log.Warn().
				Str("producto", p.Nombre).
				Str("codigo", p.Codigo).
				Int("stock", p.Stock).
				Int("stock_minimo", p.StockMinimo).
				Msg("stock bajo")
			alertas = append(alertas, fmt.Sprintf("Stock bajo: %s (%d/%d)", p.Nombre, p.Stock, p.StockMinimo))
		}
	}
	return alertas
}

// encolarFacturacion dispatches the async comprobante emission. Fire & forget:
// the retry cron picks up anything the queue loses.
func (s *ventaService) encolarFacturacion(ctx context.Context, v *model.Venta, req dto.ProcesarVentaRequest) {
	if s.dispatcher == nil {
		return
	}
	tipo := req.TipoComprobante
	if tipo == "" {
		tipo = "boleta"
	}
	job := dto.FacturacionJob{
		VentaID: v.ID.String(),
		Tipo:    tipo,
	}
	if req.Cliente != nil {
		job.ReceptorTipoDoc = req.Cliente.TipoDoc
		job.ReceptorNumDoc = req.Cliente.NumeroDoc
		job.ReceptorNombre = req.Cliente.Nombre
		job.Email = req.Cliente.Email
	}
	if err := s.dispatcher.EnqueueFacturacion(ctx, job); err != nil {
		log.Warn().Err(err).Str("venta", v.Codigo).Msg("no se pudo encolar facturación")
	}
}

func (s *ventaService) AnularVenta(ctx context.Context, id uuid.UUID, motivo string) error {
	venta, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return ErrVentaNoEncontrada
	}
	if venta.Estado == "anulada" {
		return errors.New("la venta ya está anulada")
	}

	return s.repo.Transaction(ctx, func(tx *gorm.DB) error {
		for _, item := range venta.Items {
			antes := 0
			if p, err := s.productos.FindByID(ctx, item.ProductoID); err == nil {
				antes = p.Stock
			}
			if err := s.productos.RestaurarStockTx(tx, item.ProductoID, item.Cantidad); err != nil {
				return err
			}
			ref := venta.ID
			mov := &model.MovimientoStock{
				ProductoID:    item.ProductoID,
				Tipo:          "anulacion",
				Cantidad:      item.Cantidad,
				StockAnterior: antes,
				StockNuevo:    antes + item.Cantidad,
				Motivo:        fmt.Sprintf("Anulación venta %s — %s", venta.Codigo, motivo),
				ReferenciaID:  &ref,
			}
			if err := s.movimientos.CreateTx(tx, mov); err != nil {
				return err
			}
		}
		return s.repo.UpdateEstadoTx(tx, id, "anulada")
	})
}

func (s *ventaService) ObtenerPorCodigo(ctx context.Context, codigo string) (*dto.VentaResponse, error) {
	venta, err := s.repo.FindByCodigo(ctx, codigo)
	if err != nil {
		return nil, ErrVentaNoEncontrada
	}
	return ventaToResponse(venta), nil
}

func (s *ventaService) ListVentas(ctx context.Context, filter dto.VentaFilter) (*dto.VentaListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	ventas, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	data := make([]dto.VentaResponse, 0, len(ventas))
	for i := range ventas {
		data = append(data, *ventaToResponse(&ventas[i]))
	}
	return &dto.VentaListResponse{
		Data:  data,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}, nil
}

func ventaToResponse(v *model.Venta) *dto.VentaResponse {
	items := make([]dto.DetalleVentaResponse, 0, len(v.Items))
	for _, item := range v.Items {
		r := dto.DetalleVentaResponse{
			ProductoID:     item.ProductoID.String(),
			Cantidad:       item.Cantidad,
			PrecioUnitario: item.PrecioUnitario,
			Subtotal:       item.Subtotal,
			Descuento:      item.Descuento,
			Total:          item.Total,
		}
		if item.Producto != nil {
			r.Codigo = item.Producto.Codigo
			r.Nombre = item.Producto.Nombre
		}
		if item.PromocionID != nil {
			id := item.PromocionID.String()
			r.PromocionID = &id
		}
		items = append(items, r)
	}
	usuario := ""
	if v.Usuario != nil {
		usuario = v.Usuario.Nombre
	}
	return &dto.VentaResponse{
		ID:             v.ID.String(),
		Codigo:         v.Codigo,
		Usuario:        usuario,
		Total:          v.Total,
		DescuentoTotal: v.DescuentoTotal,
		DescuentoPct:   v.DescuentoPct,
		TipoDescuento:  v.TipoDescuento,
		MetodoPago:     v.MetodoPago,
		PagoReferencia: v.PagoReferencia,
		Estado:         v.Estado,
		Fecha:          v.CreatedAt.Format("2006-01-02T15:04:05Z"),
		Items:          items,
	}
}
