package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"minimarket/internal/dto"
	"minimarket/internal/model"
	"minimarket/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// ── Stubs ─────────────────────────────────────────────────────────────────────

// stubProductoRepo is an in-memory ProductoRepository for testing.
type stubProductoRepo struct {
	productos map[uuid.UUID]*model.Producto
}

func newStubProductoRepo(productos ...*model.Producto) *stubProductoRepo {
	r := &stubProductoRepo{productos: make(map[uuid.UUID]*model.Producto)}
	for _, p := range productos {
		r.productos[p.ID] = p
	}
	return r
}

func (r *stubProductoRepo) Create(_ context.Context, p *model.Producto) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	r.productos[p.ID] = p
	return nil
}

func (r *stubProductoRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Producto, error) {
	p, ok := r.productos[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return p, nil
}

func (r *stubProductoRepo) FindByCodigo(_ context.Context, codigo string) (*model.Producto, error) {
	for _, p := range r.productos {
		if p.Codigo == codigo {
			return p, nil
		}
	}
	return nil, errors.New("not found")
}

func (r *stubProductoRepo) List(_ context.Context, _ dto.ProductoFilter) ([]model.Producto, int64, error) {
	return nil, 0, nil
}

func (r *stubProductoRepo) Update(_ context.Context, p *model.Producto) error {
	r.productos[p.ID] = p
	return nil
}

func (r *stubProductoRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	if p, ok := r.productos[id]; ok {
		p.Activo = false
	}
	return nil
}

func (r *stubProductoRepo) Reactivar(_ context.Context, id uuid.UUID) error {
	if p, ok := r.productos[id]; ok {
		p.Activo = true
	}
	return nil
}

func (r *stubProductoRepo) NextCodigo(_ context.Context) (string, error) {
	return "P0001", nil
}

func (r *stubProductoRepo) DescontarStockTx(_ *gorm.DB, id uuid.UUID, cantidad int) error {
	p, ok := r.productos[id]
	if !ok {
		return errors.New("not found")
	}
	if p.Stock < cantidad {
		return repository.ErrStockInsuficiente
	}
	p.Stock -= cantidad
	return nil
}

func (r *stubProductoRepo) RestaurarStockTx(_ *gorm.DB, id uuid.UUID, cantidad int) error {
	p, ok := r.productos[id]
	if !ok {
		return errors.New("not found")
	}
	p.Stock += cantidad
	return nil
}

func (r *stubProductoRepo) AjustarStock(_ context.Context, id uuid.UUID, delta int) error {
	p, ok := r.productos[id]
	if !ok {
		return errors.New("not found")
	}
	if p.Stock+delta < 0 {
		return repository.ErrStockInsuficiente
	}
	p.Stock += delta
	return nil
}

func (r *stubProductoRepo) ListStockBajo(_ context.Context) ([]model.Producto, error) {
	return nil, nil
}

var _ repository.ProductoRepository = (*stubProductoRepo)(nil)

// stubVentaRepo is an in-memory VentaRepository for testing. beginTx, when
// set, snapshots shared stub state and returns the undo that Transaction runs
// when the callback fails, mirroring a real rollback.
type stubVentaRepo struct {
	ventas  map[uuid.UUID]*model.Venta
	beginTx func() (rollback func())
}

func newStubVentaRepo() *stubVentaRepo {
	return &stubVentaRepo{ventas: make(map[uuid.UUID]*model.Venta)}
}

func (r *stubVentaRepo) Create(_ context.Context, _ *gorm.DB, v *model.Venta) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	for i := range v.Items {
		if v.Items[i].ID == uuid.Nil {
			v.Items[i].ID = uuid.New()
		}
		v.Items[i].VentaID = v.ID
	}
	r.ventas[v.ID] = v
	return nil
}

func (r *stubVentaRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Venta, error) {
	v, ok := r.ventas[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return v, nil
}

func (r *stubVentaRepo) FindByCodigo(_ context.Context, codigo string) (*model.Venta, error) {
	for _, v := range r.ventas {
		if v.Codigo == codigo {
			return v, nil
		}
	}
	return nil, errors.New("not found")
}

func (r *stubVentaRepo) UpdateEstadoTx(_ *gorm.DB, id uuid.UUID, estado string) error {
	v, ok := r.ventas[id]
	if !ok {
		return errors.New("not found")
	}
	v.Estado = estado
	return nil
}

func (r *stubVentaRepo) List(_ context.Context, _ dto.VentaFilter) ([]model.Venta, int64, error) {
	out := make([]model.Venta, 0, len(r.ventas))
	for _, v := range r.ventas {
		out = append(out, *v)
	}
	return out, int64(len(out)), nil
}

func (r *stubVentaRepo) Transaction(_ context.Context, fn func(tx *gorm.DB) error) error {
	if r.beginTx == nil {
		return fn(nil)
	}
	rollback := r.beginTx()
	if err := fn(nil); err != nil {
		rollback()
		return err
	}
	return nil
}

var _ repository.VentaRepository = (*stubVentaRepo)(nil)

// stubMovimientoRepo captures audit rows for assertion.
type stubMovimientoRepo struct {
	movimientos []model.MovimientoStock
}

func (r *stubMovimientoRepo) CreateTx(_ *gorm.DB, m *model.MovimientoStock) error {
	r.movimientos = append(r.movimientos, *m)
	return nil
}

func (r *stubMovimientoRepo) Create(_ context.Context, m *model.MovimientoStock) error {
	r.movimientos = append(r.movimientos, *m)
	return nil
}

func (r *stubMovimientoRepo) ListByProducto(_ context.Context, _ uuid.UUID, _ int) ([]model.MovimientoStock, error) {
	return r.movimientos, nil
}

var _ repository.MovimientoStockRepository = (*stubMovimientoRepo)(nil)

// stubPasarela approves or declines every charge.
type stubPasarela struct {
	rechazar bool
	cobros   []decimal.Decimal
}

func (p *stubPasarela) Cobrar(_ context.Context, monto decimal.Decimal, _ string) (string, error) {
	if p.rechazar {
		return "", errors.New("tarjeta sin fondos")
	}
	p.cobros = append(p.cobros, monto)
	return "ch_" + uuid.NewString()[:8], nil
}

// ── Tests ─────────────────────────────────────────────────────────────────────

func setupVentaService(productos ...*model.Producto) (VentaService, *stubVentaRepo, *stubProductoRepo, *stubMovimientoRepo, *stubPasarela) {
	ventaRepo := newStubVentaRepo()
	productoRepo := newStubProductoRepo(productos...)
	movRepo := &stubMovimientoRepo{}
	pasarela := &stubPasarela{}
	svc := NewVentaService(ventaRepo, productoRepo, movRepo, nil, pasarela, nil)
	return svc, ventaRepo, productoRepo, movRepo, pasarela
}

func TestProcesarVenta_Efectivo(t *testing.T) {
	arroz := producto("Arroz Costeño 5kg", 25.90)
	arroz.Stock = 10
	svc, _, productoRepo, movRepo, _ := setupVentaService(arroz)

	resp, err := svc.ProcesarVenta(context.Background(), uuid.New(), dto.ProcesarVentaRequest{
		Items:      []dto.ItemVentaRequest{{ProductoID: arroz.ID.String(), Cantidad: 2}},
		MetodoPago: "efectivo",
	})
	require.NoError(t, err)

	assert.True(t, resp.Total.Equal(decimal.NewFromFloat(51.80)))
	assert.Equal(t, "completada", resp.Estado)
	assert.True(t, strings.HasPrefix(resp.Codigo, "V"))

	// Stock descontado y auditado.
	p, _ := productoRepo.FindByID(context.Background(), arroz.ID)
	assert.Equal(t, 8, p.Stock)
	require.Len(t, movRepo.movimientos, 1)
	assert.Equal(t, "venta", movRepo.movimientos[0].Tipo)
	assert.Equal(t, -2, movRepo.movimientos[0].Cantidad)
}

func TestProcesarVenta_AlertaStockBajo(t *testing.T) {
	arroz := producto("Arroz Costeño 5kg", 25.90)
	arroz.Stock = 5
	arroz.StockMinimo = 4
	svc, _, _, _, _ := setupVentaService(arroz)

	resp, err := svc.ProcesarVenta(context.Background(), uuid.New(), dto.ProcesarVentaRequest{
		Items:      []dto.ItemVentaRequest{{ProductoID: arroz.ID.String(), Cantidad: 3}},
		MetodoPago: "efectivo",
	})
	require.NoError(t, err)

	// Cruzó el umbral en esta venta: 5 ≥ 4 antes, 5 − 3 = 2 < 4 después.
	require.Len(t, resp.AlertasStock, 1)
	assert.Contains(t, resp.AlertasStock[0], "Arroz Costeño 5kg")
}

func TestProcesarVenta_SinAlertaSiYaEstabaBajoMinimo(t *testing.T) {
	arroz := producto("Arroz Costeño 5kg", 25.90)
	arroz.Stock = 3
	arroz.StockMinimo = 5
	svc, _, _, _, _ := setupVentaService(arroz)

	resp, err := svc.ProcesarVenta(context.Background(), uuid.New(), dto.ProcesarVentaRequest{
		Items:      []dto.ItemVentaRequest{{ProductoID: arroz.ID.String(), Cantidad: 1}},
		MetodoPago: "efectivo",
	})
	require.NoError(t, err)

	// Ya estaba por debajo del mínimo antes de vender: no se repite la alerta.
	assert.Empty(t, resp.AlertasStock)
}

func TestProcesarVenta_CarritoVacio(t *testing.T) {
	svc, _, _, _, _ := setupVentaService()

	_, err := svc.ProcesarVenta(context.Background(), uuid.New(), dto.ProcesarVentaRequest{
		MetodoPago: "efectivo",
	})
	assert.ErrorIs(t, err, ErrCarritoVacio)
}

func TestProcesarVenta_StockInsuficiente(t *testing.T) {
	leche := producto("Leche Gloria", 4.50)
	leche.Stock = 1
	svc, _, productoRepo, _, _ := setupVentaService(leche)

	_, err := svc.ProcesarVenta(context.Background(), uuid.New(), dto.ProcesarVentaRequest{
		Items:      []dto.ItemVentaRequest{{ProductoID: leche.ID.String(), Cantidad: 5}},
		MetodoPago: "efectivo",
	})
	require.ErrorIs(t, err, ErrStockInsuficiente)

	// El decremento guardado nunca se ejecutó: el stock queda intacto.
	p, _ := productoRepo.FindByID(context.Background(), leche.ID)
	assert.Equal(t, 1, p.Stock)
}

func TestProcesarVenta_MultiLineaRevierteTodo(t *testing.T) {
	arroz := producto("Arroz Costeño 5kg", 25.90)
	arroz.Stock = 10
	atun := producto("Atún Florida", 5.50)
	atun.Stock = 1
	svc, ventaRepo, productoRepo, movRepo, _ := setupVentaService(arroz, atun)

	// La transacción revierte al fallar la segunda línea; el stub replica el
	// rollback restaurando el estado previo.
	ventaRepo.beginTx = func() func() {
		stocks := make(map[uuid.UUID]int, len(productoRepo.productos))
		for id, p := range productoRepo.productos {
			stocks[id] = p.Stock
		}
		ventas := make(map[uuid.UUID]*model.Venta, len(ventaRepo.ventas))
		for id, v := range ventaRepo.ventas {
			ventas[id] = v
		}
		movs := append([]model.MovimientoStock(nil), movRepo.movimientos...)
		return func() {
			for id, s := range stocks {
				productoRepo.productos[id].Stock = s
			}
			ventaRepo.ventas = ventas
			movRepo.movimientos = movs
		}
	}

	// La primera línea alcanza, la segunda no: nada debe persistir.
	_, err := svc.ProcesarVenta(context.Background(), uuid.New(), dto.ProcesarVentaRequest{
		Items: []dto.ItemVentaRequest{
			{ProductoID: arroz.ID.String(), Cantidad: 2},
			{ProductoID: atun.ID.String(), Cantidad: 5},
		},
		MetodoPago: "efectivo",
	})
	require.ErrorIs(t, err, ErrStockInsuficiente)

	p1, _ := productoRepo.FindByID(context.Background(), arroz.ID)
	p2, _ := productoRepo.FindByID(context.Background(), atun.ID)
	assert.Equal(t, 10, p1.Stock)
	assert.Equal(t, 1, p2.Stock)
	assert.Empty(t, ventaRepo.ventas)
	assert.Empty(t, movRepo.movimientos)
}

func TestProcesarVenta_ProductoInactivo(t *testing.T) {
	cerveza := producto("Cerveza Cristal", 8.50)
	cerveza.Activo = false
	svc, _, _, _, _ := setupVentaService(cerveza)

	_, err := svc.ProcesarVenta(context.Background(), uuid.New(), dto.ProcesarVentaRequest{
		Items:      []dto.ItemVentaRequest{{ProductoID: cerveza.ID.String(), Cantidad: 1}},
		MetodoPago: "efectivo",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "inactivo")
}

func TestProcesarVenta_TarjetaAprobada(t *testing.T) {
	atun := producto("Atún Florida", 6.20)
	svc, _, _, _, pasarela := setupVentaService(atun)

	resp, err := svc.ProcesarVenta(context.Background(), uuid.New(), dto.ProcesarVentaRequest{
		Items:      []dto.ItemVentaRequest{{ProductoID: atun.ID.String(), Cantidad: 3}},
		MetodoPago: "tarjeta",
		PagoToken:  "tok_abc",
	})
	require.NoError(t, err)

	require.NotNil(t, resp.PagoReferencia)
	require.Len(t, pasarela.cobros, 1)
	assert.True(t, pasarela.cobros[0].Equal(decimal.NewFromFloat(18.60)))
}

func TestProcesarVenta_TarjetaRechazada(t *testing.T) {
	atun := producto("Atún Florida", 6.20)
	atun.Stock = 10
	svc, ventaRepo, productoRepo, movRepo, pasarela := setupVentaService(atun)
	pasarela.rechazar = true

	_, err := svc.ProcesarVenta(context.Background(), uuid.New(), dto.ProcesarVentaRequest{
		Items:      []dto.ItemVentaRequest{{ProductoID: atun.ID.String(), Cantidad: 1}},
		MetodoPago: "tarjeta",
		PagoToken:  "tok_abc",
	})
	require.ErrorIs(t, err, ErrPagoRechazado)

	// Un rechazo no deja rastro: ni venta, ni stock movido, ni auditoría.
	assert.Empty(t, ventaRepo.ventas)
	assert.Empty(t, movRepo.movimientos)
	p, _ := productoRepo.FindByID(context.Background(), atun.ID)
	assert.Equal(t, 10, p.Stock)
}

func TestProcesarVenta_DescuentoTotalPct(t *testing.T) {
	arroz := producto("Arroz", 25.00)
	leche := producto("Leche", 5.00)
	svc, _, _, _, _ := setupVentaService(arroz, leche)

	pct := decimal.NewFromInt(10)
	resp, err := svc.ProcesarVenta(context.Background(), uuid.New(), dto.ProcesarVentaRequest{
		Items: []dto.ItemVentaRequest{
			{ProductoID: arroz.ID.String(), Cantidad: 1},
			{ProductoID: leche.ID.String(), Cantidad: 1},
		},
		Descuento:  &dto.DescuentoRequest{Tipo: model.DescuentoTotalPct, Pct: &pct},
		MetodoPago: "efectivo",
	})
	require.NoError(t, err)

	// 30.00 − 10% = 27.00
	assert.True(t, resp.Total.Equal(decimal.NewFromFloat(27.00)))
	require.NotNil(t, resp.TipoDescuento)
	assert.Equal(t, model.DescuentoTotalPct, *resp.TipoDescuento)
	assert.True(t, resp.DescuentoPct.Equal(pct))
	// Global: no per-line attribution, so DescuentoTotal queda en cero.
	assert.True(t, resp.DescuentoTotal.IsZero())
}

func TestProcesarVenta_DescuentoProducto(t *testing.T) {
	arroz := producto("Arroz", 20.00)
	svc, _, _, _, _ := setupVentaService(arroz)

	pct := decimal.NewFromInt(25)
	pid := arroz.ID.String()
	resp, err := svc.ProcesarVenta(context.Background(), uuid.New(), dto.ProcesarVentaRequest{
		Items:      []dto.ItemVentaRequest{{ProductoID: pid, Cantidad: 2}},
		Descuento:  &dto.DescuentoRequest{Tipo: model.DescuentoProducto, ProductoID: &pid, Pct: &pct},
		MetodoPago: "efectivo",
	})
	require.NoError(t, err)

	// 40.00 − 25% = 30.00, atribuido a la línea.
	assert.True(t, resp.Total.Equal(decimal.NewFromFloat(30.00)))
	assert.True(t, resp.DescuentoTotal.Equal(decimal.NewFromFloat(10.00)))
	require.Len(t, resp.Items, 1)
	require.NotNil(t, resp.Items[0].Descuento)
}

func TestProcesarVenta_DescuentoInvalido(t *testing.T) {
	arroz := producto("Arroz", 20.00)
	svc, _, _, _, _ := setupVentaService(arroz)

	pct := decimal.NewFromInt(150)
	_, err := svc.ProcesarVenta(context.Background(), uuid.New(), dto.ProcesarVentaRequest{
		Items:      []dto.ItemVentaRequest{{ProductoID: arroz.ID.String(), Cantidad: 1}},
		Descuento:  &dto.DescuentoRequest{Tipo: model.DescuentoTotalPct, Pct: &pct},
		MetodoPago: "efectivo",
	})
	assert.ErrorIs(t, err, ErrDescuentoInvalido)
}

func TestAnularVenta_RestauraStock(t *testing.T) {
	arroz := producto("Arroz", 25.00)
	arroz.Stock = 10
	svc, ventaRepo, productoRepo, movRepo, _ := setupVentaService(arroz)

	resp, err := svc.ProcesarVenta(context.Background(), uuid.New(), dto.ProcesarVentaRequest{
		Items:      []dto.ItemVentaRequest{{ProductoID: arroz.ID.String(), Cantidad: 3}},
		MetodoPago: "efectivo",
	})
	require.NoError(t, err)

	id, _ := uuid.Parse(resp.ID)
	require.NoError(t, svc.AnularVenta(context.Background(), id, "cliente se arrepintió"))

	p, _ := productoRepo.FindByID(context.Background(), arroz.ID)
	assert.Equal(t, 10, p.Stock)
	assert.Equal(t, "anulada", ventaRepo.ventas[id].Estado)

	// venta + anulacion
	require.Len(t, movRepo.movimientos, 2)
	assert.Equal(t, "anulacion", movRepo.movimientos[1].Tipo)
	assert.Equal(t, 3, movRepo.movimientos[1].Cantidad)
}

func TestAnularVenta_YaAnulada(t *testing.T) {
	arroz := producto("Arroz", 25.00)
	svc, _, _, _, _ := setupVentaService(arroz)

	resp, err := svc.ProcesarVenta(context.Background(), uuid.New(), dto.ProcesarVentaRequest{
		Items:      []dto.ItemVentaRequest{{ProductoID: arroz.ID.String(), Cantidad: 1}},
		MetodoPago: "efectivo",
	})
	require.NoError(t, err)

	id, _ := uuid.Parse(resp.ID)
	require.NoError(t, svc.AnularVenta(context.Background(), id, "error de registro"))
	err = svc.AnularVenta(context.Background(), id, "otra vez")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "anulada")
}

func TestAnularVenta_NoEncontrada(t *testing.T) {
	svc, _, _, _, _ := setupVentaService()
	err := svc.AnularVenta(context.Background(), uuid.New(), "motivo")
	assert.ErrorIs(t, err, ErrVentaNoEncontrada)
}
