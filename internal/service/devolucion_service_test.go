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

// stubDevolucionRepo is an in-memory DevolucionRepository for testing.
type stubDevolucionRepo struct {
	devoluciones map[uuid.UUID]*model.Devolucion
}

func newStubDevolucionRepo() *stubDevolucionRepo {
	return &stubDevolucionRepo{devoluciones: make(map[uuid.UUID]*model.Devolucion)}
}

func (r *stubDevolucionRepo) Create(_ context.Context, _ *gorm.DB, d *model.Devolucion) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	for i := range d.Items {
		d.Items[i].DevolucionID = d.ID
	}
	copia := *d
	r.devoluciones[d.ID] = &copia
	return nil
}

func (r *stubDevolucionRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Devolucion, error) {
	d, ok := r.devoluciones[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return d, nil
}

func (r *stubDevolucionRepo) ListByVenta(_ context.Context, ventaID uuid.UUID) ([]model.Devolucion, error) {
	var out []model.Devolucion
	for _, d := range r.devoluciones {
		if d.VentaID == ventaID {
			out = append(out, *d)
		}
	}
	return out, nil
}

func (r *stubDevolucionRepo) Transaction(_ context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

var _ repository.DevolucionRepository = (*stubDevolucionRepo)(nil)

// ── Helpers ───────────────────────────────────────────────────────────────────

// ventaCompletada seeds a committed single-line sale into the venta stub.
// lineaTotal is the post-discount line total the customer actually paid.
func ventaCompletada(ventaRepo *stubVentaRepo, p *model.Producto, cantidad int, lineaTotal float64) *model.Venta {
	v := &model.Venta{
		Codigo:     "V20260901120000-0001",
		UsuarioID:  uuid.New(),
		MetodoPago: "efectivo",
		Estado:     "completada",
		Total:      decimal.NewFromFloat(lineaTotal),
		Items: []model.DetalleVenta{{
			ProductoID:     p.ID,
			Cantidad:       cantidad,
			PrecioUnitario: p.Precio,
			Subtotal:       p.Precio.Mul(decimal.NewFromInt(int64(cantidad))),
			Total:          decimal.NewFromFloat(lineaTotal),
		}},
	}
	_ = ventaRepo.Create(context.Background(), nil, v)
	return v
}

func setupDevolucionService(p *model.Producto) (DevolucionService, *stubDevolucionRepo, *stubVentaRepo, *stubProductoRepo, *stubMovimientoRepo) {
	devolucionRepo := newStubDevolucionRepo()
	ventaRepo := newStubVentaRepo()
	productoRepo := newStubProductoRepo(p)
	movRepo := &stubMovimientoRepo{}
	svc := NewDevolucionService(devolucionRepo, ventaRepo, productoRepo, movRepo)
	return svc, devolucionRepo, ventaRepo, productoRepo, movRepo
}

// ── Tests ─────────────────────────────────────────────────────────────────────

func TestProcesarDevolucion_RestauraStockYCalculaMonto(t *testing.T) {
	arroz := producto("Arroz", 20.00)
	arroz.Stock = 7 // quedaron 7 tras vender 3
	svc, _, ventaRepo, productoRepo, movRepo := setupDevolucionService(arroz)
	venta := ventaCompletada(ventaRepo, arroz, 3, 60.00)

	resp, err := svc.ProcesarDevolucion(context.Background(), uuid.New(), dto.CrearDevolucionRequest{
		VentaCodigo: venta.Codigo,
		Motivo:      "producto vencido",
		Items: []dto.ItemDevolucionRequest{
			{DetalleVentaID: venta.Items[0].ID.String(), Cantidad: 2},
		},
	})
	require.NoError(t, err)

	// 2 × 20.00 (precio unitario de la línea) = 40.00
	assert.True(t, resp.MontoTotal.Equal(decimal.NewFromFloat(40.00)))
	assert.True(t, strings.HasPrefix(resp.Codigo, "D"))
	assert.Equal(t, venta.Codigo, resp.VentaCodigo)

	p, _ := productoRepo.FindByID(context.Background(), arroz.ID)
	assert.Equal(t, 9, p.Stock)

	require.Len(t, movRepo.movimientos, 1)
	assert.Equal(t, "devolucion", movRepo.movimientos[0].Tipo)
	assert.Equal(t, 2, movRepo.movimientos[0].Cantidad)
}

func TestProcesarDevolucion_MontoConDescuento(t *testing.T) {
	// Línea vendida con descuento: 3 unidades a 20.00 con 10% → total 54.00.
	// El reembolso por unidad es el precio unitario de la línea, no el valor
	// efectivo post-descuento.
	arroz := producto("Arroz", 20.00)
	svc, _, ventaRepo, _, _ := setupDevolucionService(arroz)
	venta := ventaCompletada(ventaRepo, arroz, 3, 54.00)

	resp, err := svc.ProcesarDevolucion(context.Background(), uuid.New(), dto.CrearDevolucionRequest{
		VentaCodigo: venta.Codigo,
		Motivo:      "no era lo que pedí",
		Items: []dto.ItemDevolucionRequest{
			{DetalleVentaID: venta.Items[0].ID.String(), Cantidad: 1},
		},
	})
	require.NoError(t, err)

	// 1 × 20.00, el precio unitario registrado en la venta.
	assert.True(t, resp.MontoTotal.Equal(decimal.NewFromFloat(20.00)), "monto = %s", resp.MontoTotal)
}

func TestProcesarDevolucion_ExcedeCantidadVendida(t *testing.T) {
	arroz := producto("Arroz", 20.00)
	svc, _, ventaRepo, _, _ := setupDevolucionService(arroz)
	venta := ventaCompletada(ventaRepo, arroz, 3, 60.00)

	_, err := svc.ProcesarDevolucion(context.Background(), uuid.New(), dto.CrearDevolucionRequest{
		VentaCodigo: venta.Codigo,
		Motivo:      "motivo cualquiera",
		Items: []dto.ItemDevolucionRequest{
			{DetalleVentaID: venta.Items[0].ID.String(), Cantidad: 4},
		},
	})
	require.ErrorIs(t, err, ErrDevolucionExcedida)
	// El error nombra el producto que excede lo vendido.
	assert.Contains(t, err.Error(), "Arroz")
}

func TestProcesarDevolucion_AcumulaDevolucionesPrevias(t *testing.T) {
	arroz := producto("Arroz", 20.00)
	svc, _, ventaRepo, _, _ := setupDevolucionService(arroz)
	venta := ventaCompletada(ventaRepo, arroz, 3, 60.00)

	// Primera devolución: 2 de 3.
	_, err := svc.ProcesarDevolucion(context.Background(), uuid.New(), dto.CrearDevolucionRequest{
		VentaCodigo: venta.Codigo,
		Motivo:      "empaque dañado",
		Items: []dto.ItemDevolucionRequest{
			{DetalleVentaID: venta.Items[0].ID.String(), Cantidad: 2},
		},
	})
	require.NoError(t, err)

	// Segunda: 2 más excedería lo vendido (2 + 2 > 3).
	_, err = svc.ProcesarDevolucion(context.Background(), uuid.New(), dto.CrearDevolucionRequest{
		VentaCodigo: venta.Codigo,
		Motivo:      "empaque dañado",
		Items: []dto.ItemDevolucionRequest{
			{DetalleVentaID: venta.Items[0].ID.String(), Cantidad: 2},
		},
	})
	require.ErrorIs(t, err, ErrDevolucionExcedida)

	// Pero 1 más sí entra (2 + 1 = 3).
	_, err = svc.ProcesarDevolucion(context.Background(), uuid.New(), dto.CrearDevolucionRequest{
		VentaCodigo: venta.Codigo,
		Motivo:      "empaque dañado",
		Items: []dto.ItemDevolucionRequest{
			{DetalleVentaID: venta.Items[0].ID.String(), Cantidad: 1},
		},
	})
	assert.NoError(t, err)
}

func TestProcesarDevolucion_VentaAnulada(t *testing.T) {
	arroz := producto("Arroz", 20.00)
	svc, _, ventaRepo, _, _ := setupDevolucionService(arroz)
	venta := ventaCompletada(ventaRepo, arroz, 1, 20.00)
	venta.Estado = "anulada"

	_, err := svc.ProcesarDevolucion(context.Background(), uuid.New(), dto.CrearDevolucionRequest{
		VentaCodigo: venta.Codigo,
		Motivo:      "motivo",
		Items: []dto.ItemDevolucionRequest{
			{DetalleVentaID: venta.Items[0].ID.String(), Cantidad: 1},
		},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "completadas")
}

func TestProcesarDevolucion_VentaNoEncontrada(t *testing.T) {
	arroz := producto("Arroz", 20.00)
	svc, _, _, _, _ := setupDevolucionService(arroz)

	_, err := svc.ProcesarDevolucion(context.Background(), uuid.New(), dto.CrearDevolucionRequest{
		VentaCodigo: "V-NO-EXISTE",
		Motivo:      "motivo",
		Items:       []dto.ItemDevolucionRequest{{DetalleVentaID: uuid.NewString(), Cantidad: 1}},
	})
	assert.ErrorIs(t, err, ErrVentaNoEncontrada)
}

func TestProcesarDevolucion_DetalleAjeno(t *testing.T) {
	arroz := producto("Arroz", 20.00)
	svc, _, ventaRepo, _, _ := setupDevolucionService(arroz)
	venta := ventaCompletada(ventaRepo, arroz, 1, 20.00)

	_, err := svc.ProcesarDevolucion(context.Background(), uuid.New(), dto.CrearDevolucionRequest{
		VentaCodigo: venta.Codigo,
		Motivo:      "motivo",
		Items:       []dto.ItemDevolucionRequest{{DetalleVentaID: uuid.NewString(), Cantidad: 1}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no pertenece")
}

func TestListByVenta(t *testing.T) {
	arroz := producto("Arroz", 20.00)
	svc, _, ventaRepo, _, _ := setupDevolucionService(arroz)
	venta := ventaCompletada(ventaRepo, arroz, 3, 60.00)

	_, err := svc.ProcesarDevolucion(context.Background(), uuid.New(), dto.CrearDevolucionRequest{
		VentaCodigo: venta.Codigo,
		Motivo:      "producto vencido",
		Items: []dto.ItemDevolucionRequest{
			{DetalleVentaID: venta.Items[0].ID.String(), Cantidad: 1},
		},
	})
	require.NoError(t, err)

	lista, err := svc.ListByVenta(context.Background(), venta.Codigo)
	require.NoError(t, err)
	require.Len(t, lista, 1)
	assert.Equal(t, venta.Codigo, lista[0].VentaCodigo)
}
