package service

import (
	"context"
	"time"

	"minimarket/internal/dto"
	"minimarket/internal/repository"
)

type ReporteService interface {
	// ReporteDiario aggregates the day's completed sales plus the breakdown
	// per payment method. fecha empty means today.
	ReporteDiario(ctx context.Context, fecha string) (*dto.ReporteDiarioResponse, error)
	TopProductos(ctx context.Context, desde, hasta string, limit int) ([]dto.TopProductoResponse, error)
}

type reporteService struct {
	repo repository.ReporteRepository
}

func NewReporteService(repo repository.ReporteRepository) ReporteService {
	return &reporteService{repo: repo}
}

func (s *reporteService) ReporteDiario(ctx context.Context, fecha string) (*dto.ReporteDiarioResponse, error) {
	if fecha == "" {
		fecha = time.Now().Format("2006-01-02")
	}
	resumen, err := s.repo.ResumenDiario(ctx, fecha)
	if err != nil {
		return nil, err
	}
	metodos, err := s.repo.TotalesPorMetodo(ctx, fecha)
	if err != nil {
		return nil, err
	}

	resp := &dto.ReporteDiarioResponse{
		Fecha:           fecha,
		CantidadVentas:  resumen.CantidadVentas,
		TotalBruto:      resumen.TotalBruto,
		TotalDescuentos: resumen.TotalDescuentos,
		TotalNeto:       resumen.TotalNeto,
	}
	for _, m := range metodos {
		resp.PorMetodo = append(resp.PorMetodo, dto.MetodoPagoResumen{
			MetodoPago: m.MetodoPago,
			Cantidad:   m.Cantidad,
			Total:      m.Total,
		})
	}
	return resp, nil
}

func (s *reporteService) TopProductos(ctx context.Context, desde, hasta string, limit int) ([]dto.TopProductoResponse, error) {
	if hasta == "" {
		hasta = time.Now().Format("2006-01-02")
	}
	if desde == "" {
		desde = time.Now().AddDate(0, 0, -30).Format("2006-01-02")
	}
	rows, err := s.repo.TopProductos(ctx, desde, hasta, limit)
	if err != nil {
		return nil, err
	}
	out := make([]dto.TopProductoResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, dto.TopProductoResponse{
			ProductoID:       r.ProductoID,
			Codigo:           r.Codigo,
			Nombre:           r.Nombre,
			UnidadesVendidas: r.UnidadesVendidas,
			TotalVendido:     r.TotalVendido,
		})
	}
	return out, nil
}
