package service

import (
	"context"
	"errors"

	"minimarket/internal/dto"
	"minimarket/internal/repository"
	"minimarket/internal/worker"

	"github.com/google/uuid"
)

type FacturacionService interface {
	ObtenerPorVenta(ctx context.Context, ventaID uuid.UUID) (*dto.ComprobanteResponse, error)
	// Reemitir re-enqueues the emission job for a comprobante that never made
	// it through the provider (estado pendiente, rechazado or error).
	Reemitir(ctx context.Context, ventaID uuid.UUID) error
}

type facturacionService struct {
	comprobantes repository.ComprobanteRepository
	dispatcher   *worker.Dispatcher
}

func NewFacturacionService(comprobantes repository.ComprobanteRepository, dispatcher *worker.Dispatcher) FacturacionService {
	return &facturacionService{comprobantes: comprobantes, dispatcher: dispatcher}
}

func (s *facturacionService) ObtenerPorVenta(ctx context.Context, ventaID uuid.UUID) (*dto.ComprobanteResponse, error) {
	c, err := s.comprobantes.FindByVentaID(ctx, ventaID)
	if err != nil {
		return nil, errors.New("comprobante no encontrado")
	}
	resp := &dto.ComprobanteResponse{
		ID:        c.ID.String(),
		VentaID:   c.VentaID.String(),
		Tipo:      c.Tipo,
		Estado:    c.Estado,
		HashCPE:   c.HashCPE,
		EnlacePDF: c.EnlacePDF,
		EnlaceXML: c.EnlaceXML,
		LastError: c.LastError,
	}
	if c.Serie != nil {
		resp.Serie = *c.Serie
	}
	if c.Numero != nil {
		resp.Numero = int(*c.Numero)
	}
	return resp, nil
}

func (s *facturacionService) Reemitir(ctx context.Context, ventaID uuid.UUID) error {
	c, err := s.comprobantes.FindByVentaID(ctx, ventaID)
	if err != nil {
		return errors.New("comprobante no encontrado")
	}
	if c.Estado == "emitido" {
		return errors.New("el comprobante ya fue emitido")
	}
	if s.dispatcher == nil {
		return errors.New("worker pool no disponible")
	}
	job := dto.FacturacionJob{
		VentaID: c.VentaID.String(),
		Tipo:    c.Tipo,
		Intento: c.RetryCount,
	}
	if c.ReceptorTipoDoc != nil {
		job.ReceptorTipoDoc = *c.ReceptorTipoDoc
	}
	if c.ReceptorNroDoc != nil {
		job.ReceptorNumDoc = *c.ReceptorNroDoc
	}
	if c.ReceptorNombre != nil {
		job.ReceptorNombre = *c.ReceptorNombre
	}
	return s.dispatcher.EnqueueFacturacion(ctx, job)
}
