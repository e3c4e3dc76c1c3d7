package worker

// facturacion_worker.go
// Processes comprobante emission jobs from QueueFacturacion: sends the
// document to the e-invoicing provider, stores the result, generates the
// thermal ticket PDF and optionally enqueues the customer email.

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"minimarket/internal/dto"
	"minimarket/internal/infra"
	"minimarket/internal/model"
	"minimarket/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// MaxComprobanteRetries is the total attempt budget across the in-process
// retries and the retry cron before a comprobante moves to the DLQ.
const MaxComprobanteRetries = 6

// FacturacionConfig carries the emitter's identity and storage settings.
type FacturacionConfig struct {
	RUCEmisor      string
	RazonSocial    string
	SerieBoleta    string
	SerieFactura   string
	PDFStoragePath string
}

type FacturacionWorker struct {
	sunat        *infra.SUNATClient
	comprobantes repository.ComprobanteRepository
	ventas       repository.VentaRepository
	dispatcher   *Dispatcher
	cfg          FacturacionConfig
}

func NewFacturacionWorker(
	sunat *infra.SUNATClient,
	comprobantes repository.ComprobanteRepository,
	ventas repository.VentaRepository,
	dispatcher *Dispatcher,
	cfg FacturacionConfig,
) *FacturacionWorker {
	return &FacturacionWorker{
		sunat:        sunat,
		comprobantes: comprobantes,
		ventas:       ventas,
		dispatcher:   dispatcher,
		cfg:          cfg,
	}
}

// Process handles a single emission job:
//  1. fetch the Venta with its items
//  2. create the Comprobante row with estado="pendiente"
//  3. call the provider with exponential backoff (3 in-process attempts)
//  4. store the acceptance (serie, numero, hash, enlaces) or schedule a retry
//  5. generate the thermal ticket PDF
//  6. enqueue the customer email when an address was given
func (w *FacturacionWorker) Process(ctx context.Context, raw json.RawMessage) {
	var job dto.FacturacionJob
	if err := json.Unmarshal(raw, &job); err != nil {
		log.Error().Err(err).Msg("facturacion_worker: invalid payload")
		return
	}

	ventaID, err := uuid.Parse(job.VentaID)
	if err != nil {
		log.Error().Str("venta_id", job.VentaID).Msg("facturacion_worker: invalid venta_id")
		return
	}

	venta, err := w.ventas.FindByID(ctx, ventaID)
	if err != nil {
		log.Error().Err(err).Str("venta_id", job.VentaID).Msg("facturacion_worker: venta not found")
		return
	}

	comp, err := w.comprobantes.FindByVentaID(ctx, ventaID)
	if err != nil {
		comp = &model.Comprobante{
			VentaID:    ventaID,
			Tipo:       job.Tipo,
			MontoTotal: venta.Total,
			Estado:     "pendiente",
			RetryCount: job.Intento,
		}
		if job.ReceptorTipoDoc != "" {
			comp.ReceptorTipoDoc = &job.ReceptorTipoDoc
			comp.ReceptorNroDoc = &job.ReceptorNumDoc
			comp.ReceptorNombre = &job.ReceptorNombre
		}
		if err := w.comprobantes.Create(ctx, comp); err != nil {
			log.Error().Err(err).Str("venta_id", job.VentaID).Msg("facturacion_worker: failed to create comprobante")
			return
		}
	}

	payload := w.buildPayload(venta, comp)

	var sunatResp *infra.SUNATResponse
	emitErr := withRetry(ctx, 3, func(attempt int) error {
		resp, err := w.sunat.Emitir(ctx, payload)
		if err != nil {
			log.Warn().
				Err(err).
				Int("attempt", attempt+1).
				Str("venta_id", job.VentaID).
				Msg("facturacion_worker: provider attempt failed, retrying")
			return err
		}
		sunatResp = resp
		return nil
	})

	switch {
	case emitErr != nil:
		// Provider down: stays pendiente, the retry cron takes over.
		comp.RetryCount++
		msg := emitErr.Error()
		comp.LastError = &msg
		next := time.Now().Add(computeRetryBackoff(comp.RetryCount))
		comp.NextRetryAt = &next
		_ = w.comprobantes.Update(ctx, comp)
		log.Error().Err(emitErr).Str("venta_id", job.VentaID).Msg("facturacion_worker: provider failed, scheduled retry")

	case sunatResp.Aceptado:
		comp.Estado = "emitido"
		comp.Serie = &sunatResp.Serie
		comp.Numero = &sunatResp.Numero
		comp.HashCPE = &sunatResp.HashCPE
		comp.EnlacePDF = &sunatResp.Enlace.PDF
		comp.EnlaceXML = &sunatResp.Enlace.XML
		comp.NextRetryAt = nil
		comp.LastError = nil
		_ = w.comprobantes.Update(ctx, comp)
		log.Info().
			Str("serie", sunatResp.Serie).
			Int64("numero", sunatResp.Numero).
			Str("venta_id", job.VentaID).
			Msg("facturacion_worker: comprobante emitido")

	default:
		comp.Estado = "rechazado"
		obs := fmt.Sprintf("SUNAT rechazó el comprobante: %v", sunatResp.Observaciones)
		comp.Observaciones = &obs
		comp.NextRetryAt = nil
		_ = w.comprobantes.Update(ctx, comp)
		log.Warn().
			Strs("observaciones", sunatResp.Observaciones).
			Str("venta_id", job.VentaID).
			Msg("facturacion_worker: comprobante rechazado")
	}

	pdfPath, pdfErr := infra.GenerateTicketPDF(venta, w.cfg.RazonSocial, w.cfg.PDFStoragePath)
	if pdfErr != nil {
		log.Warn().Err(pdfErr).Str("venta_id", job.VentaID).Msg("facturacion_worker: PDF generation failed")
	} else {
		comp.TicketPDFPath = &pdfPath
		_ = w.comprobantes.Update(ctx, comp)
	}

	if job.Email != "" && pdfPath != "" {
		emailJob := dto.EmailJob{
			Para:       job.Email,
			Asunto:     fmt.Sprintf("Comprobante de compra — Venta %s", venta.Codigo),
			Cuerpo:     fmt.Sprintf("Adjunto encontrarás tu comprobante de compra.\nTotal: S/ %s", venta.Total.StringFixed(2)),
			AdjuntoPDF: pdfPath,
		}
		if err := w.dispatcher.EnqueueEmail(ctx, emailJob); err != nil {
			log.Warn().Err(err).Str("email", job.Email).Msg("facturacion_worker: failed to enqueue email")
		}
	}
}

func (w *FacturacionWorker) buildPayload(venta *model.Venta, comp *model.Comprobante) infra.SUNATPayload {
	serie := w.cfg.SerieBoleta
	if comp.Tipo == "factura" {
		serie = w.cfg.SerieFactura
	}
	p := infra.SUNATPayload{
		TipoDocumento: comp.Tipo,
		Serie:         serie,
		RUCEmisor:     w.cfg.RUCEmisor,
		RazonSocial:   w.cfg.RazonSocial,
		MontoTotal:    venta.Total,
		VentaID:       venta.ID.String(),
	}
	if comp.ReceptorTipoDoc != nil {
		p.ReceptorTipoDoc = *comp.ReceptorTipoDoc
	}
	if comp.ReceptorNroDoc != nil {
		p.ReceptorNumDoc = *comp.ReceptorNroDoc
	}
	if comp.ReceptorNombre != nil {
		p.ReceptorNombre = *comp.ReceptorNombre
	}
	for _, item := range venta.Items {
		desc := ""
		if item.Producto != nil {
			desc = item.Producto.Nombre
		}
		p.Items = append(p.Items, infra.SUNATItem{
			Descripcion:    desc,
			Cantidad:       item.Cantidad,
			PrecioUnitario: item.PrecioUnitario,
			Total:          item.Total,
		})
	}
	return p
}

// withRetry calls fn up to maxAttempts times with exponential backoff.
// Backoff schedule: attempt 1 = immediate, 2 = 1s, 3 = 2s.
func withRetry(ctx context.Context, maxAttempts int, fn func(attempt int) error) error {
	var lastErr error
	for i := 0; i < maxAttempts; i++ {
		if i > 0 {
			wait := time.Duration(1<<uint(i-1)) * time.Second
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
		}
		if err := fn(i); err != nil {
			lastErr = err
			continue
		}
		return nil
	}
	return lastErr
}

// computeRetryBackoff returns the cron's wait before the next attempt:
// 1m, 2m, 4m … capped at 30m.
func computeRetryBackoff(retryCount int) time.Duration {
	if retryCount < 1 {
		retryCount = 1
	}
	d := time.Duration(1<<uint(retryCount-1)) * time.Minute
	if d > 30*time.Minute {
		d = 30 * time.Minute
	}
	return d
}
