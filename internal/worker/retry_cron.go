package worker

// retry_cron.go
// Background goroutine that periodically re-attempts provider calls for
// comprobantes stuck in estado='pendiente' with a next_retry_at in the past.
// The circuit breaker keeps it from hammering a downed provider.

import (
	"context"
	"fmt"
	"time"

	"minimarket/internal/infra"
	"minimarket/internal/repository"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	retryTickInterval = 30 * time.Second
	retryBatchSize    = 10
)

// RetryCronConfig holds all dependencies for the retry goroutine.
type RetryCronConfig struct {
	ComprobanteRepo repository.ComprobanteRepository
	VentaRepo       repository.VentaRepository
	Worker          *FacturacionWorker
	SUNAT           *infra.SUNATClient
	CB              *infra.CircuitBreaker
	RDB             *redis.Client
}

// StartRetryCron launches a background goroutine that ticks every 30s,
// queries pending comprobantes, and re-attempts emission through the CB.
func StartRetryCron(ctx context.Context, cfg RetryCronConfig) {
	go func() {
		ticker := time.NewTicker(retryTickInterval)
		defer ticker.Stop()

		log.Info().Msg("retry_cron: started")

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("retry_cron: shutting down")
				return
			case <-ticker.C:
				processRetries(ctx, cfg)
			}
		}
	}()
}

func processRetries(ctx context.Context, cfg RetryCronConfig) {
	// If CB is open, skip entirely — don't hammer a downed provider
	if cfg.CB.State() == infra.CBOpen {
		log.Debug().Msg("retry_cron: circuit breaker is open, skipping tick")
		return
	}

	now := time.Now()
	comprobantes, err := cfg.ComprobanteRepo.ListPendingRetries(ctx, now, retryBatchSize)
	if err != nil {
		log.Error().Err(err).Msg("retry_cron: failed to query pending retries")
		return
	}
	if len(comprobantes) == 0 {
		return
	}

	log.Info().Int("count", len(comprobantes)).Msg("retry_cron: processing pending comprobantes")

	for i := range comprobantes {
		comp := &comprobantes[i]

		// The CB may have tripped mid-batch
		if cfg.CB.State() == infra.CBOpen {
			log.Debug().Msg("retry_cron: circuit breaker opened mid-batch, stopping")
			return
		}

		venta, err := cfg.VentaRepo.FindByID(ctx, comp.VentaID)
		if err != nil {
			log.Error().Err(err).Str("venta_id", comp.VentaID.String()).Msg("retry_cron: venta not found")
			continue
		}

		payload := cfg.Worker.buildPayload(venta, comp)
		resp, emitErr := cfg.SUNAT.Emitir(ctx, payload)

		if emitErr != nil {
			comp.RetryCount++
			msg := emitErr.Error()
			comp.LastError = &msg
			next := time.Now().Add(computeRetryBackoff(comp.RetryCount))
			comp.NextRetryAt = &next

			if comp.RetryCount >= MaxComprobanteRetries {
				comp.Estado = "error"
				comp.NextRetryAt = nil
				log.Error().
					Str("comprobante_id", comp.ID.String()).
					Str("venta_id", comp.VentaID.String()).
					Int("retries", comp.RetryCount).
					Msg("retry_cron: max retries exceeded, moving to DLQ")

				dlqPayload := fmt.Sprintf(`{"venta_id":"%s","comprobante_id":"%s"}`, comp.VentaID, comp.ID)
				SendToDLQ(ctx, cfg.RDB, QueueFacturacion, "facturacion", []byte(dlqPayload),
					fmt.Sprintf("max retries (%d) exceeded: %s", MaxComprobanteRetries, msg),
					comp.RetryCount)
			} else {
				log.Warn().
					Str("comprobante_id", comp.ID.String()).
					Int("retry_count", comp.RetryCount).
					Time("next_retry_at", *comp.NextRetryAt).
					Msg("retry_cron: emission failed, scheduled next attempt")
			}

			_ = cfg.ComprobanteRepo.Update(ctx, comp)
			continue
		}

		if resp.Aceptado {
			comp.Estado = "emitido"
			comp.Serie = &resp.Serie
			comp.Numero = &resp.Numero
			comp.HashCPE = &resp.HashCPE
			comp.EnlacePDF = &resp.Enlace.PDF
			comp.EnlaceXML = &resp.Enlace.XML
			comp.NextRetryAt = nil
			comp.LastError = nil
			_ = cfg.ComprobanteRepo.Update(ctx, comp)
			log.Info().
				Str("serie", resp.Serie).
				Int64("numero", resp.Numero).
				Str("comprobante_id", comp.ID.String()).
				Int("total_retries", comp.RetryCount).
				Msg("retry_cron: comprobante emitido tras reintento")
		} else {
			comp.Estado = "rechazado"
			obs := fmt.Sprintf("SUNAT rechazó (retry): %v", resp.Observaciones)
			comp.Observaciones = &obs
			comp.NextRetryAt = nil
			_ = cfg.ComprobanteRepo.Update(ctx, comp)
			log.Warn().
				Str("comprobante_id", comp.ID.String()).
				Msg("retry_cron: comprobante rechazado en reintento")
		}
	}
}
