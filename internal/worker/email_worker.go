package worker

// email_worker.go
// Processes email jobs from QueueEmail: sends PDF receipts to customers.

import (
	"context"
	"encoding/json"

	"minimarket/internal/dto"
	"minimarket/internal/infra"

	"github.com/rs/zerolog/log"
)

// EmailWorker processes email jobs from QueueEmail.
type EmailWorker struct {
	mailer *infra.Mailer
}

func NewEmailWorker(mailer *infra.Mailer) *EmailWorker {
	return &EmailWorker{mailer: mailer}
}

// Process sends an email with the PDF receipt as attachment.
func (w *EmailWorker) Process(_ context.Context, raw json.RawMessage) {
	var payload dto.EmailJob
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("email_worker: invalid payload")
		return
	}
	if payload.Para == "" {
		log.Warn().Msg("email_worker: destinatario vacío — skipping")
		return
	}

	if err := w.mailer.SendComprobante(payload.Para, payload.Asunto, payload.Cuerpo, payload.AdjuntoPDF); err != nil {
		log.Error().Err(err).Str("to", payload.Para).Msg("email_worker: failed to send email")
		return
	}
	log.Info().Str("to", payload.Para).Msg("email_worker: comprobante sent")
}
