package infra

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
)

// PasarelaClient charges cards through the payment gateway. The charge happens
// synchronously before the sale transaction: a decline aborts the sale.
type PasarelaClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewPasarelaClient(baseURL, apiKey string) *PasarelaClient {
	return &PasarelaClient{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

type cobroRequest struct {
	Monto  decimal.Decimal `json:"monto"`
	Moneda string          `json:"moneda"`
	Token  string          `json:"token"`
}

type cobroResponse struct {
	Aprobado   bool   `json:"aprobado"`
	Referencia string `json:"referencia"`
	Mensaje    string `json:"mensaje"`
}

// Cobrar charges the tokenized card for the given amount in PEN.
// Returns the gateway's reference on approval.
func (c *PasarelaClient) Cobrar(ctx context.Context, monto decimal.Decimal, token string) (string, error) {
	if token == "" {
		return "", errors.New("pasarela: token de pago requerido")
	}
	body, err := json.Marshal(cobroRequest{Monto: monto, Moneda: "PEN", Token: token})
	if err != nil {
		return "", fmt.Errorf("pasarela: marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/cargos", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("pasarela: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("pasarela: unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("pasarela: returned %d", resp.StatusCode)
	}

	var r cobroResponse
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		return "", fmt.Errorf("pasarela: decode: %w", err)
	}
	if !r.Aprobado {
		return "", fmt.Errorf("pasarela: cargo no aprobado: %s", r.Mensaje)
	}
	return r.Referencia, nil
}
