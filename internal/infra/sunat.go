package infra

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
)

// SUNATItem is one line of the comprobante sent to the OSE.
type SUNATItem struct {
	Descripcion    string          `json:"descripcion"`
	Cantidad       int             `json:"cantidad"`
	PrecioUnitario decimal.Decimal `json:"precio_unitario"`
	Total          decimal.Decimal `json:"total"`
}

// SUNATPayload is the document the worker sends to the e-invoicing provider
// (OSE) which signs the UBL XML and forwards it to SUNAT.
type SUNATPayload struct {
	TipoDocumento   string          `json:"tipo_documento"` // boleta | factura
	Serie           string          `json:"serie"`
	RUCEmisor       string          `json:"ruc_emisor"`
	RazonSocial     string          `json:"razon_social"`
	ReceptorTipoDoc string          `json:"receptor_tipo_doc"` // DNI | RUC
	ReceptorNumDoc  string          `json:"receptor_num_doc"`
	ReceptorNombre  string          `json:"receptor_nombre"`
	Items           []SUNATItem     `json:"items"`
	MontoTotal      decimal.Decimal `json:"monto_total"`
	VentaID         string          `json:"venta_id"`
}

// SUNATResponse is the provider's answer after SUNAT accepts or rejects the CPE.
type SUNATResponse struct {
	Aceptado bool   `json:"aceptado"`
	Serie    string `json:"serie"`
	Numero   int64  `json:"numero"`
	HashCPE  string `json:"hash_cpe"`
	Enlace   struct {
		PDF string `json:"pdf"`
		XML string `json:"xml"`
	} `json:"enlace"`
	Observaciones []string `json:"observaciones"`
}

// SUNATClient talks to the OSE over HTTP. Provider failures are isolated from
// the sale path: only the async worker calls it, behind a circuit breaker.
type SUNATClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
	cb         *CircuitBreaker
}

func NewSUNATClient(baseURL, token string, cb *CircuitBreaker) *SUNATClient {
	return &SUNATClient{
		baseURL:    baseURL,
		token:      token,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		cb:         cb,
	}
}

// Emitir sends the comprobante to the OSE and returns the acceptance result.
func (c *SUNATClient) Emitir(ctx context.Context, payload SUNATPayload) (*SUNATResponse, error) {
	var result *SUNATResponse
	err := c.cb.Execute(func() error {
		body, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("sunat: marshal payload: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/comprobantes", bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("sunat: create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+c.token)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("sunat: provider unreachable: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("sunat: provider returned %d", resp.StatusCode)
		}

		var r SUNATResponse
		if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
			return fmt.Errorf("sunat: decode response: %w", err)
		}
		result = &r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// EstadoCircuito exposes the breaker state for the health endpoint.
func (c *SUNATClient) EstadoCircuito() string {
	return c.cb.State().String()
}
