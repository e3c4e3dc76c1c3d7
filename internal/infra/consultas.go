package infra

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"minimarket/internal/dto"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// consultaCacheTTL — padrón data barely changes; a day of caching keeps the
// register responsive when the upstream API is slow.
const consultaCacheTTL = 24 * time.Hour

// ConsultasClient resolves DNI and RUC numbers against the padrón API, with a
// Redis read-through cache.
type ConsultasClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
	rdb        *redis.Client
}

func NewConsultasClient(baseURL, token string, rdb *redis.Client) *ConsultasClient {
	return &ConsultasClient{
		baseURL:    baseURL,
		token:      token,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		rdb:        rdb,
	}
}

func (c *ConsultasClient) ConsultarDNI(ctx context.Context, dni string) (*dto.ConsultaDNIResponse, error) {
	var out dto.ConsultaDNIResponse
	if c.cacheGet(ctx, "consulta:dni:"+dni, &out) {
		return &out, nil
	}
	if err := c.get(ctx, "/v2/reniec/dni?numero="+dni, &out); err != nil {
		return nil, err
	}
	c.cacheSet(ctx, "consulta:dni:"+dni, &out)
	return &out, nil
}

func (c *ConsultasClient) ConsultarRUC(ctx context.Context, ruc string) (*dto.ConsultaRUCResponse, error) {
	var out dto.ConsultaRUCResponse
	if c.cacheGet(ctx, "consulta:ruc:"+ruc, &out) {
		return &out, nil
	}
	if err := c.get(ctx, "/v2/sunat/ruc?numero="+ruc, &out); err != nil {
		return nil, err
	}
	c.cacheSet(ctx, "consulta:ruc:"+ruc, &out)
	return &out, nil
}

func (c *ConsultasClient) get(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("consultas: create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("consultas: unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("consultas: documento no encontrado")
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("consultas: returned %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *ConsultasClient) cacheGet(ctx context.Context, key string, out interface{}) bool {
	if c.rdb == nil {
		return false
	}
	raw, err := c.rdb.Get(ctx, key).Result()
	if err != nil {
		return false
	}
	return json.Unmarshal([]byte(raw), out) == nil
}

func (c *ConsultasClient) cacheSet(ctx context.Context, key string, v interface{}) {
	if c.rdb == nil {
		return
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, key, raw, consultaCacheTTL).Err(); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("consultas: cache set failed")
	}
}
