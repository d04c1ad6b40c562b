package infra

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"produtos-gateway/produto/domain"
)

// Valores padrão do cliente Cosmos. O timeout é generoso de propósito: o
// upstream pode estar em cold start e levar dezenas de segundos na primeira
// resposta.
const (
	DefaultCosmosBaseURL = "https://api.cosmos.bluesoft.com.br"
	DefaultCosmosTimeout = 30 * time.Second
	defaultUserAgent     = "Ciclik-API-v1.0"
)

// CosmosClient implementa domain.Catalog contra a API Cosmos Bluesoft:
// GET {base}/gtins/{gtin}.json com a credencial no header X-Cosmos-Token.
type CosmosClient struct {
	baseURL   string
	userAgent string
	httpc     *http.Client
}

type CosmosOption func(*CosmosClient)

// WithHTTPClient substitui o cliente HTTP (timeout incluso).
func WithHTTPClient(c *http.Client) CosmosOption {
	return func(cc *CosmosClient) { cc.httpc = c }
}

// WithUserAgent substitui o header identificador enviado ao provedor.
func WithUserAgent(ua string) CosmosOption {
	return func(cc *CosmosClient) { cc.userAgent = ua }
}

func NewCosmosClient(baseURL string, opts ...CosmosOption) *CosmosClient {
	if baseURL == "" {
		baseURL = DefaultCosmosBaseURL
	}
	c := &CosmosClient{
		baseURL:   strings.TrimRight(baseURL, "/"),
		userAgent: defaultUserAgent,
		httpc:     &http.Client{Timeout: DefaultCosmosTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fetch consulta um GTIN com a credencial dada.
//
// Tradução de status:
//   - 200 -> payload decodificado
//   - 404 -> domain.ErrNotFound
//   - 429 -> domain.ErrThrottled
//   - resto -> *domain.UpstreamError
func (c *CosmosClient) Fetch(ctx context.Context, code string, cred domain.Credential) (*domain.Payload, error) {
	endpoint := fmt.Sprintf("%s/gtins/%s.json", c.baseURL, url.PathEscape(code))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &domain.UpstreamError{Err: err}
	}
	req.Header.Set("X-Cosmos-Token", cred.Secret)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, &domain.UpstreamError{Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	switch resp.StatusCode {
	case http.StatusOK:
		var payload domain.Payload
		if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
			return nil, &domain.UpstreamError{
				StatusCode: resp.StatusCode,
				Err:        fmt.Errorf("decodificando resposta: %w", err),
			}
		}
		return &payload, nil

	case http.StatusNotFound:
		return nil, domain.ErrNotFound

	case http.StatusTooManyRequests:
		return nil, domain.ErrThrottled

	default:
		// descarta o corpo para reaproveitar a conexão
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, &domain.UpstreamError{
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("status inesperado do catálogo: %s", resp.Status),
		}
	}
}
