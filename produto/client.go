package produto

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"produtos-gateway/produto/domain"
)

// Client é o cliente HTTP da própria API do gateway. É usado pelo
// processamento em lote, que fala com a API pela rede em vez de chamar o
// motor de despacho diretamente.
type Client struct {
	baseURL string
	token   string
	httpc   *http.Client
}

type ClientOption func(*Client)

// WithClientHTTP substitui o cliente HTTP. O timeout padrão é generoso
// porque o gateway pode estar em cold start.
func WithClientHTTP(c *http.Client) ClientOption {
	return func(cl *Client) { cl.httpc = c }
}

func NewClient(baseURL, token string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		httpc:   &http.Client{Timeout: 60 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Lookup consulta um produto pela API do gateway.
//
// Tradução de respostas:
//   - 200 -> *domain.Product (encontrado ou não)
//   - 400 -> erro embrulhando domain.ErrInvalidCode
//   - 429 -> *domain.PoolExhaustedError com o snapshot devolvido no corpo
//   - resto -> *domain.UpstreamError
//
// Erros de rede (timeout incluso) são retornados como estão, para o chamador
// aplicar a própria política de retry.
func (c *Client) Lookup(ctx context.Context, gtin string) (*domain.Product, error) {
	status, body, err := c.get(ctx, "/api/produtos/"+gtin)
	if err != nil {
		return nil, err
	}

	switch status {
	case http.StatusOK:
		var prod domain.Product
		if err := json.Unmarshal(body, &prod); err != nil {
			return nil, fmt.Errorf("decodificando resposta da API: %w", err)
		}
		return &prod, nil

	case http.StatusBadRequest:
		return nil, fmt.Errorf("%w: gtin %q rejeitado pela API", domain.ErrInvalidCode, gtin)

	case http.StatusTooManyRequests:
		var out struct {
			StatusTokens domain.Snapshot `json:"status_tokens"`
		}
		// corpo ilegível ainda é um pool esgotado; segue com snapshot vazio
		_ = json.Unmarshal(body, &out)
		return nil, &domain.PoolExhaustedError{Snapshot: out.StatusTokens}

	default:
		return nil, &domain.UpstreamError{
			StatusCode: status,
			Err:        fmt.Errorf("status inesperado da API de produtos"),
		}
	}
}

// Status retorna o snapshot do pool de credenciais do gateway.
func (c *Client) Status(ctx context.Context) (domain.Snapshot, error) {
	status, body, err := c.get(ctx, "/api/status/tokens")
	if err != nil {
		return domain.Snapshot{}, err
	}
	if status != http.StatusOK {
		return domain.Snapshot{}, &domain.UpstreamError{
			StatusCode: status,
			Err:        fmt.Errorf("status inesperado consultando tokens"),
		}
	}
	var snap domain.Snapshot
	if err := json.Unmarshal(body, &snap); err != nil {
		return domain.Snapshot{}, fmt.Errorf("decodificando snapshot: %w", err)
	}
	return snap, nil
}

func (c *Client) get(ctx context.Context, path string) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("lendo resposta da API: %w", err)
	}
	return resp.StatusCode, body, nil
}
