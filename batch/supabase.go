package batch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"produtos-gateway/produto/domain"
)

// zeroUUID é o admin genérico usado quando nenhum admin é encontrado.
const zeroUUID = "00000000-0000-0000-0000-000000000000"

// SupabaseStore fala PostgREST com o Supabase. Implementa RecordStore e
// QueryLog: leitura filtrada de produtos_em_analise, patch por id e append
// em log_consultas_api.
type SupabaseStore struct {
	baseURL    string
	serviceKey string
	httpc      *http.Client
}

type SupabaseOption func(*SupabaseStore)

func WithSupabaseHTTP(c *http.Client) SupabaseOption {
	return func(s *SupabaseStore) { s.httpc = c }
}

func NewSupabaseStore(baseURL, serviceKey string, opts ...SupabaseOption) *SupabaseStore {
	s := &SupabaseStore{
		baseURL:    strings.TrimRight(baseURL, "/"),
		serviceKey: serviceKey,
		httpc:      &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ListPending implementa RecordStore: produtos com status pendente ou
// acao_manual, mais antigos primeiro.
func (s *SupabaseStore) ListPending(ctx context.Context, limit int) ([]PendingProduct, error) {
	q := url.Values{}
	q.Set("status", "in.(pendente,acao_manual)")
	q.Set("order", "created_at.asc")
	q.Set("limit", strconv.Itoa(limit))
	q.Set("select", "id,ean_gtin,descricao,created_at")

	var out []PendingProduct
	if err := s.do(ctx, http.MethodGet, "/rest/v1/produtos_em_analise", q, nil, &out); err != nil {
		return nil, fmt.Errorf("buscando produtos pendentes: %w", err)
	}
	return out, nil
}

// MarkConsulted implementa RecordStore: patch por identificador.
func (s *SupabaseStore) MarkConsulted(ctx context.Context, id string, result *domain.Product) error {
	q := url.Values{}
	q.Set("id", "eq."+id)

	now := time.Now().UTC().Format(time.RFC3339)
	payload := map[string]any{
		"dados_api":     result,
		"consultado_em": now,
		"status":        "consultado",
		"updated_at":    now,
	}
	if err := s.do(ctx, http.MethodPatch, "/rest/v1/produtos_em_analise", q, payload, nil); err != nil {
		return fmt.Errorf("atualizando produto %s: %w", id, err)
	}
	return nil
}

// AdminID implementa RecordStore: primeiro usuário com role admin, com
// fallback para o UUID zero quando não há admin cadastrado.
func (s *SupabaseStore) AdminID(ctx context.Context) (string, error) {
	q := url.Values{}
	q.Set("role", "eq.admin")
	q.Set("limit", "1")
	q.Set("select", "id")

	var out []struct {
		ID string `json:"id"`
	}
	if err := s.do(ctx, http.MethodGet, "/rest/v1/usuarios", q, nil, &out); err != nil {
		return zeroUUID, fmt.Errorf("buscando admin: %w", err)
	}
	if len(out) == 0 {
		return zeroUUID, nil
	}
	return out[0].ID, nil
}

// Append implementa QueryLog.
func (s *SupabaseStore) Append(ctx context.Context, e LogEntry) error {
	if err := s.do(ctx, http.MethodPost, "/rest/v1/log_consultas_api", nil, e, nil); err != nil {
		return fmt.Errorf("registrando log de %s: %w", e.GTIN, err)
	}
	return nil
}

func (s *SupabaseStore) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	endpoint := s.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return err
	}
	req.Header.Set("apikey", s.serviceKey)
	req.Header.Set("Authorization", "Bearer "+s.serviceKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Prefer", "return=representation")

	resp, err := s.httpc.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("supabase respondeu HTTP %d", resp.StatusCode)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<20))
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decodificando resposta do supabase: %w", err)
	}
	return nil
}
