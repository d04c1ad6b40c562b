package produto

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"produtos-gateway/produto/application"
	"produtos-gateway/produto/domain"
)

// Version é a versão pública anunciada no endpoint raiz.
const Version = "2.0.0"

// HandlerOptions configura o adapter HTTP da API.
type HandlerOptions struct {
	Service application.Service
	// Token é o segredo compartilhado exigido na consulta de produtos.
	// No endpoint de status a autenticação é opcional, mas verificada
	// quando enviada.
	Token string
}

type handler struct {
	svc   application.Service
	token string
}

// NewHandler monta as rotas da API:
//
//	GET /                      informações do serviço
//	GET /health                health check
//	GET /api/status/tokens     snapshot do pool de credenciais
//	GET /api/produtos/{gtin}   consulta de produto (Bearer obrigatório)
func NewHandler(opts HandlerOptions) http.Handler {
	h := &handler{svc: opts.Service, token: opts.Token}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", h.home)
	mux.HandleFunc("GET /health", h.health)
	mux.HandleFunc("GET /api/status/tokens", h.statusTokens)
	mux.HandleFunc("GET /api/produtos/{gtin}", h.consultarProduto)
	mux.HandleFunc("/", h.notFound)
	return mux
}

// errorBody é o corpo padrão de erro da API.
type errorBody struct {
	Erro     string `json:"erro"`
	Mensagem string `json:"mensagem"`
	GTIN     string `json:"ean_gtin,omitempty"`
}

func (h *handler) consultarProduto(w http.ResponseWriter, r *http.Request) {
	token, ok := bearerToken(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorBody{
			Erro:     "Token de autorização não fornecido",
			Mensagem: "Use: Authorization: Bearer {token}",
		})
		return
	}
	if token != h.token {
		writeJSON(w, http.StatusUnauthorized, errorBody{
			Erro:     "Token inválido",
			Mensagem: "Token de autorização não autorizado",
		})
		return
	}

	gtin := r.PathValue("gtin")
	prod, err := h.svc.Lookup(r.Context(), gtin)

	var exhausted *domain.PoolExhaustedError
	switch {
	case errors.Is(err, domain.ErrInvalidCode):
		writeJSON(w, http.StatusBadRequest, errorBody{
			Erro:     "GTIN inválido",
			Mensagem: err.Error(),
			GTIN:     gtin,
		})

	case errors.As(err, &exhausted):
		// inclui o snapshot para o chamador decidir se espera o reset
		writeJSON(w, http.StatusTooManyRequests, struct {
			errorBody
			StatusTokens domain.Snapshot `json:"status_tokens"`
		}{
			errorBody: errorBody{
				Erro:     "Limite de consultas atingido",
				Mensagem: exhausted.Error(),
				GTIN:     gtin,
			},
			StatusTokens: exhausted.Snapshot,
		})

	case err != nil:
		writeJSON(w, http.StatusInternalServerError, errorBody{
			Erro:     "Erro na consulta",
			Mensagem: err.Error(),
			GTIN:     gtin,
		})

	case !prod.Found:
		// resultado negativo válido: 200, não 404
		writeJSON(w, http.StatusOK, struct {
			Found    bool   `json:"encontrado"`
			GTIN     string `json:"ean_gtin"`
			Mensagem string `json:"mensagem"`
		}{false, prod.GTIN, prod.Message})

	default:
		writeJSON(w, http.StatusOK, prod)
	}
}

func (h *handler) statusTokens(w http.ResponseWriter, r *http.Request) {
	// autenticação opcional: só rejeita quando um Bearer errado foi enviado
	if token, ok := bearerToken(r); ok && token != h.token {
		writeJSON(w, http.StatusUnauthorized, errorBody{
			Erro:     "Token inválido",
			Mensagem: "Token de autorização não autorizado",
		})
		return
	}
	writeJSON(w, http.StatusOK, h.svc.Status())
}

func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	snap := h.svc.Status()
	writeJSON(w, http.StatusOK, struct {
		Status    string `json:"status"`
		Timestamp string `json:"timestamp"`
		Available int    `json:"tokens_disponiveis"`
		Limit     int    `json:"limite_total"`
	}{
		Status:    "healthy",
		Timestamp: time.Now().Format(time.RFC3339),
		Available: snap.Summary.TotalRemaining,
		Limit:     snap.Summary.TotalLimit,
	})
}

func (h *handler) home(w http.ResponseWriter, r *http.Request) {
	snap := h.svc.Status()
	writeJSON(w, http.StatusOK, struct {
		Nome      string            `json:"nome"`
		Versao    string            `json:"versao"`
		Status    string            `json:"status"`
		Tokens    int               `json:"tokens_configurados"`
		Endpoints map[string]string `json:"endpoints"`
	}{
		Nome:   "API de Consulta de Produtos",
		Versao: Version + " (com rotação de tokens)",
		Status: "online",
		Tokens: snap.Summary.TotalCredentials,
		Endpoints: map[string]string{
			"consulta_produto": "GET /api/produtos/{gtin}",
			"status_tokens":    "GET /api/status/tokens",
			"health_check":     "GET /health",
		},
	})
}

func (h *handler) notFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, errorBody{
		Erro:     "Endpoint não encontrado",
		Mensagem: "Verifique a URL e tente novamente",
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
