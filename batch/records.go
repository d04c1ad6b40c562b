package batch

import (
	"context"
	"encoding/json"

	"produtos-gateway/produto/domain"
)

// PendingProduct é um produto aguardando consulta no catálogo.
type PendingProduct struct {
	ID          string `json:"id"`
	GTIN        string `json:"ean_gtin"`
	Description string `json:"descricao"`
	CreatedAt   string `json:"created_at"`
}

// RecordStore é o contrato com o banco de produtos: leitura filtrada e
// atualização condicional por identificador. A implementação concreta fala
// PostgREST com o Supabase.
type RecordStore interface {
	// ListPending retorna até limit produtos pendentes, mais antigos primeiro.
	ListPending(ctx context.Context, limit int) ([]PendingProduct, error)
	// MarkConsulted grava o resultado da consulta e muda o status do registro.
	MarkConsulted(ctx context.Context, id string, result *domain.Product) error
	// AdminID descobre o identificador de um admin para atribuir os logs.
	AdminID(ctx context.Context) (string, error)
}

// LogEntry é uma linha do log de consultas (append-only).
type LogEntry struct {
	AdminID   string          `json:"admin_id"`
	ProductID string          `json:"produto_id"`
	GTIN      string          `json:"ean_gtin"`
	Success   bool            `json:"sucesso"`
	ElapsedMS int64           `json:"tempo_resposta_ms"`
	Response  json.RawMessage `json:"resposta_api"`
	ErrorMsg  *string         `json:"erro_mensagem"`
}

// QueryLog é a estratégia de persistência do log de consultas.
// Implementações: Supabase (produção) e SQLite (execuções locais).
type QueryLog interface {
	Append(ctx context.Context, e LogEntry) error
}
