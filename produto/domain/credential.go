package domain

// Camada de domínio do pool de credenciais.
//
// Regras e contratos (interfaces/tipos) sem dependência de net/http.

import (
	"errors"
	"fmt"
)

// Credential identifica uma conta no provedor de catálogo upstream.
// Cada credencial tem uma cota diária independente.
type Credential struct {
	// ID é o nome posicional da credencial (ex: "BLUESOFT_TOKEN_1").
	ID string
	// Secret é o valor enviado no header de autenticação do upstream.
	// Nunca deve aparecer completo em logs ou respostas; use Preview.
	Secret string
}

// Preview retorna apenas os últimos caracteres do segredo, para logs e
// para o endpoint de status.
func (c Credential) Preview() string {
	const visible = 6
	if len(c.Secret) <= visible {
		return "..." + c.Secret
	}
	return "..." + c.Secret[len(c.Secret)-visible:]
}

// Pool é o contrato do pool de credenciais com rotação.
//
// A implementação é dona exclusiva do estado de uso: nenhum outro componente
// escreve contadores. Toda operação verifica antes a virada de dia e zera os
// contadores quando o dia do calendário muda.
type Pool interface {
	// Select retorna a primeira credencial, na ordem de configuração, cujo uso
	// está estritamente abaixo do limite diário. Quando nenhuma qualifica,
	// retorna *PoolExhaustedError.
	Select() (Credential, error)

	// RecordUse incrementa o contador de uso da credencial após uma chamada
	// concluída no upstream (sucesso ou not-found).
	RecordUse(id string)

	// MarkExhausted força o uso da credencial ao limite diário. É usado quando
	// o upstream sinaliza throttling mesmo com o contador local abaixo do
	// limite: a visão do upstream sobre a cota é autoritativa.
	MarkExhausted(id string)

	// Snapshot retorna o estado de todas as credenciais, com o segredo mascarado.
	Snapshot() Snapshot

	// Size retorna o número de credenciais configuradas.
	Size() int
}

// CredentialStatus é o estado observável de uma credencial no snapshot.
type CredentialStatus struct {
	ID        string `json:"token_id"`
	Preview   string `json:"token_preview"`
	Used      int    `json:"usado_hoje"`
	Remaining int    `json:"disponivel"`
	Limit     int    `json:"limite"`
	Status    string `json:"status"` // "disponível" ou "esgotado"
}

// SnapshotSummary agrega os totais do pool.
type SnapshotSummary struct {
	TotalCredentials int `json:"total_tokens"`
	TotalUsed        int `json:"total_usado"`
	TotalRemaining   int `json:"total_disponivel"`
	TotalLimit       int `json:"limite_total"`
}

// Snapshot é a visão completa do pool em um instante, segura para expor
// (segredos mascarados).
type Snapshot struct {
	Credentials []CredentialStatus `json:"tokens"`
	Summary     SnapshotSummary    `json:"resumo"`
	LastReset   string             `json:"ultimo_reset"`
	NextReset   string             `json:"proximo_reset"`
}

// Valores de CredentialStatus.Status.
const (
	StatusAvailable = "disponível"
	StatusExhausted = "esgotado"
)

// ErrInvalidCode indica um GTIN malformado. Nenhuma credencial é consumida.
var ErrInvalidCode = errors.New("gtin inválido")

// ErrPoolExhausted indica que todas as credenciais atingiram o limite diário.
var ErrPoolExhausted = errors.New("todas as credenciais esgotadas")

// ErrNotFound indica que o catálogo upstream não conhece o GTIN (404).
// Não é condição de erro para o chamador: vira um resultado negativo válido.
var ErrNotFound = errors.New("produto não encontrado no catálogo")

// ErrThrottled indica throttling do upstream (429). Sinal interno: nunca é
// exposto diretamente ao chamador: vira nova tentativa ou PoolExhaustedError.
var ErrThrottled = errors.New("limite do provedor atingido")

// PoolExhaustedError carrega o snapshot do pool para o chamador decidir se
// espera o reset da meia-noite.
type PoolExhaustedError struct {
	Snapshot Snapshot
}

func (e *PoolExhaustedError) Error() string {
	s := e.Snapshot.Summary
	return fmt.Sprintf(
		"todos os %d tokens esgotaram o limite diário (%d/%d consultas). Próximo reset: %s",
		s.TotalCredentials, s.TotalUsed, s.TotalLimit, e.Snapshot.NextReset,
	)
}

func (e *PoolExhaustedError) Unwrap() error { return ErrPoolExhausted }

// UpstreamError representa uma falha de rede ou um status inesperado do
// catálogo. Não consome uso de credencial e não é retentado aqui: política de
// retry, se houver, pertence ao chamador.
type UpstreamError struct {
	// StatusCode é o status HTTP do upstream, ou 0 em falha de rede.
	StatusCode int
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("erro na consulta ao catálogo (HTTP %d): %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("erro na consulta ao catálogo: %v", e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }
