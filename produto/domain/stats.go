package domain

import (
	"context"
	"time"
)

// Outcome classifica o desfecho de uma consulta para fins de estatística.
type Outcome string

const (
	OutcomeFound         Outcome = "found"
	OutcomeNotFound      Outcome = "not_found"
	OutcomeThrottled     Outcome = "throttled"
	OutcomeExhausted     Outcome = "exhausted"
	OutcomeUpstreamError Outcome = "upstream_error"
	OutcomeInvalidCode   Outcome = "invalid_code"
)

// LookupEvent representa uma consulta processada pelo motor de despacho.
//
// Credential é o ID da credencial envolvida, ou vazio quando nenhuma foi
// tocada (código inválido, pool esgotado antes de qualquer chamada).
type LookupEvent struct {
	Code       string
	Outcome    Outcome
	Credential string
	At         time.Time
}

// StatsStore é a estratégia de persistência para estatísticas de consulta.
//
// Implementações podem armazenar em Redis, memória, etc. O chamador deve
// tratar erro como best-effort (não derrubar a consulta por falha de estatística).
type StatsStore interface {
	Record(ctx context.Context, ev LookupEvent) error
}
