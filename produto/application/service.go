package application

import (
	"context"
	"errors"
	"time"

	"produtos-gateway/produto/domain"
)

// Service é o motor de despacho: concentra a regra de consulta com rotação
// de credenciais. Ele não sabe nada sobre HTTP (headers/status), apenas
// orquestra pool + catálogo e devolve o registro canônico ou um erro.
type Service struct {
	Pool    domain.Pool
	Catalog domain.Catalog
	// Stats é opcional e best-effort: falha de estatística nunca derruba a consulta.
	Stats domain.StatsStore
}

// Lookup consulta um GTIN no catálogo upstream.
//
// Regras, nesta ordem:
//  1. código malformado falha antes de tocar o pool;
//  2. sem credencial disponível, retorna *PoolExhaustedError com snapshot;
//  3. throttling do upstream marca a credencial como esgotada e rotaciona para
//     a próxima, no máximo uma tentativa por credencial;
//  4. not-found consome uso (a chamada tecnicamente funcionou) e não rotaciona;
//  5. qualquer outro erro do upstream não consome uso e não é retentado aqui;
//  6. sucesso consome uso e normaliza o payload.
func (s Service) Lookup(ctx context.Context, code string) (*domain.Product, error) {
	if err := domain.ValidateGTIN(code); err != nil {
		s.record(ctx, code, domain.OutcomeInvalidCode, "")
		return nil, err
	}

	for attempt := 0; attempt < s.Pool.Size(); attempt++ {
		cred, err := s.Pool.Select()
		if err != nil {
			s.record(ctx, code, domain.OutcomeExhausted, "")
			return nil, err
		}

		// a chamada de rede acontece fora de qualquer lock do pool
		payload, err := s.Catalog.Fetch(ctx, code, cred)
		switch {
		case errors.Is(err, domain.ErrThrottled):
			// a visão do upstream sobre a cota é autoritativa, mesmo com o
			// contador local abaixo do limite
			s.Pool.MarkExhausted(cred.ID)
			s.record(ctx, code, domain.OutcomeThrottled, cred.ID)
			continue

		case errors.Is(err, domain.ErrNotFound):
			s.Pool.RecordUse(cred.ID)
			s.record(ctx, code, domain.OutcomeNotFound, cred.ID)
			return domain.NotFound(code, ""), nil

		case err != nil:
			s.record(ctx, code, domain.OutcomeUpstreamError, cred.ID)
			return nil, err
		}

		s.Pool.RecordUse(cred.ID)
		s.record(ctx, code, domain.OutcomeFound, cred.ID)
		return domain.Normalize(code, payload), nil
	}

	// todas as credenciais foram esgotadas dentro desta mesma consulta
	// (ou o pool está vazio desde o início)
	s.record(ctx, code, domain.OutcomeExhausted, "")
	return nil, &domain.PoolExhaustedError{Snapshot: s.Pool.Snapshot()}
}

// Status retorna o snapshot do pool para os endpoints de monitoramento.
func (s Service) Status() domain.Snapshot {
	return s.Pool.Snapshot()
}

func (s Service) record(ctx context.Context, code string, outcome domain.Outcome, credID string) {
	if s.Stats == nil {
		return
	}
	_ = s.Stats.Record(ctx, domain.LookupEvent{
		Code:       code,
		Outcome:    outcome,
		Credential: credID,
		At:         time.Now(),
	})
}
