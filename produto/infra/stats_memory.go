package infra

import (
	"context"
	"sync"

	"produtos-gateway/produto/domain"
)

// MemoryStatsStore é uma implementação simples em memória de domain.StatsStore.
// Útil para testes e desenvolvimento.
//
// Não faz expiração e não é indicada para produção.
type MemoryStatsStore struct {
	mu           sync.Mutex
	byOutcome    map[domain.Outcome]int64
	byCredential map[string]int64
}

func NewMemoryStatsStore() *MemoryStatsStore {
	return &MemoryStatsStore{
		byOutcome:    make(map[domain.Outcome]int64),
		byCredential: make(map[string]int64),
	}
}

func (s *MemoryStatsStore) Record(_ context.Context, ev domain.LookupEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.byOutcome[ev.Outcome]++
	if ev.Credential != "" {
		s.byCredential[ev.Credential]++
	}
	return nil
}

// ByOutcome retorna uma cópia dos contadores por desfecho.
func (s *MemoryStatsStore) ByOutcome() map[domain.Outcome]int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[domain.Outcome]int64, len(s.byOutcome))
	for k, v := range s.byOutcome {
		out[k] = v
	}
	return out
}

// ByCredential retorna uma cópia dos contadores por credencial.
func (s *MemoryStatsStore) ByCredential() map[string]int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]int64, len(s.byCredential))
	for k, v := range s.byCredential {
		out[k] = v
	}
	return out
}
