package infra

import (
	"fmt"
	"sync"
	"time"

	"produtos-gateway/produto/domain"
)

// Pool é a implementação em memória de domain.Pool.
//
// Um único mutex protege todo o estado do pool. As operações são baratas
// comparadas à latência da chamada de rede ao catálogo, então lock por
// credencial não compensa, e a chamada de rede nunca acontece segurando
// este lock.
//
// O estado vive apenas durante o processo: não há persistência entre
// restarts, e o reset é puramente preguiçoso (avaliado no próximo acesso
// após a meia-noite, sem timer em background).
type Pool struct {
	mu           sync.Mutex
	entries      []*poolEntry
	limit        int
	lastResetDay int
	now          func() time.Time
}

type poolEntry struct {
	cred domain.Credential
	used int
}

type PoolOption func(*Pool)

// WithClock injeta o relógio usado na detecção de virada de dia. Útil em testes.
func WithClock(now func() time.Time) PoolOption {
	return func(p *Pool) { p.now = now }
}

// NewPool cria o pool com a lista ordenada de credenciais e o limite diário
// por credencial. A ordem é fixada na configuração e nunca reordenada, para
// que a atribuição de credenciais seja determinística e reproduzível.
func NewPool(creds []domain.Credential, dailyLimit int, opts ...PoolOption) *Pool {
	p := &Pool{limit: dailyLimit, now: time.Now}
	for _, c := range creds {
		p.entries = append(p.entries, &poolEntry{cred: c})
	}
	for _, opt := range opts {
		opt(p)
	}
	p.lastResetDay = p.now().Day()
	return p
}

// resetIfNewDay zera todos os contadores quando o dia do calendário muda.
// Idempotente dentro do mesmo dia. Deve ser chamado com o lock adquirido,
// antes de qualquer leitura do estado; senão uma consulta logo após a
// meia-noite enxergaria flags de esgotamento do dia anterior.
func (p *Pool) resetIfNewDay() {
	day := p.now().Day()
	if day == p.lastResetDay {
		return
	}
	for _, e := range p.entries {
		e.used = 0
	}
	p.lastResetDay = day
}

// Select implementa domain.Pool: primeira credencial, na ordem de
// configuração, com uso estritamente abaixo do limite diário.
func (p *Pool) Select() (domain.Credential, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.resetIfNewDay()

	for _, e := range p.entries {
		if e.used < p.limit {
			return e.cred, nil
		}
	}
	return domain.Credential{}, &domain.PoolExhaustedError{Snapshot: p.snapshotLocked()}
}

// RecordUse incrementa o contador da credencial.
func (p *Pool) RecordUse(id string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.resetIfNewDay()

	if e := p.find(id); e != nil {
		e.used++
	}
}

// MarkExhausted força o uso ao limite diário, mesmo que o contador local
// estivesse abaixo dele.
func (p *Pool) MarkExhausted(id string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.resetIfNewDay()

	if e := p.find(id); e != nil && e.used < p.limit {
		e.used = p.limit
	}
}

// Snapshot retorna o estado de todas as credenciais com segredos mascarados.
func (p *Pool) Snapshot() domain.Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.resetIfNewDay()
	return p.snapshotLocked()
}

// Size retorna o número de credenciais configuradas (imutável após a criação).
func (p *Pool) Size() int { return len(p.entries) }

func (p *Pool) find(id string) *poolEntry {
	for _, e := range p.entries {
		if e.cred.ID == id {
			return e
		}
	}
	return nil
}

func (p *Pool) snapshotLocked() domain.Snapshot {
	snap := domain.Snapshot{
		LastReset: fmt.Sprintf("Dia %d", p.lastResetDay),
		NextReset: "00:00 (meia-noite)",
	}

	for _, e := range p.entries {
		remaining := p.limit - e.used
		if remaining < 0 {
			remaining = 0
		}
		status := domain.StatusAvailable
		if remaining == 0 {
			status = domain.StatusExhausted
		}
		snap.Credentials = append(snap.Credentials, domain.CredentialStatus{
			ID:        e.cred.ID,
			Preview:   e.cred.Preview(),
			Used:      e.used,
			Remaining: remaining,
			Limit:     p.limit,
			Status:    status,
		})
		snap.Summary.TotalUsed += e.used
		snap.Summary.TotalRemaining += remaining
	}
	snap.Summary.TotalCredentials = len(p.entries)
	snap.Summary.TotalLimit = len(p.entries) * p.limit
	return snap
}
