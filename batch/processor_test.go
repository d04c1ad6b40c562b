package batch

import (
	"context"
	"errors"
	"testing"
	"time"

	"produtos-gateway/produto/domain"
)

type fakeStore struct {
	pending   []PendingProduct
	listErr   error
	adminID   string
	consulted []string
	markErr   error
}

func (f *fakeStore) ListPending(ctx context.Context, limit int) ([]PendingProduct, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	if limit < len(f.pending) {
		return f.pending[:limit], nil
	}
	return f.pending, nil
}

func (f *fakeStore) MarkConsulted(ctx context.Context, id string, result *domain.Product) error {
	if f.markErr != nil {
		return f.markErr
	}
	f.consulted = append(f.consulted, id)
	return nil
}

func (f *fakeStore) AdminID(ctx context.Context) (string, error) {
	return f.adminID, nil
}

type fakeLookup struct {
	calls   int
	results map[string]*domain.Product
	errs    map[string]error
	// timeouts faz as primeiras n chamadas de cada GTIN falharem com timeout
	timeouts map[string]int
	seen     map[string]int
}

func (f *fakeLookup) Lookup(ctx context.Context, gtin string) (*domain.Product, error) {
	f.calls++
	if f.seen == nil {
		f.seen = map[string]int{}
	}
	f.seen[gtin]++
	if n := f.timeouts[gtin]; f.seen[gtin] <= n {
		return nil, context.DeadlineExceeded
	}
	if err, ok := f.errs[gtin]; ok {
		return nil, err
	}
	if p, ok := f.results[gtin]; ok {
		return p, nil
	}
	return domain.NotFound(gtin, ""), nil
}

type fakeQueryLog struct {
	entries []LogEntry
}

func (f *fakeQueryLog) Append(ctx context.Context, entry LogEntry) error {
	f.entries = append(f.entries, entry)
	return nil
}

func pendente(id, gtin string) PendingProduct {
	return PendingProduct{ID: id, GTIN: gtin, Description: "Produto " + id}
}

func silent(string, ...any) {}

func TestProcessorRunCountsOutcomes(t *testing.T) {
	store := &fakeStore{
		pending: []PendingProduct{pendente("1", "7891000100103"), pendente("2", "7891000100104"), pendente("3", "7891000100105")},
		adminID: "admin-1",
	}
	client := &fakeLookup{
		results: map[string]*domain.Product{
			"7891000100103": {Found: true, GTIN: "7891000100103"},
		},
		errs: map[string]error{
			"7891000100105": errors.New("falha de rede"),
		},
	}
	logStore := &fakeQueryLog{}
	proc := &Processor{Store: store, Log: logStore, Client: client, Logf: silent}

	report, err := proc.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Total != 3 || report.Found != 1 || report.NotFound != 1 || report.Errors != 1 {
		t.Fatalf("relatório inesperado: %+v", report)
	}
	if report.RateLimited {
		t.Fatal("RateLimited não deveria estar marcado")
	}
	if len(store.consulted) != 2 {
		t.Fatalf("esperava 2 produtos marcados, veio %d", len(store.consulted))
	}
	if len(logStore.entries) != 2 {
		t.Fatalf("esperava 2 entradas de log, veio %d", len(logStore.entries))
	}
	if logStore.entries[0].AdminID != "admin-1" {
		t.Fatalf("AdminID = %q", logStore.entries[0].AdminID)
	}
}

func TestProcessorStopsWhenPoolExhausted(t *testing.T) {
	store := &fakeStore{
		pending: []PendingProduct{pendente("1", "7891000100103"), pendente("2", "7891000100104"), pendente("3", "7891000100105")},
	}
	client := &fakeLookup{
		results: map[string]*domain.Product{
			"7891000100103": {Found: true, GTIN: "7891000100103"},
		},
		errs: map[string]error{
			"7891000100104": &domain.PoolExhaustedError{},
		},
	}
	proc := &Processor{Store: store, Client: client, Logf: silent}

	report, err := proc.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !report.RateLimited {
		t.Fatal("esperava RateLimited")
	}
	if report.Found != 1 {
		t.Fatalf("Found = %d", report.Found)
	}
	// o terceiro produto nunca deve ser consultado
	if client.seen["7891000100105"] != 0 {
		t.Fatal("processamento não parou no limite diário")
	}
}

func TestProcessorRetriesTimeouts(t *testing.T) {
	store := &fakeStore{pending: []PendingProduct{pendente("1", "7891000100103")}}
	client := &fakeLookup{
		results:  map[string]*domain.Product{"7891000100103": {Found: true, GTIN: "7891000100103"}},
		timeouts: map[string]int{"7891000100103": 2},
	}
	proc := &Processor{Store: store, Client: client, Retries: 3, Backoff: time.Millisecond, Logf: silent}

	report, err := proc.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Found != 1 || report.Errors != 0 {
		t.Fatalf("relatório inesperado: %+v", report)
	}
	if client.calls != 3 {
		t.Fatalf("esperava 3 tentativas, veio %d", client.calls)
	}
}

func TestProcessorGivesUpAfterRetries(t *testing.T) {
	store := &fakeStore{pending: []PendingProduct{pendente("1", "7891000100103")}}
	client := &fakeLookup{timeouts: map[string]int{"7891000100103": 10}}
	proc := &Processor{Store: store, Client: client, Retries: 2, Backoff: time.Millisecond, Logf: silent}

	report, err := proc.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Errors != 1 {
		t.Fatalf("Errors = %d", report.Errors)
	}
	if client.calls != 2 {
		t.Fatalf("esperava 2 tentativas, veio %d", client.calls)
	}
}

func TestProcessorDryRunSkipsWrites(t *testing.T) {
	store := &fakeStore{pending: []PendingProduct{pendente("1", "7891000100103")}}
	client := &fakeLookup{
		results: map[string]*domain.Product{"7891000100103": {Found: true, GTIN: "7891000100103"}},
	}
	logStore := &fakeQueryLog{}
	proc := &Processor{Store: store, Log: logStore, Client: client, DryRun: true, Logf: silent}

	report, err := proc.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Found != 1 {
		t.Fatalf("Found = %d", report.Found)
	}
	if len(store.consulted) != 0 {
		t.Fatal("dry-run não deveria marcar produtos")
	}
	if len(logStore.entries) != 0 {
		t.Fatal("dry-run não deveria gravar log")
	}
}

func TestProcessorListErrorAborts(t *testing.T) {
	store := &fakeStore{listErr: errors.New("supabase fora do ar")}
	proc := &Processor{Store: store, Client: &fakeLookup{}, Logf: silent}

	if _, err := proc.Run(context.Background()); err == nil {
		t.Fatal("esperava erro")
	}
}

func TestProcessorEmptyPending(t *testing.T) {
	store := &fakeStore{}
	proc := &Processor{Store: store, Client: &fakeLookup{}, Logf: silent}

	report, err := proc.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Total != 0 {
		t.Fatalf("Total = %d", report.Total)
	}
}
