package batch

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net"
	"time"

	"golang.org/x/time/rate"

	"produtos-gateway/produto/domain"
)

// LookupClient é o que o processador precisa da API do gateway.
type LookupClient interface {
	Lookup(ctx context.Context, gtin string) (*domain.Product, error)
}

// Processor percorre os produtos pendentes e consulta cada um no gateway.
//
// Política de erros, do ponto de vista de chamador da API:
//   - pool esgotado (429) interrompe a execução inteira: não adianta insistir
//     antes do reset da meia-noite;
//   - timeout é retentado com espera escalonada (cold start do gateway);
//   - outros erros contam no relatório e seguem para o próximo produto.
type Processor struct {
	Store  RecordStore
	Log    QueryLog // opcional
	Client LookupClient

	// Pacer espaça as consultas para não sobrecarregar o gateway. Opcional.
	Pacer *rate.Limiter

	// Limit é o máximo de produtos por execução.
	Limit int
	// Retries é o total de tentativas por produto em caso de timeout.
	Retries int
	// Backoff é a base da espera escalonada: a tentativa n espera n*Backoff.
	Backoff time.Duration
	// DryRun pula todas as escritas (banco e log).
	DryRun bool

	// Logf permite capturar o log nos testes. Padrão: log.Printf.
	Logf func(format string, args ...any)
}

// Report resume uma execução do lote.
type Report struct {
	Total       int
	Found       int
	NotFound    int
	Errors      int
	RateLimited bool
	Elapsed     time.Duration
}

// Run processa os produtos pendentes e retorna o relatório.
// Erro só é retornado quando a execução nem chega a começar (falha ao listar
// os pendentes); falhas por produto ficam no relatório.
func (p *Processor) Run(ctx context.Context) (Report, error) {
	logf := p.Logf
	if logf == nil {
		logf = log.Printf
	}
	start := time.Now()

	products, err := p.Store.ListPending(ctx, p.limit())
	if err != nil {
		return Report{}, err
	}
	logf("encontrados %d produtos para processar", len(products))

	report := Report{Total: len(products)}
	if len(products) == 0 {
		report.Elapsed = time.Since(start)
		return report, nil
	}

	adminID, err := p.Store.AdminID(ctx)
	if err != nil {
		// segue com o ID genérico: o log vale mais que a atribuição
		logf("aviso: %v", err)
	}

	for i, prod := range products {
		if err := p.pace(ctx); err != nil {
			report.Elapsed = time.Since(start)
			return report, err
		}

		logf("[%d/%d] processando %s", i+1, report.Total, prod.GTIN)

		attemptStart := time.Now()
		result, err := p.lookupWithRetry(ctx, prod.GTIN, logf)
		elapsed := time.Since(attemptStart)

		if errors.Is(err, domain.ErrPoolExhausted) {
			// limite diário atingido: interrompe o processamento
			logf("limite diário atingido, interrompendo")
			report.RateLimited = true
			break
		}
		if err != nil {
			logf("erro consultando %s: %v", prod.GTIN, err)
			report.Errors++
			continue
		}

		if result.Found {
			report.Found++
		} else {
			report.NotFound++
		}

		if p.DryRun {
			continue
		}
		if err := p.Store.MarkConsulted(ctx, prod.ID, result); err != nil {
			logf("erro atualizando %s: %v", prod.GTIN, err)
			report.Errors++
			continue
		}
		p.appendLog(ctx, adminID, prod, result, elapsed, logf)
	}

	report.Elapsed = time.Since(start)
	return report, nil
}

// lookupWithRetry retenta apenas timeouts: o gateway hospedado hiberna e a
// primeira resposta pode demorar mais que o timeout do cliente.
func (p *Processor) lookupWithRetry(ctx context.Context, gtin string, logf func(string, ...any)) (*domain.Product, error) {
	retries := p.Retries
	if retries < 1 {
		retries = 1
	}

	var lastErr error
	for attempt := 1; attempt <= retries; attempt++ {
		result, err := p.Client.Lookup(ctx, gtin)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if !isTimeout(err) || attempt == retries {
			return nil, err
		}

		delay := time.Duration(attempt) * p.backoff()
		logf("timeout (tentativa %d/%d), aguardando %s", attempt, retries, delay)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}
	return nil, lastErr
}

func (p *Processor) appendLog(ctx context.Context, adminID string, prod PendingProduct, result *domain.Product, elapsed time.Duration, logf func(string, ...any)) {
	if p.Log == nil {
		return
	}

	raw, err := json.Marshal(result)
	if err != nil {
		raw = []byte("null")
	}
	entry := LogEntry{
		AdminID:   adminID,
		ProductID: prod.ID,
		GTIN:      prod.GTIN,
		Success:   result.Found,
		ElapsedMS: elapsed.Milliseconds(),
		Response:  raw,
	}
	if !result.Found {
		entry.ErrorMsg = &result.Message
	}
	if err := p.Log.Append(ctx, entry); err != nil {
		// best-effort: falha de log não interrompe o lote
		logf("aviso: %v", err)
	}
}

func (p *Processor) pace(ctx context.Context) error {
	if p.Pacer == nil {
		return nil
	}
	return p.Pacer.Wait(ctx)
}

func (p *Processor) limit() int {
	if p.Limit <= 0 {
		return 100
	}
	return p.Limit
}

func (p *Processor) backoff() time.Duration {
	if p.Backoff <= 0 {
		return 5 * time.Second
	}
	return p.Backoff
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
