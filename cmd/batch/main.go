package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"golang.org/x/time/rate"

	"produtos-gateway/batch"
	"produtos-gateway/produto"
)

func main() {
	cfg, err := readConfig()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	store := batch.NewSupabaseStore(cfg.supabaseURL, cfg.supabaseKey)

	var queryLog batch.QueryLog = store
	var sqliteLog *batch.SQLiteLog
	if cfg.sqlitePath != "" {
		sqliteLog, err = batch.NewSQLiteLog(cfg.sqlitePath)
		if err != nil {
			log.Fatalf("sqlite error: %v", err)
		}
		defer func() { _ = sqliteLog.Close() }()
		queryLog = sqliteLog
	}

	proc := &batch.Processor{
		Store:   store,
		Log:     queryLog,
		Client:  produto.NewClient(cfg.apiURL, cfg.apiToken),
		Pacer:   rate.NewLimiter(rate.Every(cfg.interval), 1),
		Limit:   cfg.limit,
		Retries: cfg.retries,
		Backoff: cfg.backoff,
		DryRun:  cfg.dryRun,
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if cfg.dryRun {
		log.Printf("MODO TESTE: nenhuma escrita será feita")
	}
	log.Printf("lote: api=%q limite=%d intervalo=%s tentativas=%d", cfg.apiURL, cfg.limit, cfg.interval, cfg.retries)

	report, err := proc.Run(ctx)
	if err != nil {
		log.Fatalf("erro no processamento: %v", err)
	}

	log.Printf("=== RELATÓRIO ===")
	log.Printf("total:           %d", report.Total)
	log.Printf("encontrados:     %d", report.Found)
	log.Printf("não encontrados: %d", report.NotFound)
	log.Printf("erros:           %d", report.Errors)
	log.Printf("tempo total:     %s", report.Elapsed.Round(time.Millisecond))
	if report.RateLimited {
		log.Printf("execução interrompida: limite diário dos tokens atingido")
	}

	// erro vence só quando suplanta o que deu certo
	if report.Errors > report.Found+report.NotFound {
		os.Exit(1)
	}
}

type config struct {
	supabaseURL string
	supabaseKey string
	apiURL      string
	apiToken    string
	sqlitePath  string

	limit    int
	retries  int
	backoff  time.Duration
	interval time.Duration
	dryRun   bool
}

func readConfig() (config, error) {
	cfg := config{}
	cfg.supabaseURL = os.Getenv("SUPABASE_URL")
	cfg.supabaseKey = os.Getenv("SUPABASE_SERVICE_KEY")
	cfg.apiURL = getenvDefault("API_URL", "http://localhost:5000")
	cfg.apiToken = os.Getenv("API_TOKEN")
	cfg.sqlitePath = os.Getenv("LOG_SQLITE_PATH")

	cfg.limit = getenvIntDefault("LIMITE_PRODUTOS", 100)
	cfg.retries = getenvIntDefault("TENTATIVAS", 3)
	cfg.backoff = getenvDurationDefault("ESPERA_RETRY", 5*time.Second)
	cfg.interval = getenvDurationDefault("INTERVALO_CONSULTAS", 500*time.Millisecond)
	cfg.dryRun = getenvBoolDefault("MODO_TESTE", false)

	if cfg.supabaseURL == "" || cfg.supabaseKey == "" {
		return config{}, errors.New("SUPABASE_URL and SUPABASE_SERVICE_KEY are required")
	}
	if cfg.apiToken == "" {
		return config{}, errors.New("API_TOKEN is required")
	}
	if cfg.limit <= 0 {
		return config{}, errors.New("LIMITE_PRODUTOS must be > 0")
	}
	return cfg, nil
}

func getenvDefault(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getenvIntDefault(k string, def int) int {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

func getenvBoolDefault(k string, def bool) bool {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func getenvDurationDefault(k string, def time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
