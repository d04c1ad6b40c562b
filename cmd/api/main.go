package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"produtos-gateway/produto"
	"produtos-gateway/produto/application"
	"produtos-gateway/produto/domain"
	"produtos-gateway/produto/infra"
)

func main() {
	cfg, err := readConfig()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	pool := infra.NewPool(cfg.credentials, cfg.dailyLimit)
	if pool.Size() == 0 {
		log.Printf("AVISO: nenhum token Cosmos configurado (BLUESOFT_TOKEN_1..4 ou COSMOS_TOKEN); todas as consultas retornarão 429")
	}

	catalog := infra.NewCosmosClient(cfg.cosmosBaseURL,
		infra.WithHTTPClient(&http.Client{Timeout: cfg.cosmosTimeout}),
	)

	var stats domain.StatsStore
	if cfg.statsEnabled {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.statsRedisAddr,
			Password: cfg.statsRedisPassword,
			DB:       cfg.statsRedisDB,
		})
		defer func() { _ = rdb.Close() }()

		pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		_, err := rdb.Ping(pingCtx).Result()
		cancel()
		if err != nil {
			log.Fatalf("redis stats ping error: %v", err)
		}

		stats = infra.NewRedisStatsStore(
			rdb,
			infra.WithStatsPrefix(cfg.statsPrefix),
			infra.WithStatsTTL(cfg.statsTTL),
		)
	}

	svc := application.Service{Pool: pool, Catalog: catalog, Stats: stats}

	h := produto.NewHandler(produto.HandlerOptions{Service: svc, Token: cfg.apiToken})
	h = produto.ConcurrencyMiddleware(produto.ConcurrencyOptions{
		Max:            cfg.concurrencyMax,
		RejectStatus:   http.StatusServiceUnavailable,
		AcquireTimeout: cfg.concurrencyTimeout,
	})(h)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	srv := &http.Server{
		Addr:              cfg.listenAddr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       90 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Printf("api de produtos ouvindo em %s (versão %s)", cfg.listenAddr, produto.Version)
	log.Printf("tokens: %d configurados, limite diário %d por token", pool.Size(), cfg.dailyLimit)
	log.Printf("cosmos: base=%q timeout=%s", cfg.cosmosBaseURL, cfg.cosmosTimeout)
	log.Printf("stats: enabled=%v redisAddr=%q", cfg.statsEnabled, cfg.statsRedisAddr)
	log.Printf("concurrency: max=%d acquireTimeout=%s", cfg.concurrencyMax, cfg.concurrencyTimeout)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("server error: %v", err)
	}
}

type config struct {
	listenAddr  string
	apiToken    string
	credentials []domain.Credential
	dailyLimit  int

	cosmosBaseURL string
	cosmosTimeout time.Duration

	concurrencyMax     int
	concurrencyTimeout time.Duration

	statsEnabled       bool
	statsRedisAddr     string
	statsRedisPassword string
	statsRedisDB       int
	statsPrefix        string
	statsTTL           time.Duration
}

func readConfig() (config, error) {
	cfg := config{}
	cfg.listenAddr = getenvDefault("LISTEN_ADDR", ":5000")
	cfg.apiToken = os.Getenv("API_TOKEN")
	cfg.credentials = readCredentials()
	cfg.dailyLimit = getenvIntDefault("TOKEN_DAILY_LIMIT", 25)

	cfg.cosmosBaseURL = getenvDefault("COSMOS_BASE_URL", infra.DefaultCosmosBaseURL)
	cfg.cosmosTimeout = getenvDurationDefault("COSMOS_TIMEOUT", infra.DefaultCosmosTimeout)

	cfg.concurrencyMax = getenvIntDefault("CONCURRENCY_MAX", 100)
	cfg.concurrencyTimeout = getenvDurationDefault("CONCURRENCY_TIMEOUT", 0)

	cfg.statsEnabled = getenvBoolDefault("STATS_ENABLED", false)
	cfg.statsRedisAddr = getenvDefault("STATS_REDIS_ADDR", "")
	cfg.statsRedisPassword = os.Getenv("STATS_REDIS_PASSWORD")
	cfg.statsRedisDB = getenvIntDefault("STATS_REDIS_DB", 0)
	cfg.statsPrefix = getenvDefault("STATS_PREFIX", "produtos:stats")
	cfg.statsTTL = getenvDurationDefault("STATS_TTL", 24*time.Hour)

	if cfg.apiToken == "" {
		return config{}, errors.New("API_TOKEN is required")
	}
	if cfg.dailyLimit <= 0 {
		return config{}, errors.New("TOKEN_DAILY_LIMIT must be > 0")
	}
	if cfg.concurrencyMax < 0 {
		return config{}, errors.New("CONCURRENCY_MAX must be >= 0")
	}
	if cfg.statsEnabled && cfg.statsRedisAddr == "" {
		return config{}, errors.New("STATS_REDIS_ADDR is required when STATS_ENABLED=true")
	}
	return cfg, nil
}

// readCredentials monta o pool na ordem BLUESOFT_TOKEN_1..4; COSMOS_TOKEN
// entra como alias do primeiro slot para instalações antigas de token único.
func readCredentials() []domain.Credential {
	var creds []domain.Credential
	for i := 1; i <= 4; i++ {
		secret := os.Getenv(fmt.Sprintf("BLUESOFT_TOKEN_%d", i))
		if i == 1 && secret == "" {
			secret = os.Getenv("COSMOS_TOKEN")
		}
		if secret == "" {
			continue
		}
		creds = append(creds, domain.Credential{
			ID:     fmt.Sprintf("token_%d", i),
			Secret: secret,
		})
	}
	return creds
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
