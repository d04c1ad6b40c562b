package infra

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"produtos-gateway/produto/domain"
)

func testCredential() domain.Credential {
	return domain.Credential{ID: "BLUESOFT_TOKEN_1", Secret: "tok-123456"}
}

func TestCosmosClient_FetchSuccess(t *testing.T) {
	var gotPath, gotToken, gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotToken = r.Header.Get("X-Cosmos-Token")
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"gtin": 7891234567895, "description": "Arroz", "net_weight": "1kg"}`))
	}))
	defer srv.Close()

	c := NewCosmosClient(srv.URL)
	payload, err := c.Fetch(context.Background(), "7891234567895", testCredential())
	if err != nil {
		t.Fatal(err)
	}

	if gotPath != "/gtins/7891234567895.json" {
		t.Fatalf("path: got %q", gotPath)
	}
	if gotToken != "tok-123456" {
		t.Fatalf("X-Cosmos-Token: got %q", gotToken)
	}
	if gotUA == "" {
		t.Fatal("expected identifying User-Agent")
	}
	if payload.Description != "Arroz" {
		t.Fatalf("payload: got %+v", payload)
	}
	if grams, ok := payload.NetWeight.Grams(); !ok || grams != 1000 {
		t.Fatalf("net_weight: got (%d, %v)", grams, ok)
	}
}

func TestCosmosClient_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewCosmosClient(srv.URL)
	_, err := c.Fetch(context.Background(), "7891234567895", testCredential())
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCosmosClient_Throttled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "too many requests", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewCosmosClient(srv.URL)
	_, err := c.Fetch(context.Background(), "7891234567895", testCredential())
	if !errors.Is(err, domain.ErrThrottled) {
		t.Fatalf("expected ErrThrottled, got %v", err)
	}
}

func TestCosmosClient_UnexpectedStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewCosmosClient(srv.URL)
	_, err := c.Fetch(context.Background(), "7891234567895", testCredential())

	var ue *domain.UpstreamError
	if !errors.As(err, &ue) {
		t.Fatalf("expected UpstreamError, got %v", err)
	}
	if ue.StatusCode != http.StatusInternalServerError {
		t.Fatalf("status: got %d", ue.StatusCode)
	}
}

func TestCosmosClient_NetworkErrorIsUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // derruba o servidor antes da chamada

	c := NewCosmosClient(srv.URL)
	_, err := c.Fetch(context.Background(), "7891234567895", testCredential())

	var ue *domain.UpstreamError
	if !errors.As(err, &ue) {
		t.Fatalf("expected UpstreamError, got %v", err)
	}
	if ue.StatusCode != 0 {
		t.Fatalf("network failure must have status 0, got %d", ue.StatusCode)
	}
}

func TestCosmosClient_MalformedBodyIsUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"description": `))
	}))
	defer srv.Close()

	c := NewCosmosClient(srv.URL)
	_, err := c.Fetch(context.Background(), "7891234567895", testCredential())

	var ue *domain.UpstreamError
	if !errors.As(err, &ue) {
		t.Fatalf("expected UpstreamError, got %v", err)
	}
}
