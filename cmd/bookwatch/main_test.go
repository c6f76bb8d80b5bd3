package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rickgao/polymarket-book/internal/book"
	"github.com/rickgao/polymarket-book/internal/config"
	"github.com/rickgao/polymarket-book/internal/connection"
	"github.com/rickgao/polymarket-book/internal/router"
	"github.com/rickgao/polymarket-book/internal/status"
)

func TestApplyOverrides(t *testing.T) {
	o, fs, err := parseFlags([]string{"--event-url", "https://polymarket.com/event/fed", "--depth", "5", "--headless"})
	if err != nil {
		t.Fatalf("parseFlags() error = %v", err)
	}

	var cfg config.Config
	cfg.ApplyDefaults()
	cfg.Market.DateText = "March"
	applyOverrides(&cfg, o, fs)

	if cfg.Market.EventURL != "https://polymarket.com/event/fed" {
		t.Errorf("EventURL = %q", cfg.Market.EventURL)
	}
	if cfg.Book.Depth != 5 {
		t.Errorf("Depth = %d, want 5", cfg.Book.Depth)
	}
	if !cfg.Display.Headless {
		t.Error("Headless = false, want true")
	}
	if cfg.Market.DateText != "March" {
		t.Errorf("DateText = %q, unset flag must not override", cfg.Market.DateText)
	}
	if cfg.Log.Level != config.DefaultLogLevel {
		t.Errorf("Log.Level = %q, want %q", cfg.Log.Level, config.DefaultLogLevel)
	}
}

func TestLoadConfig_InvalidOverride(t *testing.T) {
	o, fs, err := parseFlags([]string{"--depth", "-3", "--env-file", ""})
	if err != nil {
		t.Fatalf("parseFlags() error = %v", err)
	}
	if _, err := loadConfig(o, fs); err == nil {
		t.Error("loadConfig() expected validation error for negative depth")
	}
}

func TestRun_BadFlag(t *testing.T) {
	if code := run([]string{"--no-such-flag"}); code != 2 {
		t.Errorf("run() = %d, want 2", code)
	}
}

func TestHealthHandler(t *testing.T) {
	board := status.NewBoard(initialStatus)
	frames := router.NewQueue[connection.RawMessage]()
	session, err := connection.NewSession(connection.DefaultSessionConfig(),
		connection.Subscription{AssetIDs: []string{"A"}}, frames, board, nil)
	if err != nil {
		t.Fatalf("NewSession() error = %v", err)
	}
	rtr := router.NewRouter(frames, book.NewStore([]string{"A"}, book.Options{}), board, nil)

	metricsHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	srv := httptest.NewServer(newHandler("/metrics", metricsHandler, session, rtr, board))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatalf("GET /health: %v", err)
	}
	defer resp.Body.Close()

	// Not yet streaming.
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusServiceUnavailable)
	}

	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["status_line"] != initialStatus {
		t.Errorf("status_line = %v, want %q", body["status_line"], initialStatus)
	}
	if body["session"] != "connecting" {
		t.Errorf("session = %v, want connecting", body["session"])
	}

	mresp, err := http.Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	mresp.Body.Close()
	if mresp.StatusCode != http.StatusOK {
		t.Errorf("metrics status = %d, want 200", mresp.StatusCode)
	}
}
