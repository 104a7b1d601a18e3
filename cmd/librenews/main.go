package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"librenews/internal/app"
	"librenews/internal/config"
	"librenews/internal/logger"
	"librenews/internal/metrics"
	"librenews/internal/vault"
)

func main() {
	_ = godotenv.Load()
	logger.Init()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	loadVaultCredentials(cfg)

	m := metrics.New()

	if os.Getenv("ENABLE_HTTP_MONITORING") == "true" {
		go startMonitoringServer(m)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, m)
	if err != nil {
		logger.Error("failed to build pipeline", "error", err)
		os.Exit(1)
	}
	defer a.Close()

	if _, err := a.Run(ctx); err != nil {
		logger.Error("refresh cycle failed", "error", err)
		os.Exit(1)
	}
	a.ReportCost(ctx)
}

// loadVaultCredentials fills in API keys from the encrypted vault when the
// environment did not provide them. Env always wins; the vault is the
// at-rest fallback.
func loadVaultCredentials(cfg *config.Config) {
	passphrase := os.Getenv("VAULT_PASSPHRASE")
	if passphrase == "" {
		return
	}

	creds, err := vault.New(cfg.VaultPath, passphrase).Load()
	if err != nil {
		logger.Warn("failed to open credentials vault", "path", cfg.VaultPath, "error", err)
		return
	}

	if cfg.GeminiAPIKey == "" {
		cfg.GeminiAPIKey = creds["gemini_api_key"]
	}
	if cfg.OpenAIAPIKey == "" {
		cfg.OpenAIAPIKey = creds["openai_api_key"]
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = creds["database_url"]
	}
}

func startMonitoringServer(m *metrics.Metrics) {
	port := os.Getenv("MONITORING_PORT")
	if port == "" {
		port = "8080"
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		snapshot := m.Snapshot()

		status := "ok"
		if !m.Healthy() {
			status = "error"
			w.WriteHeader(http.StatusServiceUnavailable)
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":     status,
			"last_run":   snapshot["last_run_time"],
			"last_error": snapshot["last_error"],
		})
	})
	mux.HandleFunc("/metrics", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(m.Snapshot())
	})

	logger.Info("monitoring server listening", "port", port)
	if err := http.ListenAndServe(":"+port, mux); err != nil {
		logger.Error("monitoring server stopped", "error", err)
	}
}
