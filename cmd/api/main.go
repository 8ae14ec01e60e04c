package main

import (
	"net/http"
	"os"
	"time"

	"vet-vaccination-tracker/internal/adapters/auth/supabase"
	"vet-vaccination-tracker/internal/adapters/notify/mailer"
	"vet-vaccination-tracker/internal/platform/logger"
	"vet-vaccination-tracker/internal/ports/auth"
	"vet-vaccination-tracker/internal/ports/notify"
	"vet-vaccination-tracker/internal/router"
)

func main() {
	log := logger.NewFromEnv()

	addr := ":8080"
	if v := os.Getenv("PORT"); v != "" {
		addr = ":" + v
	}

	// Verifier opcional: sin SUPABASE_URL queda modo dev (X-Debug-User-ID).
	var verifier auth.AuthVerifier
	if base := os.Getenv("SUPABASE_URL"); base != "" {
		client, err := supabase.NewClient(supabase.Config{
			BaseURL: base,
			AnonKey: os.Getenv("SUPABASE_ANON_KEY"),
		})
		if err != nil {
			log.Error("invalid supabase config", map[string]any{"error": err.Error()})
			os.Exit(1)
		}
		verifier = supabase.NewVerifier(client)
	}

	// Notificador opcional: sin MAILER_BASE_URL el despacho queda apagado.
	var notifier notify.Notifier
	if base := os.Getenv("MAILER_BASE_URL"); base != "" {
		client, err := mailer.NewClient(mailer.Config{
			BaseURL: base,
			APIKey:  os.Getenv("MAILER_API_KEY"),
		})
		if err != nil {
			log.Error("invalid mailer config", map[string]any{"error": err.Error()})
			os.Exit(1)
		}
		notifier = mailer.NewNotifier(client)
	}

	r := router.NewRouter(router.Options{
		AuthVerifier: verifier,
		Notifier:     notifier,
		Log:          log,
	})

	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	log.Info("starting server", map[string]any{"addr": addr})
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
}
