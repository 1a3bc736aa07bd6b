package main

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/go-chi/chi/v5"

	"github.com/sortbox/backend/internal/botrelay"
	"github.com/sortbox/backend/internal/config"
	"github.com/sortbox/backend/pkg/cerr"
	"github.com/sortbox/backend/pkg/clog"
)

var (
	app  = kingpin.New("sortbox-bot", "Chat relay that deep-links users into the sortbox mini app")
	host = app.Flag("host", "Address to bind to").Default("").String()
	port = app.Flag("port", "Port to bind to").Default("8081").String()
)

func main() {
	kingpin.MustParse(app.Parse(os.Args[1:]))

	env, err := config.LoadEnv()
	if err != nil {
		slog.Error("failed to load env", "error", err)
		os.Exit(1)
	}

	level := env.SlogLevel()
	var handler slog.Handler
	if env.Env == "local" {
		handler = clog.NewHTTPTextHandler(os.Stderr, clog.WithLevel(level))
	} else {
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	}
	slog.SetDefault(slog.New(clog.NewAttributesHandler(handler)))

	if env.BotEnv.Token == "" {
		slog.Error("SORTBOX_BOT_TOKEN is required")
		os.Exit(1)
	}

	client := botrelay.NewClient(env.BotEnv.Token)
	if env.BotEnv.WebhookURL != "" {
		if err := client.SetWebhook(context.Background(), env.BotEnv.WebhookURL); err != nil {
			slog.Error("failed to register webhook", "error", err)
			os.Exit(1)
		}
	}

	relay := botrelay.NewServer(client, env.BotEnv.FrontendURL, env.BotEnv.WebhookSecret)

	r := chi.NewRouter()
	r.Use(
		clog.SlogChiMiddleware(),
		cerr.NewJSONResponseChiMiddleware(),
	)
	relay.RegisterRoutes(r)

	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.Handle("/", r)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	addr := net.JoinHostPort(*host, *port)
	srv := &http.Server{
		Addr:        addr,
		Handler:     mux,
		BaseContext: func(_ net.Listener) context.Context { return ctx },
	}

	go func() {
		slog.Info("starting bot relay", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			cancel()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down bot relay")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
}
