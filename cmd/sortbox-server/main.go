package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"

	server "github.com/sortbox/backend/internal"
	"github.com/sortbox/backend/internal/config"
	"github.com/sortbox/backend/internal/motivation"
	motivationrepo "github.com/sortbox/backend/internal/motivation/repositoryimpl"
	"github.com/sortbox/backend/internal/project"
	projectrepo "github.com/sortbox/backend/internal/project/repositoryimpl"
	"github.com/sortbox/backend/internal/stats"
	"github.com/sortbox/backend/internal/task"
	taskrepo "github.com/sortbox/backend/internal/task/repositoryimpl"
	userrepo "github.com/sortbox/backend/internal/user/repositoryimpl"
	"github.com/sortbox/backend/pkg/clog"
	"github.com/sortbox/backend/pkg/storage"
)

func main() {
	env, err := config.LoadEnv()
	if err != nil {
		slog.Error("failed to load env", "error", err)
		os.Exit(1)
	}

	// Setup logger
	level := env.SlogLevel()
	var handler slog.Handler
	if env.Env == "local" {
		handler = clog.NewHTTPTextHandler(os.Stderr, clog.WithLevel(level))
	} else {
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	}
	slog.SetDefault(slog.New(clog.NewAttributesHandler(handler)))

	// Setup storage
	db, err := storage.Open(env.DatabaseEnv.Path)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Seed motivation phrases
	if err := motivation.Seed(context.Background(), motivationrepo.NewSQLRepository(db.Ext()), env.MotivationEnv.PhrasesFile); err != nil {
		slog.Error("failed to seed motivation phrases", "error", err)
		os.Exit(1)
	}

	repos := func(ext sqlx.ExtContext) task.Repos {
		return task.Repos{
			Users:    userrepo.NewSQLRepository(ext),
			Tasks:    taskrepo.NewSQLRepository(ext),
			Projects: projectrepo.NewSQLRepository(ext),
		}
	}

	// Setup servers
	engine := task.NewEngine(task.WithTerminalGuard())
	taskServer := task.NewServer(db, engine, repos)
	projectServer := project.NewServer(
		userrepo.NewSQLRepository(db.Ext()),
		projectrepo.NewSQLRepository(db.Ext()),
	)
	statsServer := stats.NewServer(
		userrepo.NewSQLRepository(db.Ext()),
		taskrepo.NewSQLRepository(db.Ext()),
		motivationrepo.NewSQLRepository(db.Ext()),
	)

	srv := server.NewServer(env, taskServer, projectServer, statsServer)

	// Graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	go func() {
		if err := srv.ListenAndServe(ctx); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			cancel()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
}
