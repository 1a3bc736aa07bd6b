package internal

import (
	"context"
	"log/slog"
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/cors"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/sortbox/backend/internal/config"
	"github.com/sortbox/backend/internal/project"
	"github.com/sortbox/backend/internal/stats"
	"github.com/sortbox/backend/internal/task"
	"github.com/sortbox/backend/pkg/cerr"
	"github.com/sortbox/backend/pkg/clog"
)

type Server struct {
	server        *http.Server
	env           *config.Env
	taskServer    *task.Server
	projectServer *project.Server
	statsServer   *stats.Server
}

func NewServer(env *config.Env, taskServer *task.Server, projectServer *project.Server, statsServer *stats.Server) *Server {
	return &Server{
		env:           env,
		taskServer:    taskServer,
		projectServer: projectServer,
		statsServer:   statsServer,
	}
}

// ListenAndServe starts the HTTP server. The provided context is used
// as the base context for all incoming requests via
// http.Server.BaseContext, so handler contexts are cancelled on
// shutdown signal.
func (s *Server) ListenAndServe(ctx context.Context) error {
	r := chi.NewRouter()
	r.Use(
		clog.SlogChiMiddleware(),
		cerr.NewJSONResponseChiMiddleware(),
	)
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		cerr.SetNewJSONError(r.Context(), cerr.NotFound, "not found", nil)
	})
	s.taskServer.RegisterRoutes(r)
	s.projectServer.RegisterRoutes(r)
	s.statsServer.RegisterRoutes(r)

	mux := http.NewServeMux()
	mux.Handle("/health", &HealthChecker{})
	mux.Handle("/", r)

	addr := net.JoinHostPort(s.env.HTTPHost, s.env.HTTPPort)
	slog.Info("starting server", "addr", addr)

	s.server = &http.Server{
		Addr: addr,
		Handler: h2c.NewHandler(cors.New(cors.Options{
			AllowedOrigins:   []string{"*"},
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders:   []string{"*"},
			AllowCredentials: true,
		}).Handler(mux), &http2.Server{}),
		BaseContext: func(_ net.Listener) context.Context { return ctx },
	}

	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

type HealthChecker struct{}

func (hc *HealthChecker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}
