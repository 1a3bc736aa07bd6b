package botrelay

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/sortbox/backend/pkg/cerr"
)

const (
	startText    = "This is the mini app for your personal productivity system. Tap the button below to open it."
	fallbackText = "Add tasks through the mini app: tap the button in the bot menu."
	openLabel    = "Open the app"
)

// Server forwards chat events to the web front-end. It carries no
// business logic: /start gets a deep-link button, anything else gets a
// hint to use the mini app.
type Server struct {
	client      *Client
	frontendURL string
	secret      string
}

func NewServer(client *Client, frontendURL, secret string) *Server {
	return &Server{
		client:      client,
		frontendURL: frontendURL,
		secret:      secret,
	}
}

func (s *Server) RegisterRoutes(r chi.Router) {
	r.Post("/bot/{secret}", s.handleUpdate)
}

type webhookAck struct {
	OK bool `json:"ok"`
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if chi.URLParam(r, "secret") != s.secret {
		cerr.SetNewJSONError(ctx, cerr.NotFound, "not found", nil)
		return
	}

	var update Update
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		cerr.SetNewJSONError(ctx, cerr.InvalidArgument, "invalid update", err)
		return
	}
	// Always ack: Telegram retries on non-200 and a malformed or
	// unsupported update will never get better.
	cerr.SetJSONResponse(ctx, webhookAck{OK: true})

	if update.Message == nil {
		return
	}

	var err error
	if strings.HasPrefix(update.Message.Text, "/start") {
		markup := &InlineKeyboardMarkup{
			InlineKeyboard: [][]InlineKeyboardButton{{
				{Text: openLabel, WebApp: &WebAppInfo{URL: s.frontendURL}},
			}},
		}
		err = s.client.SendMessage(ctx, update.Message.Chat.ID, startText, markup)
	} else {
		err = s.client.SendMessage(ctx, update.Message.Chat.ID, fallbackText, nil)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to answer chat message", "error", err)
	}
}
