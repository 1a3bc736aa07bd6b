package botrelay

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sortbox/backend/pkg/cerr"
)

type recordedCall struct {
	Method  string
	Payload map[string]any
}

func newFakeAPI(t *testing.T) (*httptest.Server, *[]recordedCall) {
	t.Helper()
	var calls []recordedCall
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		parts := strings.Split(r.URL.Path, "/")
		var payload map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		calls = append(calls, recordedCall{Method: parts[len(parts)-1], Payload: payload})
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ok":true}`))
	}))
	t.Cleanup(api.Close)
	return api, &calls
}

func newRelayHandler(t *testing.T, apiBase string) http.Handler {
	t.Helper()
	client := NewClient("test-token", WithAPIBase(apiBase))
	srv := NewServer(client, "https://app.example.com", "hunter2")

	r := chi.NewRouter()
	r.Use(cerr.NewJSONResponseChiMiddleware())
	srv.RegisterRoutes(r)
	return r
}

func postUpdate(t *testing.T, h http.Handler, secret string, update Update) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(update)
	require.NoError(t, err)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/bot/"+secret, bytes.NewReader(body)))
	return rec
}

func TestHandleStartCommand(t *testing.T) {
	api, calls := newFakeAPI(t)
	h := newRelayHandler(t, api.URL)

	rec := postUpdate(t, h, "hunter2", Update{
		UpdateID: 1,
		Message:  &Message{Text: "/start", Chat: Chat{ID: 42}},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok":true}`, rec.Body.String())

	require.Len(t, *calls, 1)
	call := (*calls)[0]
	assert.Equal(t, "sendMessage", call.Method)
	assert.Equal(t, float64(42), call.Payload["chat_id"])

	markup, ok := call.Payload["reply_markup"].(map[string]any)
	require.True(t, ok, "start reply must carry an inline keyboard")
	rows, ok := markup["inline_keyboard"].([]any)
	require.True(t, ok)
	require.Len(t, rows, 1)
	button := rows[0].([]any)[0].(map[string]any)
	webApp, ok := button["web_app"].(map[string]any)
	require.True(t, ok, "button must deep-link via web_app")
	assert.Equal(t, "https://app.example.com", webApp["url"])
}

func TestHandleOtherMessage(t *testing.T) {
	api, calls := newFakeAPI(t)
	h := newRelayHandler(t, api.URL)

	rec := postUpdate(t, h, "hunter2", Update{
		UpdateID: 2,
		Message:  &Message{Text: "add buy milk", Chat: Chat{ID: 42}},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	require.Len(t, *calls, 1)
	call := (*calls)[0]
	assert.Equal(t, "sendMessage", call.Method)
	assert.NotContains(t, call.Payload, "reply_markup")
}

func TestHandleUpdateWithoutMessage(t *testing.T) {
	api, calls := newFakeAPI(t)
	h := newRelayHandler(t, api.URL)

	rec := postUpdate(t, h, "hunter2", Update{UpdateID: 3})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, *calls)
}

func TestHandleWrongSecret(t *testing.T) {
	api, calls := newFakeAPI(t)
	h := newRelayHandler(t, api.URL)

	rec := postUpdate(t, h, "wrong", Update{
		UpdateID: 4,
		Message:  &Message{Text: "/start", Chat: Chat{ID: 42}},
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Empty(t, *calls)
}

func TestSetWebhook(t *testing.T) {
	api, calls := newFakeAPI(t)
	client := NewClient("test-token", WithAPIBase(api.URL))

	require.NoError(t, client.SetWebhook(context.Background(), "https://bot.example.com/bot/hunter2"))
	require.Len(t, *calls, 1)
	assert.Equal(t, "setWebhook", (*calls)[0].Method)
	assert.Equal(t, "https://bot.example.com/bot/hunter2", (*calls)[0].Payload["url"])
}
