package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

type fakeConverser struct {
	reply string
	id    string
	err   error

	gotSession string
	gotMessage string
}

func (f *fakeConverser) Converse(_ context.Context, sessionID, message string) (string, string, error) {
	f.gotSession = sessionID
	f.gotMessage = message
	if f.err != nil {
		return "", sessionID, f.err
	}
	id := f.id
	if id == "" {
		id = sessionID
	}
	return f.reply, id, nil
}

func postChat(t *testing.T, handler http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestChatSuccess(t *testing.T) {
	conv := &fakeConverser{reply: "Hello!", id: "abc-123"}
	handler := New(conv, zerolog.Nop()).Handler()

	rec := postChat(t, handler, `{"message":"hi","session_id":"abc-123"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Response  string `json:"response"`
		SessionID string `json:"session_id"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Response != "Hello!" || resp.SessionID != "abc-123" {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if conv.gotMessage != "hi" || conv.gotSession != "abc-123" {
		t.Fatalf("converser got %q / %q", conv.gotMessage, conv.gotSession)
	}
}

func TestChatMissingMessage(t *testing.T) {
	handler := New(&fakeConverser{}, zerolog.Nop()).Handler()

	for _, body := range []string{`{}`, `{"message":"   "}`} {
		rec := postChat(t, handler, body)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("body %s: status = %d", body, rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "No message provided") {
			t.Fatalf("body %s: unexpected error payload: %s", body, rec.Body.String())
		}
	}
}

func TestChatInvalidJSON(t *testing.T) {
	handler := New(&fakeConverser{}, zerolog.Nop()).Handler()
	rec := postChat(t, handler, `{not json`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestChatConverserFailure(t *testing.T) {
	conv := &fakeConverser{err: errors.New("provider down")}
	handler := New(conv, zerolog.Nop()).Handler()

	rec := postChat(t, handler, `{"message":"hi"}`)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "An error occurred during processing.") {
		t.Fatalf("unexpected error payload: %s", body)
	}
	// Internal detail must not leak to the client.
	if strings.Contains(body, "provider down") {
		t.Fatalf("internal error leaked: %s", body)
	}
}

func TestHealthz(t *testing.T) {
	handler := New(&fakeConverser{}, zerolog.Nop()).Handler()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestChatRejectsGet(t *testing.T) {
	handler := New(&fakeConverser{}, zerolog.Nop()).Handler()
	req := httptest.NewRequest(http.MethodGet, "/chat", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusMethodNotAllowed && rec.Code != http.StatusNotFound {
		t.Fatalf("GET /chat should not be routed, status = %d", rec.Code)
	}
}
