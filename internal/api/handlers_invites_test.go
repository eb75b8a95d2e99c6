package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/invite-sh/server/internal/model"
)

type stubLimiter struct {
	decision model.RateLimitDecision
	lastKey  string
}

func (s *stubLimiter) Check(_ context.Context, scope, clientKey string) model.RateLimitDecision {
	s.lastKey = scope + "_" + clientKey
	return s.decision
}

func TestCheck_ScopeAndClientFormKey(t *testing.T) {
	lim := allowAll()
	ext := &stubExtractor{result: &model.ExtractionResult{Events: []model.Event{}}}
	h := NewInviteHandler(lim, ext, nil)

	req := httptest.NewRequest("POST", "/api/invites", bytes.NewBufferString(`{"details":"lunch"}`))
	req.Header.Set("X-Forwarded-For", "198.51.100.7")
	h.CreateInvites(httptest.NewRecorder(), req)

	if lim.lastKey != "invite_ratelimit_198.51.100.7" {
		t.Fatalf("limiter keyed on %q", lim.lastKey)
	}
}

type stubExtractor struct {
	result     *model.ExtractionResult
	err        error
	lastPrompt string
}

func (s *stubExtractor) Extract(_ context.Context, prompt string) (*model.ExtractionResult, error) {
	s.lastPrompt = prompt
	return s.result, s.err
}

func allowAll() *stubLimiter {
	return &stubLimiter{decision: model.RateLimitDecision{
		Allowed:   true,
		Limit:     5,
		Remaining: 4,
		ResetAt:   time.Date(2026, 3, 14, 12, 1, 0, 0, time.UTC),
	}}
}

func postInvites(h *InviteHandler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("POST", "/api/invites", bytes.NewBufferString(body))
	req.RemoteAddr = "203.0.113.9:51423"
	w := httptest.NewRecorder()
	h.CreateInvites(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return body.Error
}

func TestCreateInvites_Success(t *testing.T) {
	ext := &stubExtractor{result: &model.ExtractionResult{Events: []model.Event{{
		Title: "Lunch",
		Start: "2026-03-15T12:00:00-04:00",
		End:   "2026-03-15T13:00:00-04:00",
		Busy:  true,
	}}}}
	h := NewInviteHandler(allowAll(), ext, nil)

	w := postInvites(h, `{"details":"lunch tomorrow at noon","localTime":"Sat Mar 14 2026 09:00 GMT-0400"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var resp model.ExtractionResult
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Events) == 0 {
		t.Fatal("events array empty")
	}
	ev := resp.Events[0]
	if ev.Title == "" || ev.Start == "" || ev.End == "" {
		t.Fatalf("incomplete event returned: %+v", ev)
	}
}

func TestCreateInvites_PromptCarriesInputs(t *testing.T) {
	ext := &stubExtractor{result: &model.ExtractionResult{Events: []model.Event{}}}
	h := NewInviteHandler(allowAll(), ext, nil)

	postInvites(h, `{"details":"standup every weekday","localTime":"Mon 9am"}`)
	if !bytes.Contains([]byte(ext.lastPrompt), []byte("standup every weekday")) {
		t.Fatal("details missing from rendered prompt")
	}
	if !bytes.Contains([]byte(ext.lastPrompt), []byte("Mon 9am")) {
		t.Fatal("local time missing from rendered prompt")
	}
}

func TestCreateInvites_MissingDetails(t *testing.T) {
	for _, body := range []string{
		`{}`,
		`{"details":""}`,
		`{"localTime":"now"}`,
		`not json`,
	} {
		h := NewInviteHandler(allowAll(), &stubExtractor{}, nil)
		w := postInvites(h, body)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("body %q: status = %d, want 400", body, w.Code)
		}
		if got := decodeError(t, w); got != msgMissingDetails {
			t.Fatalf("body %q: error = %q", body, got)
		}
	}
}

func TestCreateInvites_RateLimited(t *testing.T) {
	reset := time.Date(2026, 3, 14, 12, 1, 0, 0, time.UTC)
	lim := &stubLimiter{decision: model.RateLimitDecision{
		Allowed: false, Limit: 5, Remaining: 0, ResetAt: reset,
	}}
	ext := &stubExtractor{}
	h := NewInviteHandler(lim, ext, nil)

	w := postInvites(h, `{"details":"lunch"}`)
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", w.Code)
	}
	if got := w.Header().Get("X-RateLimit-Limit"); got != "5" {
		t.Fatalf("X-RateLimit-Limit = %q", got)
	}
	if got := w.Header().Get("X-RateLimit-Remaining"); got != "0" {
		t.Fatalf("X-RateLimit-Remaining = %q", got)
	}
	if got := w.Header().Get("X-RateLimit-Reset"); got != fmt.Sprintf("%d", reset.Unix()) {
		t.Fatalf("X-RateLimit-Reset = %q", got)
	}
	if ext.lastPrompt != "" {
		t.Fatal("extraction ran after rate-limit rejection")
	}
}

func TestCreateInvites_HeadersPresentOnSuccess(t *testing.T) {
	ext := &stubExtractor{result: &model.ExtractionResult{Events: []model.Event{}}}
	h := NewInviteHandler(allowAll(), ext, nil)

	w := postInvites(h, `{"details":"lunch"}`)
	if w.Header().Get("X-RateLimit-Limit") == "" {
		t.Fatal("rate-limit headers missing on admitted request")
	}
}

func TestCreateInvites_ExtractionFailureIsGeneric(t *testing.T) {
	ext := &stubExtractor{err: fmt.Errorf("%w: model returned garbage with topology hints", model.ErrExtraction)}
	h := NewInviteHandler(allowAll(), ext, nil)

	w := postInvites(h, `{"details":"lunch"}`)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
	if got := decodeError(t, w); got != msgUnknown {
		t.Fatalf("error = %q, internal detail must not leak", got)
	}
}

func TestCreateInvites_MisconfiguredServer(t *testing.T) {
	cfgErr := fmt.Errorf("%w: missing INVITE_AZURE_OPENAI_API_KEY", model.ErrConfiguration)
	h := NewInviteHandler(allowAll(), &stubExtractor{}, cfgErr)

	w := postInvites(h, `{"details":"lunch"}`)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
	if got := decodeError(t, w); got != msgMisconfigured {
		t.Fatalf("error = %q", got)
	}
}

func TestCreateInvites_ConfigAndExtractionIndistinguishableShape(t *testing.T) {
	ext := &stubExtractor{err: errors.New("totally unexpected")}
	h := NewInviteHandler(allowAll(), ext, nil)
	w := postInvites(h, `{"details":"lunch"}`)
	if got := decodeError(t, w); got != msgUnknown {
		t.Fatalf("unexpected failure mapped to %q, want generic message", got)
	}
}

func TestClientKey_ForwardedAddressWins(t *testing.T) {
	req := httptest.NewRequest("POST", "/api/invites", nil)
	req.RemoteAddr = "10.0.0.1:1000"
	req.Header.Set("X-Forwarded-For", "198.51.100.7, 10.0.0.1")
	if got := clientKey(req); got != "198.51.100.7" {
		t.Fatalf("clientKey = %q", got)
	}

	req.Header.Del("X-Forwarded-For")
	if got := clientKey(req); got != "10.0.0.1" {
		t.Fatalf("clientKey = %q", got)
	}
}
