package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"mlcprobe/pkg/types"
)

type mockService struct {
	ready   bool
	err     error
	resp    types.CompletionResponse
	block   bool
	lastReq types.CompletionRequest
}

func (m *mockService) Ready() bool { return m.ready }
func (m *mockService) Complete(ctx context.Context, req types.CompletionRequest) (types.CompletionResponse, error) {
	m.lastReq = req
	if m.block {
		<-ctx.Done()
		return types.CompletionResponse{}, ctx.Err()
	}
	if m.err != nil {
		return types.CompletionResponse{}, m.err
	}
	return m.resp, nil
}

func postCompletion(h http.Handler, body string, ct string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/completions", bytes.NewBufferString(body))
	if ct != "" {
		req.Header.Set("Content-Type", ct)
	}
	h.ServeHTTP(w, req)
	return w
}

func TestCompletions_OK(t *testing.T) {
	svc := &mockService{resp: types.CompletionResponse{
		ID: "cmpl-1", Object: "text_completion", Model: "m",
		Choices: []types.CompletionChoice{{Text: "Paris"}},
		Usage:   &types.Usage{PromptTokens: 1, CompletionTokens: 1, TotalTokens: 2},
	}}
	w := postCompletion(NewMux(svc), `{"model":"m","prompt":"capital?"}`, "application/json")
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); !strings.Contains(ct, "application/json") {
		t.Fatalf("content-type=%s", ct)
	}
	var body types.CompletionResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("json: %v", err)
	}
	if len(body.Choices) != 1 || body.Choices[0].Text != "Paris" {
		t.Fatalf("unexpected body: %+v", body)
	}
	if svc.lastReq.Model != "m" || svc.lastReq.Prompt != "capital?" {
		t.Fatalf("request not forwarded: %+v", svc.lastReq)
	}
}

func TestCompletions_BadJSON(t *testing.T) {
	w := postCompletion(NewMux(&mockService{}), "not-json", "application/json")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status=%d", w.Code)
	}
	var e types.ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &e); err != nil || e.Code != http.StatusBadRequest {
		t.Fatalf("error payload=%q err=%v", w.Body.String(), err)
	}
}

func TestCompletions_UnsupportedMediaType(t *testing.T) {
	w := postCompletion(NewMux(&mockService{}), `{"prompt":"hi"}`, "text/plain")
	if w.Code != http.StatusUnsupportedMediaType {
		t.Fatalf("status=%d", w.Code)
	}
}

func TestCompletions_PromptRequired(t *testing.T) {
	w := postCompletion(NewMux(&mockService{}), `{"model":"m","prompt":"   "}`, "application/json")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status=%d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "prompt is required") {
		t.Fatalf("body=%q", w.Body.String())
	}
}

func TestCompletions_BodyTooLarge(t *testing.T) {
	big := make([]byte, (1<<20)+10)
	for i := range big {
		big[i] = 'a'
	}
	w := postCompletion(NewMux(&mockService{}), string(big), "application/json")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for too-large body, got %d", w.Code)
	}
}

func TestCompletions_ErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"http error", BadRequest("top_p out of range"), http.StatusBadRequest},
		{"generic", io.EOF, http.StatusInternalServerError},
		{"deadline", context.DeadlineExceeded, http.StatusGatewayTimeout},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			w := postCompletion(NewMux(&mockService{err: c.err}), `{"prompt":"hi"}`, "application/json")
			if w.Code != c.want {
				t.Fatalf("status=%d want %d", w.Code, c.want)
			}
		})
	}
}

func TestCompletions_Timeout(t *testing.T) {
	SetCompletionTimeout(20 * time.Millisecond)
	defer SetCompletionTimeout(0)
	w := postCompletion(NewMux(&mockService{block: true}), `{"prompt":"hi"}`, "application/json")
	if w.Code != http.StatusGatewayTimeout {
		t.Fatalf("status=%d", w.Code)
	}
}

func TestReadyz(t *testing.T) {
	w := httptest.NewRecorder()
	NewMux(&mockService{ready: true}).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	w = httptest.NewRecorder()
	NewMux(&mockService{}).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if w.Code != http.StatusServiceUnavailable || !strings.Contains(w.Body.String(), "loading") {
		t.Fatalf("status=%d body=%q", w.Code, w.Body.String())
	}
}

func TestHealthzAndNosniff(t *testing.T) {
	w := httptest.NewRecorder()
	NewMux(&mockService{}).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if w.Code != http.StatusOK || w.Body.String() != "ok" {
		t.Fatalf("status=%d body=%q", w.Code, w.Body.String())
	}
	if w.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Fatalf("missing nosniff header")
	}
}

func TestFixtureMux(t *testing.T) {
	cases := []struct {
		fx   Fixture
		want int
	}{
		{Fixture{Body: `{"choices": [{"text": "Paris"}]}`}, http.StatusOK},
		{Fixture{Status: 500, Body: `"server error"`}, http.StatusInternalServerError},
		{Fixture{Status: 200, Body: `{"choices": [`}, http.StatusOK},
	}
	for _, c := range cases {
		// no Content-Type: fixtures answer anything
		w := postCompletion(NewFixtureMux(c.fx), "whatever", "")
		if w.Code != c.want {
			t.Fatalf("status=%d want %d", w.Code, c.want)
		}
		if w.Body.String() != c.fx.Body {
			t.Fatalf("body=%q want %q", w.Body.String(), c.fx.Body)
		}
	}
}

func TestCORS_Preflight(t *testing.T) {
	SetCORSOptions(true, []string{"http://example.test"}, nil, nil)
	defer SetCORSOptions(false, nil, nil, nil)

	req := httptest.NewRequest(http.MethodOptions, "/v1/completions", nil)
	req.Header.Set("Origin", "http://example.test")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	NewMux(&mockService{}).ServeHTTP(w, req)
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://example.test" {
		t.Fatalf("allow-origin=%q", got)
	}
}
