package httpapi

import (
	"bytes"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]LogLevel{
		"":      LevelOff,
		"off":   LevelOff,
		"error": LevelError,
		"info":  LevelInfo,
		"debug": LevelDebug,
		"weird": LevelInfo, // default
	}
	for in, want := range cases {
		if got := parseLevel(in); got != want {
			t.Fatalf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestRequestLogLevel_Overrides(t *testing.T) {
	r := httptest.NewRequest("GET", "/x?log=debug", nil)
	if got := requestLogLevel(r); got != LevelDebug {
		t.Fatalf("query override failed: %v", got)
	}
	r = httptest.NewRequest("GET", "/x?log=1", nil)
	if got := requestLogLevel(r); got != LevelDebug {
		t.Fatalf("short query override failed: %v", got)
	}
	r = httptest.NewRequest("GET", "/x", nil)
	r.Header.Set("X-Log-Level", "error")
	if got := requestLogLevel(r); got != LevelError {
		t.Fatalf("header override failed: %v", got)
	}
}

func TestLogEnd(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(zerolog.New(&buf))
	defer SetLogger(zerolog.Nop())

	r := httptest.NewRequest("POST", "/v1/completions", nil)
	logEnd(r, LevelOff, 200, time.Now(), nil)
	if buf.Len() != 0 {
		t.Fatalf("logged at LevelOff: %q", buf.String())
	}
	logEnd(r, LevelError, 200, time.Now(), nil)
	if buf.Len() != 0 {
		t.Fatalf("success logged at LevelError: %q", buf.String())
	}
	logEnd(r, LevelError, 500, time.Now(), errors.New("boom"))
	if !strings.Contains(buf.String(), `"status":500`) || !strings.Contains(buf.String(), "boom") {
		t.Fatalf("missing error log: %q", buf.String())
	}
	buf.Reset()
	logEnd(r, LevelInfo, 200, time.Now(), nil)
	if !strings.Contains(buf.String(), `"level":"info"`) || !strings.Contains(buf.String(), "completion end") {
		t.Fatalf("missing info log: %q", buf.String())
	}
}
