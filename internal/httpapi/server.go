// Package httpapi serves a local OpenAI-compatible completions endpoint for
// exercising the smoke test without a real model server.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"mlcprobe/pkg/types"
)

// Service defines the methods required by the HTTP API layer.
type Service interface {
	Complete(ctx context.Context, req types.CompletionRequest) (types.CompletionResponse, error)
	Ready() bool
}

// Fixture is a canned reply: every completion request gets Status and Body
// verbatim, whether or not Body is valid JSON.
type Fixture struct {
	Status      int
	Body        string
	ContentType string
}

func newRouter() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(InflightMiddleware)
	r.Use(MetricsMiddleware)
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	})
	if corsEnabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: corsAllowedOrigins,
			AllowedMethods: corsAllowedMethods,
			AllowedHeaders: corsAllowedHeaders,
			MaxAge:         300,
		}))
	}
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/metrics", promhttp.Handler().ServeHTTP)
	MountSwagger(r)
	return r
}

// NewMux serves completions produced by svc.
func NewMux(svc Service) http.Handler {
	r := newRouter()
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if svc.Ready() {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ready"))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("loading"))
	})
	r.Post("/v1/completions", completionsHandler(svc))
	return r
}

// NewFixtureMux answers every completion request with fx.
func NewFixtureMux(fx Fixture) http.Handler {
	if fx.Status == 0 {
		fx.Status = http.StatusOK
	}
	if fx.ContentType == "" {
		fx.ContentType = "application/json"
	}
	r := newRouter()
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})
	r.Post("/v1/completions", func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		w.Header().Set("Content-Type", fx.ContentType)
		w.WriteHeader(fx.Status)
		_, _ = w.Write([]byte(fx.Body))
		logEnd(r, requestLogLevel(r), fx.Status, start, nil)
	})
	return r
}

// completionsHandler godoc
//
//	@Summary	Create a completion
//	@Accept		json
//	@Produce	json
//	@Param		request	body		types.CompletionRequest	true	"Completion request"
//	@Success	200		{object}	types.CompletionResponse
//	@Failure	400		{object}	types.ErrorResponse
//	@Failure	415		{object}	types.ErrorResponse
//	@Failure	500		{object}	types.ErrorResponse
//	@Router		/v1/completions [post]
func completionsHandler(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		lvl := requestLogLevel(r)

		ct := r.Header.Get("Content-Type")
		if ct == "" || !strings.HasPrefix(strings.ToLower(ct), "application/json") {
			writeJSONError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
			return
		}
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		var req types.CompletionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			// MaxBytesReader overflow also lands here; report 400 without size details
			writeJSONError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		if strings.TrimSpace(req.Prompt) == "" {
			writeJSONError(w, http.StatusBadRequest, "prompt is required")
			return
		}
		if lvl >= LevelDebug {
			zlog.Debug().Str("model", req.Model).Str("prompt", req.Prompt).Str("request_id", middleware.GetReqID(r.Context())).Msg("completion start")
		}

		ctx, cancel := requestContext(r.Context())
		defer cancel()
		if completionTimeout > 0 {
			var tcancel context.CancelFunc
			ctx, tcancel = context.WithTimeout(ctx, completionTimeout)
			defer tcancel()
		}

		resp, err := svc.Complete(ctx, req)
		if err != nil {
			if r.Context().Err() != nil || baseContext().Err() != nil {
				return
			}
			status := http.StatusInternalServerError
			var he HTTPError
			switch {
			case errors.As(err, &he):
				status = he.StatusCode()
			case errors.Is(err, context.DeadlineExceeded):
				status = http.StatusGatewayTimeout
			}
			writeJSONError(w, status, err.Error())
			logEnd(r, lvl, status, start, err)
			return
		}
		if resp.Usage != nil {
			observeUsage(resp.Usage.PromptTokens, resp.Usage.CompletionTokens)
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			logEnd(r, lvl, http.StatusInternalServerError, start, err)
			return
		}
		logEnd(r, lvl, http.StatusOK, start, nil)
	}
}
