// Package completions posts prompts to an OpenAI-compatible completions
// endpoint and reports what came back.
package completions

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"mlcprobe/pkg/types"
)

// CompletionsPath is appended to the endpoint base URL.
const CompletionsPath = "/v1/completions"

// Reply is the raw outcome of one request: the status code and the body
// exactly as received.
type Reply struct {
	StatusCode int
	Raw        []byte
}

// Poster sends one completion request.
type Poster interface {
	Post(ctx context.Context, req types.CompletionRequest) (Reply, error)
}

// Client talks to the endpoint over plain net/http.
type Client struct {
	BaseURL string
	HTTP    *http.Client
	Log     zerolog.Logger
}

// NewClient returns a client for baseURL. A zero timeout means the request
// may block for as long as the server takes.
func NewClient(baseURL string, timeout time.Duration, log zerolog.Logger) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: timeout},
		Log:     log,
	}
}

// Post sends req as JSON. Transport failures are returned as errors; any HTTP
// status is a successful Post.
func (c *Client) Post(ctx context.Context, req types.CompletionRequest) (Reply, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return Reply{}, fmt.Errorf("encode request: %w", err)
	}
	url := c.BaseURL + CompletionsPath
	hreq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return Reply{}, fmt.Errorf("build request: %w", err)
	}
	hreq.Header.Set("Content-Type", "application/json")

	start := time.Now()
	c.Log.Debug().Str("url", url).Str("model", req.Model).Msg("post start")
	resp, err := c.HTTP.Do(hreq)
	if err != nil {
		return Reply{}, fmt.Errorf("post %s: %w", url, err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return Reply{}, fmt.Errorf("read response: %w", err)
	}
	c.Log.Debug().Int("status", resp.StatusCode).Int("bytes", len(raw)).Dur("dur", time.Since(start)).Msg("post end")
	return Reply{StatusCode: resp.StatusCode, Raw: raw}, nil
}
