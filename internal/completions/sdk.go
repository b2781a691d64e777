package completions

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/rs/zerolog"

	"mlcprobe/pkg/types"
)

// SDKClient sends the same request through the OpenAI Go SDK. Retries are
// disabled so exactly one request reaches the server.
type SDKClient struct {
	client openai.Client
	log    zerolog.Logger
}

// NewSDKClient returns an SDK-backed Poster for baseURL.
func NewSDKClient(baseURL string, timeout time.Duration, log zerolog.Logger) *SDKClient {
	opts := []option.RequestOption{
		option.WithBaseURL(strings.TrimRight(baseURL, "/") + "/v1/"),
		option.WithAPIKey("mlcprobe"),
		option.WithMaxRetries(0),
	}
	if timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(timeout))
	}
	return &SDKClient{client: openai.NewClient(opts...), log: log}
}

// Post implements Poster. The body is captured as received for every status,
// so a non-2xx answer the SDK cannot parse as an API error still comes back
// as a Reply.
func (s *SDKClient) Post(ctx context.Context, req types.CompletionRequest) (Reply, error) {
	params := openai.CompletionNewParams{
		Model:  openai.CompletionNewParamsModel(req.Model),
		Prompt: openai.CompletionNewParamsPromptUnion{OfString: openai.String(req.Prompt)},
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(req.MaxTokens))
	}
	if req.Temperature != nil {
		params.Temperature = openai.Float(*req.Temperature)
	}
	if req.TopP != nil {
		params.TopP = openai.Float(*req.TopP)
	}
	if req.Seed != 0 {
		params.Seed = openai.Int(req.Seed)
	}

	s.log.Debug().Str("model", req.Model).Msg("sdk post start")
	var (
		httpResp *http.Response
		raw      []byte
	)
	_, err := s.client.Completions.New(ctx, params,
		option.WithResponseInto(&httpResp),
		option.WithResponseBodyInto(&raw),
	)
	if err != nil {
		if httpResp == nil || httpResp.StatusCode < http.StatusBadRequest {
			return Reply{}, fmt.Errorf("sdk post: %w", err)
		}
		// The SDK refills the body of an error response after reading it.
		defer httpResp.Body.Close()
		body, rerr := io.ReadAll(httpResp.Body)
		if rerr != nil {
			return Reply{}, fmt.Errorf("sdk read error body: %w", rerr)
		}
		var apiErr *openai.Error
		s.log.Debug().Int("status", httpResp.StatusCode).Bool("api_error", errors.As(err, &apiErr)).Msg("sdk post end")
		return Reply{StatusCode: httpResp.StatusCode, Raw: body}, nil
	}
	status := http.StatusOK
	if httpResp != nil {
		status = httpResp.StatusCode
	}
	s.log.Debug().Int("status", status).Int("bytes", len(raw)).Msg("sdk post end")
	return Reply{StatusCode: status, Raw: raw}, nil
}
