package completions

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/goccy/go-json"

	"mlcprobe/pkg/types"
)

// Run performs the smoke test: one request, an error line when the status is
// not 200, then the parsed body printed as compact JSON with sorted keys.
// The body is parsed even after an error status; a malformed body is
// returned as an error wrapping ErrMalformedBody.
func Run(ctx context.Context, p Poster, req types.CompletionRequest, out io.Writer) (Result, error) {
	reply, err := p.Post(ctx, req)
	if err != nil {
		return Result{}, err
	}
	if reply.StatusCode != http.StatusOK {
		if _, err := fmt.Fprintf(out, "Error: %d - %s\n", reply.StatusCode, reply.Raw); err != nil {
			return Result{}, err
		}
	}
	res, err := Decode(reply)
	if err != nil {
		return res, err
	}
	b, err := json.Marshal(res.Value)
	if err != nil {
		return res, fmt.Errorf("encode parsed body: %w", err)
	}
	if _, err := fmt.Fprintln(out, string(b)); err != nil {
		return res, err
	}
	return res, nil
}
