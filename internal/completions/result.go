package completions

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/goccy/go-json"

	"mlcprobe/pkg/types"
)

// ErrMalformedBody is returned when a response body is not valid JSON.
var ErrMalformedBody = errors.New("completions: response body is not valid JSON")

// Kind discriminates a Result.
type Kind int

const (
	KindSuccess Kind = iota
	KindError
)

func (k Kind) String() string {
	if k == KindSuccess {
		return "success"
	}
	return "error"
}

// Failure describes a non-200 reply.
type Failure struct {
	StatusCode int
	Text       string
}

// Result is a decoded reply. Value always holds the parsed body. Exactly one
// of Success and Failure is meaningful, selected by Kind; Success stays nil
// when a 200 body does not have the shape of a completion.
type Result struct {
	Kind    Kind
	Value   any
	Success *types.CompletionResponse
	Failure *Failure
}

// Decode parses the reply body regardless of status.
func Decode(r Reply) (Result, error) {
	res := Result{Kind: KindSuccess}
	if r.StatusCode != http.StatusOK {
		res.Kind = KindError
		res.Failure = &Failure{StatusCode: r.StatusCode, Text: string(r.Raw)}
	}
	v, err := decodeValue(r.Raw)
	if err != nil {
		return res, fmt.Errorf("%w: %v", ErrMalformedBody, err)
	}
	res.Value = v
	if res.Kind == KindSuccess {
		if _, isObject := res.Value.(map[string]any); isObject {
			var cr types.CompletionResponse
			if err := json.Unmarshal(r.Raw, &cr); err == nil {
				res.Success = &cr
			}
		}
	}
	return res, nil
}

// decodeValue parses exactly one JSON value. Numbers stay json.Number so
// printing the value reproduces them digit for digit.
func decodeValue(raw []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	var extra any
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		if err == nil {
			return nil, errors.New("unexpected data after top-level value")
		}
		return nil, err
	}
	return v, nil
}

// Text returns the first choice's text of a successful completion.
func (r Result) Text() (string, bool) {
	if r.Success == nil || len(r.Success.Choices) == 0 {
		return "", false
	}
	return r.Success.Choices[0].Text, true
}
