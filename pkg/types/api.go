package types

// CompletionRequest is the body of POST /v1/completions.
type CompletionRequest struct {
	// Model identifier understood by the serving engine.
	// example: ./dist/TinyLlama-1.1B-Chat-MLC/
	Model string `json:"model" example:"./dist/TinyLlama-1.1B-Chat-MLC/"`
	// Prompt text to complete.
	// example: What is the capital of France?
	Prompt string `json:"prompt" example:"What is the capital of France?"`
	// Maximum number of new tokens to generate.
	// example: 16
	MaxTokens int `json:"max_tokens,omitempty" example:"16"`
	// Sampling temperature (higher = more random); 0 selects greedy decoding.
	// Omitted means 1.
	// example: 0.7
	Temperature *float64 `json:"temperature,omitempty" example:"0.7"`
	// Nucleus sampling probability; 0 selects greedy decoding. Omitted means 1.
	// example: 0.9
	TopP *float64 `json:"top_p,omitempty" example:"0.9"`
	// Random seed for reproducibility; 0 or omitted lets the server choose.
	// example: 42
	Seed int64 `json:"seed,omitempty" example:"42"`
}

// CompletionResponse is the success payload of POST /v1/completions.
type CompletionResponse struct {
	// example: cmpl-6f1c2a0e-8a43-4a4e-9d7b-2f0f5d1a7c11
	ID string `json:"id" example:"cmpl-6f1c2a0e-8a43-4a4e-9d7b-2f0f5d1a7c11"`
	// example: text_completion
	Object string `json:"object" example:"text_completion"`
	// Creation time in unix seconds.
	// example: 1700000000
	Created int64 `json:"created" example:"1700000000"`
	// example: ./dist/TinyLlama-1.1B-Chat-MLC/
	Model   string             `json:"model" example:"./dist/TinyLlama-1.1B-Chat-MLC/"`
	Choices []CompletionChoice `json:"choices"`
	Usage   *Usage             `json:"usage,omitempty"`
}

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Error message.
	// example: invalid JSON body
	Error string `json:"error" example:"invalid JSON body"`
	// HTTP status code.
	// example: 400
	Code int `json:"code" example:"400"`
}
