package types

// CompletionChoice is one generated alternative.
type CompletionChoice struct {
	// example: 0
	Index int `json:"index" example:"0"`
	// Generated text.
	// example: Paris
	Text string `json:"text" example:"Paris"`
	// Why generation stopped (stop, length).
	// example: length
	FinishReason string `json:"finish_reason,omitempty" example:"length"`
}

// Usage reports token accounting for a completion.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}
