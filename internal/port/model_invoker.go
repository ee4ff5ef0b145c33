package port

import "context"

// CompletionRequest carries one chat-style model call.
type CompletionRequest struct {
	SystemInstruction string
	UserContent       string
	Model             string // empty selects the provider's default model
	MaxReplyTokens    int
}

// CompletionResponse is the raw reply of a model call.
type CompletionResponse struct {
	Text         string
	ModelUsed    string
	FinishReason string
}

// ModelInvoker abstracts a chat completion provider. Errors are transport,
// auth or rate-limit failures; the reply text itself is never validated here.
type ModelInvoker interface {
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)
}
