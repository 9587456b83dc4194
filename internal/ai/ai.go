// Package ai defines the abstract provider capabilities the content pipeline
// is written against. Concrete vendor bindings are adapters behind these
// interfaces, never part of the pipeline logic.
package ai

import "context"

// CompletionRequest carries the normalized parameters for a chat completion.
type CompletionRequest struct {
	SystemPrompt string  // Optional system instruction
	Prompt       string  // User prompt
	Temperature  float32 // 0.0 - 1.0
	MaxTokens    int32   // Token budget; 0 uses the provider default
	JSONMode     bool    // Ask the provider for a JSON-only response
}

// ChatProvider is the chat-completion capability used by the analyzer,
// refiner, integrator, planner, script generator and quality assessor.
type ChatProvider interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// ResearchProvider is the research/search capability. Unlike a chat model it
// is expected to browse and reason over current information, and queries can
// take minutes to resolve.
type ResearchProvider interface {
	Query(ctx context.Context, prompt string) (string, error)
}
