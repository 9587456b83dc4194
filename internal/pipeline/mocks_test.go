package pipeline

import (
	"context"
	"sync"
	"time"

	"podforge/internal/ai"
	"podforge/internal/core"
)

// mockChat implements ai.ChatProvider for tests. A respond func takes
// precedence over the fixed response/err pair; delay simulates a slow model.
type mockChat struct {
	mu       sync.Mutex
	response string
	err      error
	delay    time.Duration
	respond  func(req ai.CompletionRequest) (string, error)
	calls    []ai.CompletionRequest
}

func (m *mockChat) Complete(ctx context.Context, req ai.CompletionRequest) (string, error) {
	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	m.mu.Lock()
	m.calls = append(m.calls, req)
	m.mu.Unlock()

	if m.respond != nil {
		return m.respond(req)
	}
	return m.response, m.err
}

func (m *mockChat) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

func (m *mockChat) prompts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	prompts := make([]string, len(m.calls))
	for i, call := range m.calls {
		prompts[i] = call.Prompt
	}
	return prompts
}

// mockResearch implements ai.ResearchProvider for tests.
type mockResearch struct {
	mu      sync.Mutex
	respond func(prompt string) (string, error)
	delay   time.Duration
	queries []string
}

func (m *mockResearch) Query(ctx context.Context, prompt string) (string, error) {
	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	m.mu.Lock()
	m.queries = append(m.queries, prompt)
	m.mu.Unlock()

	if m.respond != nil {
		return m.respond(prompt)
	}
	return "- A meaningful research finding about the topic\n- Another substantial finding worth keeping", nil
}

// mockSpeech implements tts.SpeechProvider for tests.
type mockSpeech struct {
	mu    sync.Mutex
	err   error
	texts []string
}

func (m *mockSpeech) Synthesize(ctx context.Context, text string, settings core.VoiceSettings) ([]byte, error) {
	m.mu.Lock()
	m.texts = append(m.texts, text)
	m.mu.Unlock()

	if m.err != nil {
		return nil, m.err
	}
	return []byte("audio-bytes"), nil
}
