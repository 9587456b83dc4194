package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"podforge/internal/core"
	"podforge/internal/store"
)

func newTestFileStore(t *testing.T) *store.FileStore {
	t.Helper()
	files, err := store.NewFileStore(t.TempDir(), "/audio")
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}
	return files
}

func TestSynthesizeEstimatesDurationFromWordCount(t *testing.T) {
	speech := &mockSpeech{}
	synthesizer := NewAudioSynthesizer(speech, newTestFileStore(t))

	// 300 words at 150 wpm is exactly 120 seconds, regardless of speed.
	text := strings.TrimSpace(strings.Repeat("word ", 300))
	artifact, err := synthesizer.Synthesize(context.Background(), text, core.VoiceSettings{Speed: 1.5})
	if err != nil {
		t.Fatalf("Synthesize() error = %v", err)
	}

	if artifact.Duration != 120 {
		t.Errorf("duration = %d, want 120", artifact.Duration)
	}
	if !strings.HasPrefix(artifact.AudioURL, "/audio/podcast-") || !strings.HasSuffix(artifact.AudioURL, ".mp3") {
		t.Errorf("audioUrl = %q, want /audio/podcast-<id>.mp3", artifact.AudioURL)
	}
}

func TestSynthesizeCleansMarkersBeforeTTS(t *testing.T) {
	speech := &mockSpeech{}
	synthesizer := NewAudioSynthesizer(speech, newTestFileStore(t))

	_, err := synthesizer.Synthesize(context.Background(), "Hello [pause] world [emphasis]now", core.VoiceSettings{})
	if err != nil {
		t.Fatalf("Synthesize() error = %v", err)
	}

	if len(speech.texts) != 1 {
		t.Fatalf("speech called %d times, want 1", len(speech.texts))
	}
	if strings.Contains(speech.texts[0], "[pause]") || strings.Contains(speech.texts[0], "[emphasis]") {
		t.Errorf("markers reached the TTS provider: %q", speech.texts[0])
	}
}

func TestSynthesizeFailurePropagates(t *testing.T) {
	speech := &mockSpeech{err: fmt.Errorf("voice service down")}
	synthesizer := NewAudioSynthesizer(speech, newTestFileStore(t))

	_, err := synthesizer.Synthesize(context.Background(), "some script", core.VoiceSettings{})

	var stageErr *StageError
	if !errors.As(err, &stageErr) {
		t.Fatalf("error = %v, want *StageError", err)
	}
	if strings.Contains(stageErr.Message, "voice service down") {
		t.Errorf("message %q leaks the provider error", stageErr.Message)
	}
}

func TestSynthesizeSegmentNaming(t *testing.T) {
	synthesizer := NewAudioSynthesizer(&mockSpeech{}, newTestFileStore(t))

	artifact, err := synthesizer.SynthesizeSegment(context.Background(), "a paragraph", core.VoiceSettings{}, 4)
	if err != nil {
		t.Fatalf("SynthesizeSegment() error = %v", err)
	}
	if !strings.HasPrefix(artifact.AudioURL, "/audio/segment-4-") {
		t.Errorf("audioUrl = %q, want segment-4-<id> prefix", artifact.AudioURL)
	}
}

func TestSynthesizeEmptyTextIsValidationError(t *testing.T) {
	synthesizer := NewAudioSynthesizer(&mockSpeech{}, newTestFileStore(t))

	_, err := synthesizer.Synthesize(context.Background(), "  ", core.VoiceSettings{})

	var stageErr *StageError
	if !errors.As(err, &stageErr) || !stageErr.Validation {
		t.Fatalf("error = %v, want validation StageError", err)
	}
}
