package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"podforge/internal/core"
	"podforge/internal/store"
	"podforge/internal/tts"
)

// AudioSynthesizer converts script text to an audio artifact: speech bytes
// from the TTS capability, persisted under a unique filename, returned as a
// retrievable URL with an estimated duration. TTS failures propagate;
// synthesis cannot be meaningfully faked.
type AudioSynthesizer struct {
	speech tts.SpeechProvider
	files  *store.FileStore
}

// NewAudioSynthesizer creates a synthesizer over the speech capability and
// audio file store.
func NewAudioSynthesizer(speech tts.SpeechProvider, files *store.FileStore) *AudioSynthesizer {
	return &AudioSynthesizer{speech: speech, files: files}
}

// Synthesize produces audio for a full script.
func (s *AudioSynthesizer) Synthesize(ctx context.Context, scriptText string, settings core.VoiceSettings) (core.AudioArtifact, error) {
	return s.synthesize(ctx, scriptText, settings, fmt.Sprintf("podcast-%s.mp3", uuid.NewString()))
}

// SynthesizeSegment produces audio for a single script segment, named so
// regenerated segments don't collide with whole-script artifacts.
func (s *AudioSynthesizer) SynthesizeSegment(ctx context.Context, segmentText string, settings core.VoiceSettings, segmentIndex int) (core.AudioArtifact, error) {
	if segmentIndex < 0 {
		return core.AudioArtifact{}, newValidationError("audio-synthesizer", "segment index must not be negative")
	}
	return s.synthesize(ctx, segmentText, settings, fmt.Sprintf("segment-%d-%s.mp3", segmentIndex, uuid.NewString()))
}

func (s *AudioSynthesizer) synthesize(ctx context.Context, text string, settings core.VoiceSettings, filename string) (core.AudioArtifact, error) {
	if strings.TrimSpace(text) == "" {
		return core.AudioArtifact{}, newValidationError("audio-synthesizer", "script text is required")
	}
	if s.speech == nil || s.files == nil {
		return core.AudioArtifact{}, newStageError("audio-synthesizer", "audio synthesis is unavailable", nil)
	}

	cleaned := tts.CleanTextForSpeech(text)
	audio, err := s.speech.Synthesize(ctx, cleaned, settings)
	if err != nil {
		return core.AudioArtifact{}, newStageError("audio-synthesizer", "audio synthesis failed", err)
	}

	url, err := s.files.Save(filename, audio)
	if err != nil {
		return core.AudioArtifact{}, newStageError("audio-synthesizer", "saving audio failed", err)
	}

	// Duration is estimated from word count at speaking pace, not measured
	// from the audio stream, and does not vary with the speed setting.
	return core.AudioArtifact{
		AudioURL: url,
		Duration: tts.EstimateDurationSeconds(text),
	}, nil
}
