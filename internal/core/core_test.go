package core

import (
	"encoding/json"
	"testing"
)

func TestEpisodePlanValidate(t *testing.T) {
	tests := []struct {
		name string
		plan EpisodePlanResult
		want bool
	}{
		{
			name: "valid single episode",
			plan: EpisodePlanResult{
				TotalEpisodes: 1,
				Episodes:      []Episode{{EpisodeNumber: 1, Title: "Only one"}},
			},
			want: true,
		},
		{
			name: "valid three episodes",
			plan: EpisodePlanResult{
				IsMultiEpisode: true,
				TotalEpisodes:  3,
				Episodes: []Episode{
					{EpisodeNumber: 1}, {EpisodeNumber: 2}, {EpisodeNumber: 3},
				},
			},
			want: true,
		},
		{
			name: "total mismatch",
			plan: EpisodePlanResult{
				TotalEpisodes: 3,
				Episodes:      []Episode{{EpisodeNumber: 1}, {EpisodeNumber: 2}},
			},
			want: false,
		},
		{
			name: "duplicate numbers",
			plan: EpisodePlanResult{
				TotalEpisodes: 2,
				Episodes:      []Episode{{EpisodeNumber: 1}, {EpisodeNumber: 1}},
			},
			want: false,
		},
		{
			name: "gap in numbering",
			plan: EpisodePlanResult{
				TotalEpisodes: 2,
				Episodes:      []Episode{{EpisodeNumber: 1}, {EpisodeNumber: 3}},
			},
			want: false,
		},
		{
			name: "zero-based numbering",
			plan: EpisodePlanResult{
				TotalEpisodes: 2,
				Episodes:      []Episode{{EpisodeNumber: 0}, {EpisodeNumber: 1}},
			},
			want: false,
		},
		{
			name: "empty plan",
			plan: EpisodePlanResult{},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.plan.Validate(); got != tt.want {
				t.Errorf("Validate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestProjectJSONRoundTrip(t *testing.T) {
	project := Project{
		ID:            "p1",
		Title:         "How UPI works",
		RawPrompt:     "Explain how UPI works",
		RefinedPrompt: "A clear explanation of UPI for a general audience",
		TopicAnalysis: &TopicAnalysis{Domain: "fintech", Scope: "multi-faceted"},
		EpisodeScripts: map[int]*ScriptResult{
			2: {Content: "episode two script", TotalDuration: 1080},
		},
		EpisodeAudio:  map[int]string{2: "/audio/podcast-abc.mp3"},
		VoiceSettings: VoiceSettings{Model: "tts-1", Voice: "alloy", Speed: 1.0},
	}

	data, err := json.Marshal(project)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var decoded Project
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	if decoded.TopicAnalysis == nil || decoded.TopicAnalysis.Domain != "fintech" {
		t.Errorf("topic analysis lost in round trip: %+v", decoded.TopicAnalysis)
	}
	if script, ok := decoded.EpisodeScripts[2]; !ok || script.Content != "episode two script" {
		t.Errorf("episode script map lost in round trip: %+v", decoded.EpisodeScripts)
	}
	if decoded.EpisodeAudio[2] != "/audio/podcast-abc.mp3" {
		t.Errorf("episode audio map lost in round trip: %+v", decoded.EpisodeAudio)
	}
}
