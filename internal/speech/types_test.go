package speech

import (
	"context"
	"math"
	"testing"
)

func TestAudioDuration(t *testing.T) {
	tests := []struct {
		name    string
		timings []WordTiming
		want    float64
	}{
		{name: "empty", timings: nil, want: 0},
		{
			name: "singleWord",
			timings: []WordTiming{
				{Word: "Hello", StartTime: 0, EndTime: 0.5},
			},
			want: 0.5,
		},
		{
			name: "multipleWords",
			timings: []WordTiming{
				{Word: "Hello", StartTime: 0, EndTime: 0.5},
				{Word: "World", StartTime: 0.5, EndTime: 1.2},
			},
			want: 1.2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AudioDuration(tt.timings); got != tt.want {
				t.Errorf("AudioDuration() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEstimateTimingsFromDuration(t *testing.T) {
	text := "one two three four five"
	duration := 10.0

	timings := EstimateTimingsFromDuration(text, duration)
	if len(timings) != 5 {
		t.Fatalf("got %d timings, want 5", len(timings))
	}

	for i := 1; i < len(timings); i++ {
		if timings[i].StartTime < timings[i-1].StartTime {
			t.Errorf("timings not monotonic at %d", i)
		}
	}

	last := timings[len(timings)-1].EndTime
	if math.Abs(last-duration) > 0.01 {
		t.Errorf("last EndTime = %v, want ~%v", last, duration)
	}
}

func TestEstimateTimingsEmptyText(t *testing.T) {
	if got := EstimateTimingsFromDuration("", 5); got != nil {
		t.Errorf("expected nil timings for empty text, got %v", got)
	}
}

func TestStubProviderSynthesize(t *testing.T) {
	provider := NewStubProvider(150)

	result, err := provider.Synthesize(context.Background(), "hello world test", VoiceConfig{SpeakingRate: 1.0})
	if err != nil {
		t.Fatalf("Synthesize() error: %v", err)
	}

	if len(result.Audio) < wavHeaderSize {
		t.Errorf("audio shorter than WAV header: %d bytes", len(result.Audio))
	}
	if string(result.Audio[0:4]) != "RIFF" {
		t.Error("audio missing RIFF header")
	}
	if len(result.Timings) != 3 {
		t.Errorf("got %d timings, want 3", len(result.Timings))
	}
}

func TestStubProviderSpeakingRate(t *testing.T) {
	provider := NewStubProvider(150)

	slow, _ := provider.Synthesize(context.Background(), "one two three four", VoiceConfig{SpeakingRate: 0.5})
	fast, _ := provider.Synthesize(context.Background(), "one two three four", VoiceConfig{SpeakingRate: 2.0})

	if AudioDuration(slow.Timings) <= AudioDuration(fast.Timings) {
		t.Error("slower rate should produce longer audio")
	}
}
