package speech

import (
	"context"
	"strings"
)

const DefaultWordsPerMinute = 150.0

type WordTiming struct {
	Word      string
	StartTime float64
	EndTime   float64
}

type SpeechResult struct {
	Audio   []byte
	Timings []WordTiming
}

// VoiceConfig is the per-channel rendering voice: which voice, how fast, and
// at what pitch shift.
type VoiceConfig struct {
	ID           string
	Language     string
	SpeakingRate float64
	Pitch        float64
}

type Provider interface {
	Synthesize(ctx context.Context, text string, voice VoiceConfig) (*SpeechResult, error)
}

// AudioDuration returns the end of the last timed word.
func AudioDuration(timings []WordTiming) float64 {
	if len(timings) == 0 {
		return 0
	}
	return timings[len(timings)-1].EndTime
}

func EstimateTimingsFromDuration(text string, duration float64) []WordTiming {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	avgWordDuration := duration / float64(len(words))
	timings := make([]WordTiming, len(words))
	currentTime := 0.0

	for i, word := range words {
		wordDuration := avgWordDuration * (0.8 + 0.4*float64(len(word))/5.0)
		timings[i] = WordTiming{
			Word:      word,
			StartTime: currentTime,
			EndTime:   currentTime + wordDuration,
		}
		currentTime += wordDuration
	}

	if len(timings) > 0 && currentTime > 0 {
		scale := duration / currentTime
		for i := range timings {
			timings[i].StartTime *= scale
			timings[i].EndTime *= scale
		}
	}

	return timings
}

func EstimateTimings(text string, audio []byte) []WordTiming {
	duration := EstimateAudioDuration(audio)
	return EstimateTimingsFromDuration(text, duration)
}

func EstimateAudioDuration(audio []byte) float64 {
	bitrate := 128000.0
	return float64(len(audio)*8) / bitrate
}
