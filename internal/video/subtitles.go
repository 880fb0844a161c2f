package video

import (
	"fmt"
	"os"
	"strings"

	"clipforge/internal/speech"
)

const (
	maxWordsPerCue = 3
	maxCueDuration = 2.5
	minCueDuration = 0.3
)

// Cue is one subtitle entry timed against the narration audio.
type Cue struct {
	Index     int
	StartTime float64
	EndTime   float64
	Text      string
}

// BuildCues groups word timings into short caption chunks. A chunk closes when
// it reaches maxWordsPerCue words or maxCueDuration seconds.
func BuildCues(timings []speech.WordTiming) []Cue {
	if len(timings) == 0 {
		return nil
	}

	var cues []Cue
	var words []string
	start := timings[0].StartTime
	end := start

	flush := func() {
		if len(words) == 0 {
			return
		}
		if end-start < minCueDuration {
			end = start + minCueDuration
		}
		cues = append(cues, Cue{
			Index:     len(cues) + 1,
			StartTime: start,
			EndTime:   end,
			Text:      strings.Join(words, " "),
		})
		words = nil
	}

	for _, t := range timings {
		if len(words) == 0 {
			start = t.StartTime
		}
		words = append(words, t.Word)
		end = t.EndTime

		if len(words) >= maxWordsPerCue || end-start >= maxCueDuration {
			flush()
		}
	}
	flush()

	return cues
}

// FormatSRT renders cues as SubRip text.
func FormatSRT(cues []Cue) string {
	var b strings.Builder
	for _, cue := range cues {
		fmt.Fprintf(&b, "%d\n%s --> %s\n%s\n\n",
			cue.Index, srtTimestamp(cue.StartTime), srtTimestamp(cue.EndTime), cue.Text)
	}
	return b.String()
}

// WriteSRT times the script's words against the audio and writes the SRT file.
func WriteSRT(timings []speech.WordTiming, path string) error {
	cues := BuildCues(timings)
	if len(cues) == 0 {
		return fmt.Errorf("no word timings to subtitle")
	}
	if err := os.WriteFile(path, []byte(FormatSRT(cues)), 0644); err != nil {
		return fmt.Errorf("write srt: %w", err)
	}
	return nil
}

func srtTimestamp(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	millis := int(seconds*1000 + 0.5)
	h := millis / 3600000
	m := millis % 3600000 / 60000
	s := millis % 60000 / 1000
	ms := millis % 1000
	return fmt.Sprintf("%02d:%02d:%02d,%03d", h, m, s, ms)
}
