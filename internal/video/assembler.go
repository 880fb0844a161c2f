package video

import (
	"context"
	"fmt"
	"math/rand"
	"os/exec"
	"strconv"
	"strings"

	"clipforge/internal/storage"
)

const (
	defaultFFmpegPath = "ffmpeg"
	defaultFFprobe    = "ffprobe"
)

type Assembler struct {
	ffmpegPath string
	ffprobe    string
	bgProvider storage.BackgroundProvider
	verbose    bool
}

type AssembleRequest struct {
	AudioPath     string
	SubtitlePath  string
	AudioDuration float64
	OutputPath    string
	Width         int
	Height        int
}

type AssembleResult struct {
	OutputPath string
	Width      int
	Height     int
	Duration   float64
}

func NewAssembler(bgProvider storage.BackgroundProvider, verbose bool) *Assembler {
	return &Assembler{
		ffmpegPath: defaultFFmpegPath,
		ffprobe:    defaultFFprobe,
		bgProvider: bgProvider,
		verbose:    verbose,
	}
}

// Assemble renders one video: a looped background clip cropped to the target
// dimensions, the narration audio, and the SRT captions burned in.
func (a *Assembler) Assemble(ctx context.Context, req AssembleRequest) (*AssembleResult, error) {
	backgroundClip, err := a.bgProvider.RandomBackgroundClip(ctx)
	if err != nil {
		return nil, fmt.Errorf("select background clip: %w", err)
	}

	clipDuration, err := a.probeDuration(ctx, backgroundClip)
	if err != nil {
		return nil, fmt.Errorf("probe clip duration: %w", err)
	}

	startTime := randomStartTime(clipDuration, req.AudioDuration)

	args := a.buildArgs(backgroundClip, startTime, req)

	cmd := exec.CommandContext(ctx, a.ffmpegPath, args...)
	if output, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("ffmpeg failed: %w, output: %s", err, string(output))
	}

	return &AssembleResult{
		OutputPath: req.OutputPath,
		Width:      req.Width,
		Height:     req.Height,
		Duration:   req.AudioDuration,
	}, nil
}

func (a *Assembler) buildArgs(backgroundClip string, startTime float64, req AssembleRequest) []string {
	scale := fmt.Sprintf("scale=%d:%d:force_original_aspect_ratio=increase,crop=%d:%d",
		req.Width, req.Height, req.Width, req.Height)
	filter := fmt.Sprintf("[0:v]%s,subtitles=%s[v]", scale, escapeFilterPath(req.SubtitlePath))

	args := []string{
		"-ss", fmt.Sprintf("%.2f", startTime),
		"-stream_loop", "-1",
		"-i", backgroundClip,
		"-i", req.AudioPath,
		"-filter_complex", filter,
		"-map", "[v]",
		"-map", "1:a",
		"-t", fmt.Sprintf("%.2f", req.AudioDuration),
		"-c:v", "libx264",
		"-preset", "fast",
		"-c:a", "aac",
		"-y",
	}
	if !a.verbose {
		args = append(args, "-loglevel", "error")
	}
	return append(args, req.OutputPath)
}

func (a *Assembler) probeDuration(ctx context.Context, path string) (float64, error) {
	cmd := exec.CommandContext(ctx, a.ffprobe,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path)
	output, err := cmd.Output()
	if err != nil {
		return 0, err
	}
	return strconv.ParseFloat(strings.TrimSpace(string(output)), 64)
}

func randomStartTime(clipDuration, audioDuration float64) float64 {
	maxStart := clipDuration - audioDuration
	if maxStart <= 0 {
		return 0
	}
	return rand.Float64() * maxStart
}

// ffmpeg's subtitles filter treats ':' and '\' as option separators.
func escapeFilterPath(path string) string {
	path = strings.ReplaceAll(path, `\`, `\\`)
	path = strings.ReplaceAll(path, ":", `\:`)
	return path
}
