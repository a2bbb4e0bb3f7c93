package mediaprobe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// Prober inspects a media file.
type Prober interface {
	Probe(ctx context.Context, path string) (Info, error)
}

// Info is the container metadata the element builder consumes.
type Info struct {
	Streams []Stream `json:"streams"`
	Format  Format   `json:"format"`
}

// Stream describes a single stream in the container.
type Stream struct {
	Index     int    `json:"index"`
	CodecName string `json:"codec_name"`
	CodecType string `json:"codec_type"`
	Duration  string `json:"duration"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
}

// Format captures container-level metadata.
type Format struct {
	Filename   string `json:"filename"`
	Duration   string `json:"duration"`
	Size       string `json:"size"`
	FormatName string `json:"format_name"`
}

// DefaultTimeout bounds one ffprobe run when the caller's context has no
// deadline.
const DefaultTimeout = 30 * time.Second

// FFprobe runs the ffprobe binary.
type FFprobe struct {
	// Binary is the executable; "ffprobe" from PATH when empty.
	Binary  string
	Timeout time.Duration
}

func (f FFprobe) binary() string {
	if binary := strings.TrimSpace(f.Binary); binary != "" {
		return binary
	}
	return "ffprobe"
}

// LookPath resolves the ffprobe executable.
func (f FFprobe) LookPath() (string, error) {
	resolved, err := exec.LookPath(f.binary())
	if err != nil {
		return "", fmt.Errorf("binary %q not found: %w", f.binary(), err)
	}
	return resolved, nil
}

// Probe executes ffprobe against path and decodes the JSON response.
func (f FFprobe) Probe(ctx context.Context, path string) (Info, error) {
	binary := f.binary()
	path = strings.TrimSpace(path)
	if path == "" {
		return Info{}, errors.New("ffprobe: empty path")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if _, ok := ctx.Deadline(); !ok {
		timeout := f.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, binary, "-v", "error", "-hide_banner", "-show_format", "-show_streams", "-of", "json", "--", path)
	output, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return Info{}, fmt.Errorf("ffprobe %s: %w: %s", path, err, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return Info{}, fmt.Errorf("ffprobe %s: %w", path, err)
	}
	return Parse(output)
}

// Parse decodes an ffprobe JSON report.
func Parse(data []byte) (Info, error) {
	var info Info
	if err := json.Unmarshal(data, &info); err != nil {
		return Info{}, fmt.Errorf("ffprobe parse: %w", err)
	}
	return info, nil
}

// DurationMillis returns the container duration in milliseconds, falling
// back to the longest stream. It returns 0 when no duration is reported.
func (i Info) DurationMillis() int64 {
	seconds := parseSeconds(i.Format.Duration)
	if seconds <= 0 {
		for _, stream := range i.Streams {
			seconds = math.Max(seconds, parseSeconds(stream.Duration))
		}
	}
	if seconds <= 0 {
		return 0
	}
	return int64(math.Round(seconds * 1000))
}

// StreamCount returns the number of streams of codecType ("video", "audio").
func (i Info) StreamCount(codecType string) int {
	count := 0
	for _, stream := range i.Streams {
		if strings.EqualFold(stream.CodecType, codecType) {
			count++
		}
	}
	return count
}

func parseSeconds(value string) float64 {
	cleaned := strings.TrimSpace(value)
	if cleaned == "" {
		return 0
	}
	parsed, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || math.IsNaN(parsed) || math.IsInf(parsed, 0) {
		return 0
	}
	return parsed
}
