package thumbs

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/nfnt/resize"
)

// FFmpegExtractor fulfils the frame extraction capability by shelling
// out to ffmpeg. Catalog srcs are web paths rooted at MediaRoot; http
// and data URLs pass straight through to ffmpeg.
type FFmpegExtractor struct {
	FFmpegPath  string
	FFprobePath string
	MediaRoot   string
}

func NewFFmpegExtractor(mediaRoot string) *FFmpegExtractor {
	return &FFmpegExtractor{
		FFmpegPath:  "ffmpeg",
		FFprobePath: "ffprobe",
		MediaRoot:   mediaRoot,
	}
}

func (e *FFmpegExtractor) ExtractFrame(ctx context.Context, src string, at time.Duration, maxWidth int) (image.Image, error) {
	asset := e.resolve(src)

	// Seek to a small fraction of the duration, capped low, to find a
	// representative non-black frame cheaply. If probing fails we just
	// use the cap.
	if duration, err := e.probeDuration(ctx, asset); err == nil && duration > 0 {
		if tenth := duration / 10; tenth < at {
			at = tenth
		}
	}

	args := []string{
		"-v", "error",
		"-ss", fmt.Sprintf("%.3f", at.Seconds()),
		"-i", asset,
		"-frames:v", "1",
		"-f", "image2pipe",
		"-c:v", "mjpeg",
		"pipe:1",
	}
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, e.FFmpegPath, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ffmpeg frame grab failed: %w: %s", err, strings.TrimSpace(stderr.String()))
	}

	frame, _, err := image.Decode(&stdout)
	if err != nil {
		return nil, fmt.Errorf("failed to decode extracted frame: %w", err)
	}
	if maxWidth > 0 && frame.Bounds().Dx() > maxWidth {
		frame = resize.Resize(uint(maxWidth), 0, frame, resize.Lanczos3)
	}
	return frame, nil
}

func (e *FFmpegExtractor) probeDuration(ctx context.Context, asset string) (time.Duration, error) {
	out, err := exec.CommandContext(ctx, e.FFprobePath,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "csv=p=0",
		asset,
	).Output()
	if err != nil {
		return 0, err
	}
	seconds, err := strconv.ParseFloat(strings.TrimSpace(string(out)), 64)
	if err != nil {
		return 0, err
	}
	return time.Duration(seconds * float64(time.Second)), nil
}

func (e *FFmpegExtractor) resolve(src string) string {
	if strings.HasPrefix(src, "http") || strings.HasPrefix(src, "data:") {
		return src
	}
	return filepath.Join(e.MediaRoot, filepath.FromSlash(strings.TrimPrefix(src, "/")))
}
