package thumbnail

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// renderVideoFrame captures a single frame from the video and renders it as
// a JPEG thumbnail. The frame is taken at min(1s, 10% of duration). The
// caller bounds ctx with the hard capture timeout.
func (g *Generator) renderVideoFrame(ctx context.Context, data []byte) ([]byte, error) {
	workDir, err := os.MkdirTemp("", "thumb-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(workDir)

	videoPath := filepath.Join(workDir, "input")
	if err := os.WriteFile(videoPath, data, 0600); err != nil {
		return nil, fmt.Errorf("failed to write temp video: %w", err)
	}

	seek := g.seekOffset(ctx, videoPath)
	framePath := filepath.Join(workDir, "frame.jpg")

	cmd := exec.CommandContext(ctx, g.ffmpegPath,
		"-y",
		"-ss", formatSeconds(seek),
		"-i", videoPath,
		"-vframes", "1",
		framePath,
	)
	if err := cmd.Run(); err != nil {
		// Seeking past the end of very short clips fails; retry from the start.
		cmd = exec.CommandContext(ctx, g.ffmpegPath,
			"-y", "-i", videoPath, "-vframes", "1", framePath)
		if err2 := cmd.Run(); err2 != nil {
			return nil, fmt.Errorf("failed to capture video frame: %w", err2)
		}
	}

	frame, err := os.ReadFile(framePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read captured frame: %w", err)
	}

	return g.renderImage(frame, videoMaxDimension, videoQuality)
}

// seekOffset probes the video duration and returns min(1s, 10% of it).
// Probe failures fall back to 1s.
func (g *Generator) seekOffset(ctx context.Context, videoPath string) time.Duration {
	probe := strings.Replace(g.ffmpegPath, "ffmpeg", "ffprobe", 1)
	out, err := exec.CommandContext(ctx, probe,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		videoPath,
	).Output()
	if err != nil {
		return time.Second
	}

	seconds, err := strconv.ParseFloat(strings.TrimSpace(string(out)), 64)
	if err != nil || seconds <= 0 {
		return time.Second
	}

	tenth := time.Duration(seconds / 10 * float64(time.Second))
	if tenth < time.Second {
		return tenth
	}
	return time.Second
}

func formatSeconds(d time.Duration) string {
	return strconv.FormatFloat(d.Seconds(), 'f', 3, 64)
}
