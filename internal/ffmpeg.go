package internal

import (
	"context"
	"fmt"
	"math"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// Audio cuts downloaded audio streams into pieces the Whisper upload limit accepts
type Audio struct {
	cmdRunner CommandRunner
	tempDir   string
	logger    *zap.Logger
}

// NewAudio creates an ffmpeg-backed splitter writing chunks into tempDir
func NewAudio(cmdRunner CommandRunner, tempDir string, logger *zap.Logger) *Audio {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Audio{
		cmdRunner: cmdRunner,
		tempDir:   tempDir,
		logger:    logger.Named("ffmpeg"),
	}
}

// Duration asks ffprobe for the length of audioFile in seconds
func (a *Audio) Duration(ctx context.Context, audioFile string) (float64, error) {
	output, err := a.cmdRunner.Run(ctx, "ffprobe",
		"-v", "quiet",
		"-show_entries", "format=duration",
		"-of", "csv=p=0",
		"-i", audioFile)
	if err != nil {
		return 0, commandError("ffprobe", err, output)
	}

	seconds, err := strconv.ParseFloat(strings.TrimSpace(string(output)), 64)
	if err != nil {
		return 0, fmt.Errorf("parsing ffprobe duration %q: %w", strings.TrimSpace(string(output)), err)
	}
	if seconds <= 0 {
		return 0, fmt.Errorf("audio %s has no duration", filepath.Base(audioFile))
	}
	return seconds, nil
}

// Split cuts audioFile into parts pieces of equal length. Chunks keep the
// source container so no re-encoding happens, and are returned in play order.
func (a *Audio) Split(ctx context.Context, audioFile string, parts int) ([]string, error) {
	if parts < 2 {
		return []string{audioFile}, nil
	}
	if err := EnsureDirs(a.tempDir); err != nil {
		return nil, fmt.Errorf("creating temp directory: %w", err)
	}

	seconds, err := a.Duration(ctx, audioFile)
	if err != nil {
		return nil, err
	}

	ext := filepath.Ext(audioFile)
	stem := strings.TrimSuffix(filepath.Base(audioFile), ext)
	length := int(math.Ceil(seconds / float64(parts)))
	a.logger.Debug("splitting audio",
		zap.String("file", filepath.Base(audioFile)),
		zap.Float64("seconds", seconds),
		zap.Int("parts", parts),
		zap.Int("part_seconds", length))

	chunks := make([]string, 0, parts)
	for i := range parts {
		chunk := filepath.Join(a.tempDir, fmt.Sprintf("%s_part%02d%s", stem, i, ext))
		if err := a.cut(ctx, audioFile, i*length, length, chunk); err != nil {
			cleanupFiles(chunks...)
			return nil, fmt.Errorf("cutting part %d of %d: %w", i+1, parts, err)
		}
		chunks = append(chunks, chunk)
	}
	return chunks, nil
}

// cut copies length seconds starting at offset into chunk
func (a *Audio) cut(ctx context.Context, audioFile string, offset, length int, chunk string) error {
	output, err := a.cmdRunner.Run(ctx, "ffmpeg",
		"-v", "error",
		"-ss", strconv.Itoa(offset),
		"-t", strconv.Itoa(length),
		"-i", audioFile,
		"-c:a", "copy",
		"-y", chunk)
	if err != nil {
		return commandError("ffmpeg", err, output)
	}
	a.logger.Debug("wrote audio part", zap.String("file", filepath.Base(chunk)), zap.Int("offset", offset))
	return nil
}

func commandError(tool string, err error, output []byte) error {
	if strings.TrimSpace(string(output)) == "" {
		return fmt.Errorf("%s: %w", tool, err)
	}
	return fmt.Errorf("%s: %w: %s", tool, err, lastLine(string(output)))
}
