package internal

import (
	"context"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
	"go.uber.org/zap"
)

// OpenAIClientInterface defines the interface for OpenAI client operations
type OpenAIClientInterface interface {
	CreateTranscription(ctx context.Context, file *os.File, language string) (string, error)
}

// OpenAIClient wraps the official OpenAI Go SDK
type OpenAIClient struct {
	client *openai.Client
}

// NewOpenAIClient creates a new OpenAI client
func NewOpenAIClient(apiKey string) *OpenAIClient {
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &OpenAIClient{client: &client}
}

// CreateTranscription implements the transcription method
func (c *OpenAIClient) CreateTranscription(ctx context.Context, file *os.File, language string) (string, error) {
	params := openai.AudioTranscriptionNewParams{
		File:  file,
		Model: openai.AudioModelWhisper1,
	}
	if language != "" {
		params.Language = openai.String(language)
	}
	resp, err := c.client.Audio.Transcriptions.New(ctx, params)
	if err != nil {
		return "", err
	}
	return resp.Text, nil
}

// whisperFormats are the container extensions the audio API accepts
var whisperFormats = []string{".flac", ".m4a", ".mp3", ".mp4", ".mpeg", ".mpga", ".oga", ".ogg", ".wav", ".webm"}

// Whisper transcribes audio URLs with OpenAI's Whisper API.
// The stream is downloaded first because the API only accepts uploads.
type Whisper struct {
	client       OpenAIClientInterface
	audio        *Audio
	httpClient   *http.Client
	cfg          WhisperConfig
	whisperLimit int64
	logger       *zap.Logger
	clientOnce   sync.Once
}

var _ Transcriber = (*Whisper)(nil)

// NewWhisper creates a Whisper transcriber.
// A nil client is created lazily from cfg.APIKey on first use.
func NewWhisper(client OpenAIClientInterface, audio *Audio, cfg WhisperConfig, logger *zap.Logger) *Whisper {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Whisper{
		client:       client,
		audio:        audio,
		httpClient:   &http.Client{},
		cfg:          cfg,
		whisperLimit: WhisperLimit,
		logger:       logger.Named("whisper"),
	}
}

// ensureClient initializes the OpenAI client if needed
func (w *Whisper) ensureClient() error {
	if w.client != nil {
		return nil
	}

	if w.cfg.APIKey == "" {
		return ErrMissingToken
	}

	w.clientOnce.Do(func() {
		w.client = NewOpenAIClient(w.cfg.APIKey)
	})

	return nil
}

// Transcribe downloads audioURL and transcribes it, in chunks if it exceeds the upload limit
func (w *Whisper) Transcribe(ctx context.Context, audioURL string) (string, error) {
	if err := w.ensureClient(); err != nil {
		return "", transcriptionErr(audioURL, "", err)
	}
	if w.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.cfg.Timeout)
		defer cancel()
	}

	audioFile, err := w.download(ctx, audioURL)
	if err != nil {
		return "", transcriptionErr(audioURL, "downloading audio", err)
	}
	defer cleanupFiles(audioFile)

	info, err := os.Stat(audioFile)
	if err != nil {
		return "", transcriptionErr(audioURL, "getting audio file info", err)
	}

	numChunks := int(math.Ceil(float64(info.Size()) / float64(w.whisperLimit)))

	chunks := []string{audioFile}
	if numChunks > 1 {
		chunks, err = w.audio.Split(ctx, audioFile, numChunks)
		if err != nil {
			return "", transcriptionErr(audioURL, "splitting audio", err)
		}
		defer cleanupFiles(chunks...)
	}

	transcript, err := w.processAudioChunks(ctx, chunks)
	if err != nil {
		return "", transcriptionErr(audioURL, "", err)
	}
	return transcript, nil
}

// download stores the audio stream in the temp directory under a unique name
func (w *Whisper) download(ctx context.Context, audioURL string) (string, error) {
	if err := EnsureDirs(w.cfg.TempDir); err != nil {
		return "", fmt.Errorf("creating temp directory: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, audioURL, nil)
	if err != nil {
		return "", err
	}
	resp, err := w.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("audio stream returned %s", resp.Status)
	}

	outputPath := filepath.Join(w.cfg.TempDir, uuid.New().String()+audioExtension(audioURL))
	file, err := os.Create(outputPath)
	if err != nil {
		return "", err
	}

	written, copyErr := io.Copy(file, resp.Body)
	closeErr := file.Close()
	if copyErr != nil || closeErr != nil {
		cleanupFiles(outputPath)
		if copyErr != nil {
			return "", copyErr
		}
		return "", closeErr
	}

	w.logger.Debug("downloaded audio", zap.String("path", outputPath), zap.Int64("bytes", written))
	return outputPath, nil
}

// processAudioChunks transcribes audio chunks sequentially. A single chunk is
// returned as the API sent it; multiple chunks are trimmed and joined with newlines.
func (w *Whisper) processAudioChunks(ctx context.Context, chunks []string) (string, error) {
	numChunks := len(chunks)

	var sb strings.Builder
	for i, chunkPath := range chunks {
		file, err := os.Open(chunkPath)
		if err != nil {
			return "", fmt.Errorf("opening chunk %s: %w", chunkPath, err)
		}

		text, err := w.client.CreateTranscription(ctx, file, w.cfg.Language)
		if closeErr := file.Close(); closeErr != nil {
			w.logger.Warn("failed to close chunk", zap.String("path", chunkPath), zap.Error(closeErr))
		}
		if err != nil {
			return "", fmt.Errorf("transcribing chunk %d: %w", i+1, err)
		}

		if numChunks == 1 {
			return text, nil
		}
		sb.WriteString(strings.TrimSpace(text))
		if i < numChunks-1 {
			sb.WriteString("\n")
		}

		w.logger.Debug("transcribed chunk", zap.Int("chunk", i+1), zap.Int("of", numChunks))
	}

	return sb.String(), nil
}

// audioExtension guesses the container from a stream URL so the API can detect the format
func audioExtension(audioURL string) string {
	u, err := url.Parse(audioURL)
	if err != nil {
		return ".mp3"
	}

	// googlevideo URLs carry the container as mime=audio/webm
	switch mime := u.Query().Get("mime"); mime {
	case "audio/webm":
		return ".webm"
	case "audio/mp4":
		return ".m4a"
	case "audio/mpeg":
		return ".mp3"
	case "audio/ogg":
		return ".ogg"
	}

	if ext := strings.ToLower(path.Ext(u.Path)); slices.Contains(whisperFormats, ext) {
		return ext
	}
	return ".mp3"
}
