package internal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/replicate/replicate-go"
	"go.uber.org/zap"
)

const (
	defaultReplicateBaseURL = "https://api.replicate.com/v1"
	defaultReplicateModel   = "openai/whisper"
	defaultPollInterval     = time.Second
)

// ReplicateClient runs the Whisper model hosted on Replicate
type ReplicateClient struct {
	cfg        ReplicateConfig
	httpClient *http.Client
	logger     *zap.Logger

	mu      sync.Mutex
	api     *replicate.Client
	version string
}

var _ Transcriber = (*ReplicateClient)(nil)

// ReplicateOption customizes the client
type ReplicateOption func(*ReplicateClient)

// WithReplicateHTTPClient overrides the HTTP client used by the SDK
func WithReplicateHTTPClient(client *http.Client) ReplicateOption {
	return func(c *ReplicateClient) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithReplicateLogger sets the diagnostic logger
func WithReplicateLogger(logger *zap.Logger) ReplicateOption {
	return func(c *ReplicateClient) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewReplicateClient creates a client with the given fixed configuration.
// The SDK client is built on first use so a missing token surfaces as ErrMissingToken.
func NewReplicateClient(cfg ReplicateConfig, opts ...ReplicateOption) *ReplicateClient {
	cfg.APIToken = strings.TrimSpace(cfg.APIToken)
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultReplicateBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = defaultReplicateModel
	}
	if cfg.Language == "" {
		cfg.Language = "en"
	}
	if cfg.ModelSize == "" {
		cfg.ModelSize = "tiny"
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = defaultPollInterval
	}

	client := &ReplicateClient{
		cfg:     cfg,
		logger:  zap.NewNop(),
		version: strings.TrimSpace(cfg.Version),
	}
	for _, opt := range opts {
		opt(client)
	}
	client.logger = client.logger.Named("replicate")
	return client
}

// Transcribe creates a prediction for audioURL and waits for its transcription.
// The model's text is returned as is.
func (c *ReplicateClient) Transcribe(ctx context.Context, audioURL string) (string, error) {
	if c.cfg.APIToken == "" {
		return "", transcriptionErr(audioURL, "", ErrMissingToken)
	}
	if c.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()
	}

	api, version, err := c.prepare(ctx)
	if err != nil {
		return "", transcriptionErr(audioURL, "looking up model version", c.wrap(ctx, err))
	}

	input := replicate.PredictionInput{
		"audio":    audioURL,
		"language": c.cfg.Language,
		"model":    c.cfg.ModelSize,
	}

	start := time.Now()
	pred, err := api.CreatePrediction(ctx, version, input, nil, false)
	if err != nil {
		return "", transcriptionErr(audioURL, "creating prediction", c.wrap(ctx, err))
	}
	c.logger.Debug("prediction created", zap.String("id", pred.ID), zap.String("status", string(pred.Status)))

	if !finished(pred.Status) {
		if err := api.Wait(ctx, pred, replicate.WithPollingInterval(c.cfg.PollInterval)); err != nil {
			return "", transcriptionErr(audioURL, "waiting for prediction "+pred.ID, c.wrap(ctx, err))
		}
	}

	switch pred.Status {
	case replicate.Succeeded:
	case replicate.Failed:
		return "", transcriptionErr(audioURL, fmt.Sprintf("model error: %v", pred.Error), nil)
	default:
		return "", transcriptionErr(audioURL, "prediction "+string(pred.Status), nil)
	}

	raw, err := json.Marshal(pred.Output)
	if err != nil {
		return "", transcriptionErr(audioURL, "reading model output", err)
	}
	text, err := extractTranscription(raw)
	if err != nil {
		return "", transcriptionErr(audioURL, "reading model output", err)
	}

	c.logger.Debug("prediction succeeded",
		zap.String("id", pred.ID),
		zap.Duration("elapsed", time.Since(start)),
		zap.Int("chars", len(text)))
	return text, nil
}

// prepare builds the SDK client once and resolves the model version,
// looking up the model's latest one when none is configured
func (c *ReplicateClient) prepare(ctx context.Context) (*replicate.Client, string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.api == nil {
		opts := []replicate.ClientOption{
			replicate.WithToken(c.cfg.APIToken),
			replicate.WithBaseURL(c.cfg.BaseURL),
		}
		if c.httpClient != nil {
			opts = append(opts, replicate.WithHTTPClient(c.httpClient))
		}
		api, err := replicate.NewClient(opts...)
		if err != nil {
			return nil, "", fmt.Errorf("creating replicate client: %w", err)
		}
		c.api = api
	}
	if c.version != "" {
		return c.api, c.version, nil
	}

	owner, name, ok := strings.Cut(c.cfg.Model, "/")
	if !ok || owner == "" || name == "" {
		return nil, "", fmt.Errorf("model %q is not in owner/name form", c.cfg.Model)
	}
	model, err := c.api.GetModel(ctx, owner, name)
	if err != nil {
		return nil, "", err
	}
	if model.LatestVersion == nil || model.LatestVersion.ID == "" {
		return nil, "", fmt.Errorf("model %s has no published version", c.cfg.Model)
	}

	c.version = model.LatestVersion.ID
	c.logger.Debug("using latest model version", zap.String("model", c.cfg.Model), zap.String("version", c.version))
	return c.api, c.version, nil
}

// wrap prefers the context error and flags rejected tokens
func (c *ReplicateClient) wrap(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	var apiErr *replicate.APIError
	if errors.As(err, &apiErr) && (apiErr.Status == http.StatusUnauthorized || apiErr.Status == http.StatusForbidden) {
		return fmt.Errorf("authentication failed (check the API token): %w", err)
	}
	return err
}

// extractTranscription accepts Whisper's {"transcription": ...} object or a bare string
func extractTranscription(raw json.RawMessage) (string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return "", errors.New("prediction has no output")
	}

	var obj struct {
		Transcription *string `json:"transcription"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil && obj.Transcription != nil {
		return *obj.Transcription, nil
	}

	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return text, nil
	}

	return "", fmt.Errorf("unexpected output: %.200s", string(raw))
}

func finished(status replicate.Status) bool {
	switch status {
	case replicate.Succeeded, replicate.Failed, replicate.Canceled:
		return true
	}
	return false
}
