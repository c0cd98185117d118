package internal

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// App holds the application state and dependencies
type App struct {
	resolver    Resolver
	transcriber Transcriber
	config      *Config
	ui          UIManager
	logger      *zap.Logger
}

// NewApp initializes the application with the configured transcription backend
func NewApp(config *Config, options ...AppOption) *App {
	app := &App{
		config: config,
		ui:     NewUIManager(config.Quiet),
		logger: zap.NewNop(),
	}

	// Apply any custom options
	for _, option := range options {
		option(app)
	}

	if app.resolver == nil {
		app.resolver = NewYouTube(app.logger)
	}
	if app.transcriber == nil {
		app.transcriber = newTranscriber(config, app.logger)
	}

	return app
}

// newTranscriber picks the backend named in the config
func newTranscriber(config *Config, logger *zap.Logger) Transcriber {
	if config.Backend == BackendOpenAI {
		audio := NewAudio(&DefaultCommandRunner{}, config.TempDir, logger)
		return NewWhisper(nil, audio, config.WhisperConfig(), logger)
	}
	return NewReplicateClient(config.ReplicateConfig(), WithReplicateLogger(logger))
}

// AppOption customizes App creation
type AppOption func(*App)

// WithResolver sets a custom video platform resolver
func WithResolver(resolver Resolver) AppOption {
	return func(a *App) {
		a.resolver = resolver
	}
}

// WithTranscriber sets a custom transcription backend
func WithTranscriber(transcriber Transcriber) AppOption {
	return func(a *App) {
		a.transcriber = transcriber
	}
}

// WithUI sets a custom UI manager
func WithUI(ui UIManager) AppOption {
	return func(a *App) {
		a.ui = ui
	}
}

// WithLogger sets the diagnostic logger
func WithLogger(logger *zap.Logger) AppOption {
	return func(a *App) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// PlaylistOptions control a playlist run
type PlaylistOptions struct {
	Policy    FailurePolicy
	OutputDir string
	// Confirm is asked once the playlist is resolved; false aborts before any billed call
	Confirm func(playlist *PlaylistInfo) bool
}

// PlaylistOptions returns the run options from the config
func (app *App) PlaylistOptions() PlaylistOptions {
	return PlaylistOptions{
		Policy:    app.config.FailurePolicy,
		OutputDir: app.config.OutputDir,
	}
}

// TranscribeVideo resolves a video, transcribes its audio and returns the record.
// The record URL is exactly the URL passed in.
func (app *App) TranscribeVideo(ctx context.Context, videoURL string) (*TranscriptionRecord, error) {
	return app.transcribeVideo(ctx, videoURL, nil)
}

// TranscribeVideoWithStatus runs TranscribeVideo behind a spinner
func (app *App) TranscribeVideoWithStatus(ctx context.Context, videoURL string) (*TranscriptionRecord, error) {
	spinner := app.ui.NewSpinner("Resolving video...")
	defer spinner.Finish()

	return app.transcribeVideo(ctx, videoURL, spinner.Describe)
}

// transcribeVideo reports each stage to status when it is set. Line endings in
// the content are normalized to LF so the record survives a CSV round trip.
func (app *App) transcribeVideo(ctx context.Context, videoURL string, status func(string)) (*TranscriptionRecord, error) {
	info, err := app.resolver.ResolveVideo(ctx, videoURL)
	if err != nil {
		return nil, err
	}

	if status != nil {
		status(fmt.Sprintf("Transcribing %q...", info.Title))
	}
	app.logger.Debug("transcribing", zap.String("url", videoURL), zap.String("title", info.Title))
	content, err := app.transcriber.Transcribe(ctx, info.AudioURL)
	if err != nil {
		return nil, err
	}

	return &TranscriptionRecord{
		Title:   info.Title,
		URL:     videoURL,
		Content: normalizeNewlines(content),
	}, nil
}

// TranscribePlaylist transcribes every video of a playlist one after another and
// exports the batch to "{title}_transcriptions.csv" in opts.OutputDir.
//
// With FailFast the first failure aborts the run, nothing is written and the
// collected records are discarded. With ContinueOnError failing videos are
// recorded in the batch and skipped; the run fails only if no video succeeded.
func (app *App) TranscribePlaylist(ctx context.Context, playlistURL string, opts PlaylistOptions) (*PlaylistBatch, error) {
	start := time.Now()

	playlist, err := app.resolver.ResolvePlaylist(ctx, playlistURL)
	if err != nil {
		return nil, err
	}

	total := len(playlist.VideoURLs)
	if opts.Confirm != nil && !opts.Confirm(playlist) {
		return nil, ErrDeclined
	}
	app.ui.Printf("Found %d videos in playlist: %s\n", total, playlist.Title)
	app.logger.Info("processing playlist",
		zap.String("url", playlistURL),
		zap.String("title", playlist.Title),
		zap.Int("videos", total),
		zap.String("policy", string(opts.Policy)))

	batch := &PlaylistBatch{
		Title:   playlist.Title,
		URL:     playlistURL,
		Records: make([]TranscriptionRecord, 0, total),
	}

	bar := app.ui.NewProgressBar(total, "Transcribing videos")
	for i, videoURL := range playlist.VideoURLs {
		if err := ctx.Err(); err != nil {
			bar.Finish()
			return nil, err
		}
		bar.Set(i)

		record, err := app.TranscribeVideo(ctx, videoURL)
		if err != nil {
			failure := VideoFailure{Index: i, URL: videoURL, Err: err}
			if opts.Policy != ContinueOnError || errors.Is(err, context.Canceled) {
				bar.Finish()
				return nil, failure
			}
			app.logger.Warn("skipping video", zap.Int("index", i), zap.String("url", videoURL), zap.Error(err))
			batch.Failures = append(batch.Failures, failure)
			continue
		}

		batch.Records = append(batch.Records, *record)
	}
	bar.Set(total)
	bar.Finish()

	if len(batch.Records) == 0 {
		if len(batch.Failures) == 0 {
			return nil, resolutionErr(playlistURL, "playlist has no videos", nil)
		}
		return nil, fmt.Errorf("no video in playlist %q could be transcribed: %w", playlist.Title, errors.Join(failureErrs(batch.Failures)...))
	}

	path, err := ExportBatch(opts.OutputDir, batch)
	if err != nil {
		return nil, fmt.Errorf("exporting transcriptions: %w", err)
	}
	batch.OutputFile = path

	app.ui.Printf("Transcribed %d of %d videos in %s\n", batch.Len(), total, time.Since(start).Round(time.Second))

	return batch, nil
}

// Resolve looks up a video or playlist without transcribing it
func (app *App) Resolve(ctx context.Context, input string) (any, error) {
	parsed := ParseInput(input)
	switch parsed.ContentType {
	case ContentTypeVideo:
		return app.resolver.ResolveVideo(ctx, parsed.NormalizedURL)
	case ContentTypePlaylist:
		return app.resolver.ResolvePlaylist(ctx, parsed.NormalizedURL)
	}
	if parsed.Error != nil {
		return nil, resolutionErr(input, "not a YouTube video or playlist", parsed.Error)
	}
	return nil, resolutionErr(input, "not a YouTube video or playlist", nil)
}

func failureErrs(failures []VideoFailure) []error {
	errs := make([]error, 0, len(failures))
	for _, f := range failures {
		errs = append(errs, f)
	}
	return errs
}
