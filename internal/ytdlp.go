package internal

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/lrstanley/go-ytdlp"
	"go.uber.org/zap"
)

// ytdlpRunner executes a prepared yt-dlp command against one URL
type ytdlpRunner func(ctx context.Context, dl *ytdlp.Command, url string) (*ytdlp.Result, error)

func runYtdlp(ctx context.Context, dl *ytdlp.Command, url string) (*ytdlp.Result, error) {
	return dl.Run(ctx, url)
}

// YouTube resolves videos and playlists through yt-dlp
type YouTube struct {
	run    ytdlpRunner
	logger *zap.Logger
}

var _ Resolver = (*YouTube)(nil)

// NewYouTube creates a yt-dlp backed resolver
func NewYouTube(logger *zap.Logger) *YouTube {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &YouTube{
		run:    runYtdlp,
		logger: logger.Named("youtube"),
	}
}

// InstallYtdlp makes sure a yt-dlp binary is available, downloading it if needed
func InstallYtdlp(ctx context.Context) {
	ytdlp.MustInstall(ctx, nil)
}

type ytdlpFormat struct {
	FormatID string  `json:"format_id"`
	URL      string  `json:"url"`
	ACodec   string  `json:"acodec"`
	VCodec   string  `json:"vcodec"`
	ABR      float64 `json:"abr"`
	Protocol string  `json:"protocol"`
}

type ytdlpVideo struct {
	ID       string        `json:"id"`
	Title    string        `json:"title"`
	Channel  string        `json:"channel"`
	Duration float64       `json:"duration"`
	URL      string        `json:"url"`
	ACodec   string        `json:"acodec"`
	Formats  []ytdlpFormat `json:"formats"`
}

type ytdlpPlaylist struct {
	Type    string `json:"_type"`
	ID      string `json:"id"`
	Title   string `json:"title"`
	Entries []struct {
		ID    string `json:"id"`
		URL   string `json:"url"`
		Title string `json:"title"`
	} `json:"entries"`
}

// ResolveVideo fetches the title and a direct audio stream URL for one video
func (yt *YouTube) ResolveVideo(ctx context.Context, videoURL string) (*VideoInfo, error) {
	if _, err := getVideoID(videoURL); err != nil {
		return nil, resolutionErr(videoURL, "invalid video URL", err)
	}

	yt.logger.Debug("resolving video", zap.String("url", videoURL))

	dl := ytdlp.New().
		Format("bestaudio"). // Select best audio-only stream
		DumpSingleJSON().    // Get all info in JSON format
		NoPlaylist().        // Don't expand watch URLs with a list parameter
		SkipDownload()       // Only the stream URL is needed

	result, err := yt.run(ctx, dl, videoURL)
	if err != nil {
		yt.logger.Debug("yt-dlp failed", zap.String("url", videoURL), zap.String("stderr", stderrOf(result)), zap.Error(err))
		return nil, resolutionErr(videoURL, lastLine(stderrOf(result)), err)
	}

	info, err := parseVideoJSON(videoURL, []byte(result.Stdout))
	if err != nil {
		return nil, err
	}

	yt.logger.Debug("resolved video",
		zap.String("id", info.ID),
		zap.String("title", info.Title),
		zap.Float64("duration", info.Duration))
	return info, nil
}

// ResolvePlaylist lists the member video URLs of a playlist in playlist order
func (yt *YouTube) ResolvePlaylist(ctx context.Context, playlistURL string) (*PlaylistInfo, error) {
	if _, err := getPlaylistID(playlistURL); err != nil {
		return nil, resolutionErr(playlistURL, "invalid playlist URL", err)
	}

	yt.logger.Debug("resolving playlist", zap.String("url", playlistURL))

	dl := ytdlp.New().
		FlatPlaylist().   // List entries without resolving each video
		DumpSingleJSON(). // One JSON document for the whole playlist
		SkipDownload()

	result, err := yt.run(ctx, dl, playlistURL)
	if err != nil {
		yt.logger.Debug("yt-dlp failed", zap.String("url", playlistURL), zap.String("stderr", stderrOf(result)), zap.Error(err))
		return nil, resolutionErr(playlistURL, lastLine(stderrOf(result)), err)
	}

	info, err := parsePlaylistJSON(playlistURL, []byte(result.Stdout))
	if err != nil {
		return nil, err
	}

	yt.logger.Debug("resolved playlist",
		zap.String("id", info.ID),
		zap.String("title", info.Title),
		zap.Int("videos", len(info.VideoURLs)))
	return info, nil
}

// parseVideoJSON extracts title and audio stream from yt-dlp's -J output
func parseVideoJSON(videoURL string, data []byte) (*VideoInfo, error) {
	var raw ytdlpVideo
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, resolutionErr(videoURL, "parsing yt-dlp output", err)
	}

	if raw.ID == "" && raw.Title == "" {
		return nil, resolutionErr(videoURL, "yt-dlp returned no video", nil)
	}

	audioURL := raw.URL
	if audioURL == "" || raw.ACodec == "none" {
		audioURL = bestAudioFormat(raw.Formats)
	}
	if audioURL == "" {
		return nil, resolutionErr(videoURL, "no audio stream available", nil)
	}

	return &VideoInfo{
		URL:      videoURL,
		ID:       raw.ID,
		Title:    raw.Title,
		Channel:  raw.Channel,
		Duration: raw.Duration,
		AudioURL: audioURL,
	}, nil
}

// bestAudioFormat picks the highest bitrate audio-only format with a direct URL
func bestAudioFormat(formats []ytdlpFormat) string {
	var best *ytdlpFormat
	for i := range formats {
		f := &formats[i]
		if f.URL == "" || f.ACodec == "none" || f.ACodec == "" || (f.VCodec != "none" && f.VCodec != "") {
			continue
		}
		if strings.Contains(f.Protocol, "m3u8") {
			continue
		}
		if best == nil || f.ABR > best.ABR {
			best = f
		}
	}
	if best == nil {
		return ""
	}
	return best.URL
}

// parsePlaylistJSON extracts the title and ordered member URLs from --flat-playlist -J output
func parsePlaylistJSON(playlistURL string, data []byte) (*PlaylistInfo, error) {
	var raw ytdlpPlaylist
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, resolutionErr(playlistURL, "parsing yt-dlp output", err)
	}

	if raw.Type != "" && raw.Type != "playlist" {
		return nil, resolutionErr(playlistURL, fmt.Sprintf("not a playlist (got %s)", raw.Type), nil)
	}

	urls := make([]string, 0, len(raw.Entries))
	for _, entry := range raw.Entries {
		switch {
		case strings.HasPrefix(entry.URL, "https://") || strings.HasPrefix(entry.URL, "http://"):
			urls = append(urls, entry.URL)
		case entry.ID != "":
			urls = append(urls, "https://www.youtube.com/watch?v="+entry.ID)
		}
	}

	if len(urls) == 0 {
		return nil, resolutionErr(playlistURL, "playlist is empty", nil)
	}

	return &PlaylistInfo{
		URL:       playlistURL,
		ID:        raw.ID,
		Title:     raw.Title,
		VideoURLs: urls,
	}, nil
}

func stderrOf(result *ytdlp.Result) string {
	if result == nil {
		return ""
	}
	return result.Stderr
}

// lastLine returns the last non-empty line, which is where yt-dlp puts its ERROR message
func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			return line
		}
	}
	return "yt-dlp failed"
}
