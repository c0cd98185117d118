package internal

import (
	"fmt"
	"strings"
)

// ContentType represents the type of YouTube content
type ContentType int

const (
	ContentTypeUnknown ContentType = iota
	ContentTypeVideo
	ContentTypePlaylist
	ContentTypeCommand
)

// String returns a human-readable representation of the content type
func (ct ContentType) String() string {
	switch ct {
	case ContentTypeVideo:
		return "video"
	case ContentTypePlaylist:
		return "playlist"
	case ContentTypeCommand:
		return "command"
	default:
		return "unknown"
	}
}

// ParsedArg represents the result of parsing a command line argument
type ParsedArg struct {
	ContentType   ContentType
	OriginalInput string
	NormalizedURL string
	ID            string
	Error         error
}

// IsValid returns true if the parsed argument is valid and has no errors
func (p *ParsedArg) IsValid() bool {
	return p.Error == nil && p.ContentType != ContentTypeUnknown && p.ContentType != ContentTypeCommand
}

// String returns a formatted representation of the parsed argument
func (p *ParsedArg) String() string {
	if p.Error != nil {
		return fmt.Sprintf("ParsedArg{type=%s, input=%q, error=%v}", p.ContentType, p.OriginalInput, p.Error)
	}
	return fmt.Sprintf("ParsedArg{type=%s, id=%s, url=%s}", p.ContentType, p.ID, p.NormalizedURL)
}

// SuggestCorrection provides helpful suggestions for inputs that look like mistyped commands
func (p *ParsedArg) SuggestCorrection(availableCommands []string) string {
	if p.ContentType != ContentTypeCommand {
		return ""
	}

	input := strings.ToLower(p.OriginalInput)
	var suggestions []string

	for _, cmd := range availableCommands {
		if strings.Contains(cmd, input) || strings.Contains(input, cmd) {
			suggestions = append(suggestions, cmd)
		}
	}

	if len(suggestions) > 0 {
		return fmt.Sprintf("did you mean: %s", strings.Join(suggestions, ", "))
	}

	return "use --help to see available commands"
}

// VideoInfo is what the resolver knows about a single video
type VideoInfo struct {
	URL      string  `json:"url"`
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	Channel  string  `json:"channel,omitempty"`
	Duration float64 `json:"duration,omitempty"`
	AudioURL string  `json:"audio_url"`
}

// PlaylistInfo is the ordered listing of a playlist
type PlaylistInfo struct {
	URL       string   `json:"url"`
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	VideoURLs []string `json:"video_urls"`
}

// TranscriptionRecord is the result for one video. URL is the exact input URL.
type TranscriptionRecord struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Content string `json:"content"`
}

// VideoFailure describes a playlist entry skipped under ContinueOnError
type VideoFailure struct {
	Index int    `json:"index"`
	URL   string `json:"url"`
	Err   error  `json:"-"`
}

// Error returns the failure message
func (f VideoFailure) Error() string {
	return fmt.Sprintf("video %d (%s): %v", f.Index+1, f.URL, f.Err)
}

// Unwrap exposes the underlying error
func (f VideoFailure) Unwrap() error {
	return f.Err
}

// PlaylistBatch holds the records of one playlist run in resolution order
type PlaylistBatch struct {
	Title      string                `json:"title"`
	URL        string                `json:"url"`
	Records    []TranscriptionRecord `json:"records"`
	Failures   []VideoFailure        `json:"-"`
	OutputFile string                `json:"output_file,omitempty"`
}

// Len returns the number of records in the batch
func (b *PlaylistBatch) Len() int {
	return len(b.Records)
}
