package internal

import (
	"bufio"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/term"
	"golang.org/x/text/unicode/norm"
)

var (
	youtubeIDPattern  = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)
	playlistIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

	youtubeHosts = []string{"www.youtube.com", "youtube.com", "m.youtube.com", "music.youtube.com"}
)

// ParseArg normalizes YouTube video IDs and URLs, including playlists
func ParseArg(arg string) (string, string) {
	parsed := ParseInput(arg)
	if parsed.ContentType == ContentTypeUnknown || parsed.ContentType == ContentTypeCommand {
		return arg, arg
	}
	return parsed.NormalizedURL, parsed.ID
}

// ParseInput classifies a command line argument as a video, a playlist or a likely mistyped command
func ParseInput(arg string) *ParsedArg {
	arg = strings.TrimSpace(arg)
	p := &ParsedArg{OriginalInput: arg}

	if strings.HasPrefix(arg, "https://") || strings.HasPrefix(arg, "http://") {
		p.NormalizedURL = arg

		// Prefer the video when a watch URL also carries a list parameter
		if videoID, err := getVideoID(arg); err == nil {
			p.ContentType = ContentTypeVideo
			p.ID = videoID
			return p
		}

		playlistID, err := getPlaylistID(arg)
		if err != nil {
			p.Error = err
			return p
		}
		p.ContentType = ContentTypePlaylist
		p.ID = playlistID
		return p
	}

	switch {
	case IsValidPlaylistID(arg):
		p.ContentType = ContentTypePlaylist
		p.ID = arg
		p.NormalizedURL = "https://www.youtube.com/playlist?list=" + arg
	case IsValidYouTubeID(arg):
		p.ContentType = ContentTypeVideo
		p.ID = arg
		p.NormalizedURL = "https://www.youtube.com/watch?v=" + arg
	case IsLikelyCommand(arg):
		p.ContentType = ContentTypeCommand
		p.Error = fmt.Errorf("'%s' doesn't look like a YouTube URL or ID", arg)
	default:
		p.Error = fmt.Errorf("'%s' is not a YouTube video or playlist", arg)
	}
	return p
}

// VideoIDExtractor extracts video IDs from YouTube URLs
type VideoIDExtractor func(string) (string, error)

// Default implementation of video ID extraction
var getVideoID VideoIDExtractor = func(youtubeURL string) (string, error) {
	youtubeURL = strings.TrimSpace(youtubeURL)
	u, err := url.Parse(youtubeURL)
	if err != nil {
		return "", fmt.Errorf("parsing URL: %w", err)
	}

	var id string
	switch {
	case u.Host == "youtu.be":
		id = strings.Trim(u.Path, "/")
	case slices.Contains(youtubeHosts, u.Host):
		if v := u.Query().Get("v"); v != "" {
			id = v
			break
		}
		// Don't extract video IDs from playlist URLs
		if strings.HasPrefix(u.Path, "/playlist") {
			return "", fmt.Errorf("this is a playlist URL, not a video URL: %s", youtubeURL)
		}
		parts := strings.Split(strings.Trim(u.Path, "/"), "/")
		if len(parts) == 2 && slices.Contains([]string{"shorts", "embed", "live", "v"}, parts[0]) {
			id = parts[1]
		}
	default:
		return "", fmt.Errorf("not a YouTube URL: %s", youtubeURL)
	}

	if !IsValidYouTubeID(id) {
		return "", fmt.Errorf("could not extract video ID from URL: %s", youtubeURL)
	}
	return id, nil
}

// getPlaylistID extracts playlist ID from YouTube URLs
func getPlaylistID(youtubeURL string) (string, error) {
	youtubeURL = strings.TrimSpace(youtubeURL)
	u, err := url.Parse(youtubeURL)
	if err != nil {
		return "", fmt.Errorf("parsing URL: %w", err)
	}

	if !slices.Contains(youtubeHosts, u.Host) {
		return "", fmt.Errorf("not a YouTube URL: %s", youtubeURL)
	}

	if list := u.Query().Get("list"); list != "" {
		if IsValidPlaylistID(list) {
			return list, nil
		}
		return "", fmt.Errorf("invalid playlist ID format: %s", list)
	}

	return "", fmt.Errorf("could not extract playlist ID from URL: %s", youtubeURL)
}

// IsValidYouTubeID checks if a string looks like a valid YouTube video ID
func IsValidYouTubeID(id string) bool {
	return youtubeIDPattern.MatchString(id)
}

// IsValidPlaylistID checks if a string looks like a valid YouTube playlist ID
func IsValidPlaylistID(id string) bool {
	// Common playlist prefixes: PL, UU, FL, RD, etc.
	playlistPrefixes := []string{"PL", "UU", "FL", "RD", "LP", "BP", "QL", "SV", "EL", "LL", "UC"}

	for _, prefix := range playlistPrefixes {
		if strings.HasPrefix(id, prefix) {
			// Standard playlist IDs are 16, 32 or 34 characters after the prefix
			if len(id) == 18 || len(id) == 34 || len(id) == 36 {
				return playlistIDPattern.MatchString(id)
			}
		}
	}

	// Music playlists (OLAK5uy_, RDCLAK5uy_)
	if strings.HasPrefix(id, "OLAK5uy_") || strings.HasPrefix(id, "RDCLAK5uy_") {
		if len(id) == 41 || len(id) == 43 {
			return playlistIDPattern.MatchString(id)
		}
	}

	return false
}

// IsLikelyCommand checks if a string looks like it might be a mistyped command
func IsLikelyCommand(arg string) bool {
	return len(arg) <= 10 && !IsValidYouTubeID(arg) && !IsValidPlaylistID(arg)
}

// AskUser is a variable that holds the function for asking user confirmation
// This allows it to be replaced in tests
var AskUser = func(message string) bool {
	fmt.Printf("%s (y/N): ", message)
	scanner := bufio.NewScanner(os.Stdin)
	if scanner.Scan() {
		response := strings.ToLower(strings.TrimSpace(scanner.Text()))
		return strings.HasPrefix(response, "y")
	}
	if err := scanner.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "Error reading input: %v\n", err)
	}
	return false
}

const (
	exportSuffix     = "_transcriptions.csv"
	maxFilenameBytes = 255
)

// ExportFilename builds the CSV name for a playlist export. The name never
// exceeds maxFilenameBytes, long titles are cut at a rune boundary.
func ExportFilename(playlistTitle string) string {
	title := truncateBytes(sanitizeFilename(playlistTitle), maxFilenameBytes-len(exportSuffix))
	if title = strings.TrimRight(title, ". "); title == "" {
		title = "playlist"
	}
	return title + exportSuffix
}

// truncateBytes shortens s to at most n bytes without splitting a rune
func truncateBytes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

// normalizeNewlines turns CRLF and lone CR line endings into LF
func normalizeNewlines(s string) string {
	if !strings.ContainsRune(s, '\r') {
		return s
	}
	return strings.ReplaceAll(strings.ReplaceAll(s, "\r\n", "\n"), "\r", "\n")
}

// sanitizeFilename keeps the title readable but drops path separators and control characters
func sanitizeFilename(name string) string {
	name = norm.NFC.String(strings.TrimSpace(name))
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r == '/' || r == '\\' || r == 0:
			return '_'
		case unicode.IsControl(r):
			return -1
		}
		return r
	}, name)
	cleaned = strings.Trim(cleaned, ". ")
	if cleaned == "" {
		return "playlist"
	}
	return cleaned
}

// CleanupTempDir purges files from a temporary directory
func CleanupTempDir(tempDir string) error {
	if _, err := os.Stat(tempDir); os.IsNotExist(err) {
		return nil
	}

	entries, err := os.ReadDir(tempDir)
	if err != nil {
		return fmt.Errorf("reading temp directory: %w", err)
	}

	for _, entry := range entries {
		filePath := filepath.Join(tempDir, entry.Name())
		if err := os.RemoveAll(filePath); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to remove temporary file %s: %v\n", filePath, err)
		}
	}

	if err := os.Remove(tempDir); err != nil {
		fmt.Fprintf(os.Stderr, "Note: could not remove temp directory %s: %v\n", tempDir, err)
	}

	return nil
}

// getTerminalWidth gets terminal width with fallback
func getTerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		return 80
	}

	if width > 10 {
		return width - 4
	}

	return width
}

// FileExists checks if a file exists
func FileExists(filename string) bool {
	_, err := os.Stat(filename)
	return !os.IsNotExist(err)
}

// EnsureDirs creates directories if needed
func EnsureDirs(dirs ...string) error {
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return nil
}

// cleanupFiles removes temporary files
func cleanupFiles(files ...string) {
	for _, file := range files {
		if err := os.Remove(file); err != nil && !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "Warning: failed to remove file %s: %v\n", file, err)
		}
	}
}
