package internal

import "context"

// Resolver looks up titles, audio streams and playlist members on a video platform
type Resolver interface {
	ResolveVideo(ctx context.Context, videoURL string) (*VideoInfo, error)
	ResolvePlaylist(ctx context.Context, playlistURL string) (*PlaylistInfo, error)
}

// Transcriber turns a publicly reachable audio URL into text
type Transcriber interface {
	Transcribe(ctx context.Context, audioURL string) (string, error)
}
