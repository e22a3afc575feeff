package model

import "time"

// DefaultArtist is stored when an upload carries no artist name.
const DefaultArtist = "Unknown Artist"

// Song represents an uploaded track on the leaderboard.
// FileURL is immutable after creation; PlayCount only ever grows.
type Song struct {
	ID           int64     `json:"id"`
	Title        string    `json:"title"`
	Artist       string    `json:"artist"`
	FileURL      string    `json:"file_url"`
	ThumbnailURL *string   `json:"thumbnail_url"`
	PlayCount    int64     `json:"play_count"`
	CreatedAt    time.Time `json:"created_at"`
}

// SongFilter narrows and orders a song search.
type SongFilter struct {
	Artist   string // substring match, case-insensitive
	Title    string // substring match, case-insensitive
	SortBy   string // must be one of the sortable columns
	SortDesc bool
	Limit    int
	Offset   int
}

// SearchResponse is the payload of GET /songs/search.
type SearchResponse struct {
	Songs   []*Song `json:"songs"`
	Count   int64   `json:"count"`
	Limit   int     `json:"limit"`
	Offset  int     `json:"offset"`
	HasMore bool    `json:"hasMore"`
}

// UploadResponse is the payload of a successful POST /upload.
type UploadResponse struct {
	Message      string  `json:"message"`
	AudioURL     string  `json:"audioUrl"`
	ThumbnailURL *string `json:"thumbnailUrl"`
}

// PlayRequest is the body of POST /play.
type PlayRequest struct {
	SongID int64 `json:"songId"`
}

// PlayResponse is the payload of a successful POST /play.
type PlayResponse struct {
	Message  string `json:"message"`
	NewCount int64  `json:"newCount"`
}
