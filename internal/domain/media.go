package domain

// MediaItem is one entry in a room's queue. Items are not deduplicated: the
// same external id may appear at several positions.
type MediaItem struct {
	Id           string `json:"id"`
	Title        string `json:"title"`
	ChannelTitle string `json:"channel_title"`
	Thumbnail    string `json:"thumbnail"`
	// Duration in seconds, 0 when the metadata lookup failed or was skipped.
	Duration int `json:"duration"`
}
