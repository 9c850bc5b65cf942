package room

import (
	"context"
	"fmt"

	"github.com/watchparty/server/pkg/ytmedia"
)

type SearchMediaParams struct {
	Query string
}

type SearchMediaResponse struct {
	Results []ytmedia.SearchResult
}

// SearchMedia is a pass-through to the metadata collaborator; it touches no
// room state and works before joining a room.
func (s service) SearchMedia(ctx context.Context, params *SearchMediaParams) (SearchMediaResponse, error) {
	lookupCtx, cancel := context.WithTimeout(ctx, s.lookupTimeout)
	defer cancel()

	results, err := s.media.Search(lookupCtx, params.Query)
	if err != nil {
		return SearchMediaResponse{}, fmt.Errorf("failed to search media: %w", err)
	}

	return SearchMediaResponse{Results: results}, nil
}

type MediaDetailsParams struct {
	MediaId string
}

type MediaDetailsResponse struct {
	Details ytmedia.VideoDetails
}

func (s service) MediaDetails(ctx context.Context, params *MediaDetailsParams) (MediaDetailsResponse, error) {
	lookupCtx, cancel := context.WithTimeout(ctx, s.lookupTimeout)
	defer cancel()

	details, err := s.media.Details(lookupCtx, params.MediaId)
	if err != nil {
		return MediaDetailsResponse{}, fmt.Errorf("failed to get media details: %w", err)
	}

	return MediaDetailsResponse{Details: details}, nil
}
