package ytmedia

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

var errVideoNotEmbeddable = errors.New("video is not embeddable")

func (c Client) getVideoWithEmbed(ctx context.Context, videoId string) (VideoDetails, error) {
	requestUrl := fmt.Sprintf("https://www.youtube.com/oembed?url=https://www.youtube.com/watch?v=%s", videoId)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestUrl, nil)
	if err != nil {
		return VideoDetails{}, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return VideoDetails{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		switch resp.StatusCode {
		case http.StatusBadRequest, http.StatusNotFound:
			return VideoDetails{}, ErrVideoNotFound
		case http.StatusUnauthorized:
			return VideoDetails{}, errVideoNotEmbeddable
		default:
			return VideoDetails{}, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
		}
	}

	var result struct {
		Title        string `json:"title"`
		AuthorName   string `json:"author_name"`
		ThumbnailUrl string `json:"thumbnail_url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return VideoDetails{}, fmt.Errorf("failed to decode response: %w", err)
	}

	return VideoDetails{
		Id:           videoId,
		Title:        result.Title,
		ChannelTitle: result.AuthorName,
		Thumbnail:    thumbnailOrDefault(result.ThumbnailUrl, "", videoId),
	}, nil
}
