// Package ytmedia looks up YouTube video metadata: free-text search and
// per-video details. With an API key it uses the Data API v3; without one,
// Details falls back to the oEmbed endpoint and the watch page, which cannot
// report a duration.
package ytmedia

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

var ErrVideoNotFound = errors.New("video not found")

const (
	defaultAPIBaseURL = "https://www.googleapis.com/youtube/v3"
	maxSearchResults  = 10
)

type SearchResult struct {
	Id           string `json:"id"`
	Title        string `json:"title"`
	ChannelTitle string `json:"channel_title"`
	Thumbnail    string `json:"thumbnail"`
}

type VideoDetails struct {
	Id           string `json:"id"`
	Title        string `json:"title"`
	ChannelTitle string `json:"channel_title"`
	Thumbnail    string `json:"thumbnail"`
	Duration     int    `json:"duration"`
}

type Client struct {
	apiKey     string
	apiBaseURL string
	httpClient *http.Client
}

func NewClient(apiKey string) *Client {
	return &Client{
		apiKey:     apiKey,
		apiBaseURL: defaultAPIBaseURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

type apiListResponse struct {
	Items []struct {
		Id      json.RawMessage `json:"id"`
		Snippet struct {
			Title        string `json:"title"`
			ChannelTitle string `json:"channelTitle"`
			Thumbnails   struct {
				Default struct {
					Url string `json:"url"`
				} `json:"default"`
				Medium struct {
					Url string `json:"url"`
				} `json:"medium"`
			} `json:"thumbnails"`
		} `json:"snippet"`
		ContentDetails struct {
			Duration string `json:"duration"`
		} `json:"contentDetails"`
	} `json:"items"`
}

func (c Client) getJSON(ctx context.Context, requestUrl string, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestUrl, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

// Search returns up to 10 embeddable video candidates for the query. An empty
// slice means nothing matched, not an error.
func (c Client) Search(ctx context.Context, query string) ([]SearchResult, error) {
	params := url.Values{}
	params.Set("part", "snippet")
	params.Set("q", query)
	params.Set("maxResults", fmt.Sprint(maxSearchResults))
	params.Set("type", "video")
	params.Set("videoEmbeddable", "true")
	params.Set("key", c.apiKey)

	var payload apiListResponse
	if err := c.getJSON(ctx, c.apiBaseURL+"/search?"+params.Encode(), &payload); err != nil {
		return nil, fmt.Errorf("failed to search videos: %w", err)
	}

	results := make([]SearchResult, 0, len(payload.Items))
	for _, item := range payload.Items {
		var id struct {
			VideoId string `json:"videoId"`
		}
		if err := json.Unmarshal(item.Id, &id); err != nil || id.VideoId == "" {
			continue
		}

		results = append(results, SearchResult{
			Id:           id.VideoId,
			Title:        item.Snippet.Title,
			ChannelTitle: item.Snippet.ChannelTitle,
			Thumbnail:    thumbnailOrDefault(item.Snippet.Thumbnails.Default.Url, item.Snippet.Thumbnails.Medium.Url, id.VideoId),
		})
	}

	return results, nil
}

// Details resolves a single video id. ErrVideoNotFound when the id does not
// resolve to an available video.
func (c Client) Details(ctx context.Context, videoId string) (VideoDetails, error) {
	if c.apiKey == "" {
		return c.detailsWithoutAPIKey(ctx, videoId)
	}

	params := url.Values{}
	params.Set("part", "snippet,contentDetails")
	params.Set("id", videoId)
	params.Set("key", c.apiKey)

	var payload apiListResponse
	if err := c.getJSON(ctx, c.apiBaseURL+"/videos?"+params.Encode(), &payload); err != nil {
		return VideoDetails{}, fmt.Errorf("failed to get video details: %w", err)
	}

	if len(payload.Items) == 0 {
		return VideoDetails{}, ErrVideoNotFound
	}

	item := payload.Items[0]

	return VideoDetails{
		Id:           videoId,
		Title:        item.Snippet.Title,
		ChannelTitle: item.Snippet.ChannelTitle,
		Thumbnail:    thumbnailOrDefault(item.Snippet.Thumbnails.Default.Url, item.Snippet.Thumbnails.Medium.Url, videoId),
		Duration:     parseISO8601Duration(item.ContentDetails.Duration),
	}, nil
}

func (c Client) detailsWithoutAPIKey(ctx context.Context, videoId string) (VideoDetails, error) {
	details, err := c.getVideoWithEmbed(ctx, videoId)
	if err != nil {
		if !errors.Is(err, errVideoNotEmbeddable) {
			return VideoDetails{}, fmt.Errorf("failed to get video data with embed: %w", err)
		}

		details, err = c.getFromPage(ctx, videoId)
		if err != nil {
			return VideoDetails{}, fmt.Errorf("failed to get video data from page: %w", err)
		}
	}

	return details, nil
}

func thumbnailOrDefault(defaultUrl, mediumUrl, videoId string) string {
	if defaultUrl != "" {
		return defaultUrl
	}
	if mediumUrl != "" {
		return mediumUrl
	}

	return fmt.Sprintf("https://i.ytimg.com/vi/%s/default.jpg", videoId)
}
