package ytmedia

import (
	"context"
	"fmt"
	"net/http"

	"golang.org/x/net/html"
)

// getFromPage scrapes the watch page for videos the oEmbed endpoint refuses.
// The page carries no machine-readable duration, so Duration stays 0.
func (c Client) getFromPage(ctx context.Context, videoId string) (VideoDetails, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "https://youtu.be/"+videoId, nil)
	if err != nil {
		return VideoDetails{}, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return VideoDetails{}, err
	}
	defer resp.Body.Close()

	doc, err := html.Parse(resp.Body)
	if err != nil {
		return VideoDetails{}, fmt.Errorf("failed to parse page: %w", err)
	}

	return VideoDetails{
		Id:           videoId,
		Title:        getTitle(doc),
		ChannelTitle: getLinkContent(doc),
		Thumbnail:    fmt.Sprintf("https://i.ytimg.com/vi/%s/hqdefault.jpg", videoId),
	}, nil
}

func getTitle(n *html.Node) string {
	if n.Type == html.ElementNode && n.Data == "title" && n.FirstChild != nil {
		return n.FirstChild.Data
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if title := getTitle(c); title != "" {
			return title
		}
	}
	return ""
}

func getLinkContent(n *html.Node) string {
	if n.Type == html.ElementNode && n.Data == "link" {
		for _, attr := range n.Attr {
			if attr.Key == "itemprop" && attr.Val == "name" {
				for _, attr := range n.Attr {
					if attr.Key == "content" {
						return attr.Val
					}
				}
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if content := getLinkContent(c); content != "" {
			return content
		}
	}
	return ""
}
