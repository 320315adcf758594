package services

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html"
)

// LinkPreviewService fetches a page title for a URL on a best-effort basis.
// Every failure mode (bad URL, timeout, non-2xx, missing title) falls back
// to the raw URL as the title; the caller never sees an error.
type LinkPreviewService struct {
	client *http.Client
}

func NewLinkPreviewService(timeout time.Duration) *LinkPreviewService {
	return &LinkPreviewService{
		client: &http.Client{Timeout: timeout},
	}
}

type LinkPreview struct {
	Title string `json:"title"`
}

// Fetch returns the page's <title>, or the URL itself when anything goes
// wrong.
func (s *LinkPreviewService) Fetch(ctx context.Context, rawURL string) LinkPreview {
	fallback := LinkPreview{Title: rawURL}

	parsed, err := url.Parse(rawURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return fallback
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fallback
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; HueBot/1.0)")

	resp, err := s.client.Do(req)
	if err != nil {
		return fallback
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fallback
	}

	title := extractTitle(resp.Body, rawURL)
	return LinkPreview{Title: title}
}

func extractTitle(body io.Reader, fallback string) string {
	tokenizer := html.NewTokenizer(body)
	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			return fallback
		case html.StartTagToken:
			name, _ := tokenizer.TagName()
			if string(name) == "title" {
				if tokenizer.Next() == html.TextToken {
					title := strings.TrimSpace(string(tokenizer.Text()))
					if title != "" {
						return title
					}
				}
				return fallback
			}
		}
	}
}
