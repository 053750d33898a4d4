package plugin

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// DefaultSearchURL is the Google Custom Search JSON API base URL.
const DefaultSearchURL = "https://www.googleapis.com"

var imageSearchPhrases = []string{
	"search for images of",
	"find pictures of",
	"show me images of",
	"show me pictures of",
	"image search for",
}

// ImageSearch looks up images through Google Custom Search.
type ImageSearch struct {
	client   *resty.Client
	apiKey   string
	engineID string
	results  int
}

// Image is one search hit.
type Image struct {
	Title   string `json:"title"`
	URL     string `json:"link"`
	Snippet string `json:"snippet"`
}

type searchResponse struct {
	Items []Image `json:"items"`
}

// NewImageSearch returns the plugin. baseURL may be empty for the public API.
func NewImageSearch(apiKey, engineID, baseURL string) *ImageSearch {
	if baseURL == "" {
		baseURL = DefaultSearchURL
	}
	c := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Accept", "application/json").
		SetTimeout(15 * time.Second)

	return &ImageSearch{client: c, apiKey: apiKey, engineID: engineID, results: 5}
}

func (*ImageSearch) Name() string { return "image_search" }

// Configured reports whether API credentials are present.
func (s *ImageSearch) Configured() bool {
	return s.apiKey != "" && s.engineID != ""
}

func (s *ImageSearch) Handle(ctx context.Context, input string) (string, bool, error) {
	lower := strings.ToLower(input)
	var query string
	for _, phrase := range imageSearchPhrases {
		if _, after, found := strings.Cut(lower, phrase); found {
			query = strings.TrimSpace(after)
			break
		}
	}
	if query == "" {
		return "", false, nil
	}
	if !s.Configured() {
		return "I'm sorry, the image search feature is not configured properly.", true, nil
	}

	images, err := s.Search(ctx, query)
	if err != nil {
		return "I encountered an error while trying to perform the image search.", true, nil
	}
	if len(images) == 0 {
		return fmt.Sprintf("Sorry, I couldn't find any images for '%s'.", query), true, nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Here are some images of %s:\n", query)
	for _, img := range images {
		title, url := img.Title, img.URL
		if title == "" {
			title = "Image"
		}
		if url == "" {
			url = "#"
		}
		fmt.Fprintf(&b, "- [%s](%s)\n", title, url)
	}
	return b.String(), true, nil
}

// Search queries the API for images matching query.
func (s *ImageSearch) Search(ctx context.Context, query string) ([]Image, error) {
	var out searchResponse
	resp, err := s.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"q":          query,
			"key":        s.apiKey,
			"cx":         s.engineID,
			"searchType": "image",
			"num":        strconv.Itoa(s.results),
		}).
		SetResult(&out).
		Get("/customsearch/v1")
	if err != nil {
		return nil, fmt.Errorf("image search request: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("image search status %d: %s", resp.StatusCode(), resp.String())
	}
	return out.Items, nil
}
