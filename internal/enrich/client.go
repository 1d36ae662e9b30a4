// Package enrich queries an external bibliographic lookup service to augment
// extracted book metadata. The client degrades to a nil match on any failure;
// enrichment never blocks an otherwise-valid upload.
package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Match is the mapped first result of a bibliographic lookup.
type Match struct {
	Identifier  string
	Title       string
	Author      string
	Description string
	Publisher   string
	Language    string
	CoverURL    string
	Year        int
	PageCount   int
	Categories  []string
}

type Client struct {
	http    *http.Client
	baseURL string
	apiKey  string
}

func New(baseURL, apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		http:    &http.Client{Timeout: timeout},
		baseURL: baseURL,
		apiKey:  apiKey,
	}
}

// volumes mirrors the subset of the lookup service response we map.
type volumes struct {
	Items []struct {
		VolumeInfo struct {
			Title               string   `json:"title"`
			Authors             []string `json:"authors"`
			Publisher           string   `json:"publisher"`
			PublishedDate       string   `json:"publishedDate"`
			Description         string   `json:"description"`
			PageCount           int      `json:"pageCount"`
			Categories          []string `json:"categories"`
			Language            string   `json:"language"`
			IndustryIdentifiers []struct {
				Type       string `json:"type"`
				Identifier string `json:"identifier"`
			} `json:"industryIdentifiers"`
			ImageLinks struct {
				Thumbnail      string `json:"thumbnail"`
				SmallThumbnail string `json:"smallThumbnail"`
			} `json:"imageLinks"`
		} `json:"volumeInfo"`
	} `json:"items"`
}

// Search looks up by identifier when one is available, otherwise by title.
// HTTP 429, timeouts and malformed responses all return nil; the caller
// substitutes a minimal record built from extraction alone.
func (c *Client) Search(ctx context.Context, identifier, title string) *Match {
	query := fmt.Sprintf("isbn:%s", identifier)
	if identifier == "" {
		if title == "" {
			return nil
		}
		query = fmt.Sprintf("intitle:%s", title)
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("maxResults", "1")
	if c.apiKey != "" {
		params.Set("key", c.apiKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil
	}

	resp, err := c.http.Do(req)
	if err != nil {
		zap.S().Named("enrich").Warnf("lookup failed for %q: %v", query, err)
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		zap.S().Named("enrich").Warnf("lookup returned %d for %q", resp.StatusCode, query)
		return nil
	}

	var vols volumes
	if err := json.NewDecoder(resp.Body).Decode(&vols); err != nil {
		zap.S().Named("enrich").Warnf("decoding lookup response: %v", err)
		return nil
	}
	if len(vols.Items) == 0 {
		return nil
	}

	info := vols.Items[0].VolumeInfo
	match := &Match{
		Title:       info.Title,
		Description: info.Description,
		Publisher:   info.Publisher,
		Language:    info.Language,
		PageCount:   info.PageCount,
		Categories:  info.Categories,
		CoverURL:    info.ImageLinks.Thumbnail,
	}
	if match.CoverURL == "" {
		match.CoverURL = info.ImageLinks.SmallThumbnail
	}
	if len(info.Authors) > 0 {
		match.Author = strings.Join(info.Authors, ", ")
	}
	for _, id := range info.IndustryIdentifiers {
		if id.Type == "ISBN_13" {
			match.Identifier = id.Identifier
			break
		}
		if id.Type == "ISBN_10" && match.Identifier == "" {
			match.Identifier = id.Identifier
		}
	}
	if match.Identifier == "" {
		match.Identifier = identifier
	}
	if len(info.PublishedDate) >= 4 {
		if year, err := strconv.Atoi(info.PublishedDate[:4]); err == nil {
			match.Year = year
		}
	}
	return match
}

// FetchCover downloads a cover image, returning its bytes and content type.
func (c *Client) FetchCover(ctx context.Context, coverURL string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, coverURL, nil)
	if err != nil {
		return nil, "", err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("cover download returned %d", resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return nil, "", err
	}
	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "image/jpeg"
	}
	return data, contentType, nil
}
