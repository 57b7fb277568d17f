package external

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/okian/matchload/internal/adapters/cache"
)

// DefaultNewsURL is the NewsAPI host.
const DefaultNewsURL = "https://newsapi.org"

// Article is one news item.
type Article struct {
	Source      string    `json:"source"`
	Author      string    `json:"author,omitempty"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	URL         string    `json:"url"`
	ImageURL    string    `json:"image_url,omitempty"`
	PublishedAt time.Time `json:"published_at"`
}

// News searches NewsAPI.
type News struct {
	base
	apiKey   string
	window   time.Duration
	articles *cache.Cache[[]Article]
}

// NewNews returns a NewsAPI client searching the last seven days.
func NewNews(apiKey string, opts ...Option) *News {
	b := newBase("newsapi", DefaultNewsURL, 5*time.Minute, opts)
	return &News{base: b, apiKey: apiKey, window: 7 * 24 * time.Hour, articles: newCache[[]Article](b)}
}

// Everything returns English articles about query published in the last
// week, newest first.
func (n *News) Everything(ctx context.Context, query string) ([]Article, error) {
	if n.apiKey == "" {
		return nil, ErrNoAPIKey
	}
	query = strings.TrimSpace(query)
	return cached(ctx, n.articles, strings.ToLower(query), func(ctx context.Context) ([]Article, error) {
		now := n.now()
		q := url.Values{
			"q":        {query},
			"from":     {now.Add(-n.window).Format("2006-01-02")},
			"to":       {now.Format("2006-01-02")},
			"language": {"en"},
			"sortBy":   {"publishedAt"},
		}
		body, err := n.get(ctx, n.baseURL+"/v2/everything?"+q.Encode(), http.Header{"X-Api-Key": {n.apiKey}})
		if err != nil {
			return nil, err
		}
		var res struct {
			Status   string `json:"status"`
			Message  string `json:"message"`
			Articles []struct {
				Source struct {
					Name string `json:"name"`
				} `json:"source"`
				Author      string    `json:"author"`
				Title       string    `json:"title"`
				Description string    `json:"description"`
				URL         string    `json:"url"`
				URLToImage  string    `json:"urlToImage"`
				PublishedAt time.Time `json:"publishedAt"`
			} `json:"articles"`
		}
		if err := json.Unmarshal(body, &res); err != nil {
			return nil, fmt.Errorf("newsapi: %w: decode: %v", ErrUpstream, err)
		}
		if res.Status != "ok" {
			return nil, fmt.Errorf("newsapi: %w: %s", ErrUpstream, res.Message)
		}
		out := make([]Article, 0, len(res.Articles))
		for _, a := range res.Articles {
			out = append(out, Article{
				Source:      a.Source.Name,
				Author:      a.Author,
				Title:       a.Title,
				Description: a.Description,
				URL:         a.URL,
				ImageURL:    a.URLToImage,
				PublishedAt: a.PublishedAt,
			})
		}
		return out, nil
	})
}
