package cardnews

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"cardnews/common"
)

const serpAPIURL = "https://serpapi.com/search"

// NewsSearcher queries the SerpAPI Google News engine.
type NewsSearcher struct {
	APIKey  string
	BaseURL string
	Client  *http.Client
}

func NewNewsSearcher(apiKey string) *NewsSearcher {
	return &NewsSearcher{
		APIKey:  apiKey,
		BaseURL: serpAPIURL,
		Client:  &http.Client{Timeout: 30 * time.Second},
	}
}

type serpResponse struct {
	NewsResults []struct {
		Title   string `json:"title"`
		Snippet string `json:"snippet"`
		Link    string `json:"link"`
	} `json:"news_results"`
}

// Search returns up to maxResults articles for query. An empty result is not
// an error; the summarizer copes with zero articles.
func (s *NewsSearcher) Search(ctx context.Context, query string, maxResults int) ([]common.Article, error) {
	if err := common.RequireKey(common.EnvSerpAPIKey, s.APIKey); err != nil {
		return nil, err
	}
	log.Printf("[Search] Searching for news articles about: %s", query)

	params := url.Values{}
	params.Set("q", query)
	params.Set("api_key", s.APIKey)
	params.Set("num", strconv.Itoa(maxResults))
	params.Set("engine", "google_news")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.BaseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("search API error: %d - %s", resp.StatusCode, string(body))
	}

	var result serpResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}

	var articles []common.Article
	for _, item := range result.NewsResults {
		if maxResults > 0 && len(articles) >= maxResults {
			break
		}
		articles = append(articles, common.Article{Title: item.Title, Summary: item.Snippet, URL: item.Link})
	}
	log.Printf("[Search] Found %d articles.", len(articles))
	return articles, nil
}
