package exercises

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	log "github.com/sirupsen/logrus"
)

const (
	DefaultWgerBaseURL = "https://wger.de"
	wgerCategoryCardio = 15
	wgerMaxPages       = 50
)

type wgerExercise struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Category int    `json:"category"`
}

type wgerPage struct {
	Count   int            `json:"count"`
	Next    *string        `json:"next"`
	Results []wgerExercise `json:"results"`
}

// WgerClient imports the public exercise catalog from wger.de. It is only used for seeding.
type WgerClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewWgerClient(baseURL string, httpClient *http.Client) *WgerClient {
	return &WgerClient{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: httpClient,
	}
}

// FetchAll walks all result pages and returns the exercises deduplicated by name.
func (c *WgerClient) FetchAll(ctx context.Context) ([]Exercise, error) {
	url := c.baseURL + "/api/v2/exercise/?limit=500&offset=0&language=2"

	seen := map[string]bool{}
	var all []Exercise
	for page := 0; url != "" && page < wgerMaxPages; page++ {
		p, err := c.fetchPage(ctx, url)
		if err != nil {
			return nil, err
		}

		for _, we := range p.Results {
			name := strings.TrimSpace(we.Name)
			if name == "" || seen[name] {
				continue
			}
			seen[name] = true
			all = append(all, Exercise{
				Name: name,
				Type: wgerCategoryType(we.Category),
			})
		}

		url = ""
		if p.Next != nil {
			url = *p.Next
		}
		log.Debugf("wger import, page %d done, %d/%d exercises", page, len(all), p.Count)
	}

	return all, nil
}

func (c *WgerClient) fetchPage(ctx context.Context, url string) (*wgerPage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("get %s: unexpected status %d", url, resp.StatusCode)
	}

	var p wgerPage
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return nil, fmt.Errorf("decode wger page: %w", err)
	}
	return &p, nil
}

func wgerCategoryType(category int) string {
	if category == wgerCategoryCardio {
		return TypeCardio
	}
	return TypeStrength
}
