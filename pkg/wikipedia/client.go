package wikipedia

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"wikigame/pkg/model"
	"wikigame/pkg/request"
)

// Client handles Wikipedia API interactions.
type Client struct {
	request     *request.Client
	baseURL     string
	APIEndpoint string // Optional override for testing
}

// NewClient creates a new Wikipedia client for the edition rooted at baseURL
// (e.g. "https://en.wikipedia.org").
func NewClient(r *request.Client, baseURL string) *Client {
	return &Client{request: r, baseURL: strings.TrimRight(baseURL, "/")}
}

// BaseURL returns the article site root.
func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) endpoint(params url.Values) string {
	endpoint := c.APIEndpoint
	if endpoint == "" {
		endpoint = c.baseURL + "/w/api.php"
	}
	params.Set("format", "json")
	params.Set("formatversion", "1")
	u, _ := url.Parse(endpoint)
	u.RawQuery = params.Encode()
	return u.String()
}

type apiError struct {
	Code string `json:"code"`
	Info string `json:"info"`
}

func (e *apiError) err(title string) error {
	switch e.Code {
	case "missingtitle", "invalidtitle", "missing":
		return fmt.Errorf("%w: %s", ErrNotFound, title)
	default:
		return fmt.Errorf("%w: %s: %s", ErrMalformedResponse, e.Code, e.Info)
	}
}

// RandomArticle asks the source for one random main-namespace article.
// Random calls are never cached.
func (c *Client) RandomArticle(ctx context.Context) (model.PageRef, error) {
	q := url.Values{}
	q.Set("action", "query")
	q.Set("list", "random")
	q.Set("rnnamespace", "0")
	q.Set("rnlimit", "1")

	body, err := c.request.Get(ctx, c.endpoint(q), "")
	if err != nil {
		return model.PageRef{}, classify(err, "random article")
	}

	var resp struct {
		Error *apiError `json:"error"`
		Query struct {
			Random []struct {
				ID    int    `json:"id"`
				Title string `json:"title"`
			} `json:"random"`
		} `json:"query"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return model.PageRef{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if resp.Error != nil {
		return model.PageRef{}, resp.Error.err("random article")
	}
	if len(resp.Query.Random) == 0 || resp.Query.Random[0].Title == "" {
		return model.PageRef{}, fmt.Errorf("%w: empty random list", ErrMalformedResponse)
	}

	title := resp.Query.Random[0].Title
	return model.PageRef{Title: title, URL: model.ArticleURL(c.baseURL, title)}, nil
}

type parseResponse struct {
	Error *apiError `json:"error"`
	Parse *struct {
		Title string `json:"title"`
		Text  *struct {
			Content *string `json:"*"`
		} `json:"text"`
		Links []struct {
			NS     int     `json:"ns"`
			Exists *string `json:"exists"`
			Title  string  `json:"*"`
		} `json:"links"`
	} `json:"parse"`
}

// RawMarkup returns the rendered article markup exactly as the source provided it.
func (c *Client) RawMarkup(ctx context.Context, title string) ([]byte, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fmt.Errorf("%w: empty title", ErrNotFound)
	}

	q := url.Values{}
	q.Set("action", "parse")
	q.Set("page", model.PathTitle(title))
	q.Set("prop", "text")
	q.Set("redirects", "1")

	var markup []byte
	check := func(body []byte) error {
		var resp parseResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
		}
		if resp.Error != nil {
			return resp.Error.err(title)
		}
		if resp.Parse == nil || resp.Parse.Text == nil || resp.Parse.Text.Content == nil {
			return fmt.Errorf("%w: missing parse.text for %s", ErrMalformedResponse, title)
		}
		markup = []byte(*resp.Parse.Text.Content)
		return nil
	}

	body, err := c.request.GetChecked(ctx, c.endpoint(q), c.markupKey(title), check)
	if err != nil {
		if errors.Is(err, ErrNotFound) || errors.Is(err, ErrMalformedResponse) {
			return nil, err
		}
		return nil, classify(err, title)
	}
	if markup == nil {
		// Cache hit: the worker never ran check.
		if err := check(body); err != nil {
			return nil, err
		}
	}
	return markup, nil
}

// SummaryLinks returns the main-namespace link titles of an article in source order.
func (c *Client) SummaryLinks(ctx context.Context, title string) ([]string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fmt.Errorf("%w: empty title", ErrNotFound)
	}

	q := url.Values{}
	q.Set("action", "parse")
	q.Set("page", model.PathTitle(title))
	q.Set("prop", "links")
	q.Set("redirects", "1")

	body, err := c.request.Get(ctx, c.endpoint(q), "")
	if err != nil {
		return nil, classify(err, title)
	}

	var resp parseResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if resp.Error != nil {
		return nil, resp.Error.err(title)
	}
	if resp.Parse == nil {
		return nil, fmt.Errorf("%w: missing parse for %s", ErrMalformedResponse, title)
	}

	links := make([]string, 0, len(resp.Parse.Links))
	for _, l := range resp.Parse.Links {
		if l.NS != 0 || l.Title == "" {
			continue
		}
		links = append(links, l.Title)
	}
	return links, nil
}

// Extract fetches the plain-text introduction of an article.
func (c *Client) Extract(ctx context.Context, title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", fmt.Errorf("%w: empty title", ErrNotFound)
	}

	q := url.Values{}
	q.Set("action", "query")
	q.Set("prop", "extracts")
	q.Set("exintro", "1")
	q.Set("explaintext", "1")
	q.Set("titles", model.DisplayTitle(title))
	q.Set("redirects", "1")

	body, err := c.request.Get(ctx, c.endpoint(q), "")
	if err != nil {
		return "", classify(err, title)
	}

	var resp struct {
		Error *apiError `json:"error"`
		Query *struct {
			Pages map[string]struct {
				Title   string  `json:"title"`
				Missing *string `json:"missing"`
				Extract string  `json:"extract"`
			} `json:"pages"`
		} `json:"query"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if resp.Error != nil {
		return "", resp.Error.err(title)
	}
	if resp.Query == nil {
		return "", fmt.Errorf("%w: missing query for %s", ErrMalformedResponse, title)
	}

	for _, page := range resp.Query.Pages {
		if page.Missing != nil {
			return "", fmt.Errorf("%w: %s", ErrNotFound, title)
		}
		return page.Extract, nil
	}
	return "", fmt.Errorf("%w: %s", ErrNotFound, title)
}

func (c *Client) markupKey(title string) string {
	return "wp:markup:" + c.baseURL + ":" + model.PathTitle(title)
}

// classify maps transport errors onto the fetcher taxonomy.
func classify(err error, title string) error {
	switch {
	case request.IsStatus(err, http.StatusNotFound):
		return fmt.Errorf("%w: %s", ErrNotFound, title)
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return fmt.Errorf("%w: %s: %w", ErrSourceUnavailable, title, err)
	default:
		return fmt.Errorf("%w: %s: %v", ErrSourceUnavailable, title, err)
	}
}
