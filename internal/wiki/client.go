package wiki

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"arcfeed/internal/feed"
)

// Mode selects how the caller's environment treats outgoing requests.
type Mode string

const (
	// ModeNative may set User-Agent and talks to the API directly.
	ModeNative Mode = "native"
	// ModeWeb is origin-restricted: identity goes in Api-User-Agent and
	// failed direct calls are retried once through the relay.
	ModeWeb Mode = "web"
)

const (
	DefaultBaseURL   = "https://en.wikipedia.org/api/rest_v1"
	DefaultRelayURL  = "https://corsproxy.io/?"
	DefaultUserAgent = "WikipediaAppClone/1.0 (https://example.org/my-cool-app; my@email.com)"

	maxBodyBytes = 8 << 20
)

var (
	ErrNotFound     = errors.New("wiki: page not found")
	ErrEmptyPayload = errors.New("wiki: empty payload")
)

// StatusError is returned for non-2xx responses.
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("wiki: %s returned status %d", e.URL, e.Code)
}

func (e *StatusError) Is(target error) bool {
	return target == ErrNotFound && e.Code == http.StatusNotFound
}

type Options struct {
	BaseURL   string
	RelayURL  string
	UserAgent string
	Mode      Mode
}

// Client talks to the encyclopedia REST API.
type Client struct {
	baseURL   string
	relayURL  string
	userAgent string
	mode      Mode
	http      *http.Client
	logger    *log.Logger
}

func NewClient(opts Options, httpClient *http.Client, logger *log.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	if logger == nil {
		logger = log.Default()
	}
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.RelayURL == "" {
		opts.RelayURL = DefaultRelayURL
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.Mode == "" {
		opts.Mode = ModeNative
	}

	return &Client{
		baseURL:   strings.TrimRight(opts.BaseURL, "/"),
		relayURL:  opts.RelayURL,
		userAgent: opts.UserAgent,
		mode:      opts.Mode,
		http:      httpClient,
		logger:    logger,
	}
}

// FeaturedURL builds the featured-content endpoint for day.
func (c *Client) FeaturedURL(day time.Time) string {
	return c.baseURL + "/feed/featured/" + day.Format("2006/01/02")
}

func (c *Client) RandomSummaryURL() string {
	return c.baseURL + "/page/random/summary"
}

// SummaryURL builds the page summary endpoint; spaces become underscores.
func (c *Client) SummaryURL(title string) string {
	t := strings.ReplaceAll(strings.TrimSpace(title), " ", "_")
	return c.baseURL + "/page/summary/" + url.PathEscape(t)
}

// FetchFeatured returns the featured bundle for the calendar day of day.
// A document with no usable field counts as a failure.
func (c *Client) FetchFeatured(ctx context.Context, day time.Time) (feed.FeaturedBundle, error) {
	out, err := fetchWithFallbackTransport[featuredResponse](ctx, c, c.FeaturedURL(day))
	if err != nil {
		return feed.FeaturedBundle{}, err
	}

	b := mapFeatured(out)
	if b.IsEmpty() {
		return feed.FeaturedBundle{}, fmt.Errorf("featured %s: %w", day.Format("2006-01-02"), ErrEmptyPayload)
	}
	return b, nil
}

func (c *Client) FetchRandomArticle(ctx context.Context) (feed.RandomArticle, error) {
	return c.fetchSummary(ctx, c.RandomSummaryURL())
}

func (c *Client) FetchSummary(ctx context.Context, title string) (feed.Article, error) {
	if strings.TrimSpace(title) == "" {
		return feed.Article{}, fmt.Errorf("summary: %w", ErrNotFound)
	}
	return c.fetchSummary(ctx, c.SummaryURL(title))
}

func (c *Client) fetchSummary(ctx context.Context, target string) (feed.Article, error) {
	out, err := fetchWithFallbackTransport[pageSummary](ctx, c, target)
	if err != nil {
		return feed.Article{}, err
	}
	if out.Title == "" && out.DisplayTitle == "" {
		return feed.Article{}, fmt.Errorf("summary %s: %w", target, ErrEmptyPayload)
	}
	return mapArticle(out), nil
}

// fetchWithFallbackTransport decodes target into a T. The direct call is
// tried first; in ModeWeb a failure is retried once through the relay. The
// returned error joins both attempts.
func fetchWithFallbackTransport[T any](ctx context.Context, c *Client, target string) (T, error) {
	var direct T
	directErr := c.get(ctx, target, true, &direct)
	if directErr == nil {
		return direct, nil
	}

	var zero T
	if c.mode != ModeWeb || ctx.Err() != nil {
		return zero, directErr
	}

	c.logger.Printf("direct fetch failed, retrying via relay: %v", directErr)

	var relayed T
	relayErr := c.get(ctx, c.relayURL+url.QueryEscape(target), false, &relayed)
	if relayErr == nil {
		return relayed, nil
	}
	return zero, errors.Join(directErr, fmt.Errorf("relay: %w", relayErr))
}

func (c *Client) get(ctx context.Context, target string, identify bool, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if identify {
		req.Header.Set(c.identityHeader(), c.userAgent)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request %s: %w", target, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return &StatusError{URL: target, Code: resp.StatusCode}
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", target, err)
	}
	return nil
}

func (c *Client) identityHeader() string {
	if c.mode == ModeWeb {
		return "Api-User-Agent"
	}
	return "User-Agent"
}
