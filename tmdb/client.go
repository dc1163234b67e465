package tmdb

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

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/s0up4200/moviecat/catalog"
)

const (
	// DefaultBaseURL is the public TMDB v3 API root
	DefaultBaseURL = "https://api.themoviedb.org/3"
	// DefaultLanguage is sent when no language option is given
	DefaultLanguage = "en-US"

	defaultTimeout = 30 * time.Second
	defaultRPS     = 20
	defaultBurst   = 10
)

// Client represents a TMDB API client
type Client struct {
	baseURL     string
	apiKey      string
	accessToken string
	language    string
	userAgent   string
	httpClient  *http.Client
	limiter     *rate.Limiter
	logger      zerolog.Logger
}

var _ catalog.Fetcher = (*Client)(nil)

// NewClient creates a new TMDB client. apiKey may be empty when an access
// token is supplied through WithAccessToken.
func NewClient(baseURL, apiKey string, logger zerolog.Logger, opts ...Option) (*Client, error) {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	baseURL = strings.TrimRight(baseURL, "/")

	client := &Client{
		baseURL:  baseURL,
		apiKey:   apiKey,
		language: DefaultLanguage,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(defaultRPS), defaultBurst),
		logger:  logger.With().Str("component", "tmdb").Logger(),
	}

	for _, opt := range opts {
		opt(client)
	}

	if client.apiKey == "" && client.accessToken == "" {
		return nil, ErrMissingCredentials
	}

	return client, nil
}

// doRequest performs an HTTP GET with authentication and returns the body
// of a 2xx response.
func (c *Client) doRequest(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	if params == nil {
		params = url.Values{}
	}
	if c.accessToken == "" {
		params.Set("api_key", c.apiKey)
	}

	reqURL := c.baseURL + endpoint
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if c.accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.accessToken)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	c.logger.Trace().
		Str("endpoint", endpoint).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("TMDB request completed")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, newAPIError(resp, body)
	}

	return body, nil
}

func newAPIError(resp *http.Response, body []byte) *APIError {
	apiErr := &APIError{
		StatusCode: resp.StatusCode,
		Message:    http.StatusText(resp.StatusCode),
		Body:       string(body),
	}

	var payload errorResponse
	if json.Unmarshal(body, &payload) == nil && payload.StatusMessage != "" {
		apiErr.Message = payload.StatusMessage
	}

	return apiErr
}

// TestConnection verifies the configured credentials against /configuration
func (c *Client) TestConnection(ctx context.Context) error {
	if _, err := c.doRequest(ctx, "/configuration", nil); err != nil {
		return fmt.Errorf("failed to connect to TMDB: %w", err)
	}

	c.logger.Debug().Msg("Successfully connected to TMDB")
	return nil
}

// FetchPage retrieves one page of movies for a category, sorted by the
// category's sort key.
func (c *Client) FetchPage(ctx context.Context, category catalog.Category, page int) (catalog.Page, error) {
	wrap := func(err error) (catalog.Page, error) {
		return catalog.Page{}, &FetchError{Category: category, Page: page, Err: err}
	}

	if page < 1 {
		return wrap(ErrInvalidPage)
	}
	if !category.Valid() {
		return wrap(catalog.ErrUnknownCategory)
	}

	params := url.Values{}
	params.Set("sort_by", category.SortKey())
	params.Set("page", strconv.Itoa(page))
	params.Set("include_adult", "false")
	params.Set("include_video", "false")
	params.Set("language", c.language)
	if minRevenue := category.MinRevenue(); minRevenue > 0 {
		params.Set("revenue.gte", strconv.FormatInt(minRevenue, 10))
	}

	body, err := c.doRequest(ctx, "/discover/movie", params)
	if err != nil {
		return wrap(err)
	}

	var response discoverResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return wrap(fmt.Errorf("failed to parse response: %w", err))
	}

	result := response.toPage()
	if result.Number == 0 {
		result.Number = page
	}

	c.logger.Debug().
		Str("category", category.String()).
		Int("page", result.Number).
		Int("total_pages", result.TotalPages).
		Int("count", len(result.Movies)).
		Msg("Retrieved movies from TMDB")

	return result, nil
}
