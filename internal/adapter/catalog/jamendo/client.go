// Package jamendo provides a catalog source backed by the Jamendo v3 API.
package jamendo

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/tejashwikalptaru/tunestream/internal/domain"
	"github.com/tejashwikalptaru/tunestream/internal/ports"
)

const (
	// DefaultBaseURL is the public Jamendo API root.
	DefaultBaseURL = "https://api.jamendo.com/v3.0"
	// DefaultTimeout bounds a single request.
	DefaultTimeout = 10 * time.Second

	userAgent = "tunestream/1.0"
)

// Config configures the client.
type Config struct {
	BaseURL  string
	ClientID string
	Timeout  time.Duration

	// HTTPClient overrides the default client. Timeout is ignored when set.
	HTTPClient *http.Client
}

// Client is a Jamendo API client.
type Client struct {
	baseURL    string
	clientID   string
	httpClient *http.Client
	logger     *slog.Logger
}

var _ ports.CatalogSource = (*Client)(nil)

type response struct {
	Headers struct {
		Status       string `json:"status"`
		Code         int    `json:"code"`
		ErrorMessage string `json:"error_message"`
	} `json:"headers"`
	Results []RawTrack `json:"results"`
}

// New creates a client. The Jamendo API accepts requests without a
// client ID for testing, so an empty one is allowed.
func New(cfg Config, logger *slog.Logger) *Client {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		baseURL:    baseURL,
		clientID:   cfg.ClientID,
		httpClient: httpClient,
		logger:     logger.With(slog.String("adapter", "jamendo")),
	}
}

// Name implements ports.CatalogSource.
func (c *Client) Name() string { return "jamendo" }

// SearchTracks returns tracks matching query, one per artist.
func (c *Client) SearchTracks(ctx context.Context, query string, limit int) ([]domain.Track, error) {
	params := url.Values{}
	params.Set("search", query)
	params.Set("groupby", "artist_id")
	return c.tracks(ctx, params, limit)
}

// PopularTracks returns tracks ordered by overall popularity.
func (c *Client) PopularTracks(ctx context.Context, limit int) ([]domain.Track, error) {
	params := url.Values{}
	params.Set("order", "popularity_total")
	return c.tracks(ctx, params, limit)
}

// TracksByGenre returns tracks tagged with genre.
func (c *Client) TracksByGenre(ctx context.Context, genre string, limit int) ([]domain.Track, error) {
	params := url.Values{}
	params.Set("tags", genre)
	return c.tracks(ctx, params, limit)
}

// NewReleases returns tracks ordered by release date, newest first.
func (c *Client) NewReleases(ctx context.Context, limit int) ([]domain.Track, error) {
	params := url.Values{}
	params.Set("order", "releasedate_desc")
	return c.tracks(ctx, params, limit)
}

func (c *Client) tracks(ctx context.Context, params url.Values, limit int) ([]domain.Track, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 200 {
		limit = 200
	}

	params.Set("client_id", c.clientID)
	params.Set("format", "json")
	params.Set("limit", strconv.Itoa(limit))
	params.Set("include", "musicinfo")

	reqURL := c.baseURL + "/tracks/?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create request")
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	started := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "failed to send request")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read response body")
	}

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Newf("jamendo: unexpected status %s", resp.Status)
	}

	var parsed response
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, errors.Wrap(err, "failed to parse response")
	}

	if parsed.Headers.Code != 0 {
		return nil, errors.Newf("jamendo API error %d: %s", parsed.Headers.Code, parsed.Headers.ErrorMessage)
	}

	c.logger.Debug("jamendo request",
		slog.Int("limit", limit),
		slog.Int("results", len(parsed.Results)),
		slog.Duration("took", time.Since(started)),
	)

	return ToTracks(parsed.Results), nil
}
