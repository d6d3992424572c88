package spotify

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"

	apihttp "github.com/husaker/spotify-data-viz/internal/http"
	"github.com/husaker/spotify-data-viz/internal/logger"
	"github.com/husaker/spotify-data-viz/internal/metrics"
	"github.com/husaker/spotify-data-viz/internal/model"
	"github.com/husaker/spotify-data-viz/internal/ratelimit"
	"github.com/husaker/spotify-data-viz/internal/spotify/dto"
)

// MaxIDsPerRequest is the API limit for the batch endpoints.
const MaxIDsPerRequest = 50

// Endpoint names, also used as cache key prefixes and metric labels.
const (
	EndpointTracks  = "tracks"
	EndpointArtists = "artists"
)

// ErrMalformedResponse is returned, marked permanent, when a 200 response
// body cannot be decoded.
var ErrMalformedResponse = errors.New("malformed response")

// Client calls the Spotify Web API. It is safe for concurrent use.
type Client struct {
	http    *apihttp.Client
	baseURL string
	tokens  TokenSource
	logger  logger.Logger
	metrics *metrics.Recorder
}

// Option configures a Client.
type Option func(*Client)

func WithHTTPClient(h *apihttp.Client) Option {
	return func(c *Client) { c.http = h }
}

func WithLogger(l logger.Logger) Option {
	return func(c *Client) { c.logger = l }
}

func WithMetrics(m *metrics.Recorder) Option {
	return func(c *Client) { c.metrics = m }
}

// NewClient creates a client for the API rooted at baseURL, for example
// "https://api.spotify.com/v1".
func NewClient(baseURL string, tokens TokenSource, opts ...Option) *Client {
	c := &Client{
		http:    apihttp.NewClient("", 0),
		baseURL: strings.TrimRight(baseURL, "/"),
		tokens:  tokens,
		logger:  logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Tracks looks up at most MaxIDsPerRequest tracks. Unknown or malformed
// items are left out of the result.
func (c *Client) Tracks(ctx context.Context, ids []string) (map[string]model.Track, error) {
	var resp dto.TracksResponse
	if err := c.get(ctx, EndpointTracks, ids, &resp); err != nil {
		return nil, err
	}
	if resp.Tracks == nil && len(ids) > 0 {
		return nil, ratelimit.Permanent(errors.Wrap(ErrMalformedResponse, "missing tracks field"))
	}

	out := make(map[string]model.Track, len(resp.Tracks))
	positional := len(resp.Tracks) == len(ids)
	for i, jt := range resp.Tracks {
		track, ok := jt.ToTrack()
		if !ok {
			continue
		}
		key := track.ID
		// relinked tracks come back under a different ID in the same slot
		if positional {
			key = ids[i]
		}
		out[key] = track
	}
	return out, nil
}

// Artists looks up at most MaxIDsPerRequest artists. Unknown or malformed
// items are left out of the result.
func (c *Client) Artists(ctx context.Context, ids []string) (map[string]model.Artist, error) {
	var resp dto.ArtistsResponse
	if err := c.get(ctx, EndpointArtists, ids, &resp); err != nil {
		return nil, err
	}
	if resp.Artists == nil && len(ids) > 0 {
		return nil, ratelimit.Permanent(errors.Wrap(ErrMalformedResponse, "missing artists field"))
	}

	out := make(map[string]model.Artist, len(resp.Artists))
	for _, ja := range resp.Artists {
		if artist, ok := ja.ToArtist(); ok {
			out[artist.ID] = artist
		}
	}
	return out, nil
}

func (c *Client) get(ctx context.Context, endpoint string, ids []string, dest interface{}) error {
	if len(ids) == 0 {
		return nil
	}
	if len(ids) > MaxIDsPerRequest {
		return ratelimit.Permanent(errors.Newf("%s: %d ids exceeds the limit of %d", endpoint, len(ids), MaxIDsPerRequest))
	}

	token, err := c.tokens.Token(ctx)
	if err != nil {
		return ratelimit.Permanent(err)
	}

	q := url.Values{}
	q.Set("ids", strings.Join(ids, ","))
	u := c.baseURL + "/" + endpoint + "?" + q.Encode()

	header := http.Header{}
	header.Set("Authorization", "Bearer "+token)
	header.Set("Accept", "application/json")

	c.logger.Debug("GET /%s with %d ids", endpoint, len(ids))
	resp, err := c.http.Do(ctx, http.MethodGet, u, header)
	if err != nil {
		c.metrics.Request(endpoint, "error")
		return errors.Wrapf(err, "GET /%s", endpoint)
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		c.metrics.Request(endpoint, "ok")
	case resp.StatusCode == http.StatusTooManyRequests:
		c.metrics.Request(endpoint, "rate_limited")
		return retryAfter(resp)
	case resp.StatusCode >= 500:
		c.metrics.Request(endpoint, "server_error")
		return errors.Newf("GET /%s: HTTP %d: %s", endpoint, resp.StatusCode, apiMessage(resp.Body))
	default:
		c.metrics.Request(endpoint, "client_error")
		return ratelimit.Permanent(errors.Newf("GET /%s: HTTP %d: %s", endpoint, resp.StatusCode, apiMessage(resp.Body)))
	}

	if err := json.Unmarshal(resp.Body, dest); err != nil {
		return ratelimit.Permanent(errors.Wrapf(ErrMalformedResponse, "GET /%s: %v", endpoint, err))
	}
	return nil
}

// retryAfter builds the rate limit error from the Retry-After header,
// falling back to a retry_after field in the body.
func retryAfter(resp *apihttp.Response) *ratelimit.RateLimitedError {
	if d, ok := parseRetryAfter(resp.Header.Get("Retry-After")); ok {
		return &ratelimit.RateLimitedError{RetryAfter: d, HasHint: true}
	}

	var body struct {
		RetryAfter *float64 `json:"retry_after"`
	}
	if json.Unmarshal(resp.Body, &body) == nil && body.RetryAfter != nil && *body.RetryAfter >= 0 {
		return &ratelimit.RateLimitedError{RetryAfter: seconds(*body.RetryAfter), HasHint: true}
	}
	return &ratelimit.RateLimitedError{}
}

// parseRetryAfter accepts delta-seconds or an HTTP date.
func parseRetryAfter(v string) (time.Duration, bool) {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0, false
	}
	if secs, err := strconv.ParseFloat(v, 64); err == nil {
		if secs < 0 {
			return 0, false
		}
		return seconds(secs), true
	}
	if t, err := http.ParseTime(v); err == nil {
		return max(time.Until(t), 0), true
	}
	return 0, false
}

// seconds rounds up so that waiting the result never undercuts the hint.
func seconds(s float64) time.Duration {
	return time.Duration(math.Ceil(s * float64(time.Second)))
}

func apiMessage(body []byte) string {
	var e struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if json.Unmarshal(body, &e) == nil && e.Error.Message != "" {
		return e.Error.Message
	}
	if len(body) > 200 {
		body = body[:200]
	}
	return strings.TrimSpace(string(body))
}
