package whoop

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

	"github.com/charmbracelet/log"
	"github.com/desertthunder/bandctl/internal/shared"
	"golang.org/x/time/rate"
)

// WHOOP developer API collection endpoints.
const (
	sleepPath    = "/developer/v2/activity/sleep"
	cyclePath    = "/developer/v2/cycle"
	recoveryPath = "/developer/v2/recovery"
	workoutPath  = "/developer/v2/activity/workout"
)

// DefaultPageLimit is the per-page record cap the API accepts.
const DefaultPageLimit = 25

// Credentials is one band's OAuth token pair as used on the wire.
type Credentials struct {
	AccessToken  string
	RefreshToken string
}

// PageParams are the query parameters accepted by every collection endpoint.
type PageParams struct {
	Limit     int
	NextToken string
	Start     string // ISO 8601; records after or during this time
	End       string // ISO 8601; records that ended before this time
}

func (p PageParams) values() url.Values {
	limit := p.Limit
	if limit <= 0 {
		limit = DefaultPageLimit
	}

	params := url.Values{"limit": []string{strconv.Itoa(limit)}}
	if p.NextToken != "" {
		params.Set("nextToken", p.NextToken)
	}
	if p.Start != "" {
		params.Set("start", p.Start)
	}
	if p.End != "" {
		params.Set("end", p.End)
	}
	return params
}

// Client talks to the WHOOP API on behalf of one application (client id and
// secret are application-level; token pairs are per band).
type Client struct {
	baseURL      string
	tokenURL     string
	clientID     string
	clientSecret string
	httpClient   *http.Client
	limiter      *rate.Limiter
	logger       *log.Logger
}

// ClientOpts contains configuration options for creating a Client.
type ClientOpts struct {
	BaseURL      string
	TokenURL     string
	ClientID     string
	ClientSecret string
	Timeout      time.Duration // per-request deadline; defaults to 30s
	RateLimit    float64       // requests per second; <= 0 disables pacing
	HTTPClient   *http.Client
	Logger       *log.Logger
}

// NewClient creates a WHOOP API client with the provided configuration.
func NewClient(opts ClientOpts) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: opts.Timeout}
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}

	var limiter *rate.Limiter
	if opts.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), 1)
	}

	return &Client{
		baseURL:      strings.TrimSuffix(opts.BaseURL, "/"),
		tokenURL:     opts.TokenURL,
		clientID:     opts.ClientID,
		clientSecret: opts.ClientSecret,
		httpClient:   opts.HTTPClient,
		limiter:      limiter,
		logger:       shared.WithLogger(opts.Logger, "component", "whoop"),
	}
}

// Sleep fetches one page of sleep records.
func (c *Client) Sleep(ctx context.Context, creds Credentials, params PageParams) (any, Credentials, error) {
	return c.get(ctx, sleepPath, params.values(), creds)
}

// Cycle fetches one page of physiological cycle records.
func (c *Client) Cycle(ctx context.Context, creds Credentials, params PageParams) (any, Credentials, error) {
	return c.get(ctx, cyclePath, params.values(), creds)
}

// Recovery fetches one page of recovery records.
func (c *Client) Recovery(ctx context.Context, creds Credentials, params PageParams) (any, Credentials, error) {
	return c.get(ctx, recoveryPath, params.values(), creds)
}

// Workout fetches one page of workout records.
func (c *Client) Workout(ctx context.Context, creds Credentials, params PageParams) (any, Credentials, error) {
	return c.get(ctx, workoutPath, params.values(), creds)
}

// get performs an authenticated GET with a single refresh-and-retry pass.
//
// The request is sent once with the current bearer token. On a 401 the
// refresh token is exchanged for a new pair and the identical request is
// re-issued exactly once; whatever the second attempt yields is final. Any
// other non-2xx status fails with [HTTPError]. The returned credentials
// reflect a rotation if one happened.
func (c *Client) get(ctx context.Context, path string, params url.Values, creds Credentials) (any, Credentials, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, creds, fmt.Errorf("rate limiter interrupted: %w", err)
		}
	}

	status, body, err := c.send(ctx, path, params, creds.AccessToken)
	if err != nil {
		return nil, creds, err
	}

	if status == http.StatusUnauthorized {
		if strings.TrimSpace(creds.RefreshToken) == "" {
			return nil, creds, fmt.Errorf("%w: re-run the authorization flow to get new tokens", shared.ErrNoRefreshToken)
		}

		c.logger.Warn("access token expired, refreshing")
		refreshed, err := c.Refresh(ctx, creds.RefreshToken)
		if err != nil {
			return nil, creds, err
		}
		creds = refreshed

		status, body, err = c.send(ctx, path, params, creds.AccessToken)
		if err != nil {
			return nil, creds, err
		}
	}

	if status < 200 || status >= 300 {
		return nil, creds, &HTTPError{Status: status, Body: string(body)}
	}

	var payload any
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, creds, fmt.Errorf("failed to decode response from %s: %w", path, err)
	}
	return payload, creds, nil
}

func (c *Client) send(ctx context.Context, path string, params url.Values, accessToken string) (int, []byte, error) {
	reqURL := c.baseURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return resp.StatusCode, body, nil
}
