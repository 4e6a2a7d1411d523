// Package weather reads current conditions and active alerts from WeatherAPI.
package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/bluele/gcache"

	"bdeb.transit/board/internal/logging"
	"bdeb.transit/board/internal/models"
)

// DefaultTTL is how long a WeatherAPI answer is reused.
const DefaultTTL = 5 * time.Minute

const (
	keyCurrent = "current"
	keyAlerts  = "alerts"
)

// Config configures a Client. An empty APIKey disables all requests.
type Config struct {
	BaseURL string
	APIKey  string
	// Query is the location, e.g. "Montreal,QC".
	Query string
	// Lang selects the condition text language.
	Lang string
	TTL  time.Duration
}

// Client is safe for concurrent use.
type Client struct {
	cfg    Config
	http   *http.Client
	cache  gcache.Cache
	logger *slog.Logger

	mu       sync.Mutex
	lastGood *models.Weather
}

// NewClient returns a client. A nil httpClient selects a 5 second timeout
// client; a nil clock selects the real clock.
func NewClient(cfg Config, httpClient *http.Client, clock gcache.Clock, logger *slog.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.weatherapi.com/v1"
	}
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 5 * time.Second}
	}
	if clock == nil {
		clock = gcache.NewRealClock()
	}
	return &Client{
		cfg:    cfg,
		http:   httpClient,
		cache:  gcache.New(4).LRU().Expiration(cfg.TTL).Clock(clock).Build(),
		logger: logging.Component(logger, "weather_client"),
	}
}

// Enabled reports whether an API key is configured.
func (c *Client) Enabled() bool {
	return c.cfg.APIKey != ""
}

type currentResponse struct {
	Current struct {
		TempC     float64 `json:"temp_c"`
		Condition struct {
			Text string `json:"text"`
			Icon string `json:"icon"`
		} `json:"condition"`
	} `json:"current"`
}

type alertsResponse struct {
	Alerts struct {
		Alert []json.RawMessage `json:"alert"`
	} `json:"alerts"`
}

// Current returns the current conditions. On failure the last good answer is
// returned along with the error, or an empty Weather when there is none.
func (c *Client) Current(ctx context.Context) (models.Weather, error) {
	if !c.Enabled() {
		return models.Weather{}, nil
	}
	if v, err := c.cache.Get(keyCurrent); err == nil {
		return v.(models.Weather), nil
	}

	var resp currentResponse
	if err := c.get(ctx, "current.json", url.Values{"aqi": {"no"}, "lang": {c.cfg.Lang}}, &resp); err != nil {
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.lastGood != nil {
			return *c.lastGood, err
		}
		return models.Weather{}, err
	}

	temp := int(math.Round(resp.Current.TempC))
	w := models.Weather{
		Icon: absoluteIcon(resp.Current.Condition.Icon),
		Text: resp.Current.Condition.Text,
		Temp: &temp,
	}
	_ = c.cache.Set(keyCurrent, w)

	c.mu.Lock()
	c.lastGood = &w
	c.mu.Unlock()
	return w, nil
}

// AlertCount returns the number of active weather alerts.
func (c *Client) AlertCount(ctx context.Context) (int, error) {
	if !c.Enabled() {
		return 0, nil
	}
	if v, err := c.cache.Get(keyAlerts); err == nil {
		return v.(int), nil
	}

	var resp alertsResponse
	if err := c.get(ctx, "alerts.json", nil, &resp); err != nil {
		return 0, err
	}
	n := len(resp.Alerts.Alert)
	_ = c.cache.Set(keyAlerts, n)
	return n, nil
}

func (c *Client) get(ctx context.Context, endpoint string, params url.Values, out any) error {
	q := url.Values{}
	for k, v := range params {
		if len(v) > 0 && v[0] != "" {
			q[k] = v
		}
	}
	q.Set("key", c.cfg.APIKey)
	q.Set("q", c.cfg.Query)

	target := strings.TrimRight(c.cfg.BaseURL, "/") + "/" + endpoint + "?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("weather %s: %w", endpoint, redactKey(err))
	}
	defer logging.SafeCloseWithLogging(resp.Body, c.logger, "http_response_body")

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("weather %s: status %d", endpoint, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("weather %s: %w", endpoint, err)
	}
	return nil
}

// redactKey strips the request URL, which carries the API key, from
// transport errors.
func redactKey(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return urlErr.Err
	}
	return err
}

func absoluteIcon(icon string) string {
	if strings.HasPrefix(icon, "//") {
		return "https:" + icon
	}
	return icon
}
