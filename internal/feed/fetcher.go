// Package feed fetches real-time snapshots from the agencies and decodes them
// into entity values that the reconciliation code can pattern match on.
package feed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v4"

	"bdeb.transit/board/internal/logging"
)

// ErrUnexpectedStatus is returned when a feed answers with a non-200 status.
var ErrUnexpectedStatus = errors.New("unexpected feed status")

// Format selects the decoder for a feed body.
type Format string

const (
	FormatProtobuf      Format = "protobuf"
	FormatSTMAlertsJSON Format = "stm-json"
)

// Feed kinds, used as the metric and log label.
const (
	KindTripUpdates      = "trip_updates"
	KindVehiclePositions = "vehicle_positions"
	KindAlerts           = "alerts"
)

// Source describes one upstream feed.
type Source struct {
	Agency string
	Kind   string
	URL    string
	Format Format

	// Exactly one of AuthHeader or AuthQuery names where AuthValue goes.
	AuthHeader string
	AuthQuery  string
	AuthValue  string
}

// Enabled reports whether the source has a URL to fetch.
func (s Source) Enabled() bool {
	return s.URL != ""
}

// Observer receives one call per completed fetch.
type Observer interface {
	ObserveFetch(agency, kind string, elapsed time.Duration, err error)
}

// Options configure a Fetcher. Zero values select the defaults.
type Options struct {
	Client          *http.Client
	Logger          *slog.Logger
	Observer        Observer
	MaxRetries      uint64
	InitialInterval time.Duration
	MaxBodyBytes    int64
}

const (
	defaultTimeout         = 10 * time.Second
	defaultInitialInterval = 250 * time.Millisecond
	defaultMaxBodyBytes    = 32 << 20
)

// Fetcher performs feed round-trips with bounded retry.
type Fetcher struct {
	client          *http.Client
	logger          *slog.Logger
	observer        Observer
	maxRetries      uint64
	initialInterval time.Duration
	maxBodyBytes    int64
}

// NewFetcher returns a Fetcher. Retries default to 2 extra attempts.
func NewFetcher(opts Options) *Fetcher {
	f := &Fetcher{
		client:          opts.Client,
		logger:          logging.Component(opts.Logger, "feed_fetcher"),
		observer:        opts.Observer,
		maxRetries:      opts.MaxRetries,
		initialInterval: opts.InitialInterval,
		maxBodyBytes:    opts.MaxBodyBytes,
	}
	if f.client == nil {
		f.client = &http.Client{Timeout: defaultTimeout}
	}
	if f.initialInterval <= 0 {
		f.initialInterval = defaultInitialInterval
	}
	if f.maxBodyBytes <= 0 {
		f.maxBodyBytes = defaultMaxBodyBytes
	}
	return f
}

// Fetch downloads and decodes one snapshot. Network errors and 5xx answers
// are retried; 4xx answers and decode failures are not.
func (f *Fetcher) Fetch(ctx context.Context, src Source) (Snapshot, error) {
	start := time.Now()

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = f.initialInterval
	b.MaxElapsedTime = 0

	snap, err := backoff.RetryNotifyWithData(
		func() (Snapshot, error) {
			body, err := f.download(ctx, src)
			if err != nil {
				return Snapshot{}, err
			}
			snap, err := decode(src.Format, body)
			if err != nil {
				return Snapshot{}, backoff.Permanent(err)
			}
			return snap, nil
		},
		backoff.WithContext(backoff.WithMaxRetries(b, f.maxRetries), ctx),
		func(err error, d time.Duration) {
			f.logger.Warn("retrying feed fetch",
				slog.String("agency", src.Agency),
				slog.String("feed", src.Kind),
				slog.Duration("backoff", d),
				slog.String("error", err.Error()))
		},
	)

	if f.observer != nil {
		f.observer.ObserveFetch(src.Agency, src.Kind, time.Since(start), err)
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("fetching %s %s: %w", src.Agency, src.Kind, err)
	}
	return snap, nil
}

func (f *Fetcher) download(ctx context.Context, src Source) ([]byte, error) {
	target, err := requestURL(src)
	if err != nil {
		return nil, backoff.Permanent(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, backoff.Permanent(err)
	}
	if src.Format == FormatSTMAlertsJSON {
		req.Header.Set("Accept", "application/json")
	} else {
		req.Header.Set("Accept", "application/x-protobuf")
	}
	if src.AuthHeader != "" && src.AuthValue != "" {
		req.Header.Set(src.AuthHeader, src.AuthValue)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, backoff.Permanent(err)
		}
		return nil, err
	}
	defer logging.SafeCloseWithLogging(resp.Body, f.logger, "http_response_body")

	if resp.StatusCode != http.StatusOK {
		statusErr := fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
		if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
			return nil, backoff.Permanent(statusErr)
		}
		return nil, statusErr
	}

	return io.ReadAll(io.LimitReader(resp.Body, f.maxBodyBytes))
}

func requestURL(src Source) (string, error) {
	if src.AuthQuery == "" || src.AuthValue == "" {
		return src.URL, nil
	}
	u, err := url.Parse(src.URL)
	if err != nil {
		return "", fmt.Errorf("invalid feed url: %w", err)
	}
	q := u.Query()
	q.Set(src.AuthQuery, src.AuthValue)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// RedactedURL is the source URL without its query string, safe to log.
func (s Source) RedactedURL() string {
	u, err := url.Parse(s.URL)
	if err != nil {
		return ""
	}
	u.RawQuery = ""
	return u.String()
}

func decode(format Format, body []byte) (Snapshot, error) {
	switch format {
	case FormatSTMAlertsJSON:
		return DecodeSTMAlerts(body)
	case FormatProtobuf, "":
		return DecodeProtobuf(body)
	default:
		return Snapshot{}, fmt.Errorf("unknown feed format %q", format)
	}
}
