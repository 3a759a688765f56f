package apifootball

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/PablitoTheChicken/ForReal-Server/internal/domain/fixtures"
	"github.com/PablitoTheChicken/ForReal-Server/internal/logging"
	"github.com/PablitoTheChicken/ForReal-Server/internal/providers"
)

var codec = jsoniter.ConfigCompatibleWithStandardLibrary

// Config controls how the client reaches API-Football.
type Config struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
	Timeout    time.Duration
	Logger     *slog.Logger
}

// Client fetches fixtures from API-Football v3 and normalizes them.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient httpDoer
	logger     *slog.Logger
}

// NewClient constructs a client with the provided configuration.
func NewClient(cfg Config) *Client {
	return &Client{
		baseURL:    normalizeBaseURL(cfg.BaseURL),
		apiKey:     cfg.APIKey,
		httpClient: resolveHTTPClient(cfg.HTTPClient, cfg.Timeout),
		logger:     cfg.Logger,
	}
}

// FetchFixtures retrieves every fixture on date. Only date and timezone are
// sent upstream.
func (c *Client) FetchFixtures(ctx context.Context, date, tz string) (providers.FixturePage, error) {
	params := map[string]string{"date": date}
	if tz != "" {
		params["timezone"] = tz
	}

	payload, err := c.get(ctx, params)
	if err != nil {
		return providers.FixturePage{}, err
	}

	return providers.FixturePage{
		Events: c.decodeEvents(ctx, payload.Response),
		Errors: payload.Errors,
	}, nil
}

// FetchFixture retrieves a single fixture by id.
func (c *Client) FetchFixture(ctx context.Context, id string) (fixtures.Event, error) {
	payload, err := c.get(ctx, map[string]string{"id": id})
	if err != nil {
		return fixtures.Event{}, err
	}

	events := c.decodeEvents(ctx, payload.Response)
	if len(events) == 0 {
		return fixtures.Event{}, fmt.Errorf("fixture %s: %w", id, providers.ErrNotFound)
	}
	return events[0], nil
}

func (c *Client) get(ctx context.Context, params map[string]string) (fixturesResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+fixturesPath, nil)
	if err != nil {
		return fixturesResponse{}, err
	}

	q := req.URL.Query()
	for k, v := range params {
		q.Set(k, v)
	}
	req.URL.RawQuery = q.Encode()
	if c.apiKey != "" {
		req.Header.Set(apiKeyHeader, c.apiKey)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fixturesResponse{}, &providers.UpstreamError{Provider: ProviderName, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fixturesResponse{}, &providers.RateLimitError{
			Provider:   ProviderName,
			StatusCode: resp.StatusCode,
			RetryAfter: parseRetryAfter(resp.Header),
			Remaining:  resp.Header.Get(remainingHeader),
			Message:    strings.TrimSpace(string(body)),
		}
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fixturesResponse{}, providers.NewStatusError(ProviderName, resp.StatusCode, body)
	}

	var payload fixturesResponse
	if err := codec.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return fixturesResponse{}, fmt.Errorf("%s: decode fixtures: %w", ProviderName, err)
	}
	return payload, nil
}

func (c *Client) decodeEvents(ctx context.Context, records []json.RawMessage) []fixtures.Event {
	events := make([]fixtures.Event, 0, len(records))
	for i, raw := range records {
		ev, err := fixtures.DecodeEvent(raw)
		if err != nil {
			logging.Warn(logging.FromContext(ctx, c.logger), "skipping malformed fixture",
				slog.String(logging.FieldProvider, ProviderName),
				slog.Int("index", i),
				slog.Any("err", err),
			)
			continue
		}
		events = append(events, ev)
	}
	return events
}
