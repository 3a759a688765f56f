// Package roblox reads game and user records from the public Roblox web APIs.
package roblox

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"golang.org/x/time/rate"

	"github.com/PablitoTheChicken/ForReal-Server/internal/domain/entities"
	"github.com/PablitoTheChicken/ForReal-Server/internal/providers"
)

// ProviderName labels this client in logs and metrics.
const ProviderName = "roblox"

const (
	defaultGamesURL      = "https://games.roblox.com"
	defaultThumbnailsURL = "https://thumbnails.roblox.com"
	defaultUsersURL      = "https://users.roblox.com"
	defaultHTTPTimeout   = 8 * time.Second

	stateCompleted = "Completed"
)

var codec = jsoniter.ConfigCompatibleWithStandardLibrary

type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Config controls how the client reaches Roblox. Retrier and Limiter are
// optional.
type Config struct {
	GamesBaseURL      string
	ThumbnailsBaseURL string
	UsersBaseURL      string
	HTTPClient        *http.Client
	Timeout           time.Duration
	Retrier           *providers.Retrier
	Limiter           *rate.Limiter
	Logger            *slog.Logger
}

// Client implements the entity lookups.
type Client struct {
	gamesURL      string
	thumbnailsURL string
	usersURL      string
	httpClient    httpDoer
	retrier       *providers.Retrier
	limiter       *rate.Limiter
	logger        *slog.Logger
}

// NewClient constructs a client with defaults for empty fields.
func NewClient(cfg Config) *Client {
	var doer httpDoer = cfg.HTTPClient
	if cfg.HTTPClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultHTTPTimeout
		}
		doer = &http.Client{Timeout: timeout}
	}
	return &Client{
		gamesURL:      baseURL(cfg.GamesBaseURL, defaultGamesURL),
		thumbnailsURL: baseURL(cfg.ThumbnailsBaseURL, defaultThumbnailsURL),
		usersURL:      baseURL(cfg.UsersBaseURL, defaultUsersURL),
		httpClient:    doer,
		retrier:       cfg.Retrier,
		limiter:       cfg.Limiter,
		logger:        cfg.Logger,
	}
}

type gamesResponse struct {
	Data []struct {
		Name    string `json:"name"`
		Visits  int64  `json:"visits"`
		Playing int64  `json:"playing"`
	} `json:"data"`
}

type votesResponse struct {
	UpVotes   int64 `json:"upVotes"`
	DownVotes int64 `json:"downVotes"`
}

type image struct {
	State    string `json:"state"`
	ImageURL string `json:"imageUrl"`
}

type imagesResponse struct {
	Data []image `json:"data"`
}

type thumbnailsResponse struct {
	Data []struct {
		Thumbnails []image `json:"thumbnails"`
	} `json:"data"`
}

type userResponse struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
}

// FetchGame returns the core record for a universe, or ErrNotFound.
func (c *Client) FetchGame(ctx context.Context, universeID string) (entities.GameDetails, error) {
	var out gamesResponse
	if err := c.getJSON(ctx, c.gamesURL+"/v1/games", url.Values{"universeIds": {universeID}}, &out); err != nil {
		return entities.GameDetails{}, err
	}
	if len(out.Data) == 0 {
		return entities.GameDetails{}, fmt.Errorf("universe %s: %w", universeID, providers.ErrNotFound)
	}
	d := out.Data[0]
	return entities.GameDetails{Name: d.Name, Visits: d.Visits, Playing: d.Playing}, nil
}

// FetchVotes returns the vote counts for a universe.
func (c *Client) FetchVotes(ctx context.Context, universeID string) (entities.Votes, error) {
	var out votesResponse
	path := c.gamesURL + "/v1/games/" + url.PathEscape(universeID) + "/votes"
	if err := c.getJSON(ctx, path, nil, &out); err != nil {
		return entities.Votes{}, err
	}
	return entities.Votes{Up: out.UpVotes, Down: out.DownVotes}, nil
}

// FetchGameIcon returns the 150x150 icon URL, or nil while it is rendering.
func (c *Client) FetchGameIcon(ctx context.Context, universeID string) (*string, error) {
	var out imagesResponse
	params := imageParams("150x150")
	params.Set("universeIds", universeID)
	params.Set("returnPolicy", "PlaceHolder")
	if err := c.getJSON(ctx, c.thumbnailsURL+"/v1/games/icons", params, &out); err != nil {
		return nil, err
	}
	if len(out.Data) == 0 {
		return nil, nil
	}
	return completedURL(out.Data[0]), nil
}

// FetchGameThumbnail returns the first 768x432 thumbnail URL, or nil.
func (c *Client) FetchGameThumbnail(ctx context.Context, universeID string) (*string, error) {
	var out thumbnailsResponse
	params := imageParams("768x432")
	params.Set("universeIds", universeID)
	params.Set("returnPolicy", "PlaceHolder")
	if err := c.getJSON(ctx, c.thumbnailsURL+"/v1/games/multiget/thumbnails", params, &out); err != nil {
		return nil, err
	}
	if len(out.Data) == 0 || len(out.Data[0].Thumbnails) == 0 {
		return nil, nil
	}
	return completedURL(out.Data[0].Thumbnails[0]), nil
}

// FetchUser returns the profile for a user id. An upstream 404 maps to
// ErrNotFound.
func (c *Client) FetchUser(ctx context.Context, userID string) (entities.UserProfile, error) {
	var out userResponse
	if err := c.getJSON(ctx, c.usersURL+"/v1/users/"+url.PathEscape(userID), nil, &out); err != nil {
		if up, ok := providers.AsUpstreamError(err); ok && up.StatusCode == http.StatusNotFound {
			return entities.UserProfile{}, fmt.Errorf("user %s: %w", userID, providers.ErrNotFound)
		}
		return entities.UserProfile{}, err
	}
	return entities.UserProfile{ID: out.ID, Username: out.Name, DisplayName: out.DisplayName}, nil
}

// FetchAvatar returns the 150x150 headshot URL, or nil.
func (c *Client) FetchAvatar(ctx context.Context, userID string) (*string, error) {
	var out imagesResponse
	params := imageParams("150x150")
	params.Set("userIds", userID)
	if err := c.getJSON(ctx, c.thumbnailsURL+"/v1/users/avatar-headshot", params, &out); err != nil {
		return nil, err
	}
	if len(out.Data) == 0 {
		return nil, nil
	}
	return completedURL(out.Data[0]), nil
}

// getJSON takes a limiter token before every attempt, retries included.
func (c *Client) getJSON(ctx context.Context, endpoint string, params url.Values, dest any) error {
	op := func(ctx context.Context) (struct{}, error) {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return struct{}{}, err
			}
		}
		return struct{}{}, c.fetch(ctx, endpoint, params, dest)
	}
	if c.retrier == nil {
		_, err := op(ctx)
		return err
	}
	_, err := providers.Do(ctx, c.retrier, op)
	return err
}

func (c *Client) fetch(ctx context.Context, endpoint string, params url.Values, dest any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	if len(params) > 0 {
		req.URL.RawQuery = params.Encode()
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &providers.UpstreamError{Provider: ProviderName, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return &providers.RateLimitError{Provider: ProviderName, StatusCode: resp.StatusCode}
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return providers.NewStatusError(ProviderName, resp.StatusCode, body)
	}
	if err := codec.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("%s: decode %s: %w", ProviderName, req.URL.Path, err)
	}
	return nil
}

func imageParams(size string) url.Values {
	return url.Values{
		"size":       {size},
		"format":     {"Png"},
		"isCircular": {"false"},
	}
}

func completedURL(img image) *string {
	if img.State != stateCompleted || img.ImageURL == "" {
		return nil
	}
	u := img.ImageURL
	return &u
}

func baseURL(raw, fallback string) string {
	if raw == "" {
		raw = fallback
	}
	return strings.TrimSuffix(raw, "/")
}
