package roblox

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"golang.org/x/time/rate"

	"github.com/PablitoTheChicken/ForReal-Server/internal/providers"
)

type roundTripperFunc func(req *http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     make(http.Header),
	}
}

func newTestClient(rt roundTripperFunc, retrier *providers.Retrier) *Client {
	return NewClient(Config{
		GamesBaseURL:      "http://games.test/",
		ThumbnailsBaseURL: "http://thumbs.test",
		UsersBaseURL:      "http://users.test",
		HTTPClient:        &http.Client{Transport: rt},
		Retrier:           retrier,
		Limiter:           providers.NewLimiter(0, 0),
	})
}

func TestFetchGame(t *testing.T) {
	var captured *http.Request
	c := newTestClient(func(req *http.Request) (*http.Response, error) {
		captured = req
		return jsonResponse(http.StatusOK, `{"data":[{"id":1,"name":"Obby","visits":1200,"playing":42,"creator":{"id":9}}]}`), nil
	}, nil)

	got, err := c.FetchGame(context.Background(), "123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Name != "Obby" || got.Visits != 1200 || got.Playing != 42 {
		t.Fatalf("unexpected game %+v", got)
	}
	if captured.URL.Host != "games.test" || captured.URL.Path != "/v1/games" || captured.URL.Query().Get("universeIds") != "123" {
		t.Fatalf("unexpected request %s", captured.URL)
	}
}

func TestFetchGameNotFound(t *testing.T) {
	c := newTestClient(func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, `{"data":[]}`), nil
	}, nil)

	if _, err := c.FetchGame(context.Background(), "0"); !errors.Is(err, providers.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestFetchVotes(t *testing.T) {
	c := newTestClient(func(req *http.Request) (*http.Response, error) {
		if req.URL.Path != "/v1/games/123/votes" {
			t.Errorf("unexpected path %s", req.URL.Path)
		}
		return jsonResponse(http.StatusOK, `{"id":123,"upVotes":30,"downVotes":10}`), nil
	}, nil)

	v, err := c.FetchVotes(context.Background(), "123")
	if err != nil || v.Up != 30 || v.Down != 10 {
		t.Fatalf("unexpected votes %+v err %v", v, err)
	}
}

func TestFetchImages(t *testing.T) {
	c := newTestClient(func(req *http.Request) (*http.Response, error) {
		q := req.URL.Query()
		switch req.URL.Path {
		case "/v1/games/icons":
			if q.Get("size") != "150x150" || q.Get("format") != "Png" || q.Get("returnPolicy") != "PlaceHolder" {
				t.Errorf("unexpected icon query %s", req.URL.RawQuery)
			}
			return jsonResponse(http.StatusOK, `{"data":[{"targetId":123,"state":"Completed","imageUrl":"https://img/icon.png"}]}`), nil
		case "/v1/games/multiget/thumbnails":
			if q.Get("size") != "768x432" {
				t.Errorf("unexpected thumbnail size %s", q.Get("size"))
			}
			return jsonResponse(http.StatusOK, `{"data":[{"universeId":123,"thumbnails":[{"state":"Pending","imageUrl":""}]}]}`), nil
		case "/v1/users/avatar-headshot":
			if q.Get("userIds") != "7" || q.Get("isCircular") != "false" {
				t.Errorf("unexpected avatar query %s", req.URL.RawQuery)
			}
			return jsonResponse(http.StatusOK, `{"data":[{"state":"Completed","imageUrl":"https://img/avatar.png"}]}`), nil
		}
		t.Errorf("unexpected path %s", req.URL.Path)
		return jsonResponse(http.StatusNotFound, ``), nil
	}, nil)
	ctx := context.Background()

	icon, err := c.FetchGameIcon(ctx, "123")
	if err != nil || icon == nil || *icon != "https://img/icon.png" {
		t.Fatalf("unexpected icon %v err %v", icon, err)
	}
	thumb, err := c.FetchGameThumbnail(ctx, "123")
	if err != nil || thumb != nil {
		t.Fatalf("expected nil thumbnail for pending state, got %v err %v", thumb, err)
	}
	avatar, err := c.FetchAvatar(ctx, "7")
	if err != nil || avatar == nil || *avatar != "https://img/avatar.png" {
		t.Fatalf("unexpected avatar %v err %v", avatar, err)
	}
}

func TestFetchUser(t *testing.T) {
	c := newTestClient(func(req *http.Request) (*http.Response, error) {
		switch req.URL.Path {
		case "/v1/users/7":
			return jsonResponse(http.StatusOK, `{"id":7,"name":"builder","displayName":"Builder","hasVerifiedBadge":false}`), nil
		default:
			return jsonResponse(http.StatusNotFound, `{"errors":[{"code":3,"message":"The user id is invalid."}]}`), nil
		}
	}, nil)

	u, err := c.FetchUser(context.Background(), "7")
	if err != nil || u.ID != 7 || u.Username != "builder" || u.DisplayName != "Builder" {
		t.Fatalf("unexpected user %+v err %v", u, err)
	}
	if _, err := c.FetchUser(context.Background(), "0"); !errors.Is(err, providers.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestFetchRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	retrier := providers.NewRetrier(ProviderName, nil, nil, 3, time.Millisecond)
	c := newTestClient(func(req *http.Request) (*http.Response, error) {
		if calls.Add(1) < 3 {
			return jsonResponse(http.StatusBadGateway, `bad gateway`), nil
		}
		return jsonResponse(http.StatusOK, `{"upVotes":1,"downVotes":0}`), nil
	}, retrier)

	v, err := c.FetchVotes(context.Background(), "123")
	if err != nil || v.Up != 1 {
		t.Fatalf("expected success after retries, got %+v err %v", v, err)
	}
	if calls.Load() != 3 {
		t.Fatalf("expected 3 attempts, got %d", calls.Load())
	}
}

func TestFetchRetriesWaitOnLimiter(t *testing.T) {
	var calls atomic.Int32
	retrier := providers.NewRetrier(ProviderName, nil, nil, 3, time.Millisecond)
	c := NewClient(Config{
		GamesBaseURL: "http://games.test",
		HTTPClient: &http.Client{Transport: roundTripperFunc(func(req *http.Request) (*http.Response, error) {
			calls.Add(1)
			return jsonResponse(http.StatusBadGateway, `bad gateway`), nil
		})},
		Retrier: retrier,
		Limiter: rate.NewLimiter(rate.Every(time.Hour), 1),
	})

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	if _, err := c.FetchVotes(ctx, "123"); err == nil {
		t.Fatalf("expected error once the limiter runs dry")
	}
	if calls.Load() != 1 {
		t.Fatalf("expected one upstream call within the limiter budget, got %d", calls.Load())
	}
}

func TestFetchDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	retrier := providers.NewRetrier(ProviderName, nil, nil, 3, time.Millisecond)
	c := newTestClient(func(req *http.Request) (*http.Response, error) {
		calls.Add(1)
		return jsonResponse(http.StatusBadRequest, `{"errors":[]}`), nil
	}, retrier)

	_, err := c.FetchGame(context.Background(), "abc")
	if providers.HTTPStatus(err) != http.StatusBadRequest {
		t.Fatalf("expected 400 upstream error, got %v", err)
	}
	if calls.Load() != 1 {
		t.Fatalf("expected a single attempt, got %d", calls.Load())
	}
}

func TestFetchTransportError(t *testing.T) {
	c := newTestClient(func(req *http.Request) (*http.Response, error) {
		return nil, errors.New("dial failed")
	}, nil)

	_, err := c.FetchGame(context.Background(), "1")
	up, ok := providers.AsUpstreamError(err)
	if !ok || up.StatusCode != 0 {
		t.Fatalf("expected transport upstream error, got %v", err)
	}
}
