package entities

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	domain "github.com/PablitoTheChicken/ForReal-Server/internal/domain/entities"
	"github.com/PablitoTheChicken/ForReal-Server/internal/providers"
	"github.com/PablitoTheChicken/ForReal-Server/internal/testutil"
)

type stubSource struct {
	game      domain.GameDetails
	gameErr   error
	votes     domain.Votes
	votesErr  error
	icon      *string
	iconErr   error
	thumb     *string
	thumbErr  error
	user      domain.UserProfile
	userErr   error
	avatar    *string
	avatarErr error

	gameCalls atomic.Int32
}

func (s *stubSource) FetchGame(ctx context.Context, id string) (domain.GameDetails, error) {
	s.gameCalls.Add(1)
	return s.game, s.gameErr
}

func (s *stubSource) FetchVotes(ctx context.Context, id string) (domain.Votes, error) {
	return s.votes, s.votesErr
}

func (s *stubSource) FetchGameIcon(ctx context.Context, id string) (*string, error) {
	return s.icon, s.iconErr
}

func (s *stubSource) FetchGameThumbnail(ctx context.Context, id string) (*string, error) {
	return s.thumb, s.thumbErr
}

func (s *stubSource) FetchUser(ctx context.Context, id string) (domain.UserProfile, error) {
	return s.user, s.userErr
}

func (s *stubSource) FetchAvatar(ctx context.Context, id string) (*string, error) {
	return s.avatar, s.avatarErr
}

func strPtr(v string) *string { return &v }

func TestGameAssemblesAndCaches(t *testing.T) {
	src := &stubSource{
		game:  domain.GameDetails{Name: "Obby", Visits: 100, Playing: 5},
		votes: domain.Votes{Up: 9, Down: 1},
		icon:  strPtr("https://img/icon.png"),
		thumb: strPtr("https://img/thumb.png"),
	}
	r := NewResolver(src, nil, nil)

	g, err := r.Game(context.Background(), "123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if g.Name != "Obby" || g.LikeRatio != 0.9 || g.IconURL == nil || g.ThumbnailURL == nil {
		t.Fatalf("unexpected game %+v", g)
	}

	if _, err := r.Game(context.Background(), "123"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if src.gameCalls.Load() != 1 {
		t.Fatalf("expected cached second lookup, got %d calls", src.gameCalls.Load())
	}
}

func TestGameToleratesOptionalFailures(t *testing.T) {
	logger, buf := testutil.NewBufferLogger()
	boom := errors.New("boom")
	src := &stubSource{
		game:     domain.GameDetails{Name: "Obby"},
		votesErr: boom,
		iconErr:  boom,
		thumbErr: boom,
	}
	r := NewResolver(src, nil, logger)

	g, err := r.Game(context.Background(), "123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if g.LikeRatio != 0 || g.IconURL != nil || g.ThumbnailURL != nil {
		t.Fatalf("expected defaults, got %+v", g)
	}
	if strings.Count(buf.String(), "optional lookup failed") != 3 {
		t.Fatalf("expected three warnings, got %s", buf.String())
	}
}

func TestGameCoreFailures(t *testing.T) {
	notFound := &stubSource{gameErr: fmt.Errorf("universe 1: %w", providers.ErrNotFound)}
	if _, err := NewResolver(notFound, nil, nil).Game(context.Background(), "1"); !IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}

	down := &stubSource{gameErr: providers.NewStatusError("roblox", 503, nil)}
	r := NewResolver(down, nil, nil)
	if _, err := r.Game(context.Background(), "1"); err == nil || IsNotFound(err) {
		t.Fatalf("expected upstream failure, got %v", err)
	}
	if _, err := r.Game(context.Background(), "1"); err == nil {
		t.Fatalf("expected failure not to be cached")
	}
	if down.gameCalls.Load() != 2 {
		t.Fatalf("expected two upstream calls, got %d", down.gameCalls.Load())
	}
}

func TestInvalidIDs(t *testing.T) {
	r := NewResolver(&stubSource{}, nil, nil)
	for _, id := range []string{"", "abc", "12a"} {
		if _, err := r.Game(context.Background(), id); !errors.Is(err, ErrInvalidID) {
			t.Fatalf("Game(%q): expected ErrInvalidID, got %v", id, err)
		}
		if _, err := r.User(context.Background(), id); !errors.Is(err, ErrInvalidID) {
			t.Fatalf("User(%q): expected ErrInvalidID, got %v", id, err)
		}
	}
}

func TestUserWithBestEffortAvatar(t *testing.T) {
	src := &stubSource{
		user:      domain.UserProfile{ID: 7, Username: "builder", DisplayName: "Builder"},
		avatarErr: errors.New("thumbnails down"),
	}
	u, err := NewResolver(src, nil, nil).User(context.Background(), "7")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.UserID != 7 || u.Username != "builder" || u.AvatarURL != nil {
		t.Fatalf("unexpected user %+v", u)
	}

	src.avatarErr = nil
	src.avatar = strPtr("https://img/a.png")
	u, _ = NewResolver(src, nil, nil).User(context.Background(), "7")
	if u.AvatarURL == nil || *u.AvatarURL != "https://img/a.png" {
		t.Fatalf("expected avatar, got %+v", u)
	}
}

func TestUserNotFound(t *testing.T) {
	src := &stubSource{userErr: fmt.Errorf("user 9: %w", providers.ErrNotFound)}
	if _, err := NewResolver(src, nil, nil).User(context.Background(), "9"); !IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}
