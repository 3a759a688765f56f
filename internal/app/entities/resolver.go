package entities

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/PablitoTheChicken/ForReal-Server/internal/cache"
	domain "github.com/PablitoTheChicken/ForReal-Server/internal/domain/entities"
	"github.com/PablitoTheChicken/ForReal-Server/internal/logging"
	"github.com/PablitoTheChicken/ForReal-Server/internal/providers"
)

const defaultGameTTL = 5 * time.Minute

// ErrInvalidID is returned for an empty or non-numeric id.
var ErrInvalidID = errors.New("invalid id")

// Source is the upstream for game and user records.
type Source interface {
	FetchGame(ctx context.Context, universeID string) (domain.GameDetails, error)
	FetchVotes(ctx context.Context, universeID string) (domain.Votes, error)
	FetchGameIcon(ctx context.Context, universeID string) (*string, error)
	FetchGameThumbnail(ctx context.Context, universeID string) (*string, error)
	FetchUser(ctx context.Context, userID string) (domain.UserProfile, error)
	FetchAvatar(ctx context.Context, userID string) (*string, error)
}

// Resolver serves game and user lookups. Only the core record is required;
// votes and images fall back to zero values when their lookups fail.
type Resolver struct {
	source Source
	games  *cache.TTL[domain.Game]
	logger *slog.Logger
}

// NewResolver constructs a Resolver. A nil cache is created with the default
// TTL.
func NewResolver(source Source, games *cache.TTL[domain.Game], logger *slog.Logger) *Resolver {
	if games == nil {
		games = cache.New[domain.Game]("games", defaultGameTTL)
	}
	return &Resolver{source: source, games: games, logger: logger}
}

// Game returns the game summary for universeID. It returns an error wrapping
// providers.ErrNotFound when the universe does not exist.
func (r *Resolver) Game(ctx context.Context, universeID string) (domain.Game, error) {
	universeID = strings.TrimSpace(universeID)
	if !numeric(universeID) {
		return domain.Game{}, ErrInvalidID
	}
	if g, ok := r.games.Get(universeID); ok {
		return g, nil
	}

	details, err := r.source.FetchGame(ctx, universeID)
	if err != nil {
		return domain.Game{}, err
	}

	logger := logging.FromContext(ctx, r.logger)
	var (
		wg        sync.WaitGroup
		votes     domain.Votes
		icon      *string
		thumbnail *string
	)
	wg.Add(3)
	go func() {
		defer wg.Done()
		v, err := r.source.FetchVotes(ctx, universeID)
		if err != nil {
			warnOptional(logger, "votes", universeID, err)
			return
		}
		votes = v
	}()
	go func() {
		defer wg.Done()
		u, err := r.source.FetchGameIcon(ctx, universeID)
		if err != nil {
			warnOptional(logger, "icon", universeID, err)
			return
		}
		icon = u
	}()
	go func() {
		defer wg.Done()
		u, err := r.source.FetchGameThumbnail(ctx, universeID)
		if err != nil {
			warnOptional(logger, "thumbnail", universeID, err)
			return
		}
		thumbnail = u
	}()
	wg.Wait()

	g := domain.NewGame(details, votes, icon, thumbnail)
	r.games.Put(universeID, g)
	return g, nil
}

// User returns the profile for userID with a best-effort avatar. It is not
// cached.
func (r *Resolver) User(ctx context.Context, userID string) (domain.User, error) {
	userID = strings.TrimSpace(userID)
	if !numeric(userID) {
		return domain.User{}, ErrInvalidID
	}

	profile, err := r.source.FetchUser(ctx, userID)
	if err != nil {
		return domain.User{}, err
	}

	avatar, err := r.source.FetchAvatar(ctx, userID)
	if err != nil {
		warnOptional(logging.FromContext(ctx, r.logger), "avatar", userID, err)
		avatar = nil
	}
	return domain.NewUser(profile, avatar), nil
}

// IsNotFound reports whether err means the entity does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, providers.ErrNotFound) || errors.Is(err, ErrInvalidID)
}

func warnOptional(logger *slog.Logger, part, id string, err error) {
	logging.Warn(logger, "optional lookup failed",
		slog.String("part", part),
		slog.String("id", id),
		slog.Any("err", err),
	)
}

func numeric(id string) bool {
	if id == "" {
		return false
	}
	for _, r := range id {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
