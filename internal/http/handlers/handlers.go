package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	nethttp "net/http"
	"strings"

	"github.com/gorilla/mux"

	appentities "github.com/PablitoTheChicken/ForReal-Server/internal/app/entities"
	appfixtures "github.com/PablitoTheChicken/ForReal-Server/internal/app/fixtures"
	"github.com/PablitoTheChicken/ForReal-Server/internal/domain/entities"
	"github.com/PablitoTheChicken/ForReal-Server/internal/domain/fixtures"
	"github.com/PablitoTheChicken/ForReal-Server/internal/logging"
	"github.com/PablitoTheChicken/ForReal-Server/internal/providers"
	"github.com/PablitoTheChicken/ForReal-Server/internal/sweeper"
)

const (
	welcomeText       = "Welcome to the Roblox Game API"
	maxScoresBodySize = 64 << 10
)

// FixtureResolver answers fixture and score queries.
type FixtureResolver interface {
	Resolve(ctx context.Context, q appfixtures.Query) (fixtures.Envelope, error)
	ResolveScores(ctx context.Context, ids []string) fixtures.ScoresResponse
}

// EntityResolver answers game and user lookups.
type EntityResolver interface {
	Game(ctx context.Context, universeID string) (entities.Game, error)
	User(ctx context.Context, userID string) (entities.User, error)
}

// Handler wires HTTP routes to the resolvers.
type Handler struct {
	fixtures FixtureResolver
	entities EntityResolver
	logger   *slog.Logger
	statusFn func() sweeper.Status
}

// NewHandler constructs a Handler. statusFn may be nil, in which case the
// service always reports ready.
func NewHandler(fixtures FixtureResolver, entities EntityResolver, logger *slog.Logger, statusFn func() sweeper.Status) *Handler {
	return &Handler{
		fixtures: fixtures,
		entities: entities,
		logger:   logger,
		statusFn: statusFn,
	}
}

// Welcome answers the root path with a plain text banner.
func (h *Handler) Welcome(w nethttp.ResponseWriter, r *nethttp.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(nethttp.StatusOK)
	_, _ = io.WriteString(w, welcomeText)
}

// Health reports the service health.
func (h *Handler) Health(w nethttp.ResponseWriter, r *nethttp.Request) {
	if err := r.Context().Err(); err != nil {
		writeError(w, r, nethttp.StatusServiceUnavailable, "shutting down", h.logger)
		return
	}
	writeJSON(w, nethttp.StatusOK, map[string]string{"status": "ok"}, h.logger)
}

// Ready reports whether background cache maintenance is running.
func (h *Handler) Ready(w nethttp.ResponseWriter, r *nethttp.Request) {
	if h.statusFn == nil || h.statusFn().IsReady() {
		writeJSON(w, nethttp.StatusOK, map[string]string{"status": "ready"}, h.logger)
		return
	}
	writeError(w, r, nethttp.StatusServiceUnavailable, "cache sweeper not running", h.logger)
}

// Fixtures serves GET /football/fixtures.
func (h *Handler) Fixtures(w nethttp.ResponseWriter, r *nethttp.Request) {
	params := r.URL.Query()
	q := appfixtures.Query{
		Date:           params.Get("date"),
		Leagues:        appfixtures.SplitList(params.Get("leagues")),
		Season:         params.Get("season"),
		Timezone:       params.Get("timezone"),
		WithPrediction: truthy(params.Get("withPrediction")),
	}

	env, err := h.fixtures.Resolve(r.Context(), q)
	if err != nil {
		h.writeFixturesError(w, r, err)
		return
	}
	writeJSON(w, nethttp.StatusOK, env, h.logger)
}

func (h *Handler) writeFixturesError(w nethttp.ResponseWriter, r *nethttp.Request, err error) {
	if v, ok := appfixtures.AsValidationError(err); ok {
		msg := v.Error()
		if v.Field == "date" {
			msg = "Missing required 'date' (YYYY-MM-DD)"
		}
		writeError(w, r, nethttp.StatusBadRequest, msg, h.logger)
		return
	}
	if c, ok := appfixtures.AsConfigurationError(err); ok {
		writeError(w, r, nethttp.StatusInternalServerError, c.Error(), h.logger)
		return
	}
	writeErrorDetails(w, r, providers.HTTPStatus(err), "Failed to fetch fixtures", providers.Details(err), h.logger)
}

type scoresRequest struct {
	IDs []json.RawMessage `json:"ids"`
}

// Scores serves GET /football/scores?ids=a,b and POST /football/scores
// with {"ids": [...]}.
func (h *Handler) Scores(w nethttp.ResponseWriter, r *nethttp.Request) {
	var ids []string
	if r.Method == nethttp.MethodPost {
		var req scoresRequest
		if err := json.NewDecoder(nethttp.MaxBytesReader(w, r.Body, maxScoresBodySize)).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			writeError(w, r, nethttp.StatusBadRequest, "invalid JSON body", h.logger)
			return
		}
		ids = rawIDs(req.IDs)
	} else {
		ids = appfixtures.SplitList(r.URL.Query().Get("ids"))
	}

	if len(ids) == 0 {
		writeError(w, r, nethttp.StatusBadRequest, "Missing required 'ids'", h.logger)
		return
	}
	writeJSON(w, nethttp.StatusOK, h.fixtures.ResolveScores(r.Context(), ids), h.logger)
}

// Game serves GET /game/{universeId}.
func (h *Handler) Game(w nethttp.ResponseWriter, r *nethttp.Request) {
	game, err := h.entities.Game(r.Context(), mux.Vars(r)["universeId"])
	if err != nil {
		if appentities.IsNotFound(err) {
			writeError(w, r, nethttp.StatusNotFound, "Game not found or invalid Universe ID", h.logger)
			return
		}
		logging.Error(loggerFromContext(r, h.logger), "game lookup failed", err)
		writeError(w, r, nethttp.StatusInternalServerError, "Failed to fetch game details from Roblox API", h.logger)
		return
	}
	writeJSON(w, nethttp.StatusOK, game, h.logger)
}

// User serves GET /user/{userId}.
func (h *Handler) User(w nethttp.ResponseWriter, r *nethttp.Request) {
	user, err := h.entities.User(r.Context(), mux.Vars(r)["userId"])
	if err != nil {
		if appentities.IsNotFound(err) {
			writeError(w, r, nethttp.StatusNotFound, "User not found or invalid user ID", h.logger)
			return
		}
		logging.Error(loggerFromContext(r, h.logger), "user lookup failed", err)
		writeError(w, r, nethttp.StatusInternalServerError, "Failed to fetch user profile", h.logger)
		return
	}
	writeJSON(w, nethttp.StatusOK, user, h.logger)
}

// rawIDs accepts both numbers and strings in the ids array.
func rawIDs(raw []json.RawMessage) []string {
	ids := make([]string, 0, len(raw))
	for _, item := range raw {
		var s string
		if err := json.Unmarshal(item, &s); err == nil {
			if s = strings.TrimSpace(s); s != "" {
				ids = append(ids, s)
			}
			continue
		}
		var n json.Number
		if err := json.Unmarshal(item, &n); err == nil && n.String() != "" {
			ids = append(ids, n.String())
		}
	}
	return ids
}

func truthy(v string) bool {
	v = strings.TrimSpace(v)
	return strings.EqualFold(v, "true") || v == "1"
}
