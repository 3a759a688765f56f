package http

import (
	nethttp "net/http"

	gorillahandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/PablitoTheChicken/ForReal-Server/internal/http/handlers"
)

// NewRouter registers HTTP routes and wraps them with CORS. An empty origin
// list allows any origin.
func NewRouter(handler *handlers.Handler, allowedOrigins []string) nethttp.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/", handler.Welcome).Methods(nethttp.MethodGet)
	r.HandleFunc("/health", handler.Health).Methods(nethttp.MethodGet)
	r.HandleFunc("/ready", handler.Ready).Methods(nethttp.MethodGet)
	r.HandleFunc("/football/fixtures", handler.Fixtures).Methods(nethttp.MethodGet)
	r.HandleFunc("/football/scores", handler.Scores).Methods(nethttp.MethodGet, nethttp.MethodPost)
	r.HandleFunc("/game/{universeId}", handler.Game).Methods(nethttp.MethodGet)
	r.HandleFunc("/user/{userId}", handler.User).Methods(nethttp.MethodGet)

	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}
	cors := gorillahandlers.CORS(
		gorillahandlers.AllowedOrigins(allowedOrigins),
		gorillahandlers.AllowedMethods([]string{nethttp.MethodGet, nethttp.MethodPost, nethttp.MethodOptions}),
		gorillahandlers.AllowedHeaders([]string{"Content-Type", "X-Request-ID"}),
		gorillahandlers.ExposedHeaders([]string{"X-Request-ID"}),
	)
	return cors(r)
}
