package api

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/invite-sh/server/internal/api/recovery"
	"github.com/invite-sh/server/internal/config"
)

// Deps carries everything the router needs. ConfigErr is non-nil when
// required configuration is missing; the service still serves and answers
// with the generic configuration error.
type Deps struct {
	Config    *config.Config
	ConfigErr error
	Limiter   RateLimitChecker
	Extractor EventExtractor
	IsHealthy func() bool
}

// NewRouter builds the HTTP surface: the invite pipeline, presentation-time
// link encoding, and health.
func NewRouter(d Deps) http.Handler {
	router := mux.NewRouter()
	router.Use(recovery.Middleware)

	inviteHandler := NewInviteHandler(d.Limiter, d.Extractor, d.ConfigErr)
	linksHandler := NewLinksHandler()
	healthHandler := NewHealthHandler(d.IsHealthy)

	router.HandleFunc("/api/invites", inviteHandler.CreateInvites).Methods("POST")
	router.HandleFunc("/api/links", linksHandler.CreateLinks).Methods("POST")
	router.HandleFunc("/api/health", healthHandler.CheckHealth).Methods("GET")
	router.HandleFunc("/api/health/deps", healthHandler.CheckDependencies).Methods("GET")

	origins := []string{"*"}
	if d.Config != nil && d.Config.CORSAllowedOrigins != "" {
		origins = strings.Split(d.Config.CORSAllowedOrigins, ",")
	}
	c := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
		ExposedHeaders: []string{"X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
	})
	return c.Handler(router)
}
