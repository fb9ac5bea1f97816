package api

import (
	"log"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/getupyang/geo-guess-diy/internal/config"
	"github.com/getupyang/geo-guess-diy/internal/db"
	"github.com/getupyang/geo-guess-diy/internal/notify"
	"github.com/getupyang/geo-guess-diy/internal/registry"
)

type API struct {
	router    *mux.Router
	db        *db.DB
	config    *config.Config
	registry  *registry.Registry
	announcer notify.Announcer
	jwtSecret []byte
}

func New(cfg *config.Config, database *db.DB, reg *registry.Registry, announcer notify.Announcer) *API {
	api := &API{
		router:    mux.NewRouter(),
		db:        database,
		config:    cfg,
		registry:  reg,
		announcer: announcer,
		jwtSecret: []byte(cfg.JWTSecret),
	}

	api.setupRoutes()
	return api
}

func (a *API) setupRoutes() {
	// Public endpoints
	a.router.HandleFunc("/api/public/challenges", a.handleRecentChallenges).Methods("GET")
	a.router.HandleFunc("/api/public/collections/{collection_id}/leaderboard", a.handlePublicLeaderboard).Methods("GET")

	// Protected endpoints
	protected := a.router.PathPrefix("/api").Subrouter()
	protected.Use(a.authMiddleware)

	protected.HandleFunc("/challenges", a.handleCreateChallenge).Methods("POST")
	protected.HandleFunc("/challenges/{challenge_id}", a.handleGetChallenge).Methods("GET")
	protected.HandleFunc("/challenges/{challenge_id}/like", a.handleLikeChallenge).Methods("POST")

	protected.HandleFunc("/collections", a.handleCreateCollection).Methods("POST")
	protected.HandleFunc("/collections/{collection_id}", a.handleGetCollection).Methods("GET")
	protected.HandleFunc("/collections/{collection_id}/leaderboard", a.handleLeaderboard).Methods("GET")

	protected.HandleFunc("/collections/{collection_id}/playthrough", a.handleStartPlaythrough).Methods("POST")
	protected.HandleFunc("/collections/{collection_id}/playthrough", a.handlePlaythroughView).Methods("GET")
	protected.HandleFunc("/collections/{collection_id}/playthrough/guess", a.handleSubmitGuess).Methods("POST")
	protected.HandleFunc("/collections/{collection_id}/playthrough/advance", a.handleAdvance).Methods("POST")
}

func (a *API) Start() error {
	corsOptions := cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: false,
	}

	handler := cors.New(corsOptions).Handler(a.router)

	log.Printf("API server listening on http://%s", a.config.WebBind)
	return http.ListenAndServe(a.config.WebBind, handler)
}
