package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/getupyang/geo-guess-diy/internal/coordspace"
	"github.com/getupyang/geo-guess-diy/internal/ledger"
	"github.com/getupyang/geo-guess-diy/internal/model"
	"github.com/getupyang/geo-guess-diy/internal/playthrough"
)

// Playthrough session handlers. The engine itself lives in the registry;
// these handlers only translate HTTP to engine calls and map the error
// taxonomy to status codes: NotFound → 404, invalid transition → 409,
// write/read failures → 502 so the client can retry without losing state.

func (a *API) handleStartPlaythrough(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r)
	vars := mux.Vars(r)

	var req struct {
		StartIndex *int `json:"start_index"`
	}
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
	}
	startIndex := playthrough.ResumeIndex
	if req.StartIndex != nil {
		if *req.StartIndex < 0 {
			http.Error(w, "invalid start_index", http.StatusBadRequest)
			return
		}
		startIndex = *req.StartIndex
	}

	collection, err := a.db.Collection(r.Context(), vars["collection_id"])
	if err != nil {
		if errors.Is(err, playthrough.ErrNotFound) {
			http.Error(w, "collection not found", http.StatusNotFound)
			return
		}
		http.Error(w, "failed to load collection", http.StatusBadGateway)
		return
	}

	engine, _ := a.registry.Acquire(collection, claims.UserID, claims.Username)
	view, err := engine.Start(r.Context(), startIndex)
	if err != nil {
		// The view still reflects a retryable loading state.
		log.Printf("Playthrough start for %s/%s: %v", collection.ID, claims.UserID, err)
	}
	if view == nil {
		http.Error(w, "failed to start playthrough", http.StatusBadGateway)
		return
	}
	if view.State == playthrough.StateCompleted && view.Attempt != nil {
		a.announceCompletion(r, view.Attempt)
	}
	writeJSON(w, view)
}

func (a *API) handlePlaythroughView(w http.ResponseWriter, r *http.Request) {
	engine := a.engineFor(w, r)
	if engine == nil {
		return
	}
	writeJSON(w, engine.View())
}

func (a *API) handleSubmitGuess(w http.ResponseWriter, r *http.Request) {
	engine := a.engineFor(w, r)
	if engine == nil {
		return
	}

	var req struct {
		Lat   float64 `json:"lat"`
		Lng   float64 `json:"lng"`
		Frame string  `json:"frame"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Lat < -90 || req.Lat > 90 || req.Lng < -180 || req.Lng > 180 {
		http.Error(w, "invalid coordinates", http.StatusBadRequest)
		return
	}

	// Clicks arrive in the frame the client's map tiles use. Scoring is
	// always geodetic, so shifted clicks are converted back first.
	point := model.GeoPoint{Lat: req.Lat, Lng: req.Lng}
	switch req.Frame {
	case "", coordspace.Geodetic.String():
	case coordspace.RegionalShifted.String():
		point = coordspace.ToGeodetic(point, coordspace.RegionalShifted)
	default:
		http.Error(w, "unknown coordinate frame", http.StatusBadRequest)
		return
	}

	result, err := engine.SubmitGuess(r.Context(), point)
	if err != nil {
		if errors.Is(err, playthrough.ErrInvalidState) {
			http.Error(w, "no question awaiting a guess", http.StatusConflict)
			return
		}
		// Unsaved guess: the engine did not advance, the client may retry.
		http.Error(w, "failed to save guess", http.StatusBadGateway)
		return
	}
	writeJSON(w, result)
}

func (a *API) handleAdvance(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r)
	engine := a.engineFor(w, r)
	if engine == nil {
		return
	}

	view, err := engine.Advance(r.Context())
	if err != nil {
		if errors.Is(err, playthrough.ErrInvalidState) {
			http.Error(w, "nothing to advance from", http.StatusConflict)
			return
		}
		log.Printf("Playthrough advance for %s: %v", claims.UserID, err)
	}
	if view == nil {
		http.Error(w, "failed to advance", http.StatusBadGateway)
		return
	}

	if view.State == playthrough.StateCompleted && view.Attempt != nil {
		a.announceCompletion(r, view.Attempt)
	}
	writeJSON(w, view)
}

// engineFor resolves the live engine for the request's (collection, user)
// pair, or writes a 404 when no session was started.
func (a *API) engineFor(w http.ResponseWriter, r *http.Request) *playthrough.Engine {
	claims := claimsFrom(r)
	vars := mux.Vars(r)
	engine, ok := a.registry.Get(vars["collection_id"], claims.UserID)
	if !ok {
		http.Error(w, "no active playthrough", http.StatusNotFound)
		return nil
	}
	return engine
}

// announceCompletion posts the user's new rank to the announcer. Best
// effort, off the request path.
func (a *API) announceCompletion(r *http.Request, attempt *model.CollectionAttempt) {
	collection, err := a.db.Collection(r.Context(), attempt.CollectionID)
	if err != nil {
		return
	}
	attempts, err := a.db.Attempts(r.Context(), attempt.CollectionID)
	if err != nil {
		return
	}
	rank := ledger.RankOf(attempt.UserID, attempts, leaderboardSize)
	if rank.Record == nil {
		return
	}
	go a.announcer.AnnounceBest(collection, rank.Record, rank.Rank)
}
