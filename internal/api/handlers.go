package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/getupyang/geo-guess-diy/internal/ledger"
	"github.com/getupyang/geo-guess-diy/internal/maplink"
	"github.com/getupyang/geo-guess-diy/internal/model"
	"github.com/getupyang/geo-guess-diy/internal/playthrough"
)

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

// Challenge handlers

func (a *API) handleCreateChallenge(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r)

	var req struct {
		ImageRef     string   `json:"image_ref"`
		Lat          *float64 `json:"lat"`
		Lng          *float64 `json:"lng"`
		MapURL       string   `json:"map_url"`
		LocationName string   `json:"location_name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.ImageRef == "" {
		http.Error(w, "image_ref is required", http.StatusBadRequest)
		return
	}

	// Authors can pin a coordinate directly or paste a shared map link.
	var location model.GeoPoint
	switch {
	case req.Lat != nil && req.Lng != nil:
		location = model.GeoPoint{Lat: *req.Lat, Lng: *req.Lng}
		if location.Lat < -90 || location.Lat > 90 || location.Lng < -180 || location.Lng > 180 {
			http.Error(w, "invalid coordinates", http.StatusBadRequest)
			return
		}
	case req.MapURL != "":
		p, err := maplink.Resolve(r.Context(), req.MapURL)
		if err != nil {
			http.Error(w, "could not extract a location from map_url", http.StatusBadRequest)
			return
		}
		location = p
	default:
		http.Error(w, "either lat/lng or map_url is required", http.StatusBadRequest)
		return
	}

	challenge := model.Challenge{
		ID:           uuid.NewString(),
		ImageRef:     req.ImageRef,
		Location:     location,
		LocationName: req.LocationName,
		AuthorID:     claims.UserID,
		AuthorName:   claims.Username,
		CreatedAt:    time.Now(),
	}
	if err := a.db.InsertChallenge(r.Context(), &challenge); err != nil {
		http.Error(w, "failed to create challenge", http.StatusInternalServerError)
		return
	}
	writeJSON(w, challenge)
}

func (a *API) handleGetChallenge(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	challenge, err := a.db.Challenge(r.Context(), vars["challenge_id"])
	if err != nil {
		if errors.Is(err, playthrough.ErrNotFound) {
			http.Error(w, "challenge not found", http.StatusNotFound)
			return
		}
		http.Error(w, "failed to get challenge", http.StatusInternalServerError)
		return
	}
	writeJSON(w, challenge)
}

func (a *API) handleLikeChallenge(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	likes, err := a.db.LikeChallenge(r.Context(), vars["challenge_id"])
	if err != nil {
		if errors.Is(err, playthrough.ErrNotFound) {
			http.Error(w, "challenge not found", http.StatusNotFound)
			return
		}
		http.Error(w, "failed to like challenge", http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]int{"likes": likes})
}

func (a *API) handleRecentChallenges(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if q := r.URL.Query().Get("limit"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil || n < 1 || n > 100 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}
	challenges, err := a.db.RecentChallenges(r.Context(), limit)
	if err != nil {
		http.Error(w, "failed to list challenges", http.StatusInternalServerError)
		return
	}
	if challenges == nil {
		challenges = []model.Challenge{}
	}
	writeJSON(w, challenges)
}

// Collection handlers

func (a *API) handleCreateCollection(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r)

	var req struct {
		Name         string   `json:"name"`
		ChallengeIDs []string `json:"challenge_ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Name == "" || len(req.ChallengeIDs) == 0 {
		http.Error(w, "name and challenge_ids are required", http.StatusBadRequest)
		return
	}

	collection := model.CollectionDescriptor{
		ID:           uuid.NewString(),
		Name:         req.Name,
		AuthorID:     claims.UserID,
		AuthorName:   claims.Username,
		CreatedAt:    time.Now(),
		ChallengeIDs: req.ChallengeIDs,
	}
	if err := a.db.InsertCollection(r.Context(), &collection); err != nil {
		http.Error(w, "failed to create collection", http.StatusInternalServerError)
		return
	}
	writeJSON(w, collection)
}

func (a *API) handleGetCollection(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	collection, err := a.db.Collection(r.Context(), vars["collection_id"])
	if err != nil {
		if errors.Is(err, playthrough.ErrNotFound) {
			http.Error(w, "collection not found", http.StatusNotFound)
			return
		}
		http.Error(w, "failed to get collection", http.StatusInternalServerError)
		return
	}
	writeJSON(w, collection)
}

// Leaderboard

const leaderboardSize = 10

type leaderboardResponse struct {
	Top   []model.CollectionAttempt `json:"top"`
	Me    *ledger.Rank              `json:"me,omitempty"`
	Stats ledger.Stats              `json:"stats"`
}

func (a *API) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r)
	a.serveLeaderboard(w, r, claims.UserID)
}

func (a *API) handlePublicLeaderboard(w http.ResponseWriter, r *http.Request) {
	a.serveLeaderboard(w, r, "")
}

func (a *API) serveLeaderboard(w http.ResponseWriter, r *http.Request, userID string) {
	vars := mux.Vars(r)
	attempts, err := a.db.Attempts(r.Context(), vars["collection_id"])
	if err != nil {
		http.Error(w, "failed to load leaderboard", http.StatusInternalServerError)
		return
	}

	resp := leaderboardResponse{
		Top:   ledger.TopN(attempts, leaderboardSize),
		Stats: ledger.Aggregate(attempts),
	}
	if resp.Top == nil {
		resp.Top = []model.CollectionAttempt{}
	}
	if userID != "" {
		if rank := ledger.RankOf(userID, attempts, leaderboardSize); rank.Record != nil {
			resp.Me = &rank
		}
	}
	writeJSON(w, resp)
}
