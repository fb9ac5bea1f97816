package model

import "time"

// GeoPoint is a WGS84 coordinate in degrees. It is the only coordinate type
// that is ever stored or scored; display-frame conversion happens at the
// rendering boundary (see coordspace).
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Challenge is a single image+location puzzle. Read-only during play.
type Challenge struct {
	ID           string    `json:"id"`
	ImageRef     string    `json:"image_ref"`
	Location     GeoPoint  `json:"location"`
	LocationName string    `json:"location_name,omitempty"`
	AuthorID     string    `json:"author_id"`
	AuthorName   string    `json:"author_name"`
	CreatedAt    time.Time `json:"created_at"`
	Likes        int       `json:"likes"`
}

// GuessRecord is one user's answer to one challenge. Intended to be unique
// per (user, challenge); the store may hold historical duplicates.
type GuessRecord struct {
	ID             string    `json:"id"`
	ChallengeID    string    `json:"challenge_id"`
	UserID         string    `json:"user_id"`
	UserName       string    `json:"user_name"`
	Location       GeoPoint  `json:"location"`
	DistanceMeters float64   `json:"distance_meters"`
	Score          int       `json:"score"`
	Timestamp      time.Time `json:"timestamp"`
}

// CollectionDescriptor is an ordered set of challenges played as one session.
// The ordering is fixed at creation time.
type CollectionDescriptor struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	AuthorID     string    `json:"author_id"`
	AuthorName   string    `json:"author_name"`
	CreatedAt    time.Time `json:"created_at"`
	ChallengeIDs []string  `json:"challenge_ids"`
}

// CollectionAttempt summarizes one completed playthrough of a collection.
// The store may hold several rows per user; consumers must reduce them via
// the ledger (best totalScore, tie-broken by earliest completion).
type CollectionAttempt struct {
	ID           string    `json:"id"`
	CollectionID string    `json:"collection_id"`
	UserID       string    `json:"user_id"`
	UserName     string    `json:"user_name"`
	TotalScore   int       `json:"total_score"`
	CompletedAt  time.Time `json:"completed_at"`
}

// CompletedItem is one answered question inside a CollectionProgress.
type CompletedItem struct {
	ChallengeID    string  `json:"challenge_id"`
	Score          int     `json:"score"`
	DistanceMeters float64 `json:"distance_meters"`
}

// CollectionProgress is the device-local resume checkpoint for one
// (collection, user) pair. Never synced. Invariants: TotalScore equals the
// sum of CompletedItems scores; at most one item per challenge id, in the
// collection's challenge order.
type CollectionProgress struct {
	CollectionID   string          `json:"collection_id"`
	UserID         string          `json:"user_id"`
	CompletedItems []CompletedItem `json:"completed_items"`
	IsCompleted    bool            `json:"is_completed"`
	TotalScore     int             `json:"total_score"`
	StartedAt      time.Time       `json:"started_at"`
	CompletedAt    *time.Time      `json:"completed_at,omitempty"`
}

// HasItem reports whether the progress already records an answer for the
// given challenge.
func (p *CollectionProgress) HasItem(challengeID string) bool {
	for _, it := range p.CompletedItems {
		if it.ChallengeID == challengeID {
			return true
		}
	}
	return false
}

// AppendItem records an answered question and keeps TotalScore consistent.
// Re-appending an already-recorded challenge is a no-op.
func (p *CollectionProgress) AppendItem(item CompletedItem) {
	if p.HasItem(item.ChallengeID) {
		return
	}
	p.CompletedItems = append(p.CompletedItems, item)
	p.TotalScore += item.Score
}
