// Package registry tracks live playthrough engines per (collection, user)
// pair. Progress keys are namespaced the same way, so two sessions for the
// same pair share one engine; a user running two devices gets
// last-local-write-wins semantics by design of the progress store.
package registry

import (
	"sync"

	"github.com/getupyang/geo-guess-diy/internal/model"
	"github.com/getupyang/geo-guess-diy/internal/playthrough"
)

type Registry struct {
	records  playthrough.RecordStore
	progress playthrough.ProgressStore

	mu      sync.Mutex
	engines map[string]*playthrough.Engine
}

func New(records playthrough.RecordStore, progress playthrough.ProgressStore) *Registry {
	return &Registry{
		records:  records,
		progress: progress,
		engines:  make(map[string]*playthrough.Engine),
	}
}

func engineKey(collectionID, userID string) string {
	return collectionID + ":" + userID
}

// Acquire returns the live engine for the pair, creating one if needed.
// created reports whether this call constructed the engine; the descriptor
// is only consulted on creation.
func (r *Registry) Acquire(col *model.CollectionDescriptor, userID, userName string) (e *playthrough.Engine, created bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := engineKey(col.ID, userID)
	if e, ok := r.engines[k]; ok {
		return e, false
	}
	e = playthrough.New(r.records, r.progress, col, userID, userName)
	r.engines[k] = e
	return e, true
}

// Get looks up a live engine without creating one.
func (r *Registry) Get(collectionID, userID string) (*playthrough.Engine, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.engines[engineKey(collectionID, userID)]
	return e, ok
}

// Drop discards a live engine, e.g. after completion. Progress stays in the
// local store; a fresh Acquire restores from it.
func (r *Registry) Drop(collectionID, userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.engines, engineKey(collectionID, userID))
}
