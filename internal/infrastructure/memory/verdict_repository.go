// Package memory holds in-process adapters used when no database is configured.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/Emmyme/hids-cli/internal/domain/model"
)

// VerdictRepository implements port.VerdictRepository in memory. It keeps at
// most capacity verdicts and evicts the oldest first.
type VerdictRepository struct {
	mu       sync.RWMutex
	capacity int
	order    []uuid.UUID
	byID     map[uuid.UUID]*model.ThreatVerdict
}

// DefaultCapacity bounds the history when NewVerdictRepository gets capacity <= 0.
const DefaultCapacity = 10000

// NewVerdictRepository creates an empty in-memory verdict history.
func NewVerdictRepository(capacity int) *VerdictRepository {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &VerdictRepository{
		capacity: capacity,
		byID:     make(map[uuid.UUID]*model.ThreatVerdict),
	}
}

// Save stores verdicts under one lock, so readers see all of them or none.
// Saving an ID twice keeps the first copy.
func (r *VerdictRepository) Save(_ context.Context, verdicts ...*model.ThreatVerdict) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, v := range verdicts {
		if _, ok := r.byID[v.ID()]; ok {
			continue
		}
		if len(r.order) == r.capacity {
			delete(r.byID, r.order[0])
			r.order = r.order[1:]
		}
		r.order = append(r.order, v.ID())
		r.byID[v.ID()] = v
	}
	return nil
}

// FindByID retrieves a verdict by its unique identifier.
func (r *VerdictRepository) FindByID(_ context.Context, id uuid.UUID) (*model.ThreatVerdict, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	v, ok := r.byID[id]
	if !ok {
		return nil, model.ErrVerdictNotFound
	}
	return v, nil
}

// FindBySessionID retrieves all verdicts for a session, newest first.
func (r *VerdictRepository) FindBySessionID(_ context.Context, sessionID string) ([]*model.ThreatVerdict, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*model.ThreatVerdict
	for _, id := range r.order {
		if v := r.byID[id]; v.SessionID() == sessionID {
			out = append(out, v)
		}
	}
	newestFirst(out)
	return out, nil
}

// ListRecent retrieves the most recent verdicts, newest first.
func (r *VerdictRepository) ListRecent(_ context.Context, limit int) ([]*model.ThreatVerdict, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*model.ThreatVerdict, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.byID[id])
	}
	newestFirst(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Len reports how many verdicts are held.
func (r *VerdictRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// newestFirst sorts by analysis time descending; insertion order breaks ties,
// later saves first.
func newestFirst(vs []*model.ThreatVerdict) {
	for i, j := 0, len(vs)-1; i < j; i, j = i+1, j-1 {
		vs[i], vs[j] = vs[j], vs[i]
	}
	sort.SliceStable(vs, func(i, j int) bool {
		return vs[i].AnalyzedAt().After(vs[j].AnalyzedAt())
	})
}
