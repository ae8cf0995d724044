package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/staynest/staynest/internal/domain/place"
	"github.com/staynest/staynest/internal/domain/user"
)

type PlacesRepo struct {
	mu    sync.RWMutex
	items map[string]place.Place
}

func NewPlacesRepo() *PlacesRepo {
	return &PlacesRepo{
		items: make(map[string]place.Place),
	}
}

func (r *PlacesRepo) Create(ctx context.Context, owner user.ID, req place.CreateRequest) (place.Place, error) {
	p := place.NewFromCreateRequest(owner, req)

	r.mu.Lock()
	r.items[p.ID] = p
	r.mu.Unlock()

	return p, nil
}

func (r *PlacesRepo) GetByID(ctx context.Context, id string) (place.Place, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.items[id]
	if !ok {
		return place.Place{}, place.ErrNotFound
	}

	return p, nil
}

func (r *PlacesRepo) List(ctx context.Context) ([]place.Place, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.collect(func(place.Place) bool { return true }), nil
}

func (r *PlacesRepo) ListByOwner(ctx context.Context, owner user.ID) ([]place.Place, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.collect(func(p place.Place) bool { return p.Owner == owner }), nil
}

func (r *PlacesRepo) Update(ctx context.Context, id string, req place.UpdateRequest) (place.Place, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.items[id]
	if !ok {
		return place.Place{}, place.ErrNotFound
	}

	p = p.ApplyUpdate(req)
	r.items[id] = p

	return p, nil
}

// collect assumes the caller holds at least the read lock.
func (r *PlacesRepo) collect(keep func(place.Place) bool) []place.Place {
	out := make([]place.Place, 0, len(r.items))

	for _, p := range r.items {
		if keep(p) {
			out = append(out, p)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})

	return out
}
