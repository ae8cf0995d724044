package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/staynest/staynest/internal/domain/booking"
	"github.com/staynest/staynest/internal/domain/place"
	"github.com/staynest/staynest/internal/domain/user"
)

// BookingsRepo keeps bookings in memory and resolves place expansion against
// a PlacesRepo, mirroring the join the postgres repo performs.
type BookingsRepo struct {
	mu     sync.RWMutex
	items  map[string]booking.Booking
	places *PlacesRepo
}

func NewBookingsRepo(places *PlacesRepo) *BookingsRepo {
	return &BookingsRepo{
		items:  make(map[string]booking.Booking),
		places: places,
	}
}

func (r *BookingsRepo) Create(ctx context.Context, b booking.Booking) (booking.Booking, error) {
	if _, err := r.places.GetByID(ctx, b.PlaceID); err != nil {
		return booking.Booking{}, place.ErrNotFound
	}

	r.mu.Lock()
	r.items[b.ID] = b
	r.mu.Unlock()

	return b, nil
}

func (r *BookingsRepo) ListByUser(ctx context.Context, u user.ID) ([]booking.WithPlace, error) {
	r.mu.RLock()

	mine := make([]booking.Booking, 0)

	for _, b := range r.items {
		if b.User == u {
			mine = append(mine, b)
		}
	}

	r.mu.RUnlock()

	sort.Slice(mine, func(i, j int) bool {
		if mine[i].CreatedAt.Equal(mine[j].CreatedAt) {
			return mine[i].ID < mine[j].ID
		}
		return mine[i].CreatedAt.Before(mine[j].CreatedAt)
	})

	out := make([]booking.WithPlace, 0, len(mine))

	for _, b := range mine {
		p, err := r.places.GetByID(ctx, b.PlaceID)

		if err != nil {
			// booking whose place vanished; skip it like an inner join would
			continue
		}

		out = append(out, booking.WithPlace{Booking: b, Place: p})
	}

	return out, nil
}
