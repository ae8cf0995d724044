package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/staynest/staynest/internal/domain/booking"
	"github.com/staynest/staynest/internal/domain/place"
	"github.com/staynest/staynest/internal/domain/user"
	"github.com/staynest/staynest/internal/observability"
)

type BookingsRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewBookingsRepo(pool *pgxpool.Pool, prom *observability.Prom) *BookingsRepo {
	return &BookingsRepo{pool: pool, prom: prom}
}

func (r *BookingsRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

// Create persists a booking already stamped with its creator.
func (r *BookingsRepo) Create(ctx context.Context, b booking.Booking) (booking.Booking, error) {
	err := r.observe("bookings.create", func() error {
		_, e := r.pool.Exec(ctx,
			`INSERT INTO bookings (id, place_id, user_id, check_in, check_out,
				number_of_guests, name, phone, price, created_at, updated_at)
			 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
			b.ID, b.PlaceID, b.User, b.CheckIn, b.CheckOut,
			b.NumberOfGuests, b.Name, b.Phone, b.Price, b.CreatedAt, b.UpdatedAt)
		return e
	})

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			// place_id references a missing place
			return booking.Booking{}, place.ErrNotFound
		}

		return booking.Booking{}, err
	}

	return b, nil
}

// ListByUser returns the caller's bookings with the referenced place
// expanded. The user predicate is fixed here; it is not a client filter.
func (r *BookingsRepo) ListByUser(ctx context.Context, u user.ID) ([]booking.WithPlace, error) {
	var rows pgx.Rows
	var err error

	obsErr := r.observe("bookings.list_by_user", func() error {
		rows, err = r.pool.Query(ctx,
			`SELECT b.id, b.place_id, b.user_id, b.check_in, b.check_out,
				b.number_of_guests, b.name, b.phone, b.price, b.created_at, b.updated_at,
				p.id, p.owner_id, p.title, p.address, p.photos, p.description, p.perks,
				p.extra_info, p.check_in, p.check_out, p.max_guests, p.price, p.created_at, p.updated_at
			 FROM bookings b
			 JOIN places p ON p.id = b.place_id
			 WHERE b.user_id = $1
			 ORDER BY b.created_at ASC, b.id ASC`,
			u)
		return err
	})

	if obsErr != nil {
		return nil, obsErr
	}

	defer rows.Close()

	out := make([]booking.WithPlace, 0)

	for rows.Next() {
		var w booking.WithPlace

		scanErr := rows.Scan(
			&w.ID, &w.PlaceID, &w.User, &w.CheckIn, &w.CheckOut,
			&w.NumberOfGuests, &w.Booking.Name, &w.Phone, &w.Booking.Price,
			&w.Booking.CreatedAt, &w.Booking.UpdatedAt,
			&w.Place.ID, &w.Place.Owner, &w.Place.Title, &w.Place.Address,
			&w.Place.Photos, &w.Place.Description, &w.Place.Perks,
			&w.Place.ExtraInfo, &w.Place.CheckIn, &w.Place.CheckOut,
			&w.Place.MaxGuests, &w.Place.Price, &w.Place.CreatedAt, &w.Place.UpdatedAt,
		)

		if scanErr != nil {
			return nil, scanErr
		}

		out = append(out, w)
	}

	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return out, nil
}
