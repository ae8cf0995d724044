package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/staynest/staynest/internal/domain/place"
	"github.com/staynest/staynest/internal/domain/user"
	"github.com/staynest/staynest/internal/observability"
)

type PlacesRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewPlacesRepo(pool *pgxpool.Pool, prom *observability.Prom) *PlacesRepo {
	return &PlacesRepo{pool: pool, prom: prom}
}

func (r *PlacesRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

const placeColumns = `id, owner_id, title, address, photos, description, perks,
	extra_info, check_in, check_out, max_guests, price, created_at, updated_at`

func scanPlace(row pgx.Row) (place.Place, error) {
	var p place.Place

	err := row.Scan(
		&p.ID, &p.Owner, &p.Title, &p.Address, &p.Photos, &p.Description,
		&p.Perks, &p.ExtraInfo, &p.CheckIn, &p.CheckOut, &p.MaxGuests,
		&p.Price, &p.CreatedAt, &p.UpdatedAt,
	)

	return p, err
}

// Create inserts a place owned by owner. The owner column is written here
// and never touched again.
func (r *PlacesRepo) Create(ctx context.Context, owner user.ID, req place.CreateRequest) (place.Place, error) {
	p := place.NewFromCreateRequest(owner, req)

	err := r.observe("places.create", func() error {
		_, e := r.pool.Exec(ctx,
			`INSERT INTO places (id, owner_id, title, address, photos, description,
				perks, extra_info, check_in, check_out, max_guests, price, created_at, updated_at)
			 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)`,
			p.ID, p.Owner, p.Title, p.Address, p.Photos, p.Description,
			p.Perks, p.ExtraInfo, p.CheckIn, p.CheckOut, p.MaxGuests, p.Price,
			p.CreatedAt, p.UpdatedAt)
		return e
	})

	if err != nil {
		return place.Place{}, err
	}

	return p, nil
}

func (r *PlacesRepo) GetByID(ctx context.Context, id string) (place.Place, error) {
	var p place.Place
	var err error

	obsErr := r.observe("places.get_by_id", func() error {
		p, err = scanPlace(r.pool.QueryRow(ctx,
			`SELECT `+placeColumns+` FROM places WHERE id = $1`, id))
		return err
	})

	if obsErr != nil {
		if errors.Is(obsErr, pgx.ErrNoRows) {
			return place.Place{}, place.ErrNotFound
		}

		return place.Place{}, obsErr
	}

	return p, nil
}

func (r *PlacesRepo) List(ctx context.Context) ([]place.Place, error) {
	return r.listWhere(ctx, "places.list", `SELECT `+placeColumns+` FROM places ORDER BY created_at ASC, id ASC`)
}

func (r *PlacesRepo) ListByOwner(ctx context.Context, owner user.ID) ([]place.Place, error) {
	return r.listWhere(ctx, "places.list_by_owner",
		`SELECT `+placeColumns+` FROM places WHERE owner_id = $1 ORDER BY created_at ASC, id ASC`, owner)
}

func (r *PlacesRepo) listWhere(ctx context.Context, op, query string, args ...interface{}) ([]place.Place, error) {
	var rows pgx.Rows
	var err error

	obsErr := r.observe(op, func() error {
		rows, err = r.pool.Query(ctx, query, args...)
		return err
	})

	if obsErr != nil {
		return nil, obsErr
	}

	defer rows.Close()

	out := make([]place.Place, 0)

	for rows.Next() {
		p, scanErr := scanPlace(rows)

		if scanErr != nil {
			return nil, scanErr
		}

		out = append(out, p)
	}

	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return out, nil
}

// Update replaces the mutable fields only. Ownership was checked by the
// caller; owner_id is deliberately absent from the SET list.
func (r *PlacesRepo) Update(ctx context.Context, id string, req place.UpdateRequest) (place.Place, error) {
	var p place.Place
	var err error

	obsErr := r.observe("places.update", func() error {
		p, err = scanPlace(r.pool.QueryRow(ctx,
			`UPDATE places
			 SET title = $2,
				 address = $3,
				 photos = $4,
				 description = $5,
				 perks = $6,
				 extra_info = $7,
				 check_in = $8,
				 check_out = $9,
				 max_guests = $10,
				 price = $11,
				 updated_at = NOW()
			 WHERE id = $1
			 RETURNING `+placeColumns,
			id, req.Title, req.Address, req.AddedPhotos, req.Description,
			req.Perks, req.ExtraInfo, req.CheckIn, req.CheckOut,
			req.MaxGuests, req.Price))
		return err
	})

	if obsErr != nil {
		if errors.Is(obsErr, pgx.ErrNoRows) {
			return place.Place{}, place.ErrNotFound
		}

		return place.Place{}, obsErr
	}

	return p, nil
}
