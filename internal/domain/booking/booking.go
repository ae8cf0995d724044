package booking

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/staynest/staynest/internal/domain/place"
	"github.com/staynest/staynest/internal/domain/user"
)

type Booking struct {
	ID      string `json:"id"`
	PlaceID string `json:"place"`
	// User is the booking's creator, stamped from the verified session
	// identity. A client-supplied value is never read.
	User           user.ID   `json:"user"`
	CheckIn        string    `json:"checkIn"`
	CheckOut       string    `json:"checkOut"`
	NumberOfGuests int       `json:"numberOfGuests"`
	Name           string    `json:"name"`
	Phone          string    `json:"phone"`
	Price          int       `json:"price"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// WithPlace is a booking with its referenced place expanded, the shape
// GET /bookings responds with. The outer Place field shadows the embedded
// PlaceID's "place" key.
type WithPlace struct {
	Booking
	Place place.Place `json:"place"`
}

var ErrNotFound = errors.New("booking not found")

type CreateRequest struct {
	Place          string `json:"place" binding:"required"`
	CheckIn        string `json:"checkIn" binding:"required,max=20"`
	CheckOut       string `json:"checkOut" binding:"required,max=20"`
	NumberOfGuests int    `json:"numberOfGuests" binding:"required,min=1,max=100"`
	Name           string `json:"name" binding:"required,min=1,max=140"`
	Phone          string `json:"phone" binding:"required,min=3,max=40"`
	Price          int    `json:"price" binding:"required,min=0"`
}

// NewFromCreateRequest builds a booking attributed to creator. Callers go
// through authz.StampBooking so the creator always comes from the session.
func NewFromCreateRequest(req CreateRequest, creator user.ID) Booking {
	now := time.Now().UTC()

	return Booking{
		ID:             uuid.NewString(),
		PlaceID:        req.Place,
		User:           creator,
		CheckIn:        req.CheckIn,
		CheckOut:       req.CheckOut,
		NumberOfGuests: req.NumberOfGuests,
		Name:           req.Name,
		Phone:          req.Phone,
		Price:          req.Price,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}
