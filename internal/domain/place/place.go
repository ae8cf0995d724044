package place

import (
	"errors"
	"time"

	"github.com/staynest/staynest/internal/domain/user"
)

type Place struct {
	ID string `json:"id"`
	// Owner is set exactly once, at creation, from the authenticated
	// creator. It never comes from a request body and never changes.
	Owner       user.ID   `json:"owner"`
	Title       string    `json:"title"`
	Address     string    `json:"address"`
	Photos      []string  `json:"photos"`
	Description string    `json:"description,omitempty"`
	Perks       []string  `json:"perks"`
	ExtraInfo   string    `json:"extraInfo,omitempty"`
	CheckIn     string    `json:"checkIn"`
	CheckOut    string    `json:"checkOut"`
	MaxGuests   int       `json:"maxGuests"`
	Price       int       `json:"price"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

var ErrNotFound = errors.New("place not found")

type CreateRequest struct {
	Title       string   `json:"title" binding:"required,min=3,max=140"`
	Address     string   `json:"address" binding:"required,min=3,max=250"`
	AddedPhotos []string `json:"addedPhotos" binding:"omitempty,dive,max=250"`
	Description string   `json:"description" binding:"omitempty,max=4000"`
	Perks       []string `json:"perks" binding:"omitempty,dive,max=60"`
	ExtraInfo   string   `json:"extraInfo" binding:"omitempty,max=4000"`
	CheckIn     string   `json:"checkIn" binding:"omitempty,max=20"`
	CheckOut    string   `json:"checkOut" binding:"omitempty,max=20"`
	MaxGuests   int      `json:"maxGuests" binding:"required,min=1,max=100"`
	Price       int      `json:"price" binding:"required,min=0"`
}

// A full update payload; the place id travels in the body, matching the
// original client contract for PUT /places.
type UpdateRequest struct {
	ID          string   `json:"id" binding:"required"`
	Title       string   `json:"title" binding:"required,min=3,max=140"`
	Address     string   `json:"address" binding:"required,min=3,max=250"`
	AddedPhotos []string `json:"addedPhotos" binding:"omitempty,dive,max=250"`
	Description string   `json:"description" binding:"omitempty,max=4000"`
	Perks       []string `json:"perks" binding:"omitempty,dive,max=60"`
	ExtraInfo   string   `json:"extraInfo" binding:"omitempty,max=4000"`
	CheckIn     string   `json:"checkIn" binding:"omitempty,max=20"`
	CheckOut    string   `json:"checkOut" binding:"omitempty,max=20"`
	MaxGuests   int      `json:"maxGuests" binding:"required,min=1,max=100"`
	Price       int      `json:"price" binding:"required,min=0"`
}
