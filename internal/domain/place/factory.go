package place

import (
	"time"

	"github.com/google/uuid"
	"github.com/staynest/staynest/internal/domain/user"
)

func NewFromCreateRequest(owner user.ID, req CreateRequest) Place {
	now := time.Now().UTC()

	return Place{
		ID:          uuid.NewString(),
		Owner:       owner,
		Title:       req.Title,
		Address:     req.Address,
		Photos:      sliceOrEmpty(req.AddedPhotos),
		Description: req.Description,
		Perks:       sliceOrEmpty(req.Perks),
		ExtraInfo:   req.ExtraInfo,
		CheckIn:     req.CheckIn,
		CheckOut:    req.CheckOut,
		MaxGuests:   req.MaxGuests,
		Price:       req.Price,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// ApplyUpdate returns the place with all mutable fields replaced. ID, Owner
// and CreatedAt are carried over untouched.
func (p Place) ApplyUpdate(req UpdateRequest) Place {
	p.Title = req.Title
	p.Address = req.Address
	p.Photos = sliceOrEmpty(req.AddedPhotos)
	p.Description = req.Description
	p.Perks = sliceOrEmpty(req.Perks)
	p.ExtraInfo = req.ExtraInfo
	p.CheckIn = req.CheckIn
	p.CheckOut = req.CheckOut
	p.MaxGuests = req.MaxGuests
	p.Price = req.Price
	p.UpdatedAt = time.Now().UTC()

	return p
}

func sliceOrEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
