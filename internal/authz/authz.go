// Package authz holds the ownership decisions for mutating operations.
// Lookup and authorization are separate steps: handlers resolve the resource
// first (missing resource short-circuits to 404) and only then ask here.
package authz

import (
	"errors"

	"github.com/staynest/staynest/internal/auth"
	"github.com/staynest/staynest/internal/domain/booking"
	"github.com/staynest/staynest/internal/domain/place"
)

// ErrNotOwner means the caller is authenticated but does not own the
// resource. Maps to 403, never to 404.
var ErrNotOwner = errors.New("caller does not own this resource")

// CanMutatePlace allows mutation iff the verified identity is the place's
// owner. Single-step decision, idempotent.
func CanMutatePlace(ident auth.Identity, p place.Place) error {
	if p.Owner != ident.UserID {
		return ErrNotOwner
	}

	return nil
}

// StampBooking builds the booking to persist, attributing it to the verified
// identity. Any user field a client sent in the payload never reaches here.
func StampBooking(ident auth.Identity, req booking.CreateRequest) booking.Booking {
	return booking.NewFromCreateRequest(req, ident.UserID)
}
