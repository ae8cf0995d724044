package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/staynest/staynest/internal/authz"
	"github.com/staynest/staynest/internal/config"
	"github.com/staynest/staynest/internal/domain/booking"
	"github.com/staynest/staynest/internal/domain/place"
	"github.com/staynest/staynest/internal/domain/user"
	"github.com/staynest/staynest/internal/http/middlewares"
)

type BookingStore interface {
	Create(ctx context.Context, b booking.Booking) (booking.Booking, error)
	ListByUser(ctx context.Context, u user.ID) ([]booking.WithPlace, error)
}

type BookingsHandler struct {
	bookings BookingStore
}

func NewBookingsHandler(bookings BookingStore) *BookingsHandler {
	return &BookingsHandler{bookings: bookings}
}

func (h *BookingsHandler) Create(ctx *gin.Context) {
	ident, ok := middlewares.IdentityFromContext(ctx)

	if !ok {
		RespondUnauthorized(ctx, "Missing or invalid session")
		return
	}

	var req booking.CreateRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	// The booking user comes from the session, never from the payload.
	created, err := h.bookings.Create(cctx, authz.StampBooking(ident, req))

	if err != nil {
		if errors.Is(err, place.ErrNotFound) {
			RespondNotFound(ctx, "not_found", "Place not found")
			return
		}

		RespondInternal(ctx, "Could not create booking")
		return
	}

	ctx.JSON(http.StatusOK, created)
}

func (h *BookingsHandler) List(ctx *gin.Context) {
	ident, ok := middlewares.IdentityFromContext(ctx)

	if !ok {
		RespondUnauthorized(ctx, "Missing or invalid session")
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	mine, err := h.bookings.ListByUser(cctx, ident.UserID)

	if err != nil {
		RespondInternal(ctx, "Could not load bookings")
		return
	}

	ctx.JSON(http.StatusOK, mine)
}
