package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/staynest/staynest/internal/authz"
	"github.com/staynest/staynest/internal/cache"
	"github.com/staynest/staynest/internal/config"
	"github.com/staynest/staynest/internal/domain/place"
	"github.com/staynest/staynest/internal/domain/user"
	"github.com/staynest/staynest/internal/http/middlewares"
)

// cacheKeyAllPlaces holds the marshaled public listing. Invalidated on any
// write so the listing is never more than one TTL behind.
const cacheKeyAllPlaces = "places:all"

type PlaceStore interface {
	Create(ctx context.Context, owner user.ID, req place.CreateRequest) (place.Place, error)
	GetByID(ctx context.Context, id string) (place.Place, error)
	List(ctx context.Context) ([]place.Place, error)
	ListByOwner(ctx context.Context, owner user.ID) ([]place.Place, error)
	Update(ctx context.Context, id string, req place.UpdateRequest) (place.Place, error)
}

type PlacesHandler struct {
	places PlaceStore
	cache  cache.Store
}

func NewPlacesHandler(places PlaceStore, c cache.Store) *PlacesHandler {
	return &PlacesHandler{
		places: places,
		cache:  c,
	}
}

func (h *PlacesHandler) Create(ctx *gin.Context) {
	ident, ok := middlewares.IdentityFromContext(ctx)

	if !ok {
		RespondUnauthorized(ctx, "Missing or invalid session")
		return
	}

	var req place.CreateRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	created, err := h.places.Create(cctx, ident.UserID, req)

	if err != nil {
		RespondInternal(ctx, "Could not create place")
		return
	}

	h.invalidateListing(cctx)

	ctx.JSON(http.StatusCreated, created)
}

func (h *PlacesHandler) Update(ctx *gin.Context) {
	ident, ok := middlewares.IdentityFromContext(ctx)

	if !ok {
		RespondUnauthorized(ctx, "Missing or invalid session")
		return
	}

	var req place.UpdateRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	// Existence is checked before ownership so an unknown id reads as 404
	// for owners and strangers alike.
	current, err := h.places.GetByID(cctx, req.ID)

	if err != nil {
		if errors.Is(err, place.ErrNotFound) {
			RespondNotFound(ctx, "not_found", "Place not found")
			return
		}

		RespondInternal(ctx, "Could not update place")
		return
	}

	if err := authz.CanMutatePlace(ident, current); err != nil {
		RespondForbidden(ctx, "You do not own this place")
		return
	}

	updated, err := h.places.Update(cctx, req.ID, req)

	if err != nil {
		if errors.Is(err, place.ErrNotFound) {
			RespondNotFound(ctx, "not_found", "Place not found")
			return
		}

		RespondInternal(ctx, "Could not update place")
		return
	}

	h.invalidateListing(cctx)

	ctx.JSON(http.StatusOK, updated)
}

func (h *PlacesHandler) Get(ctx *gin.Context) {
	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	p, err := h.places.GetByID(cctx, ctx.Param("id"))

	if err != nil {
		if errors.Is(err, place.ErrNotFound) {
			RespondNotFound(ctx, "not_found", "Place not found")
			return
		}

		RespondInternal(ctx, "Could not load place")
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, p)
}

func (h *PlacesHandler) List(ctx *gin.Context) {
	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	if h.cache != nil {
		if raw, ok := h.cache.Get(cctx, cacheKeyAllPlaces); ok {
			RespondRawJSONWithETag(ctx, http.StatusOK, raw)
			return
		}
	}

	all, err := h.places.List(cctx)

	if err != nil {
		RespondInternal(ctx, "Could not load places")
		return
	}

	raw, err := json.Marshal(all)

	if err != nil {
		RespondInternal(ctx, "Could not load places")
		return
	}

	if h.cache != nil {
		h.cache.Set(cctx, cacheKeyAllPlaces, raw)
	}

	RespondRawJSONWithETag(ctx, http.StatusOK, raw)
}

func (h *PlacesHandler) ListMine(ctx *gin.Context) {
	ident, ok := middlewares.IdentityFromContext(ctx)

	if !ok {
		RespondUnauthorized(ctx, "Missing or invalid session")
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	mine, err := h.places.ListByOwner(cctx, ident.UserID)

	if err != nil {
		RespondInternal(ctx, "Could not load places")
		return
	}

	ctx.JSON(http.StatusOK, mine)
}

func (h *PlacesHandler) invalidateListing(ctx context.Context) {
	if h.cache != nil {
		h.cache.Delete(ctx, cacheKeyAllPlaces)
	}
}
