// README: Owner handlers for listings, booking approvals and earnings.
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"parkshare/internal/http/middleware"
	"parkshare/internal/modules/booking"
	"parkshare/internal/modules/listing"
	"parkshare/internal/types"
)

type OwnerListings interface {
	Add(ctx context.Context, cmd listing.AddCommand) (*listing.Listing, error)
	Update(ctx context.Context, cmd listing.UpdateCommand) (*listing.Listing, error)
	Deactivate(ctx context.Context, id, ownerID types.ID) error
	ListByOwner(ctx context.Context, ownerID types.ID) ([]listing.Listing, error)
}

type OwnerBookings interface {
	ListByOwner(ctx context.Context, ownerID types.ID, status booking.Status) ([]booking.Booking, error)
	Approve(ctx context.Context, id, ownerID types.ID) (*booking.Booking, error)
	Reject(ctx context.Context, id, ownerID types.ID) (*booking.Booking, error)
	Earnings(ctx context.Context, ownerID types.ID) (*booking.Earnings, error)
}

type OwnerHandler struct {
	listings OwnerListings
	bookings OwnerBookings
}

func NewOwnerHandler(listings OwnerListings, bookings OwnerBookings) *OwnerHandler {
	return &OwnerHandler{listings: listings, bookings: bookings}
}

type addListingReq struct {
	Title          string  `json:"title"`
	Description    string  `json:"description"`
	Address        string  `json:"address"`
	Latitude       float64 `json:"latitude"`
	Longitude      float64 `json:"longitude"`
	PricePerHour   float64 `json:"price_per_hour"`
	TotalSlots     int     `json:"total_slots"`
	OwnerType      string  `json:"owner_type"`
	BookingMode    string  `json:"booking_mode"`
	AvailableFrom  string  `json:"available_hours_start"`
	AvailableUntil string  `json:"available_hours_end"`
}

func (h *OwnerHandler) AddListing(c *gin.Context) {
	var req addListingReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	l, err := h.listings.Add(c.Request.Context(), listing.AddCommand{
		OwnerID:        types.ID(middleware.CallerUID(c)),
		Title:          req.Title,
		Description:    req.Description,
		Address:        req.Address,
		Position:       types.Point{Lat: req.Latitude, Lng: req.Longitude},
		PricePerHour:   req.PricePerHour,
		TotalSlots:     req.TotalSlots,
		OwnerType:      listing.OwnerType(req.OwnerType),
		BookingMode:    listing.BookingMode(req.BookingMode),
		AvailableFrom:  req.AvailableFrom,
		AvailableUntil: req.AvailableUntil,
	})
	if err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, l)
}

func (h *OwnerHandler) ListListings(c *gin.Context) {
	list, err := h.listings.ListByOwner(c.Request.Context(), types.ID(middleware.CallerUID(c)))
	if err != nil {
		writeDomainError(c, err)
		return
	}
	writeList(c, list)
}

type updateListingReq struct {
	Title          *string  `json:"title"`
	Description    *string  `json:"description"`
	PricePerHour   *float64 `json:"price_per_hour"`
	TotalSlots     *int     `json:"total_slots"`
	OwnerType      *string  `json:"owner_type"`
	BookingMode    *string  `json:"booking_mode"`
	AvailableFrom  *string  `json:"available_hours_start"`
	AvailableUntil *string  `json:"available_hours_end"`
	IsActive       *bool    `json:"is_active"`
}

func (h *OwnerHandler) UpdateListing(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req updateListingReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	cmd := listing.UpdateCommand{
		ListingID:      id,
		OwnerID:        types.ID(middleware.CallerUID(c)),
		Title:          req.Title,
		Description:    req.Description,
		PricePerHour:   req.PricePerHour,
		TotalSlots:     req.TotalSlots,
		AvailableFrom:  req.AvailableFrom,
		AvailableUntil: req.AvailableUntil,
		IsActive:       req.IsActive,
	}
	if req.OwnerType != nil {
		ot := listing.OwnerType(*req.OwnerType)
		cmd.OwnerType = &ot
	}
	if req.BookingMode != nil {
		bm := listing.BookingMode(*req.BookingMode)
		cmd.BookingMode = &bm
	}
	l, err := h.listings.Update(c.Request.Context(), cmd)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, l)
}

func (h *OwnerHandler) DeleteListing(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.listings.Deactivate(c.Request.Context(), id, types.ID(middleware.CallerUID(c))); err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"id": id, "is_active": false})
}

func (h *OwnerHandler) ListBookings(c *gin.Context) {
	list, err := h.bookings.ListByOwner(c.Request.Context(), types.ID(middleware.CallerUID(c)), booking.Status(c.Query("status")))
	if err != nil {
		writeDomainError(c, err)
		return
	}
	writeList(c, list)
}

func (h *OwnerHandler) Approve(c *gin.Context) {
	h.decide(c, h.bookings.Approve)
}

func (h *OwnerHandler) Reject(c *gin.Context) {
	h.decide(c, h.bookings.Reject)
}

func (h *OwnerHandler) decide(c *gin.Context, fn func(ctx context.Context, id, ownerID types.ID) (*booking.Booking, error)) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	b, err := fn(c.Request.Context(), id, types.ID(middleware.CallerUID(c)))
	if err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, b)
}

func (h *OwnerHandler) Earnings(c *gin.Context) {
	e, err := h.bookings.Earnings(c.Request.Context(), types.ID(middleware.CallerUID(c)))
	if err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, e)
}
