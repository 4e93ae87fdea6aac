// README: Driver booking handlers (create, list, complete, cancel).
package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"parkshare/internal/http/middleware"
	"parkshare/internal/modules/booking"
	"parkshare/internal/types"
)

type DriverBookings interface {
	Create(ctx context.Context, cmd booking.CreateCommand) (*booking.Booking, error)
	GetForDriver(ctx context.Context, id, driverID types.ID) (*booking.Booking, error)
	ListByDriver(ctx context.Context, driverID types.ID, status booking.Status) ([]booking.Booking, error)
	Complete(ctx context.Context, cmd booking.CompleteCommand) (*booking.Completion, error)
	Cancel(ctx context.Context, id, driverID types.ID) (*booking.Booking, error)
}

type BookingHandler struct {
	bookings DriverBookings
}

func NewBookingHandler(svc DriverBookings) *BookingHandler {
	return &BookingHandler{bookings: svc}
}

type createBookingReq struct {
	ListingID   string    `json:"listing_id"`
	StartTime   time.Time `json:"start_time"`
	BookedHours int       `json:"booked_hours"`
}

func (h *BookingHandler) Create(c *gin.Context) {
	var req createBookingReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	if !isValidID(req.ListingID) {
		writeError(c, http.StatusBadRequest, "invalid listing_id")
		return
	}
	b, err := h.bookings.Create(c.Request.Context(), booking.CreateCommand{
		ListingID:   types.ID(req.ListingID),
		DriverID:    types.ID(middleware.CallerUID(c)),
		StartTime:   req.StartTime,
		BookedHours: req.BookedHours,
	})
	if err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, b)
}

func (h *BookingHandler) ListMine(c *gin.Context) {
	list, err := h.bookings.ListByDriver(c.Request.Context(), types.ID(middleware.CallerUID(c)), booking.Status(c.Query("status")))
	if err != nil {
		writeDomainError(c, err)
		return
	}
	writeList(c, list)
}

func (h *BookingHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	b, err := h.bookings.GetForDriver(c.Request.Context(), id, types.ID(middleware.CallerUID(c)))
	if err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, b)
}

type completeBookingReq struct {
	ActualEndTime *time.Time `json:"actual_end_time"`
}

// Complete ends a stay. The body is optional; without actual_end_time the
// server clock is used.
func (h *BookingHandler) Complete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req completeBookingReq
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			writeError(c, http.StatusBadRequest, "invalid json")
			return
		}
	}
	done, err := h.bookings.Complete(c.Request.Context(), booking.CompleteCommand{
		BookingID: id,
		DriverID:  types.ID(middleware.CallerUID(c)),
		ActualEnd: req.ActualEndTime,
	})
	if err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, done)
}

func (h *BookingHandler) Cancel(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	b, err := h.bookings.Cancel(c.Request.Context(), id, types.ID(middleware.CallerUID(c)))
	if err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, b)
}
