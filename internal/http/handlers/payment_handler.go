// README: Simulated payment handlers for drivers.
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"parkshare/internal/http/middleware"
	"parkshare/internal/modules/payment"
	"parkshare/internal/types"
)

type Payments interface {
	Simulate(ctx context.Context, cmd payment.SimulateCommand) (*payment.Payment, error)
	ListByBooking(ctx context.Context, bookingID, driverID types.ID) ([]payment.Payment, error)
	ListByDriver(ctx context.Context, driverID types.ID) ([]payment.DriverPayment, error)
}

type PaymentHandler struct {
	payments Payments
}

func NewPaymentHandler(svc Payments) *PaymentHandler {
	return &PaymentHandler{payments: svc}
}

type simulateReq struct {
	BookingID     string `json:"booking_id"`
	PaymentMethod string `json:"payment_method"`
}

// Simulate answers 200 for both outcomes; a failed charge is reported in
// the payment's status so the client can offer a retry.
func (h *PaymentHandler) Simulate(c *gin.Context) {
	var req simulateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	if !isValidID(req.BookingID) {
		writeError(c, http.StatusBadRequest, "invalid booking_id")
		return
	}
	p, err := h.payments.Simulate(c.Request.Context(), payment.SimulateCommand{
		BookingID: types.ID(req.BookingID),
		DriverID:  types.ID(middleware.CallerUID(c)),
		Method:    req.PaymentMethod,
	})
	if err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, p)
}

func (h *PaymentHandler) ByBooking(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	list, err := h.payments.ListByBooking(c.Request.Context(), id, types.ID(middleware.CallerUID(c)))
	if err != nil {
		writeDomainError(c, err)
		return
	}
	writeList(c, list)
}

func (h *PaymentHandler) Mine(c *gin.Context) {
	list, err := h.payments.ListByDriver(c.Request.Context(), types.ID(middleware.CallerUID(c)))
	if err != nil {
		writeDomainError(c, err)
		return
	}
	writeList(c, list)
}
