package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"

	"github.com/gin-gonic/gin"

	"parkshare/internal/infra"
	"parkshare/internal/maps"
	"parkshare/internal/modules/booking"
	"parkshare/internal/modules/listing"
	"parkshare/internal/modules/misuse"
	"parkshare/internal/modules/payment"
	"parkshare/internal/modules/recommend"
	"parkshare/internal/types"
)

const (
	listingID = "6f1c2a7e-3b4d-4e5f-8a9b-0c1d2e3f4a5b"
	bookingID = "0a1b2c3d-4e5f-4a6b-8c7d-9e0f1a2b3c4d"
)

// stubTokenVerifier is a test double for infra.TokenVerifier.
type stubTokenVerifier struct {
	token *infra.FirebaseToken
	err   error
}

func (s *stubTokenVerifier) VerifyIDToken(_ context.Context, _ string) (*infra.FirebaseToken, error) {
	return s.token, s.err
}

func makeVerifier(uid, role string) *stubTokenVerifier {
	claims := map[string]interface{}{}
	if role != "" {
		claims["role"] = role
	}
	return &stubTokenVerifier{token: &infra.FirebaseToken{UID: uid, Claims: claims}}
}

func doRequest(r *gin.Engine, method, path string, body interface{}, authHeader string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode[T any](w *httptest.ResponseRecorder) T {
	var v T
	_ = json.Unmarshal(w.Body.Bytes(), &v)
	return v
}

type listEnvelope[T any] struct {
	Count int `json:"count"`
	Data  []T `json:"data"`
}

type fakeSearch struct {
	results     []recommend.ScoreResult
	err         error
	origin      types.Point
	constraints recommend.Constraints
	limit       int
}

func (f *fakeSearch) Search(_ context.Context, origin types.Point, c recommend.Constraints) ([]recommend.ScoreResult, error) {
	f.origin, f.constraints = origin, c
	return f.results, f.err
}

func (f *fakeSearch) Nearby(_ context.Context, origin types.Point, limit int) ([]recommend.ScoreResult, error) {
	f.origin, f.limit = origin, limit
	return f.results, f.err
}

type fakeListings struct {
	listing *listing.Listing
	err     error
	added   listing.AddCommand
	updated listing.UpdateCommand
}

func (f *fakeListings) Get(_ context.Context, _ types.ID) (*listing.Listing, error) {
	return f.listing, f.err
}

func (f *fakeListings) NavigationLink(_ context.Context, _ types.ID) (string, *listing.Listing, error) {
	if f.err != nil {
		return "", nil, f.err
	}
	return listing.DirectionsURL(f.listing.Position), f.listing, nil
}

func (f *fakeListings) Add(_ context.Context, cmd listing.AddCommand) (*listing.Listing, error) {
	f.added = cmd
	return f.listing, f.err
}

func (f *fakeListings) Update(_ context.Context, cmd listing.UpdateCommand) (*listing.Listing, error) {
	f.updated = cmd
	return f.listing, f.err
}

func (f *fakeListings) Deactivate(_ context.Context, _, _ types.ID) error {
	return f.err
}

func (f *fakeListings) ListByOwner(_ context.Context, _ types.ID) ([]listing.Listing, error) {
	if f.listing == nil {
		return nil, f.err
	}
	return []listing.Listing{*f.listing}, f.err
}

type fakeRoutes struct {
	est maps.Estimate
	err error
}

func (f *fakeRoutes) TravelEstimate(_ context.Context, _, _ types.Point) (maps.Estimate, error) {
	return f.est, f.err
}

type fakeBookings struct {
	booking    *booking.Booking
	completion *booking.Completion
	earnings   *booking.Earnings
	err        error
	created    booking.CreateCommand
	completed  booking.CompleteCommand
	callerID   types.ID
}

func (f *fakeBookings) Create(_ context.Context, cmd booking.CreateCommand) (*booking.Booking, error) {
	f.created = cmd
	return f.booking, f.err
}

func (f *fakeBookings) GetForDriver(_ context.Context, _, driverID types.ID) (*booking.Booking, error) {
	f.callerID = driverID
	return f.booking, f.err
}

func (f *fakeBookings) ListByDriver(_ context.Context, driverID types.ID, _ booking.Status) ([]booking.Booking, error) {
	f.callerID = driverID
	return nil, f.err
}

func (f *fakeBookings) Complete(_ context.Context, cmd booking.CompleteCommand) (*booking.Completion, error) {
	f.completed = cmd
	return f.completion, f.err
}

func (f *fakeBookings) Cancel(_ context.Context, _, driverID types.ID) (*booking.Booking, error) {
	f.callerID = driverID
	return f.booking, f.err
}

func (f *fakeBookings) ListByOwner(_ context.Context, ownerID types.ID, _ booking.Status) ([]booking.Booking, error) {
	f.callerID = ownerID
	if f.booking == nil {
		return nil, f.err
	}
	return []booking.Booking{*f.booking}, f.err
}

func (f *fakeBookings) Approve(_ context.Context, _, ownerID types.ID) (*booking.Booking, error) {
	f.callerID = ownerID
	return f.booking, f.err
}

func (f *fakeBookings) Reject(_ context.Context, _, ownerID types.ID) (*booking.Booking, error) {
	f.callerID = ownerID
	return f.booking, f.err
}

func (f *fakeBookings) Earnings(_ context.Context, ownerID types.ID) (*booking.Earnings, error) {
	f.callerID = ownerID
	return f.earnings, f.err
}

type fakePayments struct {
	payment  *payment.Payment
	err      error
	simulate payment.SimulateCommand
}

func (f *fakePayments) Simulate(_ context.Context, cmd payment.SimulateCommand) (*payment.Payment, error) {
	f.simulate = cmd
	return f.payment, f.err
}

func (f *fakePayments) ListByBooking(_ context.Context, _, _ types.ID) ([]payment.Payment, error) {
	if f.payment == nil {
		return nil, f.err
	}
	return []payment.Payment{*f.payment}, f.err
}

func (f *fakePayments) ListByDriver(_ context.Context, _ types.ID) ([]payment.DriverPayment, error) {
	return nil, f.err
}

type fakeMisuse struct {
	reports []misuse.Report
	report  *misuse.Report
	scan    misuse.InactiveScan
	err     error
	filter  misuse.Filter
	notes   string
	reason  string
}

func (f *fakeMisuse) ListReports(_ context.Context, fl misuse.Filter) ([]misuse.Report, error) {
	f.filter = fl
	return f.reports, f.err
}

func (f *fakeMisuse) MarkReviewed(_ context.Context, _ types.ID, notes string) error {
	f.notes = notes
	return f.err
}

func (f *fakeMisuse) CheckInactiveListings(_ context.Context) (misuse.InactiveScan, error) {
	return f.scan, f.err
}

func (f *fakeMisuse) FlagListing(_ context.Context, _ types.ID, reason string) (*misuse.Report, error) {
	f.reason = reason
	return f.report, f.err
}
