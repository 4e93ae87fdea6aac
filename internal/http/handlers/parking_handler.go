// README: Public parking handlers (search, nearby, details, navigation).
package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"parkshare/internal/maps"
	"parkshare/internal/modules/listing"
	"parkshare/internal/modules/recommend"
	"parkshare/internal/types"
)

type ParkingSearch interface {
	Search(ctx context.Context, origin types.Point, c recommend.Constraints) ([]recommend.ScoreResult, error)
	Nearby(ctx context.Context, origin types.Point, limit int) ([]recommend.ScoreResult, error)
}

type ListingLookup interface {
	Get(ctx context.Context, id types.ID) (*listing.Listing, error)
	NavigationLink(ctx context.Context, id types.ID) (string, *listing.Listing, error)
}

// TravelEstimator is optional; navigation answers without an estimate when nil.
type TravelEstimator interface {
	TravelEstimate(ctx context.Context, origin, destination types.Point) (maps.Estimate, error)
}

type ParkingHandler struct {
	search   ParkingSearch
	listings ListingLookup
	routes   TravelEstimator
}

func NewParkingHandler(search ParkingSearch, listings ListingLookup, routes TravelEstimator) *ParkingHandler {
	return &ParkingHandler{search: search, listings: listings, routes: routes}
}

// Search answers GET /api/parking/search?lat=&lng=&radius=&max_price=&min_slots=&owner_type=
// with optional w_distance, w_price and w_availability weights.
func (h *ParkingHandler) Search(c *gin.Context) {
	origin, err := queryPoint(c, "lat", "lng")
	if err != nil {
		writeError(c, http.StatusBadRequest, err.Error())
		return
	}
	constraints, err := searchConstraints(c)
	if err != nil {
		writeError(c, http.StatusBadRequest, err.Error())
		return
	}
	results, err := h.search.Search(c.Request.Context(), origin, constraints)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	writeList(c, results)
}

func (h *ParkingHandler) Nearby(c *gin.Context) {
	origin, err := queryPoint(c, "lat", "lng")
	if err != nil {
		writeError(c, http.StatusBadRequest, err.Error())
		return
	}
	limit, err := queryInt(c, "limit")
	if err != nil {
		writeError(c, http.StatusBadRequest, err.Error())
		return
	}
	n := 0
	if limit != nil {
		if *limit <= 0 {
			writeError(c, http.StatusBadRequest, "limit must be positive")
			return
		}
		n = *limit
	}
	results, err := h.search.Nearby(c.Request.Context(), origin, n)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	writeList(c, results)
}

func (h *ParkingHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	l, err := h.listings.Get(c.Request.Context(), id)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, l)
}

type navigationResp struct {
	URL      string         `json:"navigation_url"`
	Title    string         `json:"title"`
	Address  string         `json:"address"`
	Position types.Point    `json:"position"`
	Estimate *maps.Estimate `json:"estimate,omitempty"`
}

// Navigation returns the directions link. When the caller passes its own
// lat/lng and a route client is configured, a driving estimate is attached.
func (h *ParkingHandler) Navigation(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	link, l, err := h.listings.NavigationLink(c.Request.Context(), id)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	resp := navigationResp{URL: link, Title: l.Title, Address: l.Address, Position: l.Position}

	if h.routes != nil {
		if origin, err := queryPoint(c, "lat", "lng"); err == nil {
			est, err := h.routes.TravelEstimate(c.Request.Context(), origin, l.Position)
			if err != nil {
				zap.L().Warn("travel estimate failed", zap.String("listing_id", string(id)), zap.Error(err))
			} else {
				resp.Estimate = &est
			}
		}
	}
	writeJSON(c, http.StatusOK, resp)
}

func searchConstraints(c *gin.Context) (recommend.Constraints, error) {
	var out recommend.Constraints
	var err error
	if out.RadiusKm, err = queryFloat(c, "radius"); err != nil {
		return out, err
	}
	if out.MaxPricePerHour, err = queryFloat(c, "max_price"); err != nil {
		return out, err
	}
	if out.MinAvailableSlots, err = queryInt(c, "min_slots"); err != nil {
		return out, err
	}
	if raw := c.Query("owner_type"); raw != "" {
		ot := listing.OwnerType(raw)
		if !ot.Valid() {
			return out, errors.New("unknown owner_type " + raw)
		}
		out.OwnerType = &ot
	}

	wd, err := queryFloat(c, "w_distance")
	if err != nil {
		return out, err
	}
	wp, err := queryFloat(c, "w_price")
	if err != nil {
		return out, err
	}
	wa, err := queryFloat(c, "w_availability")
	if err != nil {
		return out, err
	}
	switch {
	case wd == nil && wp == nil && wa == nil:
	case wd != nil && wp != nil && wa != nil:
		out.Weights = &recommend.Weights{Distance: *wd, Price: *wp, Availability: *wa}
	default:
		return out, errors.New("w_distance, w_price and w_availability must be given together")
	}
	return out, nil
}
