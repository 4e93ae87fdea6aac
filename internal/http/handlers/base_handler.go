// README: Base handler utilities (JSON helpers, query parsing, error mapping).
package handlers

import (
	"errors"
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"parkshare/internal/modules/billing"
	"parkshare/internal/modules/booking"
	"parkshare/internal/modules/listing"
	"parkshare/internal/modules/location"
	"parkshare/internal/modules/misuse"
	"parkshare/internal/modules/payment"
	"parkshare/internal/modules/recommend"
	"parkshare/internal/types"
)

type errorResponse struct {
	Error string `json:"error"`
}

// listResponse mirrors the {count, data} envelope the web client expects.
type listResponse struct {
	Count int `json:"count"`
	Data  any `json:"data"`
}

// isValidID ensures path IDs are UUIDs (matches the ID generator).
func isValidID(v string) bool {
	return uuid.Validate(v) == nil
}

func writeJSON(c *gin.Context, status int, v any) {
	c.JSON(status, v)
}

func writeList[T any](c *gin.Context, items []T) {
	if items == nil {
		items = []T{}
	}
	writeJSON(c, http.StatusOK, listResponse{Count: len(items), Data: items})
}

func writeError(c *gin.Context, status int, msg string) {
	writeJSON(c, status, errorResponse{Error: msg})
}

// pathID reads and validates the :id path parameter, answering 400 on failure.
func pathID(c *gin.Context) (types.ID, bool) {
	id := c.Param("id")
	if !isValidID(id) {
		writeError(c, http.StatusBadRequest, "invalid id")
		return "", false
	}
	return types.ID(id), true
}

// queryFloat parses an optional float query parameter. A present but
// unparsable or non-finite value is an error.
func queryFloat(c *gin.Context, key string) (*float64, error) {
	raw, ok := c.GetQuery(key)
	if !ok || raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, errors.New(key + " must be a number")
	}
	return &v, nil
}

func queryInt(c *gin.Context, key string) (*int, error) {
	raw, ok := c.GetQuery(key)
	if !ok || raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, errors.New(key + " must be an integer")
	}
	return &v, nil
}

// queryPoint reads a required lat/lng pair.
func queryPoint(c *gin.Context, latKey, lngKey string) (types.Point, error) {
	lat, err := queryFloat(c, latKey)
	if err != nil {
		return types.Point{}, err
	}
	lng, err := queryFloat(c, lngKey)
	if err != nil {
		return types.Point{}, err
	}
	if lat == nil || lng == nil {
		return types.Point{}, errors.New("latitude and longitude are required")
	}
	return types.Point{Lat: *lat, Lng: *lng}, nil
}

// writeDomainError maps module sentinel errors onto HTTP status codes.
func writeDomainError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, listing.ErrBadRequest),
		errors.Is(err, booking.ErrBadRequest),
		errors.Is(err, booking.ErrNoSlots),
		errors.Is(err, payment.ErrBadRequest),
		errors.Is(err, payment.ErrNotPayable),
		errors.Is(err, payment.ErrAlreadyPaid),
		errors.Is(err, misuse.ErrBadRequest),
		errors.Is(err, recommend.ErrInvalidInput),
		errors.Is(err, location.ErrInvalidInput),
		errors.Is(err, billing.ErrInvalidInput),
		errors.Is(err, billing.ErrDivisionByZero):
		writeError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, listing.ErrForbidden),
		errors.Is(err, booking.ErrForbidden):
		writeError(c, http.StatusForbidden, err.Error())
	case errors.Is(err, listing.ErrNotFound),
		errors.Is(err, booking.ErrNotFound),
		errors.Is(err, misuse.ErrNotFound):
		writeError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, booking.ErrInvalidState),
		errors.Is(err, booking.ErrConflict):
		writeError(c, http.StatusConflict, err.Error())
	default:
		zap.L().Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		_ = c.Error(err)
		writeError(c, http.StatusInternalServerError, "internal error")
	}
}
