// README: Admin handlers for misuse reports, scans and listing takedowns.
package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"parkshare/internal/modules/misuse"
	"parkshare/internal/types"
)

type MisuseAdmin interface {
	ListReports(ctx context.Context, f misuse.Filter) ([]misuse.Report, error)
	MarkReviewed(ctx context.Context, id types.ID, notes string) error
	CheckInactiveListings(ctx context.Context) (misuse.InactiveScan, error)
	FlagListing(ctx context.Context, listingID types.ID, reason string) (*misuse.Report, error)
}

type AdminHandler struct {
	misuse MisuseAdmin
}

func NewAdminHandler(svc MisuseAdmin) *AdminHandler {
	return &AdminHandler{misuse: svc}
}

// ListReports answers GET /api/admin/misuse-reports?type=&severity=&reviewed=&limit=
func (h *AdminHandler) ListReports(c *gin.Context) {
	f := misuse.Filter{
		Type:     misuse.ReportType(c.Query("type")),
		Severity: misuse.Severity(c.Query("severity")),
	}
	if raw := c.Query("reviewed"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			writeError(c, http.StatusBadRequest, "reviewed must be true or false")
			return
		}
		f.Reviewed = &v
	}
	limit, err := queryInt(c, "limit")
	if err != nil {
		writeError(c, http.StatusBadRequest, err.Error())
		return
	}
	if limit != nil {
		f.Limit = *limit
	}

	reports, err := h.misuse.ListReports(c.Request.Context(), f)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	writeList(c, reports)
}

type reviewReq struct {
	Notes string `json:"notes"`
}

func (h *AdminHandler) Review(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req reviewReq
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			writeError(c, http.StatusBadRequest, "invalid json")
			return
		}
	}
	if err := h.misuse.MarkReviewed(c.Request.Context(), id, req.Notes); err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"id": id, "admin_reviewed": true})
}

func (h *AdminHandler) ScanInactive(c *gin.Context) {
	res, err := h.misuse.CheckInactiveListings(c.Request.Context())
	if err != nil {
		writeDomainError(c, err)
		return
	}
	if res.Listings == nil {
		res.Listings = []string{}
	}
	writeJSON(c, http.StatusOK, res)
}

type flagReq struct {
	Reason string `json:"reason"`
}

func (h *AdminHandler) FlagListing(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req flagReq
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			writeError(c, http.StatusBadRequest, "invalid json")
			return
		}
	}
	r, err := h.misuse.FlagListing(c.Request.Context(), id, req.Reason)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, r)
}
