// README: HTTP router registration.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"parkshare/internal/http/handlers"
	"parkshare/internal/http/middleware"
	"parkshare/internal/infra"
)

// RouterDeps carries the services behind each route group. Routes is
// optional and only enriches navigation responses.
type RouterDeps struct {
	Verifier infra.TokenVerifier
	Limiter  *middleware.RateLimiter
	Search   handlers.ParkingSearch
	Listings interface {
		handlers.ListingLookup
		handlers.OwnerListings
	}
	Bookings interface {
		handlers.DriverBookings
		handlers.OwnerBookings
	}
	Payments handlers.Payments
	Misuse   handlers.MisuseAdmin
	Routes   handlers.TravelEstimator
}

func NewRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(middleware.Recovery(), middleware.Logging())
	if deps.Limiter != nil {
		r.Use(deps.Limiter.Middleware())
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")

	parking := handlers.NewParkingHandler(deps.Search, deps.Listings, deps.Routes)
	pub := api.Group("/parking")
	pub.GET("/search", parking.Search)
	pub.GET("/nearby", parking.Nearby)
	pub.GET("/:id", parking.Get)
	pub.GET("/:id/navigation", parking.Navigation)

	auth := middleware.Auth(deps.Verifier)
	driverOnly := middleware.RequireRole(middleware.RoleDriver)

	bookings := handlers.NewBookingHandler(deps.Bookings)
	bg := api.Group("/bookings", auth, driverOnly)
	bg.POST("", bookings.Create)
	bg.GET("/driver", bookings.ListMine)
	bg.GET("/:id", bookings.Get)
	bg.PUT("/:id/complete", bookings.Complete)
	bg.PUT("/:id/cancel", bookings.Cancel)

	payments := handlers.NewPaymentHandler(deps.Payments)
	pg := api.Group("/payments", auth, driverOnly)
	pg.POST("/simulate", payments.Simulate)
	pg.GET("/booking/:id", payments.ByBooking)
	pg.GET("/driver", payments.Mine)

	owner := handlers.NewOwnerHandler(deps.Listings, deps.Bookings)
	og := api.Group("/owner", auth, middleware.RequireRole(middleware.RoleOwner))
	og.POST("/listings", owner.AddListing)
	og.GET("/listings", owner.ListListings)
	og.PUT("/listings/:id", owner.UpdateListing)
	og.DELETE("/listings/:id", owner.DeleteListing)
	og.GET("/bookings", owner.ListBookings)
	og.PUT("/bookings/:id/approve", owner.Approve)
	og.PUT("/bookings/:id/reject", owner.Reject)
	og.GET("/earnings", owner.Earnings)

	admin := handlers.NewAdminHandler(deps.Misuse)
	ag := api.Group("/admin", auth, middleware.RequireRole(middleware.RoleAdmin))
	ag.GET("/misuse-reports", admin.ListReports)
	ag.PUT("/misuse-reports/:id/review", admin.Review)
	ag.POST("/scans/inactive-listings", admin.ScanInactive)
	ag.POST("/listings/:id/flag", admin.FlagListing)

	return r
}
