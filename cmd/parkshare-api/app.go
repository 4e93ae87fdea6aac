// README: Service wiring shared by the serve and maintenance commands.
package main

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"parkshare/internal/config"
	"parkshare/internal/infra"
	appmaps "parkshare/internal/maps"
	"parkshare/internal/modules/billing"
	"parkshare/internal/modules/booking"
	"parkshare/internal/modules/listing"
	"parkshare/internal/modules/location"
	"parkshare/internal/modules/misuse"
	"parkshare/internal/modules/payment"
	"parkshare/internal/modules/recommend"
)

type app struct {
	pool  *pgxpool.Pool
	redis *redis.Client

	location *location.Service
	listings *listing.Service
	search   *recommend.Service
	bookings *booking.Service
	payments *payment.Service
	misuse   *misuse.Service
	routes   *appmaps.RouteService
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	pool, err := infra.NewDB(ctx, cfg.DB.DSN, cfg.DB.MaxConns)
	if err != nil {
		return nil, err
	}
	rdb := infra.NewRedis(cfg.Redis.Addr)
	a := &app{pool: pool, redis: rdb}

	a.location = location.NewService(location.NewStore(rdb, cfg.Redis.GeoKey))
	listingStore := listing.NewStore(pool)

	var listingOpts []listing.Option
	if cfg.Maps.APIKey != "" {
		client, err := appmaps.NewClient(cfg.Maps.APIKey)
		if err != nil {
			a.Close()
			return nil, err
		}
		listingOpts = append(listingOpts, listing.WithGeocoder(appmaps.NewGeocodeService(client, cfg.Maps.Region)))
		a.routes = appmaps.NewRouteService(client)
	} else {
		zap.L().Info("maps api key not set; geocoding and travel estimates disabled")
	}

	// Misuse takedowns go through a listing service without the screener so
	// the two services do not depend on each other.
	a.misuse = misuse.NewService(misuse.NewStore(pool), listing.NewService(listingStore, a.location), cfg.Misuse)
	listingOpts = append(listingOpts, listing.WithScreener(a.misuse))
	a.listings = listing.NewService(listingStore, a.location, listingOpts...)

	a.search = recommend.NewService(a.listings, a.location, cfg.Search)
	a.bookings = booking.NewService(
		booking.NewStore(pool),
		a.listings,
		billing.NewCalculator(cfg.Billing.OverstayMultiplier),
		booking.WithOverstayWatcher(a.misuse),
	)
	a.payments = payment.NewService(payment.NewStore(pool), a.bookings, payment.RandomDecider(cfg.Payment.SuccessRate))
	return a, nil
}

func (a *app) Close() {
	if err := a.redis.Close(); err != nil {
		zap.L().Warn("close redis", zap.Error(err))
	}
	a.pool.Close()
}
