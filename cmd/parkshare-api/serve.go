package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	apihttp "parkshare/internal/http"
	"parkshare/internal/http/handlers"
	"parkshare/internal/http/middleware"
	"parkshare/internal/infra"
)

var (
	serveMigrate bool
	serveReindex bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API and the background misuse scanner",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		verifier, err := infra.NewFirebaseVerifier(ctx, cfg.Firebase.ProjectID, cfg.Firebase.CredentialsFile)
		if err != nil {
			return err
		}

		a, err := newApp(ctx, cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		if serveMigrate {
			if _, err := infra.Migrate(ctx, a.pool); err != nil {
				return err
			}
		}
		if serveReindex {
			if _, err := rebuildIndex(ctx, a); err != nil {
				// Search falls back to a table scan while the index is cold.
				zap.L().Warn("startup reindex failed", zap.Error(err))
			}
		}

		var routes handlers.TravelEstimator
		if a.routes != nil {
			routes = a.routes
		}
		server := apihttp.NewServer(cfg.HTTP.Addr, apihttp.RouterDeps{
			Verifier: verifier,
			Limiter:  middleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst),
			Search:   a.search,
			Listings: a.listings,
			Bookings: a.bookings,
			Payments: a.payments,
			Misuse:   a.misuse,
			Routes:   routes,
		})

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			return server.Run(gctx)
		})
		g.Go(func() error {
			a.misuse.RunScanner(gctx, cfg.Misuse.ScanInterval)
			return nil
		})
		if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		zap.L().Info("parkshare api stopped")
		return nil
	},
}

func init() {
	serveCmd.Flags().BoolVar(&serveMigrate, "migrate", false, "apply pending schema migrations before serving")
	serveCmd.Flags().BoolVar(&serveReindex, "reindex", true, "rebuild the listing GEO index from Postgres on startup")
	rootCmd.AddCommand(serveCmd)
}
