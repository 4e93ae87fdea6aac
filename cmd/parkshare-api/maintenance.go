// README: One-shot maintenance commands (migrate, reindex, misuse scans).
package main

import (
	"context"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"parkshare/internal/infra"
	"parkshare/internal/modules/location"
	"parkshare/internal/types"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending Postgres schema migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		pool, err := infra.NewDB(ctx, cfg.DB.DSN, cfg.DB.MaxConns)
		if err != nil {
			return err
		}
		defer pool.Close()

		ran, err := infra.Migrate(ctx, pool)
		if err != nil {
			return eris.Wrap(err, "migrate")
		}
		zap.L().Info("migrations up to date", zap.Strings("applied", ran))
		return nil
	},
}

var reindexCmd = &cobra.Command{
	Use:   "reindex",
	Short: "Rebuild the Redis GEO index from active listings",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx, cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		_, err = rebuildIndex(ctx, a)
		return err
	},
}

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Run misuse detection scans",
}

var scanInactiveCmd = &cobra.Command{
	Use:   "inactive",
	Short: "Report active listings without recent bookings",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx, cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		res, err := a.misuse.CheckInactiveListings(ctx)
		if err != nil {
			return eris.Wrap(err, "scan inactive")
		}
		zap.L().Info("inactive listing scan finished",
			zap.Int("flagged", res.FlaggedCount),
			zap.Strings("listings", res.Listings),
		)
		return nil
	},
}

var scanOverstaysCmd = &cobra.Command{
	Use:   "overstays <driver-id>",
	Short: "Evaluate a driver's overstay history and report repeat offenders",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx, cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		check, err := a.misuse.EvaluateOverstays(ctx, types.ID(args[0]))
		if err != nil {
			return eris.Wrap(err, "scan overstays")
		}
		zap.L().Info("overstay check finished",
			zap.String("driver_id", args[0]),
			zap.Int("overstays", check.OverstayCount),
			zap.Bool("flagged", check.Flagged),
			zap.String("severity", string(check.Severity)),
		)
		return nil
	},
}

func rebuildIndex(ctx context.Context, a *app) (int, error) {
	active, err := a.listings.ListActive(ctx)
	if err != nil {
		return 0, err
	}
	entries := make([]location.Entry, 0, len(active))
	for _, l := range active {
		entries = append(entries, location.Entry{ListingID: l.ID, Position: l.Position})
	}
	n, err := a.location.Rebuild(ctx, entries)
	if err != nil {
		return 0, eris.Wrap(err, "rebuild geo index")
	}
	zap.L().Info("geo index rebuilt", zap.Int("listings", n), zap.Int("skipped", len(active)-n))
	return n, nil
}

func init() {
	scanCmd.AddCommand(scanInactiveCmd, scanOverstaysCmd)
	rootCmd.AddCommand(migrateCmd, reindexCmd, scanCmd)
}
