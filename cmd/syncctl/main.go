package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"coupon-sync/internal/domain/syncrun"
	"coupon-sync/internal/infra/db"
	"coupon-sync/internal/infra/httpx"
	"coupon-sync/internal/infra/provider"
	"coupon-sync/internal/infra/repository"
	"coupon-sync/internal/pkg/clock"
	"coupon-sync/internal/pkg/config"
	"coupon-sync/internal/pkg/prompts"
	"coupon-sync/internal/usecase"

	"github.com/spf13/cobra"
)

// syncctl drives the pipeline from cron or an operator shell, sharing the
// durable run gate with the API server.

type app struct {
	cfg     config.Config
	logger  *slog.Logger
	cleanup func()

	sync       *usecase.SyncUseCase
	controller *usecase.RunStateController
	status     *usecase.StatusUseCase
	dedup      *usecase.DedupUseCase
	expiration *usecase.ExpirationUseCase
	providers  *usecase.ProviderUseCase
}

func newApp() (*app, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))

	pool, cleanup, err := db.Connect(cfg.DB)
	if err != nil {
		return nil, err
	}

	clk := clock.NewRealClock()
	brands := repository.NewBrandRepository(pool)
	coupons := repository.NewCouponRepository(pool)
	runState := repository.NewRunStateRepository(pool)
	notifications := repository.NewNotificationRepository(pool, cfg.Sync.NotificationCap)

	client := httpx.NewClient(cfg.Sync.APITimeout, cfg.Sync.ProviderRPS, logger)
	cache := httpx.NewCache(clk)
	networks := []usecase.AffiliateNetwork{
		provider.NewAwinClient(client, cache, cfg.Awin, logger),
		provider.NewTradeTrackerClient(client, cache, cfg.TradeTracker, logger),
	}
	generator := provider.NewOpenAIClient(client, cfg.OpenAI, logger)
	shortener := provider.NewYourlsClient(client, cfg.Yourls, logger)

	templates, err := prompts.Load(cfg.Sync.PromptFile)
	if err != nil {
		logger.Warn("failed to load prompt templates, using defaults", "error", err)
		templates = prompts.Defaults()
	}

	controller := usecase.NewRunStateController(runState, clk, logger)
	enricher := usecase.NewBrandEnricher(generator, brands, templates, logger)

	return &app{
		cfg:        cfg,
		logger:     logger,
		cleanup:    cleanup,
		sync:       usecase.NewSyncUseCase(controller, networks, brands, coupons, notifications, enricher, shortener, logger),
		controller: controller,
		status:     usecase.NewStatusUseCase(controller, clk, cfg.Sync.ScheduleHourUTC),
		dedup:      usecase.NewDedupUseCase(controller, coupons, logger),
		expiration: usecase.NewExpirationUseCase(controller, coupons, clk, logger),
		providers:  usecase.NewProviderUseCase(networks, generator, shortener),
	}, nil
}

func main() {
	root := &cobra.Command{
		Use:           "syncctl",
		Short:         "Drive the coupon sync pipeline",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newRunCmd(),
		newStopCmd(),
		newStatusCmd(),
		newPurgeExpiredCmd(),
		newPurgeDuplicatesCmd(),
		newTestProviderCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// withApp builds the app, runs fn, and always releases the pool.
func withApp(fn func(ctx context.Context, a *app) error) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.cleanup()
	return fn(context.Background(), a)
}

func newRunCmd() *cobra.Command {
	var manual bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Execute a full sync run, blocking until done",
		RunE: func(_ *cobra.Command, _ []string) error {
			return withApp(func(ctx context.Context, a *app) error {
				actor := syncrun.ActorScheduled
				if manual {
					actor = syncrun.ActorManual
				}

				result, err := a.sync.Run(ctx, actor)
				if err != nil {
					if actor == syncrun.ActorScheduled && errors.Is(err, usecase.ErrAlreadyCompletedToday) {
						fmt.Println("skipped: already completed today")
						return nil
					}
					return err
				}

				fmt.Printf("processed=%d failed=%d created=%d updated=%d stopped=%v\n",
					result.Stats.Processed, result.Stats.Failed,
					result.Stats.Created, result.Stats.Updated, result.Stopped)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&manual, "manual", false, "run with manual semantics instead of scheduled")
	return cmd
}

func newStopCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Request cooperative stop of the active run",
		RunE: func(_ *cobra.Command, _ []string) error {
			return withApp(func(ctx context.Context, a *app) error {
				if err := a.controller.RequestStop(ctx); err != nil {
					return err
				}
				fmt.Println("stop requested")
				return nil
			})
		},
	}
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the current run state",
		RunE: func(_ *cobra.Command, _ []string) error {
			return withApp(func(ctx context.Context, a *app) error {
				view, err := a.status.Get(ctx)
				if err != nil {
					return err
				}

				fmt.Printf("status: %s\n", view.Status)
				if view.RunID != nil {
					fmt.Printf("run: %s (%s), processed=%d failed=%d\n",
						*view.RunID, view.Actor, view.Processed, view.Failed)
				}
				if view.LastRunAt != nil {
					fmt.Printf("last run: %s\n", view.LastRunAt.Format(time.RFC3339))
				}
				if view.LastSuccessAt != nil {
					fmt.Printf("last success: %s\n", view.LastSuccessAt.Format(time.RFC3339))
				}
				fmt.Printf("next scheduled: %s\n", view.NextScheduledAt.Format(time.RFC3339))
				return nil
			})
		},
	}
}

func newPurgeExpiredCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "purge-expired",
		Short: "Delete coupons whose expiry has passed",
		RunE: func(_ *cobra.Command, _ []string) error {
			return withApp(func(ctx context.Context, a *app) error {
				removed, err := a.expiration.PurgeExpired(ctx)
				if err != nil {
					return err
				}
				fmt.Printf("removed %d expired coupons\n", removed)
				return nil
			})
		},
	}
}

func newPurgeDuplicatesCmd() *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "purge-duplicates",
		Short: "Remove duplicate coupons per brand and code",
		RunE: func(_ *cobra.Command, _ []string) error {
			return withApp(func(ctx context.Context, a *app) error {
				report, err := a.dedup.PurgeDuplicates(ctx, dryRun)
				if err != nil {
					return err
				}

				for _, g := range report.Groups {
					fmt.Printf("brand=%s code=%q keep=%s remove=%d\n",
						g.BrandID, g.NormalizedCode, g.CanonicalID, len(g.RemoveIDs))
				}
				if dryRun {
					fmt.Printf("dry run: %d groups\n", len(report.Groups))
				} else {
					fmt.Printf("removed %d duplicate coupons\n", report.Removed)
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "plan only, delete nothing")
	return cmd
}

func newTestProviderCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "test-provider <name>",
		Short: "Probe one provider with the configured credentials",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return withApp(func(ctx context.Context, a *app) error {
				ok, err := a.providers.Test(ctx, args[0])
				if err != nil {
					return fmt.Errorf("%w (available: %v)", err, a.providers.Names())
				}
				if !ok {
					return fmt.Errorf("provider %s unreachable", args[0])
				}
				fmt.Printf("provider %s ok\n", args[0])
				return nil
			})
		},
	}
}
