package cmd

import (
	"context"
	"log"
	httpNet "net/http"
	"os"
	"os/signal"
	"syscall"

	"zahaam/internal/delivery/http"
	"zahaam/internal/repository"
	"zahaam/internal/service"
	"zahaam/pkg/logger"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Run the zahaam API server and job scheduler",
	Run:   Start,
}

func Start(cmd *cobra.Command, args []string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	appDep, err := NewAppDependency(ctx)
	if err != nil {
		log.Fatalf("Failed to create app dependency: %v", err)
	}

	repo := repository.NewRepository(appDep.cfg, appDep.db.DB, appDep.cache, appDep.log)
	services := service.NewService(
		appDep.cfg,
		appDep.log,
		appDep.validator,
		repo,
		appDep.notifier,
	)
	httpHandler := http.NewHttpAPIHandler(appDep.echo, appDep.validator, services, appDep.log)

	apiServer := NewHTTPServer(ctx, appDep, httpHandler)
	go func() {
		if err := apiServer.Start(); err != nil && err != httpNet.ErrServerClosed {
			log.Fatalf("Failed to start HTTP server: %v", err)
		}
	}()

	ticker, err := startScheduler(ctx, appDep, services.SchedulerService)
	if err != nil {
		log.Fatalf("Failed to start scheduler: %v", err)
	}

	<-ctx.Done()
	appDep.log.Info("Shutting down gracefully...")

	if ticker != nil {
		<-ticker.Stop().Done()
	}
	services.SchedulerService.Wait()

	if err := apiServer.Stop(); err != nil {
		appDep.log.Error("Failed to stop HTTP server", logger.ErrorField(err))
	}

	if err := appDep.Close(); err != nil {
		log.Fatalf("Failed to close app dependency: %v", err)
	}
}

// startScheduler polls for due job schedules on the configured tick. It
// returns nil when the scheduler is disabled.
func startScheduler(ctx context.Context, appDep *AppDependency, scheduler service.SchedulerService) (*cron.Cron, error) {
	if !appDep.cfg.Scheduler.Enabled {
		appDep.log.Info("Job scheduler disabled")
		return nil, nil
	}

	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	_, err := c.AddFunc(appDep.cfg.Scheduler.TickSpec, func() {
		if err := scheduler.Execute(ctx); err != nil {
			appDep.log.ErrorContext(ctx, "Scheduler tick failed", logger.ErrorField(err))
		}
	})
	if err != nil {
		return nil, err
	}

	c.Start()
	appDep.log.Info("Job scheduler started", logger.StringField("tick", appDep.cfg.Scheduler.TickSpec))
	return c, nil
}
