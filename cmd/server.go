package cmd

import (
	"context"
	"errors"
	"log"
	httpNet "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mediastat/internal/delivery/http"
	"mediastat/internal/delivery/websocket"
	"mediastat/internal/repository"
	"mediastat/internal/service"
	"mediastat/pkg/database"
	"mediastat/pkg/utils"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const defaultStopTimeout = 30 * time.Second

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Run mediastat",
	Run:   Start,
}

func Start(cmd *cobra.Command, args []string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	appDep, err := NewAppDependency(ctx)
	if err != nil {
		log.Fatalf("Failed to create app dependency: %v", err)
	}
	defer func() {
		if err := appDep.Close(); err != nil {
			log.Printf("Failed to close app dependency: %v", err)
		}
	}()

	if appDep.db.Driver == database.DriverSQLite {
		if err := repository.AutoMigrate(appDep.db.DB); err != nil {
			log.Fatalf("Failed to migrate sqlite schema: %v", err)
		}
	}

	repo := repository.NewRepository(appDep.cfg, appDep.cache, appDep.db.DB, appDep.log)

	// rows left Running belong to a process that is gone
	aborted, err := repo.TaskResultRepo.AbortRunning(ctx, utils.TimeNowUTC())
	if err != nil {
		log.Fatalf("Failed to abort stale task results: %v", err)
	}
	if aborted > 0 {
		appDep.log.Warn("Marked stale task results as aborted", zap.Int64("count", aborted))
	}

	hub := websocket.NewHub(appDep.log, appDep.codec, appDep.metrics, 0)
	services, err := service.NewService(
		appDep.cfg,
		appDep.log,
		repo,
		hub,
		appDep.locker,
		appDep.metrics,
		appDep.codec,
	)
	if err != nil {
		log.Fatalf("Failed to create services: %v", err)
	}

	httpHandler := http.NewHttpAPIHandler(appDep.echo, appDep.validator, appDep.log, services, hub, appDep.registry)
	apiServer := NewHTTPServer(appDep, httpHandler)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return hub.Run(gctx)
	})
	g.Go(func() error {
		if err := services.SchedulerService.Start(gctx); err != nil {
			return err
		}
		<-gctx.Done()

		timeout := appDep.cfg.Scheduler.StopTimeout
		if timeout <= 0 {
			timeout = defaultStopTimeout
		}
		stopCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return services.SchedulerService.Stop(stopCtx)
	})
	g.Go(func() error {
		if err := apiServer.Start(); err != nil && !errors.Is(err, httpNet.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		return apiServer.Stop()
	})

	if err := g.Wait(); err != nil {
		appDep.log.Error("Application stopped with error", zap.Error(err))
		return
	}
	log.Println("Shut down gracefully")
}
