package cmd

import (
	"context"
	"golang-portfolio/internal/delivery/http"
	"golang-portfolio/internal/delivery/telegram"
	"golang-portfolio/internal/dto"
	"golang-portfolio/internal/repository"
	"golang-portfolio/internal/service"
	"golang-portfolio/pkg/logger"
	"log"
	httpNet "net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Run the portfolio API, quote scheduler and bot",
	Run:   Start,
}

func Start(cmd *cobra.Command, args []string) {
	// Create a context that is canceled on interrupt signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	appDep, err := NewAppDependency()
	if err != nil {
		log.Fatalf("Failed to create app dependency: %v", err)
	}

	repo := repository.NewRepository(appDep.cfg, appDep.store, appDep.cache, appDep.log)
	services := service.NewService(appDep.cfg, appDep.log, repo)

	result, err := services.Migrator.Run(ctx)
	if err != nil {
		log.Fatalf("Failed to migrate stored data: %v", err)
	}
	if result.Status == dto.MigrationUnreadable {
		// serving would overwrite the unreadable collections on the next write
		log.Fatalf("Stored data is unreadable, refusing to start: %s", result.Reason)
	}
	appDep.log.Info("Stored data checked",
		logger.StringField("status", string(result.Status)),
		logger.IntField("from", result.From),
		logger.IntField("to", result.To),
	)

	if _, err := services.AccountService.EnsureDefaultAccount(ctx); err != nil {
		log.Fatalf("Failed to ensure default account: %v", err)
	}

	var telegramHandler *telegram.TelegramBotHandler
	if appDep.telegramBot != nil {
		telegramHandler = telegram.NewTelegramBotHandler(
			ctx,
			appDep.cfg,
			appDep.log,
			appDep.telegramBot,
			appDep.telegram,
			appDep.echo,
			services,
		)
		if err := telegramHandler.Start(); err != nil {
			log.Fatalf("Failed to start telegram bot: %v", err)
		}
	}

	httpHandler := http.NewHttpAPIHandler(appDep.echo, appDep.validator, services, appDep.log)
	apiServer := NewHTTPServer(appDep, httpHandler)
	go func() {
		if err := apiServer.Start(); err != nil && err != httpNet.ErrServerClosed {
			log.Fatalf("Failed to start HTTP server: %v", err)
		}
	}()

	if err := services.SchedulerService.Start(); err != nil {
		log.Fatalf("Failed to start scheduler: %v", err)
	}

	// Wait for shutdown signal
	<-ctx.Done()
	log.Println("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), appDep.cfg.API.ShutdownTimeout)
	defer cancel()
	services.SchedulerService.Stop(shutdownCtx)

	if telegramHandler != nil {
		telegramHandler.Stop()
	}

	if err := apiServer.Stop(); err != nil {
		log.Printf("Failed to stop HTTP server: %v", err)
	}

	if err := appDep.Close(); err != nil {
		log.Fatalf("Failed to close app dependency: %v", err)
	}
}
