package cmd

import (
	"fmt"
	"golang-portfolio/config"
	"golang-portfolio/internal/repository"
	"golang-portfolio/pkg/cache"
	"golang-portfolio/pkg/logger"
	"golang-portfolio/pkg/middleware"
	"golang-portfolio/pkg/postgres"
	"golang-portfolio/pkg/telegram"

	goValidator "github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
	"gopkg.in/telebot.v3"
)

type AppDependency struct {
	db          *postgres.DB
	store       repository.Store
	cfg         *config.Config
	log         *logger.Logger
	validator   *goValidator.Validate
	echo        *echo.Echo
	cache       cache.Cache
	telegram    *telegram.TelegramRateLimiter
	telegramBot *telebot.Bot
}

func NewAppDependency() (*AppDependency, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	log, err := logger.New(cfg.Log.Level, cfg.Log.Encoding)
	if err != nil {
		return nil, err
	}

	dep := &AppDependency{
		cfg:       cfg,
		log:       log,
		validator: goValidator.New(),
		cache:     cache.NewCache(cfg.Cache.DefaultExpiration, cfg.Cache.CleanupInterval),
	}

	switch cfg.Storage.Driver {
	case config.StorageDriverPostgres:
		db, err := postgres.NewDB(cfg.DB, log)
		if err != nil {
			log.Error("Failed to connect to database", zap.Error(err))
			return nil, err
		}
		dep.db = db
		dep.store = repository.NewPostgresStore(db.DB)
	case config.StorageDriverMemory:
		log.Warn("Using in-memory storage, data is lost on restart")
		dep.store = repository.NewMemoryStore()
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(echoMiddleware.Recover())
	e.Use(middleware.NewRequestLoggerMiddleware(log))
	e.Use(middleware.NewRateLimiterMiddleware(cfg.API.RateLimit, cfg.API.RateLimitBurst))
	dep.echo = e

	if cfg.Telegram.BotToken == "" {
		log.Info("Telegram bot token not set, bot disabled")
		return dep, nil
	}

	pref := telebot.Settings{
		Token:  cfg.Telegram.BotToken,
		Poller: &telebot.LongPoller{Timeout: cfg.Telegram.PollerTimeout},
		OnError: func(err error, c telebot.Context) {
			log.Error("Telegram bot error", zap.Error(err))
		},
	}
	bot, err := telebot.NewBot(pref)
	if err != nil {
		log.Error("Failed to create telegram bot", zap.Error(err))
		dep.Close()
		return nil, err
	}
	dep.telegramBot = bot
	dep.telegram = telegram.NewTelegramRateLimiter(&cfg.Telegram, log, bot)
	return dep, nil
}

func (d *AppDependency) Close() error {
	d.log.Info("Closing app dependency")
	if d.db != nil {
		return d.db.Close()
	}
	return nil
}
