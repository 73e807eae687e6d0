package telegram

import (
	"context"
	"golang-portfolio/config"
	"golang-portfolio/internal/service"
	"golang-portfolio/pkg/logger"
	"golang-portfolio/pkg/telegram"
	"time"

	"github.com/labstack/echo/v4"
	"gopkg.in/telebot.v3"
)

type TelegramBotHandler struct {
	ctx      context.Context
	cfg      *config.Config
	bot      *telebot.Bot
	log      *logger.Logger
	telegram *telegram.TelegramRateLimiter
	echo     *echo.Echo
	service  *service.Service
	polling  bool
}

func NewTelegramBotHandler(
	ctx context.Context,
	cfg *config.Config,
	log *logger.Logger,
	bot *telebot.Bot,
	telegram *telegram.TelegramRateLimiter,
	echo *echo.Echo,
	service *service.Service) *TelegramBotHandler {
	return &TelegramBotHandler{
		ctx:      ctx,
		cfg:      cfg,
		log:      log,
		bot:      bot,
		telegram: telegram,
		echo:     echo,
		service:  service,
	}
}

// Start registers the commands and begins receiving updates, either through
// the webhook route on the API server or by long polling.
func (t *TelegramBotHandler) Start() error {
	t.log.Info("Starting Telegram bot...")
	t.RegisterHandlers()
	t.telegram.StartCleanupExpired(t.ctx)

	if t.cfg.Telegram.WebhookURL != "" {
		t.log.Info("Setting webhook URL", logger.StringField("webhook_url", t.cfg.Telegram.WebhookURL))
		return t.bot.SetWebhook(&telebot.Webhook{
			Endpoint: &telebot.WebhookEndpoint{
				PublicURL: t.cfg.Telegram.WebhookURL,
			},
		})
	}

	if err := t.bot.RemoveWebhook(); err != nil {
		t.log.Warn("Failed to remove webhook before polling", logger.ErrorField(err))
	}
	t.polling = true
	go t.bot.Start()
	t.log.Info("Telegram bot polling for updates")
	return nil
}

func (t *TelegramBotHandler) Stop() {
	t.log.Info("Stopping Telegram bot...")

	if !t.polling {
		t.telegram.StopCleanupExpired()
		t.log.Info("Telegram bot shutdown completed")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// bot.Stop blocks until the poller exits
	stopDone := make(chan struct{})
	go func() {
		t.bot.Stop()
		close(stopDone)
	}()

	select {
	case <-stopDone:
		t.log.Info("Telegram bot stopped successfully")
	case <-ctx.Done():
		t.log.Warn("Timeout while stopping bot, forcing shutdown")
	}

	t.telegram.StopCleanupExpired()
	t.log.Info("Telegram bot shutdown completed")
}
