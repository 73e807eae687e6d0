package telegram

import (
	"context"
	"golang-portfolio/config"
	"golang-portfolio/pkg/logger"
	"golang-portfolio/pkg/utils"
	"sync"
	"time"

	"golang.org/x/time/rate"
	"gopkg.in/telebot.v3"
)

type chatLimiterEntry struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// TelegramRateLimiter throttles outgoing bot messages to stay inside the
// Bot API limits: one bucket for the whole bot and one per chat.
type TelegramRateLimiter struct {
	cfg           *config.TelegramConfig
	log           *logger.Logger
	globalLimiter *rate.Limiter
	chatLimiters  map[int64]*chatLimiterEntry
	bot           *telebot.Bot
	mu            sync.Mutex
	wg            sync.WaitGroup
	now           func() time.Time
}

func NewTelegramRateLimiter(cfg *config.TelegramConfig, log *logger.Logger, bot *telebot.Bot) *TelegramRateLimiter {
	return &TelegramRateLimiter{
		cfg:           cfg,
		log:           log,
		bot:           bot,
		globalLimiter: rate.NewLimiter(rate.Limit(cfg.MaxGlobalRequestPerSecond), cfg.MaxGlobalRequestPerSecond),
		chatLimiters:  make(map[int64]*chatLimiterEntry),
		now:           time.Now,
	}
}

func (t *TelegramRateLimiter) Send(ctx context.Context, c telebot.Context, what interface{}, opts ...interface{}) (*telebot.Message, error) {
	if err := t.Wait(ctx, c.Chat().ID); err != nil {
		return nil, err
	}
	return t.bot.Send(c.Chat(), what, opts...)
}

// SendMessageChat pushes a message outside of an update, e.g. from a scheduled job.
func (t *TelegramRateLimiter) SendMessageChat(ctx context.Context, chatID int64, message string, opts ...interface{}) error {
	if err := t.Wait(ctx, chatID); err != nil {
		return err
	}
	if _, err := t.bot.Send(&telebot.Chat{ID: chatID}, message, opts...); err != nil {
		t.log.ErrorContext(ctx, "Failed to send message", logger.ErrorField(err), logger.IntField("chat_id", int(chatID)))
		return err
	}
	return nil
}

// Wait blocks until both the global and the chat bucket allow one more message.
func (t *TelegramRateLimiter) Wait(ctx context.Context, chatID int64) error {
	if err := t.chatLimiter(chatID).Wait(ctx); err != nil {
		t.log.ErrorContext(ctx, "Failed to wait for chat rate limit", logger.ErrorField(err))
		return err
	}
	if err := t.globalLimiter.Wait(ctx); err != nil {
		t.log.ErrorContext(ctx, "Failed to wait for global rate limit", logger.ErrorField(err))
		return err
	}
	return nil
}

func (t *TelegramRateLimiter) chatLimiter(chatID int64) *rate.Limiter {
	t.mu.Lock()
	defer t.mu.Unlock()

	if entry, exists := t.chatLimiters[chatID]; exists {
		entry.lastAccess = t.now()
		return entry.limiter
	}

	entry := &chatLimiterEntry{
		limiter:    rate.NewLimiter(rate.Limit(t.cfg.MaxChatRequestPerSecond), t.cfg.MaxChatRequestPerSecond),
		lastAccess: t.now(),
	}
	t.chatLimiters[chatID] = entry
	return entry.limiter
}

func (t *TelegramRateLimiter) cleanupExpired() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	removed := 0
	now := t.now()
	for chatID, entry := range t.chatLimiters {
		if now.Sub(entry.lastAccess) > t.cfg.RateLimitExpireDuration {
			delete(t.chatLimiters, chatID)
			removed++
		}
	}
	return removed
}

func (t *TelegramRateLimiter) StartCleanupExpired(ctx context.Context) {
	t.wg.Add(1)
	utils.GoSafe(func() {
		defer t.wg.Done()
		ticker := time.NewTicker(t.cfg.RateLimitCleanupDuration)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				t.log.Info("Received signal to stop Telegram rate limiter cleanup")
				return
			case <-ticker.C:
				if removed := t.cleanupExpired(); removed > 0 {
					t.log.Debug("Removed idle chat limiters", logger.IntField("count", removed))
				}
			}
		}
	})
}

func (t *TelegramRateLimiter) StopCleanupExpired() {
	t.wg.Wait()
	t.log.Info("Telegram rate limiter stopped")
}
