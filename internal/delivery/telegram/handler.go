package telegram

import (
	"context"
	"errors"
	"golang-portfolio/internal/dto"
	"golang-portfolio/internal/service"
	"golang-portfolio/pkg/logger"
	"golang-portfolio/pkg/middleware"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"gopkg.in/telebot.v3"
	tbmiddleware "gopkg.in/telebot.v3/middleware"
)

const commonErrorInternal = "❌ Something went wrong while reading the portfolio. Please try again later."

func (t *TelegramBotHandler) withContext(handler func(ctx context.Context, c telebot.Context) error) func(c telebot.Context) error {
	return middleware.WithContext(t.ctx, t.cfg.Telegram.TimeoutDuration, handler)
}

func (t *TelegramBotHandler) RegisterHandlers() {
	if t.cfg.Telegram.WebhookURL != "" {
		t.echo.POST("/api/v1/telegram/webhook", func(c echo.Context) error {
			var update telebot.Update
			if err := c.Bind(&update); err != nil {
				t.log.ErrorContext(t.ctx, "Cannot bind JSON", logger.ErrorField(err))
				return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse(err.Error()))
			}
			t.bot.ProcessUpdate(update)
			return c.JSON(http.StatusOK, dto.NewBaseResponse(http.StatusOK, "ok", nil))
		})
	}

	if t.cfg.Telegram.ChatID != 0 {
		t.bot.Use(tbmiddleware.Whitelist(t.cfg.Telegram.ChatID))
	}

	t.bot.Handle("/start", t.withContext(t.handleStart))
	t.bot.Handle("/help", t.withContext(t.handleHelp))
	t.bot.Handle("/positions", t.withContext(t.handlePositions))
	t.bot.Handle("/summary", t.withContext(t.handleSummary))
	t.bot.Handle("/cleared", t.withContext(t.handleCleared))
	t.bot.Handle("/accounts", t.withContext(t.handleAccounts))
	t.bot.Handle("/refresh", t.withContext(t.handleRefresh))
	t.bot.Handle(telebot.OnText, t.withContext(t.handleTextMessage))

	if t.cfg.Telegram.NotifyOnRefresh && t.cfg.Telegram.ChatID != 0 {
		t.service.SchedulerService.OnRefresh(t.notifyRefresh)
	}
}

func (t *TelegramBotHandler) handleStart(ctx context.Context, c telebot.Context) error {
	message := `👋 *Welcome to your portfolio ledger!*
I keep track of your positions, cost basis and realized profit.

📊 /positions - Open positions with unrealized profit
💰 /summary - Portfolio totals
✅ /cleared - Realized profit of fully exited positions
🗂 /accounts - Totals per account
🔄 /refresh - Pull the latest quotes

Add an account name to /positions, /summary or /cleared to narrow the view, e.g. ` + "`/summary Broker`" + `.
🆘 /help - Show this again`
	_, err := t.telegram.Send(ctx, c, message, &telebot.SendOptions{ParseMode: telebot.ModeMarkdown})
	return err
}

func (t *TelegramBotHandler) handleHelp(ctx context.Context, c telebot.Context) error {
	return t.handleStart(ctx, c)
}

func (t *TelegramBotHandler) handleTextMessage(ctx context.Context, c telebot.Context) error {
	if strings.HasPrefix(c.Text(), "/") {
		return nil
	}
	_, err := t.telegram.Send(ctx, c, "I don't recognize that. Use /help to see the available commands.")
	return err
}

func (t *TelegramBotHandler) handlePositions(ctx context.Context, c telebot.Context) error {
	accountID, label, err := t.resolveAccountArg(ctx, c)
	if err != nil {
		return t.sendError(ctx, c, err)
	}

	overview, err := t.service.LedgerService.Overview(ctx, accountID, nil)
	if err != nil {
		return t.sendError(ctx, c, err)
	}

	_, err = t.telegram.Send(ctx, c, formatPositions(label, overview.Summary), telebot.ModeHTML)
	return err
}

func (t *TelegramBotHandler) handleSummary(ctx context.Context, c telebot.Context) error {
	accountID, label, err := t.resolveAccountArg(ctx, c)
	if err != nil {
		return t.sendError(ctx, c, err)
	}

	overview, err := t.service.LedgerService.Overview(ctx, accountID, nil)
	if err != nil {
		return t.sendError(ctx, c, err)
	}

	_, err = t.telegram.Send(ctx, c, formatOverview(label, overview), telebot.ModeHTML)
	return err
}

func (t *TelegramBotHandler) handleCleared(ctx context.Context, c telebot.Context) error {
	accountID, label, err := t.resolveAccountArg(ctx, c)
	if err != nil {
		return t.sendError(ctx, c, err)
	}

	positions, err := t.service.LedgerService.ListPositions(ctx, accountID)
	if err != nil {
		return t.sendError(ctx, c, err)
	}

	_, err = t.telegram.Send(ctx, c, formatCleared(label, service.CalculateClearedProfit(positions)), telebot.ModeHTML)
	return err
}

func (t *TelegramBotHandler) handleAccounts(ctx context.Context, c telebot.Context) error {
	report, err := t.service.AccountService.Stats(ctx)
	if err != nil {
		return t.sendError(ctx, c, err)
	}

	_, err = t.telegram.Send(ctx, c, formatAccountStats(report), telebot.ModeHTML)
	return err
}

func (t *TelegramBotHandler) handleRefresh(ctx context.Context, c telebot.Context) error {
	result, err := t.service.LedgerService.RefreshPrices(ctx)
	if err != nil {
		return t.sendError(ctx, c, err)
	}

	_, err = t.telegram.Send(ctx, c, formatRefresh(result), telebot.ModeHTML)
	return err
}

func (t *TelegramBotHandler) notifyRefresh(ctx context.Context, result *dto.RefreshResult) {
	overview, err := t.service.LedgerService.Overview(ctx, "", nil)
	if err != nil {
		t.log.ErrorContext(ctx, "Failed to build refresh notification", logger.ErrorField(err))
		return
	}

	message := formatRefresh(result) + "\n\n" + formatOverview("", overview)
	if err := t.telegram.SendMessageChat(ctx, t.cfg.Telegram.ChatID, message, telebot.ModeHTML); err != nil {
		t.log.ErrorContext(ctx, "Failed to send refresh notification", logger.ErrorField(err))
	}
}

// resolveAccountArg maps the optional command argument to an account id,
// matching either the id or the name case-insensitively.
func (t *TelegramBotHandler) resolveAccountArg(ctx context.Context, c telebot.Context) (string, string, error) {
	arg := strings.TrimSpace(strings.Join(c.Args(), " "))
	if arg == "" {
		return "", "", nil
	}

	accounts, err := t.service.AccountService.ListAccounts(ctx)
	if err != nil {
		return "", "", err
	}
	for _, account := range accounts {
		if account.ID == arg || strings.EqualFold(account.Name, arg) {
			return account.ID, account.Name, nil
		}
	}
	return "", "", service.ErrAccountNotFound
}

func (t *TelegramBotHandler) sendError(ctx context.Context, c telebot.Context, err error) error {
	message := commonErrorInternal
	if errors.Is(err, service.ErrAccountNotFound) {
		message = "❌ No account with that name. Use /accounts to list them."
	} else {
		t.log.ErrorContext(ctx, "Telegram command failed", logger.ErrorField(err), logger.StringField("command", c.Text()))
	}
	_, sendErr := t.telegram.Send(ctx, c, message)
	return sendErr
}
