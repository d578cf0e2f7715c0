package telegram

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/finlearn/papertrade/internal/config"
	"github.com/finlearn/papertrade/internal/logger"
	"github.com/finlearn/papertrade/internal/storage"
)

// Notifier pushes trade confirmations to a Telegram chat. Delivery is
// best-effort: a send failure is logged, never propagated.
type Notifier struct {
	bot     *tgbotapi.BotAPI
	chatID  int64
	enabled bool
	logger  *logger.Logger
}

func NewNotifier(cfg *config.Config, log *logger.Logger) *Notifier {
	if !cfg.Telegram.Enabled {
		return &Notifier{enabled: false, logger: log}
	}

	bot, err := tgbotapi.NewBotAPI(cfg.Telegram.BotToken)
	if err != nil {
		log.Error("failed to create telegram bot", "error", err)
		return &Notifier{enabled: false, logger: log}
	}

	log.Info("telegram bot connected", "username", bot.Self.UserName)

	return &Notifier{
		bot:     bot,
		chatID:  cfg.Telegram.ChatID,
		enabled: true,
		logger:  log,
	}
}

func (n *Notifier) NotifyTrade(trade *storage.Trade) {
	emoji := "🟢"
	if trade.Side == storage.SideSell {
		emoji = "🔴"
	}
	msg := fmt.Sprintf("%s *%s* %s\nQty: %d\nPrice: %s\nFee: %s",
		emoji, trade.Side, trade.Symbol, trade.Quantity,
		trade.ExecutedPrice.String(), trade.Fee.String())
	n.send(msg)
}

func (n *Notifier) NotifyStatus(message string) {
	n.send(message)
}

func (n *Notifier) send(text string) {
	if !n.enabled {
		return
	}

	msg := tgbotapi.NewMessage(n.chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown

	if _, err := n.bot.Send(msg); err != nil {
		n.logger.Error("send telegram message", "error", err)
	}
}
