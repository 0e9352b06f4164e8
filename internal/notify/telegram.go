package notify

import (
	"context"
	"fmt"
	"strings"

	"bistro/internal/model"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

// chatSender is satisfied by *tgbotapi.BotAPI.
type chatSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// telegramNotifier posts kitchen alerts to a staff chat. Customers are not
// reachable over Telegram, so OrderConfirmed is a no-op.
type telegramNotifier struct {
	bot    chatSender
	chatID int64
	logger zerolog.Logger
}

// NewTelegramNotifier connects the bot with token.
func NewTelegramNotifier(token string, chatID int64, logger zerolog.Logger) (Notifier, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}
	return newTelegramNotifier(bot, chatID, logger), nil
}

func newTelegramNotifier(bot chatSender, chatID int64, logger zerolog.Logger) *telegramNotifier {
	return &telegramNotifier{
		bot:    bot,
		chatID: chatID,
		logger: logger.With().Str("component", "telegram-notifier").Logger(),
	}
}

func (n *telegramNotifier) OrderConfirmed(context.Context, *model.Order) error { return nil }

func (n *telegramNotifier) NewOrder(_ context.Context, order *model.Order) error {
	var b strings.Builder
	fmt.Fprintf(&b, "New order #%s\n", order.ShortNumber())
	fmt.Fprintf(&b, "%s, %s\n", order.Name, order.Phone)
	fmt.Fprintf(&b, "Pickup: %s\n", order.PickupTime.Format(shortLayout))
	for _, item := range order.Items {
		fmt.Fprintf(&b, "%dx %s\n", item.Quantity, item.Name)
	}
	if order.Notes != "" {
		fmt.Fprintf(&b, "Notes: %s\n", order.Notes)
	}
	fmt.Fprintf(&b, "Total: %s", order.Total.StringFixed(2))

	return n.send(b.String())
}

func (n *telegramNotifier) ReservationReceived(_ context.Context, res *model.Reservation) error {
	text := fmt.Sprintf("Reservation %s: %s, %d guests on %s at %s",
		res.Status, res.Name, res.Guests, res.Date.Format("Mon Jan 2"), res.Time)
	if res.SpecialRequest != "" {
		text += "\nRequest: " + res.SpecialRequest
	}
	return n.send(text)
}

func (n *telegramNotifier) send(text string) error {
	if _, err := n.bot.Send(tgbotapi.NewMessage(n.chatID, text)); err != nil {
		return fmt.Errorf("failed to send telegram message: %w", err)
	}
	n.logger.Debug().Int64("chat_id", n.chatID).Msg("telegram alert sent")
	return nil
}
