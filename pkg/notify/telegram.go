package notify

import (
	"fmt"
	"log"

	"pitchBooker/pkg/scraper"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Client sends Telegram notifications about booking outcomes.
type Client struct {
	bot      *tgbotapi.BotAPI
	chatID   int64
	noNotify bool
}

// NewClient creates a Telegram client. With noNotify set, or when token
// or chat ID are missing, a disabled client is returned and every send
// becomes a no-op.
func NewClient(token string, chatID int64, noNotify bool) (*Client, error) {
	if noNotify || token == "" || chatID == 0 {
		return &Client{noNotify: true}, nil
	}

	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create Telegram bot: %w", err)
	}

	return &Client{bot: bot, chatID: chatID}, nil
}

// Enabled reports whether notifications will actually be sent.
func (c *Client) Enabled() bool {
	return !c.noNotify
}

// NotifyStarted announces that the watcher is up.
func (c *Client) NotifyStarted(day string, hour int) error {
	return c.send(fmt.Sprintf("👀 Watching for a slot on %s at %02d:00", day, hour))
}

// NotifyBooked announces a completed booking.
func (c *Client) NotifyBooked(slot scraper.Slot) error {
	return c.send(fmt.Sprintf("🎉 Booked: %s", slot))
}

// NotifyFailed announces an aborted booking attempt. The attempt is not
// retried, so the user has to act on this.
func (c *Client) NotifyFailed(slot scraper.Slot, cause error) error {
	return c.send(fmt.Sprintf("❌ Booking failed for %s: %v\nNo retry will be made, please check manually.", slot, cause))
}

func (c *Client) send(text string) error {
	if c.noNotify {
		log.Println("📱 Notification skipped (notifications disabled)")
		return nil
	}

	msg := tgbotapi.NewMessage(c.chatID, text)
	if _, err := c.bot.Send(msg); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}

	log.Printf("📱 Notification sent")
	return nil
}
