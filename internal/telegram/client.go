// Package telegram wraps the Telegram Bot API as the monitor's messaging
// transport: HTML sends with retry, plus a cursor-based inbound drain.
package telegram

import (
	"fmt"
	"strconv"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Inbound is one received text message with its conversation id.
type Inbound struct {
	ChatID string
	Text   string
}

// Client handles Telegram sending and inbound polling.
type Client struct {
	bot            *tgbotapi.BotAPI
	chatID         int64
	maxRetries     int
	retryDelayBase time.Duration
}

// NewClient creates a new Telegram client bound to one chat.
func NewClient(botToken, chatID string, maxRetries int, retryDelayBase time.Duration) (*Client, error) {
	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create Telegram bot: %w", err)
	}

	chatIDInt, err := strconv.ParseInt(chatID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid chat ID: %w", err)
	}

	if maxRetries <= 0 {
		maxRetries = 3
	}
	if retryDelayBase <= 0 {
		retryDelayBase = time.Second
	}

	return &Client{
		bot:            bot,
		chatID:         chatIDInt,
		maxRetries:     maxRetries,
		retryDelayBase: retryDelayBase,
	}, nil
}

// ChatID returns the configured conversation id as a string.
func (c *Client) ChatID() string {
	return strconv.FormatInt(c.chatID, 10)
}

// SendHTML sends an HTML-formatted message to the configured chat with
// linear-backoff retry. Web page previews are disabled so market links stay
// compact.
func (c *Client) SendHTML(text string) error {
	msg := tgbotapi.NewMessage(c.chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true

	var lastErr error
	for i := 0; i < c.maxRetries; i++ {
		if _, err := c.bot.Send(msg); err == nil {
			return nil
		} else {
			lastErr = err
		}
		time.Sleep(c.retryDelayBase * time.Duration(i+1))
	}
	return fmt.Errorf("failed after %d retries: %w", c.maxRetries, lastErr)
}

// Poll drains pending updates at or after cursor without blocking and
// returns the inbound text messages plus the advanced cursor. A message is
// never returned twice for a monotonically advancing cursor.
func (c *Client) Poll(cursor int) ([]Inbound, int, error) {
	u := tgbotapi.NewUpdate(cursor)
	u.Timeout = 0

	updates, err := c.bot.GetUpdates(u)
	if err != nil {
		return nil, cursor, fmt.Errorf("failed to get updates: %w", err)
	}

	var inbound []Inbound
	next := cursor
	for _, upd := range updates {
		if upd.UpdateID >= next {
			next = upd.UpdateID + 1
		}
		msg := upd.Message
		if msg == nil {
			msg = upd.EditedMessage
		}
		if msg == nil || msg.Text == "" {
			continue
		}
		inbound = append(inbound, Inbound{
			ChatID: strconv.FormatInt(msg.Chat.ID, 10),
			Text:   msg.Text,
		})
	}
	return inbound, next, nil
}
