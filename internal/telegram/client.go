// Package telegram adapts the Telegram Bot API to the transport contract.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"eventbot/internal/model"
	"eventbot/internal/transport"
	apperrors "eventbot/pkg/app_errors"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// API is the subset of *tgbotapi.BotAPI the client needs.
type API interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

type Client struct {
	api API
}

var _ transport.Messenger = (*Client)(nil)

func NewClient(api API) *Client {
	return &Client{api: api}
}

// httpTimeout must exceed the long polling timeout.
const httpTimeout = 90 * time.Second

// NewBotAPI connects with the bot token; it fails when the token is rejected.
func NewBotAPI(token string) (*tgbotapi.BotAPI, error) {
	api, err := tgbotapi.NewBotAPIWithClient(token, tgbotapi.APIEndpoint, &http.Client{Timeout: httpTimeout})
	if err != nil {
		return nil, fmt.Errorf("connect bot api: %w", err)
	}
	return api, nil
}

// call runs fn but stops waiting once ctx is done. The bot API client takes no
// context, so the abandoned request finishes in the background.
func call[T any](ctx context.Context, fn func() (T, error)) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}
	type result struct {
		v   T
		err error
	}
	done := make(chan result, 1)
	go func() {
		v, err := fn()
		done <- result{v, err}
	}()
	select {
	case r := <-done:
		return r.v, r.err
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

func (c *Client) Send(ctx context.Context, chatID int64, msg model.OutgoingMessage) (int, error) {
	cfg := tgbotapi.NewMessage(chatID, msg.Text)
	if len(msg.Keyboard) > 0 {
		cfg.ReplyMarkup = inlineKeyboard(msg.Keyboard)
	}
	sent, err := call(ctx, func() (tgbotapi.Message, error) { return c.api.Send(cfg) })
	if err != nil {
		return 0, classify(err, false)
	}
	return sent.MessageID, nil
}

// Post accepts "@name" or a numeric chat id such as "-100123".
func (c *Client) Post(ctx context.Context, channel string, msg model.OutgoingMessage) (int, error) {
	var cfg tgbotapi.MessageConfig
	if id, err := strconv.ParseInt(channel, 10, 64); err == nil {
		cfg = tgbotapi.NewMessage(id, msg.Text)
	} else {
		cfg = tgbotapi.NewMessageToChannel(channel, msg.Text)
	}
	if len(msg.Keyboard) > 0 {
		cfg.ReplyMarkup = inlineKeyboard(msg.Keyboard)
	}
	sent, err := call(ctx, func() (tgbotapi.Message, error) { return c.api.Send(cfg) })
	if err != nil {
		return 0, classify(err, true)
	}
	return sent.MessageID, nil
}

func (c *Client) Answer(ctx context.Context, callbackID, text string) error {
	cfg := tgbotapi.NewCallback(callbackID, text)
	if _, err := call(ctx, func() (*tgbotapi.APIResponse, error) { return c.api.Request(cfg) }); err != nil {
		return classify(err, false)
	}
	return nil
}

func (c *Client) Edit(ctx context.Context, chatID int64, messageID int, msg model.OutgoingMessage) error {
	cfg := tgbotapi.NewEditMessageText(chatID, messageID, msg.Text)
	if len(msg.Keyboard) > 0 {
		markup := inlineKeyboard(msg.Keyboard)
		cfg.ReplyMarkup = &markup
	}
	if _, err := call(ctx, func() (tgbotapi.Message, error) { return c.api.Send(cfg) }); err != nil {
		if isNotModified(err) {
			return nil
		}
		return classify(err, false)
	}
	return nil
}

func inlineKeyboard(kb model.Keyboard) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(kb))
	for _, row := range kb {
		buttons := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
		for _, b := range row {
			buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(b.Text, b.Data))
		}
		rows = append(rows, buttons)
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// classify maps Bot API failures onto apperrors sentinels.
func classify(err error, channel bool) error {
	var apiErr *tgbotapi.Error
	if !errors.As(err, &apiErr) {
		return fmt.Errorf("%w: %w", apperrors.ErrDelivery, err)
	}

	desc := strings.ToLower(apiErr.Message)
	switch {
	case strings.Contains(desc, "chat not found"):
		return fmt.Errorf("%w: %s", apperrors.ErrChatNotFound, apiErr.Message)
	case channel && (apiErr.Code == 403 || strings.Contains(desc, "not enough rights")):
		return fmt.Errorf("%w: %s", apperrors.ErrChannelNotAllowed, apiErr.Message)
	case apiErr.Code == 403:
		// blocked, deactivated, or never started the bot
		return fmt.Errorf("%w: %s", apperrors.ErrRecipientBlocked, apiErr.Message)
	}
	return fmt.Errorf("%w: %d %s", apperrors.ErrDelivery, apiErr.Code, apiErr.Message)
}

func isNotModified(err error) bool {
	var apiErr *tgbotapi.Error
	return errors.As(err, &apiErr) && strings.Contains(apiErr.Message, "message is not modified")
}
