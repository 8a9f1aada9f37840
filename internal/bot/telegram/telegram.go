// Package telegram adapts the Telegram Bot API to the bot.Adapter interface.
package telegram

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/golandec/invoicebot/internal/bot"
)

// api abstracts the Telegram client calls we use, enabling test fakes.
type api interface {
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	StopReceivingUpdates()
}

// Adapter implements bot.Adapter for Telegram.
type Adapter struct {
	token string
	bot   api
	out   io.Writer
}

// Opts holds parameters for creating an Adapter.
type Opts struct {
	Token string
	Out   io.Writer

	// For testing: inject a fake client instead of dialing Telegram.
	Bot api
}

// New creates a Telegram adapter.
func New(opts Opts) (*Adapter, error) {
	if opts.Token == "" && opts.Bot == nil {
		return nil, fmt.Errorf("telegram: token is required")
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	return &Adapter{token: opts.Token, bot: opts.Bot, out: opts.Out}, nil
}

// Connect authenticates against the Telegram Bot API.
func (a *Adapter) Connect(ctx context.Context) error {
	if a.bot != nil {
		return nil
	}
	b, err := tgbotapi.NewBotAPI(a.token)
	if err != nil {
		return fmt.Errorf("telegram: authenticate: %w", err)
	}
	fmt.Fprintf(a.out, "[telegram] authorized as @%s\n", b.Self.UserName)
	a.bot = b
	return nil
}

// Listen starts long polling and converts updates to inbound events. The
// returned channel closes when the context is cancelled.
func (a *Adapter) Listen(ctx context.Context) (<-chan bot.Inbound, error) {
	if a.bot == nil {
		return nil, fmt.Errorf("telegram: not connected")
	}

	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = 30
	updates := a.bot.GetUpdatesChan(cfg)

	events := make(chan bot.Inbound)
	go func() {
		defer close(events)
		for {
			select {
			case <-ctx.Done():
				return
			case u, ok := <-updates:
				if !ok {
					return
				}
				ev, ok := convert(u)
				if !ok {
					continue
				}
				select {
				case events <- ev:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return events, nil
}

// convert maps a Telegram update to an inbound event. Updates that are
// neither text messages nor button presses are dropped.
func convert(u tgbotapi.Update) (bot.Inbound, bool) {
	switch {
	case u.CallbackQuery != nil:
		cq := u.CallbackQuery
		ev := bot.Inbound{
			UserID:       cq.From.ID,
			UserName:     cq.From.UserName,
			CallbackID:   cq.ID,
			CallbackData: cq.Data,
			Timestamp:    time.Now(),
		}
		if cq.Message != nil {
			ev.ChatID = cq.Message.Chat.ID
			ev.MessageID = cq.Message.MessageID
		}
		return ev, true
	case u.Message != nil && u.Message.Text != "":
		m := u.Message
		ev := bot.Inbound{
			ChatID:    m.Chat.ID,
			MessageID: m.MessageID,
			Text:      m.Text,
			Timestamp: m.Time(),
		}
		if m.From != nil {
			ev.UserID = m.From.ID
			ev.UserName = m.From.UserName
		}
		return ev, true
	default:
		return bot.Inbound{}, false
	}
}

// Send delivers a text message or a document and returns its message ID.
func (a *Adapter) Send(ctx context.Context, msg bot.Outbound) (int, error) {
	if a.bot == nil {
		return 0, fmt.Errorf("telegram: not connected")
	}

	var c tgbotapi.Chattable
	if msg.Document != nil {
		doc := tgbotapi.NewDocument(msg.ChatID, tgbotapi.FileBytes{
			Name:  msg.Document.Name,
			Bytes: msg.Document.Data,
		})
		doc.Caption = msg.Document.Caption
		if msg.Keyboard != nil {
			doc.ReplyMarkup = markup(msg.Keyboard)
		}
		c = doc
	} else {
		m := tgbotapi.NewMessage(msg.ChatID, msg.Text)
		if msg.Keyboard != nil {
			m.ReplyMarkup = markup(msg.Keyboard)
		}
		c = m
	}

	sent, err := a.bot.Send(c)
	if err != nil {
		return 0, fmt.Errorf("telegram: send to %d: %w", msg.ChatID, err)
	}
	return sent.MessageID, nil
}

// markup converts keyboard rows to the Telegram inline-keyboard type.
func markup(kb bot.Keyboard) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(kb))
	for _, row := range kb {
		buttons := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
		for _, b := range row {
			buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(b.Label, b.Data))
		}
		rows = append(rows, buttons)
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// DeleteMessage removes a previously sent message.
func (a *Adapter) DeleteMessage(ctx context.Context, chatID int64, messageID int) error {
	if a.bot == nil {
		return fmt.Errorf("telegram: not connected")
	}
	if _, err := a.bot.Request(tgbotapi.NewDeleteMessage(chatID, messageID)); err != nil {
		return fmt.Errorf("telegram: delete message %d in %d: %w", messageID, chatID, err)
	}
	return nil
}

// AckCallback answers a callback query so the client stops its spinner.
func (a *Adapter) AckCallback(ctx context.Context, callbackID, text string) error {
	if a.bot == nil {
		return fmt.Errorf("telegram: not connected")
	}
	if _, err := a.bot.Request(tgbotapi.NewCallback(callbackID, text)); err != nil {
		return fmt.Errorf("telegram: ack callback %s: %w", callbackID, err)
	}
	return nil
}

// Close stops long polling.
func (a *Adapter) Close() error {
	if a.bot != nil {
		a.bot.StopReceivingUpdates()
	}
	return nil
}
