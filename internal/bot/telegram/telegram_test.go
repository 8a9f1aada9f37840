package telegram

import (
	"context"
	"io"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/golandec/invoicebot/internal/bot"
)

type fakeBot struct {
	updates  chan tgbotapi.Update
	sent     []tgbotapi.Chattable
	requests []tgbotapi.Chattable
	nextID   int
	stopped  bool
}

func newFakeBot() *fakeBot {
	return &fakeBot{updates: make(chan tgbotapi.Update, 4)}
}

func (f *fakeBot) GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return f.updates
}

func (f *fakeBot) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.sent = append(f.sent, c)
	f.nextID++
	return tgbotapi.Message{MessageID: f.nextID}, nil
}

func (f *fakeBot) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.requests = append(f.requests, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeBot) StopReceivingUpdates() { f.stopped = true }

func newTestAdapter(t *testing.T) (*Adapter, *fakeBot) {
	t.Helper()
	fb := newFakeBot()
	a, err := New(Opts{Bot: fb, Out: io.Discard})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return a, fb
}

func TestSendText(t *testing.T) {
	a, fb := newTestAdapter(t)

	id, err := a.Send(context.Background(), bot.Outbound{
		ChatID:   100,
		Text:     "привет",
		Keyboard: bot.Keyboard{{{Label: "Отмена", Data: "cancel"}}},
	})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if id != 1 {
		t.Errorf("message id = %d", id)
	}

	msg, ok := fb.sent[0].(tgbotapi.MessageConfig)
	if !ok {
		t.Fatalf("sent %T, want MessageConfig", fb.sent[0])
	}
	if msg.ChatID != 100 || msg.Text != "привет" {
		t.Errorf("message = %+v", msg)
	}
	markup, ok := msg.ReplyMarkup.(tgbotapi.InlineKeyboardMarkup)
	if !ok {
		t.Fatalf("reply markup %T, want InlineKeyboardMarkup", msg.ReplyMarkup)
	}
	btn := markup.InlineKeyboard[0][0]
	if btn.Text != "Отмена" || btn.CallbackData == nil || *btn.CallbackData != "cancel" {
		t.Errorf("button = %+v", btn)
	}
}

func TestSendDocument(t *testing.T) {
	a, fb := newTestAdapter(t)

	_, err := a.Send(context.Background(), bot.Outbound{
		ChatID: 100,
		Document: &bot.Document{
			Name:    "invoice.pdf",
			Data:    []byte("%PDF-1.4"),
			Caption: "Вот ваша счет-фактура в формате PDF.",
		},
	})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}

	doc, ok := fb.sent[0].(tgbotapi.DocumentConfig)
	if !ok {
		t.Fatalf("sent %T, want DocumentConfig", fb.sent[0])
	}
	file, ok := doc.File.(tgbotapi.FileBytes)
	if !ok {
		t.Fatalf("file %T, want FileBytes", doc.File)
	}
	if file.Name != "invoice.pdf" || string(file.Bytes) != "%PDF-1.4" {
		t.Errorf("file = %+v", file)
	}
	if doc.Caption != "Вот ваша счет-фактура в формате PDF." {
		t.Errorf("caption = %q", doc.Caption)
	}
}

func TestDeleteMessageAndAck(t *testing.T) {
	a, fb := newTestAdapter(t)
	ctx := context.Background()

	if err := a.DeleteMessage(ctx, 100, 5); err != nil {
		t.Fatalf("DeleteMessage: %v", err)
	}
	if err := a.AckCallback(ctx, "cb-1", ""); err != nil {
		t.Fatalf("AckCallback: %v", err)
	}

	if len(fb.requests) != 2 {
		t.Fatalf("got %d requests, want 2", len(fb.requests))
	}
	del, ok := fb.requests[0].(tgbotapi.DeleteMessageConfig)
	if !ok || del.ChatID != 100 || del.MessageID != 5 {
		t.Errorf("delete request = %+v", fb.requests[0])
	}
	cb, ok := fb.requests[1].(tgbotapi.CallbackConfig)
	if !ok || cb.CallbackQueryID != "cb-1" {
		t.Errorf("callback request = %+v", fb.requests[1])
	}
}

func TestListenConvertsUpdates(t *testing.T) {
	a, fb := newTestAdapter(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, err := a.Listen(ctx)
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}

	fb.updates <- tgbotapi.Update{Message: &tgbotapi.Message{
		MessageID: 10,
		Text:      "привет",
		Chat:      &tgbotapi.Chat{ID: 100},
		From:      &tgbotapi.User{ID: 7, UserName: "ivan"},
	}}
	ev := <-events
	if ev.ChatID != 100 || ev.Text != "привет" || ev.UserID != 7 || ev.UserName != "ivan" {
		t.Errorf("text event = %+v", ev)
	}
	if ev.CallbackID != "" {
		t.Errorf("text event has callback id %q", ev.CallbackID)
	}

	fb.updates <- tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
		ID:   "cb-1",
		Data: "register_client",
		From: &tgbotapi.User{ID: 7},
		Message: &tgbotapi.Message{
			MessageID: 11,
			Chat:      &tgbotapi.Chat{ID: 100},
		},
	}}
	ev = <-events
	if ev.CallbackID != "cb-1" || ev.CallbackData != "register_client" || ev.ChatID != 100 {
		t.Errorf("callback event = %+v", ev)
	}

	// Non-text updates are dropped, so the channel just closes on cancel.
	fb.updates <- tgbotapi.Update{Message: &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: 100}}}
	cancel()
	if _, ok := <-events; ok {
		t.Error("expected the event channel to close after cancel")
	}
}

func TestCloseStopsPolling(t *testing.T) {
	a, fb := newTestAdapter(t)
	if err := a.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !fb.stopped {
		t.Error("Close should stop receiving updates")
	}
}
