// Package bot implements the Telegram-facing conversation layer: the
// adapter seam to the chat platform, the per-chat flow state machine, the
// inbound router, and the administrative commands.
package bot

import (
	"context"
	"time"
)

// Adapter is the interface that platform-specific implementations must
// satisfy. An adapter handles connection management and message I/O for a
// single chat platform.
type Adapter interface {
	// Connect establishes a connection to the chat platform.
	Connect(ctx context.Context) error

	// Listen returns a channel of inbound events from the platform.
	// The channel is closed when the context is cancelled or the adapter
	// is closed. Listen must only be called after Connect.
	Listen(ctx context.Context) (<-chan Inbound, error)

	// Send delivers an outbound message and returns the platform-assigned
	// message identifier of the sent message.
	Send(ctx context.Context, msg Outbound) (int, error)

	// DeleteMessage removes a previously sent message. Best-effort UX
	// cleanup; callers log failures and continue.
	DeleteMessage(ctx context.Context, chatID int64, messageID int) error

	// AckCallback acknowledges a button press so the client stops showing
	// a progress indicator.
	AckCallback(ctx context.Context, callbackID, text string) error

	// Close gracefully shuts down the adapter connection.
	Close() error
}

// Inbound represents one event received from the chat platform: either a
// text message or an inline-button press (CallbackID non-empty).
type Inbound struct {
	ChatID       int64
	UserID       int64
	UserName     string
	MessageID    int
	Text         string
	CallbackID   string // non-empty for button presses
	CallbackData string // button payload
	Timestamp    time.Time
}

// Outbound represents a message to be sent to the chat platform.
type Outbound struct {
	ChatID   int64
	Text     string
	Keyboard Keyboard  // inline keyboard rows, nil for none
	Document *Document // file attachment, nil for plain text
}

// Button is one labeled inline-keyboard action.
type Button struct {
	Label string
	Data  string // callback payload
}

// Keyboard is a grid of inline buttons.
type Keyboard [][]Button

// Document is a file attachment delivered to the chat.
type Document struct {
	Name    string
	Data    []byte
	Caption string
}
