// File: internal/domain/ports/adapter/telegram.go
package adapter

import (
	"context"

	"telegram-group-warden/internal/domain/model"
)

// TelegramBotAdapter is the chat-platform surface the core depends on.
// The real implementation lives in internal/infra/telegram; tests
// substitute mocks. All calls should run under a bounded context: a hung
// transport call must not be allowed to stall a tenant loop forever.
type TelegramBotAdapter interface {
	// SendText delivers a plain text message and returns the platform
	// message ID of the sent message.
	SendText(ctx context.Context, chatID int64, text string) (int, error)

	// SendRecurring renders item exactly as the scheduler sends it live:
	// text-only or media+caption, with one URL button per row. Used by both
	// the scheduler and the wizard preview so the two can never drift.
	SendRecurring(ctx context.Context, chatID int64, item model.RecurringItem) (int, error)

	// ReplyTo posts text as a reply to an existing message.
	ReplyTo(ctx context.Context, chatID int64, messageID int, text string) error

	DeleteMessage(ctx context.Context, chatID int64, messageID int) error
	PinMessage(ctx context.Context, chatID int64, messageID int) error

	// IsChatAdmin reports whether userID is creator or administrator of
	// chatID.
	IsChatAdmin(ctx context.Context, chatID int64, userID int64) (bool, error)
}
