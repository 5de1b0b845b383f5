// File: internal/usecase/broadcast_uc_test.go
package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"telegram-group-warden/internal/domain/model"
)

func TestBroadcastRunDue(t *testing.T) {
	ctx := context.Background()
	now := time.Unix(1_700_000_000, 0)

	t.Run("should send a fresh item on the first scan and mark it sent", func(t *testing.T) {
		// --- Arrange ---
		store := NewMockConfigStore()
		store.AddRecurringItem(ctx, "-100", model.RecurringItem{Text: "hi", IntervalMinutes: 10})
		bot := NewMockTelegramBot()
		uc := NewBroadcastUseCase(store, bot, newTestLogger())

		// --- Act ---
		sent, err := uc.RunDue(ctx, now)

		// --- Assert ---
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if sent != 1 {
			t.Fatalf("expected 1 send, got %d", sent)
		}
		it := store.RecurringItems(ctx, "-100")[0]
		if it.LastSentAt != now.Unix() {
			t.Errorf("expected last sent %d, got %d", now.Unix(), it.LastSentAt)
		}
		if it.LastMessageID == 0 {
			t.Error("expected the sent message id to be recorded")
		}
	})

	t.Run("should not resend until the interval elapses", func(t *testing.T) {
		// --- Arrange ---
		store := NewMockConfigStore()
		store.AddRecurringItem(ctx, "-100", model.RecurringItem{Text: "hi", IntervalMinutes: 10, LastSentAt: now.Unix()})
		bot := NewMockTelegramBot()
		uc := NewBroadcastUseCase(store, bot, newTestLogger())

		// --- Act / Assert ---
		if sent, _ := uc.RunDue(ctx, now.Add(9*time.Minute)); sent != 0 {
			t.Fatalf("expected no send before the interval, got %d", sent)
		}
		if sent, _ := uc.RunDue(ctx, now.Add(10*time.Minute)); sent != 1 {
			t.Fatalf("expected a send at the interval boundary, got %d", sent)
		}
	})

	t.Run("should catch up after downtime with a single send", func(t *testing.T) {
		store := NewMockConfigStore()
		store.AddRecurringItem(ctx, "-100", model.RecurringItem{Text: "hi", IntervalMinutes: 10, LastSentAt: now.Add(-5 * time.Hour).Unix()})
		bot := NewMockTelegramBot()
		uc := NewBroadcastUseCase(store, bot, newTestLogger())

		if sent, _ := uc.RunDue(ctx, now); sent != 1 {
			t.Fatalf("expected one catch-up send, got %d", sent)
		}
		if len(bot.SentItems) != 1 {
			t.Fatalf("expected exactly one delivery, got %d", len(bot.SentItems))
		}
	})

	t.Run("should leave send state untouched when delivery fails", func(t *testing.T) {
		// --- Arrange ---
		store := NewMockConfigStore()
		store.AddRecurringItem(ctx, "-100", model.RecurringItem{Text: "hi", IntervalMinutes: 10})
		bot := NewMockTelegramBot()
		bot.SendRecurringFunc = func(ctx context.Context, chatID int64, item model.RecurringItem) (int, error) {
			return 0, errors.New("telegram 502")
		}
		uc := NewBroadcastUseCase(store, bot, newTestLogger())

		// --- Act ---
		sent, err := uc.RunDue(ctx, now)

		// --- Assert ---
		if err != nil {
			t.Fatalf("a per-item failure must not abort the scan: %v", err)
		}
		if sent != 0 {
			t.Fatalf("expected 0 sends, got %d", sent)
		}
		if got := store.RecurringItems(ctx, "-100")[0].LastSentAt; got != 0 {
			t.Errorf("failed send must not advance last sent, got %d", got)
		}
	})

	t.Run("should delete the previous message before resending", func(t *testing.T) {
		// --- Arrange ---
		store := NewMockConfigStore()
		store.AddRecurringItem(ctx, "-100", model.RecurringItem{
			Text: "hi", IntervalMinutes: 10, DeletePrevious: true, LastMessageID: 55,
		})
		bot := NewMockTelegramBot()
		uc := NewBroadcastUseCase(store, bot, newTestLogger())

		// --- Act ---
		uc.RunDue(ctx, now)

		// --- Assert ---
		if len(bot.Deleted) != 1 || bot.Deleted[0].MsgID != 55 {
			t.Fatalf("expected previous message 55 deleted, got %+v", bot.Deleted)
		}
	})

	t.Run("should still send when deleting the previous message fails", func(t *testing.T) {
		store := NewMockConfigStore()
		store.AddRecurringItem(ctx, "-100", model.RecurringItem{
			Text: "hi", IntervalMinutes: 10, DeletePrevious: true, LastMessageID: 55,
		})
		bot := NewMockTelegramBot()
		bot.DeleteMessageFunc = func(ctx context.Context, chatID int64, messageID int) error {
			return errors.New("message to delete not found")
		}
		uc := NewBroadcastUseCase(store, bot, newTestLogger())

		if sent, _ := uc.RunDue(ctx, now); sent != 1 {
			t.Fatalf("expected the send to proceed, got %d sends", sent)
		}
	})

	t.Run("should pin the new message when configured and tolerate pin failure", func(t *testing.T) {
		// --- Arrange ---
		store := NewMockConfigStore()
		store.AddRecurringItem(ctx, "-100", model.RecurringItem{Text: "hi", IntervalMinutes: 10, PinMessage: true})
		bot := NewMockTelegramBot()
		uc := NewBroadcastUseCase(store, bot, newTestLogger())

		// --- Act ---
		uc.RunDue(ctx, now)

		// --- Assert ---
		if len(bot.Pinned) != 1 {
			t.Fatalf("expected one pin, got %d", len(bot.Pinned))
		}
		if bot.Pinned[0].MsgID != bot.SentItems[0].MsgID {
			t.Error("pin should target the freshly sent message")
		}

		// pin failure must not block the mark
		store2 := NewMockConfigStore()
		store2.AddRecurringItem(ctx, "-100", model.RecurringItem{Text: "hi", IntervalMinutes: 10, PinMessage: true})
		bot2 := NewMockTelegramBot()
		bot2.PinMessageFunc = func(ctx context.Context, chatID int64, messageID int) error {
			return errors.New("not enough rights")
		}
		uc2 := NewBroadcastUseCase(store2, bot2, newTestLogger())
		if sent, _ := uc2.RunDue(ctx, now); sent != 1 {
			t.Fatalf("pin failure must not undo the send, got %d", sent)
		}
		if got := store2.RecurringItems(ctx, "-100")[0].LastSentAt; got != now.Unix() {
			t.Errorf("expected send state advanced despite pin failure, got %d", got)
		}
	})

	t.Run("should skip tenants with malformed chat ids", func(t *testing.T) {
		store := NewMockConfigStore()
		store.AddRecurringItem(ctx, "not-a-chat-id", model.RecurringItem{Text: "hi", IntervalMinutes: 10})
		store.AddRecurringItem(ctx, "-200", model.RecurringItem{Text: "ok", IntervalMinutes: 10})
		bot := NewMockTelegramBot()
		uc := NewBroadcastUseCase(store, bot, newTestLogger())

		sent, err := uc.RunDue(ctx, now)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if sent != 1 {
			t.Fatalf("expected only the valid tenant to send, got %d", sent)
		}
		if bot.SentItems[0].ChatID != -200 {
			t.Errorf("expected send to -200, got %d", bot.SentItems[0].ChatID)
		}
	})

	t.Run("should keep scanning when marking the send fails", func(t *testing.T) {
		store := NewMockConfigStore()
		store.AddRecurringItem(ctx, "-100", model.RecurringItem{Text: "a", IntervalMinutes: 10})
		store.AddRecurringItem(ctx, "-200", model.RecurringItem{Text: "b", IntervalMinutes: 10})
		store.MarkSentFunc = func(ctx context.Context, tenant string, index int, sent model.RecurringItem, sentAt int64, messageID int) error {
			return errors.New("disk full")
		}
		bot := NewMockTelegramBot()
		uc := NewBroadcastUseCase(store, bot, newTestLogger())

		sent, err := uc.RunDue(ctx, now)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if sent != 2 {
			t.Fatalf("expected both tenants delivered, got %d", sent)
		}
	})
}
