// File: internal/infra/storage/json_store_test.go
package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"telegram-group-warden/internal/domain/model"

	"github.com/rs/zerolog"
)

func newTestStore(t *testing.T) (*JSONStore, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "warden_data.json")
	logger := zerolog.New(io.Discard)
	return NewJSONStore(path, &logger), path
}

func TestJSONStoreLoad(t *testing.T) {
	ctx := context.Background()

	t.Run("should start empty when the snapshot file is missing", func(t *testing.T) {
		s, _ := newTestStore(t)
		if err := s.Load(ctx); err != nil {
			t.Fatalf("load failed: %v", err)
		}
		if got := s.Tenants(ctx); len(got) != 0 {
			t.Fatalf("expected no tenants, got %v", got)
		}
	})

	t.Run("should fail on a malformed snapshot", func(t *testing.T) {
		s, path := newTestStore(t)
		if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
			t.Fatal(err)
		}
		if err := s.Load(ctx); err == nil {
			t.Fatal("expected a parse error")
		}
	})

	t.Run("should tolerate snapshots missing newer keys", func(t *testing.T) {
		s, path := newTestStore(t)
		if err := os.WriteFile(path, []byte(`{"banned_words":{"-100":["spam"]}}`), 0o644); err != nil {
			t.Fatal(err)
		}
		if err := s.Load(ctx); err != nil {
			t.Fatalf("load failed: %v", err)
		}
		if words := s.BannedWords(ctx, "-100"); len(words) != 1 || words[0] != "spam" {
			t.Fatalf("expected the banned word to survive, got %v", words)
		}
		// mutating a map that was absent from the file must not panic
		if err := s.SetBlockLinks(ctx, "-100", true); err != nil {
			t.Fatalf("set failed: %v", err)
		}
	})
}

func TestJSONStoreRecurring(t *testing.T) {
	ctx := context.Background()

	t.Run("should persist items across a reload", func(t *testing.T) {
		// --- Arrange ---
		s, path := newTestStore(t)
		item := model.RecurringItem{Text: "hello", IntervalMinutes: 15, PinMessage: true}

		// --- Act ---
		if err := s.AddRecurringItem(ctx, "-100", item); err != nil {
			t.Fatalf("add failed: %v", err)
		}
		if err := s.MarkSent(ctx, "-100", 0, item, 1234, 42); err != nil {
			t.Fatalf("mark failed: %v", err)
		}

		logger := zerolog.New(io.Discard)
		reloaded := NewJSONStore(path, &logger)
		if err := reloaded.Load(ctx); err != nil {
			t.Fatalf("reload failed: %v", err)
		}

		// --- Assert ---
		items := reloaded.RecurringItems(ctx, "-100")
		if len(items) != 1 {
			t.Fatalf("expected one item, got %d", len(items))
		}
		got := items[0]
		if got.Text != "hello" || got.IntervalMinutes != 15 || !got.PinMessage {
			t.Errorf("item mismatch: %+v", got)
		}
		if got.LastSentAt != 1234 || got.LastMessageID != 42 {
			t.Errorf("send state mismatch: %+v", got)
		}
	})

	t.Run("should ignore out-of-bounds removals and marks", func(t *testing.T) {
		s, _ := newTestStore(t)
		if err := s.RemoveRecurringItem(ctx, "-100", 3); err != nil {
			t.Fatalf("oob removal must be a no-op, got %v", err)
		}
		if err := s.MarkSent(ctx, "-100", 0, model.RecurringItem{}, 1, 1); err != nil {
			t.Fatalf("oob mark must be a no-op, got %v", err)
		}
	})

	t.Run("should follow the item when a removal shifted indices mid-scan", func(t *testing.T) {
		// --- Arrange ---
		s, _ := newTestStore(t)
		a := model.RecurringItem{Text: "a", IntervalMinutes: 1}
		b := model.RecurringItem{Text: "b", IntervalMinutes: 1}
		s.AddRecurringItem(ctx, "-100", a)
		s.AddRecurringItem(ctx, "-100", b)

		// a scan read b at index 1, then item a was deleted concurrently
		if err := s.RemoveRecurringItem(ctx, "-100", 0); err != nil {
			t.Fatalf("remove failed: %v", err)
		}

		// --- Act ---
		if err := s.MarkSent(ctx, "-100", 1, b, 999, 7); err != nil {
			t.Fatalf("mark failed: %v", err)
		}

		// --- Assert ---
		items := s.RecurringItems(ctx, "-100")
		if len(items) != 1 || items[0].Text != "b" {
			t.Fatalf("expected only item b, got %v", items)
		}
		if items[0].LastSentAt != 999 || items[0].LastMessageID != 7 {
			t.Errorf("mark must land on b despite the stale index, got %+v", items[0])
		}
	})

	t.Run("should drop the mark when the sent item was removed", func(t *testing.T) {
		s, _ := newTestStore(t)
		a := model.RecurringItem{Text: "a", IntervalMinutes: 1}
		b := model.RecurringItem{Text: "b", IntervalMinutes: 1}
		s.AddRecurringItem(ctx, "-100", a)
		s.AddRecurringItem(ctx, "-100", b)

		// the item that was just sent got deleted mid-scan
		if err := s.RemoveRecurringItem(ctx, "-100", 1); err != nil {
			t.Fatalf("remove failed: %v", err)
		}
		if err := s.MarkSent(ctx, "-100", 1, b, 999, 7); err != nil {
			t.Fatalf("mark on a removed item must be a no-op, got %v", err)
		}
		if got := s.RecurringItems(ctx, "-100")[0]; got.LastSentAt != 0 {
			t.Errorf("the surviving item must stay untouched, got %+v", got)
		}
	})

	t.Run("should remove the addressed item only", func(t *testing.T) {
		s, _ := newTestStore(t)
		s.AddRecurringItem(ctx, "-100", model.RecurringItem{Text: "a", IntervalMinutes: 1})
		s.AddRecurringItem(ctx, "-100", model.RecurringItem{Text: "b", IntervalMinutes: 1})

		if err := s.RemoveRecurringItem(ctx, "-100", 0); err != nil {
			t.Fatalf("remove failed: %v", err)
		}
		items := s.RecurringItems(ctx, "-100")
		if len(items) != 1 || items[0].Text != "b" {
			t.Fatalf("expected only item b to remain, got %v", items)
		}
	})
}

func TestJSONStoreModeration(t *testing.T) {
	ctx := context.Background()

	t.Run("should lower-case and de-duplicate banned words", func(t *testing.T) {
		s, _ := newTestStore(t)
		s.AddBannedWord(ctx, "-100", "Spam")
		s.AddBannedWord(ctx, "-100", "SPAM")
		s.AddBannedWord(ctx, "-100", "scam")

		words := s.BannedWords(ctx, "-100")
		if len(words) != 2 || words[0] != "spam" || words[1] != "scam" {
			t.Fatalf("expected [spam scam], got %v", words)
		}

		s.RemoveBannedWord(ctx, "-100", "SPAM")
		if words := s.BannedWords(ctx, "-100"); len(words) != 1 || words[0] != "scam" {
			t.Fatalf("expected [scam], got %v", words)
		}
	})

	t.Run("should keep auto replies in insertion order until reload", func(t *testing.T) {
		// --- Arrange ---
		s, path := newTestStore(t)
		s.SetAutoReply(ctx, "-100", "zz", "last trigger")
		s.SetAutoReply(ctx, "-100", "aa", "first trigger")

		// --- Act / Assert ---
		replies := s.AutoReplies(ctx, "-100")
		if len(replies) != 2 || replies[0].Trigger != "zz" || replies[1].Trigger != "aa" {
			t.Fatalf("expected insertion order [zz aa], got %v", replies)
		}

		// order degrades to lexicographic after a reload; it stays deterministic
		logger := zerolog.New(io.Discard)
		reloaded := NewJSONStore(path, &logger)
		if err := reloaded.Load(ctx); err != nil {
			t.Fatalf("reload failed: %v", err)
		}
		replies = reloaded.AutoReplies(ctx, "-100")
		if len(replies) != 2 || replies[0].Trigger != "aa" || replies[1].Trigger != "zz" {
			t.Fatalf("expected lexicographic order [aa zz], got %v", replies)
		}
	})

	t.Run("should replace the reply of an existing trigger in place", func(t *testing.T) {
		s, _ := newTestStore(t)
		s.SetAutoReply(ctx, "-100", "hi", "old")
		s.SetAutoReply(ctx, "-100", "HI", "new")

		replies := s.AutoReplies(ctx, "-100")
		if len(replies) != 1 || replies[0].Reply != "new" {
			t.Fatalf("expected one updated reply, got %v", replies)
		}
	})

	t.Run("should list policy tenants across both flags", func(t *testing.T) {
		s, _ := newTestStore(t)
		s.SetBlockLinks(ctx, "-100", true)
		s.SetBlockMentions(ctx, "-200", false)

		tenants := s.PolicyTenants(ctx)
		if len(tenants) != 2 || tenants[0] != "-100" || tenants[1] != "-200" {
			t.Fatalf("expected [-100 -200], got %v", tenants)
		}
	})

	t.Run("should assemble a tenant snapshot with all settings", func(t *testing.T) {
		s, _ := newTestStore(t)
		s.AddBannedWord(ctx, "-100", "spam")
		s.SetBlockLinks(ctx, "-100", true)
		s.SetAutoReply(ctx, "-100", "rules", "read the pin")

		cfg := s.Tenant(ctx, "-100")
		if !cfg.BlockLinks || cfg.BlockMentions {
			t.Errorf("flag mismatch: %+v", cfg)
		}
		if len(cfg.BannedWords) != 1 || len(cfg.AutoReplies) != 1 {
			t.Errorf("settings mismatch: %+v", cfg)
		}
	})
}
