// File: internal/usecase/mocks_test.go
package usecase

import (
	"context"
	"io"
	"sort"
	"strings"
	"sync"

	"telegram-group-warden/internal/domain/model"

	"github.com/rs/zerolog"
)

// MockConfigStore is an in-memory ConfigStore for unit tests. The Func
// fields override individual methods to simulate failures.
type MockConfigStore struct {
	mu      sync.Mutex
	items   map[string][]model.RecurringItem
	configs map[string]model.TenantConfig

	AddRecurringItemFunc func(ctx context.Context, tenant string, item model.RecurringItem) error
	MarkSentFunc         func(ctx context.Context, tenant string, index int, sent model.RecurringItem, sentAt int64, messageID int) error
}

func NewMockConfigStore() *MockConfigStore {
	return &MockConfigStore{
		items:   make(map[string][]model.RecurringItem),
		configs: make(map[string]model.TenantConfig),
	}
}

func (m *MockConfigStore) Load(ctx context.Context) error { return nil }

func (m *MockConfigStore) Tenants(ctx context.Context) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.items))
	for t := range m.items {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

func (m *MockConfigStore) RecurringItems(ctx context.Context, tenant string) []model.RecurringItem {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.RecurringItem(nil), m.items[tenant]...)
}

func (m *MockConfigStore) AddRecurringItem(ctx context.Context, tenant string, item model.RecurringItem) error {
	if m.AddRecurringItemFunc != nil {
		return m.AddRecurringItemFunc(ctx, tenant, item)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[tenant] = append(m.items[tenant], item)
	return nil
}

func (m *MockConfigStore) RemoveRecurringItem(ctx context.Context, tenant string, index int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	items := m.items[tenant]
	if index < 0 || index >= len(items) {
		return nil
	}
	m.items[tenant] = append(items[:index], items[index+1:]...)
	return nil
}

func (m *MockConfigStore) MarkSent(ctx context.Context, tenant string, index int, sent model.RecurringItem, sentAt int64, messageID int) error {
	if m.MarkSentFunc != nil {
		return m.MarkSentFunc(ctx, tenant, index, sent, sentAt, messageID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	items := m.items[tenant]
	if index < 0 || index >= len(items) {
		return nil
	}
	items[index].LastSentAt = sentAt
	if messageID != 0 {
		items[index].LastMessageID = messageID
	}
	return nil
}

func (m *MockConfigStore) Tenant(ctx context.Context, tenant string) model.TenantConfig {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.configs[tenant]
}

func (m *MockConfigStore) SetTenant(tenant string, cfg model.TenantConfig) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.configs[tenant] = cfg
}

func (m *MockConfigStore) AddBannedWord(ctx context.Context, tenant, word string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cfg := m.configs[tenant]
	word = strings.ToLower(word)
	for _, w := range cfg.BannedWords {
		if w == word {
			return nil
		}
	}
	cfg.BannedWords = append(cfg.BannedWords, word)
	m.configs[tenant] = cfg
	return nil
}

func (m *MockConfigStore) RemoveBannedWord(ctx context.Context, tenant, word string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cfg := m.configs[tenant]
	word = strings.ToLower(word)
	kept := cfg.BannedWords[:0]
	for _, w := range cfg.BannedWords {
		if w != word {
			kept = append(kept, w)
		}
	}
	cfg.BannedWords = kept
	m.configs[tenant] = cfg
	return nil
}

func (m *MockConfigStore) BannedWords(ctx context.Context, tenant string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.configs[tenant].BannedWords...)
}

func (m *MockConfigStore) SetBlockLinks(ctx context.Context, tenant string, on bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cfg := m.configs[tenant]
	cfg.BlockLinks = on
	m.configs[tenant] = cfg
	return nil
}

func (m *MockConfigStore) SetBlockMentions(ctx context.Context, tenant string, on bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cfg := m.configs[tenant]
	cfg.BlockMentions = on
	m.configs[tenant] = cfg
	return nil
}

func (m *MockConfigStore) SetAutoReply(ctx context.Context, tenant, trigger, reply string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cfg := m.configs[tenant]
	trigger = strings.ToLower(trigger)
	for i, ar := range cfg.AutoReplies {
		if ar.Trigger == trigger {
			cfg.AutoReplies[i].Reply = reply
			m.configs[tenant] = cfg
			return nil
		}
	}
	cfg.AutoReplies = append(cfg.AutoReplies, model.AutoReply{Trigger: trigger, Reply: reply})
	m.configs[tenant] = cfg
	return nil
}

func (m *MockConfigStore) RemoveAutoReply(ctx context.Context, tenant, trigger string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cfg := m.configs[tenant]
	trigger = strings.ToLower(trigger)
	kept := cfg.AutoReplies[:0]
	for _, ar := range cfg.AutoReplies {
		if ar.Trigger != trigger {
			kept = append(kept, ar)
		}
	}
	cfg.AutoReplies = kept
	m.configs[tenant] = cfg
	return nil
}

func (m *MockConfigStore) AutoReplies(ctx context.Context, tenant string) []model.AutoReply {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.AutoReply(nil), m.configs[tenant].AutoReplies...)
}

func (m *MockConfigStore) PolicyTenants(ctx context.Context) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.configs))
	for t := range m.configs {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// sentMessage captures one outbound text message.
type sentMessage struct {
	ChatID int64
	Text   string
	MsgID  int
}

// MockTelegramBot records every transport call and answers with incrementing
// message IDs. The Func fields override individual methods.
type MockTelegramBot struct {
	mu         sync.Mutex
	nextID     int
	SentTexts  []sentMessage
	SentItems  []sentMessage
	Replies    []sentMessage
	Deleted    []sentMessage
	Pinned     []sentMessage
	AdminUsers map[int64]bool // userID -> is admin (for every chat)

	SendTextFunc      func(ctx context.Context, chatID int64, text string) (int, error)
	SendRecurringFunc func(ctx context.Context, chatID int64, item model.RecurringItem) (int, error)
	DeleteMessageFunc func(ctx context.Context, chatID int64, messageID int) error
	PinMessageFunc    func(ctx context.Context, chatID int64, messageID int) error
	IsChatAdminFunc   func(ctx context.Context, chatID int64, userID int64) (bool, error)
}

func NewMockTelegramBot() *MockTelegramBot {
	return &MockTelegramBot{nextID: 100, AdminUsers: make(map[int64]bool)}
}

func (b *MockTelegramBot) nextMsgID() int {
	b.nextID++
	return b.nextID
}

func (b *MockTelegramBot) SendText(ctx context.Context, chatID int64, text string) (int, error) {
	if b.SendTextFunc != nil {
		return b.SendTextFunc(ctx, chatID, text)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.nextMsgID()
	b.SentTexts = append(b.SentTexts, sentMessage{ChatID: chatID, Text: text, MsgID: id})
	return id, nil
}

func (b *MockTelegramBot) SendRecurring(ctx context.Context, chatID int64, item model.RecurringItem) (int, error) {
	if b.SendRecurringFunc != nil {
		return b.SendRecurringFunc(ctx, chatID, item)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.nextMsgID()
	b.SentItems = append(b.SentItems, sentMessage{ChatID: chatID, Text: item.Text, MsgID: id})
	return id, nil
}

func (b *MockTelegramBot) ReplyTo(ctx context.Context, chatID int64, messageID int, text string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Replies = append(b.Replies, sentMessage{ChatID: chatID, Text: text, MsgID: messageID})
	return nil
}

func (b *MockTelegramBot) DeleteMessage(ctx context.Context, chatID int64, messageID int) error {
	if b.DeleteMessageFunc != nil {
		return b.DeleteMessageFunc(ctx, chatID, messageID)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Deleted = append(b.Deleted, sentMessage{ChatID: chatID, MsgID: messageID})
	return nil
}

func (b *MockTelegramBot) PinMessage(ctx context.Context, chatID int64, messageID int) error {
	if b.PinMessageFunc != nil {
		return b.PinMessageFunc(ctx, chatID, messageID)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Pinned = append(b.Pinned, sentMessage{ChatID: chatID, MsgID: messageID})
	return nil
}

func (b *MockTelegramBot) IsChatAdmin(ctx context.Context, chatID int64, userID int64) (bool, error) {
	if b.IsChatAdminFunc != nil {
		return b.IsChatAdminFunc(ctx, chatID, userID)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.AdminUsers[userID], nil
}

// newTestLogger creates a silent zerolog.Logger for use in tests.
func newTestLogger() *zerolog.Logger {
	logger := zerolog.New(io.Discard)
	return &logger
}
