// File: internal/infra/storage/json_store.go
package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"telegram-group-warden/internal/domain/model"

	"github.com/rs/zerolog"
)

// snapshot is the on-disk document: four tenant-keyed mappings plus the
// auto-reply map. No version field; schema changes must be additive and
// default-tolerant.
type snapshot struct {
	RecurringMessages map[string][]model.RecurringItem `json:"recurring_messages"`
	BannedWords       map[string][]string              `json:"banned_words"`
	BlockLinks        map[string]bool                  `json:"block_links"`
	BlockMentions     map[string]bool                  `json:"block_mentions"`
	AutoReplies       map[string]map[string]string     `json:"auto_replies"`
}

func emptySnapshot() snapshot {
	return snapshot{
		RecurringMessages: map[string][]model.RecurringItem{},
		BannedWords:       map[string][]string{},
		BlockLinks:        map[string]bool{},
		BlockMentions:     map[string]bool{},
		AutoReplies:       map[string]map[string]string{},
	}
}

// JSONStore is the ConfigStore backed by a single JSON snapshot file.
// Every mutation rewrites the whole document under the mutex, so callers
// observe save as atomic: either the mutation is durable or an error is
// returned.
type JSONStore struct {
	mu   sync.Mutex
	path string
	log  *zerolog.Logger

	data snapshot
	// replyOrder preserves match order for auto-reply triggers. The
	// snapshot keeps auto_replies as a plain JSON object, so on load the
	// order is rebuilt lexicographically; inserts append.
	replyOrder map[string][]string
}

func NewJSONStore(path string, logger *zerolog.Logger) *JSONStore {
	storeLog := logger.With().Str("component", "JSONStore").Logger()
	return &JSONStore{
		path:       path,
		log:        &storeLog,
		data:       emptySnapshot(),
		replyOrder: map[string][]string{},
	}
}

// Load reads the snapshot file. A missing file initializes an empty store.
func (s *JSONStore) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		s.log.Info().Str("path", s.path).Msg("no snapshot found, starting empty")
		return nil
	}
	if err != nil {
		return fmt.Errorf("read snapshot: %w", err)
	}
	data := emptySnapshot()
	if err := json.Unmarshal(b, &data); err != nil {
		return fmt.Errorf("parse snapshot: %w", err)
	}
	// nil maps sneak in when a key is absent from an older snapshot
	if data.RecurringMessages == nil {
		data.RecurringMessages = map[string][]model.RecurringItem{}
	}
	if data.BannedWords == nil {
		data.BannedWords = map[string][]string{}
	}
	if data.BlockLinks == nil {
		data.BlockLinks = map[string]bool{}
	}
	if data.BlockMentions == nil {
		data.BlockMentions = map[string]bool{}
	}
	if data.AutoReplies == nil {
		data.AutoReplies = map[string]map[string]string{}
	}
	s.data = data

	s.replyOrder = map[string][]string{}
	for tenant, replies := range s.data.AutoReplies {
		order := make([]string, 0, len(replies))
		for trigger := range replies {
			order = append(order, trigger)
		}
		sort.Strings(order)
		s.replyOrder[tenant] = order
	}
	return nil
}

// flushLocked writes the whole document. Callers hold s.mu. The write goes
// through a temp file and rename so a crash mid-write cannot truncate the
// previous snapshot.
func (s *JSONStore) flushLocked() error {
	b, err := json.MarshalIndent(&s.data, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.MkdirAll(filepath.Dir(filepath.Clean(s.path)), 0o755); err != nil {
		return fmt.Errorf("ensure snapshot dir: %w", err)
	}
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace snapshot: %w", err)
	}
	return nil
}

// ---- recurring messages ----

func (s *JSONStore) Tenants(ctx context.Context) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	tenants := make([]string, 0, len(s.data.RecurringMessages))
	for t := range s.data.RecurringMessages {
		tenants = append(tenants, t)
	}
	sort.Strings(tenants)
	return tenants
}

func (s *JSONStore) RecurringItems(ctx context.Context, tenant string) []model.RecurringItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.RecurringItem(nil), s.data.RecurringMessages[tenant]...)
}

func (s *JSONStore) AddRecurringItem(ctx context.Context, tenant string, item model.RecurringItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.RecurringMessages[tenant] = append(s.data.RecurringMessages[tenant], item)
	return s.flushLocked()
}

func (s *JSONStore) RemoveRecurringItem(ctx context.Context, tenant string, index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := s.data.RecurringMessages[tenant]
	if index < 0 || index >= len(items) {
		return nil
	}
	s.data.RecurringMessages[tenant] = append(items[:index], items[index+1:]...)
	return s.flushLocked()
}

func (s *JSONStore) MarkSent(ctx context.Context, tenant string, index int, sent model.RecurringItem, sentAt int64, messageID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := s.data.RecurringMessages[tenant]

	// A removal between the scan's read and this mark shifts indices, so
	// the index is only a hint; the pre-send snapshot identifies the item.
	if index < 0 || index >= len(items) || !sameItem(items[index], sent) {
		index = -1
		for i := range items {
			if sameItem(items[i], sent) {
				index = i
				break
			}
		}
		if index == -1 {
			return nil
		}
	}

	items[index].LastSentAt = sentAt
	if messageID != 0 {
		items[index].LastMessageID = messageID
	}
	return s.flushLocked()
}

// sameItem reports whether two item snapshots describe the same stored item,
// including its send state.
func sameItem(a, b model.RecurringItem) bool {
	return a.Text == b.Text &&
		a.MediaID == b.MediaID &&
		a.MediaType == b.MediaType &&
		a.IntervalMinutes == b.IntervalMinutes &&
		a.DeletePrevious == b.DeletePrevious &&
		a.PinMessage == b.PinMessage &&
		a.LastSentAt == b.LastSentAt &&
		a.LastMessageID == b.LastMessageID
}

// ---- moderation settings ----

func (s *JSONStore) Tenant(ctx context.Context, tenant string) model.TenantConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	return model.TenantConfig{
		BannedWords:   append([]string(nil), s.data.BannedWords[tenant]...),
		BlockLinks:    s.data.BlockLinks[tenant],
		BlockMentions: s.data.BlockMentions[tenant],
		AutoReplies:   s.autoRepliesLocked(tenant),
	}
}

func (s *JSONStore) AddBannedWord(ctx context.Context, tenant, word string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	word = strings.ToLower(word)
	for _, w := range s.data.BannedWords[tenant] {
		if w == word {
			return nil
		}
	}
	s.data.BannedWords[tenant] = append(s.data.BannedWords[tenant], word)
	return s.flushLocked()
}

func (s *JSONStore) RemoveBannedWord(ctx context.Context, tenant, word string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	word = strings.ToLower(word)
	words := s.data.BannedWords[tenant]
	kept := words[:0]
	for _, w := range words {
		if w != word {
			kept = append(kept, w)
		}
	}
	if len(kept) == len(words) {
		return nil
	}
	s.data.BannedWords[tenant] = kept
	return s.flushLocked()
}

func (s *JSONStore) BannedWords(ctx context.Context, tenant string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.data.BannedWords[tenant]...)
}

func (s *JSONStore) SetBlockLinks(ctx context.Context, tenant string, on bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.BlockLinks[tenant] = on
	return s.flushLocked()
}

func (s *JSONStore) SetBlockMentions(ctx context.Context, tenant string, on bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.BlockMentions[tenant] = on
	return s.flushLocked()
}

func (s *JSONStore) SetAutoReply(ctx context.Context, tenant, trigger, reply string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	trigger = strings.ToLower(trigger)
	if s.data.AutoReplies[tenant] == nil {
		s.data.AutoReplies[tenant] = map[string]string{}
	}
	if _, exists := s.data.AutoReplies[tenant][trigger]; !exists {
		s.replyOrder[tenant] = append(s.replyOrder[tenant], trigger)
	}
	s.data.AutoReplies[tenant][trigger] = reply
	return s.flushLocked()
}

func (s *JSONStore) RemoveAutoReply(ctx context.Context, tenant, trigger string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	trigger = strings.ToLower(trigger)
	replies := s.data.AutoReplies[tenant]
	if _, exists := replies[trigger]; !exists {
		return nil
	}
	delete(replies, trigger)
	order := s.replyOrder[tenant]
	for i, t := range order {
		if t == trigger {
			s.replyOrder[tenant] = append(order[:i], order[i+1:]...)
			break
		}
	}
	return s.flushLocked()
}

func (s *JSONStore) AutoReplies(ctx context.Context, tenant string) []model.AutoReply {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.autoRepliesLocked(tenant)
}

func (s *JSONStore) PolicyTenants(ctx context.Context) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	seen := map[string]struct{}{}
	for t := range s.data.BlockLinks {
		seen[t] = struct{}{}
	}
	for t := range s.data.BlockMentions {
		seen[t] = struct{}{}
	}
	tenants := make([]string, 0, len(seen))
	for t := range seen {
		tenants = append(tenants, t)
	}
	sort.Strings(tenants)
	return tenants
}

func (s *JSONStore) autoRepliesLocked(tenant string) []model.AutoReply {
	order := s.replyOrder[tenant]
	replies := s.data.AutoReplies[tenant]
	out := make([]model.AutoReply, 0, len(order))
	for _, trigger := range order {
		if reply, ok := replies[trigger]; ok {
			out = append(out, model.AutoReply{Trigger: trigger, Reply: reply})
		}
	}
	return out
}
