// File: internal/domain/ports/repository/store.go
package repository

import (
	"context"

	"telegram-group-warden/internal/domain/model"
)

// ConfigStore owns all durable tenant configuration. Implementations must
// serialize mutations and flush the whole snapshot before returning, so a
// successful mutator call means the change is durable.
//
// Tenant keys are the canonical string form of the chat ID; use
// model.TenantID to produce them.
type ConfigStore interface {
	// Load reads the durable snapshot. A missing snapshot is not an error:
	// the store starts empty.
	Load(ctx context.Context) error

	// Recurring messages
	Tenants(ctx context.Context) []string
	RecurringItems(ctx context.Context, tenant string) []model.RecurringItem
	AddRecurringItem(ctx context.Context, tenant string, item model.RecurringItem) error
	// RemoveRecurringItem is a no-op for an out-of-bounds index.
	RemoveRecurringItem(ctx context.Context, tenant string, index int) error
	// MarkSent records a successful send: last-sent time and, when
	// messageID is non-zero, the platform message ID. sent is the item as
	// read before the send; if the slice shifted under the caller (an item
	// was removed mid-scan) the mark follows the item, not the index, and
	// is dropped when the item no longer exists.
	MarkSent(ctx context.Context, tenant string, index int, sent model.RecurringItem, sentAt int64, messageID int) error

	// Moderation settings
	Tenant(ctx context.Context, tenant string) model.TenantConfig
	// AddBannedWord lower-cases word; adding an existing word is a no-op.
	AddBannedWord(ctx context.Context, tenant, word string) error
	RemoveBannedWord(ctx context.Context, tenant, word string) error
	BannedWords(ctx context.Context, tenant string) []string
	SetBlockLinks(ctx context.Context, tenant string, on bool) error
	SetBlockMentions(ctx context.Context, tenant string, on bool) error
	// SetAutoReply lower-cases trigger and replaces an existing mapping.
	SetAutoReply(ctx context.Context, tenant, trigger, reply string) error
	RemoveAutoReply(ctx context.Context, tenant, trigger string) error
	// AutoReplies returns replies in deterministic match order.
	AutoReplies(ctx context.Context, tenant string) []model.AutoReply
	// PolicyTenants lists tenants with a link or mention policy on record.
	PolicyTenants(ctx context.Context) []string
}
