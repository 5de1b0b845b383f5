package model

import (
	"strconv"
	"time"

	"telegram-group-warden/internal/domain"
)

type MediaType string

const (
	MediaPhoto     MediaType = "photo"
	MediaVideo     MediaType = "video"
	MediaAnimation MediaType = "animation"
)

// Button is a single URL button rendered under a recurring message.
type Button struct {
	Label string `json:"text"`
	URL   string `json:"url"`
}

// RecurringItem is a persisted broadcast definition for one group.
// LastSentAt and LastMessageID are advanced only by the scheduler.
type RecurringItem struct {
	Text            string    `json:"text,omitempty"`
	MediaID         string    `json:"media,omitempty"`
	MediaType       MediaType `json:"media_type,omitempty"`
	Buttons         []Button  `json:"buttons,omitempty"`
	IntervalMinutes int       `json:"interval"`
	DeletePrevious  bool      `json:"delete_previous"`
	PinMessage      bool      `json:"pin_message"`
	LastSentAt      int64     `json:"last_sent"`
	LastMessageID   int       `json:"last_message_id,omitempty"`
}

// Due reports whether the item is eligible for (re)sending at now.
// Eligibility is computed from absolute elapsed time, so downtime is
// absorbed on the first tick after restart.
func (it *RecurringItem) Due(now time.Time) bool {
	return now.Unix()-it.LastSentAt >= int64(it.IntervalMinutes)*60
}

// HasContent reports whether the item carries anything sendable.
func (it *RecurringItem) HasContent() bool {
	return it.Text != "" || it.MediaID != ""
}

func (it *RecurringItem) Validate() error {
	if it.IntervalMinutes < 1 {
		return domain.ErrInvalidArgument
	}
	if !it.HasContent() {
		return domain.ErrInvalidArgument
	}
	return nil
}

// AutoReply pairs a lower-cased trigger with its canned reply. Replies are
// kept as an ordered list so first-match-wins stays deterministic.
type AutoReply struct {
	Trigger string
	Reply   string
}

// TenantID converts a platform chat ID to the canonical string key used by
// the store. Every caller must go through here; ad-hoc conversions are how
// duplicate tenants are born.
func TenantID(chatID int64) string {
	return strconv.FormatInt(chatID, 10)
}

// TenantConfig is a read snapshot of one group's moderation settings.
type TenantConfig struct {
	BannedWords   []string
	BlockLinks    bool
	BlockMentions bool
	AutoReplies   []AutoReply
}
