package usecase

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"telegram-group-warden/internal/domain/model"
	"telegram-group-warden/internal/domain/ports/adapter"
	"telegram-group-warden/internal/domain/ports/repository"
	"telegram-group-warden/internal/infra/metrics"

	"github.com/rs/zerolog"
)

// warningTTL is how long the "Message deleted" notice stays in the group.
const warningTTL = 3 * time.Second

var (
	urlRe     = regexp.MustCompile(`(?i)https?://[^\s]+`)
	tgLinkRe  = regexp.MustCompile(`(?i)t\.me/|telegram\.me/|telegram\.dog/`)
	mentionRe = regexp.MustCompile(`@\w+`)
)

type ModerationUseCase interface {
	// Classify evaluates one message against a tenant's config without side
	// effects. Auto-reply matching ignores the sender role; deletion
	// policies apply to non-admins only, with precedence
	// links > mentions > banned words.
	Classify(msg model.GroupMessage, cfg model.TenantConfig) model.Verdict

	// HandleGroupMessage classifies and applies side effects: sends the
	// auto-reply, deletes the offending message and posts a transient
	// warning. Transport failures are logged, never returned as a crash.
	HandleGroupMessage(ctx context.Context, msg model.GroupMessage) model.Verdict
}

type moderationUC struct {
	store repository.ConfigStore
	bot   adapter.TelegramBotAdapter
	log   *zerolog.Logger

	// delay schedules the warning removal; tests substitute a synchronous
	// version. Must not block the caller.
	delay func(d time.Duration, fn func())
}

func NewModerationUseCase(store repository.ConfigStore, bot adapter.TelegramBotAdapter, logger *zerolog.Logger) ModerationUseCase {
	modLog := logger.With().Str("component", "ModerationUC").Logger()
	return &moderationUC{
		store: store,
		bot:   bot,
		log:   &modLog,
		delay: func(d time.Duration, fn func()) { time.AfterFunc(d, fn) },
	}
}

func (uc *moderationUC) Classify(msg model.GroupMessage, cfg model.TenantConfig) model.Verdict {
	var v model.Verdict
	lower := strings.ToLower(msg.Text)

	// Auto-replies fire for everyone, first match wins.
	for _, ar := range cfg.AutoReplies {
		if strings.Contains(lower, ar.Trigger) {
			v.Reply = ar.Reply
			break
		}
	}

	// Admins bypass all deletion filters, but not the auto-reply above.
	if msg.Role == model.RoleAdmin {
		return v
	}

	switch {
	case cfg.BlockLinks && (urlRe.MatchString(msg.Text) || tgLinkRe.MatchString(msg.Text)):
		v.Delete, v.Reason = true, model.ReasonLinks
	case cfg.BlockMentions && mentionRe.MatchString(msg.Text):
		v.Delete, v.Reason = true, model.ReasonMentions
	default:
		for _, w := range cfg.BannedWords {
			if strings.Contains(lower, w) {
				v.Delete, v.Reason = true, model.ReasonBannedWord
				break
			}
		}
	}
	return v
}

func (uc *moderationUC) HandleGroupMessage(ctx context.Context, msg model.GroupMessage) model.Verdict {
	cfg := uc.store.Tenant(ctx, model.TenantID(msg.ChatID))
	v := uc.Classify(msg, cfg)

	if v.Reply != "" {
		if err := uc.bot.ReplyTo(ctx, msg.ChatID, msg.MessageID, v.Reply); err != nil {
			uc.log.Warn().Err(err).Int64("chat_id", msg.ChatID).Msg("auto-reply failed")
		} else {
			metrics.IncAutoReply()
		}
	}

	if v.Delete {
		uc.deleteAndWarn(ctx, msg, v.Reason)
	}
	return v
}

// deleteAndWarn removes the message and posts a warning that deletes itself
// after warningTTL. The removal runs on a one-shot timer so the wait never
// stalls other updates or scheduler ticks.
func (uc *moderationUC) deleteAndWarn(ctx context.Context, msg model.GroupMessage, reason model.DeleteReason) {
	if err := uc.bot.DeleteMessage(ctx, msg.ChatID, msg.MessageID); err != nil {
		uc.log.Warn().Err(err).Int64("chat_id", msg.ChatID).Int("message_id", msg.MessageID).
			Msg("could not delete message")
		return
	}
	metrics.IncDeletion(string(reason))
	uc.log.Info().Int64("chat_id", msg.ChatID).Str("reason", string(reason)).Msg("message deleted")

	warnID, err := uc.bot.SendText(ctx, msg.ChatID, fmt.Sprintf("Message deleted (%s)", reason))
	if err != nil {
		uc.log.Warn().Err(err).Int64("chat_id", msg.ChatID).Msg("could not post deletion warning")
		return
	}

	chatID := msg.ChatID
	uc.delay(warningTTL, func() {
		// The originating update is long finished; use a fresh bounded context.
		rmCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := uc.bot.DeleteMessage(rmCtx, chatID, warnID); err != nil {
			uc.log.Debug().Err(err).Int64("chat_id", chatID).Msg("could not remove warning")
		}
	})
}
