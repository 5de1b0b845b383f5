package usecase

import (
	"context"
	"strconv"
	"time"

	"telegram-group-warden/internal/domain/ports/adapter"
	"telegram-group-warden/internal/domain/ports/repository"
	"telegram-group-warden/internal/infra/metrics"

	"github.com/rs/zerolog"
)

// BroadcastUseCase re-sends every due recurring item. Delivery is
// at-least-once: the last-sent time only advances after a successful send,
// so a failed send leaves the item eligible for the next tick.
type BroadcastUseCase interface {
	// RunDue scans all tenants and sends every item whose interval has
	// elapsed at now. Returns the number of successful sends. Per-item
	// failures are logged and never abort the scan.
	RunDue(ctx context.Context, now time.Time) (int, error)
}

type broadcastUC struct {
	store repository.ConfigStore
	bot   adapter.TelegramBotAdapter
	log   *zerolog.Logger
}

func NewBroadcastUseCase(store repository.ConfigStore, bot adapter.TelegramBotAdapter, logger *zerolog.Logger) BroadcastUseCase {
	bcLog := logger.With().Str("component", "BroadcastUC").Logger()
	return &broadcastUC{store: store, bot: bot, log: &bcLog}
}

func (uc *broadcastUC) RunDue(ctx context.Context, now time.Time) (int, error) {
	sent := 0
	for _, tenant := range uc.store.Tenants(ctx) {
		chatID, err := strconv.ParseInt(tenant, 10, 64)
		if err != nil {
			uc.log.Warn().Str("tenant", tenant).Msg("skipping tenant with malformed chat id")
			continue
		}
		for i, item := range uc.store.RecurringItems(ctx, tenant) {
			if !item.Due(now) {
				continue
			}

			// Best effort: a stale previous message must not block the new send.
			if item.DeletePrevious && item.LastMessageID != 0 {
				if err := uc.bot.DeleteMessage(ctx, chatID, item.LastMessageID); err != nil {
					uc.log.Warn().Err(err).Int64("chat_id", chatID).
						Int("message_id", item.LastMessageID).
						Msg("could not delete previous broadcast")
				}
			}

			msgID, err := uc.bot.SendRecurring(ctx, chatID, item)
			if err != nil {
				metrics.IncBroadcast("error")
				uc.log.Error().Err(err).Int64("chat_id", chatID).Int("item", i).
					Msg("broadcast send failed, will retry next tick")
				continue
			}
			metrics.IncBroadcast("ok")
			sent++

			if item.PinMessage {
				if err := uc.bot.PinMessage(ctx, chatID, msgID); err != nil {
					metrics.IncPin("error")
					uc.log.Warn().Err(err).Int64("chat_id", chatID).Msg("could not pin broadcast")
				} else {
					metrics.IncPin("ok")
				}
			}

			if err := uc.store.MarkSent(ctx, tenant, i, item, now.Unix(), msgID); err != nil {
				// Losing the flush means a duplicate send after restart;
				// loud logging beats silent config loss.
				uc.log.Error().Err(err).Str("tenant", tenant).Int("item", i).
					Msg("flushing send state failed")
			}
		}
	}
	return sent, nil
}
