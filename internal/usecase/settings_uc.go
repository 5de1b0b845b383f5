package usecase

import (
	"context"
	"fmt"
	"strings"

	"telegram-group-warden/internal/domain"
	"telegram-group-warden/internal/domain/model"
	"telegram-group-warden/internal/domain/ports/adapter"
	"telegram-group-warden/internal/domain/ports/repository"

	"github.com/rs/zerolog"
)

// SettingsUseCase holds the admin-gated configuration operations behind the
// command surface and the menu toggles. Every mutator re-verifies that the
// caller is an admin of the target chat, regardless of where the command
// was issued.
type SettingsUseCase interface {
	AddBannedWord(ctx context.Context, userID, chatID int64, word string) error
	RemoveBannedWord(ctx context.Context, userID, chatID int64, word string) error
	ListBannedWords(ctx context.Context, userID, chatID int64) ([]string, error)

	SetAutoReply(ctx context.Context, userID, chatID int64, trigger, reply string) error
	RemoveAutoReply(ctx context.Context, userID, chatID int64, trigger string) error
	ListAutoReplies(ctx context.Context, userID, chatID int64) ([]model.AutoReply, error)

	SetBlockLinks(ctx context.Context, userID, chatID int64, on bool) error
	SetBlockMentions(ctx context.Context, userID, chatID int64, on bool) error
	// ToggleBlockLinks / ToggleBlockMentions flip the flag and return the
	// new value.
	ToggleBlockLinks(ctx context.Context, userID, chatID int64) (bool, error)
	ToggleBlockMentions(ctx context.Context, userID, chatID int64) (bool, error)

	RemoveRecurringItem(ctx context.Context, userID, chatID int64, index int) error
}

type settingsUC struct {
	store repository.ConfigStore
	bot   adapter.TelegramBotAdapter
	log   *zerolog.Logger
}

func NewSettingsUseCase(store repository.ConfigStore, bot adapter.TelegramBotAdapter, logger *zerolog.Logger) SettingsUseCase {
	setLog := logger.With().Str("component", "SettingsUC").Logger()
	return &settingsUC{store: store, bot: bot, log: &setLog}
}

// requireAdmin is the guard composed into every mutating operation.
func (uc *settingsUC) requireAdmin(ctx context.Context, chatID, userID int64) error {
	ok, err := uc.bot.IsChatAdmin(ctx, chatID, userID)
	if err != nil {
		return fmt.Errorf("verify admin for chat %d: %w", chatID, err)
	}
	if !ok {
		return domain.ErrUnauthorized
	}
	return nil
}

func (uc *settingsUC) AddBannedWord(ctx context.Context, userID, chatID int64, word string) error {
	if strings.TrimSpace(word) == "" {
		return domain.ErrInvalidArgument
	}
	if err := uc.requireAdmin(ctx, chatID, userID); err != nil {
		return err
	}
	return uc.store.AddBannedWord(ctx, model.TenantID(chatID), word)
}

func (uc *settingsUC) RemoveBannedWord(ctx context.Context, userID, chatID int64, word string) error {
	if strings.TrimSpace(word) == "" {
		return domain.ErrInvalidArgument
	}
	if err := uc.requireAdmin(ctx, chatID, userID); err != nil {
		return err
	}
	return uc.store.RemoveBannedWord(ctx, model.TenantID(chatID), word)
}

func (uc *settingsUC) ListBannedWords(ctx context.Context, userID, chatID int64) ([]string, error) {
	if err := uc.requireAdmin(ctx, chatID, userID); err != nil {
		return nil, err
	}
	return uc.store.BannedWords(ctx, model.TenantID(chatID)), nil
}

func (uc *settingsUC) SetAutoReply(ctx context.Context, userID, chatID int64, trigger, reply string) error {
	if strings.TrimSpace(trigger) == "" || strings.TrimSpace(reply) == "" {
		return domain.ErrInvalidArgument
	}
	if err := uc.requireAdmin(ctx, chatID, userID); err != nil {
		return err
	}
	return uc.store.SetAutoReply(ctx, model.TenantID(chatID), strings.TrimSpace(trigger), strings.TrimSpace(reply))
}

func (uc *settingsUC) RemoveAutoReply(ctx context.Context, userID, chatID int64, trigger string) error {
	if strings.TrimSpace(trigger) == "" {
		return domain.ErrInvalidArgument
	}
	if err := uc.requireAdmin(ctx, chatID, userID); err != nil {
		return err
	}
	return uc.store.RemoveAutoReply(ctx, model.TenantID(chatID), strings.TrimSpace(trigger))
}

func (uc *settingsUC) ListAutoReplies(ctx context.Context, userID, chatID int64) ([]model.AutoReply, error) {
	if err := uc.requireAdmin(ctx, chatID, userID); err != nil {
		return nil, err
	}
	return uc.store.AutoReplies(ctx, model.TenantID(chatID)), nil
}

func (uc *settingsUC) SetBlockLinks(ctx context.Context, userID, chatID int64, on bool) error {
	if err := uc.requireAdmin(ctx, chatID, userID); err != nil {
		return err
	}
	return uc.store.SetBlockLinks(ctx, model.TenantID(chatID), on)
}

func (uc *settingsUC) SetBlockMentions(ctx context.Context, userID, chatID int64, on bool) error {
	if err := uc.requireAdmin(ctx, chatID, userID); err != nil {
		return err
	}
	return uc.store.SetBlockMentions(ctx, model.TenantID(chatID), on)
}

func (uc *settingsUC) ToggleBlockLinks(ctx context.Context, userID, chatID int64) (bool, error) {
	if err := uc.requireAdmin(ctx, chatID, userID); err != nil {
		return false, err
	}
	tenant := model.TenantID(chatID)
	next := !uc.store.Tenant(ctx, tenant).BlockLinks
	return next, uc.store.SetBlockLinks(ctx, tenant, next)
}

func (uc *settingsUC) ToggleBlockMentions(ctx context.Context, userID, chatID int64) (bool, error) {
	if err := uc.requireAdmin(ctx, chatID, userID); err != nil {
		return false, err
	}
	tenant := model.TenantID(chatID)
	next := !uc.store.Tenant(ctx, tenant).BlockMentions
	return next, uc.store.SetBlockMentions(ctx, tenant, next)
}

func (uc *settingsUC) RemoveRecurringItem(ctx context.Context, userID, chatID int64, index int) error {
	if err := uc.requireAdmin(ctx, chatID, userID); err != nil {
		return err
	}
	return uc.store.RemoveRecurringItem(ctx, model.TenantID(chatID), index)
}

// TruthyToken reports whether a user-supplied toggle token means "on".
func TruthyToken(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "on", "true", "1", "yes", "enable":
		return true
	}
	return false
}
