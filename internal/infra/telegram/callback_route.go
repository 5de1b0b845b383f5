// File: internal/infra/telegram/callback_route.go
package telegram

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// cbHandler receives the tapping user, the chat the button lives in (the
// private chat for every menu) and the raw callback data.
type cbHandler func(ctx context.Context, userID, chatID int64, data string) error

type prefixCB struct {
	Prefix string
	Fn     cbHandler
}

func (r *RealTelegramBotAdapter) cbRoutes() map[string]cbHandler {
	return map[string]cbHandler{
		"back_main":         r.mainMenuCBRoute,
		"menu_recurring":    r.recurringMenuCBRoute,
		"menu_banned_words": r.bannedWordsMenuCBRoute,
		"menu_auto_replies": r.autoRepliesMenuCBRoute,
		"menu_links":        r.linksMenuCBRoute,
		"menu_mentions":     r.mentionsMenuCBRoute,
		"menu_help":         r.helpMenuCBRoute,

		"recurring_add":  r.wizardStartCBRoute,
		"recurring_list": r.recurringListCBRoute,
		"confirm_save":   r.wizardSaveCBRoute,
		"wizard_cancel":  r.wizardCancelCBRoute,

		"opt_delete_yes": r.deleteOptionCBRoute(true),
		"opt_delete_no":  r.deleteOptionCBRoute(false),
		"opt_pin_yes":    r.pinOptionCBRoute(true),
		"opt_pin_no":     r.pinOptionCBRoute(false),
	}
}

// Prefix-match callbacks
func (r *RealTelegramBotAdapter) cbPrefixRoutes() []prefixCB {
	return []prefixCB{
		{Prefix: "delrec_", Fn: r.deleteRecurringCBRoute},
		{Prefix: "toggle_links_", Fn: r.toggleLinksCBRoute},
		{Prefix: "toggle_mentions_", Fn: r.toggleMentionsCBRoute},
	}
}

func (r *RealTelegramBotAdapter) handleQuery(ctx context.Context, query *tgbotapi.CallbackQuery) error {
	// Always acknowledge so the client stops the spinner.
	defer func() { _, _ = r.bot.Request(tgbotapi.NewCallback(query.ID, "")) }()

	if query.From == nil || query.Message == nil {
		return nil
	}
	userID := query.From.ID
	chatID := query.Message.Chat.ID
	data := query.Data

	if h, ok := r.cbRoutes()[data]; ok {
		return h(ctx, userID, chatID, data)
	}
	for _, p := range r.cbPrefixRoutes() {
		if strings.HasPrefix(data, p.Prefix) {
			return p.Fn(ctx, userID, chatID, strings.TrimPrefix(data, p.Prefix))
		}
	}
	r.log.Debug().Str("data", data).Msg("unknown callback")
	return nil
}

// ---- menu navigation ----

func (r *RealTelegramBotAdapter) mainMenuCBRoute(ctx context.Context, _, chatID int64, _ string) error {
	return r.sendMainMenu(ctx, chatID, mainMenuIntro)
}

func (r *RealTelegramBotAdapter) recurringMenuCBRoute(ctx context.Context, _, chatID int64, _ string) error {
	return r.sendRecurringMenu(ctx, chatID)
}

func (r *RealTelegramBotAdapter) recurringListCBRoute(ctx context.Context, _, chatID int64, _ string) error {
	return r.sendRecurringList(ctx, chatID)
}

func (r *RealTelegramBotAdapter) bannedWordsMenuCBRoute(ctx context.Context, _, chatID int64, _ string) error {
	return r.sendBannedWordsMenu(ctx, chatID)
}

func (r *RealTelegramBotAdapter) autoRepliesMenuCBRoute(ctx context.Context, _, chatID int64, _ string) error {
	return r.sendAutoRepliesMenu(ctx, chatID)
}

func (r *RealTelegramBotAdapter) linksMenuCBRoute(ctx context.Context, _, chatID int64, _ string) error {
	return r.sendPolicyMenu(ctx, chatID, policyLinks)
}

func (r *RealTelegramBotAdapter) mentionsMenuCBRoute(ctx context.Context, _, chatID int64, _ string) error {
	return r.sendPolicyMenu(ctx, chatID, policyMentions)
}

func (r *RealTelegramBotAdapter) helpMenuCBRoute(ctx context.Context, _, chatID int64, _ string) error {
	return r.sendButtons(ctx, chatID, helpText, [][]inlineButton{
		{{Text: "« Back", Data: "back_main"}},
	})
}

// ---- wizard ----

func (r *RealTelegramBotAdapter) wizardStartCBRoute(ctx context.Context, userID, chatID int64, _ string) error {
	return r.sendPrompt(ctx, chatID, r.wizard.Start(ctx, userID))
}

func (r *RealTelegramBotAdapter) wizardSaveCBRoute(ctx context.Context, userID, chatID int64, _ string) error {
	prompt, err := r.wizard.Save(ctx, userID)
	if err != nil {
		return r.replyUsecaseErr(ctx, chatID, err, "")
	}
	if err := r.sendPrompt(ctx, chatID, prompt); err != nil {
		return err
	}
	return r.sendMainMenu(ctx, chatID, mainMenuIntro)
}

func (r *RealTelegramBotAdapter) wizardCancelCBRoute(ctx context.Context, userID, chatID int64, _ string) error {
	prompt, err := r.wizard.Cancel(ctx, userID)
	if err != nil {
		return r.replyUsecaseErr(ctx, chatID, err, "")
	}
	return r.sendPrompt(ctx, chatID, prompt)
}

func (r *RealTelegramBotAdapter) deleteOptionCBRoute(deletePrevious bool) cbHandler {
	return func(ctx context.Context, userID, chatID int64, _ string) error {
		prompt, err := r.wizard.SetDeleteOption(ctx, userID, deletePrevious)
		if err != nil {
			return r.replyUsecaseErr(ctx, chatID, err, "")
		}
		return r.sendPrompt(ctx, chatID, prompt)
	}
}

func (r *RealTelegramBotAdapter) pinOptionCBRoute(pin bool) cbHandler {
	return func(ctx context.Context, userID, chatID int64, _ string) error {
		prompt, err := r.wizard.SetPinOption(ctx, userID, pin)
		if err != nil {
			return r.replyUsecaseErr(ctx, chatID, err, "")
		}
		return r.sendPrompt(ctx, chatID, prompt)
	}
}

// ---- prefix routes ----

// deleteRecurringCBRoute consumes "<groupChatId>_<index>"; the group id is
// negative for supergroups, so split on the last underscore.
func (r *RealTelegramBotAdapter) deleteRecurringCBRoute(ctx context.Context, userID, chatID int64, rest string) error {
	cut := strings.LastIndex(rest, "_")
	if cut <= 0 {
		return nil
	}
	groupID, err := strconv.ParseInt(rest[:cut], 10, 64)
	if err != nil {
		return nil
	}
	index, err := strconv.Atoi(rest[cut+1:])
	if err != nil {
		return nil
	}
	if err := r.settings.RemoveRecurringItem(ctx, userID, groupID, index); err != nil {
		return r.replyUsecaseErr(ctx, chatID, err, "")
	}
	if err := r.sendPlain(ctx, chatID, "Recurring message deleted."); err != nil {
		return err
	}
	return r.sendRecurringList(ctx, chatID)
}

func (r *RealTelegramBotAdapter) toggleLinksCBRoute(ctx context.Context, userID, chatID int64, rest string) error {
	groupID, err := strconv.ParseInt(rest, 10, 64)
	if err != nil {
		return nil
	}
	on, err := r.settings.ToggleBlockLinks(ctx, userID, groupID)
	if err != nil {
		return r.replyUsecaseErr(ctx, chatID, err, "")
	}
	if err := r.sendPlain(ctx, chatID,
		fmt.Sprintf("Link blocking for %d: %s", groupID, onOff(on))); err != nil {
		return err
	}
	return r.sendPolicyMenu(ctx, chatID, policyLinks)
}

func (r *RealTelegramBotAdapter) toggleMentionsCBRoute(ctx context.Context, userID, chatID int64, rest string) error {
	groupID, err := strconv.ParseInt(rest, 10, 64)
	if err != nil {
		return nil
	}
	on, err := r.settings.ToggleBlockMentions(ctx, userID, groupID)
	if err != nil {
		return r.replyUsecaseErr(ctx, chatID, err, "")
	}
	if err := r.sendPlain(ctx, chatID,
		fmt.Sprintf("Mention blocking for %d: %s", groupID, onOff(on))); err != nil {
		return err
	}
	return r.sendPolicyMenu(ctx, chatID, policyMentions)
}
