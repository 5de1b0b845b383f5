// File: internal/infra/telegram/menus.go
package telegram

import (
	"context"
	"fmt"
	"strings"
)

const mainMenuIntro = "Group Warden\n\nManage recurring messages and moderation for your groups:"

const helpText = `Commands:
/start - open the main menu
/cancel - abort the message wizard
/chatid - show the current chat ID (works in groups)
/help - this text

Moderation (use in private chat, admin of the target group required):
/addword <chatId> <word>
/delword <chatId> <word>
/listwords <chatId>
/addreply <chatId> <trigger> | <reply>
/delreply <chatId> <trigger>
/listreplies <chatId>
/setlinks <chatId> <on|off>
/setmentions <chatId> <on|off>

Add me to your group as an admin with the Delete Messages and
Pin Messages permissions, then use /chatid there to get the ID.`

// policyKind selects which boolean policy a menu shows and toggles.
type policyKind struct {
	Title        string
	TogglePrefix string
	Command      string
	Enabled      func(blockLinks, blockMentions bool) bool
}

var (
	policyLinks = policyKind{
		Title:        "Link Blocking",
		TogglePrefix: "toggle_links_",
		Command:      "/setlinks",
		Enabled:      func(links, _ bool) bool { return links },
	}
	policyMentions = policyKind{
		Title:        "Mention Blocking",
		TogglePrefix: "toggle_mentions_",
		Command:      "/setmentions",
		Enabled:      func(_, mentions bool) bool { return mentions },
	}
)

// sendMainMenu shows the main actions as inline buttons.
func (r *RealTelegramBotAdapter) sendMainMenu(ctx context.Context, chatID int64, intro string) error {
	rows := [][]inlineButton{
		{{Text: "🔁 Recurring Messages", Data: "menu_recurring"}},
		{{Text: "🚫 Banned Words", Data: "menu_banned_words"}},
		{{Text: "💬 Auto Replies", Data: "menu_auto_replies"}},
		{{Text: "🔗 Link Blocking", Data: "menu_links"}},
		{{Text: "👤 Mention Blocking", Data: "menu_mentions"}},
		{{Text: "ℹ️ Help", Data: "menu_help"}},
	}
	return r.sendButtons(ctx, chatID, intro, rows)
}

func (r *RealTelegramBotAdapter) sendRecurringMenu(ctx context.Context, chatID int64) error {
	rows := [][]inlineButton{
		{{Text: "➕ Add New Message", Data: "recurring_add"}},
		{{Text: "📋 View All Messages", Data: "recurring_list"}},
		{{Text: "« Back", Data: "back_main"}},
	}
	return r.sendButtons(ctx, chatID, "Recurring Messages\n\nSchedule messages the bot re-sends on an interval:", rows)
}

// sendRecurringList renders every stored recurring message with a delete
// button per entry.
func (r *RealTelegramBotAdapter) sendRecurringList(ctx context.Context, chatID int64) error {
	var b strings.Builder
	var rows [][]inlineButton

	n := 0
	for _, tenant := range r.store.Tenants(ctx) {
		for i, item := range r.store.RecurringItems(ctx, tenant) {
			n++
			label := item.Text
			if label == "" {
				label = fmt.Sprintf("(media %s)", item.MediaType)
			}
			label = truncateLabel(label, 30)
			fmt.Fprintf(&b, "%d. %s — every %d min (group %s)\n", n, label, item.IntervalMinutes, tenant)
			rows = append(rows, []inlineButton{{
				Text: fmt.Sprintf("🗑 Delete #%d", n),
				Data: fmt.Sprintf("delrec_%s_%d", tenant, i),
			}})
		}
	}
	rows = append(rows, []inlineButton{{Text: "« Back", Data: "menu_recurring"}})

	if n == 0 {
		return r.sendButtons(ctx, chatID, "No recurring messages yet.", rows)
	}
	return r.sendButtons(ctx, chatID, "Your recurring messages:\n\n"+b.String(), rows)
}

func (r *RealTelegramBotAdapter) sendBannedWordsMenu(ctx context.Context, chatID int64) error {
	text := "Banned Words\n\n" +
		"Messages containing a banned word are deleted automatically.\n\n" +
		"/addword <chatId> <word>\n" +
		"/delword <chatId> <word>\n" +
		"/listwords <chatId>"
	return r.sendButtons(ctx, chatID, text, [][]inlineButton{
		{{Text: "« Back", Data: "back_main"}},
	})
}

func (r *RealTelegramBotAdapter) sendAutoRepliesMenu(ctx context.Context, chatID int64) error {
	text := "Auto Replies\n\n" +
		"The bot replies when a message contains a trigger phrase.\n\n" +
		"/addreply <chatId> <trigger> | <reply>\n" +
		"/delreply <chatId> <trigger>\n" +
		"/listreplies <chatId>"
	return r.sendButtons(ctx, chatID, text, [][]inlineButton{
		{{Text: "« Back", Data: "back_main"}},
	})
}

// truncateLabel shortens s to max runes. Counting runes, not bytes, keeps
// multi-byte text from being split mid-character.
func truncateLabel(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "…"
}

// sendPolicyMenu lists every group with a link/mention policy on record and
// offers a toggle per group.
func (r *RealTelegramBotAdapter) sendPolicyMenu(ctx context.Context, chatID int64, kind policyKind) error {
	var rows [][]inlineButton
	for _, tenant := range r.store.PolicyTenants(ctx) {
		cfg := r.store.Tenant(ctx, tenant)
		state := onOff(kind.Enabled(cfg.BlockLinks, cfg.BlockMentions))
		rows = append(rows, []inlineButton{{
			Text: fmt.Sprintf("Group %s: %s", tenant, state),
			Data: kind.TogglePrefix + tenant,
		}})
	}
	rows = append(rows, []inlineButton{{Text: "« Back", Data: "back_main"}})

	text := fmt.Sprintf("%s\n\nTap a group to toggle, or use %s <chatId> <on|off> "+
		"to configure a group not listed yet.", kind.Title, kind.Command)
	return r.sendButtons(ctx, chatID, text, rows)
}
