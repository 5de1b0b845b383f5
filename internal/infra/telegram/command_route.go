// File: internal/infra/telegram/command_route.go
package telegram

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"telegram-group-warden/internal/domain"
	"telegram-group-warden/internal/infra/metrics"
	"telegram-group-warden/internal/usecase"
)

type commandHandler func(ctx context.Context, message *tgbotapi.Message) error

// commandRoutes defines all private-chat commands and their handlers.
// Admin verification happens inside the settings use case against the target
// group, not against a static admin list, so there is no gate at this level.
func (r *RealTelegramBotAdapter) commandRoutes() map[string]commandHandler {
	return map[string]commandHandler{
		"start":  r.handleStartCommand,
		"help":   r.handleHelpCommand,
		"cancel": r.handleCancelCommand,
		"chatid": r.handleChatIDCommand,

		"addword":   r.tracked(r.handleAddWordCommand),
		"delword":   r.tracked(r.handleDelWordCommand),
		"listwords": r.tracked(r.handleListWordsCommand),

		"addreply":    r.tracked(r.handleAddReplyCommand),
		"delreply":    r.tracked(r.handleDelReplyCommand),
		"listreplies": r.tracked(r.handleListRepliesCommand),

		"setlinks":    r.tracked(r.handleSetLinksCommand),
		"setmentions": r.tracked(r.handleSetMentionsCommand),
	}
}

// tracked counts the command outcome for the admin command metrics.
func (r *RealTelegramBotAdapter) tracked(next commandHandler) commandHandler {
	return func(ctx context.Context, message *tgbotapi.Message) error {
		err := next(ctx, message)
		result := "ok"
		if err != nil {
			result = "error"
		}
		metrics.IncAdminCommand("/"+message.Command(), result)
		return err
	}
}

// replyUsecaseErr translates use case errors into user-facing text. usage is
// shown for invalid arguments; an empty usage falls back to a generic line.
func (r *RealTelegramBotAdapter) replyUsecaseErr(ctx context.Context, chatID int64, err error, usage string) error {
	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		return r.sendPlain(ctx, chatID, "You must be an admin of that group to change its settings.")
	case errors.Is(err, domain.ErrInvalidArgument):
		if usage == "" {
			usage = "Invalid arguments. Send /help for usage."
		}
		return r.sendPlain(ctx, chatID, usage)
	case errors.Is(err, domain.ErrNoSession):
		return r.sendPlain(ctx, chatID, "Nothing in progress. Use /start to open the menu.")
	case errors.Is(err, domain.ErrWrongStep):
		return r.sendPlain(ctx, chatID, "That input doesn't fit the current step.")
	default:
		r.log.Error().Err(err).Int64("chat_id", chatID).Msg("command failed")
		return r.sendPlain(ctx, chatID, "Something went wrong. Please try again.")
	}
}

func (r *RealTelegramBotAdapter) handleStartCommand(ctx context.Context, message *tgbotapi.Message) error {
	// opening the menu abandons any open wizard session
	if _, err := r.wizard.Cancel(ctx, message.From.ID); err == nil {
		r.log.Debug().Int64("tg_id", message.From.ID).Msg("open wizard session dropped on /start")
	}
	return r.sendMainMenu(ctx, message.Chat.ID, mainMenuIntro)
}

func (r *RealTelegramBotAdapter) handleHelpCommand(ctx context.Context, message *tgbotapi.Message) error {
	return r.sendPlain(ctx, message.Chat.ID, helpText)
}

func (r *RealTelegramBotAdapter) handleCancelCommand(ctx context.Context, message *tgbotapi.Message) error {
	prompt, err := r.wizard.Cancel(ctx, message.From.ID)
	if err != nil {
		return r.sendPlain(ctx, message.Chat.ID, "Nothing to cancel.")
	}
	return r.sendPrompt(ctx, message.Chat.ID, prompt)
}

// handleChatIDCommand answers in groups too; it is how admins discover the
// chat ID the wizard asks for.
func (r *RealTelegramBotAdapter) handleChatIDCommand(ctx context.Context, message *tgbotapi.Message) error {
	return r.sendPlain(ctx, message.Chat.ID,
		fmt.Sprintf("Chat ID: %d", message.Chat.ID))
}

// splitChatArgs parses "<chatId> <rest...>" command arguments.
func splitChatArgs(message *tgbotapi.Message) (chatID int64, rest string, err error) {
	args := strings.TrimSpace(message.CommandArguments())
	first, rest, _ := strings.Cut(args, " ")
	chatID, err = strconv.ParseInt(first, 10, 64)
	return chatID, strings.TrimSpace(rest), err
}

func (r *RealTelegramBotAdapter) handleAddWordCommand(ctx context.Context, message *tgbotapi.Message) error {
	const usage = "Usage: /addword <chatId> <word>"
	chatID, word, err := splitChatArgs(message)
	if err != nil || word == "" {
		return r.sendPlain(ctx, message.Chat.ID, usage)
	}
	if err := r.settings.AddBannedWord(ctx, message.From.ID, chatID, word); err != nil {
		return r.replyUsecaseErr(ctx, message.Chat.ID, err, usage)
	}
	return r.sendPlain(ctx, message.Chat.ID, fmt.Sprintf("Banned word added for %d.", chatID))
}

func (r *RealTelegramBotAdapter) handleDelWordCommand(ctx context.Context, message *tgbotapi.Message) error {
	const usage = "Usage: /delword <chatId> <word>"
	chatID, word, err := splitChatArgs(message)
	if err != nil || word == "" {
		return r.sendPlain(ctx, message.Chat.ID, usage)
	}
	if err := r.settings.RemoveBannedWord(ctx, message.From.ID, chatID, word); err != nil {
		return r.replyUsecaseErr(ctx, message.Chat.ID, err, usage)
	}
	return r.sendPlain(ctx, message.Chat.ID, fmt.Sprintf("Banned word removed for %d.", chatID))
}

func (r *RealTelegramBotAdapter) handleListWordsCommand(ctx context.Context, message *tgbotapi.Message) error {
	const usage = "Usage: /listwords <chatId>"
	chatID, _, err := splitChatArgs(message)
	if err != nil {
		return r.sendPlain(ctx, message.Chat.ID, usage)
	}
	words, err := r.settings.ListBannedWords(ctx, message.From.ID, chatID)
	if err != nil {
		return r.replyUsecaseErr(ctx, message.Chat.ID, err, usage)
	}
	if len(words) == 0 {
		return r.sendPlain(ctx, message.Chat.ID, "No banned words for that group.")
	}
	return r.sendPlain(ctx, message.Chat.ID,
		fmt.Sprintf("Banned words for %d:\n- %s", chatID, strings.Join(words, "\n- ")))
}

func (r *RealTelegramBotAdapter) handleAddReplyCommand(ctx context.Context, message *tgbotapi.Message) error {
	const usage = "Usage: /addreply <chatId> <trigger> | <reply>"
	chatID, rest, err := splitChatArgs(message)
	if err != nil || rest == "" {
		return r.sendPlain(ctx, message.Chat.ID, usage)
	}
	trigger, reply, ok := strings.Cut(rest, "|")
	if !ok {
		return r.sendPlain(ctx, message.Chat.ID, usage)
	}
	if err := r.settings.SetAutoReply(ctx, message.From.ID, chatID, trigger, reply); err != nil {
		return r.replyUsecaseErr(ctx, message.Chat.ID, err, usage)
	}
	return r.sendPlain(ctx, message.Chat.ID, fmt.Sprintf("Auto reply saved for %d.", chatID))
}

func (r *RealTelegramBotAdapter) handleDelReplyCommand(ctx context.Context, message *tgbotapi.Message) error {
	const usage = "Usage: /delreply <chatId> <trigger>"
	chatID, trigger, err := splitChatArgs(message)
	if err != nil || trigger == "" {
		return r.sendPlain(ctx, message.Chat.ID, usage)
	}
	if err := r.settings.RemoveAutoReply(ctx, message.From.ID, chatID, trigger); err != nil {
		return r.replyUsecaseErr(ctx, message.Chat.ID, err, usage)
	}
	return r.sendPlain(ctx, message.Chat.ID, fmt.Sprintf("Auto reply removed for %d.", chatID))
}

func (r *RealTelegramBotAdapter) handleListRepliesCommand(ctx context.Context, message *tgbotapi.Message) error {
	const usage = "Usage: /listreplies <chatId>"
	chatID, _, err := splitChatArgs(message)
	if err != nil {
		return r.sendPlain(ctx, message.Chat.ID, usage)
	}
	replies, err := r.settings.ListAutoReplies(ctx, message.From.ID, chatID)
	if err != nil {
		return r.replyUsecaseErr(ctx, message.Chat.ID, err, usage)
	}
	if len(replies) == 0 {
		return r.sendPlain(ctx, message.Chat.ID, "No auto replies for that group.")
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Auto replies for %d:\n", chatID)
	for _, ar := range replies {
		fmt.Fprintf(&b, "- %q → %q\n", ar.Trigger, ar.Reply)
	}
	return r.sendPlain(ctx, message.Chat.ID, b.String())
}

func (r *RealTelegramBotAdapter) handleSetLinksCommand(ctx context.Context, message *tgbotapi.Message) error {
	const usage = "Usage: /setlinks <chatId> <on|off>"
	chatID, token, err := splitChatArgs(message)
	if err != nil || token == "" {
		return r.sendPlain(ctx, message.Chat.ID, usage)
	}
	on := usecase.TruthyToken(token)
	if err := r.settings.SetBlockLinks(ctx, message.From.ID, chatID, on); err != nil {
		return r.replyUsecaseErr(ctx, message.Chat.ID, err, usage)
	}
	return r.sendPlain(ctx, message.Chat.ID,
		fmt.Sprintf("Link blocking for %d: %s", chatID, onOff(on)))
}

func (r *RealTelegramBotAdapter) handleSetMentionsCommand(ctx context.Context, message *tgbotapi.Message) error {
	const usage = "Usage: /setmentions <chatId> <on|off>"
	chatID, token, err := splitChatArgs(message)
	if err != nil || token == "" {
		return r.sendPlain(ctx, message.Chat.ID, usage)
	}
	on := usecase.TruthyToken(token)
	if err := r.settings.SetBlockMentions(ctx, message.From.ID, chatID, on); err != nil {
		return r.replyUsecaseErr(ctx, message.Chat.ID, err, usage)
	}
	return r.sendPlain(ctx, message.Chat.ID,
		fmt.Sprintf("Mention blocking for %d: %s", chatID, onOff(on)))
}

func onOff(on bool) string {
	if on {
		return "ON"
	}
	return "OFF"
}
