// File: internal/infra/telegram/real_bot.go
package telegram

import (
	"context"
	"errors"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"telegram-group-warden/internal/config"
	"telegram-group-warden/internal/domain/model"
	"telegram-group-warden/internal/domain/ports/repository"
	"telegram-group-warden/internal/infra/logging"
	"telegram-group-warden/internal/usecase"
)

// RealTelegramBotAdapter implements adapter.TelegramBotAdapter using tgbotapi
// with concurrent polling. It is also the update router: group traffic goes
// to moderation, private traffic to the wizard and the admin commands.
type RealTelegramBotAdapter struct {
	bot *tgbotapi.BotAPI
	cfg *config.BotConfig
	log *zerolog.Logger

	store      repository.ConfigStore
	moderation usecase.ModerationUseCase
	wizard     usecase.WizardUseCase
	settings   usecase.SettingsUseCase

	// updateWorkers is how many goroutines will concurrently process updates.
	updateWorkers int
	// cancelPolling cancels polling when called
	cancelPolling context.CancelFunc
}

// NewRealTelegramBotAdapter creates the adapter and authenticates against the
// Bot API. The use cases are attached afterwards with Bind, since they in
// turn depend on this adapter as their transport port.
func NewRealTelegramBotAdapter(cfg *config.BotConfig, logger *zerolog.Logger) (*RealTelegramBotAdapter, error) {
	if cfg == nil {
		return nil, errors.New("bot config is nil")
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = 5
	}

	bot, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, err
	}

	tgLog := logger.With().Str("component", "TelegramBot").Logger()
	tgLog.Info().Str("username", bot.Self.UserName).Msg("authenticated with bot api")

	return &RealTelegramBotAdapter{
		bot:           bot,
		cfg:           cfg,
		log:           &tgLog,
		updateWorkers: workers,
	}, nil
}

// Bind attaches the use cases the router dispatches to. Must be called
// before StartPolling.
func (r *RealTelegramBotAdapter) Bind(
	store repository.ConfigStore,
	moderation usecase.ModerationUseCase,
	wizard usecase.WizardUseCase,
	settings usecase.SettingsUseCase,
) {
	r.store = store
	r.moderation = moderation
	r.wizard = wizard
	r.settings = settings
}

// StartPolling begins polling Telegram for updates concurrently.
// It runs until ctx is canceled.
func (r *RealTelegramBotAdapter) StartPolling(ctx context.Context) error {
	if r.moderation == nil || r.wizard == nil || r.settings == nil || r.store == nil {
		return errors.New("use cases not bound, call Bind first")
	}

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := r.bot.GetUpdatesChan(u)

	ctx, cancel := context.WithCancel(ctx)
	r.cancelPolling = cancel

	var wg sync.WaitGroup
	updateChan := make(chan tgbotapi.Update, 100)

	for i := 0; i < r.updateWorkers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for {
				select {
				case update, ok := <-updateChan:
					if !ok {
						return
					}
					if err := r.handleUpdate(ctx, update); err != nil {
						r.log.Error().Err(err).Int("worker", workerID).Msg("update handling failed")
					}
				case <-ctx.Done():
					return
				}
			}
		}(i + 1)
	}

	// Dispatcher goroutine: feed updates into updateChan
	go func() {
		defer close(updateChan)
		for {
			select {
			case update := <-updates:
				select {
				case updateChan <- update:
				case <-ctx.Done():
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	<-ctx.Done()
	r.bot.StopReceivingUpdates()
	wg.Wait()
	return nil
}

// StopPolling stops the polling loop gracefully.
func (r *RealTelegramBotAdapter) StopPolling() {
	if r.cancelPolling != nil {
		r.cancelPolling()
	}
}

// handleUpdate routes a single update. Each update gets a trace id and a
// bounded context so one slow API call cannot wedge a worker.
func (r *RealTelegramBotAdapter) handleUpdate(ctx context.Context, update tgbotapi.Update) error {
	ctx = logging.WithTraceID(ctx, uuid.NewString())
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if update.CallbackQuery != nil {
		return r.handleQuery(ctx, update.CallbackQuery)
	}

	msg := update.Message
	if msg == nil || msg.From == nil {
		return nil
	}
	ctx = logging.WithTgID(ctx, msg.From.ID)

	if msg.Chat.IsPrivate() {
		return r.handlePrivateMessage(ctx, msg)
	}
	return r.handleGroupMessage(ctx, msg)
}

// handleGroupMessage runs the moderation pipeline over group traffic.
// Commands bypass the filters; /chatid is the only one answered in groups.
func (r *RealTelegramBotAdapter) handleGroupMessage(ctx context.Context, msg *tgbotapi.Message) error {
	if msg.IsCommand() {
		if msg.Command() == "chatid" {
			return r.handleChatIDCommand(ctx, msg)
		}
		return nil
	}

	text := msg.Text
	if text == "" {
		text = msg.Caption
	}
	if text == "" {
		return nil
	}

	role := model.RoleMember
	isAdmin, err := r.IsChatAdmin(ctx, msg.Chat.ID, msg.From.ID)
	if err != nil {
		// Treat an unknown role as member; a false deletion of an admin
		// message is recoverable, a missed spam wave is not.
		r.log.Warn().Err(err).Int64("chat_id", msg.Chat.ID).Msg("admin lookup failed")
	} else if isAdmin {
		role = model.RoleAdmin
	}

	r.moderation.HandleGroupMessage(ctx, model.GroupMessage{
		ChatID:    msg.Chat.ID,
		MessageID: msg.MessageID,
		SenderID:  msg.From.ID,
		Role:      role,
		Text:      text,
	})
	return nil
}

// handlePrivateMessage routes private traffic: commands first, then media
// and text into the wizard when one is open.
func (r *RealTelegramBotAdapter) handlePrivateMessage(ctx context.Context, msg *tgbotapi.Message) error {
	if msg.IsCommand() {
		if h, ok := r.commandRoutes()[msg.Command()]; ok {
			return h(ctx, msg)
		}
		return r.sendPlain(ctx, msg.Chat.ID, "Unknown command. Send /help for the list of commands.")
	}

	if fileID, mediaType, ok := extractMedia(msg); ok {
		if !r.wizard.Active(msg.From.ID) {
			return r.sendPlain(ctx, msg.Chat.ID, "Use /start to open the menu first.")
		}
		prompt, err := r.wizard.HandleMedia(ctx, msg.From.ID, fileID, mediaType)
		if err != nil {
			return r.replyUsecaseErr(ctx, msg.Chat.ID, err, "")
		}
		return r.sendPrompt(ctx, msg.Chat.ID, prompt)
	}

	if msg.Text != "" && r.wizard.Active(msg.From.ID) {
		prompt, err := r.wizard.HandleText(ctx, msg.From.ID, msg.Text)
		if err != nil {
			return r.replyUsecaseErr(ctx, msg.Chat.ID, err, "")
		}
		return r.sendPrompt(ctx, msg.Chat.ID, prompt)
	}

	return r.sendPlain(ctx, msg.Chat.ID, "Use /start to open the menu.")
}

// extractMedia pulls the wizard-relevant attachment out of a message.
// Photos come as a size ladder; the last entry is the largest.
func extractMedia(msg *tgbotapi.Message) (fileID string, mediaType model.MediaType, ok bool) {
	switch {
	case len(msg.Photo) > 0:
		return msg.Photo[len(msg.Photo)-1].FileID, model.MediaPhoto, true
	case msg.Animation != nil:
		// Telegram wraps GIFs as animations and also sets Video; check first.
		return msg.Animation.FileID, model.MediaAnimation, true
	case msg.Video != nil:
		return msg.Video.FileID, model.MediaVideo, true
	}
	return "", "", false
}

// ---- adapter.TelegramBotAdapter ----

func (r *RealTelegramBotAdapter) SendText(ctx context.Context, chatID int64, text string) (int, error) {
	sent, err := r.bot.Send(tgbotapi.NewMessage(chatID, text))
	if err != nil {
		return 0, err
	}
	return sent.MessageID, nil
}

// SendRecurring renders the item the same way for live broadcasts and for
// the wizard preview: Markdown text, media as caption, one URL button per row.
func (r *RealTelegramBotAdapter) SendRecurring(ctx context.Context, chatID int64, item model.RecurringItem) (int, error) {
	var markup *tgbotapi.InlineKeyboardMarkup
	if len(item.Buttons) > 0 {
		rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(item.Buttons))
		for _, b := range item.Buttons {
			rows = append(rows, tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonURL(b.Label, b.URL)))
		}
		m := tgbotapi.NewInlineKeyboardMarkup(rows...)
		markup = &m
	}

	var c tgbotapi.Chattable
	switch item.MediaType {
	case model.MediaPhoto:
		photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileID(item.MediaID))
		photo.Caption = item.Text
		photo.ParseMode = tgbotapi.ModeMarkdown
		if markup != nil {
			photo.ReplyMarkup = markup
		}
		c = photo
	case model.MediaVideo:
		video := tgbotapi.NewVideo(chatID, tgbotapi.FileID(item.MediaID))
		video.Caption = item.Text
		video.ParseMode = tgbotapi.ModeMarkdown
		if markup != nil {
			video.ReplyMarkup = markup
		}
		c = video
	case model.MediaAnimation:
		anim := tgbotapi.NewAnimation(chatID, tgbotapi.FileID(item.MediaID))
		anim.Caption = item.Text
		anim.ParseMode = tgbotapi.ModeMarkdown
		if markup != nil {
			anim.ReplyMarkup = markup
		}
		c = anim
	default:
		msg := tgbotapi.NewMessage(chatID, item.Text)
		msg.ParseMode = tgbotapi.ModeMarkdown
		if markup != nil {
			msg.ReplyMarkup = markup
		}
		c = msg
	}

	sent, err := r.bot.Send(c)
	if err != nil {
		return 0, err
	}
	return sent.MessageID, nil
}

func (r *RealTelegramBotAdapter) ReplyTo(ctx context.Context, chatID int64, messageID int, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyToMessageID = messageID
	_, err := r.bot.Send(msg)
	return err
}

func (r *RealTelegramBotAdapter) DeleteMessage(ctx context.Context, chatID int64, messageID int) error {
	_, err := r.bot.Request(tgbotapi.NewDeleteMessage(chatID, messageID))
	return err
}

func (r *RealTelegramBotAdapter) PinMessage(ctx context.Context, chatID int64, messageID int) error {
	_, err := r.bot.Request(tgbotapi.PinChatMessageConfig{
		ChatID:    chatID,
		MessageID: messageID,
	})
	return err
}

func (r *RealTelegramBotAdapter) IsChatAdmin(ctx context.Context, chatID int64, userID int64) (bool, error) {
	member, err := r.bot.GetChatMember(tgbotapi.GetChatMemberConfig{
		ChatConfigWithUser: tgbotapi.ChatConfigWithUser{
			ChatID: chatID,
			UserID: userID,
		},
	})
	if err != nil {
		return false, err
	}
	return member.IsCreator() || member.IsAdministrator(), nil
}

// ---- send helpers ----

func (r *RealTelegramBotAdapter) sendPlain(ctx context.Context, chatID int64, text string) error {
	_, err := r.SendText(ctx, chatID, text)
	return err
}

// inlineButton is the transport-local button shape; exactly one of URL or
// Data should be set.
type inlineButton struct {
	Text string
	URL  string
	Data string
}

func (r *RealTelegramBotAdapter) sendButtons(ctx context.Context, chatID int64, text string, rows [][]inlineButton) error {
	kbRows := make([][]tgbotapi.InlineKeyboardButton, 0, len(rows))
	for _, row := range rows {
		kbRow := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
		for _, btn := range row {
			if btn.URL != "" {
				kbRow = append(kbRow, tgbotapi.NewInlineKeyboardButtonURL(btn.Text, btn.URL))
			} else {
				kbRow = append(kbRow, tgbotapi.NewInlineKeyboardButtonData(btn.Text, btn.Data))
			}
		}
		kbRows = append(kbRows, kbRow)
	}
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(kbRows...)
	_, err := r.bot.Send(msg)
	return err
}

// sendPrompt renders a wizard prompt with the controls that match the step
// it is waiting on.
func (r *RealTelegramBotAdapter) sendPrompt(ctx context.Context, chatID int64, p usecase.WizardPrompt) error {
	if p.Done {
		return r.sendPlain(ctx, chatID, p.Text)
	}
	switch p.Step {
	case model.StepDeleteOption:
		return r.sendButtons(ctx, chatID, p.Text, [][]inlineButton{
			{{Text: "Yes, delete previous", Data: "opt_delete_yes"}},
			{{Text: "No, keep all", Data: "opt_delete_no"}},
		})
	case model.StepPinOption:
		return r.sendButtons(ctx, chatID, p.Text, [][]inlineButton{
			{{Text: "Yes, pin it", Data: "opt_pin_yes"}},
			{{Text: "No pinning", Data: "opt_pin_no"}},
		})
	case model.StepPreview:
		return r.sendButtons(ctx, chatID, p.Text, [][]inlineButton{
			{{Text: "Save Message", Data: "confirm_save"}},
			{{Text: "Cancel", Data: "wizard_cancel"}},
		})
	default:
		return r.sendButtons(ctx, chatID, p.Text, [][]inlineButton{
			{{Text: "Cancel", Data: "wizard_cancel"}},
		})
	}
}
