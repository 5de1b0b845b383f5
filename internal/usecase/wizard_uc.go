package usecase

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"telegram-group-warden/internal/domain"
	"telegram-group-warden/internal/domain/model"
	"telegram-group-warden/internal/domain/ports/adapter"
	"telegram-group-warden/internal/domain/ports/repository"
	"telegram-group-warden/internal/infra/metrics"

	"github.com/rs/zerolog"
)

const (
	promptChatID = "Step 1/7: Choose group\n\n" +
		"Send me the chat ID of the group for this recurring message.\n" +
		"Use /chatid in your group to get it. Format: -1001234567890"
	promptText = "Step 2/7: Message text\n\n" +
		"Send the text for your message (markdown is passed through), " +
		"or send 'skip' if you only want media."
	promptMedia = "Step 3/7: Media\n\n" +
		"Send a photo, video, or GIF for your message."
	promptButtons = "Step 4/7: Buttons\n\n" +
		"One button per line, in the form:\n" +
		"Button Text|https://url.com\n\n" +
		"Or send 'skip' to continue without buttons."
	promptDeleteOption = "Step 5/7: Delete previous message?\n\n" +
		"Should the previous recurring message be deleted before each new send?"
	promptPinOption = "Step 6/7: Auto-pin message?\n\n" +
		"Should each sent message be pinned? The bot needs the " +
		"'Pin Messages' permission for this."
	promptInterval = "Step 7/7: Interval\n\n" +
		"How often should this message be sent? " +
		"Send the interval in minutes (minimum 1)."
	promptPreviewFooter = "Looks good? Save it, or cancel to start over."
)

// WizardPrompt is what the transport layer should show the user next.
// Step names the input now awaited so the adapter can attach the matching
// controls (yes/no buttons, save/cancel, plain cancel).
type WizardPrompt struct {
	Text string
	Step model.WizardStep
	Done bool // session destroyed (saved or cancelled)
}

// WizardUseCase drives the per-user recurring-message wizard. One session
// per user; starting a new one replaces the old (last writer wins).
type WizardUseCase interface {
	Start(ctx context.Context, userID int64) WizardPrompt
	Cancel(ctx context.Context, userID int64) (WizardPrompt, error)
	Active(userID int64) bool
	Step(userID int64) (model.WizardStep, bool)

	// HandleText consumes free-text input for the current step. Invalid
	// input re-prompts the same step; the session state is untouched.
	HandleText(ctx context.Context, userID int64, text string) (WizardPrompt, error)
	// HandleMedia consumes a media attachment; only valid at the media step.
	HandleMedia(ctx context.Context, userID int64, fileID string, mediaType model.MediaType) (WizardPrompt, error)
	// SetDeleteOption / SetPinOption are driven by yes/no buttons.
	SetDeleteOption(ctx context.Context, userID int64, deletePrevious bool) (WizardPrompt, error)
	SetPinOption(ctx context.Context, userID int64, pin bool) (WizardPrompt, error)
	// Save finalizes the previewed session into a RecurringItem.
	Save(ctx context.Context, userID int64) (WizardPrompt, error)
}

type wizardUC struct {
	store repository.ConfigStore
	bot   adapter.TelegramBotAdapter
	log   *zerolog.Logger

	mu       sync.Mutex
	sessions map[int64]*model.WizardSession
}

func NewWizardUseCase(store repository.ConfigStore, bot adapter.TelegramBotAdapter, logger *zerolog.Logger) WizardUseCase {
	wizLog := logger.With().Str("component", "WizardUC").Logger()
	return &wizardUC{
		store:    store,
		bot:      bot,
		log:      &wizLog,
		sessions: make(map[int64]*model.WizardSession),
	}
}

func (uc *wizardUC) Start(ctx context.Context, userID int64) WizardPrompt {
	uc.mu.Lock()
	if _, exists := uc.sessions[userID]; exists {
		uc.log.Debug().Int64("user_id", userID).Msg("replacing open wizard session")
	}
	uc.sessions[userID] = &model.WizardSession{UserID: userID, Step: model.StepChatID}
	uc.mu.Unlock()
	return WizardPrompt{Text: promptChatID, Step: model.StepChatID}
}

func (uc *wizardUC) Cancel(ctx context.Context, userID int64) (WizardPrompt, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	if _, exists := uc.sessions[userID]; !exists {
		return WizardPrompt{}, domain.ErrNoSession
	}
	delete(uc.sessions, userID)
	return WizardPrompt{Text: "Cancelled. Use /start to go back to the menu.", Done: true}, nil
}

func (uc *wizardUC) Active(userID int64) bool {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	_, ok := uc.sessions[userID]
	return ok
}

func (uc *wizardUC) Step(userID int64) (model.WizardStep, bool) {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	s, ok := uc.sessions[userID]
	if !ok {
		return 0, false
	}
	return s.Step, true
}

// session returns the open session for userID. Callers hold uc.mu for the
// whole step transition: the update workers are not serialized per user, so
// two quick inputs from one user would otherwise race on the session struct.
func (uc *wizardUC) session(userID int64) (*model.WizardSession, error) {
	s, ok := uc.sessions[userID]
	if !ok {
		return nil, domain.ErrNoSession
	}
	return s, nil
}

func (uc *wizardUC) HandleText(ctx context.Context, userID int64, text string) (WizardPrompt, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	s, err := uc.session(userID)
	if err != nil {
		return WizardPrompt{}, err
	}

	switch s.Step {
	case model.StepChatID:
		chatID, err := strconv.ParseInt(strings.TrimSpace(text), 10, 64)
		if err != nil {
			return WizardPrompt{
				Text: "Invalid chat ID. Send a group chat ID like -1001234567890.",
				Step: model.StepChatID,
			}, nil
		}
		ok, err := uc.bot.IsChatAdmin(ctx, chatID, userID)
		if err != nil || !ok {
			if err != nil {
				uc.log.Warn().Err(err).Int64("chat_id", chatID).Msg("admin lookup failed")
			}
			return WizardPrompt{
				Text: "You must be an admin in that group. Check the chat ID and try again.",
				Step: model.StepChatID,
			}, nil
		}
		s.ChatID = model.TenantID(chatID)
		s.Step = model.StepText
		return WizardPrompt{Text: "Group verified!\n\n" + promptText, Step: model.StepText}, nil

	case model.StepText:
		if !strings.EqualFold(strings.TrimSpace(text), "skip") {
			s.Text = text
		}
		s.Step = model.StepMedia
		return WizardPrompt{Text: promptMedia, Step: model.StepMedia}, nil

	case model.StepMedia:
		// only an attachment advances this step
		return WizardPrompt{
			Text: "Unsupported input. " + promptMedia,
			Step: model.StepMedia,
		}, nil

	case model.StepButtons:
		if strings.EqualFold(strings.TrimSpace(text), "skip") {
			s.Buttons = nil
		} else {
			s.Buttons = ParseButtonLines(text)
		}
		s.Step = model.StepDeleteOption
		return WizardPrompt{Text: promptDeleteOption, Step: model.StepDeleteOption}, nil

	case model.StepDeleteOption:
		return WizardPrompt{Text: "Use the buttons to choose.\n\n" + promptDeleteOption, Step: model.StepDeleteOption}, nil

	case model.StepPinOption:
		return WizardPrompt{Text: "Use the buttons to choose.\n\n" + promptPinOption, Step: model.StepPinOption}, nil

	case model.StepInterval:
		minutes, err := strconv.Atoi(strings.TrimSpace(text))
		if err != nil || minutes < 1 {
			return WizardPrompt{
				Text: "Send a whole number of minutes (minimum 1).",
				Step: model.StepInterval,
			}, nil
		}
		s.IntervalMinutes = minutes
		s.Step = model.StepPreview
		uc.renderPreview(ctx, s)
		return WizardPrompt{Text: promptPreviewFooter, Step: model.StepPreview}, nil

	default: // StepPreview
		return WizardPrompt{Text: promptPreviewFooter, Step: model.StepPreview}, nil
	}
}

func (uc *wizardUC) HandleMedia(ctx context.Context, userID int64, fileID string, mediaType model.MediaType) (WizardPrompt, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	s, err := uc.session(userID)
	if err != nil {
		return WizardPrompt{}, err
	}
	if s.Step != model.StepMedia {
		return WizardPrompt{}, domain.ErrWrongStep
	}
	switch mediaType {
	case model.MediaPhoto, model.MediaVideo, model.MediaAnimation:
	default:
		return WizardPrompt{
			Text: "Unsupported media type. Send a photo, video, or GIF.",
			Step: model.StepMedia,
		}, nil
	}
	s.MediaID = fileID
	s.MediaType = mediaType
	s.Step = model.StepButtons
	return WizardPrompt{Text: promptButtons, Step: model.StepButtons}, nil
}

func (uc *wizardUC) SetDeleteOption(ctx context.Context, userID int64, deletePrevious bool) (WizardPrompt, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	s, err := uc.session(userID)
	if err != nil {
		return WizardPrompt{}, err
	}
	if s.Step != model.StepDeleteOption {
		return WizardPrompt{}, domain.ErrWrongStep
	}
	s.DeletePrevious = deletePrevious
	s.Step = model.StepPinOption
	return WizardPrompt{Text: promptPinOption, Step: model.StepPinOption}, nil
}

func (uc *wizardUC) SetPinOption(ctx context.Context, userID int64, pin bool) (WizardPrompt, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	s, err := uc.session(userID)
	if err != nil {
		return WizardPrompt{}, err
	}
	if s.Step != model.StepPinOption {
		return WizardPrompt{}, domain.ErrWrongStep
	}
	s.PinMessage = pin
	s.Step = model.StepInterval
	return WizardPrompt{Text: promptInterval, Step: model.StepInterval}, nil
}

func (uc *wizardUC) Save(ctx context.Context, userID int64) (WizardPrompt, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	s, err := uc.session(userID)
	if err != nil {
		return WizardPrompt{}, err
	}
	if s.Step != model.StepPreview {
		return WizardPrompt{}, domain.ErrWrongStep
	}

	item := s.Item()
	if err := item.Validate(); err != nil {
		return WizardPrompt{}, err
	}
	if err := uc.store.AddRecurringItem(ctx, s.ChatID, item); err != nil {
		// keep the session so the user can retry the save
		uc.log.Error().Err(err).Str("tenant", s.ChatID).Msg("persisting recurring item failed")
		return WizardPrompt{}, err
	}

	delete(uc.sessions, userID)
	metrics.IncWizardFinalized()
	uc.log.Info().Str("tenant", s.ChatID).Int("interval_min", item.IntervalMinutes).
		Msg("recurring message saved")

	return WizardPrompt{
		Text: fmt.Sprintf(
			"Recurring message saved!\n\nGroup: %s\nInterval: every %d minutes\n\n"+
				"The bot will start sending it automatically.",
			s.ChatID, item.IntervalMinutes),
		Done: true,
	}, nil
}

// renderPreview sends the composed message to the user's private chat
// exactly as the scheduler would send it live. Failures are logged; the
// wizard still advances to the preview step.
func (uc *wizardUC) renderPreview(ctx context.Context, s *model.WizardSession) {
	var b strings.Builder
	b.WriteString("PREVIEW\n\n")
	fmt.Fprintf(&b, "Interval: every %d minutes\n", s.IntervalMinutes)
	if s.MediaID != "" {
		b.WriteString("Media: yes\n")
	} else {
		b.WriteString("Text only\n")
	}
	if len(s.Buttons) > 0 {
		fmt.Fprintf(&b, "Buttons: %d\n", len(s.Buttons))
	}
	if s.DeletePrevious {
		b.WriteString("Deletes previous message\n")
	}
	if s.PinMessage {
		b.WriteString("Auto-pins message\n")
	}

	if _, err := uc.bot.SendText(ctx, s.UserID, b.String()); err != nil {
		uc.log.Warn().Err(err).Int64("user_id", s.UserID).Msg("preview header failed")
	}
	if _, err := uc.bot.SendRecurring(ctx, s.UserID, s.Item()); err != nil {
		uc.log.Warn().Err(err).Int64("user_id", s.UserID).Msg("preview render failed")
	}
}

// ParseButtonLines parses newline-separated "label|url" pairs. Lines
// without the separator are dropped silently; that looseness is part of
// the input contract, not an error.
func ParseButtonLines(input string) []model.Button {
	var buttons []model.Button
	for _, line := range strings.Split(strings.TrimSpace(input), "\n") {
		label, url, ok := strings.Cut(line, "|")
		if !ok {
			continue
		}
		buttons = append(buttons, model.Button{
			Label: strings.TrimSpace(label),
			URL:   strings.TrimSpace(url),
		})
	}
	return buttons
}
