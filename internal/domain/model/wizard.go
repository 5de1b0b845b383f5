package model

// WizardStep is the position of an in-progress recurring-message wizard.
// Steps advance strictly in declaration order; cancel is accepted anywhere.
type WizardStep int

const (
	StepChatID WizardStep = iota
	StepText
	StepMedia
	StepButtons
	StepDeleteOption
	StepPinOption
	StepInterval
	StepPreview
)

func (s WizardStep) String() string {
	switch s {
	case StepChatID:
		return "awaiting_chat_id"
	case StepText:
		return "awaiting_text"
	case StepMedia:
		return "awaiting_media"
	case StepButtons:
		return "awaiting_buttons"
	case StepDeleteOption:
		return "awaiting_delete_option"
	case StepPinOption:
		return "awaiting_pin_option"
	case StepInterval:
		return "awaiting_interval"
	case StepPreview:
		return "preview"
	}
	return "unknown"
}

// WizardSession is the in-progress recurring-message definition for one
// user. It lives only in memory and is destroyed on cancel, on save, or
// when the user starts a new wizard (last writer wins).
type WizardSession struct {
	UserID          int64
	Step            WizardStep
	ChatID          string
	Text            string
	MediaID         string
	MediaType       MediaType
	Buttons         []Button
	IntervalMinutes int
	DeletePrevious  bool
	PinMessage      bool
}

// Item converts a finished session into a RecurringItem with fresh send
// state. LastSentAt=0 makes the item due on the very next scheduler tick.
func (s *WizardSession) Item() RecurringItem {
	return RecurringItem{
		Text:            s.Text,
		MediaID:         s.MediaID,
		MediaType:       s.MediaType,
		Buttons:         append([]Button(nil), s.Buttons...),
		IntervalMinutes: s.IntervalMinutes,
		DeletePrevious:  s.DeletePrevious,
		PinMessage:      s.PinMessage,
		LastSentAt:      0,
		LastMessageID:   0,
	}
}
