package model

type SenderRole string

const (
	RoleAdmin  SenderRole = "admin"
	RoleMember SenderRole = "member"
)

// GroupMessage is one inbound group message as seen by moderation.
// Text holds the message text or, for media posts, the caption.
type GroupMessage struct {
	ChatID    int64
	MessageID int
	SenderID  int64
	Role      SenderRole
	Text      string
}

// DeleteReason names the policy a message violated.
type DeleteReason string

const (
	ReasonLinks      DeleteReason = "links"
	ReasonMentions   DeleteReason = "mentions"
	ReasonBannedWord DeleteReason = "banned word"
)

// Verdict is the moderation outcome for one message. Reply and Delete are
// independent facets: an auto-reply can fire on a message that is also
// deleted, and it fires for admins whose messages are never deleted.
type Verdict struct {
	Reply  string
	Delete bool
	Reason DeleteReason
}

func (v Verdict) Allowed() bool { return !v.Delete && v.Reply == "" }
