package zulip

// In this file: value objects returned by the Zulip API.  These are remote
// snapshots passed through to the caller; nothing here has a lifecycle
// inside this process.

// Message is a message as returned by the server.  Content is either raw
// Markdown or rendered HTML depending on the apply_markdown request flag.
type Message struct {
	ID             int64         `json:"id"`
	SenderID       int64         `json:"sender_id"`
	SenderFullName string        `json:"sender_full_name"`
	SenderEmail    string        `json:"sender_email"`
	Timestamp      int64         `json:"timestamp"`
	Content        string        `json:"content"`
	ContentType    string        `json:"content_type"`
	StreamID       int64         `json:"stream_id,omitempty"`
	Subject        string        `json:"subject,omitempty"`
	Topic          string        `json:"topic,omitempty"`
	Type           string        `json:"type"` // "stream" or "private" on the wire
	RecipientID    int64         `json:"recipient_id"`
	Reactions      []Reaction    `json:"reactions"`
	EditHistory    []EditHistory `json:"edit_history,omitempty"`
}

// TopicName returns the topic label, falling back to the legacy subject
// field used by older servers.
func (m Message) TopicName() string {
	if m.Topic != "" {
		return m.Topic
	}
	return m.Subject
}

// Reaction is an emoji reaction attached to a message.
type Reaction struct {
	EmojiName    string `json:"emoji_name"`
	EmojiCode    string `json:"emoji_code"`
	ReactionType string `json:"reaction_type"`
	UserID       int64  `json:"user_id"`
}

// EditHistory is a single entry of a message's edit history.
type EditHistory struct {
	PrevContent         string `json:"prev_content"`
	PrevRenderedContent string `json:"prev_rendered_content"`
	Timestamp           int64  `json:"timestamp"`
	UserID              int64  `json:"user_id"`
}

// Stream is a conversation space ("channel" in other chat systems).
type Stream struct {
	StreamID                   int64   `json:"stream_id"`
	Name                       string  `json:"name"`
	Description                string  `json:"description"`
	InviteOnly                 bool    `json:"invite_only"`
	IsWebPublic                bool    `json:"is_web_public"`
	IsArchived                 bool    `json:"is_archived"`
	CreatorID                  int64   `json:"creator_id"`
	DateCreated                int64   `json:"date_created"`
	FirstMessageID             int64   `json:"first_message_id"`
	MessageRetentionDays       *int64  `json:"message_retention_days"`
	HistoryPublicToSubscribers bool    `json:"history_public_to_subscribers"`
	RenderedDescription        string  `json:"rendered_description"`
	IsAnnouncementOnly         bool    `json:"is_announcement_only"`
	StreamPostPolicy           int     `json:"stream_post_policy"`
	Subscribers                []int64 `json:"subscribers,omitempty"`
}

// User is an organisation member.  ProfileData is the organisation-specific
// custom field map and is intentionally loosely typed.
type User struct {
	UserID        int64          `json:"user_id"`
	Email         string         `json:"email"`
	FullName      string         `json:"full_name"`
	DateJoined    string         `json:"date_joined"`
	IsActive      bool           `json:"is_active"`
	IsOwner       bool           `json:"is_owner"`
	IsAdmin       bool           `json:"is_admin"`
	IsModerator   bool           `json:"is_moderator"`
	IsGuest       bool           `json:"is_guest"`
	IsBot         bool           `json:"is_bot"`
	BotType       *int           `json:"bot_type"`
	Timezone      string         `json:"timezone"`
	AvatarURL     string         `json:"avatar_url"`
	DeliveryEmail string         `json:"delivery_email"`
	ProfileData   map[string]any `json:"profile_data,omitempty"`
}

// Role derives the user's role from the server-supplied flags.  The server
// does not return a single role field, so the flags are checked in priority
// order: owner, admin, moderator, guest, else member.
func (u User) Role() string {
	switch {
	case u.IsOwner:
		return "owner"
	case u.IsAdmin:
		return "admin"
	case u.IsModerator:
		return "moderator"
	case u.IsGuest:
		return "guest"
	default:
		return "member"
	}
}

// UserGroup is a named set of users.
type UserGroup struct {
	ID                int64   `json:"id"`
	Name              string  `json:"name"`
	Description       string  `json:"description"`
	Members           []int64 `json:"members"`
	DirectSubgroupIDs []int64 `json:"direct_subgroup_ids"`
	IsSystemGroup     bool    `json:"is_system_group"`
}

// Topic is a sub-thread within a stream; it has no identity beyond the
// name and the newest message id in it.
type Topic struct {
	Name  string `json:"name"`
	MaxID int64  `json:"max_id"`
}

// ScheduledMessage is a message queued by the server for future delivery.
type ScheduledMessage struct {
	ScheduledMessageID int64  `json:"scheduled_message_id"`
	Type               string `json:"type"`
	To                 any    `json:"to"` // stream id or list of user ids
	Content            string `json:"content"`
	Topic              string `json:"topic,omitempty"`
	DeliveryTimestamp  int64  `json:"scheduled_delivery_timestamp"`
	Failed             bool   `json:"failed"`
}

// Draft is a saved, unsent message payload.
type Draft struct {
	ID        int64   `json:"id"`
	Type      string  `json:"type"`
	To        []int64 `json:"to"`
	Topic     string  `json:"topic"`
	Content   string  `json:"content"`
	Timestamp int64   `json:"timestamp"`
}
