package domain

import "time"

// MessageStatus is the delivery state of a message.
type MessageStatus string

const (
	// StatusSent message persisted, receiver not yet aware
	StatusSent MessageStatus = "sent"
	// StatusDelivered receiver's client has fetched or been pushed the message
	StatusDelivered MessageStatus = "delivered"
	// StatusSeen receiver has opened the conversation
	StatusSeen MessageStatus = "seen"
)

// statusRank orders the states. Unknown statuses rank below sent so they can
// never be applied.
func statusRank(s MessageStatus) int {
	switch s {
	case StatusSent:
		return 1
	case StatusDelivered:
		return 2
	case StatusSeen:
		return 3
	default:
		return 0
	}
}

// Valid reports whether s is one of the known statuses.
func (s MessageStatus) Valid() bool {
	return statusRank(s) > 0
}

// CanTransition reports whether moving from s to next is a forward move.
// Status is monotone along sent -> delivered -> seen; regressions and repeats
// are never applied.
func (s MessageStatus) CanTransition(next MessageStatus) bool {
	if !next.Valid() {
		return false
	}
	return statusRank(next) > statusRank(s)
}

// Message is a persisted direct message between two users.
type Message struct {
	ID         string        `bson:"_id" json:"id"`
	SenderID   string        `bson:"sender_id" json:"sender_id"`
	ReceiverID string        `bson:"receiver_id" json:"receiver_id"`
	Content    string        `bson:"content" json:"content"`
	Timestamp  time.Time     `bson:"timestamp" json:"timestamp"`
	Status     MessageStatus `bson:"status" json:"status"`
	// IsRead is kept separate from Status for backward-compatible unread
	// queries; it flips to true only at seen.
	IsRead bool `bson:"is_read" json:"is_read"`

	// Resolved display attributes, populated on pushes and history reads,
	// never persisted.
	Sender   *UserProfile `bson:"-" json:"sender,omitempty"`
	Receiver *UserProfile `bson:"-" json:"receiver,omitempty"`
}

// UserProfile is the display identity resolved from the profile store.
type UserProfile struct {
	UserID    string `json:"user_id"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url"`
}

// Conversation is one entry of a user's conversation list: the partner, the
// latest message exchanged with them and the unread count.
type Conversation struct {
	PartnerID   string       `bson:"_id" json:"partner_id"`
	Partner     *UserProfile `bson:"-" json:"partner,omitempty"`
	LastMessage string       `bson:"last_message" json:"last_message"`
	Timestamp   time.Time    `bson:"timestamp" json:"timestamp"`
	Unread      int64        `bson:"unread" json:"unread"`
}

// Pagination describes one page of a history read.
type Pagination struct {
	Total   int64 `json:"total"`
	Page    int64 `json:"page"`
	Pages   int64 `json:"pages"`
	HasMore bool  `json:"has_more"`
}
