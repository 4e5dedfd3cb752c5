package domain

// Action websocket request action
type Action string

const (
	// SendMessage websocket action send_message
	SendMessage Action = "send_message"
	// Typing websocket action typing
	Typing Action = "typing"
	// MessageStatusUpdate websocket action message_status
	MessageStatusUpdate Action = "message_status"
	// OpenConversation websocket action open_conversation, marks the
	// partner's messages read and resets the unread counter
	OpenConversation Action = "open_conversation"
	// GetUnread websocket action get_unread
	GetUnread Action = "get_unread"

	// MessageReceived push action message_received
	MessageReceived Action = "message_received"
	// UserTyping push action user_typing
	UserTyping Action = "user_typing"
	// MessageStatusUpdated push action message_status_updated
	MessageStatusUpdated Action = "message_status_updated"
)

// WSRequest websocket request
type WSRequest struct {
	Action     string        `json:"action"`
	ReceiverID string        `json:"receiver_id,omitempty"`
	PartnerID  string        `json:"partner_id,omitempty"`
	Content    string        `json:"content,omitempty"`
	MessageID  string        `json:"message_id,omitempty"`
	Status     MessageStatus `json:"status,omitempty"`
	IsTyping   bool          `json:"is_typing,omitempty"`
}

// WSResponse websocket response / push envelope
type WSResponse struct {
	Action  string                 `json:"action"`
	Success bool                   `json:"success"`
	Payload map[string]interface{} `json:"payload,omitempty"`
	Error   string                 `json:"error,omitempty"`
}

// NewPush builds the envelope for a server-initiated event.
func NewPush(action Action, payload map[string]interface{}) WSResponse {
	return WSResponse{
		Action:  string(action),
		Success: true,
		Payload: payload,
	}
}
