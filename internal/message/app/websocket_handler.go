package app

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"direct_message_service/internal/message/domain"
	"direct_message_service/pkg/logger"
	"direct_message_service/pkg/middlewares"

	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"
)

const pingInterval = 10 * time.Minute

// wsHandle adapts a websocket connection to a registry handle. Pushes arrive
// from many goroutines, so writes are serialized here.
type wsHandle struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (h *wsHandle) WriteEvent(event domain.WSResponse) error {
	b, err := json.Marshal(event)
	if err != nil {
		return err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.conn.WriteMessage(websocket.TextMessage, b)
}

// MessageWebsocketHandler is the entry point of a live connection. It owns
// the registration lifecycle of each handle and dispatches inbound actions to
// the use cases.
type MessageWebsocketHandler struct {
	registry   *ConnectionRegistry
	deliveryUC *DeliveryUseCase
	statusUC   *StatusUseCase
	presenceUC *PresenceUseCase
	unread     *UnreadTracker
}

// NewMessageWebsocketHandler create MessageWebsocketHandler
func NewMessageWebsocketHandler(
	registry *ConnectionRegistry,
	deliveryUC *DeliveryUseCase,
	statusUC *StatusUseCase,
	presenceUC *PresenceUseCase,
	unread *UnreadTracker,
) *MessageWebsocketHandler {
	return &MessageWebsocketHandler{
		registry:   registry,
		deliveryUC: deliveryUC,
		statusUC:   statusUC,
		presenceUC: presenceUC,
		unread:     unread,
	}
}

// HandleConnection runs the read loop of one connection. The authenticated
// identity comes from the JWT middleware; registration happens before the
// first read and cleanup is idempotent on any exit path.
func (h *MessageWebsocketHandler) HandleConnection(ctx context.Context, conn *websocket.Conn) {
	userID, ok := conn.Locals(middlewares.TokenUserID).(string)
	if !ok || userID == "" {
		logger.Log.Warn("websocket connection without identity", zap.String("remote", conn.RemoteAddr().String()))
		conn.Close()
		return
	}
	logger.Log.Info("websocket connected", zap.String("userID", userID))

	handle := &wsHandle{conn: conn}
	h.registry.Register(userID, handle)

	ticker := time.NewTicker(pingInterval)
	ctxClose, cancel := context.WithCancel(context.Background())
	defer func() {
		ticker.Stop()
		h.registry.Unregister(handle)
		logger.Log.Info("websocket closed", zap.String("userID", userID))
		conn.Close()
		cancel()
	}()

	conn.SetCloseHandler(func(code int, text string) error {
		logger.Log.Info("websocket close received", zap.String("userID", userID), zap.Int("code", code))
		return nil
	})
	conn.SetPingHandler(func(appData string) error {
		return conn.WriteControl(
			websocket.PongMessage,
			[]byte(appData),
			time.Now().Add(time.Second),
		)
	})

	go func() {
		for {
			select {
			case <-ticker.C:
				if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(time.Second)); err != nil {
					logger.Log.Warn("ping failed", zap.String("userID", userID), zap.Error(err))
					return
				}
			case <-ctxClose.Done():
				return
			}
		}
	}()

	for {
		mt, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err,
				websocket.CloseNormalClosure,
				websocket.CloseGoingAway,
				websocket.CloseNoStatusReceived,
			) {
				logger.Log.Info("connection closed", zap.String("userID", userID))
			} else {
				logger.Log.Warn("websocket read error", zap.String("userID", userID), zap.Error(err))
			}
			return
		}
		if mt != websocket.TextMessage {
			h.sendError(handle, "unknown action")
			continue
		}
		h.textMessageAction(ctx, handle, userID, message)
	}
}

func (h *MessageWebsocketHandler) textMessageAction(ctx context.Context, handle *wsHandle, userID string, msg []byte) {
	var req domain.WSRequest
	if err := json.Unmarshal(msg, &req); err != nil {
		h.sendError(handle, "invalid request payload")
		return
	}

	resp := domain.WSResponse{Action: req.Action, Success: false, Payload: map[string]interface{}{}}
	switch domain.Action(req.Action) {
	case domain.SendMessage:
		sent, err := h.deliveryUC.Send(ctx, userID, req.ReceiverID, req.Content)
		if err != nil {
			resp.Error = err.Error()
		} else {
			resp.Success = true
			resp.Payload["message"] = sent
		}

	case domain.Typing:
		h.presenceUC.SetTyping(userID, req.ReceiverID, req.IsTyping)
		resp.Success = true

	case domain.MessageStatusUpdate:
		updated, err := h.statusUC.UpdateStatus(ctx, req.MessageID, req.Status)
		if err != nil {
			// A stale id is logged and dropped; the originator still gets a
			// direct answer, but no push goes anywhere.
			if errors.Is(err, domain.ErrNotFound) {
				logger.Log.Warn("status update for unknown message",
					zap.String("userID", userID),
					zap.String("messageID", req.MessageID),
				)
			}
			resp.Error = err.Error()
		} else {
			resp.Success = true
			resp.Payload["message_id"] = updated.ID
			resp.Payload["status"] = updated.Status
		}

	case domain.OpenConversation:
		modified, err := h.statusUC.MarkConversationRead(ctx, userID, req.PartnerID)
		if err != nil {
			resp.Error = err.Error()
		} else {
			resp.Success = true
			resp.Payload["modified"] = modified
			resp.Payload["unread"] = 0
		}

	case domain.GetUnread:
		counts, err := h.unread.Snapshot(ctx, userID)
		if err != nil {
			resp.Error = err.Error()
		} else {
			resp.Success = true
			for partnerID, n := range counts {
				resp.Payload[partnerID] = n
			}
		}

	default:
		h.sendError(handle, "unknown message type")
		return
	}

	if resp.Error != "" {
		logger.Log.Error("websocket action failed",
			zap.String("userID", userID),
			zap.String("action", req.Action),
			zap.String("err", resp.Error),
		)
	}
	h.sendResponse(handle, resp)
}

func (h *MessageWebsocketHandler) sendResponse(handle *wsHandle, resp domain.WSResponse) {
	if err := handle.WriteEvent(resp); err != nil {
		logger.Log.Warn("write response error", zap.Error(err))
	}
}

func (h *MessageWebsocketHandler) sendError(handle *wsHandle, errorMsg string) {
	h.sendResponse(handle, domain.WSResponse{
		Action:  "error",
		Success: false,
		Payload: map[string]interface{}{"error": errorMsg},
	})
}
