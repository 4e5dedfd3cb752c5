package app

import (
	"errors"
	"net/http"
	"strconv"

	"direct_message_service/internal/message/domain"
	"direct_message_service/pkg/middlewares"

	"github.com/gofiber/fiber/v2"
)

// HistoryHandler serves the REST side of the service: paginated history,
// conversation list and bulk mark-read.
type HistoryHandler struct {
	historyUC *HistoryUseCase
	statusUC  *StatusUseCase
}

// NewHistoryHandler create HistoryHandler
func NewHistoryHandler(historyUC *HistoryUseCase, statusUC *StatusUseCase) *HistoryHandler {
	return &HistoryHandler{
		historyUC: historyUC,
		statusUC:  statusUC,
	}
}

func requesterID(c *fiber.Ctx) string {
	userID, _ := c.Locals(middlewares.TokenUserID).(string)
	return userID
}

func queryInt64(c *fiber.Ctx, name string, fallback int64) int64 {
	v, err := strconv.ParseInt(c.Query(name), 10, 64)
	if err != nil || v < 1 {
		return fallback
	}
	return v
}

// GetMessages handles GET /messages/:userID?page=&limit=
func (h *HistoryHandler) GetMessages(c *fiber.Ctx) error {
	userID := requesterID(c)
	partnerID := c.Params("userID")
	page := queryInt64(c, "page", 1)
	limit := queryInt64(c, "limit", DefaultPageSize)

	msgs, pagination, err := h.historyUC.Messages(c.Context(), userID, partnerID, page, limit)
	if err != nil {
		return storeError(c, err)
	}
	return c.JSON(fiber.Map{
		"success":    true,
		"messages":   msgs,
		"pagination": pagination,
	})
}

// GetConversations handles GET /conversations/history
func (h *HistoryHandler) GetConversations(c *fiber.Ctx) error {
	convos, err := h.historyUC.Conversations(c.Context(), requesterID(c))
	if err != nil {
		return storeError(c, err)
	}
	return c.JSON(fiber.Map{
		"success":       true,
		"conversations": convos,
	})
}

// MarkRead handles PUT /messages/:userID/read
func (h *HistoryHandler) MarkRead(c *fiber.Ctx) error {
	modified, err := h.statusUC.MarkConversationRead(c.Context(), requesterID(c), c.Params("userID"))
	if err != nil {
		return storeError(c, err)
	}
	return c.JSON(fiber.Map{
		"success":        true,
		"modified_count": modified,
	})
}

// Health handles GET /
func (h *HistoryHandler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  http.StatusOK,
		"error":   false,
		"message": "Server is running",
	})
}

func storeError(c *fiber.Ctx, err error) error {
	status := http.StatusInternalServerError
	if errors.Is(err, domain.ErrValidation) {
		status = http.StatusBadRequest
	} else if errors.Is(err, domain.ErrNotFound) {
		status = http.StatusNotFound
	}
	return c.Status(status).JSON(fiber.Map{"success": false, "error": err.Error()})
}
