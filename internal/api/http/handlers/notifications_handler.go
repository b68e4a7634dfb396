package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/user-lifecycle/internal/api/dto"
	"github.com/spec-kit/user-lifecycle/internal/events"
	"github.com/spec-kit/user-lifecycle/internal/notifier"
	"github.com/spec-kit/user-lifecycle/pkg/util"
)

// NotificationsHandler triggers notification emails over REST, as an
// alternative entry point to the message channel.
type NotificationsHandler struct {
	mailer *notifier.Mailer
}

// NewNotificationsHandler constructs handler.
func NewNotificationsHandler(mailer *notifier.Mailer) *NotificationsHandler {
	return &NotificationsHandler{mailer: mailer}
}

// Send handles POST /notifications/send.
func (h *NotificationsHandler) Send(c *fiber.Ctx) error {
	var req dto.NotificationSendRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.Email) == "" || strings.TrimSpace(req.Operation) == "" {
		return util.NewValidationError("operation and email are required", nil)
	}

	switch events.Operation(req.Operation) {
	case events.OperationCreate:
		if err := h.mailer.SendCreated(c.UserContext(), req.Email); err != nil {
			return util.NewInternalError(err)
		}
	case events.OperationDelete:
		if err := h.mailer.SendDeleted(c.UserContext(), req.Email); err != nil {
			return util.NewInternalError(err)
		}
	default:
		return util.NewValidationError("unknown operation", map[string]any{"operation": req.Operation})
	}

	return c.SendStatus(fiber.StatusOK)
}
