package handlers

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/raksha/internal/api/dto"
	"github.com/spec-kit/raksha/internal/auth"
	"github.com/spec-kit/raksha/internal/domain"
	"github.com/spec-kit/raksha/internal/service"
	apperrors "github.com/spec-kit/raksha/pkg/util/errorutil"
)

// SOSHandler exposes the emergency lifecycle.
type SOSHandler struct {
	sos *service.SOSService
	now func() time.Time
}

// NewSOSHandler constructs handler.
func NewSOSHandler(sosService *service.SOSService) *SOSHandler {
	return &SOSHandler{sos: sosService, now: time.Now}
}

// Trigger handles POST /sos/trigger. An already active SOS yields 409 with
// that event in the body.
func (h *SOSHandler) Trigger(c *fiber.Ctx) error {
	user, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("login required")
	}

	event, err := h.sos.TriggerSOS(c.UserContext(), user.UserID)
	if apperrors.IsCode(err, apperrors.CodeAlreadyActive) && event != nil {
		domainErr := apperrors.ToDomainError(err)
		return c.Status(http.StatusConflict).JSON(fiber.Map{
			"error": fiber.Map{"code": domainErr.Code, "message": domainErr.Message},
			"data":  dto.NewSOSResponse(event, h.now()),
		})
	}
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewSOSResponse(event, h.now())})
}

// Resolve handles POST /sos/resolve.
func (h *SOSHandler) Resolve(c *fiber.Ctx) error {
	var req dto.ResolveSOSRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return apperrors.NewValidationError("invalid payload", nil)
		}
	}

	event, err := h.sos.ResolveSOS(c.UserContext(), req.Notes)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewSOSResponse(event, h.now())})
}

// Active handles GET /sos/active. The data field is null when idle.
func (h *SOSHandler) Active(c *fiber.Ctx) error {
	event := h.sos.ActiveSOS()
	if event == nil {
		return c.JSON(fiber.Map{"data": nil, "status": domain.SOSStatusIdle})
	}
	return c.JSON(fiber.Map{"data": dto.NewSOSResponse(event, h.now()), "status": event.Status})
}

// History handles GET /sos/history.
func (h *SOSHandler) History(c *fiber.Ctx) error {
	user, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("login required")
	}

	history, err := h.sos.UserSOSHistory(c.UserContext(), user.UserID)
	if err != nil {
		return err
	}
	now := h.now()
	items := make([]dto.SOSResponse, 0, len(history))
	for i := range history {
		items = append(items, dto.NewSOSResponse(&history[i], now))
	}
	return c.JSON(fiber.Map{"data": items})
}
