package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/raksha/internal/api/dto"
	"github.com/spec-kit/raksha/internal/auth"
	"github.com/spec-kit/raksha/internal/domain"
	"github.com/spec-kit/raksha/internal/service"
	apperrors "github.com/spec-kit/raksha/pkg/util/errorutil"
)

// ComplaintsHandler exposes complaint filing and tracking.
type ComplaintsHandler struct {
	complaints *service.ComplaintService
}

// NewComplaintsHandler constructs handler.
func NewComplaintsHandler(complaintService *service.ComplaintService) *ComplaintsHandler {
	return &ComplaintsHandler{complaints: complaintService}
}

// File handles POST /complaints.
func (h *ComplaintsHandler) File(c *fiber.Ctx) error {
	user, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("login required")
	}
	var req dto.FileComplaintRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	complaint, message, err := h.complaints.FileComplaint(c.UserContext(), user.UserID, req.Title, req.Description)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"data":    dto.NewComplaintResponse(*complaint),
		"message": message,
	})
}

// List handles GET /complaints with an optional status query.
func (h *ComplaintsHandler) List(c *fiber.Ctx) error {
	user, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("login required")
	}

	var status *domain.ComplaintStatus
	if raw := c.Query("status"); raw != "" {
		parsed := domain.ParseComplaintStatus(raw)
		if string(parsed) != raw {
			return apperrors.NewValidationError("unknown complaint status", map[string]any{"status": raw})
		}
		status = &parsed
	}

	complaints, err := h.complaints.UserComplaints(c.UserContext(), user.UserID, status)
	if err != nil {
		return err
	}
	items := make([]dto.ComplaintResponse, 0, len(complaints))
	for _, complaint := range complaints {
		items = append(items, dto.NewComplaintResponse(complaint))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Get handles GET /complaints/:id.
func (h *ComplaintsHandler) Get(c *fiber.Ctx) error {
	user, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("login required")
	}

	complaint, err := h.complaints.ComplaintByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	if complaint.UserID != "" && complaint.UserID != user.UserID {
		return apperrors.NewNotFound("complaint", map[string]any{"complaint_id": complaint.ComplaintID})
	}
	return c.JSON(fiber.Map{"data": dto.NewComplaintResponse(*complaint)})
}
