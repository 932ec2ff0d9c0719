package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/raksha/internal/api/dto"
)

// ButtonDetector is the trigger detector surface the bridge needs.
type ButtonDetector interface {
	Press()
	Count() int
	IsListening() bool
}

// QuickAction fires an SOS for the logged-in user.
type QuickAction interface {
	Fire() bool
}

// DeviceHandler bridges platform events (hardware button presses and the
// quick-action notification tap) into the core.
type DeviceHandler struct {
	detector ButtonDetector
	quick    QuickAction
}

// NewDeviceHandler constructs handler.
func NewDeviceHandler(detector ButtonDetector, quick QuickAction) *DeviceHandler {
	return &DeviceHandler{detector: detector, quick: quick}
}

// Button handles POST /device/button: one hardware button press.
func (h *DeviceHandler) Button(c *fiber.Ctx) error {
	h.detector.Press()
	return c.JSON(fiber.Map{"data": dto.ButtonPressResponse{
		Listening: h.detector.IsListening(),
		Count:     h.detector.Count(),
	}})
}

// QuickAction handles POST /device/quick-action: the notification tap.
func (h *DeviceHandler) QuickAction(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"data": fiber.Map{"triggered": h.quick.Fire()}})
}
