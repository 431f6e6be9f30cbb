package shipment

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/ordercore/shop-backend/internal/respond"
)

type Handler struct {
	service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{service: s}
}

func (h *Handler) RegisterAdminRoutes(admin fiber.Router) {
	admin.Post("/shipments", h.create)
	admin.Get("/shipments/:id", h.get)
	admin.Get("/shipments/:id/events", h.events)
	admin.Put("/shipments/:id/status", h.updateStatus)
}

type createShipmentRequest struct {
	OrderID int    `json:"orderId"`
	Carrier string `json:"carrier"`
}

func (h *Handler) create(c *fiber.Ctx) error {
	payload := new(createShipmentRequest)
	if err := c.BodyParser(payload); err != nil {
		return respond.Error(c, fiber.StatusBadRequest, err.Error())
	}
	sh, err := h.service.Create(payload.OrderID, payload.Carrier)
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			return respond.NotFound(c, "order not found")
		}
		return respond.Internal(c)
	}
	return respond.Success(c, fiber.StatusCreated, sh)
}

func (h *Handler) get(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return respond.Error(c, fiber.StatusBadRequest, "invalid shipment id")
	}
	sh, err := h.service.GetByID(id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return respond.NotFound(c, "shipment not found")
		}
		return respond.Internal(c)
	}
	return respond.Success(c, fiber.StatusOK, sh)
}

func (h *Handler) events(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return respond.Error(c, fiber.StatusBadRequest, "invalid shipment id")
	}
	events, err := h.service.Events(id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return respond.NotFound(c, "shipment not found")
		}
		return respond.Internal(c)
	}
	return respond.Success(c, fiber.StatusOK, events)
}

type updateStatusRequest struct {
	Status string `json:"status"`
	Note   string `json:"note"`
}

func (h *Handler) updateStatus(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return respond.Error(c, fiber.StatusBadRequest, "invalid shipment id")
	}
	payload := new(updateStatusRequest)
	if err := c.BodyParser(payload); err != nil {
		return respond.Error(c, fiber.StatusBadRequest, err.Error())
	}

	sh, err := h.service.UpdateStatus(id, payload.Status, payload.Note)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			return respond.NotFound(c, "shipment not found")
		case errors.Is(err, ErrEmptyStatus):
			return respond.ValidationError(c, err.Error(), map[string]string{"status": err.Error()})
		default:
			return respond.Internal(c)
		}
	}
	return respond.Success(c, fiber.StatusOK, sh)
}
