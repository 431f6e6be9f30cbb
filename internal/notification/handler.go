package notification

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/ordercore/shop-backend/internal/respond"
	"github.com/ordercore/shop-backend/internal/user"
)

type Handler struct {
	service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{service: s}
}

func (h *Handler) RegisterProtectedRoutes(app *fiber.App) {
	app.Get("/api/v1/notifications", h.list)
	app.Patch("/api/v1/notifications/:id/read", h.markRead)
}

func (h *Handler) list(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return respond.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}
	items, err := h.service.ListForUser(userID)
	if err != nil {
		return respond.Internal(c)
	}
	return respond.Success(c, fiber.StatusOK, items)
}

func (h *Handler) markRead(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return respond.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return respond.Error(c, fiber.StatusBadRequest, "invalid notification id")
	}
	n, err := h.service.MarkRead(id, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return respond.NotFound(c, "notification not found")
		}
		return respond.Internal(c)
	}
	return respond.Success(c, fiber.StatusOK, n)
}
