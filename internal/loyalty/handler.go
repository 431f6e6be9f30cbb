package loyalty

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
	app.Get("/api/v1/loyalty/balance", h.balance)
	app.Get("/api/v1/loyalty/history", h.history)
	app.Post("/api/v1/loyalty/redeem-preview", h.previewRedemption)
}

func (h *Handler) balance(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return respond.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}
	acc, err := h.service.Balance(userID)
	if err != nil {
		return respond.Internal(c)
	}
	return respond.Success(c, fiber.StatusOK, acc)
}

func (h *Handler) history(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return respond.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}
	limit, _ := strconv.Atoi(c.Query("limit", "50"))
	txs, err := h.service.History(userID, limit)
	if err != nil {
		return respond.Internal(c)
	}
	return respond.Success(c, fiber.StatusOK, txs)
}

type redeemPreviewRequest struct {
	Points int `json:"points"`
}

func (h *Handler) previewRedemption(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return respond.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}
	payload := new(redeemPreviewRequest)
	if err := c.BodyParser(payload); err != nil {
		return respond.Error(c, fiber.StatusBadRequest, err.Error())
	}

	preview, err := h.service.PreviewRedemption(userID, payload.Points)
	if err != nil {
		if errors.Is(err, ErrBelowMinimumRedeem) || errors.Is(err, ErrInsufficientPoints) {
			return respond.Conflict(c, err.Error())
		}
		return respond.Internal(c)
	}
	return respond.Success(c, fiber.StatusOK, preview)
}
