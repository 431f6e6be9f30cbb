package order

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/ordercore/shop-backend/internal/coupon"
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
	app.Post("/api/v1/orders", h.placeOrder)
	app.Get("/api/v1/orders", h.listOrders)
	app.Get("/api/v1/orders/:id", h.getOrder)
}

func (h *Handler) RegisterAdminRoutes(admin fiber.Router) {
	admin.Put("/orders/:id/status", h.updateStatus)
}

type placeOrderRequest struct {
	AddressID  int    `json:"addressId"`
	Items      []Line `json:"items"`
	CouponCode string `json:"couponCode"`
}

func (h *Handler) placeOrder(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return respond.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}
	payload := new(placeOrderRequest)
	if err := c.BodyParser(payload); err != nil {
		return respond.Error(c, fiber.StatusBadRequest, err.Error())
	}

	ord, err := h.service.Place(PlaceRequest{
		UserID:     userID,
		AddressID:  payload.AddressID,
		Lines:      payload.Items,
		CouponCode: payload.CouponCode,
	})
	if err != nil {
		return placeOrderError(c, err)
	}
	return respond.Success(c, fiber.StatusCreated, ord)
}

func placeOrderError(c *fiber.Ctx, err error) error {
	var stockErr *InsufficientStockError
	var minErr *coupon.BelowMinimumError
	switch {
	case errors.Is(err, ErrAddressNotFound),
		errors.Is(err, ErrProductNotFound),
		errors.Is(err, coupon.ErrInvalidCode):
		return respond.NotFound(c, err.Error())
	case errors.Is(err, ErrEmptyOrder),
		errors.Is(err, ErrDuplicateProduct),
		errors.Is(err, ErrInvalidQuantity):
		return respond.ValidationError(c, err.Error(), map[string]string{"items": err.Error()})
	case errors.As(err, &stockErr),
		errors.As(err, &minErr),
		errors.Is(err, coupon.ErrNotActive),
		errors.Is(err, coupon.ErrNotStarted),
		errors.Is(err, coupon.ErrExpired),
		errors.Is(err, coupon.ErrLimitReached),
		errors.Is(err, coupon.ErrAlreadyUsed):
		return respond.Conflict(c, err.Error())
	default:
		return respond.Internal(c)
	}
}

func (h *Handler) listOrders(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return respond.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}
	orders, err := h.service.ListForUser(userID)
	if err != nil {
		return respond.Internal(c)
	}
	return respond.Success(c, fiber.StatusOK, orders)
}

func (h *Handler) getOrder(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return respond.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}
	orderID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return respond.Error(c, fiber.StatusBadRequest, "invalid order id")
	}
	ord, err := h.service.GetForUser(orderID, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return respond.NotFound(c, "order not found")
		}
		return respond.Internal(c)
	}
	return respond.Success(c, fiber.StatusOK, ord)
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

func (h *Handler) updateStatus(c *fiber.Ctx) error {
	orderID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return respond.Error(c, fiber.StatusBadRequest, "invalid order id")
	}
	payload := new(updateStatusRequest)
	if err := c.BodyParser(payload); err != nil {
		return respond.Error(c, fiber.StatusBadRequest, err.Error())
	}

	ord, err := h.service.UpdateStatus(orderID, payload.Status)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			return respond.NotFound(c, "order not found")
		case errors.Is(err, ErrUnknownStatus), errors.Is(err, ErrBadTransition):
			return respond.Conflict(c, err.Error())
		default:
			return respond.Internal(c)
		}
	}
	return respond.Success(c, fiber.StatusOK, ord)
}
