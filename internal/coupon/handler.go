package coupon

import (
	"errors"
	"strconv"
	"time"

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
	app.Get("/api/v1/coupons", h.list)
	app.Post("/api/v1/coupons/validate", h.validate)
}

func (h *Handler) RegisterAdminRoutes(admin fiber.Router) {
	admin.Post("/coupons", h.create)
	admin.Put("/coupons/:id<[0-9]+>", h.update)
}

type validateRequest struct {
	Code string `json:"code"`
}

type couponRequest struct {
	Code            string     `json:"code"`
	DiscountPercent float64    `json:"discountPercent"`
	MinOrderAmount  float64    `json:"minOrderAmount"`
	StartsAt        *time.Time `json:"startsAt"`
	EndsAt          *time.Time `json:"endsAt"`
	UsageLimit      *int       `json:"usageLimit"`
	Active          *bool      `json:"active"`
}

func (h *Handler) list(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return respond.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}
	eligibilities, err := h.service.ListForUser(userID)
	if err != nil {
		return respond.Internal(c)
	}
	return respond.Success(c, fiber.StatusOK, eligibilities)
}

func (h *Handler) validate(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return respond.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}
	payload := new(validateRequest)
	if err := c.BodyParser(payload); err != nil {
		return respond.Error(c, fiber.StatusBadRequest, err.Error())
	}

	result, err := h.service.Validate(userID, payload.Code)
	if err != nil {
		var belowMin *BelowMinimumError
		switch {
		case errors.Is(err, ErrInvalidCode):
			return respond.NotFound(c, err.Error())
		case errors.Is(err, ErrEmptyCart),
			errors.Is(err, ErrNotActive),
			errors.Is(err, ErrNotStarted),
			errors.Is(err, ErrExpired),
			errors.Is(err, ErrLimitReached),
			errors.Is(err, ErrAlreadyUsed),
			errors.As(err, &belowMin):
			return respond.Conflict(c, err.Error())
		default:
			return respond.Internal(c)
		}
	}
	return respond.Success(c, fiber.StatusOK, result)
}

func (h *Handler) create(c *fiber.Ctx) error {
	payload := new(couponRequest)
	if err := c.BodyParser(payload); err != nil {
		return respond.Error(c, fiber.StatusBadRequest, err.Error())
	}

	active := true
	if payload.Active != nil {
		active = *payload.Active
	}
	created, err := h.service.Create(Coupon{
		Code:            payload.Code,
		DiscountPercent: payload.DiscountPercent,
		MinOrderAmount:  payload.MinOrderAmount,
		StartsAt:        payload.StartsAt,
		EndsAt:          payload.EndsAt,
		UsageLimit:      payload.UsageLimit,
		Active:          active,
	})
	if err != nil {
		if errors.Is(err, ErrCodeExists) {
			return respond.Conflict(c, err.Error())
		}
		return respond.ValidationError(c, err.Error(), nil)
	}
	return respond.Success(c, fiber.StatusCreated, created)
}

func (h *Handler) update(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return respond.Error(c, fiber.StatusBadRequest, "invalid coupon id")
	}
	payload := new(couponRequest)
	if err := c.BodyParser(payload); err != nil {
		return respond.Error(c, fiber.StatusBadRequest, err.Error())
	}

	active := true
	if payload.Active != nil {
		active = *payload.Active
	}
	updated, err := h.service.Update(Coupon{
		CouponID:        id,
		Code:            payload.Code,
		DiscountPercent: payload.DiscountPercent,
		MinOrderAmount:  payload.MinOrderAmount,
		StartsAt:        payload.StartsAt,
		EndsAt:          payload.EndsAt,
		UsageLimit:      payload.UsageLimit,
		Active:          active,
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			return respond.NotFound(c, "coupon not found")
		case errors.Is(err, ErrCodeExists):
			return respond.Conflict(c, err.Error())
		default:
			return respond.ValidationError(c, err.Error(), nil)
		}
	}
	return respond.Success(c, fiber.StatusOK, updated)
}
