package address

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
	app.Get("/api/v1/addresses", h.list)
	app.Post("/api/v1/addresses", h.create)
	app.Put("/api/v1/addresses/:id", h.update)
	app.Delete("/api/v1/addresses/:id", h.delete)
}

type addressRequest struct {
	FullName   string `json:"fullName"`
	Phone      string `json:"phone"`
	Line1      string `json:"line1"`
	Line2      string `json:"line2"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
}

func (h *Handler) list(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return respond.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}
	addrs, err := h.service.List(userID)
	if err != nil {
		return respond.Internal(c)
	}
	return respond.Success(c, fiber.StatusOK, addrs)
}

func (h *Handler) create(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return respond.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}
	payload := new(addressRequest)
	if err := c.BodyParser(payload); err != nil {
		return respond.Error(c, fiber.StatusBadRequest, err.Error())
	}

	created, err := h.service.Create(Address{
		UserID:     userID,
		FullName:   payload.FullName,
		Phone:      payload.Phone,
		Line1:      payload.Line1,
		Line2:      payload.Line2,
		City:       payload.City,
		State:      payload.State,
		PostalCode: payload.PostalCode,
		Country:    payload.Country,
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return respond.NotFound(c, "address not found")
		}
		return respond.ValidationError(c, err.Error(), nil)
	}
	return respond.Success(c, fiber.StatusCreated, created)
}

func (h *Handler) update(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return respond.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}
	addressID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return respond.Error(c, fiber.StatusBadRequest, "invalid address id")
	}
	payload := new(addressRequest)
	if err := c.BodyParser(payload); err != nil {
		return respond.Error(c, fiber.StatusBadRequest, err.Error())
	}

	updated, err := h.service.Update(Address{
		AddressID:  addressID,
		UserID:     userID,
		FullName:   payload.FullName,
		Phone:      payload.Phone,
		Line1:      payload.Line1,
		Line2:      payload.Line2,
		City:       payload.City,
		State:      payload.State,
		PostalCode: payload.PostalCode,
		Country:    payload.Country,
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return respond.NotFound(c, "address not found")
		}
		return respond.ValidationError(c, err.Error(), nil)
	}
	return respond.Success(c, fiber.StatusOK, updated)
}

func (h *Handler) delete(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return respond.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}
	addressID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return respond.Error(c, fiber.StatusBadRequest, "invalid address id")
	}
	if err := h.service.Delete(userID, addressID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return respond.NotFound(c, "address not found")
		}
		return respond.Internal(c)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
