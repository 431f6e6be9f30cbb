package cart

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/ordercore/shop-backend/internal/product"
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
	app.Get("/api/v1/cart", h.getCart)
	app.Post("/api/v1/cart/items", h.addItem)
	app.Put("/api/v1/cart/items/:productID<[0-9]+>", h.setQuantity)
	app.Delete("/api/v1/cart/items/:productID<[0-9]+>", h.removeItem)
	app.Delete("/api/v1/cart", h.clear)
}

type addItemRequest struct {
	ProductID int `json:"productId"`
	Quantity  int `json:"quantity"`
}

type setQuantityRequest struct {
	Quantity int `json:"quantity"`
}

func (h *Handler) getCart(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return respond.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}
	view, err := h.service.View(userID)
	if err != nil {
		return respond.Internal(c)
	}
	return respond.Success(c, fiber.StatusOK, view)
}

func (h *Handler) addItem(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return respond.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}
	payload := new(addItemRequest)
	if err := c.BodyParser(payload); err != nil {
		return respond.Error(c, fiber.StatusBadRequest, err.Error())
	}
	if payload.ProductID <= 0 {
		return respond.ValidationError(c, "invalid request", map[string]string{"productId": "productId is required"})
	}

	view, err := h.service.AddItem(userID, payload.ProductID, payload.Quantity)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidQuantity):
			return respond.ValidationError(c, err.Error(), map[string]string{"quantity": "quantity must be at least 1"})
		case errors.Is(err, product.ErrNotFound):
			return respond.NotFound(c, "product not found")
		default:
			return respond.Internal(c)
		}
	}
	return respond.Success(c, fiber.StatusOK, view)
}

func (h *Handler) setQuantity(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return respond.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}
	productID, err := strconv.Atoi(c.Params("productID"))
	if err != nil {
		return respond.Error(c, fiber.StatusBadRequest, "invalid product id")
	}
	payload := new(setQuantityRequest)
	if err := c.BodyParser(payload); err != nil {
		return respond.Error(c, fiber.StatusBadRequest, err.Error())
	}

	view, err := h.service.SetQuantity(userID, productID, payload.Quantity)
	if err != nil {
		if errors.Is(err, ErrItemNotFound) {
			return respond.NotFound(c, "cart item not found")
		}
		return respond.Internal(c)
	}
	return respond.Success(c, fiber.StatusOK, view)
}

func (h *Handler) removeItem(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return respond.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}
	productID, err := strconv.Atoi(c.Params("productID"))
	if err != nil {
		return respond.Error(c, fiber.StatusBadRequest, "invalid product id")
	}

	view, err := h.service.RemoveItem(userID, productID)
	if err != nil {
		if errors.Is(err, ErrItemNotFound) {
			return respond.NotFound(c, "cart item not found")
		}
		return respond.Internal(c)
	}
	return respond.Success(c, fiber.StatusOK, view)
}

func (h *Handler) clear(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return respond.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}
	if err := h.service.Clear(userID); err != nil {
		return respond.Internal(c)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
