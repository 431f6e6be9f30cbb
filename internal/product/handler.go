package product

import (
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/ordercore/shop-backend/internal/respond"
)

type Handler struct {
	service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{service: s}
}

func (h *Handler) RegisterPublicRoutes(app *fiber.App) {
	app.Get("/api/v1/products", h.list)
	app.Get("/api/v1/products/:id<[0-9]+>", h.get)
}

func (h *Handler) RegisterAdminRoutes(admin fiber.Router) {
	admin.Post("/products", h.create)
	admin.Put("/products/:id<[0-9]+>", h.update)
	admin.Delete("/products/:id<[0-9]+>", h.delete)
}

type productRequest struct {
	Name             string     `json:"productName"`
	Description      string     `json:"productDesc"`
	Price            float64    `json:"price"`
	StockQuantity    int        `json:"stockQuantity"`
	DiscountPercent  *float64   `json:"discountPercent"`
	DiscountStartsAt *time.Time `json:"discountStartsAt"`
	DiscountEndsAt   *time.Time `json:"discountEndsAt"`
}

// productView adds the effective price so clients don't re-implement the
// discount-window math.
type productView struct {
	Product
	EffectivePrice float64 `json:"effectivePrice"`
}

func toView(p Product, now time.Time) productView {
	return productView{Product: p, EffectivePrice: p.EffectivePrice(now)}
}

func (h *Handler) list(c *fiber.Ctx) error {
	products, err := h.service.List()
	if err != nil {
		return respond.Internal(c)
	}
	now := time.Now()
	out := make([]productView, 0, len(products))
	for _, p := range products {
		out = append(out, toView(p, now))
	}
	return respond.Success(c, fiber.StatusOK, out)
}

func (h *Handler) get(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return respond.Error(c, fiber.StatusBadRequest, "invalid product id")
	}
	p, err := h.service.GetByID(id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return respond.NotFound(c, "product not found")
		}
		return respond.Internal(c)
	}
	return respond.Success(c, fiber.StatusOK, toView(p, time.Now()))
}

func (h *Handler) create(c *fiber.Ctx) error {
	payload := new(productRequest)
	if err := c.BodyParser(payload); err != nil {
		return respond.Error(c, fiber.StatusBadRequest, err.Error())
	}
	created, err := h.service.Create(Product{
		Name:             payload.Name,
		Description:      payload.Description,
		Price:            payload.Price,
		StockQuantity:    payload.StockQuantity,
		DiscountPercent:  payload.DiscountPercent,
		DiscountStartsAt: payload.DiscountStartsAt,
		DiscountEndsAt:   payload.DiscountEndsAt,
	})
	if err != nil {
		return respond.ValidationError(c, err.Error(), nil)
	}
	return respond.Success(c, fiber.StatusCreated, created)
}

func (h *Handler) update(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return respond.Error(c, fiber.StatusBadRequest, "invalid product id")
	}
	payload := new(productRequest)
	if err := c.BodyParser(payload); err != nil {
		return respond.Error(c, fiber.StatusBadRequest, err.Error())
	}
	updated, err := h.service.Update(id, Product{
		Name:             payload.Name,
		Description:      payload.Description,
		Price:            payload.Price,
		StockQuantity:    payload.StockQuantity,
		DiscountPercent:  payload.DiscountPercent,
		DiscountStartsAt: payload.DiscountStartsAt,
		DiscountEndsAt:   payload.DiscountEndsAt,
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return respond.NotFound(c, "product not found")
		}
		return respond.ValidationError(c, err.Error(), nil)
	}
	return respond.Success(c, fiber.StatusOK, updated)
}

func (h *Handler) delete(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return respond.Error(c, fiber.StatusBadRequest, "invalid product id")
	}
	if err := h.service.Delete(id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return respond.NotFound(c, "product not found")
		}
		return respond.Internal(c)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
