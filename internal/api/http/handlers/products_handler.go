package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/Sherryli112/HatGiveMe/internal/api/dto"
	"github.com/Sherryli112/HatGiveMe/internal/auth"
	"github.com/Sherryli112/HatGiveMe/internal/service"
	apperrors "github.com/Sherryli112/HatGiveMe/pkg/util"
)

// ProductsHandler exposes catalog endpoints.
type ProductsHandler struct {
	catalog *service.CatalogService
}

// NewProductsHandler constructs handler.
func NewProductsHandler(catalogService *service.CatalogService) *ProductsHandler {
	return &ProductsHandler{catalog: catalogService}
}

// List handles GET /products.
func (h *ProductsHandler) List(c *fiber.Ctx) error {
	products, err := h.catalog.ListProducts(c.Context(), parseIntQuery(c, "limit", 50), parseIntQuery(c, "offset", 0))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromProducts(products)})
}

// Get handles GET /products/:id.
func (h *ProductsHandler) Get(c *fiber.Ctx) error {
	product, err := h.catalog.GetProduct(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromProduct(product)})
}

// Create handles POST /products (admin).
func (h *ProductsHandler) Create(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	var req dto.ProductRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if err := dto.Validate(req); err != nil {
		return err
	}
	price, err := req.ParsePrice()
	if err != nil {
		return apperrors.NewValidationError("invalid price", map[string]any{"price": req.Price})
	}

	product, err := h.catalog.CreateProduct(c.Context(), principal.ID, service.ProductInput{
		Name:        req.Name,
		Description: req.Description,
		Price:       price,
		Stock:       req.Stock,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.FromProduct(product)})
}

// Update handles PATCH /products/:id (admin).
func (h *ProductsHandler) Update(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	var req dto.ProductRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if err := dto.Validate(req); err != nil {
		return err
	}
	price, err := req.ParsePrice()
	if err != nil {
		return apperrors.NewValidationError("invalid price", map[string]any{"price": req.Price})
	}

	product, err := h.catalog.UpdateProduct(c.Context(), principal.ID, c.Params("id"), service.ProductInput{
		Name:        req.Name,
		Description: req.Description,
		Price:       price,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromProduct(product)})
}
