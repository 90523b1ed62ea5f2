package http

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/merchhub/merch-api/internal/application/catalog"
	"github.com/merchhub/merch-api/internal/application/dto"
	"github.com/merchhub/merch-api/internal/domain"
)

// Claves de query reconocidas por el listado. Cualquier otra clave se
// rechaza como error de validación en lugar de ignorarse en silencio.
var listQueryKeys = map[string]struct{}{
	"search": {}, "page": {}, "limit": {}, "category": {}, "tags": {},
	"minPrice": {}, "maxPrice": {}, "price": {}, "color": {}, "material": {},
	"size": {}, "showChildren": {}, "orderBy": {}, "select": {},
}

// ProductHandler maneja las peticiones HTTP del catálogo (protegido).
type ProductHandler struct {
	uc       *catalog.UseCase
	validate *validator.Validate
}

// NewProductHandler construye el handler.
func NewProductHandler(uc *catalog.UseCase) *ProductHandler {
	return &ProductHandler{uc: uc, validate: validator.New()}
}

// List lista productos visibles para la identidad con los filtros de query.
func (h *ProductHandler) List(c *fiber.Ctx) error {
	q, err := parseListQuery(c)
	if err != nil {
		return respondError(c, err)
	}
	page, err := h.uc.List(GetIdentity(c), q)
	if err != nil {
		return respondError(c, err)
	}
	if len(q.Select) > 0 {
		return c.JSON(fiber.Map{
			"items": dto.Project(page.Items, q.Select),
			"meta":  page.Meta,
		})
	}
	return c.JSON(page)
}

// Get detalle por ID o SKU. 404 si no existe, 403 si existe pero la
// identidad no puede verlo.
func (h *ProductHandler) Get(c *fiber.Ctx) error {
	out, err := h.uc.Get(GetIdentity(c), c.Params("idOrSku"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// SimilarTags etiquetas de productos que comparten categoría con el dado.
func (h *ProductHandler) SimilarTags(c *fiber.Ctx) error {
	out, err := h.uc.SimilarTags(GetIdentity(c), c.Params("id"), c.QueryInt("page", 1), c.QueryInt("limit", 0))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Variations familia de variaciones del producto.
func (h *ProductHandler) Variations(c *fiber.Ctx) error {
	f := dto.VariationFilter{
		Color:      c.Query("color"),
		Material:   c.Query("material"),
		Size:       c.Query("size"),
		ShowParent: c.QueryBool("showParent", false),
		Page:       c.QueryInt("page", 1),
		Limit:      c.QueryInt("limit", 0),
	}
	out, err := h.uc.Variations(GetIdentity(c), c.Params("id"), f)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// AssignChildren iguala el conjunto de hijos de un padre (solo admin).
func (h *ProductHandler) AssignChildren(c *fiber.Ctx) error {
	var in dto.ChildAssignmentRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if err := h.validate.Struct(in); err != nil {
		return respondError(c, fmt.Errorf("%w: %s", domain.ErrValidation, err.Error()))
	}
	out, err := h.uc.AssignChildren(c.Context(), c.Params("id"), in.ChildIDs)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// parseListQuery traduce los query params al ListQuery cerrado del motor.
func parseListQuery(c *fiber.Ctx) (dto.ListQuery, error) {
	var q dto.ListQuery
	for key := range c.Queries() {
		if _, ok := listQueryKeys[key]; !ok {
			return q, fmt.Errorf("%w: filtro desconocido %q", domain.ErrValidation, key)
		}
	}
	q.Search = c.Query("search")
	q.Page = c.QueryInt("page", 0)
	q.Limit = c.QueryInt("limit", 0)
	q.Category = c.Query("category")
	q.Price = c.Query("price")
	q.Color = c.Query("color")
	q.Material = c.Query("material")
	q.Size = c.Query("size")

	if raw := c.Query("tags"); raw != "" {
		q.Tags = splitCSV(raw)
	}
	if raw := c.Query("select"); raw != "" {
		q.Select = splitCSV(raw)
	}
	if raw := c.Query("minPrice"); raw != "" {
		d, err := decimal.NewFromString(raw)
		if err != nil {
			return q, fmt.Errorf("%w: minPrice %q", domain.ErrValidation, raw)
		}
		q.MinPrice = &d
	}
	if raw := c.Query("maxPrice"); raw != "" {
		d, err := decimal.NewFromString(raw)
		if err != nil {
			return q, fmt.Errorf("%w: maxPrice %q", domain.ErrValidation, raw)
		}
		q.MaxPrice = &d
	}
	if raw := c.Query("showChildren"); raw != "" {
		v := c.QueryBool("showChildren", true)
		q.ShowChildren = &v
	}
	// orderBy=name:asc,price:desc
	if raw := c.Query("orderBy"); raw != "" {
		for _, part := range splitCSV(raw) {
			field, dir, _ := strings.Cut(part, ":")
			q.OrderBy = append(q.OrderBy, dto.OrderBy{Field: field, Dir: dir})
		}
	}
	return q, nil
}

func splitCSV(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
