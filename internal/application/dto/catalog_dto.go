package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/merchhub/merch-api/internal/domain/entity"
)

// OrderBy par campo/dirección pedido por el llamador. Dir es "asc" o "desc"
// (vacío = asc).
type OrderBy struct {
	Field string `json:"field"`
	Dir   string `json:"dir"`
}

// ListQuery opciones reconocidas del listado de productos. Es el único
// conjunto de filtros aceptado: claves fuera de este struct se rechazan en el
// transporte y campos fuera de las listas permitidas producen ErrValidation.
type ListQuery struct {
	Search       string           `json:"search"`
	Page         int              `json:"page"`
	Limit        int              `json:"limit"`
	Category     string           `json:"category"` // nombre o ID
	Tags         []string         `json:"tags"`     // el producto debe llevarlas todas
	MinPrice     *decimal.Decimal `json:"minPrice"`
	MaxPrice     *decimal.Decimal `json:"maxPrice"`
	Price        string           `json:"price"` // rango "bajo-alto", ej. "150-200"
	Color        string           `json:"color"`
	Material     string           `json:"material"`
	Size         string           `json:"size"`
	ShowChildren *bool            `json:"showChildren"` // nil = true
	OrderBy      []OrderBy        `json:"orderBy"`
	Select       []string         `json:"select"`
}

// VariationFilter filtros para el listado de la familia de variaciones.
type VariationFilter struct {
	Color      string `json:"color"`
	Material   string `json:"material"`
	Size       string `json:"size"`
	ShowParent bool   `json:"showParent"`
	Page       int    `json:"page"`
	Limit      int    `json:"limit"`
}

// PriceResponse precio de venta en respuestas.
type PriceResponse struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
	Discount decimal.Decimal `json:"discount"`
	Net      decimal.Decimal `json:"net"`
}

// ProductSummary salida de un producto en listados.
type ProductSummary struct {
	ID        string        `json:"id"`
	SKU       string        `json:"sku"`
	Name      string        `json:"name"`
	Price     PriceResponse `json:"price"`
	IsParent  bool          `json:"isParent"`
	ParentID  string        `json:"parentId,omitempty"`
	IsVisible bool          `json:"isVisible"`
	CreatedAt time.Time     `json:"createdAt"`
}

// ProductDetail salida del detalle de un producto.
type ProductDetail struct {
	ProductSummary
	Description string        `json:"description,omitempty"`
	CompanyID   string        `json:"companyId,omitempty"`
	Color       string        `json:"color,omitempty"`
	Material    string        `json:"material,omitempty"`
	Size        string        `json:"size,omitempty"`
	Tags        []TagResponse `json:"tags"`
	UpdatedAt   time.Time     `json:"updatedAt"`
}

// TagResponse salida de una etiqueta de categoría.
type TagResponse struct {
	ID         string `json:"id"`
	CategoryID string `json:"categoryId"`
	Name       string `json:"name"`
}

// ProductPage página de productos más metadatos.
type ProductPage struct {
	Items []ProductSummary `json:"items"`
	Meta  PageMeta         `json:"meta"`
}

// TagPage página de etiquetas más metadatos.
type TagPage struct {
	Items []TagResponse `json:"items"`
	Meta  PageMeta      `json:"meta"`
}

// ToProductSummary mapea la entidad a su resumen.
func ToProductSummary(p *entity.Product) ProductSummary {
	return ProductSummary{
		ID:   p.ID,
		SKU:  p.SKU,
		Name: p.Name,
		Price: PriceResponse{
			Amount:   p.Price.Amount,
			Currency: p.Price.Currency,
			Discount: p.Price.Discount,
			Net:      p.Price.Net(),
		},
		IsParent:  p.IsParent,
		ParentID:  p.ParentID,
		IsVisible: p.IsVisible,
		CreatedAt: p.CreatedAt,
	}
}

// ToTagResponse mapea la entidad a su salida.
func ToTagResponse(t *entity.ProductCategoryTag) TagResponse {
	return TagResponse{ID: t.ID, CategoryID: t.CategoryID, Name: t.Name}
}

// Project reduce cada resumen a los campos pedidos en `select` (ya validados
// contra la lista permitida). Se usa en el transporte para la proyección JSON.
func Project(items []ProductSummary, fields []string) []map[string]any {
	out := make([]map[string]any, 0, len(items))
	for _, it := range items {
		row := make(map[string]any, len(fields))
		for _, f := range fields {
			switch f {
			case "id":
				row[f] = it.ID
			case "sku":
				row[f] = it.SKU
			case "name":
				row[f] = it.Name
			case "price":
				row[f] = it.Price
			case "isParent":
				row[f] = it.IsParent
			case "parentId":
				row[f] = it.ParentID
			case "isVisible":
				row[f] = it.IsVisible
			case "createdAt":
				row[f] = it.CreatedAt
			}
		}
		out = append(out, row)
	}
	return out
}
