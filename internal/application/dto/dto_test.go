package dto_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/merchhub/merch-api/internal/application/dto"
	"github.com/merchhub/merch-api/internal/domain/entity"
)

// pageCount = ceil(total/perPage); el total es post-filtro, pre-paginación.
func TestNewPageMeta(t *testing.T) {
	assert.Equal(t, dto.PageMeta{Page: 1, PerPage: 10, PageCount: 1, Total: 10}, dto.NewPageMeta(1, 10, 10))
	assert.Equal(t, dto.PageMeta{Page: 2, PerPage: 10, PageCount: 2, Total: 11}, dto.NewPageMeta(2, 10, 11))
	assert.Equal(t, dto.PageMeta{Page: 1, PerPage: 10, PageCount: 0, Total: 0}, dto.NewPageMeta(1, 10, 0))
}

// El resumen calcula el neto una sola vez, nunca negativo.
func TestToProductSummary_PrecioNeto(t *testing.T) {
	p := &entity.Product{
		ID: "p-1", SKU: "SKU-1", Name: "Camiseta",
		Price: entity.Price{
			Amount:   decimal.NewFromInt(10),
			Currency: "EUR",
			Discount: decimal.NewFromInt(15),
		},
		IsVisible: true,
		CreatedAt: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	s := dto.ToProductSummary(p)
	assert.True(t, s.Price.Net.IsZero(), "un descuento mayor que el monto satura en cero")
}

// La proyección devuelve exactamente los campos pedidos, por fila.
func TestProject(t *testing.T) {
	items := []dto.ProductSummary{
		{ID: "p-1", SKU: "SKU-1", Name: "Camiseta", IsParent: true},
		{ID: "p-2", SKU: "SKU-2", Name: "Gorra"},
	}
	rows := dto.Project(items, []string{"id", "sku"})

	assert.Len(t, rows, 2)
	assert.Equal(t, map[string]any{"id": "p-1", "sku": "SKU-1"}, rows[0])
	assert.Equal(t, map[string]any{"id": "p-2", "sku": "SKU-2"}, rows[1])
}
