package entity

import "time"

// ProductCategory agrupa productos del catálogo. CompanyID vacío = categoría
// global/por defecto compartida entre empresas.
type ProductCategory struct {
	ID        string
	CompanyID string
	Name      string
	IsHidden  bool
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time
}

// Active indica si la categoría no está borrada lógicamente.
func (c *ProductCategory) Active() bool { return c.DeletedAt == nil }

// ProductCategoryTag etiqueta bajo una categoría; es la unidad de control de
// acceso sobre productos. Su categoría es inmutable después de creada.
type ProductCategoryTag struct {
	ID         string
	CategoryID string
	Name       string
	CreatedAt  time.Time
	UpdatedAt  time.Time
	DeletedAt  *time.Time
}

// Active indica si la etiqueta no está borrada lógicamente.
func (t *ProductCategoryTag) Active() bool { return t.DeletedAt == nil }
