package entity

import "time"

// AttributeKind tipos de atributo de producto.
type AttributeKind string

const (
	AttributeColor    AttributeKind = "color"
	AttributeMaterial AttributeKind = "material"
	AttributeSize     AttributeKind = "size"
)

// Attribute entrada de catálogo de atributos (color, material o talla).
// Los filtros del catálogo los buscan por nombre, sin distinguir mayúsculas.
type Attribute struct {
	ID        string
	Kind      AttributeKind
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time
}

// Active indica si el atributo no está borrado lógicamente.
func (a *Attribute) Active() bool { return a.DeletedAt == nil }
