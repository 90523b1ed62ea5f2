package entity

import "time"

// ProductAccessControlGroup unidad de concesión de visibilidad: vincula
// sujetos (usuarios, empresas, grupos de usuarios) con etiquetas de categoría.
// No tiene atributos propios más allá de la identidad; toda su semántica vive
// en sus vínculos.
type ProductAccessControlGroup struct {
	ID        string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time
}

// Active indica si el grupo no está borrado lógicamente.
func (g *ProductAccessControlGroup) Active() bool { return g.DeletedAt == nil }
