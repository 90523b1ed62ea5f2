package entity

import "time"

// Company representa una organización/tenant del sistema (campañas de
// merchandising multi-empresa).
type Company struct {
	ID        string
	Name      string
	Domain    string // dominio de correo corporativo
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time
}

// Active indica si la empresa no está borrada lógicamente.
func (c *Company) Active() bool { return c.DeletedAt == nil }

// CompanyUserGroup grupo de usuarios dentro de una empresa (p.ej. un equipo o
// departamento). Pertenece a exactamente una Company.
type CompanyUserGroup struct {
	ID        string
	CompanyID string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time
}

// Active indica si el grupo no está borrado lógicamente.
func (g *CompanyUserGroup) Active() bool { return g.DeletedAt == nil }
