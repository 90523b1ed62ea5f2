package entity

import "time"

// Roles válidos para User. RoleAdmin ve el catálogo completo sin pasar por el
// grafo de acceso.
const (
	RoleAdmin           = "admin"
	RoleCampaignManager = "campaignmanager"
	RoleEmployee        = "employee"
)

// User representa un usuario del sistema (pertenece opcionalmente a una Company).
type User struct {
	ID        string
	CompanyID string
	Email     string
	Name      string
	Role      string // ver constantes Role*
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time
}

// Active indica si el usuario no está borrado lógicamente.
func (u *User) Active() bool { return u.DeletedAt == nil }
