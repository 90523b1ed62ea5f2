package entity

// Identity datos mínimos del solicitante, provistos por la capa de transporte
// (claims del JWT). CompanyID y CompanyUserGroupIDs son opcionales: su
// ausencia degrada a "sin concesiones extra", nunca a error.
type Identity struct {
	UserID              string
	Role                string
	CompanyID           string
	CompanyUserGroupIDs []string
}

// Privileged indica si la identidad ve todo el catálogo sin pasar por el
// grafo de acceso.
func (i Identity) Privileged() bool { return i.Role == RoleAdmin }

// AccessScope resultado de resolver el grafo de acceso para una identidad.
// Unrestricted es el centinela de administrador; si es falso, TagIDs es el
// conjunto de etiquetas visibles (puede estar vacío: solo productos sin
// etiquetas controladas).
type AccessScope struct {
	Unrestricted bool
	TagIDs       []string
}

// Allows indica si la etiqueta está dentro del alcance.
func (s AccessScope) Allows(tagID string) bool {
	if s.Unrestricted {
		return true
	}
	for _, id := range s.TagIDs {
		if id == tagID {
			return true
		}
	}
	return false
}
