package entity

import "time"

// EntityKind identifica el tipo de entidad en un extremo de un vínculo N:M.
type EntityKind string

const (
	KindUser             EntityKind = "user"
	KindCompany          EntityKind = "company"
	KindCompanyUserGroup EntityKind = "company_user_group"
	KindAccessGroup      EntityKind = "access_group"
	KindCategory         EntityKind = "product_category"
	KindTag              EntityKind = "product_category_tag"
	KindProduct          EntityKind = "product"
)

// LinkKind identifica una de las tablas de vínculo N:M del modelo. El
// reconciliador es genérico sobre este tipo: el único punto de variación es
// qué clase de entidad se valida en cada extremo.
type LinkKind string

const (
	LinkUserAccessGroup             LinkKind = "user_access_group"
	LinkCompanyAccessGroup          LinkKind = "company_access_group"
	LinkCompanyUserGroupAccessGroup LinkKind = "company_user_group_access_group"
	LinkTagAccessGroup              LinkKind = "tag_access_group"
	LinkUserCompanyUserGroup        LinkKind = "user_company_user_group"
	LinkProductCategory             LinkKind = "product_category_assignment"
	LinkProductTag                  LinkKind = "product_tag"
)

// linkEnds registra los extremos (sujeto, objetivo) válidos por tipo de vínculo.
var linkEnds = map[LinkKind][2]EntityKind{
	LinkUserAccessGroup:             {KindUser, KindAccessGroup},
	LinkCompanyAccessGroup:          {KindCompany, KindAccessGroup},
	LinkCompanyUserGroupAccessGroup: {KindCompanyUserGroup, KindAccessGroup},
	LinkTagAccessGroup:              {KindTag, KindAccessGroup},
	LinkUserCompanyUserGroup:        {KindUser, KindCompanyUserGroup},
	LinkProductCategory:             {KindProduct, KindCategory},
	LinkProductTag:                  {KindProduct, KindTag},
}

// Valid indica si el tipo de vínculo está registrado.
func (k LinkKind) Valid() bool {
	_, ok := linkEnds[k]
	return ok
}

// SubjectKind clase de entidad del sujeto del vínculo.
func (k LinkKind) SubjectKind() EntityKind { return linkEnds[k][0] }

// TargetKind clase de entidad de la contraparte del vínculo.
func (k LinkKind) TargetKind() EntityKind { return linkEnds[k][1] }

// Link fila de vínculo N:M. Única por (SubjectID, TargetID) mientras esté
// activa; un par borrado lógicamente se resucita en lugar de duplicarse.
type Link struct {
	ID        string
	Kind      LinkKind
	SubjectID string
	TargetID  string
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time
}

// Active indica si el vínculo no está borrado lógicamente.
func (l *Link) Active() bool { return l.DeletedAt == nil }
