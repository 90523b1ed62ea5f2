package repository

import (
	"time"

	"github.com/merchhub/merch-api/internal/domain/entity"
)

// LinkRepository define el puerto de persistencia para las tablas de vínculo
// N:M (DIP). Las lecturas excluyen filas borradas salvo que includeDeleted
// sea verdadero; solo el reconciliador necesita ver las borradas.
type LinkRepository interface {
	// FindBySubject vínculos de un sujeto.
	FindBySubject(kind entity.LinkKind, subjectID string, includeDeleted bool) ([]*entity.Link, error)
	// FindBySubjects vínculos activos cuyo sujeto esté en subjectIDs.
	FindBySubjects(kind entity.LinkKind, subjectIDs []string) ([]*entity.Link, error)
	// FindByTargets vínculos activos cuya contraparte esté en targetIDs.
	FindByTargets(kind entity.LinkKind, targetIDs []string) ([]*entity.Link, error)
	// Insert persiste una fila nueva.
	Insert(link *entity.Link) error
	// Restore limpia la marca de borrado y actualiza updated_at.
	Restore(kind entity.LinkKind, id string, at time.Time) error
	// SoftDelete marca la fila como borrada.
	SoftDelete(kind entity.LinkKind, id string, at time.Time) error
}

// EntityRepository valida existencia de entidades por clase, para que el
// reconciliador aborte antes de abrir la transacción si falta alguna
// contraparte.
type EntityRepository interface {
	// Missing devuelve los IDs que no existen (o están borrados) para la clase dada.
	Missing(kind entity.EntityKind, ids []string) ([]string, error)
}
