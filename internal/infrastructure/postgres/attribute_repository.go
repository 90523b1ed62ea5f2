package postgres

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/merchhub/merch-api/internal/domain/entity"
	"github.com/merchhub/merch-api/internal/domain/repository"
)

var _ repository.AttributeRepository = (*AttributeRepo)(nil)

// AttributeRepo implementación del puerto AttributeRepository sobre PostgreSQL.
type AttributeRepo struct {
	q Querier
}

// NewAttributeRepository construye el adaptador. Pasar pool o tx (Querier).
func NewAttributeRepository(q Querier) *AttributeRepo {
	return &AttributeRepo{q: q}
}

// Get atributo activo por clase e ID; nil si no existe.
func (r *AttributeRepo) Get(kind entity.AttributeKind, id string) (*entity.Attribute, error) {
	return r.getWhere(sq.Eq{"kind": string(kind), "id": id})
}

// FindByName atributo activo por clase y nombre, sin distinguir mayúsculas;
// nil si no existe.
func (r *AttributeRepo) FindByName(kind entity.AttributeKind, name string) (*entity.Attribute, error) {
	return r.getWhere(sq.And{
		sq.Eq{"kind": string(kind)},
		sq.Expr("LOWER(name) = LOWER(?)", name),
	})
}

func (r *AttributeRepo) getWhere(cond sq.Sqlizer) (*entity.Attribute, error) {
	query, args, err := psql.Select("id", "kind", "name", "created_at", "updated_at", "deleted_at").
		From("attributes").
		Where(cond).
		Where("deleted_at IS NULL").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("construir select: %w", err)
	}
	var a entity.Attribute
	err = r.q.QueryRow(context.Background(), query, args...).
		Scan(&a.ID, &a.Kind, &a.Name, &a.CreatedAt, &a.UpdatedAt, &a.DeletedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("obtener atributo: %w", err)
	}
	return &a, nil
}
