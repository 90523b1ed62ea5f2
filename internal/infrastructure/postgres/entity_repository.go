package postgres

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/merchhub/merch-api/internal/domain"
	"github.com/merchhub/merch-api/internal/domain/entity"
	"github.com/merchhub/merch-api/internal/domain/repository"
)

var _ repository.EntityRepository = (*EntityRepo)(nil)

var entityTables = map[entity.EntityKind]string{
	entity.KindUser:             "users",
	entity.KindCompany:          "companies",
	entity.KindCompanyUserGroup: "company_user_groups",
	entity.KindAccessGroup:      "product_access_control_groups",
	entity.KindCategory:         "product_categories",
	entity.KindTag:              "product_category_tags",
	entity.KindProduct:          "products",
}

// EntityRepo validación de existencia por clase de entidad, para que el
// reconciliador aborte antes de abrir su transacción.
type EntityRepo struct {
	q Querier
}

// NewEntityRepository construye el adaptador. Pasar pool o tx (Querier).
func NewEntityRepository(q Querier) *EntityRepo {
	return &EntityRepo{q: q}
}

// Missing devuelve, en el orden de llegada, los IDs que no existen o están
// borrados para la clase dada.
func (r *EntityRepo) Missing(kind entity.EntityKind, ids []string) ([]string, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	tbl, ok := entityTables[kind]
	if !ok {
		return nil, fmt.Errorf("%w: clase de entidad desconocida %q", domain.ErrValidation, kind)
	}
	query, args, err := psql.Select("id").
		From(tbl).
		Where(sq.Eq{"id": ids}).
		Where("deleted_at IS NULL").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("construir select: %w", err)
	}
	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("validar existencia: %w", err)
	}
	defer rows.Close()
	found := make(map[string]struct{}, len(ids))
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan id: %w", err)
		}
		found[id] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	var missing []string
	for _, id := range ids {
		if _, ok := found[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing, nil
}
