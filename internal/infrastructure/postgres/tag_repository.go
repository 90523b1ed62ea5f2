package postgres

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/merchhub/merch-api/internal/domain/entity"
	"github.com/merchhub/merch-api/internal/domain/repository"
)

var _ repository.TagRepository = (*TagRepo)(nil)

// TagRepo implementación del puerto TagRepository sobre PostgreSQL.
type TagRepo struct {
	q Querier
}

// NewTagRepository construye el adaptador. Pasar pool o tx (Querier).
func NewTagRepository(q Querier) *TagRepo {
	return &TagRepo{q: q}
}

// GetByIDs etiquetas activas por ID; los IDs inexistentes se omiten.
func (r *TagRepo) GetByIDs(ids []string) ([]*entity.ProductCategoryTag, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query, args, err := psql.Select("id", "category_id", "name", "created_at", "updated_at", "deleted_at").
		From("product_category_tags").
		Where(sq.Eq{"id": ids}).
		Where("deleted_at IS NULL").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("construir select: %w", err)
	}
	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("listar etiquetas: %w", err)
	}
	defer rows.Close()
	var list []*entity.ProductCategoryTag
	for rows.Next() {
		var t entity.ProductCategoryTag
		if err := rows.Scan(&t.ID, &t.CategoryID, &t.Name, &t.CreatedAt, &t.UpdatedAt, &t.DeletedAt); err != nil {
			return nil, fmt.Errorf("scan etiqueta: %w", err)
		}
		list = append(list, &t)
	}
	return list, rows.Err()
}
