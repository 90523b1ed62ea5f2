package postgres

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/merchhub/merch-api/internal/domain"
	"github.com/merchhub/merch-api/internal/domain/entity"
	"github.com/merchhub/merch-api/internal/domain/repository"
)

var _ repository.LinkRepository = (*LinkRepo)(nil)

// linkTable tabla y columnas de cada arista N:M.
type linkTable struct {
	name       string
	subjectCol string
	targetCol  string
}

var linkTables = map[entity.LinkKind]linkTable{
	entity.LinkUserAccessGroup:             {"user_access_groups", "user_id", "access_group_id"},
	entity.LinkCompanyAccessGroup:          {"company_access_groups", "company_id", "access_group_id"},
	entity.LinkCompanyUserGroupAccessGroup: {"company_user_group_access_groups", "company_user_group_id", "access_group_id"},
	entity.LinkTagAccessGroup:              {"tag_access_groups", "tag_id", "access_group_id"},
	entity.LinkUserCompanyUserGroup:        {"user_company_user_groups", "user_id", "company_user_group_id"},
	entity.LinkProductCategory:             {"product_category_assignments", "product_id", "category_id"},
	entity.LinkProductTag:                  {"product_tags", "product_id", "tag_id"},
}

// LinkRepo implementación del puerto LinkRepository sobre PostgreSQL
// (usable con pool o tx).
type LinkRepo struct {
	q Querier
}

// NewLinkRepository construye el adaptador. Pasar pool o tx (Querier).
func NewLinkRepository(q Querier) *LinkRepo {
	return &LinkRepo{q: q}
}

func table(kind entity.LinkKind) (linkTable, error) {
	t, ok := linkTables[kind]
	if !ok {
		return linkTable{}, fmt.Errorf("%w: tabla de vínculo desconocida %q", domain.ErrValidation, kind)
	}
	return t, nil
}

// FindBySubject vínculos de un sujeto; includeDeleted expone también las
// filas borradas (solo el reconciliador las necesita).
func (r *LinkRepo) FindBySubject(kind entity.LinkKind, subjectID string, includeDeleted bool) ([]*entity.Link, error) {
	t, err := table(kind)
	if err != nil {
		return nil, err
	}
	b := psql.Select("id", t.subjectCol, t.targetCol, "created_at", "updated_at", "deleted_at").
		From(t.name).
		Where(sq.Eq{t.subjectCol: subjectID})
	if !includeDeleted {
		b = b.Where("deleted_at IS NULL")
	}
	return r.queryLinks(kind, b)
}

// FindBySubjects vínculos activos cuyo sujeto esté en subjectIDs.
func (r *LinkRepo) FindBySubjects(kind entity.LinkKind, subjectIDs []string) ([]*entity.Link, error) {
	if len(subjectIDs) == 0 {
		return nil, nil
	}
	t, err := table(kind)
	if err != nil {
		return nil, err
	}
	b := psql.Select("id", t.subjectCol, t.targetCol, "created_at", "updated_at", "deleted_at").
		From(t.name).
		Where(sq.Eq{t.subjectCol: subjectIDs}).
		Where("deleted_at IS NULL")
	return r.queryLinks(kind, b)
}

// FindByTargets vínculos activos cuya contraparte esté en targetIDs.
func (r *LinkRepo) FindByTargets(kind entity.LinkKind, targetIDs []string) ([]*entity.Link, error) {
	if len(targetIDs) == 0 {
		return nil, nil
	}
	t, err := table(kind)
	if err != nil {
		return nil, err
	}
	b := psql.Select("id", t.subjectCol, t.targetCol, "created_at", "updated_at", "deleted_at").
		From(t.name).
		Where(sq.Eq{t.targetCol: targetIDs}).
		Where("deleted_at IS NULL")
	return r.queryLinks(kind, b)
}

// Insert persiste una fila nueva.
func (r *LinkRepo) Insert(link *entity.Link) error {
	t, err := table(link.Kind)
	if err != nil {
		return err
	}
	query, args, err := psql.Insert(t.name).
		Columns("id", t.subjectCol, t.targetCol, "created_at", "updated_at").
		Values(link.ID, link.SubjectID, link.TargetID, link.CreatedAt, link.UpdatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("construir insert: %w", err)
	}
	if _, err := r.q.Exec(context.Background(), query, args...); err != nil {
		if isUniqueViolation(err) {
			return domain.ErrConflict
		}
		return fmt.Errorf("insert vínculo: %w", err)
	}
	return nil
}

// Restore limpia la marca de borrado (resurrección del par).
func (r *LinkRepo) Restore(kind entity.LinkKind, id string, at time.Time) error {
	t, err := table(kind)
	if err != nil {
		return err
	}
	query, args, err := psql.Update(t.name).
		Set("deleted_at", nil).
		Set("updated_at", at).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("construir update: %w", err)
	}
	if _, err := r.q.Exec(context.Background(), query, args...); err != nil {
		return fmt.Errorf("resucitar vínculo: %w", err)
	}
	return nil
}

// SoftDelete marca la fila como borrada.
func (r *LinkRepo) SoftDelete(kind entity.LinkKind, id string, at time.Time) error {
	t, err := table(kind)
	if err != nil {
		return err
	}
	query, args, err := psql.Update(t.name).
		Set("deleted_at", at).
		Set("updated_at", at).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("construir update: %w", err)
	}
	if _, err := r.q.Exec(context.Background(), query, args...); err != nil {
		return fmt.Errorf("borrar vínculo: %w", err)
	}
	return nil
}

func (r *LinkRepo) queryLinks(kind entity.LinkKind, b sq.SelectBuilder) ([]*entity.Link, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("construir select: %w", err)
	}
	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("listar vínculos: %w", err)
	}
	defer rows.Close()
	var list []*entity.Link
	for rows.Next() {
		l := entity.Link{Kind: kind}
		if err := rows.Scan(&l.ID, &l.SubjectID, &l.TargetID, &l.CreatedAt, &l.UpdatedAt, &l.DeletedAt); err != nil {
			return nil, fmt.Errorf("scan vínculo: %w", err)
		}
		list = append(list, &l)
	}
	return list, rows.Err()
}
