package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/merchhub/merch-api/internal/domain/entity"
	"github.com/merchhub/merch-api/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

const productColumns = "p.id, p.company_id, p.sku, p.name, p.description, " +
	"p.price_amount, p.price_currency, p.price_discount, p.is_parent, p.parent_id, " +
	"p.is_visible, p.color_id, p.material_id, p.size_id, p.created_at, p.updated_at, p.deleted_at"

// netPrice expresión del precio neto contra el que comparan filtros y orden.
const netPrice = "GREATEST(p.price_amount - p.price_discount, 0)"

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL
// (usable con pool o tx). La búsqueda arma el SQL dinámico con squirrel: el
// alcance ACL, los filtros y el orden componen cláusulas sobre una misma base.
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

// GetByID obtiene un producto activo por ID; nil si no existe.
func (r *ProductRepo) GetByID(id string) (*entity.Product, error) {
	return r.getWhere(sq.Eq{"p.id": id})
}

// GetBySKU obtiene un producto activo por SKU; nil si no existe.
func (r *ProductRepo) GetBySKU(sku string) (*entity.Product, error) {
	return r.getWhere(sq.Eq{"p.sku": sku})
}

// ChildrenOf hijos activos de un padre.
func (r *ProductRepo) ChildrenOf(parentID string) ([]*entity.Product, error) {
	b := psql.Select(productColumns).
		From("products p").
		Where(sq.Eq{"p.parent_id": parentID}).
		Where("p.deleted_at IS NULL").
		OrderBy("p.created_at", "p.id")
	return r.queryProducts(b)
}

// SetParent asigna (o limpia, con parentID vacío) el padre de un producto.
func (r *ProductRepo) SetParent(productID, parentID string, at time.Time) error {
	query, args, err := psql.Update("products").
		Set("parent_id", nullableString(parentID)).
		Set("updated_at", at).
		Where(sq.Eq{"id": productID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("construir update: %w", err)
	}
	if _, err := r.q.Exec(context.Background(), query, args...); err != nil {
		return fmt.Errorf("asignar padre: %w", err)
	}
	return nil
}

// MarkParent actualiza la marca is_parent.
func (r *ProductRepo) MarkParent(productID string, isParent bool, at time.Time) error {
	query, args, err := psql.Update("products").
		Set("is_parent", isParent).
		Set("updated_at", at).
		Where(sq.Eq{"id": productID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("construir update: %w", err)
	}
	if _, err := r.q.Exec(context.Background(), query, args...); err != nil {
		return fmt.Errorf("marcar padre: %w", err)
	}
	return nil
}

// Search aplica el filtro completo y devuelve la página más el total
// post-filtro, pre-paginación.
func (r *ProductRepo) Search(f repository.ProductFilter) ([]*entity.Product, int, error) {
	conds := r.conditions(f)

	countQuery, countArgs, err := psql.Select("COUNT(*)").From("products p").Where(conds).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("construir count: %w", err)
	}
	var total int
	if err := r.q.QueryRow(context.Background(), countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("contar productos: %w", err)
	}

	b := psql.Select(productColumns).
		From("products p").
		Where(conds).
		OrderBy(orderClauses(f.Order)...).
		Limit(uint64(f.Limit)).
		Offset(uint64(f.Offset))
	products, err := r.queryProducts(b)
	if err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

// conditions traduce ProductFilter a cláusulas SQL. El alcance ACL va
// siempre: sin centinela de administrador, un producto entra si no lleva
// ninguna etiqueta controlada o si alguna de sus etiquetas está en el
// conjunto visible.
func (r *ProductRepo) conditions(f repository.ProductFilter) sq.And {
	conds := sq.And{sq.Expr("p.deleted_at IS NULL")}

	if !f.Scope.Unrestricted {
		ungated := sq.Expr(`NOT EXISTS (
			SELECT 1 FROM product_tags pt
			JOIN tag_access_groups tg ON tg.tag_id = pt.tag_id AND tg.deleted_at IS NULL
			WHERE pt.product_id = p.id AND pt.deleted_at IS NULL)`)
		if len(f.Scope.TagIDs) > 0 {
			conds = append(conds, sq.Or{ungated, sq.Expr(`EXISTS (
				SELECT 1 FROM product_tags pt
				WHERE pt.product_id = p.id AND pt.deleted_at IS NULL AND pt.tag_id = ANY(?))`, f.Scope.TagIDs)})
		} else {
			conds = append(conds, ungated)
		}
	}
	if !f.IncludeHidden {
		conds = append(conds, sq.Eq{"p.is_visible": true})
	}
	if !f.IncludeChildren {
		conds = append(conds, sq.Expr("p.parent_id IS NULL"))
	}
	if f.Search != "" {
		conds = append(conds, sq.ILike{"p.name": "%" + f.Search + "%"})
	}
	if f.Category != "" {
		conds = append(conds, sq.Expr(`EXISTS (
			SELECT 1 FROM product_category_assignments pca
			JOIN product_categories pc ON pc.id = pca.category_id AND pc.deleted_at IS NULL
			WHERE pca.product_id = p.id AND pca.deleted_at IS NULL
			  AND (pc.id = ? OR LOWER(pc.name) = LOWER(?)))`, f.Category, f.Category))
	}
	// Filtro de etiquetas: AND sobre todas las pedidas (distinto del OR del
	// alcance ACL sobre la misma tabla).
	for _, tagID := range f.TagIDs {
		conds = append(conds, sq.Expr(`EXISTS (
			SELECT 1 FROM product_tags pt
			WHERE pt.product_id = p.id AND pt.deleted_at IS NULL AND pt.tag_id = ?)`, tagID))
	}
	if f.MinPrice != nil {
		conds = append(conds, sq.Expr(netPrice+" >= ?", *f.MinPrice))
	}
	if f.MaxPrice != nil {
		conds = append(conds, sq.Expr(netPrice+" <= ?", *f.MaxPrice))
	}
	attr := func(col string, kind entity.AttributeKind, name string) {
		if name == "" {
			return
		}
		conds = append(conds, sq.Expr(`EXISTS (
			SELECT 1 FROM attributes a
			WHERE a.id = p.`+col+` AND a.kind = ? AND a.deleted_at IS NULL
			  AND LOWER(a.name) = LOWER(?))`, string(kind), name))
	}
	attr("color_id", entity.AttributeColor, f.Color)
	attr("material_id", entity.AttributeMaterial, f.Material)
	attr("size_id", entity.AttributeSize, f.Size)

	return conds
}

// orderClauses orden estable: created_at DESC por defecto, id como último
// desempate siempre.
func orderClauses(order []repository.OrderClause) []string {
	cols := map[string]string{
		"name":      "p.name",
		"price":     netPrice,
		"createdAt": "p.created_at",
		"sku":       "p.sku",
	}
	if len(order) == 0 {
		return []string{"p.created_at DESC", "p.id"}
	}
	out := make([]string, 0, len(order)+1)
	for _, o := range order {
		col, ok := cols[o.Field]
		if !ok {
			continue
		}
		if o.Desc {
			out = append(out, col+" DESC")
		} else {
			out = append(out, col)
		}
	}
	return append(out, "p.id")
}

func (r *ProductRepo) getWhere(cond sq.Eq) (*entity.Product, error) {
	query, args, err := psql.Select(productColumns).
		From("products p").
		Where(cond).
		Where("p.deleted_at IS NULL").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("construir select: %w", err)
	}
	p, err := scanProduct(r.q.QueryRow(context.Background(), query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("obtener producto: %w", err)
	}
	return p, nil
}

func (r *ProductRepo) queryProducts(b sq.SelectBuilder) ([]*entity.Product, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("construir select: %w", err)
	}
	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("listar productos: %w", err)
	}
	defer rows.Close()
	var list []*entity.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan producto: %w", err)
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

func scanProduct(row pgx.Row) (*entity.Product, error) {
	var p entity.Product
	var companyID, parentID, colorID, materialID, sizeID *string
	err := row.Scan(
		&p.ID, &companyID, &p.SKU, &p.Name, &p.Description,
		&p.Price.Amount, &p.Price.Currency, &p.Price.Discount, &p.IsParent, &parentID,
		&p.IsVisible, &colorID, &materialID, &sizeID, &p.CreatedAt, &p.UpdatedAt, &p.DeletedAt,
	)
	if err != nil {
		return nil, err
	}
	p.CompanyID = derefString(companyID)
	p.ParentID = derefString(parentID)
	p.ColorID = derefString(colorID)
	p.MaterialID = derefString(materialID)
	p.SizeID = derefString(sizeID)
	return &p, nil
}
