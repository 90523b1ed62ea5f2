package catalog

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/merchhub/merch-api/internal/application/accesscontrol"
	"github.com/merchhub/merch-api/internal/application/dto"
	"github.com/merchhub/merch-api/internal/domain"
	"github.com/merchhub/merch-api/internal/domain/entity"
	"github.com/merchhub/merch-api/internal/domain/repository"
)

// TxRunner ejecuta el callback con un repositorio de productos atado a una
// transacción (asignación de hijos).
type TxRunner interface {
	RunProducts(ctx context.Context, fn func(products repository.ProductRepository) error) error
}

// Config límites de paginación del catálogo.
type Config struct {
	DefaultPageSize int
	MaxPageSize     int
}

// Campos permitidos para orderBy y select. Pedir un campo fuera de la lista
// es error de validación, no se ignora en silencio.
var (
	orderFields = map[string]struct{}{
		"name": {}, "price": {}, "createdAt": {}, "sku": {},
	}
	selectFields = map[string]struct{}{
		"id": {}, "sku": {}, "name": {}, "price": {}, "isParent": {},
		"parentId": {}, "isVisible": {}, "createdAt": {},
	}
)

// UseCase operaciones de lectura del catálogo. Toda operación aplica primero
// la decisión del grafo de acceso y después los filtros del llamador.
type UseCase struct {
	products repository.ProductRepository
	tags     repository.TagRepository
	attrs    repository.AttributeRepository
	links    repository.LinkRepository
	resolver *accesscontrol.Resolver
	tx       TxRunner
	cfg      Config
}

// NewUseCase construye el caso de uso del catálogo.
func NewUseCase(
	products repository.ProductRepository,
	tags repository.TagRepository,
	attrs repository.AttributeRepository,
	links repository.LinkRepository,
	resolver *accesscontrol.Resolver,
	tx TxRunner,
	cfg Config,
) *UseCase {
	if cfg.DefaultPageSize <= 0 {
		cfg.DefaultPageSize = 20
	}
	if cfg.MaxPageSize <= 0 {
		cfg.MaxPageSize = 100
	}
	return &UseCase{
		products: products,
		tags:     tags,
		attrs:    attrs,
		links:    links,
		resolver: resolver,
		tx:       tx,
		cfg:      cfg,
	}
}

// List lista productos visibles para la identidad con los filtros dados.
func (uc *UseCase) List(identity entity.Identity, q dto.ListQuery) (*dto.ProductPage, error) {
	scope, err := uc.resolver.Resolve(identity)
	if err != nil {
		return nil, err
	}
	filter, page, limit, err := uc.buildFilter(scope, q)
	if err != nil {
		return nil, err
	}
	products, total, err := uc.products.Search(filter)
	if err != nil {
		return nil, fmt.Errorf("buscar productos: %w", err)
	}
	items := make([]dto.ProductSummary, 0, len(products))
	for _, p := range products {
		items = append(items, dto.ToProductSummary(p))
	}
	return &dto.ProductPage{Items: items, Meta: dto.NewPageMeta(page, limit, total)}, nil
}

// Get resuelve el detalle por ID primario o por SKU. Devuelve ErrNotFound si
// no existe y ErrForbidden si existe pero la identidad no puede verlo; los
// dos casos nunca se confunden.
func (uc *UseCase) Get(identity entity.Identity, idOrSKU string) (*dto.ProductDetail, error) {
	p, err := uc.lookup(idOrSKU)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("%w: producto %s", domain.ErrNotFound, idOrSKU)
	}
	scope, err := uc.resolver.Resolve(identity)
	if err != nil {
		return nil, err
	}
	visible, err := uc.productVisible(p, scope)
	if err != nil {
		return nil, err
	}
	if !visible {
		return nil, fmt.Errorf("%w: producto %s", domain.ErrForbidden, p.ID)
	}
	return uc.buildDetail(p)
}

// SimilarTags etiquetas de otros productos que comparten al menos una
// categoría con el producto dado, restringidas a las que la identidad puede
// ver. Un producto sin etiquetas da resultado vacío, no error.
func (uc *UseCase) SimilarTags(identity entity.Identity, productID string, page, limit int) (*dto.TagPage, error) {
	p, err := uc.products.GetByID(productID)
	if err != nil {
		return nil, fmt.Errorf("obtener producto: %w", err)
	}
	if p == nil {
		return nil, fmt.Errorf("%w: producto %s", domain.ErrNotFound, productID)
	}
	scope, err := uc.resolver.Resolve(identity)
	if err != nil {
		return nil, err
	}
	page, limit = uc.clampPage(page, limit)

	catLinks, err := uc.links.FindBySubject(entity.LinkProductCategory, p.ID, false)
	if err != nil {
		return nil, fmt.Errorf("categorías del producto: %w", err)
	}
	categoryIDs := targetIDs(catLinks)
	if len(categoryIDs) == 0 {
		return &dto.TagPage{Items: []dto.TagResponse{}, Meta: dto.NewPageMeta(page, limit, 0)}, nil
	}

	siblingLinks, err := uc.links.FindByTargets(entity.LinkProductCategory, categoryIDs)
	if err != nil {
		return nil, fmt.Errorf("productos de las categorías: %w", err)
	}
	otherIDs := make([]string, 0, len(siblingLinks))
	seen := map[string]struct{}{}
	for _, l := range siblingLinks {
		if l.SubjectID == p.ID {
			continue
		}
		if _, ok := seen[l.SubjectID]; ok {
			continue
		}
		seen[l.SubjectID] = struct{}{}
		otherIDs = append(otherIDs, l.SubjectID)
	}
	if len(otherIDs) == 0 {
		return &dto.TagPage{Items: []dto.TagResponse{}, Meta: dto.NewPageMeta(page, limit, 0)}, nil
	}

	tagLinks, err := uc.links.FindBySubjects(entity.LinkProductTag, otherIDs)
	if err != nil {
		return nil, fmt.Errorf("etiquetas de los productos vecinos: %w", err)
	}
	tagIDs := distinct(targetIDs(tagLinks))
	visibleIDs, err := uc.resolver.VisibleTags(scope, tagIDs)
	if err != nil {
		return nil, err
	}
	tags, err := uc.tags.GetByIDs(visibleIDs)
	if err != nil {
		return nil, fmt.Errorf("cargar etiquetas: %w", err)
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i].Name < tags[j].Name })

	total := len(tags)
	tags = slicePage(tags, page, limit)
	items := make([]dto.TagResponse, 0, len(tags))
	for _, t := range tags {
		items = append(items, dto.ToTagResponse(t))
	}
	return &dto.TagPage{Items: items, Meta: dto.NewPageMeta(page, limit, total)}, nil
}

// Variations lista la familia de variaciones del producto: padre más hijos
// (o, visto desde un hijo, su padre más hermanos) sin el producto consultado;
// showParent vuelve a incluir al padre. Un producto independiente devuelve
// página vacía, no error, para que el llamador no necesite conocer su clase
// de antemano.
func (uc *UseCase) Variations(identity entity.Identity, productID string, f dto.VariationFilter) (*dto.ProductPage, error) {
	p, err := uc.products.GetByID(productID)
	if err != nil {
		return nil, fmt.Errorf("obtener producto: %w", err)
	}
	if p == nil {
		return nil, fmt.Errorf("%w: producto %s", domain.ErrNotFound, productID)
	}
	scope, err := uc.resolver.Resolve(identity)
	if err != nil {
		return nil, err
	}
	visible, err := uc.productVisible(p, scope)
	if err != nil {
		return nil, err
	}
	if !visible {
		return nil, fmt.Errorf("%w: producto %s", domain.ErrForbidden, p.ID)
	}
	page, limit := uc.clampPage(f.Page, f.Limit)

	var parent *entity.Product
	switch {
	case p.IsParent:
		parent = p
	case p.ParentID != "":
		parent, err = uc.products.GetByID(p.ParentID)
		if err != nil {
			return nil, fmt.Errorf("obtener padre: %w", err)
		}
	default:
		return &dto.ProductPage{Items: []dto.ProductSummary{}, Meta: dto.NewPageMeta(page, limit, 0)}, nil
	}

	family := make(map[string]*entity.Product)
	if parent != nil {
		family[parent.ID] = parent
		children, err := uc.products.ChildrenOf(parent.ID)
		if err != nil {
			return nil, fmt.Errorf("hijos del padre: %w", err)
		}
		for _, c := range children {
			family[c.ID] = c
		}
	}
	delete(family, p.ID)
	if f.ShowParent && parent != nil {
		family[parent.ID] = parent
	}

	colorID, materialID, sizeID, none, err := uc.resolveAttributeFilters(f.Color, f.Material, f.Size)
	if err != nil {
		return nil, err
	}
	members := make([]*entity.Product, 0, len(family))
	if !none {
		for _, m := range family {
			if colorID != "" && m.ColorID != colorID {
				continue
			}
			if materialID != "" && m.MaterialID != materialID {
				continue
			}
			if sizeID != "" && m.SizeID != sizeID {
				continue
			}
			ok, err := uc.productVisible(m, scope)
			if err != nil {
				return nil, err
			}
			if !ok {
				continue
			}
			members = append(members, m)
		}
	}
	sort.Slice(members, func(i, j int) bool {
		if !members[i].CreatedAt.Equal(members[j].CreatedAt) {
			return members[i].CreatedAt.Before(members[j].CreatedAt)
		}
		return members[i].ID < members[j].ID
	})

	total := len(members)
	members = slicePage(members, page, limit)
	items := make([]dto.ProductSummary, 0, len(members))
	for _, m := range members {
		items = append(items, dto.ToProductSummary(m))
	}
	return &dto.ProductPage{Items: items, Meta: dto.NewPageMeta(page, limit, total)}, nil
}

// AssignChildren iguala el conjunto de hijos de un padre al conjunto deseado
// (misma partición que el reconciliador, sobre la columna parent_id). La
// profundidad se limita a un nivel: un hijo no puede volverse padre ni un
// padre volverse hijo.
func (uc *UseCase) AssignChildren(ctx context.Context, parentID string, childIDs []string) (*dto.ChildAssignmentResponse, error) {
	parent, err := uc.products.GetByID(parentID)
	if err != nil {
		return nil, fmt.Errorf("obtener padre: %w", err)
	}
	if parent == nil {
		return nil, fmt.Errorf("%w: producto %s", domain.ErrNotFound, parentID)
	}
	if parent.ParentID != "" {
		return nil, fmt.Errorf("%w: un producto hijo no puede tener hijos", domain.ErrValidation)
	}

	want := make([]string, 0, len(childIDs))
	inWant := make(map[string]struct{}, len(childIDs))
	for _, id := range childIDs {
		if _, ok := inWant[id]; ok || id == "" {
			continue
		}
		if id == parentID {
			return nil, fmt.Errorf("%w: un producto no puede ser su propio hijo", domain.ErrValidation)
		}
		inWant[id] = struct{}{}
		want = append(want, id)
	}

	// Validar todos los hijos antes de escribir nada.
	for _, id := range want {
		child, err := uc.products.GetByID(id)
		if err != nil {
			return nil, fmt.Errorf("obtener hijo: %w", err)
		}
		if child == nil {
			return nil, fmt.Errorf("%w: producto %s", domain.ErrNotFound, id)
		}
		if child.IsParent {
			return nil, fmt.Errorf("%w: el producto %s ya es padre", domain.ErrValidation, id)
		}
	}

	current, err := uc.products.ChildrenOf(parentID)
	if err != nil {
		return nil, fmt.Errorf("hijos actuales: %w", err)
	}
	currentSet := make(map[string]struct{}, len(current))
	for _, c := range current {
		currentSet[c.ID] = struct{}{}
	}

	res := &dto.ChildAssignmentResponse{Added: []string{}, Removed: []string{}}
	now := time.Now()
	err = uc.tx.RunProducts(ctx, func(products repository.ProductRepository) error {
		for _, id := range want {
			if _, ok := currentSet[id]; ok {
				continue
			}
			if err := products.SetParent(id, parentID, now); err != nil {
				return fmt.Errorf("vincular hijo: %w", err)
			}
			res.Added = append(res.Added, id)
		}
		for _, c := range current {
			if _, ok := inWant[c.ID]; ok {
				continue
			}
			if err := products.SetParent(c.ID, "", now); err != nil {
				return fmt.Errorf("desvincular hijo: %w", err)
			}
			res.Removed = append(res.Removed, c.ID)
		}
		return products.MarkParent(parentID, len(want) > 0, now)
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// ── Internos ─────────────────────────────────────────────────────────────────

// lookup busca por ID primario y, si no hay fila, por SKU.
func (uc *UseCase) lookup(idOrSKU string) (*entity.Product, error) {
	p, err := uc.products.GetByID(idOrSKU)
	if err != nil {
		return nil, fmt.Errorf("obtener producto: %w", err)
	}
	if p != nil {
		return p, nil
	}
	p, err = uc.products.GetBySKU(idOrSKU)
	if err != nil {
		return nil, fmt.Errorf("obtener producto por sku: %w", err)
	}
	return p, nil
}

// productVisible regla de visibilidad por producto: visible si ninguna de sus
// etiquetas está vinculada a un grupo de acceso, o si al menos una está en el
// alcance de la identidad. Se evalúa por producto, no por etiqueta.
func (uc *UseCase) productVisible(p *entity.Product, scope entity.AccessScope) (bool, error) {
	if scope.Unrestricted {
		return true, nil
	}
	if !p.IsVisible {
		return false, nil
	}
	tagLinks, err := uc.links.FindBySubject(entity.LinkProductTag, p.ID, false)
	if err != nil {
		return false, fmt.Errorf("etiquetas del producto: %w", err)
	}
	if len(tagLinks) == 0 {
		return true, nil
	}
	tagIDs := targetIDs(tagLinks)
	gated, err := uc.resolver.GatedTags(tagIDs)
	if err != nil {
		return false, err
	}
	if len(gated) == 0 {
		return true, nil
	}
	for _, id := range tagIDs {
		if scope.Allows(id) {
			return true, nil
		}
	}
	return false, nil
}

func (uc *UseCase) buildDetail(p *entity.Product) (*dto.ProductDetail, error) {
	detail := &dto.ProductDetail{
		ProductSummary: dto.ToProductSummary(p),
		Description:    p.Description,
		CompanyID:      p.CompanyID,
		Tags:           []dto.TagResponse{},
		UpdatedAt:      p.UpdatedAt,
	}
	attrName := func(kind entity.AttributeKind, id string) (string, error) {
		if id == "" {
			return "", nil
		}
		a, err := uc.attrs.Get(kind, id)
		if err != nil {
			return "", fmt.Errorf("atributo %s: %w", kind, err)
		}
		if a == nil {
			return "", nil
		}
		return a.Name, nil
	}
	var err error
	if detail.Color, err = attrName(entity.AttributeColor, p.ColorID); err != nil {
		return nil, err
	}
	if detail.Material, err = attrName(entity.AttributeMaterial, p.MaterialID); err != nil {
		return nil, err
	}
	if detail.Size, err = attrName(entity.AttributeSize, p.SizeID); err != nil {
		return nil, err
	}

	tagLinks, err := uc.links.FindBySubject(entity.LinkProductTag, p.ID, false)
	if err != nil {
		return nil, fmt.Errorf("etiquetas del producto: %w", err)
	}
	tags, err := uc.tags.GetByIDs(targetIDs(tagLinks))
	if err != nil {
		return nil, fmt.Errorf("cargar etiquetas: %w", err)
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i].Name < tags[j].Name })
	for _, t := range tags {
		detail.Tags = append(detail.Tags, dto.ToTagResponse(t))
	}
	return detail, nil
}

// buildFilter valida y normaliza ListQuery en el filtro del repositorio.
func (uc *UseCase) buildFilter(scope entity.AccessScope, q dto.ListQuery) (repository.ProductFilter, int, int, error) {
	var zero repository.ProductFilter

	page, limit := uc.clampPage(q.Page, q.Limit)
	minPrice, maxPrice := q.MinPrice, q.MaxPrice
	if q.Price != "" {
		lo, hi, err := parsePriceRange(q.Price)
		if err != nil {
			return zero, 0, 0, err
		}
		if minPrice == nil {
			minPrice = lo
		}
		if maxPrice == nil {
			maxPrice = hi
		}
	}

	order := make([]repository.OrderClause, 0, len(q.OrderBy))
	for _, ob := range q.OrderBy {
		if _, ok := orderFields[ob.Field]; !ok {
			return zero, 0, 0, fmt.Errorf("%w: campo de orden desconocido %q", domain.ErrValidation, ob.Field)
		}
		switch strings.ToLower(ob.Dir) {
		case "", "asc":
			order = append(order, repository.OrderClause{Field: ob.Field})
		case "desc":
			order = append(order, repository.OrderClause{Field: ob.Field, Desc: true})
		default:
			return zero, 0, 0, fmt.Errorf("%w: dirección de orden desconocida %q", domain.ErrValidation, ob.Dir)
		}
	}
	for _, f := range q.Select {
		if _, ok := selectFields[f]; !ok {
			return zero, 0, 0, fmt.Errorf("%w: campo de proyección desconocido %q", domain.ErrValidation, f)
		}
	}

	showChildren := true
	if q.ShowChildren != nil {
		showChildren = *q.ShowChildren
	}

	return repository.ProductFilter{
		Scope:           scope,
		Search:          q.Search,
		Category:        q.Category,
		TagIDs:          distinct(q.Tags),
		MinPrice:        minPrice,
		MaxPrice:        maxPrice,
		Color:           q.Color,
		Material:        q.Material,
		Size:            q.Size,
		IncludeChildren: showChildren,
		IncludeHidden:   scope.Unrestricted,
		Order:           order,
		Limit:           limit,
		Offset:          (page - 1) * limit,
	}, page, limit, nil
}

// resolveAttributeFilters traduce nombres de atributo a IDs. none indica que
// algún nombre pedido no existe (ningún producto puede coincidir).
func (uc *UseCase) resolveAttributeFilters(color, material, size string) (colorID, materialID, sizeID string, none bool, err error) {
	resolve := func(kind entity.AttributeKind, name string) (string, bool, error) {
		if name == "" {
			return "", false, nil
		}
		a, err := uc.attrs.FindByName(kind, name)
		if err != nil {
			return "", false, fmt.Errorf("buscar atributo %s: %w", kind, err)
		}
		if a == nil {
			return "", true, nil
		}
		return a.ID, false, nil
	}
	var miss bool
	if colorID, miss, err = resolve(entity.AttributeColor, color); err != nil || miss {
		return "", "", "", true, err
	}
	if materialID, miss, err = resolve(entity.AttributeMaterial, material); err != nil || miss {
		return "", "", "", true, err
	}
	if sizeID, miss, err = resolve(entity.AttributeSize, size); err != nil || miss {
		return "", "", "", true, err
	}
	return colorID, materialID, sizeID, false, nil
}

func (uc *UseCase) clampPage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = uc.cfg.DefaultPageSize
	}
	if limit > uc.cfg.MaxPageSize {
		limit = uc.cfg.MaxPageSize
	}
	return page, limit
}

// parsePriceRange interpreta el rango "bajo-alto" (ej. "150-200").
func parsePriceRange(s string) (*decimal.Decimal, *decimal.Decimal, error) {
	parts := strings.SplitN(s, "-", 2)
	if len(parts) != 2 {
		return nil, nil, fmt.Errorf("%w: rango de precio %q (se espera \"min-max\")", domain.ErrValidation, s)
	}
	lo, err := decimal.NewFromString(strings.TrimSpace(parts[0]))
	if err != nil {
		return nil, nil, fmt.Errorf("%w: precio mínimo %q", domain.ErrValidation, parts[0])
	}
	hi, err := decimal.NewFromString(strings.TrimSpace(parts[1]))
	if err != nil {
		return nil, nil, fmt.Errorf("%w: precio máximo %q", domain.ErrValidation, parts[1])
	}
	if hi.LessThan(lo) {
		return nil, nil, fmt.Errorf("%w: rango de precio invertido %q", domain.ErrValidation, s)
	}
	return &lo, &hi, nil
}

func targetIDs(links []*entity.Link) []string {
	out := make([]string, 0, len(links))
	for _, l := range links {
		out = append(out, l.TargetID)
	}
	return out
}

func distinct(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok || id == "" {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func slicePage[T any](items []T, page, limit int) []T {
	start := (page - 1) * limit
	if start >= len(items) {
		return []T{}
	}
	end := start + limit
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}
