// Package memory implementa los puertos de persistencia del motor sobre
// mapas en memoria. Es el backend de las suites de prueba del motor y de
// entornos sin base de datos; reproduce la semántica del adaptador PostgreSQL
// (borrado lógico incluido).
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/merchhub/merch-api/internal/domain"
	"github.com/merchhub/merch-api/internal/domain/entity"
	"github.com/merchhub/merch-api/internal/domain/repository"
)

var (
	_ repository.LinkRepository      = (*Store)(nil)
	_ repository.EntityRepository    = (*Store)(nil)
	_ repository.ProductRepository   = (*Store)(nil)
	_ repository.TagRepository       = (*Store)(nil)
	_ repository.AttributeRepository = (*Store)(nil)
)

// Store almacén en memoria. Las operaciones individuales son seguras para
// concurrencia; Run/RunProducts serializan las escrituras de una
// reconciliación bajo un mutex dedicado (la atomicidad multi-proceso es
// asunto del adaptador PostgreSQL).
type Store struct {
	mu   sync.RWMutex
	txMu sync.Mutex

	users      map[string]*entity.User
	companies  map[string]*entity.Company
	userGroups map[string]*entity.CompanyUserGroup
	groups     map[string]*entity.ProductAccessControlGroup
	categories map[string]*entity.ProductCategory
	tags       map[string]*entity.ProductCategoryTag
	attributes map[string]*entity.Attribute
	products   map[string]*entity.Product
	links      map[entity.LinkKind]map[string]*entity.Link
}

// New crea un almacén vacío.
func New() *Store {
	return &Store{
		users:      map[string]*entity.User{},
		companies:  map[string]*entity.Company{},
		userGroups: map[string]*entity.CompanyUserGroup{},
		groups:     map[string]*entity.ProductAccessControlGroup{},
		categories: map[string]*entity.ProductCategory{},
		tags:       map[string]*entity.ProductCategoryTag{},
		attributes: map[string]*entity.Attribute{},
		products:   map[string]*entity.Product{},
		links:      map[entity.LinkKind]map[string]*entity.Link{},
	}
}

// ── Carga de fixtures ────────────────────────────────────────────────────────

func (s *Store) PutUser(u *entity.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.ID] = u
}

func (s *Store) PutCompany(c *entity.Company) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.companies[c.ID] = c
}

func (s *Store) PutCompanyUserGroup(g *entity.CompanyUserGroup) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.userGroups[g.ID] = g
}

func (s *Store) PutAccessGroup(g *entity.ProductAccessControlGroup) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.groups[g.ID] = g
}

func (s *Store) PutCategory(c *entity.ProductCategory) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.categories[c.ID] = c
}

func (s *Store) PutTag(t *entity.ProductCategoryTag) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tags[t.ID] = t
}

func (s *Store) PutAttribute(a *entity.Attribute) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attributes[a.ID] = a
}

func (s *Store) PutProduct(p *entity.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products[p.ID] = p
}

// ── TxRunner ─────────────────────────────────────────────────────────────────

// Run implementa accesscontrol.TxRunner serializando la reconciliación.
func (s *Store) Run(_ context.Context, fn func(links repository.LinkRepository) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	return fn(s)
}

// RunProducts implementa catalog.TxRunner.
func (s *Store) RunProducts(_ context.Context, fn func(products repository.ProductRepository) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	return fn(s)
}

// ── LinkRepository ───────────────────────────────────────────────────────────

func (s *Store) FindBySubject(kind entity.LinkKind, subjectID string, includeDeleted bool) ([]*entity.Link, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*entity.Link
	for _, l := range s.links[kind] {
		if l.SubjectID != subjectID {
			continue
		}
		if !includeDeleted && !l.Active() {
			continue
		}
		cp := *l
		out = append(out, &cp)
	}
	sortLinks(out)
	return out, nil
}

func (s *Store) FindBySubjects(kind entity.LinkKind, subjectIDs []string) ([]*entity.Link, error) {
	in := toSet(subjectIDs)
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*entity.Link
	for _, l := range s.links[kind] {
		if _, ok := in[l.SubjectID]; !ok || !l.Active() {
			continue
		}
		cp := *l
		out = append(out, &cp)
	}
	sortLinks(out)
	return out, nil
}

func (s *Store) FindByTargets(kind entity.LinkKind, targetIDs []string) ([]*entity.Link, error) {
	in := toSet(targetIDs)
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*entity.Link
	for _, l := range s.links[kind] {
		if _, ok := in[l.TargetID]; !ok || !l.Active() {
			continue
		}
		cp := *l
		out = append(out, &cp)
	}
	sortLinks(out)
	return out, nil
}

func (s *Store) Insert(link *entity.Link) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	byID := s.links[link.Kind]
	if byID == nil {
		byID = map[string]*entity.Link{}
		s.links[link.Kind] = byID
	}
	for _, l := range byID {
		if l.SubjectID == link.SubjectID && l.TargetID == link.TargetID && l.Active() {
			return domain.ErrConflict
		}
	}
	cp := *link
	byID[link.ID] = &cp
	return nil
}

func (s *Store) Restore(kind entity.LinkKind, id string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.links[kind][id]
	if !ok {
		return fmt.Errorf("%w: vínculo %s", domain.ErrNotFound, id)
	}
	l.DeletedAt = nil
	l.UpdatedAt = at
	return nil
}

func (s *Store) SoftDelete(kind entity.LinkKind, id string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.links[kind][id]
	if !ok {
		return fmt.Errorf("%w: vínculo %s", domain.ErrNotFound, id)
	}
	deleted := at
	l.DeletedAt = &deleted
	l.UpdatedAt = at
	return nil
}

// ── EntityRepository ─────────────────────────────────────────────────────────

func (s *Store) Missing(kind entity.EntityKind, ids []string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	exists := func(id string) bool {
		switch kind {
		case entity.KindUser:
			u, ok := s.users[id]
			return ok && u.Active()
		case entity.KindCompany:
			c, ok := s.companies[id]
			return ok && c.Active()
		case entity.KindCompanyUserGroup:
			g, ok := s.userGroups[id]
			return ok && g.Active()
		case entity.KindAccessGroup:
			g, ok := s.groups[id]
			return ok && g.Active()
		case entity.KindCategory:
			c, ok := s.categories[id]
			return ok && c.Active()
		case entity.KindTag:
			t, ok := s.tags[id]
			return ok && t.Active()
		case entity.KindProduct:
			p, ok := s.products[id]
			return ok && p.Active()
		}
		return false
	}
	if _, known := map[entity.EntityKind]struct{}{
		entity.KindUser: {}, entity.KindCompany: {}, entity.KindCompanyUserGroup: {},
		entity.KindAccessGroup: {}, entity.KindCategory: {}, entity.KindTag: {}, entity.KindProduct: {},
	}[kind]; !known {
		return nil, fmt.Errorf("%w: clase de entidad desconocida %q", domain.ErrValidation, kind)
	}
	var missing []string
	for _, id := range ids {
		if !exists(id) {
			missing = append(missing, id)
		}
	}
	return missing, nil
}

// ── ProductRepository ────────────────────────────────────────────────────────

func (s *Store) GetByID(id string) (*entity.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.products[id]
	if !ok || !p.Active() {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (s *Store) GetBySKU(sku string) (*entity.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.products {
		if p.SKU == sku && p.Active() {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *Store) ChildrenOf(parentID string) ([]*entity.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*entity.Product
	for _, p := range s.products {
		if p.ParentID == parentID && p.Active() {
			cp := *p
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *Store) SetParent(productID, parentID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[productID]
	if !ok {
		return fmt.Errorf("%w: producto %s", domain.ErrNotFound, productID)
	}
	p.ParentID = parentID
	p.UpdatedAt = at
	return nil
}

func (s *Store) MarkParent(productID string, isParent bool, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[productID]
	if !ok {
		return fmt.Errorf("%w: producto %s", domain.ErrNotFound, productID)
	}
	p.IsParent = isParent
	p.UpdatedAt = at
	return nil
}

func (s *Store) Search(f repository.ProductFilter) ([]*entity.Product, int, error) {
	s.mu.RLock()
	var all []*entity.Product
	for _, p := range s.products {
		if p.Active() {
			cp := *p
			all = append(all, &cp)
		}
	}
	s.mu.RUnlock()

	var matched []*entity.Product
	for _, p := range all {
		ok, err := s.matches(p, f)
		if err != nil {
			return nil, 0, err
		}
		if ok {
			matched = append(matched, p)
		}
	}
	sortProducts(matched, f.Order)

	total := len(matched)
	start := f.Offset
	if start > total {
		start = total
	}
	end := start + f.Limit
	if f.Limit <= 0 || end > total {
		end = total
	}
	return matched[start:end], total, nil
}

func (s *Store) matches(p *entity.Product, f repository.ProductFilter) (bool, error) {
	if !f.Scope.Unrestricted {
		visible, err := s.visibleInScope(p.ID, f.Scope)
		if err != nil {
			return false, err
		}
		if !visible {
			return false, nil
		}
	}
	if !f.IncludeHidden && !p.IsVisible {
		return false, nil
	}
	if !f.IncludeChildren && p.ParentID != "" {
		return false, nil
	}
	if f.Search != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(f.Search)) {
		return false, nil
	}
	if f.Category != "" && !s.inCategory(p.ID, f.Category) {
		return false, nil
	}
	if len(f.TagIDs) > 0 {
		have := s.activeTargets(entity.LinkProductTag, p.ID)
		for _, want := range f.TagIDs {
			if _, ok := have[want]; !ok {
				return false, nil
			}
		}
	}
	net := p.Price.Net()
	if f.MinPrice != nil && net.LessThan(*f.MinPrice) {
		return false, nil
	}
	if f.MaxPrice != nil && net.GreaterThan(*f.MaxPrice) {
		return false, nil
	}
	if !s.attrMatches(entity.AttributeColor, p.ColorID, f.Color) {
		return false, nil
	}
	if !s.attrMatches(entity.AttributeMaterial, p.MaterialID, f.Material) {
		return false, nil
	}
	if !s.attrMatches(entity.AttributeSize, p.SizeID, f.Size) {
		return false, nil
	}
	return true, nil
}

// visibleInScope regla de acceso por producto: sin etiquetas controladas, o
// alguna etiqueta dentro del conjunto visible.
func (s *Store) visibleInScope(productID string, scope entity.AccessScope) (bool, error) {
	tagIDs := s.activeTargets(entity.LinkProductTag, productID)
	if len(tagIDs) == 0 {
		return true, nil
	}
	gated := false
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, l := range s.links[entity.LinkTagAccessGroup] {
		if !l.Active() {
			continue
		}
		if _, ok := tagIDs[l.SubjectID]; ok {
			gated = true
			break
		}
	}
	if !gated {
		return true, nil
	}
	for id := range tagIDs {
		if scope.Allows(id) {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) inCategory(productID, category string) bool {
	catIDs := s.activeTargets(entity.LinkProductCategory, productID)
	s.mu.RLock()
	defer s.mu.RUnlock()
	for id := range catIDs {
		c, ok := s.categories[id]
		if !ok || !c.Active() {
			continue
		}
		if c.ID == category || strings.EqualFold(c.Name, category) {
			return true
		}
	}
	return false
}

func (s *Store) attrMatches(kind entity.AttributeKind, attrID, name string) bool {
	if name == "" {
		return true
	}
	if attrID == "" {
		return false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.attributes[attrID]
	return ok && a.Active() && a.Kind == kind && strings.EqualFold(a.Name, name)
}

// activeTargets IDs de contraparte de los vínculos activos de un sujeto.
func (s *Store) activeTargets(kind entity.LinkKind, subjectID string) map[string]struct{} {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := map[string]struct{}{}
	for _, l := range s.links[kind] {
		if l.SubjectID == subjectID && l.Active() {
			out[l.TargetID] = struct{}{}
		}
	}
	return out
}

// ── TagRepository ────────────────────────────────────────────────────────────

func (s *Store) GetByIDs(ids []string) ([]*entity.ProductCategoryTag, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*entity.ProductCategoryTag
	for _, id := range ids {
		t, ok := s.tags[id]
		if !ok || !t.Active() {
			continue
		}
		cp := *t
		out = append(out, &cp)
	}
	return out, nil
}

// ── AttributeRepository ──────────────────────────────────────────────────────

func (s *Store) Get(kind entity.AttributeKind, id string) (*entity.Attribute, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.attributes[id]
	if !ok || !a.Active() || a.Kind != kind {
		return nil, nil
	}
	cp := *a
	return &cp, nil
}

func (s *Store) FindByName(kind entity.AttributeKind, name string) (*entity.Attribute, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, a := range s.attributes {
		if a.Kind == kind && a.Active() && strings.EqualFold(a.Name, name) {
			cp := *a
			return &cp, nil
		}
	}
	return nil, nil
}

// ── Internos ─────────────────────────────────────────────────────────────────

func sortLinks(links []*entity.Link) {
	sort.Slice(links, func(i, j int) bool {
		if !links[i].CreatedAt.Equal(links[j].CreatedAt) {
			return links[i].CreatedAt.Before(links[j].CreatedAt)
		}
		return links[i].ID < links[j].ID
	})
}

func sortProducts(products []*entity.Product, order []repository.OrderClause) {
	less := func(a, b *entity.Product, o repository.OrderClause) (bool, bool) {
		var cmp int
		switch o.Field {
		case "name":
			cmp = strings.Compare(a.Name, b.Name)
		case "price":
			cmp = a.Price.Net().Cmp(b.Price.Net())
		case "createdAt":
			switch {
			case a.CreatedAt.Before(b.CreatedAt):
				cmp = -1
			case a.CreatedAt.After(b.CreatedAt):
				cmp = 1
			}
		case "sku":
			cmp = strings.Compare(a.SKU, b.SKU)
		}
		if cmp == 0 {
			return false, false
		}
		if o.Desc {
			return cmp > 0, true
		}
		return cmp < 0, true
	}
	sort.SliceStable(products, func(i, j int) bool {
		a, b := products[i], products[j]
		if len(order) == 0 {
			// Orden por defecto: created_at DESC, id.
			if !a.CreatedAt.Equal(b.CreatedAt) {
				return a.CreatedAt.After(b.CreatedAt)
			}
			return a.ID < b.ID
		}
		for _, o := range order {
			if l, decided := less(a, b, o); decided {
				return l
			}
		}
		return a.ID < b.ID
	})
}

func toSet(ids []string) map[string]struct{} {
	out := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		out[id] = struct{}{}
	}
	return out
}
