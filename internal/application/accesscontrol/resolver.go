package accesscontrol

import (
	"fmt"
	"sort"

	"github.com/merchhub/merch-api/internal/domain/entity"
	"github.com/merchhub/merch-api/internal/domain/repository"
)

// Resolver responde, para una identidad, si es privilegiada (ve todo) y si
// no, qué etiquetas de categoría puede ver. La visibilidad es unión
// monótona: cualquiera de las tres rutas de concesión basta y tener más
// grupos nunca la recorta.
type Resolver struct {
	links repository.LinkRepository
}

// NewResolver construye el resolutor.
func NewResolver(links repository.LinkRepository) *Resolver {
	return &Resolver{links: links}
}

// Resolve calcula el alcance de la identidad. Empresa ausente o membresías
// vacías degradan a "sin concesiones extra", nunca a error.
func (r *Resolver) Resolve(identity entity.Identity) (entity.AccessScope, error) {
	if identity.Privileged() {
		return entity.AccessScope{Unrestricted: true}, nil
	}

	groupIDs := make(map[string]struct{})
	collect := func(kind entity.LinkKind, subjectID string) error {
		if subjectID == "" {
			return nil
		}
		links, err := r.links.FindBySubject(kind, subjectID, false)
		if err != nil {
			return fmt.Errorf("vínculos %s de %s: %w", kind, subjectID, err)
		}
		for _, l := range links {
			groupIDs[l.TargetID] = struct{}{}
		}
		return nil
	}

	// Las tres rutas de concesión, combinadas con OR.
	if err := collect(entity.LinkUserAccessGroup, identity.UserID); err != nil {
		return entity.AccessScope{}, err
	}
	if err := collect(entity.LinkCompanyAccessGroup, identity.CompanyID); err != nil {
		return entity.AccessScope{}, err
	}
	for _, cugID := range identity.CompanyUserGroupIDs {
		if err := collect(entity.LinkCompanyUserGroupAccessGroup, cugID); err != nil {
			return entity.AccessScope{}, err
		}
	}

	if len(groupIDs) == 0 {
		return entity.AccessScope{TagIDs: []string{}}, nil
	}

	ids := make([]string, 0, len(groupIDs))
	for id := range groupIDs {
		ids = append(ids, id)
	}
	tagLinks, err := r.links.FindByTargets(entity.LinkTagAccessGroup, ids)
	if err != nil {
		return entity.AccessScope{}, fmt.Errorf("etiquetas de los grupos: %w", err)
	}

	tagSet := make(map[string]struct{}, len(tagLinks))
	for _, l := range tagLinks {
		tagSet[l.SubjectID] = struct{}{}
	}
	tagIDs := make([]string, 0, len(tagSet))
	for id := range tagSet {
		tagIDs = append(tagIDs, id)
	}
	sort.Strings(tagIDs)
	return entity.AccessScope{TagIDs: tagIDs}, nil
}

// VisibleTags filtra las etiquetas dadas a las que la identidad puede ver:
// las de su alcance más las que no están vinculadas a ningún grupo de acceso.
func (r *Resolver) VisibleTags(scope entity.AccessScope, tagIDs []string) ([]string, error) {
	if scope.Unrestricted {
		return tagIDs, nil
	}
	gated, err := r.GatedTags(tagIDs)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(tagIDs))
	for _, id := range tagIDs {
		if _, isGated := gated[id]; !isGated || scope.Allows(id) {
			out = append(out, id)
		}
	}
	return out, nil
}

// GatedTags devuelve, de las etiquetas dadas, cuáles están vinculadas a algún
// grupo de acceso (y por tanto controlan visibilidad).
func (r *Resolver) GatedTags(tagIDs []string) (map[string]struct{}, error) {
	if len(tagIDs) == 0 {
		return map[string]struct{}{}, nil
	}
	links, err := r.links.FindBySubjects(entity.LinkTagAccessGroup, tagIDs)
	if err != nil {
		return nil, fmt.Errorf("vínculos etiqueta-grupo: %w", err)
	}
	gated := make(map[string]struct{}, len(links))
	for _, l := range links {
		gated[l.SubjectID] = struct{}{}
	}
	return gated, nil
}
