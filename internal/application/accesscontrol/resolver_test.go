package accesscontrol_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/merchhub/merch-api/internal/application/accesscontrol"
	"github.com/merchhub/merch-api/internal/domain/entity"
	"github.com/merchhub/merch-api/internal/infrastructure/memory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fixture: un grafo de acceso pequeño con las tres rutas de concesión.
//
//	usuario ──────────────► grupoUsuario ──► tagUno
//	empresa ──────────────► grupoEmpresa ──► tagDos
//	grupoDeUsuarios (CUG) ─► grupoCUG ─────► tagTres
// ──────────────────────────────────────────────────────────────────────────────

type grafoDePrueba struct {
	store *memory.Store

	userID, companyID, cugID          string
	grupoUsuario, grupoEmpresa, grupoCUG string
	tagUno, tagDos, tagTres           string
}

func nuevoGrafo(t *testing.T) *grafoDePrueba {
	t.Helper()
	g := &grafoDePrueba{
		store:        memory.New(),
		userID:       "user-1",
		companyID:    "company-1",
		cugID:        "cug-1",
		grupoUsuario: "group-user", grupoEmpresa: "group-company", grupoCUG: "group-cug",
		tagUno: "tag-1", tagDos: "tag-2", tagTres: "tag-3",
	}
	g.store.PutUser(&entity.User{ID: g.userID, CompanyID: g.companyID, Email: "u@test", Name: "U", Role: entity.RoleEmployee})
	g.store.PutCompany(&entity.Company{ID: g.companyID, Name: "Acme"})
	g.store.PutCompanyUserGroup(&entity.CompanyUserGroup{ID: g.cugID, CompanyID: g.companyID, Name: "Ventas"})
	g.store.PutCategory(&entity.ProductCategory{ID: "cat-1", Name: "Textil"})
	for _, id := range []string{g.grupoUsuario, g.grupoEmpresa, g.grupoCUG} {
		g.store.PutAccessGroup(&entity.ProductAccessControlGroup{ID: id, Name: id})
	}
	for _, id := range []string{g.tagUno, g.tagDos, g.tagTres} {
		g.store.PutTag(&entity.ProductCategoryTag{ID: id, CategoryID: "cat-1", Name: id})
	}

	rec := accesscontrol.NewReconciler(g.store, g.store)
	ctx := context.Background()
	mustReconcile := func(kind entity.LinkKind, subject string, targets ...string) {
		_, err := rec.Reconcile(ctx, kind, subject, targets)
		require.NoError(t, err)
	}
	mustReconcile(entity.LinkTagAccessGroup, g.tagUno, g.grupoUsuario)
	mustReconcile(entity.LinkTagAccessGroup, g.tagDos, g.grupoEmpresa)
	mustReconcile(entity.LinkTagAccessGroup, g.tagTres, g.grupoCUG)
	return g
}

func (g *grafoDePrueba) identidad() entity.Identity {
	return entity.Identity{
		UserID:              g.userID,
		Role:                entity.RoleEmployee,
		CompanyID:           g.companyID,
		CompanyUserGroupIDs: []string{g.cugID},
	}
}

func (g *grafoDePrueba) vincular(t *testing.T, kind entity.LinkKind, subject string, targets ...string) {
	t.Helper()
	rec := accesscontrol.NewReconciler(g.store, g.store)
	_, err := rec.Reconcile(context.Background(), kind, subject, targets)
	require.NoError(t, err)
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests Resolve
// ──────────────────────────────────────────────────────────────────────────────

// El rol admin devuelve el centinela sin consultar el grafo.
func TestResolve_AdminVeTodo(t *testing.T) {
	g := nuevoGrafo(t)
	res := accesscontrol.NewResolver(g.store)

	scope, err := res.Resolve(entity.Identity{UserID: g.userID, Role: entity.RoleAdmin})
	require.NoError(t, err)
	assert.True(t, scope.Unrestricted, "admin debe recibir el centinela de acceso total")
	assert.True(t, scope.Allows("cualquier-tag"))
}

// Sin ningún vínculo, el alcance es vacío pero no es un error.
func TestResolve_SinConcesiones_AlcanceVacio(t *testing.T) {
	g := nuevoGrafo(t)
	res := accesscontrol.NewResolver(g.store)

	scope, err := res.Resolve(g.identidad())
	require.NoError(t, err)
	assert.False(t, scope.Unrestricted)
	assert.Empty(t, scope.TagIDs, "sin concesiones no hay etiquetas visibles")
}

// Cada una de las tres rutas basta por sí sola para ver su etiqueta.
func TestResolve_RutaDirectaUsuario(t *testing.T) {
	g := nuevoGrafo(t)
	g.vincular(t, entity.LinkUserAccessGroup, g.userID, g.grupoUsuario)

	scope, err := accesscontrol.NewResolver(g.store).Resolve(g.identidad())
	require.NoError(t, err)
	assert.Equal(t, []string{g.tagUno}, scope.TagIDs)
}

func TestResolve_RutaEmpresa(t *testing.T) {
	g := nuevoGrafo(t)
	g.vincular(t, entity.LinkCompanyAccessGroup, g.companyID, g.grupoEmpresa)

	scope, err := accesscontrol.NewResolver(g.store).Resolve(g.identidad())
	require.NoError(t, err)
	assert.Equal(t, []string{g.tagDos}, scope.TagIDs)
}

func TestResolve_RutaGrupoDeUsuarios(t *testing.T) {
	g := nuevoGrafo(t)
	g.vincular(t, entity.LinkCompanyUserGroupAccessGroup, g.cugID, g.grupoCUG)

	scope, err := accesscontrol.NewResolver(g.store).Resolve(g.identidad())
	require.NoError(t, err)
	assert.Equal(t, []string{g.tagTres}, scope.TagIDs)
}

// Las rutas se combinan con OR: sumar concesiones solo agranda el alcance.
func TestResolve_UnionMonotonaDeRutas(t *testing.T) {
	g := nuevoGrafo(t)
	g.vincular(t, entity.LinkUserAccessGroup, g.userID, g.grupoUsuario)

	scope, err := accesscontrol.NewResolver(g.store).Resolve(g.identidad())
	require.NoError(t, err)
	require.Equal(t, []string{g.tagUno}, scope.TagIDs)

	g.vincular(t, entity.LinkCompanyAccessGroup, g.companyID, g.grupoEmpresa)
	g.vincular(t, entity.LinkCompanyUserGroupAccessGroup, g.cugID, g.grupoCUG)

	scope, err = accesscontrol.NewResolver(g.store).Resolve(g.identidad())
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{g.tagUno, g.tagDos, g.tagTres}, scope.TagIDs,
		"añadir rutas nunca recorta lo ya visible")
}

// Identidad sin empresa ni grupos: solo cuenta la ruta directa del usuario.
func TestResolve_SinEmpresaDegradaSinError(t *testing.T) {
	g := nuevoGrafo(t)
	g.vincular(t, entity.LinkUserAccessGroup, g.userID, g.grupoUsuario)
	g.vincular(t, entity.LinkCompanyAccessGroup, g.companyID, g.grupoEmpresa)

	scope, err := accesscontrol.NewResolver(g.store).Resolve(entity.Identity{
		UserID: g.userID,
		Role:   entity.RoleEmployee,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{g.tagUno}, scope.TagIDs,
		"sin empresa en la identidad, la concesión de empresa no aplica")
}

// Quitar el vínculo usuario-grupo retira la etiqueta del alcance.
func TestResolve_RevocarConcesion(t *testing.T) {
	g := nuevoGrafo(t)
	g.vincular(t, entity.LinkUserAccessGroup, g.userID, g.grupoUsuario)

	scope, err := accesscontrol.NewResolver(g.store).Resolve(g.identidad())
	require.NoError(t, err)
	require.Equal(t, []string{g.tagUno}, scope.TagIDs)

	g.vincular(t, entity.LinkUserAccessGroup, g.userID) // conjunto vacío = poda

	scope, err = accesscontrol.NewResolver(g.store).Resolve(g.identidad())
	require.NoError(t, err)
	assert.Empty(t, scope.TagIDs, "la concesión revocada no debe seguir visible")
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests VisibleTags / GatedTags
// ──────────────────────────────────────────────────────────────────────────────

// Una etiqueta sin vínculo a ningún grupo no controla nada: siempre se ve.
func TestVisibleTags_EtiquetaSinControlSiempreVisible(t *testing.T) {
	g := nuevoGrafo(t)
	g.store.PutTag(&entity.ProductCategoryTag{ID: "tag-libre", CategoryID: "cat-1", Name: "libre"})

	res := accesscontrol.NewResolver(g.store)
	visible, err := res.VisibleTags(entity.AccessScope{TagIDs: []string{}}, []string{"tag-libre", g.tagUno})
	require.NoError(t, err)
	assert.Equal(t, []string{"tag-libre"}, visible,
		"la etiqueta controlada queda fuera; la libre pasa")
}

func TestVisibleTags_CentinelaDevuelveTodo(t *testing.T) {
	g := nuevoGrafo(t)
	res := accesscontrol.NewResolver(g.store)

	visible, err := res.VisibleTags(entity.AccessScope{Unrestricted: true}, []string{g.tagUno, g.tagDos})
	require.NoError(t, err)
	assert.Equal(t, []string{g.tagUno, g.tagDos}, visible)
}

func TestGatedTags_SoloLasVinculadas(t *testing.T) {
	g := nuevoGrafo(t)
	g.store.PutTag(&entity.ProductCategoryTag{ID: "tag-libre", CategoryID: "cat-1", Name: "libre"})

	gated, err := accesscontrol.NewResolver(g.store).GatedTags([]string{g.tagUno, "tag-libre"})
	require.NoError(t, err)
	assert.Contains(t, gated, g.tagUno)
	assert.NotContains(t, gated, "tag-libre")
}
