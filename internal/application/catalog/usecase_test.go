package catalog_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/merchhub/merch-api/internal/application/accesscontrol"
	"github.com/merchhub/merch-api/internal/application/catalog"
	"github.com/merchhub/merch-api/internal/application/dto"
	"github.com/merchhub/merch-api/internal/domain"
	"github.com/merchhub/merch-api/internal/domain/entity"
	"github.com/merchhub/merch-api/internal/infrastructure/memory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fixture: un catálogo pequeño con una etiqueta controlada.
//
//	p-basico  sin etiquetas, en "Ropa"
//	p-vip     etiquetas tag-libre y tag-vip (controlada por grp-vip), en "Ropa"
//	p-oculto  is_visible = false, sin etiquetas
//	p-padre   padre de p-hijo-1 (rojo, M) y p-hijo-2 (azul)
// ──────────────────────────────────────────────────────────────────────────────

type fixtureCatalogo struct {
	store *memory.Store
	uc    *catalog.UseCase
	rec   *accesscontrol.Reconciler

	empleado entity.Identity
	admin    entity.Identity
}

func nuevoCatalogo(t *testing.T) *fixtureCatalogo {
	t.Helper()
	store := memory.New()
	resolver := accesscontrol.NewResolver(store)
	f := &fixtureCatalogo{
		store:    store,
		rec:      accesscontrol.NewReconciler(store, store),
		uc:       catalog.NewUseCase(store, store, store, store, resolver, store, catalog.Config{}),
		empleado: entity.Identity{UserID: "user-emp", Role: entity.RoleEmployee, CompanyID: "co-1"},
		admin:    entity.Identity{UserID: "user-adm", Role: entity.RoleAdmin},
	}

	store.PutCompany(&entity.Company{ID: "co-1", Name: "Acme"})
	store.PutUser(&entity.User{ID: "user-emp", CompanyID: "co-1", Email: "e@test", Name: "E", Role: entity.RoleEmployee})
	store.PutUser(&entity.User{ID: "user-adm", Email: "a@test", Name: "A", Role: entity.RoleAdmin})
	store.PutAccessGroup(&entity.ProductAccessControlGroup{ID: "grp-vip", Name: "VIP"})
	store.PutCategory(&entity.ProductCategory{ID: "cat-ropa", Name: "Ropa"})
	store.PutTag(&entity.ProductCategoryTag{ID: "tag-libre", CategoryID: "cat-ropa", Name: "basicos"})
	store.PutTag(&entity.ProductCategoryTag{ID: "tag-vip", CategoryID: "cat-ropa", Name: "exclusivo"})
	store.PutAttribute(&entity.Attribute{ID: "attr-rojo", Kind: entity.AttributeColor, Name: "rojo"})
	store.PutAttribute(&entity.Attribute{ID: "attr-azul", Kind: entity.AttributeColor, Name: "azul"})
	store.PutAttribute(&entity.Attribute{ID: "attr-m", Kind: entity.AttributeSize, Name: "M"})

	base := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	precio := func(amount, discount int64) entity.Price {
		return entity.Price{
			Amount:   decimal.NewFromInt(amount),
			Currency: "EUR",
			Discount: decimal.NewFromInt(discount),
		}
	}
	store.PutProduct(&entity.Product{ID: "p-basico", SKU: "SKU-BASICO", Name: "Camiseta basica",
		Price: precio(10, 0), IsVisible: true, CreatedAt: base})
	store.PutProduct(&entity.Product{ID: "p-vip", SKU: "SKU-VIP", Name: "Sudadera exclusiva",
		Price: precio(50, 0), IsVisible: true, CreatedAt: base.Add(1 * time.Minute)})
	store.PutProduct(&entity.Product{ID: "p-oculto", SKU: "SKU-OCULTO", Name: "Prototipo",
		Price: precio(99, 0), IsVisible: false, CreatedAt: base.Add(2 * time.Minute)})
	store.PutProduct(&entity.Product{ID: "p-padre", SKU: "SKU-PADRE", Name: "Gorra",
		Price: precio(30, 0), IsParent: true, IsVisible: true, CreatedAt: base.Add(3 * time.Minute)})
	store.PutProduct(&entity.Product{ID: "p-hijo-1", SKU: "SKU-HIJO-1", Name: "Gorra roja",
		Price: precio(20, 5), ParentID: "p-padre", IsVisible: true,
		ColorID: "attr-rojo", SizeID: "attr-m", CreatedAt: base.Add(4 * time.Minute)})
	store.PutProduct(&entity.Product{ID: "p-hijo-2", SKU: "SKU-HIJO-2", Name: "Gorra azul",
		Price: precio(25, 0), ParentID: "p-padre", IsVisible: true,
		ColorID: "attr-azul", CreatedAt: base.Add(5 * time.Minute)})

	f.vincular(t, entity.LinkProductCategory, "p-basico", "cat-ropa")
	f.vincular(t, entity.LinkProductCategory, "p-vip", "cat-ropa")
	f.vincular(t, entity.LinkProductTag, "p-vip", "tag-libre", "tag-vip")
	f.vincular(t, entity.LinkTagAccessGroup, "tag-vip", "grp-vip")
	return f
}

func (f *fixtureCatalogo) vincular(t *testing.T, kind entity.LinkKind, subject string, targets ...string) {
	t.Helper()
	_, err := f.rec.Reconcile(context.Background(), kind, subject, targets)
	require.NoError(t, err)
}

// concederVIP vincula al empleado con el grupo de acceso VIP.
func (f *fixtureCatalogo) concederVIP(t *testing.T) {
	f.vincular(t, entity.LinkUserAccessGroup, "user-emp", "grp-vip")
}

func ids(items []dto.ProductSummary) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.ID)
	}
	return out
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests List — alcance ACL
// ──────────────────────────────────────────────────────────────────────────────

// Un producto sin etiquetas controladas se ve sin ninguna concesión.
func TestList_SinEtiquetasControladas_VisiblePorDefecto(t *testing.T) {
	f := nuevoCatalogo(t)

	page, err := f.uc.List(f.empleado, dto.ListQuery{})
	require.NoError(t, err)

	got := ids(page.Items)
	assert.ElementsMatch(t, []string{"p-basico", "p-padre", "p-hijo-1", "p-hijo-2"}, got,
		"solo el producto controlado y el invisible quedan fuera")
	assert.Equal(t, 4, page.Meta.Total)
}

// El producto con etiqueta controlada aparece al conceder el grupo y
// desaparece al revocarlo (ciclo completo sobre el grafo de acceso).
func TestList_ConcederYRevocarEtiquetaControlada(t *testing.T) {
	f := nuevoCatalogo(t)

	page, err := f.uc.List(f.empleado, dto.ListQuery{})
	require.NoError(t, err)
	assert.NotContains(t, ids(page.Items), "p-vip")

	f.concederVIP(t)
	page, err = f.uc.List(f.empleado, dto.ListQuery{})
	require.NoError(t, err)
	assert.Contains(t, ids(page.Items), "p-vip", "con la concesión el producto entra")

	f.vincular(t, entity.LinkUserAccessGroup, "user-emp") // revocar
	page, err = f.uc.List(f.empleado, dto.ListQuery{})
	require.NoError(t, err)
	assert.NotContains(t, ids(page.Items), "p-vip", "revocada la concesión el producto sale")
}

// El admin ve el catálogo completo: controlados e invisibles incluidos.
func TestList_AdminVeTodo(t *testing.T) {
	f := nuevoCatalogo(t)

	page, err := f.uc.List(f.admin, dto.ListQuery{})
	require.NoError(t, err)
	assert.Equal(t, 6, page.Meta.Total)
	assert.Contains(t, ids(page.Items), "p-vip")
	assert.Contains(t, ids(page.Items), "p-oculto")
}

// is_visible=false oculta el producto a identidades no privilegiadas aunque
// no tenga etiquetas controladas.
func TestList_InvisibleParaNoPrivilegiados(t *testing.T) {
	f := nuevoCatalogo(t)

	page, err := f.uc.List(f.empleado, dto.ListQuery{})
	require.NoError(t, err)
	assert.NotContains(t, ids(page.Items), "p-oculto")
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests List — filtros
// ──────────────────────────────────────────────────────────────────────────────

func TestList_BusquedaPorNombre(t *testing.T) {
	f := nuevoCatalogo(t)

	page, err := f.uc.List(f.empleado, dto.ListQuery{Search: "gorra"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"p-padre", "p-hijo-1", "p-hijo-2"}, ids(page.Items),
		"la búsqueda no distingue mayúsculas")
}

// La categoría se acepta por nombre o por ID indistintamente.
func TestList_FiltroPorCategoria(t *testing.T) {
	f := nuevoCatalogo(t)

	porNombre, err := f.uc.List(f.empleado, dto.ListQuery{Category: "ropa"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"p-basico"}, ids(porNombre.Items),
		"p-vip comparte categoría pero sigue controlado")

	porID, err := f.uc.List(f.empleado, dto.ListQuery{Category: "cat-ropa"})
	require.NoError(t, err)
	assert.Equal(t, ids(porNombre.Items), ids(porID.Items))
}

// Varias etiquetas pedidas se combinan con AND: el producto debe llevarlas todas.
func TestList_FiltroEtiquetasEsConjuncion(t *testing.T) {
	f := nuevoCatalogo(t)
	f.concederVIP(t)

	ambas, err := f.uc.List(f.empleado, dto.ListQuery{Tags: []string{"tag-libre", "tag-vip"}})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"p-vip"}, ids(ambas.Items))

	conInexistente, err := f.uc.List(f.empleado, dto.ListQuery{Tags: []string{"tag-libre", "tag-fantasma"}})
	require.NoError(t, err)
	assert.Empty(t, conInexistente.Items, "una etiqueta que el producto no lleva vacía el resultado")
}

// Los filtros de precio comparan contra el neto (monto - descuento).
func TestList_FiltroPorPrecioNeto(t *testing.T) {
	f := nuevoCatalogo(t)

	min := decimal.NewFromInt(12)
	max := decimal.NewFromInt(27)
	page, err := f.uc.List(f.empleado, dto.ListQuery{MinPrice: &min, MaxPrice: &max})
	require.NoError(t, err)
	// p-hijo-1 cuesta 20 con descuento 5 = 15 neto; p-basico (10) y p-padre (30) quedan fuera.
	assert.ElementsMatch(t, []string{"p-hijo-1", "p-hijo-2"}, ids(page.Items))
	assert.Equal(t, 2, page.Meta.Total, "el total cuenta tras el filtro, antes de paginar")
}

// El rango compacto "bajo-alto" equivale a minPrice/maxPrice.
func TestList_RangoDePrecioCompacto(t *testing.T) {
	f := nuevoCatalogo(t)

	page, err := f.uc.List(f.empleado, dto.ListQuery{Price: "12-27"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"p-hijo-1", "p-hijo-2"}, ids(page.Items))
}

func TestList_FiltroPorAtributos(t *testing.T) {
	f := nuevoCatalogo(t)

	rojo, err := f.uc.List(f.empleado, dto.ListQuery{Color: "ROJO"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"p-hijo-1"}, ids(rojo.Items),
		"el nombre del atributo no distingue mayúsculas")

	rojoYM, err := f.uc.List(f.empleado, dto.ListQuery{Color: "rojo", Size: "M"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"p-hijo-1"}, ids(rojoYM.Items))

	verde, err := f.uc.List(f.empleado, dto.ListQuery{Color: "verde"})
	require.NoError(t, err)
	assert.Empty(t, verde.Items, "un color que no existe no coincide con nada")
}

// showChildren=false excluye a los hijos del resultado y del total.
func TestList_OcultarHijos(t *testing.T) {
	f := nuevoCatalogo(t)

	sinHijos := false
	page, err := f.uc.List(f.empleado, dto.ListQuery{ShowChildren: &sinHijos})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"p-basico", "p-padre"}, ids(page.Items))
	assert.Equal(t, 2, page.Meta.Total, "el total también excluye a los hijos")
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests List — orden, paginación y proyección
// ──────────────────────────────────────────────────────────────────────────────

// Sin orden explícito: más recientes primero.
func TestList_OrdenPorDefecto(t *testing.T) {
	f := nuevoCatalogo(t)

	page, err := f.uc.List(f.empleado, dto.ListQuery{})
	require.NoError(t, err)
	assert.Equal(t, []string{"p-hijo-2", "p-hijo-1", "p-padre", "p-basico"}, ids(page.Items))
}

func TestList_OrdenPorPrecio(t *testing.T) {
	f := nuevoCatalogo(t)

	page, err := f.uc.List(f.empleado, dto.ListQuery{
		OrderBy: []dto.OrderBy{{Field: "price"}},
	})
	require.NoError(t, err)
	// Netos: basico 10, hijo-1 15, hijo-2 25, padre 30.
	assert.Equal(t, []string{"p-basico", "p-hijo-1", "p-hijo-2", "p-padre"}, ids(page.Items))
}

// Orden multi-campo: el segundo criterio desempata al primero.
func TestList_OrdenMultiCampo(t *testing.T) {
	f := nuevoCatalogo(t)
	// Dos productos con el mismo nombre, precios distintos.
	base := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	f.store.PutProduct(&entity.Product{ID: "p-dup-caro", SKU: "SKU-DUP-1", Name: "Llavero",
		Price: entity.Price{Amount: decimal.NewFromInt(9), Currency: "EUR"}, IsVisible: true, CreatedAt: base})
	f.store.PutProduct(&entity.Product{ID: "p-dup-barato", SKU: "SKU-DUP-2", Name: "Llavero",
		Price: entity.Price{Amount: decimal.NewFromInt(3), Currency: "EUR"}, IsVisible: true, CreatedAt: base})

	page, err := f.uc.List(f.empleado, dto.ListQuery{
		Search:  "llavero",
		OrderBy: []dto.OrderBy{{Field: "name"}, {Field: "price", Dir: "desc"}},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"p-dup-caro", "p-dup-barato"}, ids(page.Items))
}

func TestList_CampoDeOrdenDesconocido(t *testing.T) {
	f := nuevoCatalogo(t)

	_, err := f.uc.List(f.empleado, dto.ListQuery{OrderBy: []dto.OrderBy{{Field: "deletedAt"}}})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = f.uc.List(f.empleado, dto.ListQuery{OrderBy: []dto.OrderBy{{Field: "name", Dir: "sideways"}}})
	assert.ErrorIs(t, err, domain.ErrValidation, "la dirección también se valida")
}

func TestList_CampoDeProyeccionDesconocido(t *testing.T) {
	f := nuevoCatalogo(t)

	_, err := f.uc.List(f.empleado, dto.ListQuery{Select: []string{"id", "password"}})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestList_RangoDePrecioInvalido(t *testing.T) {
	f := nuevoCatalogo(t)

	_, err := f.uc.List(f.empleado, dto.ListQuery{Price: "caro"})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = f.uc.List(f.empleado, dto.ListQuery{Price: "200-100"})
	assert.ErrorIs(t, err, domain.ErrValidation, "el rango invertido se rechaza")
}

// Paginación: la página fuera de rango queda vacía pero conserva el total, y
// el límite se recorta al máximo configurado.
func TestList_Paginacion(t *testing.T) {
	store := memory.New()
	resolver := accesscontrol.NewResolver(store)
	uc := catalog.NewUseCase(store, store, store, store, resolver, store,
		catalog.Config{DefaultPageSize: 2, MaxPageSize: 3})
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"pg-1", "pg-2", "pg-3", "pg-4", "pg-5"} {
		store.PutProduct(&entity.Product{ID: id, SKU: "SKU-" + id, Name: "Prod " + id,
			Price: entity.Price{Amount: decimal.NewFromInt(int64(i + 1)), Currency: "EUR"},
			IsVisible: true, CreatedAt: base.Add(time.Duration(i) * time.Minute)})
	}
	emp := entity.Identity{UserID: "u", Role: entity.RoleEmployee}

	page, err := uc.List(emp, dto.ListQuery{})
	require.NoError(t, err)
	assert.Len(t, page.Items, 2, "sin límite explícito aplica el tamaño por defecto")
	assert.Equal(t, dto.PageMeta{Page: 1, PerPage: 2, PageCount: 3, Total: 5}, page.Meta)

	page, err = uc.List(emp, dto.ListQuery{Page: 2, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"pg-3", "pg-2"}, ids(page.Items))

	page, err = uc.List(emp, dto.ListQuery{Limit: 100})
	require.NoError(t, err)
	assert.Len(t, page.Items, 3, "el límite pedido se recorta al máximo")
	assert.Equal(t, 3, page.Meta.PerPage)

	page, err = uc.List(emp, dto.ListQuery{Page: 9, Limit: 3})
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.Equal(t, 5, page.Meta.Total, "la página fuera de rango conserva el total")
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests Get — NotFound vs Forbidden
// ──────────────────────────────────────────────────────────────────────────────

func TestGet_PorIDYPorSKU(t *testing.T) {
	f := nuevoCatalogo(t)

	porID, err := f.uc.Get(f.empleado, "p-basico")
	require.NoError(t, err)
	porSKU, err := f.uc.Get(f.empleado, "SKU-BASICO")
	require.NoError(t, err)
	assert.Equal(t, porID.ID, porSKU.ID, "ID primario y SKU resuelven al mismo producto")
}

func TestGet_DetalleCompleto(t *testing.T) {
	f := nuevoCatalogo(t)

	d, err := f.uc.Get(f.admin, "p-hijo-1")
	require.NoError(t, err)
	assert.Equal(t, "rojo", d.Color)
	assert.Equal(t, "M", d.Size)
	assert.Equal(t, "p-padre", d.ParentID)
	assert.True(t, d.Price.Net.Equal(decimal.NewFromInt(15)), "el neto resta el descuento")
}

// Inexistente y prohibido responden distinto: el llamador siempre sabe cuál es.
func TestGet_NotFoundYForbiddenNoSeConfunden(t *testing.T) {
	f := nuevoCatalogo(t)

	_, err := f.uc.Get(f.empleado, "p-fantasma")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.uc.Get(f.empleado, "p-vip")
	assert.ErrorIs(t, err, domain.ErrForbidden, "el producto existe pero está fuera del alcance")

	f.concederVIP(t)
	d, err := f.uc.Get(f.empleado, "p-vip")
	require.NoError(t, err)
	assert.Equal(t, "p-vip", d.ID)
}

func TestGet_InvisibleEsForbiddenParaEmpleado(t *testing.T) {
	f := nuevoCatalogo(t)

	_, err := f.uc.Get(f.empleado, "p-oculto")
	assert.ErrorIs(t, err, domain.ErrForbidden)

	d, err := f.uc.Get(f.admin, "p-oculto")
	require.NoError(t, err)
	assert.False(t, d.IsVisible)
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests SimilarTags
// ──────────────────────────────────────────────────────────────────────────────

// Las etiquetas similares salen de productos que comparten categoría; la
// etiqueta controlada solo aparece con la concesión.
func TestSimilarTags_RespetaElAlcance(t *testing.T) {
	f := nuevoCatalogo(t)

	page, err := f.uc.SimilarTags(f.empleado, "p-basico", 1, 10)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "tag-libre", page.Items[0].ID, "la etiqueta controlada queda fuera")

	f.concederVIP(t)
	page, err = f.uc.SimilarTags(f.empleado, "p-basico", 1, 10)
	require.NoError(t, err)
	assert.Len(t, page.Items, 2, "con la concesión entra también la controlada")
}

// Un producto sin categorías da página vacía, no error.
func TestSimilarTags_SinCategorias(t *testing.T) {
	f := nuevoCatalogo(t)

	page, err := f.uc.SimilarTags(f.empleado, "p-padre", 1, 10)
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.Equal(t, 0, page.Meta.Total)
}

func TestSimilarTags_ProductoInexistente(t *testing.T) {
	f := nuevoCatalogo(t)

	_, err := f.uc.SimilarTags(f.empleado, "p-fantasma", 1, 10)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests Variations
// ──────────────────────────────────────────────────────────────────────────────

// Desde un hijo: el padre y los hermanos, sin el consultado.
func TestVariations_DesdeUnHijo(t *testing.T) {
	f := nuevoCatalogo(t)

	page, err := f.uc.Variations(f.empleado, "p-hijo-1", dto.VariationFilter{})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"p-padre", "p-hijo-2"}, ids(page.Items))
}

// Desde el padre: solo los hijos; showParent lo vuelve a incluir.
func TestVariations_DesdeElPadre(t *testing.T) {
	f := nuevoCatalogo(t)

	page, err := f.uc.Variations(f.empleado, "p-padre", dto.VariationFilter{})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"p-hijo-1", "p-hijo-2"}, ids(page.Items))

	page, err = f.uc.Variations(f.empleado, "p-padre", dto.VariationFilter{ShowParent: true})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"p-padre", "p-hijo-1", "p-hijo-2"}, ids(page.Items))
}

// Un producto independiente devuelve página vacía, no error.
func TestVariations_ProductoIndependiente(t *testing.T) {
	f := nuevoCatalogo(t)

	page, err := f.uc.Variations(f.empleado, "p-basico", dto.VariationFilter{})
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.Equal(t, 0, page.Meta.Total)
}

func TestVariations_FiltroPorAtributo(t *testing.T) {
	f := nuevoCatalogo(t)

	rojo, err := f.uc.Variations(f.empleado, "p-padre", dto.VariationFilter{Color: "rojo"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"p-hijo-1"}, ids(rojo.Items))

	verde, err := f.uc.Variations(f.empleado, "p-padre", dto.VariationFilter{Color: "verde"})
	require.NoError(t, err)
	assert.Empty(t, verde.Items, "un atributo inexistente vacía la familia")
}

// Un miembro de la familia fuera del alcance no se lista.
func TestVariations_MiembroControladoQuedaFuera(t *testing.T) {
	f := nuevoCatalogo(t)
	f.vincular(t, entity.LinkProductTag, "p-hijo-2", "tag-vip")

	page, err := f.uc.Variations(f.empleado, "p-padre", dto.VariationFilter{})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"p-hijo-1"}, ids(page.Items))

	f.concederVIP(t)
	page, err = f.uc.Variations(f.empleado, "p-padre", dto.VariationFilter{})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"p-hijo-1", "p-hijo-2"}, ids(page.Items))
}

func TestVariations_ProductoFueraDeAlcanceEsForbidden(t *testing.T) {
	f := nuevoCatalogo(t)

	_, err := f.uc.Variations(f.empleado, "p-vip", dto.VariationFilter{})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = f.uc.Variations(f.empleado, "p-fantasma", dto.VariationFilter{})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests AssignChildren
// ──────────────────────────────────────────────────────────────────────────────

func TestAssignChildren_AltasYBajas(t *testing.T) {
	f := nuevoCatalogo(t)
	ctx := context.Background()
	f.store.PutProduct(&entity.Product{ID: "p-suelto-1", SKU: "SKU-S1", Name: "Suelto 1", IsVisible: true})
	f.store.PutProduct(&entity.Product{ID: "p-suelto-2", SKU: "SKU-S2", Name: "Suelto 2", IsVisible: true})

	res, err := f.uc.AssignChildren(ctx, "p-basico", []string{"p-suelto-1", "p-suelto-2"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"p-suelto-1", "p-suelto-2"}, res.Added)
	assert.Empty(t, res.Removed)

	padre, err := f.store.GetByID("p-basico")
	require.NoError(t, err)
	assert.True(t, padre.IsParent, "con hijos asignados el producto queda marcado como padre")

	// Igualar a un conjunto más pequeño desvincula la diferencia.
	res, err = f.uc.AssignChildren(ctx, "p-basico", []string{"p-suelto-1"})
	require.NoError(t, err)
	assert.Empty(t, res.Added)
	assert.ElementsMatch(t, []string{"p-suelto-2"}, res.Removed)

	suelto2, err := f.store.GetByID("p-suelto-2")
	require.NoError(t, err)
	assert.Empty(t, suelto2.ParentID)

	// Conjunto vacío: sin hijos, la marca de padre se retira.
	res, err = f.uc.AssignChildren(ctx, "p-basico", nil)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"p-suelto-1"}, res.Removed)
	padre, err = f.store.GetByID("p-basico")
	require.NoError(t, err)
	assert.False(t, padre.IsParent)
}

// La profundidad del árbol se limita a un nivel.
func TestAssignChildren_ProfundidadMaximaUno(t *testing.T) {
	f := nuevoCatalogo(t)
	ctx := context.Background()

	// Un hijo no puede recibir hijos.
	_, err := f.uc.AssignChildren(ctx, "p-hijo-1", []string{"p-basico"})
	assert.ErrorIs(t, err, domain.ErrValidation)

	// Un padre no puede volverse hijo de otro.
	_, err = f.uc.AssignChildren(ctx, "p-basico", []string{"p-padre"})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestAssignChildren_Validaciones(t *testing.T) {
	f := nuevoCatalogo(t)
	ctx := context.Background()

	_, err := f.uc.AssignChildren(ctx, "p-basico", []string{"p-basico"})
	assert.ErrorIs(t, err, domain.ErrValidation, "un producto no puede ser su propio hijo")

	_, err = f.uc.AssignChildren(ctx, "p-basico", []string{"p-fantasma"})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.uc.AssignChildren(ctx, "p-fantasma", []string{"p-basico"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// Tras reasignar hijos, Variations refleja la nueva familia.
func TestAssignChildren_SeReflejaEnVariations(t *testing.T) {
	f := nuevoCatalogo(t)
	ctx := context.Background()
	f.store.PutProduct(&entity.Product{ID: "p-suelto-1", SKU: "SKU-S1", Name: "Suelto 1", IsVisible: true})

	_, err := f.uc.AssignChildren(ctx, "p-basico", []string{"p-suelto-1"})
	require.NoError(t, err)

	page, err := f.uc.Variations(f.empleado, "p-suelto-1", dto.VariationFilter{})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"p-basico"}, ids(page.Items))
}
