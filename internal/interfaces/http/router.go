package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/merchhub/merch-api/internal/application/accesscontrol"
	"github.com/merchhub/merch-api/internal/application/catalog"
	"github.com/merchhub/merch-api/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	CatalogUC  *catalog.UseCase
	Reconciler *accesscontrol.Reconciler
	Resolver   *accesscontrol.Resolver
	JWTSecret  string
}

// Router registra las rutas de la API. Todo el catálogo requiere Bearer
// Token; la edición del grafo de acceso requiere además rol admin.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Catálogo (protegido)
	products := protected.Group("/products")
	productHandler := NewProductHandler(deps.CatalogUC)
	products.Get("/", productHandler.List)
	products.Get("/:idOrSku", productHandler.Get)
	products.Get("/:id/similar-tags", productHandler.SimilarTags)
	products.Get("/:id/variations", productHandler.Variations)

	// Alcance de acceso de la identidad autenticada
	accessHandler := NewAccessHandler(deps.Reconciler, deps.Resolver)
	protected.Get("/access/scope", accessHandler.Scope)

	// Edición del grafo de acceso y del árbol de variaciones (solo admin).
	// Cada PUT iguala el conjunto de contrapartes del sujeto al cuerpo enviado.
	admin := protected.Group("/", RequireRole(entity.RoleAdmin))
	admin.Put("/products/:id/children", productHandler.AssignChildren)
	admin.Put("/users/:id/access-groups", accessHandler.Reconcile(entity.LinkUserAccessGroup))
	admin.Put("/users/:id/company-user-groups", accessHandler.Reconcile(entity.LinkUserCompanyUserGroup))
	admin.Put("/companies/:id/access-groups", accessHandler.Reconcile(entity.LinkCompanyAccessGroup))
	admin.Put("/company-user-groups/:id/access-groups", accessHandler.Reconcile(entity.LinkCompanyUserGroupAccessGroup))
	admin.Put("/category-tags/:id/access-groups", accessHandler.Reconcile(entity.LinkTagAccessGroup))
	admin.Put("/products/:id/categories", accessHandler.Reconcile(entity.LinkProductCategory))
	admin.Put("/products/:id/tags", accessHandler.Reconcile(entity.LinkProductTag))
}
