package repository

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/merchhub/merch-api/internal/domain/entity"
)

// OrderClause par campo/dirección para ordenamiento multi-clave.
// Los campos válidos los define el caso de uso; el adaptador los traduce.
type OrderClause struct {
	Field string
	Desc  bool
}

// ProductFilter filtros ya validados para Search. El alcance ACL va primero:
// ningún otro filtro amplía lo que el alcance permite ver.
type ProductFilter struct {
	Scope           entity.AccessScope
	Search          string // subcadena sobre el nombre, sin distinguir mayúsculas
	Category        string // ID o nombre de categoría
	TagIDs          []string // el producto debe llevar TODAS (AND)
	MinPrice        *decimal.Decimal // contra el precio neto
	MaxPrice        *decimal.Decimal
	Color           string // nombres de atributo, sin distinguir mayúsculas
	Material        string
	Size            string
	IncludeChildren bool // falso = excluir productos con padre
	IncludeHidden   bool // verdadero solo para identidades privilegiadas
	Order           []OrderClause
	Limit           int
	Offset          int
}

// ProductRepository define el puerto de persistencia del catálogo (DIP).
// Las lecturas excluyen productos borrados lógicamente; Get* devuelven nil
// cuando no hay fila, nunca error.
type ProductRepository interface {
	GetByID(id string) (*entity.Product, error)
	GetBySKU(sku string) (*entity.Product, error)
	// ChildrenOf hijos activos de un padre.
	ChildrenOf(parentID string) ([]*entity.Product, error)
	// SetParent asigna (o limpia, con parentID vacío) el padre de un producto.
	SetParent(productID, parentID string, at time.Time) error
	// MarkParent actualiza la marca IsParent de un producto.
	MarkParent(productID string, isParent bool, at time.Time) error
	// Search aplica el filtro completo y devuelve la página más el total
	// post-filtro, pre-paginación.
	Search(filter ProductFilter) ([]*entity.Product, int, error)
}

// TagRepository lecturas de etiquetas de categoría.
type TagRepository interface {
	GetByIDs(ids []string) ([]*entity.ProductCategoryTag, error)
}

// AttributeRepository lecturas del catálogo de atributos.
type AttributeRepository interface {
	Get(kind entity.AttributeKind, id string) (*entity.Attribute, error)
	// FindByName busca por nombre sin distinguir mayúsculas; nil si no existe.
	FindByName(kind entity.AttributeKind, name string) (*entity.Attribute, error)
}
