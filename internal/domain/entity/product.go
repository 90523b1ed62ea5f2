package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un artículo de merchandising del catálogo.
// Un producto es independiente, padre de variaciones o hijo de un padre;
// nunca padre e hijo a la vez (profundidad máxima 1).
type Product struct {
	ID          string
	CompanyID   string // vacío = producto global (sin empresa dueña)
	SKU         string // código único en todo el catálogo
	Name        string
	Description string
	Price       Price
	IsParent    bool
	ParentID    string // vacío si no es hijo
	IsVisible   bool
	ColorID     string
	MaterialID  string
	SizeID      string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	DeletedAt   *time.Time
}

// Active indica si el producto no está borrado lógicamente.
func (p *Product) Active() bool { return p.DeletedAt == nil }

// Price precio de venta almacenado. Discount es un monto absoluto
// que se descuenta del Amount.
type Price struct {
	Amount   decimal.Decimal
	Currency string
	Discount decimal.Decimal
}

// Net devuelve el monto neto (Amount - Discount), nunca negativo.
// Todos los filtros de precio del catálogo comparan contra este valor.
func (p Price) Net() decimal.Decimal {
	net := p.Amount.Sub(p.Discount)
	if net.IsNegative() {
		return decimal.Zero
	}
	return net
}
