package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockItem representa un ítem del almacén con su cantidad disponible.
// Quantity solo cambia vía el libro de movimientos; InitialQuantity es la cantidad con la
// que el ítem fue creado y es la base para reconstruir Quantity desde los movimientos.
type StockItem struct {
	ID              string
	Name            string // único, sensible a mayúsculas, sin espacios extremos
	Category        string
	Unit            string
	Quantity        decimal.Decimal
	InitialQuantity decimal.Decimal
	MinimumQuantity *decimal.Decimal // umbral de stock bajo (opcional)
	Description     string
	Supplier        string
	Price           decimal.Decimal
	Location        string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// LowStock informa si la cantidad actual llegó al umbral configurado (o bajó de él).
func (i *StockItem) LowStock() bool {
	return i.MinimumQuantity != nil && i.Quantity.LessThanOrEqual(*i.MinimumQuantity)
}
