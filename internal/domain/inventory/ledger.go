package inventory

import (
	"github.com/jhoicas/estoque-api/internal/domain"
	"github.com/jhoicas/estoque-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// MaxQuantity cota superior de cualquier cantidad de stock o movimiento.
var MaxQuantity = decimal.NewFromInt(1_000_000)

// ApplyDelta calcula la cantidad resultante de aplicar un movimiento sobre current.
// Una salida que deje la cantidad negativa devuelve *domain.InsufficientStockError.
func ApplyDelta(itemID string, current decimal.Decimal, t entity.MovementType, qty decimal.Decimal) (decimal.Decimal, error) {
	if t == entity.MovementTypeInflow {
		return current.Add(qty), nil
	}
	next := current.Sub(qty)
	if next.IsNegative() {
		return current, &domain.InsufficientStockError{ItemID: itemID, Requested: qty, Available: current}
	}
	return next, nil
}

// Replay reconstruye la cantidad esperada: inicial más la suma con signo del libro.
func Replay(initial decimal.Decimal, movements []*entity.Movement) decimal.Decimal {
	total := initial
	for _, m := range movements {
		total = total.Add(m.Signed())
	}
	return total
}
