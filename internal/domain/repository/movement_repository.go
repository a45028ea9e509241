package repository

import (
	"context"
	"time"

	"github.com/jhoicas/estoque-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// MovementFilter filtros del listado de movimientos. Limit 0 usa el máximo.
type MovementFilter struct {
	ItemID string
	Type   entity.MovementType
	From   *time.Time
	To     *time.Time
	Limit  int
}

// MovementRepository puerto del libro de movimientos (solo inserción).
type MovementRepository interface {
	Append(ctx context.Context, m *entity.Movement) error
	// ListRecent devuelve los movimientos más recientes primero.
	ListRecent(ctx context.Context, filter MovementFilter) ([]*entity.Movement, error)
	// NetByItem suma con signo todas las cantidades del ítem.
	NetByItem(ctx context.Context, itemID string) (decimal.Decimal, error)
}
