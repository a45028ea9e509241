package repository

import (
	"context"

	"github.com/jhoicas/estoque-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// StockItemRepository puerto del almacén de cantidades (Quantity Store).
// Usable con pool o dentro de una transacción.
type StockItemRepository interface {
	// GetByID devuelve (nil, nil) si el ítem no existe.
	GetByID(ctx context.Context, id string) (*entity.StockItem, error)
	// GetByName devuelve (nil, nil) si no hay un ítem con ese nombre exacto.
	GetByName(ctx context.Context, name string) (*entity.StockItem, error)
	List(ctx context.Context) ([]*entity.StockItem, error)
	// Create devuelve domain.ErrDuplicate si el nombre ya existe.
	Create(ctx context.Context, item *entity.StockItem) error
	// UpdateQuantity escribe newQty (y newMinimum si no es nil) solo si la cantidad
	// almacenada sigue siendo expected. Devuelve domain.ErrConcurrentUpdate si cambió
	// y domain.ErrNotFound si el ítem no existe.
	UpdateQuantity(ctx context.Context, id string, expected, newQty decimal.Decimal, newMinimum *decimal.Decimal) error
	// RestoreMinimum reescribe el umbral (incluido nil) sin tocar la cantidad.
	RestoreMinimum(ctx context.Context, id string, minimum *decimal.Decimal) error
}
