package inventory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/estoque-api/internal/application/auth"
	"github.com/jhoicas/estoque-api/internal/domain"
	"github.com/jhoicas/estoque-api/internal/domain/entity"
	"github.com/jhoicas/estoque-api/internal/domain/inventory"
	"github.com/jhoicas/estoque-api/internal/domain/repository"
)

// idealFactor stock ideal = mínimo * 1.5 al sugerir reposición.
var idealFactor = decimal.RequireFromString("1.5")

// CatalogUseCase lectura y alta directa de ítems. La cantidad solo cambia vía LedgerUseCase.
type CatalogUseCase struct {
	items repository.StockItemRepository
	now   func() time.Time
}

// NewCatalogUseCase construye el caso de uso.
func NewCatalogUseCase(items repository.StockItemRepository) *CatalogUseCase {
	return &CatalogUseCase{items: items, now: time.Now}
}

// List devuelve el catálogo ordenado por nombre.
func (uc *CatalogUseCase) List(ctx context.Context) ([]*entity.StockItem, error) {
	return uc.items.List(ctx)
}

// GetByID devuelve domain.ErrNotFound si el ítem no existe.
func (uc *CatalogUseCase) GetByID(ctx context.Context, id string) (*entity.StockItem, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.NewValidation("id", "identificador inválido")
	}
	item, err := uc.items.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}
	return item, nil
}

// Create da de alta un ítem con su cantidad inicial, sin movimiento asociado: la cantidad
// inicial es la base del libro para ese ítem.
func (uc *CatalogUseCase) Create(ctx context.Context, actor entity.Actor, item *entity.StockItem) (*entity.StockItem, error) {
	if err := inventory.NormalizeItem(item); err != nil {
		return nil, err
	}
	if err := auth.Require(actor, entity.CapabilityInflow); err != nil {
		return nil, err
	}
	existing, err := uc.items.GetByName(ctx, item.Name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicate
	}
	now := uc.now()
	item.ID = uuid.New().String()
	item.InitialQuantity = item.Quantity
	item.CreatedAt = now
	item.UpdatedAt = now
	if err := uc.items.Create(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// LowStockItem ítem en o bajo su mínimo.
type LowStockItem struct {
	Item         *entity.StockItem
	Deficit      decimal.Decimal // mínimo - cantidad (>= 0)
	SuggestedQty decimal.Decimal // mínimo * 1.5 - cantidad
}

// LowStock lista los ítems en o bajo su mínimo, los de mayor déficit primero.
func (uc *CatalogUseCase) LowStock(ctx context.Context) ([]LowStockItem, error) {
	items, err := uc.items.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]LowStockItem, 0)
	for _, it := range items {
		if !it.LowStock() {
			continue
		}
		minimum := *it.MinimumQuantity
		out = append(out, LowStockItem{
			Item:         it,
			Deficit:      minimum.Sub(it.Quantity),
			SuggestedQty: minimum.Mul(idealFactor).Sub(it.Quantity).Ceil(),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Deficit.GreaterThan(out[j].Deficit)
	})
	return out, nil
}
