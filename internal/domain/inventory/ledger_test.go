package inventory_test

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/estoque-api/internal/domain"
	"github.com/jhoicas/estoque-api/internal/domain/entity"
	"github.com/jhoicas/estoque-api/internal/domain/inventory"
)

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func TestApplyDelta(t *testing.T) {
	got, err := inventory.ApplyDelta("g", dec(50), entity.MovementTypeInflow, dec(20))
	require.NoError(t, err)
	assert.True(t, got.Equal(dec(70)))

	got, err = inventory.ApplyDelta("g", dec(70), entity.MovementTypeOutflow, dec(70))
	require.NoError(t, err)
	assert.True(t, got.IsZero(), "salida que deja en cero es válida")

	_, err = inventory.ApplyDelta("g", dec(5), entity.MovementTypeOutflow, dec(10))
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInsufficientStock))
	var ise *domain.InsufficientStockError
	require.True(t, errors.As(err, &ise))
	assert.True(t, ise.Available.Equal(dec(5)))
	assert.True(t, ise.Requested.Equal(dec(10)))
}

func TestReplay_SumaConSigno(t *testing.T) {
	movs := []*entity.Movement{
		{Type: entity.MovementTypeInflow, Quantity: dec(20)},
		{Type: entity.MovementTypeOutflow, Quantity: dec(65)},
		{Type: entity.MovementTypeInflow, Quantity: dec(3)},
	}
	assert.True(t, inventory.Replay(dec(50), movs).Equal(dec(8)))
	assert.True(t, inventory.Replay(dec(7), nil).Equal(dec(7)))
}

func TestValidateMovementQuantity(t *testing.T) {
	assert.NoError(t, inventory.ValidateMovementQuantity(dec(1)))
	assert.NoError(t, inventory.ValidateMovementQuantity(dec(1_000_000)))
	assert.True(t, errors.Is(inventory.ValidateMovementQuantity(decimal.Zero), domain.ErrInvalidInput))
	assert.True(t, errors.Is(inventory.ValidateMovementQuantity(dec(-3)), domain.ErrInvalidInput))
	assert.True(t, errors.Is(inventory.ValidateMovementQuantity(dec(1_000_001)), domain.ErrInvalidInput))
}

func TestValidateMinimum(t *testing.T) {
	ten := dec(10)
	assert.NoError(t, inventory.ValidateMinimum(nil, dec(0)))
	assert.NoError(t, inventory.ValidateMinimum(&ten, dec(10)))
	assert.True(t, errors.Is(inventory.ValidateMinimum(&ten, dec(9)), domain.ErrInvalidInput))
	neg := dec(-1)
	assert.True(t, errors.Is(inventory.ValidateMinimum(&neg, dec(9)), domain.ErrInvalidInput))
}

func TestNormalizeItem(t *testing.T) {
	it := &entity.StockItem{Name: "  Swabs ", Category: " Curativos", Quantity: dec(100)}
	require.NoError(t, inventory.NormalizeItem(it))
	assert.Equal(t, "Swabs", it.Name)
	assert.Equal(t, "Curativos", it.Category)
	assert.Equal(t, inventory.DefaultUnit, it.Unit)

	sinNombre := &entity.StockItem{Name: "   ", Category: "x"}
	err := inventory.NormalizeItem(sinNombre)
	var ve *domain.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "name", ve.Field)

	caro := &entity.StockItem{Name: "x", Category: "x", Price: decimal.RequireFromString("1000000000")}
	err = inventory.NormalizeItem(caro)
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "price", ve.Field)
}
