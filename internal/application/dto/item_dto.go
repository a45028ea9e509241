package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/estoque-api/internal/domain/entity"
)

// CreateItemRequest body para POST /api/items. Los límites numéricos se validan en dominio.
type CreateItemRequest struct {
	Name            string           `json:"name" validate:"required,max=200"`
	Category        string           `json:"category" validate:"required,max=100"`
	Unit            string           `json:"unit" validate:"max=20"`
	Quantity        decimal.Decimal  `json:"quantity"`
	MinimumQuantity *decimal.Decimal `json:"minimum_quantity,omitempty"`
	Description     string           `json:"description" validate:"max=1000"`
	Supplier        string           `json:"supplier" validate:"max=200"`
	Price           decimal.Decimal  `json:"price"`
	Location        string           `json:"location" validate:"max=200"`
}

// ToEntity construye el ítem sin id ni fechas.
func (r CreateItemRequest) ToEntity() *entity.StockItem {
	return &entity.StockItem{
		Name:            r.Name,
		Category:        r.Category,
		Unit:            r.Unit,
		Quantity:        r.Quantity,
		MinimumQuantity: r.MinimumQuantity,
		Description:     r.Description,
		Supplier:        r.Supplier,
		Price:           r.Price,
		Location:        r.Location,
	}
}

// RegisterItemRequest body para POST /api/movements/new-item: crea el ítem y su entrada inicial.
type RegisterItemRequest struct {
	CreateItemRequest
	MovementMetadata
}

// ItemResponse salida de un ítem.
type ItemResponse struct {
	ID              string           `json:"id"`
	Name            string           `json:"name"`
	Category        string           `json:"category"`
	Unit            string           `json:"unit"`
	Quantity        decimal.Decimal  `json:"quantity"`
	InitialQuantity decimal.Decimal  `json:"initial_quantity"`
	MinimumQuantity *decimal.Decimal `json:"minimum_quantity,omitempty"`
	LowStock        bool             `json:"low_stock"`
	Description     string           `json:"description,omitempty"`
	Supplier        string           `json:"supplier,omitempty"`
	Price           decimal.Decimal  `json:"price"`
	Location        string           `json:"location,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

// NewItemResponse mapea la entidad a la respuesta.
func NewItemResponse(i *entity.StockItem) ItemResponse {
	return ItemResponse{
		ID:              i.ID,
		Name:            i.Name,
		Category:        i.Category,
		Unit:            i.Unit,
		Quantity:        i.Quantity,
		InitialQuantity: i.InitialQuantity,
		MinimumQuantity: i.MinimumQuantity,
		LowStock:        i.LowStock(),
		Description:     i.Description,
		Supplier:        i.Supplier,
		Price:           i.Price,
		Location:        i.Location,
		CreatedAt:       i.CreatedAt,
		UpdatedAt:       i.UpdatedAt,
	}
}

// RegisterItemResponse ítem creado más su movimiento de entrada inicial.
type RegisterItemResponse struct {
	Item     ItemResponse     `json:"item"`
	Movement MovementResponse `json:"movement"`
}

// ConsistencyResponse resultado de reconstruir la cantidad desde el libro.
type ConsistencyResponse struct {
	ItemID          string          `json:"item_id"`
	InitialQuantity decimal.Decimal `json:"initial_quantity"`
	NetMovements    decimal.Decimal `json:"net_movements"`
	Expected        decimal.Decimal `json:"expected"`
	Recorded        decimal.Decimal `json:"recorded"`
	Consistent      bool            `json:"consistent"`
}

// LowStockResponse ítem en o bajo su mínimo con la cantidad sugerida de reposición.
type LowStockResponse struct {
	Item         ItemResponse    `json:"item"`
	Deficit      decimal.Decimal `json:"deficit"`
	SuggestedQty decimal.Decimal `json:"suggested_qty"`
}
