package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/estoque-api/internal/domain/entity"
)

// MovementMetadata campos opcionales que acompañan a un movimiento.
type MovementMetadata struct {
	Date         *time.Time `json:"date,omitempty"` // RFC 3339; por defecto la hora del servidor
	Notes        *string    `json:"notes,omitempty" validate:"omitempty,max=1000"`
	Responsible  *string    `json:"responsible,omitempty" validate:"omitempty,max=200"`
	Sector       *string    `json:"sector,omitempty" validate:"omitempty,max=200"`
	TicketNumber *string    `json:"ticket_number,omitempty" validate:"omitempty,max=100"`
}

// RecordMovementRequest body para POST /api/movements.
type RecordMovementRequest struct {
	Type            string           `json:"type" validate:"required,oneof=entrada saida"`
	ItemID          string           `json:"item_id" validate:"required,uuid"`
	Quantity        decimal.Decimal  `json:"quantity"`
	MinimumQuantity *decimal.Decimal `json:"minimum_quantity,omitempty"` // solo se aplica en entradas
	MovementMetadata
}

// ListMovementsQuery filtros de GET /api/movements.
type ListMovementsQuery struct {
	ItemID string `query:"item_id" json:"item_id" validate:"omitempty,uuid"`
	Type   string `query:"type" json:"type" validate:"omitempty,oneof=entrada saida"`
	From   string `query:"from" json:"from"`
	To     string `query:"to" json:"to"`
	Limit  int    `query:"limit" json:"limit" validate:"min=0,max=100"`
}

// MovementResponse salida de un movimiento del libro.
type MovementResponse struct {
	ID           string          `json:"id"`
	Type         string          `json:"type"`
	ItemID       string          `json:"item_id"`
	ItemName     string          `json:"item_name"`
	Quantity     decimal.Decimal `json:"quantity"`
	Date         time.Time       `json:"date"`
	Notes        *string         `json:"notes,omitempty"`
	Responsible  *string         `json:"responsible,omitempty"`
	Sector       *string         `json:"sector,omitempty"`
	TicketNumber *string         `json:"ticket_number,omitempty"`
	ActorName    string          `json:"actor_name"`
	CreatedAt    time.Time       `json:"created_at"`
}

// NewMovementResponse mapea la entidad a la respuesta.
func NewMovementResponse(m *entity.Movement) MovementResponse {
	return MovementResponse{
		ID:           m.ID,
		Type:         string(m.Type),
		ItemID:       m.ItemID,
		ItemName:     m.ItemName,
		Quantity:     m.Quantity,
		Date:         m.Date,
		Notes:        m.Notes,
		Responsible:  m.Responsible,
		Sector:       m.Sector,
		TicketNumber: m.TicketNumber,
		ActorName:    m.ActorName,
		CreatedAt:    m.CreatedAt,
	}
}
