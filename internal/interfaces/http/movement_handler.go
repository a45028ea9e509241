package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/estoque-api/internal/application/dto"
	"github.com/jhoicas/estoque-api/internal/application/inventory"
	"github.com/jhoicas/estoque-api/internal/domain"
	"github.com/jhoicas/estoque-api/internal/domain/entity"
	"github.com/jhoicas/estoque-api/internal/domain/repository"
	"github.com/jhoicas/estoque-api/pkg/logger"
)

// MovementHandler maneja las peticiones HTTP del libro de movimientos.
type MovementHandler struct {
	ledger *inventory.LedgerUseCase
	log    *logger.Logger
}

// NewMovementHandler construye el handler.
func NewMovementHandler(ledger *inventory.LedgerUseCase, log *logger.Logger) *MovementHandler {
	return &MovementHandler{ledger: ledger, log: log}
}

// Record godoc
// @Summary      Registrar entrada o salida
// @Description  Aplica el movimiento sobre la cantidad del ítem y lo registra en el libro.
// @Tags         movements
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RecordMovementRequest  true  "type (entrada|saida), item_id, quantity"
// @Success      201   {object}  dto.MovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      500   {object}  dto.ErrorResponse
// @Router       /api/movements [post]
func (h *MovementHandler) Record(c *fiber.Ctx) error {
	var in dto.RecordMovementRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c, h.log)
	}
	if err := dto.Validate(in); err != nil {
		return respondError(c, h.log, err)
	}
	mov, err := h.ledger.ApplyMovement(c.UserContext(), GetActor(c), inventory.MovementInput{
		ItemID:           in.ItemID,
		Type:             entity.MovementType(in.Type),
		Quantity:         in.Quantity,
		MinimumQuantity:  in.MinimumQuantity,
		MovementMetadata: metadataFrom(in.MovementMetadata),
	})
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewMovementResponse(mov))
}

// RegisterItem godoc
// @Summary      Registrar ítem nuevo mediante entrada
// @Description  Crea el ítem y su movimiento de entrada inicial en una sola transacción.
// @Tags         movements
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RegisterItemRequest  true  "Datos del ítem y del movimiento inicial"
// @Success      201   {object}  dto.RegisterItemResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/movements/new-item [post]
func (h *MovementHandler) RegisterItem(c *fiber.Ctx) error {
	var in dto.RegisterItemRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c, h.log)
	}
	if err := dto.Validate(in); err != nil {
		return respondError(c, h.log, err)
	}
	item, mov, err := h.ledger.RegisterNewItem(c.UserContext(), GetActor(c), in.CreateItemRequest.ToEntity(), metadataFrom(in.MovementMetadata))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.RegisterItemResponse{
		Item:     dto.NewItemResponse(item),
		Movement: dto.NewMovementResponse(mov),
	})
}

// List godoc
// @Summary      Listar movimientos
// @Tags         movements
// @Security     Bearer
// @Produce      json
// @Param        item_id  query  string  false  "Filtrar por ítem (UUID)"
// @Param        type     query  string  false  "entrada | saida"
// @Param        from     query  string  false  "Desde (RFC 3339)"
// @Param        to       query  string  false  "Hasta (RFC 3339)"
// @Param        limit    query  int     false  "Máximo 100"  default(100)
// @Success      200  {object}  dto.ListResponse[dto.MovementResponse]
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/movements [get]
func (h *MovementHandler) List(c *fiber.Ctx) error {
	var q dto.ListMovementsQuery
	if err := c.QueryParser(&q); err != nil {
		return respondError(c, h.log, domain.NewValidation("query", "parámetros inválidos"))
	}
	if err := dto.Validate(q); err != nil {
		return respondError(c, h.log, err)
	}
	filter := repository.MovementFilter{
		ItemID: q.ItemID,
		Type:   entity.MovementType(q.Type),
		Limit:  q.Limit,
	}
	var err error
	if filter.From, err = parseTime("from", q.From); err != nil {
		return respondError(c, h.log, err)
	}
	if filter.To, err = parseTime("to", q.To); err != nil {
		return respondError(c, h.log, err)
	}
	list, err := h.ledger.ListMovements(c.UserContext(), filter)
	if err != nil {
		return respondError(c, h.log, err)
	}
	out := make([]dto.MovementResponse, 0, len(list))
	for _, m := range list {
		out = append(out, dto.NewMovementResponse(m))
	}
	return c.JSON(dto.NewList(out))
}

func metadataFrom(m dto.MovementMetadata) inventory.MovementMetadata {
	return inventory.MovementMetadata{
		Date:         m.Date,
		Notes:        m.Notes,
		Responsible:  m.Responsible,
		Sector:       m.Sector,
		TicketNumber: m.TicketNumber,
	}
}

func parseTime(field, s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, domain.NewValidation(field, "fecha RFC 3339 inválida")
	}
	return &t, nil
}
