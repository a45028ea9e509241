package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/estoque-api/internal/application/dto"
	"github.com/jhoicas/estoque-api/internal/application/inventory"
	"github.com/jhoicas/estoque-api/pkg/logger"
)

// ItemHandler maneja las peticiones HTTP del catálogo de ítems.
type ItemHandler struct {
	catalog *inventory.CatalogUseCase
	ledger  *inventory.LedgerUseCase
	log     *logger.Logger
}

// NewItemHandler construye el handler.
func NewItemHandler(catalog *inventory.CatalogUseCase, ledger *inventory.LedgerUseCase, log *logger.Logger) *ItemHandler {
	return &ItemHandler{catalog: catalog, ledger: ledger, log: log}
}

// List godoc
// @Summary      Listar ítems
// @Tags         items
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.ListResponse[dto.ItemResponse]
// @Router       /api/items [get]
func (h *ItemHandler) List(c *fiber.Ctx) error {
	items, err := h.catalog.List(c.UserContext())
	if err != nil {
		return respondError(c, h.log, err)
	}
	out := make([]dto.ItemResponse, 0, len(items))
	for _, it := range items {
		out = append(out, dto.NewItemResponse(it))
	}
	return c.JSON(dto.NewList(out))
}

// GetByID godoc
// @Summary      Obtener ítem por ID
// @Tags         items
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del ítem"
// @Success      200  {object}  dto.ItemResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/items/{id} [get]
func (h *ItemHandler) GetByID(c *fiber.Ctx) error {
	item, err := h.catalog.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.NewItemResponse(item))
}

// Create godoc
// @Summary      Crear ítem con cantidad inicial
// @Description  La cantidad inicial es la base del libro; no genera movimiento.
// @Tags         items
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateItemRequest  true  "Datos del ítem"
// @Success      201   {object}  dto.ItemResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/items [post]
func (h *ItemHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateItemRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c, h.log)
	}
	if err := dto.Validate(in); err != nil {
		return respondError(c, h.log, err)
	}
	item, err := h.catalog.Create(c.UserContext(), GetActor(c), in.ToEntity())
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewItemResponse(item))
}

// Consistency godoc
// @Summary      Verificar ítem contra el libro
// @Description  Compara la cantidad registrada con la cantidad inicial más la suma del libro.
// @Tags         items
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del ítem"
// @Success      200  {object}  dto.ConsistencyResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/items/{id}/consistency [get]
func (h *ItemHandler) Consistency(c *fiber.Ctx) error {
	res, err := h.ledger.CheckConsistency(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.ConsistencyResponse{
		ItemID:          res.ItemID,
		InitialQuantity: res.InitialQuantity,
		NetMovements:    res.NetMovements,
		Expected:        res.Expected,
		Recorded:        res.Recorded,
		Consistent:      res.Consistent,
	})
}

// LowStock godoc
// @Summary      Ítems en o bajo su mínimo
// @Description  Ordenados por mayor déficit, con la cantidad sugerida de reposición.
// @Tags         items
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.ListResponse[dto.LowStockResponse]
// @Router       /api/items/low-stock [get]
func (h *ItemHandler) LowStock(c *fiber.Ctx) error {
	list, err := h.catalog.LowStock(c.UserContext())
	if err != nil {
		return respondError(c, h.log, err)
	}
	out := make([]dto.LowStockResponse, 0, len(list))
	for _, it := range list {
		out = append(out, dto.LowStockResponse{
			Item:         dto.NewItemResponse(it.Item),
			Deficit:      it.Deficit,
			SuggestedQty: it.SuggestedQty,
		})
	}
	return c.JSON(dto.NewList(out))
}
