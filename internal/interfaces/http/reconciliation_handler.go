package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/estoque-api/internal/application/dto"
	"github.com/jhoicas/estoque-api/internal/application/reconciliation"
	"github.com/jhoicas/estoque-api/internal/domain"
	"github.com/jhoicas/estoque-api/pkg/logger"
)

// ReconciliationHandler maneja las revisiones físicas: sesiones en curso e informes.
type ReconciliationHandler struct {
	uc  *reconciliation.UseCase
	log *logger.Logger
}

// NewReconciliationHandler construye el handler.
func NewReconciliationHandler(uc *reconciliation.UseCase, log *logger.Logger) *ReconciliationHandler {
	return &ReconciliationHandler{uc: uc, log: log}
}

// List godoc
// @Summary      Historial de revisiones
// @Tags         reconciliations
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.ListResponse[dto.ReconciliationSummaryResponse]
// @Router       /api/reconciliations [get]
func (h *ReconciliationHandler) List(c *fiber.Ctx) error {
	list, err := h.uc.List(c.UserContext(), GetActor(c))
	if err != nil {
		return respondError(c, h.log, err)
	}
	out := make([]dto.ReconciliationSummaryResponse, 0, len(list))
	for _, r := range list {
		out = append(out, dto.NewReconciliationSummaryResponse(r))
	}
	return c.JSON(dto.NewList(out))
}

// GetByID godoc
// @Summary      Detalle de una revisión
// @Tags         reconciliations
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del informe"
// @Success      200  {object}  dto.ReconciliationResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/reconciliations/{id} [get]
func (h *ReconciliationHandler) GetByID(c *fiber.Ctx) error {
	r, err := h.uc.GetByID(c.UserContext(), GetActor(c), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.NewReconciliationResponse(r))
}

// Submit godoc
// @Summary      Guardar revisión completa
// @Description  Persiste un informe armado por el cliente; solo se conservan las entradas revisadas.
// @Tags         reconciliations
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.SubmitReconciliationRequest  true  "Informe"
// @Success      201   {object}  dto.ReconciliationResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/reconciliations [post]
func (h *ReconciliationHandler) Submit(c *fiber.Ctx) error {
	var in dto.SubmitReconciliationRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c, h.log)
	}
	if err := dto.Validate(in); err != nil {
		return respondError(c, h.log, err)
	}
	r, err := h.uc.Submit(c.UserContext(), GetActor(c), in.ToEntity())
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewReconciliationResponse(r))
}

// StartSession godoc
// @Summary      Iniciar revisión
// @Description  Toma una foto de la cantidad de cada ítem, ordenados por nombre.
// @Tags         reconciliations
// @Security     Bearer
// @Produce      json
// @Success      201  {object}  dto.SessionResponse
// @Router       /api/reconciliations/sessions [post]
func (h *ReconciliationHandler) StartSession(c *fiber.Ctx) error {
	s, err := h.uc.StartSession(c.UserContext(), GetActor(c))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewSessionResponse(s))
}

// GetSession godoc
// @Summary      Estado de una revisión en curso
// @Tags         reconciliations
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la sesión"
// @Success      200  {object}  dto.SessionResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/reconciliations/sessions/{id} [get]
func (h *ReconciliationHandler) GetSession(c *fiber.Ctx) error {
	s, err := h.uc.GetSession(c.UserContext(), GetActor(c), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.NewSessionResponse(s))
}

// SubmitCount godoc
// @Summary      Registrar conteo de una entrada
// @Description  Clasifica la entrada como certo (conteo igual al sistema) o errado.
// @Tags         reconciliations
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id     path  string                  true  "ID de la sesión"
// @Param        index  path  int                     true  "Posición de la entrada"
// @Param        body   body  dto.SubmitCountRequest  true  "Cantidad contada"
// @Success      200    {object}  dto.SubmitCountResponse
// @Failure      400    {object}  dto.ErrorResponse
// @Failure      404    {object}  dto.ErrorResponse
// @Failure      409    {object}  dto.ErrorResponse
// @Router       /api/reconciliations/sessions/{id}/entries/{index} [put]
func (h *ReconciliationHandler) SubmitCount(c *fiber.Ctx) error {
	index, err := c.ParamsInt("index")
	if err != nil {
		return respondError(c, h.log, domain.NewValidation("index", "debe ser un entero"))
	}
	var in dto.SubmitCountRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c, h.log)
	}
	if err := dto.Validate(in); err != nil {
		return respondError(c, h.log, err)
	}
	cls, s, err := h.uc.SubmitCount(c.UserContext(), GetActor(c), c.Params("id"), index, *in.CountedQuantity)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.SubmitCountResponse{Classification: string(cls), Session: dto.NewSessionResponse(s)})
}

// Advance godoc
// @Summary      Avanzar a la siguiente entrada
// @Description  En la última entrada el cursor no se mueve y at_end es true.
// @Tags         reconciliations
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la sesión"
// @Success      200  {object}  dto.SessionResponse
// @Router       /api/reconciliations/sessions/{id}/advance [post]
func (h *ReconciliationHandler) Advance(c *fiber.Ctx) error {
	s, _, err := h.uc.Advance(c.UserContext(), GetActor(c), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.NewSessionResponse(s))
}

// Retreat godoc
// @Summary      Volver a la entrada anterior
// @Tags         reconciliations
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la sesión"
// @Success      200  {object}  dto.SessionResponse
// @Router       /api/reconciliations/sessions/{id}/retreat [post]
func (h *ReconciliationHandler) Retreat(c *fiber.Ctx) error {
	s, err := h.uc.Retreat(c.UserContext(), GetActor(c), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.NewSessionResponse(s))
}

// Finalize godoc
// @Summary      Finalizar revisión
// @Description  Sella las entradas revisadas en un informe; mes y año salen de la hora de cierre.
// @Tags         reconciliations
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la sesión"
// @Success      201  {object}  dto.ReconciliationResponse
// @Failure      422  {object}  dto.ErrorResponse
// @Router       /api/reconciliations/sessions/{id}/finalize [post]
func (h *ReconciliationHandler) Finalize(c *fiber.Ctx) error {
	r, err := h.uc.FinalizeSession(c.UserContext(), GetActor(c), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewReconciliationResponse(r))
}
