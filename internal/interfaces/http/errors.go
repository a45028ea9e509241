package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/estoque-api/internal/application/dto"
	"github.com/jhoicas/estoque-api/internal/domain"
	"github.com/jhoicas/estoque-api/pkg/logger"
)

// respondError traduce un error de dominio a status + dto.ErrorResponse. Los errores no
// clasificados se registran y se responden como 500 sin exponer el detalle.
func respondError(c *fiber.Ctx, log *logger.Logger, err error) error {
	status, body := classify(err)
	if status >= fiber.StatusInternalServerError {
		ev := log.Error().Err(err).Str("path", c.Path()).Str("code", body.Code)
		var ce *domain.CommitError
		if errors.As(err, &ce) {
			ev = ev.Str("item_id", ce.ItemID).Str("outcome", string(ce.Outcome))
		}
		ev.Msg("error en la petición")
	}
	return c.Status(status).JSON(body)
}

func classify(err error) (int, dto.ErrorResponse) {
	var (
		commitErr    *domain.CommitError
		validation   *domain.ValidationError
		forbidden    *domain.ForbiddenError
		insufficient *domain.InsufficientStockError
	)
	switch {
	case errors.As(err, &commitErr):
		if commitErr.Outcome == domain.OutcomeRevertFailed {
			return fiber.StatusInternalServerError, dto.ErrorResponse{
				Code:    "STOCK_LEDGER_INCONSISTENT",
				Message: "el movimiento no se registró y la cantidad no pudo restaurarse; el equipo fue alertado",
			}
		}
		return fiber.StatusInternalServerError, dto.ErrorResponse{
			Code:    "MOVEMENT_REVERTED",
			Message: "el movimiento no se registró; la cantidad quedó como estaba",
		}
	case errors.As(err, &validation):
		return fiber.StatusBadRequest, dto.ErrorResponse{Code: "VALIDATION", Message: validation.Message, Field: validation.Field}
	case errors.As(err, &forbidden):
		return fiber.StatusForbidden, dto.ErrorResponse{Code: "FORBIDDEN", Message: "falta la capacidad " + forbidden.Capability}
	case errors.As(err, &insufficient):
		return fiber.StatusConflict, dto.ErrorResponse{Code: "INSUFFICIENT_STOCK", Message: insufficient.Error()}
	case errors.Is(err, domain.ErrInvalidInput):
		return fiber.StatusBadRequest, dto.ErrorResponse{Code: "VALIDATION", Message: "datos inválidos"}
	case errors.Is(err, domain.ErrNotFound):
		return fiber.StatusNotFound, dto.ErrorResponse{Code: "NOT_FOUND", Message: "recurso no encontrado"}
	case errors.Is(err, domain.ErrSessionNotFound):
		return fiber.StatusNotFound, dto.ErrorResponse{Code: "NOT_FOUND", Message: "sesión de revisión no encontrada o expirada"}
	case errors.Is(err, domain.ErrUnauthenticated), errors.Is(err, domain.ErrUnauthorized):
		return fiber.StatusUnauthorized, dto.ErrorResponse{Code: "UNAUTHENTICATED", Message: "usuario no autenticado"}
	case errors.Is(err, domain.ErrForbidden):
		return fiber.StatusForbidden, dto.ErrorResponse{Code: "FORBIDDEN", Message: "acceso denegado"}
	case errors.Is(err, domain.ErrInsufficientStock):
		return fiber.StatusConflict, dto.ErrorResponse{Code: "INSUFFICIENT_STOCK", Message: "stock insuficiente"}
	case errors.Is(err, domain.ErrDuplicate):
		return fiber.StatusConflict, dto.ErrorResponse{Code: "DUPLICATE", Message: "ya existe un registro con ese nombre"}
	case errors.Is(err, domain.ErrConcurrentUpdate):
		return fiber.StatusConflict, dto.ErrorResponse{Code: "CONCURRENT_UPDATE", Message: "el ítem cambió durante la operación, intente de nuevo"}
	case errors.Is(err, domain.ErrNoEntriesReviewed):
		return fiber.StatusUnprocessableEntity, dto.ErrorResponse{Code: "NO_ENTRIES_REVIEWED", Message: "la revisión no tiene ítems revisados"}
	case errors.Is(err, domain.ErrSessionFinalized):
		return fiber.StatusConflict, dto.ErrorResponse{Code: "SESSION_FINALIZED", Message: "la sesión ya fue finalizada"}
	case errors.Is(err, domain.ErrConflict):
		return fiber.StatusConflict, dto.ErrorResponse{Code: "CONFLICT", Message: "conflicto con el estado actual"}
	}
	return fiber.StatusInternalServerError, dto.ErrorResponse{Code: "INTERNAL", Message: "error interno"}
}

// badBody responde a un cuerpo que no se pudo decodificar. Un campo numérico con formato
// inválido se informa como error de validación de ese campo.
func badBody(c *fiber.Ctx, log *logger.Logger) error {
	if err := dto.DecimalFieldError(c.Body()); err != nil {
		return respondError(c, log, err)
	}
	return invalidBody(c)
}

func invalidBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
}
