package http

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/estoque-api/internal/application/auth"
	"github.com/jhoicas/estoque-api/internal/application/dto"
	"github.com/jhoicas/estoque-api/internal/domain/entity"
	"github.com/jhoicas/estoque-api/pkg/jwt"
	"github.com/jhoicas/estoque-api/pkg/logger"
)

// LocalActor clave de Locals con la identidad resuelta por AuthMiddleware.
const LocalActor = "actor"

// ActorResolver resuelve el actor a partir del user_id del token (lo implementa *auth.Gate).
type ActorResolver interface {
	Resolve(ctx context.Context, userID string) (entity.Actor, error)
}

// AuthMiddleware valida el Bearer Token JWT, resuelve el actor con sus capacidades y lo
// guarda en c.Locals. Usuario desconocido o sin login responde 401.
func AuthMiddleware(jwtSecret string, resolver ActorResolver, log *logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_TOKEN", Message: "Authorization header requerido"})
		}
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "formato: Bearer <token>"})
		}
		tokenString := strings.TrimSpace(parts[1])
		if tokenString == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_TOKEN", Message: "token vacío"})
		}
		claims, err := jwt.Parse(jwtSecret, tokenString)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "token inválido o expirado"})
		}
		actor, err := resolver.Resolve(c.UserContext(), claims.UserID)
		if err != nil {
			return respondError(c, log, err)
		}
		c.Locals(LocalActor, actor)
		return c.Next()
	}
}

// RequireCapability corta con 403 si el actor no tiene la capacidad. Va después de AuthMiddleware.
func RequireCapability(capability entity.Capability, log *logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := auth.Require(GetActor(c), capability); err != nil {
			return respondError(c, log, err)
		}
		return c.Next()
	}
}

// GetActor devuelve el actor del contexto; vacío si no pasó por AuthMiddleware.
func GetActor(c *fiber.Ctx) entity.Actor {
	actor, _ := c.Locals(LocalActor).(entity.Actor)
	return actor
}
