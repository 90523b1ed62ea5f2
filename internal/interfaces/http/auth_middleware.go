package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/merchhub/merch-api/internal/application/dto"
	"github.com/merchhub/merch-api/internal/domain/entity"
	pkgjwt "github.com/merchhub/merch-api/pkg/jwt"
)

// LocalIdentity key de la identidad en Fiber locals.
const LocalIdentity = "identity"

// AuthMiddleware valida el Bearer Token JWT y deja la identidad
// (userID, role, companyID, grupos) en c.Locals.
func AuthMiddleware(jwtSecret string) fiber.Handler {
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
		claims, err := pkgjwt.Parse(jwtSecret, tokenString)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "token inválido o expirado"})
		}
		c.Locals(LocalIdentity, entity.Identity{
			UserID:              claims.UserID,
			Role:                claims.Role,
			CompanyID:           claims.CompanyID,
			CompanyUserGroupIDs: claims.CompanyUserGroupIDs,
		})
		return c.Next()
	}
}

// GetIdentity devuelve la identidad del contexto (después del middleware de auth).
func GetIdentity(c *fiber.Ctx) entity.Identity {
	v := c.Locals(LocalIdentity)
	if v == nil {
		return entity.Identity{}
	}
	id, _ := v.(entity.Identity)
	return id
}

// RequireRole autoriza solo a los roles indicados.
func RequireRole(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity := GetIdentity(c)
		for _, r := range roles {
			if identity.Role == r {
				return c.Next()
			}
		}
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "rol sin permiso para esta operación"})
	}
}
