package middlewares

import (
	t_token "cov_inspection_service/pkg/token"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

const (
	//QueryToken token in query name
	QueryToken = "auth"

	//CookieToken token in cookie name
	CookieToken = "auth_token"

	//TokenCAPID get capid from token, set c.locals name
	TokenCAPID = "CAPID"
	//TokenRole get role from token, set c.locals name
	TokenRole = "role"
)

// JWTMiddleware validates the session JWT from the cookie or the auth query
// parameter and stashes the claims in c.Locals.
func JWTMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenStr := c.Cookies(CookieToken)
		if tokenStr == "" {
			tokenStr = c.Query(QueryToken)
		}

		if tokenStr == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Missing token",
			})
		}

		token, err := jwt.ParseWithClaims(tokenStr, &t_token.Claims{}, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fiber.NewError(fiber.StatusUnauthorized, "Unexpected signing method")
			}
			return t_token.JWTSecret, nil
		})

		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid token",
			})
		}

		if claims, ok := token.Claims.(*t_token.Claims); ok && token.Valid {
			c.Locals(TokenCAPID, claims.CAPID)
			c.Locals(TokenRole, claims.Role)
		} else {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid token claims",
			})
		}

		return c.Next()
	}
}

// RequireAdmin rejects sessions whose role carries no admin rights. It must
// run after JWTMiddleware.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, _ := c.Locals(TokenRole).(string)
		if !t_token.IsAdmin(role) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Admin access required",
			})
		}
		return c.Next()
	}
}

// RequireSuperAdmin rejects all sessions except the configured super
// administrator. It must run after JWTMiddleware.
func RequireSuperAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, _ := c.Locals(TokenRole).(string)
		if role != string(t_token.RoleSuperAdmin) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Super admin access required",
			})
		}
		return c.Next()
	}
}
