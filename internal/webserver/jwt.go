package webserver

import (
	"net/http"

	jwtv5 "github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
)

// PortalClaims is the bearer token payload. Level is "admin" or "user".
// Tokens are issued by publicapi login with HS256; echo-jwt parses them here.
type PortalClaims struct {
	UserID string `json:"uid"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Level  string `json:"level"`
	jwtv5.RegisteredClaims
}

// JwtMiddleware validates the Authorization bearer token.
func JwtMiddleware(secret string) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		SigningKey: []byte(secret),
		NewClaimsFunc: func(c echo.Context) jwtv5.Claims {
			return new(PortalClaims)
		},
	})
}

// Claims extracts the validated token claims, nil when unauthenticated.
func Claims(c echo.Context) *PortalClaims {
	token, ok := c.Get("user").(*jwtv5.Token)
	if !ok {
		return nil
	}
	claims, ok := token.Claims.(*PortalClaims)
	if !ok {
		return nil
	}
	return claims
}

// RequireAdmin rejects non-admin tokens. The server is the trust boundary;
// clients never enforce authorization themselves.
func RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		claims := Claims(c)
		if claims == nil || claims.Level != "admin" {
			return echo.NewHTTPError(http.StatusForbidden, "admin privileges required")
		}
		return next(c)
	}
}
