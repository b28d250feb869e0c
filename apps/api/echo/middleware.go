package echoapi

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/shulehub/shule/core"
)

const bearerScheme = "Bearer "

// jwtMiddleware authenticates requests via the Authorization header.
// Every protected route goes through ValidateToken; there is no other
// acceptance path.
func jwtMiddleware(conf *core.Config) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			header := ctx.Request().Header.Get(echo.HeaderAuthorization)
			if header == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, ErrTokenMissing.Error())
			}
			if !strings.HasPrefix(header, bearerScheme) {
				return echo.NewHTTPError(http.StatusUnauthorized, ErrTokenMalformed.Error())
			}
			claims, err := ValidateToken(conf, strings.TrimPrefix(header, bearerScheme))
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
			}
			ctx.Set(contextClaimsKey, claims)
			return next(ctx)
		}
	}
}

// roleMiddleware restricts a route to users bearing the given role.
func roleMiddleware(role string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context claims")
			}
			if claims.Role != role {
				return errHttpForbidden
			}
			return next(ctx)
		}
	}
}
