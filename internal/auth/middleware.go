package auth

import (
	"errors"
	"log/slog"
	"strings"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	apperrors "github.com/AlexVocao/login/internal/errors"
)

// ContextKey is where verified claims are stored on the echo context.
const ContextKey = "claims"

const bearerPrefix = "Bearer "

// Middleware rejects requests without a valid bearer token. No bearer token
// at all is 401; a token presented but unusable is 403.
func Middleware(jwtService *JWTService, logger *slog.Logger) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		ContextKey:  ContextKey,
		TokenLookup: "header:" + echo.HeaderAuthorization + ":" + bearerPrefix,
		ParseTokenFunc: func(c echo.Context, auth string) (interface{}, error) {
			return jwtService.ValidateToken(auth)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			if !hasBearerToken(c.Request().Header.Get(echo.HeaderAuthorization)) {
				return reject(apperrors.ErrMissingToken)
			}
			reason := "invalid"
			if errors.Is(err, ErrTokenExpired) {
				reason = "expired"
			}
			logger.InfoContext(c.Request().Context(), "bearer token rejected", "reason", reason, "path", c.Path())
			return reject(apperrors.ErrInvalidToken)
		},
	})
}

// hasBearerToken matches the scheme case-insensitively, as the token
// extractor does.
func hasBearerToken(header string) bool {
	n := len(bearerPrefix)
	return len(header) > n && strings.EqualFold(header[:n], bearerPrefix)
}

func reject(err error) error {
	httpErr := apperrors.MapErrorToHTTP(err)
	return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
}

// ClaimsFromContext returns the claims stored by Middleware.
func ClaimsFromContext(c echo.Context) (*Claims, bool) {
	claims, ok := c.Get(ContextKey).(*Claims)
	return claims, ok && claims != nil
}
