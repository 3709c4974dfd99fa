package router

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	echoSwagger "github.com/swaggo/echo-swagger"
	"golang.org/x/time/rate"

	"github.com/AlexVocao/login/internal/auth"
	"github.com/AlexVocao/login/internal/config"
	apperrors "github.com/AlexVocao/login/internal/errors"
	"github.com/AlexVocao/login/internal/handler"
	"github.com/AlexVocao/login/internal/metrics"
)

// Dependencies are the components the routes are served by.
type Dependencies struct {
	AuthHandler    *handler.AuthHandler
	ProfileHandler *handler.ProfileHandler
	JWT            *auth.JWTService
	Metrics        *metrics.Collector
	Gatherer       prometheus.Gatherer
	Logger         *slog.Logger
}

// Register wires routes and middleware.
func Register(e *echo.Echo, cfg *config.Config, d Dependencies) {
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	if d.Metrics != nil {
		e.Use(d.Metrics.Middleware())
	}

	e.Validator = NewValidator()

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	if d.Gatherer != nil {
		e.GET("/metrics", metrics.Handler(d.Gatherer))
	}
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api")

	// Public routes, throttled per client IP
	authGroup := api.Group("/auth")
	if cfg.RateLimitRPS > 0 {
		authGroup.Use(rateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst))
	}
	authGroup.POST("/signup", d.AuthHandler.Signup)
	authGroup.POST("/login", d.AuthHandler.Login)
	authGroup.POST("/forgot-password", d.AuthHandler.ForgotPassword)
	authGroup.POST("/reset-password", d.AuthHandler.ResetPassword)

	// Secured routes (require JWT authentication)
	secured := api.Group("/profile", auth.Middleware(d.JWT, d.Logger))
	secured.GET("/me", d.ProfileHandler.Me)
}

func rateLimiter(rps float64, burst int) echo.MiddlewareFunc {
	tooMany := apperrors.NewHTTPError(http.StatusTooManyRequests, "too many requests", apperrors.KindTooManyRequests.String())
	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
			Rate:      rate.Limit(rps),
			Burst:     burst,
			ExpiresIn: 3 * time.Minute,
		}),
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			return echo.NewHTTPError(tooMany.StatusCode, tooMany.ToErrorResponse())
		},
	})
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator reports failures by JSON field name.
func NewValidator() *CustomValidator {
	v := validator.New()
	v.RegisterTagNameFunc(jsonFieldName)
	return &CustomValidator{validator: v}
}

// Validate implements echo.Validator interface. Only the first failing
// field is reported.
func (cv *CustomValidator) Validate(i interface{}) error {
	err := cv.validator.Struct(i)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return fmt.Errorf("%s is required", fe.Field())
	case "min":
		return fmt.Errorf("%s must be at least %s characters", fe.Field(), fe.Param())
	case "max":
		return fmt.Errorf("%s must be at most %s characters", fe.Field(), fe.Param())
	case "email":
		return fmt.Errorf("%s must be a valid email address", fe.Field())
	default:
		return fmt.Errorf("%s is invalid", fe.Field())
	}
}

func jsonFieldName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "-" || name == "" {
		return f.Name
	}
	return name
}
