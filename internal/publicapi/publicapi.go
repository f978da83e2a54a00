package publicapi

import (
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/viewguard/viewguard/config"
	"github.com/viewguard/viewguard/internal/throttle"
)

var (
	appConfig *config.AppConfig
	limiter   *throttle.Limiter
)

// Init wires config and the form rate limiter, then registers all portal
// routes. Call after webserver.Init.
func Init(cfg *config.AppConfig) {
	appConfig = cfg

	var err error
	limiter, err = throttle.NewLimiter(cfg.System.Workdir, cfg.Portal.FormRateLimit, 0)
	if err != nil {
		zap.L().Warn("form throttle unavailable, submissions are unlimited", zap.Error(err))
		limiter = nil
	}

	registerAuthRoutes()
	registerPortalRoutes()
	registerMyRoutes()
}

// Release closes the throttle store.
func Release() {
	if limiter != nil {
		_ = limiter.Close()
	}
}

type webResult struct {
	Code    string      `json:"code"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func ok(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusOK, webResult{Code: "OK", Data: data})
}

func fail(c echo.Context, status int, code, message string) error {
	return c.JSON(status, webResult{Code: code, Message: message})
}

func validationFail(c echo.Context, err error) error {
	if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
		first := verrs[0]
		return fail(c, http.StatusBadRequest, "VALIDATION_ERROR",
			"Field '"+strings.ToLower(first.Field())+"' failed on '"+first.Tag()+"'")
	}
	return fail(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
}

func getDB(c echo.Context) *gorm.DB {
	return c.Get("db").(*gorm.DB)
}

// allowForm applies the per-IP budget on unauthenticated form posts.
func allowForm(c echo.Context) bool {
	if limiter == nil {
		return true
	}
	return limiter.Allow(c.RealIP())
}
