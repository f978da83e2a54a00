package webserver

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/random"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/viewguard/viewguard/config"
)

type echoValidator struct {
	v *validator.Validate
}

func (ev *echoValidator) Validate(i interface{}) error {
	return ev.v.Struct(i)
}

// WebServer wraps the echo instance and its route groups. Admin handlers
// register through ApiXXX (JWT + admin role), user-scoped handlers through
// MyApiXXX (JWT only) and portal handlers through PubXXX.
type WebServer struct {
	root   *echo.Echo
	api    *echo.Group
	myapi  *echo.Group
	pub    *echo.Group
	config *config.AppConfig
	db     *gorm.DB
}

var server *WebServer

// Init builds the package server. Must run before any registerXxxRoutes.
func Init(cfg *config.AppConfig, db *gorm.DB) *WebServer {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = &echoValidator{v: validator.New()}

	secret := cfg.Web.Secret
	if secret == "" {
		secret = random.String(32)
		zap.S().Warn("web secret not configured, generated an ephemeral one")
	}

	e.Use(middleware.Recover())
	e.Use(ZapLoggerMiddleware())
	e.Use(session.Middleware(sessions.NewCookieStore([]byte(secret))))
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set("db", db)
			return next(c)
		}
	})

	s := &WebServer{
		root:   e,
		config: cfg,
		db:     db,
	}
	jwtmw := JwtMiddleware(secret)
	s.api = e.Group("/api", jwtmw, RequireAdmin)
	s.myapi = e.Group("/api/my", jwtmw)
	s.pub = e.Group("/public")
	server = s
	return s
}

// Instance returns the package server.
func Instance() *WebServer {
	return server
}

// DB exposes the server database handle.
func (s *WebServer) DB() *gorm.DB {
	return s.db
}

// Start serves until the listener fails or Shutdown is called.
func (s *WebServer) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Web.Host, s.config.Web.Port)
	zap.S().Infof("web server listening on %s", addr)
	err := s.root.Start(addr)
	if err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown stops the server gracefully.
func (s *WebServer) Shutdown(ctx context.Context) error {
	return s.root.Shutdown(ctx)
}

// ZapLoggerMiddleware logs one line per request through the global zap logger.
func ZapLoggerMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			req := c.Request()
			res := c.Response()
			fields := []zap.Field{
				zap.String("method", req.Method),
				zap.String("uri", req.RequestURI),
				zap.Int("status", res.Status),
				zap.Duration("latency", time.Since(start)),
				zap.String("remote_ip", c.RealIP()),
			}
			if err != nil {
				fields = append(fields, zap.Error(err))
				zap.L().Warn("http request", fields...)
			} else {
				zap.L().Debug("http request", fields...)
			}
			return err
		}
	}
}

// ApiGET registers an admin-scoped GET route under /api.
func ApiGET(path string, h echo.HandlerFunc) {
	server.api.GET(path, h)
}

func ApiPOST(path string, h echo.HandlerFunc) {
	server.api.POST(path, h)
}

func ApiPUT(path string, h echo.HandlerFunc) {
	server.api.PUT(path, h)
}

func ApiPATCH(path string, h echo.HandlerFunc) {
	server.api.PATCH(path, h)
}

func ApiDELETE(path string, h echo.HandlerFunc) {
	server.api.DELETE(path, h)
}

// MyApiGET registers a user-scoped GET route under /api/my.
func MyApiGET(path string, h echo.HandlerFunc) {
	server.myapi.GET(path, h)
}

// PubGET registers an unauthenticated GET route under /public.
func PubGET(path string, h echo.HandlerFunc) {
	server.pub.GET(path, h)
}

func PubPOST(path string, h echo.HandlerFunc) {
	server.pub.POST(path, h)
}
