package webserver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/talkincode/storebuilder/config"
)

const (
	ApiPrefix = "/api/v1"

	// AppContextKey holds the application context in every echo context.
	AppContextKey = "appctx"
)

// WebServer is the HTTP front of the store builder.
type WebServer struct {
	root *echo.Echo
	api  *echo.Group
	cfg  config.WebConfig
}

var server *WebServer

// Init builds the global server; handlers registered through ApiGET and
// friends attach to it. appCtx is exposed to handlers under AppContextKey.
func Init(cfg config.WebConfig, appCtx interface{}) *WebServer {
	server = NewWebServer(cfg, appCtx)
	return server
}

// NewWebServer builds a server without touching the global instance.
func NewWebServer(cfg config.WebConfig, appCtx interface{}) *WebServer {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.JSONSerializer = &JSONSerializer{}
	e.HTTPErrorHandler = httpErrorHandler

	e.Use(middleware.Recover())
	e.Use(requestLogger())
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(AppContextKey, appCtx)
			return next(c)
		}
	})

	store := sessions.NewCookieStore(cookieSecret(cfg.Secret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}

	api := e.Group(ApiPrefix, session.Middleware(store), sessionIDMiddleware)
	return &WebServer{root: e, api: api, cfg: cfg}
}

// cookieSecret returns the configured secret, or a random one for this
// process when none is configured. Sessions live in memory, so a restart
// invalidates their cookies either way.
func cookieSecret(secret string) []byte {
	if secret != "" {
		return []byte(secret)
	}
	zap.L().Warn("web.secret is not set, using a random cookie secret")
	return securecookie.GenerateRandomKey(64)
}

// Echo exposes the underlying router.
func (s *WebServer) Echo() *echo.Echo {
	return s.root
}

// Server returns the global server.
func Server() *WebServer {
	return server
}

func ApiGET(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) {
	server.api.GET(path, h, m...)
}

func ApiPOST(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) {
	server.api.POST(path, h, m...)
}

func ApiPUT(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) {
	server.api.PUT(path, h, m...)
}

func ApiDELETE(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) {
	server.api.DELETE(path, h, m...)
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *WebServer) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	errCh := make(chan error, 1)
	go func() {
		zap.S().Infof("Starting web server at %s", addr)
		errCh <- s.root.Start(addr)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		zap.S().Info("Shutting down web server")
		return s.root.Shutdown(shutdownCtx)
	}
}

func requestLogger() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:      true,
		LogStatus:   true,
		LogMethod:   true,
		LogLatency:  true,
		LogError:    true,
		LogRemoteIP: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
				zap.String("remote_ip", v.RemoteIP),
			}
			if v.Error != nil {
				zap.L().Warn("request failed", append(fields, zap.Error(v.Error))...)
				return nil
			}
			zap.L().Debug("request", fields...)
			return nil
		},
	})
}

type errorBody struct {
	Error   string      `json:"error"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// httpErrorHandler renders router errors in the same envelope as handler
// failures.
func httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	status := http.StatusInternalServerError
	msg := http.StatusText(status)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		status = he.Code
		msg = fmt.Sprint(he.Message)
	} else {
		zap.L().Error("unhandled error", zap.Error(err))
	}
	code := "INTERNAL_ERROR"
	switch status {
	case http.StatusNotFound:
		code = "NOT_FOUND"
	case http.StatusMethodNotAllowed:
		code = "METHOD_NOT_ALLOWED"
	case http.StatusBadRequest:
		code = "INVALID_REQUEST"
	}
	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(status)
		return
	}
	_ = c.JSON(status, errorBody{Error: code, Message: msg})
}
