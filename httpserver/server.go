package httpserver

import (
	"context"
	"fmt"
	"net/http"

	sentryecho "github.com/getsentry/sentry-go/echo"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"contactbook/contact"
	"contactbook/errs"
	"contactbook/metrics"
	"contactbook/pkg/config"
	"contactbook/pkg/logger"
	"contactbook/pkg/sentry"
)

const internalErrorMessage = "Internal server error"

type Server struct {
	// Router is the Echo router instance
	Router *echo.Echo

	// Addr represents the address the server will listen on
	Addr string

	// Allowed origins for CORS
	AllowOrigins []string

	Config *config.Config
	Logger *zap.SugaredLogger

	ContactService contact.Service

	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer
}

func New(options ...Option) (*Server, error) {
	s := Server{
		Router:       echo.New(),
		Addr:         ":8080",
		AllowOrigins: []string{"*"},
		Config:       config.Empty,
		Logger:       logger.NOOPLogger,
	}

	for _, fn := range options {
		if err := fn(&s); err != nil {
			return nil, err
		}
	}

	s.Router.HideBanner = true
	s.Router.HTTPErrorHandler = s.handleHTTPError
	s.Router.Validator = NewValidator()
	s.RegisterGlobalMiddlewares()

	s.RegisterHealthRoutes()
	s.RegisterContactRoutes(s.Router.Group("/api/contacts"))
	s.RegisterMetricsRoutes()
	return &s, nil
}

func (s *Server) RegisterGlobalMiddlewares() {
	s.Router.Use(middleware.Recover())
	s.Router.Use(middleware.Secure())
	s.Router.Use(middleware.RequestID())
	if s.Metrics != nil {
		s.Router.Use(s.Metrics.Middleware())
	}
	s.Router.Use(middleware.Gzip())
	s.Router.Use(sentryecho.New(sentryecho.Options{Repanic: true}))
	s.Router.Use(middleware.RateLimiter(middleware.NewRateLimiterMemoryStore(20)))

	// CORS
	if len(s.AllowOrigins) > 0 {
		s.Router.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins: s.AllowOrigins,
		}))
	}
}

func (s *Server) RegisterMetricsRoutes() {
	if s.Gatherer == nil {
		return
	}
	s.Router.GET("/metrics", echo.WrapHandler(metrics.Handler(s.Gatherer)))
}

func (s *Server) Start() error {
	return s.Router.Start(s.Addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.Router.Shutdown(ctx)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router.ServeHTTP(w, r)
}

// handleHTTPError maps application errors to HTTP status codes and writes
// the response envelope. Server side failures are logged and reported.
func (s *Server) handleHTTPError(err error, c echo.Context) {
	status, message := errorStatus(err)

	if status >= http.StatusInternalServerError {
		s.Logger.Errorw(
			err.Error(),
			"request_id", s.requestID(c),
			"path", c.Path(),
		)
		sentry.WithContext(c).Error(err)
	}

	// Don't write response if already committed
	if c.Response().Committed {
		return
	}

	var info string
	switch code := errs.ErrorCode(err); code {
	case errs.ESTORAGEREAD, errs.ESTORAGEWRITE:
		info = code
	}

	if err := writeError(c, status, message, info, err); err != nil {
		s.Logger.Errorw("cannot write error response", "error", err)
	}
}

func errorStatus(err error) (int, string) {
	if he, ok := err.(*echo.HTTPError); ok {
		return he.Code, fmt.Sprint(he.Message)
	}

	switch errs.ErrorCode(err) {
	case errs.EINVALID:
		return http.StatusBadRequest, errs.ErrorMessage(err)
	case errs.ENOTFOUND:
		return http.StatusNotFound, errs.ErrorMessage(err)
	case errs.ECONFLICT:
		return http.StatusConflict, errs.ErrorMessage(err)
	case errs.EUNAUTHORIZED:
		return http.StatusUnauthorized, errs.ErrorMessage(err)
	case errs.ENOTIMPLEMENTED:
		return http.StatusNotImplemented, errs.ErrorMessage(err)
	case errs.ESTORAGEREAD, errs.ESTORAGEWRITE:
		return http.StatusServiceUnavailable, errs.ErrorMessage(err)
	default:
		return http.StatusInternalServerError, internalErrorMessage
	}
}

func (s *Server) requestID(c echo.Context) string {
	return c.Response().Header().Get(echo.HeaderXRequestID)
}
