package httpserver

import (
	"fmt"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"contactbook/contact"
	"contactbook/metrics"
	"contactbook/pkg/config"
)

type Option func(s *Server) error

// WithConfig sets the listen address and CORS origins from cfg.
func WithConfig(cfg *config.Config) Option {
	return func(s *Server) error {
		s.Config = cfg
		if cfg.Port != 0 {
			s.Addr = fmt.Sprintf(":%d", cfg.Port)
		}
		if cfg.AllowOrigins != "" {
			s.AllowOrigins = strings.Split(cfg.AllowOrigins, ",")
		}
		return nil
	}
}

// WithAllowOrigins overrides the CORS origins. An empty list disables CORS.
func WithAllowOrigins(origins []string) Option {
	return func(s *Server) error {
		s.AllowOrigins = origins
		return nil
	}
}

func WithLogger(l *zap.SugaredLogger) Option {
	return func(s *Server) error {
		s.Logger = l
		return nil
	}
}

func WithContactService(svc contact.Service) Option {
	return func(s *Server) error {
		s.ContactService = svc
		return nil
	}
}

// WithMetrics records request metrics into m and serves g on /metrics.
func WithMetrics(m *metrics.Metrics, g prometheus.Gatherer) Option {
	return func(s *Server) error {
		if m == nil || g == nil {
			return fmt.Errorf("httpserver: metrics and gatherer are both required")
		}
		s.Metrics = m
		s.Gatherer = g
		return nil
	}
}
