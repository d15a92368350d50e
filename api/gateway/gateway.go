package gateway

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"GtnPortal/internal/config"
	"GtnPortal/internal/logger"
)

// GatewayService serves the HTTP API.
type GatewayService struct {
	config map[string]interface{}
	addr   string
	deps   Deps
	server *http.Server
}

func NewGatewayService(cfg map[string]interface{}, deps Deps) *GatewayService {
	env := config.Load()
	addr := env.HTTPAddr
	if v, ok := cfg["addr"].(string); ok && v != "" {
		addr = v
	}
	if deps.MaxUploadBytes == 0 {
		deps.MaxUploadBytes = env.MaxUploadBytes()
	}
	return &GatewayService{config: cfg, addr: addr, deps: deps}
}

func (s *GatewayService) Name() string {
	return "gateway"
}

func (s *GatewayService) Start() error {
	s.server = &http.Server{
		Addr:              s.addr,
		Handler:           NewRouter(s.deps),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.L().Error("gateway server failed", zap.Error(err))
		}
	}()
	logger.Audit("API gateway started", zap.String("addr", s.addr))
	return nil
}

func (s *GatewayService) Stop() error {
	if s.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}
