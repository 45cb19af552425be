package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/pulso-odonto/go-br-patient-parser/internal/config"
	"github.com/pulso-odonto/go-br-patient-parser/internal/server/middleware"
)

// candidatePorts tried in order when PORT=auto
var candidatePorts = []int{8080, 8081, 8082, 3000, 3001, 5000}

// NewEcho wires middleware and routes
func NewEcho(cfg *config.Config, logger zerolog.Logger, h *Handler) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete},
		AllowHeaders: []string{"Content-Type", middleware.RequestIDHeader},
	}))
	e.Use(echomw.BodyLimit(fmt.Sprintf("%dM", cfg.MaxUploadMB)))

	h.RegisterRoutes(e)
	return e
}

// Run serves until ctx is cancelled, then shuts down gracefully
func Run(ctx context.Context, e *echo.Echo, addr string, logger zerolog.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", addr).Msg("starting server")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	logger.Info().Msg("server stopped")
	return nil
}

// ListenAddr loopback address for the configured port
func ListenAddr(port string) string {
	if port == config.PortAuto {
		port = fmt.Sprint(findAvailablePort())
	}
	return net.JoinHostPort("127.0.0.1", port)
}

// findAvailablePort first free candidate, else one chosen by the OS
func findAvailablePort() int {
	for _, port := range candidatePorts {
		if isPortAvailable(port) {
			return port
		}
	}
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return candidatePorts[0]
	}
	defer listener.Close()
	return listener.Addr().(*net.TCPAddr).Port
}

func isPortAvailable(port int) bool {
	listener, err := net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", port))
	if err != nil {
		return false
	}
	listener.Close()
	return true
}
