package coordinator

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// StartControlServer serves the local HTTP control surface for the live
// monitor: GET /status returns the current run statistics, GET /trigger
// forces an immediate cycle, /trigger/historical and /trigger/realtime
// trigger one path each, and /metrics exposes the Prometheus registry.
// The server shuts down when the context is cancelled.
func (c *Coordinator) StartControlServer(ctx context.Context, addr string) error {
	if addr == "" {
		addr = c.cfg.Monitor.HTTPAddr
	}

	e := c.controlHandler()

	errCh := make(chan error, 1)
	go func() {
		errCh <- e.Start(addr)
	}()
	c.log.Info("control surface listening", zap.String("addr", addr))

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return e.Shutdown(shutdownCtx)
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}

// controlHandler builds the control-surface routes.
func (c *Coordinator) controlHandler() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())

	e.GET("/status", func(ec echo.Context) error {
		return ec.JSON(http.StatusOK, c.Stats())
	})
	e.GET("/trigger", func(ec echo.Context) error {
		c.TriggerRealtime()
		return ec.JSON(http.StatusOK, map[string]string{"triggered": "realtime"})
	})
	e.GET("/trigger/realtime", func(ec echo.Context) error {
		c.TriggerRealtime()
		return ec.JSON(http.StatusOK, map[string]string{"triggered": "realtime"})
	})
	e.GET("/trigger/historical", func(ec echo.Context) error {
		c.TriggerHistorical()
		return ec.JSON(http.StatusOK, map[string]string{"triggered": "historical"})
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})))

	return e
}
