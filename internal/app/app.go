// Package app builds the POS service dependency graph and runs it until
// shutdown.
package app

import (
	"context"
	"net/http"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"

	httpapi "github.com/sumakasetty9/Inventory/internal/api/http"
	"github.com/sumakasetty9/Inventory/internal/config"
	"github.com/sumakasetty9/Inventory/internal/inventory"
	"github.com/sumakasetty9/Inventory/internal/logging"
	"github.com/sumakasetty9/Inventory/internal/service"
	"github.com/sumakasetty9/Inventory/internal/shutdown"
)

// App holds everything needed to run and gracefully stop the POS service.
type App struct {
	logger      *zap.Logger
	httpServer  *http.Server
	shutdownMgr *shutdown.Manager
	pos         *service.POS
	wg          sync.WaitGroup
}

// Build constructs the dependency graph from cfg.
func Build(cfg config.Config) (*App, error) {
	logger, err := logging.New(logging.Config{
		ServiceName: "pos",
		Env:         string(cfg.AppEnv),
		Level:       os.Getenv("LOG_LEVEL"),
		Format:      os.Getenv("LOG_FORMAT"),
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Building POS service",
		zap.String("http_addr", cfg.HTTPAddr),
		zap.String("inventory_api", cfg.InventoryAPIURL))

	client := inventory.NewClient(cfg.InventoryAPIURL, cfg.RequestTimeout, logger)
	pos := service.NewPOS(client, logger)

	// Ready once the inventory API answers a product listing.
	readiness := func() bool {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_, err := client.ListProducts(ctx, false)
		return err == nil
	}

	handler := httpapi.NewHandler(pos, cfg.LowStockThreshold, logger)
	router := httpapi.NewRouter(handler, readiness, logger)

	httpServer := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	shutdownMgr := shutdown.New(cfg.ShutdownTimeout, logger)
	shutdownMgr.Add("http_server", shutdown.HTTPServer(httpServer))

	return &App{
		logger:      logger,
		httpServer:  httpServer,
		shutdownMgr: shutdownMgr,
		pos:         pos,
	}, nil
}

// Run warms the product snapshot, starts the HTTP server and blocks until
// the shutdown signal has been handled.
func (a *App) Run() error {
	defer logging.Sync(a.logger)

	// Page-load equivalent: fetch the initial snapshot. The API may not be
	// up yet; the first product listing will retry the fetch.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if _, err := a.pos.RefreshProducts(ctx); err != nil {
		a.logger.Warn("initial product snapshot failed", zap.Error(err))
	}
	cancel()

	a.logger.Info("Starting POS service", zap.String("addr", a.httpServer.Addr))

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.logger.Error("HTTP server error", zap.Error(err))
		}
	}()

	a.shutdownMgr.Wait()

	a.wg.Wait()
	a.logger.Info("POS service stopped")
	return nil
}
