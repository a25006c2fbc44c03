package container

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"philately/catalog/internal/client"
	"philately/catalog/internal/config"
	"philately/catalog/internal/loader"
	"philately/catalog/internal/seed"
	"philately/catalog/internal/server"
	"philately/catalog/internal/session"
	"philately/catalog/internal/store"

	"github.com/benbjohnson/clock"
	log "github.com/sirupsen/logrus"
)

// Container holds all initialized components
type Container struct {
	Config     *config.Config
	Store      store.Store
	Client     client.CatalogClient
	Controller *loader.Controller
	Sessions   *session.Cache
	Server     *server.Server

	httpServer *http.Server
}

// New creates a new container with all dependencies initialized
func New(cfg *config.Config) (*Container, error) {
	container := &Container{
		Config: cfg,
	}

	// Open the persistent record store, degrading to memory-only when the
	// environment has no usable persistent storage.
	st, err := store.OpenSQLite(cfg.Storage.Path)
	if err != nil {
		if !errors.Is(err, store.ErrStorageUnavailable) {
			return nil, fmt.Errorf("failed to open record store: %w", err)
		}
		log.Warnf("⚠️ Persistent storage unavailable, running memory-only: %v", err)
		container.Store = store.NewMemory()
	} else {
		container.Store = st
	}

	catalogClient := client.NewCatalogClient(cfg.Catalog)
	container.Client = catalogClient

	controller := loader.NewController(container.Store, catalogClient, seed.Records, cfg.Catalog.PageSize)
	container.Controller = controller

	clk := clock.New()
	sessions := session.NewCache(clk, time.Duration(cfg.Session.TTL)*time.Second)
	container.Sessions = sessions

	srv := server.New(container.Store, controller, sessions, clk)
	container.Server = srv

	container.httpServer = &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: srv.Router(),
	}

	return container, nil
}

// Run starts the initial catalog load and serves the HTTP API until ctx is
// cancelled.
func (c *Container) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return c.Controller.Start(ctx)
	})

	g.Go(func() error {
		log.Infof("🚀 Serving catalog API on %s", c.httpServer.Addr)
		if err := c.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return c.httpServer.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// Close performs cleanup when shutting down
func (c *Container) Close() error {
	log.Info("Shutting down container...")

	if err := c.Store.Close(); err != nil {
		log.Warnf("⚠️ Failed to close record store: %v", err)
	}

	log.Info("Container shut down successfully")
	return nil
}
