package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"reflect"
	"strings"
	"syscall"

	"github.com/OFFIS-RIT/graphlift/internal/bootstrap"
	"github.com/OFFIS-RIT/graphlift/internal/config"
	mid "github.com/OFFIS-RIT/graphlift/internal/server/middleware"
	"github.com/OFFIS-RIT/graphlift/internal/server/util"
	"github.com/OFFIS-RIT/graphlift/pkg/logger"
	"github.com/OFFIS-RIT/graphlift/pkg/query"

	"github.com/go-playground/validator"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"
)

type CustomValidator struct {
	validator *validator.Validate
}

func (cv *CustomValidator) Validate(i any) error {
	if err := cv.validator.Struct(i); err != nil {
		return err
	}
	return nil
}

// NewValidator reports fields under their query parameter names.
func NewValidator() *CustomValidator {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("query"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	return &CustomValidator{validator: v}
}

// New builds the echo instance with middleware and routes for app.
func New(app *mid.App, gatherer prometheus.Gatherer) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = NewValidator()
	e.HTTPErrorHandler = util.HTTPErrorHandler

	e.Use(mid.AppContextMiddleware(app))
	e.Use(middleware.CORS())
	e.Use(middleware.RequestLogger())
	e.Use(middleware.Recover())

	RegisterRoutes(e, gatherer)
	return e
}

// Init connects the graph store and embedding provider from cfg and serves
// the API until SIGINT or SIGTERM.
func Init(cfg *config.Config) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	storage, err := bootstrap.NewGraphStorage(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to connect to Neo4j", "err", err)
	}
	defer storage.Close(context.Background())

	embedder, err := bootstrap.NewEmbeddingClient(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to create embedding client", "err", err)
	}
	if embedder == nil {
		logger.Warn("No embedding provider configured, semantic search disabled")
	} else {
		logger.Info("Semantic search enabled", "adapter", cfg.Embedding.Adapter, "model", embedder.Model())
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	app := &mid.App{
		Query: query.NewService(query.NewServiceParams{
			Storage:    storage,
			Embedder:   embedder,
			Metrics:    query.NewMetrics(reg),
			Dimensions: cfg.Embedding.Dimension,
		}),
	}
	e := New(app, reg)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting server", "port", cfg.Port)
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return e.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server stopped with error", "err", err)
	}
}
