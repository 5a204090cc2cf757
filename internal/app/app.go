package app

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kegliz/leqo-compile/internal/compileservice"
	"github.com/kegliz/leqo-compile/internal/config"
	"github.com/kegliz/leqo-compile/internal/jobstore"
	"github.com/kegliz/leqo-compile/internal/logger"
	"github.com/kegliz/leqo-compile/internal/server/router"
	"github.com/kegliz/leqo-compile/leqo/catalogue"

	"github.com/kegliz/leqo-compile/internal/server"
)

type (
	ServerOptions struct {
		C       *config.Config
		Version string
	}

	appServer struct {
		logger  *logger.Logger
		router  *router.Router
		cs      compileservice.Service
		version string
	}

	appServerOptions struct {
		logger  *logger.Logger
		router  *router.Router
		cs      compileservice.Service
		version string
	}
)

// newAppServer creates a new appServer.
func newAppServer(options appServerOptions) *appServer {
	a := &appServer{
		logger:  options.logger,
		router:  options.router,
		cs:      options.cs,
		version: options.version,
	}
	a.router.SetRoutes(a.routes())
	return a
}

// Listen implements server.Server.
func (a *appServer) Listen(port int, localOnly bool) error {
	a.logger.Debug().Str("version", a.version).Msg("debug leqo compile server")
	a.logger.Info().
		Int("port", port).
		Bool("localOnly", localOnly).
		Msg("Starting leqo compile service")
	return a.router.Start(port, localOnly)
}

// Shutdown implements server.Server.
func (a *appServer) Shutdown(ctx context.Context) error {
	return a.router.Shutdown(ctx)
}

// NewServer wires the compile REST API: a gin router carrying the CORS and
// request-logging middleware, backed by a compileservice.Service over an
// in-memory jobstore and the stub catalogue Enricher (a production
// catalogue is an external collaborator, spec.md §1/§6).
func NewServer(options ServerOptions) (server.Server, error) {
	l, r := server.NewLoggerAndRouter(server.EngineOptions{
		Debug: options.C.Debug,
	})

	cs := compileservice.NewService(compileservice.ServiceOptions{
		Logger: l,
		Store:  jobstore.NewStore(),
		Opts: compileservice.Options{
			Enricher:       catalogue.NewStubEnricher(),
			MaxUnroll:      options.C.UnrollCeiling,
			RequestTimeout: options.C.RequestTimeout,
		},
	})

	app := newAppServer(appServerOptions{
		logger:  l,
		router:  r,
		cs:      cs,
		version: options.Version,
	})

	return app, nil
}

func (a *appServer) getLoggerFromContext(c *gin.Context) (*logger.Logger, error) {
	if loggerInstance, ok := c.Get("logger"); ok {
		if loggerInstance, ok := loggerInstance.(*logger.Logger); ok {
			return loggerInstance, nil
		}
	}
	err := errors.New("logger not found in context")
	a.logger.Error().Err(err).Send()
	c.String(http.StatusInternalServerError, internalServerErrorMsg)
	return nil, err
}
