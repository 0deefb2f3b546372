package main

import (
	"context"
	"io/fs"
	"os"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"github.com/toyz/dispatch/demo"
	_ "github.com/toyz/dispatch/demo/app"
	"github.com/toyz/dispatch/internal/config"
	"github.com/toyz/dispatch/internal/logging"
	"github.com/toyz/dispatch/pkg/dispatch"
	"github.com/toyz/dispatch/pkg/dispatch/adapters"
)

// loadedConfig carries the configuration together with the problem met while
// reading it, so the problem can be logged once a logger exists
type loadedConfig struct {
	fx.Out

	Config  *config.Config
	Problem configProblem
}

type configProblem struct{ err error }

// Module wires the server process around the property file at configFile
func Module(configFile string) fx.Option {
	return fx.Options(
		fx.Provide(
			func() loadedConfig { return loadConfig(configFile) },
			newLogger,
			newSource,
			newApplication,
			newWebServer,
		),
		fx.WithLogger(func(logger *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: logger.Named("fx")}
		}),
		fx.Invoke(registerServer),
	)
}

func loadConfig(file string) loadedConfig {
	cfg, err := config.Load(file)
	return loadedConfig{Config: cfg, Problem: configProblem{err: err}}
}

func newLogger(cfg *config.Config, problem configProblem) (*zap.Logger, error) {
	logger, err := logging.New(&cfg.Log)
	if err != nil {
		return nil, err
	}
	if problem.err != nil {
		logger.Warn("configuration problem, continuing with defaults", zap.Error(problem.err))
	}
	return logger, nil
}

// newSource returns the tree holding the namespace directories: sourceRoot on
// disk when configured, the embedded demo otherwise. An empty scanPackage is
// left for Boot to reject.
func newSource(cfg *config.Config, logger *zap.Logger) fs.FS {
	if cfg.SourceRoot != "" {
		logger.Info("scanning sources on disk", zap.String("source_root", cfg.SourceRoot))
		return os.DirFS(cfg.SourceRoot)
	}
	if cfg.ScanPackage == "" {
		logger.Warn("scanPackage is not configured")
		return demo.Sources
	}
	logger.Info("scanning embedded demo sources", zap.String("scan_package", cfg.ScanPackage))
	return demo.Sources
}

func newApplication(lc fx.Lifecycle, cfg *config.Config, source fs.FS, logger *zap.Logger) (*dispatch.Application, error) {
	app, err := dispatch.Boot(dispatch.Options{
		Source:       source,
		ScanPackage:  cfg.ScanPackage,
		ContextPath:  cfg.ContextPath,
		NotFoundBody: cfg.NotFoundBody,
		Logger:       logger,
	})
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return app.Close(ctx)
		},
	})
	return app, nil
}

func newWebServer(cfg *config.Config) (adapters.WebServer, error) {
	return adapters.New(cfg.Server.Engine)
}

func registerServer(lc fx.Lifecycle, shutdowner fx.Shutdowner, server adapters.WebServer, app *dispatch.Application, cfg *config.Config, logger *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			server.Mount(app.Handler())
			logger.Info("starting web server",
				zap.String("engine", server.Name()),
				zap.String("addr", cfg.Server.Addr),
				zap.Int("routes", app.Routes().Len()))

			go func() {
				if err := server.Start(cfg.Server.Addr); err != nil {
					logger.Error("web server stopped", zap.Error(err))
					_ = shutdowner.Shutdown(fx.ExitCode(1))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("stopping web server", zap.String("engine", server.Name()))
			ctx, cancel := context.WithTimeout(ctx, cfg.Server.ShutdownTimeout)
			defer cancel()
			return server.Stop(ctx)
		},
	})
}
