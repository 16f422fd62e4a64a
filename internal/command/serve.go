package command

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	sqliteadapter "github.com/ericfisherdev/catalogapi/internal/adapter/driven/sqlite"
	httphandler "github.com/ericfisherdev/catalogapi/internal/adapter/driving/http"
	"github.com/ericfisherdev/catalogapi/internal/adapter/driving/web"
	"github.com/ericfisherdev/catalogapi/internal/application"
	"github.com/ericfisherdev/catalogapi/internal/auth"
	"github.com/ericfisherdev/catalogapi/internal/config"
	"github.com/ericfisherdev/catalogapi/internal/metrics"
	"github.com/ericfisherdev/catalogapi/internal/server"
)

func serveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "serve the catalog REST API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) (runErr error) {
			cfg, err := configFrom(cmd.Context())
			if err != nil {
				return err
			}
			logger := slog.Default()

			db, err := openDB(cmd, cfg)
			if err != nil {
				return err
			}
			defer func() {
				if err := db.Close(); err != nil {
					runErr = errors.Join(runErr, err)
				}
			}()

			if err := sqliteadapter.RunMigrations(db.Writer); err != nil {
				return err
			}
			logger.InfoContext(cmd.Context(), "migrations complete")

			if !cfg.HasAPIKey() {
				logger.WarnContext(cmd.Context(),
					"no API key configured; every request will be rejected",
					slog.String("env", "CATALOG_API_KEY"),
				)
			}

			reg := metrics.New()
			store := sqliteadapter.NewProductRepo(db, cfg.DBQueryTimeout, reg)
			catalog := application.NewCatalogService(store, logger)
			health := application.NewHealthService(db, cfg.DBQueryTimeout)

			handler := httphandler.NewServeMux(
				httphandler.NewHandler(catalog, health, cfg.IsProduction(), logger),
				httphandler.Options{
					Auth:    auth.New(cfg.APIKey),
					Metrics: reg,
					Docs:    web.NewDocsHandler(logger),
				},
				logger,
			)

			grp, ctx := errgroup.WithContext(cmd.Context())

			listener, err := server.Listen(ctx, cfg.ListenAddr)
			if err != nil {
				return err
			}
			srv := &http.Server{Handler: handler} //nolint:gosec // Serve() sets timeouts

			logger.InfoContext(ctx,
				"starting catalog API...",
				slog.String("address", listener.Addr().String()),
				slog.Bool("production", cfg.IsProduction()),
			)
			server.Serve(ctx, grp, srv, listener, server.ShutdownTimeout)

			err = grp.Wait()
			logger.InfoContext(cmd.Context(), "shutdown complete")
			return err
		},
	}
}

func openDB(cmd *cobra.Command, cfg *config.Config) (*sqliteadapter.DB, error) {
	db, err := sqliteadapter.NewDB(cmd.Context(), sqliteadapter.Options{
		Path:         cfg.DBPath,
		MaxOpenConns: cfg.DBMaxOpenConns,
		IdleTimeout:  cfg.DBIdleTimeout,
		BusyTimeout:  cfg.DBBusyTimeout,
	})
	if err != nil {
		return nil, err
	}
	slog.InfoContext(cmd.Context(), "database opened", slog.String("path", db.Path()))
	return db, nil
}
