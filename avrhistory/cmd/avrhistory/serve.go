// Copyright 2026 The avrhistory Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//   http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/enclavetrust/avrhistory/avrhistory/config"
	"github.com/enclavetrust/avrhistory/pkg/log"
	"github.com/enclavetrust/avrhistory/pkg/private/prom"
	"github.com/enclavetrust/avrhistory/pkg/private/serrors"
	"github.com/enclavetrust/avrhistory/private/env"
	"github.com/enclavetrust/avrhistory/private/history"
	"github.com/enclavetrust/avrhistory/private/mgmtapi/history/api"
	"github.com/enclavetrust/avrhistory/private/periodic"
	"github.com/enclavetrust/avrhistory/private/storage"
)

func newServe(pather CommandPather) *cobra.Command {
	var flags struct {
		config string
	}
	var cmd = &cobra.Command{
		Use:     "serve --config <file>",
		Short:   "Serve the attestation history",
		Example: fmt.Sprintf(`  %[1]s serve --config avrhistory.toml`, pather.CommandPath()),
		Long: `'serve' loads the attestation history and serves lookups over HTTP.

The history is read from the bootstrap file or, if none is configured, from the
history database. It is reloaded on SIGHUP and, if configured, periodically. A
failed reload keeps the previous history.
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(flags.config)
			if err != nil {
				return err
			}
			cmd.SilenceUsage = true
			if err := log.Setup(cfg.Logging); err != nil {
				return serrors.Wrap("initialize logging", err)
			}
			defer log.Flush()
			defer log.HandlePanic()
			prom.ExportElementID(cfg.General.ID)

			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()
			log.Info("Service started", "id", cfg.General.ID)
			defer log.Info("Service stopped", "id", cfg.General.ID)
			return serve(ctx, cfg)
		},
	}
	cmd.Flags().StringVar(&flags.config, "config", "", "The service configuration file (required)")
	if err := cmd.MarkFlagRequired("config"); err != nil {
		panic(err)
	}
	return cmd
}

func serve(ctx context.Context, cfg config.Config) error {
	var source history.Source = history.FileSource(cfg.General.History)
	if cfg.General.History == "" {
		hdb, err := storage.NewHistoryStorage(cfg.DB, storage.DefaultCheckpointInterval)
		if err != nil {
			return serrors.Wrap("initializing history database", err)
		}
		defer hdb.Close()
		source = hdb
	}
	loader, err := history.NewLoader(history.LoaderCfg{
		Source:  source,
		Reload:  env.SIGHUPChannel(ctx),
		Metrics: loaderMetrics(),
	})
	if err != nil {
		return serrors.Wrap("creating history loader", err)
	}
	g, errCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer log.HandlePanic()
		return loader.Run(errCtx)
	})
	if interval := cfg.General.ReloadInterval.Duration; interval > 0 {
		reloader := periodic.StartWithMetrics(history.ReloadTask{Loader: loader},
			reloaderMetrics(), interval, interval)
		defer reloader.Stop()
	}

	if cfg.API.Addr != "" {
		server := &api.Server{
			History: loader,
			Lookups: lookupMetrics(),
		}
		r := chi.NewRouter()
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
		}))
		r.Mount("/", api.Handler(server))
		log.Info("Exposing API", "addr", cfg.API.Addr)
		mgmtServer := &http.Server{
			Addr:              cfg.API.Addr,
			Handler:           r,
			ReadHeaderTimeout: 10 * time.Second,
		}
		g.Go(func() error {
			defer log.HandlePanic()
			err := mgmtServer.ListenAndServe()
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				return serrors.Wrap("serving history API", err, "addr", cfg.API.Addr)
			}
			return nil
		})
		g.Go(func() error {
			defer log.HandlePanic()
			<-errCtx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(),
				env.ShutdownGraceInterval)
			defer cancel()
			return mgmtServer.Shutdown(shutdownCtx)
		})
	}

	g.Go(func() error {
		defer log.HandlePanic()
		return cfg.Metrics.ServePrometheus(errCtx)
	})
	return g.Wait()
}
