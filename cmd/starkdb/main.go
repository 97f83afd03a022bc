// Copyright 2025 The Erigon Authors
// This file is part of Erigon.
//
// Erigon is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Erigon is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with Erigon. If not, see <http://www.gnu.org/licenses/>.

// starkdb inspects and initializes a versioned Starknet state database.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"runtime/debug"
	"time"

	"github.com/ledgerwatch/log/v3"
	"github.com/urfave/cli/v2"

	"github.com/erigontech/starkdb/metrics"
	"github.com/erigontech/starkdb/turbo/logging"
)

func main() {
	defer func() {
		panicResult := recover()
		if panicResult == nil {
			return
		}
		log.Error("catch panic", "err", panicResult, "stack", string(debug.Stack()))
		os.Exit(1)
	}()

	if err := makeApp().Run(os.Args); err != nil {
		if _, printErr := fmt.Fprintln(os.Stderr, err); printErr != nil {
			log.Warn("Fprintln error", "err", printErr)
		}
		os.Exit(1)
	}
}

func makeApp() *cli.App {
	var metricsSrv *http.Server

	app := cli.NewApp()
	app.Name = "starkdb"
	app.Usage = "versioned Starknet state database"
	app.Flags = globalFlags
	app.Commands = commands
	app.Before = func(ctx *cli.Context) error {
		if configFilePath := ctx.String(ConfigFlag.Name); configFilePath != "" {
			if err := setFlagsFromConfigFile(ctx, configFilePath); err != nil {
				return fmt.Errorf("config %s: %w", configFilePath, err)
			}
		}
		logger := logging.SetupLoggerCtx("starkdb", ctx)

		if addr := ctx.String(MetricsAddrFlag.Name); addr != "" {
			metricsSrv = &http.Server{Addr: addr, Handler: metrics.Handler(), ReadHeaderTimeout: 5 * time.Second}
			go func() {
				logger.Info("Starting metrics server", "addr", addr)
				if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Error("metrics server", "err", err)
				}
			}()
		}
		return nil
	}
	app.After = func(ctx *cli.Context) error {
		if metricsSrv == nil {
			return nil
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return metricsSrv.Shutdown(shutdownCtx)
	}
	return app
}
