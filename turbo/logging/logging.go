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

package logging

import (
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/ledgerwatch/log/v3"
	"github.com/urfave/cli/v2"
	"gopkg.in/natefinch/lumberjack.v2"
)

type Config struct {
	FilePrefix   string
	DirPath      string
	ConsoleLevel log.Lvl
	DirLevel     log.Lvl
	ConsoleJson  bool
	DirJson      bool
}

// ConfigFromContext reads the logging flags. Unparsable levels fall back to info,
// the file log goes to <datadir>/logs unless log.dir.path is set.
func ConfigFromContext(filePrefix string, ctx *cli.Context) Config {
	cfg := Config{
		FilePrefix:  filePrefix,
		ConsoleJson: ctx.Bool(LogJsonFlag.Name) || ctx.Bool(LogConsoleJsonFlag.Name),
		DirJson:     ctx.Bool(LogDirJsonFlag.Name),
		DirPath:     ctx.String(LogDirPathFlag.Name),
	}

	var err error
	cfg.ConsoleLevel, err = tryGetLogLevel(ctx.String(LogConsoleVerbosityFlag.Name))
	if err != nil {
		// try verbosity flag
		cfg.ConsoleLevel, err = tryGetLogLevel(ctx.String(LogVerbosityFlag.Name))
		if err != nil {
			cfg.ConsoleLevel = log.LvlInfo
		}
	}
	if cfg.DirLevel, err = tryGetLogLevel(ctx.String(LogDirVerbosityFlag.Name)); err != nil {
		cfg.DirLevel = log.LvlInfo
	}

	if cfg.DirPath == "" {
		if datadir := ctx.String("datadir"); datadir != "" {
			cfg.DirPath = filepath.Join(datadir, "logs")
		}
	}
	return cfg
}

// SetupLoggerCtx configures log.Root from the command line and returns it.
func SetupLoggerCtx(filePrefix string, ctx *cli.Context) log.Logger {
	return Setup(ConfigFromContext(filePrefix, ctx), os.Stderr)
}

// Setup installs the console handler writing to console and, if cfg.DirPath is set, a rotated file handler.
func Setup(cfg Config, console io.Writer) log.Logger {
	logger := log.Root()

	consoleFormat := log.TerminalFormat()
	if cfg.ConsoleJson {
		consoleFormat = log.JsonFormat()
	}
	consoleHandler := log.LvlFilterHandler(cfg.ConsoleLevel, log.StreamHandler(console, consoleFormat))
	logger.SetHandler(consoleHandler)

	if len(cfg.DirPath) == 0 {
		logger.Debug("no log dir set, console logging only")
		return logger
	}

	if err := os.MkdirAll(cfg.DirPath, 0764); err != nil {
		logger.Warn("failed to create log dir, console logging only", "err", err)
		return logger
	}

	dirFormat := log.TerminalFormatNoColor()
	if cfg.DirJson {
		dirFormat = log.JsonFormat()
	}

	rotating := &lumberjack.Logger{
		Filename:   filepath.Join(cfg.DirPath, cfg.FilePrefix+".log"),
		MaxSize:    100, // megabytes
		MaxBackups: 3,
		MaxAge:     28, //days
	}
	userLog := log.StreamHandler(rotating, dirFormat)

	logger.SetHandler(log.MultiHandler(consoleHandler, log.LvlFilterHandler(cfg.DirLevel, userLog)))
	logger.Info("logging to file system", "log dir", cfg.DirPath, "file prefix", cfg.FilePrefix, "log level", cfg.DirLevel, "json", cfg.DirJson)
	return logger
}

func tryGetLogLevel(s string) (log.Lvl, error) {
	lvl, err := log.LvlFromString(s)
	if err != nil {
		l, err := strconv.Atoi(s)
		if err != nil {
			return 0, err
		}
		return log.Lvl(l), nil
	}
	return lvl, nil
}
