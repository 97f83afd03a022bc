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
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/ledgerwatch/log/v3"
	"github.com/stretchr/testify/require"
)

func TestTryGetLogLevel(t *testing.T) {
	lvl, err := tryGetLogLevel("debug")
	require.NoError(t, err)
	require.Equal(t, log.LvlDebug, lvl)

	lvl, err = tryGetLogLevel("2")
	require.NoError(t, err)
	require.Equal(t, log.LvlWarn, lvl)

	_, err = tryGetLogLevel("loud")
	require.Error(t, err)
}

func TestSetupFiltersConsoleAndWritesDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	var console bytes.Buffer
	logger := Setup(Config{
		FilePrefix:   "test",
		DirPath:      dir,
		ConsoleLevel: log.LvlWarn,
		DirLevel:     log.LvlDebug,
		DirJson:      true,
	}, &console)
	t.Cleanup(func() { log.Root().SetHandler(log.DiscardHandler()) })

	logger.Debug("hidden on console", "k", 1)
	logger.Warn("shown on console")

	require.NotContains(t, console.String(), "hidden on console")
	require.Contains(t, console.String(), "shown on console")

	data, err := os.ReadFile(filepath.Join(dir, "test.log"))
	require.NoError(t, err)
	require.Contains(t, string(data), `"msg":"hidden on console"`)
}
