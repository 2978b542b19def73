// Copyright 2026 Pontoon Project
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	require.Equal(t, ".pontoon", cfg.DataDir)
	require.Equal(t, uint(12798), cfg.MetricsPort)
	require.Equal(t, "5m", cfg.OracleCacheTtl)
}

func TestLoadConfigFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "pontoon.yaml")
	require.NoError(t, os.WriteFile(
		configPath,
		[]byte("dataDir: /var/lib/pontoon\nmetricsPort: 9580\n"),
		0o644,
	))
	cfg, err := LoadConfig(configPath)
	require.NoError(t, err)
	require.Equal(t, "/var/lib/pontoon", cfg.DataDir)
	require.Equal(t, uint(9580), cfg.MetricsPort)
}

func TestLoadConfigEnv(t *testing.T) {
	t.Setenv("PONTOON_METRICS_PORT", "9581")
	t.Setenv("PONTOON_DATA_DIR", "/tmp/pontoon-test")
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	require.Equal(t, uint(9581), cfg.MetricsPort)
	require.Equal(t, "/tmp/pontoon-test", cfg.DataDir)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}
