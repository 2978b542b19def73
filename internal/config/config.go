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
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

type ctxKey string

const configContextKey ctxKey = "pontoon.config"

func WithContext(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configContextKey, cfg)
}

func FromContext(ctx context.Context) *Config {
	cfg, ok := ctx.Value(configContextKey).(*Config)
	if !ok {
		return nil
	}
	return cfg
}

type Config struct {
	DataDir         string `yaml:"dataDir"         split_words:"true"`
	MetricsBindAddr string `yaml:"metricsBindAddr" split_words:"true"`
	OracleCacheTtl  string `yaml:"oracleCacheTtl"  split_words:"true"`
	ShutdownTimeout string `yaml:"shutdownTimeout" split_words:"true"`
	MempoolCapacity int64  `yaml:"mempoolCapacity" split_words:"true"`
	MetricsPort     uint   `yaml:"metricsPort"     split_words:"true"`
}

var globalConfig = &Config{
	DataDir:         ".pontoon",
	MetricsBindAddr: "0.0.0.0",
	MetricsPort:     12798,
	OracleCacheTtl:  "5m",
	ShutdownTimeout: "30s",
	MempoolCapacity: 1048576,
}

// LoadConfig layers the on-disk YAML config (if any) and environment
// variables over the built-in defaults. With no explicit path it checks
// ~/.pontoon/pontoon.yaml and /etc/pontoon/pontoon.yaml
func LoadConfig(configFile string) (*Config, error) {
	if configFile == "" {
		if homeDir, err := os.UserHomeDir(); err == nil {
			userPath := filepath.Join(homeDir, ".pontoon", "pontoon.yaml")
			if _, err := os.Stat(userPath); err == nil {
				configFile = userPath
			}
		}
		if configFile == "" {
			systemPath := "/etc/pontoon/pontoon.yaml"
			if _, err := os.Stat(systemPath); err == nil {
				configFile = systemPath
			}
		}
	}
	if configFile != "" {
		buf, err := os.ReadFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		if err := yaml.Unmarshal(buf, globalConfig); err != nil {
			return nil, fmt.Errorf("error parsing config file: %w", err)
		}
	}
	if err := envconfig.Process("pontoon", globalConfig); err != nil {
		return nil, fmt.Errorf("error processing environment: %w", err)
	}
	return globalConfig, nil
}

// GetConfig returns the current config instance
func GetConfig() *Config {
	return globalConfig
}
