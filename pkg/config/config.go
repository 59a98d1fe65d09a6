// Copyright 2026 fanjia1024
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
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Config is the application configuration.
type Config struct {
	API        APIConfig        `mapstructure:"api"`
	Storage    StorageConfig    `mapstructure:"storage"`
	Secrets    SecretsConfig    `mapstructure:"secrets"`
	Executor   ExecutorConfig   `mapstructure:"executor"`
	Log        LogConfig        `mapstructure:"log"`
	Monitoring MonitoringConfig `mapstructure:"monitoring"`
}

// APIConfig configures the HTTP API server.
type APIConfig struct {
	Port    int        `mapstructure:"port"`
	Host    string     `mapstructure:"host"`
	Timeout string     `mapstructure:"timeout"`
	CORS    CORSConfig `mapstructure:"cors"`
}

// CORSConfig configures cross-origin handling.
type CORSConfig struct {
	Enable       bool     `mapstructure:"enable"`
	AllowOrigins []string `mapstructure:"allow_origins"`
}

// StorageConfig groups the persistence backends.
type StorageConfig struct {
	Tools      ToolStoreConfig `mapstructure:"tools"`
	Executions ExecStoreConfig `mapstructure:"executions"`
	Cache      CacheConfig     `mapstructure:"cache"`
}

// ToolStoreConfig configures the tool definition store.
type ToolStoreConfig struct {
	Type     string `mapstructure:"type"` // memory | postgres
	DSN      string `mapstructure:"dsn"`  // required when type=postgres
	PoolSize int    `mapstructure:"pool_size"`
}

// ExecStoreConfig configures the execution record store.
type ExecStoreConfig struct {
	Type string `mapstructure:"type"` // memory | postgres
	DSN  string `mapstructure:"dsn"`  // required when type=postgres
}

// CacheConfig configures the tool resolution cache.
type CacheConfig struct {
	Type     string `mapstructure:"type"` // memory | redis
	Addr     string `mapstructure:"addr"`
	DB       int    `mapstructure:"db"`
	Password string `mapstructure:"password"`
	TTL      string `mapstructure:"ttl"` // e.g. "30s"; empty disables caching
}

// SecretsConfig selects the secret store backing {{secret.NAME}} resolution.
type SecretsConfig struct {
	Provider string            `mapstructure:"provider"` // vault | env | memory
	Config   map[string]string `mapstructure:"config"`   // provider-specific (address, token, path_prefix)
}

// ExecutorConfig holds tool execution defaults and limits.
type ExecutorConfig struct {
	// DefaultTimeoutMS applies when an external tool config omits timeout.
	DefaultTimeoutMS int `mapstructure:"default_timeout_ms"`
	// DefaultRetries applies when an external tool config omits retries.
	DefaultRetries int `mapstructure:"default_retries"`
	// MaxRetries caps tool-configured retry counts; <=0 means no cap.
	MaxRetries int `mapstructure:"max_retries"`
	// RateLimits optionally gates execution per tool slug.
	RateLimits map[string]ToolRateLimitConfig `mapstructure:"rate_limits"`
	// RetentionDays is the window during which tools with executions refuse deletion.
	RetentionDays int `mapstructure:"retention_days"`
}

// ToolRateLimitConfig limits executions of a single tool.
type ToolRateLimitConfig struct {
	QPS   float64 `mapstructure:"qps"`
	Burst int     `mapstructure:"burst"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	File   string `mapstructure:"file"`
}

// MonitoringConfig configures metrics and tracing.
type MonitoringConfig struct {
	Prometheus PrometheusConfig `mapstructure:"prometheus"`
	Tracing    TracingConfig    `mapstructure:"tracing"`
}

// PrometheusConfig configures the metrics endpoint.
type PrometheusConfig struct {
	Enable bool `mapstructure:"enable"`
}

// TracingConfig configures OpenTelemetry export.
type TracingConfig struct {
	Enable         bool   `mapstructure:"enable"`
	ServiceName    string `mapstructure:"service_name"`
	ExportEndpoint string `mapstructure:"export_endpoint"`
	Insecure       bool   `mapstructure:"insecure"`
}

// LoadConfig reads and parses the config file at configPath.
func LoadConfig(configPath string) (*Config, error) {
	viper.SetConfigFile(configPath)
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	replaceEnvVars(&config)
	applyDefaults(&config)

	return &config, nil
}

// LoadAPIConfig loads the API server config (configs/api.yaml).
func LoadAPIConfig() (*Config, error) {
	return LoadConfig("configs/api.yaml")
}

// replaceEnvVars expands ${VAR} references in secret-bearing fields.
func replaceEnvVars(config *Config) {
	config.Storage.Tools.DSN = expandEnv(config.Storage.Tools.DSN)
	config.Storage.Executions.DSN = expandEnv(config.Storage.Executions.DSN)
	config.Storage.Cache.Password = expandEnv(config.Storage.Cache.Password)
	for k, v := range config.Secrets.Config {
		config.Secrets.Config[k] = expandEnv(v)
	}
}

func expandEnv(value string) string {
	if strings.HasPrefix(value, "${") && strings.HasSuffix(value, "}") {
		if v := os.Getenv(value[2 : len(value)-1]); v != "" {
			return v
		}
	}
	return value
}

func applyDefaults(config *Config) {
	if config.Executor.DefaultTimeoutMS <= 0 {
		config.Executor.DefaultTimeoutMS = 5000
	}
	if config.Executor.DefaultRetries < 0 {
		config.Executor.DefaultRetries = 0
	}
	if config.Executor.RetentionDays <= 0 {
		config.Executor.RetentionDays = 30
	}
}
