/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/tomoncle/chirp/database"
	"github.com/tomoncle/chirp/utils"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "CHIRP"

// Config holds runtime configuration for the application. Database
// settings are overridden by the DB_* variables read by the database
// factory instead of CHIRP_* ones.
type Config struct {
	App      AppConfig       `yaml:"app"`
	Log      utils.LogConfig `yaml:"log"`
	Redis    RedisConfig     `yaml:"redis"`
	Database database.Config `yaml:"database" ignored:"true"`
}

// AppConfig configures the HTTP server.
type AppConfig struct {
	Env             string        `yaml:"env" envconfig:"ENV"`
	Addr            string        `yaml:"addr" envconfig:"ADDR"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT"`
	RequestTimeout  time.Duration `yaml:"request_timeout" envconfig:"REQUEST_TIMEOUT"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT"`
	RateLimit       int           `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
	RateWindow      time.Duration `yaml:"rate_window" envconfig:"RATE_WINDOW"`
}

// RedisConfig configures the access token store.
type RedisConfig struct {
	Addr     string        `yaml:"addr" envconfig:"ADDR"`
	Password string        `yaml:"password" envconfig:"PASSWORD"`
	DB       int           `yaml:"db" envconfig:"DB"`
	Prefix   string        `yaml:"prefix" envconfig:"PREFIX"`
	TokenTTL time.Duration `yaml:"token_ttl" envconfig:"TOKEN_TTL"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		App: AppConfig{
			Env:             "development",
			Addr:            ":8080",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			RequestTimeout:  30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			RateLimit:       60,
			RateWindow:      time.Minute,
		},
		Log: utils.LogConfig{
			Level:         "info",
			Format:        "text",
			FileDir:       "logs",
			FileMaxAgeDay: 7,
		},
		Redis: RedisConfig{
			Addr:     "127.0.0.1:6379",
			Prefix:   "chirp",
			TokenTTL: 720 * time.Hour,
		},
		Database: database.Config{
			ConnectionConfig: *database.DefaultConnectionConfig(),
			DataMigrateConfig: database.DataMigrateConfig{
				EnableMigrateOnStartup: true,
				EnableForeignKey:       true,
			},
		},
	}
}

// Load builds the configuration. path names an optional YAML file; an
// empty path skips it. Missing dotenv files are ignored and existing
// environment variables win over their entries.
func Load(path string, dotenv ...string) (*Config, error) {
	cfg := Default()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if len(dotenv) == 0 {
		dotenv = []string{".env"}
	}
	for _, file := range dotenv {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", file, err)
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("read environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the server cannot start with.
func (c *Config) Validate() error {
	if c.App.Addr == "" {
		return errors.New("app address must be provided")
	}
	if c.Redis.Addr == "" {
		return errors.New("redis address must be provided")
	}
	if c.Redis.TokenTTL <= 0 {
		return errors.New("token ttl must be positive")
	}
	return nil
}

// IsProduction reports whether the application runs in production.
func (c *Config) IsProduction() bool {
	return c != nil && c.App.Env == "production"
}
