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

// Package config loads membersearch settings from a YAML file and
// MEMBERSEARCH_* environment variables.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/tomoncle/membersearch/database"
	"github.com/tomoncle/membersearch/utils"
)

const EnvPrefix = "MEMBERSEARCH"

type Config struct {
	Log      LogConfig      `mapstructure:"log"`
	Database DatabaseConfig `mapstructure:"database"`
	Search   SearchConfig   `mapstructure:"search"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=trace debug info warn warning error fatal panic"`
	Format string `mapstructure:"format" validate:"oneof=text json"`
}

// DatabaseConfig mirrors database.ConnectionConfig plus migration and
// seeding settings.
type DatabaseConfig struct {
	Type                string        `mapstructure:"type" validate:"required,oneof=mysql postgres sqlite"`
	DSN                 string        `mapstructure:"dsn"`
	Host                string        `mapstructure:"host"`
	Port                int           `mapstructure:"port" validate:"gte=0,lte=65535"`
	Username            string        `mapstructure:"username"`
	Password            string        `mapstructure:"password"`
	DBName              string        `mapstructure:"dbname" validate:"required_without=DSN"`
	SSLMode             string        `mapstructure:"sslmode"`
	MaxIdleConns        int           `mapstructure:"max_idle_conns" validate:"gte=0"`
	MaxOpenConns        int           `mapstructure:"max_open_conns" validate:"gte=0"`
	ConnMaxLifetime     time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime     time.Duration `mapstructure:"conn_max_idle_time"`
	ConnectTimeout      time.Duration `mapstructure:"connect_timeout"`
	ReadTimeout         time.Duration `mapstructure:"read_timeout"`
	WriteTimeout        time.Duration `mapstructure:"write_timeout"`
	EnableReconnect     bool          `mapstructure:"enable_reconnect"`
	ReconnectInterval   time.Duration `mapstructure:"reconnect_interval"`
	MaxReconnectTries   int           `mapstructure:"max_reconnect_tries" validate:"gte=0"`
	HealthCheckInterval time.Duration `mapstructure:"health_check_interval"`
	EnableQueryLog      bool          `mapstructure:"enable_query_log"`
	QueryLogStyle       string        `mapstructure:"query_log_style" validate:"omitempty,oneof=bundebug color"`
	SlowQueryTime       time.Duration `mapstructure:"slow_query_time"`
	Migrate             MigrateConfig `mapstructure:"migrate"`
	Init                InitConfig    `mapstructure:"init"`
}

type MigrateConfig struct {
	OnStartup      bool   `mapstructure:"on_startup"`
	ForeignKeys    bool   `mapstructure:"foreign_keys"`
	ForeignKeyFile string `mapstructure:"foreign_key_file"`
}

type InitConfig struct {
	OnStartup   bool   `mapstructure:"on_startup"`
	OnMigration bool   `mapstructure:"on_migration"`
	Filepath    string `mapstructure:"filepath"`
	Environment string `mapstructure:"environment"`
}

// SearchConfig tunes the member search. CountShortcut skips the count query
// when the first page comes back short.
type SearchConfig struct {
	CountShortcut bool `mapstructure:"count_shortcut"`
}

var _ database.AbstractDatabaseConfigProvider = (*Config)(nil)

// Load reads path (skipped when empty), overlays MEMBERSEARCH_* environment
// variables and validates the result. database.type is read from
// MEMBERSEARCH_DATABASE_TYPE, for example.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	d := database.DefaultConnectionConfig()

	v.SetDefault("log.level", utils.EnvDefaultString("LOG_LEVEL", "info"))
	v.SetDefault("log.format", utils.EnvDefaultString("CONSOLE_LOG_FORMAT", "text"))

	v.SetDefault("database.type", "sqlite")
	v.SetDefault("database.dsn", "")
	v.SetDefault("database.host", "")
	v.SetDefault("database.port", 0)
	v.SetDefault("database.username", "")
	v.SetDefault("database.password", "")
	v.SetDefault("database.dbname", "membersearch")
	v.SetDefault("database.sslmode", "")
	v.SetDefault("database.max_idle_conns", d.MaxIdleConns)
	v.SetDefault("database.max_open_conns", d.MaxOpenConns)
	v.SetDefault("database.conn_max_lifetime", d.ConnMaxLifetime)
	v.SetDefault("database.conn_max_idle_time", d.ConnMaxIdleTime)
	v.SetDefault("database.connect_timeout", d.ConnectTimeout)
	v.SetDefault("database.read_timeout", d.ReadTimeout)
	v.SetDefault("database.write_timeout", d.WriteTimeout)
	v.SetDefault("database.enable_reconnect", d.EnableReconnect)
	v.SetDefault("database.reconnect_interval", d.ReconnectInterval)
	v.SetDefault("database.max_reconnect_tries", d.MaxReconnectTries)
	v.SetDefault("database.health_check_interval", d.HealthCheckInterval)
	v.SetDefault("database.enable_query_log", false)
	v.SetDefault("database.query_log_style", d.QueryLogStyle)
	v.SetDefault("database.slow_query_time", d.SlowQueryTime)
	v.SetDefault("database.migrate.on_startup", true)
	v.SetDefault("database.migrate.foreign_keys", true)
	v.SetDefault("database.migrate.foreign_key_file", "configs/foreign_keys.yaml")
	v.SetDefault("database.init.on_startup", false)
	v.SetDefault("database.init.on_migration", false)
	v.SetDefault("database.init.filepath", "configs/sql")
	v.SetDefault("database.init.environment", "prod")

	v.SetDefault("search.count_shortcut", true)
}

var validate = validator.New()

// Validate checks the struct tags of every section.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// ConfigLoader converts the database section into a database.Config.
func (c *Config) ConfigLoader() *database.Config {
	d := c.Database
	return &database.Config{
		ConnectionConfig: database.ConnectionConfig{
			Type:                d.Type,
			DSN:                 d.DSN,
			Host:                d.Host,
			Port:                d.Port,
			Username:            d.Username,
			Password:            d.Password,
			DBName:              d.DBName,
			SSLMode:             d.SSLMode,
			MaxIdleConns:        d.MaxIdleConns,
			MaxOpenConns:        d.MaxOpenConns,
			ConnMaxLifetime:     d.ConnMaxLifetime,
			ConnMaxIdleTime:     d.ConnMaxIdleTime,
			ConnectTimeout:      d.ConnectTimeout,
			ReadTimeout:         d.ReadTimeout,
			WriteTimeout:        d.WriteTimeout,
			EnableReconnect:     d.EnableReconnect,
			ReconnectInterval:   d.ReconnectInterval,
			MaxReconnectTries:   d.MaxReconnectTries,
			HealthCheckInterval: d.HealthCheckInterval,
			EnableQueryLog:      d.EnableQueryLog,
			QueryLogStyle:       d.QueryLogStyle,
			SlowQueryTime:       d.SlowQueryTime,
		},
		DataMigrateConfig: database.DataMigrateConfig{
			EnableMigrateOnStartup: d.Migrate.OnStartup,
			EnableForeignKey:       d.Migrate.ForeignKeys,
			ForeignKeyFile:         d.Migrate.ForeignKeyFile,
		},
		DataInitConfig: database.DataInitConfig{
			AutoInitOnStartup:   d.Init.OnStartup,
			AutoInitOnMigration: d.Init.OnMigration,
			Filepath:            d.Init.Filepath,
			Environment:         d.Init.Environment,
		},
	}
}

// ApplyLogging pushes the log section into the utils logger registry.
func (c *Config) ApplyLogging() {
	utils.ConfigureConsoleLogFormat(c.Log.Format)
	utils.ConfigureLogLevel(c.Log.Level)
}
