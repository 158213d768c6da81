package config

import (
	"io"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

const envPrefix = "ASTARX"

// Config konfigurasi server & solver, sumber: default < file config < env ASTARX_*
type Config struct {
	v *viper.Viper
}

func NewConfig() *Config {
	v := viper.New()

	v.SetDefault("server.port", "5000")
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.allowed_origins", []string{"https://*", "http://*"})

	v.SetDefault("search.default_timeout_ms", 1000)
	v.SetDefault("search.max_timeout_ms", 30000)
	v.SetDefault("search.num_workers", runtime.NumCPU())

	v.SetDefault("graph.edge_lists", []string{})
	v.SetDefault("graph.osm_file", "")
	v.SetDefault("graph.show_progress", true)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.console", true)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return &Config{v: v}
}

func (c *Config) LoadFromFile(path string) error {
	c.v.SetConfigFile(path)
	return c.v.ReadInConfig()
}

func (c *Config) Port() string                   { return c.v.GetString("server.port") }
func (c *Config) ShutdownTimeout() time.Duration { return c.v.GetDuration("server.shutdown_timeout") }
func (c *Config) AllowedOrigins() []string       { return c.v.GetStringSlice("server.allowed_origins") }

func (c *Config) DefaultTimeout() time.Duration {
	return time.Duration(c.v.GetInt64("search.default_timeout_ms")) * time.Millisecond
}

func (c *Config) MaxTimeout() time.Duration {
	return time.Duration(c.v.GetInt64("search.max_timeout_ms")) * time.Millisecond
}

func (c *Config) NumWorkers() int { return c.v.GetInt("search.num_workers") }

// EdgeLists daftar file edge list csv (boleh .zst), nama graph = nama file tanpa ekstensi
func (c *Config) EdgeLists() []string  { return c.v.GetStringSlice("graph.edge_lists") }
func (c *Config) OSMFile() string      { return c.v.GetString("graph.osm_file") }
func (c *Config) ShowProgress() bool   { return c.v.GetBool("graph.show_progress") }
func (c *Config) LogLevel() string     { return c.v.GetString("logging.level") }
func (c *Config) ConsoleLogging() bool { return c.v.GetBool("logging.console") }

func (c *Config) Set(key string, value interface{}) {
	c.v.Set(key, value)
}

// CreateLogger console writer untuk terminal, json kalau logging.console=false
func (c *Config) CreateLogger(service string) zerolog.Logger {
	return c.createLogger(os.Stdout, service)
}

func (c *Config) createLogger(out io.Writer, service string) zerolog.Logger {
	level, err := zerolog.ParseLevel(c.LogLevel())
	if err != nil {
		level = zerolog.InfoLevel
	}
	if c.ConsoleLogging() {
		out = zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: "15:04:05",
		}
	}
	return zerolog.New(out).Level(level).With().Timestamp().Str("service", service).Logger()
}
