package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/danmuck/edgeconn/internal/logging"
	"github.com/danmuck/edgeconn/internal/transport/web"
)

// Config is the runtime configuration of an edgeconn server.
type Config struct {
	ID              string
	Addr            string
	LogLevel        string
	CORSOrigins     []string
	ShutdownTimeout time.Duration
	Web             web.Config
}

// fileConfig is the config.toml key mapping.
type fileConfig struct {
	ID               string   `toml:"id"`
	Addr             string   `toml:"addr"`
	LogLevel         string   `toml:"log_level"`
	CORSOrigins      []string `toml:"cors_origins"`
	ShutdownTimeout  string   `toml:"shutdown_timeout"`
	RootPath         string   `toml:"root_path"`
	BodyChunkSize    int      `toml:"body_chunk_size"`
	WSReadBuffer     int      `toml:"ws_read_buffer"`
	WSWriteBuffer    int      `toml:"ws_write_buffer"`
	WSAllowedOrigins []string `toml:"ws_allowed_origins"`
	HandshakeTimeout string   `toml:"handshake_timeout"`
	JWTSecret        string   `toml:"jwt_secret"`
}

func DefaultConfig() Config {
	return Config{
		ID:              "edgeconn",
		Addr:            ":9000",
		LogLevel:        "info",
		CORSOrigins:     []string{"http://localhost:3000"},
		ShutdownTimeout: 10 * time.Second,
		Web:             web.DefaultConfig(),
	}
}

// Load overlays the keys defined in path onto DefaultConfig.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Config{}, fmt.Errorf("config load failed (%s): %w", path, err)
	}

	if meta.IsDefined("id") {
		cfg.ID = strings.TrimSpace(raw.ID)
	}
	if meta.IsDefined("addr") {
		cfg.Addr = strings.TrimSpace(raw.Addr)
	}
	if meta.IsDefined("log_level") {
		cfg.LogLevel = strings.TrimSpace(raw.LogLevel)
	}
	if meta.IsDefined("cors_origins") {
		cfg.CORSOrigins = normalizeList(raw.CORSOrigins)
	}
	if meta.IsDefined("shutdown_timeout") {
		d, err := time.ParseDuration(strings.TrimSpace(raw.ShutdownTimeout))
		if err != nil {
			return Config{}, fmt.Errorf("parse shutdown_timeout: %w", err)
		}
		cfg.ShutdownTimeout = d
	}
	if meta.IsDefined("root_path") {
		cfg.Web.RootPath = strings.TrimRight(strings.TrimSpace(raw.RootPath), "/")
	}
	if meta.IsDefined("body_chunk_size") {
		cfg.Web.BodyChunkSize = raw.BodyChunkSize
	}
	if meta.IsDefined("ws_read_buffer") {
		cfg.Web.ReadBufferSize = raw.WSReadBuffer
	}
	if meta.IsDefined("ws_write_buffer") {
		cfg.Web.WriteBufferSize = raw.WSWriteBuffer
	}
	if meta.IsDefined("ws_allowed_origins") {
		cfg.Web.AllowedOrigins = normalizeList(raw.WSAllowedOrigins)
	}
	if meta.IsDefined("handshake_timeout") {
		d, err := time.ParseDuration(strings.TrimSpace(raw.HandshakeTimeout))
		if err != nil {
			return Config{}, fmt.Errorf("parse handshake_timeout: %w", err)
		}
		cfg.Web.HandshakeTimeout = d
	}
	if meta.IsDefined("jwt_secret") {
		cfg.Web.JWTSecret = strings.TrimSpace(raw.JWTSecret)
	}

	if err := Validate(cfg); err != nil {
		return Config{}, fmt.Errorf("config invalid (%s): %w", path, err)
	}
	return cfg, nil
}

func Validate(cfg Config) error {
	if strings.TrimSpace(cfg.ID) == "" {
		return fmt.Errorf("id is required")
	}
	if strings.TrimSpace(cfg.Addr) == "" {
		return fmt.Errorf("addr is required")
	}
	if _, ok := logging.ParseLevel(cfg.LogLevel); !ok {
		return fmt.Errorf("unknown log_level %q", cfg.LogLevel)
	}
	if cfg.ShutdownTimeout <= 0 {
		return fmt.Errorf("shutdown_timeout must be positive")
	}
	if cfg.Web.BodyChunkSize <= 0 {
		return fmt.Errorf("body_chunk_size must be positive")
	}
	if cfg.Web.ReadBufferSize < 0 || cfg.Web.WriteBufferSize < 0 {
		return fmt.Errorf("websocket buffer sizes must not be negative")
	}
	if cfg.Web.HandshakeTimeout <= 0 {
		return fmt.Errorf("handshake_timeout must be positive")
	}
	return nil
}

func normalizeList(in []string) []string {
	if len(in) == 0 {
		return []string{}
	}
	out := make([]string, 0, len(in))
	for _, v := range in {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		out = append(out, v)
	}
	return out
}
