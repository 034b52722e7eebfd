package web

import (
	"time"

	"github.com/danmuck/edgeconn/internal/auth"
)

// Config tunes how requests are exposed to the application.
type Config struct {
	// BodyChunkSize bounds the body carried by a single http.request message.
	BodyChunkSize   int
	ReadBufferSize  int
	WriteBufferSize int
	// AllowedOrigins restricts websocket upgrades; empty allows all.
	AllowedOrigins   []string
	HandshakeTimeout time.Duration
	CloseTimeout     time.Duration
	// JWTSecret enables HS256 bearer authentication of websocket upgrades.
	JWTSecret string
	// Validator overrides JWTSecret when set.
	Validator auth.Validator
	RootPath  string
}

// validator returns the upgrade authenticator, or nil when auth is off.
func (c Config) validator() auth.Validator {
	if c.Validator != nil {
		return c.Validator
	}
	if c.JWTSecret != "" {
		return auth.HS256{Secret: []byte(c.JWTSecret)}
	}
	return nil
}

func DefaultConfig() Config {
	return Config{
		BodyChunkSize:    64 * 1024,
		ReadBufferSize:   1024,
		WriteBufferSize:  1024,
		HandshakeTimeout: 5 * time.Second,
		CloseTimeout:     time.Second,
	}
}

func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.BodyChunkSize <= 0 {
		c.BodyChunkSize = def.BodyChunkSize
	}
	if c.ReadBufferSize <= 0 {
		c.ReadBufferSize = def.ReadBufferSize
	}
	if c.WriteBufferSize <= 0 {
		c.WriteBufferSize = def.WriteBufferSize
	}
	if c.HandshakeTimeout <= 0 {
		c.HandshakeTimeout = def.HandshakeTimeout
	}
	if c.CloseTimeout <= 0 {
		c.CloseTimeout = def.CloseTimeout
	}
	return c
}
