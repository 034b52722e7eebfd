package config

import (
	"fmt"
	"os"
)

// Template returns a commented config.toml carrying the defaults.
func Template() string {
	return defaultTemplate
}

func WriteTemplate(path string, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists: %s", path)
		}
	}
	return os.WriteFile(path, []byte(defaultTemplate), 0o600)
}

const defaultTemplate = `id = "edgeconn"
addr = ":9000"
log_level = "info"
cors_origins = ["http://localhost:3000"]
shutdown_timeout = "10s"

# Mount prefix reported to applications as root_path.
root_path = ""

# Upper bound on the body carried by one http.request message.
body_chunk_size = 65536

ws_read_buffer = 1024
ws_write_buffer = 1024
ws_allowed_origins = []
handshake_timeout = "5s"

# When set, websocket upgrades require an HS256 bearer token.
jwt_secret = ""
`
