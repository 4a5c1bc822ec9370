package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Env is the runtime environment of the application.
type Env string

const (
	// EnvLocal runs on the developer host.
	EnvLocal Env = "local"
	// EnvDocker runs inside containers.
	EnvDocker Env = "docker"
)

// Config holds the POS service configuration.
type Config struct {
	AppEnv Env
	// HTTPAddr is the listen address of the JSON surface the browser
	// front end talks to.
	HTTPAddr string
	// InventoryAPIURL is the base URL of the remote inventory API,
	// including the /api prefix.
	InventoryAPIURL string
	// RequestTimeout bounds every inventory API call. A hung sell commit
	// fails after this long and takes the sale's failure path.
	RequestTimeout time.Duration
	// LowStockThreshold is the default threshold sent to the low-stock
	// listing when the caller does not provide one.
	LowStockThreshold int64
	ShutdownTimeout   time.Duration
}

// Load reads the configuration from environment variables. APP_ENV selects
// the defaults: local binds to loopback and expects the inventory API on
// the host, docker binds to all interfaces and resolves the API by service
// name.
func Load() (Config, error) {
	cfg := Config{}

	appEnvStr := getString("APP_ENV", string(EnvLocal))
	appEnv := Env(appEnvStr)
	if appEnv != EnvLocal && appEnv != EnvDocker {
		return Config{}, fmt.Errorf("invalid APP_ENV: %s (must be 'local' or 'docker')", appEnvStr)
	}
	cfg.AppEnv = appEnv

	if cfg.AppEnv == EnvLocal {
		cfg.HTTPAddr = getString("HTTP_ADDR", "127.0.0.1:8090")
		cfg.InventoryAPIURL = getString("INVENTORY_API_URL", "http://127.0.0.1:8000/api")
	} else {
		cfg.HTTPAddr = getString("HTTP_ADDR", "0.0.0.0:8090")
		cfg.InventoryAPIURL = getString("INVENTORY_API_URL", "http://inventory-api:8000/api")
	}

	var err error
	cfg.RequestTimeout, err = getDuration("REQUEST_TIMEOUT", 15*time.Second)
	if err != nil {
		return Config{}, err
	}
	cfg.LowStockThreshold, err = getInt64("LOW_STOCK_THRESHOLD", 10)
	if err != nil {
		return Config{}, err
	}
	cfg.ShutdownTimeout, err = getDuration("SHUTDOWN_TIMEOUT", 10*time.Second)
	if err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func getString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q: %w", key, v, err)
	}
	return d, nil
}

func getInt64(key string, def int64) (int64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q: %w", key, v, err)
	}
	return n, nil
}
