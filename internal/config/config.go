package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// ServiceConfig holds all configuration for the background service.
type ServiceConfig struct {
	// CDP connection settings
	CDPAddress string
	CDPPort    int

	// HTTP API bind settings
	BindAddr         string
	PortCandidates   []string
	PortAutoFallback bool

	// Filter storage
	DataDir string

	// Engine refresh behaviour
	EngineDebounceMS int

	// CDP behaviour
	EvalTimeoutMS  int
	TabSyncMS      int
	AutoLaunch     bool
	BrowserProfile string

	// Logging
	LogLevel string
	LogFile  string

	// Journal
	JournalDir        string
	JournalBufferSize int
	JournalMaxSizeMB  int
}

// LoadService reads service configuration from environment variables and an
// optional .env file.
func LoadService() (*ServiceConfig, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("failed to load .env file", "error", err)
	}

	cfg := &ServiceConfig{
		CDPAddress:        getEnvOrDefault("CHROMIUM_CDP_ADDRESS", "127.0.0.1"),
		CDPPort:           getEnvIntOrDefault("CHROMIUM_CDP_PORT", 9222),
		BindAddr:          getEnvOrDefault("BGSERVICE_BIND_ADDR", "127.0.0.1:8177"),
		PortCandidates:    getEnvListOrDefault("BGSERVICE_PORT_CANDIDATES", []string{"127.0.0.1:8177", "127.0.0.1:8178", "127.0.0.1:8179"}),
		PortAutoFallback:  getEnvBoolOrDefault("BGSERVICE_PORT_AUTO_FALLBACK", true),
		DataDir:           getEnvOrDefault("BGSERVICE_DATA_DIR", "./filter_data"),
		EngineDebounceMS:  getEnvIntOrDefault("BGSERVICE_ENGINE_DEBOUNCE_MS", 500),
		EvalTimeoutMS:     getEnvIntOrDefault("BGSERVICE_EVAL_TIMEOUT_MS", 5000),
		TabSyncMS:         getEnvIntOrDefault("BGSERVICE_TAB_SYNC_MS", 2000),
		AutoLaunch:        getEnvBoolOrDefault("BGSERVICE_AUTO_LAUNCH_BROWSER", false),
		BrowserProfile:    getEnvOrDefault("BGSERVICE_BROWSER_PROFILE_DIR", "./browser_profile"),
		LogLevel:          strings.ToLower(getEnvOrDefault("BGSERVICE_LOG_LEVEL", "info")),
		LogFile:           getEnvOrDefault("BGSERVICE_LOG_FILE", "logs/bgservice.log"),
		JournalDir:        getEnvOrDefault("BGSERVICE_JOURNAL_DIR", "./filter_data/journal"),
		JournalBufferSize: getEnvIntOrDefault("BGSERVICE_JOURNAL_BUFFER_SIZE", 1000),
		JournalMaxSizeMB:  getEnvIntOrDefault("BGSERVICE_JOURNAL_MAX_SIZE_MB", 50),
	}
	if cfg.EvalTimeoutMS < 1000 {
		cfg.EvalTimeoutMS = 1000
	}
	if cfg.EngineDebounceMS < 50 {
		cfg.EngineDebounceMS = 50
	}
	if cfg.TabSyncMS < 250 {
		cfg.TabSyncMS = 250
	}

	return cfg, nil
}

// CDPURL returns the full CDP HTTP endpoint.
func (c *ServiceConfig) CDPURL() string {
	return fmt.Sprintf("http://%s:%d", c.CDPAddress, c.CDPPort)
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvIntOrDefault(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvBoolOrDefault(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return defaultVal
}

func getEnvListOrDefault(key string, defaultVal []string) []string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	parts := strings.Split(val, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return defaultVal
	}
	return out
}
