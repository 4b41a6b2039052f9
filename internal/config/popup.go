package config

// PopupConfig holds configuration for the one-shot popup client.
type PopupConfig struct {
	ServiceURL string
	TimeoutMS  int
}

// LoadPopup reads popup configuration from environment variables.
func LoadPopup() (*PopupConfig, error) {
	cfg := &PopupConfig{
		ServiceURL: getEnvOrDefault("BGSERVICE_URL", "http://127.0.0.1:8177"),
		TimeoutMS:  getEnvIntOrDefault("POPUP_TIMEOUT_MS", 10000),
	}
	if cfg.TimeoutMS < 1000 {
		cfg.TimeoutMS = 1000
	}
	return cfg, nil
}
