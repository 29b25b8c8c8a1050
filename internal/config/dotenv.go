package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// LoadDotEnv loads environment variables from a .env file if present.
// Existing environment variables are not overwritten.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return godotenv.Load(path)
}

type Config struct {
	Port                  int
	DefaultRounds         int
	DrawDurationSeconds   int
	LogLevel              string
	LogFormat             string
	GinMode               string
	WSSendBuffer          int
	WSMaxMessageBytes     int64
	WSWriteTimeoutSeconds int
}

func Default() Config {
	return Config{
		Port:                  8080,
		DefaultRounds:         3,
		DrawDurationSeconds:   60,
		LogLevel:              "info",
		LogFormat:             "console",
		GinMode:               "release",
		WSSendBuffer:          64,
		WSMaxMessageBytes:     64 * 1024,
		WSWriteTimeoutSeconds: 5,
	}
}

func Load() Config {
	cfg := Default()
	if raw := os.Getenv("PORT"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 && value < 65536 {
			cfg.Port = value
		}
	}
	if raw := os.Getenv("DEFAULT_ROUNDS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.DefaultRounds = value
		}
	}
	if raw := os.Getenv("DRAW_SECONDS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.DrawDurationSeconds = value
		}
	}
	if raw := strings.TrimSpace(os.Getenv("LOG_LEVEL")); raw != "" {
		cfg.LogLevel = strings.ToLower(raw)
	}
	if raw := strings.TrimSpace(os.Getenv("LOG_FORMAT")); raw == "json" || raw == "console" {
		cfg.LogFormat = raw
	}
	switch raw := strings.ToLower(strings.TrimSpace(os.Getenv("GIN_MODE"))); raw {
	case "debug", "release", "test":
		cfg.GinMode = raw
	}
	if raw := os.Getenv("WS_SEND_BUFFER"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.WSSendBuffer = value
		}
	}
	if raw := os.Getenv("WS_MAX_MESSAGE_BYTES"); raw != "" {
		if value, err := strconv.ParseInt(raw, 10, 64); err == nil && value > 0 {
			cfg.WSMaxMessageBytes = value
		}
	}
	if raw := os.Getenv("WS_WRITE_TIMEOUT_SECONDS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.WSWriteTimeoutSeconds = value
		}
	}
	return cfg
}

func (c Config) Addr() string {
	return ":" + strconv.Itoa(c.Port)
}

func (c Config) WSWriteTimeout() time.Duration {
	return time.Duration(c.WSWriteTimeoutSeconds) * time.Second
}
