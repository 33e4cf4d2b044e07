package config

import (
	"os"
	"strconv"
)

type Config struct {
	Addr            string
	LogLevel        string
	DevMode         bool
	CORSAllowOrigin string
	// Local store byte budget; <=0 disables the quota.
	StoreQuotaBytes int64
	// Session rotation alarm period.
	RotateMinutes int
	// Buffer between the event source adapter and the recorder.
	EventBufferSize int
	// Screenshot frames older than this many seconds are treated as stale.
	FrameMaxAgeSec int
}

func FromEnv() Config {
	cfg := Config{
		Addr:            getEnv("ADDR", ":9190"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		CORSAllowOrigin: getEnv("CORS_ALLOW_ORIGIN", "*"),
	}
	if os.Getenv("DEV_MODE") == "1" || os.Getenv("DEV_MODE") == "true" {
		cfg.DevMode = true
	}
	// chrome.storage.local default budget
	cfg.StoreQuotaBytes = int64(getEnvInt("STORE_QUOTA_BYTES", 10<<20))
	cfg.RotateMinutes = getEnvInt("ROTATE_MINUTES", 5)
	cfg.EventBufferSize = getEnvInt("EVENT_BUFFER_SIZE", 1024)
	cfg.FrameMaxAgeSec = getEnvInt("FRAME_MAX_AGE_SEC", 30)
	return cfg
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}
