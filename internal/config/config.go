package config

import (
	"fmt"
	"log"
	"os"
	"time"
)

// App holds the runtime configuration loaded from environment variables.
type App struct {
	Env             string
	HTTPPort        string
	GeminiAPIKey    string
	GeminiModel     string
	CaptureTick     time.Duration
	AttemptCooldown time.Duration
	SuccessWindow   time.Duration
	FrameMaxAge     time.Duration
	ProbeMaxSize    int
	QueueBackend    string
	RedisAddr       string
	RateLimitPerMin int
	RateLimitBurst  int
	FrontendDir     string
}

// Load returns application config populated from environment variables with sensible defaults.
func Load() App {
	perMin := intEnv("RATE_LIMIT_PER_MIN", 120)
	return App{
		Env:             getEnv("APP_ENV", "dev"),
		HTTPPort:        getEnv("HTTP_PORT", "8080"),
		GeminiAPIKey:    getEnv("GEMINI_API_KEY", ""),
		GeminiModel:     getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		CaptureTick:     durationEnv("CAPTURE_TICK", time.Second),
		AttemptCooldown: durationEnv("RECOGNIZE_COOLDOWN", 5*time.Second),
		SuccessWindow:   durationEnv("SUCCESS_WINDOW", 4*time.Second),
		FrameMaxAge:     durationEnv("FRAME_MAX_AGE", 3*time.Second),
		ProbeMaxSize:    intEnv("PROBE_MAX_SIZE", 800),
		QueueBackend:    getEnv("QUEUE_BACKEND", "memory"),
		RedisAddr:       getEnv("REDIS_ADDR", "localhost:6379"),
		RateLimitPerMin: perMin,
		RateLimitBurst:  intEnv("RATE_LIMIT_BURST", perMin),
		FrontendDir:     getEnv("FRONTEND_DIR", ""),
	}
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func durationEnv(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		d, err := time.ParseDuration(val)
		if err != nil {
			log.Printf("invalid duration for %s: %v, using fallback %s", key, err, fallback)
			return fallback
		}
		return d
	}
	return fallback
}

func intEnv(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		var parsed int
		if _, err := fmt.Sscanf(val, "%d", &parsed); err == nil {
			return parsed
		}
		log.Printf("invalid int for %s, using fallback %d", key, fallback)
	}
	return fallback
}
