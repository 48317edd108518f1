package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/yeremiapane/restaurant-pos/models"
	"github.com/yeremiapane/restaurant-pos/services"
	"github.com/yeremiapane/restaurant-pos/utils"
)

const DefaultStaffPIN = "1234"

type Config struct {
	Port                 string
	GinMode              string
	LogLevel             string
	MaxTableNumber       int
	DeliveryChannels     []string
	BusyThreshold        int
	CardSuccessRate      float64
	MenuFile             string
	ArchiveDriver        string
	ArchiveDSN           string
	KitchenAMQPURL       string
	JWTSecret            string
	StaffName            string
	StaffPINHash         string
	QueueRefreshInterval time.Duration
	RateLimitPerSecond   float64
	RateLimitBurst       int
	CORSOrigin           string
}

// Load reads .env (if present) and the environment. Malformed numbers fall
// back to their defaults with a warning.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		utils.InfoLogger.Debugf(".env file not loaded: %v", err)
	}

	cfg := &Config{
		Port:                 getEnv("PORT", "8080"),
		GinMode:              getEnv("GIN_MODE", "debug"),
		LogLevel:             getEnv("LOG_LEVEL", "info"),
		MaxTableNumber:       getInt("MAX_TABLE_NUMBER", services.DefaultMaxTableNumber),
		DeliveryChannels:     getList("DELIVERY_CHANNELS", models.DefaultDeliveryChannels),
		BusyThreshold:        getInt("KITCHEN_BUSY_THRESHOLD", services.DefaultBusyThreshold),
		CardSuccessRate:      getFloat("CARD_SUCCESS_RATE", services.DefaultCardSuccessRate),
		MenuFile:             os.Getenv("MENU_FILE"),
		ArchiveDriver:        strings.ToLower(os.Getenv("ARCHIVE_DB_DRIVER")),
		ArchiveDSN:           os.Getenv("ARCHIVE_DB_DSN"),
		KitchenAMQPURL:       os.Getenv("KITCHEN_AMQP_URL"),
		JWTSecret:            os.Getenv("JWT_SECRET"),
		StaffName:            getEnv("STAFF_NAME", "manager"),
		StaffPINHash:         os.Getenv("STAFF_PIN_HASH"),
		QueueRefreshInterval: getDuration("QUEUE_REFRESH_INTERVAL", services.DefaultQueueRefreshInterval),
		RateLimitPerSecond:   getFloat("RATE_LIMIT_PER_SECOND", 50),
		RateLimitBurst:       getInt("RATE_LIMIT_BURST", 10),
		CORSOrigin:           getEnv("CORS_ORIGIN", "*"),
	}

	if cfg.CardSuccessRate < 0 || cfg.CardSuccessRate > 1 {
		utils.ErrorLogger.Warnf("CARD_SUCCESS_RATE %v out of range, using %v", cfg.CardSuccessRate, services.DefaultCardSuccessRate)
		cfg.CardSuccessRate = services.DefaultCardSuccessRate
	}

	if cfg.StaffPINHash == "" {
		pin := getEnv("STAFF_PIN", DefaultStaffPIN)
		if pin == DefaultStaffPIN {
			utils.ErrorLogger.Warn("STAFF_PIN not set, using the default PIN")
		}
		hash, err := utils.HashPIN(pin)
		if err != nil {
			return nil, err
		}
		cfg.StaffPINHash = hash
	}
	return cfg, nil
}

// ArchiveEnabled reports whether ledger and order history go to a database.
func (c *Config) ArchiveEnabled() bool {
	return c.ArchiveDriver != ""
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n <= 0 {
		utils.ErrorLogger.Warnf("Invalid %s=%q, using %d", key, v, fallback)
		return fallback
	}
	return n
}

func getFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		utils.ErrorLogger.Warnf("Invalid %s=%q, using %v", key, v, fallback)
		return fallback
	}
	return f
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(strings.TrimSpace(v))
	if err != nil || d <= 0 {
		utils.ErrorLogger.Warnf("Invalid %s=%q, using %s", key, v, fallback)
		return fallback
	}
	return d
}

func getList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, strings.ToLower(part))
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
