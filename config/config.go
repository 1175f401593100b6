package config

import (
	"os"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
)

type Config struct {
	Environment string
	Port        string
	DatabaseURL string
	RedisURL    string
	JWTSecret   string

	// Firebase Config
	FirebaseCredentials string

	// Twilio Config
	TwilioAccountSID  string
	TwilioAuthToken   string
	TwilioPhoneNumber string

	// Safety scoring
	NightStartHour int // local hour, inclusive
	NightEndHour   int // local hour, exclusive

	// Emergency dispatch
	ContactSendSpacing time.Duration // delay between sequential contact sends
	TransportTimeout   time.Duration // per-channel send timeout
	DefaultPoliceNo    string
	DefaultAmbulanceNo string
	DefaultHelplineNo  string

	// Location sharing
	ShareInterval time.Duration // minimum interval between contact re-shares

	// Geofence monitor
	NormalInterval     time.Duration
	EmergencyInterval  time.Duration
	NormalDistanceM    float64
	EmergencyDistanceM float64
	TransitionLogSize  int

	// Rate limiting
	RateLimitRequests int
	RateLimitWindow   time.Duration
	PanicCooldown     time.Duration
}

func Load() *Config {
	return &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		Port:        getEnv("PORT", "8080"),
		DatabaseURL: getEnv("DATABASE_URL", "mongodb://localhost:27017/safetrail"),
		RedisURL:    getEnv("REDIS_URL", "redis://localhost:6379"),
		JWTSecret:   getEnv("JWT_SECRET", "change-me-in-production"),

		FirebaseCredentials: getEnv("FIREBASE_CREDENTIALS", ""),

		TwilioAccountSID:  getEnv("TWILIO_ACCOUNT_SID", ""),
		TwilioAuthToken:   getEnv("TWILIO_AUTH_TOKEN", ""),
		TwilioPhoneNumber: getEnv("TWILIO_PHONE_NUMBER", ""),

		NightStartHour: getEnvAsInt("NIGHT_START_HOUR", 22),
		NightEndHour:   getEnvAsInt("NIGHT_END_HOUR", 6),

		ContactSendSpacing: getEnvAsDuration("CONTACT_SEND_SPACING", 500*time.Millisecond),
		TransportTimeout:   getEnvAsDuration("TRANSPORT_TIMEOUT", 10*time.Second),
		DefaultPoliceNo:    getEnv("EMERGENCY_POLICE_NUMBER", "100"),
		DefaultAmbulanceNo: getEnv("EMERGENCY_AMBULANCE_NUMBER", "108"),
		DefaultHelplineNo:  getEnv("EMERGENCY_HELPLINE_NUMBER", "112"),

		ShareInterval: getEnvAsDuration("LOCATION_SHARE_INTERVAL", 5*time.Minute),

		NormalInterval:     getEnvAsDuration("MONITOR_NORMAL_INTERVAL", 15*time.Second),
		EmergencyInterval:  getEnvAsDuration("MONITOR_EMERGENCY_INTERVAL", 3*time.Second),
		NormalDistanceM:    getEnvAsFloat("MONITOR_NORMAL_DISTANCE_M", 10),
		EmergencyDistanceM: getEnvAsFloat("MONITOR_EMERGENCY_DISTANCE_M", 3),
		TransitionLogSize:  getEnvAsInt("MONITOR_TRANSITION_LOG_SIZE", 50),

		RateLimitRequests: getEnvAsInt("RATE_LIMIT_REQUESTS", 100),
		RateLimitWindow:   getEnvAsDuration("RATE_LIMIT_WINDOW", time.Minute),
		PanicCooldown:     getEnvAsDuration("PANIC_COOLDOWN", 30*time.Second),
	}
}

func InitRedis(cfg *Config) *redis.Client {
	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		opt = &redis.Options{
			Addr: "localhost:6379",
		}
	}

	return redis.NewClient(opt)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
