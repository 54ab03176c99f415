package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultMongoURI      = "mongodb://localhost:27017"
	defaultMongoDatabase = "turnos"
	defaultRedisAddr     = "localhost:6379"
	defaultJWTTTL        = "24h"
	defaultAppPort       = "3000"
	defaultAppEnv        = "local"
	defaultCacheDriver   = "memory"
	defaultSummaryTTL    = "30s"
	defaultLoginLimit    = "10"
	defaultMaxBodyBytes  = "1048576"
	defaultLogCollection = "logs"
)

var (
	loadOnce sync.Once
	loadErr  error

	mu     sync.RWMutex
	values = defaultValues()
)

// Load merges config/app.json and .env over the defaults. Process
// environment variables always win over both files.
func Load() error {
	loadOnce.Do(func() {
		loadErr = loadFromFiles("config/app.json", ".env")
	})
	return loadErr
}

func defaultValues() map[string]string {
	return map[string]string{
		"MONGO_URI":        defaultMongoURI,
		"MONGO_DB":         defaultMongoDatabase,
		"REDIS_ADDR":       defaultRedisAddr,
		"REDIS_PASSWORD":   "",
		"JWT_SECRET":       "",
		"JWT_TTL":          defaultJWTTTL,
		"APP_PORT":         defaultAppPort,
		"APP_ENV":          defaultAppEnv,
		"CACHE_DRIVER":     defaultCacheDriver,
		"SUMMARY_TTL":      defaultSummaryTTL,
		"CORS_ORIGINS":     "*",
		"LOGIN_RATE_LIMIT": defaultLoginLimit,
		"MAX_BODY_BYTES":   defaultMaxBodyBytes,
		"LOG_MONGO":        "false",
		"LOG_COLLECTION":   defaultLogCollection,
		"TRUSTED_PROXIES":  "",
	}
}

func MongoURI() string      { _ = Load(); return get("MONGO_URI", defaultMongoURI) }
func MongoDatabase() string { _ = Load(); return get("MONGO_DB", defaultMongoDatabase) }

func RedisAddr() string     { _ = Load(); return get("REDIS_ADDR", defaultRedisAddr) }
func RedisPassword() string { _ = Load(); return get("REDIS_PASSWORD", "") }

// CacheDriver is either "memory" or "redis".
func CacheDriver() string {
	_ = Load()

	driver := strings.ToLower(get("CACHE_DRIVER", defaultCacheDriver))
	switch driver {
	case "memory", "redis":
		return driver
	default:
		return defaultCacheDriver
	}
}

// JWTSecret is the HS256 signing key. There is no fallback: an empty value
// means tokens can be neither issued nor verified.
func JWTSecret() string {
	_ = Load()
	return get("JWT_SECRET", "")
}

// JWTTTL is how long an issued token stays valid.
func JWTTTL() time.Duration {
	_ = Load()
	return duration("JWT_TTL", 24*time.Hour)
}

func AppPort() string {
	_ = Load()
	return get("APP_PORT", defaultAppPort)
}

func AppEnv() string {
	_ = Load()
	return get("APP_ENV", defaultAppEnv)
}

// SummaryTTL is the cache lifetime of the dashboard summary.
func SummaryTTL() time.Duration {
	_ = Load()
	return duration("SUMMARY_TTL", 30*time.Second)
}

// CORSOrigins returns the comma separated CORS_ORIGINS as a slice.
func CORSOrigins() []string {
	_ = Load()

	return list(get("CORS_ORIGINS", "*"))
}

// LoginRateLimit is the number of login attempts allowed per IP per minute.
func LoginRateLimit() int {
	_ = Load()
	return integer("LOGIN_RATE_LIMIT", 10)
}

func MaxBodyBytes() int64 {
	_ = Load()
	return int64(integer("MAX_BODY_BYTES", 1<<20))
}

// LogMongo reports whether log records are also shipped to MongoDB.
func LogMongo() bool {
	_ = Load()
	on, err := strconv.ParseBool(get("LOG_MONGO", "false"))
	return err == nil && on
}

func LogCollection() string {
	_ = Load()
	return get("LOG_COLLECTION", defaultLogCollection)
}

// TrustedProxies lists the proxy IPs or CIDRs whose X-Forwarded-For header
// is believed. Empty means the socket address is always used.
func TrustedProxies() []string {
	_ = Load()
	return list(get("TRUSTED_PROXIES", ""))
}

// AdminEmail and AdminPassword feed the `seed` command.
func AdminEmail() string    { _ = Load(); return get("ADMIN_EMAIL", "") }
func AdminPassword() string { _ = Load(); return get("ADMIN_PASSWORD", "") }

func loadFromFiles(configPath, envPath string) error {
	loaded := defaultValues()

	if err := mergeJSONConfig(configPath, loaded); err != nil {
		if !os.IsNotExist(err) {
			return err
		}
	}

	if err := mergeDotEnv(envPath, loaded); err != nil {
		if !os.IsNotExist(err) {
			return err
		}
	}

	mu.Lock()
	values = loaded
	mu.Unlock()

	return nil
}

func mergeJSONConfig(path string, out map[string]string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	var raw map[string]interface{}
	if err := json.NewDecoder(file).Decode(&raw); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}

	for key, val := range raw {
		var s string
		switch v := val.(type) {
		case string:
			s = v
		case float64:
			s = strconv.FormatFloat(v, 'f', -1, 64)
		default:
			continue
		}

		k := strings.ToUpper(strings.TrimSpace(key))
		if k == "" {
			continue
		}
		out[k] = strings.TrimSpace(s)
	}

	return nil
}

func mergeDotEnv(path string, out map[string]string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	parsed, err := godotenv.Parse(file)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	for key, value := range parsed {
		k := strings.ToUpper(strings.TrimSpace(key))
		if k == "" {
			continue
		}
		out[k] = strings.TrimSpace(value)
	}

	return nil
}

func get(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}

	mu.RLock()
	defer mu.RUnlock()

	if value := strings.TrimSpace(values[key]); value != "" {
		return value
	}

	return fallback
}

// list splits a comma separated value, dropping blanks.
func list(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func duration(key string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(get(key, ""))
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func integer(key string, fallback int) int {
	n, err := strconv.Atoi(get(key, ""))
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

// Get reads any config key by name with an optional fallback.
func Get(key, fallback string) string {
	_ = Load()
	return get(key, fallback)
}
