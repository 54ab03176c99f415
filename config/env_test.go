package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromFilesMergesJSONAndDotEnv(t *testing.T) {
	dir := t.TempDir()
	jsonPath := filepath.Join(dir, "app.json")
	envPath := filepath.Join(dir, ".env")

	require.NoError(t, os.WriteFile(jsonPath, []byte(`{"mongo_db":"from_json","app_port":8081,"summary_ttl":"5s"}`), 0o600))
	require.NoError(t, os.WriteFile(envPath, []byte("# comment\nMONGO_DB=\"from_env\"\nJWT_TTL=2h\n"), 0o600))

	t.Cleanup(func() {
		mu.Lock()
		values = defaultValues()
		mu.Unlock()
	})

	require.NoError(t, loadFromFiles(jsonPath, envPath))

	assert.Equal(t, "from_env", get("MONGO_DB", ""))
	assert.Equal(t, "8081", get("APP_PORT", ""))
	assert.Equal(t, 5*time.Second, duration("SUMMARY_TTL", time.Minute))
	assert.Equal(t, 2*time.Hour, duration("JWT_TTL", time.Minute))
}

func TestLoadFromFilesIgnoresMissingFiles(t *testing.T) {
	dir := t.TempDir()
	t.Cleanup(func() {
		mu.Lock()
		values = defaultValues()
		mu.Unlock()
	})

	require.NoError(t, loadFromFiles(filepath.Join(dir, "none.json"), filepath.Join(dir, ".none")))
	assert.Equal(t, defaultMongoURI, get("MONGO_URI", ""))
}

func TestProcessEnvironmentWins(t *testing.T) {
	t.Setenv("JWT_SECRET", "from-process")
	assert.Equal(t, "from-process", JWTSecret())
}

func TestCORSOriginsSplitsList(t *testing.T) {
	t.Setenv("CORS_ORIGINS", "http://localhost:5173, https://admin.example.com,")
	assert.Equal(t, []string{"http://localhost:5173", "https://admin.example.com"}, CORSOrigins())
}

func TestInvalidNumbersFallBack(t *testing.T) {
	t.Setenv("LOGIN_RATE_LIMIT", "abc")
	t.Setenv("JWT_TTL", "-1h")
	assert.Equal(t, 10, LoginRateLimit())
	assert.Equal(t, 24*time.Hour, JWTTTL())
}

func TestCacheDriverFallsBackToMemory(t *testing.T) {
	t.Setenv("CACHE_DRIVER", "memcached")
	assert.Equal(t, "memory", CacheDriver())
}

func TestJWTSecretHasNoFallback(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	assert.Empty(t, JWTSecret())
}

func TestMongoLogSettings(t *testing.T) {
	assert.False(t, LogMongo())
	assert.Equal(t, "logs", LogCollection())

	t.Setenv("LOG_MONGO", "true")
	t.Setenv("LOG_COLLECTION", "api_logs")
	assert.True(t, LogMongo())
	assert.Equal(t, "api_logs", LogCollection())
}

func TestTrustedProxies(t *testing.T) {
	assert.Empty(t, TrustedProxies())

	t.Setenv("TRUSTED_PROXIES", "10.0.0.0/8, 127.0.0.1")
	assert.Equal(t, []string{"10.0.0.0/8", "127.0.0.1"}, TrustedProxies())
}
