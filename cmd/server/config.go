package main

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/mcoot/gameofchests/internal/api"
	"github.com/mcoot/gameofchests/internal/factory"
	"github.com/mcoot/gameofchests/internal/services/identity"
	firebasestorage "github.com/mcoot/gameofchests/internal/storage/firebase"
	redisstorage "github.com/mcoot/gameofchests/internal/storage/redis"
	"github.com/mcoot/gameofchests/internal/storage/sqlstore"
)

// serverConfig is everything main needs, read from the environment
type serverConfig struct {
	Server   api.ServerConfig
	LogLevel slog.Level
	Factory  factory.Config
}

// loadConfig reads configuration through getenv
func loadConfig(getenv func(string) string) (serverConfig, error) {
	cfg := serverConfig{
		Server:   api.DefaultServerConfig(),
		LogLevel: slog.LevelInfo,
	}

	if port := getenv("PORT"); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			return cfg, fmt.Errorf("invalid PORT %q: %w", port, err)
		}
		cfg.Server.Port = p
	}

	if level := getenv("LOG_LEVEL"); level != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(level)); err != nil {
			return cfg, fmt.Errorf("invalid LOG_LEVEL %q: %w", level, err)
		}
	}

	roomTTL, err := durationEnv(getenv, "ROOM_TTL")
	if err != nil {
		return cfg, err
	}

	fc := factory.Config{
		StorageType:      getenv("STORAGE_TYPE"),
		IdentityProvider: getenv("IDENTITY_PROVIDER"),
	}

	switch fc.StorageType {
	case factory.StorageTypeRedis:
		redisURL := getenv("REDIS_URL")
		if redisURL == "" {
			return cfg, fmt.Errorf("REDIS_URL required when STORAGE_TYPE=redis")
		}
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = redisURL
		if roomTTL != 0 {
			redisCfg.RoomTTL = roomTTL
		}
		fc.RedisConfig = &redisCfg

	case factory.StorageTypeFirebase:
		fbCfg := firebasestorage.DefaultConfig()
		fbCfg.ProjectID = getenv("FIREBASE_PROJECT_ID")
		fbCfg.DatabaseURL = getenv("FIREBASE_DATABASE_URL")
		fbCfg.CredentialsFile = getenv("FIREBASE_CREDENTIALS_FILE")
		if fbCfg.DatabaseURL == "" {
			return cfg, fmt.Errorf("FIREBASE_DATABASE_URL required when STORAGE_TYPE=firebase")
		}
		fc.FirebaseConfig = &fbCfg

	case factory.StorageTypePostgres:
		sqlCfg := sqlstore.DefaultConfig()
		sqlCfg.DSN = getenv("DATABASE_URL")
		if sqlCfg.DSN == "" {
			return cfg, fmt.Errorf("DATABASE_URL required when STORAGE_TYPE=postgres")
		}
		fc.SQLConfig = &sqlCfg

	case factory.StorageTypeSQLite:
		sqlCfg := sqlstore.DefaultConfig()
		if path := getenv("SQLITE_PATH"); path != "" {
			sqlCfg.DSN = "file:" + path + "?_busy_timeout=5000"
		}
		fc.SQLConfig = &sqlCfg
	}

	fc.TokenConfig = identity.DefaultConfig()
	fc.TokenConfig.Secret = []byte(getenv("TOKEN_SECRET"))
	ttl, err := durationEnv(getenv, "TOKEN_TTL")
	if err != nil {
		return cfg, err
	}
	if ttl != 0 {
		fc.TokenConfig.TokenTTL = ttl
	}
	fc.FirebaseAuth = identity.FirebaseConfig{
		ProjectID:       getenv("FIREBASE_PROJECT_ID"),
		CredentialsFile: getenv("FIREBASE_CREDENTIALS_FILE"),
	}

	cfg.Factory = fc
	return cfg, nil
}

func durationEnv(getenv func(string) string, key string) (time.Duration, error) {
	v := getenv(key)
	if v == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return d, nil
}

// newLogger builds the JSON logger used by the server
func newLogger(level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}
