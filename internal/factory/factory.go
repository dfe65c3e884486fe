package factory

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/mcoot/gameofchests/internal/api"
	"github.com/mcoot/gameofchests/internal/dependencies/clock"
	"github.com/mcoot/gameofchests/internal/dependencies/ids"
	"github.com/mcoot/gameofchests/internal/dependencies/random"
	"github.com/mcoot/gameofchests/internal/model"
	"github.com/mcoot/gameofchests/internal/services/bot"
	"github.com/mcoot/gameofchests/internal/services/game"
	"github.com/mcoot/gameofchests/internal/services/identity"
	"github.com/mcoot/gameofchests/internal/services/participant"
	"github.com/mcoot/gameofchests/internal/services/room"
	"github.com/mcoot/gameofchests/internal/storage"
	firebasestorage "github.com/mcoot/gameofchests/internal/storage/firebase"
	"github.com/mcoot/gameofchests/internal/storage/memory"
	redisstorage "github.com/mcoot/gameofchests/internal/storage/redis"
	"github.com/mcoot/gameofchests/internal/storage/sqlstore"
	"github.com/mcoot/gameofchests/internal/web/sse"
)

// Storage type constants
const (
	StorageTypeMemory   = "memory"
	StorageTypeRedis    = "redis"
	StorageTypeFirebase = "firebase"
	StorageTypePostgres = "postgres"
	StorageTypeSQLite   = "sqlite"
)

// Identity provider constants
const (
	IdentityProviderToken    = "token"
	IdentityProviderFirebase = "firebase"
)

// App contains all wired application components
type App struct {
	Storage     storage.Storage
	StorageType string

	// External dependencies
	Clock clock.Clock
	IDs   ids.Generator

	// Services
	GameController *game.Controller
	RoomController *room.Controller
	Bots           *bot.Service
	Identity       identity.Provider
	HubManager     *sse.HubManager
	Broadcaster    *sse.Broadcaster

	Logger *slog.Logger
}

// Config holds configuration for the application factory
type Config struct {
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger

	// StorageType selects the storage backend. Defaults to "memory".
	StorageType string
	// Backend settings, required for the matching StorageType
	RedisConfig    *redisstorage.Config
	FirebaseConfig *firebasestorage.Config
	SQLConfig      *sqlstore.Config

	// IdentityProvider selects how bearer tokens are checked. Defaults to "token".
	IdentityProvider string
	// TokenConfig is used by the token provider. A random secret is generated
	// when none is set, so tokens do not survive a restart.
	TokenConfig identity.Config
	// FirebaseAuth is used by the firebase provider
	FirebaseAuth identity.FirebaseConfig
}

// New creates a new application with all dependencies wired
func New(ctx context.Context, cfg Config) (*App, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}
	store, err := newStorage(ctx, storageType, cfg)
	if err != nil {
		return nil, err
	}

	clk := clock.New()
	gen := ids.New()

	provider, err := newIdentityProvider(ctx, cfg, clk, gen, logger)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	app := newWithDependencies(store, clk, gen, random.New(), provider, logger)
	app.StorageType = storageType
	return app, nil
}

func newStorage(ctx context.Context, storageType string, cfg Config) (storage.Storage, error) {
	switch storageType {
	case StorageTypeMemory:
		return memory.New(), nil

	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, err
		}
		return redisStore, nil

	case StorageTypeFirebase:
		if cfg.FirebaseConfig == nil {
			return nil, errors.New("FirebaseConfig required when StorageType is firebase")
		}
		firebaseStore, err := firebasestorage.New(ctx, *cfg.FirebaseConfig)
		if err != nil {
			return nil, err
		}
		return firebaseStore, nil

	case StorageTypePostgres, StorageTypeSQLite:
		if cfg.SQLConfig == nil {
			return nil, fmt.Errorf("SQLConfig required when StorageType is %s", storageType)
		}
		sqlCfg := *cfg.SQLConfig
		sqlCfg.Driver = sqlstore.DriverSQLite
		if storageType == StorageTypePostgres {
			sqlCfg.Driver = sqlstore.DriverPostgres
		}
		sqlStore, err := sqlstore.New(sqlCfg)
		if err != nil {
			return nil, err
		}
		return sqlStore, nil
	}
	return nil, fmt.Errorf("invalid StorageType %q: must be memory, redis, firebase, postgres or sqlite", storageType)
}

func newIdentityProvider(ctx context.Context, cfg Config, clk clock.Clock, gen ids.Generator, logger *slog.Logger) (identity.Provider, error) {
	switch cfg.IdentityProvider {
	case "", IdentityProviderToken:
		tokenCfg := cfg.TokenConfig
		if len(tokenCfg.Secret) == 0 {
			logger.Warn("no token secret configured, generating one; tokens will not survive a restart")
			tokenCfg.Secret = make([]byte, 32)
			if _, err := rand.Read(tokenCfg.Secret); err != nil {
				return nil, err
			}
		}
		tokenProvider, err := identity.NewTokenProvider(tokenCfg, clk, gen)
		if err != nil {
			return nil, err
		}
		return tokenProvider, nil

	case IdentityProviderFirebase:
		firebaseProvider, err := identity.NewFirebaseProvider(ctx, cfg.FirebaseAuth)
		if err != nil {
			return nil, err
		}
		return firebaseProvider, nil
	}
	return nil, fmt.Errorf("invalid IdentityProvider %q: must be token or firebase", cfg.IdentityProvider)
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(store storage.Storage, clk clock.Clock, gen ids.Generator, rnd random.Random, provider identity.Provider, logger *slog.Logger) *App {
	gameController := game.NewController(store, clk, logger)
	roomController := room.NewController(store, gameController, clk, gen, logger)
	bots := bot.NewService(store, roomController, gameController, bot.DefaultStrategies(rnd), gen, logger)
	hubManager := sse.NewHubManager(logger)
	broadcaster := sse.NewBroadcaster(hubManager, store, api.RenderRoom, logger)

	return &App{
		Storage:        store,
		StorageType:    StorageTypeMemory,
		Clock:          clk,
		IDs:            gen,
		GameController: gameController,
		RoomController: roomController,
		Bots:           bots,
		Identity:       provider,
		HubManager:     hubManager,
		Broadcaster:    broadcaster,
		Logger:         logger,
	}
}

// Router returns the HTTP API for the app
func (a *App) Router() http.Handler {
	return api.NewRouter(api.RouterConfig{
		Logger:         a.Logger,
		Identity:       a.Identity,
		RoomController: a.RoomController,
		GameController: a.GameController,
		Bots:           a.Bots,
		Storage:        a.Storage,
		Broadcaster:    a.Broadcaster,
		StorageType:    a.StorageType,
	})
}

// NewSession starts a participant session for id
func (a *App) NewSession(ctx context.Context, id model.Identity) *participant.Session {
	return participant.NewSession(ctx, id, a.RoomController, a.GameController, a.Storage, a.Logger)
}

// Close stops all bots and push streams and closes the store
func (a *App) Close() error {
	a.Bots.Close()
	a.Broadcaster.Close()
	return a.Storage.Close()
}
