package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/gameofchests/internal/api/handler"
	"github.com/mcoot/gameofchests/internal/api/middleware"
	"github.com/mcoot/gameofchests/internal/api/response"
	"github.com/mcoot/gameofchests/internal/services/bot"
	"github.com/mcoot/gameofchests/internal/services/game"
	"github.com/mcoot/gameofchests/internal/services/identity"
	"github.com/mcoot/gameofchests/internal/services/room"
	"github.com/mcoot/gameofchests/internal/storage"
	"github.com/mcoot/gameofchests/internal/web/sse"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger         *slog.Logger
	Identity       identity.Provider
	RoomController room.ControllerInterface
	GameController game.ControllerInterface
	Bots           bot.ServiceInterface
	Storage        storage.Storage
	Broadcaster    *sse.Broadcaster
	StorageType    string
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	identityHandler := handler.NewIdentityHandler(cfg.Identity)
	roomHandler := handler.NewRoomHandler(cfg.RoomController)
	gameHandler := handler.NewGameHandler(cfg.GameController)
	botHandler := handler.NewBotHandler(cfg.Bots)
	eventsHandler := handler.NewEventsHandler(cfg.RoomController, cfg.Broadcaster)
	socketHandler := handler.NewSocketHandler(cfg.RoomController, cfg.GameController, cfg.Storage, cfg.Logger)

	authMiddleware := middleware.Auth(cfg.Identity)

	// API subrouter with common middleware
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(middleware.Logging(cfg.Logger))
	api.Use(middleware.Recovery(cfg.Logger))

	api.HandleFunc("/health", healthHandler(cfg.StorageType)).Methods(http.MethodGet)

	// Issuing an identity is the only unauthenticated action
	api.HandleFunc("/identity", identityHandler.Issue).Methods(http.MethodPost)

	protected := api.NewRoute().Subrouter()
	protected.Use(authMiddleware)
	protected.HandleFunc("/identity", identityHandler.Me).Methods(http.MethodGet)

	rooms := protected.PathPrefix("/rooms").Subrouter()
	rooms.HandleFunc("", roomHandler.Create).Methods(http.MethodPost)
	rooms.HandleFunc("/{id}", roomHandler.Get).Methods(http.MethodGet)
	rooms.HandleFunc("/{id}/join", roomHandler.Join).Methods(http.MethodPost)
	rooms.HandleFunc("/{id}/leave", roomHandler.Leave).Methods(http.MethodPost)
	rooms.HandleFunc("/{id}/assume", roomHandler.Assume).Methods(http.MethodPost)
	rooms.HandleFunc("/{id}/reset", roomHandler.Reset).Methods(http.MethodPost)
	rooms.HandleFunc("/{id}/offer", gameHandler.Offer).Methods(http.MethodPost)
	rooms.HandleFunc("/{id}/place", gameHandler.Place).Methods(http.MethodPost)
	rooms.HandleFunc("/{id}/outcome", gameHandler.Outcome).Methods(http.MethodGet)
	rooms.HandleFunc("/{id}/bot", botHandler.Add).Methods(http.MethodPost)
	rooms.HandleFunc("/{id}/bot", botHandler.Remove).Methods(http.MethodDelete)
	rooms.HandleFunc("/{id}/events", eventsHandler.Stream).Methods(http.MethodGet)
	rooms.HandleFunc("/{id}/ws", socketHandler.Serve).Methods(http.MethodGet)

	return r
}

func healthHandler(storageType string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response.JSON(w, http.StatusOK, response.Health{Status: "ok", Storage: storageType})
	}
}
