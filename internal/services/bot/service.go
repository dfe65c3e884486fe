package bot

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/mcoot/gameofchests/internal/dependencies/ids"
	"github.com/mcoot/gameofchests/internal/model"
	"github.com/mcoot/gameofchests/internal/services/game"
	"github.com/mcoot/gameofchests/internal/services/room"
	"github.com/mcoot/gameofchests/internal/storage"
)

const (
	// IdentityPrefix marks bot identities
	IdentityPrefix = "bot-"
	// MaxBotIterations is a safety limit for the Play loop
	MaxBotIterations = 100
)

var (
	ErrUnknownStrategy = errors.New("unknown bot strategy")
	ErrBotPresent      = errors.New("room already has a bot")
	ErrNoBot           = errors.New("room has no bot")
	ErrClosed          = errors.New("bot service closed")
)

// ActionType represents the type of action a bot took
type ActionType string

const (
	ActionOffer ActionType = "offer"
	ActionPlace ActionType = "place"
)

// Action represents a single move made by a bot during Play
type Action struct {
	Type     ActionType
	Identity model.Identity
	Basket   int
	Coin     int
}

// player is a bot seated in one room
type player struct {
	identity model.Identity
	strategy string
	wake     chan struct{}
	stop     context.CancelFunc
}

// Service seats bots in rooms and plays their moves as the room changes.
// Bots live in this process; a restart leaves their seats held but idle
// until the bot is removed.
type Service struct {
	storage        storage.Storage
	roomController room.ControllerInterface
	gameController game.ControllerInterface
	strategies     map[string]Strategy
	ids            ids.Generator
	logger         *slog.Logger

	mu     sync.Mutex
	bots   map[model.RoomID]*player
	closed bool
	wg     sync.WaitGroup
}

// NewService creates a new bot Service
func NewService(
	store storage.Storage,
	roomController room.ControllerInterface,
	gameController game.ControllerInterface,
	strategies map[string]Strategy,
	gen ids.Generator,
	logger *slog.Logger,
) *Service {
	return &Service{
		storage:        store,
		roomController: roomController,
		gameController: gameController,
		strategies:     strategies,
		ids:            gen,
		logger:         logger.With(slog.String("component", "bot-service")),
		bots:           make(map[model.RoomID]*player),
	}
}

// AddBot seats a bot in the free role of a room. Only a seated participant
// may add one, and a room holds at most one bot.
func (s *Service) AddBot(ctx context.Context, roomID model.RoomID, by model.Identity, strategy string) (*model.Room, model.Identity, error) {
	if _, ok := s.strategies[strategy]; !ok {
		return nil, "", ErrUnknownStrategy
	}

	rm, err := s.roomController.GetRoom(ctx, roomID)
	if err != nil {
		return nil, "", err
	}
	if _, ok := rm.RoleOf(by); !ok {
		return nil, "", model.ErrNotInRoom
	}

	p := &player{
		identity: model.Identity(IdentityPrefix + string(s.ids.Identity())),
		strategy: strategy,
		wake:     make(chan struct{}, 1),
	}

	s.mu.Lock()
	switch {
	case s.closed:
		s.mu.Unlock()
		return nil, "", ErrClosed
	case s.bots[roomID] != nil:
		s.mu.Unlock()
		return nil, "", ErrBotPresent
	}
	s.bots[roomID] = p
	s.mu.Unlock()

	rm, role, err := s.roomController.JoinRoom(ctx, roomID, p.identity, "")
	if err == nil {
		err = s.follow(roomID, p)
	}
	if err != nil {
		s.forget(roomID, p)
		return nil, "", err
	}

	s.logger.Info("bot added",
		slog.String("room_id", string(roomID)),
		slog.String("bot_id", string(p.identity)),
		slog.String("role", string(role)),
		slog.String("strategy", strategy),
	)
	return rm, p.identity, nil
}

// RemoveBot releases the bot's seat and stops it playing
func (s *Service) RemoveBot(ctx context.Context, roomID model.RoomID, by model.Identity) (*model.Room, error) {
	p := s.botFor(roomID)
	if p == nil {
		return nil, ErrNoBot
	}

	rm, err := s.roomController.GetRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if _, ok := rm.RoleOf(by); !ok || by == p.identity {
		return nil, model.ErrNotInRoom
	}

	rm, err = s.roomController.LeaveRoom(ctx, roomID, p.identity)
	if err != nil {
		return nil, err
	}
	s.forget(roomID, p)

	s.logger.Info("bot removed",
		slog.String("room_id", string(roomID)),
		slog.String("bot_id", string(p.identity)),
	)
	return rm, nil
}

// Bot returns the identity of the bot seated in a room
func (s *Service) Bot(roomID model.RoomID) (model.Identity, bool) {
	p := s.botFor(roomID)
	if p == nil {
		return "", false
	}
	return p.identity, true
}

// Play makes every move that is the bot's to make and returns them
func (s *Service) Play(ctx context.Context, roomID model.RoomID) ([]Action, error) {
	p := s.botFor(roomID)
	if p == nil {
		return nil, ErrNoBot
	}
	strategy := s.strategies[p.strategy]

	var actions []Action
	for iter := 0; iter < MaxBotIterations; iter++ {
		rm, err := s.gameController.GetRoom(ctx, roomID)
		if err != nil {
			return actions, err
		}

		role, seated := rm.RoleOf(p.identity)
		if !seated {
			return actions, nil
		}

		state := rm.State
		switch {
		case role == model.RolePresenter && state.Phase == model.PhaseOffering:
			basket := strategy.ChooseBasket(state)
			if _, err := s.gameController.OfferBasket(ctx, roomID, p.identity, basket); err != nil {
				if lostRace(err) {
					continue
				}
				return actions, err
			}
			actions = append(actions, Action{Type: ActionOffer, Identity: p.identity, Basket: basket})

		case role == model.RolePlacer && state.Phase == model.PhasePlacing:
			coin := strategy.ChooseCoin(state)
			if _, err := s.gameController.PlaceCoin(ctx, roomID, p.identity, coin); err != nil {
				if lostRace(err) {
					continue
				}
				return actions, err
			}
			actions = append(actions, Action{
				Type:     ActionPlace,
				Identity: p.identity,
				Basket:   state.CurrentOffered.Index,
				Coin:     coin,
			})

		default:
			// Other side's turn, or nothing to play
			return actions, nil
		}
	}

	return actions, nil
}

// Close stops every bot and waits for them to finish
func (s *Service) Close() {
	s.mu.Lock()
	s.closed = true
	for id, p := range s.bots {
		if p.stop != nil {
			p.stop()
		}
		delete(s.bots, id)
	}
	s.mu.Unlock()

	s.wg.Wait()
}

// follow subscribes to the room and plays whenever it changes. The
// subscription callback only signals; moves run on the bot's goroutine.
func (s *Service) follow(roomID model.RoomID, p *player) error {
	ctx, cancel := context.WithCancel(context.Background())

	unsubscribe, err := s.storage.Subscribe(ctx, roomID, func(*model.Room) {
		select {
		case p.wake <- struct{}{}:
		default:
		}
	})
	if err != nil {
		cancel()
		return err
	}

	s.mu.Lock()
	if s.closed || s.bots[roomID] != p {
		s.mu.Unlock()
		cancel()
		unsubscribe()
		return ErrClosed
	}
	p.stop = cancel
	s.wg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()
		defer unsubscribe()

		for {
			select {
			case <-ctx.Done():
				return
			case <-p.wake:
				actions, err := s.Play(ctx, roomID)
				if err != nil && ctx.Err() == nil && !errors.Is(err, ErrNoBot) {
					s.logger.Warn("bot move failed",
						slog.String("room_id", string(roomID)),
						slog.String("bot_id", string(p.identity)),
						slog.String("error", err.Error()),
					)
				}
				for _, a := range actions {
					s.logger.Debug("bot moved",
						slog.String("room_id", string(roomID)),
						slog.String("action", string(a.Type)),
						slog.Int("basket", a.Basket),
						slog.Int("coin", a.Coin),
					)
				}
			}
		}
	}()
	return nil
}

// forget drops p from the registry and stops it if it is still registered
func (s *Service) forget(roomID model.RoomID, p *player) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.stop != nil {
		p.stop()
	}
	if s.bots[roomID] == p {
		delete(s.bots, roomID)
	}
}

func (s *Service) botFor(roomID model.RoomID) *player {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bots[roomID]
}

// lostRace reports errors caused by the other participant moving first
func lostRace(err error) bool {
	return errors.Is(err, model.ErrAlreadyOffered) ||
		errors.Is(err, model.ErrNoBasketOffered) ||
		errors.Is(err, model.ErrCoinUnavailable) ||
		errors.Is(err, model.ErrConflict)
}

// ServiceInterface defines the bot operations exposed over the API
type ServiceInterface interface {
	AddBot(ctx context.Context, roomID model.RoomID, by model.Identity, strategy string) (*model.Room, model.Identity, error)
	RemoveBot(ctx context.Context, roomID model.RoomID, by model.Identity) (*model.Room, error)
}

// Ensure Service implements ServiceInterface
var _ ServiceInterface = (*Service)(nil)
