package game

import (
	"context"
	"errors"
	"log/slog"

	"github.com/mcoot/gameofchests/internal/dependencies/clock"
	"github.com/mcoot/gameofchests/internal/model"
	"github.com/mcoot/gameofchests/internal/storage"
)

// errUnchanged aborts a transaction that has nothing to write
var errUnchanged = errors.New("unchanged")

// Controller applies game transitions to rooms through the store
type Controller struct {
	storage storage.Storage
	clock   clock.Clock
	logger  *slog.Logger
}

// NewController creates a new game Controller
func NewController(
	storage storage.Storage,
	clock clock.Clock,
	logger *slog.Logger,
) *Controller {
	return &Controller{
		storage: storage,
		clock:   clock,
		logger:  logger,
	}
}

// GetRoom retrieves a room with its game
func (c *Controller) GetRoom(ctx context.Context, roomID model.RoomID) (*model.Room, error) {
	return c.storage.Read(ctx, roomID)
}

// OfferBasket handles the presenter revealing a basket
func (c *Controller) OfferBasket(ctx context.Context, roomID model.RoomID, by model.Identity, basket int) (*model.Room, error) {
	room, err := c.storage.Transact(ctx, roomID, func(room *model.Room) error {
		return Offer(room, basket, by)
	})
	if err != nil {
		return nil, err
	}

	c.logger.Info("basket offered",
		slog.String("room_id", string(roomID)),
		slog.String("identity", string(by)),
		slog.Int("basket", basket),
		slog.Int("turn", room.State.Turn),
	)
	return room, nil
}

// PlaceCoin handles the placer dropping a coin into the offered basket
func (c *Controller) PlaceCoin(ctx context.Context, roomID model.RoomID, by model.Identity, coin int) (*model.Room, error) {
	now := c.clock.Now()
	room, err := c.storage.Transact(ctx, roomID, func(room *model.Room) error {
		return Place(room, coin, by, now)
	})
	if err != nil {
		return nil, err
	}

	move := room.State.Moves[len(room.State.Moves)-1]
	c.logger.Info("coin placed",
		slog.String("room_id", string(roomID)),
		slog.String("identity", string(by)),
		slog.Int("coin", coin),
		slog.Int("basket", move.Basket),
		slog.Int("turn", room.State.Turn),
	)

	if outcome, ok := ComputeOutcome(room.State); ok {
		c.logger.Info("game finished",
			slog.String("room_id", string(roomID)),
			slog.String("result", string(outcome.Result)),
			slog.Int("placer_score", outcome.PlacerScore),
			slog.Int("presenter_score", outcome.PresenterScore),
		)
	}
	return room, nil
}

// Promote moves a waiting room into play once both roles are filled.
// Safe to call from any number of observers; only one commit happens.
func (c *Controller) Promote(ctx context.Context, roomID model.RoomID) (*model.Room, error) {
	room, err := c.storage.Transact(ctx, roomID, func(room *model.Room) error {
		if !Promote(room) {
			return errUnchanged
		}
		return nil
	})
	if errors.Is(err, errUnchanged) {
		return c.storage.Read(ctx, roomID)
	}
	if err != nil {
		return nil, err
	}

	c.logger.Info("room promoted",
		slog.String("room_id", string(roomID)),
		slog.String("phase", string(room.State.Phase)),
	)
	return room, nil
}

// Outcome returns the result of a finished game
func (c *Controller) Outcome(ctx context.Context, roomID model.RoomID) (Outcome, error) {
	room, err := c.storage.Read(ctx, roomID)
	if err != nil {
		return Outcome{}, err
	}
	outcome, ok := ComputeOutcome(room.State)
	if !ok {
		return Outcome{}, model.ErrGameNotFinished
	}
	return outcome, nil
}

// ControllerInterface defines the interface for game operations
type ControllerInterface interface {
	GetRoom(ctx context.Context, roomID model.RoomID) (*model.Room, error)
	OfferBasket(ctx context.Context, roomID model.RoomID, by model.Identity, basket int) (*model.Room, error)
	PlaceCoin(ctx context.Context, roomID model.RoomID, by model.Identity, coin int) (*model.Room, error)
	Promote(ctx context.Context, roomID model.RoomID) (*model.Room, error)
	Outcome(ctx context.Context, roomID model.RoomID) (Outcome, error)
}

// Ensure Controller implements ControllerInterface
var _ ControllerInterface = (*Controller)(nil)
