package room

import (
	"context"
	"errors"
	"log/slog"

	"github.com/mcoot/gameofchests/internal/dependencies/clock"
	"github.com/mcoot/gameofchests/internal/dependencies/ids"
	"github.com/mcoot/gameofchests/internal/model"
	"github.com/mcoot/gameofchests/internal/services/game"
	"github.com/mcoot/gameofchests/internal/storage"
)

// errUnchanged aborts a transaction that has nothing to write
var errUnchanged = errors.New("unchanged")

// CreateParams describes a new room
type CreateParams struct {
	// Role is the creator's seat; empty leaves the creator unseated
	Role        model.Role
	Settings    model.Settings
	DisplayName string
}

// AssumeParams describes a Play/Refresh request
type AssumeParams struct {
	Role        model.Role
	Settings    model.Settings
	DisplayName string
}

// ResetParams overrides the settings of a reset. A nil field keeps the
// room's current value.
type ResetParams struct {
	CoinCount    *int
	Compensation *int
}

// Apply fills the fields left unset from current
func (p ResetParams) Apply(current model.Settings) model.Settings {
	if p.CoinCount != nil {
		current.CoinCount = *p.CoinCount
	}
	if p.Compensation != nil {
		current.Compensation = *p.Compensation
	}
	return current
}

// Controller assigns, swaps and releases the two roles of a room
type Controller struct {
	storage        storage.Storage
	gameController game.ControllerInterface
	clock          clock.Clock
	ids            ids.Generator
	logger         *slog.Logger
}

// NewController creates a new room Controller
func NewController(
	storage storage.Storage,
	gameController game.ControllerInterface,
	clock clock.Clock,
	ids ids.Generator,
	logger *slog.Logger,
) *Controller {
	return &Controller{
		storage:        storage,
		gameController: gameController,
		clock:          clock,
		ids:            ids,
		logger:         logger,
	}
}

// GetRoom retrieves a room by ID
func (c *Controller) GetRoom(ctx context.Context, roomID model.RoomID) (*model.Room, error) {
	return c.storage.Read(ctx, roomID)
}

// CreateRoom allocates a new room with the caller as creator
func (c *Controller) CreateRoom(ctx context.Context, by model.Identity, params CreateParams) (*model.Room, error) {
	if _, err := model.ParseRole(string(params.Role)); err != nil {
		return nil, err
	}

	now := c.clock.Now()
	room := &model.Room{
		ID:          c.ids.RoomID(),
		Creator:     by,
		DisplayName: params.DisplayName,
		CreatedAt:   now,
	}
	if params.Role != "" {
		room.Assign(params.Role, by, now)
	}
	if err := game.Restart(room, params.Settings); err != nil {
		return nil, err
	}

	if err := c.storage.Write(ctx, room); err != nil {
		c.logger.Error("failed to save room",
			slog.String("room_id", string(room.ID)),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	c.logger.Info("room created",
		slog.String("room_id", string(room.ID)),
		slog.String("creator", string(by)),
		slog.String("role", string(params.Role)),
		slog.Int("coin_count", params.Settings.CoinCount),
		slog.Int("compensation", params.Settings.Compensation),
	)
	return room, nil
}

// JoinRoom seats the caller, preferring hint when that seat is free.
// A caller who already holds a seat keeps it.
func (c *Controller) JoinRoom(ctx context.Context, roomID model.RoomID, by model.Identity, hint model.Role) (*model.Room, model.Role, error) {
	if _, err := model.ParseRole(string(hint)); err != nil {
		return nil, "", err
	}

	var assigned model.Role
	now := c.clock.Now()
	room, err := c.storage.Transact(ctx, roomID, func(room *model.Room) error {
		if role, ok := room.RoleOf(by); ok {
			assigned = role
			return errUnchanged
		}
		if room.BothFilled() {
			return model.ErrRoomFull
		}

		switch {
		case hint != "" && room.Seat(hint).IsEmpty():
			assigned = hint
		case room.Presenter.IsEmpty():
			assigned = model.RolePresenter
		case room.Placer.IsEmpty():
			assigned = model.RolePlacer
		default:
			return model.ErrNoRoleAvailable
		}
		room.Assign(assigned, by, now)
		return nil
	})
	if errors.Is(err, errUnchanged) {
		room, err = c.storage.Read(ctx, roomID)
		return room, assigned, err
	}
	if err != nil {
		return nil, "", err
	}

	c.logger.Info("role assigned",
		slog.String("room_id", string(roomID)),
		slog.String("identity", string(by)),
		slog.String("role", string(assigned)),
	)

	room, err = c.promote(ctx, room)
	return room, assigned, err
}

// LeaveRoom clears whatever seat the caller holds. The game is kept;
// an active round waits for the seat to be filled again.
func (c *Controller) LeaveRoom(ctx context.Context, roomID model.RoomID, by model.Identity) (*model.Room, error) {
	room, err := c.storage.Transact(ctx, roomID, func(room *model.Room) error {
		if !room.Vacate(by) {
			return errUnchanged
		}
		game.Suspend(room)
		return nil
	})
	if errors.Is(err, errUnchanged) {
		return c.storage.Read(ctx, roomID)
	}
	if err != nil {
		return nil, err
	}

	c.logger.Info("role released",
		slog.String("room_id", string(roomID)),
		slog.String("identity", string(by)),
		slog.String("phase", string(room.State.Phase)),
	)
	return room, nil
}

// AssumeRole takes a seat and starts a fresh game. It is refused while a
// round is active. A seated caller swaps with whoever held the requested
// seat; an unseated caller may only take an empty seat.
func (c *Controller) AssumeRole(ctx context.Context, roomID model.RoomID, by model.Identity, params AssumeParams) (*model.Room, error) {
	if params.Role == "" {
		return nil, model.ErrInvalidRole
	}
	if _, err := model.ParseRole(string(params.Role)); err != nil {
		return nil, err
	}
	if err := game.ValidateSettings(params.Settings); err != nil {
		return nil, err
	}

	var displaced model.Identity
	now := c.clock.Now()
	room, err := c.storage.Transact(ctx, roomID, func(room *model.Room) error {
		displaced = ""
		if room.State.IsActive() {
			return model.ErrActiveRound
		}

		current, seated := room.RoleOf(by)
		occupant := room.Seat(params.Role).Occupant
		switch {
		case !seated && occupant != "":
			return model.ErrRoleTaken
		case seated && current != params.Role && occupant != "":
			room.Assign(params.Role, by, now)
			room.Assign(current, occupant, now)
			displaced = occupant
		default:
			room.Assign(params.Role, by, now)
		}

		if params.DisplayName != "" {
			room.DisplayName = params.DisplayName
		}
		return game.Restart(room, params.Settings)
	})
	if err != nil {
		return nil, err
	}

	c.logger.Info("role assumed",
		slog.String("room_id", string(roomID)),
		slog.String("identity", string(by)),
		slog.String("role", string(params.Role)),
		slog.String("displaced", string(displaced)),
		slog.String("phase", string(room.State.Phase)),
	)
	return room, nil
}

// ResetGame starts a fresh game for a seated caller. Nil settings keep the
// current coin count and compensation.
func (c *Controller) ResetGame(ctx context.Context, roomID model.RoomID, by model.Identity, params ResetParams) (*model.Room, error) {
	room, err := c.storage.Transact(ctx, roomID, func(room *model.Room) error {
		if _, ok := room.RoleOf(by); !ok {
			return model.ErrNotInRoom
		}
		if room.State.IsActive() {
			return model.ErrActiveRound
		}
		return game.Restart(room, params.Apply(room.State.Settings()))
	})
	if err != nil {
		return nil, err
	}

	c.logger.Info("game reset",
		slog.String("room_id", string(roomID)),
		slog.String("identity", string(by)),
		slog.Int("coin_count", room.State.CoinCount),
		slog.Int("compensation", room.State.Compensation),
	)
	return room, nil
}

// promote reacts to a committed seat change by moving a waiting game into play
func (c *Controller) promote(ctx context.Context, room *model.Room) (*model.Room, error) {
	if room.State.Phase != model.PhaseWaiting || !room.BothFilled() {
		return room, nil
	}
	return c.gameController.Promote(ctx, room.ID)
}

// ControllerInterface defines the interface for room operations
type ControllerInterface interface {
	GetRoom(ctx context.Context, roomID model.RoomID) (*model.Room, error)
	CreateRoom(ctx context.Context, by model.Identity, params CreateParams) (*model.Room, error)
	JoinRoom(ctx context.Context, roomID model.RoomID, by model.Identity, hint model.Role) (*model.Room, model.Role, error)
	LeaveRoom(ctx context.Context, roomID model.RoomID, by model.Identity) (*model.Room, error)
	AssumeRole(ctx context.Context, roomID model.RoomID, by model.Identity, params AssumeParams) (*model.Room, error)
	ResetGame(ctx context.Context, roomID model.RoomID, by model.Identity, params ResetParams) (*model.Room, error)
}

// Ensure Controller implements ControllerInterface
var _ ControllerInterface = (*Controller)(nil)
