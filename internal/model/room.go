package model

import (
	"encoding/json"
	"time"
)

// Identity is the opaque id of a connected participant
type Identity string

// Short returns the display prefix of the identity
func (i Identity) Short() string {
	if len(i) <= 8 {
		return string(i)
	}
	return string(i[:8])
}

// RoomID uniquely identifies a room
type RoomID string

// Role is one of the two seats in a room
type Role string

const (
	RolePresenter Role = "presenter" // Chooses which basket is offered
	RolePlacer    Role = "placer"    // Places the next coin
)

// ParseRole validates a role name. An empty string is returned as an empty role.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case "", RolePresenter, RolePlacer:
		return Role(s), nil
	}
	return "", ErrInvalidRole
}

// Other returns the opposite role
func (r Role) Other() Role {
	if r == RolePresenter {
		return RolePlacer
	}
	return RolePresenter
}

// Seat is one role slot of a room
type Seat struct {
	Occupant Identity
	JoinedAt time.Time
}

// IsEmpty returns true if nobody holds the seat
func (s Seat) IsEmpty() bool {
	return s.Occupant == ""
}

// Room pairs two roles with one game
type Room struct {
	ID          RoomID
	Creator     Identity
	Presenter   Seat
	Placer      Seat
	DisplayName string
	State       *GameState

	// Version is assigned by the store and increases with every commit
	Version   int64
	CreatedAt time.Time
}

// Seat returns a pointer to the seat for role
func (r *Room) Seat(role Role) *Seat {
	if role == RolePresenter {
		return &r.Presenter
	}
	return &r.Placer
}

// RoleOf returns the role held by id, if any
func (r *Room) RoleOf(id Identity) (Role, bool) {
	switch {
	case id == "":
		return "", false
	case r.Presenter.Occupant == id:
		return RolePresenter, true
	case r.Placer.Occupant == id:
		return RolePlacer, true
	}
	return "", false
}

// BothFilled returns true when both roles are occupied
func (r *Room) BothFilled() bool {
	return !r.Presenter.IsEmpty() && !r.Placer.IsEmpty()
}

// Assign seats id in role, clearing any other seat id held
func (r *Room) Assign(role Role, id Identity, at time.Time) {
	r.Seat(role.Other()).vacateIf(id)
	*r.Seat(role) = Seat{Occupant: id, JoinedAt: at}
}

// Vacate clears every seat held by id and reports whether any was held
func (r *Room) Vacate(id Identity) bool {
	a := r.Presenter.vacateIf(id)
	b := r.Placer.vacateIf(id)
	return a || b
}

func (s *Seat) vacateIf(id Identity) bool {
	if s.Occupant != id || id == "" {
		return false
	}
	*s = Seat{}
	return true
}

// Guest returns the role of the non-creator participant. When the creator is
// not seated the later joiner is the guest. ok is false if no seat is filled.
func (r *Room) Guest() (Role, bool) {
	if r.Presenter.IsEmpty() && r.Placer.IsEmpty() {
		return "", false
	}
	if !r.Presenter.IsEmpty() && r.Presenter.Occupant != r.Creator && r.Placer.Occupant == r.Creator {
		return RolePresenter, true
	}
	if !r.Placer.IsEmpty() && r.Placer.Occupant != r.Creator && r.Presenter.Occupant == r.Creator {
		return RolePlacer, true
	}
	switch {
	case r.Presenter.IsEmpty():
		return RolePlacer, true
	case r.Placer.IsEmpty():
		return RolePresenter, true
	case r.Presenter.JoinedAt.After(r.Placer.JoinedAt):
		return RolePresenter, true
	}
	return RolePlacer, true
}

// EnsureState initializes a missing game with default settings and reports
// whether it did so
func (r *Room) EnsureState() bool {
	if r.State != nil {
		return false
	}
	r.State = NewGameState(DefaultCoinCount, DefaultCompensation)
	if r.BothFilled() {
		r.State.Phase = PhaseOffering
	}
	return true
}

// Clone returns a deep copy
func (r *Room) Clone() *Room {
	if r == nil {
		return nil
	}
	c := *r
	c.State = r.State.Clone()
	return &c
}

type roomRecord struct {
	ID                RoomID     `json:"id"`
	Creator           Identity   `json:"creator"`
	Presenter         *Identity  `json:"presenter"`
	Placer            *Identity  `json:"placer"`
	PresenterJoinedAt *time.Time `json:"presenterJoinedAt"`
	PlacerJoinedAt    *time.Time `json:"placerJoinedAt"`
	DisplayName       string     `json:"displayName,omitempty"`
	State             *GameState `json:"state"`
	Version           int64      `json:"version"`
	CreatedAt         time.Time  `json:"createdAt"`
}

func seatFields(s Seat) (*Identity, *time.Time) {
	if s.IsEmpty() {
		return nil, nil
	}
	id, at := s.Occupant, s.JoinedAt
	return &id, &at
}

func seatFrom(id *Identity, at *time.Time) Seat {
	if id == nil || *id == "" {
		return Seat{}
	}
	s := Seat{Occupant: *id}
	if at != nil {
		s.JoinedAt = *at
	}
	return s
}

// MarshalJSON writes the persisted room layout, with empty seats as null
func (r Room) MarshalJSON() ([]byte, error) {
	rec := roomRecord{
		ID:          r.ID,
		Creator:     r.Creator,
		DisplayName: r.DisplayName,
		State:       r.State,
		Version:     r.Version,
		CreatedAt:   r.CreatedAt,
	}
	rec.Presenter, rec.PresenterJoinedAt = seatFields(r.Presenter)
	rec.Placer, rec.PlacerJoinedAt = seatFields(r.Placer)
	return json.Marshal(rec)
}

// UnmarshalJSON reads the persisted room layout
func (r *Room) UnmarshalJSON(data []byte) error {
	var rec roomRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return err
	}
	*r = Room{
		ID:          rec.ID,
		Creator:     rec.Creator,
		Presenter:   seatFrom(rec.Presenter, rec.PresenterJoinedAt),
		Placer:      seatFrom(rec.Placer, rec.PlacerJoinedAt),
		DisplayName: rec.DisplayName,
		State:       rec.State,
		Version:     rec.Version,
		CreatedAt:   rec.CreatedAt,
	}
	return nil
}
