package model

import "errors"

// Common errors used across the application
var (
	// Room errors
	ErrRoomNotFound    = errors.New("room not found")
	ErrRoomFull        = errors.New("room already has two players")
	ErrNoRoleAvailable = errors.New("no role available")
	ErrRoleTaken       = errors.New("role is taken by another player")
	ErrActiveRound     = errors.New("cannot restart while a round is active")
	ErrNotInRoom       = errors.New("player does not hold a role in this room")
	ErrInvalidRole     = errors.New("invalid role")

	// Game errors
	ErrNotPresenter      = errors.New("not the presenter")
	ErrNotPlacer         = errors.New("not the placer")
	ErrAlreadyOffered    = errors.New("a basket is already offered")
	ErrNoBasketOffered   = errors.New("no basket offered")
	ErrGameFinished      = errors.New("game finished")
	ErrGameNotFinished   = errors.New("game is not finished")
	ErrCoinUnavailable   = errors.New("coin not available")
	ErrWaitingForPlayers = errors.New("waiting for both roles to be filled")
	ErrInvalidBasket     = errors.New("invalid basket index")
	ErrInvalidSettings   = errors.New("invalid game settings")

	// Store errors
	ErrConflict         = errors.New("conflicting update, please retry")
	ErrStoreUnavailable = errors.New("store unavailable")

	// Identity errors
	ErrUnauthorized = errors.New("unauthorized")
)
