package redis

import (
	"fmt"

	"github.com/mcoot/gameofchests/internal/model"
)

// Key prefix for all game-related data
const keyPrefix = "chests"

// roomKey returns the Redis key for a Room
func roomKey(id model.RoomID) string {
	return fmt.Sprintf("%s:rooms:%s", keyPrefix, id)
}

// roomChannel returns the pub/sub channel carrying committed rooms
func roomChannel(id model.RoomID) string {
	return fmt.Sprintf("%s:rooms:%s:updates", keyPrefix, id)
}
