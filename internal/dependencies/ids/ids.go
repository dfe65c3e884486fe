package ids

import (
	"github.com/google/uuid"

	"github.com/mcoot/gameofchests/internal/model"
)

// Generator hands out identifiers that can be mocked for testing
type Generator interface {
	// RoomID returns a fresh room identifier
	RoomID() model.RoomID

	// Identity returns a fresh anonymous participant identity
	Identity() model.Identity
}

// UUIDGenerator implements Generator with random UUIDs
type UUIDGenerator struct{}

// New creates a new UUIDGenerator
func New() *UUIDGenerator {
	return &UUIDGenerator{}
}

// RoomID returns a random UUID as a room id
func (g *UUIDGenerator) RoomID() model.RoomID {
	return model.RoomID(uuid.NewString())
}

// Identity returns a random UUID as an identity
func (g *UUIDGenerator) Identity() model.Identity {
	return model.Identity(uuid.NewString())
}
