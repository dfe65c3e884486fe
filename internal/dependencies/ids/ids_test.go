package ids

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUUIDGenerator(t *testing.T) {
	g := New()

	a, b := g.RoomID(), g.RoomID()
	assert.NotEqual(t, a, b)
	_, err := uuid.Parse(string(a))
	require.NoError(t, err)

	id := g.Identity()
	_, err = uuid.Parse(string(id))
	require.NoError(t, err)
}
