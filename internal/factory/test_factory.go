package factory

import (
	"time"

	"github.com/mcoot/gameofchests/internal/dependencies/mocks"
	"github.com/mcoot/gameofchests/internal/services/identity"
	"github.com/mcoot/gameofchests/internal/storage"
	"github.com/mcoot/gameofchests/internal/storage/memory"
	"github.com/mcoot/gameofchests/internal/testutil"
)

// TestSecret signs tokens issued by test apps
var TestSecret = []byte("test-secret")

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock  *mocks.MockClock
	MockIDs    *mocks.MockIDs
	MockRandom *mocks.MockRandom
	Tokens     *identity.TokenProvider
}

// NewTestApp creates an App over in-memory storage with mocked dependencies
func NewTestApp() *TestApp {
	return NewTestAppWithStorage(memory.New())
}

// NewTestAppWithStorage creates a test App over store
func NewTestAppWithStorage(store storage.Storage) *TestApp {
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockIDs := mocks.NewMockIDs()
	mockRandom := mocks.NewMockRandom()

	tokens, err := identity.NewTokenProvider(identity.Config{Secret: TestSecret}, mockClock, mockIDs)
	if err != nil {
		panic(err)
	}

	app := newWithDependencies(store, mockClock, mockIDs, mockRandom, tokens, testutil.NopLogger())

	return &TestApp{
		App:        app,
		MockClock:  mockClock,
		MockIDs:    mockIDs,
		MockRandom: mockRandom,
		Tokens:     tokens,
	}
}
