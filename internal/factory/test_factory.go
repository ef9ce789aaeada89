package factory

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/mcoot/screenpong/internal/dependencies/mocks"
	"github.com/mcoot/screenpong/internal/model"
	"github.com/mcoot/screenpong/internal/storage/memory"
	"github.com/mcoot/screenpong/internal/testutil"
)

// TestScreens are the screens every TestApp is built with
var TestScreens = []model.ScreenID{"display_1", "display_2"}

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock  *mocks.MockClock
	MockRandom *mocks.MockRandom

	// MemoryStorage is the same store as App.Storage
	MemoryStorage *memory.Storage
}

// NewTestApp creates an App configured for testing with mocked dependencies.
// Match ids are match-1, match-2, ...
func NewTestApp() *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()

	var next atomic.Int64
	newID := func() model.MatchID {
		return model.MatchID(fmt.Sprintf("match-%d", next.Add(1)))
	}

	app := newWithDependencies(store, mockClock, mockRandom, newID,
		model.DefaultGameConfig(), TestScreens, nil, testutil.NopLogger())

	return &TestApp{
		App:           app,
		MockClock:     mockClock,
		MockRandom:    mockRandom,
		MemoryStorage: store,
	}
}
