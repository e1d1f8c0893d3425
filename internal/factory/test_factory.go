package factory

import (
	"context"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/lighthouse/internal/dependencies/mocks"
	"github.com/mcoot/lighthouse/internal/metrics"
	"github.com/mcoot/lighthouse/internal/model"
	"github.com/mcoot/lighthouse/internal/services/resource"
	"github.com/mcoot/lighthouse/internal/storage/memory"
	"github.com/mcoot/lighthouse/internal/testutil"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock  *mocks.MockClock
	MockRandom *mocks.MockRandom
}

// NewTestApp creates an App configured for testing with mocked dependencies
func NewTestApp(cfg Config) *TestApp {
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()

	app, err := newWithDependencies(dependencies{
		store:     memory.New(),
		resources: resource.NewMemoryStore(),
		clock:     mockClock,
		random:    mockRandom,
		metrics:   metrics.New(),
		logger:    testutil.NopLogger(),
	}, cfg)
	if err != nil {
		panic(err)
	}

	return &TestApp{
		App:        app,
		MockClock:  mockClock,
		MockRandom: mockRandom,
	}
}

// CreateUser stores a user with a cheaply hashed password
func (t *TestApp) CreateUser(ctx context.Context, id, username, password string) (*model.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		return nil, err
	}
	user := &model.User{
		ID:           model.UserID(id),
		Username:     username,
		PasswordHash: string(hash),
		CreatedAt:    t.MockClock.Now(),
	}
	if err := t.Storage.SaveUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
