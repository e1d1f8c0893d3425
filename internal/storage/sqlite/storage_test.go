package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/lighthouse/internal/model"
)

type StorageSuite struct {
	suite.Suite
	path    string
	storage *Storage
	ctx     context.Context
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.path = filepath.Join(s.T().TempDir(), "lighthouse.db")
	store, err := Open(s.path)
	s.Require().NoError(err)
	s.storage = store
	s.ctx = context.Background()
}

func (s *StorageSuite) TearDownTest() {
	if s.storage != nil {
		_ = s.storage.Close()
	}
}

func (s *StorageSuite) TestOpenRequiresPath() {
	_, err := Open("  ")
	s.Error(err)
}

func (s *StorageSuite) TestReopenSkipsAppliedMigrations() {
	s.Require().NoError(s.storage.Close())

	store, err := Open(s.path)
	s.Require().NoError(err)
	s.storage = store
}

// User tests

func (s *StorageSuite) TestSaveAndGetUser() {
	created := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	user := &model.User{
		ID:           "user-1",
		Username:     "alice",
		PasswordHash: "$2a$hash",
		Location:     model.Location{X: 5, Y: -7},
		CreatedAt:    created,
	}
	s.Require().NoError(s.storage.SaveUser(s.ctx, user))

	retrieved, err := s.storage.GetUserByUsername(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal(model.UserID("user-1"), retrieved.ID)
	s.Equal(model.Location{X: 5, Y: -7}, retrieved.Location)
	s.True(created.Equal(retrieved.CreatedAt))

	// Saving again updates in place
	user.Location = model.Location{X: 1, Y: 1}
	s.Require().NoError(s.storage.SaveUser(s.ctx, user))
	retrieved, err = s.storage.GetUser(s.ctx, "user-1")
	s.Require().NoError(err)
	s.Equal(model.Location{X: 1, Y: 1}, retrieved.Location)
}

func (s *StorageSuite) TestDuplicateUsername() {
	_ = s.storage.SaveUser(s.ctx, &model.User{ID: "user-1", Username: "alice"})

	err := s.storage.SaveUser(s.ctx, &model.User{ID: "user-2", Username: "alice"})
	s.ErrorIs(err, model.ErrUserExists)
}

func (s *StorageSuite) TestGetUserNotFound() {
	_, err := s.storage.GetUser(s.ctx, "missing")
	s.ErrorIs(err, model.ErrUserNotFound)
}

// Game token tests

func (s *StorageSuite) TestGameTokenFlags() {
	token := &model.GameToken{
		ID:              "tok-1",
		UserID:          "user-1",
		Secret:          "secret-1",
		NetworkLocation: "10.0.0.1:3074",
		ClientVersion:   model.GameVersionLBP1,
		IssuedAt:        time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
	}
	s.Require().NoError(s.storage.SaveGameToken(s.ctx, token))

	retrieved, err := s.storage.GetGameTokenBySecret(s.ctx, "secret-1")
	s.Require().NoError(err)
	s.False(retrieved.Approved)
	s.False(retrieved.Used)
	s.Equal(model.GameVersionLBP1, retrieved.ClientVersion)

	s.Require().NoError(s.storage.ApproveGameToken(s.ctx, "tok-1"))
	s.ErrorIs(s.storage.ApproveGameToken(s.ctx, "tok-1"), model.ErrTokenAlreadyApproved)
	s.ErrorIs(s.storage.ApproveGameToken(s.ctx, "missing"), model.ErrTokenNotFound)

	s.Require().NoError(s.storage.MarkGameTokenUsed(s.ctx, "tok-1"))
	s.ErrorIs(s.storage.MarkGameTokenUsed(s.ctx, "missing"), model.ErrTokenNotFound)

	retrieved, err = s.storage.GetGameToken(s.ctx, "tok-1")
	s.Require().NoError(err)
	s.True(retrieved.Approved)
	s.True(retrieved.Used)
}

func (s *StorageSuite) TestListAndDeleteGameTokens() {
	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	_ = s.storage.SaveGameToken(s.ctx, &model.GameToken{ID: "old", UserID: "user-1", Secret: "a", IssuedAt: base})
	_ = s.storage.SaveGameToken(s.ctx, &model.GameToken{ID: "new", UserID: "user-1", Secret: "b", IssuedAt: base.Add(time.Hour)})

	tokens, err := s.storage.ListGameTokensForUser(s.ctx, "user-1")
	s.Require().NoError(err)
	s.Require().Len(tokens, 2)
	s.Equal(model.TokenID("new"), tokens[0].ID)

	s.Require().NoError(s.storage.DeleteGameToken(s.ctx, "old"))
	tokens, _ = s.storage.ListGameTokensForUser(s.ctx, "user-1")
	s.Len(tokens, 1)
}

// Web token tests

func (s *StorageSuite) TestWebToken() {
	_ = s.storage.SaveWebToken(s.ctx, &model.WebToken{ID: "web-1", UserID: "user-1", Secret: "web-secret"})

	token, err := s.storage.GetWebTokenBySecret(s.ctx, "web-secret")
	s.Require().NoError(err)
	s.Equal(model.UserID("user-1"), token.UserID)

	_, err = s.storage.GetWebTokenBySecret(s.ctx, "nope")
	s.ErrorIs(err, model.ErrTokenNotFound)
}

// Slot tests

func (s *StorageSuite) TestSlotLifecycle() {
	slot := &model.Slot{
		CreatorID:  "user-1",
		Name:       "Level",
		RootLevel:  "root",
		Resources:  []string{"root", "tex"},
		Location:   model.Location{X: 1, Y: 2},
		MinPlayers: 1,
		MaxPlayers: 4,
	}
	s.Require().NoError(s.storage.CreateSlot(s.ctx, slot))
	s.NotZero(slot.ID)

	count, err := s.storage.CountSlotsByCreator(s.ctx, "user-1")
	s.Require().NoError(err)
	s.Equal(1, count)

	slot.Resources = []string{"root"}
	s.Require().NoError(s.storage.UpdateSlot(s.ctx, slot))

	retrieved, err := s.storage.GetSlot(s.ctx, slot.ID)
	s.Require().NoError(err)
	s.Equal([]string{"root"}, retrieved.Resources)
	s.Equal(model.UserID("user-1"), retrieved.CreatorID)

	s.Require().NoError(s.storage.DeleteSlot(s.ctx, slot.ID))
	_, err = s.storage.GetSlot(s.ctx, slot.ID)
	s.ErrorIs(err, model.ErrSlotNotFound)
	s.ErrorIs(s.storage.UpdateSlot(s.ctx, slot), model.ErrSlotNotFound)
}
