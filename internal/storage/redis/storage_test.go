package redis

import (
	"context"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/lighthouse/internal/model"
)

type StorageSuite struct {
	suite.Suite
	mini    *miniredis.Miniredis
	storage *Storage
	ctx     context.Context
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.mini = miniredis.RunT(s.T())

	client := redis.NewClient(&redis.Options{
		Addr: s.mini.Addr(),
	})

	s.storage = NewWithClient(client, DefaultConfig())
	s.ctx = context.Background()
}

func (s *StorageSuite) TearDownTest() {
	if s.storage != nil {
		_ = s.storage.Close()
	}
	if s.mini != nil {
		s.mini.Close()
	}
}

// User tests

func (s *StorageSuite) TestSaveAndGetUser() {
	user := &model.User{
		ID:           "user-1",
		Username:     "alice",
		PasswordHash: "hash",
		Location:     model.Location{X: 3, Y: 4},
		CreatedAt:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}

	s.Require().NoError(s.storage.SaveUser(s.ctx, user))

	retrieved, err := s.storage.GetUser(s.ctx, "user-1")
	s.Require().NoError(err)
	s.Equal("alice", retrieved.Username)
	s.Equal(model.Location{X: 3, Y: 4}, retrieved.Location)

	byName, err := s.storage.GetUserByUsername(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal(model.UserID("user-1"), byName.ID)
}

func (s *StorageSuite) TestUsernameBelongsToOneUser() {
	s.Require().NoError(s.storage.SaveUser(s.ctx, &model.User{ID: "user-1", Username: "alice"}))

	err := s.storage.SaveUser(s.ctx, &model.User{ID: "user-2", Username: "alice"})
	s.ErrorIs(err, model.ErrUserExists)

	// Saving the owner again is an update
	s.NoError(s.storage.SaveUser(s.ctx, &model.User{ID: "user-1", Username: "alice", Location: model.Location{X: 1}}))

	byName, err := s.storage.GetUserByUsername(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal(model.UserID("user-1"), byName.ID)
	s.Equal(1, byName.Location.X)
}

func (s *StorageSuite) TestConcurrentUsernameClaimsOneWins() {
	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := model.UserID("user-" + strconv.Itoa(i))
			errs[i] = s.storage.SaveUser(s.ctx, &model.User{ID: id, Username: "alice"})
		}(i)
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		s.ErrorIs(err, model.ErrUserExists)
	}
	s.Equal(1, ok)
}

func (s *StorageSuite) TestGetUserNotFound() {
	_, err := s.storage.GetUser(s.ctx, "nonexistent")
	s.ErrorIs(err, model.ErrUserNotFound)

	_, err = s.storage.GetUserByUsername(s.ctx, "nobody")
	s.ErrorIs(err, model.ErrUserNotFound)
}

func (s *StorageSuite) TestUserKeysHaveNoTTL() {
	_ = s.storage.SaveUser(s.ctx, &model.User{ID: "user-1", Username: "alice"})

	s.Equal(time.Duration(0), s.mini.TTL(userKey("user-1")))
	s.True(s.mini.Exists(usernameIndexKey("alice")))
}

// Game token tests

func (s *StorageSuite) TestGameTokenLookupBySecret() {
	token := &model.GameToken{
		ID:              "tok-1",
		UserID:          "user-1",
		Secret:          "secret-1",
		NetworkLocation: "127.0.0.1:3074",
		ClientVersion:   model.GameVersionLBP2,
	}
	s.Require().NoError(s.storage.SaveGameToken(s.ctx, token))

	retrieved, err := s.storage.GetGameTokenBySecret(s.ctx, "secret-1")
	s.Require().NoError(err)
	s.Equal(model.TokenID("tok-1"), retrieved.ID)
	s.Equal(model.GameVersionLBP2, retrieved.ClientVersion)
	s.False(retrieved.Approved)
}

func (s *StorageSuite) TestGameTokenNotFound() {
	_, err := s.storage.GetGameTokenBySecret(s.ctx, "missing")
	s.ErrorIs(err, model.ErrTokenNotFound)

	err = s.storage.ApproveGameToken(s.ctx, "missing")
	s.ErrorIs(err, model.ErrTokenNotFound)
}

func (s *StorageSuite) TestApproveGameTokenOnlyOnce() {
	_ = s.storage.SaveGameToken(s.ctx, &model.GameToken{ID: "tok-1", UserID: "user-1", Secret: "secret-1"})

	s.Require().NoError(s.storage.ApproveGameToken(s.ctx, "tok-1"))
	s.ErrorIs(s.storage.ApproveGameToken(s.ctx, "tok-1"), model.ErrTokenAlreadyApproved)

	token, err := s.storage.GetGameToken(s.ctx, "tok-1")
	s.Require().NoError(err)
	s.True(token.Approved)
}

func (s *StorageSuite) TestConcurrentFlagUpdatesAreNotLost() {
	_ = s.storage.SaveGameToken(s.ctx, &model.GameToken{ID: "tok-1", UserID: "user-1", Secret: "secret-1"})

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		_ = s.storage.ApproveGameToken(s.ctx, "tok-1")
	}()
	go func() {
		defer wg.Done()
		_ = s.storage.MarkGameTokenUsed(s.ctx, "tok-1")
	}()
	wg.Wait()

	token, err := s.storage.GetGameToken(s.ctx, "tok-1")
	s.Require().NoError(err)
	s.True(token.Approved)
	s.True(token.Used)
}

func (s *StorageSuite) TestListAndDeleteGameTokens() {
	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	_ = s.storage.SaveGameToken(s.ctx, &model.GameToken{ID: "old", UserID: "user-1", Secret: "a", IssuedAt: base})
	_ = s.storage.SaveGameToken(s.ctx, &model.GameToken{ID: "new", UserID: "user-1", Secret: "b", IssuedAt: base.Add(time.Minute)})

	tokens, err := s.storage.ListGameTokensForUser(s.ctx, "user-1")
	s.Require().NoError(err)
	s.Require().Len(tokens, 2)
	s.Equal(model.TokenID("new"), tokens[0].ID)

	s.Require().NoError(s.storage.DeleteGameToken(s.ctx, "new"))

	tokens, err = s.storage.ListGameTokensForUser(s.ctx, "user-1")
	s.Require().NoError(err)
	s.Len(tokens, 1)
	s.False(s.mini.Exists(gameSecretIndexKey("b")))
}

// Web token tests

func (s *StorageSuite) TestWebToken() {
	_ = s.storage.SaveWebToken(s.ctx, &model.WebToken{ID: "web-1", UserID: "user-1", Secret: "web-secret"})

	token, err := s.storage.GetWebTokenBySecret(s.ctx, "web-secret")
	s.Require().NoError(err)
	s.Equal(model.UserID("user-1"), token.UserID)

	_, err = s.storage.GetWebTokenBySecret(s.ctx, "other")
	s.ErrorIs(err, model.ErrTokenNotFound)
}

// Slot tests

func (s *StorageSuite) TestSlotLifecycle() {
	slot := &model.Slot{
		CreatorID: "user-1",
		Name:      "My Level",
		RootLevel: "root",
		Resources: []string{"root", "icon"},
	}
	s.Require().NoError(s.storage.CreateSlot(s.ctx, slot))
	s.Equal(model.SlotID(1), slot.ID)

	count, err := s.storage.CountSlotsByCreator(s.ctx, "user-1")
	s.Require().NoError(err)
	s.Equal(1, count)

	slot.Name = "Renamed"
	s.Require().NoError(s.storage.UpdateSlot(s.ctx, slot))

	retrieved, err := s.storage.GetSlot(s.ctx, slot.ID)
	s.Require().NoError(err)
	s.Equal("Renamed", retrieved.Name)
	s.Equal([]string{"root", "icon"}, retrieved.Resources)

	s.Require().NoError(s.storage.DeleteSlot(s.ctx, slot.ID))
	_, err = s.storage.GetSlot(s.ctx, slot.ID)
	s.ErrorIs(err, model.ErrSlotNotFound)

	count, _ = s.storage.CountSlotsByCreator(s.ctx, "user-1")
	s.Equal(0, count)
}

func (s *StorageSuite) TestUpdateMissingSlot() {
	err := s.storage.UpdateSlot(s.ctx, &model.Slot{ID: 42})
	s.ErrorIs(err, model.ErrSlotNotFound)
}
