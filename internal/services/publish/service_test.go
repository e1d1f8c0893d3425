package publish

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/lighthouse/internal/dependencies/mocks"
	"github.com/mcoot/lighthouse/internal/model"
	"github.com/mcoot/lighthouse/internal/services/resource"
	"github.com/mcoot/lighthouse/internal/storage/memory"
	"github.com/mcoot/lighthouse/internal/testutil"
)

type ServiceSuite struct {
	suite.Suite
	storage   *memory.Storage
	resources *resource.MemoryStore
	clock     *mocks.MockClock
	service   *Service
	alice     *model.User
	bob       *model.User
	ctx       context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.storage = memory.New()
	s.resources = resource.NewMemoryStore()
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.ctx = context.Background()

	gate, err := resource.NewGate(s.resources, resource.DefaultConfig(), nil, testutil.NopLogger())
	s.Require().NoError(err)
	s.service = New(s.storage, gate, s.clock, testutil.NopLogger(), Config{EntitledSlots: 2})

	s.alice = &model.User{ID: "alice-id", Username: "alice"}
	s.bob = &model.User{ID: "bob-id", Username: "bob"}
	s.Require().NoError(s.storage.SaveUser(s.ctx, s.alice))
	s.Require().NoError(s.storage.SaveUser(s.ctx, s.bob))
}

func (s *ServiceSuite) draft(name string) *Draft {
	return &Draft{
		Slot: model.Slot{
			Name:      name,
			RootLevel: "root",
			Resources: []string{"root", "tex"},
			IconHash:  "icon",
			Location:  model.Location{X: 10, Y: 20},
		},
		HasLocation: true,
	}
}

func (s *ServiceSuite) publish(user *model.User, name string) *model.Slot {
	slot, err := s.service.Publish(s.ctx, user, model.GameVersionLBP2, s.draft(name))
	s.Require().NoError(err)
	return slot
}

// StartPublish tests

func (s *ServiceSuite) TestStartPublishListsMissingResources() {
	s.Require().NoError(s.resources.Write(s.ctx, "tex", []byte("TEX")))

	missing, err := s.service.StartPublish(s.ctx, s.alice, s.draft("level"))
	s.Require().NoError(err)
	s.Equal([]string{"root", "icon"}, missing)
}

func (s *ServiceSuite) TestStartPublishDefaultsToRootLevel() {
	d := s.draft("level")
	d.Slot.Resources = nil
	d.Slot.IconHash = ""

	missing, err := s.service.StartPublish(s.ctx, s.alice, d)
	s.Require().NoError(err)
	s.Equal([]string{"root"}, missing)
}

func (s *ServiceSuite) TestStartPublishNothingMissing() {
	for _, h := range []string{"root", "tex", "icon"} {
		s.Require().NoError(s.resources.Write(s.ctx, h, []byte("PLN")))
	}

	missing, err := s.service.StartPublish(s.ctx, s.alice, s.draft("level"))
	s.Require().NoError(err)
	s.Empty(missing)
}

func (s *ServiceSuite) TestStartPublishRequiresRootLevel() {
	d := s.draft("level")
	d.Slot.RootLevel = ""

	_, err := s.service.StartPublish(s.ctx, s.alice, d)
	s.ErrorIs(err, ErrMissingRootLevel)
}

func (s *ServiceSuite) TestStartPublishQuota() {
	s.publish(s.alice, "one")
	s.publish(s.alice, "two")

	_, err := s.service.StartPublish(s.ctx, s.alice, s.draft("three"))
	s.ErrorIs(err, ErrQuotaExceeded)

	_, err = s.service.StartPublish(s.ctx, s.bob, s.draft("bobs"))
	s.NoError(err)
}

func (s *ServiceSuite) TestStartRepublishChecksOwner() {
	slot := s.publish(s.alice, "one")
	d := s.draft("one")
	d.Slot.ID = slot.ID

	_, err := s.service.StartPublish(s.ctx, s.bob, d)
	s.ErrorIs(err, ErrNotOwner)

	d.Slot.ID = 999
	_, err = s.service.StartPublish(s.ctx, s.alice, d)
	s.ErrorIs(err, model.ErrSlotNotFound)
}

// Publish tests

func (s *ServiceSuite) TestPublishNewSlot() {
	d := s.draft("level")
	d.Slot.MinPlayers = 0

	slot, err := s.service.Publish(s.ctx, s.alice, model.GameVersionLBP2, d)
	s.Require().NoError(err)

	s.NotZero(slot.ID)
	s.Equal(s.alice.ID, slot.CreatorID)
	s.Equal(model.GameVersionLBP2, slot.GameVersion)
	s.Equal(DefaultMinPlayers, slot.MinPlayers)
	s.Equal(DefaultMaxPlayers, slot.MaxPlayers)
	s.Equal(s.clock.Now(), slot.FirstUpload)

	stored, err := s.storage.GetSlot(s.ctx, slot.ID)
	s.Require().NoError(err)
	s.Equal("level", stored.Name)
	s.Equal(model.Location{X: 10, Y: 20}, stored.Location)
}

func (s *ServiceSuite) TestPublishKeepsPlayerCounts() {
	d := s.draft("level")
	d.Slot.MinPlayers = 2
	d.Slot.MaxPlayers = 3

	slot, err := s.service.Publish(s.ctx, s.alice, model.GameVersionLBP1, d)
	s.Require().NoError(err)
	s.Equal(2, slot.MinPlayers)
	s.Equal(3, slot.MaxPlayers)
}

func (s *ServiceSuite) TestPublishRequiresLocation() {
	d := s.draft("level")
	d.HasLocation = false

	_, err := s.service.Publish(s.ctx, s.alice, model.GameVersionLBP2, d)
	s.ErrorIs(err, ErrMissingLocation)
}

func (s *ServiceSuite) TestRepublishUpdatesInPlace() {
	slot := s.publish(s.alice, "v1")
	firstUpload := slot.FirstUpload
	s.clock.Advance(time.Hour)

	d := s.draft("v2")
	d.Slot.ID = slot.ID
	d.Slot.Location = model.Location{X: 1, Y: 2}
	updated, err := s.service.Publish(s.ctx, s.alice, model.GameVersionLBP3, d)
	s.Require().NoError(err)

	s.Equal(slot.ID, updated.ID)
	s.Equal(firstUpload, updated.FirstUpload)
	s.Equal(s.clock.Now(), updated.LastUpdated)

	stored, _ := s.storage.GetSlot(s.ctx, slot.ID)
	s.Equal("v2", stored.Name)
	s.Equal(model.Location{X: 1, Y: 2}, stored.Location)
	s.Equal(model.GameVersionLBP3, stored.GameVersion)

	count, _ := s.storage.CountSlotsByCreator(s.ctx, s.alice.ID)
	s.Equal(1, count)
}

func (s *ServiceSuite) TestRepublishAtQuotaIsAllowed() {
	first := s.publish(s.alice, "one")
	s.publish(s.alice, "two")

	d := s.draft("one again")
	d.Slot.ID = first.ID
	_, err := s.service.Publish(s.ctx, s.alice, model.GameVersionLBP2, d)
	s.NoError(err)
}

func (s *ServiceSuite) TestRepublishSomeoneElsesSlot() {
	slot := s.publish(s.alice, "mine")
	d := s.draft("stolen")
	d.Slot.ID = slot.ID

	_, err := s.service.Publish(s.ctx, s.bob, model.GameVersionLBP2, d)
	s.ErrorIs(err, ErrNotOwner)

	stored, _ := s.storage.GetSlot(s.ctx, slot.ID)
	s.Equal("mine", stored.Name)
}

// Unpublish tests

func (s *ServiceSuite) TestUnpublish() {
	slot := s.publish(s.alice, "gone")

	s.Require().NoError(s.service.Unpublish(s.ctx, s.alice, slot.ID))

	_, err := s.storage.GetSlot(s.ctx, slot.ID)
	s.ErrorIs(err, model.ErrSlotNotFound)
}

func (s *ServiceSuite) TestUnpublishNotOwner() {
	slot := s.publish(s.alice, "kept")

	s.ErrorIs(s.service.Unpublish(s.ctx, s.bob, slot.ID), ErrNotOwner)
	_, err := s.storage.GetSlot(s.ctx, slot.ID)
	s.NoError(err)
}

func (s *ServiceSuite) TestUnpublishMissing() {
	s.ErrorIs(s.service.Unpublish(s.ctx, s.alice, 42), model.ErrSlotNotFound)
}

func (s *ServiceSuite) TestUnpublishFreesQuota() {
	first := s.publish(s.alice, "one")
	s.publish(s.alice, "two")
	s.Require().NoError(s.service.Unpublish(s.ctx, s.alice, first.ID))

	_, err := s.service.StartPublish(s.ctx, s.alice, s.draft("three"))
	s.NoError(err)
}
