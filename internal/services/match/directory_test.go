package match

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/lighthouse/internal/dependencies/mocks"
	"github.com/mcoot/lighthouse/internal/model"
)

type DirectorySuite struct {
	suite.Suite
	clock     *mocks.MockClock
	directory *Directory
}

func TestDirectorySuite(t *testing.T) {
	suite.Run(t, new(DirectorySuite))
}

func (s *DirectorySuite) SetupTest() {
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.directory = NewDirectory(s.clock, 30*time.Minute)
}

func user(id string) model.User {
	return model.User{ID: model.UserID(id), Username: id}
}

// Locations

func (s *DirectorySuite) TestSetLocationLastWriteWins() {
	s.directory.SetLocation("u1", "10.0.0.1")
	s.directory.SetLocation("u1", "10.0.0.2")

	loc, ok := s.directory.Location("u1")
	s.True(ok)
	s.Equal("10.0.0.2", loc)
	s.Equal(1, s.directory.LocationCount())
}

func (s *DirectorySuite) TestLocationUnknownUser() {
	_, ok := s.directory.Location("nobody")
	s.False(ok)
	s.Equal(0, s.directory.LocationCount())
}

func (s *DirectorySuite) TestConcurrentSetLocationDifferentUsers() {
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s.directory.SetLocation(model.UserID(fmt.Sprintf("u%d", i)), fmt.Sprintf("loc-%d", i))
		}(i)
	}
	wg.Wait()

	s.Equal(50, s.directory.LocationCount())
	for i := 0; i < 50; i++ {
		loc, ok := s.directory.Location(model.UserID(fmt.Sprintf("u%d", i)))
		s.True(ok)
		s.Equal(fmt.Sprintf("loc-%d", i), loc)
	}
}

func (s *DirectorySuite) TestConcurrentSetLocationSameUserConverges() {
	var wg sync.WaitGroup
	for _, loc := range []string{"a.example", "b.example"} {
		wg.Add(1)
		go func(loc string) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				s.directory.SetLocation("u1", loc)
			}
		}(loc)
	}
	wg.Wait()

	loc, ok := s.directory.Location("u1")
	s.True(ok)
	s.Contains([]string{"a.example", "b.example"}, loc)
}

// Pairings

func (s *DirectorySuite) TestPairingIsOneDirectional() {
	s.directory.RecordPairing("u1", "u2")

	s.True(s.directory.WasRecentlyPaired("u1", "u2"))
	s.False(s.directory.WasRecentlyPaired("u2", "u1"))
	s.False(s.directory.WasRecentlyPaired("u1", "u3"))
}

func (s *DirectorySuite) TestPairingSurvivesTime() {
	s.directory.RecordPairing("u1", "u2")
	s.clock.Advance(48 * time.Hour)
	s.directory.PruneStale()

	s.True(s.directory.WasRecentlyPaired("u1", "u2"))
}

// Rooms

func (s *DirectorySuite) TestRegisterAndFindByHost() {
	s.directory.Register(model.Room{Host: "h", Members: []model.User{user("h"), user("m")}})

	room, ok := s.directory.FindRoomByHost("h", false)
	s.Require().True(ok)
	s.Equal(model.UserID("h"), room.Host)
	s.Equal([]model.UserID{"h", "m"}, room.MemberIDs())
	s.Equal(s.clock.Now(), room.CreatedAt)
}

func (s *DirectorySuite) TestFindByHostIgnoresMembershipUnlessAsked() {
	s.directory.Register(model.Room{Host: "h", Members: []model.User{user("h"), user("m")}})

	_, ok := s.directory.FindRoomByHost("m", false)
	s.False(ok)

	room, ok := s.directory.FindRoomByHost("m", true)
	s.Require().True(ok)
	s.Equal(model.UserID("h"), room.Host)
}

func (s *DirectorySuite) TestRegisterReplacesHostsRoom() {
	s.directory.Register(model.Room{Host: "h", Slot: model.RoomSlot{SlotType: model.SlotTypeUser, SlotID: 1}})
	s.directory.Register(model.Room{Host: "h", Slot: model.RoomSlot{SlotType: model.SlotTypeUser, SlotID: 2}})

	s.Equal(1, s.directory.RoomCount())
	room, _ := s.directory.FindRoomByHost("h", false)
	s.Equal(2, room.Slot.SlotID)
}

func (s *DirectorySuite) TestReturnedRoomIsACopy() {
	s.directory.Register(model.Room{Host: "h", Members: []model.User{user("h")}})

	room, _ := s.directory.FindRoomByHost("h", false)
	room.Members[0].Username = "changed"
	room.State = model.RoomStateDivingIn

	again, _ := s.directory.FindRoomByHost("h", false)
	s.Equal("h", again.Members[0].Username)
	s.Equal(model.RoomStateIdle, again.State)
}

func (s *DirectorySuite) TestUpdateHostedRoom() {
	s.directory.Register(model.Room{Host: "h"})
	s.clock.Advance(time.Minute)

	state := model.RoomStateDivingInWaiting
	s.True(s.directory.UpdateHostedRoom("h", &state))
	s.False(s.directory.UpdateHostedRoom("other", &state))

	room, _ := s.directory.FindRoomByHost("h", false)
	s.Equal(model.RoomStateDivingInWaiting, room.State)
	s.Equal(s.clock.Now(), room.LastUpdated)
}

func (s *DirectorySuite) TestRoomsInRegistrationOrder() {
	s.directory.Register(model.Room{Host: "c"})
	s.directory.Register(model.Room{Host: "a"})
	s.directory.Register(model.Room{Host: "b"})

	var hosts []model.UserID
	for _, r := range s.directory.Rooms() {
		hosts = append(hosts, r.Host)
	}
	s.Equal([]model.UserID{"c", "a", "b"}, hosts)
}

func (s *DirectorySuite) TestStaleRoomsArePruned() {
	s.directory.Register(model.Room{Host: "old"})
	s.clock.Advance(20 * time.Minute)
	s.directory.Register(model.Room{Host: "new"})
	s.clock.Advance(11 * time.Minute)

	_, ok := s.directory.FindRoomByHost("old", false)
	s.False(ok)
	_, ok = s.directory.FindRoomByHost("new", false)
	s.True(ok)
}

func (s *DirectorySuite) TestHostUpdateKeepsRoomAlive() {
	s.directory.Register(model.Room{Host: "h"})
	s.clock.Advance(25 * time.Minute)
	s.True(s.directory.UpdateHostedRoom("h", nil))
	s.clock.Advance(25 * time.Minute)

	s.Equal(0, s.directory.PruneStale())
	s.Equal(1, s.directory.RoomCount())
}

func (s *DirectorySuite) TestZeroTTLNeverPrunes() {
	d := NewDirectory(s.clock, 0)
	d.Register(model.Room{Host: "h"})
	s.clock.Advance(1000 * time.Hour)

	s.Equal(0, d.PruneStale())
	s.Equal(1, d.RoomCount())
}

func (s *DirectorySuite) TestConcurrentRegisterKeepsOneRoomPerHost() {
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s.directory.Register(model.Room{Host: model.UserID(fmt.Sprintf("h%d", i%5))})
		}(i)
	}
	wg.Wait()

	s.Equal(5, s.directory.RoomCount())
}
