package match

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/mcoot/lighthouse/internal/matchproto"
	"github.com/mcoot/lighthouse/internal/model"
	"github.com/mcoot/lighthouse/internal/storage"
)

// Errors
var (
	ErrUnknownPlayer = errors.New("unknown player")
	ErrWorldEmpty    = errors.New("no player locations tracked yet")
	ErrNoRoomFound   = errors.New("no suitable room")
)

// Fixed values the game expects in a FindBestRoom response
const (
	responseBuildVersion = 289
	responseLanguage     = 1
	responseHostMood     = 1
	responseNatType      = 2
)

// Matchmaker creates rooms and picks rooms for players to dive into
type Matchmaker struct {
	storage   storage.Storage
	directory *Directory
	logger    *slog.Logger
}

// NewMatchmaker creates a new Matchmaker
func NewMatchmaker(storage storage.Storage, directory *Directory, logger *slog.Logger) *Matchmaker {
	return &Matchmaker{
		storage:   storage,
		directory: directory,
		logger:    logger,
	}
}

// CreateRoom registers a room for host with the named players as members,
// in the order given. Every name must resolve or nothing is registered.
func (m *Matchmaker) CreateRoom(ctx context.Context, host model.User, slot model.RoomSlot, players []string) (*model.Room, error) {
	if m.directory.LocationCount() < 1 {
		return nil, ErrWorldEmpty
	}

	members := make([]model.User, 0, len(players))
	for _, name := range players {
		user, err := m.storage.GetUserByUsername(ctx, name)
		if err != nil {
			if errors.Is(err, model.ErrUserNotFound) {
				return nil, fmt.Errorf("%w: %q", ErrUnknownPlayer, name)
			}
			return nil, fmt.Errorf("resolve player %q: %w", name, err)
		}
		members = append(members, *user)
	}

	m.directory.Register(model.Room{
		Host:    host.ID,
		Members: members,
		Slot:    slot,
		State:   model.RoomStateIdle,
	})

	room, _ := m.directory.FindRoomByHost(host.ID, false)
	m.logger.Info("room created",
		slog.String("host", host.Username),
		slog.Int("members", len(members)),
		slog.Int("slot_type", int(slot.SlotType)),
		slog.Int("slot_id", slot.SlotID),
	)
	return room, nil
}

// FindBestRoom picks a room for requester to join. Rooms the requester
// hosts or already belongs to are never candidates. Rooms with fewer
// recently paired players rank first, then rooms waiting for players,
// then the oldest registration. The requester is recorded as paired with
// everyone in the chosen room.
func (m *Matchmaker) FindBestRoom(requester model.User, location string) (*matchproto.FindBestRoomResponse, bool) {
	if m.directory.LocationCount() < 2 {
		return nil, false
	}

	type candidate struct {
		room   model.Room
		paired int
		order  int
	}

	var candidates []candidate
	for i, room := range m.directory.Rooms() {
		if room.HasMember(requester.ID) {
			continue
		}
		paired := 0
		for _, id := range roomUserIDs(room) {
			if m.directory.WasRecentlyPaired(requester.ID, id) {
				paired++
			}
		}
		candidates = append(candidates, candidate{room: room, paired: paired, order: i})
	}
	if len(candidates) == 0 {
		return nil, false
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.paired != b.paired {
			return a.paired < b.paired
		}
		aWaiting := a.room.State == model.RoomStateDivingInWaiting
		bWaiting := b.room.State == model.RoomStateDivingInWaiting
		if aWaiting != bWaiting {
			return aWaiting
		}
		return a.order < b.order
	})

	chosen := candidates[0].room
	for _, id := range roomUserIDs(chosen) {
		m.directory.RecordPairing(requester.ID, id)
	}

	return m.buildResponse(chosen, requester, location), true
}

// ApplyPlayerUpdate sets the state of the room caller hosts. Callers who
// host no room are ignored.
func (m *Matchmaker) ApplyPlayerUpdate(caller model.User, state *model.RoomState) {
	if !m.directory.UpdateHostedRoom(caller.ID, state) || state == nil {
		return
	}
	m.logger.Debug("room state updated",
		slog.String("host", caller.Username),
		slog.String("state", state.String()),
	)
}

func (m *Matchmaker) buildResponse(room model.Room, requester model.User, location string) *matchproto.FindBestRoomResponse {
	players := make([]matchproto.Player, 0, len(room.Members)+1)
	locations := make([]string, 0, len(room.Members)+1)
	for _, member := range room.Members {
		players = append(players, matchproto.Player{PlayerID: member.Username, MatchingRes: 0})
		if loc, ok := m.directory.Location(member.ID); ok {
			locations = append(locations, loc)
		}
	}
	players = append(players, matchproto.Player{PlayerID: requester.Username, MatchingRes: 1})
	locations = append(locations, location)

	return &matchproto.FindBestRoomResponse{
		Players:            players,
		Slots:              [][]int{{int(room.Slot.SlotType), room.Slot.SlotID}},
		RoomState:          room.State,
		HostMood:           responseHostMood,
		Location:           locations,
		BuildVersion:       responseBuildVersion,
		Language:           responseLanguage,
		FirstSeenTimestamp: room.CreatedAt.UnixMilli(),
		LastSeenTimestamp:  room.LastUpdated.UnixMilli(),
		NatType:            []int{responseNatType},
		Friends:            []string{},
		Blocked:            []string{},
		JoinedPlayers:      []string{},
	}
}

// roomUserIDs returns the host followed by the members, without duplicates
func roomUserIDs(room model.Room) []model.UserID {
	ids := []model.UserID{room.Host}
	for _, id := range room.MemberIDs() {
		if id != room.Host {
			ids = append(ids, id)
		}
	}
	return ids
}
