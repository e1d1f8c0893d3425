package match

import (
	"sort"
	"sync"
	"time"

	"github.com/mcoot/lighthouse/internal/dependencies/clock"
	"github.com/mcoot/lighthouse/internal/model"
)

// Directory is the process-wide matchmaking state: where each user connects
// from, which rooms exist and who was recently paired with whom.
// Each table has its own lock; no operation spans more than one table.
type Directory struct {
	clock   clock.Clock
	roomTTL time.Duration

	locMu     sync.RWMutex
	locations map[model.UserID]string

	pairMu   sync.RWMutex
	pairings map[model.UserID]map[model.UserID]struct{}

	roomMu  sync.Mutex
	rooms   map[model.UserID]*roomEntry
	nextSeq uint64
}

// roomEntry keeps the registration order so searches are deterministic
type roomEntry struct {
	room model.Room
	seq  uint64
}

// NewDirectory creates an empty directory. A zero roomTTL keeps rooms
// until their host replaces them.
func NewDirectory(clock clock.Clock, roomTTL time.Duration) *Directory {
	return &Directory{
		clock:     clock,
		roomTTL:   roomTTL,
		locations: make(map[model.UserID]string),
		pairings:  make(map[model.UserID]map[model.UserID]struct{}),
		rooms:     make(map[model.UserID]*roomEntry),
	}
}

// SetLocation records the network location a user last connected from
func (d *Directory) SetLocation(id model.UserID, location string) {
	d.locMu.Lock()
	d.locations[id] = location
	d.locMu.Unlock()
}

// Location returns a user's last known network location
func (d *Directory) Location(id model.UserID) (string, bool) {
	d.locMu.RLock()
	defer d.locMu.RUnlock()
	loc, ok := d.locations[id]
	return loc, ok
}

// LocationCount returns how many users have reported a location
func (d *Directory) LocationCount() int {
	d.locMu.RLock()
	defer d.locMu.RUnlock()
	return len(d.locations)
}

// RecordPairing notes that id was matched with other. The reverse
// direction is not implied.
func (d *Directory) RecordPairing(id, other model.UserID) {
	d.pairMu.Lock()
	defer d.pairMu.Unlock()

	set, ok := d.pairings[id]
	if !ok {
		set = make(map[model.UserID]struct{})
		d.pairings[id] = set
	}
	set[other] = struct{}{}
}

// WasRecentlyPaired reports whether RecordPairing(id, other) was ever called
func (d *Directory) WasRecentlyPaired(id, other model.UserID) bool {
	d.pairMu.RLock()
	defer d.pairMu.RUnlock()
	_, ok := d.pairings[id][other]
	return ok
}

// Register stores a room under its host, replacing any room the host
// already had
func (d *Directory) Register(room model.Room) {
	now := d.clock.Now()
	if room.CreatedAt.IsZero() {
		room.CreatedAt = now
	}
	if room.LastUpdated.IsZero() {
		room.LastUpdated = now
	}
	room.Members = append([]model.User(nil), room.Members...)

	d.roomMu.Lock()
	d.nextSeq++
	d.rooms[room.Host] = &roomEntry{room: room, seq: d.nextSeq}
	d.roomMu.Unlock()
}

// FindRoomByHost returns a copy of the room hosted by id. With
// includeMembers set it also finds a room id merely belongs to; the
// hosted room wins, then the earliest registered.
func (d *Directory) FindRoomByHost(id model.UserID, includeMembers bool) (*model.Room, bool) {
	d.roomMu.Lock()
	defer d.roomMu.Unlock()
	d.pruneLocked()

	if e, ok := d.rooms[id]; ok {
		return copyRoom(e.room), true
	}
	if !includeMembers {
		return nil, false
	}
	for _, e := range d.sortedLocked() {
		if e.room.HasMember(id) {
			return copyRoom(e.room), true
		}
	}
	return nil, false
}

// UpdateHostedRoom refreshes the room hosted by host and, when state is
// non-nil, overwrites its state. It reports whether host has a room.
func (d *Directory) UpdateHostedRoom(host model.UserID, state *model.RoomState) bool {
	d.roomMu.Lock()
	defer d.roomMu.Unlock()
	d.pruneLocked()

	e, ok := d.rooms[host]
	if !ok {
		return false
	}
	if state != nil {
		e.room.State = *state
	}
	e.room.LastUpdated = d.clock.Now()
	return true
}

// Rooms returns copies of every live room in registration order
func (d *Directory) Rooms() []model.Room {
	d.roomMu.Lock()
	defer d.roomMu.Unlock()
	d.pruneLocked()

	entries := d.sortedLocked()
	rooms := make([]model.Room, len(entries))
	for i, e := range entries {
		rooms[i] = *copyRoom(e.room)
	}
	return rooms
}

// RoomCount returns the number of live rooms
func (d *Directory) RoomCount() int {
	d.roomMu.Lock()
	defer d.roomMu.Unlock()
	d.pruneLocked()
	return len(d.rooms)
}

// PruneStale drops rooms whose host has not touched them within the TTL
// and returns how many were removed
func (d *Directory) PruneStale() int {
	d.roomMu.Lock()
	defer d.roomMu.Unlock()
	return d.pruneLocked()
}

func (d *Directory) pruneLocked() int {
	if d.roomTTL <= 0 {
		return 0
	}
	cutoff := d.clock.Now().Add(-d.roomTTL)
	removed := 0
	for host, e := range d.rooms {
		if e.room.LastUpdated.Before(cutoff) {
			delete(d.rooms, host)
			removed++
		}
	}
	return removed
}

func (d *Directory) sortedLocked() []*roomEntry {
	entries := make([]*roomEntry, 0, len(d.rooms))
	for _, e := range d.rooms {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].seq < entries[j].seq })
	return entries
}

func copyRoom(r model.Room) *model.Room {
	r.Members = append([]model.User(nil), r.Members...)
	return &r
}
