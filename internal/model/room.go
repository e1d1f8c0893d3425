package model

import "time"

// RoomState is advisory state set by a room's host. Any value may follow any other.
type RoomState int

const (
	RoomStateIdle            RoomState = 0 // not doing anything in particular
	RoomStateDivingIntoLevel RoomState = 1 // looking to join a room playing a specific slot
	RoomStateUnknown         RoomState = 2
	RoomStateDivingIn        RoomState = 3 // looking for other rooms to join
	RoomStateDivingInWaiting RoomState = 4 // waiting for players to join
)

// String returns the state name used in logs
func (s RoomState) String() string {
	switch s {
	case RoomStateIdle:
		return "Idle"
	case RoomStateDivingIntoLevel:
		return "DivingIntoLevel"
	case RoomStateUnknown:
		return "Unknown"
	case RoomStateDivingIn:
		return "DivingIn"
	case RoomStateDivingInWaiting:
		return "DivingInWaiting"
	default:
		return "Invalid"
	}
}

// SlotType distinguishes the kinds of slot a room can target
type SlotType int

const (
	SlotTypeDeveloper SlotType = 0
	SlotTypeUser      SlotType = 1
	SlotTypePod       SlotType = 5
	SlotTypeMoon      SlotType = 6
)

// RoomSlot is the slot a room is playing or targeting
type RoomSlot struct {
	SlotType SlotType
	SlotID   int
}

// Room is an ephemeral matchmaking group owned by its host.
// Members holds the resolved players in the order the host listed them.
type Room struct {
	Host        UserID
	Members     []User
	Slot        RoomSlot
	State       RoomState
	CreatedAt   time.Time
	LastUpdated time.Time
}

// HasMember reports whether id is the host or one of the members
func (r *Room) HasMember(id UserID) bool {
	if r.Host == id {
		return true
	}
	for _, m := range r.Members {
		if m.ID == id {
			return true
		}
	}
	return false
}

// MemberIDs returns the member ids in room order
func (r *Room) MemberIDs() []UserID {
	ids := make([]UserID, len(r.Members))
	for i, m := range r.Members {
		ids[i] = m.ID
	}
	return ids
}
