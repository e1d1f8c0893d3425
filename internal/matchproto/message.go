// Package matchproto implements the game's match wire format: a bracketed
// type name followed by a JSON-like field object, e.g.
//
//	[UpdateMyPlayerData,["Player":"alice","RoomState":4]]
//	[FindBestRoom,{}]
//
// Numeric fields may be written as 0xHHHHHHHH literals (packed IPv4
// addresses), which are rewritten to decimal before the body is parsed.
package matchproto

import "github.com/mcoot/lighthouse/internal/model"

// Kind names a match message on the wire
type Kind string

const (
	KindUpdateMyPlayerData  Kind = "UpdateMyPlayerData"
	KindUpdatePlayersInRoom Kind = "UpdatePlayersInRoom"
	KindCreateRoom          Kind = "CreateRoom"
	KindFindBestRoom        Kind = "FindBestRoom"
)

// Message is one of the closed set of match messages
type Message interface {
	Kind() Kind
	isMessage()
}

// UpdateMyPlayerData reports the sender's presence and, for room hosts,
// the room's new state.
type UpdateMyPlayerData struct {
	Player       string           `json:"Player"`
	RoomState    *model.RoomState `json:"RoomState,omitempty"`
	Location     []int64          `json:"Location,omitempty"`
	BuildVersion int64            `json:"BuildVersion,omitempty"`
}

// UpdatePlayersInRoom lists the players the host sees in its room
type UpdatePlayersInRoom struct {
	Players      []string `json:"Players"`
	Reservations []string `json:"Reservations,omitempty"`
}

// CreateRoom asks the server to register a room for the sender.
// Slots holds [type, id] pairs; the first one is the room's target.
type CreateRoom struct {
	Players      []string `json:"Players"`
	Reservations []string `json:"Reservations,omitempty"`
	Slots        [][]int  `json:"Slots,omitempty"`
	NAT          []int    `json:"NAT,omitempty"`
}

// TargetSlot returns the slot the room is created for
func (c CreateRoom) TargetSlot() model.RoomSlot {
	if len(c.Slots) == 0 || len(c.Slots[0]) < 2 {
		return model.RoomSlot{}
	}
	return model.RoomSlot{
		SlotType: model.SlotType(c.Slots[0][0]),
		SlotID:   c.Slots[0][1],
	}
}

// FindBestRoom asks for a room the sender can dive into
type FindBestRoom struct{}

func (UpdateMyPlayerData) Kind() Kind  { return KindUpdateMyPlayerData }
func (UpdatePlayersInRoom) Kind() Kind { return KindUpdatePlayersInRoom }
func (CreateRoom) Kind() Kind          { return KindCreateRoom }
func (FindBestRoom) Kind() Kind        { return KindFindBestRoom }

func (UpdateMyPlayerData) isMessage()  {}
func (UpdatePlayersInRoom) isMessage() {}
func (CreateRoom) isMessage()          {}
func (FindBestRoom) isMessage()        {}

// Player is an entry in a FindBestRoom response.
// MatchingRes is 1 for the requesting player and 0 for the room's members.
type Player struct {
	PlayerID    string `json:"PlayerId"`
	MatchingRes int    `json:"matching_res"`
}

// FindBestRoomResponse describes the room chosen for the requester
type FindBestRoomResponse struct {
	Players                 []Player        `json:"Players"`
	Slots                   [][]int         `json:"Slots"`
	RoomState               model.RoomState `json:"RoomState"`
	HostMood                int             `json:"HostMood"`
	LevelCompletionEstimate int             `json:"LevelCompletionEstimate"`
	PassedNoJoinPoint       int             `json:"PassedNoJoinPoint"`
	MoveConnected           bool            `json:"MoveConnected"`
	Location                []string        `json:"Location"`
	BuildVersion            int64           `json:"BuildVersion"`
	Language                int             `json:"Language"`
	FirstSeenTimestamp      int64           `json:"FirstSeenTimestamp"`
	LastSeenTimestamp       int64           `json:"LastSeenTimestamp"`
	GameID                  int             `json:"GameId"`
	NatType                 []int           `json:"NatType"`
	Friends                 []string        `json:"Friends"`
	Blocked                 []string        `json:"Blocked"`
	JoinedPlayers           []string        `json:"JoinedPlayers"`
}
