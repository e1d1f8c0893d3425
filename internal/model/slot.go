package model

import "time"

// SlotID identifies a published level
type SlotID int

// Slot is a published level owned by a user. Resources lists the content
// hashes the level needs; RootLevel is the hash of the level data itself.
type Slot struct {
	ID          SlotID
	CreatorID   UserID
	Name        string
	Description string
	IconHash    string
	RootLevel   string
	Resources   []string
	Location    Location
	MinPlayers  int
	MaxPlayers  int
	GameVersion GameVersion
	FirstUpload time.Time
	LastUpdated time.Time
}
