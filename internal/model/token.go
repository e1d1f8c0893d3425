package model

import "time"

// TokenID identifies a session token independently of its secret
type TokenID string

// GameToken gates the game protocol endpoints.
// Approved is flipped exactly once by the approval step; Used records that the
// token has been presented by the client after login.
type GameToken struct {
	ID              TokenID
	UserID          UserID
	Secret          string
	NetworkLocation string
	ClientVersion   GameVersion
	Approved        bool
	Used            bool
	IssuedAt        time.Time
}

// WebToken gates the dashboard endpoints. Web tokens are trusted once issued.
type WebToken struct {
	ID       TokenID
	UserID   UserID
	Secret   string
	IssuedAt time.Time
}
