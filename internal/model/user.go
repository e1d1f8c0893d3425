package model

import "time"

// UserID uniquely identifies a user across the system
type UserID string

// Location is a user's or slot's position on the world map
type Location struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// User is the identity a session resolves to
type User struct {
	ID           UserID
	Username     string // immutable, unique
	PasswordHash string // bcrypt hash
	Location     Location
	CreatedAt    time.Time
}
