package response

import (
	"time"

	"github.com/mcoot/lighthouse/internal/model"
)

// User represents a user in API responses
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// UserFromModel converts a model.User to a response User
func UserFromModel(u *model.User) User {
	return User{
		ID:       string(u.ID),
		Username: u.Username,
	}
}

// AuthResponse is the response for web login and registration
type AuthResponse struct {
	User         User   `json:"user"`
	SessionToken string `json:"session_token"`
}

// GameToken represents a game login awaiting or past approval
type GameToken struct {
	ID              string    `json:"id"`
	NetworkLocation string    `json:"network_location"`
	ClientVersion   string    `json:"client_version"`
	Approved        bool      `json:"approved"`
	Used            bool      `json:"used"`
	IssuedAt        time.Time `json:"issued_at"`
}

// GameTokenFromModel converts a model.GameToken. The secret is never exposed.
func GameTokenFromModel(t *model.GameToken) GameToken {
	return GameToken{
		ID:              string(t.ID),
		NetworkLocation: t.NetworkLocation,
		ClientVersion:   string(t.ClientVersion),
		Approved:        t.Approved,
		Used:            t.Used,
		IssuedAt:        t.IssuedAt,
	}
}

// GameTokensResponse lists game tokens
type GameTokensResponse struct {
	Tokens []GameToken `json:"tokens"`
}

// GameTokensFromModel converts a slice of tokens
func GameTokensFromModel(tokens []*model.GameToken) GameTokensResponse {
	out := make([]GameToken, len(tokens))
	for i, t := range tokens {
		out[i] = GameTokenFromModel(t)
	}
	return GameTokensResponse{Tokens: out}
}

// MissingResourcesResponse lists resource hashes not yet uploaded
type MissingResourcesResponse struct {
	Missing []string `json:"missing"`
}
