package redis

import (
	"fmt"

	"github.com/mcoot/lighthouse/internal/model"
)

// Key prefix for all server data
const keyPrefix = "lighthouse"

// userKey returns the Redis key for a User
func userKey(id model.UserID) string {
	return fmt.Sprintf("%s:user:%s", keyPrefix, id)
}

// usernameIndexKey returns the Redis key for the username -> user_id index
func usernameIndexKey(username string) string {
	return fmt.Sprintf("%s:idx:username:%s", keyPrefix, username)
}

// gameTokenKey returns the Redis key for a GameToken
func gameTokenKey(id model.TokenID) string {
	return fmt.Sprintf("%s:game_token:%s", keyPrefix, id)
}

// gameSecretIndexKey returns the Redis key for the secret -> token_id index
func gameSecretIndexKey(secret string) string {
	return fmt.Sprintf("%s:idx:game_secret:%s", keyPrefix, secret)
}

// gameTokensForUserIndexKey returns the Redis key for the SET of a user's game tokens
func gameTokensForUserIndexKey(userID model.UserID) string {
	return fmt.Sprintf("%s:idx:game_tokens_for_user:%s", keyPrefix, userID)
}

// webTokenKey returns the Redis key for a WebToken, keyed by secret
func webTokenKey(secret string) string {
	return fmt.Sprintf("%s:web_token:%s", keyPrefix, secret)
}

// slotKey returns the Redis key for a Slot
func slotKey(id model.SlotID) string {
	return fmt.Sprintf("%s:slot:%d", keyPrefix, id)
}

// slotSequenceKey returns the Redis key for the slot ID counter
func slotSequenceKey() string {
	return fmt.Sprintf("%s:seq:slot", keyPrefix)
}

// slotsByCreatorIndexKey returns the Redis key for the SET of slots a user created
func slotsByCreatorIndexKey(creator model.UserID) string {
	return fmt.Sprintf("%s:idx:slots_by_creator:%s", keyPrefix, creator)
}
