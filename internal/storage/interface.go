package storage

import (
	"context"

	"github.com/mcoot/lighthouse/internal/model"
)

// Storage defines the interface for data persistence
type Storage interface {
	// User operations
	SaveUser(ctx context.Context, user *model.User) error
	GetUser(ctx context.Context, id model.UserID) (*model.User, error)
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)

	// Game token operations
	SaveGameToken(ctx context.Context, token *model.GameToken) error
	GetGameToken(ctx context.Context, id model.TokenID) (*model.GameToken, error)
	GetGameTokenBySecret(ctx context.Context, secret string) (*model.GameToken, error)
	ListGameTokensForUser(ctx context.Context, userID model.UserID) ([]*model.GameToken, error)
	// ApproveGameToken flips the approved flag. It returns
	// model.ErrTokenAlreadyApproved if the flag was already set.
	ApproveGameToken(ctx context.Context, id model.TokenID) error
	MarkGameTokenUsed(ctx context.Context, id model.TokenID) error
	DeleteGameToken(ctx context.Context, id model.TokenID) error

	// Web token operations
	SaveWebToken(ctx context.Context, token *model.WebToken) error
	GetWebTokenBySecret(ctx context.Context, secret string) (*model.WebToken, error)

	// Slot operations
	// CreateSlot assigns the slot a fresh ID
	CreateSlot(ctx context.Context, slot *model.Slot) error
	UpdateSlot(ctx context.Context, slot *model.Slot) error
	GetSlot(ctx context.Context, id model.SlotID) (*model.Slot, error)
	DeleteSlot(ctx context.Context, id model.SlotID) error
	CountSlotsByCreator(ctx context.Context, creator model.UserID) (int, error)
}
