package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/mcoot/lighthouse/internal/model"
	"github.com/mcoot/lighthouse/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu sync.RWMutex

	users         map[model.UserID]*model.User
	usernameIndex map[string]model.UserID
	gameTokens    map[model.TokenID]*model.GameToken
	gameSecrets   map[string]model.TokenID
	webTokens     map[string]*model.WebToken
	slots         map[model.SlotID]*model.Slot
	nextSlotID    model.SlotID
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		users:         make(map[model.UserID]*model.User),
		usernameIndex: make(map[string]model.UserID),
		gameTokens:    make(map[model.TokenID]*model.GameToken),
		gameSecrets:   make(map[string]model.TokenID),
		webTokens:     make(map[string]*model.WebToken),
		slots:         make(map[model.SlotID]*model.Slot),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// User operations

func (s *Storage) SaveUser(ctx context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if owner, ok := s.usernameIndex[user.Username]; ok && owner != user.ID {
		return model.ErrUserExists
	}
	u := *user
	s.users[user.ID] = &u
	s.usernameIndex[user.Username] = user.ID
	return nil
}

func (s *Storage) GetUser(ctx context.Context, id model.UserID) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[id]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	u := *user
	return &u, nil
}

func (s *Storage) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.usernameIndex[username]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	user, ok := s.users[id]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	u := *user
	return &u, nil
}

// Game token operations

func (s *Storage) SaveGameToken(ctx context.Context, token *model.GameToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := *token
	s.gameTokens[token.ID] = &t
	s.gameSecrets[token.Secret] = token.ID
	return nil
}

func (s *Storage) GetGameToken(ctx context.Context, id model.TokenID) (*model.GameToken, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	token, ok := s.gameTokens[id]
	if !ok {
		return nil, model.ErrTokenNotFound
	}
	t := *token
	return &t, nil
}

func (s *Storage) GetGameTokenBySecret(ctx context.Context, secret string) (*model.GameToken, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.gameSecrets[secret]
	if !ok {
		return nil, model.ErrTokenNotFound
	}
	token, ok := s.gameTokens[id]
	if !ok {
		return nil, model.ErrTokenNotFound
	}
	t := *token
	return &t, nil
}

func (s *Storage) ListGameTokensForUser(ctx context.Context, userID model.UserID) ([]*model.GameToken, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var tokens []*model.GameToken
	for _, token := range s.gameTokens {
		if token.UserID == userID {
			t := *token
			tokens = append(tokens, &t)
		}
	}
	// Newest first
	sort.Slice(tokens, func(i, j int) bool {
		return tokens[i].IssuedAt.After(tokens[j].IssuedAt)
	})
	return tokens, nil
}

func (s *Storage) ApproveGameToken(ctx context.Context, id model.TokenID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	token, ok := s.gameTokens[id]
	if !ok {
		return model.ErrTokenNotFound
	}
	if token.Approved {
		return model.ErrTokenAlreadyApproved
	}
	token.Approved = true
	return nil
}

func (s *Storage) MarkGameTokenUsed(ctx context.Context, id model.TokenID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	token, ok := s.gameTokens[id]
	if !ok {
		return model.ErrTokenNotFound
	}
	token.Used = true
	return nil
}

func (s *Storage) DeleteGameToken(ctx context.Context, id model.TokenID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if token, ok := s.gameTokens[id]; ok {
		delete(s.gameSecrets, token.Secret)
		delete(s.gameTokens, id)
	}
	return nil
}

// Web token operations

func (s *Storage) SaveWebToken(ctx context.Context, token *model.WebToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := *token
	s.webTokens[token.Secret] = &t
	return nil
}

func (s *Storage) GetWebTokenBySecret(ctx context.Context, secret string) (*model.WebToken, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	token, ok := s.webTokens[secret]
	if !ok {
		return nil, model.ErrTokenNotFound
	}
	t := *token
	return &t, nil
}

// Slot operations

func (s *Storage) CreateSlot(ctx context.Context, slot *model.Slot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSlotID++
	slot.ID = s.nextSlotID
	s.slots[slot.ID] = copySlot(slot)
	return nil
}

func (s *Storage) UpdateSlot(ctx context.Context, slot *model.Slot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.slots[slot.ID]; !ok {
		return model.ErrSlotNotFound
	}
	s.slots[slot.ID] = copySlot(slot)
	return nil
}

func (s *Storage) GetSlot(ctx context.Context, id model.SlotID) (*model.Slot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	slot, ok := s.slots[id]
	if !ok {
		return nil, model.ErrSlotNotFound
	}
	return copySlot(slot), nil
}

func (s *Storage) DeleteSlot(ctx context.Context, id model.SlotID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.slots, id)
	return nil
}

func (s *Storage) CountSlotsByCreator(ctx context.Context, creator model.UserID) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, slot := range s.slots {
		if slot.CreatorID == creator {
			count++
		}
	}
	return count, nil
}

func copySlot(slot *model.Slot) *model.Slot {
	c := *slot
	c.Resources = append([]string(nil), slot.Resources...)
	return &c
}
