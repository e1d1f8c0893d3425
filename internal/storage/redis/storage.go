package redis

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/lighthouse/internal/model"
	"github.com/mcoot/lighthouse/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), cfg.DialTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Storage{
		client: client,
		cfg:    cfg,
	}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// getJSON loads key into dest, translating a missing key into notFound
func (s *Storage) getJSON(ctx context.Context, key string, dest any, notFound error) error {
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return notFound
		}
		return err
	}
	return json.Unmarshal(data, dest)
}

// User operations

func (s *Storage) SaveUser(ctx context.Context, user *model.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return err
	}

	indexKey := usernameIndexKey(user.Username)

	// Watch the username index so a concurrent claim aborts the transaction
	txf := func(tx *redis.Tx) error {
		owner, err := tx.Get(ctx, indexKey).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if err == nil && owner != string(user.ID) {
			return model.ErrUserExists
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, userKey(user.ID), data, 0)
			pipe.Set(ctx, indexKey, string(user.ID), 0)
			return nil
		})
		return err
	}

	for i := 0; i < s.cfg.MaxTxRetries; i++ {
		err := s.client.Watch(ctx, txf, indexKey)
		if errors.Is(err, redis.TxFailedErr) {
			continue // Lost the race, retry
		}
		return err
	}
	return redis.TxFailedErr
}

func (s *Storage) GetUser(ctx context.Context, id model.UserID) (*model.User, error) {
	var user model.User
	if err := s.getJSON(ctx, userKey(id), &user, model.ErrUserNotFound); err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Storage) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	// Look up user ID from username index
	id, err := s.client.Get(ctx, usernameIndexKey(username)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrUserNotFound
		}
		return nil, err
	}

	return s.GetUser(ctx, model.UserID(id))
}

// Game token operations

func (s *Storage) SaveGameToken(ctx context.Context, token *model.GameToken) error {
	data, err := json.Marshal(token)
	if err != nil {
		return err
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, gameTokenKey(token.ID), data, 0)
	pipe.Set(ctx, gameSecretIndexKey(token.Secret), string(token.ID), 0)
	pipe.SAdd(ctx, gameTokensForUserIndexKey(token.UserID), string(token.ID))
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetGameToken(ctx context.Context, id model.TokenID) (*model.GameToken, error) {
	var token model.GameToken
	if err := s.getJSON(ctx, gameTokenKey(id), &token, model.ErrTokenNotFound); err != nil {
		return nil, err
	}
	return &token, nil
}

func (s *Storage) GetGameTokenBySecret(ctx context.Context, secret string) (*model.GameToken, error) {
	id, err := s.client.Get(ctx, gameSecretIndexKey(secret)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrTokenNotFound
		}
		return nil, err
	}

	return s.GetGameToken(ctx, model.TokenID(id))
}

func (s *Storage) ListGameTokensForUser(ctx context.Context, userID model.UserID) ([]*model.GameToken, error) {
	ids, err := s.client.SMembers(ctx, gameTokensForUserIndexKey(userID)).Result()
	if err != nil {
		return nil, err
	}

	if len(ids) == 0 {
		return []*model.GameToken{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = gameTokenKey(model.TokenID(id))
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	tokens := make([]*model.GameToken, 0, len(values))
	for _, val := range values {
		if val == nil {
			continue // Token was deleted
		}
		var token model.GameToken
		if err := json.Unmarshal([]byte(val.(string)), &token); err != nil {
			continue // Skip invalid data
		}
		tokens = append(tokens, &token)
	}

	sort.Slice(tokens, func(i, j int) bool {
		return tokens[i].IssuedAt.After(tokens[j].IssuedAt)
	})

	return tokens, nil
}

func (s *Storage) ApproveGameToken(ctx context.Context, id model.TokenID) error {
	return s.updateGameToken(ctx, id, func(token *model.GameToken) error {
		if token.Approved {
			return model.ErrTokenAlreadyApproved
		}
		token.Approved = true
		return nil
	})
}

func (s *Storage) MarkGameTokenUsed(ctx context.Context, id model.TokenID) error {
	return s.updateGameToken(ctx, id, func(token *model.GameToken) error {
		token.Used = true
		return nil
	})
}

// updateGameToken applies fn to a token under WATCH so concurrent flag
// updates on the same token serialize.
func (s *Storage) updateGameToken(ctx context.Context, id model.TokenID, fn func(*model.GameToken) error) error {
	key := gameTokenKey(id)

	txf := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return model.ErrTokenNotFound
			}
			return err
		}

		var token model.GameToken
		if err := json.Unmarshal(data, &token); err != nil {
			return err
		}
		if err := fn(&token); err != nil {
			return err
		}

		updated, err := json.Marshal(&token)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, updated, 0)
			return nil
		})
		return err
	}

	for i := 0; i < s.cfg.MaxTxRetries; i++ {
		err := s.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue // Lost the race, retry
		}
		return err
	}
	return redis.TxFailedErr
}

func (s *Storage) DeleteGameToken(ctx context.Context, id model.TokenID) error {
	token, err := s.GetGameToken(ctx, id)
	if err != nil {
		if errors.Is(err, model.ErrTokenNotFound) {
			return nil
		}
		return err
	}

	pipe := s.client.TxPipeline()
	pipe.Del(ctx, gameTokenKey(id))
	pipe.Del(ctx, gameSecretIndexKey(token.Secret))
	pipe.SRem(ctx, gameTokensForUserIndexKey(token.UserID), string(id))
	_, err = pipe.Exec(ctx)
	return err
}

// Web token operations

func (s *Storage) SaveWebToken(ctx context.Context, token *model.WebToken) error {
	data, err := json.Marshal(token)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, webTokenKey(token.Secret), data, 0).Err()
}

func (s *Storage) GetWebTokenBySecret(ctx context.Context, secret string) (*model.WebToken, error) {
	var token model.WebToken
	if err := s.getJSON(ctx, webTokenKey(secret), &token, model.ErrTokenNotFound); err != nil {
		return nil, err
	}
	return &token, nil
}

// Slot operations

func (s *Storage) CreateSlot(ctx context.Context, slot *model.Slot) error {
	id, err := s.client.Incr(ctx, slotSequenceKey()).Result()
	if err != nil {
		return err
	}
	slot.ID = model.SlotID(id)

	data, err := json.Marshal(slot)
	if err != nil {
		return err
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, slotKey(slot.ID), data, 0)
	pipe.SAdd(ctx, slotsByCreatorIndexKey(slot.CreatorID), strconv.Itoa(int(slot.ID)))
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) UpdateSlot(ctx context.Context, slot *model.Slot) error {
	exists, err := s.client.Exists(ctx, slotKey(slot.ID)).Result()
	if err != nil {
		return err
	}
	if exists == 0 {
		return model.ErrSlotNotFound
	}

	data, err := json.Marshal(slot)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, slotKey(slot.ID), data, 0).Err()
}

func (s *Storage) GetSlot(ctx context.Context, id model.SlotID) (*model.Slot, error) {
	var slot model.Slot
	if err := s.getJSON(ctx, slotKey(id), &slot, model.ErrSlotNotFound); err != nil {
		return nil, err
	}
	return &slot, nil
}

func (s *Storage) DeleteSlot(ctx context.Context, id model.SlotID) error {
	slot, err := s.GetSlot(ctx, id)
	if err != nil {
		if errors.Is(err, model.ErrSlotNotFound) {
			return nil
		}
		return err
	}

	pipe := s.client.TxPipeline()
	pipe.Del(ctx, slotKey(id))
	pipe.SRem(ctx, slotsByCreatorIndexKey(slot.CreatorID), strconv.Itoa(int(id)))
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) CountSlotsByCreator(ctx context.Context, creator model.UserID) (int, error) {
	n, err := s.client.SCard(ctx, slotsByCreatorIndexKey(creator)).Result()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}
