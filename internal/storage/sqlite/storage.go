package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/mcoot/lighthouse/internal/model"
	"github.com/mcoot/lighthouse/internal/storage"
	"github.com/mcoot/lighthouse/internal/storage/sqlite/migrations"
)

// toMillis normalizes timestamps into millisecond precision for storage.
func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

// fromMillis restores millisecond precision and keeps UTC normalization.
func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Storage is a SQLite-backed implementation of the storage interface
type Storage struct {
	db *sql.DB
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Open opens the database at path and applies bundled migrations.
func Open(path string) (*Storage, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	dsn := filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	if err := applyMigrations(db, migrations.FS); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Storage{db: db}, nil
}

// Close releases the underlying database
func (s *Storage) Close() error {
	return s.db.Close()
}

// User operations

func (s *Storage) SaveUser(ctx context.Context, user *model.User) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO users (id, username, password_hash, location_x, location_y, created_at)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
    username = excluded.username,
    password_hash = excluded.password_hash,
    location_x = excluded.location_x,
    location_y = excluded.location_y`,
		string(user.ID), user.Username, user.PasswordHash,
		user.Location.X, user.Location.Y, toMillis(user.CreatedAt),
	)
	if err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed: users.username") {
		return model.ErrUserExists
	}
	return err
}

const userColumns = `id, username, password_hash, location_x, location_y, created_at`

func scanUser(row *sql.Row) (*model.User, error) {
	var (
		u         model.User
		id        string
		createdAt int64
	)
	if err := row.Scan(&id, &u.Username, &u.PasswordHash, &u.Location.X, &u.Location.Y, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrUserNotFound
		}
		return nil, err
	}
	u.ID = model.UserID(id)
	u.CreatedAt = fromMillis(createdAt)
	return &u, nil
}

func (s *Storage) GetUser(ctx context.Context, id model.UserID) (*model.User, error) {
	return scanUser(s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, string(id)))
}

func (s *Storage) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	return scanUser(s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE username = ?`, username))
}

// Game token operations

func (s *Storage) SaveGameToken(ctx context.Context, token *model.GameToken) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO game_tokens (id, user_id, secret, network_location, client_version, approved, used, issued_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
    network_location = excluded.network_location,
    approved = excluded.approved,
    used = excluded.used`,
		string(token.ID), string(token.UserID), token.Secret, token.NetworkLocation,
		string(token.ClientVersion), token.Approved, token.Used, toMillis(token.IssuedAt),
	)
	return err
}

const gameTokenColumns = `id, user_id, secret, network_location, client_version, approved, used, issued_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanGameToken(row rowScanner) (*model.GameToken, error) {
	var (
		t                   model.GameToken
		id, userID, version string
		issuedAt            int64
	)
	if err := row.Scan(&id, &userID, &t.Secret, &t.NetworkLocation, &version, &t.Approved, &t.Used, &issuedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrTokenNotFound
		}
		return nil, err
	}
	t.ID = model.TokenID(id)
	t.UserID = model.UserID(userID)
	t.ClientVersion = model.GameVersion(version)
	t.IssuedAt = fromMillis(issuedAt)
	return &t, nil
}

func (s *Storage) GetGameToken(ctx context.Context, id model.TokenID) (*model.GameToken, error) {
	return scanGameToken(s.db.QueryRowContext(ctx, `SELECT `+gameTokenColumns+` FROM game_tokens WHERE id = ?`, string(id)))
}

func (s *Storage) GetGameTokenBySecret(ctx context.Context, secret string) (*model.GameToken, error) {
	return scanGameToken(s.db.QueryRowContext(ctx, `SELECT `+gameTokenColumns+` FROM game_tokens WHERE secret = ?`, secret))
}

func (s *Storage) ListGameTokensForUser(ctx context.Context, userID model.UserID) ([]*model.GameToken, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+gameTokenColumns+` FROM game_tokens WHERE user_id = ? ORDER BY issued_at DESC`, string(userID))
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	tokens := []*model.GameToken{}
	for rows.Next() {
		token, err := scanGameToken(rows)
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, token)
	}
	return tokens, rows.Err()
}

func (s *Storage) ApproveGameToken(ctx context.Context, id model.TokenID) error {
	res, err := s.db.ExecContext(ctx, `UPDATE game_tokens SET approved = 1 WHERE id = ? AND approved = 0`, string(id))
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 1 {
		return nil
	}

	// Nothing changed: either missing or already approved
	if _, err := s.GetGameToken(ctx, id); err != nil {
		return err
	}
	return model.ErrTokenAlreadyApproved
}

func (s *Storage) MarkGameTokenUsed(ctx context.Context, id model.TokenID) error {
	res, err := s.db.ExecContext(ctx, `UPDATE game_tokens SET used = 1 WHERE id = ?`, string(id))
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return model.ErrTokenNotFound
	}
	return nil
}

func (s *Storage) DeleteGameToken(ctx context.Context, id model.TokenID) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM game_tokens WHERE id = ?`, string(id))
	return err
}

// Web token operations

func (s *Storage) SaveWebToken(ctx context.Context, token *model.WebToken) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO web_tokens (id, user_id, secret, issued_at) VALUES (?, ?, ?, ?)`,
		string(token.ID), string(token.UserID), token.Secret, toMillis(token.IssuedAt),
	)
	return err
}

func (s *Storage) GetWebTokenBySecret(ctx context.Context, secret string) (*model.WebToken, error) {
	var (
		t          model.WebToken
		id, userID string
		issuedAt   int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, secret, issued_at FROM web_tokens WHERE secret = ?`, secret,
	).Scan(&id, &userID, &t.Secret, &issuedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrTokenNotFound
		}
		return nil, err
	}
	t.ID = model.TokenID(id)
	t.UserID = model.UserID(userID)
	t.IssuedAt = fromMillis(issuedAt)
	return &t, nil
}

// Slot operations

func (s *Storage) CreateSlot(ctx context.Context, slot *model.Slot) error {
	resources, err := json.Marshal(slot.Resources)
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `
INSERT INTO slots (creator_id, name, description, icon_hash, root_level, resources,
    location_x, location_y, min_players, max_players, game_version, first_uploaded, last_updated)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		string(slot.CreatorID), slot.Name, slot.Description, slot.IconHash, slot.RootLevel, string(resources),
		slot.Location.X, slot.Location.Y, slot.MinPlayers, slot.MaxPlayers, string(slot.GameVersion),
		toMillis(slot.FirstUpload), toMillis(slot.LastUpdated),
	)
	if err != nil {
		return err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	slot.ID = model.SlotID(id)
	return nil
}

func (s *Storage) UpdateSlot(ctx context.Context, slot *model.Slot) error {
	resources, err := json.Marshal(slot.Resources)
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `
UPDATE slots SET name = ?, description = ?, icon_hash = ?, root_level = ?, resources = ?,
    location_x = ?, location_y = ?, min_players = ?, max_players = ?, game_version = ?,
    first_uploaded = ?, last_updated = ?
WHERE id = ?`,
		slot.Name, slot.Description, slot.IconHash, slot.RootLevel, string(resources),
		slot.Location.X, slot.Location.Y, slot.MinPlayers, slot.MaxPlayers, string(slot.GameVersion),
		toMillis(slot.FirstUpload), toMillis(slot.LastUpdated), int(slot.ID),
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return model.ErrSlotNotFound
	}
	return nil
}

func (s *Storage) GetSlot(ctx context.Context, id model.SlotID) (*model.Slot, error) {
	var (
		slot                      model.Slot
		slotID                    int
		creator, resources, ver   string
		firstUploaded, lastUpdate int64
	)
	err := s.db.QueryRowContext(ctx, `
SELECT id, creator_id, name, description, icon_hash, root_level, resources,
    location_x, location_y, min_players, max_players, game_version, first_uploaded, last_updated
FROM slots WHERE id = ?`, int(id)).Scan(
		&slotID, &creator, &slot.Name, &slot.Description, &slot.IconHash, &slot.RootLevel, &resources,
		&slot.Location.X, &slot.Location.Y, &slot.MinPlayers, &slot.MaxPlayers, &ver,
		&firstUploaded, &lastUpdate,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrSlotNotFound
		}
		return nil, err
	}

	if err := json.Unmarshal([]byte(resources), &slot.Resources); err != nil {
		return nil, fmt.Errorf("decode slot resources: %w", err)
	}
	slot.ID = model.SlotID(slotID)
	slot.CreatorID = model.UserID(creator)
	slot.GameVersion = model.GameVersion(ver)
	slot.FirstUpload = fromMillis(firstUploaded)
	slot.LastUpdated = fromMillis(lastUpdate)
	return &slot, nil
}

func (s *Storage) DeleteSlot(ctx context.Context, id model.SlotID) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM slots WHERE id = ?`, int(id))
	return err
}

func (s *Storage) CountSlotsByCreator(ctx context.Context, creator model.UserID) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM slots WHERE creator_id = ?`, string(creator)).Scan(&n)
	return n, err
}
