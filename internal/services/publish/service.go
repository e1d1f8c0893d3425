package publish

import (
	"context"
	"errors"
	"log/slog"

	"github.com/mcoot/lighthouse/internal/dependencies/clock"
	"github.com/mcoot/lighthouse/internal/model"
	"github.com/mcoot/lighthouse/internal/services/resource"
	"github.com/mcoot/lighthouse/internal/storage"
)

// Errors
var (
	ErrQuotaExceeded    = errors.New("slot quota exceeded")
	ErrNotOwner         = errors.New("slot belongs to another user")
	ErrMissingRootLevel = errors.New("slot has no root level")
	ErrMissingLocation  = errors.New("slot has no location")
)

// Default player counts for slots that leave them unset
const (
	DefaultMinPlayers = 1
	DefaultMaxPlayers = 4
)

// Draft is a slot as submitted by the game. ID is zero for a new slot.
type Draft struct {
	Slot        model.Slot
	HasLocation bool
}

// Config holds configuration for the publish service
type Config struct {
	EntitledSlots int
}

// DefaultConfig returns default publish configuration
func DefaultConfig() Config {
	return Config{
		EntitledSlots: 50,
	}
}

// Service creates, updates and removes published slots
type Service struct {
	storage storage.Storage
	gate    *resource.Gate
	clock   clock.Clock
	logger  *slog.Logger
	cfg     Config
}

// New creates a new publish Service
func New(storage storage.Storage, gate *resource.Gate, clock clock.Clock, logger *slog.Logger, cfg Config) *Service {
	if cfg.EntitledSlots <= 0 {
		cfg.EntitledSlots = DefaultConfig().EntitledSlots
	}
	return &Service{
		storage: storage,
		gate:    gate,
		clock:   clock,
		logger:  logger,
		cfg:     cfg,
	}
}

// StartPublish checks that user may publish draft and returns the
// resources the game still has to upload, in the order it listed them.
// The icon is always checked last.
func (s *Service) StartPublish(ctx context.Context, user *model.User, draft *Draft) ([]string, error) {
	slot := draft.Slot
	if slot.RootLevel == "" {
		return nil, ErrMissingRootLevel
	}
	if err := s.checkPermission(ctx, user, slot.ID); err != nil {
		return nil, err
	}

	resources := slot.Resources
	if len(resources) == 0 {
		resources = []string{slot.RootLevel}
	}
	if slot.IconHash != "" {
		resources = append(append([]string(nil), resources...), slot.IconHash)
	}

	return s.gate.MissingResources(ctx, resources)
}

// Publish stores draft as a new slot, or updates the existing slot when
// the draft carries an id. The game version is taken from the session.
func (s *Service) Publish(ctx context.Context, user *model.User, version model.GameVersion, draft *Draft) (*model.Slot, error) {
	if !draft.HasLocation {
		return nil, ErrMissingLocation
	}
	slot := draft.Slot
	if slot.RootLevel == "" {
		return nil, ErrMissingRootLevel
	}
	if err := s.checkPermission(ctx, user, slot.ID); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	slot.CreatorID = user.ID
	slot.GameVersion = version
	slot.LastUpdated = now
	if slot.MinPlayers == 0 || slot.MaxPlayers == 0 {
		slot.MinPlayers = DefaultMinPlayers
		slot.MaxPlayers = DefaultMaxPlayers
	}
	if len(slot.Resources) == 0 {
		slot.Resources = []string{slot.RootLevel}
	}

	if slot.ID != 0 {
		existing, err := s.storage.GetSlot(ctx, slot.ID)
		if err != nil {
			return nil, err
		}
		slot.FirstUpload = existing.FirstUpload
		if err := s.storage.UpdateSlot(ctx, &slot); err != nil {
			return nil, err
		}
		s.logger.Info("slot republished",
			slog.Int("slot_id", int(slot.ID)),
			slog.String("creator", user.Username),
		)
		return &slot, nil
	}

	slot.FirstUpload = now
	if err := s.storage.CreateSlot(ctx, &slot); err != nil {
		return nil, err
	}
	s.logger.Info("slot published",
		slog.Int("slot_id", int(slot.ID)),
		slog.String("creator", user.Username),
		slog.String("name", slot.Name),
	)
	return &slot, nil
}

// Unpublish deletes one of the user's slots
func (s *Service) Unpublish(ctx context.Context, user *model.User, id model.SlotID) error {
	slot, err := s.storage.GetSlot(ctx, id)
	if err != nil {
		return err
	}
	if slot.CreatorID != user.ID {
		return ErrNotOwner
	}
	if err := s.storage.DeleteSlot(ctx, id); err != nil {
		return err
	}
	s.logger.Info("slot unpublished",
		slog.Int("slot_id", int(id)),
		slog.String("creator", user.Username),
	)
	return nil
}

// checkPermission enforces ownership when republishing and the quota when
// publishing something new
func (s *Service) checkPermission(ctx context.Context, user *model.User, id model.SlotID) error {
	if id != 0 {
		existing, err := s.storage.GetSlot(ctx, id)
		if err != nil {
			return err
		}
		if existing.CreatorID != user.ID {
			return ErrNotOwner
		}
		return nil
	}

	used, err := s.storage.CountSlotsByCreator(ctx, user.ID)
	if err != nil {
		return err
	}
	if used >= s.cfg.EntitledSlots {
		return ErrQuotaExceeded
	}
	return nil
}
