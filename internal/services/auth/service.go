package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/lighthouse/internal/dependencies/clock"
	"github.com/mcoot/lighthouse/internal/dependencies/random"
	"github.com/mcoot/lighthouse/internal/metrics"
	"github.com/mcoot/lighthouse/internal/model"
	"github.com/mcoot/lighthouse/internal/storage"
)

// Errors
var (
	ErrUnknownUser              = errors.New("unknown user")
	ErrInvalidPassword          = errors.New("invalid password")
	ErrUnsupportedClientVersion = errors.New("unsupported client version")
	ErrSessionMissing           = errors.New("no session")
	ErrSessionUnapproved        = errors.New("session not approved")
	ErrRegistrationDisabled     = errors.New("registration is disabled")
	ErrMissingCredentials       = errors.New("username and password are required")
	ErrPasswordMismatch         = errors.New("passwords do not match")
	ErrNotTokenOwner            = errors.New("token belongs to another user")
)

const (
	// SecretLength is the length of generated session secrets
	SecretLength = 40
	// SecretAlphabet is the characters session secrets are drawn from
	SecretAlphabet = "0123456789abcdef"

	// maxSecretAttempts bounds the retries when a generated secret collides
	maxSecretAttempts = 8
)

// Login flavors used as metric labels
const (
	flavorGame = "game"
	flavorWeb  = "web"
)

// GameSession is a resolved game token with the user it belongs to
type GameSession struct {
	User  *model.User
	Token *model.GameToken
}

// Config holds configuration for the auth service
type Config struct {
	RegistrationEnabled bool
	// UseExternalAuth leaves new game tokens unapproved until the owner
	// approves them. When off, tokens are approved as they are issued.
	UseExternalAuth bool
}

// DefaultConfig returns default auth configuration
func DefaultConfig() Config {
	return Config{
		RegistrationEnabled: true,
	}
}

// Service issues and resolves game and web session tokens
type Service struct {
	storage storage.Storage
	clock   clock.Clock
	random  random.Random
	metrics *metrics.Metrics
	logger  *slog.Logger
	cfg     Config
}

// New creates a new auth Service
func New(
	storage storage.Storage,
	clock clock.Clock,
	random random.Random,
	m *metrics.Metrics,
	logger *slog.Logger,
	cfg Config,
) *Service {
	return &Service{
		storage: storage,
		clock:   clock,
		random:  random,
		metrics: m,
		logger:  logger,
		cfg:     cfg,
	}
}

// Authenticate checks a game client's credentials and issues a game token
// bound to networkLocation. The token is unapproved when external auth is on.
func (s *Service) Authenticate(ctx context.Context, username, password, networkLocation, titleID string) (*model.GameToken, error) {
	token, err := s.authenticate(ctx, username, password, networkLocation, titleID)
	if err != nil {
		s.metrics.AuthAttempt(flavorGame, outcomeFor(err))
		s.logger.Info("game login refused",
			slog.String("username", username),
			slog.String("title_id", titleID),
			slog.String("error", err.Error()),
		)
		return nil, err
	}
	s.metrics.AuthAttempt(flavorGame, metrics.OutcomeOK)
	s.logger.Info("game login",
		slog.String("username", username),
		slog.String("version", string(token.ClientVersion)),
		slog.String("token_id", string(token.ID)),
	)
	return token, nil
}

func (s *Service) authenticate(ctx context.Context, username, password, networkLocation, titleID string) (*model.GameToken, error) {
	user, err := s.checkCredentials(ctx, username, password)
	if err != nil {
		return nil, err
	}

	version := model.GameVersionFromTitleID(titleID)
	if version == model.GameVersionUnknown {
		return nil, fmt.Errorf("%w: title id %q", ErrUnsupportedClientVersion, titleID)
	}

	secret, err := s.newSecret(ctx)
	if err != nil {
		return nil, err
	}

	token := &model.GameToken{
		ID:              model.TokenID(uuid.NewString()),
		UserID:          user.ID,
		Secret:          secret,
		NetworkLocation: networkLocation,
		ClientVersion:   version,
		IssuedAt:        s.clock.Now(),
	}
	if err := s.storage.SaveGameToken(ctx, token); err != nil {
		return nil, err
	}
	if !s.cfg.UseExternalAuth {
		if err := s.storage.ApproveGameToken(ctx, token.ID); err != nil {
			return nil, err
		}
		token.Approved = true
	}
	return token, nil
}

// UsesExternalAuth reports whether game logins wait for web approval
func (s *Service) UsesExternalAuth() bool {
	return s.cfg.UseExternalAuth
}

// ResolveGameSession looks a game token up by secret. Unapproved tokens
// are refused unless allowUnapproved is set.
func (s *Service) ResolveGameSession(ctx context.Context, secret string, allowUnapproved bool) (*GameSession, error) {
	if secret == "" {
		return nil, ErrSessionMissing
	}
	token, err := s.storage.GetGameTokenBySecret(ctx, secret)
	if err != nil {
		if errors.Is(err, model.ErrTokenNotFound) {
			return nil, ErrSessionMissing
		}
		return nil, err
	}
	if !token.Approved && !allowUnapproved {
		return nil, ErrSessionUnapproved
	}

	user, err := s.storage.GetUser(ctx, token.UserID)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			return nil, ErrSessionMissing
		}
		return nil, err
	}
	return &GameSession{User: user, Token: token}, nil
}

// MarkUsed records that the client presented the token
func (s *Service) MarkUsed(ctx context.Context, token *model.GameToken) error {
	if token.Used {
		return nil
	}
	if err := s.storage.MarkGameTokenUsed(ctx, token.ID); err != nil {
		return err
	}
	token.Used = true
	return nil
}

// ResolveWebSession looks a web token up by secret
func (s *Service) ResolveWebSession(ctx context.Context, secret string) (*model.User, error) {
	if secret == "" {
		return nil, ErrSessionMissing
	}
	token, err := s.storage.GetWebTokenBySecret(ctx, secret)
	if err != nil {
		if errors.Is(err, model.ErrTokenNotFound) {
			return nil, ErrSessionMissing
		}
		return nil, err
	}

	user, err := s.storage.GetUser(ctx, token.UserID)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			return nil, ErrSessionMissing
		}
		return nil, err
	}
	return user, nil
}

// Register creates an account and signs it in on the web
func (s *Service) Register(ctx context.Context, username, password, confirmPassword string) (*model.WebToken, error) {
	if !s.cfg.RegistrationEnabled {
		return nil, ErrRegistrationDisabled
	}
	username = strings.TrimSpace(username)
	if username == "" || strings.TrimSpace(password) == "" {
		return nil, ErrMissingCredentials
	}
	if password != confirmPassword {
		return nil, ErrPasswordMismatch
	}

	_, err := s.storage.GetUserByUsername(ctx, username)
	if err == nil {
		return nil, model.ErrUserExists
	}
	if !errors.Is(err, model.ErrUserNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		ID:           model.UserID(uuid.NewString()),
		Username:     username,
		PasswordHash: string(hash),
		CreatedAt:    s.clock.Now(),
	}
	if err := s.storage.SaveUser(ctx, user); err != nil {
		return nil, err
	}
	s.logger.Info("user registered", slog.String("username", username))

	return s.issueWebToken(ctx, user)
}

// WebLogin checks credentials and issues a web token
func (s *Service) WebLogin(ctx context.Context, username, password string) (*model.WebToken, error) {
	if strings.TrimSpace(username) == "" || strings.TrimSpace(password) == "" {
		s.metrics.AuthAttempt(flavorWeb, metrics.OutcomeRejected)
		return nil, ErrMissingCredentials
	}
	user, err := s.checkCredentials(ctx, username, password)
	if err != nil {
		s.metrics.AuthAttempt(flavorWeb, outcomeFor(err))
		return nil, err
	}
	token, err := s.issueWebToken(ctx, user)
	if err != nil {
		s.metrics.AuthAttempt(flavorWeb, metrics.OutcomeError)
		return nil, err
	}
	s.metrics.AuthAttempt(flavorWeb, metrics.OutcomeOK)
	return token, nil
}

// PendingTokens lists the user's game tokens still waiting for approval,
// newest first
func (s *Service) PendingTokens(ctx context.Context, userID model.UserID) ([]*model.GameToken, error) {
	tokens, err := s.storage.ListGameTokensForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	pending := make([]*model.GameToken, 0, len(tokens))
	for _, t := range tokens {
		if !t.Approved {
			pending = append(pending, t)
		}
	}
	return pending, nil
}

// ApproveToken approves one of the user's own game tokens
func (s *Service) ApproveToken(ctx context.Context, userID model.UserID, tokenID model.TokenID) error {
	if _, err := s.ownedToken(ctx, userID, tokenID); err != nil {
		return err
	}
	if err := s.storage.ApproveGameToken(ctx, tokenID); err != nil {
		return err
	}
	s.logger.Info("game token approved",
		slog.String("user_id", string(userID)),
		slog.String("token_id", string(tokenID)),
	)
	return nil
}

// DenyToken discards one of the user's own game tokens
func (s *Service) DenyToken(ctx context.Context, userID model.UserID, tokenID model.TokenID) error {
	if _, err := s.ownedToken(ctx, userID, tokenID); err != nil {
		return err
	}
	if err := s.storage.DeleteGameToken(ctx, tokenID); err != nil {
		return err
	}
	s.logger.Info("game token denied",
		slog.String("user_id", string(userID)),
		slog.String("token_id", string(tokenID)),
	)
	return nil
}

func (s *Service) ownedToken(ctx context.Context, userID model.UserID, tokenID model.TokenID) (*model.GameToken, error) {
	token, err := s.storage.GetGameToken(ctx, tokenID)
	if err != nil {
		return nil, err
	}
	if token.UserID != userID {
		return nil, ErrNotTokenOwner
	}
	return token, nil
}

func (s *Service) checkCredentials(ctx context.Context, username, password string) (*model.User, error) {
	user, err := s.storage.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			return nil, ErrUnknownUser
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidPassword
	}
	return user, nil
}

func (s *Service) issueWebToken(ctx context.Context, user *model.User) (*model.WebToken, error) {
	secret, err := s.newSecret(ctx)
	if err != nil {
		return nil, err
	}
	token := &model.WebToken{
		ID:       model.TokenID(uuid.NewString()),
		UserID:   user.ID,
		Secret:   secret,
		IssuedAt: s.clock.Now(),
	}
	if err := s.storage.SaveWebToken(ctx, token); err != nil {
		return nil, err
	}
	return token, nil
}

// newSecret draws a secret not used by any existing game or web token
func (s *Service) newSecret(ctx context.Context) (string, error) {
	for i := 0; i < maxSecretAttempts; i++ {
		secret := s.random.String(SecretLength, SecretAlphabet)
		if secret == "" {
			continue
		}
		taken, err := s.secretTaken(ctx, secret)
		if err != nil {
			return "", err
		}
		if !taken {
			return secret, nil
		}
	}
	return "", errors.New("could not generate a unique session secret")
}

func (s *Service) secretTaken(ctx context.Context, secret string) (bool, error) {
	if _, err := s.storage.GetGameTokenBySecret(ctx, secret); err == nil {
		return true, nil
	} else if !errors.Is(err, model.ErrTokenNotFound) {
		return false, err
	}
	if _, err := s.storage.GetWebTokenBySecret(ctx, secret); err == nil {
		return true, nil
	} else if !errors.Is(err, model.ErrTokenNotFound) {
		return false, err
	}
	return false, nil
}

func outcomeFor(err error) string {
	switch {
	case errors.Is(err, ErrUnknownUser),
		errors.Is(err, ErrInvalidPassword),
		errors.Is(err, ErrUnsupportedClientVersion):
		return metrics.OutcomeRejected
	default:
		return metrics.OutcomeError
	}
}
