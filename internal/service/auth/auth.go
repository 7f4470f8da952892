package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/nkiryanov/gym/internal/apperrors"
	"github.com/nkiryanov/gym/internal/logger"
	"github.com/nkiryanov/gym/internal/models"
	"github.com/nkiryanov/gym/internal/repository"
	"github.com/nkiryanov/gym/internal/service/auth/tokenmanager"
	"github.com/nkiryanov/gym/internal/service/user"
)

// Auth service: issues, refreshes and revokes user tokens
type AuthService struct {
	// Manager to sign and verify JWT tokens
	tokens *tokenmanager.TokenManager

	// Credentials check and user creation
	users *user.UserService

	// Repository to access long term data
	storage repository.Storage

	logger logger.Logger
}

func NewService(tokens *tokenmanager.TokenManager, users *user.UserService, storage repository.Storage, l logger.Logger) (*AuthService, error) {
	if tokens == nil || users == nil || storage == nil {
		return nil, errors.New("token manager, user service and storage must not be nil")
	}

	if l == nil {
		l = logger.NewNoOpLogger()
	}

	return &AuthService{
		tokens:  tokens,
		users:   users,
		storage: storage,
		logger:  l,
	}, nil
}

// Register trainer with username 'username.N' and issue tokens
func (s *AuthService) Signup(ctx context.Context, username string, password string) (models.Authentication, error) {
	var auth models.Authentication

	err := s.storage.InTx(ctx, func(tx repository.Storage) error {
		u, err := s.users.CreateUnique(ctx, tx, models.User{
			Username: username,
			Active:   true,
			Role:     models.RoleTrainer,
		}, password)
		if err != nil {
			return err
		}

		auth, err = s.issue(ctx, tx, u)
		return err
	})
	if err != nil {
		return models.Authentication{}, err
	}

	s.logger.Info("User signed up", "username", auth.Username)
	return auth, nil
}

// Issue new token pair. Already issued tokens stay valid
func (s *AuthService) Login(ctx context.Context, username string, password string) (models.Authentication, error) {
	_, err := s.storage.User().GetUserByUsername(ctx, username)
	switch {
	case err == nil:
	case errors.Is(err, apperrors.ErrUserNotFound):
		return models.Authentication{}, apperrors.UserNotFound(username)
	default:
		return models.Authentication{}, err
	}

	u, err := s.users.VerifyCredentials(ctx, username, password)
	if err != nil {
		if errors.Is(err, apperrors.ErrBadCredentials) {
			return models.Authentication{}, apperrors.Wrap(apperrors.ErrTokenIssuance, "Failed to authenticate login", err)
		}
		return models.Authentication{}, err
	}

	return s.issue(ctx, s.storage, u)
}

// Revoke every token of the user and issue new pair
func (s *AuthService) Authenticate(ctx context.Context, username string, password string) (models.Authentication, error) {
	u, err := s.users.VerifyCredentials(ctx, username, password)
	if err != nil {
		return models.Authentication{}, err
	}

	var auth models.Authentication
	err = s.storage.InTx(ctx, func(tx repository.Storage) error {
		revoked, err := tx.Token().RevokeAllForUser(ctx, u.ID)
		if err != nil {
			return err
		}
		s.logger.Debug("Previous tokens revoked", "username", u.Username, "count", revoked)

		auth, err = s.issue(ctx, tx, u)
		return err
	})

	return auth, err
}

// Exchange refresh token from "Bearer <token>" header for new access token.
// The same refresh token is returned back
func (s *AuthService) Refresh(ctx context.Context, authHeader string) (models.Authentication, error) {
	refresh, ok := tokenmanager.BearerToken(authHeader)
	if !ok {
		return models.Authentication{}, apperrors.InvalidToken()
	}

	subject, err := s.tokens.ExtractSubject(refresh)
	if err != nil {
		if errors.Is(err, apperrors.ErrTokenExpired) {
			s.expire(ctx, refresh)
		}
		return models.Authentication{}, err
	}

	u, err := s.storage.User().GetUserByUsername(ctx, subject)
	switch {
	case err == nil:
	case errors.Is(err, apperrors.ErrUserNotFound):
		return models.Authentication{}, apperrors.UserNotFound(subject)
	default:
		return models.Authentication{}, err
	}

	if !u.Active {
		return models.Authentication{}, apperrors.New(apperrors.ErrBadCredentials, "User is disabled")
	}
	if !s.tokens.Validate(refresh, u) {
		return models.Authentication{}, apperrors.InvalidToken()
	}

	record, err := s.storage.Token().GetByTokenString(ctx, refresh)
	switch {
	case err == nil:
	case errors.Is(err, apperrors.ErrTokenNotFound):
		return models.Authentication{}, apperrors.InvalidToken()
	default:
		return models.Authentication{}, err
	}

	// Access JWT matches its record by access column only
	if record.RefreshToken != refresh || record.UserID != u.ID || record.Status != models.TokenActive {
		return models.Authentication{}, apperrors.InvalidToken()
	}

	if !record.RefreshUsable(s.tokens.Now()) {
		err := s.storage.Token().Close(ctx, record.ID, models.TokenExpired)
		switch {
		case err == nil:
			return models.Authentication{}, apperrors.New(apperrors.ErrTokenExpired, "Token expired")
		case errors.Is(err, apperrors.ErrTokenNotFound):
			return models.Authentication{}, apperrors.InvalidToken()
		default:
			return models.Authentication{}, err
		}
	}

	access, err := s.tokens.Generate(u, models.AccessToken)
	if err != nil {
		return models.Authentication{}, apperrors.Wrap(apperrors.ErrTokenIssuance, "Failed to issue token", err)
	}

	// Record revoked since it was read is not updated
	err = s.storage.Token().UpdateAccess(ctx, record.ID, access.Value, access.ExpiresAt)
	switch {
	case err == nil:
	case errors.Is(err, apperrors.ErrTokenNotFound):
		return models.Authentication{}, apperrors.InvalidToken()
	default:
		return models.Authentication{}, err
	}

	return models.Authentication{
		Username: u.Username,
		TokenPair: models.TokenPair{
			Access:  access,
			Refresh: models.IssuedToken{Value: refresh, ExpiresAt: record.RefreshExpiresAt},
		},
	}, nil
}

// Revoke token from "Bearer <token>" header if it's known.
// Missing header or unknown token is not an error
func (s *AuthService) Logout(ctx context.Context, authHeader string) error {
	token, ok := tokenmanager.BearerToken(authHeader)
	if !ok {
		return nil
	}

	record, err := s.storage.Token().GetByTokenString(ctx, token)
	switch {
	case err == nil:
	case errors.Is(err, apperrors.ErrTokenNotFound):
		return nil
	default:
		return err
	}

	if record.Status != models.TokenActive {
		return nil
	}

	err = s.storage.Token().Close(ctx, record.ID, models.TokenRevoked)
	if errors.Is(err, apperrors.ErrTokenNotFound) {
		return nil
	}
	return err
}

// User the access token from "Bearer <token>" header was issued to.
// Token has to be signed, not expired, stored and active, user has to be active
func (s *AuthService) Principal(ctx context.Context, authHeader string) (models.User, error) {
	access, ok := tokenmanager.BearerToken(authHeader)
	if !ok {
		return models.User{}, apperrors.InvalidToken()
	}

	claims, err := s.tokens.Parse(access)
	if err != nil {
		return models.User{}, err
	}
	if claims.Kind != models.AccessToken {
		return models.User{}, apperrors.InvalidToken()
	}

	u, err := s.storage.User().GetUserByUsername(ctx, claims.Subject)
	switch {
	case err == nil:
	case errors.Is(err, apperrors.ErrUserNotFound):
		return models.User{}, apperrors.InvalidToken()
	default:
		return models.User{}, err
	}

	if !u.Active {
		return models.User{}, apperrors.New(apperrors.ErrBadCredentials, "User is disabled")
	}
	if !s.tokens.Validate(access, u) {
		return models.User{}, apperrors.InvalidToken()
	}

	record, err := s.storage.Token().GetByTokenString(ctx, access)
	switch {
	case err == nil:
	case errors.Is(err, apperrors.ErrTokenNotFound):
		return models.User{}, apperrors.InvalidToken()
	default:
		return models.User{}, err
	}

	if record.AccessToken != access || !record.AccessUsable(s.tokens.Now()) {
		return models.User{}, apperrors.InvalidToken()
	}

	return u, nil
}

// Generate token pair for the user and persist it as active
func (s *AuthService) issue(ctx context.Context, st repository.Storage, u models.User) (models.Authentication, error) {
	pair, err := s.tokens.GeneratePair(u)
	if err != nil {
		return models.Authentication{}, apperrors.Wrap(apperrors.ErrTokenIssuance, "Failed to issue token", err)
	}

	_, err = st.Token().Save(ctx, models.Token{
		UserID:           u.ID,
		AccessToken:      pair.Access.Value,
		RefreshToken:     pair.Refresh.Value,
		IssuedAt:         s.tokens.Now(),
		AccessExpiresAt:  pair.Access.ExpiresAt,
		RefreshExpiresAt: pair.Refresh.ExpiresAt,
		Status:           models.TokenActive,
	})
	if err != nil {
		return models.Authentication{}, fmt.Errorf("can't save issued token. Err: %w", err)
	}

	return models.Authentication{Username: u.Username, TokenPair: pair}, nil
}

// Mark stored refresh token as expired. Failures are only logged, caller already has an error to return
func (s *AuthService) expire(ctx context.Context, refresh string) {
	record, err := s.storage.Token().GetByTokenString(ctx, refresh)
	if err != nil {
		if !errors.Is(err, apperrors.ErrTokenNotFound) {
			s.logger.Error("Can't load expired token", "error", err)
		}
		return
	}

	if record.RefreshToken != refresh || record.Status != models.TokenActive {
		return
	}

	err = s.storage.Token().Close(ctx, record.ID, models.TokenExpired)
	if err != nil && !errors.Is(err, apperrors.ErrTokenNotFound) {
		s.logger.Error("Can't mark token expired", "error", err)
	}
}
