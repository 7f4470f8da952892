package user

import (
	"context"
	"errors"
	"fmt"

	"github.com/nkiryanov/gym/internal/apperrors"
	"github.com/nkiryanov/gym/internal/models"
	"github.com/nkiryanov/gym/internal/repository"
)

// Attempts to create user with fresh username suffix when concurrent request took it
const createAttempts = 3

type UserService struct {
	hasher  PasswordHasher
	storage repository.Storage
}

func NewService(hasher PasswordHasher, storage repository.Storage) *UserService {
	if hasher == nil {
		hasher = DefaultHasher
	}

	return &UserService{
		hasher:  hasher,
		storage: storage,
	}
}

// Check username and password
// Unknown user, wrong password and disabled user are all reported as apperrors.ErrBadCredentials
func (s *UserService) VerifyCredentials(ctx context.Context, username string, password string) (models.User, error) {
	user, err := s.storage.User().GetUserByUsername(ctx, username)
	switch {
	case err == nil:
	case errors.Is(err, apperrors.ErrUserNotFound):
		return user, apperrors.New(apperrors.ErrBadCredentials, "Bad credentials")
	default:
		return user, err
	}

	if err := s.hasher.Compare(user.HashedPassword, password); err != nil {
		return user, apperrors.Wrap(apperrors.ErrBadCredentials, "Bad credentials", err)
	}

	if !user.Active {
		return user, apperrors.New(apperrors.ErrBadCredentials, "User is disabled")
	}

	return user, nil
}

// Create user with unique username 'base.N'. The base is taken from u.Username.
// Uses st, so may be called inside caller's transaction
func (s *UserService) CreateUnique(ctx context.Context, st repository.Storage, u models.User, password string) (models.User, error) {
	if password == "" {
		return models.User{}, apperrors.Validation("password: is required")
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return models.User{}, fmt.Errorf("can't use this as password, Err: %w", err)
	}
	u.HashedPassword = hash

	base := u.Username
	for range createAttempts {
		var created models.User

		// Each attempt in its own savepoint: unique violation aborts postgres transaction
		err = st.InTx(ctx, func(tx repository.Storage) error {
			existing, err := tx.User().ListUsernames(ctx, base)
			if err != nil {
				return err
			}

			u.Username = NextUsername(base, existing)
			created, err = tx.User().CreateUser(ctx, u)
			return err
		})

		if !errors.Is(err, apperrors.ErrUserAlreadyExists) {
			return created, err
		}
	}

	return models.User{}, fmt.Errorf("can't pick unique username for %q. Err: %w", base, err)
}

func (s *UserService) Get(ctx context.Context, actor models.User, username string) (models.User, error) {
	if !actor.CanManage(username) {
		return models.User{}, apperrors.Forbidden()
	}
	return s.get(ctx, s.storage, username)
}

func (s *UserService) List(ctx context.Context, actor models.User) ([]models.User, error) {
	if !actor.IsAdmin() {
		return nil, apperrors.Forbidden()
	}
	return s.storage.User().ListUsers(ctx)
}

// Change password. Old password has to match, even for admin
func (s *UserService) ChangePassword(ctx context.Context, actor models.User, username string, oldPassword string, newPassword string) error {
	if !actor.CanManage(username) {
		return apperrors.Forbidden()
	}

	user, err := s.get(ctx, s.storage, username)
	if err != nil {
		return err
	}

	if err := s.hasher.Compare(user.HashedPassword, oldPassword); err != nil {
		return apperrors.Wrap(apperrors.ErrBadCredentials, "Bad credentials", err)
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("can't use this as password, Err: %w", err)
	}

	return s.storage.User().SetPassword(ctx, user.ID, hash)
}

func (s *UserService) SetActive(ctx context.Context, actor models.User, username string, active bool) error {
	if !actor.CanManage(username) {
		return apperrors.Forbidden()
	}

	return s.storage.InTx(ctx, func(tx repository.Storage) error {
		user, err := s.get(ctx, tx, username)
		if err != nil {
			return err
		}

		user.Active = active
		_, err = tx.User().UpdateUser(ctx, user)
		return err
	})
}

// Delete user with profile and trainings.
// Token records are kept revoked
func (s *UserService) Delete(ctx context.Context, actor models.User, username string) error {
	if !actor.CanManage(username) {
		return apperrors.Forbidden()
	}

	return s.storage.InTx(ctx, func(tx repository.Storage) error {
		user, err := s.get(ctx, tx, username)
		if err != nil {
			return err
		}

		if _, err := tx.Token().RevokeAllForUser(ctx, user.ID); err != nil {
			return err
		}
		return tx.User().DeleteUser(ctx, username)
	})
}

func (s *UserService) get(ctx context.Context, st repository.Storage, username string) (models.User, error) {
	user, err := st.User().GetUserByUsername(ctx, username)
	if errors.Is(err, apperrors.ErrUserNotFound) {
		return user, apperrors.UserNotFound(username)
	}
	return user, err
}
