package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/nkiryanov/gym/internal/models"
)

// User repository interface
type UserRepo interface {
	// Create user
	// If user with username exists already has to return error apperrors.ErrUserAlreadyExists
	CreateUser(ctx context.Context, user models.User) (models.User, error)

	// Get user by username
	// If user not found must return apperrors.ErrUserNotFound
	GetUserByUsername(ctx context.Context, username string) (models.User, error)

	// Usernames equal to base or starting with 'base.'
	ListUsernames(ctx context.Context, base string) ([]string, error)
	ListUsers(ctx context.Context) ([]models.User, error)

	UpdateUser(ctx context.Context, user models.User) (models.User, error)
	SetPassword(ctx context.Context, userID uuid.UUID, hashedPassword string) error
	DeleteUser(ctx context.Context, username string) error
}

// Token repository interface
type TokenRepo interface {
	// Insert new token, ID is generated if empty
	Save(ctx context.Context, token models.Token) (models.Token, error)

	// Find token by access or refresh string
	// If not found must return apperrors.ErrTokenNotFound
	GetByTokenString(ctx context.Context, tokenString string) (models.Token, error)

	// Replace access token of the active token
	// If token not found or not active must return apperrors.ErrTokenNotFound
	UpdateAccess(ctx context.Context, id uuid.UUID, accessToken string, expiresAt time.Time) error

	// Move active token to revoked or expired status
	// If token not found or not active must return apperrors.ErrTokenNotFound
	Close(ctx context.Context, id uuid.UUID, status models.TokenStatus) error

	// Mark every active token of the user as revoked
	RevokeAllForUser(ctx context.Context, userID uuid.UUID) (int64, error)

	// Mark active tokens with refresh expiry not after now as expired
	ExpireStale(ctx context.Context, now time.Time) (int64, error)
}

type TraineeRepo interface {
	CreateTrainee(ctx context.Context, trainee models.Trainee) (models.Trainee, error)

	// If trainee not found must return apperrors.ErrUserNotFound
	GetTrainee(ctx context.Context, username string) (models.Trainee, error)
	ListTrainees(ctx context.Context) ([]models.Trainee, error)
	UpdateTrainee(ctx context.Context, trainee models.Trainee) (models.Trainee, error)

	// Trainers assigned to the trainee
	ListTrainers(ctx context.Context, traineeID uuid.UUID) ([]models.Trainer, error)
	SetTrainers(ctx context.Context, traineeID uuid.UUID, trainerIDs []uuid.UUID) error
	AddTrainer(ctx context.Context, traineeID uuid.UUID, trainerID uuid.UUID) error

	// Active trainers not assigned to the trainee
	ListUnassignedTrainers(ctx context.Context, traineeID uuid.UUID) ([]models.Trainer, error)
}

type TrainerRepo interface {
	CreateTrainer(ctx context.Context, trainer models.Trainer) (models.Trainer, error)

	// If trainer not found must return apperrors.ErrUserNotFound
	GetTrainer(ctx context.Context, username string) (models.Trainer, error)
	ListTrainers(ctx context.Context) ([]models.Trainer, error)

	// Trainees assigned to the trainer
	ListTrainees(ctx context.Context, trainerID uuid.UUID) ([]models.Trainee, error)
}

type TrainingRepo interface {
	// Return existed training type or create a new one
	GetOrCreateType(ctx context.Context, name string) (models.TrainingType, error)
	ListTypes(ctx context.Context) ([]models.TrainingType, error)

	CreateTraining(ctx context.Context, training models.Training) (models.Training, error)
	ListTrainings(ctx context.Context, filter models.TrainingFilter) ([]models.Training, error)
}

// Storage gives access to all repositories sharing one connection or transaction
type Storage interface {
	User() UserRepo
	Token() TokenRepo
	Trainee() TraineeRepo
	Trainer() TrainerRepo
	Training() TrainingRepo

	// Run fn in transaction: commit if fn returns nil, rollback otherwise
	InTx(ctx context.Context, fn func(Storage) error) error
}
