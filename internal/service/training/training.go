package training

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/nkiryanov/gym/internal/apperrors"
	"github.com/nkiryanov/gym/internal/models"
	"github.com/nkiryanov/gym/internal/repository"
)

// Upper bound of trainings.duration NUMERIC(6, 2) column, exclusive
var maxDuration = decimal.NewFromInt(10000)

type NewTraining struct {
	TraineeUsername string
	TrainerUsername string
	Name            string

	// Trainer's specialization if empty
	Type string

	Date     time.Time
	Duration decimal.Decimal
}

type TrainingService struct {
	storage repository.Storage
}

func NewService(storage repository.Storage) *TrainingService {
	return &TrainingService{storage: storage}
}

// Add training. Trainer may add only own trainings, admin any.
// Trainee gets assigned to the trainer if not yet
func (s *TrainingService) Add(ctx context.Context, actor models.User, t NewTraining) (models.Training, error) {
	switch actor.Role {
	case models.RoleAdmin:
	case models.RoleTrainer:
		if t.TrainerUsername == "" {
			t.TrainerUsername = actor.Username
		}
		if t.TrainerUsername != actor.Username {
			return models.Training{}, apperrors.Forbidden()
		}
	default:
		return models.Training{}, apperrors.Forbidden()
	}

	switch {
	case t.Duration.Sign() <= 0:
		return models.Training{}, apperrors.Validation("duration: must be positive")
	case !t.Duration.Equal(t.Duration.Round(2)):
		return models.Training{}, apperrors.Validation("duration: at most 2 decimal places")
	case t.Duration.GreaterThanOrEqual(maxDuration):
		return models.Training{}, apperrors.Validation("duration: must be less than 10000")
	}

	var created models.Training
	err := s.storage.InTx(ctx, func(tx repository.Storage) error {
		trainer, err := tx.Trainer().GetTrainer(ctx, t.TrainerUsername)
		if err != nil {
			return notFound(err, "Trainer not found %s", t.TrainerUsername)
		}
		trainee, err := tx.Trainee().GetTrainee(ctx, t.TraineeUsername)
		if err != nil {
			return notFound(err, "Trainee not found %s", t.TraineeUsername)
		}

		typeName := strings.TrimSpace(t.Type)
		if typeName == "" {
			typeName = trainer.Specialization.Name
		}
		tt, err := tx.Training().GetOrCreateType(ctx, typeName)
		if err != nil {
			return err
		}

		if err := tx.Trainee().AddTrainer(ctx, trainee.ID, trainer.ID); err != nil {
			return err
		}

		created, err = tx.Training().CreateTraining(ctx, models.Training{
			TraineeUsername: trainee.User.Username,
			TrainerUsername: trainer.User.Username,
			Name:            t.Name,
			Type:            tt.Name,
			Date:            t.Date,
			Duration:        t.Duration,
		})
		return err
	})

	return created, err
}

func (s *TrainingService) Types(ctx context.Context) ([]models.TrainingType, error) {
	return s.storage.Training().ListTypes(ctx)
}

func notFound(err error, format string, args ...any) error {
	if errors.Is(err, apperrors.ErrUserNotFound) {
		return apperrors.EntityNotFound(format, args...)
	}
	return err
}
