package trainer

import (
	"context"
	"errors"
	"strings"

	"github.com/nkiryanov/gym/internal/apperrors"
	"github.com/nkiryanov/gym/internal/models"
	"github.com/nkiryanov/gym/internal/repository"
	"github.com/nkiryanov/gym/internal/service/user"
)

type Registration struct {
	FirstName      string
	LastName       string
	Specialization string
}

// Trainer with assigned trainees
type Profile struct {
	models.Trainer
	Trainees []models.Trainee
}

type TrainerService struct {
	users   *user.UserService
	storage repository.Storage
}

func NewService(users *user.UserService, storage repository.Storage) *TrainerService {
	return &TrainerService{users: users, storage: storage}
}

// Register trainer with generated username and password.
// Specialization training type is created if it's new
func (s *TrainerService) Register(ctx context.Context, r Registration) (models.Trainer, string, error) {
	specialization := strings.TrimSpace(r.Specialization)
	if specialization == "" {
		return models.Trainer{}, "", apperrors.Validation("specialization: is required")
	}

	password, err := user.GeneratePassword()
	if err != nil {
		return models.Trainer{}, "", err
	}

	var trainer models.Trainer
	err = s.storage.InTx(ctx, func(tx repository.Storage) error {
		tt, err := tx.Training().GetOrCreateType(ctx, specialization)
		if err != nil {
			return err
		}

		u, err := s.users.CreateUnique(ctx, tx, models.User{
			Username:  user.ProfileUsername(r.FirstName, r.LastName),
			FirstName: r.FirstName,
			LastName:  r.LastName,
			Active:    true,
			Role:      models.RoleTrainer,
		}, password)
		if err != nil {
			return err
		}

		trainer, err = tx.Trainer().CreateTrainer(ctx, models.Trainer{User: u, Specialization: tt})
		return err
	})
	if err != nil {
		return models.Trainer{}, "", err
	}

	return trainer, password, nil
}

// Any authenticated user may see trainer profile
func (s *TrainerService) Get(ctx context.Context, username string) (Profile, error) {
	trainer, err := getTrainer(ctx, s.storage, username)
	if err != nil {
		return Profile{}, err
	}
	return profile(ctx, s.storage, trainer)
}

func (s *TrainerService) List(ctx context.Context) ([]models.Trainer, error) {
	return s.storage.Trainer().ListTrainers(ctx)
}

// Update user fields set in patch. Specialization is never changed
func (s *TrainerService) Update(ctx context.Context, actor models.User, username string, patch models.UserPatch) (Profile, error) {
	if !actor.CanManage(username) {
		return Profile{}, apperrors.Forbidden()
	}

	var p Profile
	err := s.storage.InTx(ctx, func(tx repository.Storage) error {
		trainer, err := getTrainer(ctx, tx, username)
		if err != nil {
			return err
		}

		trainer.User.Apply(patch)
		trainer.User, err = tx.User().UpdateUser(ctx, trainer.User)
		if err != nil {
			return err
		}

		p, err = profile(ctx, tx, trainer)
		return err
	})

	return p, err
}

func (s *TrainerService) SetActive(ctx context.Context, actor models.User, username string, active bool) error {
	if !actor.CanManage(username) {
		return apperrors.Forbidden()
	}
	if _, err := getTrainer(ctx, s.storage, username); err != nil {
		return err
	}
	return s.users.SetActive(ctx, actor, username, active)
}

// Trainer's trainings. Trainer filter field is always set to username
func (s *TrainerService) Trainings(ctx context.Context, actor models.User, username string, filter models.TrainingFilter) ([]models.Training, error) {
	if !actor.CanManage(username) {
		return nil, apperrors.Forbidden()
	}
	if _, err := getTrainer(ctx, s.storage, username); err != nil {
		return nil, err
	}

	filter.TrainerUsername = username
	return s.storage.Training().ListTrainings(ctx, filter)
}

// Assign trainee to the calling trainer
func (s *TrainerService) AssignTrainee(ctx context.Context, actor models.User, traineeUsername string) error {
	if actor.Role != models.RoleTrainer {
		return apperrors.Forbidden()
	}

	return s.storage.InTx(ctx, func(tx repository.Storage) error {
		trainer, err := getTrainer(ctx, tx, actor.Username)
		if err != nil {
			return err
		}

		trainee, err := tx.Trainee().GetTrainee(ctx, traineeUsername)
		if err != nil {
			if errors.Is(err, apperrors.ErrUserNotFound) {
				return apperrors.EntityNotFound("Trainee not found %s", traineeUsername)
			}
			return err
		}

		return tx.Trainee().AddTrainer(ctx, trainee.ID, trainer.ID)
	})
}

func getTrainer(ctx context.Context, st repository.Storage, username string) (models.Trainer, error) {
	trainer, err := st.Trainer().GetTrainer(ctx, username)
	if errors.Is(err, apperrors.ErrUserNotFound) {
		return trainer, apperrors.EntityNotFound("Trainer not found %s", username)
	}
	return trainer, err
}

func profile(ctx context.Context, st repository.Storage, trainer models.Trainer) (Profile, error) {
	trainees, err := st.Trainer().ListTrainees(ctx, trainer.ID)
	if err != nil {
		return Profile{}, err
	}
	return Profile{Trainer: trainer, Trainees: trainees}, nil
}
