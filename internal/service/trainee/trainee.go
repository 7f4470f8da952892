package trainee

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/nkiryanov/gym/internal/apperrors"
	"github.com/nkiryanov/gym/internal/models"
	"github.com/nkiryanov/gym/internal/repository"
	"github.com/nkiryanov/gym/internal/service/user"
)

type Registration struct {
	FirstName   string
	LastName    string
	DateOfBirth *time.Time
	Address     string
}

// Trainee with assigned trainers
type Profile struct {
	models.Trainee
	Trainers []models.Trainer
}

type TraineeService struct {
	users   *user.UserService
	storage repository.Storage
}

func NewService(users *user.UserService, storage repository.Storage) *TraineeService {
	return &TraineeService{users: users, storage: storage}
}

// Register trainee with generated username and password.
// The password is returned in plain text once and never stored
func (s *TraineeService) Register(ctx context.Context, r Registration) (models.Trainee, string, error) {
	password, err := user.GeneratePassword()
	if err != nil {
		return models.Trainee{}, "", err
	}

	var trainee models.Trainee
	err = s.storage.InTx(ctx, func(tx repository.Storage) error {
		u, err := s.users.CreateUnique(ctx, tx, models.User{
			Username:  user.ProfileUsername(r.FirstName, r.LastName),
			FirstName: r.FirstName,
			LastName:  r.LastName,
			Active:    true,
			Role:      models.RoleTrainee,
		}, password)
		if err != nil {
			return err
		}

		trainee, err = tx.Trainee().CreateTrainee(ctx, models.Trainee{
			User:        u,
			DateOfBirth: r.DateOfBirth,
			Address:     r.Address,
		})
		return err
	})
	if err != nil {
		return models.Trainee{}, "", err
	}

	return trainee, password, nil
}

func (s *TraineeService) Get(ctx context.Context, actor models.User, username string) (Profile, error) {
	if !actor.CanManage(username) {
		return Profile{}, apperrors.Forbidden()
	}

	trainee, err := getTrainee(ctx, s.storage, username)
	if err != nil {
		return Profile{}, err
	}

	return profile(ctx, s.storage, trainee)
}

func (s *TraineeService) List(ctx context.Context, actor models.User) ([]models.Trainee, error) {
	if !actor.IsAdmin() {
		return nil, apperrors.Forbidden()
	}
	return s.storage.Trainee().ListTrainees(ctx)
}

// Update fields set in patch. Username is never changed
func (s *TraineeService) Update(ctx context.Context, actor models.User, username string, patch models.TraineePatch) (Profile, error) {
	if !actor.CanManage(username) {
		return Profile{}, apperrors.Forbidden()
	}

	var p Profile
	err := s.storage.InTx(ctx, func(tx repository.Storage) error {
		trainee, err := getTrainee(ctx, tx, username)
		if err != nil {
			return err
		}

		trainee.Apply(patch)

		u, err := tx.User().UpdateUser(ctx, trainee.User)
		if err != nil {
			return err
		}
		trainee, err = tx.Trainee().UpdateTrainee(ctx, trainee)
		if err != nil {
			return err
		}
		trainee.User = u

		p, err = profile(ctx, tx, trainee)
		return err
	})

	return p, err
}

// Delete trainee with trainings
func (s *TraineeService) Delete(ctx context.Context, actor models.User, username string) error {
	if !actor.CanManage(username) {
		return apperrors.Forbidden()
	}
	if _, err := getTrainee(ctx, s.storage, username); err != nil {
		return err
	}
	return s.users.Delete(ctx, actor, username)
}

func (s *TraineeService) SetActive(ctx context.Context, actor models.User, username string, active bool) error {
	if !actor.CanManage(username) {
		return apperrors.Forbidden()
	}
	if _, err := getTrainee(ctx, s.storage, username); err != nil {
		return err
	}
	return s.users.SetActive(ctx, actor, username, active)
}

// Replace trainee's trainers. Every trainer has to exist
func (s *TraineeService) SetTrainers(ctx context.Context, actor models.User, username string, trainerUsernames []string) ([]models.Trainer, error) {
	if !actor.CanManage(username) {
		return nil, apperrors.Forbidden()
	}

	var trainers []models.Trainer
	err := s.storage.InTx(ctx, func(tx repository.Storage) error {
		trainee, err := getTrainee(ctx, tx, username)
		if err != nil {
			return err
		}

		ids := make([]uuid.UUID, 0, len(trainerUsernames))
		for _, name := range trainerUsernames {
			trainer, err := tx.Trainer().GetTrainer(ctx, name)
			if err != nil {
				if errors.Is(err, apperrors.ErrUserNotFound) {
					return apperrors.EntityNotFound("Trainer not found %s", name)
				}
				return err
			}
			ids = append(ids, trainer.ID)
		}

		if err := tx.Trainee().SetTrainers(ctx, trainee.ID, ids); err != nil {
			return err
		}

		trainers, err = tx.Trainee().ListTrainers(ctx, trainee.ID)
		return err
	})

	return trainers, err
}

// Active trainers not assigned to the trainee yet
func (s *TraineeService) UnassignedTrainers(ctx context.Context, actor models.User, username string) ([]models.Trainer, error) {
	if !actor.CanManage(username) {
		return nil, apperrors.Forbidden()
	}

	trainee, err := getTrainee(ctx, s.storage, username)
	if err != nil {
		return nil, err
	}

	return s.storage.Trainee().ListUnassignedTrainers(ctx, trainee.ID)
}

// Trainee's trainings. Trainee filter field is always set to username
func (s *TraineeService) Trainings(ctx context.Context, actor models.User, username string, filter models.TrainingFilter) ([]models.Training, error) {
	if !actor.CanManage(username) {
		return nil, apperrors.Forbidden()
	}
	if _, err := getTrainee(ctx, s.storage, username); err != nil {
		return nil, err
	}

	filter.TraineeUsername = username
	return s.storage.Training().ListTrainings(ctx, filter)
}

func getTrainee(ctx context.Context, st repository.Storage, username string) (models.Trainee, error) {
	trainee, err := st.Trainee().GetTrainee(ctx, username)
	if errors.Is(err, apperrors.ErrUserNotFound) {
		return trainee, apperrors.EntityNotFound("Trainee not found %s", username)
	}
	return trainee, err
}

func profile(ctx context.Context, st repository.Storage, trainee models.Trainee) (Profile, error) {
	trainers, err := st.Trainee().ListTrainers(ctx, trainee.ID)
	if err != nil {
		return Profile{}, err
	}
	return Profile{Trainee: trainee, Trainers: trainers}, nil
}
