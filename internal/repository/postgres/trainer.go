package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/nkiryanov/gym/internal/apperrors"
	"github.com/nkiryanov/gym/internal/models"
)

type TrainerRepo struct {
	DB DBTX
}

const trainerSelect = `
SELECT tr.id,
	u.id, u.created_at, u.username, u.password_hash, u.first_name, u.last_name, u.active, u.role,
	sp.id, sp.name
FROM trainers tr
JOIN users u ON u.id = tr.user_id
JOIN training_types sp ON sp.id = tr.specialization_id
`

const createTrainer = `-- name: CreateTrainer
INSERT INTO trainers (id, user_id, specialization_id)
VALUES ($1, $2, $3)
`

// Create trainer profile for already existed user and training type
func (r *TrainerRepo) CreateTrainer(ctx context.Context, t models.Trainer) (models.Trainer, error) {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}

	_, err := r.DB.Exec(ctx, createTrainer, t.ID, t.User.ID, t.Specialization.ID)
	switch {
	case err == nil:
	case isUniqueViolation(err):
		return models.Trainer{}, apperrors.ErrUserAlreadyExists
	case isForeignKeyViolation(err):
		return models.Trainer{}, apperrors.EntityNotFound("Training type not found")
	default:
		return models.Trainer{}, fmt.Errorf("db error: %w", err)
	}

	return r.getTrainer(ctx, trainerSelect+`WHERE tr.id = $1`, t.ID)
}

const getTrainer = `-- name: GetTrainer` + trainerSelect + `WHERE u.username = $1`

func (r *TrainerRepo) GetTrainer(ctx context.Context, username string) (models.Trainer, error) {
	return r.getTrainer(ctx, getTrainer, username)
}

func (r *TrainerRepo) getTrainer(ctx context.Context, query string, arg any) (models.Trainer, error) {
	rows, _ := r.DB.Query(ctx, query, arg)
	trainer, err := pgx.CollectOneRow(rows, rowToTrainer)

	switch {
	case err == nil:
		return trainer, nil
	case errors.Is(err, pgx.ErrNoRows):
		return trainer, apperrors.ErrUserNotFound
	default:
		return trainer, fmt.Errorf("db error: %w", err)
	}
}

const listTrainers = `-- name: ListTrainers` + trainerSelect + `ORDER BY u.username`

func (r *TrainerRepo) ListTrainers(ctx context.Context) ([]models.Trainer, error) {
	rows, _ := r.DB.Query(ctx, listTrainers)
	trainers, err := pgx.CollectRows(rows, rowToTrainer)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return trainers, nil
}

const listTrainerTrainees = `-- name: ListTrainerTrainees` + traineeSelect + `
JOIN trainee_trainers tt ON tt.trainee_id = t.id
WHERE tt.trainer_id = $1
ORDER BY u.username
`

func (r *TrainerRepo) ListTrainees(ctx context.Context, trainerID uuid.UUID) ([]models.Trainee, error) {
	rows, _ := r.DB.Query(ctx, listTrainerTrainees, trainerID)
	trainees, err := pgx.CollectRows(rows, rowToTrainee)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return trainees, nil
}

func rowToTrainer(row pgx.CollectableRow) (models.Trainer, error) {
	var t models.Trainer
	u := &t.User
	err := row.Scan(
		&t.ID,
		&u.ID, &u.CreatedAt, &u.Username, &u.HashedPassword, &u.FirstName, &u.LastName, &u.Active, &u.Role,
		&t.Specialization.ID, &t.Specialization.Name,
	)
	return t, err
}
