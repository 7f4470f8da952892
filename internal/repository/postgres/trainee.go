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

type TraineeRepo struct {
	DB DBTX
}

const traineeSelect = `
SELECT t.id,
	u.id, u.created_at, u.username, u.password_hash, u.first_name, u.last_name, u.active, u.role,
	t.date_of_birth, t.address
FROM trainees t
JOIN users u ON u.id = t.user_id
`

const createTrainee = `-- name: CreateTrainee
INSERT INTO trainees (id, user_id, date_of_birth, address)
VALUES ($1, $2, $3, $4)
`

// Create trainee profile for already existed user
func (r *TraineeRepo) CreateTrainee(ctx context.Context, t models.Trainee) (models.Trainee, error) {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}

	_, err := r.DB.Exec(ctx, createTrainee, t.ID, t.User.ID, t.DateOfBirth, t.Address)
	switch {
	case err == nil:
	case isUniqueViolation(err):
		return models.Trainee{}, apperrors.ErrUserAlreadyExists
	case isForeignKeyViolation(err):
		return models.Trainee{}, apperrors.ErrUserNotFound
	default:
		return models.Trainee{}, fmt.Errorf("db error: %w", err)
	}

	return r.getTrainee(ctx, traineeSelect+`WHERE t.id = $1`, t.ID)
}

const getTrainee = `-- name: GetTrainee` + traineeSelect + `WHERE u.username = $1`

func (r *TraineeRepo) GetTrainee(ctx context.Context, username string) (models.Trainee, error) {
	return r.getTrainee(ctx, getTrainee, username)
}

func (r *TraineeRepo) getTrainee(ctx context.Context, query string, arg any) (models.Trainee, error) {
	rows, _ := r.DB.Query(ctx, query, arg)
	trainee, err := pgx.CollectOneRow(rows, rowToTrainee)

	switch {
	case err == nil:
		return trainee, nil
	case errors.Is(err, pgx.ErrNoRows):
		return trainee, apperrors.ErrUserNotFound
	default:
		return trainee, fmt.Errorf("db error: %w", err)
	}
}

const listTrainees = `-- name: ListTrainees` + traineeSelect + `ORDER BY u.username`

func (r *TraineeRepo) ListTrainees(ctx context.Context) ([]models.Trainee, error) {
	rows, _ := r.DB.Query(ctx, listTrainees)
	trainees, err := pgx.CollectRows(rows, rowToTrainee)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return trainees, nil
}

const updateTrainee = `-- name: UpdateTrainee
UPDATE trainees SET date_of_birth = $2, address = $3
WHERE id = $1
`

// Update profile fields only. User fields are updated by UserRepo
func (r *TraineeRepo) UpdateTrainee(ctx context.Context, t models.Trainee) (models.Trainee, error) {
	tag, err := r.DB.Exec(ctx, updateTrainee, t.ID, t.DateOfBirth, t.Address)
	if err != nil {
		return models.Trainee{}, fmt.Errorf("db error: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.Trainee{}, apperrors.ErrUserNotFound
	}

	return r.getTrainee(ctx, traineeSelect+`WHERE t.id = $1`, t.ID)
}

const listTraineeTrainers = `-- name: ListTraineeTrainers` + trainerSelect + `
JOIN trainee_trainers tt ON tt.trainer_id = tr.id
WHERE tt.trainee_id = $1
ORDER BY u.username
`

func (r *TraineeRepo) ListTrainers(ctx context.Context, traineeID uuid.UUID) ([]models.Trainer, error) {
	rows, _ := r.DB.Query(ctx, listTraineeTrainers, traineeID)
	trainers, err := pgx.CollectRows(rows, rowToTrainer)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return trainers, nil
}

const clearTraineeTrainers = `-- name: ClearTraineeTrainers
DELETE FROM trainee_trainers WHERE trainee_id = $1
`

const addTraineeTrainers = `-- name: AddTraineeTrainers
INSERT INTO trainee_trainers (trainee_id, trainer_id)
SELECT $1, unnest($2::uuid[])
ON CONFLICT DO NOTHING
`

// Replace trainee's trainers list with the given one
func (r *TraineeRepo) SetTrainers(ctx context.Context, traineeID uuid.UUID, trainerIDs []uuid.UUID) error {
	if _, err := r.DB.Exec(ctx, clearTraineeTrainers, traineeID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if len(trainerIDs) == 0 {
		return nil
	}

	_, err := r.DB.Exec(ctx, addTraineeTrainers, traineeID, trainerIDs)
	switch {
	case err == nil:
		return nil
	case isForeignKeyViolation(err):
		return apperrors.EntityNotFound("Trainer not found")
	default:
		return fmt.Errorf("db error: %w", err)
	}
}

func (r *TraineeRepo) AddTrainer(ctx context.Context, traineeID uuid.UUID, trainerID uuid.UUID) error {
	_, err := r.DB.Exec(ctx, addTraineeTrainers, traineeID, []uuid.UUID{trainerID})
	switch {
	case err == nil:
		return nil
	case isForeignKeyViolation(err):
		return apperrors.EntityNotFound("Trainer not found")
	default:
		return fmt.Errorf("db error: %w", err)
	}
}

const listUnassignedTrainers = `-- name: ListUnassignedTrainers` + trainerSelect + `
WHERE u.active AND NOT EXISTS (
	SELECT 1 FROM trainee_trainers tt
	WHERE tt.trainer_id = tr.id AND tt.trainee_id = $1
)
ORDER BY u.username
`

func (r *TraineeRepo) ListUnassignedTrainers(ctx context.Context, traineeID uuid.UUID) ([]models.Trainer, error) {
	rows, _ := r.DB.Query(ctx, listUnassignedTrainers, traineeID)
	trainers, err := pgx.CollectRows(rows, rowToTrainer)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return trainers, nil
}

func rowToTrainee(row pgx.CollectableRow) (models.Trainee, error) {
	var t models.Trainee
	u := &t.User
	err := row.Scan(
		&t.ID,
		&u.ID, &u.CreatedAt, &u.Username, &u.HashedPassword, &u.FirstName, &u.LastName, &u.Active, &u.Role,
		&t.DateOfBirth, &t.Address,
	)
	return t, err
}
