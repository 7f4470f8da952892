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

type TrainingRepo struct {
	DB DBTX
}

const getOrCreateType = `-- name: GetOrCreateType
WITH inserted AS (
	INSERT INTO training_types (name) VALUES ($1)
	ON CONFLICT (name) DO NOTHING
	RETURNING id, name
)
SELECT id, name FROM inserted
UNION ALL
SELECT id, name FROM training_types WHERE name = $1
LIMIT 1
`

func (r *TrainingRepo) GetOrCreateType(ctx context.Context, name string) (models.TrainingType, error) {
	rows, _ := r.DB.Query(ctx, getOrCreateType, name)
	tt, err := pgx.CollectOneRow(rows, pgx.RowToStructByPos[models.TrainingType])
	if err != nil {
		return tt, fmt.Errorf("db error: %w", err)
	}
	return tt, nil
}

const listTypes = `-- name: ListTypes
SELECT id, name FROM training_types
ORDER BY name
`

func (r *TrainingRepo) ListTypes(ctx context.Context) ([]models.TrainingType, error) {
	rows, _ := r.DB.Query(ctx, listTypes)
	types, err := pgx.CollectRows(rows, pgx.RowToStructByPos[models.TrainingType])
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return types, nil
}

const createTraining = `-- name: CreateTraining
WITH created AS (
	INSERT INTO trainings (id, trainee_id, trainer_id, name, training_type_id, date, duration)
	SELECT $1, te.id, tr.id, $4, tt.id, $6, $7
	FROM trainees te
	JOIN users ue ON ue.id = te.user_id AND ue.username = $2
	CROSS JOIN trainers tr
	JOIN users ur ON ur.id = tr.user_id AND ur.username = $3
	CROSS JOIN training_types tt
	WHERE tt.name = $5
	RETURNING id, name, training_type_id, date, duration
)
SELECT c.id, $2::text, $3::text, c.name, tt.name, c.date, c.duration
FROM created c
JOIN training_types tt ON tt.id = c.training_type_id
`

// Trainee, trainer and training type are resolved by name.
// If any of them is missing apperrors.ErrEntityNotFound returned.
// Duration rejected by the column constraints returns apperrors.ErrValidation
func (r *TrainingRepo) CreateTraining(ctx context.Context, t models.Training) (models.Training, error) {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}

	rows, _ := r.DB.Query(ctx, createTraining,
		t.ID, t.TraineeUsername, t.TrainerUsername, t.Name, t.Type, t.Date, t.Duration,
	)
	training, err := pgx.CollectOneRow(rows, rowToTraining)

	switch {
	case err == nil:
		return training, nil
	case errors.Is(err, pgx.ErrNoRows):
		return training, apperrors.EntityNotFound("Trainee, trainer or training type not found")
	case isCheckViolation(err), isNumericOutOfRange(err):
		return training, apperrors.Validation("duration: out of range")
	default:
		return training, fmt.Errorf("db error: %w", err)
	}
}

const listTrainings = `-- name: ListTrainings
SELECT t.id, ue.username, ur.username, t.name, tt.name, t.date, t.duration
FROM trainings t
JOIN trainees te ON te.id = t.trainee_id
JOIN users ue ON ue.id = te.user_id
JOIN trainers tr ON tr.id = t.trainer_id
JOIN users ur ON ur.id = tr.user_id
JOIN training_types tt ON tt.id = t.training_type_id
WHERE ($1::text = '' OR ue.username = $1)
	AND ($2::text = '' OR ur.username = $2)
	AND ($3::date IS NULL OR t.date >= $3)
	AND ($4::date IS NULL OR t.date <= $4)
	AND ($5::text = '' OR lower(tt.name) = lower($5))
ORDER BY t.date, t.name
`

func (r *TrainingRepo) ListTrainings(ctx context.Context, f models.TrainingFilter) ([]models.Training, error) {
	rows, _ := r.DB.Query(ctx, listTrainings,
		f.TraineeUsername, f.TrainerUsername, f.PeriodFrom, f.PeriodTo, f.TrainingType,
	)
	trainings, err := pgx.CollectRows(rows, rowToTraining)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return trainings, nil
}

func rowToTraining(row pgx.CollectableRow) (models.Training, error) {
	var t models.Training
	err := row.Scan(&t.ID, &t.TraineeUsername, &t.TrainerUsername, &t.Name, &t.Type, &t.Date, &t.Duration)
	return t, err
}
