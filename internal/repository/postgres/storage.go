package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/nkiryanov/gym/internal/repository"
)

// DBTX is satisfied by both *pgxpool.Pool and pgx.Tx
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

type Storage struct {
	db DBTX
}

func NewStorage(db DBTX) repository.Storage {
	return &Storage{db: db}
}

func (s *Storage) User() repository.UserRepo {
	return &UserRepo{DB: s.db}
}

func (s *Storage) Token() repository.TokenRepo {
	return &TokenRepo{DB: s.db}
}

func (s *Storage) Trainee() repository.TraineeRepo {
	return &TraineeRepo{DB: s.db}
}

func (s *Storage) Trainer() repository.TrainerRepo {
	return &TrainerRepo{DB: s.db}
}

func (s *Storage) Training() repository.TrainingRepo {
	return &TrainingRepo{DB: s.db}
}

// Run fn in transaction. If called on transaction storage a savepoint is used
func (s *Storage) InTx(ctx context.Context, fn func(repository.Storage) error) (err error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("db tx error: %w", err)
	}

	defer func() {
		switch err {
		case nil:
			err = tx.Commit(ctx)
		default:
			_ = tx.Rollback(ctx)
		}
	}()

	err = fn(NewStorage(tx))

	return err
}

func isViolation(err error, code string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code
}

func isUniqueViolation(err error) bool {
	return isViolation(err, pgerrcode.UniqueViolation)
}

func isForeignKeyViolation(err error) bool {
	return isViolation(err, pgerrcode.ForeignKeyViolation)
}

func isCheckViolation(err error) bool {
	return isViolation(err, pgerrcode.CheckViolation)
}

func isNumericOutOfRange(err error) bool {
	return isViolation(err, pgerrcode.NumericValueOutOfRange)
}
