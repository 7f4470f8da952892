package trainee

import (
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nkiryanov/gym/internal/apperrors"
	"github.com/nkiryanov/gym/internal/models"
	"github.com/nkiryanov/gym/internal/repository"
	"github.com/nkiryanov/gym/internal/repository/postgres"
	"github.com/nkiryanov/gym/internal/service/user"
	"github.com/nkiryanov/gym/internal/testutil"
)

func ptr[T any](v T) *T { return &v }

func Test_TraineeService(t *testing.T) {
	t.Parallel()

	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	admin := models.User{Username: "admin", Role: models.RoleAdmin}
	dob := time.Date(1995, 5, 17, 0, 0, 0, 0, time.UTC)

	inTx := func(t *testing.T, fn func(s *TraineeService, users *user.UserService, storage repository.Storage)) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			storage := postgres.NewStorage(tx)
			users := user.NewService(user.BcryptHasher{Cost: 4}, storage)
			fn(NewService(users, storage), users, storage)
		})
	}

	register := func(t *testing.T, s *TraineeService) models.Trainee {
		t.Helper()
		trainee, _, err := s.Register(t.Context(), Registration{FirstName: "Anna", LastName: "Lee", DateOfBirth: &dob, Address: "Elm st."})
		require.NoError(t, err)
		return trainee
	}

	createTrainer := func(t *testing.T, users *user.UserService, storage repository.Storage, first string) models.Trainer {
		t.Helper()
		u, err := users.CreateUnique(t.Context(), storage, models.User{Username: first + ".Coach", Active: true, Role: models.RoleTrainer}, "pwd")
		require.NoError(t, err)
		tt, err := storage.Training().GetOrCreateType(t.Context(), "Yoga")
		require.NoError(t, err)
		trainer, err := storage.Trainer().CreateTrainer(t.Context(), models.Trainer{User: u, Specialization: tt})
		require.NoError(t, err)
		return trainer
	}

	t.Run("register", func(t *testing.T) {
		inTx(t, func(s *TraineeService, users *user.UserService, _ repository.Storage) {
			trainee, password, err := s.Register(t.Context(), Registration{FirstName: "Anna", LastName: "Lee", DateOfBirth: &dob})
			require.NoError(t, err)
			second, _, err := s.Register(t.Context(), Registration{FirstName: "Anna", LastName: "Lee"})
			require.NoError(t, err)

			assert.Equal(t, "Anna.Lee.1", trainee.User.Username)
			assert.Equal(t, "Anna.Lee.2", second.User.Username, "same names get next suffix")
			assert.Equal(t, models.RoleTrainee, trainee.User.Role)
			assert.Len(t, password, 10)

			_, err = users.VerifyCredentials(t.Context(), "Anna.Lee.1", password)
			require.NoError(t, err, "generated password has to be usable")
		})
	})

	t.Run("get", func(t *testing.T) {
		inTx(t, func(s *TraineeService, _ *user.UserService, _ repository.Storage) {
			trainee := register(t, s)

			p, err := s.Get(t.Context(), trainee.User, trainee.User.Username)
			require.NoError(t, err)
			assert.Equal(t, trainee.ID, p.ID)
			assert.Empty(t, p.Trainers)

			_, err = s.Get(t.Context(), models.User{Username: "other", Role: models.RoleTrainer}, trainee.User.Username)
			require.ErrorIs(t, err, apperrors.ErrForbidden)

			_, err = s.Get(t.Context(), admin, "ghost")
			require.ErrorIs(t, err, apperrors.ErrEntityNotFound)
		})
	})

	t.Run("update patch", func(t *testing.T) {
		inTx(t, func(s *TraineeService, _ *user.UserService, _ repository.Storage) {
			trainee := register(t, s)

			p, err := s.Update(t.Context(), trainee.User, trainee.User.Username, models.TraineePatch{
				UserPatch: models.UserPatch{FirstName: ptr("Hanna")},
				Address:   ptr("Oak st."),
			})

			require.NoError(t, err)
			assert.Equal(t, "Hanna", p.User.FirstName)
			assert.Equal(t, "Lee", p.User.LastName, "not patched field remains")
			assert.Equal(t, "Oak st.", p.Address)
			require.NotNil(t, p.DateOfBirth)
			assert.Equal(t, "1995-05-17", p.DateOfBirth.Format(time.DateOnly))
			assert.Equal(t, trainee.User.Username, p.User.Username, "username never changes")
		})
	})

	t.Run("set active and delete", func(t *testing.T) {
		inTx(t, func(s *TraineeService, _ *user.UserService, storage repository.Storage) {
			trainee := register(t, s)

			err := s.SetActive(t.Context(), trainee.User, trainee.User.Username, false)
			require.NoError(t, err)
			u, err := storage.User().GetUserByUsername(t.Context(), trainee.User.Username)
			require.NoError(t, err)
			assert.False(t, u.Active)

			err = s.Delete(t.Context(), admin, trainee.User.Username)
			require.NoError(t, err)
			_, err = s.Get(t.Context(), admin, trainee.User.Username)
			require.ErrorIs(t, err, apperrors.ErrEntityNotFound)
		})
	})

	t.Run("list only for admin", func(t *testing.T) {
		inTx(t, func(s *TraineeService, _ *user.UserService, _ repository.Storage) {
			trainee := register(t, s)

			_, err := s.List(t.Context(), trainee.User)
			require.ErrorIs(t, err, apperrors.ErrForbidden)

			list, err := s.List(t.Context(), admin)
			require.NoError(t, err)
			assert.Len(t, list, 1)
		})
	})

	t.Run("trainers", func(t *testing.T) {
		inTx(t, func(s *TraineeService, users *user.UserService, storage repository.Storage) {
			trainee := register(t, s)
			t1 := createTrainer(t, users, storage, "Bob")
			t2 := createTrainer(t, users, storage, "Carl")

			trainers, err := s.SetTrainers(t.Context(), trainee.User, trainee.User.Username, []string{t1.User.Username})
			require.NoError(t, err)
			require.Len(t, trainers, 1)
			assert.Equal(t, t1.ID, trainers[0].ID)

			unassigned, err := s.UnassignedTrainers(t.Context(), trainee.User, trainee.User.Username)
			require.NoError(t, err)
			require.Len(t, unassigned, 1)
			assert.Equal(t, t2.ID, unassigned[0].ID)

			_, err = s.SetTrainers(t.Context(), trainee.User, trainee.User.Username, []string{"ghost"})
			require.ErrorIs(t, err, apperrors.ErrEntityNotFound)

			p, err := s.Get(t.Context(), trainee.User, trainee.User.Username)
			require.NoError(t, err)
			assert.Len(t, p.Trainers, 1, "failed update has to be rolled back")
		})
	})

	t.Run("trainings", func(t *testing.T) {
		inTx(t, func(s *TraineeService, _ *user.UserService, _ repository.Storage) {
			trainee := register(t, s)

			trainings, err := s.Trainings(t.Context(), trainee.User, trainee.User.Username, models.TrainingFilter{TraineeUsername: "someone-else"})

			require.NoError(t, err)
			assert.Empty(t, trainings)

			_, err = s.Trainings(t.Context(), models.User{Username: "x"}, trainee.User.Username, models.TrainingFilter{})
			require.ErrorIs(t, err, apperrors.ErrForbidden)
		})
	})
}
