package handlers

import (
	"context"
	"net/http"

	"github.com/nkiryanov/gym/internal/handlers/middleware"
	"github.com/nkiryanov/gym/internal/logger"
	"github.com/nkiryanov/gym/internal/models"
	"github.com/nkiryanov/gym/internal/service/trainee"
	"github.com/nkiryanov/gym/internal/service/trainer"
	"github.com/nkiryanov/gym/internal/service/training"
)

// chain applies middlewares in the given order: m1(m2(...(h)))
func chain(h http.Handler, mds ...func(next http.Handler) http.Handler) http.Handler {
	for i := len(mds) - 1; i >= 0; i-- {
		h = mds[i](h)
	}
	return h
}

type Services struct {
	Auth      authService
	Users     userService
	Trainees  traineeService
	Trainers  trainerService
	Trainings trainingService
}

func NewRouter(s Services, logger logger.Logger) http.Handler {
	withAuth := middleware.AuthMiddleware(s.Auth)
	onlyAdmin := middleware.RequireRole(models.RoleAdmin)
	onlyTrainer := middleware.RequireRole(models.RoleTrainer)
	onlyStaff := middleware.RequireRole(models.RoleTrainer, models.RoleAdmin)

	api := http.NewServeMux()

	api.Handle("POST /auth/signup", handleSignup(s.Auth, logger))
	api.Handle("POST /auth/login", handleLogin(s.Auth, logger))
	api.Handle("POST /auth/authenticate", handleAuthenticate(s.Auth, logger))
	api.Handle("POST /auth/refresh", handleRefresh(s.Auth, logger))
	api.Handle("POST /auth/logout", handleLogout(s.Auth, logger))

	api.Handle("GET /users", chain(handleListUsers(s.Users, logger), withAuth))
	api.Handle("GET /users/{username}", chain(handleGetUser(s.Users, logger), withAuth))
	api.Handle("PUT /users/password", chain(handleChangePassword(s.Users, logger), withAuth))
	api.Handle("DELETE /users/{username}", chain(handleDeleteUser(s.Users, logger), withAuth, onlyAdmin))

	api.Handle("POST /trainees", handleRegisterTrainee(s.Trainees, logger))
	api.Handle("GET /trainees", chain(handleListTrainees(s.Trainees, logger), withAuth))
	api.Handle("GET /trainees/{username}", chain(handleGetTrainee(s.Trainees, logger), withAuth))
	api.Handle("PUT /trainees/{username}", chain(handleUpdateTrainee(s.Trainees, logger), withAuth))
	api.Handle("DELETE /trainees/{username}", chain(handleDeleteTrainee(s.Trainees, logger), withAuth))
	api.Handle("PATCH /trainees/{username}/active", chain(handleSetTraineeActive(s.Trainees, logger), withAuth))
	api.Handle("PUT /trainees/{username}/trainers", chain(handleSetTraineeTrainers(s.Trainees, logger), withAuth))
	api.Handle("GET /trainees/{username}/trainers/unassigned", chain(handleUnassignedTrainers(s.Trainees, logger), withAuth))
	api.Handle("GET /trainees/{username}/trainings", chain(handleTraineeTrainings(s.Trainees, logger), withAuth))

	api.Handle("POST /trainers", handleRegisterTrainer(s.Trainers, logger))
	api.Handle("GET /trainers", chain(handleListTrainers(s.Trainers, logger), withAuth))
	api.Handle("GET /trainers/{username}", chain(handleGetTrainer(s.Trainers, logger), withAuth))
	api.Handle("PUT /trainers/{username}", chain(handleUpdateTrainer(s.Trainers, logger), withAuth))
	api.Handle("PATCH /trainers/{username}/active", chain(handleSetTrainerActive(s.Trainers, logger), withAuth))
	api.Handle("GET /trainers/{username}/trainings", chain(handleTrainerTrainings(s.Trainers, logger), withAuth))
	api.Handle("POST /trainers/trainees/{traineeUsername}", chain(handleAssignTrainee(s.Trainers, logger), withAuth, onlyTrainer))

	api.Handle("POST /trainings", chain(handleAddTraining(s.Trainings, logger), withAuth, onlyStaff))
	api.Handle("GET /trainings/types", chain(handleTrainingTypes(s.Trainings, logger), withAuth))

	root := http.NewServeMux()
	root.Handle("/api/", http.StripPrefix("/api", api))

	handler := chain(root,
		middleware.LoggerMiddleware(logger),
		middleware.JSONErrors,
	)

	return handler
}

type authService interface {
	// Register user with unique username derived from the given one
	Signup(ctx context.Context, username string, password string) (models.Authentication, error)

	// Issue one more token pair, existing sessions stay valid
	// Has to return apperrors.ErrUserNotFound if user not found
	Login(ctx context.Context, username string, password string) (models.Authentication, error)

	// Issue token pair and revoke all existing ones
	Authenticate(ctx context.Context, username string, password string) (models.Authentication, error)

	// Exchange "Bearer <refresh>" header for a new access token
	Refresh(ctx context.Context, authHeader string) (models.Authentication, error)

	// Revoke token from the header. Never fails on unknown tokens
	Logout(ctx context.Context, authHeader string) error

	// Resolve "Bearer <access>" header into user
	Principal(ctx context.Context, authHeader string) (models.User, error)
}

type userService interface {
	List(ctx context.Context, actor models.User) ([]models.User, error)
	Get(ctx context.Context, actor models.User, username string) (models.User, error)
	ChangePassword(ctx context.Context, actor models.User, username string, oldPassword string, newPassword string) error
	Delete(ctx context.Context, actor models.User, username string) error
}

type traineeService interface {
	// Returns created trainee and generated password
	Register(ctx context.Context, r trainee.Registration) (models.Trainee, string, error)
	Get(ctx context.Context, actor models.User, username string) (trainee.Profile, error)
	List(ctx context.Context, actor models.User) ([]models.Trainee, error)
	Update(ctx context.Context, actor models.User, username string, patch models.TraineePatch) (trainee.Profile, error)
	Delete(ctx context.Context, actor models.User, username string) error
	SetActive(ctx context.Context, actor models.User, username string, active bool) error
	SetTrainers(ctx context.Context, actor models.User, username string, trainerUsernames []string) ([]models.Trainer, error)
	UnassignedTrainers(ctx context.Context, actor models.User, username string) ([]models.Trainer, error)
	Trainings(ctx context.Context, actor models.User, username string, filter models.TrainingFilter) ([]models.Training, error)
}

type trainerService interface {
	// Returns created trainer and generated password
	Register(ctx context.Context, r trainer.Registration) (models.Trainer, string, error)
	Get(ctx context.Context, username string) (trainer.Profile, error)
	List(ctx context.Context) ([]models.Trainer, error)
	Update(ctx context.Context, actor models.User, username string, patch models.UserPatch) (trainer.Profile, error)
	SetActive(ctx context.Context, actor models.User, username string, active bool) error
	Trainings(ctx context.Context, actor models.User, username string, filter models.TrainingFilter) ([]models.Training, error)
	AssignTrainee(ctx context.Context, actor models.User, traineeUsername string) error
}

type trainingService interface {
	Add(ctx context.Context, actor models.User, t training.NewTraining) (models.Training, error)
	Types(ctx context.Context) ([]models.TrainingType, error)
}
