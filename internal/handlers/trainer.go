package handlers

import (
	"net/http"

	"github.com/nkiryanov/gym/internal/handlers/render"
	"github.com/nkiryanov/gym/internal/logger"
	"github.com/nkiryanov/gym/internal/models"
	"github.com/nkiryanov/gym/internal/service/trainer"
)

func handleRegisterTrainer(s trainerService, l logger.Logger) http.Handler {
	type request struct {
		FirstName      string `json:"firstName" validate:"required,notblank"`
		LastName       string `json:"lastName" validate:"required,notblank"`
		Specialization string `json:"specialization" validate:"required,notblank"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		t, password, err := s.Register(r.Context(), trainer.Registration(data))
		if err != nil {
			renderError(w, r, l, err)
			return
		}

		render.Created(w, credentialsResponse{Username: t.User.Username, Password: password})
	})
}

func handleListTrainers(s trainerService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		trainers, err := s.List(r.Context())
		if err != nil {
			renderError(w, r, l, err)
			return
		}

		render.JSON(w, mapSlice(trainers, newTrainerResponse))
	})
}

func handleGetTrainer(s trainerService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, err := s.Get(r.Context(), r.PathValue("username"))
		if err != nil {
			renderError(w, r, l, err)
			return
		}

		render.JSON(w, newTrainerProfileResponse(p))
	})
}

func handleUpdateTrainer(s trainerService, l logger.Logger) http.Handler {
	// Specialization can't be changed
	type request struct {
		FirstName *string `json:"firstName" validate:"omitempty,notblank"`
		LastName  *string `json:"lastName" validate:"omitempty,notblank"`
		Active    *bool   `json:"active"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		p, err := s.Update(r.Context(), principal(r), r.PathValue("username"), models.UserPatch(data))
		if err != nil {
			renderError(w, r, l, err)
			return
		}

		render.JSON(w, newTrainerProfileResponse(p))
	})
}

func handleSetTrainerActive(s trainerService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		active, err := queryBool(r, "active")
		if err != nil {
			renderError(w, r, l, err)
			return
		}

		username := r.PathValue("username")
		if err := s.SetActive(r.Context(), principal(r), username, active); err != nil {
			renderError(w, r, l, err)
			return
		}

		render.JSON(w, activeResponse{Username: username, Active: active})
	})
}

func handleTrainerTrainings(s trainerService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		filter, err := trainingFilter(r)
		if err != nil {
			renderError(w, r, l, err)
			return
		}
		filter.TraineeUsername = r.URL.Query().Get("traineeName")

		trainings, err := s.Trainings(r.Context(), principal(r), r.PathValue("username"), filter)
		if err != nil {
			renderError(w, r, l, err)
			return
		}

		render.JSON(w, mapSlice(trainings, newTrainingResponse))
	})
}

// Calling trainer takes the trainee
func handleAssignTrainee(s trainerService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := s.AssignTrainee(r.Context(), principal(r), r.PathValue("traineeUsername")); err != nil {
			renderError(w, r, l, err)
			return
		}

		render.JSON(w, messageResponse{Message: "Trainee assigned"})
	})
}
