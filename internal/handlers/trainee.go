package handlers

import (
	"net/http"

	"github.com/nkiryanov/gym/internal/handlers/render"
	"github.com/nkiryanov/gym/internal/logger"
	"github.com/nkiryanov/gym/internal/models"
	"github.com/nkiryanov/gym/internal/service/trainee"
)

func handleRegisterTrainee(s traineeService, l logger.Logger) http.Handler {
	type request struct {
		FirstName   string  `json:"firstName" validate:"required,notblank"`
		LastName    string  `json:"lastName" validate:"required,notblank"`
		DateOfBirth *string `json:"dateOfBirth" validate:"omitempty,datetime=2006-01-02"`
		Address     string  `json:"address"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		dob, err := parseDate("dateOfBirth", data.DateOfBirth)
		if err != nil {
			renderError(w, r, l, err)
			return
		}

		t, password, err := s.Register(r.Context(), trainee.Registration{
			FirstName:   data.FirstName,
			LastName:    data.LastName,
			DateOfBirth: dob,
			Address:     data.Address,
		})
		if err != nil {
			renderError(w, r, l, err)
			return
		}

		render.Created(w, credentialsResponse{Username: t.User.Username, Password: password})
	})
}

func handleListTrainees(s traineeService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		trainees, err := s.List(r.Context(), principal(r))
		if err != nil {
			renderError(w, r, l, err)
			return
		}

		render.JSON(w, mapSlice(trainees, newTraineeResponse))
	})
}

func handleGetTrainee(s traineeService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, err := s.Get(r.Context(), principal(r), r.PathValue("username"))
		if err != nil {
			renderError(w, r, l, err)
			return
		}

		render.JSON(w, newTraineeProfileResponse(p))
	})
}

func handleUpdateTrainee(s traineeService, l logger.Logger) http.Handler {
	// Absent fields are left as is
	type request struct {
		FirstName   *string `json:"firstName" validate:"omitempty,notblank"`
		LastName    *string `json:"lastName" validate:"omitempty,notblank"`
		DateOfBirth *string `json:"dateOfBirth" validate:"omitempty,datetime=2006-01-02"`
		Address     *string `json:"address"`
		Active      *bool   `json:"active"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		dob, err := parseDate("dateOfBirth", data.DateOfBirth)
		if err != nil {
			renderError(w, r, l, err)
			return
		}

		p, err := s.Update(r.Context(), principal(r), r.PathValue("username"), models.TraineePatch{
			UserPatch: models.UserPatch{
				FirstName: data.FirstName,
				LastName:  data.LastName,
				Active:    data.Active,
			},
			DateOfBirth: dob,
			Address:     data.Address,
		})
		if err != nil {
			renderError(w, r, l, err)
			return
		}

		render.JSON(w, newTraineeProfileResponse(p))
	})
}

func handleDeleteTrainee(s traineeService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := s.Delete(r.Context(), principal(r), r.PathValue("username")); err != nil {
			renderError(w, r, l, err)
			return
		}

		render.NoContent(w)
	})
}

func handleSetTraineeActive(s traineeService, l logger.Logger) http.Handler {
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

func handleSetTraineeTrainers(s traineeService, l logger.Logger) http.Handler {
	type request struct {
		Trainers []string `json:"trainers" validate:"dive,notblank"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		trainers, err := s.SetTrainers(r.Context(), principal(r), r.PathValue("username"), data.Trainers)
		if err != nil {
			renderError(w, r, l, err)
			return
		}

		render.JSON(w, mapSlice(trainers, newTrainerResponse))
	})
}

func handleUnassignedTrainers(s traineeService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		trainers, err := s.UnassignedTrainers(r.Context(), principal(r), r.PathValue("username"))
		if err != nil {
			renderError(w, r, l, err)
			return
		}

		render.JSON(w, mapSlice(trainers, newTrainerResponse))
	})
}

func handleTraineeTrainings(s traineeService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		filter, err := trainingFilter(r)
		if err != nil {
			renderError(w, r, l, err)
			return
		}
		filter.TrainerUsername = r.URL.Query().Get("trainerName")

		trainings, err := s.Trainings(r.Context(), principal(r), r.PathValue("username"), filter)
		if err != nil {
			renderError(w, r, l, err)
			return
		}

		render.JSON(w, mapSlice(trainings, newTrainingResponse))
	})
}
