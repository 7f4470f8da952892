package handlers

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/nkiryanov/gym/internal/handlers/render"
	"github.com/nkiryanov/gym/internal/logger"
	"github.com/nkiryanov/gym/internal/service/training"
)

func handleAddTraining(s trainingService, l logger.Logger) http.Handler {
	type request struct {
		TraineeUsername string `json:"traineeUsername" validate:"required,notblank"`
		// Calling trainer if empty
		TrainerUsername string          `json:"trainerUsername"`
		Name            string          `json:"name" validate:"required,notblank"`
		Type            string          `json:"type"`
		Date            string          `json:"date" validate:"required,datetime=2006-01-02"`
		Duration        decimal.Decimal `json:"duration" validate:"required"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		date, err := parseDate("date", &data.Date)
		if err != nil {
			renderError(w, r, l, err)
			return
		}

		t, err := s.Add(r.Context(), principal(r), training.NewTraining{
			TraineeUsername: data.TraineeUsername,
			TrainerUsername: data.TrainerUsername,
			Name:            data.Name,
			Type:            data.Type,
			Date:            *date,
			Duration:        data.Duration,
		})
		if err != nil {
			renderError(w, r, l, err)
			return
		}

		render.Created(w, newTrainingResponse(t))
	})
}

func handleTrainingTypes(s trainingService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		types, err := s.Types(r.Context())
		if err != nil {
			renderError(w, r, l, err)
			return
		}

		render.JSON(w, mapSlice(types, newTrainingTypeResponse))
	})
}
