package handlers

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/nkiryanov/gym/internal/models"
	"github.com/nkiryanov/gym/internal/service/trainee"
	"github.com/nkiryanov/gym/internal/service/trainer"
)

type messageResponse struct {
	Message string `json:"message"`
}

// Returned once on profile registration, password is never shown again
type credentialsResponse struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type activeResponse struct {
	Username string `json:"username"`
	Active   bool   `json:"active"`
}

type userResponse struct {
	Username  string      `json:"username"`
	FirstName string      `json:"firstName"`
	LastName  string      `json:"lastName"`
	Active    bool        `json:"active"`
	Role      models.Role `json:"role"`
}

func newUserResponse(u models.User) userResponse {
	return userResponse{
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Active:    u.Active,
		Role:      u.Role,
	}
}

type traineeResponse struct {
	Username    string  `json:"username"`
	FirstName   string  `json:"firstName"`
	LastName    string  `json:"lastName"`
	DateOfBirth *string `json:"dateOfBirth"`
	Address     string  `json:"address"`
	Active      bool    `json:"active"`
}

func newTraineeResponse(t models.Trainee) traineeResponse {
	var dob *string
	if t.DateOfBirth != nil {
		s := t.DateOfBirth.Format(time.DateOnly)
		dob = &s
	}

	return traineeResponse{
		Username:    t.User.Username,
		FirstName:   t.User.FirstName,
		LastName:    t.User.LastName,
		DateOfBirth: dob,
		Address:     t.Address,
		Active:      t.User.Active,
	}
}

type traineeProfileResponse struct {
	traineeResponse
	Trainers []trainerResponse `json:"trainers"`
}

func newTraineeProfileResponse(p trainee.Profile) traineeProfileResponse {
	return traineeProfileResponse{
		traineeResponse: newTraineeResponse(p.Trainee),
		Trainers:        mapSlice(p.Trainers, newTrainerResponse),
	}
}

type trainerResponse struct {
	Username       string `json:"username"`
	FirstName      string `json:"firstName"`
	LastName       string `json:"lastName"`
	Specialization string `json:"specialization"`
	Active         bool   `json:"active"`
}

func newTrainerResponse(t models.Trainer) trainerResponse {
	return trainerResponse{
		Username:       t.User.Username,
		FirstName:      t.User.FirstName,
		LastName:       t.User.LastName,
		Specialization: t.Specialization.Name,
		Active:         t.User.Active,
	}
}

type trainerProfileResponse struct {
	trainerResponse
	Trainees []traineeResponse `json:"trainees"`
}

func newTrainerProfileResponse(p trainer.Profile) trainerProfileResponse {
	return trainerProfileResponse{
		trainerResponse: newTrainerResponse(p.Trainer),
		Trainees:        mapSlice(p.Trainees, newTraineeResponse),
	}
}

type trainingResponse struct {
	Name            string          `json:"name"`
	Type            string          `json:"type"`
	Date            string          `json:"date"`
	Duration        decimal.Decimal `json:"duration"`
	TraineeUsername string          `json:"traineeUsername"`
	TrainerUsername string          `json:"trainerUsername"`
}

func newTrainingResponse(t models.Training) trainingResponse {
	return trainingResponse{
		Name:            t.Name,
		Type:            t.Type,
		Date:            t.Date.Format(time.DateOnly),
		Duration:        t.Duration,
		TraineeUsername: t.TraineeUsername,
		TrainerUsername: t.TrainerUsername,
	}
}

type trainingTypeResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

func newTrainingTypeResponse(t models.TrainingType) trainingTypeResponse {
	return trainingTypeResponse{ID: t.ID, Name: t.Name}
}

// Never returns nil so empty lists are rendered as []
func mapSlice[T, R any](in []T, fn func(T) R) []R {
	out := make([]R, 0, len(in))
	for _, v := range in {
		out = append(out, fn(v))
	}
	return out
}
