package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type TrainingType struct {
	ID   int64
	Name string
}

type Trainee struct {
	ID          uuid.UUID
	User        User
	DateOfBirth *time.Time
	Address     string
}

type TraineePatch struct {
	UserPatch
	DateOfBirth *time.Time
	Address     *string
}

func (t *Trainee) Apply(p TraineePatch) {
	t.User.Apply(p.UserPatch)
	if p.DateOfBirth != nil {
		t.DateOfBirth = p.DateOfBirth
	}
	if p.Address != nil {
		t.Address = *p.Address
	}
}

type Trainer struct {
	ID             uuid.UUID
	User           User
	Specialization TrainingType
}

type Training struct {
	ID              uuid.UUID
	TraineeUsername string
	TrainerUsername string
	Name            string
	Type            string
	Date            time.Time
	Duration        decimal.Decimal
}

// Trainings filter. Zero values are not applied
type TrainingFilter struct {
	TraineeUsername string
	TrainerUsername string
	PeriodFrom      *time.Time
	PeriodTo        *time.Time
	TrainingType    string
}
