package models

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleTrainee Role = "TRAINEE"
	RoleTrainer Role = "TRAINER"
	RoleAdmin   Role = "ADMIN"
)

type User struct {
	ID             uuid.UUID
	CreatedAt      time.Time
	Username       string
	HashedPassword string
	FirstName      string
	LastName       string
	Active         bool
	Role           Role
}

// Patch for user fields, nil means "leave as is"
type UserPatch struct {
	FirstName *string
	LastName  *string
	Active    *bool
}

func (u *User) Apply(p UserPatch) {
	if p.FirstName != nil {
		u.FirstName = *p.FirstName
	}
	if p.LastName != nil {
		u.LastName = *p.LastName
	}
	if p.Active != nil {
		u.Active = *p.Active
	}
}

func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// User may read or change the account of username: own account or admin
func (u User) CanManage(username string) bool {
	return u.IsAdmin() || u.Username == username
}
