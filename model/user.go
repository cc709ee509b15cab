package model

import "time"

// Role is the kind of account a user holds
type Role string

const (
	RoleClient Role = "client"
	RoleLawyer Role = "lawyer"
	RoleAdmin  Role = "admin"
)

func (r Role) Valid() bool {
	return r == RoleClient || r == RoleLawyer || r == RoleAdmin
}

// User is an account of the platform
type User struct {
	ID                   string    `json:"id"`
	Name                 string    `json:"name"`
	Email                string    `json:"email"`
	PasswordHash         string    `json:"-"`
	Role                 Role      `json:"role"`
	Phone                string    `json:"phone,omitempty"`
	Specialization       string    `json:"specialization,omitempty"`
	BarAssociationNumber string    `json:"barAssociationNumber,omitempty"`
	CreatedAt            time.Time `json:"createdAt"`
	UpdatedAt            time.Time `json:"updatedAt"`
}

// Party is the public view of a user embedded in contract responses
type Party struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Email          string `json:"email"`
	Specialization string `json:"specialization,omitempty"`
}

func (u *User) Party() *Party {
	if u == nil {
		return nil
	}
	return &Party{ID: u.ID, Name: u.Name, Email: u.Email, Specialization: u.Specialization}
}
