package model

import (
	"strings"
	"time"
)

// Validation limits for User.
const (
	MinUserAge        = 18
	MaxUserAge        = 120
	MaxUsernameLength = 64
)

// User is an application account with contact details.
type User struct {
	ID           string    `json:"id" yaml:"id"`
	Username     string    `json:"username" yaml:"username"`
	FirstName    string    `json:"first_name" yaml:"first_name"`
	LastName     string    `json:"last_name" yaml:"last_name"`
	Address      string    `json:"address" yaml:"address"`
	Email        string    `json:"email" yaml:"email"`
	Age          int       `json:"age" yaml:"age"`
	PhoneNumber  string    `json:"phone_number" yaml:"phone_number"`
	PasswordHash string    `json:"-" yaml:"-"` // Never exported
	CreatedOn    time.Time `json:"created_on" yaml:"created_on"`
}

func (u *User) Table() string   { return TableUser }
func (u *User) GetID() string   { return u.ID }
func (u *User) SetID(id string) { u.ID = id }

// Validate reports every field that violates the account rules.
func (u *User) Validate() []FieldError {
	var errors []FieldError

	if u.Username == "" {
		errors = append(errors, FieldError{Field: "username", Message: "username is required"})
	} else if len(u.Username) > MaxUsernameLength {
		errors = append(errors, FieldError{Field: "username", Message: "username must be 64 characters or less"})
	}
	if !strings.Contains(u.Email, "@") {
		errors = append(errors, FieldError{Field: "email", Message: "email must be a valid address"})
	}
	if u.Age < MinUserAge || u.Age > MaxUserAge {
		errors = append(errors, FieldError{Field: "age", Message: "age must be between 18 and 120"})
	}
	if u.PasswordHash == "" {
		errors = append(errors, FieldError{Field: "password", Message: "password is required"})
	}

	return errors
}
