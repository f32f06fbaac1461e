package user

import "strings"

type CreateUserDTO struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	RoleID   int64  `json:"role_id"`
}

type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func (d *CreateUserDTO) Validate() error {
	d.Email = strings.TrimSpace(strings.ToLower(d.Email))
	if d.Email == "" || !strings.Contains(d.Email, "@") {
		return &ValidationError{Msg: "a valid email is required"}
	}
	if len(d.Password) < 8 {
		return &ValidationError{Msg: "password must be at least 8 characters"}
	}
	if d.RoleID <= 0 {
		return &ValidationError{Msg: "role_id is required"}
	}
	return nil
}

type UserStatusDTO struct {
	IsActive bool `json:"is_active"`
}
