package model

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidProfile is returned by User.Validate.
var ErrInvalidProfile = errors.New("invalid profile")

// User is the trainee profile. At most one exists.
type User struct {
	ID          string  `json:"id" yaml:"id"`
	Name        string  `json:"name" yaml:"name"`
	Position    string  `json:"position" yaml:"position"`
	Department  string  `json:"department" yaml:"department"`
	Supervisor  string  `json:"supervisor" yaml:"supervisor"`
	TargetHours float64 `json:"targetHours" yaml:"targetHours"`
}

// Validate checks the profile fields the same way the onboarding form does.
func (u User) Validate() error {
	fields := []struct {
		name  string
		value string
	}{
		{"name", u.Name},
		{"position", u.Position},
		{"department", u.Department},
		{"supervisor", u.Supervisor},
	}
	for _, f := range fields {
		if len([]rune(strings.TrimSpace(f.value))) < 2 {
			return fmt.Errorf("%w: %s must be at least 2 characters", ErrInvalidProfile, f.name)
		}
	}
	if u.TargetHours < 1 {
		return fmt.Errorf("%w: target hours must be at least 1", ErrInvalidProfile)
	}
	return nil
}
