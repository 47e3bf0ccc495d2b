package auth

import (
	"slices"

	"github.com/golang-jwt/jwt/v5"
)

// Claims represents the JWT claims accepted by the threat service.
type Claims struct {
	jwt.RegisteredClaims
	Roles []string `json:"roles"`
}

// HasRole checks if the claims include the specified role.
func (c Claims) HasRole(role string) bool {
	return slices.Contains(c.Roles, role)
}

// Role constants
const (
	// RoleAnalyst may submit records for analysis and read verdicts.
	RoleAnalyst = "analyst"
	// RoleAdmin may do everything an analyst can and inspect the model.
	RoleAdmin = "admin"
	// RoleSensor may only submit records.
	RoleSensor = "sensor"
)
