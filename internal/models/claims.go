package models

import (
	"github.com/golang-jwt/jwt/v5"
)

// AdminClaims is the JWT payload for the single configured admin.
type AdminClaims struct {
	AdminID int64  `json:"admin_id"`
	Role    string `json:"role"`
	jwt.RegisteredClaims
}
