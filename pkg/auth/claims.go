package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/sulavkarki/medpasal-backend/pkg/enums"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	UserID     uuid.UUID
	Role       enums.UserRole
	PharmacyID *uuid.UUID
	Verified   bool
	JTI        string
}

// AccessTokenClaims represents the typed JWT issued by the identity service.
type AccessTokenClaims struct {
	UserID     uuid.UUID      `json:"user_id"`
	Role       enums.UserRole `json:"role"`
	PharmacyID *uuid.UUID     `json:"pharmacy_id,omitempty"`
	Verified   bool           `json:"verified"`
	jwt.RegisteredClaims
}
