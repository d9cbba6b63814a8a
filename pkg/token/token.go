package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// RoleType classifies a logged-in session.
type RoleType string

const (
	// RoleSuperAdmin is the configured super administrator
	RoleSuperAdmin RoleType = "super_admin"
	// RoleAdmin is a wing-level administrator from the duty roster
	RoleAdmin RoleType = "admin"
	// RoleInspector is a roster member without admin duties
	RoleInspector RoleType = "inspector"
)

// Claims structure for custom claims in JWT
type Claims struct {
	CAPID string `json:"capid"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// Secret Key for JWT signing and validation
var (
	JWTSecret       = []byte("secure_secret_key")
	tokenExpiration = 12 * time.Hour
)

// GenerateJWT generates a JWT token
func GenerateJWT(capid, role, issuer string) (string, error) {
	claims := Claims{
		CAPID: capid,
		Role:  role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(tokenExpiration)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(JWTSecret)
}

// ParseJWT parses a JWT and extracts the Claims
func ParseJWT(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return JWTSecret, nil
	})

	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}

	return claims, nil
}

// IsAdmin reports whether the role carries admin rights.
func IsAdmin(role string) bool {
	return role == string(RoleAdmin) || role == string(RoleSuperAdmin)
}
