package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Roles understood by the service. Any other value is rejected at the
// policy layer.
const (
	RoleAdmin    = "admin"
	RoleDriver   = "driver"
	RoleReporter = "reporter"
)

var jwtSecret []byte

// Init sets the HS256 signing secret. Must be called before tokens are
// minted or validated.
func Init(secret string) {
	jwtSecret = []byte(secret)
}

type Claims struct {
	UserID string `json:"sub"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// Actor is the authenticated caller as seen by the service layer.
type Actor struct {
	ID   string
	Role string
}

func (a Actor) IsAdmin() bool    { return a.Role == RoleAdmin }
func (a Actor) IsDriver() bool   { return a.Role == RoleDriver }
func (a Actor) IsReporter() bool { return a.Role == RoleReporter }

func (c *Claims) Actor() Actor {
	return Actor{ID: c.UserID, Role: c.Role}
}

func GenerateToken(userID, role string) (string, error) {
	claims := Claims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(12 * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jwtSecret)
}

func ValidateToken(tokenString string) (*Claims, error) {
	tokenString = strings.TrimPrefix(tokenString, "Bearer ")

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return jwtSecret, nil
	})
	if err != nil {
		return nil, err
	}
	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}
	return nil, errors.New("invalid token")
}
