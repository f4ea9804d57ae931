package jwt

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// CustomClaims carries the identity of a session. The registered jti claim is
// the session id, so a token is only honoured while its session exists.
type CustomClaims struct {
	UserID        uuid.UUID `json:"user_id"`
	Role          string    `json:"role"`
	InstitutionID uuid.UUID `json:"institution_id"`
	jwt.RegisteredClaims
}

// SessionID returns the session id carried in the jti claim
func (c *CustomClaims) SessionID() (uuid.UUID, error) {
	return uuid.Parse(c.ID)
}

// GenerateToken signs an HS256 token for the given session identity.
// The token expires after duration.
func GenerateToken(secret string, duration time.Duration, sessionID, userID uuid.UUID, role string, institutionID uuid.UUID) (string, error) {
	now := time.Now()
	claims := CustomClaims{
		UserID:        userID,
		Role:          role,
		InstitutionID: institutionID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        sessionID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(duration)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ValidateToken parses tokenStr, checks the HMAC signature against secret and
// returns its claims.
func ValidateToken(tokenStr string, secret string) (*CustomClaims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &CustomClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return []byte(secret), nil
	})

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*CustomClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, jwt.ErrTokenMalformed
}
