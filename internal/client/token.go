package client

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// tokenClaims reads subject and expiry from a JWT without verifying it.
// Opaque tokens yield zero values.
func tokenClaims(token string) (string, time.Time) {
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return "", time.Time{}
	}

	var expiresAt time.Time
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}

	return claims.Subject, expiresAt
}
