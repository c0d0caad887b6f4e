package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func TestTokenManager_RoundTrip(t *testing.T) {
	req := require.New(t)
	manager := NewTokenManager("unit-test-secret", time.Hour)

	token, err := manager.GenerateToken("alex", "Alex Rivera")
	req.NoError(err)
	req.NotEmpty(token)

	claims, err := manager.ValidateToken(token)
	req.NoError(err)
	req.Equal("alex", claims.UserID)
	req.Equal("Alex Rivera", claims.Name)
	req.Equal("feedgram", claims.Issuer)
}

func TestTokenManager_RejectsExpired(t *testing.T) {
	req := require.New(t)
	manager := NewTokenManager("unit-test-secret", -time.Minute)

	token, err := manager.GenerateToken("alex", "Alex Rivera")
	req.NoError(err)

	_, err = manager.ValidateToken(token)
	req.Error(err)
}

func TestTokenManager_RejectsOtherSigningMethods(t *testing.T) {
	req := require.New(t)
	manager := NewTokenManager("unit-test-secret", time.Hour)

	// A token signed with HS512 and the right key must still be refused:
	// only HS256 is accepted.
	claims := &CustomClaims{
		UserID: "alex",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			Issuer:    "feedgram",
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("unit-test-secret"))
	req.NoError(err)

	_, err = manager.ValidateToken(token)
	req.Error(err)
}

func TestTokenManager_RejectsForeignSignature(t *testing.T) {
	req := require.New(t)
	manager := NewTokenManager("unit-test-secret", time.Hour)
	other := NewTokenManager("another-secret", time.Hour)

	token, err := other.GenerateToken("alex", "Alex Rivera")
	req.NoError(err)

	_, err = manager.ValidateToken(token)
	req.Error(err)
}
