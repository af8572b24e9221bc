package auth_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/speechcoach/backend/internal/auth"
)

func TestGenerateValidate(t *testing.T) {
	svc := auth.NewJWTService("secret", "authenticated")
	id := uuid.New()

	token, err := svc.Generate(id, "a@example.com", time.Hour)
	require.NoError(t, err)

	got, claims, err := svc.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, id, got)
	assert.Equal(t, "a@example.com", claims.Email)
}

func TestValidateRejects(t *testing.T) {
	svc := auth.NewJWTService("secret", "authenticated")
	id := uuid.New()

	expired, err := svc.Generate(id, "", -time.Minute)
	require.NoError(t, err)

	otherSecret, err := auth.NewJWTService("other", "authenticated").Generate(id, "", time.Hour)
	require.NoError(t, err)

	wrongAud, err := auth.NewJWTService("secret", "service_role").Generate(id, "", time.Hour)
	require.NoError(t, err)

	badSub, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "not-a-uuid",
		Audience:  jwt.ClaimStrings{"authenticated"},
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:  id.String(),
		Audience: jwt.ClaimStrings{"authenticated"},
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	for name, tok := range map[string]string{
		"expired":      expired,
		"other secret": otherSecret,
		"wrong aud":    wrongAud,
		"bad subject":  badSub,
		"no expiry":    noExp,
		"garbage":      "abc.def.ghi",
	} {
		t.Run(name, func(t *testing.T) {
			_, _, err := svc.Validate(tok)
			require.ErrorIs(t, err, auth.ErrInvalidToken)
		})
	}
}
