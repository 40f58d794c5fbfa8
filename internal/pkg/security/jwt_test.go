package security

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateToken(t *testing.T) {
	InitJWT("test-secret")

	token, err := GenerateToken(42, []string{"AUDIT"})
	require.NoError(t, err)

	claims, err := ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), claims.UserID)
	assert.True(t, claims.HasRole("ADMIN", "AUDIT"))
	assert.False(t, claims.HasRole("ADMIN"))

	InitJWT("other-secret")
	_, err = ValidateToken(token)
	assert.Error(t, err)
}

func TestExtractSignature(t *testing.T) {
	sig, err := ExtractSignature("a.b.c")
	require.NoError(t, err)
	assert.Equal(t, "c", sig)

	_, err = ExtractSignature("broken")
	assert.ErrorIs(t, err, ErrTokenMalformed)
	_, err = ExtractSignature("a.b.")
	assert.ErrorIs(t, err, ErrTokenMalformed)
}

func TestValidateTokenWithoutSecret(t *testing.T) {
	InitJWT("")
	_, err := ValidateToken("a.b.c")
	assert.ErrorIs(t, err, ErrSecretMissing)
}

func TestHasAnyRole(t *testing.T) {
	assert.True(t, HasAnyRole([]string{"USER", "AUDIT"}, "ADMIN", "AUDIT"))
	assert.False(t, HasAnyRole(nil, "ADMIN"))
	assert.False(t, HasAnyRole([]string{"USER"}))
}
