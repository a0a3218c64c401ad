package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	token, err := GenerateToken("secret", "9000000001", "customer", time.Hour)
	require.NoError(t, err)

	mobile, role, err := ParseToken("secret", token)
	require.NoError(t, err)
	assert.Equal(t, "9000000001", mobile)
	assert.Equal(t, "customer", role)
}

func TestParseTokenWrongSecret(t *testing.T) {
	token, err := GenerateToken("secret", "9000000001", "admin", time.Hour)
	require.NoError(t, err)

	_, _, err = ParseToken("other-secret", token)
	assert.Error(t, err)
}

func TestParseTokenExpired(t *testing.T) {
	token, err := GenerateToken("secret", "9000000001", "customer", -time.Minute)
	require.NoError(t, err)

	_, _, err = ParseToken("secret", token)
	assert.Error(t, err)
}
