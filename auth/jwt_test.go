package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func TestTokenRoundTrip(t *testing.T) {
	token, err := GenerateToken(42, testSecret, time.Hour)
	require.NoError(t, err)

	accountID, err := ParseToken(token, testSecret)
	require.NoError(t, err)
	assert.EqualValues(t, 42, accountID)
}

func TestParseTokenExpired(t *testing.T) {
	token, err := GenerateToken(42, testSecret, -time.Hour)
	require.NoError(t, err)

	_, err = ParseToken(token, testSecret)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expired")
}

func TestParseTokenWrongSecret(t *testing.T) {
	token, err := GenerateToken(42, testSecret, time.Hour)
	require.NoError(t, err)

	_, err = ParseToken(token, "other-secret")
	assert.Error(t, err)
}

func TestParseTokenGarbage(t *testing.T) {
	_, err := ParseToken("not.a.token", testSecret)
	assert.Error(t, err)
}
