package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestVerifyIDToken(t *testing.T) {
	v := NewVerifier("secret", "issuer", "audience")

	t.Run("valid", func(t *testing.T) {
		tok, err := SignForTest("secret", "user-1", "issuer", "audience", time.Minute)
		require.NoError(t, err)

		subject, err := v.VerifyIDToken(tok)
		require.NoError(t, err)
		require.Equal(t, "user-1", subject)
	})

	t.Run("wrong secret", func(t *testing.T) {
		tok, err := SignForTest("other", "user-1", "issuer", "audience", time.Minute)
		require.NoError(t, err)

		_, err = v.VerifyIDToken(tok)
		require.Error(t, err)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		tok, err := SignForTest("secret", "user-1", "someone-else", "audience", time.Minute)
		require.NoError(t, err)

		_, err = v.VerifyIDToken(tok)
		require.Error(t, err)
	})

	t.Run("expired", func(t *testing.T) {
		tok, err := SignForTest("secret", "user-1", "issuer", "audience", -time.Minute)
		require.NoError(t, err)

		_, err = v.VerifyIDToken(tok)
		require.Error(t, err)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := v.VerifyIDToken("not.a.token")
		require.Error(t, err)
	})
}

func TestVerifierSkipsOptionalChecksWhenUnset(t *testing.T) {
	v := NewVerifier("secret", "", "")

	tok, err := SignForTest("secret", "user-1", "whatever", "anyone", time.Minute)
	require.NoError(t, err)

	subject, err := v.VerifyIDToken(tok)
	require.NoError(t, err)
	require.Equal(t, "user-1", subject)
}

func TestGenerateRandomString(t *testing.T) {
	a := GenerateRandomString(16)
	b := GenerateRandomString(16)
	require.Len(t, a, 32) // hex doubles the byte length
	require.NotEqual(t, a, b)
}
