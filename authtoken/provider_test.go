package authtoken

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProviderMintsValidatableToken(t *testing.T) {
	p := NewProvider("shared-secret", "producer-1", "eventlog.dev", time.Hour, time.Minute)
	token, err := p.Token(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, token)

	v := NewValidator("shared-secret", "eventlog.dev")
	claims, err := v.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "producer-1", claims.Subject())
}

func TestProviderReusesCachedTokenBeforeRefreshWindow(t *testing.T) {
	p := NewProvider("shared-secret", "producer-1", "", time.Hour, time.Minute)
	first, err := p.Token(context.Background())
	require.NoError(t, err)

	second, err := p.Token(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestValidatorRejectsWrongSecret(t *testing.T) {
	p := NewProvider("secret-a", "producer-1", "", time.Hour, time.Minute)
	token, err := p.Token(context.Background())
	require.NoError(t, err)

	v := NewValidator("secret-b", "")
	_, err = v.Parse(token)
	assert.Error(t, err)
}

func TestValidatorRejectsExpiredToken(t *testing.T) {
	p := NewProvider("shared-secret", "producer-1", "", -time.Hour, 0)
	token, err := p.Token(context.Background())
	require.NoError(t, err)

	v := NewValidator("shared-secret", "")
	_, err = v.Parse(token)
	assert.Error(t, err)
}
