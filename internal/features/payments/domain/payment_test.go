package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestErrAuthIsGatewayError(t *testing.T) {
	assert.True(t, errors.Is(ErrAuth, ErrGateway))
	assert.False(t, errors.Is(ErrGateway, ErrAuth))
}

func TestToken_Valid(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	assert.True(t, (&Token{AccessToken: "a", ExpiresAt: now.Add(time.Hour)}).Valid(now, time.Minute))
	assert.False(t, (&Token{AccessToken: "a", ExpiresAt: now.Add(30 * time.Second)}).Valid(now, time.Minute))
	assert.False(t, (&Token{ExpiresAt: now.Add(time.Hour)}).Valid(now, time.Minute))

	var nilToken *Token
	assert.False(t, nilToken.Valid(now, 0))
}
