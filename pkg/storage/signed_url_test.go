package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignedURLSignerGenerateAndParse(t *testing.T) {
	signer := NewSignedURLSigner("secret", time.Hour)
	token, expiresAt, err := signer.Generate("job-1", "calendars/plan-1.pdf")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	jobID, path, parsedExpiry, err := signer.Parse(token, false)
	require.NoError(t, err)
	assert.Equal(t, "job-1", jobID)
	assert.Equal(t, "calendars/plan-1.pdf", path)
	assert.WithinDuration(t, expiresAt, parsedExpiry, time.Second)
}

func TestSignedURLSignerExpired(t *testing.T) {
	signer := NewSignedURLSigner("secret", time.Millisecond*10)
	token, _, err := signer.Generate("job-1", "calendars/plan-1.csv")
	require.NoError(t, err)
	time.Sleep(1100 * time.Millisecond)

	_, _, _, err = signer.Parse(token, false)
	assert.ErrorIs(t, err, ErrTokenExpired)

	jobID, path, _, err := signer.Parse(token, true)
	require.NoError(t, err)
	assert.Equal(t, "job-1", jobID)
	assert.Equal(t, "calendars/plan-1.csv", path)
}

func TestSignedURLSignerRejectsTampering(t *testing.T) {
	signer := NewSignedURLSigner("secret", time.Hour)
	token, _, err := signer.Generate("job-1", "calendars/plan-1.csv")
	require.NoError(t, err)

	other := NewSignedURLSigner("other", time.Hour)
	_, _, _, err = other.Parse(token, false)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, _, _, err = signer.Parse("not-a-token", false)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, _, err = signer.Generate("job.1", "x.csv")
	assert.Error(t, err)
}
