package shortlink

import (
	"context"
	"strings"
	"testing"

	"burnlink_backend/pkg/apperrors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func neverExists(ctx context.Context, code string) (bool, error) {
	return false, nil
}

func TestNewID(t *testing.T) {
	id := NewID()
	_, err := uuid.Parse(id)
	assert.NoError(t, err)
	assert.NotEqual(t, id, NewID())
}

func TestNewShortCode(t *testing.T) {
	code, err := NewShortCode(context.Background(), neverExists)
	require.NoError(t, err)

	assert.Len(t, code, codeLength)
	for _, c := range code {
		assert.True(t, strings.ContainsRune(charset, c), "unexpected character %q", c)
	}
}

func TestNewShortCodeRetriesOnCollision(t *testing.T) {
	// Первые два кода "заняты", третий свободен
	calls := 0
	exists := func(ctx context.Context, code string) (bool, error) {
		calls++
		return calls <= 2, nil
	}

	code, err := NewShortCode(context.Background(), exists)
	require.NoError(t, err)
	assert.Len(t, code, codeLength)
	assert.Equal(t, 3, calls)
}

func TestNewShortCodeExhaustion(t *testing.T) {
	alwaysTaken := func(ctx context.Context, code string) (bool, error) {
		return true, nil
	}

	_, err := NewShortCode(context.Background(), alwaysTaken)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrShortCodeExhausted))
}
