package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("hunter2hunter2")
	require.NoError(t, err)
	assert.NotEmpty(t, hash)
	assert.NotEqual(t, "hunter2hunter2", hash)
}

func TestComparePassword(t *testing.T) {
	hash, err := HashPassword("hunter2hunter2")
	require.NoError(t, err)

	t.Run("correct password", func(t *testing.T) {
		assert.NoError(t, ComparePassword(hash, "hunter2hunter2"))
	})

	t.Run("wrong password", func(t *testing.T) {
		assert.Error(t, ComparePassword(hash, "hunter3"))
	})
}
