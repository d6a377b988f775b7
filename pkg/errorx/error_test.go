package errorx

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIs(t *testing.T) {
	err := New(BadRequest, "Invalid amount %d", -1)
	require.Equal(t, "Invalid amount -1", err.Error())
	require.True(t, Is(err, BadRequest))
	require.False(t, Is(err, NotFound))
	require.True(t, Is(fmt.Errorf("wrapped: %w", err), BadRequest))
	require.False(t, Is(fmt.Errorf("plain"), BadRequest))
}
