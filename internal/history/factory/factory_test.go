package factory

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/MBUFFMIRE/AICamera/internal/history"
)

func TestEmptyTypeMeansDisabled(t *testing.T) {
	s, err := New(history.Config{})
	require.NoError(t, err)
	require.Nil(t, s, "empty config should yield a nil sink")
}

func TestUnsupportedType(t *testing.T) {
	_, err := New(history.Config{Type: "kafka"})
	require.Error(t, err)
}
