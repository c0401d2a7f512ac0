package adapters

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExitSignal(t *testing.T) {
	signal := NewExitSignal()
	requested, _ := signal.Requested()
	assert.False(t, requested)

	signal.RequestExit("installed")
	signal.RequestExit("reset")

	requested, reason := signal.Requested()
	assert.True(t, requested)
	assert.Equal(t, "installed", reason)
}
