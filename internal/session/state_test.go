package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStateTransitions(t *testing.T) {
	s := NewState()

	name, ok := s.ActiveFilename()
	assert.False(t, ok)
	assert.Empty(t, name)
	assert.False(t, s.Ready())

	s.Activate("doc.pdf")
	name, ok = s.ActiveFilename()
	assert.True(t, ok)
	assert.Equal(t, "doc.pdf", name)
	assert.True(t, s.Ready())

	s.Activate("other.pdf")
	name, _ = s.ActiveFilename()
	assert.Equal(t, "other.pdf", name)

	s.Clear()
	_, ok = s.ActiveFilename()
	assert.False(t, ok)
	assert.False(t, s.Ready())
}

func TestZeroValueIsLocked(t *testing.T) {
	var s State
	assert.False(t, s.Ready())
}
