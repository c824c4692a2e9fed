package handle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlot_FillInstallsCurrentGeneration(t *testing.T) {
	r := newTestRegistry(t)
	var s Slot

	gen := s.Begin()
	h, err := r.Create("a.png", "image/png", []byte("a"))
	require.NoError(t, err)

	assert.True(t, s.Fill(gen, h))
	assert.Same(t, h, s.Current())
	assert.False(t, h.Released())
}

func TestSlot_BeginReleasesPrevious(t *testing.T) {
	r := newTestRegistry(t)
	var s Slot

	first, _ := r.Create("a.png", "image/png", []byte("a"))
	require.True(t, s.Fill(s.Begin(), first))

	gen := s.Begin()
	assert.True(t, first.Released(), "opening a new preview releases the old one")
	assert.Nil(t, s.Current())

	second, _ := r.Create("b.png", "image/png", []byte("b"))
	assert.True(t, s.Fill(gen, second))
	assert.Equal(t, 1, r.Live())
}

func TestSlot_StaleFillIsDroppedAndReleased(t *testing.T) {
	r := newTestRegistry(t)
	var s Slot

	stale := s.Begin()
	current := s.Begin()

	late, _ := r.Create("late.png", "image/png", []byte("late"))
	assert.False(t, s.Fill(stale, late))
	assert.True(t, late.Released())
	assert.Nil(t, s.Current())

	fresh, _ := r.Create("fresh.png", "image/png", []byte("fresh"))
	assert.True(t, s.Fill(current, fresh))
	assert.Same(t, fresh, s.Current())
}

func TestSlot_ClearInvalidatesPendingLoad(t *testing.T) {
	r := newTestRegistry(t)
	var s Slot

	gen := s.Begin()
	s.Clear()

	h, _ := r.Create("a.pdf", "application/pdf", []byte("%PDF"))
	assert.False(t, s.Fill(gen, h), "a load finishing after close must not reopen the preview")
	assert.True(t, h.Released())
	assert.Equal(t, 0, r.Live())
}

func TestSlot_ClearReleasesCurrent(t *testing.T) {
	r := newTestRegistry(t)
	var s Slot

	h, _ := r.Create("a.mp4", "video/mp4", []byte("v"))
	require.True(t, s.Fill(s.Begin(), h))

	s.Clear()
	assert.True(t, h.Released())
	assert.Nil(t, s.Current())

	// clearing an empty slot is harmless
	s.Clear()
}

func TestSlot_FillWithoutHandle(t *testing.T) {
	var s Slot
	gen := s.Begin()
	assert.True(t, s.Fill(gen, nil), "placeholder previews hold no handle")
	assert.Nil(t, s.Current())
}
