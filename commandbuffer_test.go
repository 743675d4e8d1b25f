package vkrender

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCommandBufferModePolicy(t *testing.T) {
	assert.Equal(t, submitPolicy{resetOnBegin: true, waitDevice: true}, Immediate.policy())
	assert.Equal(t, submitPolicy{freeOnEnd: true}, Temporary.policy())

	assert.Equal(t, "immediate", Immediate.String())
	assert.Equal(t, "temporary", Temporary.String())
	assert.Equal(t, "CommandBufferMode(7)", CommandBufferMode(7).String())
}

func TestCommandBufferEndWithoutBegin(t *testing.T) {
	cb := &CommandBuffer{Mode: Immediate, state: Allocated}
	assert.Equal(t, ErrCommandBufferNotRecording, cb.EndRecording())
	assert.Equal(t, ErrCommandBufferNotRecording, cb.End())
	assert.Equal(t, Allocated, cb.State())
}

func TestTemporaryCommandBufferFreedOnFailedEnd(t *testing.T) {
	cb := &CommandBuffer{Mode: Temporary, state: Allocated}
	assert.Equal(t, ErrCommandBufferNotRecording, cb.End())
	assert.Equal(t, Freed, cb.State())

	// the buffer is gone, using it again is refused
	assert.Equal(t, ErrCommandBufferFreed, cb.Begin())
	assert.Equal(t, ErrCommandBufferFreed, cb.End())
}

func TestCommandBufferFreed(t *testing.T) {
	cb := &CommandBuffer{Mode: Temporary, state: Freed}
	assert.Equal(t, ErrCommandBufferFreed, cb.Begin())
	assert.Equal(t, ErrCommandBufferFreed, cb.BeginReusable())
	assert.Equal(t, ErrCommandBufferFreed, cb.End())

	called := false
	err := cb.Record(func(*CommandBuffer) error {
		called = true
		return nil
	})
	assert.Equal(t, ErrCommandBufferFreed, err)
	assert.False(t, called)

	// a second free is a no-op
	cb.Free()
	assert.Equal(t, Freed, cb.State())
}
