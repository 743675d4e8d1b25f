package vkrender

import (
	"testing"

	"github.com/stretchr/testify/assert"
	vk "github.com/vulkan-go/vulkan"
)

func TestIndexSlices(t *testing.T) {
	i16 := IndexSliceUint16{0, 1, 2, 2, 3, 0}
	assert.Len(t, i16.Bytes(), 12)
	assert.Equal(t, 6, i16.Len())
	assert.Equal(t, vk.IndexTypeUint16, i16.IndexType())

	i32 := IndexSliceUint32{0, 1, 2}
	assert.Len(t, i32.Bytes(), 12)
	assert.Equal(t, vk.IndexTypeUint32, i32.IndexType())

	assert.Nil(t, IndexSliceUint16{}.Bytes())
	assert.Nil(t, IndexSliceUint32(nil).Bytes())
}
