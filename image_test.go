package vkrender

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	vk "github.com/vulkan-go/vulkan"
)

// fakeViewAllocator counts live views and fails the creation numbered failAt
type fakeViewAllocator struct {
	failAt  int
	created int
	live    int
}

func (f *fakeViewAllocator) createView(image vk.Image, format vk.Format, aspect vk.ImageAspectFlags, mipLevels uint32) (vk.ImageView, error) {
	if f.created == f.failAt {
		return vk.NullImageView, errors.New("out of memory")
	}
	f.created++
	f.live++
	return vk.NullImageView, nil
}

func (f *fakeViewAllocator) destroyView(view vk.ImageView) {
	f.live--
}

func TestCreateImageViews(t *testing.T) {
	a := &fakeViewAllocator{failAt: -1}
	images := make([]vk.Image, 3)

	views, err := createImageViews(a, images, vk.FormatB8g8r8a8Srgb)
	require.NoError(t, err)
	assert.Len(t, views, 3)
	assert.Equal(t, 3, a.live)

	destroyImageViews(a, views)
	assert.Equal(t, 0, a.live)
}

func TestCreateImageViewsRollback(t *testing.T) {
	a := &fakeViewAllocator{failAt: 2}
	images := make([]vk.Image, 4)

	views, err := createImageViews(a, images, vk.FormatB8g8r8a8Srgb)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "image view 2")
	assert.Nil(t, views)
	assert.Equal(t, 2, a.created)
	assert.Equal(t, 0, a.live)
}
