package vkrender

import (
	"testing"

	"github.com/stretchr/testify/assert"
	vk "github.com/vulkan-go/vulkan"
)

func TestMissingExtensions(t *testing.T) {
	available := []string{"VK_KHR_swapchain", "VK_KHR_maintenance1"}

	assert.Empty(t, missingExtensions([]string{"VK_KHR_swapchain"}, available))
	assert.Empty(t, missingExtensions(nil, available))
	assert.Equal(t, []string{"VK_KHR_ray_query"},
		missingExtensions([]string{"VK_KHR_swapchain", "VK_KHR_ray_query"}, available))
	assert.Equal(t, []string{"VK_KHR_swapchain"}, missingExtensions([]string{"VK_KHR_swapchain"}, nil))
}

func TestDeviceContextTransferPool(t *testing.T) {
	graphics, transfer := &CommandPool{}, &CommandPool{}

	shared := &DeviceContext{graphicsPool: graphics, transferPool: graphics}
	assert.False(t, shared.HasExclusiveTransferQueue())
	assert.Same(t, shared.GraphicsPool(), shared.TransferPool())

	exclusive := &DeviceContext{
		families:     QueueFamilyIndices{Graphics: 0, Present: 0, Transfer: 1, ExclusiveTransfer: true},
		graphicsPool: graphics,
		transferPool: transfer,
	}
	assert.True(t, exclusive.HasExclusiveTransferQueue())
	assert.Same(t, graphics, exclusive.GraphicsPool())
	assert.Same(t, transfer, exclusive.TransferPool())
}

func TestStagingSharing(t *testing.T) {
	mode, families := stagingSharing(QueueFamilyIndices{Graphics: 0, Present: 0, Transfer: 0})
	assert.Equal(t, vk.SharingModeExclusive, mode)
	assert.Nil(t, families)

	mode, families = stagingSharing(QueueFamilyIndices{Graphics: 0, Present: 1, Transfer: 2, ExclusiveTransfer: true})
	assert.Equal(t, vk.SharingModeConcurrent, mode)
	assert.Equal(t, []uint32{0, 2}, families)
}
