package vkrender

import (
	"testing"

	"github.com/stretchr/testify/assert"
	vk "github.com/vulkan-go/vulkan"
)

func TestChooseSwapSurfaceFormat(t *testing.T) {
	unorm := vk.SurfaceFormat{Format: vk.FormatB8g8r8a8Unorm, ColorSpace: vk.ColorSpaceSrgbNonlinear}
	srgb := vk.SurfaceFormat{Format: vk.FormatB8g8r8a8Srgb, ColorSpace: vk.ColorSpaceSrgbNonlinear}

	assert.Equal(t, srgb, chooseSwapSurfaceFormat([]vk.SurfaceFormat{unorm, srgb}))
	assert.Equal(t, unorm, chooseSwapSurfaceFormat([]vk.SurfaceFormat{unorm}))
	assert.Equal(t, vk.SurfaceFormat{}, chooseSwapSurfaceFormat(nil))
}

func TestChooseSwapPresentMode(t *testing.T) {
	all := []vk.PresentMode{vk.PresentModeImmediate, vk.PresentModeFifo, vk.PresentModeMailbox}

	assert.Equal(t, vk.PresentModeMailbox, chooseSwapPresentMode(all))
	assert.Equal(t, vk.PresentModeFifo, chooseSwapPresentMode(all, vk.PresentModeFifo))
	// modes other than mailbox and FIFO are never picked
	assert.Equal(t, vk.PresentModeMailbox, chooseSwapPresentMode(all, vk.PresentModeImmediate))
	assert.Equal(t, vk.PresentModeMailbox, chooseSwapPresentMode(all, vk.PresentModeFifoRelaxed))
	assert.Equal(t, vk.PresentModeFifo, chooseSwapPresentMode([]vk.PresentMode{vk.PresentModeImmediate, vk.PresentModeFifo}, vk.PresentModeImmediate))
	assert.Equal(t, vk.PresentModeFifo, chooseSwapPresentMode([]vk.PresentMode{vk.PresentModeFifo}))
	assert.Equal(t, vk.PresentModeFifo, chooseSwapPresentMode(nil, vk.PresentModeImmediate))
}

func TestChooseImageCount(t *testing.T) {
	assert.Equal(t, uint32(3), chooseImageCount(vk.SurfaceCapabilities{MinImageCount: 2, MaxImageCount: 0}))
	assert.Equal(t, uint32(3), chooseImageCount(vk.SurfaceCapabilities{MinImageCount: 2, MaxImageCount: 8}))
	assert.Equal(t, uint32(2), chooseImageCount(vk.SurfaceCapabilities{MinImageCount: 2, MaxImageCount: 2}))
}

func TestChooseSwapExtent(t *testing.T) {
	fixed := vk.SurfaceCapabilities{CurrentExtent: vk.Extent2D{Width: 1024, Height: 768}}
	assert.Equal(t, vk.Extent2D{Width: 1024, Height: 768}, chooseSwapExtent(fixed, 10, 10))

	free := vk.SurfaceCapabilities{
		CurrentExtent:  vk.Extent2D{Width: vk.MaxUint32, Height: vk.MaxUint32},
		MinImageExtent: vk.Extent2D{Width: 64, Height: 64},
		MaxImageExtent: vk.Extent2D{Width: 4096, Height: 2048},
	}
	assert.Equal(t, vk.Extent2D{Width: 800, Height: 600}, chooseSwapExtent(free, 800, 600))
	assert.Equal(t, vk.Extent2D{Width: 4096, Height: 2048}, chooseSwapExtent(free, 5000, 5000))
	assert.Equal(t, vk.Extent2D{Width: 64, Height: 64}, chooseSwapExtent(free, -1, 0))
}

func TestChooseSharingMode(t *testing.T) {
	mode, families := chooseSharingMode(0, 0)
	assert.Equal(t, vk.SharingModeExclusive, mode)
	assert.Nil(t, families)

	mode, families = chooseSharingMode(0, 2)
	assert.Equal(t, vk.SharingModeConcurrent, mode)
	assert.Equal(t, []uint32{0, 2}, families)
}

func TestFramebufferAttachments(t *testing.T) {
	tests := []struct {
		withResources bool
		samples       vk.SampleCountFlagBits
		want          []string
	}{
		{false, vk.SampleCount1Bit, []string{"swap"}},
		{false, vk.SampleCount8Bit, []string{"swap"}},
		{true, vk.SampleCount1Bit, []string{"swap", "depth"}},
		{true, vk.SampleCount2Bit, []string{"color", "depth", "swap"}},
		{true, vk.SampleCount8Bit, []string{"color", "depth", "swap"}},
	}
	for _, tt := range tests {
		got := framebufferAttachments(tt.withResources, tt.samples, "color", "depth", "swap")
		assert.Equal(t, tt.want, got, "resources %v samples %d", tt.withResources, tt.samples)
	}
}

func TestSwapchainMultisampled(t *testing.T) {
	tests := []struct {
		opts SwapchainOptions
		want bool
	}{
		{SwapchainOptions{WithResources: true, Samples: vk.SampleCount1Bit}, false},
		{SwapchainOptions{WithResources: true, Samples: vk.SampleCount4Bit}, true},
		{SwapchainOptions{WithResources: false, Samples: vk.SampleCount4Bit}, false},
	}
	for _, tt := range tests {
		s := &Swapchain{opts: tt.opts}
		assert.Equal(t, tt.want, s.multisampled(), "%+v", tt.opts)
	}
}

func TestSwapchainAccessors(t *testing.T) {
	s := &Swapchain{
		views:        make([]vk.ImageView, 3),
		framebuffers: []*Framebuffer{{}, {}, {}},
		opts:         SwapchainOptions{WithResources: true, Samples: vk.SampleCount2Bit},
	}
	assert.Len(t, s.Views(), 3)
	assert.Len(t, s.Framebuffers(), 3)
	assert.Same(t, s.Framebuffers()[1], s.Framebuffer(1))
	assert.True(t, s.WithResources())
	assert.Equal(t, vk.SampleCount2Bit, s.Samples())
	assert.Nil(t, s.ColorView())
}
