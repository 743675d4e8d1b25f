package vkrender

import (
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

var (
	// ErrUnsupportedLayoutTransition is returned for any (old, new) layout pair
	// outside of the transition table.
	ErrUnsupportedLayoutTransition = errors.New("unsupported layout transition")
	// ErrUnsupportedShaderFormat is returned when a shader file is not a SPIR-V binary.
	ErrUnsupportedShaderFormat = errors.New("unsupported shader file format")
	// ErrLinearBlitUnsupported is returned when a format can't be linearly blitted in optimal tiling.
	ErrLinearBlitUnsupported       = errors.New("texture image format does not support linear blitting")
	ErrValidationLayersUnavailable = errors.New("validation layers requested, not available")
	ErrPipelineCreationFailed      = errors.New("failed to create graphics pipeline")
	ErrNoSuitableDevice            = errors.New("failed to find a suitable GPU")
	ErrNoDepthFormat               = errors.New("failed to find a supported depth format")
	ErrNoMemoryType                = errors.New("failed to find a suitable memory type")
	ErrNilPixelBuffer              = errors.New("image has no pixel buffer")
	ErrStaleTextureHandle          = errors.New("texture handle is stale or invalid")
	ErrBuilderConsumed             = errors.New("builder has already been compiled")
	ErrBindingOutOfRange           = errors.New("descriptor binding index out of range")
	ErrCommandBufferNotRecording   = errors.New("command buffer is not recording")
	ErrCommandBufferFreed          = errors.New("command buffer has been freed")
	ErrSwapchainOutOfDate          = errors.New("swapchain is out of date")
)

// vkCall converts a native result into an error annotated with the operation
// that produced it.
func vkCall(res vk.Result, op string) error {
	return errors.Wrap(vk.Error(res), op)
}
