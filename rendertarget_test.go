package vkrender

import (
	"testing"

	"github.com/stretchr/testify/assert"
	vk "github.com/vulkan-go/vulkan"
)

func TestNewRenderTargetDefaults(t *testing.T) {
	rt := NewRenderTarget(vk.NullImageView, vk.FormatB8g8r8a8Srgb, 0, false)
	assert.Equal(t, vk.SampleCount1Bit, rt.Samples)
	assert.Equal(t, vk.AttachmentLoadOpDontCare, rt.LoadOp)
	assert.Equal(t, vk.AttachmentStoreOpDontCare, rt.StoreOp)
	assert.Equal(t, vk.AttachmentLoadOpDontCare, rt.StencilLoadOp)
	assert.Equal(t, vk.AttachmentStoreOpDontCare, rt.StencilStoreOp)
	assert.Equal(t, vk.ImageLayoutUndefined, rt.InitialLayout)
	assert.Equal(t, vk.ImageLayoutUndefined, rt.FinalLayout)
	assert.Equal(t, vk.ImageLayoutUndefined, rt.ReferenceLayout)
	assert.False(t, rt.Resolve)
}

func TestRenderTargetSetters(t *testing.T) {
	base := NewRenderTarget(vk.NullImageView, vk.FormatB8g8r8a8Srgb, vk.SampleCount4Bit, false)
	rt := base.
		SetTargetSemantics(vk.AttachmentLoadOpClear, vk.AttachmentStoreOpStore, vk.AttachmentLoadOpDontCare, vk.AttachmentStoreOpDontCare).
		SetTargetLayout(vk.ImageLayoutUndefined, vk.ImageLayoutPresentSrc, vk.ImageLayoutColorAttachmentOptimal)

	// setters return a modified copy
	assert.Equal(t, vk.AttachmentLoadOpDontCare, base.LoadOp)

	desc := rt.AttachmentDescription()
	assert.Equal(t, vk.FormatB8g8r8a8Srgb, desc.Format)
	assert.Equal(t, vk.SampleCount4Bit, desc.Samples)
	assert.Equal(t, vk.AttachmentLoadOpClear, desc.LoadOp)
	assert.Equal(t, vk.AttachmentStoreOpStore, desc.StoreOp)
	assert.Equal(t, vk.ImageLayoutUndefined, desc.InitialLayout)
	assert.Equal(t, vk.ImageLayoutPresentSrc, desc.FinalLayout)
}

func TestNewRenderTargetFromTexture(t *testing.T) {
	tex := &Texture{Format: vk.FormatD32Sfloat, Samples: vk.SampleCount2Bit}
	rt := NewRenderTargetFromTexture(tex, false)
	assert.Equal(t, vk.FormatD32Sfloat, rt.Format)
	assert.Equal(t, vk.SampleCount2Bit, rt.Samples)
	assert.Equal(t, vk.NullImageView, rt.View)
}

func TestClassifyAttachment(t *testing.T) {
	assert.Equal(t, attachmentColor, classifyAttachment(vk.ImageLayoutColorAttachmentOptimal, false))
	assert.Equal(t, attachmentResolve, classifyAttachment(vk.ImageLayoutColorAttachmentOptimal, true))
	assert.Equal(t, attachmentDepth, classifyAttachment(vk.ImageLayoutDepthStencilAttachmentOptimal, false))
	assert.Equal(t, attachmentUnreferenced, classifyAttachment(vk.ImageLayoutShaderReadOnlyOptimal, false))
	assert.Equal(t, attachmentUnreferenced, classifyAttachment(vk.ImageLayoutUndefined, true))
}
