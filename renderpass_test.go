package vkrender

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	vk "github.com/vulkan-go/vulkan"
)

func colorTarget(samples vk.SampleCountFlagBits) RenderTarget {
	return NewRenderTarget(vk.NullImageView, vk.FormatB8g8r8a8Srgb, samples, false).
		SetTargetLayout(vk.ImageLayoutUndefined, vk.ImageLayoutColorAttachmentOptimal, vk.ImageLayoutColorAttachmentOptimal)
}

func depthTarget(samples vk.SampleCountFlagBits) RenderTarget {
	return NewRenderTarget(vk.NullImageView, vk.FormatD32Sfloat, samples, false).
		SetTargetLayout(vk.ImageLayoutUndefined, vk.ImageLayoutDepthStencilAttachmentOptimal, vk.ImageLayoutDepthStencilAttachmentOptimal)
}

func resolveTarget() RenderTarget {
	return NewRenderTarget(vk.NullImageView, vk.FormatB8g8r8a8Srgb, vk.SampleCount1Bit, true).
		SetTargetLayout(vk.ImageLayoutUndefined, vk.ImageLayoutPresentSrc, vk.ImageLayoutColorAttachmentOptimal)
}

func addGraphicsSubPass(b *RenderPassBuilder, src, dst uint32) (uint32, error) {
	stage := vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit)
	return b.AddSubPass(vk.PipelineBindPointGraphics, src, dst,
		stage, 0, stage, vk.AccessFlags(vk.AccessColorAttachmentWriteBit))
}

func TestRenderPassBuilderName(t *testing.T) {
	assert.Equal(t, DefaultRenderPassName, NewRenderPassBuilder("").name)
	assert.Equal(t, "Shadow", NewRenderPassBuilder("Shadow").name)
}

func TestRenderPassBuilderAttachments(t *testing.T) {
	b := NewRenderPassBuilder("")
	sampled := NewRenderTarget(vk.NullImageView, vk.FormatR8g8b8a8Srgb, vk.SampleCount1Bit, false).
		SetTargetLayout(vk.ImageLayoutUndefined, vk.ImageLayoutShaderReadOnlyOptimal, vk.ImageLayoutShaderReadOnlyOptimal)

	require.NoError(t, b.PrepareTargetAttachments(colorTarget(vk.SampleCount4Bit), depthTarget(vk.SampleCount4Bit)))
	require.NoError(t, b.PrepareTargetAttachments(resolveTarget(), sampled))

	assert.Len(t, b.attachments, 4)
	require.Len(t, b.color, 1)
	require.Len(t, b.depth, 1)
	require.Len(t, b.resolve, 1)
	assert.Equal(t, uint32(0), b.color[0].Attachment)
	assert.Equal(t, uint32(1), b.depth[0].Attachment)
	assert.Equal(t, vk.ImageLayoutDepthStencilAttachmentOptimal, b.depth[0].Layout)
	// indices continue across calls
	assert.Equal(t, uint32(2), b.resolve[0].Attachment)
	assert.Equal(t, vk.ImageLayoutPresentSrc, b.attachments[2].FinalLayout)
}

func TestRenderPassBuilderSubPasses(t *testing.T) {
	b := NewRenderPassBuilder("")
	require.NoError(t, b.PrepareTargetAttachments(colorTarget(vk.SampleCount1Bit), depthTarget(vk.SampleCount1Bit)))

	idx, err := addGraphicsSubPass(b, vk.SubpassExternal, 0)
	require.NoError(t, err)
	assert.Equal(t, uint32(0), idx)

	sp := b.subpasses[0]
	assert.Equal(t, uint32(1), sp.ColorAttachmentCount)
	require.NotNil(t, sp.PDepthStencilAttachment)
	assert.Equal(t, uint32(1), sp.PDepthStencilAttachment.Attachment)
	assert.Empty(t, sp.PResolveAttachments)

	require.Len(t, b.dependencies, 1)
	assert.Equal(t, uint32(vk.SubpassExternal), b.dependencies[0].SrcSubpass)
	assert.Equal(t, uint32(0), b.dependencies[0].DstSubpass)

	// references were moved into the subpass
	assert.Empty(t, b.color)
	assert.Empty(t, b.depth)

	require.NoError(t, b.PrepareTargetAttachments(colorTarget(vk.SampleCount1Bit)))
	idx, err = addGraphicsSubPass(b, 0, 1)
	require.NoError(t, err)
	assert.Equal(t, uint32(1), idx)
	assert.Nil(t, b.subpasses[1].PDepthStencilAttachment)
	assert.Equal(t, uint32(2), b.subpasses[1].PColorAttachments[0].Attachment)
}

func TestRenderPassBuilderResolveMismatch(t *testing.T) {
	b := NewRenderPassBuilder("")
	require.NoError(t, b.PrepareTargetAttachments(
		colorTarget(vk.SampleCount4Bit), colorTarget(vk.SampleCount4Bit), resolveTarget()))

	_, err := addGraphicsSubPass(b, vk.SubpassExternal, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 resolve attachments for 2 color attachments")
	assert.Empty(t, b.subpasses)
}

func TestRenderPassBuilderResolveSingleSampled(t *testing.T) {
	b := NewRenderPassBuilder("")
	require.NoError(t, b.PrepareTargetAttachments(colorTarget(vk.SampleCount1Bit), resolveTarget()))

	_, err := addGraphicsSubPass(b, vk.SubpassExternal, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "color attachment 0 is single sampled")
	assert.Empty(t, b.subpasses)
}

func TestRenderPassBuilderConsumed(t *testing.T) {
	b := &RenderPassBuilder{name: DefaultRenderPassName, consumed: true}

	assert.Equal(t, ErrBuilderConsumed, b.PrepareTargetAttachments(colorTarget(vk.SampleCount1Bit)))
	_, err := addGraphicsSubPass(b, vk.SubpassExternal, 0)
	assert.Equal(t, ErrBuilderConsumed, err)
	_, err = b.Compile(nil)
	assert.Equal(t, ErrBuilderConsumed, err)
}
