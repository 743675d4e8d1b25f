package vkrender

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	vk "github.com/vulkan-go/vulkan"
)

type quadVertices struct{}

func (quadVertices) Bytes() []byte { return make([]byte, 4*16) }

func (quadVertices) GetBindingDescription() vk.VertexInputBindingDescription {
	return vk.VertexInputBindingDescription{Binding: 0, Stride: 16, InputRate: vk.VertexInputRateVertex}
}

func (quadVertices) GetAttributeDescriptions() []vk.VertexInputAttributeDescription {
	return []vk.VertexInputAttributeDescription{
		{Binding: 0, Location: 0, Format: vk.FormatR32g32Sfloat, Offset: 0},
		{Binding: 0, Location: 1, Format: vk.FormatR32g32Sfloat, Offset: 8},
	}
}

func TestGraphicsPipelineBuilderDefaults(t *testing.T) {
	info := NewGraphicsPipelineBuilder().createInfo(vk.NullPipelineLayout, vk.NullRenderPass, 0)

	assert.Equal(t, vk.PrimitiveTopologyTriangleList, info.PInputAssemblyState.Topology)
	assert.Equal(t, vk.PolygonModeFill, info.PRasterizationState.PolygonMode)
	assert.Equal(t, vk.CullModeFlags(vk.CullModeBackBit), info.PRasterizationState.CullMode)
	assert.Equal(t, vk.FrontFaceCounterClockwise, info.PRasterizationState.FrontFace)
	assert.Equal(t, float32(1), info.PRasterizationState.LineWidth)
	assert.Equal(t, vk.SampleCount1Bit, info.PMultisampleState.RasterizationSamples)
	assert.Equal(t, vk.Bool32(vk.True), info.PDepthStencilState.DepthTestEnable)
	assert.Equal(t, vk.Bool32(vk.True), info.PDepthStencilState.DepthWriteEnable)
	assert.Equal(t, vk.CompareOpLess, info.PDepthStencilState.DepthCompareOp)
	assert.Equal(t, vk.Bool32(vk.False), info.PDepthStencilState.StencilTestEnable)
	require.Len(t, info.PColorBlendState.PAttachments, 1)
	assert.Equal(t, vk.Bool32(vk.False), info.PColorBlendState.PAttachments[0].BlendEnable)
	assert.Equal(t, []vk.DynamicState{vk.DynamicStateViewport, vk.DynamicStateScissor}, info.PDynamicState.PDynamicStates)
	assert.Equal(t, uint32(0), info.PVertexInputState.VertexBindingDescriptionCount)
	assert.Equal(t, int32(-1), info.BasePipelineIndex)
	assert.Equal(t, uint32(0), info.StageCount)
}

func TestGraphicsPipelineBuilderSetters(t *testing.T) {
	b := NewGraphicsPipelineBuilder().
		SetVertexInput(quadVertices{}).
		SetInputAssemblyState(vk.PrimitiveTopologyLineStrip, true).
		SetRasterizerState(vk.PolygonModeLine, vk.CullModeFlags(vk.CullModeNone), vk.FrontFaceClockwise).
		SetMultisampleState(vk.SampleCount4Bit, true, 0.2).
		SetDepthState(false, false, vk.CompareOpAlways).
		SetDynamicState(vk.DynamicStateLineWidth).
		SetViewportExtent(vk.Extent2D{Width: 640, Height: 480}).
		AddPushConstantRange(vk.ShaderStageFlags(vk.ShaderStageVertexBit), 0, 16)

	// the last call wins
	b.SetInputAssemblyState(vk.PrimitiveTopologyTriangleStrip, false)

	info := b.createInfo(vk.NullPipelineLayout, vk.NullRenderPass, 2)
	assert.Equal(t, uint32(2), info.Subpass)
	assert.Equal(t, vk.PrimitiveTopologyTriangleStrip, info.PInputAssemblyState.Topology)
	assert.Equal(t, vk.Bool32(vk.False), info.PInputAssemblyState.PrimitiveRestartEnable)
	assert.Equal(t, vk.PolygonModeLine, info.PRasterizationState.PolygonMode)
	assert.Equal(t, vk.CullModeFlags(vk.CullModeNone), info.PRasterizationState.CullMode)
	assert.Equal(t, vk.FrontFaceClockwise, info.PRasterizationState.FrontFace)
	assert.Equal(t, vk.SampleCount4Bit, info.PMultisampleState.RasterizationSamples)
	assert.Equal(t, vk.Bool32(vk.True), info.PMultisampleState.SampleShadingEnable)
	assert.Equal(t, float32(0.2), info.PMultisampleState.MinSampleShading)
	assert.Equal(t, vk.Bool32(vk.False), info.PDepthStencilState.DepthTestEnable)
	assert.Equal(t, vk.CompareOpAlways, info.PDepthStencilState.DepthCompareOp)
	assert.Equal(t, []vk.DynamicState{vk.DynamicStateLineWidth}, info.PDynamicState.PDynamicStates)
	assert.Equal(t, float32(640), info.PViewportState.PViewports[0].Width)
	assert.Equal(t, vk.Extent2D{Width: 640, Height: 480}, info.PViewportState.PScissors[0].Extent)
	assert.Equal(t, uint32(1), info.PVertexInputState.VertexBindingDescriptionCount)
	assert.Equal(t, uint32(2), info.PVertexInputState.VertexAttributeDescriptionCount)
	assert.Len(t, b.pushConstants, 1)

	b.SetVertexInput(nil)
	assert.Empty(t, b.bindings)
	assert.Empty(t, b.attributes)
}

func TestGraphicsPipelineBuilderStencil(t *testing.T) {
	info := NewGraphicsPipelineBuilder().createInfo(vk.NullPipelineLayout, vk.NullRenderPass, 0)
	assert.Equal(t, vk.Bool32(vk.False), info.PDepthStencilState.StencilTestEnable)

	front := vk.StencilOpState{FailOp: vk.StencilOpKeep, PassOp: vk.StencilOpReplace, CompareOp: vk.CompareOpAlways, WriteMask: 0xff, Reference: 1}
	back := vk.StencilOpState{CompareOp: vk.CompareOpNever}
	info = NewGraphicsPipelineBuilder().
		SetStencilState(true, back, back).
		SetStencilState(true, front, back).
		createInfo(vk.NullPipelineLayout, vk.NullRenderPass, 0)
	assert.Equal(t, vk.Bool32(vk.True), info.PDepthStencilState.StencilTestEnable)
	assert.Equal(t, front, info.PDepthStencilState.Front)
	assert.Equal(t, back, info.PDepthStencilState.Back)
}

func TestGraphicsPipelineBuilderBlend(t *testing.T) {
	b := NewGraphicsPipelineBuilder().SetColorBlendState(true)
	require.Len(t, b.blendAttachments, 1)
	a := b.blendAttachments[0]
	assert.Equal(t, vk.Bool32(vk.True), a.BlendEnable)
	assert.Equal(t, vk.BlendFactorSrcAlpha, a.SrcColorBlendFactor)
	assert.Equal(t, vk.BlendFactorOneMinusSrcAlpha, a.DstColorBlendFactor)
	assert.Equal(t, vk.ColorComponentFlags(vk.ColorComponentRBit|vk.ColorComponentGBit|vk.ColorComponentBBit|vk.ColorComponentABit), a.ColorWriteMask)

	custom := []vk.PipelineColorBlendAttachmentState{opaqueBlendAttachment(false), opaqueBlendAttachment(true)}
	b.SetColorBlendState(false, custom...)
	custom[0].BlendEnable = vk.True
	require.Len(t, b.blendAttachments, 2)
	assert.Equal(t, vk.Bool32(vk.False), b.blendAttachments[0].BlendEnable)
}

func TestShaderStagesOrder(t *testing.T) {
	vert := &ShaderProgram{Stage: vk.ShaderStageVertexBit, EntryPoint: "main"}
	frag := &ShaderProgram{Stage: vk.ShaderStageFragmentBit, EntryPoint: "main"}
	geom := &ShaderProgram{Stage: vk.ShaderStageGeometryBit, EntryPoint: "main"}

	stages := ShaderStages{Fragment: frag, Geometry: geom, Vertex: vert}
	assert.Equal(t, []*ShaderProgram{vert, frag, geom}, stages.programs())
	assert.Empty(t, ShaderStages{}.programs())

	b := NewGraphicsPipelineBuilder().BindShaderStages(stages)
	info := b.createInfo(vk.NullPipelineLayout, vk.NullRenderPass, 0)
	require.Equal(t, uint32(3), info.StageCount)
	assert.Equal(t, vk.ShaderStageVertexBit, info.PStages[0].Stage)
	assert.Equal(t, vk.ShaderStageFragmentBit, info.PStages[1].Stage)
	assert.Equal(t, vk.ShaderStageGeometryBit, info.PStages[2].Stage)
	assert.Equal(t, "main\x00", info.PStages[0].PName)
}

func TestGraphicsPipelineBuilderConsumed(t *testing.T) {
	b := &GraphicsPipelineBuilder{consumed: true}
	_, err := b.Compile(nil, nil, 0, nil)
	assert.Equal(t, ErrBuilderConsumed, err)
}
