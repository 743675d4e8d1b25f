package vkrender

import (
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

// ShaderStages names the program for each stage a graphics pipeline can run,
// nil stages are skipped
type ShaderStages struct {
	Vertex         *ShaderProgram
	Fragment       *ShaderProgram
	Geometry       *ShaderProgram
	TessControl    *ShaderProgram
	TessEvaluation *ShaderProgram
}

func (s ShaderStages) programs() []*ShaderProgram {
	ret := make([]*ShaderProgram, 0, 5)
	for _, p := range []*ShaderProgram{s.Vertex, s.Fragment, s.Geometry, s.TessControl, s.TessEvaluation} {
		if p != nil {
			ret = append(ret, p)
		}
	}
	return ret
}

// opaqueBlendAttachment writes all channels, blended with source alpha when blend is set
func opaqueBlendAttachment(blend bool) vk.PipelineColorBlendAttachmentState {
	return vk.PipelineColorBlendAttachmentState{
		ColorWriteMask: vk.ColorComponentFlags(
			vk.ColorComponentRBit | vk.ColorComponentGBit |
				vk.ColorComponentBBit | vk.ColorComponentABit,
		),
		BlendEnable:         boolToVK(blend),
		SrcColorBlendFactor: vk.BlendFactorSrcAlpha,
		DstColorBlendFactor: vk.BlendFactorOneMinusSrcAlpha,
		ColorBlendOp:        vk.BlendOpAdd,
		SrcAlphaBlendFactor: vk.BlendFactorOne,
		DstAlphaBlendFactor: vk.BlendFactorZero,
		AlphaBlendOp:        vk.BlendOpAdd,
	}
}

// GraphicsPipelineBuilder holds the fixed function state of a graphics
// pipeline. Each setter replaces the state it names. A builder compiles once.
type GraphicsPipelineBuilder struct {
	bindings   []vk.VertexInputBindingDescription
	attributes []vk.VertexInputAttributeDescription

	// see https://www.khronos.org/registry/vulkan/specs/1.1-extensions/man/html/VkPrimitiveTopology.html
	topology         vk.PrimitiveTopology
	primitiveRestart bool

	polygonMode vk.PolygonMode
	cullMode    vk.CullModeFlags
	frontFace   vk.FrontFace
	lineWidth   float32

	samples          vk.SampleCountFlagBits
	sampleShading    bool
	minSampleShading float32

	depthTest    bool
	depthWrite   bool
	depthCompare vk.CompareOp

	stencilTest  bool
	stencilFront vk.StencilOpState
	stencilBack  vk.StencilOpState

	blendEnable      bool
	blendAttachments []vk.PipelineColorBlendAttachmentState

	dynamicStates []vk.DynamicState

	// viewport used when the viewport is not dynamic
	extent vk.Extent2D

	stages        []vk.PipelineShaderStageCreateInfo
	setLayouts    []*DescriptorSetLayout
	pushConstants []vk.PushConstantRange

	consumed bool
}

func NewGraphicsPipelineBuilder() *GraphicsPipelineBuilder {
	return &GraphicsPipelineBuilder{
		topology:         vk.PrimitiveTopologyTriangleList,
		polygonMode:      vk.PolygonModeFill,
		cullMode:         vk.CullModeFlags(vk.CullModeBackBit),
		frontFace:        vk.FrontFaceCounterClockwise,
		lineWidth:        1.0,
		samples:          vk.SampleCount1Bit,
		minSampleShading: 1.0,
		depthTest:        true,
		depthWrite:       true,
		depthCompare:     vk.CompareOpLess,
		blendAttachments: []vk.PipelineColorBlendAttachmentState{opaqueBlendAttachment(false)},
		dynamicStates:    []vk.DynamicState{vk.DynamicStateViewport, vk.DynamicStateScissor},
	}
}

// SetVertexInput takes the binding and attributes of v, nil clears the vertex input
func (g *GraphicsPipelineBuilder) SetVertexInput(v VertexSource) *GraphicsPipelineBuilder {
	g.bindings, g.attributes = nil, nil
	if v != nil {
		g.bindings = []vk.VertexInputBindingDescription{v.GetBindingDescription()}
		g.attributes = v.GetAttributeDescriptions()
	}
	return g
}

func (g *GraphicsPipelineBuilder) SetInputAssemblyState(topology vk.PrimitiveTopology, primitiveRestart bool) *GraphicsPipelineBuilder {
	g.topology = topology
	g.primitiveRestart = primitiveRestart
	return g
}

// SetRasterizerState sets how triangles are filled and culled, lines are always one pixel wide
func (g *GraphicsPipelineBuilder) SetRasterizerState(polygonMode vk.PolygonMode, cullMode vk.CullModeFlags, frontFace vk.FrontFace) *GraphicsPipelineBuilder {
	g.polygonMode = polygonMode
	g.cullMode = cullMode
	g.frontFace = frontFace
	return g
}

func (g *GraphicsPipelineBuilder) SetMultisampleState(samples vk.SampleCountFlagBits, sampleShading bool, minSampleShading float32) *GraphicsPipelineBuilder {
	g.samples = samples
	g.sampleShading = sampleShading
	g.minSampleShading = minSampleShading
	return g
}

func (g *GraphicsPipelineBuilder) SetDepthState(test, write bool, compareOp vk.CompareOp) *GraphicsPipelineBuilder {
	g.depthTest = test
	g.depthWrite = write
	g.depthCompare = compareOp
	return g
}

func (g *GraphicsPipelineBuilder) SetStencilState(enable bool, front, back vk.StencilOpState) *GraphicsPipelineBuilder {
	g.stencilTest = enable
	g.stencilFront = front
	g.stencilBack = back
	return g
}

// SetColorBlendState replaces the blend attachments. Without attachments a
// single attachment writing every channel is used, blended when blendEnable is set.
func (g *GraphicsPipelineBuilder) SetColorBlendState(blendEnable bool, attachments ...vk.PipelineColorBlendAttachmentState) *GraphicsPipelineBuilder {
	g.blendEnable = blendEnable
	if len(attachments) == 0 {
		g.blendAttachments = []vk.PipelineColorBlendAttachmentState{opaqueBlendAttachment(blendEnable)}
		return g
	}
	g.blendAttachments = make([]vk.PipelineColorBlendAttachmentState, len(attachments))
	copy(g.blendAttachments, attachments)
	return g
}

// SetDynamicState specifies which part of the pipeline may be changed with command buffer commands
func (g *GraphicsPipelineBuilder) SetDynamicState(states ...vk.DynamicState) *GraphicsPipelineBuilder {
	g.dynamicStates = append([]vk.DynamicState(nil), states...)
	return g
}

// SetViewportExtent sets the static viewport and scissor, unused while they are dynamic
func (g *GraphicsPipelineBuilder) SetViewportExtent(extent vk.Extent2D) *GraphicsPipelineBuilder {
	g.extent = extent
	return g
}

// BindShaderStages appends one stage per program in stage order
func (g *GraphicsPipelineBuilder) BindShaderStages(stages ShaderStages) *GraphicsPipelineBuilder {
	for _, p := range stages.programs() {
		g.stages = append(g.stages, p.StageCreateInfo())
	}
	return g
}

// BindDescriptors appends the layout of each descriptor, set numbers follow call order
func (g *GraphicsPipelineBuilder) BindDescriptors(descs ...*Descriptor) *GraphicsPipelineBuilder {
	for _, d := range descs {
		g.setLayouts = append(g.setLayouts, d.Layout())
	}
	return g
}

func (g *GraphicsPipelineBuilder) AddPushConstantRange(stages vk.ShaderStageFlags, offset, size uint32) *GraphicsPipelineBuilder {
	g.pushConstants = append(g.pushConstants, vk.PushConstantRange{
		StageFlags: stages,
		Offset:     offset,
		Size:       size,
	})
	return g
}

// createInfo assembles the create info from the current state
func (g *GraphicsPipelineBuilder) createInfo(layout vk.PipelineLayout, renderPass vk.RenderPass, subpass uint32) vk.GraphicsPipelineCreateInfo {
	vertexInputState := vk.PipelineVertexInputStateCreateInfo{
		SType:                           vk.StructureTypePipelineVertexInputStateCreateInfo,
		VertexBindingDescriptionCount:   uint32(len(g.bindings)),
		PVertexBindingDescriptions:      g.bindings,
		VertexAttributeDescriptionCount: uint32(len(g.attributes)),
		PVertexAttributeDescriptions:    g.attributes,
	}

	inputAssemblyState := vk.PipelineInputAssemblyStateCreateInfo{
		SType:                  vk.StructureTypePipelineInputAssemblyStateCreateInfo,
		Topology:               g.topology,
		PrimitiveRestartEnable: boolToVK(g.primitiveRestart),
	}

	viewportState := vk.PipelineViewportStateCreateInfo{
		SType:         vk.StructureTypePipelineViewportStateCreateInfo,
		ViewportCount: 1,
		PViewports: []vk.Viewport{{
			Width:    float32(g.extent.Width),
			Height:   float32(g.extent.Height),
			MinDepth: 0.0,
			MaxDepth: 1.0,
		}},
		ScissorCount: 1,
		PScissors: []vk.Rect2D{{
			Offset: vk.Offset2D{X: 0, Y: 0},
			Extent: g.extent,
		}},
	}

	rasterState := vk.PipelineRasterizationStateCreateInfo{
		SType:                   vk.StructureTypePipelineRasterizationStateCreateInfo,
		DepthClampEnable:        vk.False,
		RasterizerDiscardEnable: vk.False,
		PolygonMode:             g.polygonMode,
		CullMode:                g.cullMode,
		FrontFace:               g.frontFace,
		DepthBiasEnable:         vk.False,
		LineWidth:               g.lineWidth,
	}

	multisampleState := vk.PipelineMultisampleStateCreateInfo{
		SType:                vk.StructureTypePipelineMultisampleStateCreateInfo,
		RasterizationSamples: g.samples,
		SampleShadingEnable:  boolToVK(g.sampleShading),
		MinSampleShading:     g.minSampleShading,
	}

	depthStencil := vk.PipelineDepthStencilStateCreateInfo{
		SType:                 vk.StructureTypePipelineDepthStencilStateCreateInfo,
		DepthTestEnable:       boolToVK(g.depthTest),
		DepthWriteEnable:      boolToVK(g.depthWrite),
		DepthCompareOp:        g.depthCompare,
		DepthBoundsTestEnable: vk.False,
		MinDepthBounds:        0.0,
		MaxDepthBounds:        1.0,
		StencilTestEnable:     boolToVK(g.stencilTest),
		Front:                 g.stencilFront,
		Back:                  g.stencilBack,
	}

	colorBlendState := vk.PipelineColorBlendStateCreateInfo{
		SType:           vk.StructureTypePipelineColorBlendStateCreateInfo,
		LogicOpEnable:   vk.False,
		LogicOp:         vk.LogicOpCopy,
		AttachmentCount: uint32(len(g.blendAttachments)),
		PAttachments:    g.blendAttachments,
	}

	dynamicState := vk.PipelineDynamicStateCreateInfo{
		SType:             vk.StructureTypePipelineDynamicStateCreateInfo,
		DynamicStateCount: uint32(len(g.dynamicStates)),
		PDynamicStates:    g.dynamicStates,
	}

	return vk.GraphicsPipelineCreateInfo{
		SType:               vk.StructureTypeGraphicsPipelineCreateInfo,
		StageCount:          uint32(len(g.stages)),
		PStages:             g.stages,
		PVertexInputState:   &vertexInputState,
		PInputAssemblyState: &inputAssemblyState,
		PViewportState:      &viewportState,
		PRasterizationState: &rasterState,
		PMultisampleState:   &multisampleState,
		PDepthStencilState:  &depthStencil,
		PColorBlendState:    &colorBlendState,
		PDynamicState:       &dynamicState,
		Layout:              layout,
		RenderPass:          renderPass,
		Subpass:             subpass,
		BasePipelineIndex:   -1,
	}
}

// Compile creates the pipeline layout and the pipeline for subpass of
// renderPass, then consumes the builder. cache may be nil.
func (g *GraphicsPipelineBuilder) Compile(device *Device, renderPass *RenderPass, subpass uint32, cache *PipelineCache) (*GraphicsPipeline, error) {
	if g.consumed {
		return nil, ErrBuilderConsumed
	}

	layout, err := device.CreatePipelineLayoutWithPushConstants(g.setLayouts, g.pushConstants)
	if err != nil {
		return nil, err
	}

	var vkCache vk.PipelineCache
	if cache != nil {
		vkCache = cache.VKPipelineCache
	}

	pipelines := make([]vk.Pipeline, 1)
	createInfo := g.createInfo(layout.VKPipelineLayout, renderPass.VKRenderPass, subpass)
	res := vk.CreateGraphicsPipelines(device.VKDevice, vkCache, 1, []vk.GraphicsPipelineCreateInfo{createInfo}, nil, pipelines)
	if err := vk.Error(res); err != nil {
		layout.Destroy()
		return nil, errors.Wrapf(ErrPipelineCreationFailed, "%s subpass %d: %v", renderPass.Name, subpass, err)
	}

	*g = GraphicsPipelineBuilder{consumed: true}
	return &GraphicsPipeline{
		Device:           device,
		VKPipeline:       pipelines[0],
		VKPipelineLayout: layout.VKPipelineLayout,
		layout:           layout,
	}, nil
}

// GraphicsPipeline is an immutable compiled pipeline with the layout it owns
type GraphicsPipeline struct {
	Device           *Device
	VKPipeline       vk.Pipeline
	VKPipelineLayout vk.PipelineLayout

	layout *PipelineLayout
}

// Destroy destroys the pipeline then its layout
func (p *GraphicsPipeline) Destroy() {
	if p.VKPipeline != vk.NullPipeline {
		vk.DestroyPipeline(p.Device.VKDevice, p.VKPipeline, nil)
		p.VKPipeline = vk.NullPipeline
	}
	if p.layout != nil {
		p.layout.Destroy()
		p.layout = nil
		p.VKPipelineLayout = vk.NullPipelineLayout
	}
}

type PipelineCache struct {
	Device          *Device
	VKPipelineCache vk.PipelineCache
}

func (d *Device) CreatePipelineCache() (*PipelineCache, error) {
	createInfo := vk.PipelineCacheCreateInfo{
		SType: vk.StructureTypePipelineCacheCreateInfo,
	}

	var pipelineCache vk.PipelineCache
	if err := vkCall(vk.CreatePipelineCache(d.VKDevice, &createInfo, nil, &pipelineCache), "create pipeline cache"); err != nil {
		return nil, err
	}
	return &PipelineCache{Device: d, VKPipelineCache: pipelineCache}, nil
}

func (c *PipelineCache) Destroy() {
	vk.DestroyPipelineCache(c.Device.VKDevice, c.VKPipelineCache, nil)
}
