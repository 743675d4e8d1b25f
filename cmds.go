package vkrender

import (
	"unsafe"

	vk "github.com/vulkan-go/vulkan"
)

// CmdBeginRenderPass begins renderPass on framebuffer over its whole extent
func (c *CommandBuffer) CmdBeginRenderPass(renderPass *RenderPass, framebuffer *Framebuffer, clearValues ...vk.ClearValue) {
	beginInfo := vk.RenderPassBeginInfo{
		SType:       vk.StructureTypeRenderPassBeginInfo,
		RenderPass:  renderPass.VKRenderPass,
		Framebuffer: framebuffer.VKFramebuffer,
		RenderArea: vk.Rect2D{
			Offset: vk.Offset2D{X: 0, Y: 0},
			Extent: framebuffer.Extent,
		},
		ClearValueCount: uint32(len(clearValues)),
		PClearValues:    clearValues,
	}
	vk.CmdBeginRenderPass(c.VKCommandBuffer, &beginInfo, vk.SubpassContentsInline)
}

func (c *CommandBuffer) CmdEndRenderPass() {
	vk.CmdEndRenderPass(c.VKCommandBuffer)
}

func (c *CommandBuffer) CmdBindGraphicsPipeline(p *GraphicsPipeline) {
	vk.CmdBindPipeline(c.VKCommandBuffer, vk.PipelineBindPointGraphics, p.VKPipeline)
}

// CmdBindDescriptorSets binds sets starting at firstSet using the layout of p
func (c *CommandBuffer) CmdBindDescriptorSets(p *GraphicsPipeline, firstSet int, sets ...vk.DescriptorSet) {
	vk.CmdBindDescriptorSets(c.VKCommandBuffer, vk.PipelineBindPointGraphics, p.VKPipelineLayout,
		uint32(firstSet), uint32(len(sets)), sets, 0, nil)
}

// CmdPushConstants writes data into the push constant range of p at offset
func (c *CommandBuffer) CmdPushConstants(p *GraphicsPipeline, stages vk.ShaderStageFlags, offset uint32, data []byte) {
	if len(data) == 0 {
		return
	}
	vk.CmdPushConstants(c.VKCommandBuffer, p.VKPipelineLayout, stages, offset, uint32(len(data)), unsafe.Pointer(&data[0]))
}

func (c *CommandBuffer) CmdBindVertexBuffers(buffers ...*Buffer) {
	vkBuffers := make([]vk.Buffer, len(buffers))
	offsets := make([]vk.DeviceSize, len(buffers))
	for i, b := range buffers {
		vkBuffers[i] = b.VKBuffer
	}
	vk.CmdBindVertexBuffers(c.VKCommandBuffer, 0, uint32(len(buffers)), vkBuffers, offsets)
}

func (c *CommandBuffer) CmdBindIndexBuffer(buffer *Buffer, indexType vk.IndexType) {
	vk.CmdBindIndexBuffer(c.VKCommandBuffer, buffer.VKBuffer, 0, indexType)
}

// CmdSetViewportAndScissor covers the whole extent, for pipelines with a dynamic viewport and scissor
func (c *CommandBuffer) CmdSetViewportAndScissor(extent vk.Extent2D) {
	vk.CmdSetViewport(c.VKCommandBuffer, 0, 1, []vk.Viewport{{
		X:        0,
		Y:        0,
		Width:    float32(extent.Width),
		Height:   float32(extent.Height),
		MinDepth: 0,
		MaxDepth: 1,
	}})
	vk.CmdSetScissor(c.VKCommandBuffer, 0, 1, []vk.Rect2D{{
		Offset: vk.Offset2D{X: 0, Y: 0},
		Extent: extent,
	}})
}

func (c *CommandBuffer) CmdDraw(vertexCount, instanceCount int) {
	vk.CmdDraw(c.VKCommandBuffer, uint32(vertexCount), uint32(instanceCount), 0, 0)
}

func (c *CommandBuffer) CmdDrawIndexed(indexCount, instanceCount int) {
	vk.CmdDrawIndexed(c.VKCommandBuffer, uint32(indexCount), uint32(instanceCount), 0, 0, 0)
}
