/*
Package vkrender implements the resource and frame lifecycle layer of a Vulkan renderer for go.
Vulkan leaves almost everything OpenGL used to manage to the application: where data lives,
how it gets there and when the GPU may touch it. This package takes care of the parts nearly
every renderer needs, while native Vulkan structures stay exposed on every object through the
fields prefixed with 'VK', so applications aren't limited by what the package wraps.

Native Vulkan terms

	Instance 	the vulkan runtime instance
	PhysicalDevice	the physical hardware device
	Device		a logical device, the target of most of the vulkan apis
	Queue 		a queue which work (command buffers) may be submitted to
	CommandPool	the allocator command buffers of one queue family come from
	DeviceMemory	an allocation of memory on the host or device for use by buffers and images
	Buffer		a block of data (vertex, index, uniform or staging)
	Image		a texel array, with an ImageView describing how it is accessed
	RenderPass	the attachments a set of subpasses render into
	Framebuffer	the image views filling the attachments of a render pass
	Swapchain	the images presented to a window surface
	Pipeline	a description of how to process data on the GPU

# About this package

DeviceContext:

	picks a physical device for a surface and owns the logical device, the graphics, present
	and transfer queues and their command pools

CommandBuffer:

	Immediate buffers are kept for setup work and wait for the device on End, Temporary buffers
	are recorded once, submitted and freed

Swapchain:

	the presentable images, their views and framebuffers, plus the multisampled color and depth
	targets, rebuilt as a whole when the window changes size

TextureManager:

	owns textures behind generation checked handles, uploads bitmaps through a staging buffer
	on the transfer queue and blits the full mip chain

RenderPassBuilder, DescriptorBuilder, GraphicsPipelineBuilder:

	accumulate state and compile once into immutable objects

Renderer:

	the composition root, built from a Config and a Window, which owns everything above and
	drives the frame loop with MaxFramesInFlight frames in flight

A frame is recorded by a RecordFunc passed to Renderer.DrawFrame, which waits for the frame's
fence, acquires an image, records, submits and presents, recreating the swapchain whenever it
goes out of date.
*/
package vkrender
