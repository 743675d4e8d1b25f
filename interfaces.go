package vkrender

import (
	vk "github.com/vulkan-go/vulkan"
)

// BufferObject is anything that can be copied into a buffer
type BufferObject interface {
	Bytes() []byte
}

// IndexSource is index data for an index buffer
type IndexSource interface {
	BufferObject
	IndexType() vk.IndexType
	Len() int
}

// VertexSource is vertex data together with the description the pipeline
// vertex input state is built from
type VertexSource interface {
	BufferObject
	GetBindingDescription() vk.VertexInputBindingDescription
	GetAttributeDescriptions() []vk.VertexInputAttributeDescription
}
