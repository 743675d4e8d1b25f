package vkrender

import (
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

// Buffer is a native buffer together with the memory bound to it
type Buffer struct {
	Device   *Device
	VKBuffer vk.Buffer
	Size     uint64
	Memory   *DeviceMemory
}

// BufferOptions describes a buffer to create
type BufferOptions struct {
	Size       uint64
	Usage      vk.BufferUsageFlags
	Properties vk.MemoryPropertyFlags
	Sharing    vk.SharingMode
	// QueueFamilies is only used with concurrent sharing
	QueueFamilies []uint32
}

// CreateBuffer creates a buffer, allocates memory with the requested properties and binds the two
func (d *Device) CreateBuffer(opts BufferOptions) (*Buffer, error) {
	createInfo := vk.BufferCreateInfo{
		SType:       vk.StructureTypeBufferCreateInfo,
		Size:        vk.DeviceSize(opts.Size),
		Usage:       opts.Usage,
		SharingMode: opts.Sharing,
	}
	if opts.Sharing == vk.SharingModeConcurrent {
		createInfo.QueueFamilyIndexCount = uint32(len(opts.QueueFamilies))
		createInfo.PQueueFamilyIndices = opts.QueueFamilies
	}

	var buffer vk.Buffer
	if err := vkCall(vk.CreateBuffer(d.VKDevice, &createInfo, nil, &buffer), "create buffer"); err != nil {
		return nil, err
	}

	ret := &Buffer{Device: d, VKBuffer: buffer, Size: opts.Size}

	mr := ret.VKMemoryRequirements()
	memory, err := d.Allocate(uint64(mr.Size), mr.MemoryTypeBits, opts.Properties)
	if err != nil {
		vk.DestroyBuffer(d.VKDevice, buffer, nil)
		return nil, errors.Wrap(err, "allocate buffer memory")
	}
	ret.Memory = memory

	if err := ret.bind(0); err != nil {
		ret.Destroy()
		return nil, err
	}
	return ret, nil
}

// VKMemoryRequirements returns the dereferenced memory requirements of the buffer
func (b *Buffer) VKMemoryRequirements() vk.MemoryRequirements {
	var mr vk.MemoryRequirements
	vk.GetBufferMemoryRequirements(b.Device.VKDevice, b.VKBuffer, &mr)
	mr.Deref()
	return mr
}

func (b *Buffer) bind(offset uint64) error {
	return vkCall(vk.BindBufferMemory(b.Device.VKDevice, b.VKBuffer, b.Memory.VKDeviceMemory, vk.DeviceSize(offset)), "bind buffer memory")
}

// Upload copies data into host visible buffer memory
func (b *Buffer) Upload(data []byte) error {
	return b.Memory.MapCopyUnmap(data)
}

// DescriptorInfo describes the whole buffer for a descriptor write
func (b *Buffer) DescriptorInfo() vk.DescriptorBufferInfo {
	return vk.DescriptorBufferInfo{
		Buffer: b.VKBuffer,
		Offset: 0,
		Range:  vk.DeviceSize(b.Size),
	}
}

// Destroy destroys the buffer then frees its memory
func (b *Buffer) Destroy() {
	if b.VKBuffer != vk.NullBuffer {
		vk.DestroyBuffer(b.Device.VKDevice, b.VKBuffer, nil)
		b.VKBuffer = vk.NullBuffer
	}
	if b.Memory != nil {
		b.Memory.Destroy()
		b.Memory = nil
	}
}
