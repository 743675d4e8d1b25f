package vkrender

import (
	vk "github.com/vulkan-go/vulkan"
)

type CommandPool struct {
	Device        *Device
	FamilyIndex   int
	VKCommandPool vk.CommandPool
}

func (c *CommandPool) Destroy() {
	vk.DestroyCommandPool(c.Device.VKDevice, c.VKCommandPool, nil)
}

// AllocateBuffers allocates count primary command buffers from the pool
func (c *CommandPool) AllocateBuffers(count int) ([]vk.CommandBuffer, error) {
	allocateInfo := vk.CommandBufferAllocateInfo{
		SType:              vk.StructureTypeCommandBufferAllocateInfo,
		CommandPool:        c.VKCommandPool,
		Level:              vk.CommandBufferLevelPrimary,
		CommandBufferCount: uint32(count),
	}

	cmdBuffers := make([]vk.CommandBuffer, count)
	if err := vkCall(vk.AllocateCommandBuffers(c.Device.VKDevice, &allocateInfo, cmdBuffers), "allocate command buffers"); err != nil {
		return nil, err
	}
	return cmdBuffers, nil
}

func (c *CommandPool) FreeBuffers(bs ...vk.CommandBuffer) {
	if len(bs) == 0 {
		return
	}
	vk.FreeCommandBuffers(c.Device.VKDevice, c.VKCommandPool, uint32(len(bs)), bs)
}

// CreateCommandPool creates a pool whose buffers can be individually reset
func (d *Device) CreateCommandPool(familyIndex int) (*CommandPool, error) {
	createInfo := vk.CommandPoolCreateInfo{
		SType:            vk.StructureTypeCommandPoolCreateInfo,
		Flags:            vk.CommandPoolCreateFlags(vk.CommandPoolCreateResetCommandBufferBit),
		QueueFamilyIndex: uint32(familyIndex),
	}

	var commandPool vk.CommandPool
	if err := vkCall(vk.CreateCommandPool(d.VKDevice, &createInfo, nil, &commandPool), "create command pool"); err != nil {
		return nil, err
	}

	return &CommandPool{Device: d, FamilyIndex: familyIndex, VKCommandPool: commandPool}, nil
}
