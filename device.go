package vkrender

import (
	"fmt"

	vk "github.com/vulkan-go/vulkan"
)

// Device wraps the native logical device
type Device struct {
	PhysicalDevice *PhysicalDevice
	VKDevice       vk.Device
}

func (d *Device) Destroy() {
	vk.DestroyDevice(d.VKDevice, nil)
}

func (d *Device) String() string {
	return fmt.Sprintf("{ PhysicalDevice: %s }", d.PhysicalDevice)
}

// WaitIdle blocks until every queue of the device is idle
func (d *Device) WaitIdle() error {
	return vkCall(vk.DeviceWaitIdle(d.VKDevice), "device wait idle")
}

// GetQueue returns the first queue of the given family
func (d *Device) GetQueue(familyIndex int) *Queue {
	var vkq vk.Queue
	vk.GetDeviceQueue(d.VKDevice, uint32(familyIndex), 0, &vkq)
	return &Queue{Device: d, FamilyIndex: familyIndex, VKQueue: vkq}
}

// Allocate allocates device memory of a type matching memoryTypeBits and memoryProperties
func (d *Device) Allocate(sizeInBytes uint64, memoryTypeBits uint32, memoryProperties vk.MemoryPropertyFlags) (*DeviceMemory, error) {
	typeIndex, err := d.PhysicalDevice.FindMemoryType(memoryTypeBits, memoryProperties)
	if err != nil {
		return nil, err
	}

	allocateInfo := vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		AllocationSize:  vk.DeviceSize(sizeInBytes),
		MemoryTypeIndex: typeIndex,
	}

	var deviceMemory vk.DeviceMemory
	if err := vkCall(vk.AllocateMemory(d.VKDevice, &allocateInfo, nil, &deviceMemory), "allocate memory"); err != nil {
		return nil, err
	}

	return &DeviceMemory{Device: d, VKDeviceMemory: deviceMemory, Size: sizeInBytes}, nil
}
