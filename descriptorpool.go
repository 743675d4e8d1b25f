package vkrender

import (
	vk "github.com/vulkan-go/vulkan"
)

// DescriptorPool is a pool sized for a fixed number of descriptor sets
type DescriptorPool struct {
	Device               *Device
	VKDescriptorPool     vk.DescriptorPool
	VKDescriptorPoolSize []vk.DescriptorPoolSize
	MaxSets              uint32
}

// AddPoolSize informs the descriptor pool how many of a certain descriptor type it will contain
func (d *DescriptorPool) AddPoolSize(dtype vk.DescriptorType, count int) {
	d.VKDescriptorPoolSize = append(d.VKDescriptorPoolSize, vk.DescriptorPoolSize{
		Type:            dtype,
		DescriptorCount: uint32(count),
	})
}

// CreateDescriptorPool creates the native pool for the sizes added to pool
func (d *Device) CreateDescriptorPool(pool *DescriptorPool, maxSets int) error {
	createInfo := vk.DescriptorPoolCreateInfo{
		SType:         vk.StructureTypeDescriptorPoolCreateInfo,
		MaxSets:       uint32(maxSets),
		PoolSizeCount: uint32(len(pool.VKDescriptorPoolSize)),
		PPoolSizes:    pool.VKDescriptorPoolSize,
	}

	var descriptorPool vk.DescriptorPool
	if err := vkCall(vk.CreateDescriptorPool(d.VKDevice, &createInfo, nil, &descriptorPool), "create descriptor pool"); err != nil {
		return err
	}

	pool.Device = d
	pool.VKDescriptorPool = descriptorPool
	pool.MaxSets = uint32(maxSets)
	return nil
}

// Allocate allocates count sets, all with the given layout
func (d *DescriptorPool) Allocate(layout *DescriptorSetLayout, count int) ([]vk.DescriptorSet, error) {
	layouts := make([]vk.DescriptorSetLayout, count)
	for i := range layouts {
		layouts[i] = layout.VKDescriptorSetLayout
	}

	allocateInfo := vk.DescriptorSetAllocateInfo{
		SType:              vk.StructureTypeDescriptorSetAllocateInfo,
		DescriptorPool:     d.VKDescriptorPool,
		DescriptorSetCount: uint32(count),
		PSetLayouts:        layouts,
	}

	sets := make([]vk.DescriptorSet, count)
	if count == 0 {
		return sets, nil
	}
	if err := vkCall(vk.AllocateDescriptorSets(d.Device.VKDevice, &allocateInfo, &sets[0]), "allocate descriptor sets"); err != nil {
		return nil, err
	}
	return sets, nil
}

func (d *DescriptorPool) Reset() error {
	return vkCall(vk.ResetDescriptorPool(d.Device.VKDevice, d.VKDescriptorPool, 0), "reset descriptor pool")
}

// Destroy destroys the pool, freeing every set allocated from it
func (d *DescriptorPool) Destroy() {
	if d.VKDescriptorPool != vk.NullDescriptorPool {
		vk.DestroyDescriptorPool(d.Device.VKDevice, d.VKDescriptorPool, nil)
		d.VKDescriptorPool = vk.NullDescriptorPool
	}
}
