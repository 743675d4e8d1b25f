package vkrender

import (
	vk "github.com/vulkan-go/vulkan"
)

// DescriptorSetLayout describes the layout of a descriptor set
type DescriptorSetLayout struct {
	Device                        *Device
	VKDescriptorSetLayout         vk.DescriptorSetLayout
	VKDescriptorSetLayoutBindings []vk.DescriptorSetLayoutBinding
}

// AddBinding adds a binding to the layout, it has no effect once created
func (d *DescriptorSetLayout) AddBinding(binding vk.DescriptorSetLayoutBinding) {
	d.VKDescriptorSetLayoutBindings = append(d.VKDescriptorSetLayoutBindings, binding)
}

// Destroy destroys this descriptor set layout
func (d *DescriptorSetLayout) Destroy() {
	if d.VKDescriptorSetLayout != vk.NullDescriptorSetLayout {
		vk.DestroyDescriptorSetLayout(d.Device.VKDevice, d.VKDescriptorSetLayout, nil)
		d.VKDescriptorSetLayout = vk.NullDescriptorSetLayout
	}
}

// CreateDescriptorSetLayout creates the native layout for the bindings added to layout
func (d *Device) CreateDescriptorSetLayout(layout *DescriptorSetLayout) error {
	createInfo := vk.DescriptorSetLayoutCreateInfo{
		SType:        vk.StructureTypeDescriptorSetLayoutCreateInfo,
		BindingCount: uint32(len(layout.VKDescriptorSetLayoutBindings)),
		PBindings:    layout.VKDescriptorSetLayoutBindings,
	}

	var descriptorSetLayout vk.DescriptorSetLayout
	if err := vkCall(vk.CreateDescriptorSetLayout(d.VKDevice, &createInfo, nil, &descriptorSetLayout), "create descriptor set layout"); err != nil {
		return err
	}

	layout.Device = d
	layout.VKDescriptorSetLayout = descriptorSetLayout
	return nil
}
