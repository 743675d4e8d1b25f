package vkrender

import (
	vk "github.com/vulkan-go/vulkan"
)

type PipelineLayout struct {
	Device           *Device
	VKPipelineLayout vk.PipelineLayout
}

func (p *PipelineLayout) Destroy() {
	if p.VKPipelineLayout != vk.NullPipelineLayout {
		vk.DestroyPipelineLayout(p.Device.VKDevice, p.VKPipelineLayout, nil)
		p.VKPipelineLayout = vk.NullPipelineLayout
	}
}

func setLayoutHandles(layouts []*DescriptorSetLayout) []vk.DescriptorSetLayout {
	l := make([]vk.DescriptorSetLayout, len(layouts))
	for i, dsl := range layouts {
		l[i] = dsl.VKDescriptorSetLayout
	}
	return l
}

// CreatePipelineLayoutWithPushConstants creates a layout over the given set
// layouts, in set order, plus push constant ranges
func (d *Device) CreatePipelineLayoutWithPushConstants(descriptorSetLayouts []*DescriptorSetLayout, pushConstants []vk.PushConstantRange) (*PipelineLayout, error) {
	createInfo := vk.PipelineLayoutCreateInfo{
		SType:                  vk.StructureTypePipelineLayoutCreateInfo,
		SetLayoutCount:         uint32(len(descriptorSetLayouts)),
		PSetLayouts:            setLayoutHandles(descriptorSetLayouts),
		PushConstantRangeCount: uint32(len(pushConstants)),
		PPushConstantRanges:    pushConstants,
	}

	var pipelineLayout vk.PipelineLayout
	if err := vkCall(vk.CreatePipelineLayout(d.VKDevice, &createInfo, nil, &pipelineLayout), "create pipeline layout"); err != nil {
		return nil, err
	}
	return &PipelineLayout{Device: d, VKPipelineLayout: pipelineLayout}, nil
}
