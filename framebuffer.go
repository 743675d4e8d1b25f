package vkrender

import (
	vk "github.com/vulkan-go/vulkan"
)

type Framebuffer struct {
	Device        *Device
	VKFramebuffer vk.Framebuffer
	Extent        vk.Extent2D
}

// CreateFramebuffer creates a single layer framebuffer binding attachments, in
// order, to the attachment slots of renderPass
func (d *Device) CreateFramebuffer(renderPass *RenderPass, attachments []vk.ImageView, extent vk.Extent2D) (*Framebuffer, error) {
	createInfo := vk.FramebufferCreateInfo{
		SType:           vk.StructureTypeFramebufferCreateInfo,
		RenderPass:      renderPass.VKRenderPass,
		AttachmentCount: uint32(len(attachments)),
		PAttachments:    attachments,
		Width:           extent.Width,
		Height:          extent.Height,
		Layers:          1,
	}

	var fb vk.Framebuffer
	if err := vkCall(vk.CreateFramebuffer(d.VKDevice, &createInfo, nil, &fb), "create framebuffer"); err != nil {
		return nil, err
	}
	return &Framebuffer{Device: d, VKFramebuffer: fb, Extent: extent}, nil
}

func (f *Framebuffer) Destroy() {
	if f.VKFramebuffer != vk.NullFramebuffer {
		vk.DestroyFramebuffer(f.Device.VKDevice, f.VKFramebuffer, nil)
		f.VKFramebuffer = vk.NullFramebuffer
	}
}
