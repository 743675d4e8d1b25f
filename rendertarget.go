package vkrender

import (
	vk "github.com/vulkan-go/vulkan"
)

// RenderTarget describes one attachment slot of a render pass: which view
// fills it, how it is loaded and stored, and the layouts it moves through.
// It owns nothing.
type RenderTarget struct {
	View    vk.ImageView
	Format  vk.Format
	Samples vk.SampleCountFlagBits

	LoadOp         vk.AttachmentLoadOp
	StoreOp        vk.AttachmentStoreOp
	StencilLoadOp  vk.AttachmentLoadOp
	StencilStoreOp vk.AttachmentStoreOp

	InitialLayout vk.ImageLayout
	FinalLayout   vk.ImageLayout
	// ReferenceLayout is the layout during the subpass, it decides how the
	// attachment is referenced
	ReferenceLayout vk.ImageLayout

	// Resolve marks a single sampled target receiving the resolve of a multisampled color target
	Resolve bool
}

// NewRenderTarget returns a target with every op DontCare and every layout Undefined
func NewRenderTarget(view vk.ImageView, format vk.Format, samples vk.SampleCountFlagBits, resolve bool) RenderTarget {
	if samples == 0 {
		samples = vk.SampleCount1Bit
	}
	return RenderTarget{
		View:            view,
		Format:          format,
		Samples:         samples,
		LoadOp:          vk.AttachmentLoadOpDontCare,
		StoreOp:         vk.AttachmentStoreOpDontCare,
		StencilLoadOp:   vk.AttachmentLoadOpDontCare,
		StencilStoreOp:  vk.AttachmentStoreOpDontCare,
		InitialLayout:   vk.ImageLayoutUndefined,
		FinalLayout:     vk.ImageLayoutUndefined,
		ReferenceLayout: vk.ImageLayoutUndefined,
		Resolve:         resolve,
	}
}

// NewRenderTargetFromTexture describes a texture used as an attachment
func NewRenderTargetFromTexture(tex *Texture, resolve bool) RenderTarget {
	var view vk.ImageView
	if tex.View != nil {
		view = tex.View.VKImageView
	}
	return NewRenderTarget(view, tex.Format, tex.Samples, resolve)
}

func (t RenderTarget) SetTargetSemantics(load vk.AttachmentLoadOp, store vk.AttachmentStoreOp, stencilLoad vk.AttachmentLoadOp, stencilStore vk.AttachmentStoreOp) RenderTarget {
	t.LoadOp = load
	t.StoreOp = store
	t.StencilLoadOp = stencilLoad
	t.StencilStoreOp = stencilStore
	return t
}

func (t RenderTarget) SetTargetLayout(initial, final, reference vk.ImageLayout) RenderTarget {
	t.InitialLayout = initial
	t.FinalLayout = final
	t.ReferenceLayout = reference
	return t
}

// AttachmentDescription converts the target to its native description
func (t RenderTarget) AttachmentDescription() vk.AttachmentDescription {
	return vk.AttachmentDescription{
		Format:         t.Format,
		Samples:        t.Samples,
		LoadOp:         t.LoadOp,
		StoreOp:        t.StoreOp,
		StencilLoadOp:  t.StencilLoadOp,
		StencilStoreOp: t.StencilStoreOp,
		InitialLayout:  t.InitialLayout,
		FinalLayout:    t.FinalLayout,
	}
}

type attachmentKind int

const (
	attachmentUnreferenced attachmentKind = iota
	attachmentColor
	attachmentDepth
	attachmentResolve
)

// classifyAttachment decides which reference list an attachment goes into.
// Attachments with any other reference layout are described but not referenced.
func classifyAttachment(referenceLayout vk.ImageLayout, resolve bool) attachmentKind {
	switch referenceLayout {
	case vk.ImageLayoutColorAttachmentOptimal:
		if resolve {
			return attachmentResolve
		}
		return attachmentColor
	case vk.ImageLayoutDepthStencilAttachmentOptimal:
		return attachmentDepth
	}
	return attachmentUnreferenced
}
