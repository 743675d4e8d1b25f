package vkrender

import (
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
	"golang.org/x/exp/slog"
)

// DefaultRenderPassName names a render pass built without a name
const DefaultRenderPassName = "Color Pass"

// RenderPassBuilder accumulates attachments, subpasses and dependencies and
// compiles them into a RenderPass. A builder compiles once.
type RenderPassBuilder struct {
	name string

	attachments []vk.AttachmentDescription
	color       []vk.AttachmentReference
	depth       []vk.AttachmentReference
	resolve     []vk.AttachmentReference

	subpasses    []vk.SubpassDescription
	dependencies []vk.SubpassDependency

	consumed bool
	logger   *slog.Logger
}

func NewRenderPassBuilder(name string) *RenderPassBuilder {
	if name == "" {
		name = DefaultRenderPassName
	}
	return &RenderPassBuilder{name: name, logger: slog.Default()}
}

// WithLogger sets the logger the compiled pass is reported to
func (b *RenderPassBuilder) WithLogger(l *slog.Logger) *RenderPassBuilder {
	b.logger = loggerOrDefault(l)
	return b
}

// PrepareTargetAttachments describes each target and references it from the
// list matching its reference layout. Attachment indices continue across calls.
func (b *RenderPassBuilder) PrepareTargetAttachments(targets ...RenderTarget) error {
	if b.consumed {
		return ErrBuilderConsumed
	}
	for _, t := range targets {
		ref := vk.AttachmentReference{
			Attachment: uint32(len(b.attachments)),
			Layout:     t.ReferenceLayout,
		}
		b.attachments = append(b.attachments, t.AttachmentDescription())

		switch classifyAttachment(t.ReferenceLayout, t.Resolve) {
		case attachmentColor:
			b.color = append(b.color, ref)
		case attachmentDepth:
			b.depth = append(b.depth, ref)
		case attachmentResolve:
			b.resolve = append(b.resolve, ref)
		}
	}
	return nil
}

// AddSubPass turns the references accumulated since the previous subpass into
// a new subpass, records one dependency edge and returns the subpass index
func (b *RenderPassBuilder) AddSubPass(bindPoint vk.PipelineBindPoint, srcSubpass, dstSubpass uint32,
	srcStage vk.PipelineStageFlags, srcAccess vk.AccessFlags,
	dstStage vk.PipelineStageFlags, dstAccess vk.AccessFlags) (uint32, error) {

	if b.consumed {
		return 0, ErrBuilderConsumed
	}
	index := uint32(len(b.subpasses))
	if len(b.resolve) > 0 && len(b.resolve) != len(b.color) {
		return 0, errors.Errorf("subpass %d: %d resolve attachments for %d color attachments", index, len(b.resolve), len(b.color))
	}
	if len(b.resolve) > 0 {
		for _, ref := range b.color {
			if b.attachments[ref.Attachment].Samples == vk.SampleCount1Bit {
				return 0, errors.Errorf("subpass %d: color attachment %d is single sampled and can't be resolved", index, ref.Attachment)
			}
		}
	}

	subpass := vk.SubpassDescription{
		PipelineBindPoint:    bindPoint,
		ColorAttachmentCount: uint32(len(b.color)),
		PColorAttachments:    b.color,
		PResolveAttachments:  b.resolve,
	}
	if n := len(b.depth); n > 0 {
		depth := b.depth[n-1]
		subpass.PDepthStencilAttachment = &depth
	}
	b.subpasses = append(b.subpasses, subpass)

	b.dependencies = append(b.dependencies, vk.SubpassDependency{
		SrcSubpass:    srcSubpass,
		DstSubpass:    dstSubpass,
		SrcStageMask:  srcStage,
		SrcAccessMask: srcAccess,
		DstStageMask:  dstStage,
		DstAccessMask: dstAccess,
	})

	// each attachment belongs to a single subpass
	b.color, b.depth, b.resolve = nil, nil, nil
	return index, nil
}

// Compile creates the native render pass and consumes the builder
func (b *RenderPassBuilder) Compile(device *Device) (*RenderPass, error) {
	if b.consumed {
		return nil, ErrBuilderConsumed
	}

	createInfo := vk.RenderPassCreateInfo{
		SType:           vk.StructureTypeRenderPassCreateInfo,
		AttachmentCount: uint32(len(b.attachments)),
		PAttachments:    b.attachments,
		SubpassCount:    uint32(len(b.subpasses)),
		PSubpasses:      b.subpasses,
		DependencyCount: uint32(len(b.dependencies)),
		PDependencies:   b.dependencies,
	}

	var renderPass vk.RenderPass
	if err := vkCall(vk.CreateRenderPass(device.VKDevice, &createInfo, nil, &renderPass), "create render pass"); err != nil {
		return nil, errors.Wrap(err, b.name)
	}

	rp := &RenderPass{
		Device:          device,
		VKRenderPass:    renderPass,
		Name:            b.name,
		AttachmentCount: uint32(len(b.attachments)),
		SubpassCount:    uint32(len(b.subpasses)),
	}
	b.logger.Info(b.name+" RenderPass Created",
		slog.Int("attachments", int(rp.AttachmentCount)),
		slog.Int("subpasses", int(rp.SubpassCount)))

	*b = RenderPassBuilder{name: b.name, consumed: true, logger: b.logger}
	return rp, nil
}

// RenderPass is an immutable compiled render pass
type RenderPass struct {
	Device       *Device
	VKRenderPass vk.RenderPass
	Name         string

	AttachmentCount uint32
	SubpassCount    uint32
}

func (r *RenderPass) Destroy() {
	if r.VKRenderPass != vk.NullRenderPass {
		vk.DestroyRenderPass(r.Device.VKDevice, r.VKRenderPass, nil)
		r.VKRenderPass = vk.NullRenderPass
	}
}
