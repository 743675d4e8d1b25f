package vkrender

import (
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
	"golang.org/x/exp/slog"
)

// Window is what the renderer needs from the windowing system
type Window interface {
	// FramebufferSize returns the size in pixels, blocking while the window is minimized
	FramebufferSize() (width, height int)
	RequiredInstanceExtensions() []string
	CreateSurface(instance vk.Instance) (vk.Surface, error)
	// ConsumeResized reports whether the framebuffer was resized since the last call
	ConsumeResized() bool
	ShouldClose() bool
	PollEvents()
}

// RecordFunc records the commands of one frame into cb, which renders to the
// swapchain image imageIndex
type RecordFunc func(cb *CommandBuffer, imageIndex uint32) error

// Renderer is the composition root. It owns the instance, surface, device
// context, immediate command buffer, swapchain, texture manager and frame
// synchronization, and destroys them in reverse order of creation.
type Renderer struct {
	cfg    Config
	window Window
	logger *slog.Logger

	instance      *Instance
	surface       vk.Surface
	ctx           *DeviceContext
	immediate     *CommandBuffer
	swapchain     *Swapchain
	textures      *TextureManager
	pipelineCache *PipelineCache
	frames        *FrameSync

	samples    vk.SampleCountFlagBits
	renderPass *RenderPass
}

// NewRenderer brings up Vulkan for window. vk.Init must have been called
// with the window system's GetInstanceProcAddr beforehand.
func NewRenderer(window Window, cfg Config) (*Renderer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	r := &Renderer{
		cfg:    cfg,
		window: window,
		logger: loggerOrDefault(cfg.Logger),
	}
	if err := r.init(); err != nil {
		r.Destroy()
		return nil, err
	}
	return r, nil
}

func (r *Renderer) init() error {
	apiVersion, err := ParseVersion(r.cfg.Vulkan.APIVersion)
	if err != nil {
		return err
	}
	presentModes, err := r.cfg.Vulkan.PresentModes()
	if err != nil {
		return err
	}

	r.instance, err = CreateInstance(InstanceOptions{
		Name:       r.cfg.App.Name,
		EngineName: r.cfg.App.Engine,
		Version:    Version{1, 0, 0},
		APIVersion: apiVersion,
		Validation: r.cfg.Vulkan.Validation,
		Extensions: appendUnique(r.window.RequiredInstanceExtensions(), r.cfg.Vulkan.InstanceExtensions...),
		Logger:     r.logger,
	})
	if err != nil {
		return err
	}

	r.surface, err = r.window.CreateSurface(r.instance.VKInstance)
	if err != nil {
		return errors.Wrap(err, "create surface")
	}

	r.ctx, err = NewDeviceContext(r.instance, r.surface, DeviceContextOptions{
		DeviceExtensions: r.cfg.Vulkan.DeviceExtensions,
		Logger:           r.logger,
	})
	if err != nil {
		return err
	}

	r.immediate, err = r.ctx.NewCommandBuffer(Immediate, GraphicsQueue)
	if err != nil {
		return errors.Wrap(err, "immediate command buffer")
	}

	r.samples = r.ctx.PhysicalDevice().SampleCountFromInt(r.cfg.Vulkan.MSAASamples)
	width, height := r.window.FramebufferSize()
	r.swapchain, err = NewSwapchain(r.ctx, r.surface, nil, r.immediate, SwapchainOptions{
		WithResources:         true,
		Samples:               r.samples,
		Width:                 width,
		Height:                height,
		PreferredPresentModes: presentModes,
		Logger:                r.logger,
	})
	if err != nil {
		return err
	}

	r.textures = NewTextureManager(r.ctx, r.immediate, r.logger)

	r.pipelineCache, err = r.ctx.Device().CreatePipelineCache()
	if err != nil {
		return err
	}

	r.frames, err = newFrameSync(r.ctx, MaxFramesInFlight, r.swapchain.ImageCount())
	return err
}

func (r *Renderer) Config() Config { return r.cfg }

func (r *Renderer) Logger() *slog.Logger { return r.logger }

func (r *Renderer) Instance() *Instance { return r.instance }

func (r *Renderer) Context() *DeviceContext { return r.ctx }

func (r *Renderer) Device() *Device { return r.ctx.Device() }

func (r *Renderer) Swapchain() *Swapchain { return r.swapchain }

func (r *Renderer) Textures() *TextureManager { return r.textures }

func (r *Renderer) PipelineCache() *PipelineCache { return r.pipelineCache }

// Samples is the MSAA sample count of the swapchain color and depth resources
func (r *Renderer) Samples() vk.SampleCountFlagBits { return r.samples }

func (r *Renderer) Extent() vk.Extent2D { return r.swapchain.Extent() }

// RenderPass returns the render pass the swapchain framebuffers are built against
func (r *Renderer) RenderPass() *RenderPass { return r.renderPass }

// CreateBuffer creates a buffer with its own memory
func (r *Renderer) CreateBuffer(opts BufferOptions) (*Buffer, error) {
	return r.ctx.Device().CreateBuffer(opts)
}

// CreateHostBuffer creates a host visible, coherent buffer, as used for
// uniforms updated every frame
func (r *Renderer) CreateHostBuffer(size uint64, usage vk.BufferUsageFlags) (*Buffer, error) {
	return r.CreateBuffer(BufferOptions{
		Size:       size,
		Usage:      usage,
		Properties: vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit | vk.MemoryPropertyHostCoherentBit),
		Sharing:    vk.SharingModeExclusive,
	})
}

// CreateDeviceLocalBuffer uploads data into a new device local buffer through a
// staging buffer, copied on the transfer queue
func (r *Renderer) CreateDeviceLocalBuffer(data []byte, usage vk.BufferUsageFlags) (*Buffer, error) {
	if len(data) == 0 {
		return nil, errors.New("device local buffer: no data")
	}
	sharing, families := r.ctx.StagingSharing()
	size := uint64(len(data))

	staging, err := r.CreateBuffer(BufferOptions{
		Size:          size,
		Usage:         vk.BufferUsageFlags(vk.BufferUsageTransferSrcBit),
		Properties:    vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit | vk.MemoryPropertyHostCoherentBit),
		Sharing:       sharing,
		QueueFamilies: families,
	})
	if err != nil {
		return nil, errors.Wrap(err, "staging buffer")
	}
	defer staging.Destroy()

	if err := staging.Upload(data); err != nil {
		return nil, err
	}

	buf, err := r.CreateBuffer(BufferOptions{
		Size:          size,
		Usage:         usage | vk.BufferUsageFlags(vk.BufferUsageTransferDstBit),
		Properties:    vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit),
		Sharing:       sharing,
		QueueFamilies: families,
	})
	if err != nil {
		return nil, err
	}

	cb, err := r.ctx.NewCommandBuffer(Temporary, TransferQueue)
	if err != nil {
		buf.Destroy()
		return nil, err
	}
	err = cb.Record(func(cb *CommandBuffer) error {
		cb.CopyBuffer(staging.VKBuffer, buf.VKBuffer, size)
		return nil
	})
	if err != nil {
		buf.Destroy()
		return nil, err
	}
	return buf, nil
}

func (r *Renderer) CreateVertexBuffer(v VertexSource) (*Buffer, error) {
	buf, err := r.CreateDeviceLocalBuffer(v.Bytes(), vk.BufferUsageFlags(vk.BufferUsageVertexBufferBit))
	return buf, errors.Wrap(err, "vertex buffer")
}

func (r *Renderer) CreateIndexBuffer(i IndexSource) (*Buffer, error) {
	buf, err := r.CreateDeviceLocalBuffer(i.Bytes(), vk.BufferUsageFlags(vk.BufferUsageIndexBufferBit))
	return buf, errors.Wrap(err, "index buffer")
}

func (r *Renderer) CreateSampler(opts SamplerOptions) (*Sampler, error) {
	return r.ctx.CreateSampler(opts)
}

func (r *Renderer) CreateFramebuffer(renderPass *RenderPass, attachments []vk.ImageView, extent vk.Extent2D) (*Framebuffer, error) {
	return r.ctx.Device().CreateFramebuffer(renderPass, attachments, extent)
}

// NewRenderPassBuilder returns a builder reporting to the renderer's logger
func (r *Renderer) NewRenderPassBuilder(name string) *RenderPassBuilder {
	return NewRenderPassBuilder(name).WithLogger(r.logger)
}

// CreateRenderPass compiles b on the renderer's device
func (r *Renderer) CreateRenderPass(b *RenderPassBuilder) (*RenderPass, error) {
	return b.Compile(r.ctx.Device())
}

// swapchainTargets describes the attachments of a swapchain framebuffer in
// the order framebufferAttachments lays out the views. Multisampled:
// color, depth, then the presented image the color resolves into. Single
// sampled: the presented image, then depth. Without resources only the
// presented image is used.
func swapchainTargets(withResources bool, samples vk.SampleCountFlagBits, colorFormat, depthFormat vk.Format) []RenderTarget {
	present := NewRenderTarget(vk.NullImageView, colorFormat, vk.SampleCount1Bit, false).
		SetTargetSemantics(vk.AttachmentLoadOpClear, vk.AttachmentStoreOpStore, vk.AttachmentLoadOpDontCare, vk.AttachmentStoreOpDontCare).
		SetTargetLayout(vk.ImageLayoutUndefined, vk.ImageLayoutPresentSrc, vk.ImageLayoutColorAttachmentOptimal)
	if !withResources {
		return []RenderTarget{present}
	}
	if samples <= vk.SampleCount1Bit {
		samples = vk.SampleCount1Bit
	}

	depth := NewRenderTarget(vk.NullImageView, depthFormat, samples, false).
		SetTargetSemantics(vk.AttachmentLoadOpClear, vk.AttachmentStoreOpDontCare, vk.AttachmentLoadOpDontCare, vk.AttachmentStoreOpDontCare).
		SetTargetLayout(vk.ImageLayoutUndefined, vk.ImageLayoutDepthStencilAttachmentOptimal, vk.ImageLayoutDepthStencilAttachmentOptimal)
	if samples == vk.SampleCount1Bit {
		return []RenderTarget{present, depth}
	}

	color := NewRenderTarget(vk.NullImageView, colorFormat, samples, false).
		SetTargetSemantics(vk.AttachmentLoadOpClear, vk.AttachmentStoreOpStore, vk.AttachmentLoadOpDontCare, vk.AttachmentStoreOpDontCare).
		SetTargetLayout(vk.ImageLayoutUndefined, vk.ImageLayoutColorAttachmentOptimal, vk.ImageLayoutColorAttachmentOptimal)
	resolve := NewRenderTarget(vk.NullImageView, colorFormat, vk.SampleCount1Bit, true).
		SetTargetSemantics(vk.AttachmentLoadOpDontCare, vk.AttachmentStoreOpStore, vk.AttachmentLoadOpDontCare, vk.AttachmentStoreOpDontCare).
		SetTargetLayout(vk.ImageLayoutUndefined, vk.ImageLayoutPresentSrc, vk.ImageLayoutColorAttachmentOptimal)
	return []RenderTarget{color, depth, resolve}
}

// CreatePresentRenderPass builds the single subpass render pass drawing into
// the swapchain, attaches it to the swapchain and keeps it across resizes.
// The renderer owns the returned pass.
func (r *Renderer) CreatePresentRenderPass(name string) (*RenderPass, error) {
	b := r.NewRenderPassBuilder(name)
	err := b.PrepareTargetAttachments(swapchainTargets(r.swapchain.WithResources(), r.swapchain.Samples(), r.swapchain.Format(), r.swapchain.DepthFormat())...)
	if err != nil {
		return nil, err
	}

	stages := vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit | vk.PipelineStageEarlyFragmentTestsBit)
	_, err = b.AddSubPass(vk.PipelineBindPointGraphics, vk.SubpassExternal, 0,
		stages, 0,
		stages, vk.AccessFlags(vk.AccessColorAttachmentWriteBit|vk.AccessDepthStencilAttachmentWriteBit))
	if err != nil {
		return nil, err
	}

	rp, err := r.CreateRenderPass(b)
	if err != nil {
		return nil, err
	}
	if err := r.swapchain.AttachRenderPass(rp); err != nil {
		rp.Destroy()
		return nil, err
	}
	if r.renderPass != nil {
		r.renderPass.Destroy()
	}
	r.renderPass = rp
	return rp, nil
}

// NewDescriptorBuilder returns a descriptor builder with one set per frame in flight
func (r *Renderer) NewDescriptorBuilder() *DescriptorBuilder {
	return NewDescriptorBuilder(r.cfg.Vulkan.DescriptorSetsPerPool)
}

func (r *Renderer) BuildDescriptor(b *DescriptorBuilder) (*Descriptor, error) {
	return b.Build(r.ctx.Device())
}

func (r *Renderer) LoadShaderProgram(path string, stage vk.ShaderStageFlagBits) (*ShaderProgram, error) {
	return LoadShaderProgram(r.ctx.Device(), path, stage, "main")
}

// NewGraphicsPipelineBuilder returns a builder whose multisample state
// matches the swapchain resources
func (r *Renderer) NewGraphicsPipelineBuilder() *GraphicsPipelineBuilder {
	return NewGraphicsPipelineBuilder().
		SetMultisampleState(r.samples, r.ctx.SampleRateShading(), 0.2).
		SetViewportExtent(r.swapchain.Extent())
}

// CompilePipeline compiles b against subpass of renderPass using the renderer's pipeline cache
func (r *Renderer) CompilePipeline(b *GraphicsPipelineBuilder, renderPass *RenderPass, subpass uint32) (*GraphicsPipeline, error) {
	return b.Compile(r.ctx.Device(), renderPass, subpass, r.pipelineCache)
}

// FrameIndex is the frame in flight currently being recorded, per frame
// resources such as descriptor sets are indexed by it
func (r *Renderer) FrameIndex() int {
	return r.frames.Current()
}

// DrawFrame waits for the current frame in flight, acquires an image, records
// it with record and presents it. An out of date swapchain or a resized window
// rebuilds the swapchain and the frame is skipped.
func (r *Renderer) DrawFrame(record RecordFunc) error {
	f := r.frames.frame()
	if err := f.inFlight.Wait(-1); err != nil {
		return err
	}

	imageIndex, err := r.swapchain.AcquireNextImage(f.imageAvailable)
	if errors.Is(err, ErrSwapchainOutOfDate) {
		return r.recreateSwapchain()
	}
	if err != nil {
		return err
	}

	if prev := r.frames.claimImage(imageIndex); prev != nil && prev != f.inFlight {
		if err := prev.Wait(-1); err != nil {
			return err
		}
	}

	err = submitRecorded(
		func() error { return r.recordFrame(f, record, imageIndex) },
		f.inFlight.Reset,
		func() error {
			return r.ctx.GraphicsQueue().SubmitFrame(f.commands, f.imageAvailable,
				vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit), f.renderFinished, f.inFlight)
		})
	if err != nil {
		return err
	}

	err = r.swapchain.Present(r.ctx.PresentQueue(), imageIndex, f.renderFinished)
	resized := r.window.ConsumeResized()
	r.frames.advance()
	if errors.Is(err, ErrSwapchainOutOfDate) || resized {
		return r.recreateSwapchain()
	}
	return err
}

func (r *Renderer) recordFrame(f *frame, record RecordFunc, imageIndex uint32) error {
	if err := f.commands.Reset(); err != nil {
		return err
	}
	if err := f.commands.BeginReusable(); err != nil {
		return err
	}
	if err := record(f.commands, imageIndex); err != nil {
		f.commands.EndRecording()
		return errors.Wrap(err, "record frame")
	}
	return f.commands.EndRecording()
}

// recreateSwapchain rebuilds the swapchain at the current framebuffer size
// against the same render pass
func (r *Renderer) recreateSwapchain() error {
	width, height := r.window.FramebufferSize()
	if err := r.swapchain.Recreate(width, height); err != nil {
		return err
	}
	r.frames.resetImages(r.swapchain.ImageCount())
	return nil
}

// WaitIdle blocks until the device has finished all submitted work
func (r *Renderer) WaitIdle() error {
	return r.ctx.WaitIdle()
}

// Destroy waits for the device then destroys everything the renderer owns in
// reverse order of creation. Objects created through the renderer's services
// must be destroyed first.
func (r *Renderer) Destroy() {
	if r.ctx != nil {
		if err := r.ctx.WaitIdle(); err != nil {
			r.logger.Warn("wait idle before destroy", slog.Any("error", err))
		}
	}
	if r.frames != nil {
		r.frames.Destroy()
		r.frames = nil
	}
	if r.pipelineCache != nil {
		r.pipelineCache.Destroy()
		r.pipelineCache = nil
	}
	if r.textures != nil {
		r.textures.Destroy()
		r.textures = nil
	}
	if r.swapchain != nil {
		r.swapchain.Destroy()
		r.swapchain = nil
	}
	if r.renderPass != nil {
		r.renderPass.Destroy()
		r.renderPass = nil
	}
	if r.immediate != nil {
		r.immediate.Free()
		r.immediate = nil
	}
	if r.ctx != nil {
		r.ctx.Destroy()
		r.ctx = nil
	}
	if r.surface != vk.NullSurface {
		vk.DestroySurface(r.instance.VKInstance, r.surface, nil)
		r.surface = vk.NullSurface
	}
	if r.instance != nil {
		r.instance.Destroy()
		r.instance = nil
	}
}
