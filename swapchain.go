package vkrender

import (
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
	"golang.org/x/exp/slog"
)

// chooseSwapSurfaceFormat prefers B8G8R8A8 sRGB in the sRGB non linear color
// space and falls back to the first format offered
func chooseSwapSurfaceFormat(formats []vk.SurfaceFormat) vk.SurfaceFormat {
	for _, f := range formats {
		if f.Format == vk.FormatB8g8r8a8Srgb && f.ColorSpace == vk.ColorSpaceSrgbNonlinear {
			return f
		}
	}
	if len(formats) == 0 {
		return vk.SurfaceFormat{}
	}
	return formats[0]
}

// chooseSwapPresentMode picks the first available of preferred, then mailbox,
// then FIFO which is always available. Only mailbox and FIFO are ever
// returned, other preferred modes are skipped.
func chooseSwapPresentMode(modes []vk.PresentMode, preferred ...vk.PresentMode) vk.PresentMode {
	order := make([]vk.PresentMode, 0, len(preferred)+1)
	for _, p := range preferred {
		if p == vk.PresentModeMailbox || p == vk.PresentModeFifo {
			order = append(order, p)
		}
	}
	order = append(order, vk.PresentModeMailbox)
	for _, want := range order {
		for _, m := range modes {
			if m == want {
				return m
			}
		}
	}
	return vk.PresentModeFifo
}

// chooseImageCount asks for one more image than the minimum, within the
// maximum if the surface has one
func chooseImageCount(caps vk.SurfaceCapabilities) uint32 {
	count := caps.MinImageCount + 1
	if caps.MaxImageCount > 0 && count > caps.MaxImageCount {
		count = caps.MaxImageCount
	}
	return count
}

func clampUint32(v, lo, hi uint32) uint32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// chooseSwapExtent uses the current extent of the surface unless the window
// manager lets us pick, in which case the framebuffer size is clamped to what
// the surface supports
func chooseSwapExtent(caps vk.SurfaceCapabilities, fbWidth, fbHeight int) vk.Extent2D {
	if caps.CurrentExtent.Width != vk.MaxUint32 {
		return caps.CurrentExtent
	}
	if fbWidth < 0 {
		fbWidth = 0
	}
	if fbHeight < 0 {
		fbHeight = 0
	}
	return vk.Extent2D{
		Width:  clampUint32(uint32(fbWidth), caps.MinImageExtent.Width, caps.MaxImageExtent.Width),
		Height: clampUint32(uint32(fbHeight), caps.MinImageExtent.Height, caps.MaxImageExtent.Height),
	}
}

// chooseSharingMode shares swapchain images concurrently between the graphics
// and present families when they differ
func chooseSharingMode(graphicsFamily, presentFamily int) (vk.SharingMode, []uint32) {
	if graphicsFamily != presentFamily {
		return vk.SharingModeConcurrent, []uint32{uint32(graphicsFamily), uint32(presentFamily)}
	}
	return vk.SharingModeExclusive, nil
}

// framebufferAttachments orders the views of one framebuffer to match the
// attachment slots of the render pass built by swapchainTargets. A single
// sampled swapchain renders straight into the presented image and has no
// color image to resolve.
func framebufferAttachments[V any](withResources bool, samples vk.SampleCountFlagBits, color, depth, swap V) []V {
	switch {
	case !withResources:
		return []V{swap}
	case samples <= vk.SampleCount1Bit:
		return []V{swap, depth}
	}
	return []V{color, depth, swap}
}

// SwapchainOptions configures a Swapchain
type SwapchainOptions struct {
	// WithResources adds a depth image to every framebuffer, and a
	// multisampled color image when Samples is above 1
	WithResources bool
	// Samples is the sample count of the color and depth resources
	Samples vk.SampleCountFlagBits
	// Width and Height are the framebuffer size, used only when the surface leaves the extent to us
	Width, Height int
	// PreferredPresentModes are tried in order before mailbox and FIFO
	PreferredPresentModes []vk.PresentMode
	Logger                *slog.Logger
}

// Swapchain owns the presentable images of a surface, their views, the
// optional color and depth side buffers and one framebuffer per image.
// The render pass is borrowed and never destroyed by the swapchain.
type Swapchain struct {
	VKSwapchain vk.Swapchain

	ctx        *DeviceContext
	surface    vk.Surface
	renderPass *RenderPass
	immediate  *CommandBuffer
	opts       SwapchainOptions
	logger     *slog.Logger

	images        []vk.Image
	views         []vk.ImageView
	surfaceFormat vk.SurfaceFormat
	extent        vk.Extent2D
	presentMode   vk.PresentMode
	sharingMode   vk.SharingMode
	imageCount    uint32

	color        *Image
	colorView    *ImageView
	depth        *Image
	depthView    *ImageView
	depthFormat  vk.Format
	framebuffers []*Framebuffer
}

// NewSwapchain creates the swapchain, its views, the side buffers if requested
// and, when renderPass is not nil, the framebuffers. immediate records the
// depth image transition.
func NewSwapchain(ctx *DeviceContext, surface vk.Surface, renderPass *RenderPass, immediate *CommandBuffer, opts SwapchainOptions) (*Swapchain, error) {
	if opts.Samples == 0 {
		opts.Samples = vk.SampleCount1Bit
	}
	s := &Swapchain{
		ctx:        ctx,
		surface:    surface,
		renderPass: renderPass,
		immediate:  immediate,
		opts:       opts,
		logger:     loggerOrDefault(opts.Logger),
	}
	if err := s.build(opts.Width, opts.Height); err != nil {
		s.Destroy()
		return nil, err
	}
	return s, nil
}

func (s *Swapchain) build(fbWidth, fbHeight int) error {
	if err := s.createSwapchain(fbWidth, fbHeight); err != nil {
		return err
	}
	if err := s.createImageViews(); err != nil {
		return err
	}
	if s.multisampled() {
		if err := s.createColorResources(); err != nil {
			return err
		}
	}
	if s.opts.WithResources {
		if err := s.createDepthResources(); err != nil {
			return err
		}
	}
	if s.renderPass != nil {
		if err := s.createFramebuffers(); err != nil {
			return err
		}
	}
	return nil
}

// multisampled reports whether the swapchain draws into a multisampled color
// image resolved into the presented one
func (s *Swapchain) multisampled() bool {
	return s.opts.WithResources && s.opts.Samples > vk.SampleCount1Bit
}

func (s *Swapchain) createSwapchain(fbWidth, fbHeight int) error {
	pdevice := s.ctx.PhysicalDevice()
	support, err := pdevice.QuerySurfaceSupport(s.surface)
	if err != nil {
		return err
	}

	s.surfaceFormat = chooseSwapSurfaceFormat(support.Formats)
	s.presentMode = chooseSwapPresentMode(support.PresentModes, s.opts.PreferredPresentModes...)
	s.extent = chooseSwapExtent(support.Capabilities, fbWidth, fbHeight)
	imageCount := chooseImageCount(support.Capabilities)

	families := s.ctx.QueueFamilies()
	var queueFamilies []uint32
	s.sharingMode, queueFamilies = chooseSharingMode(families.Graphics, families.Present)

	createInfo := vk.SwapchainCreateInfo{
		SType:                 vk.StructureTypeSwapchainCreateInfo,
		Surface:               s.surface,
		MinImageCount:         imageCount,
		ImageFormat:           s.surfaceFormat.Format,
		ImageColorSpace:       s.surfaceFormat.ColorSpace,
		ImageExtent:           s.extent,
		ImageArrayLayers:      1,
		ImageUsage:            vk.ImageUsageFlags(vk.ImageUsageColorAttachmentBit),
		ImageSharingMode:      s.sharingMode,
		QueueFamilyIndexCount: uint32(len(queueFamilies)),
		PQueueFamilyIndices:   queueFamilies,
		PreTransform:          support.Capabilities.CurrentTransform,
		CompositeAlpha:        vk.CompositeAlphaOpaqueBit,
		PresentMode:           s.presentMode,
		Clipped:               vk.True,
		OldSwapchain:          vk.NullSwapchain,
	}

	device := s.ctx.Device().VKDevice
	var swapchain vk.Swapchain
	if err := vkCall(vk.CreateSwapchain(device, &createInfo, nil, &swapchain), "create swapchain"); err != nil {
		return err
	}
	s.VKSwapchain = swapchain

	var count uint32
	if err := vkCall(vk.GetSwapchainImages(device, swapchain, &count, nil), "get swapchain images"); err != nil {
		return err
	}
	s.images = make([]vk.Image, count)
	if err := vkCall(vk.GetSwapchainImages(device, swapchain, &count, s.images), "get swapchain images"); err != nil {
		return err
	}
	s.imageCount = count

	s.logger.Info("swapchain created",
		slog.Int("width", int(s.extent.Width)),
		slog.Int("height", int(s.extent.Height)),
		slog.Int("images", int(count)),
		slog.Int("presentMode", int(s.presentMode)))
	return nil
}

func (s *Swapchain) createImageViews() error {
	views, err := createImageViews(s.ctx.Device(), s.images, s.surfaceFormat.Format)
	if err != nil {
		return err
	}
	s.views = views
	return nil
}

func (s *Swapchain) createColorResources() error {
	img, err := s.ctx.Device().CreateImage(ImageOptions{
		Extent:     s.extent,
		MipLevels:  1,
		Samples:    s.opts.Samples,
		Format:     s.surfaceFormat.Format,
		Tiling:     vk.ImageTilingOptimal,
		Usage:      vk.ImageUsageFlags(vk.ImageUsageTransientAttachmentBit | vk.ImageUsageColorAttachmentBit),
		Properties: vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit),
	})
	if err != nil {
		return errors.Wrap(err, "color resources")
	}
	s.color = img

	s.colorView, err = img.CreateView(vk.ImageAspectFlags(vk.ImageAspectColorBit))
	if err != nil {
		return errors.Wrap(err, "color resources")
	}
	return nil
}

func (s *Swapchain) createDepthResources() error {
	format, err := s.ctx.PhysicalDevice().FindDepthFormat()
	if err != nil {
		return err
	}
	s.depthFormat = format

	img, err := s.ctx.Device().CreateImage(ImageOptions{
		Extent:     s.extent,
		MipLevels:  1,
		Samples:    s.opts.Samples,
		Format:     format,
		Tiling:     vk.ImageTilingOptimal,
		Usage:      vk.ImageUsageFlags(vk.ImageUsageDepthStencilAttachmentBit),
		Properties: vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit),
	})
	if err != nil {
		return errors.Wrap(err, "depth resources")
	}
	s.depth = img

	s.depthView, err = img.CreateView(vk.ImageAspectFlags(vk.ImageAspectDepthBit))
	if err != nil {
		return errors.Wrap(err, "depth resources")
	}

	return s.immediate.Record(func(cb *CommandBuffer) error {
		return TransitionImageLayout(cb, img.VKImage, format,
			vk.ImageLayoutUndefined, vk.ImageLayoutDepthStencilAttachmentOptimal, 1)
	})
}

func (s *Swapchain) createFramebuffers() error {
	color, depth := vk.NullImageView, vk.NullImageView
	if s.colorView != nil {
		color = s.colorView.VKImageView
	}
	if s.depthView != nil {
		depth = s.depthView.VKImageView
	}
	s.framebuffers = make([]*Framebuffer, 0, len(s.views))
	for i, view := range s.views {
		attachments := framebufferAttachments(s.opts.WithResources, s.opts.Samples, color, depth, view)
		fb, err := s.ctx.Device().CreateFramebuffer(s.renderPass, attachments, s.extent)
		if err != nil {
			return errors.Wrapf(err, "framebuffer %d", i)
		}
		s.framebuffers = append(s.framebuffers, fb)
	}
	return nil
}

// AttachRenderPass binds the render pass the framebuffers are built against
// and (re)creates them
func (s *Swapchain) AttachRenderPass(renderPass *RenderPass) error {
	s.destroyFramebuffers()
	s.renderPass = renderPass
	if renderPass == nil {
		return nil
	}
	return s.createFramebuffers()
}

func (s *Swapchain) destroyColorResources() {
	if s.colorView != nil {
		s.colorView.Destroy()
		s.colorView = nil
	}
	if s.color != nil {
		s.color.Destroy()
		s.color = nil
	}
}

func (s *Swapchain) destroyDepthResources() {
	if s.depthView != nil {
		s.depthView.Destroy()
		s.depthView = nil
	}
	if s.depth != nil {
		s.depth.Destroy()
		s.depth = nil
	}
}

func (s *Swapchain) destroyFramebuffers() {
	for _, fb := range s.framebuffers {
		fb.Destroy()
	}
	s.framebuffers = nil
}

// Destroy releases everything the swapchain owns. It may be called more than
// once and leaves the render pass alone.
func (s *Swapchain) Destroy() {
	s.destroyColorResources()
	s.destroyDepthResources()
	s.destroyFramebuffers()
	destroyImageViews(s.ctx.Device(), s.views)
	s.views = nil
	if s.VKSwapchain != vk.NullSwapchain {
		vk.DestroySwapchain(s.ctx.Device().VKDevice, s.VKSwapchain, nil)
		s.VKSwapchain = vk.NullSwapchain
	}
	s.images = nil
	s.imageCount = 0
}

// Recreate waits for the device to go idle and rebuilds the swapchain for the
// given framebuffer size against the same render pass
func (s *Swapchain) Recreate(fbWidth, fbHeight int) error {
	if err := s.ctx.WaitIdle(); err != nil {
		return err
	}
	s.Destroy()
	if err := s.build(fbWidth, fbHeight); err != nil {
		return errors.Wrap(err, "recreate swapchain")
	}
	s.logger.Info("swapchain recreated",
		slog.Int("width", int(s.extent.Width)),
		slog.Int("height", int(s.extent.Height)))
	return nil
}

// AcquireNextImage returns the index of the next presentable image, signaling
// semaphore once it is ready
func (s *Swapchain) AcquireNextImage(semaphore *Semaphore) (uint32, error) {
	var index uint32
	res := vk.AcquireNextImage(s.ctx.Device().VKDevice, s.VKSwapchain, vk.MaxUint64, semaphore.VKSemaphore, vk.NullFence, &index)
	switch res {
	case vk.Success, vk.Suboptimal:
		return index, nil
	case vk.ErrorOutOfDate:
		return 0, ErrSwapchainOutOfDate
	}
	return 0, vkCall(res, "acquire next image")
}

// Present queues image index for presentation once wait is signaled
func (s *Swapchain) Present(queue *Queue, index uint32, wait *Semaphore) error {
	presentInfo := vk.PresentInfo{
		SType:              vk.StructureTypePresentInfo,
		WaitSemaphoreCount: 1,
		PWaitSemaphores:    []vk.Semaphore{wait.VKSemaphore},
		SwapchainCount:     1,
		PSwapchains:        []vk.Swapchain{s.VKSwapchain},
		PImageIndices:      []uint32{index},
	}
	switch res := vk.QueuePresent(queue.VKQueue, &presentInfo); res {
	case vk.Success:
		return nil
	case vk.ErrorOutOfDate, vk.Suboptimal:
		return ErrSwapchainOutOfDate
	default:
		return vkCall(res, "queue present")
	}
}

func (s *Swapchain) Extent() vk.Extent2D { return s.extent }

func (s *Swapchain) Format() vk.Format { return s.surfaceFormat.Format }

func (s *Swapchain) SurfaceFormat() vk.SurfaceFormat { return s.surfaceFormat }

func (s *Swapchain) PresentMode() vk.PresentMode { return s.presentMode }

func (s *Swapchain) SharingMode() vk.SharingMode { return s.sharingMode }

func (s *Swapchain) ImageCount() uint32 { return s.imageCount }

func (s *Swapchain) Views() []vk.ImageView { return s.views }

// DepthFormat is only meaningful when the swapchain was created with resources
func (s *Swapchain) DepthFormat() vk.Format { return s.depthFormat }

func (s *Swapchain) Samples() vk.SampleCountFlagBits { return s.opts.Samples }

func (s *Swapchain) WithResources() bool { return s.opts.WithResources }

func (s *Swapchain) Framebuffer(index uint32) *Framebuffer { return s.framebuffers[index] }

func (s *Swapchain) Framebuffers() []*Framebuffer { return s.framebuffers }

// ColorView returns the multisampled color view, nil unless the swapchain
// has resources and more than one sample
func (s *Swapchain) ColorView() *ImageView { return s.colorView }

// DepthView returns the depth view, nil without resources
func (s *Swapchain) DepthView() *ImageView { return s.depthView }
