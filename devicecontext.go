package vkrender

import (
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
	"golang.org/x/exp/slog"
)

// DeviceContextOptions configures device selection
type DeviceContextOptions struct {
	// DeviceExtensions are enabled in addition to the swapchain extension
	DeviceExtensions []string
	Logger           *slog.Logger
}

// DeviceContext owns the logical device, its queues and the command pools
// every other object borrows. It is created first and destroyed last.
type DeviceContext struct {
	physicalDevice *PhysicalDevice
	device         *Device
	families       QueueFamilyIndices

	graphicsQueue *Queue
	presentQueue  *Queue
	transferQueue *Queue

	graphicsPool *CommandPool
	transferPool *CommandPool

	features vk.PhysicalDeviceFeatures
	logger   *slog.Logger
}

// missingExtensions returns the entries of required not present in available
func missingExtensions(required, available []string) []string {
	var missing []string
	for _, r := range required {
		found := false
		for _, a := range available {
			if r == a {
				found = true
				break
			}
		}
		if !found {
			missing = append(missing, r)
		}
	}
	return missing
}

func isDeviceSuitable(p *PhysicalDevice, surface vk.Surface, extensions []string) (QueueFamilyIndices, bool) {
	families, ok := p.FindQueueFamilies(surface)
	if !ok {
		return families, false
	}
	available, err := p.SupportedExtensions()
	if err != nil || len(missingExtensions(extensions, available)) > 0 {
		return families, false
	}
	support, err := p.QuerySurfaceSupport(surface)
	if err != nil || !support.Adequate() {
		return families, false
	}
	return families, true
}

// NewDeviceContext picks the first suitable physical device for the surface and
// creates the logical device, queues and command pools on it.
func NewDeviceContext(instance *Instance, surface vk.Surface, opts DeviceContextOptions) (*DeviceContext, error) {
	logger := loggerOrDefault(opts.Logger)

	devices, err := instance.PhysicalDevices()
	if err != nil {
		return nil, errors.Wrap(err, "error getting devices")
	}
	if len(devices) == 0 {
		return nil, errors.Wrap(ErrNoSuitableDevice, "failed to find GPUs with Vulkan support")
	}

	extensions := appendUnique([]string{SwapchainExtension}, opts.DeviceExtensions...)

	var pdevice *PhysicalDevice
	var families QueueFamilyIndices
	for _, p := range devices {
		if f, ok := isDeviceSuitable(p, surface, extensions); ok {
			pdevice, families = p, f
			break
		}
	}
	if pdevice == nil {
		return nil, ErrNoSuitableDevice
	}

	supported := pdevice.VKPhysicalDeviceFeatures()
	var features vk.PhysicalDeviceFeatures
	features.SamplerAnisotropy = supported.SamplerAnisotropy
	features.SampleRateShading = supported.SampleRateShading

	device, err := pdevice.CreateLogicalDevice(CreateDeviceOptions{
		QueueFamilies:     families.Unique(),
		EnabledExtensions: extensions,
		EnabledFeatures:   features,
	})
	if err != nil {
		return nil, err
	}

	ctx := &DeviceContext{
		physicalDevice: pdevice,
		device:         device,
		families:       families,
		features:       features,
		logger:         logger,
	}

	ctx.graphicsQueue = device.GetQueue(families.Graphics)
	ctx.presentQueue = device.GetQueue(families.Present)
	ctx.transferQueue = device.GetQueue(families.Transfer)

	ctx.graphicsPool, err = device.CreateCommandPool(families.Graphics)
	if err != nil {
		device.Destroy()
		return nil, err
	}
	if families.ExclusiveTransfer {
		ctx.transferPool, err = device.CreateCommandPool(families.Transfer)
		if err != nil {
			ctx.graphicsPool.Destroy()
			device.Destroy()
			return nil, err
		}
	} else {
		ctx.transferPool = ctx.graphicsPool
	}

	logger.Info("selected physical device",
		slog.String("name", pdevice.DeviceName),
		slog.Int("graphicsFamily", families.Graphics),
		slog.Int("presentFamily", families.Present),
		slog.Int("transferFamily", families.Transfer),
		slog.Bool("exclusiveTransfer", families.ExclusiveTransfer))

	return ctx, nil
}

func (c *DeviceContext) PhysicalDevice() *PhysicalDevice { return c.physicalDevice }

func (c *DeviceContext) Device() *Device { return c.device }

func (c *DeviceContext) QueueFamilies() QueueFamilyIndices { return c.families }

func (c *DeviceContext) GraphicsQueue() *Queue { return c.graphicsQueue }

func (c *DeviceContext) PresentQueue() *Queue { return c.presentQueue }

// TransferQueue is the exclusive transfer queue if one exists, else the graphics queue
func (c *DeviceContext) TransferQueue() *Queue { return c.transferQueue }

func (c *DeviceContext) HasExclusiveTransferQueue() bool { return c.families.ExclusiveTransfer }

func (c *DeviceContext) GraphicsPool() *CommandPool { return c.graphicsPool }

// TransferPool is the graphics pool itself when there is no exclusive transfer queue
func (c *DeviceContext) TransferPool() *CommandPool { return c.transferPool }

// SamplerAnisotropy reports whether anisotropic filtering was enabled on the device
func (c *DeviceContext) SamplerAnisotropy() bool { return c.features.SamplerAnisotropy == vk.True }

func (c *DeviceContext) SampleRateShading() bool { return c.features.SampleRateShading == vk.True }

func (c *DeviceContext) Logger() *slog.Logger { return c.logger }

// Queue returns the queue serving kind
func (c *DeviceContext) Queue(kind QueueKind) *Queue {
	switch kind {
	case PresentQueue:
		return c.presentQueue
	case TransferQueue:
		return c.transferQueue
	}
	return c.graphicsQueue
}

// Pool returns the command pool for the family serving kind, present work is
// recorded from the graphics pool
func (c *DeviceContext) Pool(kind QueueKind) *CommandPool {
	if kind == TransferQueue {
		return c.transferPool
	}
	return c.graphicsPool
}

// NewCommandBuffer allocates a command buffer of the given mode which submits to the queue for kind
func (c *DeviceContext) NewCommandBuffer(mode CommandBufferMode, kind QueueKind) (*CommandBuffer, error) {
	queue := c.Queue(kind)
	if kind == PresentQueue {
		queue = c.graphicsQueue
	}
	return NewCommandBuffer(mode, c.device, queue, c.Pool(kind))
}

// WaitIdle blocks until the device is idle
func (c *DeviceContext) WaitIdle() error {
	return c.device.WaitIdle()
}

// StagingSharing returns the sharing mode and queue families for buffers written
// on the transfer queue and read on the graphics queue
func (c *DeviceContext) StagingSharing() (vk.SharingMode, []uint32) {
	return stagingSharing(c.families)
}

func stagingSharing(f QueueFamilyIndices) (vk.SharingMode, []uint32) {
	if f.ExclusiveTransfer {
		return vk.SharingModeConcurrent, []uint32{uint32(f.Graphics), uint32(f.Transfer)}
	}
	return vk.SharingModeExclusive, nil
}

// Destroy destroys the pools and the device, every borrower must be gone by now
func (c *DeviceContext) Destroy() {
	if c.transferPool != nil && c.transferPool != c.graphicsPool {
		c.transferPool.Destroy()
	}
	if c.graphicsPool != nil {
		c.graphicsPool.Destroy()
	}
	c.transferPool, c.graphicsPool = nil, nil
	if c.device != nil {
		c.device.Destroy()
		c.device = nil
	}
}
