package vkrender

import (
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

// SwapchainExtension is the device extension required for presentation
const SwapchainExtension = "VK_KHR_swapchain"

type PhysicalDevice struct {
	DeviceName                 string
	VKPhysicalDevice           vk.PhysicalDevice
	VKPhysicalDeviceProperties vk.PhysicalDeviceProperties
}

func (p *PhysicalDevice) String() string {
	return p.DeviceName
}

// SurfaceSupport holds everything the swapchain needs to know about a surface
type SurfaceSupport struct {
	Capabilities vk.SurfaceCapabilities
	Formats      []vk.SurfaceFormat
	PresentModes []vk.PresentMode
}

// Adequate reports whether a swapchain could be created for the surface at all
func (s *SurfaceSupport) Adequate() bool {
	return len(s.Formats) > 0 && len(s.PresentModes) > 0
}

func (p *PhysicalDevice) GetSurfacePresentModes(surface vk.Surface) ([]vk.PresentMode, error) {
	var count uint32
	if err := vkCall(vk.GetPhysicalDeviceSurfacePresentModes(p.VKPhysicalDevice, surface, &count, nil), "get surface present modes"); err != nil {
		return nil, err
	}
	modes := make([]vk.PresentMode, count)
	if err := vkCall(vk.GetPhysicalDeviceSurfacePresentModes(p.VKPhysicalDevice, surface, &count, modes), "get surface present modes"); err != nil {
		return nil, err
	}
	return modes, nil
}

func (p *PhysicalDevice) GetSurfaceFormats(surface vk.Surface) ([]vk.SurfaceFormat, error) {
	var count uint32
	if err := vkCall(vk.GetPhysicalDeviceSurfaceFormats(p.VKPhysicalDevice, surface, &count, nil), "get surface formats"); err != nil {
		return nil, err
	}
	formats := make([]vk.SurfaceFormat, count)
	if err := vkCall(vk.GetPhysicalDeviceSurfaceFormats(p.VKPhysicalDevice, surface, &count, formats), "get surface formats"); err != nil {
		return nil, err
	}
	for i := range formats {
		formats[i].Deref()
	}
	return formats, nil
}

func (p *PhysicalDevice) GetSurfaceCapabilities(surface vk.Surface) (vk.SurfaceCapabilities, error) {
	var caps vk.SurfaceCapabilities
	if err := vkCall(vk.GetPhysicalDeviceSurfaceCapabilities(p.VKPhysicalDevice, surface, &caps), "get surface capabilities"); err != nil {
		return caps, err
	}
	caps.Deref()
	caps.CurrentExtent.Deref()
	caps.MinImageExtent.Deref()
	caps.MaxImageExtent.Deref()
	return caps, nil
}

// QuerySurfaceSupport gathers capabilities, formats and present modes for a surface
func (p *PhysicalDevice) QuerySurfaceSupport(surface vk.Surface) (*SurfaceSupport, error) {
	var ret SurfaceSupport
	var err error
	if ret.Capabilities, err = p.GetSurfaceCapabilities(surface); err != nil {
		return nil, err
	}
	if ret.Formats, err = p.GetSurfaceFormats(surface); err != nil {
		return nil, err
	}
	if ret.PresentModes, err = p.GetSurfacePresentModes(surface); err != nil {
		return nil, err
	}
	return &ret, nil
}

func (p *PhysicalDevice) QueueFamilies() []*QueueFamily {
	var count uint32
	vk.GetPhysicalDeviceQueueFamilyProperties(p.VKPhysicalDevice, &count, nil)
	if count == 0 {
		return nil
	}

	props := make([]vk.QueueFamilyProperties, count)
	vk.GetPhysicalDeviceQueueFamilyProperties(p.VKPhysicalDevice, &count, props)

	ret := make([]*QueueFamily, count)
	for i, prop := range props {
		ret[i] = &QueueFamily{Index: i, PhysicalDevice: p, VKQueueFamilyProperties: prop}
		ret[i].VKQueueFamilyProperties.Deref()
	}
	return ret
}

// FindQueueFamilies selects the graphics, present and transfer families for a surface
func (p *PhysicalDevice) FindQueueFamilies(surface vk.Surface) (QueueFamilyIndices, bool) {
	families := p.QueueFamilies()
	flags := make([]vk.QueueFlags, len(families))
	for i, f := range families {
		flags[i] = f.VKQueueFamilyProperties.QueueFlags
	}
	return selectQueueFamilies(flags, func(i int) bool {
		return families[i].SupportsPresent(surface)
	})
}

func (p *PhysicalDevice) VKPhysicalDeviceFeatures() vk.PhysicalDeviceFeatures {
	var features vk.PhysicalDeviceFeatures
	vk.GetPhysicalDeviceFeatures(p.VKPhysicalDevice, &features)
	features.Deref()
	return features
}

func (p *PhysicalDevice) VKPhysicalDeviceMemoryProperties() vk.PhysicalDeviceMemoryProperties {
	var memoryProperties vk.PhysicalDeviceMemoryProperties
	vk.GetPhysicalDeviceMemoryProperties(p.VKPhysicalDevice, &memoryProperties)
	memoryProperties.Deref()
	return memoryProperties
}

// MemoryTypes returns the memory types the device exposes
func (p *PhysicalDevice) MemoryTypes() []vk.MemoryType {
	mp := p.VKPhysicalDeviceMemoryProperties()
	ret := make([]vk.MemoryType, 0, mp.MemoryTypeCount)
	for i := uint32(0); i < mp.MemoryTypeCount; i++ {
		mt := mp.MemoryTypes[i]
		mt.Deref()
		ret = append(ret, mt)
	}
	return ret
}

// FindMemoryType returns the index of the first memory type allowed by typeFilter
// which has all of the requested properties
func (p *PhysicalDevice) FindMemoryType(typeFilter uint32, properties vk.MemoryPropertyFlags) (uint32, error) {
	return findMemoryType(p.MemoryTypes(), typeFilter, properties)
}

func findMemoryType(types []vk.MemoryType, typeFilter uint32, properties vk.MemoryPropertyFlags) (uint32, error) {
	for i, mt := range types {
		if typeFilter&(1<<uint(i)) != 0 && mt.PropertyFlags&properties == properties {
			return uint32(i), nil
		}
	}
	return 0, errors.Wrapf(ErrNoMemoryType, "filter %#x properties %#x", typeFilter, properties)
}

// FormatProperties queries the tiling features of a format
func (p *PhysicalDevice) FormatProperties(format vk.Format) vk.FormatProperties {
	var props vk.FormatProperties
	vk.GetPhysicalDeviceFormatProperties(p.VKPhysicalDevice, format, &props)
	props.Deref()
	return props
}

// FindSupportedFormat returns the first candidate supporting features with the given tiling
func (p *PhysicalDevice) FindSupportedFormat(candidates []vk.Format, tiling vk.ImageTiling, features vk.FormatFeatureFlags) (vk.Format, error) {
	return findSupportedFormat(candidates, tiling, features, p.FormatProperties)
}

func findSupportedFormat(candidates []vk.Format, tiling vk.ImageTiling, features vk.FormatFeatureFlags, query func(vk.Format) vk.FormatProperties) (vk.Format, error) {
	for _, format := range candidates {
		props := query(format)
		if tiling == vk.ImageTilingLinear && props.LinearTilingFeatures&features == features {
			return format, nil
		}
		if tiling == vk.ImageTilingOptimal && props.OptimalTilingFeatures&features == features {
			return format, nil
		}
	}
	return vk.FormatUndefined, errors.New("failed to find supported format")
}

var depthFormatCandidates = []vk.Format{
	vk.FormatD32Sfloat,
	vk.FormatD32SfloatS8Uint,
	vk.FormatD24UnormS8Uint,
}

// FindDepthFormat picks the first depth format usable as an optimally tiled depth attachment
func (p *PhysicalDevice) FindDepthFormat() (vk.Format, error) {
	return findDepthFormat(p.FormatProperties)
}

func findDepthFormat(query func(vk.Format) vk.FormatProperties) (vk.Format, error) {
	format, err := findSupportedFormat(depthFormatCandidates, vk.ImageTilingOptimal,
		vk.FormatFeatureFlags(vk.FormatFeatureDepthStencilAttachmentBit), query)
	if err != nil {
		return vk.FormatUndefined, ErrNoDepthFormat
	}
	return format, nil
}

func hasStencilComponent(format vk.Format) bool {
	return format == vk.FormatD32SfloatS8Uint || format == vk.FormatD24UnormS8Uint
}

// SupportsLinearBlit reports whether format can be the source of a linearly filtered blit
func (p *PhysicalDevice) SupportsLinearBlit(format vk.Format) bool {
	return supportsLinearBlit(p.FormatProperties(format))
}

func supportsLinearBlit(props vk.FormatProperties) bool {
	bit := vk.FormatFeatureFlags(vk.FormatFeatureSampledImageFilterLinearBit)
	return props.OptimalTilingFeatures&bit == bit
}

// MaxUsableSampleCount returns the highest sample count supported for both
// color and depth framebuffer attachments
func (p *PhysicalDevice) MaxUsableSampleCount() vk.SampleCountFlagBits {
	limits := p.VKPhysicalDeviceProperties.Limits
	return maxUsableSampleCount(limits.FramebufferColorSampleCounts & limits.FramebufferDepthSampleCounts)
}

func maxUsableSampleCount(counts vk.SampleCountFlags) vk.SampleCountFlagBits {
	for _, c := range []vk.SampleCountFlagBits{
		vk.SampleCount64Bit, vk.SampleCount32Bit, vk.SampleCount16Bit,
		vk.SampleCount8Bit, vk.SampleCount4Bit, vk.SampleCount2Bit,
	} {
		if counts&vk.SampleCountFlags(c) != 0 {
			return c
		}
	}
	return vk.SampleCount1Bit
}

// SampleCountFromInt converts a plain sample count such as 4 into its flag bit,
// clamped to what the device supports
func (p *PhysicalDevice) SampleCountFromInt(n int) vk.SampleCountFlagBits {
	return clampSampleCount(n, p.MaxUsableSampleCount())
}

func clampSampleCount(n int, max vk.SampleCountFlagBits) vk.SampleCountFlagBits {
	ret := vk.SampleCount1Bit
	for c := vk.SampleCount1Bit; c <= max && int(c) <= n; c <<= 1 {
		ret = c
	}
	return ret
}

// SupportedExtensions returns the names of the device extensions available
func (p *PhysicalDevice) SupportedExtensions() ([]string, error) {
	var count uint32
	if err := vkCall(vk.EnumerateDeviceExtensionProperties(p.VKPhysicalDevice, "", &count, nil), "enumerate device extensions"); err != nil {
		return nil, err
	}
	ext := make([]vk.ExtensionProperties, count)
	if err := vkCall(vk.EnumerateDeviceExtensionProperties(p.VKPhysicalDevice, "", &count, ext), "enumerate device extensions"); err != nil {
		return nil, err
	}
	names := make([]string, 0, count)
	for _, e := range ext {
		e.Deref()
		names = append(names, vk.ToString(e.ExtensionName[:]))
	}
	return names, nil
}

// CreateDeviceOptions describe the queues, extensions and features of a logical device
type CreateDeviceOptions struct {
	QueueFamilies     []int
	EnabledExtensions []string
	EnabledFeatures   vk.PhysicalDeviceFeatures
}

// CreateLogicalDevice creates a logical device with a single queue in each of the requested families
func (p *PhysicalDevice) CreateLogicalDevice(options CreateDeviceOptions) (*Device, error) {
	queueCreateInfos := make([]vk.DeviceQueueCreateInfo, len(options.QueueFamilies))
	for j, index := range options.QueueFamilies {
		queueCreateInfos[j] = vk.DeviceQueueCreateInfo{
			SType:            vk.StructureTypeDeviceQueueCreateInfo,
			QueueFamilyIndex: uint32(index),
			QueueCount:       1,
			PQueuePriorities: []float32{1.0},
		}
	}

	deviceCreateInfo := vk.DeviceCreateInfo{
		SType:                   vk.StructureTypeDeviceCreateInfo,
		QueueCreateInfoCount:    uint32(len(queueCreateInfos)),
		PQueueCreateInfos:       queueCreateInfos,
		PEnabledFeatures:        []vk.PhysicalDeviceFeatures{options.EnabledFeatures},
		EnabledExtensionCount:   uint32(len(options.EnabledExtensions)),
		PpEnabledExtensionNames: safeStrings(options.EnabledExtensions),
	}

	var ldevice vk.Device
	if err := vkCall(vk.CreateDevice(p.VKPhysicalDevice, &deviceCreateInfo, nil, &ldevice), "create logical device"); err != nil {
		return nil, err
	}

	return &Device{PhysicalDevice: p, VKDevice: ldevice}, nil
}
