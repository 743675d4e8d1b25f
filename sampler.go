package vkrender

import (
	vk "github.com/vulkan-go/vulkan"
)

// SamplerOptions configures a texture sampler
type SamplerOptions struct {
	// Filter is used for both magnification and minification, defaults to linear
	Filter vk.Filter
	// AddressMode applies to U, V and W, defaults to repeat
	AddressMode vk.SamplerAddressMode
	// MipLevels bounds the sampled level of detail
	MipLevels uint32
	// Anisotropy requests anisotropic filtering, honored only when the device enables it
	Anisotropy bool
}

func DefaultSamplerOptions(mipLevels uint32) SamplerOptions {
	return SamplerOptions{
		Filter:      vk.FilterLinear,
		AddressMode: vk.SamplerAddressModeRepeat,
		MipLevels:   mipLevels,
		Anisotropy:  true,
	}
}

type Sampler struct {
	Device    *Device
	VKSampler vk.Sampler
}

// samplerCreateInfo fills in the sampler, maxAnisotropy is the device limit
// and is only used when anisotropy is available
func samplerCreateInfo(opts SamplerOptions, anisotropyAvailable bool, maxAnisotropy float32) vk.SamplerCreateInfo {
	anisotropy := opts.Anisotropy && anisotropyAvailable
	if !anisotropy {
		maxAnisotropy = 1.0
	}
	return vk.SamplerCreateInfo{
		SType:                   vk.StructureTypeSamplerCreateInfo,
		MagFilter:               opts.Filter,
		MinFilter:               opts.Filter,
		MipmapMode:              vk.SamplerMipmapModeLinear,
		AddressModeU:            opts.AddressMode,
		AddressModeV:            opts.AddressMode,
		AddressModeW:            opts.AddressMode,
		MipLodBias:              0.0,
		AnisotropyEnable:        boolToVK(anisotropy),
		MaxAnisotropy:           maxAnisotropy,
		CompareEnable:           vk.False,
		CompareOp:               vk.CompareOpAlways,
		MinLod:                  0.0,
		MaxLod:                  float32(opts.MipLevels),
		BorderColor:             vk.BorderColorIntOpaqueBlack,
		UnnormalizedCoordinates: vk.False,
	}
}

// CreateSampler creates a sampler, anisotropy is limited by the physical device
func (c *DeviceContext) CreateSampler(opts SamplerOptions) (*Sampler, error) {
	limits := c.physicalDevice.VKPhysicalDeviceProperties.Limits
	createInfo := samplerCreateInfo(opts, c.SamplerAnisotropy(), limits.MaxSamplerAnisotropy)

	var sampler vk.Sampler
	if err := vkCall(vk.CreateSampler(c.device.VKDevice, &createInfo, nil, &sampler), "create sampler"); err != nil {
		return nil, err
	}
	return &Sampler{Device: c.device, VKSampler: sampler}, nil
}

func (s *Sampler) Destroy() {
	if s.VKSampler != vk.NullSampler {
		vk.DestroySampler(s.Device.VKDevice, s.VKSampler, nil)
		s.VKSampler = vk.NullSampler
	}
}
