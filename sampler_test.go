package vkrender

import (
	"testing"

	"github.com/stretchr/testify/assert"
	vk "github.com/vulkan-go/vulkan"
)

func TestSamplerCreateInfo(t *testing.T) {
	opts := DefaultSamplerOptions(9)

	info := samplerCreateInfo(opts, true, 16)
	assert.Equal(t, vk.FilterLinear, info.MagFilter)
	assert.Equal(t, vk.FilterLinear, info.MinFilter)
	assert.Equal(t, vk.SamplerAddressModeRepeat, info.AddressModeU)
	assert.Equal(t, vk.SamplerAddressModeRepeat, info.AddressModeW)
	assert.Equal(t, vk.SamplerMipmapModeLinear, info.MipmapMode)
	assert.Equal(t, vk.Bool32(vk.True), info.AnisotropyEnable)
	assert.Equal(t, float32(16), info.MaxAnisotropy)
	assert.Equal(t, float32(0), info.MinLod)
	assert.Equal(t, float32(9), info.MaxLod)

	// the device did not enable anisotropy
	info = samplerCreateInfo(opts, false, 16)
	assert.Equal(t, vk.Bool32(vk.False), info.AnisotropyEnable)
	assert.Equal(t, float32(1), info.MaxAnisotropy)

	opts.Anisotropy = false
	opts.Filter = vk.FilterNearest
	opts.AddressMode = vk.SamplerAddressModeClampToEdge
	info = samplerCreateInfo(opts, true, 16)
	assert.Equal(t, vk.Bool32(vk.False), info.AnisotropyEnable)
	assert.Equal(t, vk.FilterNearest, info.MagFilter)
	assert.Equal(t, vk.SamplerAddressModeClampToEdge, info.AddressModeV)
}
