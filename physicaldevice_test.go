package vkrender

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	vk "github.com/vulkan-go/vulkan"
)

func TestFindMemoryType(t *testing.T) {
	hostVisible := vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit)
	hostCoherent := vk.MemoryPropertyFlags(vk.MemoryPropertyHostCoherentBit)
	deviceLocal := vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit)

	types := []vk.MemoryType{
		{PropertyFlags: deviceLocal},
		{PropertyFlags: hostVisible},
		{PropertyFlags: hostVisible | hostCoherent},
	}

	idx, err := findMemoryType(types, 0b111, deviceLocal)
	require.NoError(t, err)
	assert.Equal(t, uint32(0), idx)

	idx, err = findMemoryType(types, 0b111, hostVisible|hostCoherent)
	require.NoError(t, err)
	assert.Equal(t, uint32(2), idx)

	// the filter excludes type 0
	idx, err = findMemoryType(types, 0b110, hostVisible)
	require.NoError(t, err)
	assert.Equal(t, uint32(1), idx)

	_, err = findMemoryType(types, 0b001, hostVisible)
	assert.True(t, errors.Is(err, ErrNoMemoryType))

	_, err = findMemoryType(nil, 0xffffffff, 0)
	assert.True(t, errors.Is(err, ErrNoMemoryType))
}

func formatQuery(supported map[vk.Format]vk.FormatProperties) func(vk.Format) vk.FormatProperties {
	return func(f vk.Format) vk.FormatProperties {
		return supported[f]
	}
}

func TestFindDepthFormat(t *testing.T) {
	depth := vk.FormatFeatureFlags(vk.FormatFeatureDepthStencilAttachmentBit)

	format, err := findDepthFormat(formatQuery(map[vk.Format]vk.FormatProperties{
		vk.FormatD32Sfloat:      {OptimalTilingFeatures: depth},
		vk.FormatD24UnormS8Uint: {OptimalTilingFeatures: depth},
	}))
	require.NoError(t, err)
	assert.Equal(t, vk.FormatD32Sfloat, format)

	format, err = findDepthFormat(formatQuery(map[vk.Format]vk.FormatProperties{
		vk.FormatD32Sfloat:      {LinearTilingFeatures: depth},
		vk.FormatD24UnormS8Uint: {OptimalTilingFeatures: depth},
	}))
	require.NoError(t, err)
	assert.Equal(t, vk.FormatD24UnormS8Uint, format)
	assert.True(t, hasStencilComponent(format))

	_, err = findDepthFormat(formatQuery(nil))
	assert.Equal(t, ErrNoDepthFormat, err)
}

func TestFindSupportedFormatLinear(t *testing.T) {
	sampled := vk.FormatFeatureFlags(vk.FormatFeatureSampledImageBit)
	query := formatQuery(map[vk.Format]vk.FormatProperties{
		vk.FormatR8g8b8a8Srgb:  {OptimalTilingFeatures: sampled},
		vk.FormatR8g8b8a8Unorm: {LinearTilingFeatures: sampled},
	})

	format, err := findSupportedFormat([]vk.Format{vk.FormatR8g8b8a8Srgb, vk.FormatR8g8b8a8Unorm},
		vk.ImageTilingLinear, sampled, query)
	require.NoError(t, err)
	assert.Equal(t, vk.FormatR8g8b8a8Unorm, format)
}

func TestSupportsLinearBlit(t *testing.T) {
	linear := vk.FormatFeatureFlags(vk.FormatFeatureSampledImageFilterLinearBit)
	assert.True(t, supportsLinearBlit(vk.FormatProperties{OptimalTilingFeatures: linear}))
	assert.False(t, supportsLinearBlit(vk.FormatProperties{LinearTilingFeatures: linear}))
	assert.False(t, supportsLinearBlit(vk.FormatProperties{}))
}

func TestMaxUsableSampleCount(t *testing.T) {
	counts := vk.SampleCountFlags(vk.SampleCount1Bit | vk.SampleCount2Bit | vk.SampleCount4Bit | vk.SampleCount8Bit)
	assert.Equal(t, vk.SampleCount8Bit, maxUsableSampleCount(counts))
	assert.Equal(t, vk.SampleCount1Bit, maxUsableSampleCount(vk.SampleCountFlags(vk.SampleCount1Bit)))
	assert.Equal(t, vk.SampleCount1Bit, maxUsableSampleCount(0))
}

func TestClampSampleCount(t *testing.T) {
	assert.Equal(t, vk.SampleCount4Bit, clampSampleCount(4, vk.SampleCount8Bit))
	assert.Equal(t, vk.SampleCount8Bit, clampSampleCount(16, vk.SampleCount8Bit))
	assert.Equal(t, vk.SampleCount4Bit, clampSampleCount(6, vk.SampleCount8Bit))
	assert.Equal(t, vk.SampleCount1Bit, clampSampleCount(0, vk.SampleCount8Bit))
	assert.Equal(t, vk.SampleCount1Bit, clampSampleCount(4, vk.SampleCount1Bit))
}

func TestSurfaceSupportAdequate(t *testing.T) {
	s := SurfaceSupport{}
	assert.False(t, s.Adequate())
	s.Formats = []vk.SurfaceFormat{{Format: vk.FormatB8g8r8a8Srgb}}
	assert.False(t, s.Adequate())
	s.PresentModes = []vk.PresentMode{vk.PresentModeFifo}
	assert.True(t, s.Adequate())
}
