package vkrender

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	vk "github.com/vulkan-go/vulkan"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, MaxFramesInFlight, cfg.Vulkan.DescriptorSetsPerPool)
}

func TestReadConfig(t *testing.T) {
	const doc = `
[window]
width = 1280
title = "demo"

[vulkan]
validation = true
msaa_samples = 4
present_mode_preference = ["FIFO"]
device_extensions = ["VK_KHR_maintenance1"]

[assets]
texture = "textures/stone.png"
`
	cfg, err := ReadConfig(strings.NewReader(doc))
	require.NoError(t, err)

	assert.Equal(t, 1280, cfg.Window.Width)
	assert.Equal(t, 600, cfg.Window.Height, "keys left out keep their defaults")
	assert.Equal(t, "demo", cfg.Window.Title)
	assert.True(t, cfg.Vulkan.Validation)
	assert.Equal(t, 4, cfg.Vulkan.MSAASamples)
	assert.Equal(t, []string{"VK_KHR_maintenance1"}, cfg.Vulkan.DeviceExtensions)
	assert.Equal(t, "textures/stone.png", cfg.Assets.Texture)
	assert.Equal(t, "shaders/texture.vert.spv", cfg.Assets.VertexShader)

	modes, err := cfg.Vulkan.PresentModes()
	require.NoError(t, err)
	assert.Equal(t, []vk.PresentMode{vk.PresentModeFifo}, modes)
}

func TestReadConfigErrors(t *testing.T) {
	_, err := ReadConfig(strings.NewReader("[window\nwidth = 1"))
	assert.Error(t, err)

	_, err = ReadConfig(strings.NewReader("[vulkan]\nmsaa_samples = 3\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "msaa_samples")
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[app]\nname = \"viewer\"\n"), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "viewer", cfg.App.Name)
	assert.Equal(t, "vkrender", cfg.App.Engine)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestConfigValidate(t *testing.T) {
	cases := []struct {
		name   string
		modify func(*Config)
		want   string
	}{
		{"zero width", func(c *Config) { c.Window.Width = 0 }, "window size"},
		{"negative height", func(c *Config) { c.Window.Height = -1 }, "window size"},
		{"zero samples", func(c *Config) { c.Vulkan.MSAASamples = 0 }, "msaa_samples"},
		{"too many samples", func(c *Config) { c.Vulkan.MSAASamples = 128 }, "msaa_samples"},
		{"no sets", func(c *Config) { c.Vulkan.DescriptorSetsPerPool = 0 }, "descriptor_sets_per_pool"},
		{"bad version", func(c *Config) { c.Vulkan.APIVersion = "one" }, "api_version"},
		{"bad present mode", func(c *Config) { c.Vulkan.PresentModePreference = []string{"vsync"} }, "vsync"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.modify(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}

	cfg := DefaultConfig()
	cfg.Vulkan.MSAASamples = 64
	assert.NoError(t, cfg.Validate())
}

func TestParseVersion(t *testing.T) {
	v, err := ParseVersion("1.3.0")
	require.NoError(t, err)
	assert.Equal(t, Version{Major: 1, Minor: 3, Patch: 0}, v)

	v, err = ParseVersion(" 1.2 ")
	require.NoError(t, err)
	assert.Equal(t, Version{Major: 1, Minor: 2}, v)

	v, err = ParseVersion("1")
	require.NoError(t, err)
	assert.Equal(t, Version{Major: 1}, v)

	for _, bad := range []string{"", "1.2.3.4", "1.x", "-1.0", "1..2"} {
		_, err := ParseVersion(bad)
		assert.Error(t, err, bad)
	}
}

func TestPresentModes(t *testing.T) {
	c := VulkanConfig{PresentModePreference: []string{"FIFO", "Mailbox"}}
	modes, err := c.PresentModes()
	require.NoError(t, err)
	assert.Equal(t, []vk.PresentMode{vk.PresentModeFifo, vk.PresentModeMailbox}, modes)

	for _, name := range []string{"immediate", "fifo_relaxed"} {
		_, err = VulkanConfig{PresentModePreference: []string{name}}.PresentModes()
		assert.ErrorContains(t, err, name)
	}

	modes, err = VulkanConfig{}.PresentModes()
	require.NoError(t, err)
	assert.Empty(t, modes)
}
