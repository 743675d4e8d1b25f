package vkrender

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestCheckLayers(t *testing.T) {
	available := []string{"VK_LAYER_LUNARG_api_dump", ValidationLayer}

	assert.NoError(t, checkLayers(nil, available))
	assert.NoError(t, checkLayers([]string{ValidationLayer}, available))

	err := checkLayers([]string{ValidationLayer}, nil)
	assert.True(t, errors.Is(err, ErrValidationLayersUnavailable))
	assert.Contains(t, err.Error(), ValidationLayer)
}

func TestInstanceLayersAndExtensions(t *testing.T) {
	opts := InstanceOptions{Extensions: []string{"VK_KHR_surface", "VK_KHR_xcb_surface", "VK_KHR_surface"}}
	layers, exts := opts.instanceLayersAndExtensions()
	assert.Empty(t, layers)
	assert.Equal(t, []string{"VK_KHR_surface", "VK_KHR_xcb_surface"}, exts)

	opts.Validation = true
	layers, exts = opts.instanceLayersAndExtensions()
	assert.Equal(t, []string{ValidationLayer}, layers)
	assert.Equal(t, []string{"VK_KHR_surface", "VK_KHR_xcb_surface", DebugReportExtension}, exts)
}
