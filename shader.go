package vkrender

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

// SPIRVExtension is the only shader file extension accepted
const SPIRVExtension = ".spv"

const spirvMagic = 0x07230203

// ShaderProgram is a shader module bound to the pipeline stage it runs in
type ShaderProgram struct {
	Device         *Device
	Path           string
	Stage          vk.ShaderStageFlagBits
	EntryPoint     string
	VKShaderModule vk.ShaderModule
}

func checkShaderPath(path string) error {
	if !strings.EqualFold(filepath.Ext(path), SPIRVExtension) {
		return errors.Wrapf(ErrUnsupportedShaderFormat, "%q", path)
	}
	return nil
}

// LoadShaderProgram creates a shader module from a SPIR-V binary. The entry
// point defaults to "main".
func LoadShaderProgram(device *Device, path string, stage vk.ShaderStageFlagBits, entryPoint string) (*ShaderProgram, error) {
	if err := checkShaderPath(path); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read shader")
	}
	code, err := spirvWords(data)
	if err != nil {
		return nil, errors.Wrapf(err, "%q", path)
	}
	if entryPoint == "" {
		entryPoint = "main"
	}

	module, err := device.createShaderModule(code)
	if err != nil {
		return nil, errors.Wrap(err, path)
	}
	return &ShaderProgram{
		Device:         device,
		Path:           path,
		Stage:          stage,
		EntryPoint:     entryPoint,
		VKShaderModule: module,
	}, nil
}

// spirvWords decodes a SPIR-V binary into words. The magic number in the first
// word gives the byte order the binary was written in.
func spirvWords(data []byte) ([]uint32, error) {
	if len(data) == 0 || len(data)%4 != 0 {
		return nil, errors.Wrapf(ErrUnsupportedShaderFormat, "%d bytes is not a whole number of SPIR-V words", len(data))
	}
	var order binary.ByteOrder
	switch {
	case binary.LittleEndian.Uint32(data) == spirvMagic:
		order = binary.LittleEndian
	case binary.BigEndian.Uint32(data) == spirvMagic:
		order = binary.BigEndian
	default:
		return nil, errors.Wrap(ErrUnsupportedShaderFormat, "missing SPIR-V magic number")
	}

	words := make([]uint32, len(data)/4)
	for i := range words {
		words[i] = order.Uint32(data[i*4:])
	}
	return words, nil
}

func (d *Device) createShaderModule(code []uint32) (vk.ShaderModule, error) {
	var module vk.ShaderModule
	err := vkCall(vk.CreateShaderModule(d.VKDevice, &vk.ShaderModuleCreateInfo{
		SType:    vk.StructureTypeShaderModuleCreateInfo,
		CodeSize: uint(len(code) * 4),
		PCode:    code,
	}, nil, &module), "create shader module")
	return module, err
}

// StageCreateInfo describes the program as one stage of a pipeline
func (s *ShaderProgram) StageCreateInfo() vk.PipelineShaderStageCreateInfo {
	return vk.PipelineShaderStageCreateInfo{
		SType:  vk.StructureTypePipelineShaderStageCreateInfo,
		Stage:  s.Stage,
		Module: s.VKShaderModule,
		PName:  safeString(s.EntryPoint),
	}
}

func (s *ShaderProgram) Destroy() {
	if s.VKShaderModule != vk.NullShaderModule {
		vk.DestroyShaderModule(s.Device.VKDevice, s.VKShaderModule, nil)
		s.VKShaderModule = vk.NullShaderModule
	}
}
