package vkrender

import (
	"context"
	"unsafe"

	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
	"golang.org/x/exp/slog"
)

// ValidationLayer is the Khronos validation layer enabled when validation is requested
const ValidationLayer = "VK_LAYER_KHRONOS_validation"

// DebugReportExtension is the instance extension providing the debug report callback
const DebugReportExtension = "VK_EXT_debug_report"

// Version is used to specify versions of components
type Version struct {
	Major int
	Minor int
	Patch int
}

// VKVersion returns a Vulkan compatible version representation
func (v Version) VKVersion() uint32 {
	return vk.MakeVersion(v.Major, v.Minor, v.Patch)
}

// InstanceOptions describes the application to Vulkan and the
// layers and extensions it expects.
type InstanceOptions struct {
	// Name the name of the application
	Name string
	// EngineName the name of the engine associated with the application
	EngineName string
	// Version the version of the application
	Version Version
	// APIVersion the expected minimum version of the Vulkan API, defaults to 1.3.0
	APIVersion Version

	// Validation enables the Khronos validation layer and a debug report callback
	Validation bool

	// Extensions are the instance extensions to enable, typically the ones the window requires
	Extensions []string

	Logger *slog.Logger
}

// Instance is an instance of the Vulkan subsystem
type Instance struct {
	//VKInstance is the native Vulkan instance object
	VKInstance vk.Instance

	EnabledLayers     []string
	EnabledExtensions []string

	debugCallback vk.DebugReportCallback
	hasDebug      bool
	logger        *slog.Logger
}

// SupportedLayers returns a list of supported layers for use by Vulkan
func SupportedLayers() ([]string, error) {
	var count uint32
	if err := vkCall(vk.EnumerateInstanceLayerProperties(&count, nil), "enumerate instance layers"); err != nil {
		return nil, err
	}
	props := make([]vk.LayerProperties, count)
	if err := vkCall(vk.EnumerateInstanceLayerProperties(&count, props), "enumerate instance layers"); err != nil {
		return nil, err
	}
	names := make([]string, 0, count)
	for _, layer := range props {
		layer.Deref()
		names = append(names, vk.ToString(layer.LayerName[:]))
	}
	return names, nil
}

// SupportedExtensions returns a list of supported instance extensions
func SupportedExtensions() ([]string, error) {
	var count uint32
	if err := vkCall(vk.EnumerateInstanceExtensionProperties("", &count, nil), "enumerate instance extensions"); err != nil {
		return nil, err
	}
	props := make([]vk.ExtensionProperties, count)
	if err := vkCall(vk.EnumerateInstanceExtensionProperties("", &count, props), "enumerate instance extensions"); err != nil {
		return nil, err
	}
	names := make([]string, 0, count)
	for _, ext := range props {
		ext.Deref()
		names = append(names, vk.ToString(ext.ExtensionName[:]))
	}
	return names, nil
}

// checkLayers verifies every requested layer is available
func checkLayers(requested, available []string) error {
	for _, r := range requested {
		found := false
		for _, a := range available {
			if r == a {
				found = true
				break
			}
		}
		if !found {
			return errors.Wrapf(ErrValidationLayersUnavailable, "layer %q", r)
		}
	}
	return nil
}

// instanceLayersAndExtensions works out the layers and extensions for the options
func (o *InstanceOptions) instanceLayersAndExtensions() (layers, extensions []string) {
	extensions = appendUnique(nil, o.Extensions...)
	if o.Validation {
		layers = []string{ValidationLayer}
		extensions = appendUnique(extensions, DebugReportExtension)
	}
	return layers, extensions
}

// CreateInstance creates the Vulkan Instance, vk.Init must have been called
// with a valid GetInstanceProcAddr beforehand.
func CreateInstance(opts InstanceOptions) (*Instance, error) {
	logger := loggerOrDefault(opts.Logger)

	layers, extensions := opts.instanceLayersAndExtensions()
	if len(layers) > 0 {
		available, err := SupportedLayers()
		if err != nil {
			return nil, err
		}
		if err := checkLayers(layers, available); err != nil {
			return nil, err
		}
	}

	apiVersion := opts.APIVersion
	if apiVersion.Major < 1 {
		apiVersion = Version{1, 3, 0}
	}

	appInfo := vk.ApplicationInfo{
		SType:              vk.StructureTypeApplicationInfo,
		ApiVersion:         apiVersion.VKVersion(),
		ApplicationVersion: opts.Version.VKVersion(),
		PApplicationName:   safeString(opts.Name),
		PEngineName:        safeString(opts.EngineName),
	}

	createInfo := vk.InstanceCreateInfo{
		SType:                   vk.StructureTypeInstanceCreateInfo,
		PApplicationInfo:        &appInfo,
		EnabledExtensionCount:   uint32(len(extensions)),
		PpEnabledExtensionNames: safeStrings(extensions),
		EnabledLayerCount:       uint32(len(layers)),
		PpEnabledLayerNames:     safeStrings(layers),
	}

	instance := &Instance{logger: logger, EnabledLayers: layers, EnabledExtensions: extensions}

	if err := vkCall(vk.CreateInstance(&createInfo, nil, &instance.VKInstance), "create instance"); err != nil {
		return nil, err
	}
	if err := vk.InitInstance(instance.VKInstance); err != nil {
		vk.DestroyInstance(instance.VKInstance, nil)
		return nil, errors.Wrap(err, "init instance")
	}

	for _, e := range extensions {
		logger.Info("enabled instance extension", slog.String("name", e))
	}
	for _, l := range layers {
		logger.Info("enabled instance layer", slog.String("name", l))
	}

	if opts.Validation {
		if err := instance.setDebugCallback(instance.debugReport); err != nil {
			instance.Destroy()
			return nil, err
		}
	}

	return instance, nil
}

// PhysicalDevices returns a list of physical devices known to Vulkan
func (i *Instance) PhysicalDevices() ([]*PhysicalDevice, error) {
	var deviceCount uint32
	if err := vkCall(vk.EnumeratePhysicalDevices(i.VKInstance, &deviceCount, nil), "enumerate physical devices"); err != nil {
		return nil, err
	}
	if deviceCount == 0 {
		return nil, nil
	}

	devices := make([]vk.PhysicalDevice, deviceCount)
	if err := vkCall(vk.EnumeratePhysicalDevices(i.VKInstance, &deviceCount, devices), "enumerate physical devices"); err != nil {
		return nil, err
	}

	ret := make([]*PhysicalDevice, deviceCount)
	for n, device := range devices {
		ret[n] = &PhysicalDevice{VKPhysicalDevice: device}
		vk.GetPhysicalDeviceProperties(device, &ret[n].VKPhysicalDeviceProperties)
		ret[n].VKPhysicalDeviceProperties.Deref()
		ret[n].VKPhysicalDeviceProperties.Limits.Deref()
		ret[n].DeviceName = vk.ToString(ret[n].VKPhysicalDeviceProperties.DeviceName[:])
	}
	return ret, nil
}

func (i *Instance) setDebugCallback(callback vk.DebugReportCallbackFunc) error {
	err := vkCall(vk.CreateDebugReportCallback(i.VKInstance, &vk.DebugReportCallbackCreateInfo{
		SType: vk.StructureTypeDebugReportCallbackCreateInfo,
		Flags: vk.DebugReportFlags(vk.DebugReportErrorBit | vk.DebugReportWarningBit |
			vk.DebugReportPerformanceWarningBit | vk.DebugReportInformationBit),
		PfnCallback: callback,
	}, nil, &i.debugCallback), "create debug report callback")
	if err != nil {
		return err
	}
	i.hasDebug = true
	return nil
}

func (i *Instance) debugReport(flags vk.DebugReportFlags, objectType vk.DebugReportObjectType,
	object uint64, location uint, messageCode int32, pLayerPrefix string,
	pMessage string, pUserData unsafe.Pointer) vk.Bool32 {

	i.logger.Log(context.Background(), debugReportLevel(flags), pMessage,
		slog.String("layer", pLayerPrefix),
		slog.Int("code", int(messageCode)))
	return vk.Bool32(vk.False)
}

// Destroy tears down the debug callback, if any, and the instance
func (i *Instance) Destroy() {
	if i.hasDebug {
		vk.DestroyDebugReportCallback(i.VKInstance, i.debugCallback, nil)
		i.hasDebug = false
	}
	vk.DestroyInstance(i.VKInstance, nil)
}
