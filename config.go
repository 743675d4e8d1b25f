package vkrender

import (
	"io"
	"math/bits"
	"os"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
	"golang.org/x/exp/slog"
)

// Config is the renderer configuration, loadable from TOML
type Config struct {
	App    AppConfig    `toml:"app"`
	Window WindowConfig `toml:"window"`
	Vulkan VulkanConfig `toml:"vulkan"`
	Assets AssetsConfig `toml:"assets"`

	Logger *slog.Logger `toml:"-"`
}

type AppConfig struct {
	Name   string `toml:"name"`
	Engine string `toml:"engine"`
}

type WindowConfig struct {
	Width  int    `toml:"width"`
	Height int    `toml:"height"`
	Title  string `toml:"title"`
}

type VulkanConfig struct {
	Validation            bool     `toml:"validation"`
	APIVersion            string   `toml:"api_version"`
	InstanceExtensions    []string `toml:"instance_extensions"`
	DeviceExtensions      []string `toml:"device_extensions"`
	MSAASamples           int      `toml:"msaa_samples"`
	DescriptorSetsPerPool int      `toml:"descriptor_sets_per_pool"`
	// PresentModePreference lists present modes by name, tried in order
	PresentModePreference []string `toml:"present_mode_preference"`
}

type AssetsConfig struct {
	Texture        string `toml:"texture"`
	VertexShader   string `toml:"vertex_shader"`
	FragmentShader string `toml:"fragment_shader"`
}

func DefaultConfig() Config {
	return Config{
		App: AppConfig{
			Name:   "vkrender",
			Engine: "vkrender",
		},
		Window: WindowConfig{
			Width:  800,
			Height: 600,
			Title:  "vkrender",
		},
		Vulkan: VulkanConfig{
			APIVersion:            "1.3.0",
			MSAASamples:           1,
			DescriptorSetsPerPool: MaxFramesInFlight,
			PresentModePreference: []string{"mailbox", "fifo"},
		},
		Assets: AssetsConfig{
			Texture:        "textures/texture.png",
			VertexShader:   "shaders/texture.vert.spv",
			FragmentShader: "shaders/texture.frag.spv",
		},
	}
}

// ReadConfig decodes TOML from r over the defaults
func ReadConfig(r io.Reader) (Config, error) {
	cfg := DefaultConfig()
	if err := toml.NewDecoder(r).Decode(&cfg); err != nil {
		return Config{}, errors.Wrap(err, "decode config")
	}
	return cfg, cfg.Validate()
}

// LoadConfig reads the TOML file at path, keys it leaves out keep their defaults
func LoadConfig(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, errors.Wrap(err, "open config")
	}
	defer f.Close()

	cfg, err := ReadConfig(f)
	if err != nil {
		return Config{}, errors.Wrap(err, path)
	}
	return cfg, nil
}

// presentModeNames are the modes the swapchain may run in, mailbox when the
// surface offers it and FIFO otherwise
var presentModeNames = map[string]vk.PresentMode{
	"mailbox": vk.PresentModeMailbox,
	"fifo":    vk.PresentModeFifo,
}

// PresentModes converts the preference names, unknown names are an error
func (c VulkanConfig) PresentModes() ([]vk.PresentMode, error) {
	ret := make([]vk.PresentMode, 0, len(c.PresentModePreference))
	for _, name := range c.PresentModePreference {
		mode, ok := presentModeNames[strings.ToLower(name)]
		if !ok {
			return nil, errors.Errorf("unknown present mode %q", name)
		}
		ret = append(ret, mode)
	}
	return ret, nil
}

// ParseVersion parses "major[.minor[.patch]]"
func ParseVersion(s string) (Version, error) {
	var v Version
	parts := strings.Split(strings.TrimSpace(s), ".")
	if len(parts) > 3 {
		return v, errors.Errorf("invalid version %q", s)
	}
	fields := []*int{&v.Major, &v.Minor, &v.Patch}
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return Version{}, errors.Errorf("invalid version %q", s)
		}
		*fields[i] = n
	}
	return v, nil
}

// Validate rejects configurations the renderer can't start with
func (c Config) Validate() error {
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return errors.Errorf("window size %dx%d must be positive", c.Window.Width, c.Window.Height)
	}
	if n := c.Vulkan.MSAASamples; n < 1 || n > 64 || bits.OnesCount(uint(n)) != 1 {
		return errors.Errorf("msaa_samples %d must be a power of two between 1 and 64", n)
	}
	if c.Vulkan.DescriptorSetsPerPool < 1 {
		return errors.Errorf("descriptor_sets_per_pool %d must be at least 1", c.Vulkan.DescriptorSetsPerPool)
	}
	if _, err := ParseVersion(c.Vulkan.APIVersion); err != nil {
		return errors.Wrap(err, "api_version")
	}
	if _, err := c.Vulkan.PresentModes(); err != nil {
		return err
	}
	return nil
}
