// Package glfwwindow provides the window and Vulkan surface for a
// vkrender.Renderer using GLFW.
package glfwwindow

import (
	"github.com/P-S-Y-S-U/vkrender"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

// Init initializes GLFW and loads the Vulkan entry points through it.
// It must be called on the main thread, locked with runtime.LockOSThread,
// before any window or renderer is created.
func Init() error {
	if err := glfw.Init(); err != nil {
		return errors.Wrap(err, "init glfw")
	}
	if !glfw.VulkanSupported() {
		glfw.Terminate()
		return errors.New("glfw: vulkan is not supported")
	}
	vk.SetGetInstanceProcAddr(glfw.GetVulkanGetInstanceProcAddress())
	if err := vk.Init(); err != nil {
		glfw.Terminate()
		return errors.Wrap(err, "init vulkan")
	}
	return nil
}

// Terminate shuts GLFW down, it is the last call of the program
func Terminate() {
	glfw.Terminate()
}

// Window is a resizable GLFW window without a client API
type Window struct {
	*glfw.Window

	resized bool
}

func New(width, height int, title string) (*Window, error) {
	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	glfw.WindowHint(glfw.Resizable, glfw.True)
	glw, err := glfw.CreateWindow(width, height, title, nil, nil)
	if err != nil {
		return nil, errors.Wrap(err, "create window")
	}
	w := &Window{Window: glw}
	glw.SetFramebufferSizeCallback(w.framebufferResized)
	return w, nil
}

func (w *Window) framebufferResized(_ *glfw.Window, width, height int) {
	w.resized = true
}

// FramebufferSize returns the framebuffer size in pixels, waiting for events
// while the window is minimized
func (w *Window) FramebufferSize() (int, int) {
	width, height := w.GetFramebufferSize()
	for (width == 0 || height == 0) && !w.Window.ShouldClose() {
		glfw.WaitEvents()
		width, height = w.GetFramebufferSize()
	}
	return width, height
}

func (w *Window) RequiredInstanceExtensions() []string {
	return w.GetRequiredInstanceExtensions()
}

func (w *Window) CreateSurface(instance vk.Instance) (vk.Surface, error) {
	ptr, err := w.CreateWindowSurface(instance, nil)
	if err != nil {
		return vk.NullSurface, errors.Wrap(err, "create window surface")
	}
	return vk.SurfaceFromPointer(ptr), nil
}

// ConsumeResized reports whether the framebuffer was resized since the last call
func (w *Window) ConsumeResized() bool {
	r := w.resized
	w.resized = false
	return r
}

func (w *Window) ShouldClose() bool {
	return w.Window.ShouldClose()
}

func (w *Window) PollEvents() {
	glfw.PollEvents()
}

func (w *Window) Destroy() {
	w.Window.Destroy()
}

var _ vkrender.Window = (*Window)(nil)
