package vkrender

import (
	"time"

	vk "github.com/vulkan-go/vulkan"
)

type Fence struct {
	Device  *Device
	VKFence vk.Fence
}

// CreateFence creates a fence, optionally already signaled so a first wait returns at once
func (d *Device) CreateFence(signaled bool) (*Fence, error) {
	createInfo := vk.FenceCreateInfo{
		SType: vk.StructureTypeFenceCreateInfo,
	}
	if signaled {
		createInfo.Flags = vk.FenceCreateFlags(vk.FenceCreateSignaledBit)
	}

	var fence vk.Fence
	if err := vkCall(vk.CreateFence(d.VKDevice, &createInfo, nil, &fence), "create fence"); err != nil {
		return nil, err
	}
	return &Fence{Device: d, VKFence: fence}, nil
}

// Wait blocks until the fence is signaled or the timeout passes, a negative timeout waits forever
func (f *Fence) Wait(timeout time.Duration) error {
	ts := uint64(vk.MaxUint64)
	if timeout >= 0 {
		ts = uint64(timeout.Nanoseconds())
	}
	return vkCall(vk.WaitForFences(f.Device.VKDevice, 1, []vk.Fence{f.VKFence}, vk.True, ts), "wait for fence")
}

func (f *Fence) Reset() error {
	return vkCall(vk.ResetFences(f.Device.VKDevice, 1, []vk.Fence{f.VKFence}), "reset fence")
}

func (f *Fence) Destroy() {
	vk.DestroyFence(f.Device.VKDevice, f.VKFence, nil)
}
