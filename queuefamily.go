package vkrender

import (
	"fmt"

	vk "github.com/vulkan-go/vulkan"
)

// QueueKind names the role a queue plays for the renderer
type QueueKind int

const (
	GraphicsQueue QueueKind = iota
	PresentQueue
	TransferQueue
)

func (k QueueKind) String() string {
	switch k {
	case GraphicsQueue:
		return "graphics"
	case PresentQueue:
		return "present"
	case TransferQueue:
		return "transfer"
	}
	return fmt.Sprintf("QueueKind(%d)", int(k))
}

type QueueFamily struct {
	Index                   int
	PhysicalDevice          *PhysicalDevice
	VKQueueFamilyProperties vk.QueueFamilyProperties
}

func hasQueueFlag(flags vk.QueueFlags, bit vk.QueueFlagBits) bool {
	return flags&vk.QueueFlags(bit) == vk.QueueFlags(bit)
}

func (q *QueueFamily) IsCompute() bool {
	return hasQueueFlag(q.VKQueueFamilyProperties.QueueFlags, vk.QueueComputeBit)
}

func (q *QueueFamily) IsGraphics() bool {
	return hasQueueFlag(q.VKQueueFamilyProperties.QueueFlags, vk.QueueGraphicsBit)
}

func (q *QueueFamily) IsTransfer() bool {
	return hasQueueFlag(q.VKQueueFamilyProperties.QueueFlags, vk.QueueTransferBit)
}

func (q *QueueFamily) SupportsPresent(surface vk.Surface) bool {
	var supportsPresent vk.Bool32
	vk.GetPhysicalDeviceSurfaceSupport(q.PhysicalDevice.VKPhysicalDevice, uint32(q.Index), surface, &supportsPresent)
	return supportsPresent == vk.True
}

func (q *QueueFamily) String() string {
	return fmt.Sprintf("{ Index: %d Compute: %v Graphics: %v Transfer: %v }", q.Index, q.IsCompute(), q.IsGraphics(), q.IsTransfer())
}

// QueueFamilyIndices records which queue family serves each role. Transfer
// aliases Graphics when the device has no transfer only family.
type QueueFamilyIndices struct {
	Graphics int
	Present  int
	Transfer int

	ExclusiveTransfer bool
}

// Unique returns the distinct family indices in graphics, present, transfer order
func (q QueueFamilyIndices) Unique() []int {
	ret := []int{q.Graphics}
	for _, i := range []int{q.Present, q.Transfer} {
		dup := false
		for _, r := range ret {
			if r == i {
				dup = true
				break
			}
		}
		if !dup {
			ret = append(ret, i)
		}
	}
	return ret
}

// Index returns the family index used for the given role
func (q QueueFamilyIndices) Index(kind QueueKind) int {
	switch kind {
	case PresentQueue:
		return q.Present
	case TransferQueue:
		return q.Transfer
	}
	return q.Graphics
}

// selectQueueFamilies picks the first graphics family, the first family able to
// present, and the first transfer family supporting neither graphics nor compute.
// It reports false if no graphics or present family exists.
func selectQueueFamilies(flags []vk.QueueFlags, presentSupport func(index int) bool) (QueueFamilyIndices, bool) {
	ret := QueueFamilyIndices{Graphics: -1, Present: -1, Transfer: -1}

	for i, f := range flags {
		if ret.Graphics < 0 && hasQueueFlag(f, vk.QueueGraphicsBit) {
			ret.Graphics = i
		}
		if ret.Present < 0 && presentSupport != nil && presentSupport(i) {
			ret.Present = i
		}
		if ret.Transfer < 0 && hasQueueFlag(f, vk.QueueTransferBit) &&
			!hasQueueFlag(f, vk.QueueGraphicsBit) && !hasQueueFlag(f, vk.QueueComputeBit) {
			ret.Transfer = i
		}
	}

	if ret.Graphics < 0 || ret.Present < 0 {
		return ret, false
	}

	if ret.Transfer < 0 {
		ret.Transfer = ret.Graphics
	} else {
		ret.ExclusiveTransfer = true
	}

	return ret, true
}
