package vkrender

import (
	"fmt"

	vk "github.com/vulkan-go/vulkan"
)

type Queue struct {
	Device      *Device
	FamilyIndex int
	VKQueue     vk.Queue
}

func (q *Queue) WaitIdle() error {
	return vkCall(vk.QueueWaitIdle(q.VKQueue), "queue wait idle")
}

// Submit submits the buffers to the queue without waiting
func (q *Queue) Submit(buffers ...*CommandBuffer) error {
	return q.SubmitWithFence(nil, buffers...)
}

// SubmitWithFence submits the buffers to the queue, the fence is signaled once they complete
func (q *Queue) SubmitWithFence(fence *Fence, buffers ...*CommandBuffer) error {
	b := make([]vk.CommandBuffer, len(buffers))
	for i := range buffers {
		b[i] = buffers[i].VKCommandBuffer
	}

	submitInfo := vk.SubmitInfo{
		SType:              vk.StructureTypeSubmitInfo,
		CommandBufferCount: uint32(len(b)),
		PCommandBuffers:    b,
	}

	vkFence := vk.NullFence
	if fence != nil {
		vkFence = fence.VKFence
	}

	return vkCall(vk.QueueSubmit(q.VKQueue, 1, []vk.SubmitInfo{submitInfo}, vkFence), "queue submit")
}

// SubmitFrame submits a frame's commands once wait is signaled at waitStage,
// signal and fence are signaled when they complete
func (q *Queue) SubmitFrame(cb *CommandBuffer, wait *Semaphore, waitStage vk.PipelineStageFlags, signal *Semaphore, fence *Fence) error {
	submitInfo := vk.SubmitInfo{
		SType:                vk.StructureTypeSubmitInfo,
		WaitSemaphoreCount:   1,
		PWaitSemaphores:      []vk.Semaphore{wait.VKSemaphore},
		PWaitDstStageMask:    []vk.PipelineStageFlags{waitStage},
		CommandBufferCount:   1,
		PCommandBuffers:      []vk.CommandBuffer{cb.VKCommandBuffer},
		SignalSemaphoreCount: 1,
		PSignalSemaphores:    []vk.Semaphore{signal.VKSemaphore},
	}
	return vkCall(vk.QueueSubmit(q.VKQueue, 1, []vk.SubmitInfo{submitInfo}, fence.VKFence), "queue submit")
}

func (q *Queue) String() string {
	return fmt.Sprintf("{Device: %s QueueFamily: %d}", q.Device.String(), q.FamilyIndex)
}
