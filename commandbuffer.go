package vkrender

import (
	"fmt"

	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

// CommandBufferMode selects how a command buffer behaves on Begin and End
type CommandBufferMode int

const (
	// Immediate buffers live as long as their owner, they are reset on every
	// Begin and End waits for the whole device to go idle. Meant for setup work,
	// never for the per frame path.
	Immediate CommandBufferMode = iota
	// Temporary buffers are allocated, recorded once and submitted. End waits for
	// the queue to go idle then frees the buffer back to its pool.
	Temporary
)

func (m CommandBufferMode) String() string {
	switch m {
	case Immediate:
		return "immediate"
	case Temporary:
		return "temporary"
	}
	return fmt.Sprintf("CommandBufferMode(%d)", int(m))
}

type submitPolicy struct {
	resetOnBegin bool
	waitDevice   bool
	freeOnEnd    bool
}

func (m CommandBufferMode) policy() submitPolicy {
	if m == Temporary {
		return submitPolicy{freeOnEnd: true}
	}
	return submitPolicy{resetOnBegin: true, waitDevice: true}
}

// CommandBufferState tracks where a command buffer is in its lifecycle
type CommandBufferState int

const (
	Unallocated CommandBufferState = iota
	Allocated
	Recording
	Submitted
	Freed
)

// CommandBuffer describes a sequence of commands that will be executed upon
// being sent to a device queue. The device, queue and pool are borrowed from
// the DeviceContext and must outlive the buffer.
type CommandBuffer struct {
	VKCommandBuffer vk.CommandBuffer
	Mode            CommandBufferMode

	device *Device
	queue  *Queue
	pool   *CommandPool
	state  CommandBufferState
}

// NewCommandBuffer allocates a command buffer from pool, work is submitted to queue
func NewCommandBuffer(mode CommandBufferMode, device *Device, queue *Queue, pool *CommandPool) (*CommandBuffer, error) {
	bufs, err := pool.AllocateBuffers(1)
	if err != nil {
		return nil, err
	}
	return &CommandBuffer{
		VKCommandBuffer: bufs[0],
		Mode:            mode,
		device:          device,
		queue:           queue,
		pool:            pool,
		state:           Allocated,
	}, nil
}

// VK is a utility function for accessing the native vulkan command buffer
func (c *CommandBuffer) VK() vk.CommandBuffer {
	return c.VKCommandBuffer
}

func (c *CommandBuffer) State() CommandBufferState {
	return c.state
}

// Reset this command buffer
func (c *CommandBuffer) Reset() error {
	return vkCall(vk.ResetCommandBuffer(c.VKCommandBuffer, 0), "reset command buffer")
}

// Begin starts a one time submit recording, resetting first for Immediate buffers
func (c *CommandBuffer) Begin() error {
	if c.state == Freed {
		return ErrCommandBufferFreed
	}
	if c.Mode.policy().resetOnBegin {
		if err := c.Reset(); err != nil {
			return err
		}
	}
	if err := c.begin(vk.CommandBufferUsageFlags(vk.CommandBufferUsageOneTimeSubmitBit)); err != nil {
		return err
	}
	return nil
}

// BeginReusable starts recording a buffer which may be submitted more than once,
// as frame buffers are.
func (c *CommandBuffer) BeginReusable() error {
	if c.state == Freed {
		return ErrCommandBufferFreed
	}
	return c.begin(0)
}

func (c *CommandBuffer) begin(flags vk.CommandBufferUsageFlags) error {
	beginInfo := vk.CommandBufferBeginInfo{
		SType: vk.StructureTypeCommandBufferBeginInfo,
		Flags: flags,
	}
	if err := vkCall(vk.BeginCommandBuffer(c.VKCommandBuffer, &beginInfo), "begin command buffer"); err != nil {
		return err
	}
	c.state = Recording
	return nil
}

// EndRecording finishes recording without submitting
func (c *CommandBuffer) EndRecording() error {
	if c.state != Recording {
		return ErrCommandBufferNotRecording
	}
	if err := vkCall(vk.EndCommandBuffer(c.VKCommandBuffer), "end command buffer"); err != nil {
		return err
	}
	c.state = Allocated
	return nil
}

// End finishes recording, submits the buffer and blocks. Immediate buffers wait
// for the device to go idle, Temporary buffers wait for their queue and are then
// freed, after which the buffer must not be used. A Temporary buffer is freed
// even when End fails.
func (c *CommandBuffer) End() error {
	if c.state == Freed {
		return ErrCommandBufferFreed
	}
	policy := c.Mode.policy()
	if policy.freeOnEnd {
		defer c.free()
	}

	if err := c.EndRecording(); err != nil {
		return err
	}

	if err := c.queue.Submit(c); err != nil {
		return errors.Wrapf(err, "submit %s command buffer", c.Mode)
	}
	c.state = Submitted

	if policy.waitDevice {
		return c.device.WaitIdle()
	}
	return c.queue.WaitIdle()
}

// Record runs fn between Begin and End. End is called even when fn fails so a
// Temporary buffer is always released.
func (c *CommandBuffer) Record(fn func(cb *CommandBuffer) error) error {
	if err := c.Begin(); err != nil {
		if c.Mode.policy().freeOnEnd {
			c.Free()
		}
		return err
	}
	ferr := fn(c)
	eerr := c.End()
	if ferr != nil {
		return ferr
	}
	return eerr
}

func (c *CommandBuffer) free() {
	// nil for a buffer that was never allocated from a pool
	if c.pool != nil {
		c.pool.FreeBuffers(c.VKCommandBuffer)
	}
	c.state = Freed
}

// Free returns the buffer to its pool, it is used for Immediate buffers at shutdown
func (c *CommandBuffer) Free() {
	if c.state != Freed {
		c.free()
	}
}

// PipelineBarrier records image memory barriers between the given stages
func (c *CommandBuffer) PipelineBarrier(srcStage, dstStage vk.PipelineStageFlags, barriers ...vk.ImageMemoryBarrier) {
	vk.CmdPipelineBarrier(c.VKCommandBuffer, srcStage, dstStage, 0, 0, nil, 0, nil, uint32(len(barriers)), barriers)
}

// BlitImage records a single region blit
func (c *CommandBuffer) BlitImage(src vk.Image, srcLayout vk.ImageLayout, dst vk.Image, dstLayout vk.ImageLayout, region vk.ImageBlit, filter vk.Filter) {
	vk.CmdBlitImage(c.VKCommandBuffer, src, srcLayout, dst, dstLayout, 1, []vk.ImageBlit{region}, filter)
}

// CopyBufferToImage records a single region buffer to image copy
func (c *CommandBuffer) CopyBufferToImage(src vk.Buffer, dst vk.Image, dstLayout vk.ImageLayout, region vk.BufferImageCopy) {
	vk.CmdCopyBufferToImage(c.VKCommandBuffer, src, dst, dstLayout, 1, []vk.BufferImageCopy{region})
}

// CopyBuffer records a copy of size bytes from the start of src to the start of dst
func (c *CommandBuffer) CopyBuffer(src, dst vk.Buffer, size uint64) {
	vk.CmdCopyBuffer(c.VKCommandBuffer, src, dst, 1, []vk.BufferCopy{{
		SrcOffset: 0,
		DstOffset: 0,
		Size:      vk.DeviceSize(size),
	}})
}

// commandRecorder is the subset of recording used by the transition and
// mip chain code
type commandRecorder interface {
	PipelineBarrier(srcStage, dstStage vk.PipelineStageFlags, barriers ...vk.ImageMemoryBarrier)
	BlitImage(src vk.Image, srcLayout vk.ImageLayout, dst vk.Image, dstLayout vk.ImageLayout, region vk.ImageBlit, filter vk.Filter)
	CopyBufferToImage(src vk.Buffer, dst vk.Image, dstLayout vk.ImageLayout, region vk.BufferImageCopy)
}
