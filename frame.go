package vkrender

import (
	"github.com/pkg/errors"
)

// MaxFramesInFlight is the number of frames the CPU may record ahead of the GPU
const MaxFramesInFlight = 2

// frame holds the objects one frame in flight records and synchronizes with
type frame struct {
	imageAvailable *Semaphore
	renderFinished *Semaphore
	inFlight       *Fence
	commands       *CommandBuffer
}

func (f *frame) destroy() {
	if f.imageAvailable != nil {
		f.imageAvailable.Destroy()
	}
	if f.renderFinished != nil {
		f.renderFinished.Destroy()
	}
	if f.inFlight != nil {
		f.inFlight.Destroy()
	}
	if f.commands != nil {
		f.commands.Free()
	}
}

// FrameSync cycles through MaxFramesInFlight sets of semaphores, fences and
// command buffers, and tracks which frame last rendered to each swapchain image
type FrameSync struct {
	frames  []*frame
	current int

	// imagesInFlight[i] is the fence of the frame last submitted for image i
	imagesInFlight []*Fence
}

func newFrameSync(ctx *DeviceContext, frames int, images uint32) (*FrameSync, error) {
	s := &FrameSync{
		frames:         make([]*frame, 0, frames),
		imagesInFlight: make([]*Fence, images),
	}
	device := ctx.Device()
	for i := 0; i < frames; i++ {
		f := &frame{}
		s.frames = append(s.frames, f)

		var err error
		if f.imageAvailable, err = device.CreateSemaphore(); err != nil {
			s.Destroy()
			return nil, errors.Wrapf(err, "frame %d", i)
		}
		if f.renderFinished, err = device.CreateSemaphore(); err != nil {
			s.Destroy()
			return nil, errors.Wrapf(err, "frame %d", i)
		}
		// signaled so the first wait on each frame returns at once
		if f.inFlight, err = device.CreateFence(true); err != nil {
			s.Destroy()
			return nil, errors.Wrapf(err, "frame %d", i)
		}
		if f.commands, err = ctx.NewCommandBuffer(Immediate, GraphicsQueue); err != nil {
			s.Destroy()
			return nil, errors.Wrapf(err, "frame %d", i)
		}
	}
	return s, nil
}

func (s *FrameSync) frame() *frame {
	return s.frames[s.current]
}

func (s *FrameSync) advance() {
	s.current = (s.current + 1) % len(s.frames)
}

// Current is the index of the frame in flight being recorded
func (s *FrameSync) Current() int {
	return s.current
}

// claimImage records that the current frame renders to image index and
// returns the fence of the frame which previously did, if any
func (s *FrameSync) claimImage(index uint32) *Fence {
	prev := s.imagesInFlight[index]
	s.imagesInFlight[index] = s.frame().inFlight
	return prev
}

// resetImages forgets image ownership after the swapchain is rebuilt
func (s *FrameSync) resetImages(images uint32) {
	s.imagesInFlight = make([]*Fence, images)
}

// submitRecorded records a frame, then resets its fence and submits. The
// fence is reset only once the frame has work that signals it again, so a
// failed recording leaves it signaled for the next wait.
func submitRecorded(record, resetFence, submit func() error) error {
	if err := record(); err != nil {
		return err
	}
	if err := resetFence(); err != nil {
		return err
	}
	return submit()
}

func (s *FrameSync) Destroy() {
	for _, f := range s.frames {
		f.destroy()
	}
	s.frames = nil
	s.imagesInFlight = nil
}
