package vkrender

import (
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
	"golang.org/x/exp/slog"
)

// TextureHandle refers to a texture owned by a TextureManager. The zero
// handle never refers to a texture.
type TextureHandle struct {
	key slotKey
}

// IsZero reports whether h was never issued
func (h TextureHandle) IsZero() bool {
	return h.key.generation == 0
}

// TextureManager owns every texture and drives the upload and mip generation
// pipeline. The device context and the immediate command buffer are borrowed.
type TextureManager struct {
	ctx       *DeviceContext
	immediate *CommandBuffer
	textures  slotMap[*Texture]
	logger    *slog.Logger
}

func NewTextureManager(ctx *DeviceContext, immediate *CommandBuffer, logger *slog.Logger) *TextureManager {
	return &TextureManager{
		ctx:       ctx,
		immediate: immediate,
		logger:    loggerOrDefault(logger),
	}
}

// uploadUsage adds what the upload pipeline needs: transfer destination for
// the copy, plus transfer source when levels are blitted from one another
func uploadUsage(usage vk.ImageUsageFlags, levels uint32) vk.ImageUsageFlags {
	usage |= vk.ImageUsageFlags(vk.ImageUsageTransferDstBit)
	if levels > 1 {
		usage |= vk.ImageUsageFlags(vk.ImageUsageTransferSrcBit)
	}
	return usage
}

// uploadSpec sizes spec for bitmap with a full mip chain. The copy runs on
// the transfer queue and the blits on the graphics queue, so with a separate
// transfer family the image is shared between the two like the staging buffer.
func uploadSpec(spec TextureSpec, bitmap *Bitmap, families QueueFamilyIndices) TextureSpec {
	spec.Width, spec.Height = bitmap.Width, bitmap.Height
	spec.MipLevels = bitmap.MipLevels()
	spec.Usage = uploadUsage(spec.Usage, spec.MipLevels)
	spec.Sharing, spec.QueueFamilies = stagingSharing(families)
	return spec
}

// CreateTexture allocates a texture in the Undefined layout
func (m *TextureManager) CreateTexture(spec TextureSpec) (TextureHandle, error) {
	tex, err := newTexture(m.ctx.Device(), spec)
	if err != nil {
		return TextureHandle{}, errors.Wrap(err, "create texture")
	}
	return TextureHandle{key: m.textures.insert(tex)}, nil
}

// CreateTextureAndUpload creates a texture sized for bitmap with a full mip
// chain, uploads the pixels and generates the remaining levels. On return every
// level is in the ShaderReadOnly layout. A failure at any step releases the texture.
func (m *TextureManager) CreateTextureAndUpload(bitmap *Bitmap, spec TextureSpec) (TextureHandle, error) {
	h, err := m.CreateTexture(uploadSpec(spec, bitmap, m.ctx.QueueFamilies()))
	if err != nil {
		return TextureHandle{}, err
	}
	tex, _ := m.textures.get(h.key)

	if err := m.upload(tex, bitmap); err != nil {
		m.Release(h)
		return TextureHandle{}, err
	}

	m.logger.Info("texture uploaded",
		slog.String("source", bitmap.Path),
		slog.Int("width", bitmap.Width),
		slog.Int("height", bitmap.Height),
		slog.Int("mipLevels", int(tex.MipLevels)))
	return h, nil
}

func (m *TextureManager) upload(tex *Texture, bitmap *Bitmap) error {
	err := m.immediate.Record(func(cb *CommandBuffer) error {
		return recordLayoutTransition(cb, tex.Image.VKImage, tex.Format,
			vk.ImageLayoutUndefined, vk.ImageLayoutTransferDstOptimal, 0, tex.MipLevels)
	})
	if err != nil {
		return err
	}
	if err := m.transferBitmap(tex, bitmap); err != nil {
		return err
	}
	return m.generateMipmaps(tex)
}

// transferBitmap copies the pixels into level 0 through a staging buffer on
// the transfer queue
func (m *TextureManager) transferBitmap(tex *Texture, bitmap *Bitmap) error {
	if bitmap.Pixels == nil {
		return errors.Wrapf(ErrNilPixelBuffer, "upload %q", bitmap.Path)
	}

	sharing, families := m.ctx.StagingSharing()
	staging, err := m.ctx.Device().CreateBuffer(BufferOptions{
		Size:          uint64(len(bitmap.Pixels)),
		Usage:         vk.BufferUsageFlags(vk.BufferUsageTransferSrcBit),
		Properties:    vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit | vk.MemoryPropertyHostCoherentBit),
		Sharing:       sharing,
		QueueFamilies: families,
	})
	if err != nil {
		return errors.Wrap(err, "staging buffer")
	}
	defer staging.Destroy()

	if err := staging.Upload(bitmap.Pixels); err != nil {
		return err
	}

	cb, err := m.ctx.NewCommandBuffer(Temporary, TransferQueue)
	if err != nil {
		return err
	}
	return cb.Record(func(cb *CommandBuffer) error {
		cb.CopyBufferToImage(staging.VKBuffer, tex.Image.VKImage, vk.ImageLayoutTransferDstOptimal, vk.BufferImageCopy{
			BufferOffset:      0,
			BufferRowLength:   0,
			BufferImageHeight: 0,
			ImageSubresource: vk.ImageSubresourceLayers{
				AspectMask:     vk.ImageAspectFlags(vk.ImageAspectColorBit),
				MipLevel:       0,
				BaseArrayLayer: 0,
				LayerCount:     1,
			},
			ImageOffset: vk.Offset3D{X: 0, Y: 0, Z: 0},
			ImageExtent: vk.Extent3D{Width: tex.Extent.Width, Height: tex.Extent.Height, Depth: 1},
		})
		return nil
	})
}

// generateMipmaps blits every level from the one above it on the graphics
// queue, leaving all levels ShaderReadOnly
func (m *TextureManager) generateMipmaps(tex *Texture) error {
	if tex.MipLevels > 1 && !m.ctx.PhysicalDevice().SupportsLinearBlit(tex.Format) {
		return errors.Wrapf(ErrLinearBlitUnsupported, "format %d", tex.Format)
	}

	cb, err := m.ctx.NewCommandBuffer(Temporary, GraphicsQueue)
	if err != nil {
		return err
	}
	return cb.Record(func(cb *CommandBuffer) error {
		recordMipChain(cb, tex.Image.VKImage, int32(tex.Extent.Width), int32(tex.Extent.Height), tex.MipLevels)
		return nil
	})
}

// TransitionImageLayout moves every level of the texture between layouts using
// the immediate command buffer
func (m *TextureManager) TransitionImageLayout(h TextureHandle, from, to vk.ImageLayout) error {
	tex, err := m.Get(h)
	if err != nil {
		return err
	}
	return m.immediate.Record(func(cb *CommandBuffer) error {
		return recordLayoutTransition(cb, tex.Image.VKImage, tex.Format, from, to, 0, tex.MipLevels)
	})
}

// Get returns the texture h refers to
func (m *TextureManager) Get(h TextureHandle) (*Texture, error) {
	tex, ok := m.textures.get(h.key)
	if !ok {
		return nil, ErrStaleTextureHandle
	}
	return tex, nil
}

// Release destroys the texture and invalidates h
func (m *TextureManager) Release(h TextureHandle) error {
	tex, ok := m.textures.remove(h.key)
	if !ok {
		return ErrStaleTextureHandle
	}
	tex.Destroy()
	return nil
}

// Len returns the number of live textures
func (m *TextureManager) Len() int {
	return m.textures.len()
}

// Destroy releases every live texture in creation slot order
func (m *TextureManager) Destroy() {
	for _, k := range m.textures.keys() {
		if tex, ok := m.textures.remove(k); ok {
			tex.Destroy()
		}
	}
}
