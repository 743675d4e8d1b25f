package vkrender

import (
	vk "github.com/vulkan-go/vulkan"
)

// TextureSpec describes a texture to create. A zero MipLevels means a single level.
type TextureSpec struct {
	Width, Height int
	MipLevels     uint32
	Format        vk.Format
	Tiling        vk.ImageTiling
	Usage         vk.ImageUsageFlags
	Properties    vk.MemoryPropertyFlags
	Samples       vk.SampleCountFlagBits
	Aspect        vk.ImageAspectFlags
	// Sharing and QueueFamilies let queues of several families use the
	// texture without ownership transfers
	Sharing       vk.SharingMode
	QueueFamilies []uint32
}

// DefaultTextureSpec is a sampled, device local RGBA8 sRGB color texture
func DefaultTextureSpec() TextureSpec {
	return TextureSpec{
		Format:     vk.FormatR8g8b8a8Srgb,
		Tiling:     vk.ImageTilingOptimal,
		Usage:      vk.ImageUsageFlags(vk.ImageUsageSampledBit),
		Properties: vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit),
		Samples:    vk.SampleCount1Bit,
		Aspect:     vk.ImageAspectFlags(vk.ImageAspectColorBit),
	}
}

// Texture owns an image, its memory and a view over all of its mip levels
type Texture struct {
	Image *Image
	View  *ImageView

	Format     vk.Format
	Tiling     vk.ImageTiling
	Usage      vk.ImageUsageFlags
	Properties vk.MemoryPropertyFlags
	Samples    vk.SampleCountFlagBits
	Aspect     vk.ImageAspectFlags
	MipLevels  uint32
	Extent     vk.Extent2D
	Sharing    vk.SharingMode
}

func newTexture(device *Device, spec TextureSpec) (*Texture, error) {
	if spec.MipLevels == 0 {
		spec.MipLevels = 1
	}
	if spec.Samples == 0 {
		spec.Samples = vk.SampleCount1Bit
	}
	if spec.Aspect == 0 {
		spec.Aspect = vk.ImageAspectFlags(vk.ImageAspectColorBit)
	}
	extent := vk.Extent2D{Width: uint32(spec.Width), Height: uint32(spec.Height)}

	img, err := device.CreateImage(ImageOptions{
		Extent:        extent,
		MipLevels:     spec.MipLevels,
		Samples:       spec.Samples,
		Format:        spec.Format,
		Tiling:        spec.Tiling,
		Usage:         spec.Usage,
		Properties:    spec.Properties,
		Sharing:       spec.Sharing,
		QueueFamilies: spec.QueueFamilies,
	})
	if err != nil {
		return nil, err
	}

	view, err := img.CreateView(spec.Aspect)
	if err != nil {
		img.Destroy()
		return nil, err
	}

	return &Texture{
		Image:      img,
		View:       view,
		Format:     spec.Format,
		Tiling:     spec.Tiling,
		Usage:      spec.Usage,
		Properties: spec.Properties,
		Samples:    spec.Samples,
		Aspect:     spec.Aspect,
		MipLevels:  spec.MipLevels,
		Extent:     extent,
		Sharing:    spec.Sharing,
	}, nil
}

// DescriptorInfo describes the texture for a combined image sampler write
func (t *Texture) DescriptorInfo(sampler *Sampler) vk.DescriptorImageInfo {
	return vk.DescriptorImageInfo{
		Sampler:     sampler.VKSampler,
		ImageView:   t.View.VKImageView,
		ImageLayout: vk.ImageLayoutShaderReadOnlyOptimal,
	}
}

// Destroy releases the view, then the image, then its memory
func (t *Texture) Destroy() {
	if t.View != nil {
		t.View.Destroy()
		t.View = nil
	}
	if t.Image != nil {
		t.Image.Destroy()
		t.Image = nil
	}
}
