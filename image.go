package vkrender

import (
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

// Image is a 2D image together with the memory bound to it
type Image struct {
	Device    *Device
	VKImage   vk.Image
	Memory    *DeviceMemory
	Format    vk.Format
	Extent    vk.Extent2D
	MipLevels uint32
	Samples   vk.SampleCountFlagBits
}

// ImageOptions describes an image to create
type ImageOptions struct {
	Extent     vk.Extent2D
	MipLevels  uint32
	Samples    vk.SampleCountFlagBits
	Format     vk.Format
	Tiling     vk.ImageTiling
	Usage      vk.ImageUsageFlags
	Properties vk.MemoryPropertyFlags
	// Sharing defaults to exclusive, QueueFamilies lists the families of a
	// concurrent image
	Sharing       vk.SharingMode
	QueueFamilies []uint32
}

// CreateImage creates a 2D image in the Undefined layout and binds
// freshly allocated memory to it
func (d *Device) CreateImage(opts ImageOptions) (*Image, error) {
	if opts.MipLevels == 0 {
		opts.MipLevels = 1
	}
	if opts.Samples == 0 {
		opts.Samples = vk.SampleCount1Bit
	}

	imageInfo := vk.ImageCreateInfo{
		SType:     vk.StructureTypeImageCreateInfo,
		ImageType: vk.ImageType2d,
		Extent: vk.Extent3D{
			Width:  opts.Extent.Width,
			Height: opts.Extent.Height,
			Depth:  1,
		},
		MipLevels:             opts.MipLevels,
		ArrayLayers:           1,
		Format:                opts.Format,
		Tiling:                opts.Tiling,
		InitialLayout:         vk.ImageLayoutUndefined,
		Usage:                 opts.Usage,
		Samples:               opts.Samples,
		SharingMode:           opts.Sharing,
		QueueFamilyIndexCount: uint32(len(opts.QueueFamilies)),
		PQueueFamilyIndices:   opts.QueueFamilies,
	}

	var image vk.Image
	if err := vkCall(vk.CreateImage(d.VKDevice, &imageInfo, nil, &image), "create image"); err != nil {
		return nil, err
	}

	ret := &Image{
		Device:    d,
		VKImage:   image,
		Format:    opts.Format,
		Extent:    opts.Extent,
		MipLevels: opts.MipLevels,
		Samples:   opts.Samples,
	}

	mr := ret.MemoryRequirements()
	memory, err := d.Allocate(uint64(mr.Size), mr.MemoryTypeBits, opts.Properties)
	if err != nil {
		vk.DestroyImage(d.VKDevice, image, nil)
		return nil, errors.Wrap(err, "allocate image memory")
	}
	ret.Memory = memory

	if err := vkCall(vk.BindImageMemory(d.VKDevice, image, memory.VKDeviceMemory, 0), "bind image memory"); err != nil {
		ret.Destroy()
		return nil, err
	}
	return ret, nil
}

// MemoryRequirements returns the dereferenced memory requirements of the image
func (i *Image) MemoryRequirements() vk.MemoryRequirements {
	var mr vk.MemoryRequirements
	vk.GetImageMemoryRequirements(i.Device.VKDevice, i.VKImage, &mr)
	mr.Deref()
	return mr
}

// CreateView creates a view over every mip level of the image
func (i *Image) CreateView(aspect vk.ImageAspectFlags) (*ImageView, error) {
	return i.Device.CreateImageView(i.VKImage, i.Format, aspect, i.MipLevels)
}

// Destroy destroys the image then frees its memory
func (i *Image) Destroy() {
	if i.VKImage != vk.NullImage {
		vk.DestroyImage(i.Device.VKDevice, i.VKImage, nil)
		i.VKImage = vk.NullImage
	}
	if i.Memory != nil {
		i.Memory.Destroy()
		i.Memory = nil
	}
}

type ImageView struct {
	Device      *Device
	VKImageView vk.ImageView
}

func imageViewCreateInfo(image vk.Image, format vk.Format, aspect vk.ImageAspectFlags, mipLevels uint32) vk.ImageViewCreateInfo {
	return vk.ImageViewCreateInfo{
		SType:    vk.StructureTypeImageViewCreateInfo,
		Image:    image,
		ViewType: vk.ImageViewType2d,
		Format:   format,
		Components: vk.ComponentMapping{
			R: vk.ComponentSwizzleIdentity,
			G: vk.ComponentSwizzleIdentity,
			B: vk.ComponentSwizzleIdentity,
			A: vk.ComponentSwizzleIdentity,
		},
		SubresourceRange: vk.ImageSubresourceRange{
			AspectMask:     aspect,
			BaseMipLevel:   0,
			LevelCount:     mipLevels,
			BaseArrayLayer: 0,
			LayerCount:     1,
		},
	}
}

// CreateImageView creates a 2D view of mipLevels levels over image
func (d *Device) CreateImageView(image vk.Image, format vk.Format, aspect vk.ImageAspectFlags, mipLevels uint32) (*ImageView, error) {
	view, err := d.createView(image, format, aspect, mipLevels)
	if err != nil {
		return nil, err
	}
	return &ImageView{Device: d, VKImageView: view}, nil
}

func (d *Device) createView(image vk.Image, format vk.Format, aspect vk.ImageAspectFlags, mipLevels uint32) (vk.ImageView, error) {
	createInfo := imageViewCreateInfo(image, format, aspect, mipLevels)
	var view vk.ImageView
	if err := vkCall(vk.CreateImageView(d.VKDevice, &createInfo, nil, &view), "create image view"); err != nil {
		return vk.NullImageView, err
	}
	return view, nil
}

func (d *Device) destroyView(view vk.ImageView) {
	vk.DestroyImageView(d.VKDevice, view, nil)
}

func (i *ImageView) Destroy() {
	if i.VKImageView != vk.NullImageView {
		vk.DestroyImageView(i.Device.VKDevice, i.VKImageView, nil)
		i.VKImageView = vk.NullImageView
	}
}

// imageViewAllocator creates and destroys raw image views, Device is the
// real implementation
type imageViewAllocator interface {
	createView(image vk.Image, format vk.Format, aspect vk.ImageAspectFlags, mipLevels uint32) (vk.ImageView, error)
	destroyView(view vk.ImageView)
}

// createImageViews creates one single level color view per image. If any
// creation fails the views created so far are destroyed.
func createImageViews(a imageViewAllocator, images []vk.Image, format vk.Format) ([]vk.ImageView, error) {
	views := make([]vk.ImageView, 0, len(images))
	for n, img := range images {
		view, err := a.createView(img, format, vk.ImageAspectFlags(vk.ImageAspectColorBit), 1)
		if err != nil {
			destroyImageViews(a, views)
			return nil, errors.Wrapf(err, "image view %d", n)
		}
		views = append(views, view)
	}
	return views, nil
}

func destroyImageViews(a imageViewAllocator, views []vk.ImageView) {
	for _, v := range views {
		a.destroyView(v)
	}
}
