package vkrender

import (
	"strconv"

	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

// transitionBarrier is the synchronization scope of one supported layout change
type transitionBarrier struct {
	srcAccess vk.AccessFlags
	dstAccess vk.AccessFlags
	srcStage  vk.PipelineStageFlags
	dstStage  vk.PipelineStageFlags
}

type layoutPair struct {
	from, to vk.ImageLayout
}

var transitionTable = map[layoutPair]transitionBarrier{
	{vk.ImageLayoutUndefined, vk.ImageLayoutTransferDstOptimal}: {
		srcAccess: 0,
		dstAccess: vk.AccessFlags(vk.AccessTransferWriteBit),
		srcStage:  vk.PipelineStageFlags(vk.PipelineStageTopOfPipeBit),
		dstStage:  vk.PipelineStageFlags(vk.PipelineStageTransferBit),
	},
	{vk.ImageLayoutTransferDstOptimal, vk.ImageLayoutShaderReadOnlyOptimal}: {
		srcAccess: vk.AccessFlags(vk.AccessTransferWriteBit),
		dstAccess: vk.AccessFlags(vk.AccessShaderReadBit),
		srcStage:  vk.PipelineStageFlags(vk.PipelineStageTransferBit),
		dstStage:  vk.PipelineStageFlags(vk.PipelineStageFragmentShaderBit),
	},
	{vk.ImageLayoutUndefined, vk.ImageLayoutDepthStencilAttachmentOptimal}: {
		srcAccess: 0,
		dstAccess: vk.AccessFlags(vk.AccessDepthStencilAttachmentReadBit | vk.AccessDepthStencilAttachmentWriteBit),
		srcStage:  vk.PipelineStageFlags(vk.PipelineStageTopOfPipeBit),
		dstStage:  vk.PipelineStageFlags(vk.PipelineStageEarlyFragmentTestsBit),
	},
}

var layoutNames = map[vk.ImageLayout]string{
	vk.ImageLayoutUndefined:                     "Undefined",
	vk.ImageLayoutGeneral:                       "General",
	vk.ImageLayoutColorAttachmentOptimal:        "ColorAttachmentOptimal",
	vk.ImageLayoutDepthStencilAttachmentOptimal: "DepthStencilAttachmentOptimal",
	vk.ImageLayoutDepthStencilReadOnlyOptimal:   "DepthStencilReadOnlyOptimal",
	vk.ImageLayoutShaderReadOnlyOptimal:         "ShaderReadOnlyOptimal",
	vk.ImageLayoutTransferSrcOptimal:            "TransferSrcOptimal",
	vk.ImageLayoutTransferDstOptimal:            "TransferDstOptimal",
	vk.ImageLayoutPreinitialized:                "Preinitialized",
	vk.ImageLayoutPresentSrc:                    "PresentSrc",
}

func layoutName(l vk.ImageLayout) string {
	if n, ok := layoutNames[l]; ok {
		return n
	}
	return "ImageLayout(" + strconv.Itoa(int(l)) + ")"
}

// layoutTransition looks up the barrier scope of a layout change
func layoutTransition(from, to vk.ImageLayout) (transitionBarrier, error) {
	b, ok := transitionTable[layoutPair{from, to}]
	if !ok {
		return transitionBarrier{}, errors.Wrapf(ErrUnsupportedLayoutTransition, "%s -> %s", layoutName(from), layoutName(to))
	}
	return b, nil
}

// imageAspectFor returns the aspect a barrier into newLayout covers
func imageAspectFor(newLayout vk.ImageLayout, format vk.Format) vk.ImageAspectFlags {
	if newLayout == vk.ImageLayoutDepthStencilAttachmentOptimal {
		aspect := vk.ImageAspectFlags(vk.ImageAspectDepthBit)
		if hasStencilComponent(format) {
			aspect |= vk.ImageAspectFlags(vk.ImageAspectStencilBit)
		}
		return aspect
	}
	return vk.ImageAspectFlags(vk.ImageAspectColorBit)
}

func imageBarrier(image vk.Image, aspect vk.ImageAspectFlags, from, to vk.ImageLayout, srcAccess, dstAccess vk.AccessFlags, baseLevel, levelCount uint32) vk.ImageMemoryBarrier {
	return vk.ImageMemoryBarrier{
		SType:               vk.StructureTypeImageMemoryBarrier,
		SrcAccessMask:       srcAccess,
		DstAccessMask:       dstAccess,
		OldLayout:           from,
		NewLayout:           to,
		SrcQueueFamilyIndex: vk.QueueFamilyIgnored,
		DstQueueFamilyIndex: vk.QueueFamilyIgnored,
		Image:               image,
		SubresourceRange: vk.ImageSubresourceRange{
			AspectMask:     aspect,
			BaseMipLevel:   baseLevel,
			LevelCount:     levelCount,
			BaseArrayLayer: 0,
			LayerCount:     1,
		},
	}
}

// recordLayoutTransition records a barrier moving levelCount levels of image
// from one layout to another. Nothing is recorded for an unsupported pair.
func recordLayoutTransition(rec commandRecorder, image vk.Image, format vk.Format, from, to vk.ImageLayout, baseLevel, levelCount uint32) error {
	t, err := layoutTransition(from, to)
	if err != nil {
		return err
	}
	barrier := imageBarrier(image, imageAspectFor(to, format), from, to, t.srcAccess, t.dstAccess, baseLevel, levelCount)
	rec.PipelineBarrier(t.srcStage, t.dstStage, barrier)
	return nil
}

// TransitionImageLayout records a layout transition over levelCount mip levels
// of image into cb. Only the pairs Undefined to TransferDst, TransferDst to
// ShaderReadOnly and Undefined to DepthStencilAttachment are supported.
func TransitionImageLayout(cb *CommandBuffer, image vk.Image, format vk.Format, from, to vk.ImageLayout, levelCount uint32) error {
	return recordLayoutTransition(cb, image, format, from, to, 0, levelCount)
}

// halve returns the extent of the next mip level
func halve(v int32) int32 {
	if v > 1 {
		return v / 2
	}
	return 1
}

// recordMipChain records the blits generating levels 1..levels-1 of image from
// level 0. All levels must be in TransferDst on entry and end in ShaderReadOnly.
func recordMipChain(rec commandRecorder, image vk.Image, width, height int32, levels uint32) {
	color := vk.ImageAspectFlags(vk.ImageAspectColorBit)
	transfer := vk.PipelineStageFlags(vk.PipelineStageTransferBit)
	fragment := vk.PipelineStageFlags(vk.PipelineStageFragmentShaderBit)
	if levels == 0 {
		levels = 1
	}

	mipWidth, mipHeight := width, height
	for i := uint32(1); i < levels; i++ {
		rec.PipelineBarrier(transfer, transfer, imageBarrier(image, color,
			vk.ImageLayoutTransferDstOptimal, vk.ImageLayoutTransferSrcOptimal,
			vk.AccessFlags(vk.AccessTransferWriteBit), vk.AccessFlags(vk.AccessTransferReadBit),
			i-1, 1))

		nextWidth, nextHeight := halve(mipWidth), halve(mipHeight)
		region := vk.ImageBlit{
			SrcSubresource: vk.ImageSubresourceLayers{
				AspectMask:     color,
				MipLevel:       i - 1,
				BaseArrayLayer: 0,
				LayerCount:     1,
			},
			SrcOffsets: [2]vk.Offset3D{{X: 0, Y: 0, Z: 0}, {X: mipWidth, Y: mipHeight, Z: 1}},
			DstSubresource: vk.ImageSubresourceLayers{
				AspectMask:     color,
				MipLevel:       i,
				BaseArrayLayer: 0,
				LayerCount:     1,
			},
			DstOffsets: [2]vk.Offset3D{{X: 0, Y: 0, Z: 0}, {X: nextWidth, Y: nextHeight, Z: 1}},
		}
		rec.BlitImage(image, vk.ImageLayoutTransferSrcOptimal, image, vk.ImageLayoutTransferDstOptimal, region, vk.FilterLinear)

		rec.PipelineBarrier(transfer, fragment, imageBarrier(image, color,
			vk.ImageLayoutTransferSrcOptimal, vk.ImageLayoutShaderReadOnlyOptimal,
			vk.AccessFlags(vk.AccessTransferReadBit), vk.AccessFlags(vk.AccessShaderReadBit),
			i-1, 1))

		mipWidth, mipHeight = nextWidth, nextHeight
	}

	// the last level was never a blit source
	rec.PipelineBarrier(transfer, fragment, imageBarrier(image, color,
		vk.ImageLayoutTransferDstOptimal, vk.ImageLayoutShaderReadOnlyOptimal,
		vk.AccessFlags(vk.AccessTransferWriteBit), vk.AccessFlags(vk.AccessShaderReadBit),
		levels-1, 1))
}
