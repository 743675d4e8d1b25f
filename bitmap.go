package vkrender

import (
	"context"
	"image"
	"io"
	"math/bits"
	"os"
	"runtime"

	// decoders registered with image.Decode
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/pkg/errors"
	"golang.org/x/exp/slog"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
	"golang.org/x/sync/errgroup"
)

// Bitmap is a decoded image held on the CPU as tightly packed RGBA8 rows
type Bitmap struct {
	Path   string
	Width  int
	Height int
	// Channels is the channel count of the source image before conversion to RGBA
	Channels int
	// Pixels holds Width*Height*4 bytes, nil when nothing was loaded
	Pixels []byte
}

// MipLevels returns the length of the full mip chain for a width x height image
func MipLevels(width, height int) uint32 {
	m := width
	if height > m {
		m = height
	}
	if m <= 0 {
		return 1
	}
	return uint32(bits.Len(uint(m)))
}

func (b *Bitmap) MipLevels() uint32 {
	return MipLevels(b.Width, b.Height)
}

// Empty reports whether the bitmap has no pixels
func (b *Bitmap) Empty() bool {
	return b.Pixels == nil
}

// Clear drops the pixel buffer once it has been uploaded
func (b *Bitmap) Clear() {
	b.Pixels = nil
}

func sourceChannels(img image.Image) int {
	switch img.(type) {
	case *image.Gray, *image.Gray16, *image.Alpha, *image.Alpha16:
		return 1
	case *image.YCbCr:
		return 3
	}
	return 4
}

// NewBitmap converts img to RGBA8
func NewBitmap(img image.Image) *Bitmap {
	b := img.Bounds()
	rgba, ok := img.(*image.RGBA)
	if !ok || rgba.Stride != 4*b.Dx() || b.Min != (image.Point{}) {
		rgba = image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	}
	return &Bitmap{
		Width:    b.Dx(),
		Height:   b.Dy(),
		Channels: sourceChannels(img),
		Pixels:   rgba.Pix,
	}
}

// DecodeBitmap decodes png, jpeg, gif, bmp, tiff or webp data into a Bitmap
func DecodeBitmap(r io.Reader) (*Bitmap, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, errors.Wrap(err, "decode image")
	}
	return NewBitmap(img), nil
}

// LoadBitmap decodes the file at path. A missing file is logged and yields an
// empty bitmap, uploading it fails later with ErrNilPixelBuffer.
func LoadBitmap(logger *slog.Logger, path string) (*Bitmap, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		loggerOrDefault(logger).Warn("failed to load image", slog.String("path", path))
		return &Bitmap{Path: path}, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}
	defer f.Close()

	bm, err := DecodeBitmap(f)
	if err != nil {
		return nil, errors.Wrap(err, path)
	}
	bm.Path = path
	return bm, nil
}

// LoadBitmaps decodes every path concurrently, the bitmaps are returned in the
// order of paths. The first decode error cancels the rest.
func LoadBitmaps(ctx context.Context, logger *slog.Logger, paths ...string) ([]*Bitmap, error) {
	ret := make([]*Bitmap, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for i, p := range paths {
		i, p := i, p
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			bm, err := LoadBitmap(logger, p)
			if err != nil {
				return err
			}
			ret[i] = bm
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return ret, nil
}
