// Package raster converts resolved icon files into fixed-size bitmaps and
// memoizes the results in memory and on disk.
package raster

import (
	"fmt"
	"image"
	"image/draw"
	"os"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	ico "github.com/biessek/golang-ico"
	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
	xdraw "golang.org/x/image/draw"

	"github.com/lumen-desktop/lumen/internal/icons"
)

// Render decodes a resolved icon and produces a size×size RGBA bitmap.
// The decoding strategy is selected by the icon's format tag: vectors are
// rendered at the exact target resolution, containers pick the best embedded
// image, rasters are rescaled. Decode failures are returned to the caller,
// which falls back to a placeholder; they are never retried automatically.
func Render(icon icons.ResolvedIcon, size int) (*image.RGBA, error) {
	switch icon.Format {
	case icons.FormatVector:
		return renderVector(icon.Path, size)
	case icons.FormatContainer:
		return renderContainer(icon.Path, size)
	default:
		return renderRaster(icon.Path, size)
	}
}

// renderVector rasterizes an SVG at exactly the target resolution.
func renderVector(path string, size int) (*image.RGBA, error) {
	svg, err := oksvg.ReadIcon(path, oksvg.WarnErrorMode)
	if err != nil {
		return nil, fmt.Errorf("failed to parse svg %s: %w", path, err)
	}

	svg.SetTarget(0, 0, float64(size), float64(size))
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	scanner := rasterx.NewScannerGV(size, size, img, img.Bounds())
	svg.Draw(rasterx.NewDasher(size, size, scanner), 1.0)
	return img, nil
}

// renderContainer decodes a multi-resolution .ico bundle, selecting the
// embedded image closest to but not below the target size when one exists,
// else the largest available, then scales down to target.
func renderContainer(path string, size int) (*image.RGBA, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open icon container %s: %w", path, err)
	}
	defer f.Close()

	images, err := ico.DecodeAll(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode icon container %s: %w", path, err)
	}
	if len(images) == 0 {
		return nil, fmt.Errorf("icon container %s holds no images", path)
	}

	best := pickContainerImage(images, size)
	return scaleTo(best, size), nil
}

// pickContainerImage chooses the smallest embedded image that is at least
// the target size, falling back to the largest one overall.
func pickContainerImage(images []image.Image, size int) image.Image {
	var (
		atLeast image.Image
		largest image.Image
	)
	for _, img := range images {
		side := maxSide(img)
		if largest == nil || side > maxSide(largest) {
			largest = img
		}
		if side >= size && (atLeast == nil || side < maxSide(atLeast)) {
			atLeast = img
		}
	}
	if atLeast != nil {
		return atLeast
	}
	return largest
}

// renderRaster decodes a bitmap file and rescales it to target size with a
// quality-preserving filter.
func renderRaster(path string, size int) (*image.RGBA, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open icon %s: %w", path, err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode icon %s: %w", path, err)
	}
	return scaleTo(img, size), nil
}

// scaleTo fits src into a size×size canvas, preserving aspect ratio and
// centering the result. Catmull-Rom keeps downscaled icons crisp.
func scaleTo(src image.Image, size int) *image.RGBA {
	bounds := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, size, size))

	if bounds.Dx() == size && bounds.Dy() == size {
		draw.Draw(dst, dst.Bounds(), src, bounds.Min, draw.Src)
		return dst
	}

	w, h := bounds.Dx(), bounds.Dy()
	if w == 0 || h == 0 {
		return dst
	}

	var dw, dh int
	if w >= h {
		dw = size
		dh = h * size / w
	} else {
		dh = size
		dw = w * size / h
	}
	if dw == 0 {
		dw = 1
	}
	if dh == 0 {
		dh = 1
	}

	x0 := (size - dw) / 2
	y0 := (size - dh) / 2
	target := image.Rect(x0, y0, x0+dw, y0+dh)

	xdraw.CatmullRom.Scale(dst, target, src, bounds, xdraw.Over, nil)
	return dst
}

func maxSide(img image.Image) int {
	b := img.Bounds()
	if b.Dx() > b.Dy() {
		return b.Dx()
	}
	return b.Dy()
}
