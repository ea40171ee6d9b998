package geometry

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"

	"github.com/anthonynsimon/bild/transform"
)

// EncodePNG encodes img as PNG.
func EncodePNG(img image.Image) ([]byte, error) {
	if img == nil {
		return nil, errors.New("image is nil")
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

func unitToByte(v float32) uint8 {
	if math.IsNaN(float64(v)) || v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(math.Round(float64(v) * 255))
}

// hostRaster builds a non-premultiplied raster from rows stored bottom-up,
// as host textures are, writing them in top-down PNG order. Channels are
// independent data, so alpha must not scale the color channels.
func hostRaster(width, height int, at func(x, y int) color.NRGBA) image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetNRGBA(x, height-1-y, at(x, y))
		}
	}
	return img
}

// HeightmapPNG renders normalized heights (row y, column x, bottom-up) as an
// opaque grayscale PNG.
func HeightmapPNG(heights [][]float32) ([]byte, error) {
	h := len(heights)
	if h == 0 || len(heights[0]) == 0 {
		return nil, errors.New("heightmap is empty")
	}
	w := len(heights[0])
	img := hostRaster(w, h, func(x, y int) color.NRGBA {
		var v float32
		if x < len(heights[y]) {
			v = heights[y][x]
		}
		g := unitToByte(v)
		return color.NRGBA{R: g, G: g, B: g, A: 255}
	})
	return EncodePNG(img)
}

// SplatmapPNG packs the first four blend layers of alphamaps (row y, column
// x, layer) into RGBA.
func SplatmapPNG(alphamaps [][][]float32) ([]byte, error) {
	h := len(alphamaps)
	if h == 0 || len(alphamaps[0]) == 0 {
		return nil, errors.New("alphamap is empty")
	}
	w := len(alphamaps[0])
	img := hostRaster(w, h, func(x, y int) color.NRGBA {
		var ch [4]uint8
		if x < len(alphamaps[y]) {
			for l := 0; l < 4 && l < len(alphamaps[y][x]); l++ {
				ch[l] = unitToByte(alphamaps[y][x][l])
			}
		}
		return color.NRGBA{R: ch[0], G: ch[1], B: ch[2], A: ch[3]}
	})
	return EncodePNG(img)
}

// CubemapLayout names how six faces are packed into one image.
type CubemapLayout int

const (
	LayoutUnknown CubemapLayout = iota
	LayoutHorizontalStrip
	LayoutVerticalStrip
	LayoutHorizontalCross
)

// DetectCubemapLayout infers the face packing from the image aspect ratio.
func DetectCubemapLayout(b image.Rectangle) CubemapLayout {
	w, h := b.Dx(), b.Dy()
	switch {
	case w <= 0 || h <= 0:
		return LayoutUnknown
	case w == 6*h:
		return LayoutHorizontalStrip
	case h == 6*w:
		return LayoutVerticalStrip
	case 3*w == 4*h:
		return LayoutHorizontalCross
	default:
		return LayoutUnknown
	}
}

// crossCells maps +X, -X, +Y, -Y, +Z, -Z to (column, row) in a 4x3 cross.
var crossCells = [6][2]int{{2, 1}, {0, 1}, {1, 0}, {1, 2}, {1, 1}, {3, 1}}

// SliceCubemap cuts a packed cubemap into faces ordered +X, -X, +Y, -Y, +Z,
// -Z, matching the east, west, up, down, north, south face order.
func SliceCubemap(img image.Image) ([6]image.Image, error) {
	var faces [6]image.Image
	if img == nil {
		return faces, errors.New("cubemap image is nil")
	}
	b := img.Bounds()
	var size int
	var origin func(i int) image.Point
	switch DetectCubemapLayout(b) {
	case LayoutHorizontalStrip:
		size = b.Dy()
		origin = func(i int) image.Point { return image.Pt(i*size, 0) }
	case LayoutVerticalStrip:
		size = b.Dx()
		origin = func(i int) image.Point { return image.Pt(0, i*size) }
	case LayoutHorizontalCross:
		size = b.Dx() / 4
		origin = func(i int) image.Point {
			return image.Pt(crossCells[i][0]*size, crossCells[i][1]*size)
		}
	default:
		return faces, fmt.Errorf("unsupported cubemap layout %dx%d", b.Dx(), b.Dy())
	}
	for i := range faces {
		o := b.Min.Add(origin(i))
		faces[i] = transform.Crop(img, image.Rect(o.X, o.Y, o.X+size, o.Y+size))
	}
	return faces, nil
}
