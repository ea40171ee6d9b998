package contentstore

import (
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"image/color"
)

const tgaHeaderSize = 18

// decodeTGA reads uncompressed and RLE true-color or grayscale Truevision
// images (types 2, 3, 10 and 11).
func decodeTGA(data []byte) (image.Image, error) {
	if len(data) < tgaHeaderSize {
		return nil, errors.New("tga: short header")
	}
	idLen := int(data[0])
	colorMapType := data[1]
	imageType := data[2]
	colorMapLen := int(binary.LittleEndian.Uint16(data[5:7]))
	colorMapDepth := int(data[7])
	width := int(binary.LittleEndian.Uint16(data[12:14]))
	height := int(binary.LittleEndian.Uint16(data[14:16]))
	depth := int(data[16])
	descriptor := data[17]

	if width == 0 || height == 0 {
		return nil, errors.New("tga: empty image")
	}
	rle := false
	gray := false
	switch imageType {
	case 2:
	case 3:
		gray = true
	case 10:
		rle = true
	case 11:
		rle, gray = true, true
	default:
		return nil, fmt.Errorf("tga: unsupported image type %d", imageType)
	}
	bpp := depth / 8
	switch {
	case gray && depth != 8:
		return nil, fmt.Errorf("tga: unsupported grayscale depth %d", depth)
	case !gray && depth != 16 && depth != 24 && depth != 32:
		return nil, fmt.Errorf("tga: unsupported depth %d", depth)
	}

	offset := tgaHeaderSize + idLen
	if colorMapType == 1 {
		offset += colorMapLen * ((colorMapDepth + 7) / 8)
	}
	if offset > len(data) {
		return nil, errors.New("tga: truncated header")
	}

	pixels := width * height
	raw := make([]byte, 0, pixels*bpp)
	src := data[offset:]
	if !rle {
		if len(src) < pixels*bpp {
			return nil, errors.New("tga: truncated pixel data")
		}
		raw = append(raw, src[:pixels*bpp]...)
	} else {
		for len(raw) < pixels*bpp {
			if len(src) == 0 {
				return nil, errors.New("tga: truncated rle data")
			}
			hdr := src[0]
			src = src[1:]
			count := int(hdr&0x7f) + 1
			if hdr&0x80 != 0 {
				if len(src) < bpp {
					return nil, errors.New("tga: truncated rle packet")
				}
				for i := 0; i < count; i++ {
					raw = append(raw, src[:bpp]...)
				}
				src = src[bpp:]
			} else {
				n := count * bpp
				if len(src) < n {
					return nil, errors.New("tga: truncated raw packet")
				}
				raw = append(raw, src[:n]...)
				src = src[n:]
			}
		}
		raw = raw[:pixels*bpp]
	}

	topDown := descriptor&0x20 != 0
	rightToLeft := descriptor&0x10 != 0
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for i := 0; i < pixels; i++ {
		x, y := i%width, i/width
		if !topDown {
			y = height - 1 - y
		}
		if rightToLeft {
			x = width - 1 - x
		}
		img.SetNRGBA(x, y, tgaPixel(raw[i*bpp:(i+1)*bpp], gray))
	}
	return img, nil
}

func tgaPixel(p []byte, gray bool) color.NRGBA {
	switch {
	case gray:
		return color.NRGBA{R: p[0], G: p[0], B: p[0], A: 255}
	case len(p) == 2:
		v := binary.LittleEndian.Uint16(p)
		expand := func(c uint16) uint8 { return uint8(c<<3 | c>>2) }
		return color.NRGBA{
			R: expand((v >> 10) & 0x1f),
			G: expand((v >> 5) & 0x1f),
			B: expand(v & 0x1f),
			A: 255,
		}
	case len(p) == 3:
		return color.NRGBA{R: p[2], G: p[1], B: p[0], A: 255}
	default:
		return color.NRGBA{R: p[2], G: p[1], B: p[0], A: p[3]}
	}
}
