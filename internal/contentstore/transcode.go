package contentstore

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"

	"github.com/h2non/filetype"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"

	"sceneexport/internal/geometry"
)

// TranscodeToPNG decodes an image in a format runtimes cannot be relied on
// to read and re-encodes it as PNG. The decoder is picked from the content
// signature first and the file extension second, since TGA has no magic.
func TranscodeToPNG(data []byte, ext string) ([]byte, error) {
	img, err := DecodeImage(data, ext)
	if err != nil {
		return nil, err
	}
	return geometry.EncodePNG(img)
}

// DecodeImage decodes the supported texture formats. ext is the lowercased
// source extension and only matters for TGA.
func DecodeImage(data []byte, ext string) (image.Image, error) {
	kind, _ := filetype.Match(data)
	switch kind.Extension {
	case "tif":
		return tiff.Decode(bytes.NewReader(data))
	case "bmp":
		return bmp.Decode(bytes.NewReader(data))
	case "png", "jpg":
		img, _, err := image.Decode(bytes.NewReader(data))
		return img, err
	case "psd":
		return nil, fmt.Errorf("no decoder for %s", kind.MIME.Value)
	}
	if ext == ".tga" {
		return decodeTGA(data)
	}
	return nil, fmt.Errorf("unrecognized image content (%s)", ext)
}
