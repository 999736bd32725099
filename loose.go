package wad2

import (
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strings"

	// Formats accepted on the loose-image fallback path. PCX and
	// indexed TGA stay unsupported, as in the engine tooling.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
)

// loadImagePixels decodes a standalone image file into an RGBA float
// buffer with rows flipped bottom to top, matching the buffers built
// from indexed lumps. A file that does not decode to a usable image
// reports ErrUnsupportedFormat.
func loadImagePixels(path string) (width, height int, pix []float32, err error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return 0, 0, nil, fmt.Errorf("%w: %v", ErrUnsupportedFormat, err)
	}
	bounds := img.Bounds()
	width, height = bounds.Dx(), bounds.Dy()
	if width == 0 || height == 0 {
		return 0, 0, nil, fmt.Errorf("%w: empty image", ErrUnsupportedFormat)
	}

	pix = make([]float32, width*height*4)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			c := color.NRGBAModel.Convert(img.At(bounds.Min.X+x, bounds.Min.Y+y)).(color.NRGBA)
			dst := ((height-1-y)*width + x) * 4
			pix[dst] = float32(c.R) / 255
			pix[dst+1] = float32(c.G) / 255
			pix[dst+2] = float32(c.B) / 255
			pix[dst+3] = float32(c.A) / 255
		}
	}
	return width, height, pix, nil
}

// glowSiblingPath names the companion emission image for a loose
// texture: the same file with the emit suffix before the extension.
// Only the final path element is split, so dotted directory names stay
// intact.
func glowSiblingPath(path, emitSuffix string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + emitSuffix + ext
}
