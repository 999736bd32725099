package wad2

import "strings"

// Palette index conventions of the software renderer.
const (
	transparentIndex = 255 // honored only by '{'-prefixed cutout textures
	fullbrightStart  = 224 // 224-255 glow, except on sky and liquids
)

// Texture is the unit exposed to consumers: an RGBA float color buffer
// and, for glowing textures, a parallel emission buffer. Rows are
// ordered bottom to top, flipped relative to lump storage, which is
// what the downstream material pipeline consumes.
type Texture struct {
	Name            string // normalized registry key
	Width, Height   int
	Color           []float32 // RGBA, len Width*Height*4
	Emission        []float32 // same layout; meaningful when HasEmission
	HasEmission     bool
	IsSequenceFrame bool
	SequenceKey     string
	Tags            []string // containers this name was seen in
}

// buildTexture classifies an index buffer against its palette. Index
// 255 is transparent only on '{'-prefixed cutout textures. Indices 224+
// are fullbright except on sky and liquid ('*') textures, which reuse
// the range for ordinary color. Fullbright texels are duplicated into
// the color buffer so the texture still looks right without an
// emission pass, unless cutOutLuma blacks them out for more accurate
// glow compositing.
func buildTexture(name string, lump *DecodedLump, cutOutLuma bool) *Texture {
	w, h := lump.Width, lump.Height
	t := &Texture{
		Name:     name,
		Width:    w,
		Height:   h,
		Color:    make([]float32, w*h*4),
		Emission: make([]float32, w*h*4),
	}
	for i := 3; i < len(t.Emission); i += 4 {
		t.Emission[i] = 1
	}

	cutout := strings.HasPrefix(name, "{")
	noGlow := strings.HasPrefix(name, "sky") || strings.HasPrefix(name, "*")

	for row := 0; row < h; row++ {
		for clm := 0; clm < w; clm++ {
			v := lump.Indices[row*w+clm]
			r, g, b := lump.Palette.floats(v)
			transparent := v == transparentIndex && cutout
			fullbright := v >= fullbrightStart && !noGlow

			dst := ((h-1-row)*w + clm) * 4
			switch {
			case !fullbright || transparent:
				alpha := float32(1)
				if transparent {
					alpha = 0
				}
				t.Color[dst], t.Color[dst+1], t.Color[dst+2], t.Color[dst+3] = r, g, b, alpha
			case cutOutLuma:
				t.Color[dst], t.Color[dst+1], t.Color[dst+2], t.Color[dst+3] = 0, 0, 0, 1
				t.Emission[dst], t.Emission[dst+1], t.Emission[dst+2], t.Emission[dst+3] = r, g, b, 1
				t.HasEmission = true
			default:
				t.Color[dst], t.Color[dst+1], t.Color[dst+2], t.Color[dst+3] = r, g, b, 1
				t.Emission[dst], t.Emission[dst+1], t.Emission[dst+2], t.Emission[dst+3] = r, g, b, 1
				t.HasEmission = true
			}
		}
	}
	return t
}
