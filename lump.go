package wad2

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// ErrUnrecognizedLump means the directory entry's type tag is not in
// the known set. The lump is skipped and archive processing continues.
var ErrUnrecognizedLump = errors.New("unrecognized lump")

// The console images are raw index buffers with no header, identified
// by name alone.
const (
	conCharsName               = "CONCHARS"
	conCharsWidth, conCharsHgt = 128, 128
	conBackName                = "CONBACK"
	conBackWidth, conBackHgt   = 320, 200
)

// maxLumpDim bounds the dimensions a lump may declare. Quake-era
// textures top out at a few hundred texels a side; anything near the
// cap is a hostile or corrupt header, caught before it sizes an
// allocation.
const maxLumpDim = 1 << 15

type binMiptexHeader struct {
	Name       String16
	Width      uint32
	Height     uint32
	MipOffsets [4]uint32
}

type binStatusBarHeader struct {
	Width  int32
	Height int32
}

// DecodedLump is one extracted indexed image: a raw palette-index
// buffer (row-major, top to bottom as stored) plus the palette it is
// classified against.
type DecodedLump struct {
	Name    string
	Width   int
	Height  int
	Indices []byte
	Palette *Palette
}

// decodeLump extracts one lump's index buffer. The name checks run
// before the type tag: CONCHARS and CONBACK are headerless raw buffers
// whose directory entries reuse ordinary tags. Palette lumps return a
// parsed custom palette, which the caller installs as the active
// palette for the rest of the archive.
func decodeLump(r io.ReadSeeker, info LumpInfo, active *Palette) (*DecodedLump, *Palette, error) {
	if err := seek(r, int64(info.Filepos)); err != nil {
		return nil, nil, fmt.Errorf("%w: lump %q: %v", ErrCorruptContainer, info.Name, err)
	}

	switch {
	case info.Name == conCharsName:
		return decodeRaw(r, info.Name, conCharsWidth, conCharsHgt, active)

	case info.Name == conBackName:
		return decodeRaw(r, info.Name, conBackWidth, conBackHgt, active)

	case info.Type == TypeMiptex:
		var header binMiptexHeader
		if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
			return nil, nil, fmt.Errorf("%w: miptex header: %v", ErrCorruptContainer, err)
		}
		w, h := int(header.Width), int(header.Height)
		if err := checkDims(header.Name.String(), w, h); err != nil {
			return nil, nil, err
		}
		if err := seek(r, int64(info.Filepos)+int64(header.MipOffsets[0])); err != nil {
			return nil, nil, fmt.Errorf("%w: %v", ErrCorruptContainer, err)
		}
		indices, err := readBytes(r, w*h)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: miptex pixels: %v", ErrCorruptContainer, err)
		}
		return &DecodedLump{
			Name:    header.Name.String(),
			Width:   w,
			Height:  h,
			Indices: indices,
			Palette: active,
		}, nil, nil

	case info.Type == TypeStatusBar:
		var header binStatusBarHeader
		if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
			return nil, nil, fmt.Errorf("%w: status bar header: %v", ErrCorruptContainer, err)
		}
		return decodeRaw(r, info.Name, int(header.Width), int(header.Height), active)

	case info.Type == TypePalette:
		raw, err := readBytes(r, 256*3)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: palette lump: %v", ErrCorruptContainer, err)
		}
		custom := new(Palette)
		for i := range custom {
			custom[i] = RGB{raw[i*3], raw[i*3+1], raw[i*3+2]}
		}
		// The lump itself decodes as a 16x16 ramp of every index, shown
		// in the palette it defines.
		indices := make([]byte, 256)
		for i := range indices {
			indices[i] = byte(i)
		}
		return &DecodedLump{
			Name:    info.Name,
			Width:   16,
			Height:  16,
			Indices: indices,
			Palette: custom,
		}, custom, nil

	default:
		return nil, nil, fmt.Errorf("%w: %q (type %q)", ErrUnrecognizedLump, info.Name, info.Type)
	}
}

// checkDims rejects dimensions a well-formed lump cannot declare.
func checkDims(name string, width, height int) error {
	if width <= 0 || height <= 0 || width > maxLumpDim || height > maxLumpDim {
		return fmt.Errorf("%w: lump %q declares %vx%v", ErrCorruptContainer, name, width, height)
	}
	return nil
}

// decodeRaw reads a headerless width*height index buffer.
func decodeRaw(r io.Reader, name string, width, height int, active *Palette) (*DecodedLump, *Palette, error) {
	if err := checkDims(name, width, height); err != nil {
		return nil, nil, err
	}
	indices, err := readBytes(r, width*height)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: lump %q: %v", ErrCorruptContainer, name, err)
	}
	return &DecodedLump{
		Name:    name,
		Width:   width,
		Height:  height,
		Indices: indices,
		Palette: active,
	}, nil, nil
}
