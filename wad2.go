// Package wad2 decodes Quake's texture archives: WAD2 files and the
// texture directory embedded in BSP maps. Lumps are classified into
// renderable RGBA buffers with the renderer's transparency and
// fullbright conventions applied.
// The file format is documented in the Quake specs:
// https://www.gamers.org/dEngine/quake/spec/quake-spec34/qkspec_7.htm

package wad2

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// Lump type tags as stored in the WAD2 directory.
const (
	TypeMiptex    byte = 'D'
	TypeStatusBar byte = 'B'
	TypePalette   byte = '@'
)

// bspVersion is the legacy BSP29 version tag; newer maps carry the
// "BSP2" magic instead.
const bspVersion = 29

var (
	// ErrCorruptContainer means the header or directory could not be
	// read in full. It aborts the current file only.
	ErrCorruptContainer = errors.New("corrupt container")
	// ErrUnsupportedFormat means the file matched none of WAD2, BSP or a
	// loadable image.
	ErrUnsupportedFormat = errors.New("unsupported format")
)

// ContainerKind identifies what kind of archive a file turned out to be.
type ContainerKind int

const (
	ContainerWAD2 ContainerKind = iota
	ContainerBSP
	ContainerForeign // standalone image, no lump directory
)

type binHeader struct {
	NumLumps     int32
	InfoTableOfs int32
}

type binLumpInfo struct {
	Filepos     int32
	DiskSize    int32
	Size        int32
	Type        byte
	Compression byte
	Pad         [2]byte
	Name        String16
}

// LumpInfo describes one directory entry. BSP-derived entries have no
// declared name; the miptexture header carries it instead.
type LumpInfo struct {
	Name        string
	Filepos     int
	Size        int
	Type        byte
	Compression byte
}

// ReadDirectory sniffs the archive format and enumerates its lump
// directory. Foreign files yield ContainerForeign with no entries; the
// caller hands those to the loose-image loader.
func ReadDirectory(r io.ReadSeeker) (ContainerKind, []LumpInfo, error) {
	var magic [4]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil {
		return 0, nil, fmt.Errorf("%w: reading magic: %v", ErrCorruptContainer, err)
	}

	switch {
	case string(magic[:]) == "WAD2":
		lumpInfos, err := readWADDirectory(r)
		return ContainerWAD2, lumpInfos, err
	case string(magic[:]) == "BSP2",
		binary.LittleEndian.Uint32(magic[:]) == bspVersion:
		lumpInfos, err := readBSPDirectory(r)
		return ContainerBSP, lumpInfos, err
	default:
		return ContainerForeign, nil, nil
	}
}

// readWADDirectory reads the WAD2 info table: an entry count and table
// offset, then fixed 32-byte records.
func readWADDirectory(r io.ReadSeeker) ([]LumpInfo, error) {
	var header binHeader
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return nil, fmt.Errorf("%w: reading header: %v", ErrCorruptContainer, err)
	}
	if err := seek(r, int64(header.InfoTableOfs)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptContainer, err)
	}

	lumpInfos := make([]LumpInfo, 0, header.NumLumps)
	for i := 0; i < int(header.NumLumps); i++ {
		var binInfo binLumpInfo
		if err := binary.Read(r, binary.LittleEndian, &binInfo); err != nil {
			return nil, fmt.Errorf("%w: reading info table: %v", ErrCorruptContainer, err)
		}
		lumpInfos = append(lumpInfos, LumpInfo{
			Name:        binInfo.Name.String(),
			Filepos:     int(binInfo.Filepos),
			Size:        int(binInfo.Size),
			Type:        binInfo.Type,
			Compression: binInfo.Compression,
		})
	}
	return lumpInfos, nil
}

// readBSPDirectory locates the BSP texture lump and synthesizes one
// miptexture entry per embedded offset. The header is 30 ints (15
// directory pairs, the version already consumed); index 4 is the
// texture lump offset. Names are recovered later from the miptexture
// sub-headers.
func readBSPDirectory(r io.ReadSeeker) ([]LumpInfo, error) {
	var header [30]int32
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return nil, fmt.Errorf("%w: reading BSP header: %v", ErrCorruptContainer, err)
	}
	dirOffset := header[4]
	if err := seek(r, int64(dirOffset)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptContainer, err)
	}

	var numEntries int32
	if err := binary.Read(r, binary.LittleEndian, &numEntries); err != nil {
		return nil, fmt.Errorf("%w: reading texture directory: %v", ErrCorruptContainer, err)
	}
	lumpInfos := make([]LumpInfo, 0, numEntries)
	for i := 0; i < int(numEntries); i++ {
		var offset int32
		if err := binary.Read(r, binary.LittleEndian, &offset); err != nil {
			return nil, fmt.Errorf("%w: reading texture directory: %v", ErrCorruptContainer, err)
		}
		lumpInfos = append(lumpInfos, LumpInfo{
			Filepos: int(offset + dirOffset),
			Type:    TypeMiptex,
		})
	}
	return lumpInfos, nil
}

// seek moves to an absolute file offset, verifying the target was
// actually reached.
func seek(r io.ReadSeeker, offset int64) error {
	off, err := r.Seek(offset, io.SeekStart)
	if err != nil {
		return err
	}
	if off != offset {
		return fmt.Errorf("seek failed")
	}
	return nil
}

// readBytes reads an exact count from the current position.
func readBytes(r io.Reader, n int) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}
