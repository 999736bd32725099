package wad2

import (
	"bytes"
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

type lumpSpec struct {
	name        string
	typ         byte
	compression byte
	data        []byte
}

// buildWAD2 lays out a synthetic archive: header, payloads, then the
// directory table.
func buildWAD2(t *testing.T, lumps ...lumpSpec) []byte {
	t.Helper()
	var payloads bytes.Buffer
	offsets := make([]int32, len(lumps))
	pos := int32(12) // magic + count + dir offset
	for i, l := range lumps {
		offsets[i] = pos
		payloads.Write(l.data)
		pos += int32(len(l.data))
	}

	var buf bytes.Buffer
	buf.WriteString("WAD2")
	if err := binary.Write(&buf, binary.LittleEndian, int32(len(lumps))); err != nil {
		t.Fatal(err)
	}
	if err := binary.Write(&buf, binary.LittleEndian, pos); err != nil {
		t.Fatal(err)
	}
	buf.Write(payloads.Bytes())
	for i, l := range lumps {
		var name String16
		copy(name[:], l.name)
		entry := binLumpInfo{
			Filepos:     offsets[i],
			DiskSize:    int32(len(l.data)),
			Size:        int32(len(l.data)),
			Type:        l.typ,
			Compression: l.compression,
			Name:        name,
		}
		if err := binary.Write(&buf, binary.LittleEndian, entry); err != nil {
			t.Fatal(err)
		}
	}
	return buf.Bytes()
}

// miptexPayload builds a miptexture lump holding only the base mip.
func miptexPayload(t *testing.T, name string, width, height int, indices []byte) []byte {
	t.Helper()
	if len(indices) != width*height {
		t.Fatalf("bad index buffer: %v for %vx%v", len(indices), width, height)
	}
	var header binMiptexHeader
	copy(header.Name[:], name)
	header.Width = uint32(width)
	header.Height = uint32(height)
	header.MipOffsets[0] = 40 // directly after the header
	var buf bytes.Buffer
	if err := binary.Write(&buf, binary.LittleEndian, header); err != nil {
		t.Fatal(err)
	}
	buf.Write(indices)
	return buf.Bytes()
}

// buildBSP wraps miptexture payloads in a minimal BSP29 shell: version,
// 30-int header with the texture directory offset at index 4.
func buildBSP(t *testing.T, miptexes ...[]byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := binary.Write(&buf, binary.LittleEndian, int32(29)); err != nil {
		t.Fatal(err)
	}
	var header [30]int32
	dirOffset := int32(4 + 30*4)
	header[4] = dirOffset
	if err := binary.Write(&buf, binary.LittleEndian, header); err != nil {
		t.Fatal(err)
	}
	// texture directory: count, then per-entry relative offsets
	if err := binary.Write(&buf, binary.LittleEndian, int32(len(miptexes))); err != nil {
		t.Fatal(err)
	}
	rel := int32(4 + 4*len(miptexes))
	for _, m := range miptexes {
		if err := binary.Write(&buf, binary.LittleEndian, rel); err != nil {
			t.Fatal(err)
		}
		rel += int32(len(m))
	}
	for _, m := range miptexes {
		buf.Write(m)
	}
	return buf.Bytes()
}

func writeTemp(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestReadDirectoryWAD2(t *testing.T) {
	archive := buildWAD2(t,
		lumpSpec{name: "WALL1", typ: TypeMiptex, data: miptexPayload(t, "WALL1", 2, 2, []byte{0, 1, 2, 3})},
		lumpSpec{name: "NUM0", typ: TypeStatusBar, data: make([]byte, 8+4)},
	)
	kind, lumpInfos, err := ReadDirectory(bytes.NewReader(archive))
	if err != nil {
		t.Fatalf("ReadDirectory failed: %v", err)
	}
	if kind != ContainerWAD2 {
		t.Fatalf("kind = %v, want WAD2", kind)
	}
	if len(lumpInfos) != 2 {
		t.Fatalf("got %v entries, want 2", len(lumpInfos))
	}
	if lumpInfos[0].Name != "WALL1" || lumpInfos[0].Type != TypeMiptex {
		t.Fatalf("unexpected first entry: %+v", lumpInfos[0])
	}
	if lumpInfos[1].Name != "NUM0" || lumpInfos[1].Filepos != 12+len(miptexPayload(t, "WALL1", 2, 2, []byte{0, 1, 2, 3})) {
		t.Fatalf("unexpected second entry: %+v", lumpInfos[1])
	}
}

func TestReadDirectoryBSP(t *testing.T) {
	bsp := buildBSP(t,
		miptexPayload(t, "city2_5", 2, 2, []byte{9, 9, 9, 9}),
		miptexPayload(t, "sky4", 2, 2, []byte{5, 6, 7, 8}),
	)
	kind, lumpInfos, err := ReadDirectory(bytes.NewReader(bsp))
	if err != nil {
		t.Fatalf("ReadDirectory failed: %v", err)
	}
	if kind != ContainerBSP {
		t.Fatalf("kind = %v, want BSP", kind)
	}
	if len(lumpInfos) != 2 {
		t.Fatalf("got %v entries, want 2", len(lumpInfos))
	}
	for _, info := range lumpInfos {
		if info.Type != TypeMiptex {
			t.Fatalf("BSP entry type = %q, want miptex", info.Type)
		}
		if info.Name != "" {
			t.Fatalf("BSP entry carries a name: %q", info.Name)
		}
	}
	// absolute offset: directory offset + count word + two offset words
	if want := 4 + 30*4 + 4 + 8; lumpInfos[0].Filepos != want {
		t.Fatalf("first miptex offset = %v, want %v", lumpInfos[0].Filepos, want)
	}
}

func TestReadDirectoryForeign(t *testing.T) {
	kind, lumpInfos, err := ReadDirectory(bytes.NewReader([]byte("\x89PNG\r\n")))
	if err != nil {
		t.Fatalf("ReadDirectory failed: %v", err)
	}
	if kind != ContainerForeign {
		t.Fatalf("kind = %v, want foreign", kind)
	}
	if lumpInfos != nil {
		t.Fatalf("foreign file produced %v entries", len(lumpInfos))
	}
}

func TestReadDirectoryTruncated(t *testing.T) {
	for _, data := range [][]byte{
		{},
		[]byte("WA"),
		[]byte("WAD2\x05\x00"),
		[]byte("BSP2\x01\x02"),
	} {
		if _, _, err := ReadDirectory(bytes.NewReader(data)); !errors.Is(err, ErrCorruptContainer) {
			t.Fatalf("%q: err = %v, want ErrCorruptContainer", data, err)
		}
	}
	// short info table
	archive := buildWAD2(t, lumpSpec{name: "WALL1", typ: TypeMiptex, data: []byte{1}})
	_, _, err := ReadDirectory(bytes.NewReader(archive[:len(archive)-8]))
	if !errors.Is(err, ErrCorruptContainer) {
		t.Fatalf("truncated directory: err = %v, want ErrCorruptContainer", err)
	}
}

func TestImportBatchContinuesPastBadFile(t *testing.T) {
	bad := writeTemp(t, "broken.wad", []byte("WAD2\x05"))
	good := writeTemp(t, "good.wad", buildWAD2(t,
		lumpSpec{name: "WALL1", typ: TypeMiptex, data: miptexPayload(t, "WALL1", 1, 1, []byte{0})},
	))
	s := NewSession(DefaultOptions())
	s.ImportFiles([]string{bad, good})
	if _, ok := s.Texture("wall1"); !ok {
		t.Fatalf("good file was not imported after bad file")
	}
	if len(s.TexturesList) != 1 {
		t.Fatalf("got %v textures, want 1", len(s.TexturesList))
	}
}
