package wad2

import (
	"bytes"
	"path/filepath"
	"strings"
)

// String16 is the fixed-width name field used by WAD2 directory entries
// and miptexture headers. Null-terminated for short names.
type String16 [16]byte

// String converts String16 to string
func (s String16) String() string {
	i := bytes.IndexByte(s[:], 0)
	if i == -1 {
		i = len(s)
	}
	return string(s[0:i])
}

// normalizeName produces the registry key for a lump name: lowercased,
// with any NUL padding already stripped by String16.
func normalizeName(name string) string {
	if i := strings.IndexByte(name, 0); i >= 0 {
		name = name[:i]
	}
	return strings.ToLower(name)
}

// looseName derives a texture name for a standalone image file. The
// extension is always dropped and '#' maps to '*', so water textures
// saved under filesystem-safe names get their engine name back. With
// relative naming the name is the path below base, slash-separated.
func looseName(path string, relative bool, base string) string {
	name := filepath.Base(path)
	if relative && base != "" {
		if rel, err := filepath.Rel(base, path); err != nil || strings.HasPrefix(rel, "..") {
			logger.Printf("Could not build relative path for %v", path)
		} else {
			name = filepath.ToSlash(rel)
		}
	}
	if i := strings.LastIndexByte(name, '.'); i > 0 {
		name = name[:i]
	}
	name = strings.ReplaceAll(name, "#", "*")
	return normalizeName(name)
}
