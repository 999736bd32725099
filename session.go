package wad2

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Session is one import run: the texture registry, the stashed
// animation frames and the options in force. Duplicate detection spans
// every file imported into the same session. Files may be imported
// from separate goroutines; the registry behaves as a test-and-set
// keyed by normalized name.
type Session struct {
	opts Options

	mu           sync.Mutex
	Textures     map[string]*Texture
	TexturesList []*Texture // in decode order
	seqs         map[string][]*Texture
}

// NewSession creates an empty import session.
func NewSession(opts Options) *Session {
	if opts.EmitSuffix == "" {
		opts.EmitSuffix = "_luma"
	}
	return &Session{
		opts:     opts,
		Textures: make(map[string]*Texture),
		seqs:     make(map[string][]*Texture),
	}
}

// ImportFiles imports a batch. A file that fails to parse contributes
// zero textures and is reported as a warning; the batch continues.
func (s *Session) ImportFiles(paths []string) {
	for _, path := range paths {
		if err := s.ImportFile(path); err != nil {
			logger.Printf("Skipped %v: %v", filepath.Base(path), err)
		}
	}
}

// ImportFile decodes one archive (or loose image) into the session.
func (s *Session) ImportFile(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	kind, lumpInfos, err := ReadDirectory(file)
	if err != nil {
		return err
	}
	if kind == ContainerForeign {
		return s.importLoose(path)
	}

	// Archives are tagged by file name, loose images by folder.
	tag := filepath.Base(path)
	active := &DefaultPalette

	for _, info := range lumpInfos {
		if info.Compression != 0 {
			logger.Printf("Skipping compressed lump %q in %v", info.Name, tag)
			continue
		}
		if info.Filepos < 0 {
			logger.Printf("Skipping missing lump %q in %v", info.Name, tag)
			continue
		}
		lump, custom, err := decodeLump(file, info, active)
		if errors.Is(err, ErrUnrecognizedLump) {
			logger.Printf("%v in %v", err, tag)
			continue
		}
		if err != nil {
			return err
		}
		if custom != nil {
			// Palette lumps rebind the palette for the rest of this
			// archive only.
			active = custom
		}
		s.resolve(normalizeName(lump.Name), tag, func() *Texture {
			return buildTexture(normalizeName(lump.Name), lump, s.opts.CutOutLuma)
		})
	}
	return nil
}

// resolve runs the duplicate and sequence bookkeeping for one decoded
// texture name. build is only invoked when the texture is actually
// needed, so already-seen names are not redecoded.
func (s *Session) resolve(name, tag string, build func() *Texture) {
	if s.tagExisting(name, tag) {
		return
	}
	key, frame, stash := frameKey(name)
	if stash {
		if s.stashed(key, name) {
			return
		}
		t := build()
		t.IsSequenceFrame = true
		t.SequenceKey = key
		t.Tags = append(t.Tags, tag)
		s.stashFrame(key, t)
		return
	}
	t := build()
	if frame {
		t.IsSequenceFrame = true
		t.SequenceKey = key
	}
	s.register(t, tag)
}

// tagExisting records another container sighting of an already-decoded
// name. Reports whether the name existed.
func (s *Session) tagExisting(name, tag string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.Textures[name]
	if !ok {
		return false
	}
	addTag(t, tag)
	return true
}

func addTag(t *Texture, tag string) {
	for _, existing := range t.Tags {
		if existing == tag {
			return
		}
	}
	t.Tags = append(t.Tags, tag)
}

// register publishes a standalone texture. If another goroutine won
// the race for the name, only the tag is recorded.
func (s *Session) register(t *Texture, tag string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.Textures[t.Name]; ok {
		addTag(existing, tag)
		return
	}
	t.Tags = append(t.Tags, tag)
	s.Textures[t.Name] = t
	s.TexturesList = append(s.TexturesList, t)
}

// importLoose brings in a standalone image file: pixels are used
// verbatim, and a sibling file carrying the emit suffix becomes the
// emission buffer directly.
func (s *Session) importLoose(path string) error {
	tag := filepath.Base(filepath.Dir(path))
	name := looseName(path, s.opts.RelativeNaming, s.opts.BasePath)
	if strings.HasSuffix(name, s.opts.EmitSuffix) {
		// Glow images are picked up through their base texture.
		return nil
	}

	width, height, pix, err := loadImagePixels(path)
	if err != nil {
		return err
	}
	t := &Texture{
		Name:     name,
		Width:    width,
		Height:   height,
		Color:    pix,
		Emission: make([]float32, width*height*4),
	}
	for i := 3; i < len(t.Emission); i += 4 {
		t.Emission[i] = 1
	}

	lumaPath := glowSiblingPath(path, s.opts.EmitSuffix)
	if _, err := os.Stat(lumaPath); err == nil {
		ew, eh, epix, err := loadImagePixels(lumaPath)
		switch {
		case err != nil:
			logger.Printf("Skipped glow image %v: %v", filepath.Base(lumaPath), err)
		case ew != width || eh != height:
			logger.Printf("Glow image %v is %vx%v, want %vx%v",
				filepath.Base(lumaPath), ew, eh, width, height)
		default:
			t.Emission = epix
			t.HasEmission = true
		}
	}

	s.resolve(name, tag, func() *Texture { return t })
	return nil
}

// Texture returns the registered texture for a normalized name.
func (s *Session) Texture(name string) (*Texture, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.Textures[name]
	return t, ok
}

// String implements Stringer for import summaries.
func (s *Session) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fmt.Sprintf("%v textures, %v sequences", len(s.TexturesList), len(s.seqs))
}
