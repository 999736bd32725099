package wad2

import (
	"sort"

	"golang.org/x/exp/maps"
)

// AnimationGroup is one animated texture family: the frames that share
// a normalized sequence key, ordered by ascending name (which is
// ascending frame digit or letter).
type AnimationGroup struct {
	Key      string
	Frames   []*Texture
	Emission []*Texture // the frames that glow, in the same order
}

// frameKey normalizes an animation-frame name to its sequence key:
// the second character becomes '0' for digit-style frames and 'a' for
// alternate-style frames, the suffix is kept. stash reports whether
// the frame is a follow-on frame to be held back rather than
// finalized immediately ('+0'/'+a' frames are the sequence bases and
// stay standalone). Names of a bare "+" are not frames at all.
func frameKey(name string) (key string, frame, stash bool) {
	if len(name) < 2 || name[0] != '+' {
		return "", false, false
	}
	c := name[1]
	switch {
	case c == '0' || c == 'a':
		return name, true, false
	case c >= '0' && c <= '9':
		return "+0" + name[2:], true, true
	default:
		return "+a" + name[2:], true, true
	}
}

// stashFrame records a follow-on animation frame under its sequence
// key. A frame already stashed under the same name is a duplicate and
// is dropped.
func (s *Session) stashFrame(key string, t *Texture) (fresh bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.seqs[key] {
		if existing.Name == t.Name {
			return false
		}
	}
	s.seqs[key] = append(s.seqs[key], t)
	return true
}

// stashed reports whether a frame of that name is already held under
// the key, without decoding anything.
func (s *Session) stashed(key, name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.seqs[key] {
		if existing.Name == name {
			return true
		}
	}
	return false
}

// Finalize assembles the stashed frames into animation groups, one per
// sequence key, each including the base frame from the registry when
// one was decoded. Call it once the whole batch has been imported.
func (s *Session) Finalize() []*AnimationGroup {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys := maps.Keys(s.seqs)
	sort.Strings(keys)

	groups := make([]*AnimationGroup, 0, len(keys))
	for _, key := range keys {
		frames := make([]*Texture, 0, len(s.seqs[key])+1)
		if base, ok := s.Textures[key]; ok {
			frames = append(frames, base)
		}
		frames = append(frames, s.seqs[key]...)
		sort.Slice(frames, func(i, j int) bool {
			return frames[i].Name < frames[j].Name
		})
		group := &AnimationGroup{Key: key, Frames: frames}
		for _, f := range frames {
			if f.HasEmission {
				group.Emission = append(group.Emission, f)
			}
		}
		groups = append(groups, group)
	}
	return groups
}
